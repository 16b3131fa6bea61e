package transport

type RegisterRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type SendOTPRequest struct {
	MobileNumber string `json:"mobileNumber" validate:"required"`
}

type VerifyOTPRequest struct {
	MobileNumber   string `json:"mobileNumber"   validate:"required"`
	Code           string `json:"code"           validate:"required"`
	VerificationID string `json:"verificationId" validate:"required"`
}

type AddressRequest struct {
	HouseNumber string `json:"houseNumber"`
	Street      string `json:"street"`
	Landmark    string `json:"landmark"`
	City        string `json:"city"`
	State       string `json:"state"`
	Pincode     string `json:"pincode"`
}

type DeleteAddressRequest struct {
	AddressID string `json:"addressId" validate:"required"`
}

type TestimonialRequest struct {
	Name        string `json:"name"        validate:"required"`
	Description string `json:"description" validate:"required"`
}

type UpdateTestimonialRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// CreateProductForm is read from the multipart form; images travel as files.
// Numeric fields are nil when absent.
type CreateProductForm struct {
	Name            string
	Quantity        *int
	OriginalPrice   *int64
	DiscountPercent *int
	Description     string
	Category        string
}

// UpdateProductForm fields are nil when absent from the form.
type UpdateProductForm struct {
	ID              string
	Name            *string
	Quantity        *int
	OriginalPrice   *int64
	DiscountPercent *int
	DiscountPrice   *int64
	Description     *string
	Category        *string
	// ExistingImages is nil when the form did not mention existingImages.
	ExistingImages []string
}

type DeleteProductRequest struct {
	ID string `json:"id" validate:"required"`
}

type CreateOrderItem struct {
	ProductID    string `json:"productId"`
	Quantity     int    `json:"quantity"`
	ImageIndexes []int  `json:"imageIndexes"`
}

type CreateOrderRequest struct {
	Items        []CreateOrderItem `json:"items"`
	AddressIndex *int              `json:"addressIndex"`
	PaymentMode  string            `json:"paymentMode"`
}

type CancelOrderRequest struct {
	OrderID string `json:"orderId" validate:"required"`
}

type ReturnOrderRequest struct {
	OrderID string `json:"orderId" validate:"required"`
	Reason  string `json:"reason"  validate:"required"`
}

type UpdateOrderStatusRequest struct {
	OrderID string `json:"orderId" validate:"required"`
	Status  string `json:"status"  validate:"required"`
}

type AddRatingRequest struct {
	ProductID   string `json:"productId"   validate:"required"`
	Rating      *int   `json:"rating"      validate:"omitempty,gte=1,lte=5"`
	Description string `json:"description" validate:"required"`
}

type CartRequest struct {
	ProductID string `json:"productId" validate:"required"`
}
