package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/halwiz/storefront/internal/models"
	"github.com/halwiz/storefront/internal/repo"
	"github.com/halwiz/storefront/internal/transport"
	"github.com/halwiz/storefront/pkg/logging"
	"github.com/halwiz/storefront/pkg/otp"
)

type ProfileService struct {
	Repo *repo.GormRepo
	OTP  *otp.Client
}

// ProfileCartLine is the short cart view embedded in the profile.
type ProfileCartLine struct {
	ProductID     uuid.UUID `json:"productId"`
	Name          string    `json:"name"`
	DiscountPrice int64     `json:"discountPrice"`
	Quantity      int       `json:"quantity"`
}

type Profile struct {
	*models.User
	Addresses []models.Address  `json:"addresses"`
	Cart      []ProfileCartLine `json:"cart"`
	Wishlist  []uuid.UUID       `json:"wishlist"`
}

func (s *ProfileService) Me(ctx context.Context, user *models.User) (*Profile, error) {
	addresses, err := s.Repo.ListAddresses(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	items, err := s.Repo.ListCartItems(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	products, err := s.Repo.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	cart := make([]ProfileCartLine, 0, len(items))
	for _, it := range items {
		p, ok := products[it.ProductID]
		if !ok {
			continue
		}
		cart = append(cart, ProfileCartLine{
			ProductID:     p.ID,
			Name:          p.Name,
			DiscountPrice: p.DiscountPrice,
			Quantity:      it.Quantity,
		})
	}

	wishlist, err := s.Repo.ListWishlist(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &Profile{User: user, Addresses: addresses, Cart: cart, Wishlist: wishlist}, nil
}

func (s *ProfileService) AddAddress(ctx context.Context, userID uuid.UUID, req transport.AddressRequest) (*models.Address, []models.Address, error) {
	fields := models.AddressFields{
		HouseNumber: strings.TrimSpace(req.HouseNumber),
		Street:      strings.TrimSpace(req.Street),
		Landmark:    strings.TrimSpace(req.Landmark),
		City:        strings.TrimSpace(req.City),
		State:       strings.TrimSpace(req.State),
		Pincode:     strings.TrimSpace(req.Pincode),
	}
	if fields.IsEmpty() {
		return nil, nil, fmt.Errorf("%w: at least one address field must be provided", ErrValidation)
	}

	addr := models.Address{UserID: userID, AddressFields: fields}
	if err := s.Repo.AddAddress(ctx, &addr); err != nil {
		return nil, nil, err
	}

	all, err := s.Repo.ListAddresses(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return &addr, all, nil
}

// DeleteAddress returns the addresses left after removal.
func (s *ProfileService) DeleteAddress(ctx context.Context, userID uuid.UUID, addressID string) ([]models.Address, error) {
	id, err := uuid.Parse(strings.TrimSpace(addressID))
	if err != nil {
		return nil, fmt.Errorf("%w: address not found", ErrNotFound)
	}

	if err := s.Repo.DeleteAddress(ctx, userID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: address not found", ErrNotFound)
		}
		return nil, err
	}
	return s.Repo.ListAddresses(ctx, userID)
}

func (s *ProfileService) AddTestimonial(ctx context.Context, userID uuid.UUID, req transport.TestimonialRequest) (*models.Testimonial, error) {
	name := strings.TrimSpace(req.Name)
	desc := strings.TrimSpace(req.Description)
	if name == "" || desc == "" {
		return nil, fmt.Errorf("%w: name and description are required", ErrValidation)
	}

	t := models.Testimonial{UserID: userID, Name: name, Description: desc}
	if err := s.Repo.CreateTestimonial(ctx, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *ProfileService) UpdateTestimonial(ctx context.Context, userID uuid.UUID, testimonialID string, req transport.UpdateTestimonialRequest) (*models.Testimonial, error) {
	id, err := uuid.Parse(testimonialID)
	if err != nil {
		return nil, fmt.Errorf("%w: testimonial not found", ErrNotFound)
	}

	updates := map[string]any{}
	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil && strings.TrimSpace(*req.Description) != "" {
		updates["description"] = strings.TrimSpace(*req.Description)
	}

	t, err := s.Repo.UpdateTestimonial(ctx, userID, id, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: testimonial not found", ErrNotFound)
		}
		return nil, err
	}
	return t, nil
}

func (s *ProfileService) ListTestimonials(ctx context.Context) ([]repo.TestimonialRow, error) {
	return s.Repo.ListTestimonials(ctx)
}

var nonDigits = regexp.MustCompile(`\D`)

// normalizeMobile keeps digits only and requires a 10 digit Indian number.
func normalizeMobile(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("%w: mobile number is required", ErrValidation)
	}
	digits := nonDigits.ReplaceAllString(raw, "")
	if len(digits) != 10 {
		return "", fmt.Errorf("%w: mobile number must be 10 digits", ErrValidation)
	}
	return digits, nil
}

type OTPSent struct {
	VerificationID string `json:"verificationId"`
	MobileNumber   string `json:"mobileNumber"`
	Reused         bool   `json:"-"`
}

func (s *ProfileService) SendWhatsAppOTP(ctx context.Context, mobileNumber string) (*OTPSent, error) {
	l := logging.FromContext(ctx).With("svc", "profile.send_otp")

	mobile, err := normalizeMobile(mobileNumber)
	if err != nil {
		return nil, err
	}

	res, err := s.OTP.SendWhatsApp(ctx, mobile)
	if err != nil {
		l.Error("otp_send_failed", "error", err)
		return nil, fmt.Errorf("%w: failed to send OTP: %w", ErrProvider, err)
	}
	if res.Reused {
		l.Info("otp_already_requested", "verification_id", res.VerificationID)
	}
	return &OTPSent{VerificationID: res.VerificationID, MobileNumber: mobile, Reused: res.Reused}, nil
}

// VerifyWhatsAppOTP stores +91<number> on the user once the provider accepts the code.
func (s *ProfileService) VerifyWhatsAppOTP(ctx context.Context, userID uuid.UUID, req transport.VerifyOTPRequest) (json.RawMessage, error) {
	l := logging.FromContext(ctx).With("svc", "profile.verify_otp")

	mobile, err := normalizeMobile(req.MobileNumber)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Code) == "" {
		return nil, fmt.Errorf("%w: OTP code is required", ErrValidation)
	}
	if strings.TrimSpace(req.VerificationID) == "" {
		return nil, fmt.Errorf("%w: verificationId is required, request a new OTP", ErrValidation)
	}

	payload, err := s.OTP.Verify(ctx, mobile, req.VerificationID, strings.TrimSpace(req.Code))
	if err != nil {
		if errors.Is(err, otp.ErrInvalidVerification) {
			return nil, fmt.Errorf("%w: invalid or expired verificationId, resend OTP", ErrValidation)
		}
		l.Error("otp_verify_failed", "error", err)
		return nil, fmt.Errorf("%w: OTP verification failed: %w", ErrProvider, err)
	}

	if err := s.Repo.SetPhoneNumber(ctx, userID, "+91"+mobile); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user not found", ErrNotFound)
		}
		return nil, fmt.Errorf("store phone number: %w", err)
	}
	return payload, nil
}
