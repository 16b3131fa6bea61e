package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/halwiz/storefront/internal/service"
	"github.com/halwiz/storefront/internal/transport"
	"github.com/halwiz/storefront/pkg/logging"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

// productForm reads text fields and image files of a multipart product form.
type productForm struct {
	values map[string][]string
	files  []*multipart.FileHeader
}

func readProductForm(c echo.Context) (*productForm, error) {
	mf, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, fmt.Errorf("%w: expected multipart/form-data", service.ErrValidation)
		}
		return nil, fmt.Errorf("%w: invalid form: %v", service.ErrValidation, err)
	}
	return &productForm{values: mf.Value, files: mf.File["images"]}, nil
}

func (f *productForm) has(name string) bool {
	_, ok := f.values[name]
	return ok
}

func (f *productForm) get(name string) string {
	if v := f.values[name]; len(v) > 0 {
		return strings.TrimSpace(v[0])
	}
	return ""
}

func (f *productForm) str(name string) *string {
	if !f.has(name) {
		return nil
	}
	v := f.get(name)
	return &v
}

func (f *productForm) intValue(name string) (*int, error) {
	v := f.get(name)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a whole number", service.ErrValidation, name)
	}
	return &n, nil
}

func (f *productForm) int64Value(name string) (*int64, error) {
	v := f.get(name)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a whole number", service.ErrValidation, name)
	}
	return &n, nil
}

// existingImages is nil when the field is absent. It accepts a JSON array or
// repeated plain URL values.
func (f *productForm) existingImages() ([]string, error) {
	raw, ok := f.values["existingImages"]
	if !ok {
		return nil, nil
	}
	out := []string{}
	for _, v := range raw {
		v = strings.TrimSpace(v)
		switch {
		case v == "":
		case strings.HasPrefix(v, "["):
			var urls []string
			if err := json.Unmarshal([]byte(v), &urls); err != nil {
				return nil, fmt.Errorf("%w: existingImages must be a JSON array of URLs", service.ErrValidation)
			}
			out = append(out, urls...)
		default:
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *productForm) uploads() []service.ImageUpload {
	out := make([]service.ImageUpload, 0, len(f.files))
	for _, fh := range f.files {
		out = append(out, service.ImageUpload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get(echo.HeaderContentType),
			Size:        fh.Size,
			Open: func() (io.ReadSeekCloser, error) {
				return fh.Open()
			},
		})
	}
	return out
}

func (h *CatalogHTTP) AddProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.add_product")

	form, err := readProductForm(c)
	if err != nil {
		return fail(l, "add_product", err)
	}

	req := transport.CreateProductForm{
		Name:        form.get("name"),
		Description: form.get("description"),
		Category:    form.get("category"),
	}
	if req.Quantity, err = form.intValue("quantity"); err != nil {
		return fail(l, "add_product", err)
	}
	if req.OriginalPrice, err = form.int64Value("originalPrice"); err != nil {
		return fail(l, "add_product", err)
	}
	if req.DiscountPercent, err = form.intValue("discountPercent"); err != nil {
		return fail(l, "add_product", err)
	}

	product, err := h.Svc.CreateProduct(ctx, req, form.uploads())
	if err != nil {
		return fail(l, "add_product", err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "Product created successfully",
		"product": product,
	})
}

func (h *CatalogHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.update_product")

	form, err := readProductForm(c)
	if err != nil {
		return fail(l, "update_product", err)
	}

	req := transport.UpdateProductForm{
		ID:          form.get("_id"),
		Name:        form.str("name"),
		Description: form.str("description"),
		Category:    form.str("category"),
	}
	if req.ID == "" {
		req.ID = form.get("id")
	}
	if req.Quantity, err = form.intValue("quantity"); err != nil {
		return fail(l, "update_product", err)
	}
	if req.OriginalPrice, err = form.int64Value("originalPrice"); err != nil {
		return fail(l, "update_product", err)
	}
	if req.DiscountPercent, err = form.intValue("discountPercent"); err != nil {
		return fail(l, "update_product", err)
	}
	if req.DiscountPrice, err = form.int64Value("discountPrice"); err != nil {
		return fail(l, "update_product", err)
	}
	if req.ExistingImages, err = form.existingImages(); err != nil {
		return fail(l, "update_product", err)
	}

	product, err := h.Svc.UpdateProduct(ctx, req, form.uploads())
	if err != nil {
		return fail(l, "update_product", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Product updated successfully",
		"product": product,
	})
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.delete_product")

	var req transport.DeleteProductRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "delete_product", err)
	}

	if err := h.Svc.DeleteProduct(ctx, req.ID); err != nil {
		return fail(l, "delete_product", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Product deleted successfully"})
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_products")

	products, err := h.Svc.ListProducts(ctx)
	if err != nil {
		return fail(l, "get_products", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":  true,
		"message":  "Products fetched successfully",
		"count":    len(products),
		"products": products,
	})
}
