package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/halwiz/storefront/internal/models"
	"github.com/halwiz/storefront/internal/repo"
	"github.com/halwiz/storefront/pkg/db"
)

func newTestRepo(t *testing.T) *repo.GormRepo {
	t.Helper()
	gdb, err := db.Open(context.Background(), db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })
	require.NoError(t, gdb.AutoMigrate(models.All()...))
	return repo.New(gdb)
}

func seedUser(t *testing.T, r *repo.GormRepo, email string) *models.User {
	t.Helper()
	u := models.User{ExternalID: uuid.New(), Name: "Asha", Email: email, PasswordHash: "x", PhoneNumber: "+919876543210"}
	require.NoError(t, r.CreateUser(context.Background(), &u))
	return &u
}

func seedAddress(t *testing.T, r *repo.GormRepo, userID uuid.UUID, city string) {
	t.Helper()
	addr := models.Address{UserID: userID, AddressFields: models.AddressFields{City: city, Pincode: "560001"}}
	require.NoError(t, r.AddAddress(context.Background(), &addr))
}

func seedProduct(t *testing.T, r *repo.GormRepo, name string, qty int, price int64, percent int) *models.Product {
	t.Helper()
	p := models.Product{
		Name:            name,
		Quantity:        qty,
		OriginalPrice:   price,
		DiscountPercent: percent,
		DiscountPrice:   DiscountPrice(price, percent),
		Description:     "crunchy",
		Category:        "chips",
		Images:          []string{"https://cdn/a.jpg", "https://cdn/b.jpg"},
	}
	require.NoError(t, r.CreateProduct(context.Background(), &p))
	return &p
}

type fakeImageStore struct {
	mu    sync.Mutex
	names []string
	fail  bool
}

func (f *fakeImageStore) Upload(_ context.Context, filename, _ string, _ int64, body io.ReadSeeker) (string, error) {
	if f.fail {
		return "", fmt.Errorf("bucket unavailable")
	}
	if _, err := io.ReadAll(body); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.names = append(f.names, filename)
	return "https://cdn/uploads/" + filename, nil
}

type memFile struct{ *bytes.Reader }

func (memFile) Close() error { return nil }

func upload(name string) ImageUpload {
	data := []byte("img-" + name)
	return ImageUpload{
		Filename:    name,
		ContentType: "image/jpeg",
		Size:        int64(len(data)),
		Open:        func() (io.ReadSeekCloser, error) { return memFile{bytes.NewReader(data)}, nil },
	}
}

func ptr[T any](v T) *T { return &v }
