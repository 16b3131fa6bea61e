package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/halwiz/storefront/internal/models"
	"github.com/halwiz/storefront/internal/repo"
	"github.com/halwiz/storefront/internal/service"
	"github.com/halwiz/storefront/pkg/db"
	"github.com/halwiz/storefront/pkg/events"
	"github.com/halwiz/storefront/pkg/logging"
	"github.com/halwiz/storefront/pkg/otp"
)

var testSecret = []byte("http-test-secret")

type fakeImages struct {
	mu   sync.Mutex
	seen []string
}

func (f *fakeImages) Upload(_ context.Context, filename, _ string, _ int64, body io.ReadSeeker) (string, error) {
	if _, err := io.Copy(io.Discard, body); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, filename)
	return "https://cdn.test/" + filename, nil
}

type testEnv struct {
	e      *echo.Echo
	repo   *repo.GormRepo
	events *events.Recorder
	images *fakeImages
}

type envOption func(*Deps)

func withPromotionPolicy() envOption {
	return func(d *Deps) { d.PromotionRequiresAdmin = true }
}

func withOTP(c *otp.Client) envOption {
	return func(d *Deps) { d.Profile.Svc.OTP = c }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	gdb, err := db.Open(context.Background(), db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })
	require.NoError(t, gdb.AutoMigrate(models.All()...))

	r := repo.New(gdb)
	rec := &events.Recorder{}
	images := &fakeImages{}

	d := &Deps{
		DB:        gdb,
		JWTSecret: testSecret,
		Auth:      &AuthHTTP{Svc: &service.AuthService{Repo: r, Secret: testSecret, SessionTTL: time.Hour, Events: rec}},
		Profile:   &ProfileHTTP{Svc: &service.ProfileService{Repo: r}},
		Catalog:   &CatalogHTTP{Svc: &service.CatalogService{Repo: r, Images: images, Events: rec}},
		Cart:      &CartHTTP{Svc: &service.CartService{Repo: r}},
		Order:     &OrderHTTP{Svc: &service.OrderService{Repo: r, Events: rec}},
		Rating:    &RatingHTTP{Svc: &service.RatingService{Repo: r, Events: rec}},
	}
	for _, o := range opts {
		o(d)
	}

	return &testEnv{
		e:      NewServer(d, ServerOptions{Logger: logging.Discard()}),
		repo:   r,
		events: rec,
		images: images,
	}
}

func (env *testEnv) serve(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) doJSON(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	return env.serve(req, token)
}

func (env *testEnv) doMultipart(t *testing.T, method, path, token string, fields map[string][]string, files ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, vs := range fields {
		for _, v := range vs {
			require.NoError(t, w.WriteField(k, v))
		}
	}
	for _, name := range files {
		fw, err := w.CreateFormFile("images", name)
		require.NoError(t, err)
		_, err = fw.Write([]byte("jpeg:" + name))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return env.serve(req, token)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   json.RawMessage `json:"error"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type loginResp struct {
	envelope
	Token   string    `json:"token"`
	UserID  uuid.UUID `json:"userId"`
	IsAdmin bool      `json:"isAdmin"`
}

// signup registers and logs in a user, returning the session token and internal id.
func (env *testEnv) signup(t *testing.T, name string) (string, uuid.UUID) {
	t.Helper()
	email := strings.ToLower(name) + "@example.com"
	rec := env.doJSON(t, http.MethodPost, "/auth/register", "", map[string]string{
		"name": name, "email": email, "password": "secret-pw",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.doJSON(t, http.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": "secret-pw"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	lr := decode[loginResp](t, rec)
	return lr.Token, lr.UserID
}

func (env *testEnv) signupAdmin(t *testing.T, name string) string {
	t.Helper()
	tok, id := env.signup(t, name)
	require.NoError(t, env.repo.SetAdmin(context.Background(), id))
	return tok
}

type productResp struct {
	envelope
	Product models.Product `json:"product"`
}

func (env *testEnv) createProduct(t *testing.T, adminTok, name string, qty, price, percent string) models.Product {
	t.Helper()
	rec := env.doMultipart(t, http.MethodPost, "/auth/add-product", adminTok, map[string][]string{
		"name":            {name},
		"quantity":        {qty},
		"originalPrice":   {price},
		"discountPercent": {percent},
		"description":     {"fresh batch"},
		"category":        {"sweets"},
	}, name+"-1.jpg", name+"-2.jpg")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[productResp](t, rec).Product
}
