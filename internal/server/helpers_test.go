package server_test

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

	"secondhand/internal/config"
	"secondhand/internal/infra/db/dbtest"
	"secondhand/internal/infra/password"
	"secondhand/internal/infra/storage"
	"secondhand/internal/server"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "admin-pass"
	testPassword  = "Passw0rd!"
)

var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

// 呼ぶたびに1秒進む時計（作成順を安定させる）
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type testEnv struct {
	t   *testing.T
	srv *server.Server
	db  *gorm.DB
}

func newTestEnv(t *testing.T, opts ...func(*config.Config)) *testEnv {
	t.Helper()
	return newTestEnvAt(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), opts...)
}

// startから1秒ずつ進む時計でサーバーを組む（トークンの検証も同じ時計）
func newTestEnvAt(t *testing.T, start time.Time, opts ...func(*config.Config)) *testEnv {
	t.Helper()

	dir := t.TempDir()
	cfg := config.Config{
		Port:           "0",
		GoEnv:          "test",
		JWTSecret:      "test-secret",
		TokenTTL:       time.Hour,
		FEURL:          "http://localhost:3000",
		UploadDir:      dir,
		ImageURLPrefix: "/images",
		MaxUploadSize:  "10M",
		AuthRateLimit:  1000,
		AdminEmail:     adminEmail,
		AdminPassword:  adminPassword,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	images, err := storage.NewLocalImageStore(cfg.UploadDir, cfg.ImageURLPrefix)
	require.NoError(t, err)

	log, _ := test.NewNullLogger()
	gdb := dbtest.Open(t)

	srv := server.New(server.Deps{
		Config: cfg,
		Log:    log,
		DB:     gdb,
		Images: images,
		Clock:  &stepClock{now: start},
		Hasher: password.NewBcryptHasher(bcrypt.MinCost),
	})
	require.NoError(t, srv.SeedAdmin(context.Background()))

	return &testEnv{t: t, srv: srv, db: gdb}
}

// =====================
// リクエスト
// =====================

func (e *testEnv) do(method, path, token string, body io.Reader, contentType string, headers map[string]string) *httptest.ResponseRecorder {
	e.t.Helper()

	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) doJSON(method, path, token string, payload any) *httptest.ResponseRecorder {
	e.t.Helper()

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(e.t, err)
		body = bytes.NewReader(b)
	}
	return e.do(method, path, token, body, "application/json", nil)
}

type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out any) envelope {
	t.Helper()
	env := decode(t, rec)
	require.NoError(t, json.Unmarshal(env.Data, out), string(env.Data))
	return env
}

// =====================
// シナリオ用ヘルパー
// =====================

type userDTO struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Type        string `json:"type"`
	IsAvailable bool   `json:"isAvailable"`
}

type productDTO struct {
	ID          string  `json:"id"`
	SellerID    string  `json:"sellerId"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	ImagePath   string  `json:"imagePath"`
	Description string  `json:"description"`
	IsOnSale    bool    `json:"isOnSale"`
}

type cartLineDTO struct {
	ProductID      string `json:"productId"`
	Quantity       int64  `json:"quantity"`
	ProductMissing bool   `json:"productMissing"`
	Product        *struct {
		Name string `json:"name"`
	} `json:"product"`
}

type orderDTO struct {
	ID      string `json:"id"`
	BuyerID string `json:"buyerId"`
	Items   []struct {
		ProductID string `json:"productId"`
		SellerID  string `json:"sellerId"`
		Quantity  int64  `json:"quantity"`
	} `json:"items"`
}

func (e *testEnv) register(email, role string) userDTO {
	e.t.Helper()

	rec := e.doJSON(http.MethodPost, "/user/register", "", map[string]any{
		"username": strings.Split(email, "@")[0],
		"email":    email,
		"password": testPassword,
		"type":     role,
		"address":  "Tokyo",
	})
	require.Equal(e.t, http.StatusCreated, rec.Code, rec.Body.String())

	var u userDTO
	decodeData(e.t, rec, &u)
	return u
}

func (e *testEnv) login(email, pw string) string {
	e.t.Helper()

	rec := e.doJSON(http.MethodPost, "/user/login", "", map[string]string{"email": email, "password": pw})
	require.Equal(e.t, http.StatusOK, rec.Code, rec.Body.String())

	var out struct {
		Token string `json:"token"`
	}
	decodeData(e.t, rec, &out)
	require.NotEmpty(e.t, out.Token)
	return out.Token
}

// 登録してトークンを返す
func (e *testEnv) signup(email, role string) (userDTO, string) {
	e.t.Helper()
	u := e.register(email, role)
	return u, e.login(email, testPassword)
}

func productForm(t *testing.T, fields map[string]string, withImage bool) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if withImage {
		fw, err := w.CreateFormFile("image", "photo.PNG")
		require.NoError(t, err)
		_, err = fw.Write(pngBytes)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func (e *testEnv) createProduct(token, name, price string) productDTO {
	e.t.Helper()

	body, ctype := productForm(e.t, map[string]string{
		"name":        name,
		"price":       price,
		"description": name + " description",
	}, true)
	rec := e.do(http.MethodPost, "/product/create", token, body, ctype, nil)
	require.Equal(e.t, http.StatusCreated, rec.Code, rec.Body.String())

	var p productDTO
	decodeData(e.t, rec, &p)
	return p
}

func (e *testEnv) addToCart(token, productID string, qty any) *httptest.ResponseRecorder {
	e.t.Helper()
	return e.doJSON(http.MethodPost, "/cart/add", token, map[string]any{"productId": productID, "quantity": qty})
}

func (e *testEnv) cart(token string) []cartLineDTO {
	e.t.Helper()

	rec := e.do(http.MethodGet, "/cart/my", token, nil, "", nil)
	require.Equal(e.t, http.StatusOK, rec.Code, rec.Body.String())

	var lines []cartLineDTO
	decodeData(e.t, rec, &lines)
	return lines
}
