package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cart/internal/config"
	"cart/internal/engine"
	infraStorage "cart/internal/infra/storage"
	"cart/internal/session"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

type stubSubmitter struct{}

func (s *stubSubmitter) Submit(ctx context.Context, userID string, data engine.CheckoutData) (string, error) {
	return "order-1", nil
}

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()

	hash, err := session.HashPassword("pass1234", 4)
	assert.NoError(t, err)

	cfg := config.Config{
		DemoUserEmail:        "user@example.com",
		DemoUserPasswordHash: hash,
	}
	sm := session.NewManager("test_secret", 15*time.Minute)

	st := infraStorage.NewMemoryStore()
	reg := engine.NewRegistry(st, nil, &stubSubmitter{}, 5*time.Millisecond)
	t.Cleanup(reg.CloseAll)

	e := echo.New()
	NewAuthHandler(cfg, sm).RegisterRoutes(e)
	NewCartHandler(reg).RegisterRoutes(e, sm)
	return e
}

func doJSON(t *testing.T, e *echo.Echo, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func loginToken(t *testing.T, e *echo.Echo) string {
	t.Helper()

	rec := doJSON(t, e, http.MethodPost, "/auth/login", "", `{"email":"user@example.com","password":"pass1234"}`)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out LoginResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.NotEmpty(t, out.AccessToken)
	return out.AccessToken
}

func decodeSnapshot(t *testing.T, rec *httptest.ResponseRecorder) engine.Snapshot {
	t.Helper()

	var snap engine.Snapshot
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	return snap
}

func Test_Auth_Login(t *testing.T) {
	e := newTestServer(t)

	rec := doJSON(t, e, http.MethodPost, "/auth/login", "", `{"email":"user@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, e, http.MethodPost, "/auth/login", "", `{"email":"","password":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	token := loginToken(t, e)
	assert.NotEmpty(t, token)
}

func Test_Cart_RequiresAuth(t *testing.T) {
	e := newTestServer(t)

	rec := doJSON(t, e, http.MethodGet, "/cart", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, e, http.MethodGet, "/cart", "garbage-token", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func Test_Cart_AddPatchDelete(t *testing.T) {
	e := newTestServer(t)
	token := loginToken(t, e)

	//最初は空
	rec := doJSON(t, e, http.MethodGet, "/cart", token, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	snap := decodeSnapshot(t, rec)
	assert.Equal(t, 0, len(snap.Items))

	//追加（同一商品は加算）
	add := `{"product":{"id":"p1","name":"Beans","price":10.00,"discount":10},"quantity":1}`
	rec = doJSON(t, e, http.MethodPost, "/cart/items", token, add)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, e, http.MethodPost, "/cart/items", token, add)
	assert.Equal(t, http.StatusOK, rec.Code)
	snap = decodeSnapshot(t, rec)
	assert.Equal(t, 1, len(snap.Items))
	assert.Equal(t, int64(2), snap.Items[0].Quantity)
	assert.Equal(t, int64(2), snap.Totals.ItemCount)

	//id欠落は400
	rec = doJSON(t, e, http.MethodPost, "/cart/items", token, `{"product":{"name":"NoID"},"quantity":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	//数量の絶対値セット
	rec = doJSON(t, e, http.MethodPatch, "/cart/items/p1", token, `{"quantity":5}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	snap = decodeSnapshot(t, rec)
	assert.Equal(t, int64(5), snap.Items[0].Quantity)

	//0は削除
	rec = doJSON(t, e, http.MethodPatch, "/cart/items/p1", token, `{"quantity":0}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	snap = decodeSnapshot(t, rec)
	assert.Equal(t, 0, len(snap.Items))

	//無い明細のDELETEも200（冪等）
	rec = doJSON(t, e, http.MethodDelete, "/cart/items/p1", token, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func Test_Cart_Discount(t *testing.T) {
	e := newTestServer(t)
	token := loginToken(t, e)

	add := `{"product":{"id":"p1","name":"Beans","price":10.00,"discount":10},"quantity":2}`
	rec := doJSON(t, e, http.MethodPost, "/cart/items", token, add)
	assert.Equal(t, http.StatusOK, rec.Code)

	//未登録コードは400
	rec = doJSON(t, e, http.MethodPost, "/cart/discount", token, `{"code":"NOPE"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	//有効コード（小文字・空白込みでも通る）
	rec = doJSON(t, e, http.MethodPost, "/cart/discount", token, `{"code":" save10 "}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	snap := decodeSnapshot(t, rec)
	assert.Equal(t, "17.82", snap.Totals.Total.StringFixed(2))
}

func Test_Cart_ClearRequiresConfirm(t *testing.T) {
	e := newTestServer(t)
	token := loginToken(t, e)

	add := `{"product":{"id":"p1","name":"Beans","price":10.00},"quantity":1}`
	rec := doJSON(t, e, http.MethodPost, "/cart/items", token, add)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, e, http.MethodDelete, "/cart", token, `{"confirm":false}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, e, http.MethodDelete, "/cart", token, `{"confirm":true}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	snap := decodeSnapshot(t, rec)
	assert.Equal(t, 0, len(snap.Items))
}

func Test_Cart_CountBadge(t *testing.T) {
	e := newTestServer(t)
	token := loginToken(t, e)

	add := `{"product":{"id":"p1","name":"Beans","price":10.00},"quantity":3}`
	rec := doJSON(t, e, http.MethodPost, "/cart/items", token, add)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, e, http.MethodGet, "/cart/count", token, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var out CountResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, int64(3), out.Count)
}

func Test_Cart_Checkout(t *testing.T) {
	e := newTestServer(t)
	token := loginToken(t, e)

	//空カートは400
	rec := doJSON(t, e, http.MethodPost, "/cart/checkout", token, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	add := `{"product":{"id":"p1","name":"Beans","price":10.00},"quantity":1}`
	rec = doJSON(t, e, http.MethodPost, "/cart/items", token, add)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, e, http.MethodPost, "/cart/checkout", token, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var out CheckoutResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "order-1", out.OrderID)
}

func Test_Cart_CheckoutData(t *testing.T) {
	e := newTestServer(t)
	token := loginToken(t, e)

	add := `{"product":{"id":"p1","name":"Beans","price":10.00,"discount":10},"quantity":2}`
	rec := doJSON(t, e, http.MethodPost, "/cart/items", token, add)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, e, http.MethodGet, "/cart/checkout-data", token, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var out engine.CheckoutData
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, 1, len(out.Items))
	assert.Equal(t, "p1", out.Items[0].ID)
	assert.Equal(t, int64(2), out.Items[0].Quantity)
}
