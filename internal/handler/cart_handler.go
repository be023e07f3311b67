package handler

import (
	"errors"
	"net/http"

	"cart/internal/domain/model"
	"cart/internal/engine"
	"cart/internal/middleware"
	"cart/internal/session"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// エンジンのエラーをHTTPステータスに写す。
func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, engine.ErrInvalidProduct),
		errors.Is(err, engine.ErrUnknownCode),
		errors.Is(err, engine.ErrEmptyCart):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, engine.ErrLoginRequired):
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: err.Error()})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// /cartのHTTP
type CartHandler struct {
	engines *engine.Registry
}

// DI
func NewCartHandler(engines *engine.Registry) *CartHandler {
	return &CartHandler{engines: engines}
}

type AddItemRequest struct {
	Product  model.Product `json:"product"`
	Quantity int64         `json:"quantity"`
}

type UpdateQuantityRequest struct {
	Quantity int64 `json:"quantity"`
	// 入力連打をまとめたいときはtrue（静止後に確定）
	Debounce bool `json:"debounce"`
}

type DiscountRequest struct {
	Code string `json:"code"`
}

type ClearRequest struct {
	Confirm bool `json:"confirm"`
}

type CheckoutResponse struct {
	OrderID string `json:"order_id"`
}

type CountResponse struct {
	Count int64 `json:"count"`
}

// /cart 配下を登録
func (h *CartHandler) RegisterRoutes(e *echo.Echo, sm *session.Manager) {
	g := e.Group("/cart")
	g.Use(middleware.AuthJWT(sm))

	g.GET("", h.getCart)
	g.GET("/count", h.getCount)
	g.POST("/items", h.addItem)
	g.PATCH("/items/:id", h.updateQuantity)
	g.DELETE("/items/:id", h.removeItem)
	g.POST("/discount", h.applyDiscount)
	g.DELETE("", h.clear)
	g.GET("/checkout-data", h.checkoutData)
	g.POST("/checkout", h.checkout)
}

func (h *CartHandler) getCart(c echo.Context) error {
	eng, ok := h.engineFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	return c.JSON(http.StatusOK, engine.Snapshot{
		Items:  eng.Items(),
		Totals: eng.Totals(),
	})
}

func (h *CartHandler) getCount(c echo.Context) error {
	eng, ok := h.engineFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	return c.JSON(http.StatusOK, CountResponse{Count: eng.ItemCount()})
}

func (h *CartHandler) addItem(c echo.Context) error {
	eng, ok := h.engineFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req AddItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := eng.AddItem(c.Request().Context(), req.Product, req.Quantity); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, engine.Snapshot{Items: eng.Items(), Totals: eng.Totals()})
}

func (h *CartHandler) updateQuantity(c echo.Context) error {
	eng, ok := h.engineFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	productID := c.Param("id")
	if productID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req UpdateQuantityRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if req.Debounce {
		eng.UpdateQuantityDebounced(productID, req.Quantity)
	} else {
		eng.UpdateQuantity(c.Request().Context(), productID, req.Quantity)
	}

	return c.JSON(http.StatusOK, engine.Snapshot{Items: eng.Items(), Totals: eng.Totals()})
}

func (h *CartHandler) removeItem(c echo.Context) error {
	eng, ok := h.engineFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	productID := c.Param("id")
	if productID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	eng.RemoveItem(c.Request().Context(), productID)

	return c.JSON(http.StatusOK, engine.Snapshot{Items: eng.Items(), Totals: eng.Totals()})
}

func (h *CartHandler) applyDiscount(c echo.Context) error {
	eng, ok := h.engineFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req DiscountRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := eng.ApplyDiscountCode(c.Request().Context(), req.Code); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, engine.Snapshot{Items: eng.Items(), Totals: eng.Totals()})
}

// 全消しは確認必須（表示側のyes/noダイアログ相当）。
func (h *CartHandler) clear(c echo.Context) error {
	eng, ok := h.engineFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req ClearRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if !req.Confirm {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "confirm required"})
	}

	eng.Clear(c.Request().Context())

	return c.JSON(http.StatusOK, engine.Snapshot{Items: eng.Items(), Totals: eng.Totals()})
}

func (h *CartHandler) checkoutData(c echo.Context) error {
	eng, ok := h.engineFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	return c.JSON(http.StatusOK, eng.CheckoutData())
}

func (h *CartHandler) checkout(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	eng := h.engines.ForUser(userID)

	orderID, err := eng.ProceedToCheckout(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, CheckoutResponse{OrderID: orderID})
}

func (h *CartHandler) engineFromContext(c echo.Context) (*engine.CartEngine, bool) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return nil, false
	}
	return h.engines.ForUser(userID), true
}

func getUserIDFromContext(c echo.Context) (string, bool) {
	v := c.Get(middleware.CtxUserIDKey)
	userID, ok := v.(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}
