// Package handler содержит HTTP-обработчики API интернет-магазина.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/burhani/shop-system/internal/messenger"
	"github.com/burhani/shop-system/internal/middleware"
	"github.com/burhani/shop-system/internal/model"
	"github.com/burhani/shop-system/internal/money"
	"github.com/burhani/shop-system/internal/repository"
	"github.com/burhani/shop-system/internal/service"
	"github.com/burhani/shop-system/internal/validation"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	RegisterUser(ctx context.Context, email, phone *string, fullName, password string) (int64, error)
	AuthenticateUser(ctx context.Context, identifier, password string) (*model.User, error)
	GetCategories(ctx context.Context) ([]model.Category, error)
	GetProducts(ctx context.Context, categoryID *int64, limit int) ([]model.Product, error)
	GetProductByID(ctx context.Context, id int64) (*model.Product, error)
	PlaceOrder(ctx context.Context, lines []service.CartLine, customer service.CustomerInfo, method model.PaymentMethod, userID *int64) (*model.Order, error)
	GetOrdersByUser(ctx context.Context, userID int64, limit int) ([]model.Order, error)
	GetOrder(ctx context.Context, orderID int64, actingUserID *int64) (*model.Order, error)
	CreateGatewayOrder(ctx context.Context, orderID int64, amount int64) (*service.GatewayOrderResult, error)
	ConfirmPayment(ctx context.Context, orderID int64, gatewayOrderID, gatewayPaymentID, signature string) error
	UpdateOrderStatus(ctx context.Context, orderID int64, status model.OrderStatus) (*model.Order, error)
	AuthorizeAdmin(ctx context.Context, userID int64) error
}

// Handler реализует HTTP-обработчики API магазина.
type Handler struct {
	service        Service
	logger         *zap.Logger
	authMiddleware *middleware.AuthMiddleware
	whatsAppNumber string
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger, auth *middleware.AuthMiddleware, whatsAppNumber string) *Handler {
	return &Handler{
		service:        s,
		logger:         logger,
		authMiddleware: auth,
		whatsAppNumber: whatsAppNumber,
	}
}

type registerRequest struct {
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	FullName string  `json:"full_name"`
	Password string  `json:"password"`
}

type userResponse struct {
	ID       int64   `json:"id"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	FullName string  `json:"full_name"`
	Role     string  `json:"role"`
}

// Register обрабатывает регистрацию нового пользователя по email или телефону.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	hasEmail := req.Email != nil && *req.Email != ""
	hasPhone := req.Phone != nil && *req.Phone != ""
	if (!hasEmail && !hasPhone) || req.Password == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if hasEmail && !validation.IsValidEmail(*req.Email) {
		http.Error(w, http.StatusText(http.StatusUnprocessableEntity), http.StatusUnprocessableEntity)
		return
	}
	if hasPhone && !validation.IsValidPhone(*req.Phone) {
		http.Error(w, http.StatusText(http.StatusUnprocessableEntity), http.StatusUnprocessableEntity)
		return
	}

	userID, err := h.service.RegisterUser(r.Context(), req.Email, req.Phone, req.FullName, req.Password)
	if err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			http.Error(w, http.StatusText(http.StatusConflict), http.StatusConflict)
			return
		}
		h.logger.Error("register user error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.authMiddleware.SetAuthCookie(w, userID)
	w.WriteHeader(http.StatusOK)
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// Login выполняет аутентификацию пользователя и устанавливает cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if req.Identifier == "" || req.Password == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	user, err := h.service.AuthenticateUser(r.Context(), req.Identifier, req.Password)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) || errors.Is(err, service.ErrInvalidCredentials) {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		h.logger.Error("login user error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.authMiddleware.SetAuthCookie(w, user.ID)
	h.writeJSON(w, http.StatusOK, userResponse{
		ID:       user.ID,
		Email:    user.Email,
		Phone:    user.Phone,
		FullName: user.FullName,
		Role:     string(user.Role),
	})
}

type categoryResponse struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Slug         string  `json:"slug"`
	Type         *string `json:"type,omitempty"`
	Description  *string `json:"description,omitempty"`
	DisplayOrder int     `json:"display_order"`
}

// GetCategories возвращает активные категории каталога.
func (h *Handler) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.GetCategories(r.Context())
	if err != nil {
		h.logger.Error("get categories error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	resp := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		resp = append(resp, categoryResponse{
			ID:           c.ID,
			Name:         c.Name,
			Slug:         c.Slug,
			Type:         c.Type,
			Description:  c.Description,
			DisplayOrder: c.DisplayOrder,
		})
	}

	h.writeJSON(w, http.StatusOK, resp)
}

type variantResponse struct {
	ID              int64    `json:"id"`
	ColorName       string   `json:"color_name"`
	OriginalPrice   *float64 `json:"original_price,omitempty"`
	DiscountedPrice *float64 `json:"discounted_price,omitempty"`
	Stock           int64    `json:"stock"`
}

type imageResponse struct {
	ImageURL       string  `json:"image_url"`
	AltText        *string `json:"alt_text,omitempty"`
	ColorVariantID *int64  `json:"color_variant_id,omitempty"`
	IsPrimary      bool    `json:"is_primary"`
}

type productResponse struct {
	ID              int64             `json:"id"`
	Name            string            `json:"name"`
	Slug            string            `json:"slug"`
	Description     *string           `json:"description,omitempty"`
	OriginalPrice   float64           `json:"original_price"`
	DiscountedPrice *float64          `json:"discounted_price,omitempty"`
	Stock           int64             `json:"stock"`
	SKU             *string           `json:"sku,omitempty"`
	CategoryID      *int64            `json:"category_id,omitempty"`
	Sizes           *string           `json:"sizes,omitempty"`
	Colors          *string           `json:"colors,omitempty"`
	IsFeatured      bool              `json:"is_featured"`
	Images          []imageResponse   `json:"images,omitempty"`
	ColorVariants   []variantResponse `json:"color_variants,omitempty"`
}

func toProductResponse(p *model.Product) productResponse {
	resp := productResponse{
		ID:              p.ID,
		Name:            p.Name,
		Slug:            p.Slug,
		Description:     p.Description,
		OriginalPrice:   money.ToRupees(p.OriginalPrice),
		DiscountedPrice: rupeesPtr(p.DiscountedPrice),
		Stock:           p.Stock,
		SKU:             p.SKU,
		CategoryID:      p.CategoryID,
		Sizes:           p.Sizes,
		Colors:          p.Colors,
		IsFeatured:      p.IsFeatured,
	}
	for _, img := range p.Images {
		resp.Images = append(resp.Images, imageResponse{
			ImageURL:       img.ImageURL,
			AltText:        img.AltText,
			ColorVariantID: img.ColorVariantID,
			IsPrimary:      img.IsPrimary,
		})
	}
	for _, v := range p.ColorVariants {
		resp.ColorVariants = append(resp.ColorVariants, variantResponse{
			ID:              v.ID,
			ColorName:       v.ColorName,
			OriginalPrice:   rupeesPtr(v.OriginalPrice),
			DiscountedPrice: rupeesPtr(v.DiscountedPrice),
			Stock:           v.Stock,
		})
	}
	return resp
}

func rupeesPtr(paise *int64) *float64 {
	if paise == nil {
		return nil
	}
	v := money.ToRupees(*paise)
	return &v
}

// GetProducts возвращает список активных товаров, опционально по категории.
func (h *Handler) GetProducts(w http.ResponseWriter, r *http.Request) {
	var categoryID *int64
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		categoryID = &id
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	products, err := h.service.GetProducts(r.Context(), categoryID, limit)
	if err != nil {
		h.logger.Error("get products error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	resp := make([]productResponse, 0, len(products))
	for i := range products {
		resp = append(resp, toProductResponse(&products[i]))
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// GetProduct возвращает товар с изображениями и цветовыми вариантами.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	product, err := h.service.GetProductByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrUnitNotFound) {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		h.logger.Error("get product error", zap.Error(err), zap.Int64("productID", id))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, toProductResponse(product))
}

type cartLineRequest struct {
	ProductID      int64   `json:"product_id"`
	ColorVariantID *int64  `json:"color_variant_id,omitempty"`
	Quantity       int64   `json:"quantity"`
	SelectedSize   *string `json:"selected_size,omitempty"`
	SelectedColor  *string `json:"selected_color,omitempty"`
}

type customerRequest struct {
	Name    string  `json:"name"`
	Email   *string `json:"email,omitempty"`
	Phone   string  `json:"phone"`
	Address string  `json:"address"`
	City    *string `json:"city,omitempty"`
	State   *string `json:"state,omitempty"`
	Pincode *string `json:"pincode,omitempty"`
	Notes   *string `json:"notes,omitempty"`
}

type createOrderRequest struct {
	Items         []cartLineRequest `json:"items"`
	Customer      customerRequest   `json:"customer"`
	PaymentMethod string            `json:"payment_method"`
}

type orderItemResponse struct {
	ProductID      int64   `json:"product_id"`
	ColorVariantID *int64  `json:"color_variant_id,omitempty"`
	ProductName    string  `json:"product_name"`
	SelectedSize   *string `json:"selected_size,omitempty"`
	SelectedColor  *string `json:"selected_color,omitempty"`
	UnitPrice      float64 `json:"unit_price"`
	Quantity       int64   `json:"quantity"`
	TotalPrice     float64 `json:"total_price"`
}

type orderResponse struct {
	ID              int64               `json:"id"`
	CustomerName    string              `json:"customer_name"`
	CustomerPhone   string              `json:"customer_phone"`
	ShippingAddress string              `json:"shipping_address"`
	Subtotal        float64             `json:"subtotal"`
	ShippingCost    float64             `json:"shipping_cost"`
	TotalAmount     float64             `json:"total_amount"`
	Status          string              `json:"status"`
	PaymentMethod   string              `json:"payment_method"`
	CreatedAt       string              `json:"created_at"`
	Items           []orderItemResponse `json:"items"`
}

func toOrderResponse(o *model.Order) orderResponse {
	resp := orderResponse{
		ID:              o.ID,
		CustomerName:    o.CustomerName,
		CustomerPhone:   o.CustomerPhone,
		ShippingAddress: o.ShippingAddress,
		Subtotal:        money.ToRupees(o.Subtotal),
		ShippingCost:    money.ToRupees(o.ShippingCost),
		TotalAmount:     money.ToRupees(o.TotalAmount),
		Status:          string(o.Status),
		PaymentMethod:   string(o.PaymentMethod),
		CreatedAt:       o.CreatedAt.Format(time.RFC3339),
		Items:           make([]orderItemResponse, 0, len(o.Items)),
	}
	for _, item := range o.Items {
		resp.Items = append(resp.Items, orderItemResponse{
			ProductID:      item.ProductID,
			ColorVariantID: item.ColorVariantID,
			ProductName:    item.ProductName,
			SelectedSize:   item.SelectedSize,
			SelectedColor:  item.SelectedColor,
			UnitPrice:      money.ToRupees(item.UnitPrice),
			Quantity:       item.Quantity,
			TotalPrice:     money.ToRupees(item.TotalPrice),
		})
	}
	return resp
}

func (h *Handler) decodeOrderRequest(w http.ResponseWriter, r *http.Request) (*createOrderRequest, bool) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return nil, false
	}

	if len(req.Items) == 0 || req.Customer.Name == "" || req.Customer.Address == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return nil, false
	}
	if !validation.IsValidPhone(req.Customer.Phone) {
		http.Error(w, http.StatusText(http.StatusUnprocessableEntity), http.StatusUnprocessableEntity)
		return nil, false
	}
	if req.Customer.Email != nil && *req.Customer.Email != "" && !validation.IsValidEmail(*req.Customer.Email) {
		http.Error(w, http.StatusText(http.StatusUnprocessableEntity), http.StatusUnprocessableEntity)
		return nil, false
	}

	return &req, true
}

func (req *createOrderRequest) cartLines() []service.CartLine {
	lines := make([]service.CartLine, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, service.CartLine{
			ProductID:      item.ProductID,
			ColorVariantID: item.ColorVariantID,
			Quantity:       item.Quantity,
			SelectedSize:   item.SelectedSize,
			SelectedColor:  item.SelectedColor,
		})
	}
	return lines
}

func (req *createOrderRequest) customerInfo() service.CustomerInfo {
	return service.CustomerInfo{
		Name:    req.Customer.Name,
		Email:   req.Customer.Email,
		Phone:   req.Customer.Phone,
		Address: req.Customer.Address,
		City:    req.Customer.City,
		State:   req.Customer.State,
		Pincode: req.Customer.Pincode,
		Notes:   req.Customer.Notes,
	}
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request, req *createOrderRequest, method model.PaymentMethod) *model.Order {
	var userID *int64
	if id, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		userID = &id
	}

	order, err := h.service.PlaceOrder(r.Context(), req.cartLines(), req.customerInfo(), method, userID)
	if err != nil {
		var stockErr *service.InsufficientStockError
		switch {
		case errors.As(err, &stockErr):
			h.writeJSON(w, http.StatusConflict, map[string]any{
				"error":     "insufficient stock",
				"line":      stockErr.Line,
				"requested": stockErr.Requested,
				"available": stockErr.Available,
			})
		case errors.Is(err, repository.ErrUnitNotFound):
			http.Error(w, http.StatusText(http.StatusUnprocessableEntity), http.StatusUnprocessableEntity)
		case errors.Is(err, service.ErrEmptyCart), errors.Is(err, service.ErrInvalidQuantity):
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		default:
			h.logger.Error("place order error", zap.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return nil
	}

	return order
}

// CreateOrder оформляет заказ с онлайн-оплатой или оплатой при получении.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeOrderRequest(w, r)
	if !ok {
		return
	}

	method := model.PaymentMethod(req.PaymentMethod)
	if method != model.PaymentMethodGateway && method != model.PaymentMethodCOD {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	order := h.placeOrder(w, r, req, method)
	if order == nil {
		return
	}

	h.writeJSON(w, http.StatusCreated, toOrderResponse(order))
}

type whatsAppOrderResponse struct {
	Order       orderResponse `json:"order"`
	WhatsAppURL string        `json:"whatsapp_url"`
}

// CreateWhatsAppOrder оформляет заказ для продолжения в WhatsApp: резервирует
// остатки как обычный заказ и возвращает ссылку с текстом заказа.
func (h *Handler) CreateWhatsAppOrder(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeOrderRequest(w, r)
	if !ok {
		return
	}

	order := h.placeOrder(w, r, req, model.PaymentMethodWhatsApp)
	if order == nil {
		return
	}

	h.writeJSON(w, http.StatusCreated, whatsAppOrderResponse{
		Order:       toOrderResponse(order),
		WhatsAppURL: messenger.OrderLink(h.whatsAppNumber, order),
	})
}

// GetOrders возвращает заказы текущего пользователя, новые первыми.
func (h *Handler) GetOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	orders, err := h.service.GetOrdersByUser(r.Context(), userID, 0)
	if err != nil {
		h.logger.Error("get orders error", zap.Error(err), zap.Int64("userID", userID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if len(orders) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	resp := make([]orderResponse, 0, len(orders))
	for i := range orders {
		resp = append(resp, toOrderResponse(&orders[i]))
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// GetOrder возвращает заказ по идентификатору. Заказ зарегистрированного
// пользователя доступен только владельцу и администратору.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	var actingUserID *int64
	if id, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		actingUserID = &id
	}

	order, err := h.service.GetOrder(r.Context(), orderID, actingUserID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrOrderNotFound):
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		case errors.Is(err, service.ErrAccessDenied):
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		default:
			h.logger.Error("get order error", zap.Error(err), zap.Int64("orderID", orderID))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}

	h.writeJSON(w, http.StatusOK, toOrderResponse(order))
}

type gatewayCreateRequest struct {
	OrderID int64   `json:"order_id"`
	Amount  float64 `json:"amount"`
}

type gatewayCreateResponse struct {
	GatewayOrderID string  `json:"gateway_order_id"`
	Amount         float64 `json:"amount"`
	Currency       string  `json:"currency"`
	KeyID          string  `json:"key_id"`
}

// CreateGatewayOrder создаёт заказ в платёжном шлюзе для уже оформленного заказа.
func (h *Handler) CreateGatewayOrder(w http.ResponseWriter, r *http.Request) {
	var req gatewayCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if req.OrderID <= 0 || req.Amount <= 0 {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	result, err := h.service.CreateGatewayOrder(r.Context(), req.OrderID, money.ToPaise(req.Amount))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrOrderNotFound), errors.Is(err, repository.ErrPaymentNotFound):
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		case errors.Is(err, service.ErrAmountMismatch):
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		case errors.Is(err, service.ErrGatewayUnavailable):
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		default:
			h.logger.Error("create gateway order error", zap.Error(err), zap.Int64("orderID", req.OrderID))
			http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		}
		return
	}

	h.writeJSON(w, http.StatusOK, gatewayCreateResponse{
		GatewayOrderID: result.GatewayOrderID,
		Amount:         money.ToRupees(result.Amount),
		Currency:       result.Currency,
		KeyID:          result.KeyID,
	})
}

type gatewayVerifyRequest struct {
	OrderID          int64  `json:"order_id"`
	GatewayOrderID   string `json:"gateway_order_id"`
	GatewayPaymentID string `json:"gateway_payment_id"`
	Signature        string `json:"signature"`
}

// VerifyPayment проверяет подпись платежа и подтверждает заказ.
func (h *Handler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	var req gatewayVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if req.OrderID <= 0 || req.GatewayOrderID == "" || req.GatewayPaymentID == "" || req.Signature == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	err := h.service.ConfirmPayment(r.Context(), req.OrderID, req.GatewayOrderID, req.GatewayPaymentID, req.Signature)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrOrderNotFound), errors.Is(err, repository.ErrPaymentNotFound):
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		case errors.Is(err, service.ErrSignatureInvalid):
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		case errors.Is(err, service.ErrAmountMismatch):
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		case errors.Is(err, service.ErrInvalidStatusTransition):
			http.Error(w, http.StatusText(http.StatusConflict), http.StatusConflict)
		default:
			h.logger.Error("verify payment error", zap.Error(err), zap.Int64("orderID", req.OrderID))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "confirmed"})
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateOrderStatus меняет статус заказа. Доступно только администратору.
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	if err := h.service.AuthorizeAdmin(r.Context(), userID); err != nil {
		if errors.Is(err, service.ErrAccessDenied) {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}
		h.logger.Error("authorize admin error", zap.Error(err), zap.Int64("userID", userID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	status := model.OrderStatus(req.Status)
	if !isKnownStatus(status) {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	order, err := h.service.UpdateOrderStatus(r.Context(), orderID, status)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrOrderNotFound):
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		case errors.Is(err, service.ErrInvalidStatusTransition):
			http.Error(w, http.StatusText(http.StatusConflict), http.StatusConflict)
		default:
			h.logger.Error("update order status error", zap.Error(err), zap.Int64("orderID", orderID))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}

	h.writeJSON(w, http.StatusOK, toOrderResponse(order))
}

func isKnownStatus(status model.OrderStatus) bool {
	switch status {
	case model.OrderStatusPending, model.OrderStatusConfirmed, model.OrderStatusProcessing,
		model.OrderStatusShipped, model.OrderStatusDelivered, model.OrderStatusCancelled,
		model.OrderStatusRefunded:
		return true
	}
	return false
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response error", zap.Error(err))
	}
}
