package service

import (
	"errors"
	"fmt"

	"github.com/burhani/shop-system/internal/repository"
)

// ErrEmptyCart возвращается при попытке оформить заказ с пустой корзиной.
var (
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInvalidQuantity возвращается для позиции корзины с неположительным количеством.
	ErrInvalidQuantity = errors.New("quantity must be positive")
	// ErrAmountMismatch возвращается, если сумма запроса к шлюзу не совпадает с суммой заказа.
	ErrAmountMismatch = errors.New("amount mismatch")
	// ErrSignatureInvalid возвращается при неверной подписи платёжного обратного вызова.
	ErrSignatureInvalid = errors.New("invalid payment signature")
	// ErrInvalidStatusTransition возвращается при недопустимом переходе статуса заказа.
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
	// ErrInvalidCredentials возвращается при неверном логине или пароле.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccessDenied возвращается при попытке прочитать чужой заказ.
	ErrAccessDenied = errors.New("access denied")
	// ErrGatewayUnavailable возвращается, если платёжный шлюз не сконфигурирован.
	ErrGatewayUnavailable = errors.New("payment gateway is not configured")
)

// LineError привязывает ошибку оформления к индексу позиции корзины.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("cart line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// InsufficientStockError сообщает о нехватке остатка для позиции корзины.
type InsufficientStockError struct {
	Line      int
	Requested int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("cart line %d: insufficient stock: requested %d, available %d",
		e.Line, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error {
	return repository.ErrInsufficientStock
}
