package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/burhani/shop-system/internal/model"
	"github.com/burhani/shop-system/internal/repository"
)

// CartLine описывает позицию корзины во входных данных оформления заказа.
type CartLine struct {
	ProductID      int64
	ColorVariantID *int64
	Quantity       int64
	SelectedSize   *string
	SelectedColor  *string
}

// CustomerInfo содержит контактные данные покупателя и адрес доставки.
type CustomerInfo struct {
	Name    string
	Email   *string
	Phone   string
	Address string
	City    *string
	State   *string
	Pincode *string
	Notes   *string
}

type reservation struct {
	ref model.UnitRef
	qty int64
}

// PlaceOrder оформляет заказ: разрешает каждую позицию корзины, резервирует
// остатки, считает стоимость и сохраняет заказ, позиции и платёж в одной
// транзакции. При ошибке на любом шаге уже сделанные резервирования
// возвращаются на склад до выхода из функции, так что частичное списание
// не переживает неудавшееся оформление. Шлюз при оформлении не вызывается.
func (s *Service) PlaceOrder(ctx context.Context, lines []CartLine, customer CustomerInfo, method model.PaymentMethod, userID *int64) (*model.Order, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	for i, line := range lines {
		if line.Quantity <= 0 {
			return nil, &LineError{Line: i, Err: ErrInvalidQuantity}
		}
	}

	var reserved []reservation
	items := make([]model.OrderItem, 0, len(lines))
	var subtotal int64

	for i, line := range lines {
		ref := model.UnitRef{ProductID: line.ProductID, ColorVariantID: line.ColorVariantID}

		unit, err := s.repo.ResolveUnit(ctx, ref)
		if err != nil {
			s.releaseReserved(ctx, reserved)
			if errors.Is(err, repository.ErrUnitNotFound) {
				return nil, &LineError{Line: i, Err: repository.ErrUnitNotFound}
			}
			return nil, fmt.Errorf("resolve unit: %w", err)
		}
		if !unit.IsActive {
			s.releaseReserved(ctx, reserved)
			return nil, &LineError{Line: i, Err: repository.ErrUnitNotFound}
		}

		available, err := s.repo.ReserveStock(ctx, ref, line.Quantity)
		if err != nil {
			s.releaseReserved(ctx, reserved)
			if errors.Is(err, repository.ErrInsufficientStock) {
				return nil, &InsufficientStockError{Line: i, Requested: line.Quantity, Available: available}
			}
			if errors.Is(err, repository.ErrUnitNotFound) {
				return nil, &LineError{Line: i, Err: repository.ErrUnitNotFound}
			}
			return nil, fmt.Errorf("reserve stock: %w", err)
		}
		reserved = append(reserved, reservation{ref: ref, qty: line.Quantity})

		unitPrice := UnitPrice(unit)
		lineTotal := LineTotal(unitPrice, line.Quantity)
		subtotal += lineTotal

		items = append(items, model.OrderItem{
			ProductID:      line.ProductID,
			ColorVariantID: line.ColorVariantID,
			ProductName:    unit.ProductName,
			ProductSKU:     unit.ProductSKU,
			SelectedSize:   line.SelectedSize,
			SelectedColor:  line.SelectedColor,
			UnitPrice:      unitPrice,
			Quantity:       line.Quantity,
			TotalPrice:     lineTotal,
		})
	}

	shippingCost := s.shipping.Cost(subtotal)

	order := &model.Order{
		UserID:          userID,
		CustomerName:    customer.Name,
		CustomerEmail:   customer.Email,
		CustomerPhone:   customer.Phone,
		ShippingAddress: customer.Address,
		ShippingCity:    customer.City,
		ShippingState:   customer.State,
		ShippingPincode: customer.Pincode,
		Subtotal:        subtotal,
		ShippingCost:    shippingCost,
		TotalAmount:     subtotal + shippingCost,
		Status:          model.OrderStatusPending,
		PaymentMethod:   method,
		CustomerNotes:   customer.Notes,
		Items:           items,
	}
	payment := &model.Payment{
		Method:   method,
		Status:   model.PaymentStatusPending,
		Amount:   order.TotalAmount,
		Currency: "INR",
	}

	if err := s.repo.CreateOrder(ctx, order, payment); err != nil {
		s.releaseReserved(ctx, reserved)
		return nil, fmt.Errorf("create order: %w", err)
	}

	return order, nil
}

// releaseReserved компенсирует уже выполненные резервирования этого же вызова.
func (s *Service) releaseReserved(ctx context.Context, reserved []reservation) {
	for _, res := range reserved {
		if err := s.repo.ReleaseStock(ctx, res.ref, res.qty); err != nil {
			s.logger.Error("release reserved stock failed",
				zap.Int64("productID", res.ref.ProductID),
				zap.Int64("quantity", res.qty),
				zap.Error(err))
		}
	}
}

// UpdateOrderStatus выполняет административный перевод заказа в новый статус
// с проверкой допустимости перехода. Запись условна по прочитанному статусу,
// поэтому параллельный перевод того же заказа не пройдёт проверку дважды.
func (s *Service) UpdateOrderStatus(ctx context.Context, orderID int64, status model.OrderStatus) (*model.Order, error) {
	order, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !CanTransition(order.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, order.Status, status)
	}

	if err := s.repo.UpdateOrderStatus(ctx, orderID, order.Status, status); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, order.Status, status)
		}
		return nil, err
	}

	return s.repo.GetOrderByID(ctx, orderID)
}
