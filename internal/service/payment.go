package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/burhani/shop-system/internal/gateway"
	"github.com/burhani/shop-system/internal/model"
	"github.com/burhani/shop-system/internal/repository"
)

// Сравнение сумм допускает расхождение в одну пайсу: на границе API суммы
// передаются в рупиях с двумя знаками после запятой.
const amountEpsilonPaise = 1

// GatewayOrderResult содержит данные созданного в шлюзе заказа для клиентского приложения.
type GatewayOrderResult struct {
	GatewayOrderID string
	Amount         int64
	Currency       string
	KeyID          string
}

// CreateGatewayOrder создаёт заказ в платёжном шлюзе для уже оформленного заказа.
// Запрошенная сумма обязана совпадать с сохранённой суммой заказа.
func (s *Service) CreateGatewayOrder(ctx context.Context, orderID int64, amount int64) (*GatewayOrderResult, error) {
	if s.gatewayClient == nil {
		return nil, ErrGatewayUnavailable
	}

	order, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if diff := amount - order.TotalAmount; diff > amountEpsilonPaise || diff < -amountEpsilonPaise {
		return nil, fmt.Errorf("%w: requested %d, order total %d", ErrAmountMismatch, amount, order.TotalAmount)
	}

	payment, err := s.repo.GetPaymentByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	receipt := fmt.Sprintf("order_%d", order.ID)
	gwOrder, err := s.gatewayClient.CreateOrder(ctx, order.TotalAmount, payment.Currency, receipt)
	if err != nil {
		return nil, fmt.Errorf("gateway create order: %w", err)
	}

	if err := s.repo.SetGatewayOrder(ctx, orderID, gwOrder.ID); err != nil {
		return nil, err
	}

	return &GatewayOrderResult{
		GatewayOrderID: gwOrder.ID,
		Amount:         order.TotalAmount,
		Currency:       payment.Currency,
		KeyID:          s.gatewayClient.KeyID(),
	}, nil
}

// ConfirmPayment проверяет подпись платёжного обратного вызова.
// При совпадении платёж завершается и заказ переходит в confirmed; при
// несовпадении платёж помечается неуспешным, статус заказа не меняется.
// Складские остатки в любом случае не затрагиваются: они были списаны
// при оформлении заказа.
func (s *Service) ConfirmPayment(ctx context.Context, orderID int64, gatewayOrderID, gatewayPaymentID, signature string) error {
	order, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return err
	}

	payment, err := s.repo.GetPaymentByOrderID(ctx, orderID)
	if err != nil {
		return err
	}

	if !gateway.VerifySignature(s.gatewaySecret, gatewayOrderID, gatewayPaymentID, signature) {
		if failErr := s.repo.FailPayment(ctx, orderID, "invalid payment signature"); failErr != nil {
			s.logger.Error("mark payment failed",
				zap.Int64("orderID", orderID),
				zap.Error(failErr))
		}
		return ErrSignatureInvalid
	}

	// Подтверждение подчиняется машине состояний заказа: отменённый,
	// доставленный или возвращённый заказ не возвращается в confirmed.
	if !CanTransition(order.Status, model.OrderStatusConfirmed) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, order.Status, model.OrderStatusConfirmed)
	}

	if diff := payment.Amount - order.TotalAmount; diff > amountEpsilonPaise || diff < -amountEpsilonPaise {
		return fmt.Errorf("%w: payment %d, order total %d", ErrAmountMismatch, payment.Amount, order.TotalAmount)
	}

	if err := s.repo.CompletePayment(ctx, orderID, gatewayOrderID, gatewayPaymentID, signature); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return fmt.Errorf("%w: order is no longer pending", ErrInvalidStatusTransition)
		}
		return err
	}

	return nil
}
