package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/burhani/shop-system/internal/gateway"
	"github.com/burhani/shop-system/internal/model"
	"github.com/burhani/shop-system/internal/repository"
)

type stubGateway struct {
	order *gateway.GatewayOrder
	err   error

	lastAmount  int64
	lastReceipt string
}

func (s *stubGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*gateway.GatewayOrder, error) {
	s.lastAmount = amount
	s.lastReceipt = receipt
	return s.order, s.err
}

func (s *stubGateway) KeyID() string {
	return "key-id"
}

func placeTestOrder(t *testing.T, svc *Service) *model.Order {
	t.Helper()

	order, err := svc.PlaceOrder(context.Background(), []CartLine{
		{ProductID: 1, Quantity: 2},
	}, testCustomer(), model.PaymentMethodGateway, nil)
	if err != nil {
		t.Fatalf("PlaceOrder error: %v", err)
	}
	return order
}

func newPaymentTestService(repo Repository, gw GatewayClient) *Service {
	return NewService(repo, gw, "test-gateway-secret", testShipping, zap.NewNop())
}

func newStockedRepo() *fakeRepo {
	repo := newFakeRepo()
	repo.addUnit(model.SellableUnit{
		Ref: model.UnitRef{ProductID: 1}, ProductName: "Kurta",
		OriginalPrice: 10000, DiscountedPrice: ptrInt64(8000),
		Stock: 5, IsActive: true,
	})
	return repo
}

func TestCreateGatewayOrder_Success(t *testing.T) {
	repo := newStockedRepo()
	gw := &stubGateway{order: &gateway.GatewayOrder{ID: "gw_order_1"}}
	svc := newPaymentTestService(repo, gw)

	order := placeTestOrder(t, svc)

	res, err := svc.CreateGatewayOrder(context.Background(), order.ID, order.TotalAmount)
	if err != nil {
		t.Fatalf("CreateGatewayOrder error: %v", err)
	}
	if res.GatewayOrderID != "gw_order_1" {
		t.Fatalf("gateway order id = %q, want gw_order_1", res.GatewayOrderID)
	}
	if res.KeyID != "key-id" {
		t.Fatalf("key id = %q, want key-id", res.KeyID)
	}
	if gw.lastAmount != order.TotalAmount {
		t.Fatalf("gateway amount = %d, want %d", gw.lastAmount, order.TotalAmount)
	}
	if gw.lastReceipt == "" {
		t.Fatalf("empty gateway receipt")
	}

	payment, err := repo.GetPaymentByOrderID(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("GetPaymentByOrderID error: %v", err)
	}
	if payment.Status != model.PaymentStatusProcessing {
		t.Fatalf("payment status = %s, want processing", payment.Status)
	}
	if payment.GatewayOrderID == nil || *payment.GatewayOrderID != "gw_order_1" {
		t.Fatalf("gateway order id not stored: %+v", payment)
	}
}

func TestCreateGatewayOrder_AmountMismatch(t *testing.T) {
	repo := newStockedRepo()
	gw := &stubGateway{order: &gateway.GatewayOrder{ID: "gw_order_1"}}
	svc := newPaymentTestService(repo, gw)

	order := placeTestOrder(t, svc)

	_, err := svc.CreateGatewayOrder(context.Background(), order.ID, order.TotalAmount+500)
	if !errors.Is(err, ErrAmountMismatch) {
		t.Fatalf("err = %v, want ErrAmountMismatch", err)
	}
	if gw.lastAmount != 0 {
		t.Fatalf("gateway contacted despite amount mismatch")
	}
}

func TestCreateGatewayOrder_WithinEpsilon(t *testing.T) {
	repo := newStockedRepo()
	gw := &stubGateway{order: &gateway.GatewayOrder{ID: "gw_order_1"}}
	svc := newPaymentTestService(repo, gw)

	order := placeTestOrder(t, svc)

	// Расхождение в одну пайсу допустимо из-за округления на границе API.
	if _, err := svc.CreateGatewayOrder(context.Background(), order.ID, order.TotalAmount+1); err != nil {
		t.Fatalf("CreateGatewayOrder error: %v", err)
	}
	if gw.lastAmount != order.TotalAmount {
		t.Fatalf("gateway amount = %d, want stored total %d", gw.lastAmount, order.TotalAmount)
	}
}

func TestCreateGatewayOrder_NotConfigured(t *testing.T) {
	repo := newStockedRepo()
	svc := newPaymentTestService(repo, nil)

	order := placeTestOrder(t, svc)

	_, err := svc.CreateGatewayOrder(context.Background(), order.ID, order.TotalAmount)
	if !errors.Is(err, ErrGatewayUnavailable) {
		t.Fatalf("err = %v, want ErrGatewayUnavailable", err)
	}
}

func TestConfirmPayment_ValidSignature(t *testing.T) {
	repo := newStockedRepo()
	svc := newPaymentTestService(repo, nil)

	order := placeTestOrder(t, svc)
	stockBefore := repo.stock(model.UnitRef{ProductID: 1})

	sig := gateway.Sign([]byte("test-gateway-secret"), "gw_order_1", "gw_pay_1")

	if err := svc.ConfirmPayment(context.Background(), order.ID, "gw_order_1", "gw_pay_1", sig); err != nil {
		t.Fatalf("ConfirmPayment error: %v", err)
	}

	got, err := repo.GetOrderByID(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("GetOrderByID error: %v", err)
	}
	if got.Status != model.OrderStatusConfirmed {
		t.Fatalf("order status = %s, want confirmed", got.Status)
	}
	if got.ConfirmedAt == nil {
		t.Fatalf("confirmedAt not stamped")
	}

	payment, err := repo.GetPaymentByOrderID(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("GetPaymentByOrderID error: %v", err)
	}
	if payment.Status != model.PaymentStatusCompleted {
		t.Fatalf("payment status = %s, want completed", payment.Status)
	}
	if payment.CompletedAt == nil {
		t.Fatalf("completedAt not stamped")
	}
	if payment.GatewayPaymentID == nil || *payment.GatewayPaymentID != "gw_pay_1" {
		t.Fatalf("gateway payment id not stored")
	}

	// Подтверждение платежа не трогает складские остатки.
	if got := repo.stock(model.UnitRef{ProductID: 1}); got != stockBefore {
		t.Fatalf("stock changed by payment confirmation: %d -> %d", stockBefore, got)
	}
}

func TestConfirmPayment_TamperedSignature(t *testing.T) {
	repo := newStockedRepo()
	svc := newPaymentTestService(repo, nil)

	order := placeTestOrder(t, svc)

	sig := gateway.Sign([]byte("test-gateway-secret"), "gw_order_1", "gw_pay_1")
	flipped := string(sig[0]^1) + sig[1:]

	err := svc.ConfirmPayment(context.Background(), order.ID, "gw_order_1", "gw_pay_1", flipped)
	if !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("err = %v, want ErrSignatureInvalid", err)
	}

	got, err := repo.GetOrderByID(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("GetOrderByID error: %v", err)
	}
	if got.Status != model.OrderStatusPending {
		t.Fatalf("order status = %s, want pending (unchanged)", got.Status)
	}

	payment, err := repo.GetPaymentByOrderID(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("GetPaymentByOrderID error: %v", err)
	}
	if payment.Status != model.PaymentStatusFailed {
		t.Fatalf("payment status = %s, want failed", payment.Status)
	}
	if payment.FailureReason == nil || *payment.FailureReason == "" {
		t.Fatalf("failure reason not recorded")
	}

	// Неуспешный платёж не возвращает остатки на склад.
	if got := repo.stock(model.UnitRef{ProductID: 1}); got != 3 {
		t.Fatalf("stock = %d, want 3", got)
	}
}

func TestConfirmPayment_UnknownOrder(t *testing.T) {
	repo := newStockedRepo()
	svc := newPaymentTestService(repo, nil)

	err := svc.ConfirmPayment(context.Background(), 99, "gw_order_1", "gw_pay_1", "sig")
	if !errors.Is(err, repository.ErrOrderNotFound) {
		t.Fatalf("err = %v, want ErrOrderNotFound", err)
	}
}

func TestConfirmPayment_CancelledOrder(t *testing.T) {
	repo := newStockedRepo()
	svc := newPaymentTestService(repo, nil)

	order := placeTestOrder(t, svc)
	if _, err := svc.UpdateOrderStatus(context.Background(), order.ID, model.OrderStatusCancelled); err != nil {
		t.Fatalf("cancel order error: %v", err)
	}

	sig := gateway.Sign([]byte("test-gateway-secret"), "gw_order_1", "gw_pay_1")

	err := svc.ConfirmPayment(context.Background(), order.ID, "gw_order_1", "gw_pay_1", sig)
	if !errors.Is(err, ErrInvalidStatusTransition) {
		t.Fatalf("err = %v, want ErrInvalidStatusTransition", err)
	}

	got, err := repo.GetOrderByID(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("GetOrderByID error: %v", err)
	}
	if got.Status != model.OrderStatusCancelled {
		t.Fatalf("order status = %s, want cancelled (unchanged)", got.Status)
	}

	payment, err := repo.GetPaymentByOrderID(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("GetPaymentByOrderID error: %v", err)
	}
	if payment.Status == model.PaymentStatusCompleted {
		t.Fatalf("payment completed for a cancelled order")
	}
}

func TestConfirmPayment_DeliveredOrder(t *testing.T) {
	repo := newStockedRepo()
	svc := newPaymentTestService(repo, nil)

	order := placeTestOrder(t, svc)
	for _, status := range []model.OrderStatus{
		model.OrderStatusConfirmed, model.OrderStatusProcessing,
		model.OrderStatusShipped, model.OrderStatusDelivered,
	} {
		if _, err := svc.UpdateOrderStatus(context.Background(), order.ID, status); err != nil {
			t.Fatalf("UpdateOrderStatus(%s) error: %v", status, err)
		}
	}

	sig := gateway.Sign([]byte("test-gateway-secret"), "gw_order_1", "gw_pay_1")

	err := svc.ConfirmPayment(context.Background(), order.ID, "gw_order_1", "gw_pay_1", sig)
	if !errors.Is(err, ErrInvalidStatusTransition) {
		t.Fatalf("err = %v, want ErrInvalidStatusTransition", err)
	}

	got, err := repo.GetOrderByID(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("GetOrderByID error: %v", err)
	}
	if got.Status != model.OrderStatusDelivered {
		t.Fatalf("order status = %s, want delivered (unchanged)", got.Status)
	}
}
