package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/burhani/shop-system/internal/model"
	"github.com/burhani/shop-system/internal/repository"
)

// fakeRepo — потокобезопасная реализация Repository в памяти для тестов сервиса.
type fakeRepo struct {
	mu sync.Mutex

	units    map[string]*model.SellableUnit
	orders   map[int64]*model.Order
	payments map[int64]*model.Payment
	users    map[int64]*model.User

	nextOrderID   int64
	nextPaymentID int64
	nextUserID    int64

	createOrderErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		units:    make(map[string]*model.SellableUnit),
		orders:   make(map[int64]*model.Order),
		payments: make(map[int64]*model.Payment),
		users:    make(map[int64]*model.User),
	}
}

func unitKey(ref model.UnitRef) string {
	if ref.ColorVariantID == nil {
		return fmt.Sprintf("p%d", ref.ProductID)
	}
	return fmt.Sprintf("p%d/v%d", ref.ProductID, *ref.ColorVariantID)
}

func (f *fakeRepo) addUnit(u model.SellableUnit) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := u
	f.units[unitKey(u.Ref)] = &cp
}

func (f *fakeRepo) stock(ref model.UnitRef) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.units[unitKey(ref)].Stock
}

func (f *fakeRepo) orderCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.orders)
}

func (f *fakeRepo) Close() error { return nil }

func (f *fakeRepo) ResolveUnit(ctx context.Context, ref model.UnitRef) (*model.SellableUnit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.units[unitKey(ref)]
	if !ok {
		return nil, repository.ErrUnitNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeRepo) ReserveStock(ctx context.Context, ref model.UnitRef, qty int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.units[unitKey(ref)]
	if !ok || !u.IsActive {
		return 0, repository.ErrUnitNotFound
	}
	if u.Stock < qty {
		return u.Stock, repository.ErrInsufficientStock
	}
	u.Stock -= qty
	return 0, nil
}

func (f *fakeRepo) ReleaseStock(ctx context.Context, ref model.UnitRef, qty int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.units[unitKey(ref)]
	if !ok {
		return repository.ErrUnitNotFound
	}
	u.Stock += qty
	return nil
}

func (f *fakeRepo) GetCategories(ctx context.Context) ([]model.Category, error) {
	return nil, nil
}

func (f *fakeRepo) GetProducts(ctx context.Context, categoryID *int64, limit int) ([]model.Product, error) {
	return nil, nil
}

func (f *fakeRepo) GetProductByID(ctx context.Context, id int64) (*model.Product, error) {
	return nil, repository.ErrUnitNotFound
}

func (f *fakeRepo) CreateOrder(ctx context.Context, order *model.Order, payment *model.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createOrderErr != nil {
		return f.createOrderErr
	}

	f.nextOrderID++
	order.ID = f.nextOrderID
	order.CreatedAt = time.Now()
	for i := range order.Items {
		order.Items[i].ID = int64(i + 1)
		order.Items[i].OrderID = order.ID
	}

	f.nextPaymentID++
	payment.ID = f.nextPaymentID
	payment.OrderID = order.ID
	payment.CreatedAt = order.CreatedAt

	ocp := *order
	ocp.Items = append([]model.OrderItem(nil), order.Items...)
	f.orders[order.ID] = &ocp

	pcp := *payment
	f.payments[order.ID] = &pcp

	return nil
}

func (f *fakeRepo) GetOrderByID(ctx context.Context, id int64) (*model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	o, ok := f.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	cp := *o
	cp.Items = append([]model.OrderItem(nil), o.Items...)
	return &cp, nil
}

func (f *fakeRepo) GetOrdersByUser(ctx context.Context, userID int64, limit int) ([]model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var res []model.Order
	for _, o := range f.orders {
		if o.UserID != nil && *o.UserID == userID {
			res = append(res, *o)
		}
	}
	return res, nil
}

func (f *fakeRepo) UpdateOrderStatus(ctx context.Context, id int64, from, to model.OrderStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	o, ok := f.orders[id]
	if !ok {
		return repository.ErrOrderNotFound
	}
	if o.Status != from {
		return repository.ErrStatusConflict
	}
	o.Status = to
	now := time.Now()
	switch to {
	case model.OrderStatusConfirmed:
		if o.ConfirmedAt == nil {
			o.ConfirmedAt = &now
		}
	case model.OrderStatusShipped:
		if o.ShippedAt == nil {
			o.ShippedAt = &now
		}
	case model.OrderStatusDelivered:
		if o.DeliveredAt == nil {
			o.DeliveredAt = &now
		}
	}
	return nil
}

func (f *fakeRepo) GetPaymentByOrderID(ctx context.Context, orderID int64) (*model.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.payments[orderID]
	if !ok {
		return nil, repository.ErrPaymentNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeRepo) SetGatewayOrder(ctx context.Context, orderID int64, gatewayOrderID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.payments[orderID]
	if !ok {
		return repository.ErrPaymentNotFound
	}
	p.GatewayOrderID = &gatewayOrderID
	p.Status = model.PaymentStatusProcessing
	return nil
}

func (f *fakeRepo) CompletePayment(ctx context.Context, orderID int64, gatewayOrderID, gatewayPaymentID, signature string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.payments[orderID]
	if !ok {
		return repository.ErrPaymentNotFound
	}
	o, ok := f.orders[orderID]
	if !ok {
		return repository.ErrOrderNotFound
	}
	if o.Status != model.OrderStatusPending {
		return repository.ErrStatusConflict
	}

	now := time.Now()
	p.Status = model.PaymentStatusCompleted
	p.GatewayOrderID = &gatewayOrderID
	p.GatewayPaymentID = &gatewayPaymentID
	p.GatewaySignature = &signature
	p.FailureReason = nil
	p.CompletedAt = &now

	o.Status = model.OrderStatusConfirmed
	if o.ConfirmedAt == nil {
		o.ConfirmedAt = &now
	}
	return nil
}

func (f *fakeRepo) FailPayment(ctx context.Context, orderID int64, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.payments[orderID]
	if !ok {
		return repository.ErrPaymentNotFound
	}
	p.Status = model.PaymentStatusFailed
	p.FailureReason = &reason
	return nil
}

func (f *fakeRepo) CreateUser(ctx context.Context, email, phone *string, fullName string, passwordHash []byte) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if email != nil && u.Email != nil && *u.Email == *email {
			return 0, repository.ErrUserExists
		}
		if phone != nil && u.Phone != nil && *u.Phone == *phone {
			return 0, repository.ErrUserExists
		}
	}

	f.nextUserID++
	f.users[f.nextUserID] = &model.User{
		ID:           f.nextUserID,
		Email:        email,
		Phone:        phone,
		FullName:     fullName,
		PasswordHash: passwordHash,
		Role:         model.RoleCustomer,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}
	return f.nextUserID, nil
}

func (f *fakeRepo) GetUserByIdentifier(ctx context.Context, identifier string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if (u.Email != nil && *u.Email == identifier) || (u.Phone != nil && *u.Phone == identifier) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeRepo) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}
