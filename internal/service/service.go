// Package service реализует бизнес-логику интернет-магазина.
package service

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"errors"

	"go.uber.org/zap"

	"github.com/burhani/shop-system/internal/gateway"
	"github.com/burhani/shop-system/internal/model"
	"github.com/burhani/shop-system/internal/repository"
)

// SellableUnitRepository описывает контракт каталога и складского учёта.
type SellableUnitRepository interface {
	ResolveUnit(ctx context.Context, ref model.UnitRef) (*model.SellableUnit, error)
	ReserveStock(ctx context.Context, ref model.UnitRef, qty int64) (int64, error)
	ReleaseStock(ctx context.Context, ref model.UnitRef, qty int64) error
	GetCategories(ctx context.Context) ([]model.Category, error)
	GetProducts(ctx context.Context, categoryID *int64, limit int) ([]model.Product, error)
	GetProductByID(ctx context.Context, id int64) (*model.Product, error)
}

// OrderRepository описывает контракт хранения заказов.
type OrderRepository interface {
	CreateOrder(ctx context.Context, order *model.Order, payment *model.Payment) error
	GetOrderByID(ctx context.Context, id int64) (*model.Order, error)
	GetOrdersByUser(ctx context.Context, userID int64, limit int) ([]model.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, from, to model.OrderStatus) error
}

// PaymentRepository описывает контракт хранения платежей.
type PaymentRepository interface {
	GetPaymentByOrderID(ctx context.Context, orderID int64) (*model.Payment, error)
	SetGatewayOrder(ctx context.Context, orderID int64, gatewayOrderID string) error
	CompletePayment(ctx context.Context, orderID int64, gatewayOrderID, gatewayPaymentID, signature string) error
	FailPayment(ctx context.Context, orderID int64, reason string) error
}

// UserRepository описывает контракт хранения пользователей.
type UserRepository interface {
	CreateUser(ctx context.Context, email, phone *string, fullName string, passwordHash []byte) (int64, error)
	GetUserByIdentifier(ctx context.Context, identifier string) (*model.User, error)
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
}

// Repository объединяет все контракты доступа к данным, используемые сервисом.
type Repository interface {
	SellableUnitRepository
	OrderRepository
	PaymentRepository
	UserRepository
	Close() error
}

// GatewayClient описывает контракт клиента платёжного шлюза.
type GatewayClient interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*gateway.GatewayOrder, error)
	KeyID() string
}

// Service содержит бизнес-логику магазина.
type Service struct {
	repo          Repository
	gatewayClient GatewayClient
	gatewaySecret []byte
	shipping      ShippingPolicy
	logger        *zap.Logger
}

// NewService создаёт новый сервис. gatewayClient может быть nil, если шлюз не сконфигурирован.
func NewService(repo Repository, gatewayClient GatewayClient, gatewaySecret string, shipping ShippingPolicy, logger *zap.Logger) *Service {
	return &Service{
		repo:          repo,
		gatewayClient: gatewayClient,
		gatewaySecret: []byte(gatewaySecret),
		shipping:      shipping,
		logger:        logger,
	}
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}

// RegisterUser регистрирует нового пользователя по email или телефону.
func (s *Service) RegisterUser(ctx context.Context, email, phone *string, fullName, password string) (int64, error) {
	hashed := hashPassword(primaryIdentifier(email, phone), password)
	return s.repo.CreateUser(ctx, email, phone, fullName, hashed)
}

// AuthenticateUser проверяет идентификатор и пароль пользователя и возвращает его учётную запись.
func (s *Service) AuthenticateUser(ctx context.Context, identifier, password string) (*model.User, error) {
	u, err := s.repo.GetUserByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}

	hashed := hashPassword(primaryIdentifier(u.Email, u.Phone), password)
	if subtle.ConstantTimeCompare(hashed, u.PasswordHash) != 1 {
		return nil, ErrInvalidCredentials
	}

	if !u.IsActive {
		return nil, ErrInvalidCredentials
	}

	return u, nil
}

func primaryIdentifier(email, phone *string) string {
	if email != nil && *email != "" {
		return *email
	}
	if phone != nil {
		return *phone
	}
	return ""
}

func hashPassword(identifier, password string) []byte {
	sum := sha256.Sum256([]byte(identifier + ":" + password))
	return sum[:]
}

// GetCategories возвращает активные категории каталога.
func (s *Service) GetCategories(ctx context.Context) ([]model.Category, error) {
	return s.repo.GetCategories(ctx)
}

// GetProducts возвращает активные товары каталога.
func (s *Service) GetProducts(ctx context.Context, categoryID *int64, limit int) ([]model.Product, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.GetProducts(ctx, categoryID, limit)
}

// GetProductByID возвращает товар с изображениями и цветовыми вариантами.
func (s *Service) GetProductByID(ctx context.Context, id int64) (*model.Product, error) {
	return s.repo.GetProductByID(ctx, id)
}

// GetOrdersByUser возвращает заказы пользователя, новые первыми.
func (s *Service) GetOrdersByUser(ctx context.Context, userID int64, limit int) ([]model.Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.GetOrdersByUser(ctx, userID, limit)
}

// AuthorizeAdmin проверяет, что пользователь существует и имеет роль администратора.
func (s *Service) AuthorizeAdmin(ctx context.Context, userID int64) error {
	u, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrAccessDenied
		}
		return err
	}
	if u.Role != model.RoleAdmin || !u.IsActive {
		return ErrAccessDenied
	}
	return nil
}

// GetOrder возвращает заказ по идентификатору с проверкой владельца.
// Заказ доступен его владельцу и администратору.
func (s *Service) GetOrder(ctx context.Context, orderID int64, actingUserID *int64) (*model.Order, error) {
	order, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.UserID == nil {
		return order, nil
	}

	if actingUserID == nil {
		return nil, ErrAccessDenied
	}

	if *order.UserID == *actingUserID {
		return order, nil
	}

	u, err := s.repo.GetUserByID(ctx, *actingUserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrAccessDenied
		}
		return nil, err
	}
	if u.Role != model.RoleAdmin {
		return nil, ErrAccessDenied
	}

	return order, nil
}
