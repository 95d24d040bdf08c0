// Package model содержит доменные сущности интернет-магазина.
package model

import "time"

// UserRole описывает роль пользователя.
type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleCustomer UserRole = "customer"
)

// User представляет зарегистрированного пользователя магазина.
// Для аутентификации достаточно email или телефона.
type User struct {
	ID           int64
	Email        *string
	Phone        *string
	PasswordHash []byte
	FullName     string
	Role         UserRole
	IsActive     bool
	CreatedAt    time.Time
}

// Category описывает категорию каталога.
type Category struct {
	ID           int64
	Name         string
	Slug         string
	Type         *string
	Description  *string
	DisplayOrder int
	IsActive     bool
	CreatedAt    time.Time
}

// Product описывает товар каталога. Денежные поля хранятся в пайсах.
type Product struct {
	ID              int64
	Name            string
	Slug            string
	Description     *string
	OriginalPrice   int64
	DiscountedPrice *int64
	Stock           int64
	SKU             *string
	CategoryID      *int64
	Sizes           *string
	Colors          *string
	IsActive        bool
	IsFeatured      bool
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Images        []ProductImage
	ColorVariants []ColorVariant
}

// ProductImage описывает изображение товара. Может относиться к конкретному цветовому варианту.
type ProductImage struct {
	ID             int64
	ProductID      int64
	ColorVariantID *int64
	ImageURL       string
	AltText        *string
	DisplayOrder   int
	IsPrimary      bool
}

// ColorVariant описывает цветовой вариант товара с собственным остатком
// и необязательным переопределением цены.
type ColorVariant struct {
	ID              int64
	ProductID       int64
	ColorName       string
	OriginalPrice   *int64
	DiscountedPrice *int64
	Stock           int64
	IsActive        bool
}

// UnitRef идентифицирует единицу продажи: товар или конкретный цветовой вариант товара.
type UnitRef struct {
	ProductID      int64
	ColorVariantID *int64
}

// SellableUnit представляет разрешённую единицу продажи с актуальной ценой и остатком.
type SellableUnit struct {
	Ref             UnitRef
	ProductName     string
	ProductSKU      *string
	OriginalPrice   int64
	DiscountedPrice *int64
	Stock           int64
	IsActive        bool
}

// OrderStatus описывает статус обработки заказа.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
)

// PaymentStatus описывает статус платежа.
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusCompleted  PaymentStatus = "completed"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusRefunded   PaymentStatus = "refunded"
)

// PaymentMethod описывает способ оплаты заказа.
type PaymentMethod string

const (
	PaymentMethodGateway  PaymentMethod = "gateway"
	PaymentMethodWhatsApp PaymentMethod = "whatsapp"
	PaymentMethodCOD      PaymentMethod = "cod"
)

// Order описывает заказ покупателя. Суммы хранятся в пайсах.
type Order struct {
	ID              int64
	UserID          *int64
	CustomerName    string
	CustomerEmail   *string
	CustomerPhone   string
	ShippingAddress string
	ShippingCity    *string
	ShippingState   *string
	ShippingPincode *string
	Subtotal        int64
	ShippingCost    int64
	TotalAmount     int64
	Status          OrderStatus
	PaymentMethod   PaymentMethod
	CustomerNotes   *string
	CreatedAt       time.Time
	ConfirmedAt     *time.Time
	ShippedAt       *time.Time
	DeliveredAt     *time.Time

	Items []OrderItem
}

// OrderItem описывает позицию заказа. Название и цена товара копируются
// на момент оформления и не меняются при последующем изменении каталога.
type OrderItem struct {
	ID             int64
	OrderID        int64
	ProductID      int64
	ColorVariantID *int64
	ProductName    string
	ProductSKU     *string
	SelectedSize   *string
	SelectedColor  *string
	UnitPrice      int64
	Quantity       int64
	TotalPrice     int64
}

// Payment описывает платёж по заказу. На заказ приходится ровно один платёж.
type Payment struct {
	ID               int64
	OrderID          int64
	Method           PaymentMethod
	Status           PaymentStatus
	Amount           int64
	Currency         string
	GatewayOrderID   *string
	GatewayPaymentID *string
	GatewaySignature *string
	FailureReason    *string
	CreatedAt        time.Time
	CompletedAt      *time.Time
}
