package service

import "github.com/burhani/shop-system/internal/model"

// allowedTransitions описывает машину состояний заказа.
// Основная цепочка: pending → confirmed → processing → shipped → delivered.
// Отмена возможна из pending и confirmed. Возврат (refunded) — административное
// действие, допустимое из любого статуса, включая терминальные.
var allowedTransitions = map[model.OrderStatus]map[model.OrderStatus]bool{
	model.OrderStatusPending: {
		model.OrderStatusConfirmed: true,
		model.OrderStatusCancelled: true,
		model.OrderStatusRefunded:  true,
	},
	model.OrderStatusConfirmed: {
		model.OrderStatusProcessing: true,
		model.OrderStatusCancelled:  true,
		model.OrderStatusRefunded:   true,
	},
	model.OrderStatusProcessing: {
		model.OrderStatusShipped:  true,
		model.OrderStatusRefunded: true,
	},
	model.OrderStatusShipped: {
		model.OrderStatusDelivered: true,
		model.OrderStatusRefunded:  true,
	},
	model.OrderStatusDelivered: {
		model.OrderStatusRefunded: true,
	},
	model.OrderStatusCancelled: {
		model.OrderStatusRefunded: true,
	},
	model.OrderStatusRefunded: {},
}

// CanTransition сообщает, допустим ли перевод заказа из статуса from в статус to.
func CanTransition(from, to model.OrderStatus) bool {
	return allowedTransitions[from][to]
}
