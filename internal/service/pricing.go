package service

import "github.com/burhani/shop-system/internal/model"

// ShippingPolicy описывает тарифную сетку доставки. Все значения в пайсах.
// Границы: [0, Low) — BaseFee; [Low, High] — ReducedFee; (High, ∞) — бесплатно.
type ShippingPolicy struct {
	LowThreshold  int64
	HighThreshold int64
	BaseFee       int64
	ReducedFee    int64
}

// UnitPrice возвращает действующую цену единицы продажи: скидочную, если она
// задана и положительна, иначе исходную. Нулевая скидочная цена означает
// отсутствие скидки, а не бесплатный товар.
func UnitPrice(unit *model.SellableUnit) int64 {
	if unit.DiscountedPrice != nil && *unit.DiscountedPrice > 0 {
		return *unit.DiscountedPrice
	}
	return unit.OriginalPrice
}

// LineTotal возвращает стоимость позиции.
func LineTotal(unitPrice, quantity int64) int64 {
	return unitPrice * quantity
}

// Cost возвращает стоимость доставки для указанной промежуточной суммы заказа.
func (p ShippingPolicy) Cost(subtotal int64) int64 {
	switch {
	case subtotal <= 0:
		return 0
	case subtotal < p.LowThreshold:
		return p.BaseFee
	case subtotal <= p.HighThreshold:
		return p.ReducedFee
	default:
		return 0
	}
}
