// Package messenger формирует текст заказа и ссылку для отправки через WhatsApp.
package messenger

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/burhani/shop-system/internal/model"
	"github.com/burhani/shop-system/internal/money"
)

const whatsAppSendURL = "https://api.whatsapp.com/send"

// OrderMessage формирует текстовую сводку заказа для отправки продавцу.
// Все данные берутся из собранного заказа: позиции содержат снимки
// названия, размера и цвета на момент оформления.
func OrderMessage(order *model.Order) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Новый заказ #%d\n", order.ID)
	fmt.Fprintf(&b, "Покупатель: %s\n", order.CustomerName)
	fmt.Fprintf(&b, "Телефон: %s\n", order.CustomerPhone)
	if order.ShippingAddress != "" {
		fmt.Fprintf(&b, "Адрес: %s\n", order.ShippingAddress)
	}
	b.WriteString("\nПозиции:\n")

	for i, item := range order.Items {
		fmt.Fprintf(&b, "%d. %s", i+1, item.ProductName)
		if item.SelectedSize != nil && *item.SelectedSize != "" {
			fmt.Fprintf(&b, ", размер %s", *item.SelectedSize)
		}
		if item.SelectedColor != nil && *item.SelectedColor != "" {
			fmt.Fprintf(&b, ", цвет %s", *item.SelectedColor)
		}
		fmt.Fprintf(&b, " x%d = ₹%.2f\n", item.Quantity, money.ToRupees(item.TotalPrice))
	}

	fmt.Fprintf(&b, "\nДоставка: ₹%.2f\n", money.ToRupees(order.ShippingCost))
	fmt.Fprintf(&b, "Итого: ₹%.2f\n", money.ToRupees(order.TotalAmount))
	b.WriteString("Оплата: при получении или по договорённости")

	return b.String()
}

// OrderLink возвращает ссылку api.whatsapp.com/send с предзаполненным
// текстом заказа для указанного номера продавца.
func OrderLink(sellerPhone string, order *model.Order) string {
	params := url.Values{}
	params.Set("phone", strings.TrimPrefix(sellerPhone, "+"))
	params.Set("text", OrderMessage(order))
	return whatsAppSendURL + "?" + params.Encode()
}
