// Package money содержит преобразования денежных сумм между рупиями и пайсами.
// Внутри системы все суммы хранятся и считаются в пайсах (int64),
// float64 допустим только на границе API.
package money

import "github.com/shopspring/decimal"

// ToPaise переводит сумму в рупиях в пайсы без накопления двоичной погрешности.
func ToPaise(rupees float64) int64 {
	return decimal.NewFromFloat(rupees).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// ToRupees переводит сумму в пайсах в рупии для представления в API.
func ToRupees(paise int64) float64 {
	v, _ := decimal.NewFromInt(paise).Div(decimal.NewFromInt(100)).Float64()
	return v
}
