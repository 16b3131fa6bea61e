package service

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// DiscountPrice is round(original * (1 - percent/100)), halves rounded away from zero.
func DiscountPrice(original int64, percent int) int64 {
	factor := decimal.NewFromInt(1).Sub(decimal.NewFromInt(int64(percent)).Div(hundred))
	return decimal.NewFromInt(original).Mul(factor).Round(0).IntPart()
}

// DiscountPercent derives the percent from an explicit discounted price.
func DiscountPercent(original, discounted int64) int {
	if original <= 0 {
		return 0
	}
	diff := decimal.NewFromInt(original - discounted)
	return int(diff.Div(decimal.NewFromInt(original)).Mul(hundred).Round(0).IntPart())
}
