package engine

import (
	"strings"

	"github.com/shopspring/decimal"
)

// 有効なクーポンコード表。
var discountCodes = map[string]decimal.Decimal{
	"SAVE10": decimal.RequireFromString("0.10"),
	"SAVE15": decimal.RequireFromString("0.15"),
}

// 前後の空白を除いて大文字に正規化してから引く。
func lookupDiscountCode(code string) (string, decimal.Decimal, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return "", decimal.Zero, false
	}
	rate, ok := discountCodes[normalized]
	return normalized, rate, ok
}
