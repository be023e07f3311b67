package model

import (
	"github.com/shopspring/decimal"
)

// カートの明細。1商品につき1件（同一商品は数量加算）。
// JSONのキー名は保存フォーマットに合わせる。
type LineItem struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	UnitPrice       decimal.Decimal `json:"price"`
	Quantity        int64           `json:"quantity"`
	ImageURL        string          `json:"image,omitempty"`
	Category        string          `json:"category,omitempty"`
	DiscountPercent decimal.Decimal `json:"discount"`
}

// 明細単体の割引額 = 単価 ×（discount/100）× 数量
func (it LineItem) DiscountAmount() decimal.Decimal {
	return it.UnitPrice.
		Mul(it.DiscountPercent.Div(decimal.NewFromInt(100))).
		Mul(decimal.NewFromInt(it.Quantity))
}

// 明細単体の定価小計 = 単価 × 数量
func (it LineItem) GrossSubtotal() decimal.Decimal {
	return it.UnitPrice.Mul(decimal.NewFromInt(it.Quantity))
}
