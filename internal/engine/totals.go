package engine

import (
	"cart/internal/domain/model"

	"github.com/shopspring/decimal"
)

// 税率は固定10%。
var taxRate = decimal.RequireFromString("0.10")

// 現在状態から導出する金額。保存はしない（毎回再計算が正）。
type Totals struct {
	Subtotal           decimal.Decimal `json:"subtotal"`
	DiscountAmount     decimal.Decimal `json:"discount_amount"`
	DiscountedSubtotal decimal.Decimal `json:"discounted_subtotal"`
	Tax                decimal.Decimal `json:"tax"`
	Total              decimal.Decimal `json:"total"`
	ItemCount          int64           `json:"item_count"`
}

// 計算順序が重要：
// 明細ごとの割引を引いた残額にクーポン割引を掛ける
// （定価にそのまま掛けると同じ金額を二重に割り引いてしまう）。
// 税は max(0, 割引後小計) に掛ける。割引後小計そのものは負になり得る。
func computeTotals(s model.CartState) Totals {
	subtotal := decimal.Zero
	perItemDiscount := decimal.Zero
	var count int64

	for _, it := range s.Items {
		subtotal = subtotal.Add(it.GrossSubtotal())
		perItemDiscount = perItemDiscount.Add(it.DiscountAmount())
		count += it.Quantity
	}

	afterItemDiscount := subtotal.Sub(perItemDiscount)
	globalDiscount := afterItemDiscount.Mul(s.GlobalDiscountRate)
	totalDiscount := perItemDiscount.Add(globalDiscount)
	discountedSubtotal := subtotal.Sub(totalDiscount)

	taxBase := discountedSubtotal
	if taxBase.IsNegative() {
		taxBase = decimal.Zero
	}
	tax := taxBase.Mul(taxRate)

	return Totals{
		Subtotal:           subtotal,
		DiscountAmount:     totalDiscount,
		DiscountedSubtotal: discountedSubtotal,
		Tax:                tax,
		Total:              discountedSubtotal.Add(tax),
		ItemCount:          count,
	}
}
