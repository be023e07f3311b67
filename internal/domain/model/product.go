package model

import (
	"github.com/shopspring/decimal"
)

// カタログ側から渡ってくる商品スナップショット。
// discount は %（0〜100）。未指定は0扱い。
type Product struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	ImageURL string          `json:"image,omitempty"`
	Category string          `json:"category,omitempty"`
	Discount decimal.Decimal `json:"discount"`
}
