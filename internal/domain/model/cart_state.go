package model

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/shopspring/decimal"
)

func init() {
	// 保存フォーマットは価格を数値で持つ（旧実装との互換）。
	decimal.MarshalJSONWithoutQuotes = true
}

// カートの状態。明細は追加順を保持する。
// globalDiscountRate は適用中クーポンの割引率（0.0〜1.0、同時に1つだけ）。
type CartState struct {
	Items              []LineItem
	GlobalDiscountRate decimal.Decimal
}

func NewCartState() CartState {
	return CartState{Items: []LineItem{}, GlobalDiscountRate: decimal.Zero}
}

// 保存フォーマット（envelope）。
type cartEnvelope struct {
	Items        []LineItem      `json:"items"`
	DiscountRate decimal.Decimal `json:"discountRate"`
}

var ErrMalformedState = errors.New("malformed cart state")

// EncodeState は常にenvelope形式で書き出す。
func EncodeState(s CartState) ([]byte, error) {
	items := s.Items
	if items == nil {
		items = []LineItem{}
	}
	return json.Marshal(cartEnvelope{
		Items:        items,
		DiscountRate: s.GlobalDiscountRate,
	})
}

// DecodeState はenvelope形式と旧形式（明細の素の配列）の両方を読む。
// 旧形式の割引率は0。
func DecodeState(data []byte) (CartState, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return CartState{}, ErrMalformedState
	}

	// 旧形式判定：先頭が '[' なら素の配列
	if trimmed[0] == '[' {
		var items []LineItem
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return CartState{}, ErrMalformedState
		}
		return CartState{Items: items, GlobalDiscountRate: decimal.Zero}, nil
	}

	var env cartEnvelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return CartState{}, ErrMalformedState
	}
	if env.Items == nil {
		env.Items = []LineItem{}
	}
	return CartState{Items: env.Items, GlobalDiscountRate: env.DiscountRate}, nil
}
