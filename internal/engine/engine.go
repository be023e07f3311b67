package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"cart/internal/domain/model"
	"cart/internal/notify"
	"cart/internal/storage"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

var (
	//400 id/name欠落
	ErrInvalidProduct = errors.New("invalid product")
	//400 コード不一致
	ErrUnknownCode = errors.New("unknown discount code")
	//400 空のままチェックアウト
	ErrEmptyCart = errors.New("cart is empty")
	//401 未ログイン
	ErrLoginRequired = errors.New("login required")
	//チェックアウト先が未接続
	ErrCheckoutUnavailable = errors.New("checkout unavailable")
)

const defaultDebounceWindow = 300 * time.Millisecond

// 表示側の差し替え口。無くてもエンジンは動く。
type Renderer interface {
	Render(s Snapshot) error
}

// 表示側に渡す読み取り専用の状態。
type Snapshot struct {
	Items  []model.LineItem `json:"items"`
	Totals Totals           `json:"totals"`
}

// 注文送信境界に渡す明細。
type CheckoutItem struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int64           `json:"quantity"`
	Discount decimal.Decimal `json:"discount"`
}

// 注文送信境界に渡すペイロード。
type CheckoutData struct {
	Items  []CheckoutItem `json:"items"`
	Totals Totals         `json:"totals"`
}

// 注文APIへの受け渡し境界。実体は外部。
type Submitter interface {
	Submit(ctx context.Context, userID string, data CheckoutData) (orderID string, err error)
}

// CartEngine はカート状態の唯一の所有者。
// 変更のたびに保存し、他セッションの書き込みは購読で取り込む（後勝ち）。
type CartEngine struct {
	id        string // 書き込み元トークン。自分のechoを受けないために使う
	key       string
	store     storage.Store
	notifier  notify.Notifier
	renderer  Renderer
	submitter Submitter

	mu    sync.Mutex
	state model.CartState

	deb    *debouncer
	cancel func()
	done   chan struct{}
}

// DI。notifier/renderer/submitter はnil可（notifierはログにフォールバック）。
// debounceWindow が0以下ならデフォルト（300ms）。
func New(
	st storage.Store,
	key string,
	notifier notify.Notifier,
	renderer Renderer,
	submitter Submitter,
	debounceWindow time.Duration,
) *CartEngine {
	if notifier == nil {
		notifier = notify.Default()
	}
	if debounceWindow <= 0 {
		debounceWindow = defaultDebounceWindow
	}

	e := &CartEngine{
		id:        uuid.NewString(),
		key:       key,
		store:     st,
		notifier:  notifier,
		renderer:  renderer,
		submitter: submitter,
		state:     model.NewCartState(),
		deb:       newDebouncer(debounceWindow),
		done:      make(chan struct{}),
	}

	e.hydrate()

	events, cancel := st.Subscribe(key, e.id)
	e.cancel = cancel
	go func() {
		defer close(e.done)
		for range events {
			e.reload()
		}
	}()

	return e
}

// 購読とタイマーを止める。保留中のデバウンス確定は破棄される。
func (e *CartEngine) Close() {
	e.deb.stop()
	e.cancel()
	<-e.done
}

// 保存済み状態の読み込み。壊れていたら空から始める（致命にしない）。
func (e *CartEngine) hydrate() {
	payload, err := e.store.Load(context.Background(), e.key)
	if errors.Is(err, storage.ErrNotFound) {
		return
	}
	if err != nil {
		log.WithError(err).WithField("key", e.key).Error("cart: load failed")
		return
	}

	state, err := model.DecodeState(payload)
	if err != nil {
		log.WithError(err).WithField("key", e.key).Warn("cart: stored state unreadable, starting empty")
		return
	}

	e.mu.Lock()
	e.state = state
	e.mu.Unlock()
}

// 他セッションの書き込みを取り込む。手元の状態は捨てて読み直す（後勝ち）。
func (e *CartEngine) reload() {
	payload, err := e.store.Load(context.Background(), e.key)
	if err != nil {
		log.WithError(err).WithField("key", e.key).Error("cart: reload failed")
		return
	}

	state, decErr := model.DecodeState(payload)
	if decErr != nil {
		log.WithError(decErr).WithField("key", e.key).Warn("cart: reloaded state unreadable")
		return
	}

	e.mu.Lock()
	e.state = state
	e.mu.Unlock()

	e.render()
}

// 商品を追加。同じ商品は数量を加算、新規は明細を末尾に追加。
// 数量の省略（0以下）は1扱い。
func (e *CartEngine) AddItem(ctx context.Context, p model.Product, qty int64) error {
	if p.ID == "" || p.Name == "" {
		e.notifier.Notify("invalid product", notify.SeverityWarning)
		return ErrInvalidProduct
	}
	if qty < 1 {
		qty = 1
	}

	e.mu.Lock()
	found := false
	for i := range e.state.Items {
		if e.state.Items[i].ID == p.ID {
			e.state.Items[i].Quantity += qty
			found = true
			break
		}
	}
	if !found {
		e.state.Items = append(e.state.Items, model.LineItem{
			ID:              p.ID,
			Name:            p.Name,
			UnitPrice:       p.Price,
			Quantity:        qty,
			ImageURL:        p.ImageURL,
			Category:        p.Category,
			DiscountPercent: p.Discount,
		})
	}
	e.persistLocked(ctx)
	e.mu.Unlock()

	e.render()
	e.notifier.Notify(p.Name+" added to cart", notify.SeveritySuccess)
	return nil
}

// 明細を削除。無ければ何もしない（エラーにもしない）。
func (e *CartEngine) RemoveItem(ctx context.Context, productID string) {
	e.mu.Lock()
	kept := e.state.Items[:0]
	for _, it := range e.state.Items {
		if it.ID != productID {
			kept = append(kept, it)
		}
	}
	e.state.Items = kept
	e.persistLocked(ctx)
	e.mu.Unlock()

	e.render()
	e.notifier.Notify("removed from cart", notify.SeverityInfo)
}

// 数量の絶対値セット。0以下は削除に委譲。対象が無ければ何もしない。
func (e *CartEngine) UpdateQuantity(ctx context.Context, productID string, qty int64) {
	if qty <= 0 {
		e.RemoveItem(ctx, productID)
		return
	}

	e.mu.Lock()
	found := false
	for i := range e.state.Items {
		if e.state.Items[i].ID == productID {
			e.state.Items[i].Quantity = qty
			found = true
			break
		}
	}
	if !found {
		e.mu.Unlock()
		return
	}
	e.persistLocked(ctx)
	e.mu.Unlock()

	e.render()
}

// 数量入力用。静止期間が過ぎてから UpdateQuantity を1回だけ呼ぶ。
func (e *CartEngine) UpdateQuantityDebounced(productID string, qty int64) {
	e.deb.schedule(productID, func() {
		e.UpdateQuantity(context.Background(), productID, qty)
	})
}

// 全明細を空にする。適用中のクーポンも外す。
// （確認ダイアログは表示側の責務。ここでは問答無用で消す）
func (e *CartEngine) Clear(ctx context.Context) {
	e.mu.Lock()
	e.state.Items = []model.LineItem{}
	e.state.GlobalDiscountRate = decimal.Zero
	e.persistLocked(ctx)
	e.mu.Unlock()

	e.render()
	e.notifier.Notify("cart cleared", notify.SeverityInfo)
}

// クーポン適用。後から適用したコードが前のを上書きする（重ね掛けなし）。
func (e *CartEngine) ApplyDiscountCode(ctx context.Context, code string) error {
	normalized, rate, ok := lookupDiscountCode(code)
	if !ok {
		e.notifier.Notify("invalid discount code", notify.SeverityWarning)
		return ErrUnknownCode
	}

	e.mu.Lock()
	e.state.GlobalDiscountRate = rate
	e.persistLocked(ctx)
	e.mu.Unlock()

	e.render()
	e.notifier.Notify("discount code "+normalized+" applied", notify.SeveritySuccess)
	return nil
}

// 現在状態から導出した金額。副作用なし。
func (e *CartEngine) Totals() Totals {
	e.mu.Lock()
	defer e.mu.Unlock()
	return computeTotals(e.state)
}

// バッジ表示用の合計数量。
func (e *CartEngine) ItemCount() int64 {
	return e.Totals().ItemCount
}

// 明細のコピー。
func (e *CartEngine) Items() []model.LineItem {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]model.LineItem, len(e.state.Items))
	copy(out, e.state.Items)
	return out
}

// 注文送信境界に渡すペイロードを作る。変更はしない。
func (e *CartEngine) CheckoutData() CheckoutData {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.checkoutDataLocked()
}

func (e *CartEngine) checkoutDataLocked() CheckoutData {
	items := make([]CheckoutItem, 0, len(e.state.Items))
	for _, it := range e.state.Items {
		items = append(items, CheckoutItem{
			ID:       it.ID,
			Name:     it.Name,
			Price:    it.UnitPrice,
			Quantity: it.Quantity,
			Discount: it.DiscountPercent,
		})
	}
	return CheckoutData{Items: items, Totals: computeTotals(e.state)}
}

// チェックアウトへ。空カートと未ログインはここで弾く。
func (e *CartEngine) ProceedToCheckout(ctx context.Context, userID string) (string, error) {
	e.mu.Lock()
	empty := len(e.state.Items) == 0
	data := e.checkoutDataLocked()
	e.mu.Unlock()

	if empty {
		e.notifier.Notify("cart is empty", notify.SeverityWarning)
		return "", ErrEmptyCart
	}
	if userID == "" {
		e.notifier.Notify("please log in to checkout", notify.SeverityWarning)
		return "", ErrLoginRequired
	}
	if e.submitter == nil {
		return "", ErrCheckoutUnavailable
	}

	orderID, err := e.submitter.Submit(ctx, userID, data)
	if err != nil {
		e.notifier.Notify("checkout failed", notify.SeverityError)
		return "", err
	}

	e.notifier.Notify("order submitted", notify.SeveritySuccess)
	return orderID, nil
}

// 変更のたびに即保存。保存に失敗してもメモリ上の状態は生かしたまま進む
// （失われるのは耐久性だけ）。
func (e *CartEngine) persistLocked(ctx context.Context) {
	payload, err := model.EncodeState(e.state)
	if err != nil {
		log.WithError(err).WithField("key", e.key).Error("cart: encode failed")
		return
	}
	if err := e.store.Save(ctx, e.key, payload, e.id); err != nil {
		log.WithError(err).WithField("key", e.key).Error("cart: persist failed")
	}
}

// 表示側の明示的な再描画要求。
func (e *CartEngine) Render() {
	e.render()
}

// 表示側が居れば現在状態を渡す。失敗してもログだけ。
func (e *CartEngine) render() {
	if e.renderer == nil {
		return
	}

	snap := Snapshot{Items: e.Items(), Totals: e.Totals()}
	if err := e.renderer.Render(snap); err != nil {
		log.WithError(err).Error("cart: render failed")
	}
}
