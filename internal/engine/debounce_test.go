package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// 連打は最後の値だけが静止後に確定する。
func TestCartEngine_UpdateQuantityDebounced_Coalesces(t *testing.T) {
	e, _, _ := newTestEngine(t) // window 10ms
	ctx := context.Background()

	assert.NoError(t, e.AddItem(ctx, product(t, "p1", "Beans", "10.00"), 1))

	e.UpdateQuantityDebounced("p1", 2)
	e.UpdateQuantityDebounced("p1", 5)
	e.UpdateQuantityDebounced("p1", 9)

	// 静止前はまだ反映されない
	assert.Equal(t, int64(1), e.ItemCount())

	assert.Eventually(t, func() bool {
		return e.ItemCount() == 9
	}, time.Second, 2*time.Millisecond)
}

// 商品ごとに独立してデバウンスされる。
func TestCartEngine_UpdateQuantityDebounced_PerProduct(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	assert.NoError(t, e.AddItem(ctx, product(t, "p1", "Beans", "10.00"), 1))
	assert.NoError(t, e.AddItem(ctx, product(t, "p2", "Drip", "5.00"), 1))

	e.UpdateQuantityDebounced("p1", 3)
	e.UpdateQuantityDebounced("p2", 4)

	assert.Eventually(t, func() bool {
		return e.ItemCount() == 7
	}, time.Second, 2*time.Millisecond)
}

// 0はデバウンス確定時に削除として扱われる。
func TestCartEngine_UpdateQuantityDebounced_ZeroRemoves(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	assert.NoError(t, e.AddItem(ctx, product(t, "p1", "Beans", "10.00"), 3))

	e.UpdateQuantityDebounced("p1", 0)

	assert.Eventually(t, func() bool {
		return len(e.Items()) == 0
	}, time.Second, 2*time.Millisecond)
}

func TestDebouncer_StopDropsPending(t *testing.T) {
	d := newDebouncer(5 * time.Millisecond)

	fired := make(chan struct{}, 1)
	d.schedule("x", func() { fired <- struct{}{} })
	d.stop()

	select {
	case <-fired:
		t.Fatal("stopped debouncer still fired")
	case <-time.After(30 * time.Millisecond):
	}
}
