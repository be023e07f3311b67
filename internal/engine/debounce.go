package engine

import (
	"sync"
	"time"
)

// 数量入力のデバウンス。入力のたびに呼び、静止期間が過ぎたら一度だけ確定する。
// 商品IDごとにタイマーを持ち、次の入力で置き換える。
type debouncer struct {
	mu     sync.Mutex
	window time.Duration
	timers map[string]*time.Timer
}

func newDebouncer(window time.Duration) *debouncer {
	return &debouncer{
		window: window,
		timers: map[string]*time.Timer{},
	}
}

func (d *debouncer) schedule(id string, commit func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if t, ok := d.timers[id]; ok {
		t.Stop()
	}
	d.timers[id] = time.AfterFunc(d.window, func() {
		d.mu.Lock()
		delete(d.timers, id)
		d.mu.Unlock()
		commit()
	})
}

// 保留中の確定をすべて破棄する。
func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for id, t := range d.timers {
		t.Stop()
		delete(d.timers, id)
	}
}
