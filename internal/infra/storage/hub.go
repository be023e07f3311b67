package storage

import (
	"sync"

	store "cart/internal/storage"
)

// 同一プロセス内の変更通知ハブ（ブラウザのstorageイベント相当）。
// 書き込み元自身の購読には配らない。
type hub struct {
	mu   sync.Mutex
	subs map[string][]*subscriber
}

type subscriber struct {
	owner string
	ch    chan store.Event
}

func newHub() *hub {
	return &hub{subs: map[string][]*subscriber{}}
}

func (h *hub) subscribe(key string, owner string) (<-chan store.Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := &subscriber{owner: owner, ch: make(chan store.Event, 8)}
	h.subs[key] = append(h.subs[key], s)

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		list := h.subs[key]
		for i, cur := range list {
			if cur == s {
				h.subs[key] = append(list[:i], list[i+1:]...)
				close(s.ch)
				break
			}
		}
	}
	return s.ch, cancel
}

func (h *hub) broadcast(key string, writer string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, s := range h.subs[key] {
		if s.owner == writer {
			continue
		}
		select {
		case s.ch <- store.Event{Key: key, Writer: writer}:
		default:
			// 受信側が詰まっていたら捨てる。最新状態はLoadで取り直せる。
		}
	}
}
