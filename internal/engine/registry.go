package engine

import (
	"sync"
	"time"

	"cart/internal/notify"
	"cart/internal/storage"
)

// ユーザーごとのエンジンを遅延生成して使い回す。
// 保存キーはユーザー単位なので、同じユーザーの別セッションは
// 同じキーを共有する（ブラウザの別タブ相当）。
type Registry struct {
	store     storage.Store
	notifier  notify.Notifier
	submitter Submitter
	window    time.Duration

	mu      sync.Mutex
	engines map[string]*CartEngine
}

// DI
func NewRegistry(st storage.Store, notifier notify.Notifier, submitter Submitter, debounceWindow time.Duration) *Registry {
	return &Registry{
		store:     st,
		notifier:  notifier,
		submitter: submitter,
		window:    debounceWindow,
		engines:   map[string]*CartEngine{},
	}
}

func (r *Registry) ForUser(userID string) *CartEngine {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.engines[userID]; ok {
		return e
	}

	e := New(r.store, "cart:"+userID, r.notifier, nil, r.submitter, r.window)
	r.engines[userID] = e
	return e
}

func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, e := range r.engines {
		e.Close()
		delete(r.engines, id)
	}
}
