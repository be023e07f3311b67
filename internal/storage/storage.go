package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// 他の購読者による書き込みの通知。
type Event struct {
	Key    string
	Writer string
}

// Store は1キー=1カートのKVストア。
// Save の writer は書き込み元の識別子で、同じ writer の購読には通知されない
// （自分の書き込みのechoで再読込しないため）。
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, payload []byte, writer string) error
	// Subscribe は key への他者書き込みを受け取る。戻り値のcancelで解除。
	Subscribe(key string, owner string) (<-chan Event, func())
}
