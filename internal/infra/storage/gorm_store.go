package storage

import (
	"context"
	"errors"
	"time"

	"cart/internal/domain/model"
	store "cart/internal/storage"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// cart_records テーブルにenvelopeをそのまま保存するStore。
// 変更通知はプロセス内ハブ（同一ブラウザのタブ間相当）。
type GormStore struct {
	db  *gorm.DB
	hub *hub
}

// DI
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&model.CartRecord{}); err != nil {
		return nil, err
	}
	return &GormStore{db: db, hub: newHub()}, nil
}

func (s *GormStore) Load(ctx context.Context, key string) ([]byte, error) {
	var rec model.CartRecord

	err := s.db.WithContext(ctx).
		Where("key = ?", key).
		First(&rec).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec.Payload, nil
}

// 既存行はロックして更新、無ければ作成。
func (s *GormStore) Save(ctx context.Context, key string, payload []byte, writer string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec model.CartRecord

		findErr := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("key = ?", key).
			First(&rec).Error

		if findErr == nil {
			res := tx.Model(&model.CartRecord{}).
				Where("key = ?", key).
				Updates(map[string]interface{}{
					"payload":    payload,
					"updated_at": time.Now(),
				})
			if res.Error != nil {
				return res.Error
			}
			return nil
		}

		if !errors.Is(findErr, gorm.ErrRecordNotFound) {
			return findErr
		}

		newRec := model.CartRecord{
			Key:       key,
			Payload:   payload,
			UpdatedAt: time.Now(),
		}
		if err := tx.Create(&newRec).Error; err != nil {
			// 同時作成と競合したら更新で拾い直す
			res := tx.Model(&model.CartRecord{}).
				Where("key = ?", key).
				Updates(map[string]interface{}{
					"payload":    payload,
					"updated_at": time.Now(),
				})
			if res.Error == nil && res.RowsAffected > 0 {
				return nil
			}
			return err
		}
		return nil
	})

	if err != nil {
		return err
	}

	s.hub.broadcast(key, writer)
	return nil
}

func (s *GormStore) Subscribe(key string, owner string) (<-chan store.Event, func()) {
	return s.hub.subscribe(key, owner)
}
