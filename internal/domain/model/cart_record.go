package model

import "time"

// 永続化したカートenvelopeの行。1キー=1行。
type CartRecord struct {
	Key       string    `gorm:"primaryKey;type:varchar(255)" json:"key"`
	Payload   []byte    `gorm:"type:jsonb;not null" json:"payload"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
