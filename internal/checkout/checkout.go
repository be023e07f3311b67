package checkout

import (
	"context"

	"cart/internal/engine"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// 注文APIの代わりに受け取った内容をログへ流すSubmitter。
// 実際の注文確定は外部システムの仕事で、ここは受け渡しの形だけ持つ。
type LogSubmitter struct {
	log *log.Logger
}

// DI
func NewLogSubmitter(l *log.Logger) *LogSubmitter {
	return &LogSubmitter{log: l}
}

func (s *LogSubmitter) Submit(ctx context.Context, userID string, data engine.CheckoutData) (string, error) {
	orderID := uuid.NewString()

	s.log.WithFields(log.Fields{
		"order_id": orderID,
		"user_id":  userID,
		"items":    len(data.Items),
		"total":    data.Totals.Total.String(),
	}).Info("checkout submitted")

	return orderID, nil
}
