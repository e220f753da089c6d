package callbacklog

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/travelviet/tourpay/internal/models"
	"github.com/travelviet/tourpay/pkg/logctx"
	"github.com/travelviet/tourpay/pkg/tool"
)

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service { return &Service{db: db, log: log} }

// Save asynchronously persists a gateway callback log. Best-effort: a failed
// write is logged and never affects the response returned to the gateway.
// The caller hands over a fully populated entry and must not touch it again;
// the write runs on its own goroutine.
func (s *Service) Save(ctx context.Context, entry *models.GatewayCallbackLog) {
	if entry == nil {
		return
	}
	if entry.ID == "" {
		entry.ID = tool.GenerateUUIDV7()
	}
	go func() {
		if err := s.db.Save(entry).Error; err != nil {
			logctx.FromCtx(ctx, s.log).Errorf("failed to save gateway callback log: %v", err)
		}
	}()
}
