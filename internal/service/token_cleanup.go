package service

import (
	"time"

	"phonebook/contacts-api/internal/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TokenCleanup periodically deletes verification tokens whose cleanup
// timestamp passed. Expired-but-recent tokens stay around so a late click on
// an old link can still be answered with a proper "expired" message.
func TokenCleanup(t time.Duration, db *gorm.DB) {
	ticker := time.NewTicker(t)

	zap.L().Debug("Token cleanup attached", zap.Duration("tick_every", t))

	go func() {
		for range ticker.C {
			res := db.
				Where("cleanup_at IS NOT NULL AND cleanup_at < ?", time.Now()).
				Delete(&model.VerificationToken{})
			if res.Error != nil {
				zap.L().Error("Failed to cleanup verification tokens", zap.Error(res.Error))
				continue
			}

			if res.RowsAffected > 0 {
				zap.L().Debug("Cleaned up stale tokens", zap.Int64("count", res.RowsAffected))
			}
		}
	}()
}
