package user

import (
	"errors"
	"net/http"
	"time"

	"phonebook/contacts-api/internal/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	errTokenNotFound = errors.New("Token expired or invalid")
	errTokenUsed     = errors.New("Token was used already")
	errTokenExpired  = errors.New("Token expired")
	errInternal      = errors.New("Internal server error")
)

// lookupToken fetches a verification token and checks it is still usable.
// The returned error message is safe to show to the caller.
func lookupToken(db *gorm.DB, userID, token, purpose string) (*model.VerificationToken, int, error) {
	var record model.VerificationToken

	err := db.
		Where("user_id = ? AND token = ? AND purpose = ?", userID, token, purpose).
		First(&record).
		Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, http.StatusNotFound, errTokenNotFound
		}

		zap.L().Error("Failed to get verification token record", zap.Error(err))
		return nil, http.StatusInternalServerError, errInternal
	}

	if record.Used {
		return nil, http.StatusBadRequest, errTokenUsed
	}

	if record.ExpiresAt.Before(time.Now()) {
		return nil, http.StatusBadRequest, errTokenExpired
	}

	return &record, http.StatusOK, nil
}
