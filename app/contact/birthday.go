package contact

import (
	"net/http"
	"time"

	"phonebook/contacts-api/internal"
	"phonebook/contacts-api/internal/model"
	"phonebook/contacts-api/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ContactBirthdays returns the owner's contacts whose birthday falls within
// the next seven days, today included. The window math lives in
// service.UpcomingBirthdays; this handler only fetches and filters.
func ContactBirthdays(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var contacts []model.Contact

	err := d.DB.
		Where("user_id = ?", userID).
		Find(&contacts).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch contacts for birthday window", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	upcoming := service.UpcomingBirthdays(contacts, time.Now(), service.BirthdayWindowDays)

	c.JSON(http.StatusOK, upcoming)
}
