package contact

import (
	"net/http"
	"strings"

	"phonebook/contacts-api/internal"
	"phonebook/contacts-api/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ContactSearch matches the value as a case-insensitive substring against
// name, surname and email.
func ContactSearch(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	value := strings.ToLower(c.Param("value"))
	if value == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "No search value provided",
			"requestID": requestID,
		})
		return
	}

	limit, offset, ok := pagination(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid limit or offset provided",
			"requestID": requestID,
		})
		return
	}

	pattern := "%" + value + "%"

	var results []model.Contact

	err := d.DB.
		Where("user_id = ?", userID).
		Where("LOWER(name) LIKE ? OR LOWER(surname) LIKE ? OR LOWER(email) LIKE ?",
			pattern, pattern, pattern).
		Order("id").
		Offset(offset).
		Limit(limit).
		Find(&results).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to search contacts", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, results)
}
