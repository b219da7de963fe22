package contact

import (
	"net/http"
	"strconv"

	"phonebook/contacts-api/internal"
	"phonebook/contacts-api/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func ContactDelete(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	contactID, err := strconv.Atoi(c.Param("id"))
	if err != nil || contactID < 1 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid contact ID provided",
			"requestID": requestID,
		})
		return
	}

	res := d.DB.
		Where("user_id = ? AND id = ?", userID, contactID).
		Delete(&model.Contact{})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to delete contact", zap.Error(res.Error), zap.String("requestID", requestID))
		return
	}

	// Deleting twice is safe, the second call just finds nothing
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"error":     "Contact not found. It either doesn't exist or you don't own it",
			"requestID": requestID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Contact deleted",
		"requestID": requestID,
	})
}
