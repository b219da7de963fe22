package contact

import (
	"net/http"
	"strconv"

	"phonebook/contacts-api/internal"
	"phonebook/contacts-api/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func ContactFetch(c *gin.Context, d *internal.Deps) {
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

	var contact model.Contact

	err = d.DB.
		Where("user_id = ? AND id = ?", userID, contactID).
		First(&contact).
		Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"error":     "Contact not found",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch contact from db", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, contact)
}
