package contact

import (
	"net/http"
	"strconv"

	"phonebook/contacts-api/internal"
	"phonebook/contacts-api/internal/model"
	"phonebook/contacts-api/pkg/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func ContactUpdate(c *gin.Context, d *internal.Deps) {
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

	var data contactBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})

		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	birthday, err := validators.ContactValidator(data.Name, data.Surname, data.Email, data.Number, data.Birthday)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
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

	dup, err := duplicateExists(d.DB, userID, data.Email, data.Number, contact.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to check for duplicate contact", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if dup {
		c.JSON(http.StatusConflict, gin.H{
			"error":     "Contact with this number or email already exists",
			"requestID": requestID,
		})
		return
	}

	contact.Name = data.Name
	contact.Surname = data.Surname
	contact.Email = data.Email
	contact.Number = data.Number
	contact.Birthday = birthday
	contact.AdditionalData = data.AdditionalData

	if err := d.DB.Save(&contact).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to update contact", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, contact)
}
