package contact

import (
	"net/http"

	"phonebook/contacts-api/internal"
	"phonebook/contacts-api/internal/model"
	"phonebook/contacts-api/pkg/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type contactBody struct {
	Name           string `json:"name"`
	Surname        string `json:"surname"`
	Email          string `json:"email"`
	Number         string `json:"number"`
	Birthday       string `json:"birthday"`
	AdditionalData string `json:"additional_data"`
}

func ContactCreate(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

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

	dup, err := duplicateExists(d.DB, userID, data.Email, data.Number, 0)
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

	contact := model.Contact{
		UserID:         userID,
		Name:           data.Name,
		Surname:        data.Surname,
		Email:          data.Email,
		Number:         data.Number,
		Birthday:       birthday,
		AdditionalData: data.AdditionalData,
	}

	if err := d.DB.Create(&contact).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to create contact", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusCreated, contact)
}

// duplicateExists reports whether the owner already has another contact with
// the same email and number. Pass excludeID = 0 on create.
func duplicateExists(db *gorm.DB, userID, email, number string, excludeID uint) (bool, error) {
	var found bool

	q := db.Model(model.Contact{}).
		Select("count(*) > 0").
		Where("user_id = ? AND email = ? AND number = ?", userID, email, number)

	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	// Find, not First: First would tack an ORDER BY id onto the aggregate,
	// which postgres rejects.
	if err := q.Find(&found).Error; err != nil {
		return false, err
	}

	return found, nil
}
