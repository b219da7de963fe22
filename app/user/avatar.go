package user

import (
	"net/http"
	"path"

	"phonebook/contacts-api/aws"
	"phonebook/contacts-api/internal"
	"phonebook/contacts-api/internal/model"
	"phonebook/contacts-api/pkg/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserAvatarUpload stores a new avatar in S3 and swaps the key on the user
// row. The previous object is deleted best-effort afterwards.
func UserAvatarUpload(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	if d.S3 == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":     "Avatar storage is not configured",
			"requestID": requestID,
		})
		return
	}

	fh, err := c.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "No avatar file provided",
			"requestID": requestID,
		})

		zap.L().Debug("Failed to open multipart file", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	code, f, err := validators.AvatarValidator(fh)
	if err != nil {
		c.JSON(code, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}
	defer f.Close()

	var current struct {
		AvatarKey string
	}

	err = d.DB.
		Model(model.User{}).
		Where("id = ?", userID).
		Select("avatar_key").
		First(&current).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch current avatar key", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	// One key per user, the extension follows the uploaded file. Replacing an
	// avatar with the same extension overwrites the object in place
	key := "avatars/" + userID + path.Ext(fh.Filename)

	ct := fh.Header.Get("Content-Type")

	if err := d.S3.UploadAvatar(c.Request.Context(), key, ct, f); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to upload avatar to S3", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	err = d.DB.
		Model(model.User{}).
		Where("id = ?", userID).
		Update("avatar_key", key).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to store avatar key", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if current.AvatarKey != "" && current.AvatarKey != key {
		if err := d.S3.DeleteAvatar(c.Request.Context(), current.AvatarKey); err != nil {
			zap.L().Warn("Failed to delete previous avatar", zap.Error(err), zap.String("requestID", requestID))
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"avatarURL": aws.AvatarURL(key),
	})
}
