// Package contact holds the CRUD, search and birthday endpoints for the
// contacts resource. Every query is scoped to the authenticated owner.
package contact

import (
	"net/http"
	"strconv"

	"phonebook/contacts-api/internal"
	"phonebook/contacts-api/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultLimit = 10
	maxLimit     = 500
	maxOffset    = 200
)

func ContactList(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	limit, offset, ok := pagination(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid limit or offset provided",
			"requestID": requestID,
		})
		return
	}

	var contacts []model.Contact

	err := d.DB.
		Where("user_id = ?", userID).
		Order("id").
		Offset(offset).
		Limit(limit).
		Find(&contacts).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to list contacts", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, contacts)
}

// pagination parses limit (10..500, default 10) and offset (0..200,
// default 0) query parameters.
func pagination(c *gin.Context) (limit, offset int, ok bool) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit < defaultLimit || limit > maxLimit {
		return 0, 0, false
	}

	offset, err = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 || offset > maxOffset {
		return 0, 0, false
	}

	return limit, offset, true
}
