package user

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"phonebook/contacts-api/internal"
	"phonebook/contacts-api/internal/model"
	"phonebook/contacts-api/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// stubMailer records outgoing mail instead of talking to an SMTP server.
type stubMailer struct {
	verifications []*model.VerificationToken
	resets        []*model.VerificationToken
	fail          bool
}

func (m *stubMailer) SendVerificationMail(t *model.VerificationToken, sendTo string) error {
	if m.fail {
		return assert.AnError
	}

	m.verifications = append(m.verifications, t)
	return nil
}

func (m *stubMailer) SendResetMail(t *model.VerificationToken, sendTo string) error {
	if m.fail {
		return assert.AnError
	}

	m.resets = append(m.resets, t)
	return nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *internal.Deps, *stubMailer) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	viper.Set("security.jwt_secret", "test-secret")

	conn, err := gorm.Open(sqlite.Open(":memory:"))
	require.NoError(t, err)

	require.NoError(t, conn.AutoMigrate(&model.User{}, &model.Contact{}, &model.VerificationToken{}))

	mail := &stubMailer{}
	d := &internal.Deps{
		DB:    conn,
		Argon: security.New(),
		Mail:  mail,
	}

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("requestID", "test")
	})

	u := router.Group("/api/users")
	{
		u.POST("", func(c *gin.Context) { UserRegister(c, d) })
		u.POST("/login", func(c *gin.Context) { UserLogin(c, d) })
		u.POST("/verify", func(c *gin.Context) { UserVerify(c, d) })
		u.POST("/reset", func(c *gin.Context) { UserResetRequest(c, d) })
		u.POST("/reset/confirm", func(c *gin.Context) { UserResetConfirm(c, d) })
	}

	return router, d, mail
}

func doJSON(t *testing.T, router *gin.Engine, method, url string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func register(t *testing.T, router *gin.Engine) string {
	t.Helper()

	w := doJSON(t, router, http.MethodPost, "/api/users", map[string]string{
		"email":    "alice@example.com",
		"password": "correct horse battery",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		UserID string `json:"userID"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.UserID)
	return resp.UserID
}

func TestRegisterVerifyLogin(t *testing.T) {
	router, d, mail := newTestRouter(t)

	userID := register(t, router)

	// Account starts unverified with a pending token
	var u model.User
	require.NoError(t, d.DB.Where("id = ?", userID).First(&u).Error)
	assert.False(t, u.Verified)
	assert.NotNil(t, u.ExpiresAt)

	require.Len(t, mail.verifications, 1)
	token := mail.verifications[0].Token

	w := doJSON(t, router, http.MethodPost, "/api/users/verify?user_id="+userID+"&token="+token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Re-query into a fresh struct: gorm leaves a previously set pointer
	// field untouched when scanning a NULL column into a reused struct.
	u = model.User{}
	require.NoError(t, d.DB.Where("id = ?", userID).First(&u).Error)
	assert.True(t, u.Verified)
	assert.Nil(t, u.ExpiresAt)

	// Second use of the same token is rejected
	w = doJSON(t, router, http.MethodPost, "/api/users/verify?user_id="+userID+"&token="+token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/users/login", map[string]string{
		"email":    "alice@example.com",
		"password": "correct horse battery",
	})
	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	var gotAuth bool
	for _, c := range cookies {
		if c.Name == "auth_token" && c.Value != "" {
			gotAuth = true
		}
	}
	assert.True(t, gotAuth)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	router, _, _ := newTestRouter(t)

	register(t, router)

	w := doJSON(t, router, http.MethodPost, "/api/users", map[string]string{
		"email":    "alice@example.com",
		"password": "another password",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegisterRejectsBadInput(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/users", map[string]string{
		"email":    "not-an-email",
		"password": "long enough password",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/users", map[string]string{
		"email":    "bob@example.com",
		"password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterMailFailureCreatesNoUser(t *testing.T) {
	router, d, mail := newTestRouter(t)
	mail.fail = true

	w := doJSON(t, router, http.MethodPost, "/api/users", map[string]string{
		"email":    "alice@example.com",
		"password": "correct horse battery",
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var count int64
	require.NoError(t, d.DB.Model(model.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestLoginWrongPassword(t *testing.T) {
	router, _, _ := newTestRouter(t)

	register(t, router)

	w := doJSON(t, router, http.MethodPost, "/api/users/login", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Unknown accounts answer the same way
	w = doJSON(t, router, http.MethodPost, "/api/users/login", map[string]string{
		"email":    "nobody@example.com",
		"password": "whatever password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPasswordResetFlow(t *testing.T) {
	router, d, mail := newTestRouter(t)

	userID := register(t, router)

	w := doJSON(t, router, http.MethodPost, "/api/users/reset", map[string]string{
		"email": "alice@example.com",
	})
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Len(t, mail.resets, 1)

	token := mail.resets[0].Token

	w = doJSON(t, router, http.MethodPost, "/api/users/reset/confirm", map[string]string{
		"user_id":  userID,
		"token":    token,
		"password": "brand new password",
	})
	require.Equal(t, http.StatusOK, w.Code)

	// New password hash is in place
	var u model.User
	require.NoError(t, d.DB.Where("id = ?", userID).First(&u).Error)

	ok, err := security.New().VerifyPasswd("brand new password", u.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)

	// Token is single use
	w = doJSON(t, router, http.MethodPost, "/api/users/reset/confirm", map[string]string{
		"user_id":  userID,
		"token":    token,
		"password": "yet another password",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPasswordResetUnknownEmail(t *testing.T) {
	router, _, mail := newTestRouter(t)

	// Same 204 as for a real account, nothing sent
	w := doJSON(t, router, http.MethodPost, "/api/users/reset", map[string]string{
		"email": "nobody@example.com",
	})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, mail.resets)
}

func TestResetConfirmBadToken(t *testing.T) {
	router, _, _ := newTestRouter(t)

	userID := register(t, router)

	w := doJSON(t, router, http.MethodPost, "/api/users/reset/confirm", map[string]string{
		"user_id":  userID,
		"token":    "deadbeef",
		"password": "brand new password",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRegisterEmailCheckQueryShape(t *testing.T) {
	router, d, _ := newTestRouter(t)

	var captured []string
	require.NoError(t, d.DB.Callback().Query().After("gorm:query").Register("capture_sql", func(tx *gorm.DB) {
		if strings.Contains(tx.Statement.SQL.String(), "count(*) > 0") {
			captured = append(captured, tx.Statement.SQL.String())
		}
	}))

	w := doJSON(t, router, http.MethodPost, "/api/users", map[string]string{
		"email":    "shape@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	require.NotEmpty(t, captured)
	for _, sql := range captured {
		// Postgres rejects an aggregate select with an ORDER BY on a
		// non-grouped column, so the query must stay free of one.
		assert.NotContains(t, strings.ToUpper(sql), "ORDER BY")
	}
}
