package contact

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"phonebook/contacts-api/internal"
	"phonebook/contacts-api/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestRouter wires the contact routes against an in-memory database with a
// stub auth middleware that trusts the X-Test-User header.
func newTestRouter(t *testing.T) (*gin.Engine, *internal.Deps) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn, err := gorm.Open(sqlite.Open(":memory:"))
	require.NoError(t, err)

	require.NoError(t, conn.AutoMigrate(&model.User{}, &model.Contact{}, &model.VerificationToken{}))

	d := &internal.Deps{DB: conn}

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("requestID", "test")
		c.Set("userID", c.GetHeader("X-Test-User"))
	})

	ct := router.Group("/api/contacts")
	{
		ct.GET("", func(c *gin.Context) { ContactList(c, d) })
		ct.GET("/:id", func(c *gin.Context) { ContactFetch(c, d) })
		ct.POST("", func(c *gin.Context) { ContactCreate(c, d) })
		ct.PUT("/:id", func(c *gin.Context) { ContactUpdate(c, d) })
		ct.DELETE("/:id", func(c *gin.Context) { ContactDelete(c, d) })
		ct.GET("/search/:value", func(c *gin.Context) { ContactSearch(c, d) })
		ct.GET("/birthday/next-week", func(c *gin.Context) { ContactBirthdays(c, d) })
	}

	return router, d
}

func doJSON(t *testing.T, router *gin.Engine, method, url, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-User", userID)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func validContact() map[string]string {
	return map[string]string{
		"name":     "John",
		"surname":  "Doe",
		"email":    "john.doe@example.com",
		"number":   "+1555123456",
		"birthday": "1990-06-10",
	}
}

func TestContactCreateAndFetchRoundTrip(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/contacts", "u1", validContact())
	require.Equal(t, http.StatusCreated, w.Code)

	var created model.Contact
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotZero(t, created.ID)

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/contacts/%d", created.ID), "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var fetched model.Contact
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fetched))

	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, "John", fetched.Name)
	assert.Equal(t, "Doe", fetched.Surname)
	assert.Equal(t, "john.doe@example.com", fetched.Email)
	assert.Equal(t, "+1555123456", fetched.Number)
	assert.Equal(t, "1990-06-10", fetched.Birthday.String())
}

func TestContactCreateValidation(t *testing.T) {
	router, _ := newTestRouter(t)

	body := validContact()
	body["email"] = "not-an-email"

	w := doJSON(t, router, http.MethodPost, "/api/contacts", "u1", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body = validContact()
	body["birthday"] = "10.06.1990"

	w = doJSON(t, router, http.MethodPost, "/api/contacts", "u1", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body = validContact()
	body["name"] = ""

	w = doJSON(t, router, http.MethodPost, "/api/contacts", "u1", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestContactCreateDuplicateConflict(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/contacts", "u1", validContact())
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/contacts", "u1", validContact())
	assert.Equal(t, http.StatusConflict, w.Code)

	// A different owner can store the same contact
	w = doJSON(t, router, http.MethodPost, "/api/contacts", "u2", validContact())
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestContactUpdate(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/contacts", "u1", validContact())
	require.Equal(t, http.StatusCreated, w.Code)

	var created model.Contact
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	body := validContact()
	body["name"] = "Johnny"
	body["birthday"] = "1990-07-01"

	w = doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/contacts/%d", created.ID), "u1", body)
	require.Equal(t, http.StatusOK, w.Code)

	var updated model.Contact
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "Johnny", updated.Name)
	assert.Equal(t, "1990-07-01", updated.Birthday.String())

	w = doJSON(t, router, http.MethodPut, "/api/contacts/9999", "u1", validContact())
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestContactDeleteIdempotence(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/contacts", "u1", validContact())
	require.Equal(t, http.StatusCreated, w.Code)

	var created model.Contact
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	url := fmt.Sprintf("/api/contacts/%d", created.ID)

	w = doJSON(t, router, http.MethodDelete, url, "u1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Deleting again is a clean 404, not a crash
	w = doJSON(t, router, http.MethodDelete, url, "u1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/api/contacts/9999", "u1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestContactOwnershipIsolation(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/contacts", "u1", validContact())
	require.Equal(t, http.StatusCreated, w.Code)

	var created model.Contact
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	url := fmt.Sprintf("/api/contacts/%d", created.ID)

	// Another user can't see, update or delete it. Foreign ids look exactly
	// like missing ones
	w = doJSON(t, router, http.MethodGet, url, "u2", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodPut, url, "u2", validContact())
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodDelete, url, "u2", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Still there for the owner
	w = doJSON(t, router, http.MethodGet, url, "u1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestContactList(t *testing.T) {
	router, d := newTestRouter(t)

	for i := 0; i < 15; i++ {
		require.NoError(t, d.DB.Create(&model.Contact{
			UserID:   "u1",
			Name:     fmt.Sprintf("Contact %02d", i),
			Email:    fmt.Sprintf("c%02d@example.com", i),
			Birthday: model.NewDate(1990, time.January, 1),
		}).Error)
	}

	w := doJSON(t, router, http.MethodGet, "/api/contacts", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var page []model.Contact
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Len(t, page, 10) // default limit

	w = doJSON(t, router, http.MethodGet, "/api/contacts?limit=10&offset=10", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Len(t, page, 5)

	// Out-of-range pagination parameters are rejected
	w = doJSON(t, router, http.MethodGet, "/api/contacts?limit=9999", "u1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/contacts?offset=-1", "u1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Another user sees an empty list
	w = doJSON(t, router, http.MethodGet, "/api/contacts", "u2", nil)
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Empty(t, page)
}

func TestContactSearchSubstring(t *testing.T) {
	router, d := newTestRouter(t)

	seed := []model.Contact{
		{UserID: "u1", Name: "John", Surname: "Smith", Email: "js@example.com"},
		{UserID: "u1", Name: "Anna", Surname: "Johnson", Email: "anna@example.com"},
		{UserID: "u1", Name: "Bob", Surname: "Brown", Email: "bigjohn@example.com"},
		{UserID: "u1", Name: "Carol", Surname: "White", Email: "carol@example.com"},
		{UserID: "u2", Name: "John", Surname: "Other", Email: "other@example.com"},
	}
	for i := range seed {
		seed[i].Birthday = model.NewDate(1990, time.January, 1)
		require.NoError(t, d.DB.Create(&seed[i]).Error)
	}

	// Case-insensitive substring across name, surname and email, scoped to
	// the requesting owner
	w := doJSON(t, router, http.MethodGet, "/api/contacts/search/john", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var results []model.Contact
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	require.Len(t, results, 3)

	names := make(map[string]bool)
	for _, r := range results {
		names[r.Name] = true
	}
	assert.True(t, names["John"] && names["Anna"] && names["Bob"])

	w = doJSON(t, router, http.MethodGet, "/api/contacts/search/JOHN", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	assert.Len(t, results, 3)

	w = doJSON(t, router, http.MethodGet, "/api/contacts/search/nobody", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	assert.Empty(t, results)
}

func TestContactBirthdaysEndpoint(t *testing.T) {
	router, d := newTestRouter(t)

	today := time.Now()
	inWindow := today.AddDate(0, 0, 2)
	outOfWindow := today.AddDate(0, 0, 30)

	seed := []model.Contact{
		{UserID: "u1", Name: "Soon", Email: "soon@example.com",
			Birthday: model.NewDate(1990, inWindow.Month(), inWindow.Day())},
		{UserID: "u1", Name: "Later", Email: "later@example.com",
			Birthday: model.NewDate(1990, outOfWindow.Month(), outOfWindow.Day())},
		{UserID: "u2", Name: "Foreign", Email: "foreign@example.com",
			Birthday: model.NewDate(1990, inWindow.Month(), inWindow.Day())},
	}
	for i := range seed {
		require.NoError(t, d.DB.Create(&seed[i]).Error)
	}

	w := doJSON(t, router, http.MethodGet, "/api/contacts/birthday/next-week", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var results []model.Contact
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "Soon", results[0].Name)
}

func TestDuplicateCheckQueryShape(t *testing.T) {
	_, d := newTestRouter(t)

	var captured []string
	require.NoError(t, d.DB.Callback().Query().After("gorm:query").Register("capture_sql", func(tx *gorm.DB) {
		captured = append(captured, tx.Statement.SQL.String())
	}))

	_, err := duplicateExists(d.DB, "u1", "dup@example.com", "+1555000000", 0)
	require.NoError(t, err)
	_, err = duplicateExists(d.DB, "u1", "dup@example.com", "+1555000000", 7)
	require.NoError(t, err)

	require.Len(t, captured, 2)
	for _, sql := range captured {
		// Postgres rejects an aggregate select with an ORDER BY on a
		// non-grouped column, so the query must stay free of one.
		assert.NotContains(t, strings.ToUpper(sql), "ORDER BY")
		assert.Contains(t, sql, "count(*) > 0")
	}
}
