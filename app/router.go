// Package app wires the whole HTTP surface together
package app

import (
	"fmt"
	"strings"
	"time"

	"phonebook/contacts-api/app/contact"
	"phonebook/contacts-api/app/root"
	"phonebook/contacts-api/app/user"
	"phonebook/contacts-api/aws"
	"phonebook/contacts-api/db"
	"phonebook/contacts-api/internal"
	"phonebook/contacts-api/internal/service"
	"phonebook/contacts-api/pkg/middleware"
	"phonebook/contacts-api/pkg/security"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func NewRouter() (*gin.Engine, error) {
	d := &internal.Deps{
		Argon: security.New(),
		Mail:  service.NewSMTPMailer(),
	}

	conn, err := db.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}
	d.DB = conn

	// Avatar storage is optional, the rest of the API works without a bucket
	if viper.GetString("aws.bucket") != "" {
		s3, err := aws.NewS3()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 client, %w", err)
		}
		d.S3 = s3
	}

	makeLogger()

	router := gin.New()

	origins := strings.Split(viper.GetString("host.cors"), ",")

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("user_id", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true
	router.MaxMultipartMemory = 5 << 20

	store := makeCacheStore()

	rateLimit := viper.GetInt("security.rate_limit")

	jwt := middleware.NewJWTMiddleware(conn)
	rateLimiter := middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
		RequestsPerSecond: rateLimit,
		Burst:             rateLimit * 2,
	})

	m := router.Group("/api", rateLimiter)
	{
		// HEAD /api/heartbeat 		-> Used to check if the server is alive
		m.HEAD("/heartbeat", root.Heartbeat)

		// GET /api/validate		-> Validates a JWT token
		m.GET("/validate", jwt, root.Validate)
	}

	u := m.Group("/users", middleware.BodySizeLimiter(1<<20))
	{
		// GET /api/users		-> Returns the basic info of a user
		u.GET("", jwt, func(c *gin.Context) { user.UserFetch(c, d) })

		// POST /api/users 		-> Registers a new user
		u.POST("", func(c *gin.Context) { user.UserRegister(c, d) })

		// POST /api/users/login 	-> Logs in a user and returns a JWT token
		u.POST("/login", func(c *gin.Context) { user.UserLogin(c, d) })

		// POST /api/users/verify	-> Verifies a new user
		u.POST("/verify", func(c *gin.Context) { user.UserVerify(c, d) })

		// POST /api/users/reset	-> Sends a password reset email
		u.POST("/reset", func(c *gin.Context) { user.UserResetRequest(c, d) })

		// POST /api/users/reset/confirm -> Sets a new password with a reset token
		u.POST("/reset/confirm", func(c *gin.Context) { user.UserResetConfirm(c, d) })
	}

	// Avatar uploads get their own size limit
	m.POST("/users/avatar", jwt, middleware.BodySizeLimiter(3<<20), func(c *gin.Context) { user.UserAvatarUpload(c, d) })

	ct := m.Group("/contacts", jwt, middleware.BodySizeLimiter(1<<20))
	{
		// GET /api/contacts		-> Lists contacts, paginated
		ct.GET("", func(c *gin.Context) { contact.ContactList(c, d) })

		// GET /api/contacts/:id	-> Returns a single contact
		ct.GET("/:id", func(c *gin.Context) { contact.ContactFetch(c, d) })

		// POST /api/contacts		-> Creates a new contact
		ct.POST("", func(c *gin.Context) { contact.ContactCreate(c, d) })

		// PUT /api/contacts/:id	-> Updates a contact
		ct.PUT("/:id", func(c *gin.Context) { contact.ContactUpdate(c, d) })

		// DELETE /api/contacts/:id	-> Deletes a contact
		ct.DELETE("/:id", func(c *gin.Context) { contact.ContactDelete(c, d) })

		// GET /api/contacts/search/:value -> Substring search over name/surname/email
		ct.GET("/search/:value", func(c *gin.Context) { contact.ContactSearch(c, d) })

		// GET /api/contacts/birthday/next-week -> Contacts with a birthday in the next 7 days
		ct.GET("/birthday/next-week", cachePerUser(store, 15*time.Second), func(c *gin.Context) { contact.ContactBirthdays(c, d) })
	}

	// Check for stale tokens rarely, they only pile up slowly
	service.TokenCleanup(time.Hour*24, conn)

	// Unverified accounts have a week, so checking hourly is plenty
	service.AccountCleanup(time.Hour, conn, d.S3)

	return router, nil
}

// makeCacheStore prefers Redis when an address is configured and falls back
// to an in-process store otherwise.
func makeCacheStore() persist.CacheStore {
	addr := viper.GetString("redis.address")
	if addr == "" {
		return persist.NewMemoryStore(time.Minute)
	}

	return persist.NewRedisStore(redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: viper.GetString("redis.password"),
	}))
}

// cachePerUser caches GET responses keyed by user and URI. Keying by URI
// alone would leak one user's contacts to another.
func cachePerUser(store persist.CacheStore, ttl time.Duration) gin.HandlerFunc {
	return cache.Cache(store, ttl, cache.WithCacheStrategyByRequest(func(c *gin.Context) (bool, cache.Strategy) {
		userID := c.GetString("userID")

		return userID != "", cache.Strategy{
			CacheKey: userID + ":" + c.Request.RequestURI,
		}
	}))
}

func makeLogger() {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.DisableStacktrace = true

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}
