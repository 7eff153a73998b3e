// Package app builds the HTTP surface of the API.
package app

import (
	"context"
	"net/http"
	"time"

	"pgfinder/pg-api/app/auth"
	"pgfinder/pg-api/app/pg"
	"pgfinder/pg-api/app/root"
	"pgfinder/pg-api/app/user"
	"pgfinder/pg-api/internal"
	"pgfinder/pg-api/pkg/middleware"
	"pgfinder/pg-api/pkg/validators"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewRouter registers every route under /api. Goroutines started for the
// middleware live until ctx is done.
func NewRouter(ctx context.Context, d *internal.Deps) (*gin.Engine, error) {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		validators.Register(v)
	}

	store, err := newCacheStore(ctx, d.Config.RedisAddr)
	if err != nil {
		return nil, err
	}

	router := gin.New()

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     d.Config.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "TurnstileToken"},
			ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.CustomRecovery(func(c *gin.Context, rec any) {
			zap.L().Error("Recovered from panic", zap.Any("panic", rec), zap.String("requestID", middleware.RequestID(c)))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success":   false,
				"message":   "Something went wrong!",
				"error":     "Internal server error",
				"requestID": middleware.RequestID(c),
			})
		}),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == http.MethodHead
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
		middleware.BodySizeLimiter(d.Config.MaxBodySize),
	)

	router.HandleMethodNotAllowed = true
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"success":   false,
			"message":   "Route not found",
			"requestID": middleware.RequestID(c),
		})
	})

	jwt := middleware.NewJWTMiddleware(d.Tokens, d.Users)
	owner := middleware.RequireOwner()
	turnstile := middleware.NewTurnstileMiddleware(middleware.TurnstileConfig{
		Enabled: d.Config.TurnstileEnabled,
		Secret:  d.Config.TurnstileSecret,
	})
	rateLimiter := middleware.RateLimiterMiddleware(ctx, middleware.RateLimiterConfig{
		RequestsPerSecond: d.Config.RateLimit,
		Burst:             d.Config.RateLimit * 2,
	})
	// Every request to an endpoint that sends mail is throttled harder
	otpLimiter := middleware.RateLimiterMiddleware(ctx, middleware.RateLimiterConfig{
		RequestsPerSecond: d.Config.OTPRateLimit,
		Burst:             d.Config.OTPRateLimit * 3,
	})

	h := func(fn func(*gin.Context, *internal.Deps)) gin.HandlerFunc {
		return func(c *gin.Context) { fn(c, d) }
	}

	m := router.Group("/api", rateLimiter)
	{
		// GET /api/health			-> Reports that the API is up
		m.GET("/health", root.Health)

		// HEAD /api/heartbeat		-> Used to check if the server is alive
		m.HEAD("/heartbeat", root.Heartbeat)
	}

	a := m.Group("/auth")
	{
		// POST /api/auth/send-otp		-> Mails a registration code
		a.POST("/send-otp", otpLimiter, turnstile, h(auth.SendOtp))

		// POST /api/auth/verify-otp		-> Completes a registration or confirms a reset code
		a.POST("/verify-otp", h(auth.VerifyOtp))

		// POST /api/auth/verify-reset-otp	-> Confirms a reset code
		a.POST("/verify-reset-otp", h(auth.VerifyResetOtp))

		// POST /api/auth/resend-otp		-> Mails a new registration code
		a.POST("/resend-otp", otpLimiter, turnstile, h(auth.ResendOtp))

		// POST /api/auth/login		-> Logs in a user and returns a JWT token
		a.POST("/login", h(auth.Login))

		// GET /api/auth/me			-> Returns the signed in user
		a.GET("/me", jwt, h(auth.Me))

		// POST /api/auth/become-owner	-> Lets a seeker list PGs
		a.POST("/become-owner", jwt, h(auth.BecomeOwner))

		// POST /api/auth/forgot-password	-> Mails a password reset code
		a.POST("/forgot-password", otpLimiter, turnstile, h(auth.ForgotPassword))

		// POST /api/auth/reset-password	-> Sets a new password using a reset code
		a.POST("/reset-password", h(auth.ResetPassword))
	}

	p := m.Group("/pg")
	{
		// GET /api/pg				-> Lists available PGs
		p.GET("", cacheFor(store, 15*time.Second), h(pg.List))

		// GET /api/pg/search			-> Quick search
		p.GET("/search", cacheFor(store, 15*time.Second), h(pg.Search))

		// GET /api/pg/cities			-> Every city with a PG
		p.GET("/cities", cacheFor(store, time.Minute), h(pg.Cities))

		// GET /api/pg/owner/my-listings	-> The caller's own PGs
		p.GET("/owner/my-listings", jwt, owner, h(pg.MyListings))

		// GET /api/pg/:id			-> One PG
		p.GET("/:id", h(pg.Fetch))

		// POST /api/pg			-> Creates a PG
		p.POST("", jwt, owner, h(pg.Create))

		// PUT /api/pg/:id			-> Updates a PG the caller owns
		p.PUT("/:id", jwt, owner, h(pg.Update))

		// DELETE /api/pg/:id			-> Deletes a PG the caller owns
		p.DELETE("/:id", jwt, owner, h(pg.Delete))
	}

	u := m.Group("/user", jwt)
	{
		// GET /api/user/dashboard		-> Account overview
		u.GET("/dashboard", h(user.Dashboard))

		// GET /api/user/owner-dashboard	-> Listing statistics for owners
		u.GET("/owner-dashboard", owner, h(user.OwnerDashboard))

		// PUT /api/user/profile		-> Updates name, phone or picture
		u.PUT("/profile", h(user.UpdateProfile))

		// PUT /api/user/change-password	-> Changes the password
		u.PUT("/change-password", h(user.ChangePassword))

		// DELETE /api/user/account		-> Deletes the account and its PGs
		u.DELETE("/account", h(user.DeleteAccount))
	}

	return router, nil
}

// newCacheStore keeps cached responses in redis when an address is set so
// several instances share them, in memory otherwise.
func newCacheStore(ctx context.Context, redisAddr string) (persist.CacheStore, error) {
	if redisAddr == "" {
		return persist.NewMemoryStore(time.Minute), nil
	}

	client := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return persist.NewRedisStore(client), nil
}

func cacheFor(store persist.CacheStore, ttl time.Duration) gin.HandlerFunc {
	return cache.CacheByRequestURI(store, ttl)
}
