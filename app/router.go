// Package app wires the HTTP engine: middleware, routes and the
// dependency container the handlers run against.
package app

import (
	"fmt"
	"time"

	"contactsapi/app/auth"
	"contactsapi/app/contact"
	"contactsapi/app/root"
	"contactsapi/app/user"
	"contactsapi/db"
	"contactsapi/internal"
	"contactsapi/internal/repo"
	"contactsapi/internal/service"
	"contactsapi/pkg/middleware"
	"contactsapi/pkg/security"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

var store = persist.NewMemoryStore(time.Minute)

// NewRouter builds the full dependency set from config and returns the
// ready-to-run engine.
func NewRouter() (*gin.Engine, error) {
	makeLogger()

	conn, err := db.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}

	d := &internal.Deps{
		DB:       conn,
		Hasher:   security.NewHasher(),
		Users:    repo.NewUserStore(conn),
		Contacts: repo.NewContactStore(conn),
		Tokens: security.NewTokenService(
			viper.GetString("jwt.secret"),
			viper.GetDuration("jwt.access_ttl"),
			viper.GetDuration("jwt.refresh_ttl"),
			viper.GetDuration("jwt.confirm_ttl"),
		),
	}

	if viper.GetString("mail.host") != "" {
		d.Mailer = service.NewMailer(service.MailConfig{
			Host:     viper.GetString("mail.host"),
			Port:     viper.GetInt("mail.port"),
			Username: viper.GetString("mail.username"),
			Password: viper.GetString("mail.password"),
			From:     viper.GetString("mail.from"),
			LinkBase: viper.GetString("host.public_url"),
		})
	} else {
		zap.L().Warn("Mail is not configured, confirmation emails will not be sent")
	}

	if viper.GetString("storage.bucket") != "" {
		avatars, err := service.NewAvatarStore(service.AvatarConfig{
			AccountID:       viper.GetString("storage.account_id"),
			AccessKeyID:     viper.GetString("storage.access_key_id"),
			SecretAccessKey: viper.GetString("storage.secret_access_key"),
			Bucket:          viper.GetString("storage.bucket"),
			PublicBaseURL:   viper.GetString("storage.public_base_url"),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize avatar storage, %w", err)
		}
		d.Avatars = avatars
	} else {
		zap.L().Warn("Avatar storage is not configured, avatar uploads will be rejected")
	}

	return Routes(d, db.NewRedis()), nil
}

// Routes attaches middleware and routes for the given dependency set.
// Split out from NewRouter so tests can run against their own deps.
func Routes(d *internal.Deps, rdb *redis.Client) *gin.Engine {
	router := gin.New()

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     []string{"*"},
			AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: false,
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

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true
	router.MaxMultipartMemory = 5 << 20

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		Requests: viper.GetInt("rate_limit.requests"),
		Window:   viper.GetDuration("rate_limit.window"),
	}, rdb)

	// GET / 			-> App name, throttled per client IP
	router.GET("/", rateLimiter, cacheFor(30), root.Index)

	jwt := middleware.NewJWTAuth(d)
	maxAvatarSize := viper.GetInt64("upload.max_avatar_size")

	api := router.Group("/api")
	{
		// HEAD /api/heartbeat		-> Used to check if the server is alive
		api.HEAD("/heartbeat", root.Heartbeat)
	}

	a := api.Group("/auth", middleware.BodySizeLimiter(1<<20))
	{
		// POST /api/auth/signup		-> Registers a new user
		a.POST("/signup", func(c *gin.Context) { auth.Signup(c, d) })

		// POST /api/auth/login			-> Issues an access/refresh token pair
		a.POST("/login", func(c *gin.Context) { auth.Login(c, d) })

		// GET /api/auth/refresh_token		-> Rotates the token pair
		a.GET("/refresh_token", func(c *gin.Context) { auth.Refresh(c, d) })

		// GET /api/auth/confirm_email/:token	-> Confirms an email address
		a.GET("/confirm_email/:token", func(c *gin.Context) { auth.ConfirmEmail(c, d) })

		// POST /api/auth/request_email		-> Re-sends the confirmation mail
		a.POST("/request_email", func(c *gin.Context) { auth.RequestEmail(c, d) })
	}

	ct := api.Group("/contacts", jwt, middleware.BodySizeLimiter(1<<20))
	{
		// GET /api/contacts			-> Lists the caller's contacts
		ct.GET("", func(c *gin.Context) { contact.List(c, d) })

		// GET /api/contacts/birthday		-> Contacts with a birthday in the next 7 days
		ct.GET("/birthday", func(c *gin.Context) { contact.Birthday(c, d) })

		// GET /api/contacts/byfield		-> Looks contacts up by a single field
		ct.GET("/byfield", func(c *gin.Context) { contact.ByField(c, d) })

		// GET /api/contacts/:id		-> Returns one contact
		ct.GET("/:id", func(c *gin.Context) { contact.Get(c, d) })

		// POST /api/contacts			-> Creates a contact
		ct.POST("", func(c *gin.Context) { contact.Create(c, d) })

		// PUT /api/contacts/:id		-> Overwrites a contact
		ct.PUT("/:id", func(c *gin.Context) { contact.Update(c, d) })

		// DELETE /api/contacts/:id		-> Deletes a contact
		ct.DELETE("/:id", func(c *gin.Context) { contact.Delete(c, d) })
	}

	u := api.Group("/users", jwt)
	{
		// GET /api/users/me			-> Returns the caller's profile
		u.GET("/me", user.Me)

		// PATCH /api/users/avatar		-> Uploads a new avatar image
		u.PATCH("/avatar", middleware.BodySizeLimiter(maxAvatarSize), func(c *gin.Context) { user.Avatar(c, d) })
	}

	return router
}

func makeLogger() {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	if level, err := zapcore.ParseLevel(viper.GetString("app.log_level")); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(level)
	}

	cfg.DisableStacktrace = true

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}

func cacheFor(sec int) gin.HandlerFunc {
	return cache.CacheByRequestURI(store, time.Second*time.Duration(sec))
}
