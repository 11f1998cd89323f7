package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/pay-aware/pay_aware/internal/config"
	"github.com/pay-aware/pay_aware/internal/middleware"
	"github.com/pay-aware/pay_aware/internal/notifier"
	"github.com/pay-aware/pay_aware/internal/subscription"
	"github.com/pay-aware/pay_aware/internal/user"
)

const idempotencyTTL = 24 * time.Hour

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Mailer user.Mailer
	Pusher notifier.Pusher
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !isDev(d.Cfg.AppEnv) {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}
	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))
	app.Use(middleware.Idempotency(d.Cache, idempotencyTTL, d.Logger))

	// Health
	RegisterHealthRoutes(app, d)

	// Services and handlers
	var userRepo user.Repository
	if d.DB != nil {
		userRepo = user.NewPostgresRepository(d.DB)
	} else {
		userRepo = user.NewMemoryRepository()
	}
	userSvc := user.NewService(userRepo, d.Cfg, d.Mailer, d.Logger)
	userHandler := user.NewHandler(userSvc, d.Logger)

	var subRepo subscription.Repository
	if d.DB != nil {
		subRepo = subscription.NewPostgresRepository(d.DB)
	} else {
		subRepo = subscription.NewMemoryRepository()
	}
	subCache := subscription.NewCache(d.Cache, d.Logger)
	subSvc := subscription.NewService(subRepo, subCache, d.Logger)
	subHandler := subscription.NewHandler(subSvc)

	var notifRepo notifier.Repository
	if d.DB != nil {
		notifRepo = notifier.NewPostgresRepository(d.DB)
	} else {
		notifRepo = notifier.NewMemoryRepository()
	}
	notifHandler := notifier.NewHandler(notifRepo, d.Logger)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Public routes
	rateLimiter := middleware.LoginRateLimit(d.Cache, 5)
	RegisterUserRoutes(api, userHandler, rateLimiter)

	// Protected routes
	jwtmw := middleware.JWTAuth(d.Cfg)
	protected := api.Group("", jwtmw)
	RegisterAccountRoutes(protected, userHandler)
	RegisterSubscriptionRoutes(protected, subHandler)
	RegisterNotificationRoutes(protected, notifHandler)

	// Operational routes
	if d.Pusher == nil {
		d.Pusher = notifier.NewExpoPusher(d.Cfg.PushIconURL)
	}
	RegisterAdminRoutes(app, d)

	return nil
}

func isDev(env string) bool {
	switch strings.ToLower(env) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}
