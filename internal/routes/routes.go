package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/vpnflow/referral_engine/internal/config"
	"github.com/vpnflow/referral_engine/internal/deposits"
	"github.com/vpnflow/referral_engine/internal/guard"
	"github.com/vpnflow/referral_engine/internal/middleware"
	"github.com/vpnflow/referral_engine/internal/notification"
	"github.com/vpnflow/referral_engine/internal/referral"
	"github.com/vpnflow/referral_engine/internal/store"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Guard  *guard.Guard
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Dev mode may run on the in-memory store without Redis; anything else
	// needs the real backends.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}
	if d.Guard == nil {
		return fmt.Errorf("abuse guard is required")
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)

	var userStore store.Store
	if d.DB != nil {
		userStore = store.NewPostgresStore(d.DB)
	} else {
		userStore = store.NewMemoryStore()
	}

	notifier := notification.NewLoggerNotifier(d.Logger)
	ledger := referral.NewLedger(userStore, notifier, d.Logger, d.Cfg.SignupBonus)
	graph := referral.NewGraphReader(userStore)
	depositSvc, err := deposits.NewService(userStore, ledger, d.Guard, notifier)
	if err != nil {
		return err
	}

	referralHandler := referral.NewHandler(ledger, graph)
	depositHandler := deposits.NewHandler(depositSvc)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	rateLimited := api.Group("", middleware.RateLimit(d.Guard))

	depositGroup := rateLimited.Group("/deposits")
	if d.Cache != nil {
		depositGroup.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}
	depositGroup.Post("", depositHandler.Create)

	rateLimited.Post("/referrals/register", referralHandler.Register)
	rateLimited.Get("/referrals/:userId/tree", referralHandler.Tree)
	rateLimited.Get("/users/:userId", userLookup(userStore))

	RegisterAdminRoutes(api, d)

	return nil
}
