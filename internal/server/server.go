package server

import (
	"time"

	"github.com/eruvierda/safe-commute/internal/auth"
	"github.com/eruvierda/safe-commute/internal/category"
	"github.com/eruvierda/safe-commute/internal/config"
	"github.com/eruvierda/safe-commute/internal/report"
	"github.com/eruvierda/safe-commute/internal/route"
	"github.com/eruvierda/safe-commute/internal/stream"
	"github.com/eruvierda/safe-commute/internal/vote"
	"github.com/eruvierda/safe-commute/internal/warning"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App     *fiber.App
	Cfg     config.Config
	DB      *pgxpool.Pool
	Redis   *redis.Client
	Stream  *stream.Hub
	Reports *report.Cache
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	policy := report.PolicyFromConfig(cfg)
	reportSvc := report.NewService(db, redisClient, policy)

	s := &Server{
		App:     app,
		Cfg:     cfg,
		DB:      db,
		Redis:   redisClient,
		Stream:  stream.NewHub(redisClient),
		Reports: report.NewCache(reportSvc.Active, redisClient),
	}

	registerRoutes(s, reportSvc, policy)
	return s
}

func registerRoutes(s *Server, reportSvc *report.Service, policy report.Policy) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)

	auth.RegisterRoutes(s.App.Group("/auth"), auth.NewService(s.Cfg.JWTSecret, s.DB))
	report.RegisterRoutes(s.App.Group("/reports"), reportSvc, jwtMiddleware)
	vote.RegisterRoutes(s.App, vote.NewLedger(s.DB, s.Redis), jwtMiddleware)

	osrm := route.NewClient(s.Cfg.OSRMBaseURL, time.Duration(s.Cfg.RouteTimeoutSecond)*time.Second)
	route.RegisterRoutes(s.App.Group("/routes"), osrm, s.Reports, policy, s.Cfg.RouteBufferKm)

	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream, s.Reports, policy, defaultWarningSettings(s.Cfg))
}

// defaultWarningSettings is what a session starts with before it sends its
// own configuration: warnings on, every category, the configured radius.
func defaultWarningSettings(cfg config.Config) warning.Settings {
	enabled := map[category.Category]bool{}
	for _, cat := range category.All() {
		enabled[cat] = true
	}
	return warning.Settings{
		Enabled:    true,
		RadiusKm:   cfg.DefaultRadiusKm,
		Categories: enabled,
	}
}
