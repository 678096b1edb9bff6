package main

import (
	"context"
	"io"
	"log"
	"os"
	"strings"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/storage/redis/v3"

	"elyukal/internal/apiclient"
	"elyukal/internal/config"
	"elyukal/internal/http/handlers"
	applog "elyukal/internal/log"
	"elyukal/internal/repos"
)

func main() {
	cfg := config.Load()
	if err := applog.SetLevel(cfg.LogLevel); err != nil {
		log.Printf("[warn] unknown LOG_LEVEL %q, keeping info", cfg.LogLevel)
	}

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			mw := io.MultiWriter(os.Stdout, f)
			log.SetOutput(mw)
			applog.SetOutput(mw)
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	api := apiclient.New(apiclient.Options{BaseURL: cfg.APIBaseURL, Timeout: cfg.APITimeout})
	deps, err := handlers.NewDeps(db, cfg, api)
	if err != nil {
		log.Fatal(err)
	}

	// Shared counters and CSRF tokens when several instances run behind a balancer
	var storage fiber.Storage
	if cfg.RedisURL != "" {
		storage = redis.New(redis.Config{URL: cfg.RedisURL})
		log.Printf("[redis] limiter and csrf storage -> %s", redactURL(cfg.RedisURL))
	}

	app := fiber.New(fiber.Config{
		Views:        handlers.NewEngine(cfg.TemplatesDir, !cfg.Production()),
		ErrorHandler: handlers.ErrorHandler,
		BodyLimit:    cfg.BodyLimit,
	})

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New(helmet.Config{
		// model-viewer and the map embed load from their own origins
		ContentSecurityPolicy: "default-src 'self'; script-src 'self' https://unpkg.com; " +
			"img-src 'self' data: blob: https:; frame-src https://www.openstreetmap.org; " +
			"connect-src 'self' https:; style-src 'self' 'unsafe-inline'",
	}))
	app.Use(recover.New())
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		Storage:    storage,
		Next: func(c *fiber.Ctx) bool {
			p := c.Path()
			return strings.HasPrefix(p, "/static/") || strings.HasPrefix(p, "/staged/")
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return fiber.NewError(fiber.StatusTooManyRequests)
		},
	}))
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   cfg.CookieSecure,
		ContextKey:     "csrf",
		Storage:        storage,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", map[string]any{"reason": err.Error()})
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{
				"Title":   "Security check failed",
				"Message": "Security check failed. Please refresh and try again.",
			})
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok, ok := c.Locals("csrf").(string); ok {
			c.Locals("CSRFToken", tok)
		}
		return c.Next()
	})

	// ---------- Routes ----------
	app.Static("/static", cfg.StaticDir)
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })

	deps.LoginLimit = handlers.LoginLimiter(deps, storage)
	handlers.Register(app, deps)

	app.Use(func(c *fiber.Ctx) error {
		return fiber.ErrNotFound
	})

	jobs, stopJobs := context.WithCancel(context.Background())
	go deps.Staging.Run(jobs, time.Minute)
	go purgeSessions(jobs, deps.Sessions, cfg.SessionIdle)

	go func() {
		applog.Bg("server.start", nil, map[string]any{"port": cfg.Port, "env": cfg.Env, "api": cfg.APIBaseURL})
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("[http] listener stopped: %v", err)
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"elyukal": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				stopJobs()
				err := app.ShutdownWithContext(ctx)
				if storage != nil {
					_ = storage.Close()
				}
				if cerr := db.Close(); err == nil {
					err = cerr
				}
				_ = applog.Sync()
				return err
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

// purgeSessions drops sign-ins nobody has used within idle.
func purgeSessions(ctx context.Context, sessions *repos.SessionRepo, idle time.Duration) {
	t := time.NewTicker(10 * time.Minute)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := sessions.PurgeIdle(idle)
			if err != nil {
				applog.Bg("session.purge.fail", err, nil)
				continue
			}
			if n > 0 {
				applog.Bg("session.purge", nil, map[string]any{"purged": n})
			}
		}
	}
}

// redactURL hides credentials embedded in a connection URL.
func redactURL(raw string) string {
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		return "***"
	}
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		rest = "***@" + rest[at+1:]
	}
	return scheme + "://" + rest
}
