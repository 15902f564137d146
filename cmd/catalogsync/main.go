package main

import (
	"io"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"github.com/spf13/afero"
	"golang.org/x/crypto/bcrypt"

	"catalogsync/internal/clock"
	"catalogsync/internal/config"
	"catalogsync/internal/http/handlers"
	applog "catalogsync/internal/log"
	"catalogsync/internal/repos"
)

func openStore(cfg config.Config) (repos.ProductStore, error) {
	if cfg.StoreDriver == "sqlite" {
		db, err := repos.OpenDB(cfg.DBDSN)
		if err != nil {
			return nil, err
		}
		return repos.NewSQLStore(db)
	}
	return repos.NewFileStore(afero.NewOsFs(), cfg.DataFile)
}

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			mw := io.MultiWriter(os.Stdout, f)
			log.SetOutput(mw)
		}
	}

	store, err := openStore(cfg)
	if err != nil {
		log.Fatal(err)
	}

	deps := handlers.NewDeps(store, cfg, clock.Real{})
	deps.AdminKey, err = handlers.HashAdminKey(cfg.AdminKey, bcrypt.DefaultCost)
	if err != nil {
		log.Fatal(err)
	}
	if cfg.SeedDemo {
		if n, err := deps.Catalog.SeedDemo(); err != nil {
			log.Printf("[warn] seeding demo products: %v", err)
		} else if n > 0 {
			log.Printf("[seed] inserted %d demo products", n)
		}
	}

	engine := html.New(cfg.TemplatesDir, ".html")
	engine.Reload(true)

	app := fiber.New(fiber.Config{
		Views:        engine,
		ErrorHandler: handlers.ErrorHandler,
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())

	api := app.Group("/api", limiter.New(limiter.Config{
		Max:        cfg.APIRateMax,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.api.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"success": false, "error": "too many requests, retry soon"})
		},
	}))
	deps.Routes(app, api)

	log.Fatal(app.Listen(":" + cfg.Port))
}
