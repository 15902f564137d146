package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"catalogsync/internal/clock"
	"catalogsync/internal/config"
	"catalogsync/internal/credential"
	"catalogsync/internal/metrics"
	"catalogsync/internal/platforms"
	"catalogsync/internal/ratelimit"
	"catalogsync/internal/repos"
	"catalogsync/internal/services"
)

type Deps struct {
	ProductHandler *ProductHandler
	SyncHandler    *SyncHandler
	AdminHandler   *AdminHandler
	PageHandler    *PageHandler

	Catalog     *services.CatalogService
	Limiter     *ratelimit.Window
	Credentials *credential.Store
	AdminKey    []byte
}

// NewDeps builds the services over store. The limiter and the credential
// registry are created here once and shared by every request.
func NewDeps(store repos.ProductStore, cfg config.Config, clk clock.Clock) *Deps {
	if clk == nil {
		clk = clock.Real{}
	}
	limiter := ratelimit.NewWindow(cfg.RateLimitMax, cfg.RateLimitWindow, clk)
	creds := credential.NewStore(cfg.TokenTTL, clk)
	adapters := platforms.NewSet(limiter, creds, cfg.LatencyScale)

	catalogSvc := services.NewCatalogService(store, clk)
	syncSvc := services.NewSyncService(store, adapters, clk)

	return &Deps{
		ProductHandler: &ProductHandler{Catalog: catalogSvc},
		SyncHandler:    &SyncHandler{Sync: syncSvc},
		AdminHandler:   &AdminHandler{Limiter: limiter, Credentials: creds},
		PageHandler:    &PageHandler{Catalog: catalogSvc},
		Catalog:        catalogSvc,
		Limiter:        limiter,
		Credentials:    creds,
	}
}

// Routes mounts the page, API, health and metrics routes on app.
func (d *Deps) Routes(app *fiber.App, api fiber.Router) {
	app.Get("/", d.PageHandler.Home)

	api.Get("/products", d.ProductHandler.List)
	api.Post("/products", d.ProductHandler.Create)
	api.Get("/products/:id", d.ProductHandler.Get)
	api.Delete("/products/:id", d.ProductHandler.Delete)

	api.Post("/sync/:platform/:productId", d.SyncHandler.Run)

	api.Post("/credential/issue", d.AdminHandler.IssueCredential)
	api.Get("/ratelimit/:platform", d.AdminHandler.RateLimitStatus)
	api.Post("/ratelimit/:platform/reset", RequireAdminKey(d.AdminKey), d.AdminHandler.ResetRateLimit)

	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
	app.Use(d.PageHandler.NotFound)
}
