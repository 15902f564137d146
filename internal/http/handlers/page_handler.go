package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"catalogsync/internal/domain"
	applog "catalogsync/internal/log"
	"catalogsync/internal/services"
)

type PageHandler struct {
	Catalog *services.CatalogService
}

type statusCell struct {
	Platform    string
	State       string
	Error       string
	LastSuccess string
}

type productRow struct {
	ID          string
	Name        string
	Price       string
	Description string
	Category    string
	Statuses    []statusCell
}

func rowsFor(products []domain.Product) []productRow {
	rows := make([]productRow, 0, len(products))
	for _, p := range products {
		r := productRow{
			ID:          p.ID,
			Name:        p.Name,
			Price:       p.Price.String(),
			Description: p.Description,
			Category:    p.Category,
		}
		for _, plat := range domain.Platforms {
			st := p.SyncStatus[plat]
			cell := statusCell{Platform: string(plat), State: string(st.State), Error: st.Error}
			if st.LastSuccessAt != nil {
				cell.LastSuccess = st.LastSuccessAt.Format(time.RFC3339)
			}
			r.Statuses = append(r.Statuses, cell)
		}
		rows = append(rows, r)
	}
	return rows
}

// GET /
func (h *PageHandler) Home(c *fiber.Ctx) error {
	products, err := h.Catalog.List()
	if err != nil {
		applog.Error(c, "page.home.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load products"})
	}
	return render(c, "index", fiber.Map{"Products": rowsFor(products), "Platforms": domain.Platforms})
}

// NotFound is the catch-all route.
func (h *PageHandler) NotFound(c *fiber.Ctx) error {
	if len(c.Path()) >= 4 && c.Path()[:4] == "/api" {
		return jsonError(c, fiber.StatusNotFound, "not found")
	}
	return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Page not found"})
}
