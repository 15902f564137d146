package handlers

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"

	"catalogsync/internal/domain"
	applog "catalogsync/internal/log"
	"catalogsync/internal/repos"
	"catalogsync/internal/services"
	"catalogsync/internal/validate"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

type createProductBody struct {
	Name        string       `json:"name"`
	Price       domain.Price `json:"price"`
	Description string       `json:"description"`
	Category    string       `json:"category"`
}

// GET /api/products
func (h *ProductHandler) List(c *fiber.Ctx) error {
	products, err := h.Catalog.List()
	if err != nil {
		return err
	}
	return c.JSON(products)
}

// GET /api/products/:id
func (h *ProductHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusNotFound, "product not found")
	}
	p, err := h.Catalog.Get(id)
	if errors.Is(err, repos.ErrNotFound) {
		return jsonError(c, fiber.StatusNotFound, "product not found")
	}
	if err != nil {
		return err
	}
	return c.JSON(p)
}

// POST /api/products
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var body createProductBody
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		applog.Security(c, "validation.fail", map[string]any{"field": "body"})
		return jsonError(c, fiber.StatusBadRequest, "request body must be a JSON product")
	}
	p, err := h.Catalog.Create(services.NewProduct{
		Name:        body.Name,
		Price:       body.Price,
		Description: body.Description,
		Category:    body.Category,
	})
	var fe *services.FieldError
	if errors.As(err, &fe) {
		applog.Security(c, "validation.fail", map[string]any{"field": fe.Field})
		return jsonError(c, fiber.StatusBadRequest, fe.Error())
	}
	if err != nil {
		return err
	}
	applog.Audit(c, "product.create", map[string]any{"product_id": p.ID, "name": p.Name})
	return c.Status(fiber.StatusCreated).JSON(p)
}

// DELETE /api/products/:id
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusNotFound, "product not found")
	}
	err := h.Catalog.Delete(id)
	if errors.Is(err, repos.ErrNotFound) {
		return jsonError(c, fiber.StatusNotFound, "product not found")
	}
	if err != nil {
		applog.Error(c, "product.delete.fail", err, map[string]any{"product_id": id})
		return err
	}
	applog.Audit(c, "product.delete", map[string]any{"product_id": id})
	return c.JSON(fiber.Map{"message": "product deleted", "id": id})
}
