package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"catalogsync/internal/clock"
	"catalogsync/internal/domain"
	"catalogsync/internal/repos"
	"catalogsync/internal/validate"
)

var ErrInvalidInput = errors.New("invalid input")

// FieldError names the product field that failed validation.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Reason }

func (e *FieldError) Is(target error) bool { return target == ErrInvalidInput }

type CatalogService struct {
	Products repos.ProductStore
	Clock    clock.Clock
}

func NewCatalogService(products repos.ProductStore, c clock.Clock) *CatalogService {
	if c == nil {
		c = clock.Real{}
	}
	return &CatalogService{Products: products, Clock: c}
}

type NewProduct struct {
	Name        string
	Price       domain.Price
	Description string
	Category    string
}

func (s *CatalogService) Create(in NewProduct) (domain.Product, error) {
	name, ok := validate.Name(in.Name)
	if !ok {
		return domain.Product{}, &FieldError{Field: "name", Reason: "required, up to 80 characters"}
	}
	if !in.Price.IsNumeric() {
		return domain.Product{}, &FieldError{Field: "price", Reason: "must be a number, not text"}
	}
	if !validate.Price(in.Price.Amount) {
		return domain.Product{}, &FieldError{Field: "price", Reason: "must be a positive amount"}
	}
	desc, ok := validate.Description(in.Description)
	if !ok {
		return domain.Product{}, &FieldError{Field: "description", Reason: "required, up to 1000 characters"}
	}
	cat, ok := validate.Category(in.Category)
	if !ok {
		return domain.Product{}, &FieldError{Field: "category", Reason: "letters, digits and spaces only"}
	}

	p := domain.Product{
		ID:          uuid.NewString(),
		Name:        name,
		Price:       domain.NumericPrice(in.Price.Amount),
		Description: desc,
		Category:    cat,
		CreatedAt:   s.Clock.Now(),
		SyncStatus:  domain.NewSyncStatusMap(),
	}
	if err := s.Products.Create(p); err != nil {
		return domain.Product{}, fmt.Errorf("create product: %w", err)
	}
	return p, nil
}

func (s *CatalogService) List() ([]domain.Product, error) {
	return s.Products.List()
}

func (s *CatalogService) Get(id string) (domain.Product, error) {
	return s.Products.Get(id)
}

// Delete removes the product with the given id.
func (s *CatalogService) Delete(id string) error {
	return s.Products.Delete(id)
}

// SeedDemo inserts a few demo products when the catalog is empty.
func (s *CatalogService) SeedDemo() (int, error) {
	existing, err := s.Products.List()
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}
	demo := []NewProduct{
		{Name: "Canvas Tote Bag", Price: domain.NumericPrice(24.99), Description: "Heavyweight cotton tote with inner pocket.", Category: "Accessories"},
		{Name: "Ceramic Pour-Over Set", Price: domain.NumericPrice(42.00), Description: "Dripper, carafe and two cups in matte glaze.", Category: "Kitchen"},
		{Name: "Merino Beanie", Price: domain.NumericPrice(18.50), Description: "Soft ribbed beanie knitted from merino wool.", Category: "Apparel"},
	}
	n := 0
	for _, in := range demo {
		if _, err := s.Create(in); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
