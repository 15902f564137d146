package repos

import (
	"errors"

	"catalogsync/internal/domain"
)

var (
	ErrNotFound  = errors.New("product not found")
	ErrDuplicate = errors.New("product id already exists")
	ErrConflict  = errors.New("catalog document changed concurrently")
)

// ProductStore is the whole-document product catalog. Mutate is the only
// way to change a stored product: the read, fn and write happen as one
// step relative to every other write to the same store. fn may run more
// than once if a backend retries, so it must only depend on its argument.
type ProductStore interface {
	List() ([]domain.Product, error)
	Get(id string) (domain.Product, error)
	Create(p domain.Product) error
	Mutate(id string, fn func(*domain.Product) error) (domain.Product, error)
	Delete(id string) error
}

func indexOf(doc *domain.Document, id string) int {
	for i := range doc.Products {
		if doc.Products[i].ID == id {
			return i
		}
	}
	return -1
}

func normalize(doc *domain.Document) {
	if doc.Products == nil {
		doc.Products = []domain.Product{}
	}
	for i := range doc.Products {
		doc.Products[i].SyncStatus = doc.Products[i].SyncStatus.Normalize()
	}
}

func detach(p domain.Product) domain.Product {
	p.SyncStatus = p.SyncStatus.Clone()
	return p
}

func getDoc(doc *domain.Document, id string) (domain.Product, error) {
	i := indexOf(doc, id)
	if i < 0 {
		return domain.Product{}, ErrNotFound
	}
	return detach(doc.Products[i]), nil
}

func createDoc(doc *domain.Document, p domain.Product) error {
	if indexOf(doc, p.ID) >= 0 {
		return ErrDuplicate
	}
	p = detach(p)
	p.SyncStatus = p.SyncStatus.Normalize()
	doc.Products = append(doc.Products, p)
	return nil
}

func mutateDoc(doc *domain.Document, id string, fn func(*domain.Product) error) (domain.Product, error) {
	i := indexOf(doc, id)
	if i < 0 {
		return domain.Product{}, ErrNotFound
	}
	p := detach(doc.Products[i])
	if err := fn(&p); err != nil {
		return domain.Product{}, err
	}
	p.ID = doc.Products[i].ID
	p.SyncStatus = p.SyncStatus.Normalize()
	doc.Products[i] = p
	return detach(p), nil
}

// deleteDoc removes the product whose id matches, wherever it sits.
func deleteDoc(doc *domain.Document, id string) error {
	i := indexOf(doc, id)
	if i < 0 {
		return ErrNotFound
	}
	doc.Products = append(doc.Products[:i], doc.Products[i+1:]...)
	return nil
}

func listDoc(doc *domain.Document) []domain.Product {
	out := make([]domain.Product, 0, len(doc.Products))
	for _, p := range doc.Products {
		out = append(out, detach(p))
	}
	return out
}
