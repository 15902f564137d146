package repos

import (
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"catalogsync/internal/domain"
)

const (
	catalogDocument = "catalog"
	maxCASAttempts  = 16
)

// SQLStore keeps the catalog document in a single sqlite row. Writes are a
// compare-and-swap on the row version and retry when another writer won.
type SQLStore struct {
	db   *sqlx.DB
	name string
}

type documentRow struct {
	Body    string `db:"body"`
	Version int64  `db:"version"`
}

func NewSQLStore(db *sqlx.DB) (*SQLStore, error) {
	_, err := db.Exec(`
		INSERT INTO documents(name, body, version)
		VALUES (?, '{"products":[]}', 0)
		ON CONFLICT(name) DO NOTHING
	`, catalogDocument)
	if err != nil {
		return nil, err
	}
	return &SQLStore{db: db, name: catalogDocument}, nil
}

func (s *SQLStore) read() (domain.Document, int64, error) {
	var row documentRow
	var doc domain.Document
	if err := s.db.Get(&row, `SELECT body, version FROM documents WHERE name = ?`, s.name); err != nil {
		return doc, 0, err
	}
	if err := json.Unmarshal([]byte(row.Body), &doc); err != nil {
		return doc, 0, fmt.Errorf("decode document %s: %w", s.name, err)
	}
	normalize(&doc)
	return doc, row.Version, nil
}

func (s *SQLStore) update(fn func(*domain.Document) error) error {
	for attempt := 0; attempt < maxCASAttempts; attempt++ {
		doc, version, err := s.read()
		if err != nil {
			return err
		}
		if err := fn(&doc); err != nil {
			return err
		}
		body, err := json.Marshal(doc)
		if err != nil {
			return err
		}
		res, err := s.db.Exec(`
			UPDATE documents
			SET body = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP
			WHERE name = ? AND version = ?
		`, string(body), s.name, version)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 1 {
			return nil
		}
	}
	return ErrConflict
}

// Version returns the current document version (number of committed writes).
func (s *SQLStore) Version() (int64, error) {
	var v int64
	err := s.db.Get(&v, `SELECT version FROM documents WHERE name = ?`, s.name)
	return v, err
}

func (s *SQLStore) List() ([]domain.Product, error) {
	doc, _, err := s.read()
	if err != nil {
		return nil, err
	}
	return listDoc(&doc), nil
}

func (s *SQLStore) Get(id string) (domain.Product, error) {
	doc, _, err := s.read()
	if err != nil {
		return domain.Product{}, err
	}
	return getDoc(&doc, id)
}

func (s *SQLStore) Create(p domain.Product) error {
	return s.update(func(doc *domain.Document) error {
		return createDoc(doc, p)
	})
}

func (s *SQLStore) Mutate(id string, fn func(*domain.Product) error) (domain.Product, error) {
	var out domain.Product
	err := s.update(func(doc *domain.Document) error {
		p, err := mutateDoc(doc, id, fn)
		out = p
		return err
	})
	return out, err
}

func (s *SQLStore) Delete(id string) error {
	return s.update(func(doc *domain.Document) error {
		return deleteDoc(doc, id)
	})
}
