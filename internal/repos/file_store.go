package repos

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"

	"catalogsync/internal/domain"
)

// FileStore keeps the catalog as one JSON document on disk and replaces the
// file wholesale on every write.
type FileStore struct {
	mu   sync.Mutex
	fs   afero.Fs
	path string
}

func NewFileStore(fs afero.Fs, path string) (*FileStore, error) {
	s := &FileStore{fs: fs, path: path}
	if dir := filepath.Dir(path); dir != "." {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	ok, err := afero.Exists(fs, path)
	if err != nil {
		return nil, err
	}
	if !ok {
		if err := s.write(domain.Document{Products: []domain.Product{}}); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *FileStore) read() (domain.Document, error) {
	var doc domain.Document
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if os.IsNotExist(err) {
			normalize(&doc)
			return doc, nil
		}
		return doc, fmt.Errorf("read %s: %w", s.path, err)
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("decode %s: %w", s.path, err)
	}
	normalize(&doc)
	return doc, nil
}

func (s *FileStore) write(doc domain.Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	return s.fs.Rename(tmp, s.path)
}

// update runs fn between a fresh read and the write-back with the store lock held.
func (s *FileStore) update(fn func(*domain.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		return err
	}
	if err := fn(&doc); err != nil {
		return err
	}
	return s.write(doc)
}

func (s *FileStore) List() ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	return listDoc(&doc), nil
}

func (s *FileStore) Get(id string) (domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		return domain.Product{}, err
	}
	return getDoc(&doc, id)
}

func (s *FileStore) Create(p domain.Product) error {
	return s.update(func(doc *domain.Document) error {
		return createDoc(doc, p)
	})
}

func (s *FileStore) Mutate(id string, fn func(*domain.Product) error) (domain.Product, error) {
	var out domain.Product
	err := s.update(func(doc *domain.Document) error {
		p, err := mutateDoc(doc, id, fn)
		out = p
		return err
	})
	return out, err
}

func (s *FileStore) Delete(id string) error {
	return s.update(func(doc *domain.Document) error {
		return deleteDoc(doc, id)
	})
}
