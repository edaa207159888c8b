package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"golang.org/x/sync/singleflight"
)

var ErrEmptyCatalog = errors.New("catalog has no products")

// Store holds the static product catalog in memory. The catalog is read-only
// at request time; Reload swaps the whole product list under the write lock.
type Store struct {
	mu       sync.RWMutex
	path     string
	products []Product

	sfg singleflight.Group // collapses concurrent Reload calls
}

// NewStore loads the catalog JSON document at path.
func NewStore(path string) (*Store, error) {
	s := &Store{path: path}
	products, err := loadFile(path)
	if err != nil {
		return nil, err
	}
	s.products = products
	return s, nil
}

// NewStoreFromProducts builds a store without a backing file. Reload is a
// no-op for such a store; tests and embedded catalogs use this.
func NewStoreFromProducts(products []Product) *Store {
	return &Store{products: products}
}

func loadFile(path string) ([]Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var products []Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}
	if len(products) == 0 {
		return nil, ErrEmptyCatalog
	}
	return products, nil
}

// Reload re-reads the catalog file. Concurrent callers share one read.
func (s *Store) Reload() error {
	if s.path == "" {
		return nil
	}
	_, err, _ := s.sfg.Do("reload", func() (interface{}, error) {
		products, err := loadFile(s.path)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.products = products
		s.mu.Unlock()
		return nil, nil
	})
	return err
}

// Products returns a snapshot of the full catalog.
func (s *Store) Products() []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, len(s.products))
	copy(out, s.products)
	return out
}

// ProductByHandleOrID returns the product matching handle first, then id.
// The old storefront fell back to the first product when nothing matched,
// which turned typo'd handles into an arbitrary product; callers that want
// that behavior use First explicitly.
func (s *Store) ProductByHandleOrID(handle string, id int64) (Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if handle != "" {
		for _, p := range s.products {
			if p.Handle == handle {
				return p, true
			}
		}
	}
	if id != 0 {
		for _, p := range s.products {
			if p.ID == id {
				return p, true
			}
		}
	}
	return Product{}, false
}

// First returns the first product in the catalog. It is the explicit
// defensive fallback for display paths that must always show something.
func (s *Store) First() (Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.products) == 0 {
		return Product{}, false
	}
	return s.products[0], true
}

// FindVariant returns the variant matching sku first, then both size and
// color. p.Variants[0] is the caller-side fallback where that is intended.
func FindVariant(p Product, sku, size, color string) (Variant, bool) {
	if sku != "" {
		for _, v := range p.Variants {
			if v.SKU == sku {
				return v, true
			}
		}
	}
	if size != "" || color != "" {
		for _, v := range p.Variants {
			if v.Size == size && v.Color == color {
				return v, true
			}
		}
	}
	return Variant{}, false
}
