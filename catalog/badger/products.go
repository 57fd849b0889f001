package badger

import (
	"context"
	"slices"

	"github.com/dgraph-io/badger/v4"

	"github.com/sonafind/sonafind/catalog"
	"github.com/sonafind/sonafind/core"
	"github.com/sonafind/sonafind/phonetic"
)

// ProductRepository implements catalog.Repository for BadgerDB.
type ProductRepository struct {
	backend *Backend
}

var _ catalog.Repository = (*ProductRepository)(nil)

// NewRepository opens a BadgerDB-backed product repository at path.
func NewRepository(path string) (catalog.Repository, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, err
	}
	return &ProductRepository{backend: backend}, nil
}

// NewProductRepository creates a repository over an existing backend.
// The caller remains responsible for closing the backend.
func NewProductRepository(backend *Backend) (*ProductRepository, error) {
	return &ProductRepository{backend: backend}, nil
}

// Close closes the underlying backend.
func (r *ProductRepository) Close() error {
	if r.backend.IsClosed() {
		return catalog.ErrStorageClosed
	}
	return r.backend.Close()
}

// AddProducts adds one or more products to the catalog.
func (r *ProductRepository) AddProducts(ctx context.Context, products ...*core.Product) ([]*core.Product, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, product := range products {
			// Content-based ID: re-ingesting the same row lands on the
			// same key, making ingest idempotent.
			if product.ID == 0 {
				product.ID = core.IDFromContent(core.CanonicalText(*product))
			}
			if product.Phonetic.IsEmpty() {
				product.Phonetic = phonetic.Encode(product.Name)
			}

			// Store primary record
			key := makeProductKey(product.ID)
			value := catalog.MarshalProduct(product)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Store tuple index
			tupleKey := makeProductTupleKey(core.NormalizeText(product.Name), core.NormalizeText(product.Brand))
			if err := tx.Set(tupleKey, catalog.MarshalID(product.ID)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return products, err
}

// GetProduct retrieves a single product by ID.
func (r *ProductRepository) GetProduct(ctx context.Context, id core.ID) (*core.Product, error) {
	var result *core.Product
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readProduct(tx, makeProductKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return catalog.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetProducts retrieves multiple products by their IDs.
func (r *ProductRepository) GetProducts(ctx context.Context, ids ...core.ID) ([]*core.Product, error) {
	var result []*core.Product
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			product, err := readProduct(tx, makeProductKey(id))
			if err != nil {
				return err
			}
			if product != nil {
				result = append(result, product)
			}
		}
		return nil
	}, false)
	return result, err
}

// FindProduct finds a product by its (name, brand) tuple.
// The lookup is case-insensitive.
func (r *ProductRepository) FindProduct(ctx context.Context, name, brand string) (*core.Product, error) {
	var result *core.Product
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		tupleKey := makeProductTupleKey(core.NormalizeText(name), core.NormalizeText(brand))
		item, err := tx.Get(tupleKey)
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return catalog.ErrNotFound
			}
			return err
		}

		var productID core.ID
		err = item.Value(func(val []byte) error {
			productID, err = catalog.UnmarshalID(val)
			return err
		})
		if err != nil {
			return err
		}

		result, err = readProduct(tx, makeProductKey(productID))
		if err != nil {
			return err
		}
		if result == nil {
			return catalog.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// AllProducts retrieves every product, ordered by ID ascending.
func (r *ProductRepository) AllProducts(ctx context.Context) ([]core.Product, error) {
	var results []core.Product
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		iter := tx.NewIterator(opts)
		defer iter.Close()

		prefix := []byte(productPrefix + ":")
		for iter.Seek(prefix); iter.Valid(); iter.Next() {
			item := iter.Item()
			if !hasPrefix(item.Key(), prefix) {
				break
			}

			var product *core.Product
			err := item.Value(func(val []byte) error {
				var err error
				product, err = catalog.UnmarshalProduct(val)
				return err
			})
			if err != nil {
				return err
			}
			if product != nil {
				results = append(results, *product)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	// Keys sort lexicographically, not numerically, so order here.
	slices.SortFunc(results, func(a, b core.Product) int {
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	return results, nil
}

// DeleteProducts removes products by their IDs.
func (r *ProductRepository) DeleteProducts(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeProductKey(id)

			// Read record to get the tuple for index cleanup
			product, err := readProduct(tx, key)
			if err != nil {
				return err
			}
			if product == nil {
				return catalog.ErrNotFound
			}

			tupleKey := makeProductTupleKey(core.NormalizeText(product.Name), core.NormalizeText(product.Brand))
			if err := tx.Delete(tupleKey); err != nil {
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// Count returns the number of products in the catalog.
func (r *ProductRepository) Count(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		prefix := []byte(productPrefix + ":")
		for iter.Seek(prefix); iter.Valid(); iter.Next() {
			if !hasPrefix(iter.Item().Key(), prefix) {
				break
			}
			count++
		}
		return nil
	}, false)
	return count, err
}

// hasPrefix checks if a byte slice has a given prefix
func hasPrefix(s, prefix []byte) bool {
	return len(s) >= len(prefix) && string(s[:len(prefix)]) == string(prefix)
}

// readProduct reads a product from the transaction.
func readProduct(tx *badger.Txn, key []byte) (*core.Product, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var product *core.Product
	err = item.Value(func(val []byte) error {
		var err error
		product, err = catalog.UnmarshalProduct(val)
		return err
	})
	return product, err
}
