package catalog

import (
	"context"

	"github.com/sonafind/sonafind/core"
)

// Repository provides product catalog storage operations.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// AddProducts adds one or more products to the catalog.
	// Products with ID=0 get a content-based ID derived from their
	// canonical text, and an empty phonetic code is filled in from the
	// product name. Re-adding an identical product overwrites in place,
	// so ingest is idempotent.
	// Returns the products with IDs and phonetic codes populated.
	AddProducts(ctx context.Context, products ...*core.Product) ([]*core.Product, error)

	// GetProduct retrieves a single product by ID.
	// Returns ErrNotFound if the product doesn't exist.
	GetProduct(ctx context.Context, id core.ID) (*core.Product, error)

	// GetProducts retrieves multiple products by their IDs.
	// Returns only the products that exist (no error for missing products).
	GetProducts(ctx context.Context, ids ...core.ID) ([]*core.Product, error)

	// FindProduct finds a product by its (name, brand) tuple.
	// Returns ErrNotFound if no matching product exists.
	FindProduct(ctx context.Context, name, brand string) (*core.Product, error)

	// AllProducts retrieves every product in the catalog, ordered by ID
	// ascending. The ordering is stable across calls, so repeated index
	// builds over an unchanged catalog see identical row order.
	AllProducts(ctx context.Context) ([]core.Product, error)

	// DeleteProducts removes products by their IDs.
	// Returns ErrNotFound if any product doesn't exist.
	DeleteProducts(ctx context.Context, ids ...core.ID) error

	// Count returns the number of products in the catalog.
	Count(ctx context.Context) (int, error)

	// Close closes the storage backend and releases resources.
	Close() error
}
