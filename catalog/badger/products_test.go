package badger

import (
	"context"
	"errors"
	"testing"

	"github.com/sonafind/sonafind/catalog"
	"github.com/sonafind/sonafind/core"
)

func TestProductBasics(t *testing.T) {
	repo, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer repo.Close()

	ctx := context.Background()

	product := &core.Product{
		Name:     "Amul Butter",
		Brand:    "Amul",
		Category: "Dairy",
	}

	added, err := repo.AddProducts(ctx, product)
	if err != nil {
		t.Fatalf("Failed to add product: %v", err)
	}
	if len(added) != 1 {
		t.Fatalf("Expected 1 product, got %d", len(added))
	}
	if added[0].ID == 0 {
		t.Fatal("Expected non-zero ID")
	}
	if added[0].Phonetic.IsEmpty() {
		t.Fatal("Expected phonetic code to be populated")
	}

	retrieved, err := repo.GetProduct(ctx, added[0].ID)
	if err != nil {
		t.Fatalf("Failed to get product: %v", err)
	}
	if retrieved.Name != "Amul Butter" {
		t.Fatalf("Expected 'Amul Butter', got '%s'", retrieved.Name)
	}
	if retrieved.Phonetic.String() != added[0].Phonetic.String() {
		t.Fatal("Phonetic code did not round-trip")
	}

	found, err := repo.FindProduct(ctx, "amul butter", "AMUL")
	if err != nil {
		t.Fatalf("Failed to find product: %v", err)
	}
	if found.ID != added[0].ID {
		t.Fatalf("Tuple lookup returned wrong product: %d != %d", found.ID, added[0].ID)
	}
}

func TestProductNotFound(t *testing.T) {
	repo, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer repo.Close()

	ctx := context.Background()

	if _, err := repo.GetProduct(ctx, 12345); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
	if _, err := repo.FindProduct(ctx, "nope", "nope"); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
	if err := repo.DeleteProducts(ctx, 12345); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestIdempotentIngest(t *testing.T) {
	repo, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer repo.Close()

	ctx := context.Background()

	first := &core.Product{Name: "Amul Butter", Brand: "Amul", Category: "Dairy"}
	second := &core.Product{Name: "Amul Butter", Brand: "Amul", Category: "Dairy"}

	if _, err := repo.AddProducts(ctx, first); err != nil {
		t.Fatalf("Failed to add product: %v", err)
	}
	if _, err := repo.AddProducts(ctx, second); err != nil {
		t.Fatalf("Failed to re-add product: %v", err)
	}

	if first.ID != second.ID {
		t.Fatalf("Re-ingest produced different IDs: %d != %d", first.ID, second.ID)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Failed to count: %v", err)
	}
	if count != 1 {
		t.Fatalf("Expected 1 product after re-ingest, got %d", count)
	}
}

func TestAllProductsStableOrder(t *testing.T) {
	repo, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer repo.Close()

	ctx := context.Background()

	products := []*core.Product{
		{Name: "Amul Butter", Brand: "Amul", Category: "Dairy"},
		{Name: "Mother Dairy Butter", Brand: "Mother Dairy", Category: "Dairy"},
		{Name: "Amul Milk", Brand: "Amul", Category: "Dairy"},
	}
	if _, err := repo.AddProducts(ctx, products...); err != nil {
		t.Fatalf("Failed to add products: %v", err)
	}

	first, err := repo.AllProducts(ctx)
	if err != nil {
		t.Fatalf("Failed to list products: %v", err)
	}
	if len(first) != 3 {
		t.Fatalf("Expected 3 products, got %d", len(first))
	}

	for i := 1; i < len(first); i++ {
		if first[i-1].ID >= first[i].ID {
			t.Fatalf("Products not ordered by ID: %d >= %d", first[i-1].ID, first[i].ID)
		}
	}

	second, err := repo.AllProducts(ctx)
	if err != nil {
		t.Fatalf("Failed to list products again: %v", err)
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatal("AllProducts order changed between calls")
		}
	}
}

func TestDeleteProducts(t *testing.T) {
	repo, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer repo.Close()

	ctx := context.Background()

	product := &core.Product{Name: "Amul Butter", Brand: "Amul", Category: "Dairy"}
	added, err := repo.AddProducts(ctx, product)
	if err != nil {
		t.Fatalf("Failed to add product: %v", err)
	}

	if err := repo.DeleteProducts(ctx, added[0].ID); err != nil {
		t.Fatalf("Failed to delete product: %v", err)
	}

	if _, err := repo.GetProduct(ctx, added[0].ID); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound after delete, got %v", err)
	}
	// Tuple index must be cleaned up too
	if _, err := repo.FindProduct(ctx, "Amul Butter", "Amul"); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound in tuple index after delete, got %v", err)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Failed to count: %v", err)
	}
	if count != 0 {
		t.Fatalf("Expected empty catalog, got %d", count)
	}
}

func TestGetProductsSkipsMissing(t *testing.T) {
	repo, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer repo.Close()

	ctx := context.Background()

	added, err := repo.AddProducts(ctx,
		&core.Product{Name: "Amul Butter", Brand: "Amul", Category: "Dairy"},
		&core.Product{Name: "Amul Milk", Brand: "Amul", Category: "Dairy"},
	)
	if err != nil {
		t.Fatalf("Failed to add products: %v", err)
	}

	got, err := repo.GetProducts(ctx, added[0].ID, 99999, added[1].ID)
	if err != nil {
		t.Fatalf("Failed to get products: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 products, got %d", len(got))
	}
}
