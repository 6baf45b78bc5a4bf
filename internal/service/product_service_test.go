package service

import (
	"errors"
	"testing"

	"github.com/halomart/halomart/internal/models"
	"github.com/halomart/halomart/internal/repository"

	"github.com/shopspring/decimal"
)

func setupCatalogServiceTest(t *testing.T) (*ProductService, *CategoryService) {
	t.Helper()
	db := setupTestDB(t)
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	return NewProductService(productRepo, categoryRepo), NewCategoryService(categoryRepo)
}

func TestProductCreateSlugUnique(t *testing.T) {
	productSvc, _ := setupCatalogServiceTest(t)
	category := createTestCategory(t, "electronics")

	input := ProductInput{
		CategoryID:  category.ID,
		Slug:        "smart-watch",
		Name:        "Smart Watch",
		PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(159.00)),
		Stock:       10,
		IsActive:    true,
	}
	product, err := productSvc.Create(input)
	if err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	if product.Currency != "USD" {
		t.Fatalf("empty currency must fall back to USD, got=%q", product.Currency)
	}

	if _, err := productSvc.Create(input); !errors.Is(err, ErrSlugExists) {
		t.Fatalf("duplicate slug want ErrSlugExists, got=%v", err)
	}

	input.CategoryID = category.ID + 100
	input.Slug = "other-watch"
	if _, err := productSvc.Create(input); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing category want ErrNotFound, got=%v", err)
	}
}

func TestProductUpdateSlugConflict(t *testing.T) {
	productSvc, _ := setupCatalogServiceTest(t)
	category := createTestCategory(t, "electronics")
	first := createTestProduct(t, category.ID, "smart-watch", 159.00, 10)
	second := createTestProduct(t, category.ID, "wireless-earphones", 99.99, 5)

	input := ProductInput{
		CategoryID:  category.ID,
		Slug:        first.Slug,
		Name:        second.Name,
		PriceAmount: second.PriceAmount,
		IsActive:    true,
	}
	if _, err := productSvc.Update(second.ID, input); !errors.Is(err, ErrSlugExists) {
		t.Fatalf("slug conflict want ErrSlugExists, got=%v", err)
	}

	// 保留自身 slug 不算冲突
	input.Slug = second.Slug
	input.Name = "Wireless Earphones Pro"
	updated, err := productSvc.Update(second.ID, input)
	if err != nil {
		t.Fatalf("update product failed: %v", err)
	}
	if updated.Name != "Wireless Earphones Pro" {
		t.Fatalf("name not updated, got=%q", updated.Name)
	}
}

func TestProductGetBySlugOnlyActive(t *testing.T) {
	productSvc, _ := setupCatalogServiceTest(t)
	category := createTestCategory(t, "electronics")
	product := createTestProduct(t, category.ID, "smart-watch", 159.00, 10)

	product.IsActive = false
	if err := models.DB.Save(product).Error; err != nil {
		t.Fatalf("deactivate product failed: %v", err)
	}

	if _, err := productSvc.GetBySlug("smart-watch", true); !errors.Is(err, ErrNotFound) {
		t.Fatalf("inactive product want ErrNotFound for storefront, got=%v", err)
	}
	got, err := productSvc.GetBySlug("smart-watch", false)
	if err != nil {
		t.Fatalf("admin lookup failed: %v", err)
	}
	if got.ID != product.ID {
		t.Fatalf("want product %d, got=%d", product.ID, got.ID)
	}
}

func TestProductDelete(t *testing.T) {
	productSvc, _ := setupCatalogServiceTest(t)
	category := createTestCategory(t, "electronics")
	product := createTestProduct(t, category.ID, "smart-watch", 159.00, 10)

	if err := productSvc.Delete(product.ID); err != nil {
		t.Fatalf("delete product failed: %v", err)
	}
	if err := productSvc.Delete(product.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted product want ErrNotFound, got=%v", err)
	}
}

func TestCategoryCreateSlugUnique(t *testing.T) {
	_, categorySvc := setupCatalogServiceTest(t)

	input := CategoryInput{Slug: "electronics", Name: "Electronics", IsActive: true}
	if _, err := categorySvc.Create(input); err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	if _, err := categorySvc.Create(input); !errors.Is(err, ErrSlugExists) {
		t.Fatalf("duplicate slug want ErrSlugExists, got=%v", err)
	}
}

func TestCategoryDeleteInUse(t *testing.T) {
	_, categorySvc := setupCatalogServiceTest(t)
	category := createTestCategory(t, "electronics")
	product := createTestProduct(t, category.ID, "smart-watch", 159.00, 10)

	if err := categorySvc.Delete(category.ID); !errors.Is(err, ErrCategoryInUse) {
		t.Fatalf("category with products want ErrCategoryInUse, got=%v", err)
	}

	if err := models.DB.Delete(&models.Product{}, product.ID).Error; err != nil {
		t.Fatalf("remove product failed: %v", err)
	}
	if err := categorySvc.Delete(category.ID); err != nil {
		t.Fatalf("delete empty category failed: %v", err)
	}
	if err := categorySvc.Delete(category.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted category want ErrNotFound, got=%v", err)
	}
}

func TestCategoryListOnlyActive(t *testing.T) {
	_, categorySvc := setupCatalogServiceTest(t)
	createTestCategory(t, "electronics")
	hidden := createTestCategory(t, "archive")
	hidden.IsActive = false
	if err := models.DB.Save(hidden).Error; err != nil {
		t.Fatalf("deactivate category failed: %v", err)
	}

	active, err := categorySvc.List(true)
	if err != nil {
		t.Fatalf("list active failed: %v", err)
	}
	if len(active) != 1 || active[0].Slug != "electronics" {
		t.Fatalf("want only active category, got=%v", active)
	}

	all, err := categorySvc.List(false)
	if err != nil {
		t.Fatalf("list all failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("want 2 categories, got=%v", all)
	}
}
