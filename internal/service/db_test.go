package service

import (
	"fmt"
	"strings"
	"testing"

	"github.com/halomart/halomart/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// setupTestDB 基于内存 SQLite 初始化全局数据库并完成迁移
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	models.DB = db
	if err := models.AutoMigrate(); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return db
}

func createTestCategory(t *testing.T, slug string) *models.Category {
	t.Helper()
	category := &models.Category{
		Slug:     slug,
		Name:     slug,
		IsActive: true,
	}
	if err := models.DB.Create(category).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	return category
}

func createTestProduct(t *testing.T, categoryID uint, slug string, price float64, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		CategoryID:  categoryID,
		Slug:        slug,
		Name:        strings.ReplaceAll(slug, "-", " "),
		PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(price)),
		Currency:    "USD",
		Stock:       stock,
		IsActive:    true,
	}
	if err := models.DB.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func reloadProduct(t *testing.T, id uint) *models.Product {
	t.Helper()
	var product models.Product
	if err := models.DB.First(&product, id).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	return &product
}
