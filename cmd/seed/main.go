package main

import (
	"github.com/halomart/halomart/internal/config"
	"github.com/halomart/halomart/internal/logger"
	"github.com/halomart/halomart/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 添加分类
	categories := []models.Category{
		{Slug: "electronics", Name: "Electronics", Description: "Phones, audio and smart devices", IsActive: true, SortOrder: 10},
		{Slug: "lifestyle", Name: "Lifestyle", Description: "Everyday home and living goods", IsActive: true, SortOrder: 20},
		{Slug: "accessories", Name: "Accessories", Description: "Cables, chargers and carry gear", IsActive: true, SortOrder: 30},
	}

	for _, cat := range categories {
		var existing models.Category
		if err := models.DB.Where("slug = ?", cat.Slug).First(&existing).Error; err != nil {
			// 不存在则创建
			if err := models.DB.Create(&cat).Error; err != nil {
				stdLog.Printf("Failed to create category %s: %v", cat.Slug, err)
			} else {
				stdLog.Printf("Created category: %s", cat.Slug)
			}
		} else {
			stdLog.Printf("Category already exists: %s", cat.Slug)
		}
	}

	// 获取分类ID
	categoryIDs := map[string]uint{}
	var categoryList []models.Category
	if err := models.DB.Where("slug IN ?", []string{"electronics", "lifestyle", "accessories"}).Find(&categoryList).Error; err != nil {
		stdLog.Printf("Failed to load categories: %v", err)
	}
	for _, cat := range categoryList {
		categoryIDs[cat.Slug] = cat.ID
	}

	// 添加商品
	products := []models.Product{
		{
			Slug:        "wireless-earphones",
			Name:        "Wireless Bluetooth Earphones",
			Description: "Bluetooth 5.0, active noise cancellation and up to 24 hours of battery life.",
			Brand:       "SoundCore",
			PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(99.99)),
			Currency:    "USD",
			CategoryID:  categoryIDs["electronics"],
			Images:      models.StringArray{"https://images.unsplash.com/photo-1590658268037-6bf12165a8df?w=800"},
			Stock:       120,
			IsActive:    true,
			SortOrder:   10,
		},
		{
			Slug:        "smart-watch",
			Name:        "Smart Watch",
			Description: "Heart-rate tracking, GPS and a week-long battery.",
			Brand:       "Pulse",
			PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(159.00)),
			Currency:    "USD",
			CategoryID:  categoryIDs["electronics"],
			Images:      models.StringArray{"https://images.unsplash.com/photo-1523275335684-37898b6baf30?w=800"},
			Stock:       60,
			IsActive:    true,
			SortOrder:   20,
		},
		{
			Slug:        "ceramic-mug-set",
			Name:        "Ceramic Mug Set",
			Description: "Set of four stoneware mugs, dishwasher and microwave safe.",
			Brand:       "Hearth",
			PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(34.50)),
			Currency:    "USD",
			CategoryID:  categoryIDs["lifestyle"],
			Images:      models.StringArray{"https://images.unsplash.com/photo-1514228742587-6b1558fcca3d?w=800"},
			Stock:       200,
			IsActive:    true,
			SortOrder:   10,
		},
		{
			Slug:        "usb-c-cable-2m",
			Name:        "USB-C Charging Cable 2m",
			Description: "Braided 100W USB-C to USB-C cable with aluminium connectors.",
			Brand:       "Voltline",
			PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(12.90)),
			Currency:    "USD",
			CategoryID:  categoryIDs["accessories"],
			Images:      models.StringArray{"https://images.unsplash.com/photo-1583863788434-e58a36330cf0?w=800"},
			Stock:       500,
			IsActive:    true,
			SortOrder:   10,
		},
		{
			Slug:        "laptop-sleeve-14",
			Name:        "Laptop Sleeve 14\"",
			Description: "Water-resistant felt sleeve with magnetic closure.",
			Brand:       "Carrier",
			PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(24.00)),
			Currency:    "USD",
			CategoryID:  categoryIDs["accessories"],
			Images:      models.StringArray{"https://images.unsplash.com/photo-1547949003-9792a18a2601?w=800"},
			Stock:       80,
			IsActive:    true,
			SortOrder:   20,
		},
	}

	for _, product := range products {
		if product.CategoryID == 0 {
			stdLog.Printf("Skip product %s: category missing", product.Slug)
			continue
		}
		var existing models.Product
		if err := models.DB.Where("slug = ?", product.Slug).First(&existing).Error; err != nil {
			if err := models.DB.Create(&product).Error; err != nil {
				stdLog.Printf("Failed to create product %s: %v", product.Slug, err)
			} else {
				stdLog.Printf("Created product: %s", product.Slug)
			}
		} else {
			stdLog.Printf("Product already exists: %s", product.Slug)
		}
	}

	// 添加演示用户
	demoEmail := "demo@example.com"
	var existingUser models.User
	if err := models.DB.Where("email = ?", demoEmail).First(&existingUser).Error; err != nil {
		hash, hashErr := bcrypt.GenerateFromPassword([]byte("demo1234"), bcrypt.DefaultCost)
		if hashErr != nil {
			stdLog.Printf("Failed to hash demo password: %v", hashErr)
		} else {
			user := models.User{
				Email:        demoEmail,
				PasswordHash: string(hash),
				Name:         "Demo User",
				Status:       "active",
			}
			if err := models.DB.Create(&user).Error; err != nil {
				stdLog.Printf("Failed to create demo user: %v", err)
			} else {
				stdLog.Printf("Created demo user: %s", demoEmail)
			}
		}
	} else {
		stdLog.Printf("Demo user already exists: %s", demoEmail)
	}

	stdLog.Printf("Seed finished")
}
