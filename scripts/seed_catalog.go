//go:build ignore

// seed_catalog fills a development backend with generated categories and
// products through the merchant API. It logs in with SEED_EMAIL and
// SEED_PASSWORD.
//
//	SEED_EMAIL=merchant@example.com SEED_PASSWORD=secret go run scripts/seed_catalog.go -products 40
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"shopcart/internal/backend"
	"shopcart/internal/config"
	"shopcart/internal/model"

	"github.com/brianvoe/gofakeit/v7"
)

func main() {
	categories := flag.Int("categories", 4, "number of categories to create")
	products := flag.Int("products", 20, "number of products to create")
	seed := flag.Uint64("seed", 0, "faker seed, 0 for random")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := config.NewLogger(cfg.Logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	api := backend.New(backend.Options{
		BaseURL:   cfg.Backend.BaseURL,
		Timeout:   cfg.Backend.Timeout(),
		RateLimit: cfg.Backend.RateLimit,
		RateBurst: cfg.Backend.RateBurst,
	}, logger)

	login, err := api.Login(ctx, model.LoginRequest{Email: os.Getenv("SEED_EMAIL"), Password: os.Getenv("SEED_PASSWORD")})
	if err != nil {
		log.Fatalf("Failed to log in: %v", err)
	}
	if login.Role != model.RoleMerchant && login.Role != model.RoleAdmin {
		log.Fatalf("Account %s has role %q; a merchant account is required", login.Email, login.Role)
	}

	f := gofakeit.New(*seed)

	created := make([]*model.Category, 0, *categories)
	for i := 0; i < *categories; i++ {
		category, err := api.CreateCategory(ctx, login.Token, model.CategoryInput{Name: f.ProductCategory()})
		if err != nil {
			log.Fatalf("Failed to create category: %v", err)
		}
		created = append(created, category)
		fmt.Printf("Created category %d: %s\n", category.ID, category.Name)
	}
	if len(created) == 0 {
		log.Fatal("At least one category is required")
	}

	for i := 0; i < *products; i++ {
		category := created[i%len(created)]
		input := model.ProductInput{
			Name:        f.ProductName(),
			Description: f.ProductDescription(),
			Price:       float64(f.Number(50, 5000)),
			Stock:       f.Number(0, 200),
			CategoryID:  category.ID,
			Images: []model.ProductImage{{
				Name:   fmt.Sprintf("seed-%d.jpg", i),
				URL:    fmt.Sprintf("https://picsum.photos/seed/%s/600/600", f.LetterN(8)),
				IsMain: true,
			}},
		}
		product, err := api.CreateAdminProduct(ctx, login.Token, input)
		if err != nil {
			log.Fatalf("Failed to create product %q: %v", input.Name, err)
		}
		fmt.Printf("Created product %d: %s (%.2f) in %s\n", product.ID, product.Name, product.Price, category.Name)
	}

	fmt.Printf("\nSeeded %d categories and %d products\n", len(created), *products)
}
