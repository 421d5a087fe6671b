package main

import (
	"os"

	"github.com/anupamy140/final-ecommerce/internal/domain/model"
	"github.com/anupamy140/final-ecommerce/internal/stub"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// 開発用バックエンド。フロントが叩くREST面をインメモリで動かす。
func main() {
	//.envは無くてもよい
	_ = godotenv.Load()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev_secret_change_me"
	}

	s := stub.New(secret)
	s.PaymentURL = os.Getenv("PAYMENT_URL")
	seed(s)

	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		if v[0] != ':' {
			addr = ":" + v
		} else {
			addr = v
		}
	}

	log.Info("stub backend listening", zap.String("addr", addr))
	if err := s.Start(addr); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func seed(s *stub.Server) {
	s.SeedProduct(model.Product{
		Title: "Wireless Headphones", Description: "Over-ear, 30h battery",
		Price: 1999.00, Rating: 4.4, Stock: 25, Brand: "Sonic", Category: "electronics",
		Thumbnail: "https://placehold.co/300x300?text=headphones",
	})
	s.SeedProduct(model.Product{
		Title: "Espresso Maker", Description: "Stovetop, 6 cups",
		Price: 1499.50, Rating: 4.1, Stock: 10, Brand: "Brewio", Category: "kitchen",
		Thumbnail: "https://placehold.co/300x300?text=espresso",
	})
	s.SeedProduct(model.Product{
		Title: "Trail Running Shoes", Description: "Lightweight, grippy sole",
		Price: 3499.00, Rating: 4.7, Stock: 0, Brand: "Strider", Category: "sports",
		Thumbnail: "https://placehold.co/300x300?text=shoes",
	})
	s.SeedProduct(model.Product{
		Title: "Desk Lamp", Description: "Warm LED, USB-C",
		Price: 899.00, Rating: 3.9, Stock: 42, Brand: "Lumen", Category: "home",
		Thumbnail: "https://placehold.co/300x300?text=lamp",
	})
}
