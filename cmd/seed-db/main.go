// Command seed-db loads the embedded product catalog, a set of starter
// coupons and a demo account into the database.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/voltstore/storefront/db"
	"github.com/voltstore/storefront/internal/domain/coupon"
	"github.com/voltstore/storefront/internal/domain/product"
	"github.com/voltstore/storefront/internal/domain/user"
	"github.com/voltstore/storefront/internal/storage/mongodb"
)

type productJSON struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
	Description string          `json:"description"`
}

func main() {
	var (
		mongoURL     string
		database     string
		productsFile string
		demoPassword string
	)

	flag.StringVar(&mongoURL, "mongo-url", "", "MongoDB connection URL (or MONGO_URL env)")
	flag.StringVar(&database, "database", "storefront", "database name")
	flag.StringVar(&productsFile, "products-file", "", "products JSON file overriding the embedded catalog")
	flag.StringVar(&demoPassword, "demo-password", "", "password for the demo account (or STORE_DEMO_PASSWORD env); empty skips the account")
	flag.Parse()

	if mongoURL == "" {
		mongoURL = os.Getenv("MONGO_URL")
	}
	if mongoURL == "" {
		slog.Error("mongo URL is required: set --mongo-url or MONGO_URL")
		os.Exit(1)
	}
	if demoPassword == "" {
		demoPassword = os.Getenv("STORE_DEMO_PASSWORD")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, mongoURL, database, productsFile, demoPassword); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, mongoURL, database, productsFile, demoPassword string) error {
	slog.Info("connecting to database")

	client, err := mongodb.Connect(ctx, mongoURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	dbHandle := client.Database(database)
	if err := mongodb.EnsureIndexes(ctx, dbHandle); err != nil {
		return errors.Wrap(err, "ensure indexes")
	}

	if err := seedProducts(ctx, mongodb.NewProductRepository(dbHandle), productsFile); err != nil {
		return errors.Wrap(err, "seed products")
	}
	if err := seedCoupons(ctx, mongodb.NewCouponRepository(dbHandle)); err != nil {
		return errors.Wrap(err, "seed coupons")
	}
	if demoPassword != "" {
		if err := seedDemoUser(ctx, mongodb.NewUserRepository(dbHandle), demoPassword); err != nil {
			return errors.Wrap(err, "seed demo user")
		}
	}

	return nil
}

func seedProducts(ctx context.Context, repo *mongodb.ProductRepository, productsFile string) error {
	data := db.SeedProducts
	if productsFile != "" {
		slog.Info("reading products file", slog.String("path", productsFile))
		var err error
		if data, err = os.ReadFile(productsFile); err != nil {
			return errors.Wrap(err, "read products file")
		}
	}

	var products []productJSON
	if err := json.Unmarshal(data, &products); err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	slog.Info("upserting products", slog.Int("count", len(products)))

	for _, p := range products {
		if err := repo.Upsert(ctx, &product.Product{
			ID:          p.ID,
			Title:       p.Title,
			Price:       p.Price,
			Category:    p.Category,
			Image:       p.Image,
			Description: p.Description,
		}); err != nil {
			return errors.Wrapf(err, "upsert product %s", p.ID)
		}

		slog.Info("upserted product", slog.String("id", p.ID), slog.String("title", p.Title))
	}

	return nil
}

func seedCoupons(ctx context.Context, repo *mongodb.CouponRepository) error {
	slog.Info("seeding starter coupons")

	nextMonth := time.Now().AddDate(0, 1, 0)

	rules := []coupon.Rule{
		{
			Code:          "SAVE10",
			DiscountType:  coupon.DiscountPercent,
			Value:         decimal.NewFromInt(10),
			MinOrderValue: decimal.NewFromInt(500),
			Active:        true,
			Description:   "10% off orders over 500",
		},
		{
			Code:         "FLAT100",
			DiscountType: coupon.DiscountFlat,
			Value:        decimal.NewFromInt(100),
			Active:       true,
			Description:  "100 off any order",
		},
		{
			Code:         "WELCOME",
			DiscountType: coupon.DiscountPercent,
			Value:        decimal.NewFromInt(15),
			Active:       true,
			ExpiresAt:    &nextMonth,
			Description:  "Welcome: 15% off, limited time",
		},
	}

	for i := range rules {
		if err := repo.Upsert(ctx, &rules[i]); err != nil {
			return errors.Wrapf(err, "upsert coupon %s", rules[i].Code)
		}
		slog.Info("upserted coupon", slog.String("code", rules[i].Code))
	}

	return nil
}

func seedDemoUser(ctx context.Context, repo *mongodb.UserRepository, password string) error {
	const email = "demo@example.com"

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}

	err = repo.Create(ctx, &user.User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         "Demo User",
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	})
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			slog.Info("demo user already exists", slog.String("email", email))
			return nil
		}
		return errors.Wrap(err, "create demo user")
	}

	slog.Info("created demo user", slog.String("email", email))
	return nil
}
