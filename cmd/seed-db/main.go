// Command seed-db loads the menu, sample discount codes, and the
// initial accounts into the database.
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

	"github.com/buanay/pos/internal/domain/auth"
	"github.com/buanay/pos/internal/domain/catalog"
	"github.com/buanay/pos/internal/domain/discount"
	"github.com/buanay/pos/internal/storage/postgres"
)

type menuJSON struct {
	Categories []catalog.Category `json:"categories"`
	Toppings   []catalog.Topping  `json:"toppings"`
	Products   []struct {
		ID            string `json:"id"`
		Name          string `json:"name"`
		Category      string `json:"category"`
		BasePrice     int64  `json:"base_price"`
		AllowToppings bool   `json:"allow_toppings"`
	} `json:"products"`
}

// sizeUpcharge is added to the base price for the large size.
const sizeUpcharge = 5000

func main() {
	var (
		databaseURL   string
		menuFile      string
		adminPassword string
		staffPassword string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&menuFile, "menu-file", "db/seed/products.json", "path to the menu JSON file")
	flag.StringVar(&adminPassword, "admin-password", "", "password for the admin account (or POS_SEED_ADMIN_PASSWORD env)")
	flag.StringVar(&staffPassword, "staff-password", "", "password for the staff account (or POS_SEED_STAFF_PASSWORD env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if adminPassword == "" {
		adminPassword = os.Getenv("POS_SEED_ADMIN_PASSWORD")
	}
	if staffPassword == "" {
		staffPassword = os.Getenv("POS_SEED_STAFF_PASSWORD")
	}
	if adminPassword == "" || staffPassword == "" {
		slog.Error("account passwords are required: set --admin-password and --staff-password")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, menuFile, adminPassword, staffPassword); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, menuFile, adminPassword, staffPassword string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedMenu(ctx, postgres.NewCatalogRepository(pool), menuFile); err != nil {
		return errors.Wrap(err, "seed menu")
	}
	if err := seedDiscounts(ctx, postgres.NewDiscountRepository(pool)); err != nil {
		return errors.Wrap(err, "seed discounts")
	}
	if err := seedUsers(ctx, postgres.NewUserRepository(pool), adminPassword, staffPassword); err != nil {
		return errors.Wrap(err, "seed users")
	}

	return nil
}

func seedMenu(ctx context.Context, repo *postgres.CatalogRepository, menuFile string) error {
	slog.Info("reading menu file", slog.String("path", menuFile))

	data, err := os.ReadFile(menuFile)
	if err != nil {
		return errors.Wrap(err, "read menu file")
	}

	var menu menuJSON
	if err := json.Unmarshal(data, &menu); err != nil {
		return errors.Wrap(err, "parse menu JSON")
	}

	for i, c := range menu.Categories {
		if err := repo.UpsertCategory(ctx, c, i); err != nil {
			return err
		}
	}

	for _, in := range menu.Products {
		p := catalog.Product{
			ID:       in.ID,
			Name:     in.Name,
			Category: in.Category,
			Sizes: []catalog.Size{
				{Name: "M", Price: in.BasePrice},
				{Name: "L", Price: in.BasePrice + sizeUpcharge},
			},
			AllowToppings: in.AllowToppings,
		}
		if in.AllowToppings {
			p.Toppings = menu.Toppings
		}
		if err := repo.UpsertProduct(ctx, p); err != nil {
			return err
		}
	}

	slog.Info("menu seeded",
		slog.Int("categories", len(menu.Categories)),
		slog.Int("products", len(menu.Products)),
	)
	return nil
}

func seedDiscounts(ctx context.Context, repo *postgres.DiscountRepository) error {
	codes := []discount.Code{
		{
			Code:  "GIAM10",
			Type:  discount.TypePercentage,
			Value: 10,
		},
		{
			Code:              "GIAM20",
			Type:              discount.TypePercentage,
			Value:             20,
			MinOrderAmount:    100000,
			MaxDiscountAmount: 50000,
		},
		{
			Code:           "FREESHIP",
			Type:           discount.TypeFixed,
			Value:          15000,
			MinOrderAmount: 50000,
		},
	}

	for i := range codes {
		codes[i].ID = uuid.New().String()
		codes[i].Active = true
		codes[i].CreatedAt = time.Now()
		if err := repo.Create(ctx, &codes[i]); err != nil {
			// Codes are unique; rerunning the seed hits the existing rows.
			slog.Warn("skipping discount", slog.String("code", codes[i].Code), slog.String("error", err.Error()))
			continue
		}
		slog.Info("discount seeded", slog.String("code", codes[i].Code))
	}
	return nil
}

func seedUsers(ctx context.Context, repo *postgres.UserRepository, adminPassword, staffPassword string) error {
	accounts := []struct {
		username string
		password string
		role     auth.Role
	}{
		{"admin", adminPassword, auth.RoleAdmin},
		{"staff", staffPassword, auth.RoleStaff},
	}

	for _, a := range accounts {
		hash, err := auth.HashPassword(a.password)
		if err != nil {
			return err
		}
		u := auth.User{
			ID:           uuid.New().String(),
			Username:     a.username,
			PasswordHash: hash,
			Role:         a.role,
		}
		if err := repo.Upsert(ctx, u); err != nil {
			return err
		}
		slog.Info("user seeded", slog.String("username", a.username), slog.String("role", string(a.role)))
	}
	return nil
}
