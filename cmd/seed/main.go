// Command seed fills the catalog with demo products, either from a YAML
// fixture file or generated with gofakeit.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/greenshop/backend/internal/domain/catalog"
	"github.com/greenshop/backend/internal/infrastructure/config"
	"github.com/greenshop/backend/internal/infrastructure/logger"
	"github.com/greenshop/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

func main() {
	var (
		fixturePath string
		count       int
		seed        uint64
		logLevel    string
	)
	flag.StringVar(&fixturePath, "file", "", "YAML fixture with products (default: generate fake products)")
	flag.IntVar(&count, "count", 24, "Number of fake products to generate when no fixture is given")
	flag.Uint64Var(&seed, "seed", 0, "Random seed for fake data (0 = random)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	var patches []catalog.ProductPatch
	if fixturePath != "" {
		fx, err := loadFixture(fixturePath)
		if err != nil {
			log.Fatal("Failed to load fixture", zap.Error(err))
		}
		for _, p := range fx.Products {
			patch, err := p.toPatch()
			if err != nil {
				log.Fatal("Invalid fixture product", zap.Error(err))
			}
			patches = append(patches, patch)
		}
	} else {
		patches = fakeProducts(gofakeit.New(seed), count)
	}

	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database,
		logger.NewGormLogger(log, logger.MapGormLogLevel(logLevel)))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if db.Driver() == persistence.DriverSQLite {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	created, err := seedProducts(context.Background(), persistence.NewGormProductRepository(db.DB), patches)
	if err != nil {
		log.Fatal("Seeding stopped", zap.Int("created", created), zap.Error(err))
	}
	log.Info("Catalog seeded", zap.Int("products", created))
}

// seedProducts validates and stores every patch, stopping at the first failure
func seedProducts(ctx context.Context, repo catalog.ProductRepository, patches []catalog.ProductPatch) (int, error) {
	for i, patch := range patches {
		product, err := catalog.NewProduct(patch)
		if err != nil {
			return i, fmt.Errorf("product %d: %w", i+1, err)
		}
		if err := repo.Create(ctx, product); err != nil {
			return i, fmt.Errorf("product %d: %w", i+1, err)
		}
	}
	return len(patches), nil
}
