// Package main provides the offline migration tool that introduces sequential
// integer ids and rewrites legacy storage-key cross-references. Run it once
// against a pre-migration database, with the API servers stopped.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/smart-stationery/backend/config"
	"github.com/smart-stationery/backend/migration"
	"github.com/smart-stationery/backend/repository"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "report what would change without writing")
	flag.Parse()

	logger := log.New(os.Stdout, "idmigrate: ", log.LstdFlags)

	cfg, err := config.LoadDatabaseConfig()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := openDatabase(cfg)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	rewriter := migration.NewRewriter(
		db,
		repository.NewSequenceRepository(db),
		repository.NewUserRepository(db),
		repository.NewCategoryRepository(db),
		repository.NewProductRepository(db),
		repository.NewOrderRepository(db),
		repository.NewCartItemRepository(db),
		repository.NewWishlistRepository(db),
		logger,
	)

	ctx := context.Background()

	if *dryRun {
		summary, err := dryRunPass(ctx, db, rewriter)
		if err != nil {
			logger.Fatalf("Dry run failed: %v", err)
		}
		reportSummary(logger, summary, true)
		return
	}

	summary, err := rewriter.Run(ctx)
	if err != nil {
		logger.Fatalf("Migration failed: %v", err)
	}
	reportSummary(logger, summary, false)
}

// dryRunPass executes the full pass inside a transaction that always rolls
// back, so the summary reflects real work without persisting any of it.
func dryRunPass(ctx context.Context, db *gorm.DB, rewriter *migration.Rewriter) (*migration.Summary, error) {
	var summary *migration.Summary

	tx := db.Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	defer tx.Rollback()

	txCtx := context.WithValue(ctx, repository.TxContextKey, tx)

	var err error
	summary, err = rewriter.Run(txCtx)
	if err != nil {
		return nil, err
	}

	return summary, nil
}

func reportSummary(logger *log.Logger, summary *migration.Summary, dryRun bool) {
	verb := "changed"
	if dryRun {
		verb = "would change"
	}
	if !summary.Changed() {
		logger.Printf("nothing %s: database is already migrated", verb)
		return
	}
	logger.Printf("%s: %d users, %d categories, %d products, %d orders stamped; %d order refs, %d order item refs, %d cart refs, %d wishlist refs rewritten; %d dangling references left untouched",
		verb,
		summary.UsersStamped, summary.CategoriesStamped, summary.ProductsStamped, summary.OrdersStamped,
		summary.OrderUserRefsRewritten, summary.OrderItemRefsRewritten,
		summary.CartItemRefsRewritten, summary.WishlistItemRefsRewritten,
		summary.DanglingRefs)
}

func openDatabase(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
