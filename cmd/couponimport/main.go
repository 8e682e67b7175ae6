// Command couponimport loads gzipped CSV coupon definition files and upserts
// them by code. With S3 enabled, each path is first tried as a key under the
// configured prefix and falls back to the local file system.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"marketplace/internal/config"
	"marketplace/internal/coupon"
	"marketplace/internal/database"
	"marketplace/internal/repository"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	migrate := flag.Bool("migrate", false, "apply the database schema before importing")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: couponimport [-migrate] file.csv.gz [file.csv.gz ...]\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	paths := flag.Args()
	if len(paths) == 0 {
		flag.Usage()
		return fmt.Errorf("no coupon files given")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if *migrate || cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, pool, logger); err != nil {
			return err
		}
	}

	fileLoader := coupon.NewFileLoader(logger)
	var s3Loader coupon.Loader
	if cfg.S3.Enabled {
		s3Loader, err = coupon.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
			s3Loader = nil
		}
	}
	loader := coupon.NewFallbackLoader(s3Loader, fileLoader, cfg.S3.Prefix, cfg.S3.Enabled, logger)

	importer := coupon.NewImporter(loader, repository.NewCouponRepository(pool, logger), logger)

	result, err := importer.Import(ctx, paths)
	if err != nil {
		return fmt.Errorf("coupon import failed: %w", err)
	}

	logger.Info().
		Int("files", result.Files).
		Int("parsed", result.Parsed).
		Int("upserted", result.Upserted).
		Msg("coupon import completed")

	return nil
}
