package coupon

import (
	"context"
	"fmt"
	"sync"

	"marketplace/internal/model"

	"github.com/rs/zerolog"
)

// ImportResult summarises an import run.
type ImportResult struct {
	Files    int
	Parsed   int
	Upserted int
}

// Importer loads coupon definition files and upserts them by code.
type Importer struct {
	loader Loader
	writer Writer
	logger zerolog.Logger
}

// NewImporter creates a new coupon importer.
func NewImporter(loader Loader, writer Writer, logger zerolog.Logger) *Importer {
	return &Importer{
		loader: loader,
		writer: writer,
		logger: logger.With().Str("component", "coupon-importer").Logger(),
	}
}

// Import loads every file concurrently and writes the combined set. When the
// same code appears more than once the definition from the later file wins.
// Nothing is written if any file fails to load.
func (im *Importer) Import(ctx context.Context, paths []string) (*ImportResult, error) {
	im.logger.Info().Int("file_count", len(paths)).Msg("importing coupon files")

	type loadResult struct {
		index   int
		coupons []model.Coupon
		err     error
	}

	resultChan := make(chan loadResult, len(paths))
	var wg sync.WaitGroup

	for i, path := range paths {
		wg.Add(1)
		go func(index int, path string) {
			defer wg.Done()

			coupons, err := im.loader.Load(ctx, path)
			resultChan <- loadResult{index: index, coupons: coupons, err: err}
		}(i, path)
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	loaded := make([][]model.Coupon, len(paths))
	for result := range resultChan {
		if result.err != nil {
			return nil, fmt.Errorf("failed to load coupon file %s: %w", paths[result.index], result.err)
		}
		loaded[result.index] = result.coupons
	}

	byCode := make(map[string]int)
	var merged []model.Coupon
	parsed := 0
	for _, coupons := range loaded {
		parsed += len(coupons)
		for _, c := range coupons {
			if i, ok := byCode[c.Code]; ok {
				merged[i] = c
				continue
			}
			byCode[c.Code] = len(merged)
			merged = append(merged, c)
		}
	}

	result := &ImportResult{Files: len(paths), Parsed: parsed}
	if len(merged) == 0 {
		im.logger.Warn().Msg("no coupons found in input files")
		return result, nil
	}

	n, err := im.writer.Upsert(ctx, merged)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert coupons: %w", err)
	}
	result.Upserted = n

	im.logger.Info().
		Int("files", result.Files).
		Int("parsed", result.Parsed).
		Int("upserted", result.Upserted).
		Msg("coupon import completed")

	return result, nil
}
