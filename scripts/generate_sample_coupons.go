package main

import (
	"compress/gzip"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// generateSampleCoupons writes gzipped CSV coupon files for local imports.
// SUMMER10 appears in both files; the second definition wins on import.
func main() {
	dataDir := "data/coupons"

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	header := []string{
		"code", "shop_id", "discount_type", "value", "min_order_value",
		"start_date", "end_date", "usage_limit",
	}

	files := map[string][][]string{
		"coupons-2025-q1.csv.gz": {
			{"SUMMER10", "shop-fashion", "percentage", "10", "", "2025-01-01", "2025-12-31", ""},
			{"FLAT5", "shop-fashion", "flat", "5", "20", "2025-01-01", "2025-06-30", "100"},
			{"WELCOME", "shop-home", "percentage", "15", "50", "2025-01-01T00:00:00Z", "2026-01-01T00:00:00Z", "1000"},
		},
		"coupons-2025-q2.csv.gz": {
			{"SUMMER10", "shop-fashion", "percentage", "12.5", "30", "2025-04-01", "2025-12-31", "500"},
			{"BIGSPEND", "shop-home", "flat", "25", "200", "2025-04-01", "2025-09-30", "50"},
			{"ONESHOT", "shop-gadgets", "flat", "10", "", "2025-04-01", "2025-04-30", "1"},
		},
	}

	for filename, rows := range files {
		filePath := filepath.Join(dataDir, filename)

		if err := createCouponFile(filePath, header, rows); err != nil {
			log.Fatalf("Failed to create %s: %v", filename, err)
		}

		fmt.Printf("Created %s with %d coupons\n", filePath, len(rows))
	}

	fmt.Println("\nSample coupon files created successfully!")
	fmt.Println("Import them with: go run ./cmd/couponimport data/coupons/coupons-2025-q1.csv.gz data/coupons/coupons-2025-q2.csv.gz")
}

func createCouponFile(filePath string, header []string, rows [][]string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	w := csv.NewWriter(gzipWriter)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write coupons: %w", err)
	}

	return nil
}
