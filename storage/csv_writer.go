package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"rental-intel/models"
)

// CSVWriter exports the ranked owner summary to a CSV file.
type CSVWriter struct {
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write([]string{
		"primary_phone", "primary_host_id", "names", "platforms", "listing_count",
		"avg_price_per_night", "estimated_monthly_revenue", "risk_score",
		"first_seen_at", "last_seen_at",
	}); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// WriteOwners appends one row per owner, in the order given.
func (c *CSVWriter) WriteOwners(owners []*models.Owner) error {
	for _, o := range owners {
		row := []string{
			o.PrimaryPhone,
			o.PrimaryHostID,
			strings.Join(o.Names, "; "),
			strings.Join(o.Platforms, "; "),
			strconv.Itoa(o.ListingCount),
			strconv.FormatFloat(o.AvgPricePerNight, 'f', 2, 64),
			strconv.FormatFloat(o.EstimatedMonthlyRevenue, 'f', 2, 64),
			strconv.FormatFloat(o.RiskScore, 'f', 2, 64),
			o.FirstSeenAt.Format(time.RFC3339),
			o.LastSeenAt.Format(time.RFC3339),
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}
