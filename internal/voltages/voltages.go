// Package voltages loads the image/beam-voltage table that pairs each
// screen photograph with the accelerating voltage it was taken at.
package voltages

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/surfacelab/leedcal/internal/leed"
	"github.com/surfacelab/leedcal/internal/monitoring"
)

// Load reads a two-column CSV of (image filename, voltage) records and joins
// each filename against imagesDir. An optional header row is tolerated. Rows
// whose image file does not exist are logged and skipped; a malformed
// voltage is an error. The returned sequence preserves file order.
func Load(imagesDir, voltagesPath string) ([]leed.ImageVoltage, error) {
	f, err := os.Open(voltagesPath)
	if err != nil {
		return nil, fmt.Errorf("open voltage table: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 2
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse voltage table %s: %w", voltagesPath, err)
	}

	var pairs []leed.ImageVoltage
	for i, rec := range records {
		name := strings.TrimSpace(rec[0])
		voltage, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if err != nil {
			if i == 0 {
				// Header row.
				continue
			}
			return nil, fmt.Errorf("voltage table row %d: bad voltage %q", i+1, rec[1])
		}
		if voltage <= 0 {
			return nil, fmt.Errorf("voltage table row %d: voltage must be positive, got %v", i+1, voltage)
		}

		path := filepath.Join(imagesDir, name)
		if _, err := os.Stat(path); err != nil {
			monitoring.Logf("voltage table row %d: image %s not found, skipping", i+1, name)
			continue
		}
		pairs = append(pairs, leed.ImageVoltage{Path: path, Voltage: voltage})
	}

	return pairs, nil
}
