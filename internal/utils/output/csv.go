package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/law-makers/iemrank/internal/engine"
	"github.com/law-makers/iemrank/pkg/models"
	"github.com/rs/zerolog"
)

// SaveCSV writes rows to a CSV file, one record per row, creating missing
// parent directories. Fields are quoted only when needed. The rows go to a
// temporary file next to path that is renamed over it once complete, so a
// failed write leaves any earlier file at path untouched.
func SaveCSV(rows models.Dataset, path string) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := file.Name()
	committed := false
	defer func() {
		if !committed {
			file.Close()
			os.Remove(tmp)
		}
	}()

	writer := csv.NewWriter(file)
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	if err := file.Chmod(0o644); err != nil {
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return err
	}
	committed = true
	return nil
}

// LoadCSV reads a CSV file written by SaveCSV. Records may have differing
// field counts.
func LoadCSV(path string) (models.Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	rows := make(models.Dataset, len(records))
	for i, rec := range records {
		rows[i] = models.Row(rec)
	}
	return rows, nil
}

// SamplePath returns where the sample dataset goes for a given output path:
// the same directory, file name prefixed with "sample_".
func SamplePath(path string) string {
	dir, base := filepath.Split(path)
	return filepath.Join(dir, "sample_"+base)
}

// CSVWriter persists datasets as CSV and reports success as a bool
type CSVWriter struct {
	logger zerolog.Logger
}

// NewCSVWriter creates a CSVWriter
func NewCSVWriter(logger zerolog.Logger) *CSVWriter {
	return &CSVWriter{logger: logger}
}

// Write saves rows to path. Failures are logged and reported as false.
func (w *CSVWriter) Write(rows models.Dataset, path string) bool {
	if err := SaveCSV(rows, path); err != nil {
		perr := engine.NewEngineError(engine.ErrCodePersistence, "failed to write CSV", err).
			WithDetail("path", path)
		w.logger.Error().Err(perr).Str("path", path).Msg("Save failed")
		return false
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	w.logger.Info().Int("rows", len(rows)).Str("path", abs).Msg("Saved")
	return true
}
