package progress

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/rbarros/parts-scraper/internal/models"
)

const (
	termColumn   = "termo"
	resultColumn = "resultado"
)

// ErrMissingTermColumn means the input table cannot drive a run at all.
var ErrMissingTermColumn = errors.New("required column 'termo' not found")

// CSVStore is the durable record of per-term outcomes. It keeps the whole
// input table in memory, mutates only the resultado column, and rewrites the
// file atomically on every checkpoint so a crash leaves either the old or
// the new snapshot intact. All other columns and the row order pass through
// unchanged.
type CSVStore struct {
	path   string
	logger *slog.Logger

	mu        sync.RWMutex
	header    []string
	rows      [][]string
	termIdx   int
	resultIdx int
	records   []models.TermRecord
	byRow     map[int]int
	backedUp  bool
}

func NewCSVStore(path string, logger *slog.Logger) *CSVStore {
	return &CSVStore{
		path:   path,
		logger: logger.With("component", "progress_store"),
	}
}

// Load parses the input CSV and reconstructs the term records from the last
// persisted checkpoint. Rows whose resultado cell is blank or unrecognized
// come back pending; rows with a terminal status are never re-processed.
func (s *CSVStore) Load() ([]models.TermRecord, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	all, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("%w: file is empty", ErrMissingTermColumn)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.header = all[0]
	s.termIdx = findColumn(s.header, termColumn)
	if s.termIdx < 0 {
		return nil, ErrMissingTermColumn
	}

	s.resultIdx = findColumn(s.header, resultColumn)
	if s.resultIdx < 0 {
		s.header = append(s.header, resultColumn)
		s.resultIdx = len(s.header) - 1
		s.logger.Info("resultado column created")
	}

	s.rows = make([][]string, 0, len(all)-1)
	s.records = s.records[:0]
	s.byRow = make(map[int]int)

	for i, row := range all[1:] {
		for len(row) < len(s.header) {
			row = append(row, "")
		}
		s.rows = append(s.rows, row)

		term := strings.TrimSpace(row[s.termIdx])
		if term == "" {
			continue
		}

		rec := models.TermRecord{
			Row:    i,
			Term:   term,
			Status: models.ParseStatus(strings.TrimSpace(row[s.resultIdx])),
		}
		s.byRow[i] = len(s.records)
		s.records = append(s.records, rec)
	}

	s.logger.Info("csv loaded",
		"path", s.path,
		"rows", len(s.rows),
		"terms", len(s.records),
	)

	return s.snapshotLocked(), nil
}

// SetStatus updates one term's outcome in memory. Durability comes from the
// next Checkpoint call.
func (s *CSVStore) SetStatus(row int, status models.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.byRow[row]
	if !ok {
		return
	}
	s.records[idx].Status = status
	s.rows[row][s.resultIdx] = string(status)
}

// Checkpoint atomically persists the full current table: write to a
// temporary file in the same directory, then rename over the original.
// The very first checkpoint also keeps a one-time .backup copy of the
// untouched input.
func (s *CSVStore) Checkpoint() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.header == nil {
		return fmt.Errorf("checkpoint before load")
	}

	if !s.backedUp {
		if err := s.backupOriginal(); err != nil {
			s.logger.Warn("could not back up input file", "error", err)
		}
		s.backedUp = true
	}

	tmpPath := s.path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create checkpoint temp file: %w", err)
	}

	writer := csv.NewWriter(f)
	if err := writer.Write(s.header); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write checkpoint header: %w", err)
	}
	for _, row := range s.rows {
		if err := writer.Write(row); err != nil {
			f.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("write checkpoint row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("flush checkpoint: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close checkpoint temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("swap checkpoint into place: %w", err)
	}

	return nil
}

// Records returns a snapshot of the current term records. Safe to call from
// a concurrent reader such as the status API.
func (s *CSVStore) Records() []models.TermRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Stats derives run statistics from the current records.
func (s *CSVStore) Stats() models.RunStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.ComputeStats(s.records)
}

func (s *CSVStore) snapshotLocked() []models.TermRecord {
	out := make([]models.TermRecord, len(s.records))
	copy(out, s.records)
	return out
}

func (s *CSVStore) backupOriginal() error {
	backupPath := s.path + ".backup"
	if _, err := os.Stat(backupPath); err == nil {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := os.WriteFile(backupPath, data, 0644); err != nil {
		return err
	}
	s.logger.Info("backup created", "path", backupPath)
	return nil
}

func findColumn(header []string, name string) int {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}
