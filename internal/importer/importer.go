// Package importer loads post analytics exports (CSV) into the dashboard store.
//
// DuckDB does the CSV parsing: every column is read as text so that the
// same loose decoding used by the save-post endpoint applies to each row.
package importer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"go.uber.org/zap"

	"socialdash/internal/metrics"
	"socialdash/internal/models"
	"socialdash/internal/store"
)

// TopicsColumn holds ";"-separated topic names.
const TopicsColumn = "topics"

// PostSaver persists one post with its topics.
type PostSaver interface {
	SavePost(ctx context.Context, p models.Post, tags []string) error
}

// Result counts what happened to each CSV row.
type Result struct {
	Imported   int
	Duplicates int
	Failed     int
}

// Importer reads CSV exports and saves them row by row.
type Importer struct {
	saver  PostSaver
	logger *zap.Logger
}

// New creates an Importer.
func New(saver PostSaver, logger *zap.Logger) *Importer {
	return &Importer{saver: saver, logger: logger.Named("importer")}
}

// ImportCSV saves every row of the CSV at path. Rows that fail to decode or
// already exist are counted and skipped; only I/O and store failures abort.
func (im *Importer) ImportCSV(ctx context.Context, path string) (Result, error) {
	var res Result
	if _, err := os.Stat(path); err != nil {
		return res, fmt.Errorf("csv file not accessible: %w", err)
	}

	start := time.Now()
	records, err := readCSV(ctx, path)
	if err != nil {
		return res, err
	}
	im.logger.Info("CSV loaded", zap.String("path", path), zap.Int("rows", len(records)), zap.Duration("elapsed", time.Since(start)))

	for i, fields := range records {
		tags := splitTopics(fields[TopicsColumn])
		delete(fields, TopicsColumn)

		post, err := models.DecodePost(fields)
		if err != nil {
			res.Failed++
			metrics.PostsImported.WithLabelValues("invalid").Inc()
			im.logger.Warn("Skipping invalid row", zap.Int("row", i+2), zap.Error(err))
			continue
		}

		err = im.saver.SavePost(ctx, post, tags)
		switch {
		case err == nil:
			res.Imported++
			metrics.PostsImported.WithLabelValues("imported").Inc()
		case errors.Is(err, store.ErrDuplicatePost):
			res.Duplicates++
			metrics.PostsImported.WithLabelValues("duplicate").Inc()
		default:
			metrics.PostsImported.WithLabelValues("error").Inc()
			return res, fmt.Errorf("row %d: %w", i+2, err)
		}
	}

	im.logger.Info("Import finished",
		zap.Int("imported", res.Imported),
		zap.Int("duplicates", res.Duplicates),
		zap.Int("failed", res.Failed))
	return res, nil
}

// readCSV returns each row keyed by normalized header name. Empty cells are omitted.
func readCSV(ctx context.Context, path string) ([]map[string]any, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}
	defer db.Close()

	query := fmt.Sprintf(`SELECT * FROM read_csv('%s', all_varchar=true, header=true)`,
		strings.ReplaceAll(path, "'", "''"))
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	keys := make([]string, len(cols))
	for i, c := range cols {
		keys[i] = normalizeHeader(c)
	}

	var records []map[string]any
	for rows.Next() {
		cells := make([]sql.NullString, len(cols))
		ptrs := make([]any, len(cols))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan csv row: %w", err)
		}

		record := make(map[string]any, len(cols))
		for i, cell := range cells {
			if cell.Valid && strings.TrimSpace(cell.String) != "" {
				record[keys[i]] = cell.String
			}
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate csv rows: %w", err)
	}
	return records, nil
}

// normalizeHeader maps "Post Datetime" and "post-datetime" to "post_datetime".
func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(h)
}

func splitTopics(v any) []string {
	s, _ := v.(string)
	if s == "" {
		return nil
	}
	var tags []string
	for _, t := range strings.Split(s, ";") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
