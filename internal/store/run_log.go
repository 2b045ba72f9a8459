package store

import (
	"fmt"
	"time"
)

// RunRecord 单次抽取的概要日志
type RunRecord struct {
	RunID             string    `json:"runId"`
	Filename          string    `json:"filename"`
	TotalSheets       int       `json:"totalSheets"`
	ExtractedSheets   int       `json:"extractedSheets"`
	Items             int       `json:"items"`
	ItemsWithRate     int       `json:"itemsWithRate"`
	DuplicatesRemoved int       `json:"duplicatesRemoved"`
	Enhanced          bool      `json:"enhanced"`
	Duration          int64     `json:"durationMs"`
	Status            string    `json:"status"`
	ErrorMessage      string    `json:"errorMessage,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

// LogRun 记录一次抽取
func (s *Store) LogRun(r RunRecord) error {
	enhanced := 0
	if r.Enhanced {
		enhanced = 1
	}
	_, err := s.db.Exec(`
		INSERT INTO run_log
			(run_id, filename, total_sheets, extracted_sheets, items,
			 items_with_rate, duplicates_removed, enhanced, duration_ms, status, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.RunID, r.Filename, r.TotalSheets, r.ExtractedSheets, r.Items,
		r.ItemsWithRate, r.DuplicatesRemoved, enhanced, r.Duration, r.Status, r.ErrorMessage)
	if err != nil {
		return fmt.Errorf("failed to insert run log: %w", err)
	}
	return nil
}

// RecentRuns 最近的抽取记录，按时间倒序
func (s *Store) RecentRuns(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
		SELECT run_id, filename, total_sheets, extracted_sheets, items,
		       items_with_rate, duplicates_removed, enhanced, duration_ms,
		       status, error_message, created_at
		FROM run_log
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query run log: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		var enhanced int
		if err := rows.Scan(
			&r.RunID, &r.Filename, &r.TotalSheets, &r.ExtractedSheets, &r.Items,
			&r.ItemsWithRate, &r.DuplicatesRemoved, &enhanced, &r.Duration,
			&r.Status, &r.ErrorMessage, &r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run log: %w", err)
		}
		r.Enhanced = enhanced == 1
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate run log: %w", err)
	}
	return runs, nil
}
