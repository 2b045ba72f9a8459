package store

import (
	"fmt"

	"github.com/Abaaza/pricelistextractor/internal/model"
)

// 价目记录以导出格式（wire 格式）落库，查询结果可直接回给前端或写 CSV

// ReplaceItems 用一次抽取的全量结果替换现有记录，单事务完成
func (s *Store) ReplaceItems(records []model.ExportRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM price_items`); err != nil {
		return fmt.Errorf("failed to clear price items: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO price_items
			(id, code, description, unit, category, subcategory,
			 rate, rate_reference, source_cell, source_sheet, keywords)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range records {
		r := &records[i]
		if _, err := stmt.Exec(
			r.ID, r.Code, r.Description, r.Unit, r.Category, r.Subcategory,
			r.Rate, r.CellRateReference, r.ExcelCellRef, r.SourceSheetName, r.Keywords,
		); err != nil {
			return fmt.Errorf("failed to insert item %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit items: %w", err)
	}
	return nil
}

// ListItems 查询记录；category 为空串时返回全部，按类目与编码排序
func (s *Store) ListItems(category string) ([]model.ExportRecord, error) {
	query := `
		SELECT id, code, description, unit, category, subcategory,
		       rate, rate_reference, source_cell, source_sheet, keywords
		FROM price_items
	`
	var args []interface{}
	if category != "" {
		query += ` WHERE category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY category, code`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var records []model.ExportRecord
	for rows.Next() {
		var r model.ExportRecord
		if err := rows.Scan(
			&r.ID, &r.Code, &r.Description, &r.Unit, &r.Category, &r.Subcategory,
			&r.Rate, &r.CellRateReference, &r.ExcelCellRef, &r.SourceSheetName, &r.Keywords,
		); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		// 落库前后 Rate 与 CellRateRate 始终一致
		r.CellRateRate = r.Rate
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}
	return records, nil
}

// ItemCount 当前记录总数
func (s *Store) ItemCount() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM price_items`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return count, nil
}

// Categories 各类目记录数
func (s *Store) Categories() (map[string]int, error) {
	rows, err := s.db.Query(`SELECT category, COUNT(*) FROM price_items GROUP BY category`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var category string
		var n int
		if err := rows.Scan(&category, &n); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		counts[category] = n
	}
	return counts, rows.Err()
}
