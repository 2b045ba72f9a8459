package exporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/Abaaza/pricelistextractor/internal/grid"
	"github.com/Abaaza/pricelistextractor/internal/model"
)

// 导出器：把协调后的记录写成 CSV/JSON 平面格式
// CSV 列顺序是对下游的兼容约定，见 model.ExportColumns

// Record 单条记录转导出格式
func Record(item *model.CanonicalItem) model.ExportRecord {
	rec := model.ExportRecord{
		ID:              item.ID,
		Code:            item.Code,
		Description:     item.Description,
		Unit:            item.Unit,
		Category:        item.Category,
		Subcategory:     item.Subcategory,
		ExcelCellRef:    grid.SheetCellAddress(item.SourceCell.Sheet, item.SourceCell.Row, item.SourceCell.Col),
		SourceSheetName: item.SourceCell.Sheet,
		Keywords:        model.JoinKeywords(item.Keywords),
	}
	if item.Rate != nil {
		rec.Rate = item.Rate
		rec.CellRateRate = item.Rate
	}
	if item.RateRef != nil {
		rec.CellRateReference = grid.SheetCellAddress(item.RateRef.Sheet, item.RateRef.Row, item.RateRef.Col)
	} else {
		// 无费率时仍给出回写位置，便于后续补价
		rec.CellRateReference = grid.SheetCellAddress(item.WriteBackRef.Sheet, item.WriteBackRef.Row, item.WriteBackRef.Col)
	}
	return rec
}

// Records 批量转换，保持输入顺序
func Records(items []model.CanonicalItem) []model.ExportRecord {
	records := make([]model.ExportRecord, len(items))
	for i := range items {
		records[i] = Record(&items[i])
	}
	return records
}

// WriteCSV 写出 CSV（含表头行）
func WriteCSV(w io.Writer, items []model.CanonicalItem) error {
	return WriteRecordsCSV(w, Records(items))
}

// WriteRecordsCSV 直接从导出格式写 CSV（存储层查询结果走这里）
func WriteRecordsCSV(w io.Writer, records []model.ExportRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(model.ExportColumns); err != nil {
		return fmt.Errorf("写 CSV 表头失败: %w", err)
	}
	for i := range records {
		if err := cw.Write(records[i].Fields()); err != nil {
			return fmt.Errorf("写 CSV 记录失败: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("刷新 CSV 失败: %w", err)
	}
	return nil
}

// WriteJSON 写出 JSON 数组（缩进格式，便于人工核对）
func WriteJSON(w io.Writer, items []model.CanonicalItem) error {
	return WriteRecordsJSON(w, Records(items))
}

// WriteRecordsJSON 直接从导出格式写 JSON
func WriteRecordsJSON(w io.Writer, records []model.ExportRecord) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("写 JSON 失败: %w", err)
	}
	return nil
}

// SaveCSV 导出 CSV 到文件
func SaveCSV(path string, items []model.CanonicalItem) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建导出文件失败: %w", err)
	}
	defer f.Close()
	return WriteCSV(f, items)
}

// SaveJSON 导出 JSON 到文件
func SaveJSON(path string, items []model.CanonicalItem) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建导出文件失败: %w", err)
	}
	defer f.Close()
	return WriteJSON(f, items)
}

// WriteRatesBack 把费率回写到工作簿的来源单元格
// 返回实际写入的单元格数；无费率的记录跳过
func WriteRatesBack(f *excelize.File, items []model.CanonicalItem) (int, error) {
	written := 0
	for i := range items {
		item := &items[i]
		if item.Rate == nil {
			continue
		}
		ref := item.WriteBackRef
		if item.RateRef != nil {
			ref = *item.RateRef
		}
		addr, err := excelize.CoordinatesToCellName(ref.Col+1, ref.Row+1)
		if err != nil {
			return written, fmt.Errorf("换算单元格地址失败: %w", err)
		}
		if err := f.SetCellValue(ref.Sheet, addr, *item.Rate); err != nil {
			return written, fmt.Errorf("回写费率到 %s!%s 失败: %w", ref.Sheet, addr, err)
		}
		written++
	}
	return written, nil
}
