package exporter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/Abaaza/pricelistextractor/internal/model"
)

func sampleItems() []model.CanonicalItem {
	rate := 85.5
	return []model.CanonicalItem{
		{
			ID: "GR_7bf3774c",
			PriceItem: model.PriceItem{
				Code:        "GR0001",
				Description: "Excavate trench, width 600mm",
				Unit:        "m3",
				Category:    "Groundworks",
				Subcategory: "Trench Excavation",
				Rate:        &rate,
				RateRef:     &model.CellRef{Sheet: "Groundworks", Row: 19, Col: 5},
				SourceCell:  model.CellRef{Sheet: "Groundworks", Row: 19, Col: 0},
				Keywords:    []string{"600mm", "trench"},
			},
		},
		{
			ID: "RC_11223344",
			PriceItem: model.PriceItem{
				Code:         "RC0001",
				Description:  "Formwork to soffit of slab",
				Unit:         "m2",
				Category:     "RC Works",
				Subcategory:  "Formwork",
				WriteBackRef: model.CellRef{Sheet: "RC Works", Row: 10, Col: 5},
				SourceCell:   model.CellRef{Sheet: "RC Works", Row: 10, Col: 0},
			},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleItems()); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("读回 CSV 失败: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("行数 want=3 got=%d", len(rows))
	}
	if !reflect.DeepEqual(rows[0], model.ExportColumns) {
		t.Fatalf("表头不符: %v", rows[0])
	}

	first := rows[1]
	if first[6] != "85.5" {
		t.Fatalf("rate 列 want=85.5 got=%s", first[6])
	}
	if first[7] != "Groundworks!F20" {
		t.Fatalf("cellRate_reference want=Groundworks!F20 got=%s", first[7])
	}
	if first[9] != "Groundworks!A20" {
		t.Fatalf("excelCellReference want=Groundworks!A20 got=%s", first[9])
	}
	if first[11] != "600mm|trench" {
		t.Fatalf("keywords 管道分隔 got=%s", first[11])
	}

	second := rows[2]
	if second[6] != "" || second[8] != "" {
		t.Fatalf("无费率应导出空串 got=%q/%q", second[6], second[8])
	}
	// 无费率仍给出回写位置，表名去空格
	if second[7] != "RCWorks!F11" {
		t.Fatalf("回写引用 want=RCWorks!F11 got=%s", second[7])
	}
	if second[10] != "RC Works" {
		t.Fatalf("sourceSheetName 保留原名 got=%s", second[10])
	}
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleItems()); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var decoded []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("读回 JSON 失败: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("记录数 want=2 got=%d", len(decoded))
	}
	if decoded[0]["rate"] != 85.5 {
		t.Fatalf("rate want=85.5 got=%v", decoded[0]["rate"])
	}
	if decoded[1]["rate"] != nil {
		t.Fatalf("无费率应为 null got=%v", decoded[1]["rate"])
	}
	if decoded[0]["cellRate_reference"] != "Groundworks!F20" {
		t.Fatalf("引用不符: %v", decoded[0]["cellRate_reference"])
	}
}

func TestWriteRatesBack(t *testing.T) {
	t.Parallel()

	f := excelize.NewFile()
	defer f.Close()
	if _, err := f.NewSheet("Groundworks"); err != nil {
		t.Fatalf("建表失败: %v", err)
	}

	items := sampleItems()
	written, err := WriteRatesBack(f, items)
	if err != nil {
		t.Fatalf("WriteRatesBack: %v", err)
	}
	if written != 1 {
		t.Fatalf("写入数 want=1 got=%d", written)
	}

	got, err := f.GetCellValue("Groundworks", "F20")
	if err != nil {
		t.Fatalf("读回单元格失败: %v", err)
	}
	if got != "85.5" {
		t.Fatalf("回写值 want=85.5 got=%s", got)
	}
}
