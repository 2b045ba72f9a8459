package importer

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/Abaaza/pricelistextractor/internal/model"
	"github.com/Abaaza/pricelistextractor/internal/store"
)

// writeTestWorkbook 生成覆盖常规表与区间融合表的测试工作簿
func writeTestWorkbook(t *testing.T) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Groundworks"); err != nil {
		t.Fatalf("改名失败: %v", err)
	}
	boldStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		t.Fatalf("创建样式失败: %v", err)
	}

	// 小节标题（加粗）+ 两条数据行 + 一条重复行
	mustSetRow(t, f, "Groundworks", "A10", "DISPOSAL", "SECTION")
	if err := f.SetCellStyle("Groundworks", "A10", "B10", boldStyle); err != nil {
		t.Fatalf("设置样式失败: %v", err)
	}
	mustSetRow(t, f, "Groundworks", "A11", "2.1", "Cart away surplus excavated material", "m3", "", "", 45.5)
	mustSetRow(t, f, "Groundworks", "A12", "2.2", "Backfill with selected excavated material", "m3")
	mustSetRow(t, f, "Groundworks", "A13", "2.3", "Cart away surplus excavated material", "m3")

	// 表头 + 区间行模式
	if _, err := f.NewSheet("Drainage"); err != nil {
		t.Fatalf("建表失败: %v", err)
	}
	mustSetRow(t, f, "Drainage", "A1", "", "Excavate trenches for drainage pipes; depth to invert:")
	mustSetRow(t, f, "Drainage", "A2", "D1", "", 0.5, "-", 0.75)
	if err := f.SetCellValue("Drainage", "O2", 12.5); err != nil {
		t.Fatalf("写费率失败: %v", err)
	}

	path := filepath.Join(t.TempDir(), "pricelist.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("保存工作簿失败: %v", err)
	}
	return path
}

func mustSetRow(t *testing.T, f *excelize.File, sheet, cell string, values ...interface{}) {
	t.Helper()
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		t.Fatalf("写入 %s!%s 失败: %v", sheet, cell, err)
	}
}

func TestRun_EndToEnd(t *testing.T) {
	t.Parallel()

	path := writeTestWorkbook(t)
	c := NewCoordinator(nil, nil)

	canonical, report, err := c.Run(context.Background(), ExtractOptions{FilePath: path})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.TotalSheets != 2 || len(report.Sheets) != 2 {
		t.Fatalf("表数不符: %+v", report)
	}
	if report.Items != 3 || report.DuplicatesRemoved != 1 || report.ItemsWithRate != 2 {
		t.Fatalf("报告统计不符: items=%d dup=%d withRate=%d",
			report.Items, report.DuplicatesRemoved, report.ItemsWithRate)
	}
	// 表声明顺序稳定：Groundworks 在前
	if report.Sheets[0].SheetName != "Groundworks" || report.Sheets[1].SheetName != "Drainage" {
		t.Fatalf("表顺序不符: %s %s", report.Sheets[0].SheetName, report.Sheets[1].SheetName)
	}

	if len(canonical) != 3 {
		t.Fatalf("记录数 want=3 got=%d", len(canonical))
	}
	first := canonical[0]
	if first.Code != "GR0001" || first.Subcategory != "DISPOSAL" {
		t.Fatalf("首条不符: code=%s subcat=%s", first.Code, first.Subcategory)
	}
	if first.Rate == nil || *first.Rate != 45.5 {
		t.Fatalf("重复组应保留带费率的记录: %v", first.Rate)
	}

	last := canonical[2]
	if last.Code != "DR0001" {
		t.Fatalf("Drainage 编码 want=DR0001 got=%s", last.Code)
	}
	if last.Description != "Excavate trenches for drainage pipes; depth to invert: 0.5-0.75 m" {
		t.Fatalf("区间融合描述不符: %q", last.Description)
	}
	if last.Rate == nil || *last.Rate != 12.5 || last.RateRef == nil || last.RateRef.Col != 14 {
		t.Fatalf("区间行费率不符: %v %+v", last.Rate, last.RateRef)
	}
}

func TestExtract_ProgressEvents(t *testing.T) {
	t.Parallel()

	path := writeTestWorkbook(t)
	c := NewCoordinator(nil, nil)

	var events []ProgressEvent
	for event := range c.Extract(ExtractOptions{FilePath: path}) {
		events = append(events, event)
	}

	if len(events) == 0 || events[0].Type != "start" {
		t.Fatalf("首个事件应为 start: %+v", events)
	}
	done := events[len(events)-1]
	if done.Type != "done" {
		t.Fatalf("末尾事件应为 done got=%s", done.Type)
	}
	report, ok := done.Data.(*RunReport)
	if !ok || report.Items != 3 {
		t.Fatalf("done 事件应携带报告: %+v", done.Data)
	}

	counts := map[string]int{}
	for _, e := range events {
		counts[e.Type]++
	}
	if counts["sheet_start"] != 2 || counts["sheet_done"] != 2 || counts["reconcile"] != 1 {
		t.Fatalf("事件计数不符: %v", counts)
	}
}

func TestRun_PersistsToStore(t *testing.T) {
	t.Parallel()

	path := writeTestWorkbook(t)
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("建库失败: %v", err)
	}
	defer s.Close()

	c := NewCoordinator(s, nil)
	_, report, err := c.Run(context.Background(), ExtractOptions{FilePath: path, Persist: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	count, err := s.ItemCount()
	if err != nil {
		t.Fatalf("ItemCount: %v", err)
	}
	if count != report.Items {
		t.Fatalf("落库数与报告不符: %d != %d", count, report.Items)
	}

	runs, err := s.RecentRuns(1)
	if err != nil || len(runs) != 1 {
		t.Fatalf("RecentRuns: %v %d", err, len(runs))
	}
	if runs[0].RunID != report.RunID || runs[0].Status != "done" {
		t.Fatalf("抽取日志不符: %+v", runs[0])
	}
}

// upperEnhancer 测试替身：把描述转为大写
type upperEnhancer struct{}

func (upperEnhancer) Enhance(_ context.Context, items []model.PriceItem, _ string) []model.PriceItem {
	out := make([]model.PriceItem, len(items))
	copy(out, items)
	for i := range out {
		out[i].Description = strings.ToUpper(out[i].Description)
	}
	return out
}

func TestRun_EnhancerApplied(t *testing.T) {
	t.Parallel()

	path := writeTestWorkbook(t)
	c := NewCoordinator(nil, upperEnhancer{})

	canonical, report, err := c.Run(context.Background(), ExtractOptions{FilePath: path, Enhance: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !report.Enhanced {
		t.Fatalf("报告应标记已增强")
	}
	for _, item := range canonical {
		if item.Description != strings.ToUpper(item.Description) {
			t.Fatalf("描述未经过增强: %q", item.Description)
		}
	}
}

func TestRun_MissingFile(t *testing.T) {
	t.Parallel()

	c := NewCoordinator(nil, nil)
	_, _, err := c.Run(context.Background(), ExtractOptions{FilePath: "/no/such/file.xlsx"})
	if err == nil {
		t.Fatalf("不存在的文件应报错")
	}
}
