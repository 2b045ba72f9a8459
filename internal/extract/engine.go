package extract

import (
	"time"

	"github.com/Abaaza/pricelistextractor/internal/grid"
	"github.com/Abaaza/pricelistextractor/internal/model"
	"github.com/Abaaza/pricelistextractor/internal/profile"
)

// ScanSheet 顺序扫描单个工作表，产出原始记录与统计
// 单表内不可并行：行 N 的归属依赖行 N-1 留下的表头状态
func ScanSheet(g *grid.Grid, p *profile.Profile) ([]model.PriceItem, SheetResult) {
	start := time.Now()
	state := NewScanState()
	var items []model.PriceItem

	result := SheetResult{
		SheetName: g.SheetName(),
		Category:  p.Category,
		Status:    "extracted",
		RowsTotal: g.RowCount(),
	}

	for row := p.StartRow; row < g.RowCount(); row++ {
		state.EnterRow(row, p)

		// 区间融合表头行：记录状态后跳过
		if state.ObserveHeader(g, row, p) {
			result.RowsProcessed++
			continue
		}

		// 区间行依赖已存的表头，单独成条
		if state.InRangeWindow() && state.CurrentHeader != "" {
			if item, ok := extractRangeRow(g, row, state, p); ok {
				result.RowsProcessed++
				items = append(items, *item)
				continue
			}
		}

		kind, headerText := Classify(g, row, p)
		switch kind {
		case RowSectionHeader:
			// 标题行只更新状态，不产出记录
			state.CurrentSubcategory = headerText
			result.RowsProcessed++
		case RowData:
			result.RowsProcessed++
			item := ExtractRow(g, row, state, p)
			if item == nil {
				// 描述过短，整行丢弃
				result.RowsSkipped++
				continue
			}
			items = append(items, *item)
		default:
			result.RowsSkipped++
		}
	}

	for i := range items {
		if items[i].Rate != nil {
			result.ItemsWithRate++
		}
		if items[i].RateRef != nil {
			result.ItemsWithRateRef++
		}
	}
	result.Items = len(items)
	result.Duration = time.Since(start)

	return items, result
}

// extractRangeRow 处理区间行：表头与区间文本融合为完整描述
func extractRangeRow(g *grid.Grid, row int, state *ScanState, p *profile.Profile) (*model.PriceItem, bool) {
	rangeText, ok := RangeText(g, row, p)
	if !ok {
		return nil, false
	}
	code := ExtractCode(g, row, p)
	if code == "" {
		return nil, false
	}

	desc := state.FuseDescription(rangeText, RangeUnit(g, row, p), p)
	if len(desc) < p.MinDescLen {
		return nil, false
	}

	unit := RangeUnit(g, row, p)
	rate, rateCol, found := ExtractRate(g, row, p)
	subcategory := ResolveSubcategory(desc, state, p)

	item := &model.PriceItem{
		Code:         code,
		Description:  desc,
		Unit:         unit,
		Category:     p.Category,
		Subcategory:  subcategory,
		Rate:         rate,
		WriteBackRef: model.CellRef{Sheet: g.SheetName(), Row: row, Col: rateCol},
		SourceCell:   model.CellRef{Sheet: g.SheetName(), Row: row, Col: p.CodeCol},
		Keywords:     GenerateKeywords(desc, subcategory, p),
	}
	if found {
		item.RateRef = &model.CellRef{Sheet: g.SheetName(), Row: row, Col: rateCol}
	}
	return item, true
}
