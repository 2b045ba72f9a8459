package extract

import (
	"strings"

	"github.com/Abaaza/pricelistextractor/internal/grid"
	"github.com/Abaaza/pricelistextractor/internal/profile"
	"github.com/Abaaza/pricelistextractor/internal/units"
)

// boldHeaderCols 加粗标题判定检查的前几列
const boldHeaderCols = 5

// Classify 行分类，按优先级依次判定，命中即返回
// 标题行同时满足数据行条件时标题优先（标题行不产出记录）
// 返回值第二项为标题文本，仅 RowSectionHeader 时有意义
func Classify(g *grid.Grid, row int, p *profile.Profile) (RowKind, string) {
	// 1. 空行判定
	if g.FilledCells(row) < p.MinFilledCells {
		return RowSkip, ""
	}

	// 2. 加粗标题：前五列中有内容的单元格须全部加粗
	if kind, header := classifyBoldHeader(g, row, p); kind == RowSectionHeader {
		return kind, header
	}

	// 3. 编码+描述锚点
	if g.ValueAt(row, p.CodeCol) != "" {
		for _, col := range []int{p.DescCol, p.DescCol + 1} {
			text := g.ValueAt(row, col)
			if len(text) >= p.MinDescLen && !units.IsUnit(text, p.UnitSubstringMatch) {
				return RowData, ""
			}
		}
	}

	// 4. 关键词兜底：结构不清晰时按内容判定
	for col := 0; col < boldHeaderCols; col++ {
		text := strings.ToLower(g.ValueAt(row, col))
		if text == "" {
			continue
		}
		for _, kw := range p.Keywords {
			if strings.Contains(text, kw) {
				return RowData, ""
			}
		}
	}

	return RowSkip, ""
}

// classifyBoldHeader 加粗标题规则
// 标题文本取前五列中第一个非空且非单位的值
func classifyBoldHeader(g *grid.Grid, row int, p *profile.Profile) (RowKind, string) {
	hasContent := false
	headerText := ""
	for col := 0; col < boldHeaderCols; col++ {
		value := g.ValueAt(row, col)
		if value == "" {
			continue
		}
		hasContent = true
		if !g.IsBold(row, col) {
			return RowSkip, ""
		}
		if headerText == "" && !units.IsUnit(value, p.UnitSubstringMatch) {
			headerText = value
		}
	}
	if hasContent && headerText != "" {
		return RowSectionHeader, headerText
	}
	return RowSkip, ""
}
