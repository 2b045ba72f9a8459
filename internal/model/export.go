package model

import (
	"strconv"
	"strings"
)

// ExportColumns CSV 列顺序，下游导入工具依赖该顺序，不可调整
var ExportColumns = []string{
	"id", "code", "description", "unit", "category", "subcategory",
	"rate", "cellRate_reference", "cellRate_rate",
	"excelCellReference", "sourceSheetName", "keywords",
}

// ExportRecord 对外持久化格式（CSV/JSON 共用）
// 单元格引用统一为 "Sheet!F20" 形式，工作表名去除空格
// 无费率时 Rate 为空，CSV 中导出为空串而非 0
type ExportRecord struct {
	ID                string  `json:"id"`
	Code              string  `json:"code"`
	Description       string  `json:"description"`
	Unit              string  `json:"unit"`
	Category          string  `json:"category"`
	Subcategory       string  `json:"subcategory"`
	Rate              *float64 `json:"rate"`
	CellRateReference string   `json:"cellRate_reference"`
	CellRateRate      *float64 `json:"cellRate_rate"`
	ExcelCellRef      string   `json:"excelCellReference"`
	SourceSheetName   string   `json:"sourceSheetName"`
	Keywords          string   `json:"keywords"` // | 分隔
}

// Fields 按 ExportColumns 顺序返回各列字符串值
func (r *ExportRecord) Fields() []string {
	return []string{
		r.ID, r.Code, r.Description, r.Unit, r.Category, r.Subcategory,
		formatRate(r.Rate), r.CellRateReference, formatRate(r.CellRateRate),
		r.ExcelCellRef, r.SourceSheetName, r.Keywords,
	}
}

// JoinKeywords 关键词列表转导出字符串
func JoinKeywords(keywords []string) string {
	return strings.Join(keywords, "|")
}

func formatRate(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
