package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/Abaaza/pricelistextractor/internal/grid"
	"github.com/Abaaza/pricelistextractor/internal/model"
	"github.com/Abaaza/pricelistextractor/internal/profile"
	"github.com/Abaaza/pricelistextractor/internal/units"
)

// 字段抽取：对已判定为数据行的行产出结构化记录
// 所有解析失败均回落到默认值，唯一的丢弃路径是描述过短

// emptyCodeMarkers 视同无编码的占位值
var emptyCodeMarkers = map[string]bool{
	"nan": true, "none": true, "-": true, "": true,
}

// rateNumberThreshold 描述列中大于该值的纯数字视为疑似费率，不并入描述
const rateNumberThreshold = 10

var measurementPattern = regexp.MustCompile(`\d+(?:mm|m|kg|tonnes?)\b`)

// ExtractCode 取编码列值，压缩内部空白；占位值归一为空串
func ExtractCode(g *grid.Grid, row int, p *profile.Profile) string {
	code := strings.Join(strings.Fields(g.ValueAt(row, p.CodeCol)), " ")
	if emptyCodeMarkers[strings.ToLower(code)] {
		return ""
	}
	return code
}

// ExtractDescription 拼接描述列并展开缩写
// 单位格与疑似费率的纯数字不参与拼接
func ExtractDescription(g *grid.Grid, row int, p *profile.Profile) string {
	var parts []string
	for col := p.DescCol; col < p.DescCol+p.DescColCount; col++ {
		value := g.ValueAt(row, col)
		if value == "" {
			continue
		}
		if units.IsUnit(value, p.UnitSubstringMatch) {
			continue
		}
		if num, ok := parseNumber(value); ok && num > rateNumberThreshold {
			continue
		}
		parts = append(parts, value)
	}
	return ExpandAbbreviations(strings.Join(parts, " "), p)
}

// ExpandAbbreviations 按参数表展开缩写并压缩空白
// 字面量替换同时匹配原词与其大写形式，正则替换在其后执行
func ExpandAbbreviations(desc string, p *profile.Profile) string {
	for _, r := range p.Abbreviations {
		desc = strings.ReplaceAll(desc, r.Old, r.New)
		desc = strings.ReplaceAll(desc, strings.ToUpper(r.Old), r.New)
	}
	for _, fix := range p.RegexFixes {
		desc = fix.Pattern.ReplaceAllString(desc, fix.Repl)
	}
	return strings.Join(strings.Fields(desc), " ")
}

// ExtractUnit 按参数表的候选列查找单位，未找到时从描述推断，最终兜底 item
func ExtractUnit(g *grid.Grid, row int, desc string, p *profile.Profile) string {
	for _, col := range p.UnitCols {
		value := g.ValueAt(row, col)
		if value != "" && units.IsUnit(value, p.UnitSubstringMatch) {
			return units.Normalize(value)
		}
	}
	return units.InferFromDescription(desc, p.UnitInferRules)
}

// ExtractRate 查找费率：优先列在前，随后在扫描区间内从左到右兜底
// 未找到时费率为空，但仍返回该表惯用费率列作为回写位置
func ExtractRate(g *grid.Grid, row int, p *profile.Profile) (rate *float64, rateCol int, found bool) {
	tryCol := func(col int) bool {
		value := g.ValueAt(row, col)
		if value == "" {
			return false
		}
		num, ok := parseNumber(value)
		if !ok {
			return false
		}
		if num >= p.MaxRate {
			return false
		}
		if num < 0 || (num == 0 && !p.AllowZeroRate) {
			return false
		}
		rate = &num
		rateCol = col
		return true
	}

	for _, col := range p.PreferredRateCols {
		if tryCol(col) {
			return rate, rateCol, true
		}
	}
	for col := p.RateScanStart; col < p.RateScanEnd; col++ {
		if tryCol(col) {
			return rate, rateCol, true
		}
	}

	return nil, defaultRateCol(g, row, p), false
}

// defaultRateCol 无费率时的回写列：惯用列超出行宽则依次回落 E、D
func defaultRateCol(g *grid.Grid, row int, p *profile.Profile) int {
	width := 0
	for col := 0; col < g.ColCount(); col++ {
		if g.ValueAt(row, col) != "" {
			width = col + 1
		}
	}
	if width == 0 {
		return p.DefaultRateCol
	}
	for _, col := range []int{p.DefaultRateCol, 4} {
		if col < width {
			return col
		}
	}
	return 3
}

// ResolveSubcategory 子类目：优先最近的小节标题（且不同于默认值），
// 其次关键词规则表，最后取表默认值
func ResolveSubcategory(desc string, state *ScanState, p *profile.Profile) string {
	if state.CurrentSubcategory != "" && state.CurrentSubcategory != p.DefaultSubcategory {
		return state.CurrentSubcategory
	}
	if sub := p.Subcategory(desc); sub != "" {
		return sub
	}
	return p.DefaultSubcategory
}

// GenerateKeywords 生成检索关键词：尺寸量纲 + 词表命中 + 子类目，去重限量
func GenerateKeywords(desc, subcategory string, p *profile.Profile) []string {
	descLower := strings.ToLower(desc)
	var keywords []string

	measurements := measurementPattern.FindAllString(descLower, -1)
	if len(measurements) > 2 {
		measurements = measurements[:2]
	}
	keywords = append(keywords, measurements...)

	for _, term := range p.KeywordTerms {
		if strings.Contains(descLower, term) {
			keywords = append(keywords, term)
		}
	}

	if subcategory != "" {
		keywords = append(keywords, strings.ReplaceAll(strings.ToLower(subcategory), " ", "_"))
	}

	seen := make(map[string]bool, len(keywords))
	unique := keywords[:0]
	for _, kw := range keywords {
		if !seen[kw] {
			seen[kw] = true
			unique = append(unique, kw)
		}
	}
	if len(unique) > 6 {
		unique = unique[:6]
	}
	return unique
}

// ExtractRow 对单个数据行产出记录；描述过短返回 nil（整行丢弃，不产出部分记录）
func ExtractRow(g *grid.Grid, row int, state *ScanState, p *profile.Profile) *model.PriceItem {
	desc := ExtractDescription(g, row, p)
	if len(desc) < p.MinDescLen {
		return nil
	}

	code := ExtractCode(g, row, p)
	unit := ExtractUnit(g, row, desc, p)
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
	return item
}

// parseNumber 解析可能带千分位与货币符号的数字
func parseNumber(value string) (float64, bool) {
	cleaned := strings.NewReplacer(",", "", "£", "", "$", "").Replace(strings.TrimSpace(value))
	if cleaned == "" {
		return 0, false
	}
	num, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(num) || math.IsInf(num, 0) {
		return 0, false
	}
	return num, true
}
