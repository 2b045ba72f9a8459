package profile

import (
	"regexp"
	"strings"

	"github.com/Abaaza/pricelistextractor/internal/units"
)

// Replacement 字面量缩写展开（有序）
type Replacement struct {
	Old string
	New string
}

// RegexFix 正则缩写展开，如 "150thk" -> "150mm thick"
type RegexFix struct {
	Pattern *regexp.Regexp
	Repl    string
}

// SubcategoryRule 子类目判定规则：描述须包含 Match 中全部关键词（按序首条命中生效）
type SubcategoryRule struct {
	Match []string
	Name  string
}

// RowWindow 行窗口 [Start, End)，表头+区间行融合仅在窗口内生效
// 跨窗口时当前表头状态清空
type RowWindow struct {
	Start int
	End   int
}

// Contains 判断行号是否落在窗口内
func (w RowWindow) Contains(row int) bool {
	return row >= w.Start && row < w.End
}

// Profile 单个工作表的抽取参数表
// 近似重复的逐表脚本折叠为一份引擎 + 每表一份参数
type Profile struct {
	Name               string // 匹配用标识
	Category           string // 产出记录的固定类目
	DefaultSubcategory string // 无表头、无规则命中时的子类目

	StartRow       int // 数据起始行（0 起始）
	MinFilledCells int // 行非空格数低于该值直接跳过
	CodeCol        int // 编码列
	DescCol        int // 描述起始列
	DescColCount   int // 描述最多拼接的列数
	MinDescLen     int // 描述最短长度，不足则丢弃该行

	UnitCols           []int // 单位查找列（按序）
	UnitSubstringMatch bool  // 单位宽松匹配开关，默认精确

	PreferredRateCols []int   // 费率优先查找列
	RateScanStart     int     // 费率兜底扫描起始列
	RateScanEnd       int     // 费率兜底扫描结束列（不含）
	DefaultRateCol    int     // 未找到费率时回写引用指向的列
	MaxRate           float64 // 费率合理性上限（不含）
	AllowZeroRate     bool    // 是否允许 0 费率

	Keywords      []string // 数据行兜底判定关键词
	Abbreviations []Replacement
	RegexFixes    []RegexFix

	SubcategoryRules []SubcategoryRule
	UnitInferRules   []units.InferRule
	KeywordTerms     []string // 导出关键词候选词表

	// 表头+区间行融合参数
	RangeWindows   []RowWindow
	RangeCols      [3]int   // (下限, 分隔符, 上限) 三列位置
	HeaderMinLen   int      // 表头行最短文本长度
	HeaderKeywords []string // 表头行须包含的关键词
	RangeJoinLabel string   // 融合时的连接标签，如 "depth to invert"
}

// Subcategory 按规则表判定子类目，未命中返回空串
func (p *Profile) Subcategory(desc string) string {
	descLower := strings.ToLower(desc)
	for _, rule := range p.SubcategoryRules {
		matched := true
		for _, kw := range rule.Match {
			if !strings.Contains(descLower, kw) {
				matched = false
				break
			}
		}
		if matched {
			return rule.Name
		}
	}
	return ""
}

// InRangeWindow 行号是否落在任一融合窗口内
func (p *Profile) InRangeWindow(row int) bool {
	for _, w := range p.RangeWindows {
		if w.Contains(row) {
			return true
		}
	}
	return false
}

// WindowIndex 行号所在窗口序号，-1 表示窗口外
func (p *Profile) WindowIndex(row int) int {
	for i, w := range p.RangeWindows {
		if w.Contains(row) {
			return i
		}
	}
	return -1
}

// normalizeName 表名匹配前规范化：转小写、去空格
func normalizeName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "")
}

// ForSheet 按表名取参数表，未识别的表回落到通用参数
func ForSheet(sheetName string) *Profile {
	normalized := normalizeName(sheetName)
	for _, p := range builtins {
		if strings.Contains(normalized, normalizeName(p.Name)) {
			cloned := *p
			cloned.Category = p.Category
			return &cloned
		}
	}
	generic := *genericProfile
	generic.Category = strings.TrimSpace(sheetName)
	generic.DefaultSubcategory = "General " + strings.TrimSpace(sheetName)
	return &generic
}

// Builtins 返回全部内置参数表（含表名），供协调器遍历工作簿时参考
func Builtins() []*Profile {
	result := make([]*Profile, len(builtins))
	copy(result, builtins)
	return result
}
