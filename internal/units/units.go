package units

import (
	"strconv"
	"strings"
)

// DefaultUnit 无法解析单位时的兜底值
const DefaultUnit = "item"

// aliasMap 单位别名 -> 规范形式
var aliasMap = map[string]string{
	"m2": "m2", "sqm": "m2", "sq.m": "m2", "sq m": "m2", "m²": "m2",
	"m3": "m3", "cum": "m3", "cu.m": "m3", "cu m": "m3", "m³": "m3",
	"no": "nr", "no.": "nr", "each": "nr", "number": "nr",
	"t": "tonnes", "ton": "tonnes", "tonne": "tonnes",
	"lm": "m", "lin.m": "m", "l.m": "m", "lin m": "m",
	"l.s.": "sum", "ls": "sum", "lump sum": "sum",
	"hr": "hour", "hrs": "hour",
}

// knownUnits 单位候选集合，IsUnit 据此判定
var knownUnits = []string{
	"m", "m2", "m²", "m3", "m³", "mm", "nr", "no", "item", "sum",
	"kg", "tonnes", "t", "lm", "sqm", "cum", "each", "set",
	"l.s.", "ls", "hour", "hr", "day", "week", "month",
}

// Normalize 规范化单位：大小写不敏感匹配别名表，未命中原样转小写，空值返回 item
// 该函数是尽力而为的规范器，永不失败，且满足幂等性
func Normalize(token string) string {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return DefaultUnit
	}
	if canonical, ok := aliasMap[token]; ok {
		return canonical
	}
	return token
}

// IsUnit 判定值是否为单位候选
// 数字永远不是单位（避免费率被误判）；substringMatch 为显式的宽松模式开关，
// 默认精确匹配
func IsUnit(value string, substringMatch bool) bool {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return false
	}
	if _, err := strconv.ParseFloat(value, 64); err == nil {
		return false
	}
	for _, u := range knownUnits {
		if value == u {
			return true
		}
		if substringMatch && strings.Contains(value, u) {
			return true
		}
	}
	return false
}

// InferRule 描述关键词 -> 单位的推断规则，按序匹配
type InferRule struct {
	Keywords []string
	Unit     string
}

// InferFromDescription 按规则表从描述推断单位，未命中返回 item
func InferFromDescription(desc string, rules []InferRule) string {
	descLower := strings.ToLower(desc)
	for _, rule := range rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(descLower, kw) {
				return rule.Unit
			}
		}
	}
	return DefaultUnit
}
