package extract

import (
	"strings"

	"github.com/Abaaza/pricelistextractor/internal/grid"
	"github.com/Abaaza/pricelistextractor/internal/profile"
	"github.com/Abaaza/pricelistextractor/internal/units"
)

// 部分表把描述写在一行（长表头），真正变化的数值写在后续的区间行里
// （如 0.5 | - | 0.75 表示深度 0.5-0.75 m），两者须融合成一条完整描述

// EnterRow 处理窗口迁移：离开或切换融合窗口时清空表头状态
func (s *ScanState) EnterRow(row int, p *profile.Profile) {
	wi := p.WindowIndex(row)
	if wi != s.windowIdx {
		s.CurrentHeader = ""
		s.HeaderHadColon = false
		s.windowIdx = wi
	}
}

// InRangeWindow 当前行是否处于融合窗口内
func (s *ScanState) InRangeWindow() bool {
	return s.windowIdx >= 0
}

// ObserveHeader 检查该行是否为区间融合表头行（长自由文本 + 领域关键词）
// 命中则更新状态并返回 true，调用方应跳过该行
func (s *ScanState) ObserveHeader(g *grid.Grid, row int, p *profile.Profile) bool {
	if !s.InRangeWindow() {
		return false
	}
	// 表头行没有编码（编码列本身为长文本时视为表头写在首列）
	if code := g.ValueAt(row, p.CodeCol); code != "" && len(code) < p.HeaderMinLen {
		return false
	}
	for _, col := range []int{0, 1} {
		value := g.ValueAt(row, col)
		if len(value) < p.HeaderMinLen {
			continue
		}
		valueLower := strings.ToLower(value)
		for _, kw := range p.HeaderKeywords {
			if strings.Contains(valueLower, kw) {
				s.HeaderHadColon = strings.HasSuffix(value, ":")
				s.CurrentHeader = strings.TrimSuffix(value, ":")
				return true
			}
		}
	}
	return false
}

// RangeText 检测区间行并生成区间文本
// 形如 (0.5, "-", 0.75) 产出 "0.5-0.75"；左值为 ne 时产出 "not exceeding 0.75"
func RangeText(g *grid.Grid, row int, p *profile.Profile) (string, bool) {
	lo := g.ValueAt(row, p.RangeCols[0])
	sep := g.ValueAt(row, p.RangeCols[1])
	hi := g.ValueAt(row, p.RangeCols[2])
	if sep != "-" || lo == "" || hi == "" {
		return "", false
	}
	if strings.EqualFold(lo, "ne") {
		return "not exceeding " + hi, true
	}
	return lo + "-" + hi, true
}

// FuseDescription 表头与区间文本融合
// 表头原文以冒号结尾视为完整引导语，直接续接区间；否则补上连接标签
// 避免 "depth to invert" 之类标签重复或标点翻倍
func (s *ScanState) FuseDescription(rangeText, unit string, p *profile.Profile) string {
	if unit == "" {
		unit = "m"
	}
	var fused string
	if s.HeaderHadColon {
		fused = s.CurrentHeader + ": " + rangeText + " " + unit
	} else {
		fused = s.CurrentHeader + "; " + p.RangeJoinLabel + ": " + rangeText + " " + unit
	}
	fused = strings.ReplaceAll(fused, ";;", ";")
	return strings.Join(strings.Fields(fused), " ")
}

// RangeUnit 区间行的单位：上限列之后若有单位格则取之，否则默认 m
func RangeUnit(g *grid.Grid, row int, p *profile.Profile) string {
	value := g.ValueAt(row, p.RangeCols[2]+1)
	if value != "" && units.IsUnit(value, p.UnitSubstringMatch) {
		return units.Normalize(value)
	}
	return "m"
}
