package extract

import (
	"testing"

	"github.com/Abaaza/pricelistextractor/internal/grid"
	"github.com/Abaaza/pricelistextractor/internal/profile"
)

func TestHeaderRangeFusion(t *testing.T) {
	t.Parallel()

	p := profile.ForSheet("Drainage")
	g := grid.New("Drainage", [][]string{
		{"", "Excavate trenches; depth to invert:"},
		{"12", "", "0.5", "-", "0.75"},
	}, nil)

	state := NewScanState()
	state.EnterRow(0, p)
	if !state.ObserveHeader(g, 0, p) {
		t.Fatalf("长表头行应被识别")
	}
	if state.CurrentHeader != "Excavate trenches; depth to invert" {
		t.Fatalf("表头应去除尾部冒号 got=%q", state.CurrentHeader)
	}

	state.EnterRow(1, p)
	rangeText, ok := RangeText(g, 1, p)
	if !ok {
		t.Fatalf("区间行应被识别")
	}
	got := state.FuseDescription(rangeText, RangeUnit(g, 1, p), p)
	want := "Excavate trenches; depth to invert: 0.5-0.75 m"
	if got != want {
		t.Fatalf("融合描述 want=%q got=%q", want, got)
	}
}

func TestHeaderRangeFusion_NotExceeding(t *testing.T) {
	t.Parallel()

	p := profile.ForSheet("Drainage")
	g := grid.New("Drainage", [][]string{
		{"", "Excavate trenches to receive pipes; depth:"},
		{"7", "", "ne", "-", "1.5"},
	}, nil)

	state := NewScanState()
	state.EnterRow(0, p)
	if !state.ObserveHeader(g, 0, p) {
		t.Fatalf("长表头行应被识别")
	}

	state.EnterRow(1, p)
	rangeText, ok := RangeText(g, 1, p)
	if !ok {
		t.Fatalf("ne 区间行应被识别")
	}
	got := state.FuseDescription(rangeText, RangeUnit(g, 1, p), p)
	want := "Excavate trenches to receive pipes; depth: not exceeding 1.5 m"
	if got != want {
		t.Fatalf("ne 融合描述 want=%q got=%q", want, got)
	}
}

func TestFuseDescription_HeaderWithoutColon(t *testing.T) {
	t.Parallel()

	p := profile.ForSheet("Drainage")
	state := NewScanState()
	state.EnterRow(0, p)
	state.CurrentHeader = "Excavate trenches for drain runs"
	state.HeaderHadColon = false

	got := state.FuseDescription("1.0-1.25", "m", p)
	want := "Excavate trenches for drain runs; depth to invert: 1.0-1.25 m"
	if got != want {
		t.Fatalf("无冒号表头应补连接标签 want=%q got=%q", want, got)
	}
}

func TestRangeText_RequiresDashSeparator(t *testing.T) {
	t.Parallel()

	p := profile.ForSheet("Drainage")
	g := grid.New("Drainage", [][]string{
		{"3", "Normal item description here", "0.5", "to", "0.75"},
		{"4", "", "0.5", "-", ""},
	}, nil)

	if _, ok := RangeText(g, 0, p); ok {
		t.Fatalf("分隔符不是 - 时不应判定为区间行")
	}
	if _, ok := RangeText(g, 1, p); ok {
		t.Fatalf("上限缺失时不应判定为区间行")
	}
}

func TestScanState_WindowTransitionResetsHeader(t *testing.T) {
	t.Parallel()

	p := profile.ForSheet("Drainage")
	p.RangeWindows = []profile.RowWindow{{Start: 0, End: 10}, {Start: 20, End: 30}}

	state := NewScanState()
	state.EnterRow(5, p)
	state.CurrentHeader = "Excavate trenches"
	state.HeaderHadColon = true

	// 同一窗口内保持状态
	state.EnterRow(8, p)
	if state.CurrentHeader == "" {
		t.Fatalf("窗口内状态不应清空")
	}

	// 离开窗口即清空
	state.EnterRow(15, p)
	if state.CurrentHeader != "" || state.HeaderHadColon {
		t.Fatalf("离开窗口应清空表头状态")
	}
	if state.InRangeWindow() {
		t.Fatalf("窗口外 InRangeWindow 应为 false")
	}

	// 进入另一窗口仍为空
	state.EnterRow(25, p)
	if state.CurrentHeader != "" {
		t.Fatalf("新窗口表头从空开始")
	}
	if !state.InRangeWindow() {
		t.Fatalf("窗口内 InRangeWindow 应为 true")
	}
}

func TestObserveHeader_RejectsCodedShortRows(t *testing.T) {
	t.Parallel()

	p := profile.ForSheet("Drainage")
	g := grid.New("Drainage", [][]string{
		{"12", "Excavate trenches; depth to invert:"},
		{"", "short text"},
	}, nil)

	state := NewScanState()
	state.EnterRow(0, p)
	if state.ObserveHeader(g, 0, p) {
		t.Fatalf("带编码的行不是表头")
	}
	state.EnterRow(1, p)
	if state.ObserveHeader(g, 1, p) {
		t.Fatalf("短文本不是表头")
	}
}
