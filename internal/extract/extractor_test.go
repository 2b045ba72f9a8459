package extract

import (
	"testing"

	"github.com/Abaaza/pricelistextractor/internal/grid"
	"github.com/Abaaza/pricelistextractor/internal/profile"
)

func TestExtractCode(t *testing.T) {
	t.Parallel()

	p := profile.ForSheet("Groundworks")
	g := grid.New("Groundworks", [][]string{
		{"  GW   101  "},
		{"nan"},
		{"None"},
		{"-"},
		{""},
	}, nil)

	if got := ExtractCode(g, 0, p); got != "GW 101" {
		t.Fatalf("编码应压缩内部空白 want=GW 101 got=%q", got)
	}
	for row := 1; row < 5; row++ {
		if got := ExtractCode(g, row, p); got != "" {
			t.Fatalf("占位值行 %d 应归一为空串 got=%q", row, got)
		}
	}
}

func TestExtractDescription_SkipsUnitsAndRates(t *testing.T) {
	t.Parallel()

	p := profile.ForSheet("Groundworks")
	g := grid.New("Groundworks", [][]string{
		{"1", "Excavate trench", "m3", "125.50"},
	}, nil)

	got := ExtractDescription(g, 0, p)
	if got != "Excavate trench" {
		t.Fatalf("单位与疑似费率不应并入描述 got=%q", got)
	}
}

func TestExtractDescription_KeepsSmallNumbers(t *testing.T) {
	t.Parallel()

	p := profile.ForSheet("Groundworks")
	g := grid.New("Groundworks", [][]string{
		{"1", "Excavate pit depth", "2", "450.00"},
	}, nil)

	got := ExtractDescription(g, 0, p)
	if got != "Excavate pit depth 2" {
		t.Fatalf("小数字应保留在描述中 got=%q", got)
	}
}

func TestExpandAbbreviations(t *testing.T) {
	t.Parallel()

	p := profile.ForSheet("Groundworks")
	cases := map[string]string{
		"Excavate trench ne 1.5m deep":  "Excavate trench not exceeding 1.5m deep",
		"Blinding 150thk under slab":    "Blinding 150mm thick under slab",
		"Backfill fdn incl compaction":  "Backfill foundation including compaction",
		"Strip topsoil   extra  spaces": "Strip topsoil extra spaces",
	}
	for in, want := range cases {
		if got := ExpandAbbreviations(in, p); got != want {
			t.Fatalf("ExpandAbbreviations(%q) want=%q got=%q", in, want, got)
		}
	}

	rc := profile.ForSheet("RC Works")
	if got := ExpandAbbreviations("Vibrated concrete C25 in beams", rc); got != "Vibrated concrete Grade C25 in beams" {
		t.Fatalf("混凝土标号展开 got=%q", got)
	}
}

func TestExtractUnit_ColumnThenInferThenDefault(t *testing.T) {
	t.Parallel()

	p := profile.ForSheet("External Works")
	g := grid.New("ExternalWorks", [][]string{
		{"1", "Precast kerb", "", "", "lm"},
		{"2", "Block paving to drive", "", "", ""},
		{"3", "Miscellaneous works", "", "", ""},
	}, nil)

	if got := ExtractUnit(g, 0, "Precast kerb", p); got != "m" {
		t.Fatalf("列内单位应规范化 want=m got=%s", got)
	}
	if got := ExtractUnit(g, 1, "Block paving to drive", p); got != "m2" {
		t.Fatalf("描述推断 want=m2 got=%s", got)
	}
	if got := ExtractUnit(g, 2, "Miscellaneous works", p); got != "item" {
		t.Fatalf("兜底 want=item got=%s", got)
	}
}

func TestExtractRate_FirstValidWins(t *testing.T) {
	t.Parallel()

	p := profile.ForSheet("Groundworks")
	g := grid.New("Groundworks", [][]string{
		{"1", "Excavate", "m3", "text", "", "£1,250.75", "99"},
	}, nil)

	rate, col, found := ExtractRate(g, 0, p)
	if !found || rate == nil {
		t.Fatalf("应找到费率")
	}
	if *rate != 1250.75 {
		t.Fatalf("费率解析 want=1250.75 got=%v", *rate)
	}
	if col != 5 {
		t.Fatalf("费率列 want=5 got=%d", col)
	}
}

func TestExtractRate_SanityBounds(t *testing.T) {
	t.Parallel()

	p := profile.ForSheet("Groundworks")
	g := grid.New("Groundworks", [][]string{
		{"1", "Excavate", "", "5000000", "", "0"},
	}, nil)

	// 超上限与 0（默认不允许）都不取，回落默认列
	rate, col, found := ExtractRate(g, 0, p)
	if found || rate != nil {
		t.Fatalf("无有效费率时 rate 应为空")
	}
	if col != 5 {
		t.Fatalf("默认回写列 want=5 got=%d", col)
	}

	// 允许 0 费率时取 0
	p2 := *p
	p2.AllowZeroRate = true
	rate, col, found = ExtractRate(g, 0, &p2)
	if !found || rate == nil || *rate != 0 {
		t.Fatalf("允许零费率时应取 0")
	}
	if col != 5 {
		t.Fatalf("零费率列 want=5 got=%d", col)
	}
}

func TestExtractRate_DefaultColumnFallback(t *testing.T) {
	t.Parallel()

	p := profile.ForSheet("Groundworks")
	// 行宽不足默认列时回落 E 再 D
	g := grid.New("Groundworks", [][]string{
		{"1", "Excavate short row", "m3", "x"},
	}, nil)

	_, col, found := ExtractRate(g, 0, p)
	if found {
		t.Fatalf("该行无费率")
	}
	if col != 3 {
		t.Fatalf("窄行回落 want=3 got=%d", col)
	}
}

func TestExtractRow_ProvenancePairing(t *testing.T) {
	t.Parallel()

	p := profile.ForSheet("Groundworks")
	g := grid.New("Groundworks", [][]string{
		{"1.1", "Excavate foundation trench by machine", "m3", "", "", "85.00"},
		{"1.2", "Backfill with selected excavated material", "m3", "", "", ""},
	}, nil)

	state := NewScanState()

	withRate := ExtractRow(g, 0, state, p)
	if withRate == nil {
		t.Fatalf("记录不应为空")
	}
	if withRate.Rate == nil || withRate.RateRef == nil {
		t.Fatalf("费率与来源引用应同时存在")
	}
	if withRate.RateRef.Col != 5 || withRate.RateRef.Row != 0 {
		t.Fatalf("费率来源 want=(0,5) got=(%d,%d)", withRate.RateRef.Row, withRate.RateRef.Col)
	}
	if withRate.SourceCell.Col != 0 {
		t.Fatalf("记录来源应指向编码列")
	}

	noRate := ExtractRow(g, 1, state, p)
	if noRate == nil {
		t.Fatalf("无费率行仍应产出记录")
	}
	if noRate.Rate != nil || noRate.RateRef != nil {
		t.Fatalf("无费率时费率与来源引用应同时为空")
	}
	if noRate.WriteBackRef.Col != 3 {
		t.Fatalf("窄行的回写引用应回落 D 列 got=%d", noRate.WriteBackRef.Col)
	}
}

func TestExtractRow_ShortDescriptionDropped(t *testing.T) {
	t.Parallel()

	p := profile.ForSheet("Groundworks")
	g := grid.New("Groundworks", [][]string{
		{"1.3", "dig", "m3", "", "", "10.00"},
	}, nil)

	if item := ExtractRow(g, 0, NewScanState(), p); item != nil {
		t.Fatalf("描述过短应整行丢弃 got=%+v", item)
	}
}

// 字段抽取对任意行内容都不应崩溃
func TestExtractRow_TotalFunction(t *testing.T) {
	t.Parallel()

	p := profile.ForSheet("Groundworks")
	rows := [][]string{
		{},
		{"", "", "", "", "", "", "", "", "", ""},
		{"£", "-", "nan", "None", "1,2,3"},
		{"code", "∑∆ excavate trench ≥≤", "m³", "£-", "NaN"},
		{"1", "Excavate", "m3", "1e308", "-5", "£0.000001"},
		{"x", "Excavate trench to formation level", "99", "98", "97", "96"},
	}
	g := grid.New("Groundworks", rows, nil)

	state := NewScanState()
	for row := range rows {
		item := ExtractRow(g, row, state, p)
		if item == nil {
			continue
		}
		if (item.Rate == nil) != (item.RateRef == nil) {
			t.Fatalf("行 %d 违反费率配对不变量", row)
		}
		if item.Description == "" {
			t.Fatalf("行 %d 产出了空描述记录", row)
		}
	}
}

func TestResolveSubcategory(t *testing.T) {
	t.Parallel()

	p := profile.ForSheet("Groundworks")

	state := NewScanState()
	state.CurrentSubcategory = "DISPOSAL OFF SITE"
	if got := ResolveSubcategory("Excavate trench", state, p); got != "DISPOSAL OFF SITE" {
		t.Fatalf("有小节标题时优先使用 got=%s", got)
	}

	state = NewScanState()
	if got := ResolveSubcategory("Excavate trench for services", state, p); got != "Trench Excavation" {
		t.Fatalf("无标题时走规则表 got=%s", got)
	}
	if got := ResolveSubcategory("nothing matches", state, p); got != "General Groundworks" {
		t.Fatalf("规则未命中取默认 got=%s", got)
	}

	// 标题等于默认值时视同无标题
	state.CurrentSubcategory = "General Groundworks"
	if got := ResolveSubcategory("Excavate trench for services", state, p); got != "Trench Excavation" {
		t.Fatalf("默认标题不压制规则表 got=%s", got)
	}
}

func TestGenerateKeywords(t *testing.T) {
	t.Parallel()

	p := profile.ForSheet("Groundworks")
	keywords := GenerateKeywords("Excavate trench 600mm wide in topsoil", "Trench Excavation", p)

	if len(keywords) == 0 || len(keywords) > 6 {
		t.Fatalf("关键词数量应在 1..6 got=%d", len(keywords))
	}
	seen := map[string]bool{}
	for _, kw := range keywords {
		if seen[kw] {
			t.Fatalf("关键词重复: %s", kw)
		}
		seen[kw] = true
	}
	if !seen["trench"] {
		t.Fatalf("应包含词表命中项 trench, got=%v", keywords)
	}
	if !seen["600mm"] {
		t.Fatalf("应包含量纲 600mm, got=%v", keywords)
	}
	if !seen["trench_excavation"] {
		t.Fatalf("应包含子类目 trench_excavation, got=%v", keywords)
	}
}
