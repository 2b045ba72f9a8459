package extract

import "time"

// RowKind 行分类结果
type RowKind int

const (
	RowSkip          RowKind = iota // 噪声行，跳过
	RowSectionHeader                // 小节标题行
	RowData                         // 数据行
)

func (k RowKind) String() string {
	switch k {
	case RowSectionHeader:
		return "section_header"
	case RowData:
		return "data"
	default:
		return "skip"
	}
}

// ScanState 扫描状态，随行循环显式传递（不使用包级全局量）
// 行 N 的归属依赖行 N-1 的表头状态，因此单表内必须顺序扫描
type ScanState struct {
	CurrentSubcategory string // 最近一个小节标题文本
	CurrentHeader      string // 区间融合用表头（已去除尾部冒号）
	HeaderHadColon     bool   // 表头原文是否以冒号结尾
	windowIdx          int    // 当前所在融合窗口序号，-1 表示窗口外
}

// NewScanState 创建初始扫描状态
func NewScanState() *ScanState {
	return &ScanState{windowIdx: -1}
}

// SheetResult 单表抽取结果统计
type SheetResult struct {
	SheetName        string        `json:"sheetName"`
	Category         string        `json:"category"`
	Status           string        `json:"status"` // extracted/skipped/error
	RowsTotal        int           `json:"rowsTotal"`
	RowsProcessed    int           `json:"rowsProcessed"`
	RowsSkipped      int           `json:"rowsSkipped"`
	Items            int           `json:"items"`
	ItemsWithRate    int           `json:"itemsWithRate"`
	ItemsWithRateRef int           `json:"itemsWithRateRef"`
	Duration         time.Duration `json:"duration"`
}
