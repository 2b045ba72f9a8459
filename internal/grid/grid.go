package grid

import (
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Grid 单个工作表的只读视图：按 (row, col) 取值、取加粗标记、生成单元格地址
// 越界访问返回空值而非报错，下游无需对表边界做特判
type Grid struct {
	sheetName string
	cells     [][]string
	bold      [][]bool
	colCount  int
}

// New 直接由二维数据构建 Grid（测试与内嵌调用方使用）
// bold 可以为 nil 或行数不足，缺失处视为非加粗
func New(sheetName string, cells [][]string, bold [][]bool) *Grid {
	colCount := 0
	for _, row := range cells {
		if len(row) > colCount {
			colCount = len(row)
		}
	}
	return &Grid{
		sheetName: sheetName,
		cells:     cells,
		bold:      bold,
		colCount:  colCount,
	}
}

// FromFile 从已打开的工作簿物化一个工作表
// 这是流水线中唯一允许向调用方报错的环节（工作表不存在等）
func FromFile(f *excelize.File, sheetName string) (*Grid, error) {
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, err
	}

	cells := make([][]string, len(rows))
	bold := make([][]bool, len(rows))

	// 样式ID到加粗标记的缓存，避免逐格查询样式
	styleBold := make(map[int]bool)

	for rowIdx, row := range rows {
		cells[rowIdx] = make([]string, len(row))
		bold[rowIdx] = make([]bool, len(row))
		for colIdx, value := range row {
			cells[rowIdx][colIdx] = value
			if value == "" {
				continue
			}
			cellName, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			if err != nil {
				continue
			}
			styleID, err := f.GetCellStyle(sheetName, cellName)
			if err != nil {
				continue
			}
			isBold, ok := styleBold[styleID]
			if !ok {
				if style, err := f.GetStyle(styleID); err == nil && style.Font != nil {
					isBold = style.Font.Bold
				}
				styleBold[styleID] = isBold
			}
			bold[rowIdx][colIdx] = isBold
		}
	}

	return New(sheetName, cells, bold), nil
}

// SheetName 工作表名
func (g *Grid) SheetName() string {
	return g.sheetName
}

// RowCount 行数
func (g *Grid) RowCount() int {
	return len(g.cells)
}

// ColCount 最大列数
func (g *Grid) ColCount() int {
	return g.colCount
}

// ValueAt 取单元格文本值，越界返回空串
func (g *Grid) ValueAt(row, col int) string {
	if row < 0 || row >= len(g.cells) {
		return ""
	}
	if col < 0 || col >= len(g.cells[row]) {
		return ""
	}
	return strings.TrimSpace(g.cells[row][col])
}

// IsBold 取单元格加粗标记，越界或无样式信息返回 false
func (g *Grid) IsBold(row, col int) bool {
	if row < 0 || row >= len(g.bold) {
		return false
	}
	if col < 0 || col >= len(g.bold[row]) {
		return false
	}
	return g.bold[row][col]
}

// FilledCells 统计一行的非空单元格数
func (g *Grid) FilledCells(row int) int {
	if row < 0 || row >= len(g.cells) {
		return 0
	}
	n := 0
	for col := range g.cells[row] {
		if g.ValueAt(row, col) != "" {
			n++
		}
	}
	return n
}

// ColumnLetter 列索引转字母，26 列以上按 base-26 规则进位（26 -> AA）
func ColumnLetter(col int) string {
	if col < 26 {
		return string(rune('A' + col))
	}
	return string(rune('A'+col/26-1)) + string(rune('A'+col%26))
}

// CellAddress 生成 "F20" 形式地址（行列均为 0 起始）
func (g *Grid) CellAddress(row, col int) string {
	return CellAddress(row, col)
}

// CellAddress 包级地址函数，便于无 Grid 场景复用
func CellAddress(row, col int) string {
	return ColumnLetter(col) + strconv.Itoa(row+1)
}

// SheetCellAddress 生成 "Sheet!F20" 形式地址，表名空格去除以匹配下游格式
func (g *Grid) SheetCellAddress(row, col int) string {
	return SheetCellAddress(g.sheetName, row, col)
}

// SheetCellAddress 包级全地址函数
func SheetCellAddress(sheetName string, row, col int) string {
	return strings.ReplaceAll(sheetName, " ", "") + "!" + CellAddress(row, col)
}
