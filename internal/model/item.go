package model

// CellRef 单元格引用（带工作表名）
type CellRef struct {
	Sheet string `json:"sheet"`
	Row   int    `json:"row"` // 0 起始
	Col   int    `json:"col"` // 0 起始
}

// PriceItem 单次抽取产出的原始记录
// Rate 与 RateRef 要么同时有值，要么同时为空
type PriceItem struct {
	Code        string   `json:"code"` // 空串表示源表无编码
	Description string   `json:"description"`
	Unit        string   `json:"unit"`
	Category    string   `json:"category"`
	Subcategory string   `json:"subcategory"`
	Rate        *float64 `json:"rate"`
	RateRef     *CellRef `json:"rateRef"`
	// WriteBackRef 无费率时仍指向该表惯用的费率列，供回写使用
	WriteBackRef CellRef  `json:"writeBackRef"`
	SourceCell   CellRef  `json:"sourceCell"`
	Keywords     []string `json:"keywords"`
}

// InfoScore 信息得分：非空字段个数，用于去重时保留信息更全的记录
func (p *PriceItem) InfoScore() int {
	score := 0
	if p.Code != "" {
		score++
	}
	if p.Description != "" {
		score++
	}
	if p.Unit != "" {
		score++
	}
	if p.Category != "" {
		score++
	}
	if p.Subcategory != "" {
		score++
	}
	if p.Rate != nil {
		score++
	}
	if p.RateRef != nil {
		score++
	}
	if len(p.Keywords) > 0 {
		score++
	}
	return score
}

// CompositeKey 去重用组合键：description|category|unit|subcategory
func (p *PriceItem) CompositeKey() string {
	return p.Description + "|" + p.Category + "|" + p.Unit + "|" + p.Subcategory
}

// CanonicalItem 协调（去重）后的最终记录，id/code 由协调引擎统一分配
type CanonicalItem struct {
	ID string `json:"id"`
	PriceItem
}
