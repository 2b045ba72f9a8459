package reconcile

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"unicode"

	"github.com/Abaaza/pricelistextractor/internal/model"
)

// 协调引擎：对全部表的原始记录做组合键去重，并统一重发 id 与 code
// 必须在全部抽取完成后一次性运行（重复组的判定需要完整候选集）

// Stats 协调统计
type Stats struct {
	Input      int            `json:"input"`
	Output     int            `json:"output"`
	Duplicates int            `json:"duplicates"`
	ByCategory map[string]int `json:"byCategory"`
}

// Canonicalize 去重并重发标识
// 同组合键仅保留信息得分最高者，得分相同时保留先出现者；输出保持首次出现顺序
// 缺费率或缺来源不构成丢弃理由
func Canonicalize(items []model.PriceItem) ([]model.CanonicalItem, Stats) {
	stats := Stats{Input: len(items), ByCategory: map[string]int{}}

	type group struct {
		item  model.PriceItem
		score int
	}
	index := make(map[string]int, len(items))
	var order []group

	for _, item := range items {
		key := item.CompositeKey()
		score := item.InfoScore()
		if at, ok := index[key]; ok {
			if score > order[at].score {
				order[at] = group{item: item, score: score}
			}
			continue
		}
		index[key] = len(order)
		order = append(order, group{item: item, score: score})
	}

	canonical := make([]model.CanonicalItem, 0, len(order))
	idCounts := make(map[string]int, len(order))
	codeCounters := map[string]int{}

	for _, g := range order {
		item := g.item
		prefix := categoryPrefix(item.Category)

		id := prefix + "_" + contentHash(item.Description, item.Category, item.Unit)
		if n, seen := idCounts[id]; seen {
			idCounts[id] = n + 1
			id = fmt.Sprintf("%s_%02d", id, n+1)
		} else {
			idCounts[id] = 0
		}

		codeCounters[item.Category]++
		item.Code = fmt.Sprintf("%s%04d", prefix, codeCounters[item.Category])

		stats.ByCategory[item.Category]++
		canonical = append(canonical, model.CanonicalItem{ID: id, PriceItem: item})
	}

	stats.Output = len(canonical)
	stats.Duplicates = stats.Input - stats.Output
	return canonical, stats
}

// categoryPrefix 类目前缀：取类目前三个字符中的字母，最多两个，大写；无字母时 XX
func categoryPrefix(category string) string {
	head := []rune(category)
	if len(head) > 3 {
		head = head[:3]
	}
	prefix := make([]rune, 0, 2)
	for _, r := range head {
		if unicode.IsLetter(r) {
			prefix = append(prefix, unicode.ToUpper(r))
			if len(prefix) == 2 {
				break
			}
		}
	}
	if len(prefix) == 0 {
		return "XX"
	}
	return string(prefix)
}

// contentHash 内容哈希：description_category_unit 的 md5 前 8 位
func contentHash(description, category, unit string) string {
	sum := md5.Sum([]byte(description + "_" + category + "_" + unit))
	return hex.EncodeToString(sum[:])[:8]
}
