package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Abaaza/pricelistextractor/internal/model"
	"github.com/Abaaza/pricelistextractor/internal/units"
)

// 描述增强是可选环节：调用 OpenAI 兼容接口润色描述、标准化单位与关键词
// 任何失败都降级为原样返回，绝不因增强失败丢数据

// Enhancer 描述增强接口，nil 值表示跳过增强
type Enhancer interface {
	Enhance(ctx context.Context, items []model.PriceItem, sheetName string) []model.PriceItem
}

const batchSize = 5

// OpenAIEnhancer 基于 Chat Completions 接口的增强实现
// BaseURL 可指向任意 OpenAI 兼容服务
type OpenAIEnhancer struct {
	client *openai.Client
	model  string
}

// NewOpenAI 创建增强器；apiKey 为空时返回 nil（调用方按未启用处理）
func NewOpenAI(baseURL, apiKey, modelName string) *OpenAIEnhancer {
	if apiKey == "" {
		return nil
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	}
	if modelName == "" {
		modelName = openai.GPT3Dot5Turbo
	}
	return &OpenAIEnhancer{client: openai.NewClientWithConfig(cfg), model: modelName}
}

// Enhance 分批增强；单批失败时该批原样返回，继续后续批次
func (e *OpenAIEnhancer) Enhance(ctx context.Context, items []model.PriceItem, sheetName string) []model.PriceItem {
	if e == nil || len(items) == 0 {
		return items
	}

	enhanced := make([]model.PriceItem, 0, len(items))
	totalBatches := (len(items) + batchSize - 1) / batchSize
	for i := 0; i < len(items); i += batchSize {
		end := i + batchSize
		if end > len(items) {
			end = len(items)
		}
		batch := items[i:end]

		out, err := e.enhanceBatch(ctx, batch, sheetName)
		if err != nil {
			log.Printf("增强批次 %d/%d 失败，保留原始记录: %v", i/batchSize+1, totalBatches, err)
			out = batch
		}
		enhanced = append(enhanced, out...)
	}
	return enhanced
}

// batchEntry 发给模型的单条记录
type batchEntry struct {
	Index       int    `json:"index"`
	Description string `json:"description"`
	Unit        string `json:"unit"`
	Subcategory string `json:"subcategory"`
}

// enhancement 模型返回的单条修订
type enhancement struct {
	Index       int      `json:"index"`
	Description string   `json:"description"`
	Unit        string   `json:"unit"`
	Subcategory string   `json:"subcategory"`
	Keywords    []string `json:"keywords"`
}

func (e *OpenAIEnhancer) enhanceBatch(ctx context.Context, batch []model.PriceItem, sheetName string) ([]model.PriceItem, error) {
	entries := make([]batchEntry, len(batch))
	for i, item := range batch {
		entries[i] = batchEntry{Index: i, Description: item.Description, Unit: item.Unit, Subcategory: item.Subcategory}
	}
	payload, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("编码批次失败: %w", err)
	}

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.model,
		Temperature: 0.2,
		MaxTokens:   2500,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "You are an expert construction cost estimator. Return only a valid JSON array."},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(sheetName, string(payload))},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("调用增强接口失败: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("增强接口返回空结果")
	}

	revisions, err := decodeEnhancements(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	return applyEnhancements(batch, revisions), nil
}

func buildPrompt(sheetName, payload string) string {
	var b strings.Builder
	b.WriteString("You are reviewing pricelist items extracted from the sheet \"")
	b.WriteString(sheetName)
	b.WriteString("\" of a construction pricing workbook.\n\nItems:\n")
	b.WriteString(payload)
	b.WriteString("\n\nFor each item: complete truncated descriptions, fix typos, keep BS/EN standard references, " +
		"standardize the unit (m, m2, m3, nr, kg, tonnes, sum, hour, item), refine the subcategory, " +
		"and produce 4-6 search keywords. Do not change the meaning of any description.\n\n" +
		"Return a JSON array of objects with fields: index, description, unit, subcategory, keywords.")
	return b.String()
}

var jsonArrayPattern = regexp.MustCompile(`(?s)\[.*\]`)

// decodeEnhancements 解析模型输出，容忍 markdown 代码栅栏与前后杂文
func decodeEnhancements(content string) ([]enhancement, error) {
	text := strings.TrimSpace(content)
	if idx := strings.Index(text, "```json"); idx >= 0 {
		text = text[idx+len("```json"):]
		if end := strings.Index(text, "```"); end >= 0 {
			text = text[:end]
		}
	} else if idx := strings.Index(text, "```"); idx >= 0 {
		text = text[idx+len("```"):]
		if end := strings.Index(text, "```"); end >= 0 {
			text = text[:end]
		}
	}
	if match := jsonArrayPattern.FindString(text); match != "" {
		text = match
	}

	var revisions []enhancement
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &revisions); err != nil {
		return nil, fmt.Errorf("解析增强结果失败: %w", err)
	}
	return revisions, nil
}

// applyEnhancements 按 index 套用修订
// 仅允许修改描述、单位、子类目与关键词，编码/类目/费率/来源引用一律保持不变
func applyEnhancements(batch []model.PriceItem, revisions []enhancement) []model.PriceItem {
	out := make([]model.PriceItem, len(batch))
	copy(out, batch)
	for _, rev := range revisions {
		if rev.Index < 0 || rev.Index >= len(out) {
			continue
		}
		item := &out[rev.Index]
		if rev.Description != "" {
			item.Description = rev.Description
		}
		if rev.Unit != "" {
			item.Unit = units.Normalize(rev.Unit)
		}
		if rev.Subcategory != "" {
			item.Subcategory = rev.Subcategory
		}
		if len(rev.Keywords) > 0 {
			item.Keywords = rev.Keywords
		}
	}
	return out
}
