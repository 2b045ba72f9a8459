package importer

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/Abaaza/pricelistextractor/internal/enrich"
	"github.com/Abaaza/pricelistextractor/internal/exporter"
	"github.com/Abaaza/pricelistextractor/internal/extract"
	"github.com/Abaaza/pricelistextractor/internal/grid"
	"github.com/Abaaza/pricelistextractor/internal/model"
	"github.com/Abaaza/pricelistextractor/internal/profile"
	"github.com/Abaaza/pricelistextractor/internal/reconcile"
	"github.com/Abaaza/pricelistextractor/internal/store"
)

// Coordinator 抽取协调器：加载工作簿、并行扫描各表、增强、协调去重、落库
// 表与表之间无共享状态，可并行；协调去重需要完整候选集，是唯一的串行汇合点
type Coordinator struct {
	store    *store.Store    // 可为 nil（纯批处理，不落库）
	enhancer enrich.Enhancer // nil 表示不增强
}

// NewCoordinator 创建抽取协调器
func NewCoordinator(store *store.Store, enhancer enrich.Enhancer) *Coordinator {
	return &Coordinator{store: store, enhancer: enhancer}
}

// ExtractOptions 抽取选项
type ExtractOptions struct {
	FilePath      string
	Enhance       bool    // 是否调用描述增强
	Persist       bool    // 是否把结果写入存储
	MaxRate       float64 // 覆盖各表费率上限，0 表示使用参数表内置值
	AllowZeroRate bool    // 接受 0 费率（某些表把免费项计为 0）
}

// ProgressEvent 进度事件
type ProgressEvent struct {
	Type      string      `json:"type"`    // start/sheet_start/sheet_done/enrich/reconcile/done/error
	Message   string      `json:"message"` // 事件消息
	Data      interface{} `json:"data"`    // 附加数据
	Timestamp time.Time   `json:"timestamp"`
}

// RunReport 单次抽取报告
type RunReport struct {
	RunID             string                `json:"runId"`
	Filename          string                `json:"filename"`
	TotalSheets       int                   `json:"totalSheets"`
	Sheets            []extract.SheetResult `json:"sheets"`
	Items             int                   `json:"items"`
	ItemsWithRate     int                   `json:"itemsWithRate"`
	DuplicatesRemoved int                   `json:"duplicatesRemoved"`
	Enhanced          bool                  `json:"enhanced"`
	Duration          time.Duration         `json:"duration"`
}

// Extract 异步执行抽取，返回进度通道；完成事件 Data 为 *RunReport
func (c *Coordinator) Extract(opts ExtractOptions) <-chan ProgressEvent {
	progressChan := make(chan ProgressEvent, 100)

	go func() {
		defer close(progressChan)
		c.run(context.Background(), opts, progressChan)
	}()

	return progressChan
}

// Run 同步执行抽取（批处理模式）
func (c *Coordinator) Run(ctx context.Context, opts ExtractOptions) ([]model.CanonicalItem, *RunReport, error) {
	return c.run(ctx, opts, nil)
}

func (c *Coordinator) run(ctx context.Context, opts ExtractOptions, progressChan chan ProgressEvent) ([]model.CanonicalItem, *RunReport, error) {
	startTime := time.Now()
	report := &RunReport{
		RunID:    uuid.New().String(),
		Filename: filepath.Base(opts.FilePath),
	}

	c.sendProgress(progressChan, ProgressEvent{
		Type:      "start",
		Message:   "开始抽取价目表",
		Data:      map[string]string{"filename": report.Filename, "run_id": report.RunID},
		Timestamp: time.Now(),
	})

	f, err := excelize.OpenFile(opts.FilePath)
	if err != nil {
		err = fmt.Errorf("打开工作簿失败: %w", err)
		c.sendError(progressChan, report, err, startTime)
		return nil, report, err
	}
	defer f.Close()

	sheetList := f.GetSheetList()
	report.TotalSheets = len(sheetList)

	// 单元格与加粗标记先一次性物化：excelize.File 不支持并发读取，
	// 物化后的 Grid 只读，可安全分发给各表的工作协程
	grids := make([]*grid.Grid, len(sheetList))
	for i, sheetName := range sheetList {
		g, err := grid.FromFile(f, sheetName)
		if err != nil {
			err = fmt.Errorf("读取工作表 %s 失败: %w", sheetName, err)
			c.sendError(progressChan, report, err, startTime)
			return nil, report, err
		}
		grids[i] = g
	}

	// 每表一个协程，结果写入各自的下标槽位，汇合后保持表声明顺序
	type sheetOutcome struct {
		items  []model.PriceItem
		result extract.SheetResult
	}
	outcomes := make([]sheetOutcome, len(sheetList))

	var wg sync.WaitGroup
	for i := range grids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			g := grids[i]
			c.sendProgress(progressChan, ProgressEvent{
				Type:      "sheet_start",
				Message:   fmt.Sprintf("正在抽取工作表: %s", g.SheetName()),
				Data:      map[string]string{"sheet_name": g.SheetName()},
				Timestamp: time.Now(),
			})

			p := sheetProfile(g.SheetName(), opts)
			items, result := extract.ScanSheet(g, p)
			outcomes[i] = sheetOutcome{items: items, result: result}

			c.sendProgress(progressChan, ProgressEvent{
				Type:      "sheet_done",
				Message:   fmt.Sprintf("工作表 %s 抽取完成: %d 条记录", g.SheetName(), result.Items),
				Data:      result,
				Timestamp: time.Now(),
			})
		}(i)
	}
	wg.Wait()

	// 可选增强：逐表调用，失败降级为原样
	if opts.Enhance && c.enhancer != nil {
		for i := range outcomes {
			if len(outcomes[i].items) == 0 {
				continue
			}
			sheetName := outcomes[i].result.SheetName
			c.sendProgress(progressChan, ProgressEvent{
				Type:      "enrich",
				Message:   fmt.Sprintf("正在增强工作表 %s 的描述", sheetName),
				Data:      map[string]string{"sheet_name": sheetName},
				Timestamp: time.Now(),
			})
			outcomes[i].items = c.enhancer.Enhance(ctx, outcomes[i].items, sheetName)
		}
		report.Enhanced = true
	}

	var all []model.PriceItem
	for i := range outcomes {
		all = append(all, outcomes[i].items...)
		report.Sheets = append(report.Sheets, outcomes[i].result)
	}

	c.sendProgress(progressChan, ProgressEvent{
		Type:      "reconcile",
		Message:   fmt.Sprintf("正在协调去重 %d 条候选记录", len(all)),
		Timestamp: time.Now(),
	})
	canonical, stats := reconcile.Canonicalize(all)

	report.Items = stats.Output
	report.DuplicatesRemoved = stats.Duplicates
	for i := range canonical {
		if canonical[i].Rate != nil {
			report.ItemsWithRate++
		}
	}

	if opts.Persist && c.store != nil {
		if err := c.persist(canonical, report, startTime); err != nil {
			c.sendError(progressChan, report, err, startTime)
			return canonical, report, err
		}
	}

	report.Duration = time.Since(startTime)
	c.sendProgress(progressChan, ProgressEvent{
		Type:      "done",
		Message:   fmt.Sprintf("抽取完成: %d 条记录（去重 %d 条）", report.Items, report.DuplicatesRemoved),
		Data:      report,
		Timestamp: time.Now(),
	})
	return canonical, report, nil
}

func (c *Coordinator) persist(canonical []model.CanonicalItem, report *RunReport, startTime time.Time) error {
	if err := c.store.ReplaceItems(exporter.Records(canonical)); err != nil {
		return fmt.Errorf("保存价目记录失败: %w", err)
	}

	extracted := 0
	for _, s := range report.Sheets {
		if s.Items > 0 {
			extracted++
		}
	}
	run := store.RunRecord{
		RunID:             report.RunID,
		Filename:          report.Filename,
		TotalSheets:       report.TotalSheets,
		ExtractedSheets:   extracted,
		Items:             report.Items,
		ItemsWithRate:     report.ItemsWithRate,
		DuplicatesRemoved: report.DuplicatesRemoved,
		Enhanced:          report.Enhanced,
		Duration:          time.Since(startTime).Milliseconds(),
		Status:            "done",
	}
	if err := c.store.LogRun(run); err != nil {
		return fmt.Errorf("写入抽取日志失败: %w", err)
	}
	return nil
}

func (c *Coordinator) sendError(progressChan chan ProgressEvent, report *RunReport, err error, startTime time.Time) {
	report.Duration = time.Since(startTime)
	if c.store != nil {
		_ = c.store.LogRun(store.RunRecord{
			RunID:        report.RunID,
			Filename:     report.Filename,
			TotalSheets:  report.TotalSheets,
			Duration:     time.Since(startTime).Milliseconds(),
			Status:       "error",
			ErrorMessage: err.Error(),
		})
	}
	c.sendProgress(progressChan, ProgressEvent{
		Type:      "error",
		Message:   err.Error(),
		Timestamp: time.Now(),
	})
}

// sheetProfile 取工作表参数并套用运行期覆盖；覆盖时拷贝，内置参数表保持只读
func sheetProfile(sheetName string, opts ExtractOptions) *profile.Profile {
	p := profile.ForSheet(sheetName)
	if opts.MaxRate <= 0 && !opts.AllowZeroRate {
		return p
	}
	pc := *p
	if opts.MaxRate > 0 {
		pc.MaxRate = opts.MaxRate
	}
	if opts.AllowZeroRate {
		pc.AllowZeroRate = true
	}
	return &pc
}

// sendProgress 发送进度事件；通道为空或已满时丢弃
func (c *Coordinator) sendProgress(ch chan ProgressEvent, event ProgressEvent) {
	if ch == nil {
		return
	}
	select {
	case ch <- event:
	default:
	}
}
