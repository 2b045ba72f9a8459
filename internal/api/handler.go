package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Abaaza/pricelistextractor/internal/enrich"
	"github.com/Abaaza/pricelistextractor/internal/exporter"
	"github.com/Abaaza/pricelistextractor/internal/importer"
	"github.com/Abaaza/pricelistextractor/internal/store"
)

// Handler API 处理器
type Handler struct {
	store    *store.Store
	enhancer enrich.Enhancer
}

// NewHandler 创建 API 处理器；enhancer 可为 nil（未配置密钥）
func NewHandler(store *store.Store, enhancer enrich.Enhancer) *Handler {
	return &Handler{store: store, enhancer: enhancer}
}

// RegisterRoutes 注册 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 健康检查
	router.GET("/health", h.Health)

	// 抽取（SSE 流式进度）
	router.POST("/extract", h.Extract)

	// 记录查询
	router.GET("/items", h.ListItems)
	router.GET("/categories", h.ListCategories)

	// 导出
	router.GET("/export/csv", h.ExportCSV)
	router.GET("/export/json", h.ExportJSON)

	// 历次抽取
	router.GET("/runs", h.ListRuns)
}

// Health 健康检查
// GET /api/health
func (h *Handler) Health(c *gin.Context) {
	count, err := h.store.ItemCount()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "items": count})
}

// Extract 上传工作簿并抽取 (SSE 流式响应)
// POST /api/extract
func (h *Handler) Extract(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的表单数据"})
		return
	}

	files := form.File["file"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未找到上传文件"})
		return
	}

	uploadedFile := files[0]

	// 保存到临时目录
	tempDir := os.TempDir()
	tempFilePath := filepath.Join(tempDir, fmt.Sprintf("pricelist_extract_%d_%s", time.Now().Unix(), uploadedFile.Filename))

	if err := c.SaveUploadedFile(uploadedFile, tempFilePath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "保存文件失败"})
		return
	}
	defer os.Remove(tempFilePath)

	enhance := c.DefaultPostForm("enhance", "false") == "true"

	// 设置 SSE 响应头
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	coordinator := importer.NewCoordinator(h.store, h.enhancer)
	progressChan := coordinator.Extract(importer.ExtractOptions{
		FilePath: tempFilePath,
		Enhance:  enhance,
		Persist:  true,
	})

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "不支持流式响应"})
		return
	}

	for event := range progressChan {
		eventData, err := json.Marshal(event)
		if err != nil {
			continue
		}

		// SSE 格式: data: {json}\n\n
		fmt.Fprintf(c.Writer, "data: %s\n\n", eventData)
		flusher.Flush()
	}
}

// ListItems 查询记录，支持 ?category= 过滤
// GET /api/items
func (h *Handler) ListItems(c *gin.Context) {
	records, err := h.store.ListItems(c.Query("category"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": len(records), "items": records})
}

// ListCategories 各类目记录数
// GET /api/categories
func (h *Handler) ListCategories(c *gin.Context) {
	counts, err := h.store.Categories()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, counts)
}

// ExportCSV 下载 CSV
// GET /api/export/csv
func (h *Handler) ExportCSV(c *gin.Context) {
	records, err := h.store.ListItems(c.Query("category"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="pricelist.csv"`)
	if err := exporter.WriteRecordsCSV(c.Writer, records); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// ExportJSON 下载 JSON
// GET /api/export/json
func (h *Handler) ExportJSON(c *gin.Context) {
	records, err := h.store.ListItems(c.Query("category"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Type", "application/json; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="pricelist.json"`)
	if err := exporter.WriteRecordsJSON(c.Writer, records); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// ListRuns 历次抽取记录
// GET /api/runs
func (h *Handler) ListRuns(c *gin.Context) {
	limit := 20
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	runs, err := h.store.RecentRuns(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": len(runs), "runs": runs})
}
