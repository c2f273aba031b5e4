package api

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taoyao-code/frame-ingest/internal/ingest"
	"github.com/taoyao-code/frame-ingest/internal/metrics"
	"github.com/taoyao-code/frame-ingest/internal/storage"
)

// Surface 一个接入面：名称、路由、校验器与存储
type Surface struct {
	Name      string
	Routes    Routes
	Validator *ingest.Validator
	Store     storage.Store
}

// SurfaceHandler 接入面读写处理器
type SurfaceHandler struct {
	surface Surface
	metrics *metrics.AppMetrics
	logger  *zap.Logger
}

// NewSurfaceHandler 创建接入面处理器
func NewSurfaceHandler(s Surface, m *metrics.AppMetrics, logger *zap.Logger) *SurfaceHandler {
	return &SurfaceHandler{surface: s, metrics: m, logger: logger}
}

// render 按接入面字段名输出记录：{timestamp, frame} 或 {timestamp, payload}
func (h *SurfaceHandler) render(r storage.Record) gin.H {
	return gin.H{"timestamp": r.Timestamp, h.surface.Validator.Field(): r.Payload}
}

func (h *SurfaceHandler) renderAll(recs []storage.Record) []gin.H {
	out := make([]gin.H, 0, len(recs))
	for _, r := range recs {
		out = append(out, h.render(r))
	}
	return out
}

func (h *SurfaceHandler) countRead(op string) {
	if h.metrics != nil {
		h.metrics.ReadTotal.WithLabelValues(h.surface.Name, op).Inc()
	}
}

func (h *SurfaceHandler) countWrite(result string) {
	if h.metrics != nil {
		h.metrics.IngestTotal.WithLabelValues(h.surface.Name, result).Inc()
	}
}

func (h *SurfaceHandler) storeError(c *gin.Context, op string, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": MsgNoData})
		return
	}
	h.logger.Error("store operation failed",
		zap.String("surface", h.surface.Name),
		zap.String("op", op),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// ReadAll 查询全部记录
// @Summary 查询全部记录
// @Description 按追加顺序返回全部记录；存储为空时返回空数组
// @Tags 读取
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} map[string]string "记录列表"
// @Failure 401 {object} map[string]string "未认证"
// @Router /read/all [get]
// @Router /data [get]
func (h *SurfaceHandler) ReadAll(c *gin.Context) {
	h.countRead("all")
	recs, err := h.surface.Store.All(c.Request.Context())
	if err != nil {
		h.storeError(c, "all", err)
		return
	}
	c.JSON(http.StatusOK, h.renderAll(recs))
}

// ReadLast 查询最后一条记录
// @Summary 查询最后一条记录
// @Tags 读取
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} map[string]string "记录"
// @Failure 404 {object} map[string]string "No data available"
// @Router /read [get]
// @Router /data/last [get]
func (h *SurfaceHandler) ReadLast(c *gin.Context) {
	h.countRead("last")
	rec, err := h.surface.Store.Last(c.Request.Context())
	if err != nil {
		h.storeError(c, "last", err)
		return
	}
	c.JSON(http.StatusOK, h.render(rec))
}

// ReadLastN 查询最后 n 条记录
// @Summary 查询最后 n 条记录
// @Description n 大于记录数时返回全部；n=0 返回空数组
// @Tags 读取
// @Produce json
// @Security ApiKeyAuth
// @Param n path int true "条数"
// @Success 200 {array} map[string]string "记录列表"
// @Failure 404 {object} map[string]string "No data available"
// @Router /read/{n} [get]
// @Router /data/last/{n} [get]
func (h *SurfaceHandler) ReadLastN(c *gin.Context) {
	n, ok := parseCount(c.Param("n"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": MsgNotFound})
		return
	}
	h.countRead("last_n")
	recs, err := h.surface.Store.LastN(c.Request.Context(), n)
	if err != nil {
		h.storeError(c, "last_n", err)
		return
	}
	c.JSON(http.StatusOK, h.renderAll(recs))
}

// Write 写入一帧
// @Summary 写入一帧
// @Description 校验请求体中的十六进制帧（CRC-16/MODBUS，校验值低字节在前），通过后打时间戳追加保存
// @Tags 写入
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body map[string]string true "{\"frame\":\"010401e3\"} 或 {\"payload\":\"010401e3\"}"
// @Success 200 {object} map[string]interface{} "{status: success, data: 记录}"
// @Failure 400 {object} map[string]string "请求体为空 / 缺少字段 / 帧校验失败"
// @Failure 401 {object} map[string]string "未认证"
// @Router /write [post]
// @Router /data [post]
func (h *SurfaceHandler) Write(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		body = nil
	}

	frame, err := h.surface.Validator.ValidateBody(body)
	if err != nil {
		ve, ok := ingest.AsValidationError(err)
		if !ok {
			h.countWrite("internal_error")
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		h.countWrite(ve.Kind.String())
		h.logger.Warn("write rejected",
			zap.String("surface", h.surface.Name),
			zap.String("reason", ve.Kind.String()),
			zap.String("remote_addr", c.ClientIP()),
			zap.String("request_id", c.GetString("request_id")),
		)
		c.JSON(ve.Kind.Status(), gin.H{"error": ve.Message})
		return
	}

	rec, err := h.surface.Store.Append(c.Request.Context(), frame)
	if err != nil {
		h.countWrite("store_error")
		h.storeError(c, "append", err)
		return
	}
	h.countWrite("ok")
	if h.metrics != nil {
		h.metrics.RecordsAppended.WithLabelValues(h.surface.Name).Inc()
	}
	h.logger.Info("record appended",
		zap.String("surface", h.surface.Name),
		zap.String("timestamp", rec.Timestamp),
		zap.Int("frame_len", len(rec.Payload)),
	)

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   h.render(rec),
	})
}

// parseCount 只接受非负十进制整数；超出 int 范围视为“全部”
func parseCount(s string) (int, bool) {
	u, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return math.MaxInt, true
		}
		return 0, false
	}
	if u > math.MaxInt {
		return math.MaxInt, true
	}
	return int(u), true
}
