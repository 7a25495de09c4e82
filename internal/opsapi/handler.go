package opsapi

import (
	"errors"
	"net/http"

	"github.com/SlpAus/stat-trainer-bot/internal/platform/health"
	"github.com/SlpAus/stat-trainer-bot/internal/round"
	"github.com/SlpAus/stat-trainer-bot/internal/stats"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 持有接口需要的只读依赖，HTTP侧不暴露任何写操作
type Handler struct {
	stats  *stats.Store
	rounds *round.Controller
	health *health.Checker
	log    *zap.Logger
}

// NewHandler 创建接口处理器
func NewHandler(s *stats.Store, r *round.Controller, hc *health.Checker, log *zap.Logger) *Handler {
	return &Handler{stats: s, rounds: r, health: hc, log: log.Named("opsapi")}
}

// Health 执行一次健康检查，降级时返回503
func (h *Handler) Health(c *gin.Context) {
	report := h.health.Check(c.Request.Context())
	status := http.StatusOK
	if report.State != health.StateHealthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, report)
}

// GetRound 返回当前回合编号和上次重置时间
func (h *Handler) GetRound(c *gin.Context) {
	info, err := h.rounds.Current(c.Request.Context())
	if err != nil {
		h.log.Error("无法读取当前回合", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "无法读取当前回合"})
		return
	}
	c.JSON(http.StatusOK, info)
}

// GetUserStats 返回某个用户的属性记录
func (h *Handler) GetUserStats(c *gin.Context) {
	userID := c.Param("id")
	rec, err := h.stats.Get(c.Request.Context(), userID)
	if errors.Is(err, stats.ErrNoRecord) {
		c.JSON(http.StatusNotFound, gin.H{"error": "该用户还没有属性记录"})
		return
	}
	if err != nil {
		h.log.Error("无法查询用户属性", zap.String("user", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "无法查询用户属性"})
		return
	}
	c.JSON(http.StatusOK, rec)
}
