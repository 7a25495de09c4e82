package opsapi

import (
	"time"

	"github.com/SlpAus/stat-trainer-bot/internal/platform/config"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter 创建只读运维接口的Gin引擎并注册所有路由
func NewRouter(cfg config.ServerConfig, h *Handler) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	corsCfg := cors.Config{
		AllowOrigins:  cfg.Cors.AllowedOrigins,
		AllowMethods:  []string{"GET", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	// 接口只读，未配置来源时放开所有来源
	if len(corsCfg.AllowOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	}
	r.Use(cors.New(corsCfg))

	r.GET("/healthz", h.Health)

	api := r.Group("/api")
	{
		api.GET("/round", h.GetRound)
		// 属性只允许本人查询，运维侧的按用户查询必须配置令牌才开放
		if cfg.Token != "" {
			api.GET("/users/:id/stats", RequireToken(cfg.Token), h.GetUserStats)
		}
	}
	return r
}
