package shutdown

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SlpAus/stat-trainer-bot/pkg/lifecycle"
	"go.uber.org/zap"
)

const (
	httpTimeout     = 15 * time.Second
	gracefulTimeout = 30 * time.Second
)

// Closer 是一个在停机最后阶段按顺序关闭的资源
type Closer struct {
	Name  string
	Close func() error
}

// Coordinator 负责编排应用程序的优雅停机流程
type Coordinator struct {
	manager *lifecycle.Manager
	server  *http.Server
	closers []Closer
	log     *zap.Logger
}

// NewCoordinator 创建一个新的停机协调器。server 可以为nil。
// closers 会在所有后台服务退出后按给定顺序关闭。
func NewCoordinator(mgr *lifecycle.Manager, server *http.Server, log *zap.Logger, closers ...Closer) *Coordinator {
	return &Coordinator{
		manager: mgr,
		server:  server,
		closers: closers,
		log:     log.Named("shutdown"),
	}
}

// ListenForSignalsAndShutdown 阻塞直到收到停机信号，然后执行停机流程
func (c *Coordinator) ListenForSignalsAndShutdown() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	sig := <-sigChan
	c.log.Info("收到关闭信号，开始优雅停机...", zap.String("signal", sig.String()))
	c.Shutdown()
}

// Shutdown 依次关闭HTTP服务器、后台服务和外部资源
func (c *Coordinator) Shutdown() {
	if c.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), httpTimeout)
		defer cancel()
		if err := c.server.Shutdown(ctx); err != nil {
			c.log.Error("HTTP服务器关闭错误", zap.Error(err))
		} else {
			c.log.Info("HTTP服务器已关闭")
		}
	}

	c.manager.Shutdown()
	if remaining := c.manager.WaitWithTimeout(gracefulTimeout); len(remaining) > 0 {
		c.log.Warn("部分后台服务未能在超时前退出", zap.Strings("services", remaining))
	}

	for _, cl := range c.closers {
		if err := cl.Close(); err != nil {
			c.log.Error("资源关闭失败", zap.String("resource", cl.Name), zap.Error(err))
			continue
		}
		c.log.Info("资源已关闭", zap.String("resource", cl.Name))
	}

	c.log.Info("优雅停机完成")
}
