package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/SlpAus/stat-trainer-bot/internal/bot"
	"github.com/SlpAus/stat-trainer-bot/internal/menu"
	"github.com/SlpAus/stat-trainer-bot/internal/opsapi"
	"github.com/SlpAus/stat-trainer-bot/internal/platform/config"
	"github.com/SlpAus/stat-trainer-bot/internal/platform/database"
	"github.com/SlpAus/stat-trainer-bot/internal/platform/health"
	"github.com/SlpAus/stat-trainer-bot/internal/platform/logging"
	"github.com/SlpAus/stat-trainer-bot/internal/platform/shutdown"
	"github.com/SlpAus/stat-trainer-bot/internal/platform/startup"
	"github.com/SlpAus/stat-trainer-bot/internal/round"
	"github.com/SlpAus/stat-trainer-bot/internal/stats"
	"github.com/SlpAus/stat-trainer-bot/pkg/lifecycle"
	"github.com/SlpAus/stat-trainer-bot/pkg/token"
	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const sweepInterval = time.Minute

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println(".env 未加载，继续使用环境变量")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "配置加载失败，无法启动: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "日志初始化失败，无法启动: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	db, err := database.OpenDB(cfg.Database, log)
	if err != nil {
		log.Fatal("数据库初始化失败", zap.Error(err))
	}
	rdb, err := database.OpenRedis(context.Background(), cfg.Redis, log)
	if err != nil {
		log.Fatal("Redis初始化失败", zap.Error(err))
	}

	store := stats.NewStore(db)
	if err := startup.InitializeApplication(db, store, log); err != nil {
		log.Fatal("应用初始化失败，无法启动", zap.Error(err))
	}
	rounds := round.NewController(db, log)

	mgr := lifecycle.NewManager(log)

	var menuStore menu.Store
	if rdb != nil {
		menuStore = menu.NewRedisStore(rdb)
	} else {
		mem := menu.NewMemoryStore()
		if err := mgr.Go("menu-sweeper", func(h *lifecycle.Handle) {
			mem.RunSweeper(h, sweepInterval, log.Named("menu"))
		}); err != nil {
			log.Fatal("无法启动菜单清理器", zap.Error(err))
		}
		menuStore = mem
	}
	signer, err := token.NewSigner(cfg.Menu.Secret)
	if err != nil {
		log.Fatal("无法创建菜单签名器", zap.Error(err))
	}

	b := bot.New(bot.Deps{
		Prefix: cfg.Discord.Prefix,
		Stats:  store,
		Rounds: rounds,
		Menus:  menu.New(menuStore, signer, cfg.Menu.TTL),
		Log:    log,
	})

	dg, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		log.Fatal("无法创建Discord会话", zap.Error(err))
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentMessageContent
	dg.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		log.Info("已登录", zap.String("user", r.User.String()))
	})
	dg.AddHandler(b.OnMessageCreate)
	dg.AddHandler(b.OnInteractionCreate)

	// 密钥无效时网关鉴权失败，进程直接退出
	if err := dg.Open(); err != nil {
		log.Fatal("无法连接Discord网关", zap.Error(err))
	}

	checker := health.NewChecker(db, rdb, log)
	if err := mgr.Go("health-monitor", func(h *lifecycle.Handle) {
		checker.Monitor(h, health.MonitorInterval)
	}); err != nil {
		log.Fatal("无法启动健康检查器", zap.Error(err))
	}

	var server *http.Server
	if cfg.Server.Enabled {
		router := opsapi.NewRouter(cfg.Server, opsapi.NewHandler(store, rounds, checker, log))
		server = &http.Server{Addr: cfg.Server.Address, Handler: router}
		go func() {
			log.Info("运维接口开始监听", zap.String("address", cfg.Server.Address))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("运维接口异常退出", zap.Error(err))
			}
		}()
	}

	closers := []shutdown.Closer{{Name: "discord", Close: dg.Close}}
	if rdb != nil {
		closers = append(closers, shutdown.Closer{Name: "redis", Close: rdb.Close})
	}
	closers = append(closers, shutdown.Closer{Name: "database", Close: func() error { return database.CloseDB(db) }})

	log.Info("机器人已准备就绪", zap.String("prefix", cfg.Discord.Prefix))
	shutdown.NewCoordinator(mgr, server, log, closers...).ListenForSignalsAndShutdown()
}
