package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 结构体定义了机器人进程的所有配置项
// 它与 config.yaml 文件的结构完全对应，所有键都可以被环境变量覆盖
type Config struct {
	Discord  DiscordConfig  `mapstructure:"discord"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Menu     MenuConfig     `mapstructure:"menu"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
}

// DiscordConfig 定义了与Discord网关相关的配置
type DiscordConfig struct {
	// Token 是机器人的密钥，通常来自 BOT_TOKEN 环境变量
	Token  string `mapstructure:"token"`
	Prefix string `mapstructure:"prefix"`
}

const (
	DriverSqlite   = "sqlite"
	DriverPostgres = "postgres"
)

// DatabaseConfig 定义了关系型存储的配置
type DatabaseConfig struct {
	Driver   string         `mapstructure:"driver"`
	Sqlite   SqliteConfig   `mapstructure:"sqlite"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

// SqliteConfig 定义了SQLite文件的位置
type SqliteConfig struct {
	Path string `mapstructure:"path"`
}

// PostgresConfig 定义了Postgres的连接串
type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig 定义了Redis的配置。未启用时，菜单会话保存在进程内存中。
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// MenuConfig 定义了训练菜单的配置
type MenuConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
	// Secret 用于签名菜单的custom id，留空则在启动时随机生成
	Secret string `mapstructure:"secret"`
}

// ServerConfig 定义了只读运维HTTP接口的配置
type ServerConfig struct {
	Enabled bool       `mapstructure:"enabled"`
	Mode    string     `mapstructure:"mode"`
	Address string     `mapstructure:"address"`
	Cors    CorsConfig `mapstructure:"cors"`
	// Token 是访问按用户查询接口所需的Bearer令牌，留空时不注册该接口
	Token   string     `mapstructure:"token"`
}

// CorsConfig 定义了CORS相关的配置
type CorsConfig struct {
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

// LogConfig 定义了日志的级别和输出格式
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("discord.token", "")
	v.SetDefault("discord.prefix", "!")
	v.SetDefault("database.driver", DriverSqlite)
	v.SetDefault("database.sqlite.path", "stats.db")
	v.SetDefault("database.postgres.dsn", "")
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("menu.ttl", 10*time.Minute)
	v.SetDefault("menu.secret", "")
	v.SetDefault("server.enabled", true)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.address", "127.0.0.1:8080")
	v.SetDefault("server.token", "")
	v.SetDefault("server.cors.allowedOrigins", []string{"http://localhost:3000"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// LoadConfig 函数负责查找、加载和解析配置文件
// 配置文件是可选的：找不到 config.yaml 时只使用默认值和环境变量
func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	setDefaults(v)

	// 允许通过环境变量覆盖配置，例如 DATABASE_DRIVER=postgres
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// 机器人密钥沿用 BOT_TOKEN 这个约定俗成的名字
	if err := v.BindEnv("discord.token", "BOT_TOKEN", "DISCORD_TOKEN"); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("无法读取配置文件: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("无法解析配置: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 检查启动所必需的配置项，任何一项不合法都应当让进程退出
func (c *Config) Validate() error {
	token := c.Discord.Token
	if token == "" {
		return errors.New("缺少机器人密钥: 请设置 BOT_TOKEN")
	}
	if strings.ContainsAny(token, " \t\r\n") {
		return errors.New("机器人密钥格式不正确: 不能包含空白字符")
	}
	if c.Discord.Prefix == "" {
		return errors.New("命令前缀不能为空")
	}

	switch c.Database.Driver {
	case DriverSqlite:
		if c.Database.Sqlite.Path == "" {
			return errors.New("database.sqlite.path 不能为空")
		}
	case DriverPostgres:
		if c.Database.Postgres.DSN == "" {
			return errors.New("database.postgres.dsn 不能为空")
		}
	default:
		return fmt.Errorf("不支持的数据库驱动: %q", c.Database.Driver)
	}

	if c.Menu.TTL <= 0 {
		return fmt.Errorf("menu.ttl 必须为正数, 当前为 %v", c.Menu.TTL)
	}
	return nil
}
