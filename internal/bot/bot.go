package bot

import (
	"context"
	"strings"
	"time"

	"github.com/SlpAus/stat-trainer-bot/internal/menu"
	"github.com/SlpAus/stat-trainer-bot/internal/round"
	"github.com/SlpAus/stat-trainer-bot/internal/stats"
	"github.com/SlpAus/stat-trainer-bot/pkg/token"
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// handlerTimeout 限制单个命令处理的总时长
const handlerTimeout = 10 * time.Second

type commandFunc func(ctx context.Context, s Session, m *discordgo.MessageCreate, args []string) error

type command struct {
	name        string
	usage       string
	description string
	adminOnly   bool
	run         commandFunc
}

// Deps 是机器人运行所需的全部依赖，由 main 显式注入
type Deps struct {
	Prefix string
	Stats  *stats.Store
	Rounds *round.Controller
	Menus  *menu.Menus
	Log    *zap.Logger
}

// Bot 把Discord消息和组件交互分发到对应的处理器
type Bot struct {
	prefix   string
	stats    *stats.Store
	rounds   *round.Controller
	menus    *menu.Menus
	log      *zap.Logger
	commands map[string]*command
	ordered  []*command
}

// New 创建机器人并注册全部命令
func New(d Deps) *Bot {
	b := &Bot{
		prefix:   d.Prefix,
		stats:    d.Stats,
		rounds:   d.Rounds,
		menus:    d.Menus,
		log:      d.Log.Named("bot"),
		commands: make(map[string]*command),
	}

	b.register(&command{name: "train", description: "Train your character's stats (Attack, Speed, or Defense).", run: b.train})
	b.register(&command{name: "stats", description: "View your current stats.", run: b.showStats})
	b.register(&command{name: "reset-round", description: "Admin-only command to reset the round and allow users to take actions again.", adminOnly: true, run: b.resetRound})
	b.register(&command{name: "set-stat", usage: "`<member>` `<stat>` `<value>`", description: "Admin-only command to set a specific stat (Attack, Speed, Defense) for a user.", adminOnly: true, run: b.setStat})
	b.register(&command{name: "help", description: "Show this list of commands.", run: b.help})
	// game-help 是旧版本的命令名，保留为别名
	b.commands["game-help"] = b.commands["help"]

	return b
}

func (b *Bot) register(c *command) {
	b.commands[c.name] = c
	b.ordered = append(b.ordered, c)
}

// OnMessageCreate 是注册到discordgo的消息事件回调
func (b *Bot) OnMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()
	b.HandleMessage(ctx, s, m)
}

// OnInteractionCreate 是注册到discordgo的交互事件回调
func (b *Bot) OnInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()
	b.HandleInteraction(ctx, s, i)
}

// parseCommand 拆分 "<prefix><name> args..."，命令名大小写敏感
func (b *Bot) parseCommand(content string) (string, []string, bool) {
	if !strings.HasPrefix(content, b.prefix) {
		return "", nil, false
	}
	fields := strings.Fields(strings.TrimPrefix(content, b.prefix))
	if len(fields) == 0 {
		return "", nil, false
	}
	return fields[0], fields[1:], true
}

// HandleMessage 解析并执行一条前缀命令
func (b *Bot) HandleMessage(ctx context.Context, s Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	name, args, ok := b.parseCommand(m.Content)
	if !ok {
		return
	}
	cmd, ok := b.commands[name]
	if !ok {
		b.log.Debug("未知命令", zap.String("command", name))
		return
	}

	log := b.log.With(
		zap.String("command", cmd.name),
		zap.String("user", m.Author.ID),
		zap.String("guild", m.GuildID),
	)

	if cmd.adminOnly {
		allowed, err := b.isAdmin(s, m)
		if err != nil {
			log.Error("无法检查管理员权限", zap.Error(err))
			b.reply(s, m.ChannelID, msgInternal)
			return
		}
		if !allowed {
			log.Info("拒绝非管理员调用")
			b.reply(s, m.ChannelID, msgNotAdmin)
			return
		}
	}

	if err := cmd.run(ctx, s, m, args); err != nil {
		log.Error("命令执行失败", zap.Error(err))
		b.reply(s, m.ChannelID, msgInternal)
	}
}

// HandleInteraction 处理训练菜单的选择结果，其他交互一律忽略
func (b *Bot) HandleInteraction(ctx context.Context, s Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}
	data := i.MessageComponentData()
	if token.Kind(data.CustomID) != menu.TrainKind {
		return
	}
	b.applyTraining(ctx, s, i, data)
}

// isAdmin 检查作者在当前频道是否拥有管理员权限，私信中一律视为没有
func (b *Bot) isAdmin(s Session, m *discordgo.MessageCreate) (bool, error) {
	if m.GuildID == "" {
		return false, nil
	}
	perms, err := s.UserChannelPermissions(m.Author.ID, m.ChannelID)
	if err != nil {
		return false, err
	}
	return perms&discordgo.PermissionAdministrator != 0, nil
}

func (b *Bot) reply(s Session, channelID, content string) {
	if _, err := s.ChannelMessageSend(channelID, content); err != nil {
		b.log.Warn("发送消息失败", zap.String("channel", channelID), zap.Error(err))
	}
}

func (b *Bot) respond(s Session, i *discordgo.InteractionCreate, content string) {
	if err := s.InteractionRespond(i.Interaction, ephemeral(content)); err != nil {
		b.log.Warn("响应交互失败", zap.String("interaction", i.ID), zap.Error(err))
	}
}
