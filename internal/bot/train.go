package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/SlpAus/stat-trainer-bot/internal/menu"
	"github.com/SlpAus/stat-trainer-bot/internal/stats"
	"github.com/SlpAus/stat-trainer-bot/pkg/token"
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// statOptions 是训练菜单的三个选项
var statOptions = []discordgo.SelectMenuOption{
	{Label: "Strength (STR)", Value: stats.Attack.Code()},
	{Label: "Speed (SP)", Value: stats.Speed.Code()},
	{Label: "Defense (DEF)", Value: stats.Defense.Code()},
}

// train 是训练的第一阶段：检查资格并展示一个只属于发起者的选择菜单
func (b *Bot) train(ctx context.Context, s Session, m *discordgo.MessageCreate, _ []string) error {
	userID := m.Author.ID

	_, err := b.stats.EnsureEligible(ctx, userID)
	if errors.Is(err, stats.ErrActionUnavailable) {
		b.reply(s, m.ChannelID, msgAlreadyActed)
		return nil
	}
	if err != nil {
		return err
	}

	customID, err := b.menus.Present(ctx, userID, m.ChannelID)
	if err != nil {
		return fmt.Errorf("无法签发训练菜单: %w", err)
	}

	_, err = s.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
		Content: msgChooseStat,
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.SelectMenu{
						MenuType:    discordgo.StringSelectMenu,
						CustomID:    customID,
						Placeholder: msgMenuHint,
						Options:     statOptions,
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("无法发送训练菜单: %w", err)
	}
	return nil
}

// applyTraining 是训练的第二阶段：只有菜单的发起者本人才能完成训练，
// 加一操作只作用于签发时记录的用户ID。
func (b *Bot) applyTraining(ctx context.Context, s Session, i *discordgo.InteractionCreate, data discordgo.MessageComponentInteractionData) {
	actorID := interactionUserID(i)
	log := b.log.With(zap.String("user", actorID), zap.String("interaction", i.ID))

	if len(data.Values) != 1 {
		b.respond(s, i, msgInvalidStat)
		return
	}
	stat, err := stats.ParseCode(data.Values[0])
	if err != nil {
		b.respond(s, i, msgInvalidStat)
		return
	}

	session, err := b.menus.Resolve(ctx, data.CustomID, actorID)
	switch {
	case errors.Is(err, menu.ErrForeign):
		log.Info("拒绝他人菜单的交互")
		b.respond(s, i, fmt.Sprintf(msgForeignMenu, b.prefix))
		return
	case errors.Is(err, menu.ErrExpired), errors.Is(err, token.ErrBadSignature):
		b.respond(s, i, fmt.Sprintf(msgMenuExpired, b.prefix))
		return
	case err != nil:
		log.Error("无法解析训练菜单", zap.Error(err))
		b.respond(s, i, msgInternal)
		return
	}

	rec, err := b.stats.Train(ctx, session.UserID, stat)
	if errors.Is(err, stats.ErrActionUnavailable) {
		b.respond(s, i, msgAlreadyActed)
		return
	}
	if err != nil {
		log.Error("训练失败", zap.Error(err))
		b.respond(s, i, msgInternal)
		return
	}

	log.Info("训练完成", zap.Stringer("stat", stat), zap.Int("value", rec.Value(stat)))
	b.respond(s, i, fmt.Sprintf(msgTrained, stat.Name()))
}
