package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/SlpAus/stat-trainer-bot/internal/stats"
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

func (b *Bot) help(_ context.Context, s Session, m *discordgo.MessageCreate, _ []string) error {
	embed := &discordgo.MessageEmbed{
		Title:       "Game Stats Bot Commands",
		Description: "Here are the available commands for interacting with the Game Stats Bot:",
		Color:       colorBlue,
	}
	for _, c := range b.ordered {
		name := b.prefix + c.name
		if c.usage != "" {
			name += " " + c.usage
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: name, Value: c.description})
	}
	embed.Fields = append(embed.Fields,
		&discordgo.MessageEmbedField{
			Name:  "**Stats:**",
			Value: "`str` - Strength (Attack)\n`sp` - Speed\n`def` - Defense",
		},
		&discordgo.MessageEmbedField{
			Name:  "**Permissions:**",
			Value: fmt.Sprintf("Admins can use `%sreset-round` and `%sset-stat`.", b.prefix, b.prefix),
		},
	)

	_, err := s.ChannelMessageSendEmbed(m.ChannelID, embed)
	return err
}

// showStats 只能查询自己的记录
func (b *Bot) showStats(ctx context.Context, s Session, m *discordgo.MessageCreate, _ []string) error {
	rec, err := b.stats.Get(ctx, m.Author.ID)
	if errors.Is(err, stats.ErrNoRecord) {
		b.reply(s, m.ChannelID, fmt.Sprintf(msgNoStats, b.prefix))
		return nil
	}
	if err != nil {
		return err
	}

	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("%s's Stats", authorName(m)),
		Color: colorBlue,
	}
	for _, st := range stats.All() {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   st.Name(),
			Value:  strconv.Itoa(rec.Value(st)),
			Inline: true,
		})
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:  "Action Available",
		Value: yesNo(rec.HasAction),
	})

	if info, err := b.rounds.Current(ctx); err != nil {
		b.log.Warn("无法读取当前回合", zap.Error(err))
	} else {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Round %d", info.Round)}
	}

	_, err = s.ChannelMessageSendEmbed(m.ChannelID, embed)
	return err
}

func (b *Bot) resetRound(ctx context.Context, s Session, m *discordgo.MessageCreate, _ []string) error {
	if _, err := b.rounds.Reset(ctx, m.Author.ID); err != nil {
		return err
	}
	b.reply(s, m.ChannelID, msgRoundReset)
	return nil
}

// setStat 处理 set-stat <member> <stat> <value>
func (b *Bot) setStat(ctx context.Context, s Session, m *discordgo.MessageCreate, args []string) error {
	if len(args) != 3 {
		b.reply(s, m.ChannelID, fmt.Sprintf(msgSetStatUsage, b.prefix))
		return nil
	}

	targetID, ok := parseUserID(args[0])
	if !ok {
		b.reply(s, m.ChannelID, msgBadMember)
		return nil
	}
	stat, err := stats.ParseCode(args[1])
	if err != nil {
		b.reply(s, m.ChannelID, msgInvalidStat)
		return nil
	}
	value, err := strconv.ParseInt(args[2], 10, 32)
	if err != nil {
		b.reply(s, m.ChannelID, msgBadValue)
		return nil
	}

	name, ok := memberName(s, m.GuildID, targetID)
	if !ok {
		b.reply(s, m.ChannelID, msgBadMember)
		return nil
	}
	_, err = b.stats.SetStat(ctx, targetID, stat, int(value))
	if errors.Is(err, stats.ErrNoRecord) {
		b.reply(s, m.ChannelID, fmt.Sprintf(msgTargetNoStats, name))
		return nil
	}
	if err != nil {
		return err
	}

	b.log.Info("管理员设置属性",
		zap.String("admin", m.Author.ID),
		zap.String("target", targetID),
		zap.Stringer("stat", stat),
		zap.Int64("value", value),
	)
	b.reply(s, m.ChannelID, fmt.Sprintf(msgStatSet, name, stat.Name(), value))
	return nil
}
