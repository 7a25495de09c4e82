package bot

import (
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
)

const colorBlue = 0x3498db

// 用户可见的回复文本
const (
	msgAlreadyActed  = "You have already used your action this round!"
	msgChooseStat    = "Choose a stat to train:"
	msgMenuHint      = "Choose which stat to train..."
	msgNoStats       = "You have no stats yet! Use `%strain` to get started."
	msgRoundReset    = "The round has been reset. All users can now take one action!"
	msgInvalidStat   = "Invalid stat! Use `str`, `sp`, or `def`."
	msgSetStatUsage  = "Usage: `%sset-stat <member> <stat> <value>`"
	msgBadMember     = "I couldn't find that member. Mention them or use their ID."
	msgBadValue      = "The value must be a whole number."
	msgTargetNoStats = "%s has no stats yet."
	msgStatSet       = "%s's %s has been set to %d."
	msgTrained       = "You have trained your %s! It has increased by 1."
	msgNotAdmin      = "You need the Administrator permission to use this command."
	msgForeignMenu   = "This menu belongs to someone else. Use `%strain` to open your own."
	msgMenuExpired   = "This menu has expired. Use `%strain` again."
	msgInternal      = "Something went wrong, please try again later."
)

// userName 返回用户的展示名
func userName(u *discordgo.User) string {
	if u == nil {
		return "Unknown"
	}
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}

// authorName 返回消息作者在当前服务器中的展示名
func authorName(m *discordgo.MessageCreate) string {
	if m.Member != nil && m.Member.Nick != "" {
		return m.Member.Nick
	}
	return userName(m.Author)
}

// memberName 查询服务器成员的展示名，用户不是该服务器成员时返回false
func memberName(s Session, guildID, userID string) (string, bool) {
	if guildID == "" {
		return "", false
	}
	mem, err := s.GuildMember(guildID, userID)
	if err != nil || mem == nil {
		return "", false
	}
	if mem.Nick != "" {
		return mem.Nick, true
	}
	if mem.User != nil {
		return userName(mem.User), true
	}
	return "<@" + userID + ">", true
}

// parseUserID 接受 <@id>、<@!id> 或纯数字ID
func parseUserID(arg string) (string, bool) {
	id := arg
	if strings.HasPrefix(id, "<@") && strings.HasSuffix(id, ">") {
		id = strings.TrimPrefix(strings.TrimSuffix(strings.TrimPrefix(id, "<@"), ">"), "!")
	}
	if _, err := strconv.ParseUint(id, 10, 64); err != nil {
		return "", false
	}
	return id, true
}

// interactionUserID 返回与组件交互的用户ID，服务器内和私信中位置不同
func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func ephemeral(content string) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	}
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
