package bot

import (
	"strings"

	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/gateway"
	"github.com/starshine-sys/keeper/commands"
	"github.com/starshine-sys/keeper/common/log"
)

func (bot *Bot) messageCreate(ev *gateway.MessageCreateEvent) {
	if ev.Author.Bot || ev.WebhookID.IsValid() {
		return
	}

	rest, ok := trimPrefix(ev.Content, bot.prefixes())
	if !ok {
		return
	}

	name, args := splitCommand(rest)
	m, ok := bot.Commands.Find(name)
	if !ok {
		return
	}

	inv := &invocation{
		module: m,
		legacy: true,
		args:   args,
		req: &commands.Request{
			GuildID:   ev.GuildID,
			ChannelID: ev.ChannelID,
			User:      ev.Author,
			Member:    ev.Member,
		},
		perms: func() (discord.Permissions, error) {
			return bot.State.Permissions(ev.ChannelID, ev.Author.ID)
		},
	}

	reply := bot.execute(inv)

	_, err := bot.State.SendMessageComplex(ev.ChannelID, api.SendMessageData{
		Content:   reply.Content,
		Embeds:    reply.Embeds,
		Reference: &discord.MessageReference{MessageID: ev.ID},
	})
	if err != nil {
		log.Errorf("replying to message %v in %v: %v", ev.ID, ev.ChannelID, err)
	}
}

// prefixes returns the configured prefixes and the bot's mentions.
func (bot *Bot) prefixes() []string {
	prefixes := append([]string(nil), bot.Config.Bot.Prefixes...)

	if me := bot.Me(); me.ID.IsValid() {
		prefixes = append(prefixes, "<@"+me.ID.String()+">", "<@!"+me.ID.String()+">")
	}
	return prefixes
}

// trimPrefix strips the first matching prefix from content, ignoring case.
func trimPrefix(content string, prefixes []string) (string, bool) {
	for _, p := range prefixes {
		if p == "" || len(content) < len(p) {
			continue
		}
		if strings.EqualFold(content[:len(p)], p) {
			return content[len(p):], true
		}
	}
	return "", false
}

// splitCommand splits the text after a prefix into a lowercase command name and its arguments.
func splitCommand(s string) (name string, args []string) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return "", nil
	}
	return strings.ToLower(fields[0]), fields[1:]
}
