package bot

import (
	"fmt"
	"time"

	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/starshine-sys/keeper/commands"
	"github.com/starshine-sys/keeper/common"
)

// errorCode reports err to Sentry, if it's set up, and returns a code the user can give to the developer.
func (bot *Bot) errorCode(inv *invocation, err error) string {
	if bot.Config.Auth.Sentry == "" {
		return uuid.New().String()
	}

	hub := sentry.CurrentHub().Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		if inv.req.User.ID.IsValid() {
			scope.SetUser(sentry.User{ID: inv.req.User.ID.String()})
		}
		scope.SetTag("command", inv.module.Name())
		scope.SetTag("legacy", fmt.Sprint(inv.legacy))
	})

	hub.AddBreadcrumb(&sentry.Breadcrumb{
		Data: map[string]any{
			"user":    inv.req.User.ID,
			"guild":   inv.req.GuildID,
			"channel": inv.req.ChannelID,
		},
		Level:     sentry.LevelError,
		Timestamp: time.Now().UTC(),
	}, nil)

	id := hub.CaptureException(err)
	if id == nil {
		return uuid.New().String()
	}
	return string(*id)
}

func (bot *Bot) internalErrorReply(code string) commands.Reply {
	desc := "An internal error has occurred. If this issue persists, please contact the developer"
	if bot.Config.Bot.SupportServer != "" {
		desc += fmt.Sprintf(" in the [support server](%v)", bot.Config.Bot.SupportServer)
	}
	desc += " with the error code below."

	return commands.Reply{
		Content: fmt.Sprintf("Error code: ``%v``", code),
		Embeds: []discord.Embed{{
			Title:       "Internal error occurred",
			Description: desc,
			Color:       common.ColourRed,
			Timestamp:   discord.NowTimestamp(),
			Footer: &discord.EmbedFooter{
				Text: code,
			},
		}},
		Ephemeral: true,
	}
}
