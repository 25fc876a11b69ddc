package bot

import (
	"time"

	"emperror.dev/errors"
	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/gateway"
	"github.com/diamondburned/arikawa/v3/utils/json/option"
	"github.com/starshine-sys/keeper/commands"
	"github.com/starshine-sys/keeper/common/log"
)

// DeferAfter is how long a slash command may run before its response is deferred.
// Discord invalidates interactions that get no response within three seconds.
const DeferAfter = 2 * time.Second

// interactionClient is the part of the Discord API used to answer interactions.
// *api.Client implements it.
type interactionClient interface {
	RespondInteraction(id discord.InteractionID, token string, resp api.InteractionResponse) error
	EditInteractionResponse(appID discord.AppID, token string, data api.EditInteractionResponseData) (*discord.Message, error)
	DeleteInteractionResponse(appID discord.AppID, token string) error
	FollowUpInteraction(appID discord.AppID, token string, data api.InteractionResponseData) (*discord.Message, error)
}

func (bot *Bot) interactionCreate(ev *gateway.InteractionCreateEvent) {
	data, ok := ev.Data.(*discord.CommandInteraction)
	if !ok {
		return
	}

	err := respondInteraction(bot.State, &ev.InteractionEvent, DeferAfter, func() commands.Reply {
		return bot.runInteraction(&ev.InteractionEvent, data)
	})
	if err != nil {
		log.Errorf("responding to interaction %v: %v", ev.ID, err)
	}
}

func (bot *Bot) runInteraction(ev *discord.InteractionEvent, data *discord.CommandInteraction) commands.Reply {
	m, ok := bot.Commands.Get(data.Name)
	if !ok {
		// registered with Discord, but not loaded here
		log.Warnf("received unknown command %q in interaction %v", data.Name, ev.ID)
		return commands.Reply{Content: "This command isn't available right now.", Ephemeral: true}
	}

	req := &commands.Request{
		GuildID:   ev.GuildID,
		ChannelID: ev.ChannelID,
		Member:    ev.Member,
	}
	if u := ev.Sender(); u != nil {
		req.User = *u
	}

	inv := &invocation{module: m, req: req}

	opts, err := m.Schema.Resolve(commands.InteractionOptions(data.Options))
	if err != nil {
		return bot.result(inv, commands.Reply{}, err)
	}
	req.Options = opts
	return bot.execute(inv)
}

// respondInteraction runs the command and answers the interaction with its reply.
// If the command is still running after wait, the response is deferred first,
// and the reply replaces the deferred response once it's ready.
func respondInteraction(c interactionClient, ev *discord.InteractionEvent, wait time.Duration, run func() commands.Reply) error {
	done := make(chan commands.Reply, 1)
	go func() { done <- run() }()

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case reply := <-done:
		return c.RespondInteraction(ev.ID, ev.Token, api.InteractionResponse{
			Type: api.MessageInteractionWithSource,
			Data: interactionData(reply),
		})
	case <-timer.C:
	}

	err := c.RespondInteraction(ev.ID, ev.Token, api.InteractionResponse{
		Type: api.DeferredMessageInteractionWithSource,
	})
	if err != nil {
		return errors.Wrap(err, "deferring response")
	}

	reply := <-done

	// a deferred response can't be made ephemeral afterwards,
	// so it's replaced with an ephemeral follow-up
	if reply.Ephemeral {
		if _, err := c.FollowUpInteraction(ev.AppID, ev.Token, *interactionData(reply)); err != nil {
			return errors.Wrap(err, "sending follow-up")
		}
		return errors.Wrap(c.DeleteInteractionResponse(ev.AppID, ev.Token), "deleting deferred response")
	}

	_, err = c.EditInteractionResponse(ev.AppID, ev.Token, editData(reply))
	return errors.Wrap(err, "editing deferred response")
}

func interactionData(r commands.Reply) *api.InteractionResponseData {
	data := &api.InteractionResponseData{}
	if r.Content != "" {
		data.Content = option.NewNullableString(r.Content)
	}
	if len(r.Embeds) > 0 {
		embeds := r.Embeds
		data.Embeds = &embeds
	}
	if r.Ephemeral {
		data.Flags = discord.EphemeralMessage
	}
	return data
}

func editData(r commands.Reply) api.EditInteractionResponseData {
	data := api.EditInteractionResponseData{}
	if r.Content != "" {
		data.Content = option.NewNullableString(r.Content)
	}
	if len(r.Embeds) > 0 {
		embeds := r.Embeds
		data.Embeds = &embeds
	}
	return data
}
