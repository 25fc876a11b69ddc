package bot

import (
	"context"
	"testing"

	"emperror.dev/errors"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/starshine-sys/keeper/commands"
	"github.com/starshine-sys/keeper/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// funcHandler runs fn for both entry points.
type funcHandler struct {
	fn func(req *commands.Request, args []string, legacy bool) (commands.Reply, error)
}

func (h funcHandler) Interactive(_ context.Context, req *commands.Request) (commands.Reply, error) {
	return h.fn(req, nil, false)
}

func (h funcHandler) Legacy(_ context.Context, req *commands.Request, args []string) (commands.Reply, error) {
	return h.fn(req, args, true)
}

func testBot() *Bot {
	return &Bot{Config: config.Default()}
}

func module(schema commands.Schema, fn func(*commands.Request, []string, bool) (commands.Reply, error)) *commands.Module {
	return &commands.Module{Schema: schema, Handler: funcHandler{fn}}
}

func rollSchema() commands.Schema {
	lo, hi := int64(2), int64(100)
	return commands.Schema{
		Name:        "roll",
		Description: "Roll a die",
		Options: []commands.Parameter{
			{Name: "faces", Description: "Faces", Type: commands.OptionInteger, Min: &lo, Max: &hi, Default: int64(6)},
		},
	}
}

func TestExecuteSuccess(t *testing.T) {
	var got commands.Options
	m := module(rollSchema(), func(req *commands.Request, _ []string, legacy bool) (commands.Reply, error) {
		got = req.Options
		return commands.Replyf("rolled %v", req.Options.Int("faces")), nil
	})

	reply := testBot().execute(&invocation{module: m, req: &commands.Request{}, legacy: true, args: []string{"20"}})
	assert.Equal(t, "rolled 20", reply.Content)
	assert.False(t, reply.Ephemeral)
	assert.Equal(t, commands.Options{"faces": "20"}, got)
}

func TestExecuteEmptyReply(t *testing.T) {
	m := module(commands.Schema{Name: "noop", Description: "x"}, func(*commands.Request, []string, bool) (commands.Reply, error) {
		return commands.Reply{}, nil
	})

	reply := testBot().execute(&invocation{module: m, req: &commands.Request{}})
	assert.Equal(t, "Done!", reply.Content)
}

func TestExecuteUserError(t *testing.T) {
	called := false
	m := module(rollSchema(), func(*commands.Request, []string, bool) (commands.Reply, error) {
		called = true
		return commands.Reply{}, nil
	})

	reply := testBot().execute(&invocation{module: m, req: &commands.Request{}, legacy: true, args: []string{"1"}})
	assert.False(t, called, "invalid arguments shouldn't reach the handler")
	assert.True(t, reply.Ephemeral)
	assert.Contains(t, reply.Content, "between 2 and 100")
	assert.Empty(t, reply.Embeds)
}

func TestExecuteInternalError(t *testing.T) {
	m := module(commands.Schema{Name: "fail", Description: "x"}, func(*commands.Request, []string, bool) (commands.Reply, error) {
		return commands.Reply{}, errors.New("database exploded")
	})

	b := testBot()
	b.Config.Bot.SupportServer = "https://discord.gg/example"

	reply := b.execute(&invocation{module: m, req: &commands.Request{}})
	require.Len(t, reply.Embeds, 1)
	assert.True(t, reply.Ephemeral)
	assert.Equal(t, "Internal error occurred", reply.Embeds[0].Title)
	assert.Contains(t, reply.Embeds[0].Description, "support server")
	assert.NotContains(t, reply.Content, "database exploded")
	assert.NotContains(t, reply.Embeds[0].Description, "database exploded")
	require.NotNil(t, reply.Embeds[0].Footer)
	assert.Contains(t, reply.Content, reply.Embeds[0].Footer.Text)
}

func TestExecutePanic(t *testing.T) {
	m := module(commands.Schema{Name: "panic", Description: "x"}, func(*commands.Request, []string, bool) (commands.Reply, error) {
		panic("oh no")
	})

	var reply commands.Reply
	require.NotPanics(t, func() {
		reply = testBot().execute(&invocation{module: m, req: &commands.Request{}})
	})
	require.Len(t, reply.Embeds, 1)
	assert.Equal(t, "Internal error occurred", reply.Embeds[0].Title)
}

func TestExecuteGuildOnly(t *testing.T) {
	m := module(commands.Schema{Name: "lock", Description: "x", GuildOnly: true}, func(*commands.Request, []string, bool) (commands.Reply, error) {
		t.Fatal("handler shouldn't run outside a guild")
		return commands.Reply{}, nil
	})

	reply := testBot().execute(&invocation{module: m, req: &commands.Request{ChannelID: 1}})
	assert.Equal(t, "This command can only be used in a server.", reply.Content)
	assert.True(t, reply.Ephemeral)
}

func TestExecutePermissions(t *testing.T) {
	schema := commands.Schema{Name: "lock", Description: "x", GuildOnly: true, Permissions: []string{"manage_channels"}}

	tests := []struct {
		name    string
		perms   discord.Permissions
		allowed bool
	}{
		{"missing", discord.PermissionSendMessages, false},
		{"has permission", discord.PermissionSendMessages | discord.PermissionManageChannels, true},
		{"administrator", discord.PermissionAdministrator, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			called := false
			m := module(schema, func(*commands.Request, []string, bool) (commands.Reply, error) {
				called = true
				return commands.Replyf("locked"), nil
			})

			reply := testBot().execute(&invocation{
				module: m,
				req:    &commands.Request{GuildID: 1, ChannelID: 2},
				legacy: true,
				perms:  func() (discord.Permissions, error) { return test.perms, nil },
			})

			assert.Equal(t, test.allowed, called)
			if !test.allowed {
				assert.Contains(t, reply.Content, "Manage Channels")
				assert.True(t, reply.Ephemeral)
			}
		})
	}
}

func TestInteractionData(t *testing.T) {
	data := interactionData(commands.Reply{Content: "hi", Ephemeral: true})
	assert.Equal(t, "hi", data.Content.Val)
	assert.Equal(t, discord.EphemeralMessage, data.Flags)
	assert.Nil(t, data.Embeds)

	data = interactionData(commands.EmbedReply(discord.Embed{Title: "x"}))
	assert.Nil(t, data.Content)
	require.NotNil(t, data.Embeds)
	assert.Len(t, *data.Embeds, 1)
	assert.Zero(t, data.Flags)
}
