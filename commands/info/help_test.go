package info

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/starshine-sys/keeper/commands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func helpSet(t *testing.T) *commands.Set {
	t.Helper()

	fsys := fstest.MapFS{
		"admin/lock.toml": {Data: []byte(`name = "lock"
description = "Lock the channel"
guild_only = true
permissions = ["manage_channels"]
`)},
		"fun/roll.toml": {Data: []byte(`name = "roll"
description = "Roll a die"
aliases = ["dice"]

[[options]]
name = "faces"
description = "How many faces the die has"
type = "integer"
`)},
		"ping.toml": {Data: []byte("name = \"ping\"\ndescription = \"Pong\"\n")},
	}

	set, err := commands.Load(fsys, ".", nil)
	require.NoError(t, err)
	return set
}

func TestHelpList(t *testing.T) {
	set := helpSet(t)
	h := &Help{Commands: func() *commands.Set { return set }, Prefix: "!"}

	reply, err := h.Interactive(context.Background(), &commands.Request{})
	require.NoError(t, err)
	require.Len(t, reply.Embeds, 1)

	e := reply.Embeds[0]
	require.Len(t, e.Fields, 3)
	assert.Equal(t, "Admin", e.Fields[0].Name)
	assert.Equal(t, "Fun", e.Fields[1].Name)
	assert.Equal(t, "Other", e.Fields[2].Name)
	assert.Equal(t, "`roll`: Roll a die", e.Fields[1].Value)
	assert.Contains(t, e.Description, "`!help <command>`")
}

func TestHelpCommand(t *testing.T) {
	set := helpSet(t)
	h := &Help{Commands: func() *commands.Set { return set }, Prefix: "!"}

	reply, err := h.Legacy(context.Background(), &commands.Request{Options: commands.Options{"command": "DICE"}}, nil)
	require.NoError(t, err)

	e := reply.Embeds[0]
	assert.Equal(t, "/roll", e.Title)
	assert.Equal(t, "`!roll [faces]`", field(t, e, "Usage"))
	assert.Equal(t, "dice", field(t, e, "Aliases"))
	assert.Contains(t, field(t, e, "Options"), "`faces` (integer)")

	reply, err = h.Legacy(context.Background(), &commands.Request{Options: commands.Options{"command": "lock"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Manage Channels", field(t, reply.Embeds[0], "Required permissions"))

	_, err = h.Interactive(context.Background(), &commands.Request{Options: commands.Options{"command": "fly"}})
	var uerr *commands.UserError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, "There's no command called `fly`.", uerr.Message)
}

func TestHelpNotLoaded(t *testing.T) {
	h := &Help{Commands: func() *commands.Set { return nil }}

	_, err := h.Interactive(context.Background(), &commands.Request{})
	var uerr *commands.UserError
	require.ErrorAs(t, err, &uerr)
}
