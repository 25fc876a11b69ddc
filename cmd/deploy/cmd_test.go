package deploy

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"emperror.dev/errors"
	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/utils/httputil"
	"github.com/starshine-sys/keeper/config"
	"github.com/starshine-sys/keeper/deploy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registration struct {
	guildID discord.GuildID
	names   []string
}

type fakeRegistrar struct {
	calls []registration
	err   error
}

func (f *fakeRegistrar) register(guildID discord.GuildID, data []api.CreateCommandData) ([]discord.Command, error) {
	r := registration{guildID: guildID}
	cmds := make([]discord.Command, 0, len(data))
	for _, d := range data {
		r.names = append(r.names, d.Name)
		cmds = append(cmds, discord.Command{Name: d.Name})
	}
	f.calls = append(f.calls, r)
	if f.err != nil {
		return nil, f.err
	}
	return cmds, nil
}

func (f *fakeRegistrar) BulkOverwriteCommands(_ discord.AppID, data []api.CreateCommandData) ([]discord.Command, error) {
	return f.register(0, data)
}

func (f *fakeRegistrar) BulkOverwriteGuildCommands(_ discord.AppID, guildID discord.GuildID, data []api.CreateCommandData) ([]discord.Command, error) {
	return f.register(guildID, data)
}

// useRegistrar makes deployCommands talk to r instead of Discord.
func useRegistrar(t *testing.T, r *fakeRegistrar) {
	t.Helper()

	orig := newRegistrar
	newRegistrar = func(context.Context, string) deploy.Registrar { return r }
	t.Cleanup(func() { newRegistrar = orig })
}

func validConfig() config.Config {
	c := config.Default()
	c.Auth.Discord = "token"
	c.Bot.AppID = 1
	c.Bot.CommandsGuildID = 2
	return c
}

func writeDefs(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func TestDeployGlobal(t *testing.T) {
	r := &fakeRegistrar{}
	useRegistrar(t, r)

	var out bytes.Buffer
	err := deployCommands(context.Background(), &out, validConfig(), params{Root: "."})
	require.NoError(t, err)

	require.Len(t, r.calls, 1)
	assert.False(t, r.calls[0].guildID.IsValid())
	assert.Equal(t, []string{"lock", "unlock", "roll", "help", "serverinfo"}, r.calls[0].names)
	assert.Contains(t, out.String(), "Wrote 5 global command(s)!")
}

func TestDeployAdmin(t *testing.T) {
	r := &fakeRegistrar{}
	useRegistrar(t, r)

	conf := validConfig()

	var out bytes.Buffer
	err := deployCommands(context.Background(), &out, conf, params{Root: conf.Bot.AdminCategory, GuildID: conf.CommandsGuildID(), RequireGuild: true})
	require.NoError(t, err)

	require.Len(t, r.calls, 1)
	assert.Equal(t, registration{guildID: 2, names: []string{"lock", "unlock"}}, r.calls[0])
	assert.Contains(t, out.String(), "Wrote 2 command(s) in guild 2!")
}

func TestDeployMissingConfig(t *testing.T) {
	tests := []struct {
		name         string
		edit         func(*config.Config)
		requireGuild bool
	}{
		{"no token", func(c *config.Config) { c.Auth.Discord = "" }, false},
		{"no app ID", func(c *config.Config) { c.Bot.AppID = 0 }, false},
		{"no guild", func(c *config.Config) { c.Bot.CommandsGuildID = 0 }, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			r := &fakeRegistrar{}
			useRegistrar(t, r)

			conf := validConfig()
			test.edit(&conf)

			var out bytes.Buffer
			err := deployCommands(context.Background(), &out, conf, params{Root: ".", RequireGuild: test.requireGuild, GuildID: conf.CommandsGuildID()})

			var cerr *config.Error
			require.True(t, errors.As(err, &cerr))
			assert.Empty(t, r.calls)
			assert.Contains(t, out.String(), "Configuration error:")
		})
	}
}

func TestDeployDryRun(t *testing.T) {
	r := &fakeRegistrar{}
	useRegistrar(t, r)

	var out bytes.Buffer
	err := deployCommands(context.Background(), &out, validConfig(), params{Root: "fun", DryRun: true})
	require.NoError(t, err)

	assert.Empty(t, r.calls)
	assert.Contains(t, out.String(), "Would register 1 command(s) (global)")
	assert.Contains(t, out.String(), `"name": "roll"`)
}

func TestDeployReportsSkippedFiles(t *testing.T) {
	r := &fakeRegistrar{}
	useRegistrar(t, r)

	conf := validConfig()
	conf.Bot.CommandsDir = writeDefs(t, map[string]string{
		"a/roll.toml":    "name = \"roll\"\ndescription = \"Roll a die\"\n",
		"b/roll.toml":    "name = \"roll\"\ndescription = \"Another one\"\n",
		"b/broken.toml":  "name = ",
		"b/nothing.toml": "name = \"nothing\"\ndescription = \"Has no handler\"\n",
	})

	var out bytes.Buffer
	err := deployCommands(context.Background(), &out, conf, params{Root: "."})
	require.NoError(t, err)

	require.Len(t, r.calls, 1)
	assert.Equal(t, []string{"roll"}, r.calls[0].names)
	assert.Contains(t, out.String(), "Skipped (duplicate): roll in b/roll.toml, already loaded from a/roll.toml")
	assert.Contains(t, out.String(), "Skipped (error): b/broken.toml")
	assert.Contains(t, out.String(), "Skipped (error): b/nothing.toml")
}

func TestDeployEmptyDirectory(t *testing.T) {
	r := &fakeRegistrar{}
	useRegistrar(t, r)

	conf := validConfig()
	conf.Bot.CommandsDir = writeDefs(t, map[string]string{"README.md": "nothing here"})

	var out bytes.Buffer
	err := deployCommands(context.Background(), &out, conf, params{Root: "."})
	assert.ErrorIs(t, err, deploy.ErrEmpty)
	assert.Empty(t, r.calls)
}

func TestDeployRateLimited(t *testing.T) {
	r := &fakeRegistrar{err: &httputil.HTTPError{Status: 429, Body: []byte(`{"retry_after": 3}`)}}
	useRegistrar(t, r)

	var out bytes.Buffer
	err := deployCommands(context.Background(), &out, validConfig(), params{Root: "."})

	var rlErr *deploy.RateLimitError
	require.ErrorAs(t, err, &rlErr)
	assert.Len(t, r.calls, 1)
	assert.Contains(t, out.String(), "Wait before trying again")
	assert.NotContains(t, out.String(), "Wrote")
}

func TestDeployOtherError(t *testing.T) {
	r := &fakeRegistrar{err: &httputil.HTTPError{Status: 401, Message: "401: Unauthorized"}}
	useRegistrar(t, r)

	var out bytes.Buffer
	err := deployCommands(context.Background(), &out, validConfig(), params{Root: "."})

	var sErr *deploy.SubmissionError
	require.ErrorAs(t, err, &sErr)
	assert.Len(t, r.calls, 1)
	assert.Contains(t, out.String(), "Error overwriting commands:")
}
