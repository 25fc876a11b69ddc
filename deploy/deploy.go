// Package deploy registers command definitions with Discord.
package deploy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"emperror.dev/errors"
	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/utils/httputil"
	"github.com/starshine-sys/keeper/commands"
	"github.com/starshine-sys/keeper/common/log"
)

// ErrEmpty is returned when there is nothing to register and empty registrations aren't allowed.
const ErrEmpty = errors.Sentinel("no commands to register")

// Registrar replaces an application's registered commands. *api.Client implements it.
type Registrar interface {
	BulkOverwriteCommands(appID discord.AppID, cmds []api.CreateCommandData) ([]discord.Command, error)
	BulkOverwriteGuildCommands(appID discord.AppID, guildID discord.GuildID, cmds []api.CreateCommandData) ([]discord.Command, error)
}

// Target is where commands are registered. A zero GuildID means globally.
type Target struct {
	AppID   discord.AppID
	GuildID discord.GuildID
}

func (t Target) String() string {
	if t.GuildID.IsValid() {
		return fmt.Sprintf("guild %v", t.GuildID)
	}
	return "global"
}

// Options change how Deploy behaves.
type Options struct {
	// AllowEmpty allows registering an empty set, which removes every command at the target.
	AllowEmpty bool
}

// Result is what Discord registered.
type Result struct {
	Target   Target
	Commands []discord.Command
}

// RateLimitError means Discord rejected the registration because of a rate limit.
// It is not retried; try again after RetryAfter.
type RateLimitError struct {
	RetryAfter time.Duration
	Err        error
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited by Discord, try again in %v", e.RetryAfter)
	}
	return "rate limited by Discord, try again later"
}

func (e *RateLimitError) Unwrap() error { return e.Err }

// SubmissionError is any other failed registration.
type SubmissionError struct {
	Target Target
	Err    error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("registering commands (%v): %v", e.Target, e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// CommandData converts modules to the data Discord expects, in order.
func CommandData(mods []*commands.Module) []api.CreateCommandData {
	data := make([]api.CreateCommandData, 0, len(mods))
	for _, m := range mods {
		data = append(data, m.Schema.CommandData())
	}
	return data
}

// Deploy replaces every command registered at target with mods, in a single request.
// Nothing is retried: a failed request leaves the previous registration in place.
func Deploy(ctx context.Context, r Registrar, target Target, mods []*commands.Module, opts Options) (*Result, error) {
	if !target.AppID.IsValid() {
		return nil, errors.New("application ID is not set")
	}
	if len(mods) == 0 && !opts.AllowEmpty {
		return nil, ErrEmpty
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data := CommandData(mods)
	log.Infof("Registering %v command(s) (%v)", len(data), target)

	var (
		cmds []discord.Command
		err  error
	)
	if target.GuildID.IsValid() {
		cmds, err = r.BulkOverwriteGuildCommands(target.AppID, target.GuildID, data)
	} else {
		cmds, err = r.BulkOverwriteCommands(target.AppID, data)
	}
	if err != nil {
		return nil, classify(target, err)
	}

	log.Infof("Registered %v command(s) (%v)", len(cmds), target)
	return &Result{Target: target, Commands: cmds}, nil
}

func classify(target Target, err error) error {
	var httpErr *httputil.HTTPError
	if errors.As(err, &httpErr) && httpErr.Status == http.StatusTooManyRequests {
		return &RateLimitError{RetryAfter: retryAfter(httpErr.Body), Err: err}
	}
	return &SubmissionError{Target: target, Err: err}
}

// retryAfter reads the retry_after field (in seconds) of a rate limit response body.
func retryAfter(body []byte) time.Duration {
	var v struct {
		RetryAfter float64 `json:"retry_after"`
	}
	if err := json.Unmarshal(body, &v); err != nil || v.RetryAfter <= 0 {
		return 0
	}
	return time.Duration(v.RetryAfter * float64(time.Second))
}
