package info

import (
	"context"
	"fmt"
	"strings"

	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/starshine-sys/keeper/commands"
	"github.com/starshine-sys/keeper/common"
)

// Help lists loaded commands. Commands is called on every invocation,
// as the set is only known after the handlers are registered.
type Help struct {
	Commands func() *commands.Set
	// Prefix is shown in front of prefix command usage.
	Prefix string
}

func (h *Help) Interactive(_ context.Context, req *commands.Request) (commands.Reply, error) {
	return h.help(req)
}

func (h *Help) Legacy(_ context.Context, req *commands.Request, _ []string) (commands.Reply, error) {
	return h.help(req)
}

func (h *Help) help(req *commands.Request) (commands.Reply, error) {
	set := h.Commands()
	if set == nil {
		return commands.Reply{}, commands.Errorf("No commands are loaded.")
	}

	if name := strings.ToLower(req.Options.String("command")); name != "" {
		m, ok := set.Find(name)
		if !ok {
			return commands.Reply{}, commands.Errorf("There's no command called `%v`.", name)
		}
		return commands.EmbedReply(h.commandEmbed(m)), nil
	}

	var (
		order  []string
		groups = map[string][]string{}
	)
	for _, m := range set.Modules {
		if _, ok := groups[m.Category]; !ok {
			order = append(order, m.Category)
		}
		groups[m.Category] = append(groups[m.Category], fmt.Sprintf("`%v`: %v", m.Name(), m.Schema.Description))
	}

	e := discord.Embed{
		Title:       "Commands",
		Description: fmt.Sprintf("Use `/help <command>` or `%vhelp <command>` for more information about a command.", h.Prefix),
		Color:       common.ColourPurple,
	}
	for _, cat := range order {
		e.Fields = append(e.Fields, discord.EmbedField{
			Name:  categoryName(cat),
			Value: strings.Join(groups[cat], "\n"),
		})
	}

	return commands.EmbedReply(e), nil
}

func (h *Help) commandEmbed(m *commands.Module) discord.Embed {
	e := discord.Embed{
		Title:       "/" + m.Name(),
		Description: m.Schema.Description,
		Color:       common.ColourPurple,
		Fields: []discord.EmbedField{
			{Name: "Usage", Value: fmt.Sprintf("`%v%v`", h.Prefix, m.Schema.UsageString())},
		},
	}

	if len(m.Schema.Aliases) > 0 {
		e.Fields = append(e.Fields, discord.EmbedField{Name: "Aliases", Value: strings.Join(m.Schema.Aliases, ", ")})
	}

	if len(m.Schema.Options) > 0 {
		var b strings.Builder
		for _, p := range m.Schema.Options {
			fmt.Fprintf(&b, "`%v` (%v", p.Name, p.Type)
			if p.Required {
				b.WriteString(", required")
			}
			b.WriteString("): " + p.Description + "\n")
		}
		e.Fields = append(e.Fields, discord.EmbedField{Name: "Options", Value: b.String()})
	}

	if perms, _ := m.Schema.RequiredPermissions(); perms != 0 {
		e.Fields = append(e.Fields, discord.EmbedField{
			Name:  "Required permissions",
			Value: strings.Join(common.PermStrings(perms), ", "),
		})
	}

	return e
}

func categoryName(cat string) string {
	if cat == "" {
		return "Other"
	}
	return strings.ToUpper(cat[:1]) + cat[1:]
}
