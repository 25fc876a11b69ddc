package commands

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"emperror.dev/errors"
	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/utils/json/option"
	"github.com/starshine-sys/keeper/common"
)

// OptionType is the type of a command option.
type OptionType string

// Supported option types
const (
	OptionInteger OptionType = "integer"
	OptionString  OptionType = "string"
	OptionBoolean OptionType = "boolean"
)

// Discord's limits on command metadata
const (
	MaxDescriptionLength = 100
	MaxOptions           = 25
)

var nameRegex = regexp.MustCompile(`^[-_a-z0-9]{1,32}$`)

// Schema describes a command: its name, description, and options.
// It is read from a definition file.
type Schema struct {
	Name        string `toml:"name"`
	Description string `toml:"description"`

	// Usage is shown in help for the prefix version of the command.
	Usage string `toml:"usage"`
	// Aliases are extra names for the prefix version of the command.
	Aliases []string `toml:"aliases"`
	// GuildOnly commands can't be used in DMs.
	GuildOnly bool `toml:"guild_only"`
	// Permissions are the permission keys a member needs to use the command, see common.AllPerms.
	Permissions []string `toml:"permissions"`

	Options []Parameter `toml:"options"`
}

// Parameter is a single command option.
type Parameter struct {
	Name        string     `toml:"name"`
	Description string     `toml:"description"`
	Type        OptionType `toml:"type"`
	Required    bool       `toml:"required"`

	// Min and Max bound integer options.
	Min *int64 `toml:"min"`
	Max *int64 `toml:"max"`

	// Default is used when an optional option is omitted.
	Default any `toml:"default"`
}

// Validate checks the schema for anything Discord (or the loader) would reject.
// All problems are returned, combined into one error.
func (s *Schema) Validate() error {
	var errs []error

	if !nameRegex.MatchString(s.Name) {
		errs = append(errs, errors.Errorf("invalid command name %q", s.Name))
	}
	if err := validateDescription(s.Description); err != nil {
		errs = append(errs, errors.Wrapf(err, "command %q", s.Name))
	}
	for _, alias := range s.Aliases {
		if !nameRegex.MatchString(alias) {
			errs = append(errs, errors.Errorf("invalid alias %q", alias))
		}
	}
	if _, err := s.RequiredPermissions(); err != nil {
		errs = append(errs, err)
	}

	if len(s.Options) > MaxOptions {
		errs = append(errs, errors.Errorf("too many options (%v > %v)", len(s.Options), MaxOptions))
	}

	names := make(map[string]struct{}, len(s.Options))
	optional := false
	for i := range s.Options {
		p := &s.Options[i]

		if _, ok := names[p.Name]; ok {
			errs = append(errs, errors.Errorf("duplicate option %q", p.Name))
		}
		names[p.Name] = struct{}{}

		if p.Required && optional {
			errs = append(errs, errors.Errorf("required option %q follows an optional option", p.Name))
		}
		if !p.Required {
			optional = true
		}

		if err := p.validate(); err != nil {
			errs = append(errs, errors.Wrapf(err, "option %q", p.Name))
		}
	}

	return errors.Combine(errs...)
}

func validateDescription(desc string) error {
	n := utf8.RuneCountInString(desc)
	if n == 0 {
		return errors.New("description is empty")
	}
	if n > MaxDescriptionLength {
		return errors.Errorf("description is too long (%v > %v)", n, MaxDescriptionLength)
	}
	return nil
}

func (p *Parameter) validate() error {
	var errs []error

	if !nameRegex.MatchString(p.Name) {
		errs = append(errs, errors.New("invalid name"))
	}
	if err := validateDescription(p.Description); err != nil {
		errs = append(errs, err)
	}

	switch p.Type {
	case OptionInteger:
		if p.Min != nil && p.Max != nil && *p.Min > *p.Max {
			errs = append(errs, errors.Errorf("min %v is greater than max %v", *p.Min, *p.Max))
		}
	case OptionString, OptionBoolean:
		if p.Min != nil || p.Max != nil {
			errs = append(errs, errors.Errorf("bounds are only allowed on %v options", OptionInteger))
		}
	default:
		errs = append(errs, errors.Errorf("unknown type %q", p.Type))
	}

	if p.Default != nil {
		if p.Required {
			errs = append(errs, errors.New("required options can't have a default"))
		} else if _, err := p.normalize(fmt.Sprint(p.Default)); err != nil {
			errs = append(errs, errors.Wrap(err, "invalid default"))
		}
	}

	return errors.Combine(errs...)
}

// RequiredPermissions parses the schema's permission keys.
func (s *Schema) RequiredPermissions() (discord.Permissions, error) {
	var perms discord.Permissions
	for _, key := range s.Permissions {
		p, ok := common.ParsePermission(key)
		if !ok {
			return 0, errors.Errorf("unknown permission %q", key)
		}
		perms |= p
	}
	return perms, nil
}

// UsageString returns how to use the prefix version of the command.
func (s *Schema) UsageString() string {
	if s.Usage != "" {
		return s.Name + " " + s.Usage
	}

	var b strings.Builder
	b.WriteString(s.Name)
	for _, p := range s.Options {
		if p.Required {
			fmt.Fprintf(&b, " <%v>", p.Name)
		} else {
			fmt.Fprintf(&b, " [%v]", p.Name)
		}
	}
	return b.String()
}

// CommandData converts the schema to the data Discord expects when registering commands.
// The schema must be valid.
func (s *Schema) CommandData() api.CreateCommandData {
	data := api.CreateCommandData{
		Name:           s.Name,
		Description:    s.Description,
		NoDMPermission: s.GuildOnly,
	}

	if perms, _ := s.RequiredPermissions(); perms != 0 {
		data.DefaultMemberPermissions = discord.NewPermissions(perms)
	}

	for _, p := range s.Options {
		data.Options = append(data.Options, p.commandOption())
	}
	return data
}

func (p Parameter) commandOption() discord.CommandOption {
	switch p.Type {
	case OptionInteger:
		o := &discord.IntegerOption{
			OptionName:  p.Name,
			Description: p.Description,
			Required:    p.Required,
		}
		if p.Min != nil {
			o.Min = option.NewInt(int(*p.Min))
		}
		if p.Max != nil {
			o.Max = option.NewInt(int(*p.Max))
		}
		return o
	case OptionBoolean:
		return &discord.BooleanOption{
			OptionName:  p.Name,
			Description: p.Description,
			Required:    p.Required,
		}
	default:
		return &discord.StringOption{
			OptionName:  p.Name,
			Description: p.Description,
			Required:    p.Required,
		}
	}
}

// normalize checks a raw value against the parameter's type and bounds,
// and returns it in canonical form.
func (p *Parameter) normalize(v string) (string, error) {
	switch p.Type {
	case OptionInteger:
		i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return "", Errorf("`%v` must be a whole number%v.", p.Name, p.boundsString())
		}
		if (p.Min != nil && i < *p.Min) || (p.Max != nil && i > *p.Max) {
			return "", Errorf("`%v` must be%v.", p.Name, p.boundsString())
		}
		return strconv.FormatInt(i, 10), nil
	case OptionBoolean:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return "", Errorf("`%v` must be true or false.", p.Name)
		}
		return strconv.FormatBool(b), nil
	default:
		return v, nil
	}
}

func (p *Parameter) boundsString() string {
	switch {
	case p.Min != nil && p.Max != nil:
		return fmt.Sprintf(" between %v and %v", *p.Min, *p.Max)
	case p.Min != nil:
		return fmt.Sprintf(" at least %v", *p.Min)
	case p.Max != nil:
		return fmt.Sprintf(" at most %v", *p.Max)
	}
	return ""
}
