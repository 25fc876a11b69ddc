package commands

import (
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/spf13/pflag"
)

// Options are resolved option values, keyed by option name.
// Values have been checked against the schema, so the typed getters don't fail.
type Options map[string]string

// Has returns true if the option was given or has a default.
func (o Options) Has(name string) bool {
	_, ok := o[name]
	return ok
}

// String returns a string option, or "" if it isn't set.
func (o Options) String(name string) string {
	return o[name]
}

// Int returns an integer option, or 0 if it isn't set.
func (o Options) Int(name string) int64 {
	i, _ := strconv.ParseInt(o[name], 10, 64)
	return i
}

// Bool returns a boolean option, or false if it isn't set.
func (o Options) Bool(name string) bool {
	b, _ := strconv.ParseBool(o[name])
	return b
}

// Resolve checks raw values against the schema, filling in defaults.
// Problems with the input are returned as a *UserError. Values for unknown options are dropped.
func (s *Schema) Resolve(raw map[string]string) (Options, error) {
	opts := make(Options, len(s.Options))

	for i := range s.Options {
		p := &s.Options[i]

		v, ok := raw[p.Name]
		if !ok || v == "" {
			switch {
			case p.Default != nil:
				v = defaultString(p.Default)
			case p.Required:
				return nil, Errorf("Missing required option `%v`.\nUsage: `%v`", p.Name, s.UsageString())
			default:
				continue
			}
		}

		norm, err := p.normalize(v)
		if err != nil {
			return nil, err
		}
		opts[p.Name] = norm
	}

	return opts, nil
}

func defaultString(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		b, _ := json.Marshal(v)
		return string(b)
	}
}

// ParseArgs resolves a prefix command's arguments. Options can be given positionally, in
// schema order, or as flags (`--faces 20`, `--faces=20`).
func (s *Schema) ParseArgs(args []string) (Options, error) {
	fs := pflag.NewFlagSet(s.Name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)

	for _, p := range s.Options {
		if p.Type == OptionBoolean {
			fs.Bool(p.Name, false, p.Description)
		} else {
			fs.String(p.Name, "", p.Description)
		}
	}

	flagArgs, positional := splitArgs(fs, args)
	if err := fs.Parse(flagArgs); err != nil {
		return nil, Errorf("%v\nUsage: `%v`", err, s.UsageString())
	}

	raw := make(map[string]string, len(s.Options))
	fs.Visit(func(f *pflag.Flag) {
		raw[f.Name] = f.Value.String()
	})

	for _, p := range s.Options {
		if _, ok := raw[p.Name]; ok {
			continue
		}
		if len(positional) == 0 {
			break
		}
		raw[p.Name] = positional[0]
		positional = positional[1:]
	}

	return s.Resolve(raw)
}

// splitArgs separates flags (and their values) from positional arguments.
// Negative numbers are positional, so `roll -5` reaches the range check instead of failing as an unknown flag.
func splitArgs(fs *pflag.FlagSet, args []string) (flagArgs, positional []string) {
	for i := 0; i < len(args); i++ {
		a := args[i]

		if a == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if !strings.HasPrefix(a, "-") || a == "-" || isNumber(a) {
			positional = append(positional, a)
			continue
		}

		flagArgs = append(flagArgs, a)
		if strings.Contains(a, "=") {
			continue
		}

		f := fs.Lookup(strings.TrimLeft(a, "-"))
		if f != nil && f.Value.Type() != "bool" && i+1 < len(args) {
			flagArgs = append(flagArgs, args[i+1])
			i++
		}
	}
	return flagArgs, positional
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// InteractionOptions converts a slash command's options to raw values for Resolve.
func InteractionOptions(opts []discord.CommandInteractionOption) map[string]string {
	raw := make(map[string]string, len(opts))
	for _, o := range opts {
		raw[o.Name] = rawValue(o.Value)
	}
	return raw
}

func rawValue(b []byte) string {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(b))
}
