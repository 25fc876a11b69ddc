package commands

import (
	"io/fs"
	"path"
	"strings"

	"emperror.dev/errors"
	"github.com/BurntSushi/toml"
	"github.com/starshine-sys/keeper/common/log"
)

// Ext is the file extension of command definition files.
const Ext = ".toml"

// LoadError is a definition file that couldn't be loaded.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string { return e.Path + ": " + e.Err.Error() }
func (e *LoadError) Unwrap() error { return e.Err }

// Duplicate is a definition file skipped because its command name was already loaded.
type Duplicate struct {
	Name      string
	Path      string
	FirstPath string
}

// Set is the result of a Load: the accepted modules in discovery order,
// plus whatever went wrong along the way.
type Set struct {
	Modules    []*Module
	Errors     []*LoadError
	Duplicates []Duplicate

	byName  map[string]*Module
	aliases map[string]*Module
}

func newSet() *Set {
	return &Set{
		byName:  make(map[string]*Module),
		aliases: make(map[string]*Module),
	}
}

// Get returns the module with the given name.
func (s *Set) Get(name string) (*Module, bool) {
	m, ok := s.byName[name]
	return m, ok
}

// Find returns the module with the given name or alias.
func (s *Set) Find(name string) (*Module, bool) {
	if m, ok := s.byName[name]; ok {
		return m, true
	}
	m, ok := s.aliases[name]
	return m, ok
}

// Len returns the number of loaded modules.
func (s *Set) Len() int { return len(s.Modules) }

// Err returns all load errors combined, or nil.
func (s *Set) Err() error {
	errs := make([]error, 0, len(s.Errors))
	for _, e := range s.Errors {
		errs = append(errs, e)
	}
	return errors.Combine(errs...)
}

// add accepts m unless its name was already seen. It returns false for duplicates.
func (s *Set) add(m *Module) bool {
	if first, ok := s.byName[m.Name()]; ok {
		s.Duplicates = append(s.Duplicates, Duplicate{Name: m.Name(), Path: m.Path, FirstPath: first.Path})
		return false
	}

	s.byName[m.Name()] = m
	s.Modules = append(s.Modules, m)
	return true
}

// indexAliases runs after the walk, so that aliases never shadow a command name no matter the file order.
func (s *Set) indexAliases() {
	for _, m := range s.Modules {
		for _, alias := range m.Schema.Aliases {
			if _, ok := s.byName[alias]; ok {
				log.Warnf("Alias %q of command %q shadows a command name, ignoring it", alias, m.Name())
				continue
			}
			if other, ok := s.aliases[alias]; ok {
				log.Warnf("Alias %q of command %q is already used by %q, ignoring it", alias, m.Name(), other.Name())
				continue
			}
			s.aliases[alias] = m
		}
	}
}

// Load walks fsys depth-first from root and loads every definition file it finds.
//
// A file that fails to load is recorded in the returned Set's Errors and doesn't stop the walk.
// If two files define the same command, the first one found wins and the second is recorded in Duplicates.
// If reg is not nil, every definition must have a handler registered under its name.
// If reg is nil, modules are loaded with a nil Handler, which is enough to register them with Discord.
//
// The returned error is only non-nil if root itself can't be read.
func Load(fsys fs.FS, root string, reg *Registry) (*Set, error) {
	if _, err := fs.ReadDir(fsys, root); err != nil {
		return nil, errors.Wrapf(err, "reading commands directory %q", root)
	}

	set := walk(fsys, root, reg, newSet())
	set.indexAliases()

	log.Infof("Loaded %v command(s) from %q (%v error(s), %v duplicate(s))",
		len(set.Modules), root, len(set.Errors), len(set.Duplicates))
	return set, nil
}

func walk(fsys fs.FS, dir string, reg *Registry, set *Set) *Set {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		log.Errorf("Error reading directory %q: %v", dir, err)
		set.Errors = append(set.Errors, &LoadError{Path: dir, Err: err})
		return set
	}

	for _, e := range entries {
		p := path.Join(dir, e.Name())

		if e.IsDir() {
			set = walk(fsys, p, reg, set)
			continue
		}
		if !strings.HasSuffix(e.Name(), Ext) {
			continue
		}

		m, err := loadFile(fsys, p, reg)
		if err != nil {
			log.Errorf("Error loading command from %q: %v", p, err)
			set.Errors = append(set.Errors, &LoadError{Path: p, Err: err})
			continue
		}

		if !set.add(m) {
			log.Warnf("Command %q in %q was already loaded from %q, skipping it", m.Name(), p, set.byName[m.Name()].Path)
			continue
		}
		log.Infof("Loaded command %q from %q", m.Name(), p)
	}
	return set
}

func loadFile(fsys fs.FS, p string, reg *Registry) (*Module, error) {
	b, err := fs.ReadFile(fsys, p)
	if err != nil {
		return nil, errors.Wrap(err, "reading file")
	}

	var s Schema
	md, err := toml.Decode(string(b), &s)
	if err != nil {
		return nil, errors.Wrap(err, "decoding definition")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, errors.Errorf("unknown keys: %v", strings.Join(keys, ", "))
	}

	if err := s.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid definition")
	}

	m := &Module{
		Schema:   s,
		Path:     p,
		Category: category(p),
	}

	if reg != nil {
		h, ok := reg.Handler(s.Name)
		if !ok {
			return nil, errors.Errorf("no handler registered for command %q", s.Name)
		}
		m.Handler = h
	}
	return m, nil
}

func category(p string) string {
	dir, _ := path.Split(path.Clean(p))
	if dir == "" {
		return ""
	}
	return strings.SplitN(dir, "/", 2)[0]
}
