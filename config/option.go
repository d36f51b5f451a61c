package config

import (
	"flag"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// A Section describes the pre-configured state of a nested configuration
// section.
type Section interface {
	// Name is used as the name of the section.
	Name() string
	// Prototype returns the zero value for the section.
	Prototype() Value
}

// section is a default implementation of a Section.
type section struct {
	name      string
	prototype func() Value
}

func (sec section) Name() string {
	return sec.name
}

func (sec section) Prototype() Value {
	if sec.prototype != nil {
		return sec.prototype()
	}
	return nil
}

// WithGenericSection will add a basic section with the given name and
// options.
func WithGenericSection(name string, options ...SetupOption) SetupOption {
	return WithSection(&section{name: name}, options...)
}

// WithSection will add a Section with the given options.
func WithSection(sec Section, options ...SetupOption) SetupOption {
	return func(s *Setup) error {
		n := sec.Name()
		if _, ok := s.sections[n]; ok {
			return errors.Errorf(`section "%s" already exists`, n)
		}
		opts := make([]SetupOption, len(options))
		copy(opts, options)
		if pr := sec.Prototype(); !isNil(pr) {
			opts = append(opts, WithInitPrototype(sec.Prototype))
		}
		ns := newSetup(n, s)
		if err := ns.apply(opts...); err != nil {
			return err
		}
		s.sections[ns.name] = ns
		return nil
	}
}

// WithInitValue uses the given Value as the starting point for the section.
// Initial values are updated via reflection and kept in sync with changes
// made to the Config.
func WithInitValue(value Value) SetupOption {
	return func(s *Setup) error {
		s.prototype = nil
		s.initial = value
		return nil
	}
}

// WithInitPrototype sets the given func as the prototype.
// The prototype func will be invoked and its return value will be used to
// populate the initial value in the Config.
func WithInitPrototype(proto func() Value) SetupOption {
	return func(s *Setup) error {
		s.initial = nil
		s.prototype = proto
		return nil
	}
}

// WithOption adds an optional option to the Config.
func WithOption(name string) SetupOption {
	return WithOptions(name)
}

// WithOptions adds multiple optional options to the Config.
func WithOptions(names ...string) SetupOption {
	return func(s *Setup) error {
		for _, n := range names {
			s.options[n] = false
		}
		return nil
	}
}

// WithRequiredOption adds a required option to the Config.
func WithRequiredOption(name string) SetupOption {
	return WithRequiredOptions(name)
}

// WithRequiredOptions adds multiple required options to the Config.
func WithRequiredOptions(names ...string) SetupOption {
	return func(s *Setup) error {
		for _, n := range names {
			s.options[n] = true
		}
		return nil
	}
}

// WithInheritedOption will inherit an option from the parent Config.
func WithInheritedOption(name string) SetupOption {
	return func(s *Setup) error {
		if s.parent == nil {
			return errors.Errorf("config: unable to inherit option '%s' for section %s; no parent found", name, s.name)
		}
		s.inherits[name] = struct{}{}
		return nil
	}
}

// WithValuesFromTOMLFile will populate the Config with values parsed from
// a TOML file. A file that does not exist is skipped rather than treated
// as an error.
func WithValuesFromTOMLFile(filename string) SetupOption {
	return func(s *Setup) error {
		return s.addPostSetup(func(s *Setup) error {
			if _, err := os.Stat(filename); os.IsNotExist(err) {
				logrus.Debugf("config: no such file %s, not loading values", filename)
				return nil
			}
			if _, err := toml.DecodeFile(filename, &s.raw); err != nil {
				return errors.Wrapf(err, "config: unable to load values from %s", filename)
			}
			return nil
		})
	}
}

// WithValuesFromMap populates the Config using the given map.
// Keys are resolved the same way flag names are; see mapPath.
func WithValuesFromMap(vs map[string]interface{}) SetupOption {
	return func(s *Setup) error {
		return s.addPostSetup(func(s *Setup) error {
			for f, fv := range vs {
				s.visitNamedOption(f, fv)
			}
			return nil
		})
	}
}

// WithValuesFromFlagSet populates the Config using command-line flags.
func WithValuesFromFlagSet(fs *flag.FlagSet) SetupOption {
	return func(s *Setup) error {
		if !fs.Parsed() {
			return errors.Errorf("given FlagSet must be parsed")
		}
		return s.addPostSetup(func(s *Setup) error {
			fs.Visit(func(f *flag.Flag) {
				var v interface{} = f.Value.String()
				if fg, ok := f.Value.(flag.Getter); ok {
					v = fg.Get()
				}
				s.visitNamedOption(f.Name, v)
			})
			return nil
		})
	}
}

// normalizeName converts the given name into a normal, underscorized name.
// Dashes and spaces are converted to underscores and everything is
// lower-cased.
func normalizeName(name string) string {
	return strings.ToLower(
		strings.NewReplacer("-", "_", " ", "_").Replace(name))
}

// mapPath converts a flag-style name into a path based on the sections and
// options defined on the Setup. If a Config has a section "irc" with an
// option "nick", then the flag named "-irc-nick" is converted into the
// path ["irc","nick"].
func (s *Setup) mapPath(name string) (path []string) {
	normal := normalizeName(name)
	cur := s
	for cur != nil {
		// check for an exact match against an option
		for k := range cur.options {
			if normalizeName(k) == normal {
				return append(path, k)
			}
		}
		// then against a whole section
		for k := range cur.sections {
			if normalizeName(k) == normal {
				return append(path, k)
			}
		}
		// then a field on the backing value; an inspector here handles
		// struct tag aliases.
		if is, err := inspect(cur.initial); err == nil {
			if _, err := is.Get(normal); err == nil {
				return append(path, normal)
			}
		}
		// finally, try descending into a section using its name as a
		// prefix.
		matched := false
		for k, ks := range cur.sections {
			prefix := normalizeName(k) + "_"
			if strings.HasPrefix(normal, prefix) {
				normal = strings.TrimPrefix(normal, prefix)
				path = append(path, k)
				cur = ks
				matched = true
				break
			}
		}
		if !matched {
			return nil
		}
	}
	return path
}

// visitNamedOption stores the given named value in the raw config data,
// descending into nested sections as necessary.
func (s *Setup) visitNamedOption(name string, val interface{}) {
	path := s.mapPath(name)
	if len(path) == 0 {
		logrus.Debugf("config: did not match anything for named option '%s' in section %s", name, s.name)
		return
	}
	v := s.raw
	i := 0
	for i = 0; i < len(path)-1; i++ {
		vs, ok := v[path[i]].(map[string]interface{})
		if !ok {
			if vr, ok := v[path[i]]; ok {
				logrus.Debugf("config: overriding existing value for option '%s' -- was type %T", path[i], vr)
			}
			vs = make(map[string]interface{})
			v[path[i]] = vs
		}
		v = vs
	}
	if vm, ok := val.(map[string]interface{}); ok {
		// a whole section given as a map merges into the raw data rather
		// than replacing it.
		vs, ok := v[path[i]].(map[string]interface{})
		if !ok {
			vs = make(map[string]interface{})
			v[path[i]] = vs
		}
		for k, kv := range vm {
			vs[k] = kv
		}
		return
	}
	v[path[i]] = val
}
