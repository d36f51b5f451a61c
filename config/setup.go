package config

import (
	"fmt"

	"github.com/pkg/errors"
)

// A SetupOption is a function that modifies the given Setup in some way.
type SetupOption func(s *Setup) error

// Setup is a container struct with information on how to set up a given
// Config.
type Setup struct {
	name      string
	prototype func() Value
	initial   Value
	config    Config

	parent *Setup

	raw map[string]interface{}

	sections map[string]*Setup
	options  map[string]bool
	inherits map[string]struct{}

	// post holds options that populate the config from a data source
	// (ie. options with method name like "WithValuesFrom*"). These run
	// after all other SetupOptions so that they can consume the metadata
	// stored within the Setup while populating values.
	post []SetupOption
}

func newSetup(name string, parent *Setup) *Setup {
	return &Setup{
		name:     name,
		parent:   parent,
		raw:      make(map[string]interface{}),
		sections: make(map[string]*Setup),
		options:  make(map[string]bool),
		inherits: make(map[string]struct{}),
	}
}

func (s *Setup) addPostSetup(options ...SetupOption) error {
	s.post = append(s.post, options...)
	return nil
}

// apply calls each SetupOption, halting on the first error encountered.
func (s *Setup) apply(options ...SetupOption) error {
	// clear post options, they will be re-added by the regular options.
	s.post = nil
	for _, o := range options {
		if err := o(s); err != nil {
			return err
		}
	}
	for _, o := range s.post {
		if err := o(s); err != nil {
			return err
		}
	}
	return nil
}

// validate checks that all options and sections are valid, recursively.
func (s *Setup) validate() error {
	if s.config == nil {
		return errors.New(`expected config to be populated, found nil`)
	}
	for o, reqd := range s.options {
		if !reqd {
			continue
		}
		v, ok := s.config.Get(o)
		if !ok || v == nil {
			return errors.Errorf(`required option "%s" is empty`, o)
		}
		if vs, ok := v.(string); ok && len(vs) == 0 {
			return errors.Errorf(`required option "%s" is empty`, o)
		}
	}
	for sn, ss := range s.sections {
		if err := ss.validate(); err != nil {
			return errors.Wrapf(err, `config "%s" contains an invalid section "%s"`, s.name, sn)
		}
	}
	return nil
}

// build populates the Config for this Setup and all nested sections.
func (s *Setup) build() error {
	wrapErr := func(err error) error {
		if s.name != "root" {
			return errors.WithMessage(err, fmt.Sprintf("section %s", s.name))
		}
		return err
	}
	if isNil(s.initial) && s.prototype != nil {
		s.initial = s.prototype()
	}
	if isNil(s.initial) && s.parent != nil {
		// an unset section backed by a field on the parent's value uses
		// that field as its initial value.
		if vo, ok := s.parent.config.Get(s.name); ok {
			s.initial = vo
		}
	}
	if isNil(s.initial) {
		s.initial = make(map[string]interface{})
	}
	if rc, ok := s.initial.(Config); ok {
		s.config = rc
	} else {
		co, err := newConfigurable(s)
		if err != nil {
			return wrapErr(err)
		}
		s.config = co
	}
	if err := s.buildInherits(); err != nil {
		return wrapErr(err)
	}
	return s.buildSections()
}

// buildInherits synchronizes inherited options and sections between this
// and the parent.
func (s *Setup) buildInherits() error {
	for si := range s.inherits {
		if s.parent == nil {
			return errors.Errorf("unable to inherit option %s from non-existent parent", si)
		}
		if sec, ok := s.parent.sections[si]; ok {
			s.config.Set(si, sec.config)
		} else if vo, ok := s.parent.config.Get(si); ok {
			s.config.Set(si, vo)
		} else {
			return errors.Errorf("unable to inherit non-existent option %s from parent %s", si, s.parent.name)
		}
	}
	return nil
}

// buildSections walks through each section, populating a Config for each.
func (s *Setup) buildSections() error {
	for _, ns := range s.sections {
		if v, ok := s.raw[ns.name].(map[string]interface{}); ok {
			ns.raw = v
		}
		if err := ns.build(); err != nil {
			return err
		}
		s.config.Set(ns.name, ns.config)
	}
	return nil
}
