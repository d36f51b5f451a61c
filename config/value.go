package config

import (
	"reflect"

	"github.com/fatih/structtag"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// configurable must implement Config.
var _ Config = &configurable{}

// configurable is the default Config implementation.
type configurable struct {
	Value
	options   map[string]Value
	inspector *inspector
}

func newConfigurable(s *Setup) (*configurable, error) {
	if isNil(s.initial) {
		return nil, errors.New("unable to wrap <nil>")
	}
	is, err := inspect(s.initial)
	if err != nil {
		return nil, err
	}
	c := &configurable{Value: s.initial, options: make(map[string]Value), inspector: is}
	for k, v := range s.raw {
		c.Set(k, v)
	}
	for k := range s.options {
		v, err := c.inspector.Get(k)
		if err != nil {
			// options without a backing field live only in the options map
			continue
		}
		c.Set(k, v)
	}
	return c, nil
}

func (c *configurable) Self() Value {
	return c.Value
}

func (c *configurable) Get(key string) (Value, bool) {
	if v, err := c.inspector.Get(key); err == nil && v != nil {
		return v, true
	}
	if v, ok := c.options[key]; ok {
		return v, true
	}
	return nil, false
}

func (c *configurable) String(key string) (string, bool) {
	v, ok := c.Get(key)
	if !ok {
		return "", false
	}
	if vs, ok := v.(string); ok {
		return vs, true
	}
	return "", false
}

func (c *configurable) Bool(key string) (bool, bool) {
	v, ok := c.Get(key)
	if !ok {
		return false, false
	}
	if vs, ok := v.(bool); ok {
		return vs, true
	}
	return false, false
}

func (c *configurable) Int(key string) (int, bool) {
	v, ok := c.Get(key)
	if !ok {
		return 0, false
	}
	switch vs := v.(type) {
	case int:
		return vs, true
	case int64:
		// the TOML decoder produces int64
		return int(vs), true
	}
	return 0, false
}

func (c *configurable) Set(key string, val Value) {
	c.options[key] = val
	c.inspector.Set(key, val)
}

func (c *configurable) Section(key string) (Config, error) {
	v := c.options[key]
	if vv, ok := v.(*configurable); ok {
		return vv, nil
	}
	if s, ok := v.(Config); ok {
		return s, nil
	}
	return nil, errors.Errorf(`section "%s" contains unexpected type %T: %v`, key, v, v)
}

// An inspector abstracts the reading and modifying of a Value,
// particularly structs, struct pointers, and maps.
type inspector struct {
	value reflect.Value

	// fields maps field names, struct tag aliases, and their normalized
	// forms to the field's index path.
	fields map[string][]int
}

func inspect(v Value) (*inspector, error) {
	vo := reflect.ValueOf(v)
	if vo.Kind() == reflect.Ptr {
		vo = reflect.Indirect(vo)
	}
	is := &inspector{value: vo, fields: make(map[string][]int)}
	if vo.Kind() == reflect.Struct {
		tt := vo.Type()
		for i := 0; i < tt.NumField(); i++ {
			f := tt.Field(i)
			is.fields[f.Name] = f.Index
			is.fields[normalizeName(f.Name)] = f.Index
			tgs, err := structtag.Parse(string(f.Tag))
			if err != nil {
				return nil, err
			}
			for _, tg := range tgs.Tags() {
				is.fields[tg.Name] = f.Index
			}
		}
	}
	return is, nil
}

func (i *inspector) Get(name string) (Value, error) {
	if !i.value.IsValid() {
		return nil, errors.New("cannot inspect invalid value")
	}
	if i.value.Kind() == reflect.Map {
		m := i.value.MapIndex(reflect.ValueOf(name))
		if !m.IsValid() {
			return nil, nil
		}
		return m.Interface(), nil
	}
	fi, ok := i.fields[name]
	if !ok {
		return nil, errors.New("no field with name " + name)
	}
	m := i.value.FieldByIndex(fi)
	if !m.CanInterface() {
		return nil, errors.New("cannot read field " + name)
	}
	return m.Interface(), nil
}

func (i *inspector) Set(name string, val Value) {
	defer func() {
		if v := recover(); v != nil {
			logrus.Debugln("config: failed to set value using reflection:", v)
		}
	}()
	if vc, ok := val.(*configurable); ok {
		val = vc.Value
	}
	rv := reflect.ValueOf(val)
	if i.value.Kind() == reflect.Map {
		i.value.SetMapIndex(reflect.ValueOf(name), rv)
		return
	}
	fi, ok := i.fields[name]
	if !ok {
		return
	}
	m := i.value.FieldByIndex(fi)
	if !m.CanSet() {
		return
	}
	if m.Kind() == reflect.Slice && m.Type().Elem().Kind() == reflect.String {
		// the TOML decoder produces []interface{} for arrays
		if vs, ok := val.([]interface{}); ok {
			var res []string
			for _, vv := range vs {
				if s, ok := vv.(string); ok {
					res = append(res, s)
				}
			}
			rv = reflect.ValueOf(res)
		}
	}
	trySet(m, rv)
}

func trySet(m reflect.Value, rv reflect.Value) {
	if m.Kind() != rv.Kind() {
		if m.Kind() == reflect.Ptr {
			rv = reflect.Indirect(rv)
		} else if rv.Kind() == reflect.Ptr {
			rv = rv.Elem()
		}
	}
	if m.Type() != rv.Type() && rv.Type().ConvertibleTo(m.Type()) {
		rv = rv.Convert(m.Type())
	}
	m.Set(rv)
}

func isNil(v Value) bool {
	if v == nil {
		return true
	}
	vo := reflect.ValueOf(v)
	if vo.Kind() == reflect.Ptr {
		if vo.IsNil() {
			return true
		}
		vo = reflect.Indirect(vo)
	}
	return !vo.IsValid()
}
