package config_test

import (
	"testing"

	"code.dopame.me/veonik/squawk/config"
)

func TestWrap(t *testing.T) {
	type Config struct {
		Nick    string
		Network *struct {
			Port int
		}
	}
	co := &Config{"squishyjones", &struct{ Port int }{6697}}
	c, err := config.Wrap(co,
		config.WithRequiredOption("Nick"),
		config.WithGenericSection("Network",
			config.WithInitValue(co.Network),
			config.WithRequiredOption("Port")))
	if err != nil {
		t.Errorf("expected config to be valid, but got error: %s", err)
		return
	}
	n, ok := c.String("Nick")
	if !ok {
		t.Errorf("expected Nick to be a string")
		return
	}
	if n != "squishyjones" {
		t.Errorf("expected Nick to be 'squishyjones', got '%s'", n)
		return
	}
	s, err := c.Section("Network")
	if err != nil {
		t.Errorf("expected to get section named Network, but got error: %s", err)
		return
	}
	p, ok := s.Int("Port")
	if !ok {
		t.Errorf("expected Port to be an int")
		return
	}
	if p != 6697 {
		t.Errorf("expected Port to be 6697, got %d", p)
	}
}

func TestWrap_nonPointerSection(t *testing.T) {
	type Config struct {
		Nick    string
		Network struct {
			Port int
		}
	}
	co := &Config{"squishyjones", struct{ Port int }{6697}}
	c, err := config.Wrap(co,
		config.WithRequiredOption("Nick"),
		config.WithGenericSection("Network",
			config.WithInitValue(&co.Network),
			config.WithRequiredOption("Port")))
	if err != nil {
		t.Errorf("expected config to be valid, but got error: %s", err)
		return
	}
	s, err := c.Section("Network")
	if err != nil {
		t.Errorf("expected to get section named Network, but got error: %s", err)
		return
	}
	p, ok := s.Int("Port")
	if !ok {
		t.Errorf("expected Port to be an int")
		return
	}
	if p != 6697 {
		t.Errorf("expected Port to be 6697, got %d", p)
	}
}

func TestNew_requiredOptionMissing(t *testing.T) {
	_, err := config.New(
		config.WithRequiredOption("nick"))
	if err == nil {
		t.Errorf("expected error for missing required option, got nil")
	}
}

func TestSet_syncsBackingStruct(t *testing.T) {
	type Config struct {
		Nick string `toml:"nick"`
	}
	co := &Config{}
	c, err := config.Wrap(co, config.WithOption("nick"))
	if err != nil {
		t.Errorf("expected config to be valid, but got error: %s", err)
		return
	}
	c.Set("nick", "mrjones")
	if co.Nick != "mrjones" {
		t.Errorf("expected backing struct to be updated, Nick is '%s'", co.Nick)
	}
}
