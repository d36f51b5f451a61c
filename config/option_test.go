package config_test

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"code.dopame.me/veonik/squawk/config"
)

func TestWithInheritedOption(t *testing.T) {
	type Config struct {
		RootPath string `toml:"root_path"`
		Nick     string
	}
	co := &Config{"/home/jones/.squawk", "squishyjones"}
	c, err := config.Wrap(co,
		config.WithRequiredOption("root_path"),
		config.WithGenericSection("scripts",
			config.WithInheritedOption("root_path")))
	if err != nil {
		t.Errorf("expected config to be valid, but got error: %s", err)
		return
	}
	s, err := c.Section("scripts")
	if err != nil {
		t.Errorf("expected to get section named scripts, but got error: %s", err)
		return
	}
	rp, ok := s.String("root_path")
	if !ok {
		t.Errorf("expected root_path to be a string")
		return
	}
	if rp != co.RootPath {
		t.Errorf("expected inherited root_path (%s) to match parent (%s)", rp, co.RootPath)
	}
}

func TestWithInheritedOption_missingParent(t *testing.T) {
	_, err := config.New(config.WithInheritedOption("root_path"))
	if err == nil {
		t.Errorf("expected error inheriting without a parent, got nil")
	}
}

func TestWithValuesFromMap(t *testing.T) {
	type Config struct {
		Nick string `toml:"nick"`
	}
	co := &Config{"squishyjones"}
	c, err := config.Wrap(co,
		config.WithRequiredOption("nick"),
		config.WithGenericSection("irc", config.WithOption("network")),
		config.WithValuesFromMap(map[string]interface{}{
			"nick":        "mrjones",
			"irc-network": "chat.freenode.net:6697",
		}))
	if err != nil {
		t.Errorf("expected config to be valid, but got error: %s", err)
		return
	}
	n, ok := c.String("nick")
	if !ok || n != "mrjones" {
		t.Errorf("expected nick to be 'mrjones', got '%s'", n)
		return
	}
	if co.Nick != "mrjones" {
		t.Errorf("expected backing struct to be updated, Nick is '%s'", co.Nick)
		return
	}
	s, err := c.Section("irc")
	if err != nil {
		t.Errorf("expected to get section named irc, but got error: %s", err)
		return
	}
	nw, ok := s.String("network")
	if !ok || nw != "chat.freenode.net:6697" {
		t.Errorf("expected network to be set from map, got '%s'", nw)
	}
}

func TestWithValuesFromFlagSet(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.String("irc-nick", "", "irc nickname")
	if err := fs.Parse([]string{"-irc-nick", "mrjones"}); err != nil {
		t.Errorf("failed to parse flags: %s", err)
		return
	}
	c, err := config.New(
		config.WithGenericSection("irc", config.WithOption("nick")),
		config.WithValuesFromFlagSet(fs))
	if err != nil {
		t.Errorf("expected config to be valid, but got error: %s", err)
		return
	}
	s, err := c.Section("irc")
	if err != nil {
		t.Errorf("expected to get section named irc, but got error: %s", err)
		return
	}
	n, ok := s.String("nick")
	if !ok || n != "mrjones" {
		t.Errorf("expected nick to be 'mrjones', got '%s'", n)
	}
}

func TestWithValuesFromTOMLFile(t *testing.T) {
	dir := t.TempDir()
	cf := filepath.Join(dir, "config.toml")
	body := "nick = \"mrjones\"\n\n[irc]\nnetwork = \"chat.freenode.net:6697\"\ntls = true\n"
	if err := os.WriteFile(cf, []byte(body), 0644); err != nil {
		t.Errorf("failed writing config file: %s", err)
		return
	}
	c, err := config.New(
		config.WithOption("nick"),
		config.WithGenericSection("irc",
			config.WithOptions("network", "tls")),
		config.WithValuesFromTOMLFile(cf))
	if err != nil {
		t.Errorf("expected config to be valid, but got error: %s", err)
		return
	}
	n, ok := c.String("nick")
	if !ok || n != "mrjones" {
		t.Errorf("expected nick to be 'mrjones', got '%s'", n)
		return
	}
	s, err := c.Section("irc")
	if err != nil {
		t.Errorf("expected to get section named irc, but got error: %s", err)
		return
	}
	tls, ok := s.Bool("tls")
	if !ok || !tls {
		t.Errorf("expected tls to be true")
	}
}

func TestWithValuesFromTOMLFile_missingFile(t *testing.T) {
	c, err := config.New(
		config.WithOption("nick"),
		config.WithValuesFromTOMLFile(filepath.Join(t.TempDir(), "nope.toml")))
	if err != nil {
		t.Errorf("expected missing file to be skipped, but got error: %s", err)
		return
	}
	if _, ok := c.String("nick"); ok {
		t.Errorf("expected nick to be unset")
	}
}
