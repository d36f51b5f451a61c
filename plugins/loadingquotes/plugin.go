package loadingquotes

import (
	_ "embed"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"code.dopame.me/veonik/squawk/client"
	"code.dopame.me/veonik/squawk/config"
	"code.dopame.me/veonik/squawk/plugin"
)

const PluginName = "loadingquotes"

//go:embed quotes.txt
var stockQuotes string

type Config struct {
	// QuotesPath optionally points at a file containing quotes to use
	// instead of the stock list.
	QuotesPath string `toml:"quotes_path"`
}

func Initialize(*plugin.Manager) (plugin.Plugin, error) {
	return &quotesPlugin{patcher: NewPatcher(ParseList(stockQuotes))}, nil
}

type quotesPlugin struct {
	patcher *Patcher
}

func (p *quotesPlugin) Name() string {
	return PluginName
}

func (p *quotesPlugin) Options() []config.SetupOption {
	return []config.SetupOption{
		config.WithInitValue(&Config{}),
		config.WithOption("quotes_path")}
}

func (p *quotesPlugin) Configure(c config.Config) error {
	co, ok := c.Self().(*Config)
	if !ok {
		return errors.Errorf("%s: value is not a *loadingquotes.Config", PluginName)
	}
	if co.QuotesPath == "" {
		return nil
	}
	b, err := os.ReadFile(co.QuotesPath)
	if err != nil {
		logrus.Warnf("%s: unable to read %s, using stock quotes: %s", PluginName, co.QuotesPath, err)
		return nil
	}
	p.patcher = NewPatcher(ParseList(string(b)))
	return nil
}

// PatchLoadingTexts replaces the splash texts with quotes. Both the
// default and event splashes get the same set.
func (p *quotesPlugin) PatchLoadingTexts(_ client.SplashKind, texts client.TextList) {
	p.patcher.Apply(texts)
}
