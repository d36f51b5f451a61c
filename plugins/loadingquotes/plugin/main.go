package main

import (
	"code.dopame.me/veonik/squawk/plugin"
	"code.dopame.me/veonik/squawk/plugins/loadingquotes"
)

func main() {
	plugin.Main(loadingquotes.PluginName)
}

func Initialize(m *plugin.Manager) (plugin.Plugin, error) {
	return loadingquotes.Initialize(m)
}
