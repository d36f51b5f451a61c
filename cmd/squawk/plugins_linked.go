//go:build linked_plugins
// +build linked_plugins

package main

import (
	"code.dopame.me/veonik/squawk/plugin"

	loadingquotes "code.dopame.me/veonik/squawk/plugins/loadingquotes"
	script "code.dopame.me/veonik/squawk/plugins/script"
)

// Additional linked plugins may be added here and built in with the
// linked_plugins build tag.
var linkedPlugins = []plugin.Initializer{
	plugin.InitializerFunc(loadingquotes.Initialize),
	plugin.InitializerFunc(script.Initialize)}
