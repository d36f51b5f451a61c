//go:build !linked_plugins
// +build !linked_plugins

package main

import (
	"code.dopame.me/veonik/squawk/plugin"

	loadingquotes "code.dopame.me/veonik/squawk/plugins/loadingquotes"
	script "code.dopame.me/veonik/squawk/plugins/script"
)

var linkedPlugins = []plugin.Initializer{
	plugin.InitializerFunc(loadingquotes.Initialize),
	plugin.InitializerFunc(script.Initialize)}
