// Package loadingquotes replaces the client's stock loading splash
// texts with a configurable list of quotes.
package loadingquotes // import "code.dopame.me/veonik/squawk/plugins/loadingquotes"

import (
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"code.dopame.me/veonik/squawk/client"
)

// FallbackQuote is shown when the quote list turns out to be empty.
const FallbackQuote = "Loading..."

// ParseList parses a newline-delimited list of quotes. Leading and
// trailing whitespace is trimmed from each line; blank lines and lines
// starting with # are skipped.
func ParseList(raw string) []string {
	var quotes []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		quotes = append(quotes, line)
	}
	return quotes
}

// A Patcher replaces the contents of a text list with its quotes.
type Patcher struct {
	quotes []string

	warnOnce sync.Once
}

func NewPatcher(quotes []string) *Patcher {
	return &Patcher{quotes: quotes}
}

// Apply clears the given list and refills it with the patcher's quotes.
// The list is modified in place. If the list ends up empty,
// FallbackQuote is added so that there is always something to show.
//
// Apply never panics; a fault while mutating the list is recovered and
// logged, at most once for the life of the Patcher, and the list is
// left however far the mutation got.
func (p *Patcher) Apply(texts client.TextList) {
	defer func() {
		if r := recover(); r != nil {
			p.warnOnce.Do(func() {
				logrus.Warnln("loadingquotes: failed to patch loading texts:", r)
			})
		}
	}()
	texts.Clear()
	for _, q := range p.quotes {
		texts.Append(q)
	}
	if texts.Len() == 0 {
		texts.Append(FallbackQuote)
	}
}
