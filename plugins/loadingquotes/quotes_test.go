package loadingquotes_test

import (
	"reflect"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"code.dopame.me/veonik/squawk/plugins/loadingquotes"
)

type fakeList struct {
	items []string
}

func (l *fakeList) Len() int {
	return len(l.items)
}

func (l *fakeList) Clear() {
	l.items = l.items[:0]
}

func (l *fakeList) Append(text string) {
	l.items = append(l.items, text)
}

// faultyList panics once the list reaches its limit.
type faultyList struct {
	fakeList
	limit int
}

func (l *faultyList) Append(text string) {
	if len(l.items) >= l.limit {
		panic("list is full")
	}
	l.fakeList.Append(text)
}

func TestParseList(t *testing.T) {
	quotes := loadingquotes.ParseList("Hello\n# comment\n\nWorld  \n")
	expected := []string{"Hello", "World"}
	if !reflect.DeepEqual(quotes, expected) {
		t.Fatalf("expected %v, got %v", expected, quotes)
	}
}

func TestParseList_windowsLineEndings(t *testing.T) {
	quotes := loadingquotes.ParseList("first\r\nsecond\r\n")
	expected := []string{"first", "second"}
	if !reflect.DeepEqual(quotes, expected) {
		t.Fatalf("expected %v, got %v", expected, quotes)
	}
}

func TestParseList_commentsOnly(t *testing.T) {
	quotes := loadingquotes.ParseList("# nothing\n# to see\n\n")
	if len(quotes) != 0 {
		t.Fatalf("expected no quotes, got %v", quotes)
	}
}

func TestPatcher_Apply_replacesInPlace(t *testing.T) {
	p := loadingquotes.NewPatcher([]string{"one", "two"})
	l := &fakeList{items: []string{"stock text"}}
	p.Apply(l)
	expected := []string{"one", "two"}
	if !reflect.DeepEqual(l.items, expected) {
		t.Fatalf("expected %v, got %v", expected, l.items)
	}
}

func TestPatcher_Apply_emptyQuotesAppendsFallback(t *testing.T) {
	p := loadingquotes.NewPatcher(nil)
	l := &fakeList{items: []string{"stock text"}}
	p.Apply(l)
	expected := []string{loadingquotes.FallbackQuote}
	if !reflect.DeepEqual(l.items, expected) {
		t.Fatalf("expected %v, got %v", expected, l.items)
	}
}

func TestPatcher_Apply_recoversAndLogsOnce(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()
	p := loadingquotes.NewPatcher([]string{"one", "two", "three"})
	l := &faultyList{limit: 1}
	p.Apply(l)
	p.Apply(l)
	warnings := 0
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warnings++
		}
	}
	if warnings != 1 {
		t.Errorf("expected exactly 1 warning, got %d", warnings)
	}
	// the fault hit on the second append, the first survives
	expected := []string{"one"}
	if !reflect.DeepEqual(l.items, expected) {
		t.Errorf("expected %v, got %v", expected, l.items)
	}
}
