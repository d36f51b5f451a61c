package client

import (
	"github.com/dop251/goja"
)

// gojaTextList adapts a live javascript array to the TextList
// interface. Mutations happen against the same array object that the
// scripts on the runtime hold a reference to.
type gojaTextList struct {
	runtime *goja.Runtime
	arr     *goja.Object
}

func (l *gojaTextList) Len() int {
	return int(l.arr.Get("length").ToInteger())
}

func (l *gojaTextList) Clear() {
	// truncating the length empties the array without replacing it.
	if err := l.arr.Set("length", 0); err != nil {
		panic(err)
	}
}

func (l *gojaTextList) Append(text string) {
	push, ok := goja.AssertFunction(l.arr.Get("push"))
	if !ok {
		panic(l.runtime.NewTypeError("push is not a function"))
	}
	if _, err := push(l.arr, l.runtime.ToValue(text)); err != nil {
		panic(err)
	}
}
