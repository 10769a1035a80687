//go:build js && wasm

// Package jsdom adapts the browser document to dom.Document.
package jsdom

import (
	"syscall/js"

	"cartwidget/internal/dom"
)

type Document struct {
	doc js.Value
}

func New() *Document {
	return &Document{doc: js.Global().Get("document")}
}

func (d *Document) ElementByID(id string) (dom.Element, bool) {
	el := d.doc.Call("getElementById", id)
	if el.IsNull() || el.IsUndefined() {
		return nil, false
	}
	return &Element{el: el}, true
}

type Element struct {
	el js.Value
}

func (e *Element) Data(name string) (string, bool) {
	v := e.el.Get("dataset").Get(name)
	if v.IsUndefined() || v.IsNull() {
		return "", false
	}
	return v.String(), true
}

func (e *Element) SetText(text string) {
	e.el.Set("textContent", text)
}

// OnClick registers fn for the lifetime of the page; the js.Func is never
// released.
func (e *Element) OnClick(fn func()) {
	cb := js.FuncOf(func(this js.Value, args []js.Value) any {
		fn()
		return nil
	})
	e.el.Call("addEventListener", "click", cb)
}
