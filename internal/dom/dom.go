// Package dom is the small slice of a page document the cart widget
// touches: lookup by id, data attributes, text content and clicks.
package dom

import "sync"

const (
	TriggerID = "add-to-cart-btn"
	DisplayID = "cart-count"
)

// Data attribute names as exposed by an element's dataset.
const (
	DataProductID       = "productId"
	DataProductName     = "productName"
	DataProductPrice    = "productPrice"
	DataProductImageURL = "productImageUrl"
)

type Document interface {
	ElementByID(id string) (Element, bool)
}

type Element interface {
	Data(name string) (string, bool)
	SetText(text string)
	OnClick(fn func())
}

// MemDocument is an in-memory Document used by the server-side widget
// and by tests.
type MemDocument struct {
	mu       sync.Mutex
	elements map[string]*MemElement
}

func NewMemDocument() *MemDocument {
	return &MemDocument{elements: make(map[string]*MemElement)}
}

// Add places a new element with the given id, replacing any previous one.
func (d *MemDocument) Add(id string, data map[string]string) *MemElement {
	d.mu.Lock()
	defer d.mu.Unlock()

	el := &MemElement{data: make(map[string]string, len(data))}
	for k, v := range data {
		el.data[k] = v
	}
	d.elements[id] = el
	return el
}

func (d *MemDocument) Remove(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.elements, id)
}

func (d *MemDocument) ElementByID(id string) (Element, bool) {
	el, ok := d.Lookup(id)
	if !ok {
		return nil, false
	}
	return el, true
}

func (d *MemDocument) Lookup(id string) (*MemElement, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	el, ok := d.elements[id]
	return el, ok
}

type MemElement struct {
	mu       sync.Mutex
	data     map[string]string
	text     string
	handlers []func()
}

func (e *MemElement) Data(name string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.data[name]
	return v, ok
}

func (e *MemElement) SetText(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.text = text
}

func (e *MemElement) Text() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.text
}

func (e *MemElement) OnClick(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers = append(e.handlers, fn)
}

// Click runs the registered click handlers in registration order.
func (e *MemElement) Click() {
	e.mu.Lock()
	handlers := append([]func(){}, e.handlers...)
	e.mu.Unlock()

	for _, fn := range handlers {
		fn()
	}
}

func (e *MemElement) Listeners() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.handlers)
}
