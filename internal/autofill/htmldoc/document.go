// Package htmldoc implements the filler page contracts over a parsed HTML
// document, so saved forms can be filled without a browser.
package htmldoc

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/grez-lucas/form-autofill/internal/autofill/filler"
)

// controlSelector matches every element the engine collects.
var controlSelector = mustParseGroup("input, select, textarea")

func mustParseGroup(sel string) cascadia.SelectorGroup {
	group, err := cascadia.ParseGroup(sel)
	if err != nil {
		panic(err)
	}
	return group
}

// Event is a notification delivered to a control.
type Event struct {
	Type  string
	Name  string
	Index int
}

// Listener reacts to events the way page scripts would.
type Listener func(doc *Document, ev Event)

// Document is an in-memory page. It is safe for use by one fill run at a time.
type Document struct {
	doc *goquery.Document

	mu        sync.Mutex
	events    []Event
	listeners map[string][]Listener
}

// Parse reads an HTML page.
func Parse(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Document{doc: doc, listeners: make(map[string][]Listener)}, nil
}

// ParseString is Parse over a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Load reads an HTML page from disk.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open html: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// On registers fn for events of the given type ("click", "change", "blur").
func (d *Document) On(eventType string, fn Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[eventType] = append(d.listeners[eventType], fn)
}

// Events returns every event delivered so far, oldest first.
func (d *Document) Events() []Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Event, len(d.events))
	copy(out, d.events)
	return out
}

// HTML renders the current state of the page.
func (d *Document) HTML() (string, error) {
	return d.doc.Html()
}

// Selection exposes the underlying goquery document for assertions and for
// listeners that change the page.
func (d *Document) Selection() *goquery.Selection {
	return d.doc.Selection
}

// Controls returns every input, select and textarea in document order.
func (d *Document) Controls(_ context.Context) ([]filler.Control, error) {
	nodes := d.controlNodes()
	controls := make([]filler.Control, len(nodes))
	for i, n := range nodes {
		controls[i] = &Control{doc: d, node: n, index: i}
	}
	return controls, nil
}

// Control returns the first control matching the CSS selector.
func (d *Document) Control(selector string) (*Control, bool) {
	sel := d.doc.Find(selector).First()
	if sel.Length() == 0 {
		return nil, false
	}
	target := sel.Get(0)
	for i, n := range d.controlNodes() {
		if n == target {
			return &Control{doc: d, node: n, index: i}, true
		}
	}
	return nil, false
}

func (d *Document) ValueOf(ctx context.Context, name string) (string, bool, error) {
	for i, n := range d.controlNodes() {
		if attr(n, "name") != name {
			continue
		}
		c := &Control{doc: d, node: n, index: i}
		v, err := c.Value(ctx)
		return v, true, err
	}
	return "", false, nil
}

func (d *Document) controlNodes() []*html.Node {
	var nodes []*html.Node
	for _, root := range d.doc.Nodes {
		nodes = append(nodes, cascadia.QueryAll(root, controlSelector)...)
	}
	return nodes
}

func (d *Document) emit(c *Control, eventType string) {
	ev := Event{Type: eventType, Name: attr(c.node, "name"), Index: c.index}

	d.mu.Lock()
	d.events = append(d.events, ev)
	listeners := append([]Listener(nil), d.listeners[eventType]...)
	d.mu.Unlock()

	for _, fn := range listeners {
		fn(d, ev)
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}
