package animate

import (
	"maps"
	"sync"

	"github.com/aretw0/kinetic/pkg/domain"
)

// ElementProps are injected by a coordinator into the element it renders.
type ElementProps struct {
	ID      string
	Binding *domain.AnimationBinding
	// Ref must be called with the element's node once it is attached.
	Ref func(domain.Node)
}

// Element is the host rendering capability a coordinator drives.
// Both methods are called on the scheduler goroutine.
type Element interface {
	// Render mounts the element, or updates it if already mounted.
	Render(props ElementProps) error
	// Unmount removes the element (and its subtree).
	Unmount()
}

// Child is something an element renders that takes part in the binding protocol,
// typically a nested Coordinator. Both methods are called on the scheduler goroutine.
type Child interface {
	Bind(binding *domain.AnimationBinding)
	Detach()
}

// Handle is the node of a rendered Box. Animations read and write its style
// properties. Safe for concurrent use.
type Handle struct {
	id       string
	mu       sync.RWMutex
	style    map[string]float64
	attached bool
}

// NewHandle creates an attached node.
func NewHandle(id string, style map[string]float64) *Handle {
	h := &Handle{
		id:       id,
		style:    maps.Clone(style),
		attached: true,
	}
	if h.style == nil {
		h.style = make(map[string]float64)
	}
	return h
}

// ID implements domain.Node.
func (h *Handle) ID() string {
	return h.id
}

// Style returns a style property.
func (h *Handle) Style(key string) (float64, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	v, ok := h.style[key]
	return v, ok
}

// SetStyle sets a style property.
func (h *Handle) SetStyle(key string, value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.style[key] = value
}

// Styles returns a copy of every style property.
func (h *Handle) Styles() map[string]float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return maps.Clone(h.style)
}

// Attached reports whether the node is still part of the tree.
func (h *Handle) Attached() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.attached
}

func (h *Handle) detach() {
	h.mu.Lock()
	h.attached = false
	h.mu.Unlock()
}

// Box is the animatable wrapper element. It owns one node, created when it is
// mounted, and passes the binding it receives on to its children.
type Box struct {
	// Style is the initial style of the node created on mount.
	Style map[string]float64
	// RequireBinding makes rendering without a binding a configuration error.
	RequireBinding bool
	// Children are bound with the binding this box receives.
	Children []Child

	node *Handle
}

var _ Element = (*Box)(nil)

// Render implements Element.
func (b *Box) Render(props ElementProps) error {
	if props.ID == "" {
		return &domain.ConfigError{Component: "box", Err: domain.ErrMissingID}
	}
	if b.RequireBinding && props.Binding == nil {
		return &domain.ConfigError{Component: "box " + props.ID, Err: domain.ErrMissingBinding}
	}

	if b.node == nil {
		b.node = NewHandle(props.ID, b.Style)
	}
	if props.Ref != nil {
		props.Ref(b.node)
	}

	for _, child := range b.Children {
		child.Bind(props.Binding)
	}
	return nil
}

// Unmount implements Element.
func (b *Box) Unmount() {
	for _, child := range b.Children {
		child.Detach()
	}
	if b.node != nil {
		b.node.detach()
		b.node = nil
	}
}

// Node returns the currently mounted node, or nil.
func (b *Box) Node() *Handle {
	return b.node
}

// Mounted reports whether the box currently has a node.
func (b *Box) Mounted() bool {
	return b.node != nil
}
