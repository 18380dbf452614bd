package scene

import (
	"fmt"
	"strings"

	"github.com/aretw0/kinetic/pkg/domain"
	"github.com/aretw0/kinetic/pkg/predicate"
	"github.com/aretw0/kinetic/pkg/trigger"
)

// World is the predicate state of scene coordinators: a live view of every router.
type World struct {
	routers *trigger.Registry
}

// NewWorld creates a world over routers.
func NewWorld(routers *trigger.Registry) *World {
	return &World{routers: routers}
}

// Visible reports whether the named router is visible. Unknown routers are hidden.
func (w *World) Visible(name string) bool {
	if w == nil || w.routers == nil {
		return false
	}
	r, err := w.routers.Get(name)
	if err != nil {
		return false
	}
	return r.Visible()
}

// Predicate is a compiled scene predicate.
type Predicate = predicate.Predicate[*World, domain.Trigger]

// ParsePredicate compiles a predicate expression:
//
//	visible | hidden | always
//	router:<name>:visible | router:<name>:hidden
//	data=<value>
//
// Any expression may be negated with a leading "!".
func ParsePredicate(expr string) (Predicate, error) {
	p, _, err := parseExpr(expr)
	return p, err
}

// parseExpr also returns the router an expression refers to, if any.
func parseExpr(expr string) (Predicate, string, error) {
	expr = strings.TrimSpace(expr)
	if rest, ok := strings.CutPrefix(expr, "!"); ok {
		p, ref, err := parseExpr(rest)
		if err != nil {
			return nil, "", err
		}
		return predicate.Not(p), ref, nil
	}

	switch expr {
	case "visible":
		return predicate.IsVisible[*World, domain.Trigger](), "", nil
	case "hidden":
		return predicate.IsHidden[*World, domain.Trigger](), "", nil
	case "always":
		return predicate.Always[*World, domain.Trigger](), "", nil
	case "":
		return nil, "", fmt.Errorf("empty predicate")
	}

	if value, ok := strings.CutPrefix(expr, "data="); ok {
		return predicate.OnTrigger[*World](func(t domain.Trigger) bool {
			return t.Data != nil && fmt.Sprint(t.Data) == value
		}), "", nil
	}

	if rest, ok := strings.CutPrefix(expr, "router:"); ok {
		name, want, found := strings.Cut(rest, ":")
		if !found || name == "" {
			return nil, "", fmt.Errorf("malformed predicate %q", expr)
		}
		var visible bool
		switch want {
		case "visible":
			visible = true
		case "hidden":
		default:
			return nil, "", fmt.Errorf("malformed predicate %q: expected visible or hidden", expr)
		}
		return predicate.OnState[*World, domain.Trigger](func(w *World) bool {
			return w.Visible(name) == visible
		}), name, nil
	}

	return nil, "", fmt.Errorf("unknown predicate %q", expr)
}
