// Package trigger provides the producers that feed coordinators with new
// trigger values.
//
// A Source emits a domain.Trigger every time its visibility or payload changes.
// Router is the in-memory implementation driven by Show, Hide and Set.
package trigger

import "github.com/aretw0/kinetic/pkg/domain"

// Update is delivered to subscribers when a source changes.
type Update struct {
	Source  string
	Current domain.Trigger
}

// Source produces triggers.
type Source interface {
	// Name identifies the source.
	Name() string
	// Current returns the latest trigger.
	Current() domain.Trigger
	// Subscribe registers fn for every subsequent update and returns the
	// function that removes it.
	Subscribe(fn func(Update)) (unsubscribe func())
}
