package animate

import (
	"github.com/aretw0/kinetic/pkg/domain"
	"github.com/aretw0/kinetic/pkg/trigger"
)

// Follow drives c from src: the coordinator takes the source's current trigger
// and then every subsequent update, using the trigger's visibility.
// The returned function stops following.
func Follow[P any](c *Coordinator[P, domain.Trigger], src trigger.Source) (stop func()) {
	current := src.Current()
	c.SetTrigger(current, current.Visible)

	return src.Subscribe(func(u trigger.Update) {
		c.SetTrigger(u.Current, u.Current.Visible)
	})
}
