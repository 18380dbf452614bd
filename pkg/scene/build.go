package scene

import (
	"fmt"

	"github.com/aretw0/kinetic"
	"github.com/aretw0/kinetic/pkg/animate"
	"github.com/aretw0/kinetic/pkg/domain"
	"github.com/aretw0/kinetic/pkg/motion"
	"github.com/aretw0/kinetic/pkg/predicate"
	"github.com/aretw0/kinetic/pkg/trigger"
)

// Coordinator is the coordinator type scenes build.
type Coordinator = animate.Coordinator[*World, domain.Trigger]

// BuildOption configures Build.
type BuildOption func(*buildConfig)

type buildConfig struct {
	ticker motion.Ticker
	opts   []animate.Option
}

// WithTicker sets the clock tweens run on. Defaults to real time.
func WithTicker(t motion.Ticker) BuildOption {
	return func(c *buildConfig) {
		c.ticker = t
	}
}

// WithCoordinatorOptions passes opts to every coordinator.
func WithCoordinatorOptions(opts ...animate.Option) BuildOption {
	return func(c *buildConfig) {
		c.opts = append(c.opts, opts...)
	}
}

// Built is a scene instantiated on a stage.
type Built struct {
	Scene *Scene
	Stage *kinetic.Stage
	World *World
	Roots []*Coordinator

	nodes map[string]*Coordinator
	boxes map[string]*animate.Box
	order []string
	stops []func()
}

// Build registers the scene's routers on stage and creates one coordinator per node,
// each following its router. Nothing is mounted until Mount is called.
func Build(stage *kinetic.Stage, sc *Scene, opts ...BuildOption) (*Built, error) {
	if err := Validate(sc); err != nil {
		return nil, err
	}
	cfg := buildConfig{ticker: motion.RealTime{}}
	for _, opt := range opts {
		opt(&cfg)
	}

	for _, r := range sc.Routers {
		if _, err := stage.Routers().Register(r.Name, trigger.WithInitial(r.Visible, r.Data)); err != nil {
			return nil, fmt.Errorf("failed to register router: %w", err)
		}
	}

	b := &Built{
		Scene: sc,
		Stage: stage,
		World: NewWorld(stage.Routers()),
		nodes: make(map[string]*Coordinator),
		boxes: make(map[string]*animate.Box),
	}
	for _, n := range sc.Nodes {
		c, err := b.build(n, "", cfg)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.Roots = append(b.Roots, c)
	}

	stage.Logger().Info("scene built", "scene", sc.Name, "nodes", len(b.order))
	return b, nil
}

func (b *Built) build(n Node, inherited string, cfg buildConfig) (*Coordinator, error) {
	routerName := n.Router
	if routerName == "" {
		routerName = inherited
	}
	router, err := b.Stage.Routers().Get(routerName)
	if err != nil {
		return nil, &SceneError{Path: n.ID, Err: err}
	}

	children := make([]animate.Child, 0, len(n.Children))
	for _, child := range n.Children {
		c, err := b.build(child, routerName, cfg)
		if err != nil {
			return nil, err
		}
		children = append(children, c)
	}

	clauses, err := compileClauses(n, cfg.ticker)
	if err != nil {
		return nil, err
	}

	box := &animate.Box{Style: n.Style, Children: children}
	c := kinetic.NewCoordinator(b.Stage, animate.Props[*World, domain.Trigger]{
		Name:                   n.Name,
		ID:                     n.ID,
		PredicateState:         b.World,
		When:                   clauses,
		Child:                  box,
		KeepOnHide:             n.KeepOnHide,
		EnterAfterParentStart:  n.EnterAfterParentStart,
		EnterAfterParentFinish: n.EnterAfterParentFinish,
		ExitAfterChildStart:    n.ExitAfterChildStart,
		ExitAfterChildFinish:   n.ExitAfterChildFinish,
	}, cfg.opts...)

	b.stops = append(b.stops, animate.Follow(c, router))
	b.nodes[n.ID] = c
	b.boxes[n.ID] = box
	b.order = append(b.order, n.ID)
	return c, nil
}

func compileClauses(n Node, ticker motion.Ticker) ([]predicate.Clause[*World, domain.Trigger], error) {
	clauses := make([]predicate.Clause[*World, domain.Trigger], 0, len(n.When))
	for i, w := range n.When {
		preds := make([]Predicate, 0, len(w.If))
		for _, expr := range w.If {
			p, err := ParsePredicate(expr)
			if err != nil {
				return nil, &SceneError{Path: fmt.Sprintf("%s.when[%d]", n.ID, i), Err: err}
			}
			preds = append(preds, p)
		}

		params, err := motion.Decode(w.Animation)
		if err != nil {
			return nil, &SceneError{Path: fmt.Sprintf("%s.when[%d]", n.ID, i), Err: err}
		}
		anim, err := params.Build(ticker)
		if err != nil {
			return nil, &SceneError{Path: fmt.Sprintf("%s.when[%d]", n.ID, i), Err: err}
		}
		clauses = append(clauses, predicate.WhenAll(preds, anim))
	}
	return clauses, nil
}

// Mount mounts every root coordinator.
func (b *Built) Mount() {
	for _, c := range b.Roots {
		c.Mount()
	}
}

// Close stops following routers and unmounts the roots.
func (b *Built) Close() {
	for _, stop := range b.stops {
		stop()
	}
	b.stops = nil
	for _, c := range b.Roots {
		c.Unmount()
	}
}

// Node returns the coordinator built for the node id.
func (b *Built) Node(id string) (*Coordinator, bool) {
	c, ok := b.nodes[id]
	return c, ok
}

// Box returns the element of the node id.
func (b *Built) Box(id string) (*animate.Box, bool) {
	box, ok := b.boxes[id]
	return box, ok
}

// IDs returns every node id, children before their parent.
func (b *Built) IDs() []string {
	return append([]string(nil), b.order...)
}

// Settled reports whether no work is queued and every mounted coordinator has
// finished its cycle.
func (b *Built) Settled() bool {
	if b.Stage.Scheduler().Pending() > 0 {
		return false
	}
	for _, c := range b.nodes {
		if c.Mounted() && !c.Current().Settled() {
			return false
		}
	}
	return true
}

// States returns the current lifecycle state of every node.
func (b *Built) States() map[string]domain.LifecycleState {
	out := make(map[string]domain.LifecycleState, len(b.nodes))
	for id, c := range b.nodes {
		out[id] = c.Current()
	}
	return out
}
