package dto

// Scene is the on-disk description of an animated tree.
// It uses "mapstructure" tags so it can also be decoded from generic maps
// (e.g. a scene posted as JSON to the server).
type Scene struct {
	Name    string   `json:"name" yaml:"name" mapstructure:"name"`
	Routers []Router `json:"routers" yaml:"routers" mapstructure:"routers"`
	Nodes   []Node   `json:"nodes" yaml:"nodes" mapstructure:"nodes"`
	Script  []Step   `json:"script,omitempty" yaml:"script,omitempty" mapstructure:"script"`
}

// Router declares a named trigger source and its initial trigger.
type Router struct {
	Name    string `json:"name" yaml:"name" mapstructure:"name"`
	Visible bool   `json:"visible" yaml:"visible" mapstructure:"visible"`
	Data    any    `json:"data,omitempty" yaml:"data,omitempty" mapstructure:"data"`
}

// Node is an animated element. Children are bound to it through the animation binding.
type Node struct {
	ID     string `json:"id" yaml:"id" mapstructure:"id"`
	Name   string `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	Router string `json:"router,omitempty" yaml:"router,omitempty" mapstructure:"router"`

	KeepOnHide             bool     `json:"keep_on_hide,omitempty" yaml:"keep_on_hide,omitempty" mapstructure:"keep_on_hide"`
	EnterAfterParentStart  bool     `json:"enter_after_parent_start,omitempty" yaml:"enter_after_parent_start,omitempty" mapstructure:"enter_after_parent_start"`
	EnterAfterParentFinish bool     `json:"enter_after_parent_finish,omitempty" yaml:"enter_after_parent_finish,omitempty" mapstructure:"enter_after_parent_finish"`
	ExitAfterChildStart    []string `json:"exit_after_child_start,omitempty" yaml:"exit_after_child_start,omitempty" mapstructure:"exit_after_child_start"`
	ExitAfterChildFinish   []string `json:"exit_after_child_finish,omitempty" yaml:"exit_after_child_finish,omitempty" mapstructure:"exit_after_child_finish"`

	Style    map[string]float64 `json:"style,omitempty" yaml:"style,omitempty" mapstructure:"style"`
	When     []Clause           `json:"when" yaml:"when" mapstructure:"when"`
	Children []Node             `json:"children,omitempty" yaml:"children,omitempty" mapstructure:"children"`
}

// Clause pairs predicate expressions (all must hold) with animation parameters.
type Clause struct {
	If        []string       `json:"if,omitempty" yaml:"if,omitempty" mapstructure:"if"`
	Animation map[string]any `json:"animation" yaml:"animation" mapstructure:"animation"`
}

// Step is one scripted router change.
type Step struct {
	// After is the delay since the previous step, as a duration string ("300ms").
	After  string `json:"after,omitempty" yaml:"after,omitempty" mapstructure:"after"`
	Router string `json:"router" yaml:"router" mapstructure:"router"`
	// Action is one of show, hide or set.
	Action  string `json:"action" yaml:"action" mapstructure:"action"`
	Visible bool   `json:"visible,omitempty" yaml:"visible,omitempty" mapstructure:"visible"`
	Data    any    `json:"data,omitempty" yaml:"data,omitempty" mapstructure:"data"`
}
