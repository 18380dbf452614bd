package domain

// Trigger is the payload emitted by a trigger source (typically a router).
// The coordinator only reads Visible and compares the whole value structurally;
// ActionCount is informational.
type Trigger struct {
	Visible     bool `json:"visible" yaml:"visible"`
	Data        any  `json:"data,omitempty" yaml:"data,omitempty"`
	ActionCount int  `json:"action_count" yaml:"action_count"`
}
