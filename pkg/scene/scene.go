package scene

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/kinetic/internal/dto"
	"github.com/aretw0/kinetic/pkg/motion"
	"gopkg.in/yaml.v3"
)

// Scene is a parsed scene file.
type Scene = dto.Scene

// Node is a node of a scene tree.
type Node = dto.Node

// Step is a scripted router change.
type Step = dto.Step

// Script actions.
const (
	ActionShow = "show"
	ActionHide = "hide"
	ActionSet  = "set"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid scene")

// SceneError locates a problem inside a scene.
type SceneError struct {
	Path string
	Err  error
}

func (e *SceneError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *SceneError) Unwrap() error {
	return e.Err
}

// Load reads and validates a scene file. Files ending in .json are decoded as
// JSON, everything else as YAML. A scene without a name is named after its file.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene: %w", err)
	}

	var sc *Scene
	if strings.EqualFold(filepath.Ext(path), ".json") {
		sc, err = ParseJSON(data)
	} else {
		sc, err = Parse(data)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	if sc.Name == "" {
		sc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return sc, nil
}

// Parse decodes and validates a YAML scene.
func Parse(data []byte) (*Scene, error) {
	var sc Scene
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("failed to parse scene: %w", err)
	}
	if err := Validate(&sc); err != nil {
		return nil, err
	}
	return &sc, nil
}

// ParseJSON decodes and validates a JSON scene.
func ParseJSON(data []byte) (*Scene, error) {
	var sc Scene
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("failed to parse scene: %w", err)
	}
	if err := Validate(&sc); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate reports every problem found in sc, joined. Each one is a *SceneError
// wrapping ErrInvalid.
func Validate(sc *Scene) error {
	v := &validator{
		routers: make(map[string]bool),
		ids:     make(map[string]string),
	}

	for i, r := range sc.Routers {
		path := fmt.Sprintf("routers[%d]", i)
		switch {
		case r.Name == "":
			v.fail(path, "name is required")
		case v.routers[r.Name]:
			v.fail(path, "duplicate router %q", r.Name)
		default:
			v.routers[r.Name] = true
		}
	}

	if len(sc.Nodes) == 0 {
		v.fail("nodes", "at least one node is required")
	}
	for i, n := range sc.Nodes {
		v.node(fmt.Sprintf("nodes[%d]", i), n, "")
	}

	for i, s := range sc.Script {
		v.step(fmt.Sprintf("script[%d]", i), s)
	}

	return errors.Join(v.errs...)
}

type validator struct {
	routers map[string]bool
	ids     map[string]string
	errs    []error
}

func (v *validator) fail(path, format string, args ...any) {
	v.errs = append(v.errs, &SceneError{
		Path: path,
		Err:  fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...)),
	})
}

func (v *validator) node(path string, n Node, inherited string) {
	switch {
	case n.ID == "":
		v.fail(path, "id is required")
	case v.ids[n.ID] != "":
		v.fail(path, "duplicate id %q (also at %s)", n.ID, v.ids[n.ID])
	default:
		v.ids[n.ID] = path
	}

	router := n.Router
	if router == "" {
		router = inherited
	}
	switch {
	case router == "":
		v.fail(path, "router is required")
	case !v.routers[router]:
		v.fail(path, "unknown router %q", router)
	}

	if n.EnterAfterParentStart && n.EnterAfterParentFinish {
		v.fail(path, "enter_after_parent_start and enter_after_parent_finish are exclusive")
	}

	children := make(map[string]bool, len(n.Children))
	for _, c := range n.Children {
		children[c.ID] = true
	}
	for _, id := range append(append([]string{}, n.ExitAfterChildStart...), n.ExitAfterChildFinish...) {
		if !children[id] {
			v.fail(path, "exit ordering references %q which is not a direct child", id)
		}
	}

	for i, c := range n.When {
		cpath := fmt.Sprintf("%s.when[%d]", path, i)
		for j, expr := range c.If {
			_, ref, err := parseExpr(expr)
			if err != nil {
				v.fail(fmt.Sprintf("%s.if[%d]", cpath, j), "%v", err)
				continue
			}
			if ref != "" && !v.routers[ref] {
				v.fail(fmt.Sprintf("%s.if[%d]", cpath, j), "unknown router %q", ref)
			}
		}
		params, err := motion.Decode(c.Animation)
		if err != nil {
			v.fail(cpath+".animation", "%v", err)
			continue
		}
		if _, err := params.Build(nil); err != nil {
			v.fail(cpath+".animation", "%v", err)
		}
	}

	for i, c := range n.Children {
		v.node(fmt.Sprintf("%s.children[%d]", path, i), c, router)
	}
}

func (v *validator) step(path string, s Step) {
	if s.After != "" {
		if d, err := time.ParseDuration(s.After); err != nil || d < 0 {
			v.fail(path, "invalid delay %q", s.After)
		}
	}
	if !v.routers[s.Router] {
		v.fail(path, "unknown router %q", s.Router)
	}
	switch s.Action {
	case ActionShow, ActionHide, ActionSet:
	default:
		v.fail(path, "unknown action %q", s.Action)
	}
}
