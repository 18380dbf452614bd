package motion

import (
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/kinetic/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// Kinds accepted by Params.
const (
	KindTween   = "tween"
	KindFade    = "fade"
	KindFadeOut = "fade_out"
	KindSlide   = "slide"
	KindInstant = "instant"
	KindDelay   = "delay"
	KindFail    = "fail"
	KindNone    = "none"
)

// Params is the declarative form of an animation, as found in scene files.
type Params struct {
	Kind     string        `json:"kind" mapstructure:"kind"`
	Property string        `json:"property" mapstructure:"property"`
	From     float64       `json:"from" mapstructure:"from"`
	To       float64       `json:"to" mapstructure:"to"`
	Value    float64       `json:"value" mapstructure:"value"`
	Duration time.Duration `json:"duration" mapstructure:"duration"`
	Steps    int           `json:"steps" mapstructure:"steps"`
	Message  string        `json:"message" mapstructure:"message"`
}

// Decode converts a free-form map into Params. Durations may be given as
// strings ("150ms") or integer nanoseconds.
func Decode(raw map[string]any) (Params, error) {
	var p Params
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &p,
	})
	if err != nil {
		return p, err
	}
	if err := dec.Decode(raw); err != nil {
		return p, fmt.Errorf("failed to decode animation: %w", err)
	}
	return p, nil
}

// Build returns the animation described by p. A nil animation is returned for KindNone.
func (p Params) Build(ticker Ticker) (domain.Animation, error) {
	switch p.Kind {
	case KindTween:
		if p.Property == "" {
			return nil, fmt.Errorf("tween: property is required")
		}
		return Tween{Property: p.Property, From: p.From, To: p.To, Duration: p.Duration, Steps: p.Steps, Ticker: ticker}.Animation(), nil
	case KindFade:
		return Tween{Property: "opacity", From: 0, To: 1, Duration: p.Duration, Steps: p.Steps, Ticker: ticker}.Animation(), nil
	case KindFadeOut:
		return Tween{Property: "opacity", From: 1, To: 0, Duration: p.Duration, Steps: p.Steps, Ticker: ticker}.Animation(), nil
	case KindSlide:
		return Tween{Property: "x", From: p.From, To: p.To, Duration: p.Duration, Steps: p.Steps, Ticker: ticker}.Animation(), nil
	case KindInstant:
		prop := p.Property
		if prop == "" {
			prop = "opacity"
		}
		return Instant(prop, p.Value), nil
	case KindDelay:
		return Delay(p.Duration), nil
	case KindFail:
		msg := p.Message
		if msg == "" {
			msg = "animation failed"
		}
		return Fail(errors.New(msg)), nil
	case KindNone:
		return nil, nil
	case "":
		return nil, fmt.Errorf("animation kind is required")
	default:
		return nil, fmt.Errorf("unknown animation kind %q", p.Kind)
	}
}
