// Package action defines the small closed-set enums threaded through the
// dispatch and platform-adapter layers: accessibility actions, keyboard
// modifiers, mouse buttons, typing modes, and wait conditions.
package action

import (
	"fmt"
	"strings"
)

// Kind is the closed set of semantic accessibility actions.
type Kind string

const (
	Press     Kind = "press"
	SetValue  Kind = "setValue"
	Focus     Kind = "focus"
	Confirm   Kind = "confirm"
	Cancel    Kind = "cancel"
	Increment Kind = "increment"
	Decrement Kind = "decrement"
	ShowMenu  Kind = "showMenu"
	Pick      Kind = "pick"
)

var validKinds = map[Kind]bool{
	Press: true, SetValue: true, Focus: true, Confirm: true, Cancel: true,
	Increment: true, Decrement: true, ShowMenu: true, Pick: true,
}

// ParseKind validates a string against the ActionKind enum.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !validKinds[k] {
		return "", fmt.Errorf("unknown action %q", s)
	}
	return k, nil
}

// Modifier is the closed set of keyboard modifiers.
type Modifier string

const (
	Cmd   Modifier = "cmd"
	Ctrl  Modifier = "ctrl"
	Alt   Modifier = "alt"
	Shift Modifier = "shift"
	Fn    Modifier = "fn"
)

// modifierAliases maps common alternate spellings onto the canonical set.
var modifierAliases = map[string]Modifier{
	"cmd": Cmd, "command": Cmd, "meta": Cmd, "super": Cmd,
	"ctrl": Ctrl, "control": Ctrl,
	"alt": Alt, "option": Alt, "opt": Alt,
	"shift": Shift,
	"fn":    Fn, "function": Fn,
}

// ParseModifier resolves a modifier name (including aliases) to its
// canonical form.
func ParseModifier(s string) (Modifier, error) {
	m, ok := modifierAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("unknown modifier %q", s)
	}
	return m, nil
}

// ParseModifiers resolves a list, preserving order and rejecting unknowns.
func ParseModifiers(in []string) ([]Modifier, error) {
	out := make([]Modifier, 0, len(in))
	for _, s := range in {
		m, err := ParseModifier(s)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// MouseButton is the closed set of synthesizable mouse buttons.
type MouseButton string

const (
	ButtonLeft   MouseButton = "left"
	ButtonRight  MouseButton = "right"
	ButtonCenter MouseButton = "center"
)

// ParseMouseButton validates and defaults to ButtonLeft when s is empty.
func ParseMouseButton(s string) (MouseButton, error) {
	if s == "" {
		return ButtonLeft, nil
	}
	switch MouseButton(s) {
	case ButtonLeft, ButtonRight, ButtonCenter:
		return MouseButton(s), nil
	default:
		return "", fmt.Errorf("unknown mouse button %q", s)
	}
}

// TypeMode selects /type's text-insertion strategy.
type TypeMode string

const (
	ModeReplace TypeMode = "replace"
	ModeKeys    TypeMode = "keys"
)

// ParseTypeMode validates and defaults to ModeReplace when s is empty.
func ParseTypeMode(s string) (TypeMode, error) {
	if s == "" {
		return ModeReplace, nil
	}
	switch TypeMode(s) {
	case ModeReplace, ModeKeys:
		return TypeMode(s), nil
	default:
		return "", fmt.Errorf("mode must be %q or %q, got %q", ModeReplace, ModeKeys, s)
	}
}

// WaitCondition is /wait's polling predicate.
type WaitCondition string

const (
	ConditionExists    WaitCondition = "exists"
	ConditionNotExists WaitCondition = "not_exists"
	ConditionEnabled   WaitCondition = "enabled"
	ConditionFocused   WaitCondition = "focused"
)

// ParseWaitCondition validates and defaults to ConditionExists when s is empty.
func ParseWaitCondition(s string) (WaitCondition, error) {
	if s == "" {
		return ConditionExists, nil
	}
	switch WaitCondition(s) {
	case ConditionExists, ConditionNotExists, ConditionEnabled, ConditionFocused:
		return WaitCondition(s), nil
	default:
		return "", fmt.Errorf("unknown wait condition %q", s)
	}
}

// KeyToAction maps the fixed set of keys /key accepts when targeting an
// element path (with or without a pid) onto accessibility actions, per §4.1.
var KeyToAction = map[string]Kind{
	"return": Confirm,
	"enter":  Confirm,
	"escape": Cancel,
	"space":  Press,
}
