// Package fake provides a deterministic, in-memory implementation of every
// platform port, so dispatch-layer tests can exercise the seed scenarios in
// SPEC_FULL.md §8 without touching real accessibility/input APIs.
package fake

import (
	"context"
	"fmt"
	"sync"

	"axd/internal/action"
	"axd/internal/apperrors"
	"axd/internal/element"
	"axd/internal/platform"
)

// Node is a mutable in-memory accessibility node. Tests build a tree of
// these and install the root with SetTree.
type Node struct {
	Role      string
	Title     string
	Label     string
	Value     string
	Desc      string
	Frame     element.Frame
	Enabled   bool
	Focused   bool
	Actions   []string
	Children  []*Node
	Removed   bool // when true, the node is skipped by traversal (simulates disappearance)
}

func (n *Node) info(path []int) element.Info {
	return element.Info{
		Path:        element.Path{Index: append([]int{}, path...)},
		Role:        n.Role,
		Title:       n.Title,
		Label:       n.Label,
		Value:       n.Value,
		Description: n.Desc,
		Frame:       n.Frame,
		IsEnabled:   n.Enabled,
		IsFocused:   n.Focused,
		Actions:     n.Actions,
	}
}

// Recorded captures one call made through a targeted or global input port,
// or one accessibility mutation, for test assertions.
type Recorded struct {
	Kind     string // "click", "key", "scroll", "setValue", "press", "focus", ...
	PID      int32
	X, Y     float64
	Button   action.MouseButton
	Key      string
	Modifiers []action.Modifier
	Text     string
	Path     []int
	Value    string
}

// Adapters is the fake implementation of platform.Adapters' member ports,
// plus a call log and a pluggable clock-free process table.
type Adapters struct {
	mu    sync.Mutex
	roots map[int32]*Node
	procs map[int32]platform.ProcessInfo
	front platform.ProcessInfo
	menus map[int32]*Node

	Calls []Recorded

	accessibilityGranted   bool
	screenRecordingGranted bool
}

// New creates an empty fake adapter set.
func New() *Adapters {
	return &Adapters{
		roots:                  make(map[int32]*Node),
		procs:                  make(map[int32]platform.ProcessInfo),
		menus:                  make(map[int32]*Node),
		accessibilityGranted:   true,
		screenRecordingGranted: true,
	}
}

// SetMenuTree installs root as pid's menu-bar tree, consumed by MenuTree.
func (a *Adapters) SetMenuTree(pid int32, root *Node) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.menus[pid] = root
}

// SetTree installs root as pid's accessibility tree root.
func (a *Adapters) SetTree(pid int32, root *Node) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.roots[pid] = root
}

// SetProcess registers pid as a known/runnable process.
func (a *Adapters) SetProcess(p platform.ProcessInfo) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.procs[p.PID] = p
}

// SetFrontmost sets the process Frontmost() returns.
func (a *Adapters) SetFrontmost(p platform.ProcessInfo) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.front = p
}

// RemoveProcess drops pid from the process table, so IsAlive(pid) reports
// false — simulating the target application exiting.
func (a *Adapters) RemoveProcess(pid int32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.procs, pid)
}

// RemoveNode marks the node at path (relative to pid's root) as removed,
// simulating a UI element disappearing mid-poll.
func (a *Adapters) RemoveNode(pid int32, path []int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	root, ok := a.roots[pid]
	if !ok {
		return
	}
	n := root
	for _, idx := range path {
		if idx < 0 || idx >= len(n.Children) {
			return
		}
		n = n.Children[idx]
	}
	n.Removed = true
}

func (a *Adapters) record(r Recorded) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Calls = append(a.Calls, r)
}

func (a *Adapters) nodeAt(pid int32, path []int) (*Node, error) {
	a.mu.Lock()
	root, ok := a.roots[pid]
	a.mu.Unlock()
	if !ok {
		return nil, apperrors.Resolutionf("no accessibility tree for pid %d", pid)
	}

	cur := root
	for _, idx := range path {
		if cur.Removed || idx < 0 || idx >= len(cur.Children) {
			return nil, apperrors.Resolutionf("index %d out of range", idx)
		}
		cur = cur.Children[idx]
	}
	if cur.Removed {
		return nil, apperrors.Resolutionf("element no longer present")
	}
	return cur, nil
}

// --- ProcessDiscovery ---

func (a *Adapters) FindByNameOrBundleID(spec string) (platform.ProcessInfo, bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, p := range a.procs {
		if p.Name == spec || p.BundleID == spec {
			return p, true, nil
		}
	}
	return platform.ProcessInfo{}, false, nil
}

func (a *Adapters) Launch(spec string) (platform.ProcessInfo, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, p := range a.procs {
		if p.Name == spec || p.BundleID == spec {
			return p, nil
		}
	}
	return platform.ProcessInfo{}, fmt.Errorf("fake: no process registered for %q", spec)
}

func (a *Adapters) IsAlive(pid int32) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.procs[pid]
	return ok
}

func (a *Adapters) Frontmost() (platform.ProcessInfo, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.front.PID == 0 {
		return platform.ProcessInfo{}, fmt.Errorf("fake: no frontmost app set")
	}
	return a.front, nil
}

// --- PermissionProbe ---

func (a *Adapters) AccessibilityGranted() bool   { return a.accessibilityGranted }
func (a *Adapters) ScreenRecordingGranted() bool { return a.screenRecordingGranted }

// SetPermissions overrides both permission flags, for testing the
// permission-denied error paths.
func (a *Adapters) SetPermissions(accessibility, screenRecording bool) {
	a.accessibilityGranted = accessibility
	a.screenRecordingGranted = screenRecording
}

// --- GlobalInput ---

func (a *Adapters) Click(x, y float64, button action.MouseButton, clickCount int, mods []action.Modifier) error {
	a.record(Recorded{Kind: "click", X: x, Y: y, Button: button, Modifiers: mods})
	return nil
}

func (a *Adapters) KeyEvent(key string, mods []action.Modifier) error {
	a.record(Recorded{Kind: "key", Key: key, Modifiers: mods})
	return nil
}

func (a *Adapters) TypeText(text string, delayMs int) error {
	a.record(Recorded{Kind: "type", Text: text})
	return nil
}

func (a *Adapters) Scroll(x, y, deltaX, deltaY float64) error {
	a.record(Recorded{Kind: "scroll", X: deltaX, Y: deltaY})
	return nil
}

// --- TargetedInput ---

func (a *Adapters) KeyEventTargeted(pid int32, key string, mods []action.Modifier) error {
	a.record(Recorded{Kind: "key", PID: pid, Key: key, Modifiers: mods})
	return nil
}

func (a *Adapters) TypeTextTargeted(pid int32, text string, delayMs int) error {
	a.record(Recorded{Kind: "type", PID: pid, Text: text})
	return nil
}

func (a *Adapters) ScrollTargeted(pid int32, x, y, deltaX, deltaY float64) error {
	a.record(Recorded{Kind: "scroll", PID: pid, X: deltaX, Y: deltaY})
	return nil
}

// --- Accessibility ---

func (a *Adapters) Resolve(pid int32, path []int) (element.Info, error) {
	n, err := a.nodeAt(pid, path)
	if err != nil {
		return element.Info{}, err
	}
	info := n.info(path)
	info.Path.PID = pid
	return info, nil
}

func (a *Adapters) Walk(pid int32, path []int, maxDepth int) (element.Info, error) {
	n, err := a.nodeAt(pid, path)
	if err != nil {
		return element.Info{}, err
	}
	return a.walk(n, pid, path, 0, maxDepth), nil
}

func (a *Adapters) walk(n *Node, pid int32, path []int, depth, maxDepth int) element.Info {
	info := n.info(path)
	info.Path.PID = pid
	info.Depth = depth
	if depth >= maxDepth {
		return info
	}
	for i, child := range n.Children {
		if child.Removed {
			continue
		}
		childPath := append(append([]int{}, path...), i)
		info.Children = append(info.Children, a.walk(child, pid, childPath, depth+1, maxDepth))
	}
	return info
}

func (a *Adapters) Find(pid int32, path []int, q element.Query, maxResults int) ([]element.Info, error) {
	n, err := a.nodeAt(pid, path)
	if err != nil {
		return nil, err
	}
	var out []element.Info
	a.findRec(n, pid, path, q, &out, maxResults)
	return out, nil
}

func (a *Adapters) findRec(n *Node, pid int32, path []int, q element.Query, out *[]element.Info, maxResults int) {
	if n.Removed || len(*out) >= maxResults {
		return
	}
	info := n.info(path)
	info.Path.PID = pid
	if q.Match(info) {
		*out = append(*out, info)
		if len(*out) >= maxResults {
			return
		}
	}
	for i, child := range n.Children {
		childPath := append(append([]int{}, path...), i)
		a.findRec(child, pid, childPath, q, out, maxResults)
		if len(*out) >= maxResults {
			return
		}
	}
}

func (a *Adapters) Focused(pid int32) (element.Info, error) {
	a.mu.Lock()
	root, ok := a.roots[pid]
	a.mu.Unlock()
	if !ok {
		return element.Info{}, apperrors.Resolutionf("no accessibility tree for pid %d", pid)
	}
	var found *Node
	var foundPath []int
	var walk func(n *Node, path []int)
	walk = func(n *Node, path []int) {
		if found != nil || n.Removed {
			return
		}
		if n.Focused {
			found = n
			foundPath = append([]int{}, path...)
			return
		}
		for i, c := range n.Children {
			walk(c, append(append([]int{}, path...), i))
		}
	}
	walk(root, nil)
	if found == nil {
		return element.Info{}, apperrors.Resolutionf("no focused element")
	}
	info := found.info(foundPath)
	info.Path.PID = pid
	return info, nil
}

func (a *Adapters) Invoke(pid int32, path []int, act action.Kind, value string) error {
	n, err := a.nodeAt(pid, path)
	if err != nil {
		return err
	}
	if act == action.SetValue {
		if value == "" {
			return apperrors.Validationf("setValue requires a non-empty value")
		}
		n.Value = value
		a.record(Recorded{Kind: "setValue", PID: pid, Path: path, Value: value})
		return nil
	}
	if act == action.Focus {
		n.Focused = true
	}
	a.record(Recorded{Kind: string(act), PID: pid, Path: path})
	return nil
}

func (a *Adapters) MenuTree(pid int32, maxDepth int) (platform.MenuItemInfo, error) {
	a.mu.Lock()
	root, ok := a.menus[pid]
	a.mu.Unlock()
	if !ok {
		return platform.MenuItemInfo{}, apperrors.Resolutionf("fake: no menu tree registered for pid %d", pid)
	}
	return a.walkMenu(root, pid, nil, 0, maxDepth), nil
}

func (a *Adapters) walkMenu(n *Node, pid int32, path []int, depth, maxDepth int) platform.MenuItemInfo {
	item := platform.MenuItemInfo{
		Title:     n.Title,
		IsEnabled: n.Enabled,
		Path:      element.Path{PID: pid, Index: append([]int{}, path...)},
	}
	if depth >= maxDepth {
		return item
	}
	item.HasSubmenu = len(n.Children) > 0
	for i, child := range n.Children {
		childPath := append(append([]int{}, path...), i)
		item.Children = append(item.Children, a.walkMenu(child, pid, childPath, depth+1, maxDepth))
	}
	return item
}

// --- ScreenCapture ---

func (a *Adapters) ListDisplays() ([]platform.DisplayInfo, error) {
	return []platform.DisplayInfo{{ID: 1, Width: 1920, Height: 1080, Main: true}}, nil
}

func (a *Adapters) ListWindows() ([]platform.WindowInfo, error) {
	return nil, nil
}

func (a *Adapters) CaptureDisplay(displayID int, format string) (platform.Image, error) {
	return platform.Image{Format: format, Width: 1920, Height: 1080, Bytes: []byte("fake-png-bytes")}, nil
}

func (a *Adapters) CaptureWindow(windowID int, format string) (platform.Image, error) {
	return platform.Image{Format: format, Width: 800, Height: 600, Bytes: []byte("fake-png-bytes")}, nil
}

// --- Executor ---

// SyncExecutor runs submitted closures inline; the fake adapters have no
// thread-affinity requirement, but handlers submit through platform.Executor
// uniformly so the same dispatch code path runs under test and under the
// real darwin backend.
type SyncExecutor struct{}

func (SyncExecutor) Submit(ctx context.Context, fn func() (any, error)) (any, error) {
	return fn()
}

func (SyncExecutor) Close() {}

// targetedAdapter and globalAdapter let one *Adapters value satisfy both
// platform.GlobalInput and platform.TargetedInput, whose method sets
// collide on names (KeyEvent/TypeText/Scroll). Build() returns distinct
// thin wrappers for each.
type globalAdapter struct{ a *Adapters }

func (g globalAdapter) Click(x, y float64, b action.MouseButton, n int, m []action.Modifier) error {
	return g.a.Click(x, y, b, n, m)
}
func (g globalAdapter) KeyEvent(key string, mods []action.Modifier) error { return g.a.KeyEvent(key, mods) }
func (g globalAdapter) TypeText(text string, delayMs int) error           { return g.a.TypeText(text, delayMs) }
func (g globalAdapter) Scroll(x, y, dx, dy float64) error                 { return g.a.Scroll(x, y, dx, dy) }

type targetedAdapter struct{ a *Adapters }

func (t targetedAdapter) KeyEvent(pid int32, key string, mods []action.Modifier) error {
	return t.a.KeyEventTargeted(pid, key, mods)
}
func (t targetedAdapter) TypeText(pid int32, text string, delayMs int) error {
	return t.a.TypeTextTargeted(pid, text, delayMs)
}
func (t targetedAdapter) Scroll(pid int32, x, y, dx, dy float64) error {
	return t.a.ScrollTargeted(pid, x, y, dx, dy)
}

// Build assembles platform.Adapters from this fake, ready to hand to the
// dispatch server.
func (a *Adapters) Build() platform.Adapters {
	return platform.Adapters{
		Process:     a,
		Global:      globalAdapter{a},
		Targeted:    targetedAdapter{a},
		Accessible:  a,
		Capture:     a,
		Permissions: a,
		Executor:    SyncExecutor{},
	}
}
