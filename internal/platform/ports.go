// Package platform defines the ports axd's dispatch and lifecycle layers
// depend on, plus the main-thread executor that serializes every call into
// them. Concrete implementations live in adapters_darwin.go (the real OS
// facilities) and adapters_other.go (an unsupported-platform stub); a
// deterministic in-memory implementation for tests lives in ./fake.
package platform

import (
	"axd/internal/action"
	"axd/internal/element"
)

// ProcessInfo describes one running (or just-launched) application.
type ProcessInfo struct {
	PID      int32
	Name     string
	BundleID string
}

// DisplayInfo describes one physical display.
type DisplayInfo struct {
	ID     int
	Width  int
	Height int
	Main   bool
}

// WindowInfo is an enumerated window snapshot.
type WindowInfo struct {
	ID          int
	Title       string
	OwnerName   string
	OwnerBundle string
	OwnerPID    int32
	Frame       element.Frame
	IsOnScreen  bool
}

// MenuItemInfo is one node of a menu tree. Path is excluded from the wire
// format — /menu GET is display-only — but /menu POST uses it internally to
// press the matched item once a title path resolves.
type MenuItemInfo struct {
	Title      string         `json:"title"`
	IsEnabled  bool           `json:"is_enabled"`
	HasSubmenu bool           `json:"has_submenu"`
	Shortcut   string         `json:"shortcut,omitempty"`
	Children   []MenuItemInfo `json:"children,omitempty"`
	Path       element.Path   `json:"-"`
}

// Image is a captured, already-encoded screen or window image.
type Image struct {
	Format string // "png" or "jpeg"
	Width  int
	Height int
	Bytes  []byte
}

// ProcessDiscovery enumerates and launches applications and observes their
// liveness. The darwin Launch blocks for up to 5 s while a bundle-path launch
// completes and returns at once for a by-name launch; no readiness poll
// follows Launch, here or in the lifecycle coordinator.
type ProcessDiscovery interface {
	// FindByNameOrBundleID returns the first running process whose display
	// name (case-insensitive) or bundle id matches spec.
	FindByNameOrBundleID(spec string) (ProcessInfo, bool, error)
	// Launch opens an app by bundle path or by a by-name "open" facility.
	Launch(spec string) (ProcessInfo, error)
	// IsAlive reports whether pid still names a live process.
	IsAlive(pid int32) bool
	// Frontmost returns the currently-active application.
	Frontmost() (ProcessInfo, error)
}

// GlobalInput synthesizes input events through the OS's foreground stream.
type GlobalInput interface {
	Click(x, y float64, button action.MouseButton, clickCount int, mods []action.Modifier) error
	KeyEvent(key string, mods []action.Modifier) error
	TypeText(text string, delayMs int) error
	Scroll(x, y, deltaX, deltaY float64) error
}

// TargetedInput delivers the same events to a specific pid's event stream,
// bypassing focus.
type TargetedInput interface {
	KeyEvent(pid int32, key string, mods []action.Modifier) error
	TypeText(pid int32, text string, delayMs int) error
	Scroll(pid int32, x, y, deltaX, deltaY float64) error
}

// Accessibility is the accessibility-tree facade: resolution, traversal,
// attribute reads, and action invocation.
type Accessibility interface {
	// Resolve navigates a path (an index chase from the app root) and
	// returns a descriptor for the node it lands on.
	Resolve(pid int32, path []int) (element.Info, error)
	// Walk returns the tree rooted at path (or the app root when path is
	// nil), expanded maxDepth levels.
	Walk(pid int32, path []int, maxDepth int) (element.Info, error)
	// Find performs a depth-first traversal rooted at path, collecting
	// nodes the query matches, up to maxResults.
	Find(pid int32, path []int, q element.Query, maxResults int) ([]element.Info, error)
	// Focused returns the application's currently-focused node.
	Focused(pid int32) (element.Info, error)
	// Invoke dispatches an accessibility action to a node; value is only
	// meaningful (and required) for action.SetValue.
	Invoke(pid int32, path []int, act action.Kind, value string) error
	// MenuTree returns the application's menu bar, expanded to maxDepth.
	MenuTree(pid int32, maxDepth int) (MenuItemInfo, error)
}

// ScreenCapture enumerates displays/windows and rasterizes them.
type ScreenCapture interface {
	ListDisplays() ([]DisplayInfo, error)
	ListWindows() ([]WindowInfo, error)
	CaptureDisplay(displayID int, format string) (Image, error)
	CaptureWindow(windowID int, format string) (Image, error)
}

// PermissionProbe reports OS entitlements. It only reports them; it has no
// way to open the system settings for granting one.
type PermissionProbe interface {
	AccessibilityGranted() bool
	ScreenRecordingGranted() bool
}

// Adapters bundles every port the dispatch layer needs. A single main-thread
// Executor underlies all of them on the real (cgo) implementation.
type Adapters struct {
	Process     ProcessDiscovery
	Global      GlobalInput
	Targeted    TargetedInput
	Accessible  Accessibility
	Capture     ScreenCapture
	Permissions PermissionProbe
	Executor    Executor
}
