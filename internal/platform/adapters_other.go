//go:build !darwin

package platform

import (
	"fmt"

	"axd/internal/action"
	"axd/internal/element"
)

// On non-darwin platforms axd has no accessibility/input backend to call
// into — the core's platform capabilities (§6) are macOS-specific by
// definition. These stubs let the rest of the module build and let the
// dispatch layer report a uniform "unsupported platform" adapter failure
// rather than failing to link.
var errUnsupportedPlatform = fmt.Errorf("axd: unsupported platform; accessibility and input synthesis are macOS-only")

type unsupportedProcessDiscovery struct{}

// NewProcessDiscovery returns the unsupported-platform stub.
func NewProcessDiscovery() ProcessDiscovery { return unsupportedProcessDiscovery{} }

func (unsupportedProcessDiscovery) FindByNameOrBundleID(string) (ProcessInfo, bool, error) {
	return ProcessInfo{}, false, errUnsupportedPlatform
}
func (unsupportedProcessDiscovery) Launch(string) (ProcessInfo, error) {
	return ProcessInfo{}, errUnsupportedPlatform
}
func (unsupportedProcessDiscovery) IsAlive(int32) bool { return false }
func (unsupportedProcessDiscovery) Frontmost() (ProcessInfo, error) {
	return ProcessInfo{}, errUnsupportedPlatform
}

type unsupportedPermissionProbe struct{}

// NewPermissionProbe returns the unsupported-platform stub.
func NewPermissionProbe() PermissionProbe { return unsupportedPermissionProbe{} }

func (unsupportedPermissionProbe) AccessibilityGranted() bool   { return false }
func (unsupportedPermissionProbe) ScreenRecordingGranted() bool { return false }

type unsupportedGlobalInput struct{}

// NewGlobalInput returns the unsupported-platform stub.
func NewGlobalInput() GlobalInput { return unsupportedGlobalInput{} }

func (unsupportedGlobalInput) Click(float64, float64, action.MouseButton, int, []action.Modifier) error {
	return errUnsupportedPlatform
}
func (unsupportedGlobalInput) KeyEvent(string, []action.Modifier) error { return errUnsupportedPlatform }
func (unsupportedGlobalInput) TypeText(string, int) error               { return errUnsupportedPlatform }
func (unsupportedGlobalInput) Scroll(float64, float64, float64, float64) error {
	return errUnsupportedPlatform
}

type unsupportedTargetedInput struct{}

// NewTargetedInput returns the unsupported-platform stub.
func NewTargetedInput() TargetedInput { return unsupportedTargetedInput{} }

func (unsupportedTargetedInput) KeyEvent(int32, string, []action.Modifier) error {
	return errUnsupportedPlatform
}
func (unsupportedTargetedInput) TypeText(int32, string, int) error { return errUnsupportedPlatform }
func (unsupportedTargetedInput) Scroll(int32, float64, float64, float64, float64) error {
	return errUnsupportedPlatform
}

type unsupportedAccessibility struct{}

// NewAccessibility returns the unsupported-platform stub.
func NewAccessibility() Accessibility { return unsupportedAccessibility{} }

func (unsupportedAccessibility) Resolve(int32, []int) (element.Info, error) {
	return element.Info{}, errUnsupportedPlatform
}
func (unsupportedAccessibility) Walk(int32, []int, int) (element.Info, error) {
	return element.Info{}, errUnsupportedPlatform
}
func (unsupportedAccessibility) Find(int32, []int, element.Query, int) ([]element.Info, error) {
	return nil, errUnsupportedPlatform
}
func (unsupportedAccessibility) Focused(int32) (element.Info, error) {
	return element.Info{}, errUnsupportedPlatform
}
func (unsupportedAccessibility) Invoke(int32, []int, action.Kind, string) error {
	return errUnsupportedPlatform
}
func (unsupportedAccessibility) MenuTree(int32, int) (MenuItemInfo, error) {
	return MenuItemInfo{}, errUnsupportedPlatform
}

type unsupportedScreenCapture struct{}

// NewScreenCapture returns the unsupported-platform stub.
func NewScreenCapture() ScreenCapture { return unsupportedScreenCapture{} }

func (unsupportedScreenCapture) ListDisplays() ([]DisplayInfo, error) {
	return nil, errUnsupportedPlatform
}
func (unsupportedScreenCapture) ListWindows() ([]WindowInfo, error) {
	return nil, errUnsupportedPlatform
}
func (unsupportedScreenCapture) CaptureDisplay(int, string) (Image, error) {
	return Image{}, errUnsupportedPlatform
}
func (unsupportedScreenCapture) CaptureWindow(int, string) (Image, error) {
	return Image{}, errUnsupportedPlatform
}
