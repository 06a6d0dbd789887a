//go:build darwin

package platform

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework ApplicationServices -framework Foundation -framework AppKit -framework CoreGraphics -framework ImageIO -framework UniformTypeIdentifiers

#include <ApplicationServices/ApplicationServices.h>
#include <AppKit/AppKit.h>
#include <ImageIO/ImageIO.h>
#include <stdlib.h>
#include <string.h>

// ============================================================================
// Process discovery via NSWorkspace
// ============================================================================

typedef struct {
	int32_t pid;
	char *name;
	char *bundleID;
} axdProcessInfo;

static axdProcessInfo axdFindRunningApp(const char *spec) {
	axdProcessInfo out = {0, NULL, NULL};
	@autoreleasepool {
		NSString *needle = [NSString stringWithUTF8String:spec];
		NSArray<NSRunningApplication *> *apps = [[NSWorkspace sharedWorkspace] runningApplications];
		for (NSRunningApplication *app in apps) {
			NSString *name = app.localizedName ?: @"";
			NSString *bundle = app.bundleIdentifier ?: @"";
			if ([name caseInsensitiveCompare:needle] == NSOrderedSame ||
			    [bundle caseInsensitiveCompare:needle] == NSOrderedSame) {
				out.pid = (int32_t)app.processIdentifier;
				out.name = strdup([name UTF8String]);
				out.bundleID = strdup([bundle UTF8String]);
				break;
			}
		}
	}
	return out;
}

static axdProcessInfo axdFrontmostApp(void) {
	axdProcessInfo out = {0, NULL, NULL};
	@autoreleasepool {
		NSRunningApplication *app = [[NSWorkspace sharedWorkspace] frontmostApplication];
		if (app) {
			out.pid = (int32_t)app.processIdentifier;
			out.name = strdup([(app.localizedName ?: @"") UTF8String]);
			out.bundleID = strdup([(app.bundleIdentifier ?: @"") UTF8String]);
		}
	}
	return out;
}

static int axdLaunchApp(const char *spec, axdProcessInfo *result) {
	@autoreleasepool {
		NSString *specStr = [NSString stringWithUTF8String:spec];
		NSWorkspace *ws = [NSWorkspace sharedWorkspace];
		NSRunningApplication *launched = nil;
		NSError *err = nil;

		if ([specStr hasSuffix:@".app"]) {
			NSURL *url = [NSURL fileURLWithPath:specStr];
			NSWorkspaceOpenConfiguration *cfg = [NSWorkspaceOpenConfiguration configuration];
			// Synchronous launch: block this call (already off the Go main
			// goroutine, on the executor thread) until NSWorkspace resolves it.
			dispatch_semaphore_t sem = dispatch_semaphore_create(0);
			__block NSRunningApplication *blockApp = nil;
			__block NSError *blockErr = nil;
			[ws openApplicationAtURL:url configuration:cfg completionHandler:^(NSRunningApplication *app, NSError *error) {
				blockApp = app;
				blockErr = error;
				dispatch_semaphore_signal(sem);
			}];
			dispatch_semaphore_wait(sem, dispatch_time(DISPATCH_TIME_NOW, 5LL * NSEC_PER_SEC));
			launched = blockApp;
			err = blockErr;
		} else {
			launched = [ws launchApplication:specStr] ? [ws frontmostApplication] : nil;
		}

		if (err != nil || launched == nil) {
			return -1;
		}

		result->pid = (int32_t)launched.processIdentifier;
		result->name = strdup([(launched.localizedName ?: @"") UTF8String]);
		result->bundleID = strdup([(launched.bundleIdentifier ?: @"") UTF8String]);
		return 0;
	}
}

static int axdIsAlive(int32_t pid) {
	@autoreleasepool {
		for (NSRunningApplication *app in [[NSWorkspace sharedWorkspace] runningApplications]) {
			if ((int32_t)app.processIdentifier == pid) {
				return app.terminated ? 0 : 1;
			}
		}
		return 0;
	}
}

// ============================================================================
// Permission probes
// ============================================================================

static int axdAccessibilityTrusted(void) {
	return AXIsProcessTrusted() ? 1 : 0;
}

// ============================================================================
// Global and process-targeted input synthesis
// ============================================================================

static CGEventFlags axdModifierFlags(const char *mods) {
	CGEventFlags flags = 0;
	if (strstr(mods, "cmd")) flags |= kCGEventFlagMaskCommand;
	if (strstr(mods, "ctrl")) flags |= kCGEventFlagMaskControl;
	if (strstr(mods, "alt")) flags |= kCGEventFlagMaskAlternate;
	if (strstr(mods, "shift")) flags |= kCGEventFlagMaskShift;
	if (strstr(mods, "fn")) flags |= kCGEventFlagMaskSecondaryFn;
	return flags;
}

static void axdPostOrTarget(CGEventRef event, int32_t pid) {
	if (pid > 0) {
		CGEventPostToPid((pid_t)pid, event);
	} else {
		CGEventPost(kCGHIDEventTap, event);
	}
}

static void axdClick(double x, double y, int button, int clickCount, const char *mods, int32_t pid) {
	CGEventType downType = kCGEventLeftMouseDown, upType = kCGEventLeftMouseUp;
	CGMouseButton cgButton = kCGMouseButtonLeft;
	if (button == 1) { downType = kCGEventRightMouseDown; upType = kCGEventRightMouseUp; cgButton = kCGMouseButtonRight; }
	else if (button == 2) { downType = kCGEventOtherMouseDown; upType = kCGEventOtherMouseUp; cgButton = kCGMouseButtonCenter; }

	CGPoint point = CGPointMake(x, y);
	CGEventFlags flags = axdModifierFlags(mods);

	for (int i = 0; i < clickCount; i++) {
		CGEventRef down = CGEventCreateMouseEvent(NULL, downType, point, cgButton);
		CGEventSetFlags(down, flags);
		CGEventSetIntegerValueField(down, kCGMouseEventClickState, i + 1);
		axdPostOrTarget(down, pid);
		CFRelease(down);

		CGEventRef up = CGEventCreateMouseEvent(NULL, upType, point, cgButton);
		CGEventSetFlags(up, flags);
		CGEventSetIntegerValueField(up, kCGMouseEventClickState, i + 1);
		axdPostOrTarget(up, pid);
		CFRelease(up);
	}
}

static void axdScroll(double x, double y, double deltaX, double deltaY, int32_t pid) {
	if (pid > 0) {
		// Warp the synthetic scroll's implicit location by posting a
		// zero-length mouse-moved event first; CGEventCreateScrollWheelEvent
		// has no point parameter, process targeting happens via the pid tap.
		CGEventRef move = CGEventCreateMouseEvent(NULL, kCGEventMouseMoved, CGPointMake(x, y), kCGMouseButtonLeft);
		axdPostOrTarget(move, pid);
		CFRelease(move);
	} else {
		CGWarpMouseCursorPosition(CGPointMake(x, y));
	}

	CGEventRef scroll = CGEventCreateScrollWheelEvent(NULL, kCGScrollEventUnitPixel, 2, (int32_t)deltaY, (int32_t)deltaX);
	axdPostOrTarget(scroll, pid);
	CFRelease(scroll);
}

static void axdKeyEvent(CGKeyCode keycode, const char *mods, int32_t pid) {
	CGEventFlags flags = axdModifierFlags(mods);

	CGEventRef down = CGEventCreateKeyboardEvent(NULL, keycode, true);
	CGEventSetFlags(down, flags);
	axdPostOrTarget(down, pid);
	CFRelease(down);

	CGEventRef up = CGEventCreateKeyboardEvent(NULL, keycode, false);
	CGEventSetFlags(up, flags);
	axdPostOrTarget(up, pid);
	CFRelease(up);
}

static void axdTypeUnicode(uint16_t ch, int32_t pid) {
	CGEventRef down = CGEventCreateKeyboardEvent(NULL, 0, true);
	CGEventKeyboardSetUnicodeString(down, 1, &ch);
	axdPostOrTarget(down, pid);
	CFRelease(down);

	CGEventRef up = CGEventCreateKeyboardEvent(NULL, 0, false);
	CGEventKeyboardSetUnicodeString(up, 1, &ch);
	axdPostOrTarget(up, pid);
	CFRelease(up);
}

// ============================================================================
// Accessibility tree access
// ============================================================================

static CFStringRef axdCFStr(const char *s) {
	return CFStringCreateWithCString(NULL, s, kCFStringEncodingUTF8);
}

static char *axdCopyUTF8(CFStringRef s) {
	if (s == NULL) return strdup("");
	CFIndex len = CFStringGetMaximumSizeForEncoding(CFStringGetLength(s), kCFStringEncodingUTF8) + 1;
	char *buf = malloc(len);
	if (!CFStringGetCString(s, buf, len, kCFStringEncodingUTF8)) {
		buf[0] = '\0';
	}
	return buf;
}

static char *axdStringAttr(AXUIElementRef el, CFStringRef attr) {
	CFTypeRef value = NULL;
	if (AXUIElementCopyAttributeValue(el, attr, &value) != kAXErrorSuccess || value == NULL) {
		return strdup("");
	}
	char *out;
	if (CFGetTypeID(value) == CFStringGetTypeID()) {
		out = axdCopyUTF8((CFStringRef)value);
	} else {
		out = strdup("");
	}
	CFRelease(value);
	return out;
}

static int axdBoolAttr(AXUIElementRef el, CFStringRef attr) {
	CFTypeRef value = NULL;
	if (AXUIElementCopyAttributeValue(el, attr, &value) != kAXErrorSuccess || value == NULL) {
		return 0;
	}
	int out = (value == kCFBooleanTrue) ? 1 : 0;
	CFRelease(value);
	return out;
}

static void axdFrameAttr(AXUIElementRef el, double *x, double *y, double *w, double *h) {
	*x = *y = *w = *h = 0;

	AXValueRef posValue = NULL;
	if (AXUIElementCopyAttributeValue(el, kAXPositionAttribute, (CFTypeRef *)&posValue) == kAXErrorSuccess && posValue) {
		CGPoint p;
		if (AXValueGetValue(posValue, kAXValueCGPointType, &p)) { *x = p.x; *y = p.y; }
		CFRelease(posValue);
	}
	AXValueRef sizeValue = NULL;
	if (AXUIElementCopyAttributeValue(el, kAXSizeAttribute, (CFTypeRef *)&sizeValue) == kAXErrorSuccess && sizeValue) {
		CGSize s;
		if (AXValueGetValue(sizeValue, kAXValueCGSizeType, &s)) { *w = s.width; *h = s.height; }
		CFRelease(sizeValue);
	}
}

static char *axdActionsCSV(AXUIElementRef el) {
	CFArrayRef names = NULL;
	if (AXUIElementCopyActionNames(el, &names) != kAXErrorSuccess || names == NULL) {
		return strdup("");
	}
	CFIndex count = CFArrayGetCount(names);
	NSMutableArray *parts = [NSMutableArray arrayWithCapacity:count];
	for (CFIndex i = 0; i < count; i++) {
		CFStringRef name = CFArrayGetValueAtIndex(names, i);
		char *cstr = axdCopyUTF8(name);
		[parts addObject:[NSString stringWithUTF8String:cstr]];
		free(cstr);
	}
	CFRelease(names);
	NSString *joined = [parts componentsJoinedByString:@","];
	return strdup([joined UTF8String]);
}

// axdChildAt returns the nth child of el (retained; caller must CFRelease),
// or NULL if out of range.
static AXUIElementRef axdChildAt(AXUIElementRef el, int index) {
	CFArrayRef children = NULL;
	if (AXUIElementCopyAttributeValue(el, kAXChildrenAttribute, (CFTypeRef *)&children) != kAXErrorSuccess || children == NULL) {
		return NULL;
	}
	if (index < 0 || index >= CFArrayGetCount(children)) {
		CFRelease(children);
		return NULL;
	}
	AXUIElementRef child = (AXUIElementRef)CFArrayGetValueAtIndex(children, index);
	CFRetain(child);
	CFRelease(children);
	return child;
}

static int axdChildCount(AXUIElementRef el) {
	CFArrayRef children = NULL;
	if (AXUIElementCopyAttributeValue(el, kAXChildrenAttribute, (CFTypeRef *)&children) != kAXErrorSuccess || children == NULL) {
		return 0;
	}
	int n = (int)CFArrayGetCount(children);
	CFRelease(children);
	return n;
}

static AXUIElementRef axdFocusedElement(AXUIElementRef app) {
	CFTypeRef focused = NULL;
	if (AXUIElementCopyAttributeValue(app, kAXFocusedUIElementAttribute, &focused) != kAXErrorSuccess) {
		return NULL;
	}
	return (AXUIElementRef)focused;
}

static int axdSetStringValue(AXUIElementRef el, const char *value) {
	CFStringRef cfValue = axdCFStr(value);
	AXError err = AXUIElementSetAttributeValue(el, kAXValueAttribute, cfValue);
	CFRelease(cfValue);
	return err == kAXErrorSuccess ? 0 : -1;
}

static int axdPerformAction(AXUIElementRef el, const char *actionName) {
	CFStringRef cfAction = axdCFStr(actionName);
	AXError err = AXUIElementPerformAction(el, cfAction);
	CFRelease(cfAction);
	return err == kAXErrorSuccess ? 0 : -1;
}

// ============================================================================
// Screen capture
// ============================================================================

typedef struct {
	void *bytes;
	long length;
	int width;
	int height;
} axdImageBuf;

// axdEncodeImage writes a CGImage to an in-memory PNG or JPEG buffer. The
// caller owns the returned bytes and must free() them.
static axdImageBuf axdEncodeImage(CGImageRef image, const char *format) {
	axdImageBuf out = {NULL, 0, 0, 0};
	if (image == NULL) return out;

	out.width = (int)CGImageGetWidth(image);
	out.height = (int)CGImageGetHeight(image);

	CFStringRef uti = (strcmp(format, "jpeg") == 0) ? CFSTR("public.jpeg") : CFSTR("public.png");
	CFMutableDataRef data = CFDataCreateMutable(NULL, 0);
	CGImageDestinationRef dest = CGImageDestinationCreateWithData(data, uti, 1, NULL);
	if (dest == NULL) {
		CFRelease(data);
		return out;
	}
	CGImageDestinationAddImage(dest, image, NULL);
	CGImageDestinationFinalize(dest);
	CFRelease(dest);

	CFIndex len = CFDataGetLength(data);
	out.bytes = malloc(len);
	CFDataGetBytes(data, CFRangeMake(0, len), out.bytes);
	out.length = (long)len;
	CFRelease(data);
	return out;
}

static axdImageBuf axdCaptureDisplay(CGDirectDisplayID displayID, const char *format) {
	CGImageRef image = CGDisplayCreateImage(displayID);
	axdImageBuf out = axdEncodeImage(image, format);
	if (image) CGImageRelease(image);
	return out;
}

static axdImageBuf axdCaptureWindow(CGWindowID windowID, const char *format) {
	CGImageRef image = CGWindowListCreateImage(CGRectNull, kCGWindowListOptionIncludingWindow, windowID, kCGWindowImageDefault);
	axdImageBuf out = axdEncodeImage(image, format);
	if (image) CGImageRelease(image);
	return out;
}

typedef struct {
	int id;
	char *title;
	char *ownerName;
	int32_t ownerPID;
	double x, y, w, h;
	int onScreen;
} axdWindowInfo;

// axdListWindows fills at most cap entries into out and returns the number
// written. Off-screen windows are included per §6.5.
static int axdListWindows(axdWindowInfo *out, int cap) {
	CFArrayRef list = CGWindowListCopyWindowInfo(kCGWindowListOptionAll, kCGNullWindowID);
	if (list == NULL) return 0;

	CFIndex count = CFArrayGetCount(list);
	int written = 0;
	for (CFIndex i = 0; i < count && written < cap; i++) {
		CFDictionaryRef entry = CFArrayGetValueAtIndex(list, i);

		CFNumberRef winID = CFDictionaryGetValue(entry, kCGWindowNumber);
		CFStringRef name = CFDictionaryGetValue(entry, kCGWindowName);
		CFStringRef owner = CFDictionaryGetValue(entry, kCGWindowOwnerName);
		CFNumberRef ownerPID = CFDictionaryGetValue(entry, kCGWindowOwnerPID);
		CFDictionaryRef bounds = CFDictionaryGetValue(entry, kCGWindowBounds);
		CFBooleanRef onscreen = CFDictionaryGetValue(entry, kCGWindowIsOnscreen);

		int idVal = 0;
		if (winID) CFNumberGetValue(winID, kCFNumberIntType, &idVal);
		int32_t pidVal = 0;
		if (ownerPID) CFNumberGetValue(ownerPID, kCFNumberSInt32Type, &pidVal);

		CGRect rect = CGRectZero;
		if (bounds) CGRectMakeWithDictionaryRepresentation(bounds, &rect);

		out[written].id = idVal;
		out[written].title = name ? axdCopyUTF8(name) : strdup("");
		out[written].ownerName = owner ? axdCopyUTF8(owner) : strdup("");
		out[written].ownerPID = pidVal;
		out[written].x = rect.origin.x;
		out[written].y = rect.origin.y;
		out[written].w = rect.size.width;
		out[written].h = rect.size.height;
		out[written].onScreen = (onscreen == kCFBooleanTrue) ? 1 : 0;
		written++;
	}
	CFRelease(list);
	return written;
}
*/
import "C"

import (
	"fmt"
	"strings"
	"time"
	"unsafe"

	"axd/internal/action"
	"axd/internal/apperrors"
	"axd/internal/element"
)

// processDiscoveryDarwin implements ProcessDiscovery over NSWorkspace.
type processDiscoveryDarwin struct{}

// NewProcessDiscovery returns the darwin ProcessDiscovery adapter.
func NewProcessDiscovery() ProcessDiscovery { return processDiscoveryDarwin{} }

func (processDiscoveryDarwin) FindByNameOrBundleID(spec string) (ProcessInfo, bool, error) {
	cSpec := C.CString(spec)
	defer C.free(unsafe.Pointer(cSpec))

	info := C.axdFindRunningApp(cSpec)
	if info.pid == 0 {
		return ProcessInfo{}, false, nil
	}
	defer C.free(unsafe.Pointer(info.name))
	defer C.free(unsafe.Pointer(info.bundleID))

	return ProcessInfo{
		PID:      int32(info.pid),
		Name:     C.GoString(info.name),
		BundleID: C.GoString(info.bundleID),
	}, true, nil
}

func (processDiscoveryDarwin) Launch(spec string) (ProcessInfo, error) {
	cSpec := C.CString(spec)
	defer C.free(unsafe.Pointer(cSpec))

	var result C.axdProcessInfo
	if C.axdLaunchApp(cSpec, &result) != 0 {
		return ProcessInfo{}, fmt.Errorf("failed to launch %q", spec)
	}
	defer C.free(unsafe.Pointer(result.name))
	defer C.free(unsafe.Pointer(result.bundleID))

	return ProcessInfo{
		PID:      int32(result.pid),
		Name:     C.GoString(result.name),
		BundleID: C.GoString(result.bundleID),
	}, nil
}

func (processDiscoveryDarwin) IsAlive(pid int32) bool {
	return C.axdIsAlive(C.int32_t(pid)) == 1
}

func (processDiscoveryDarwin) Frontmost() (ProcessInfo, error) {
	info := C.axdFrontmostApp()
	if info.pid == 0 {
		return ProcessInfo{}, fmt.Errorf("no frontmost application")
	}
	defer C.free(unsafe.Pointer(info.name))
	defer C.free(unsafe.Pointer(info.bundleID))

	return ProcessInfo{
		PID:      int32(info.pid),
		Name:     C.GoString(info.name),
		BundleID: C.GoString(info.bundleID),
	}, nil
}

// permissionProbeDarwin implements PermissionProbe.
type permissionProbeDarwin struct{}

// NewPermissionProbe returns the darwin PermissionProbe adapter.
func NewPermissionProbe() PermissionProbe { return permissionProbeDarwin{} }

func (permissionProbeDarwin) AccessibilityGranted() bool {
	return C.axdAccessibilityTrusted() == 1
}

func (permissionProbeDarwin) ScreenRecordingGranted() bool {
	// CGPreflightScreenCaptureAccess requires the ScreenCaptureKit
	// entitlement check added in later SDKs; axd treats an unanswered probe
	// as granted-unknown and lets the first capture attempt report the
	// authoritative failure, matching how CGDisplayCreateImage behaves when
	// the entitlement is missing (it returns NULL).
	return true
}

func modifiersCString(mods []action.Modifier) *C.char {
	names := make([]string, len(mods))
	for i, m := range mods {
		names[i] = string(m)
	}
	return C.CString(strings.Join(names, ","))
}

// globalInputDarwin implements GlobalInput via CGEventPost.
type globalInputDarwin struct{}

// NewGlobalInput returns the darwin GlobalInput adapter.
func NewGlobalInput() GlobalInput { return globalInputDarwin{} }

func (globalInputDarwin) Click(x, y float64, button action.MouseButton, clickCount int, mods []action.Modifier) error {
	buttonIdx := 0
	switch button {
	case action.ButtonRight:
		buttonIdx = 1
	case action.ButtonCenter:
		buttonIdx = 2
	}
	cMods := modifiersCString(mods)
	defer C.free(unsafe.Pointer(cMods))
	C.axdClick(C.double(x), C.double(y), C.int(buttonIdx), C.int(clickCount), cMods, 0)
	return nil
}

func (globalInputDarwin) KeyEvent(key string, mods []action.Modifier) error {
	keycode, ok := asciiKeycodes[strings.ToLower(key)]
	if !ok {
		return fmt.Errorf("no keycode mapping for %q", key)
	}
	cMods := modifiersCString(mods)
	defer C.free(unsafe.Pointer(cMods))
	C.axdKeyEvent(C.CGKeyCode(keycode), cMods, 0)
	return nil
}

func (globalInputDarwin) TypeText(text string, delayMs int) error {
	for i, r := range text {
		if kc, shift, ok := asciiCharToKeycode(r); ok {
			mods := []C.char{}
			_ = mods
			cMods := C.CString(boolToModList(shift))
			C.axdKeyEvent(C.CGKeyCode(kc), cMods, 0)
			C.free(unsafe.Pointer(cMods))
		} else {
			C.axdTypeUnicode(C.uint16_t(r), 0)
		}
		if delayMs > 0 && i < len(text)-1 {
			time.Sleep(time.Duration(delayMs) * time.Millisecond)
		}
	}
	return nil
}

func (globalInputDarwin) Scroll(x, y, deltaX, deltaY float64) error {
	C.axdScroll(C.double(x), C.double(y), C.double(deltaX), C.double(deltaY), 0)
	return nil
}

// targetedInputDarwin implements TargetedInput via CGEventPostToPid.
type targetedInputDarwin struct{}

// NewTargetedInput returns the darwin TargetedInput adapter.
func NewTargetedInput() TargetedInput { return targetedInputDarwin{} }

func (targetedInputDarwin) KeyEvent(pid int32, key string, mods []action.Modifier) error {
	keycode, ok := asciiKeycodes[strings.ToLower(key)]
	if !ok {
		return fmt.Errorf("no keycode mapping for %q", key)
	}
	cMods := modifiersCString(mods)
	defer C.free(unsafe.Pointer(cMods))
	C.axdKeyEvent(C.CGKeyCode(keycode), cMods, C.int32_t(pid))
	return nil
}

func (targetedInputDarwin) TypeText(pid int32, text string, delayMs int) error {
	for i, r := range text {
		if kc, shift, ok := asciiCharToKeycode(r); ok {
			cMods := C.CString(boolToModList(shift))
			C.axdKeyEvent(C.CGKeyCode(kc), cMods, C.int32_t(pid))
			C.free(unsafe.Pointer(cMods))
		} else {
			C.axdTypeUnicode(C.uint16_t(r), C.int32_t(pid))
		}
		if delayMs > 0 && i < len(text)-1 {
			time.Sleep(time.Duration(delayMs) * time.Millisecond)
		}
	}
	return nil
}

func (targetedInputDarwin) Scroll(pid int32, x, y, deltaX, deltaY float64) error {
	C.axdScroll(C.double(x), C.double(y), C.double(deltaX), C.double(deltaY), C.int32_t(pid))
	return nil
}

func boolToModList(shift bool) string {
	if shift {
		return "shift"
	}
	return ""
}

// accessibilityDarwin implements Accessibility via AXUIElement.
type accessibilityDarwin struct{}

// NewAccessibility returns the darwin Accessibility adapter.
func NewAccessibility() Accessibility { return accessibilityDarwin{} }

// appElement creates (and the caller must CFRelease) the AXUIElement for
// pid's application root.
func appElement(pid int32) C.AXUIElementRef {
	return C.AXUIElementCreateApplication(C.pid_t(pid))
}

func navigate(root C.AXUIElementRef, path []int) (C.AXUIElementRef, error) {
	cur := root
	C.CFRetain(C.CFTypeRef(cur))
	for _, idx := range path {
		child := C.axdChildAt(cur, C.int(idx))
		C.CFRelease(C.CFTypeRef(cur))
		if child == nil {
			return nil, fmt.Errorf("index %d out of range", idx)
		}
		cur = child
	}
	return cur, nil
}

func describe(el C.AXUIElementRef, path element.Path) element.Info {
	role := C.axdStringAttr(el, C.kAXRoleAttribute)
	title := C.axdStringAttr(el, C.kAXTitleAttribute)
	value := C.axdStringAttr(el, C.kAXValueAttribute)
	desc := C.axdStringAttr(el, C.kAXDescriptionAttribute)
	actionsCSV := C.axdActionsCSV(el)
	defer C.free(unsafe.Pointer(role))
	defer C.free(unsafe.Pointer(title))
	defer C.free(unsafe.Pointer(value))
	defer C.free(unsafe.Pointer(desc))
	defer C.free(unsafe.Pointer(actionsCSV))

	var x, y, w, h C.double
	C.axdFrameAttr(el, &x, &y, &w, &h)

	enabled := C.axdBoolAttr(el, C.kAXEnabledAttribute) == 1
	focused := C.axdBoolAttr(el, C.kAXFocusedAttribute) == 1

	actionsStr := C.GoString(actionsCSV)
	var actions []string
	if actionsStr != "" {
		actions = strings.Split(actionsStr, ",")
	}

	return element.Info{
		Path:        path,
		Role:        C.GoString(role),
		Title:       C.GoString(title),
		Value:       C.GoString(value),
		Description: C.GoString(desc),
		Frame:       element.Frame{X: float64(x), Y: float64(y), Width: float64(w), Height: float64(h)},
		IsEnabled:   enabled,
		IsFocused:   focused,
		Actions:     actions,
	}
}

func (accessibilityDarwin) Resolve(pid int32, path []int) (element.Info, error) {
	root := appElement(pid)
	defer C.CFRelease(C.CFTypeRef(root))

	el, err := navigate(root, path)
	if err != nil {
		return element.Info{}, apperrors.Resolutionf("element path not found: %v", err)
	}
	defer C.CFRelease(C.CFTypeRef(el))

	return describe(el, element.Path{PID: pid, Index: path}), nil
}

func walk(el C.AXUIElementRef, path []int, pid int32, depth, maxDepth int) element.Info {
	info := describe(el, element.Path{PID: pid, Index: append([]int{}, path...)})
	info.Depth = depth
	if depth >= maxDepth {
		return info
	}
	n := int(C.axdChildCount(el))
	for i := 0; i < n; i++ {
		child := C.axdChildAt(el, C.int(i))
		if child == nil {
			continue
		}
		childPath := append(append([]int{}, path...), i)
		info.Children = append(info.Children, walk(child, childPath, pid, depth+1, maxDepth))
		C.CFRelease(C.CFTypeRef(child))
	}
	return info
}

func (accessibilityDarwin) Walk(pid int32, path []int, maxDepth int) (element.Info, error) {
	root := appElement(pid)
	defer C.CFRelease(C.CFTypeRef(root))

	el, err := navigate(root, path)
	if err != nil {
		return element.Info{}, apperrors.Resolutionf("element path not found: %v", err)
	}
	defer C.CFRelease(C.CFTypeRef(el))

	return walk(el, path, pid, 0, maxDepth), nil
}

func findRec(el C.AXUIElementRef, path []int, pid int32, q element.Query, out *[]element.Info, maxResults int) {
	if len(*out) >= maxResults {
		return
	}
	info := describe(el, element.Path{PID: pid, Index: append([]int{}, path...)})
	if q.Match(info) {
		*out = append(*out, info)
		if len(*out) >= maxResults {
			return
		}
	}
	n := int(C.axdChildCount(el))
	for i := 0; i < n; i++ {
		child := C.axdChildAt(el, C.int(i))
		if child == nil {
			continue
		}
		findRec(child, append(append([]int{}, path...), i), pid, q, out, maxResults)
		C.CFRelease(C.CFTypeRef(child))
		if len(*out) >= maxResults {
			return
		}
	}
}

func (accessibilityDarwin) Find(pid int32, path []int, q element.Query, maxResults int) ([]element.Info, error) {
	root := appElement(pid)
	defer C.CFRelease(C.CFTypeRef(root))

	el, err := navigate(root, path)
	if err != nil {
		return nil, apperrors.Resolutionf("element path not found: %v", err)
	}
	defer C.CFRelease(C.CFTypeRef(el))

	var out []element.Info
	findRec(el, path, pid, q, &out, maxResults)
	return out, nil
}

func (accessibilityDarwin) Focused(pid int32) (element.Info, error) {
	root := appElement(pid)
	defer C.CFRelease(C.CFTypeRef(root))

	focused := C.axdFocusedElement(root)
	if focused == nil {
		return element.Info{}, apperrors.Resolutionf("no focused element")
	}
	defer C.CFRelease(C.CFTypeRef(focused))

	// The focused node's index path is recovered by a best-effort linear
	// search over the tree; axd does not keep a reverse index because the
	// tree is never cached (§4.2).
	path, found := locate(root, focused, nil, 4)
	if !found {
		path = nil
	}
	return describe(focused, element.Path{PID: pid, Index: path}), nil
}

// locate performs a bounded depth-first search for target, returning the
// index path if found within maxDepth.
func locate(root, target C.AXUIElementRef, prefix []int, maxDepth int) ([]int, bool) {
	if maxDepth <= 0 {
		return nil, false
	}
	n := int(C.axdChildCount(root))
	for i := 0; i < n; i++ {
		child := C.axdChildAt(root, C.int(i))
		if child == nil {
			continue
		}
		path := append(append([]int{}, prefix...), i)
		if C.CFEqual(C.CFTypeRef(child), C.CFTypeRef(target)) != 0 {
			C.CFRelease(C.CFTypeRef(child))
			return path, true
		}
		if p, ok := locate(child, target, path, maxDepth-1); ok {
			C.CFRelease(C.CFTypeRef(child))
			return p, true
		}
		C.CFRelease(C.CFTypeRef(child))
	}
	return nil, false
}

func (accessibilityDarwin) Invoke(pid int32, path []int, act action.Kind, value string) error {
	root := appElement(pid)
	defer C.CFRelease(C.CFTypeRef(root))

	el, err := navigate(root, path)
	if err != nil {
		return apperrors.Resolutionf("element path not found: %v", err)
	}
	defer C.CFRelease(C.CFTypeRef(el))

	if act == action.SetValue {
		cValue := C.CString(value)
		defer C.free(unsafe.Pointer(cValue))
		if C.axdSetStringValue(el, cValue) != 0 {
			return apperrors.FromAdapter("setValue", fmt.Errorf("AXUIElementSetAttributeValue failed"))
		}
		return nil
	}

	cAction := C.CString(string(act))
	defer C.free(unsafe.Pointer(cAction))
	if C.axdPerformAction(el, cAction) != 0 {
		return apperrors.FromAdapter(string(act), fmt.Errorf("AXUIElementPerformAction failed"))
	}
	return nil
}

func (accessibilityDarwin) MenuTree(pid int32, maxDepth int) (MenuItemInfo, error) {
	root := appElement(pid)
	defer C.CFRelease(C.CFTypeRef(root))

	var menuBarAttr = C.CFStringRef(C.kAXMenuBarAttribute)
	var menuBar C.CFTypeRef
	if C.AXUIElementCopyAttributeValue(root, menuBarAttr, &menuBar) != C.kAXErrorSuccess || menuBar == nil {
		return MenuItemInfo{}, apperrors.Resolutionf("no menu bar for pid %d", pid)
	}
	defer C.CFRelease(menuBar)

	menuEl := C.AXUIElementRef(menuBar)
	return walkMenu(menuEl, pid, nil, 0, maxDepth), nil
}

func walkMenu(el C.AXUIElementRef, pid int32, prefix []int, depth, maxDepth int) MenuItemInfo {
	title := C.axdStringAttr(el, C.kAXTitleAttribute)
	defer C.free(unsafe.Pointer(title))

	info := MenuItemInfo{
		Title:     C.GoString(title),
		IsEnabled: C.axdBoolAttr(el, C.kAXEnabledAttribute) == 1,
		Path:      element.Path{PID: pid, Index: append([]int(nil), prefix...)},
	}
	if depth >= maxDepth {
		return info
	}
	n := int(C.axdChildCount(el))
	info.HasSubmenu = n > 0
	for i := 0; i < n; i++ {
		child := C.axdChildAt(el, C.int(i))
		if child == nil {
			continue
		}
		childPath := append(append([]int(nil), prefix...), i)
		info.Children = append(info.Children, walkMenu(child, pid, childPath, depth+1, maxDepth))
		C.CFRelease(C.CFTypeRef(child))
	}
	return info
}

// screenCaptureDarwin implements ScreenCapture via CoreGraphics.
type screenCaptureDarwin struct{}

// NewScreenCapture returns the darwin ScreenCapture adapter.
func NewScreenCapture() ScreenCapture { return screenCaptureDarwin{} }

func (screenCaptureDarwin) ListDisplays() ([]DisplayInfo, error) {
	const maxDisplays = 16
	var ids [maxDisplays]C.CGDirectDisplayID
	var count C.uint32_t
	if C.CGGetActiveDisplayList(maxDisplays, &ids[0], &count) != C.kCGErrorSuccess {
		return nil, apperrors.FromAdapter("ListDisplays", fmt.Errorf("CGGetActiveDisplayList failed"))
	}

	out := make([]DisplayInfo, 0, int(count))
	main := C.CGMainDisplayID()
	for i := 0; i < int(count); i++ {
		id := ids[i]
		out = append(out, DisplayInfo{
			ID:     int(id),
			Width:  int(C.CGDisplayPixelsWide(id)),
			Height: int(C.CGDisplayPixelsHigh(id)),
			Main:   id == main,
		})
	}
	return out, nil
}

const maxEnumeratedWindows = 256

func (screenCaptureDarwin) ListWindows() ([]WindowInfo, error) {
	buf := make([]C.axdWindowInfo, maxEnumeratedWindows)
	n := int(C.axdListWindows(&buf[0], C.int(maxEnumeratedWindows)))

	out := make([]WindowInfo, 0, n)
	for i := 0; i < n; i++ {
		w := buf[i]
		out = append(out, WindowInfo{
			ID:         int(w.id),
			Title:      C.GoString(w.title),
			OwnerName:  C.GoString(w.ownerName),
			OwnerPID:   int32(w.ownerPID),
			Frame:      element.Frame{X: float64(w.x), Y: float64(w.y), Width: float64(w.w), Height: float64(w.h)},
			IsOnScreen: w.onScreen == 1,
		})
		C.free(unsafe.Pointer(w.title))
		C.free(unsafe.Pointer(w.ownerName))
	}
	return out, nil
}

func normalizeImageFormat(format string) string {
	if format == "jpeg" {
		return "jpeg"
	}
	return "png"
}

func (screenCaptureDarwin) CaptureDisplay(displayID int, format string) (Image, error) {
	normalized := normalizeImageFormat(format)
	cFormat := C.CString(normalized)
	defer C.free(unsafe.Pointer(cFormat))

	buf := C.axdCaptureDisplay(C.CGDirectDisplayID(displayID), cFormat)
	if buf.bytes == nil {
		return Image{}, apperrors.FromAdapter("CaptureDisplay", fmt.Errorf("CGDisplayCreateImage failed for display %d", displayID))
	}
	defer C.free(buf.bytes)

	return Image{
		Format: normalized,
		Width:  int(buf.width),
		Height: int(buf.height),
		Bytes:  C.GoBytes(buf.bytes, C.int(buf.length)),
	}, nil
}

func (screenCaptureDarwin) CaptureWindow(windowID int, format string) (Image, error) {
	normalized := normalizeImageFormat(format)
	cFormat := C.CString(normalized)
	defer C.free(unsafe.Pointer(cFormat))

	buf := C.axdCaptureWindow(C.CGWindowID(windowID), cFormat)
	if buf.bytes == nil {
		return Image{}, apperrors.FromAdapter("CaptureWindow", fmt.Errorf("CGWindowListCreateImage failed for window %d", windowID))
	}
	defer C.free(buf.bytes)

	return Image{
		Format: normalized,
		Width:  int(buf.width),
		Height: int(buf.height),
		Bytes:  C.GoBytes(buf.bytes, C.int(buf.length)),
	}, nil
}
