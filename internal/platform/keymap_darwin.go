//go:build darwin

package platform

// asciiKeycodes maps named keys (as accepted by /key) to US-keyboard
// virtual keycodes. Intentionally US-flavoured per the design notes: /type
// in keys mode falls back to Unicode-string events for anything outside
// this table (and outside asciiCharToKeycode).
var asciiKeycodes = map[string]int{
	"return": 36, "enter": 36,
	"tab":       48,
	"space":     49,
	"delete":    51,
	"escape":    53,
	"command":   55,
	"shift":     56,
	"capslock":  57,
	"option":    58,
	"control":   59,
	"leftarrow": 123, "left": 123,
	"rightarrow": 124, "right": 124,
	"downarrow": 125, "down": 125,
	"uparrow": 126, "up": 126,
	"a": 0, "s": 1, "d": 2, "f": 3, "h": 4, "g": 5, "z": 6, "x": 7, "c": 8, "v": 9,
	"b": 11, "q": 12, "w": 13, "e": 14, "r": 15, "y": 16, "t": 17,
	"1": 18, "2": 19, "3": 20, "4": 21, "6": 22, "5": 23, "9": 25, "7": 26, "8": 28, "0": 29,
	"o": 31, "u": 32, "i": 34, "p": 35, "l": 37, "j": 38, "k": 40, "n": 45, "m": 46,
}

// asciiCharToKeycode maps a single printable ASCII rune to (keycode,
// needsShift). It returns ok=false for anything it cannot express — callers
// fall back to a Unicode-string keyboard event for those.
func asciiCharToKeycode(r rune) (int, bool, bool) {
	if r >= 'A' && r <= 'Z' {
		kc, ok := asciiKeycodes[string(rune(r-'A'+'a'))]
		return kc, true, ok
	}
	if r >= 'a' && r <= 'z' {
		kc, ok := asciiKeycodes[string(r)]
		return kc, false, ok
	}
	if r >= '0' && r <= '9' {
		kc, ok := asciiKeycodes[string(r)]
		return kc, false, ok
	}
	switch r {
	case ' ':
		return asciiKeycodes["space"], false, true
	case '\n':
		return asciiKeycodes["return"], false, true
	case '\t':
		return asciiKeycodes["tab"], false, true
	}
	return 0, false, false
}
