package element

import "strings"

// Query is a predicate over accessibility nodes. All provided fields are
// ANDed; string predicates are case-insensitive substrings except the exact
// Title and Role matches, per §4.2.
type Query struct {
	Role           string `json:"role,omitempty"`
	Title          string `json:"title,omitempty"`
	TitleContains  string `json:"title_contains,omitempty"`
	LabelContains  string `json:"label_contains,omitempty"`
	ValueContains  string `json:"value_contains,omitempty"`
	MaxResults     int    `json:"max_results,omitempty"`
}

// Empty reports whether the query carries no predicates at all — used by
// /accessibility/elements and /wait to reject predicate-less requests.
func (q Query) Empty() bool {
	return q.Role == "" && q.Title == "" && q.TitleContains == "" &&
		q.LabelContains == "" && q.ValueContains == ""
}

// Match evaluates the query's predicates against one node's descriptor.
func (q Query) Match(info Info) bool {
	if q.Role != "" && info.Role != q.Role {
		return false
	}
	if q.Title != "" && info.Title != q.Title {
		return false
	}
	if q.TitleContains != "" && !containsFold(info.Title, q.TitleContains) {
		return false
	}
	if q.LabelContains != "" && !containsFold(info.Label, q.LabelContains) {
		return false
	}
	if q.ValueContains != "" && !containsFold(info.Value, q.ValueContains) {
		return false
	}
	return true
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// MeaningfulRoles is the fixed set of roles a compact-format tree keeps even
// when the node carries no title/label text: buttons, text inputs,
// interactive containers, windows, sheets, toolbars, tables, menus.
var MeaningfulRoles = map[string]bool{
	"AXButton":       true,
	"AXTextField":    true,
	"AXTextArea":     true,
	"AXCheckBox":     true,
	"AXRadioButton":  true,
	"AXPopUpButton":  true,
	"AXComboBox":     true,
	"AXSlider":       true,
	"AXWindow":       true,
	"AXSheet":        true,
	"AXToolbar":      true,
	"AXTable":        true,
	"AXRow":          true,
	"AXMenu":         true,
	"AXMenuItem":     true,
	"AXMenuBar":      true,
	"AXMenuBarItem":  true,
	"AXLink":         true,
	"AXTabGroup":     true,
}

// IsMeaningful reports whether a compact-format traversal should keep this
// node: it carries identifying text, or its role is in MeaningfulRoles.
func IsMeaningful(info Info) bool {
	if info.Title != "" || info.Label != "" {
		return true
	}
	return MeaningfulRoles[info.Role]
}
