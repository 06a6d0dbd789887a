package dispatch

import "axd/internal/element"

// Every wire type uses lower_snake_case field names per §3's compatibility
// contract with existing clients.

type clickRequest struct {
	X          float64  `json:"x"`
	Y          float64  `json:"y"`
	Button     string   `json:"button"`
	ClickCount int      `json:"click_count"`
	Modifiers  []string `json:"modifiers"`
}

type clickElementRequest struct {
	Title                  string `json:"title"`
	TitleContains          string `json:"title_contains"`
	Role                   string `json:"role"`
	Label                  string `json:"label"`
	PID                    int32  `json:"pid"`
	UseAccessibilityAction bool   `json:"use_accessibility_action"`
	Button                 string `json:"button"`
}

type typeRequest struct {
	Text          string `json:"text"`
	DelayMs       int    `json:"delay_ms"`
	Mode          string `json:"mode"`
	PID           int32  `json:"pid"`
	Path          *pathDTO `json:"path"`
	Role          string `json:"role"`
	Title         string `json:"title"`
	TitleContains string `json:"title_contains"`
}

type pathDTO struct {
	PID  int32 `json:"pid"`
	Path []int `json:"path"`
}

type keyRequest struct {
	Key       string   `json:"key"`
	Modifiers []string `json:"modifiers"`
	PID       int32    `json:"pid"`
	Path      *pathDTO `json:"path"`
}

type scrollRequest struct {
	DeltaX float64  `json:"delta_x"`
	DeltaY float64  `json:"delta_y"`
	X      *float64 `json:"x"`
	Y      *float64 `json:"y"`
	PID    int32    `json:"pid"`
	Path   *pathDTO `json:"path"`
}

type waitRequest struct {
	Title          string `json:"title"`
	TitleContains  string `json:"title_contains"`
	Role           string `json:"role"`
	Label          string `json:"label"`
	PID            int32  `json:"pid"`
	TimeoutMs      int    `json:"timeout_ms"`
	PollIntervalMs int    `json:"poll_interval_ms"`
	Condition      string `json:"condition"`
}

type accessibilityActionRequest struct {
	Path   pathDTO `json:"path"`
	Action string  `json:"action"`
	Value  string  `json:"value"`
}

type menuTriggerRequest struct {
	Titles     []string `json:"titles"`
	Background bool     `json:"background"`
}

// elementResponse is the public descriptor used across endpoints.
type elementResponse struct {
	Path        pathDTO        `json:"path"`
	Role        string         `json:"role"`
	Title       string         `json:"title,omitempty"`
	Label       string         `json:"label,omitempty"`
	Value       string         `json:"value,omitempty"`
	Description string         `json:"description,omitempty"`
	Frame       element.Frame  `json:"frame"`
	IsEnabled   bool           `json:"is_enabled"`
	IsFocused   bool           `json:"is_focused"`
	Actions     []string       `json:"actions,omitempty"`
	Depth       int            `json:"depth,omitempty"`
	Children    []elementResponse `json:"children,omitempty"`
}

func toElementResponse(info element.Info) elementResponse {
	resp := elementResponse{
		Path:        pathDTO{PID: info.Path.PID, Path: info.Path.Index},
		Role:        info.Role,
		Title:       info.Title,
		Label:       info.Label,
		Value:       info.Value,
		Description: info.Description,
		Frame:       info.Frame,
		IsEnabled:   info.IsEnabled,
		IsFocused:   info.IsFocused,
		Actions:     info.Actions,
		Depth:       info.Depth,
	}
	for _, c := range info.Children {
		resp.Children = append(resp.Children, toElementResponse(c))
	}
	return resp
}
