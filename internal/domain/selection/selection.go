// Package selection holds the shared single-entity selection that links the three views.
package selection

import "strings"

// Visual encodings applied to marks.
const (
	SelectedOpacity     = 1.0
	SelectedStroke      = "black"
	SelectedStrokeWidth = 1.5

	UnselectedOpacity     = 0.85
	UnselectedStroke      = "white"
	UnselectedStrokeWidth = 0.1
)

// State is at most one selected entity name. The zero value selects nothing.
type State struct {
	name string
}

// Of returns a state selecting name. An empty or blank name selects nothing.
func Of(name string) State {
	return State{name: strings.TrimSpace(name)}
}

// Name returns the selected entity, or "" when nothing is selected.
func (s State) Name() string { return s.name }

// IsEmpty reports whether nothing is selected.
func (s State) IsEmpty() bool { return s.name == "" }

// Click applies a click on name. Clicking empty space or the selected entity clears.
func (s State) Click(name string) State {
	name = strings.TrimSpace(name)
	if name == "" || name == s.name {
		return State{}
	}
	return State{name: name}
}

// Clear removes the selection.
func (s State) Clear() State { return State{} }

// Conditions is the per-mark visual encoding derived from the selection.
type Conditions struct {
	Selected    bool    `json:"selected"`
	Opacity     float64 `json:"opacity"`
	Stroke      string  `json:"stroke"`
	StrokeWidth float64 `json:"stroke_width"`
}

// Conditions returns the encoding for the mark drawn for entity name.
func (s State) Conditions(name string) Conditions {
	if s.Filter(name) {
		return Conditions{
			Selected:    true,
			Opacity:     SelectedOpacity,
			Stroke:      SelectedStroke,
			StrokeWidth: SelectedStrokeWidth,
		}
	}
	return Conditions{
		Opacity:     UnselectedOpacity,
		Stroke:      UnselectedStroke,
		StrokeWidth: UnselectedStrokeWidth,
	}
}

// Filter reports whether the entity passes the selection filter.
// Nothing passes when the selection is empty.
func (s State) Filter(name string) bool {
	return s.name != "" && s.name == name
}
