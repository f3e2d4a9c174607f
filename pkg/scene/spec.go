package scene

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "github.com/odvcencio/userint/pkg/errors"
	"github.com/odvcencio/userint/pkg/userint"
)

// Spec is a declarative scene: a list of widgets with geometry. Widgets are loaded in file
// order, so among siblings the one declared first is in front.
type Spec struct {
	Name    string       `yaml:"name"`
	Widgets []WidgetSpec `yaml:"widgets"`
}

// WidgetSpec declares one widget.
type WidgetSpec struct {
	Tag   string `yaml:"tag"`
	Kind  string `yaml:"kind"`
	Label string `yaml:"label"`
	// Rect is in screen coordinates.
	Rect Rect `yaml:"rect"`
	// Frame puts the widget in the frame. Parent docks it instead.
	Frame  bool   `yaml:"frame"`
	Parent string `yaml:"parent"`

	// Range only.
	Items      int `yaml:"items"`
	ItemHeight int `yaml:"item_height"`

	// Composite only. Part rects are relative to the widget's origin.
	Parts []PartSpec `yaml:"parts"`

	SignalTest *bool `yaml:"signal_test"`
	Update     *bool `yaml:"update"`
}

// PartSpec declares one part of a composite.
type PartSpec struct {
	Name string `yaml:"name"`
	Rect Rect   `yaml:"rect"`
}

// Parse decodes and validates a scene document.
func Parse(data []byte) (*Spec, error) {
	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSceneInvalid, "parsing scene")
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

// LoadFile reads and parses a scene file.
func LoadFile(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSceneInvalid, "reading scene").
			WithContext("path", path)
	}
	spec, err := Parse(data)
	if err != nil {
		if e, ok := err.(*apperrors.Error); ok {
			return nil, e.WithContext("path", path)
		}
		return nil, err
	}
	return spec, nil
}

// Validate checks tags, kinds, parent references, and geometry. A parent must be declared
// before the widgets docked in it.
func (s *Spec) Validate() error {
	seen := make(map[string]bool, len(s.Widgets))
	for i := range s.Widgets {
		w := &s.Widgets[i]
		if strings.TrimSpace(w.Tag) == "" {
			return invalid(i, w.Tag, "tag is required")
		}
		if seen[w.Tag] {
			return invalid(i, w.Tag, "duplicate tag")
		}
		kind, ok := userint.ParseKind(w.Kind)
		if !ok {
			return invalid(i, w.Tag, "kind must be composite or range")
		}
		if w.Rect.Width < 0 || w.Rect.Height < 0 {
			return invalid(i, w.Tag, "rect size must not be negative")
		}
		if w.Frame && w.Parent != "" {
			return invalid(i, w.Tag, "frame and parent are exclusive")
		}
		if w.Parent != "" && !seen[w.Parent] {
			return invalid(i, w.Tag, "parent "+w.Parent+" is not declared before this widget")
		}

		switch kind {
		case userint.KindComposite:
			if w.Items != 0 || w.ItemHeight != 0 {
				return invalid(i, w.Tag, "items are only valid on ranges")
			}
			for _, p := range w.Parts {
				if p.Rect.Width < 0 || p.Rect.Height < 0 {
					return invalid(i, w.Tag, "part "+p.Name+" has a negative size")
				}
			}
		case userint.KindRange:
			if len(w.Parts) > 0 {
				return invalid(i, w.Tag, "parts are only valid on composites")
			}
			if w.Items < 0 {
				return invalid(i, w.Tag, "items must not be negative")
			}
			if w.ItemHeight < 0 {
				return invalid(i, w.Tag, "item_height must not be negative")
			}
		}
		seen[w.Tag] = true
	}
	return nil
}

// Find returns the widget spec with tag.
func (s *Spec) Find(tag string) (WidgetSpec, bool) {
	for _, w := range s.Widgets {
		if w.Tag == tag {
			return w, true
		}
	}
	return WidgetSpec{}, false
}

func (w WidgetSpec) itemHeight() int {
	if w.ItemHeight <= 0 {
		return 1
	}
	return w.ItemHeight
}

func invalid(index int, tag, msg string) error {
	return apperrors.New(apperrors.ErrCodeSceneInvalid, msg).
		WithContext("index", index).
		WithContext("tag", tag)
}
