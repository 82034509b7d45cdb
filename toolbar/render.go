package toolbar

import (
	"fmt"
	"strings"

	"booknav/utils/debug"
)

// String renders toolbar as text: hidden buttons are left out of the strip,
// disabled ones are in parentheses and active one is starred.
func (v View) String() string {
	tw := debug.NewTreeWriter()
	if len(v.Title) > 0 {
		tw.Line(0, "%s toolbar %q", v.Kind, v.Title)
	} else {
		tw.Line(0, "%s toolbar", v.Kind)
	}
	if v.Deferred {
		tw.Line(1, "(not laid out yet)")
	}

	var strip []string
	for i, b := range v.Buttons {
		if i == v.OverflowBefore {
			strip = append(strip, fmt.Sprintf("[… %d]", len(v.Overflow)))
		}
		if b.Hidden {
			continue
		}
		strip = append(strip, b.render())
	}
	if len(strip) > 0 {
		tw.Line(1, "%s", strings.Join(strip, " "))
	}
	for _, b := range v.Overflow {
		tw.Line(2, "%s", b.render())
	}
	for _, b := range v.Buttons {
		tw.Field(1, b.Label, b.Target.File)
	}
	return tw.String()
}

func (b Button) render() string {
	switch {
	case !b.Target.Enabled:
		return "(" + b.Label + ")"
	case b.Active:
		return "*" + b.Label + "*"
	}
	return "[" + b.Label + "]"
}
