package css_modifier

import (
	"strconv"

	"github.com/excurso/hspp/internal/css_ast"
)

// linear-gradient() preminification: "to <side>" becomes the equivalent
// angle, the angle itself is minified, a leading "0%" stop and a trailing
// "100%" stop are dropped, and the color-stop list is reversed (with every
// percentage p flipped to 100-p) when the reversal yields a shorter angle.

// https://drafts.csswg.org/css-color/#css-system-colors
var systemColorNames = map[string]bool{
	"canvas":        true,
	"text":          true,
	"linktext":      true,
	"visitedtext":   true,
	"activetext":    true,
	"buttonface":    true,
	"buttontext":    true,
	"field":         true,
	"fieldtext":     true,
	"highlight":     true,
	"highlighttext": true,
	"graytext":      true,
}

var colorFunctionNames = map[string]bool{
	"var":         true,
	"rgb":         true,
	"rgba":        true,
	"hsl":         true,
	"hsla":        true,
	"hwb":         true,
	"lab":         true,
	"lch":         true,
	"gray":        true,
	"color":       true,
	"device-cmyk": true,
}

func isColorElement(n css_ast.N) bool {
	switch node := css_ast.Resolve(n).(type) {
	case *css_ast.Color:
		return true
	case *css_ast.Function:
		return colorFunctionNames[node.Name]
	case *css_ast.Identifier:
		return systemColorNames[*node.Name]
	}
	return false
}

func (m *Modifier) rewriteLinearGradient(fn *css_ast.Function) {
	params := fn.Parameters
	if len(params) == 0 {
		return
	}

	first := params[0]

	// "to top/bottom/left/right" => "0deg/180deg/270deg/90deg"
	if len(first) == 2 {
		to, okTo := css_ast.Resolve(first[0]).(*css_ast.Identifier)
		side, okSide := css_ast.Resolve(first[1]).(*css_ast.Identifier)
		if okTo && okSide && *to.Name == "to" {
			var angle string
			switch *side.Name {
			case "bottom":
				angle = "180"
			case "top":
				angle = "0"
			case "left":
				angle = "270"
			case "right":
				angle = "90"
			}
			if angle != "" {
				dimension := css_ast.NewDimension(angle, "deg")
				dimension.SetPos(to.Pos())
				fn.Parameters[0] = []css_ast.N{dimension}
				first = fn.Parameters[0]
			}
		}
	}

	if len(first) == 1 {
		if dimension, ok := css_ast.Resolve(first[0]).(*css_ast.Dimension); ok {
			m.minifyAngle(dimension)

			stops := fn.Parameters[1:]
			switch {
			case dimension.Value == "0" && dropEdgeStopPercentages(stops) && reverseColorStops(stops):
				fn.Parameters = fn.Parameters[1:]

			case dimension.Value == "180" && dimension.Unit == "deg" && dropEdgeStopPercentages(stops):
				fn.Parameters = fn.Parameters[1:]

			case dimension.Unit == "deg":
				if angle, err := strconv.ParseFloat(dimension.Value, 64); err == nil {
					// Reversed stops point the opposite way, so the angle
					// turns by 180deg; only 261..279deg get shorter from it
					if angle > 260 && angle < 280 {
						if dropEdgeStopPercentages(stops) && reverseColorStops(stops) {
							dimension.Value = formatFloat(angle - 180)
							dimension.Unit = "deg"
						}
					} else {
						dropEdgeStopPercentages(stops)
					}
				}
			}
			return
		}

		if isColorElement(first[0]) {
			dropEdgeStopPercentages(fn.Parameters)
		}
		return
	}

	dropEdgeStopPercentages(fn.Parameters)
}

// Checks that every color stop is a color, a percentage position, or a color
// with a percentage, with all percentages in 0..100 and no interior stop
// pinned at the edges. Stops with dimension positions are not handled.
func stopsAreRewritable(stops [][]css_ast.N) bool {
	for i, stop := range stops {
		var percentage *css_ast.Percentage

		switch len(stop) {
		case 1:
			if isColorElement(stop[0]) {
				continue
			}
			if p, ok := css_ast.Resolve(stop[0]).(*css_ast.Percentage); ok {
				percentage = p
			}
		case 2:
			if isColorElement(stop[0]) {
				if p, ok := css_ast.Resolve(stop[1]).(*css_ast.Percentage); ok {
					percentage = p
				}
			}
		default:
			return false
		}

		if percentage == nil {
			return false
		}

		number, err := strconv.ParseFloat(percentage.Value, 64)
		if err != nil || number < 0 || number > 100 {
			return false
		}
		if (i != 0 && percentage.Value == "0") ||
			(i != len(stops)-1 && percentage.Value == "100") {
			return false
		}
	}
	return true
}

// Removes the "0%" position of the first stop and the "100%" position of the
// last stop; these are the defaults anyway. Percentage positions only.
func dropEdgeStopPercentages(stops [][]css_ast.N) bool {
	if !stopsAreRewritable(stops) {
		return false
	}
	for i, stop := range stops {
		if len(stop) != 2 {
			continue
		}
		if !isColorElement(stop[0]) {
			continue
		}
		percentage, ok := css_ast.Resolve(stop[1]).(*css_ast.Percentage)
		if !ok {
			continue
		}
		if (i == 0 && percentage.Value == "0") ||
			(i == len(stops)-1 && percentage.Value == "100") {
			stops[i] = stop[:1]
		}
	}
	return true
}

// Reverses the stop list and flips every percentage p to 100-p. Percentage
// positions only.
func reverseColorStops(stops [][]css_ast.N) bool {
	for _, stop := range stops {
		var percentage *css_ast.Percentage
		switch len(stop) {
		case 1:
			if p, ok := css_ast.Resolve(stop[0]).(*css_ast.Percentage); ok {
				percentage = p
			}
		case 2:
			if p, ok := css_ast.Resolve(stop[1]).(*css_ast.Percentage); ok {
				percentage = p
			}
		}
		if percentage != nil && percentage.Value != "50" {
			if number, err := strconv.ParseFloat(percentage.Value, 64); err == nil {
				percentage.Value = ShortNumber(formatFloat(100 - number))
			}
		}
	}

	for i, j := 0, len(stops)-1; i < j; i, j = i+1, j-1 {
		stops[i], stops[j] = stops[j], stops[i]
	}
	return true
}
