package css_modifier

import (
	"math"
	"strconv"

	"github.com/excurso/hspp/internal/css_ast"
)

// Angle normalization. deg, grad, and turn angles are brought into the range
// [0, 360) degrees and rewritten to deg unless the result would be longer. rad
// angles are reduced to one full turn and cut to the precision of the input;
// they stay in rad and are not rewritten to deg. A range of 350..360 degrees
// becomes a short negative angle, and negative angles of -100 degrees and
// beyond become positive by adding a full turn.
// Returns false if no change has been made.
func (m *Modifier) minifyAngle(dimension *css_ast.Dimension) bool {
	// Angles with a scientific postfix are not handled
	if dimension.Scientific != "" {
		return false
	}

	if dimension.Value == "0" {
		dimension.Negative = false
		dimension.Unit = "deg"
		return true
	}

	const degBase = 360.0
	const gradBase = 400.0
	const turnBase = 1.0
	radBase := 2 * math.Pi

	angle, err := strconv.ParseFloat(dimension.Value, 64)
	if err != nil {
		return false
	}
	negative := dimension.Negative
	lengthBefore := len(dimension.Value) + len(dimension.Unit)
	if negative {
		lengthBefore++
	}
	unit := "deg"

	switch dimension.Unit {
	case "deg":
		for angle >= degBase {
			angle -= degBase
		}

	case "grad":
		angle = angle / gradBase * degBase
		for angle >= degBase {
			angle -= degBase
		}
		if angle == 0 {
			dimension.Negative = false
			dimension.Value = "0"
			dimension.Unit = "deg"
			return true
		}

	case "turn":
		for angle >= turnBase {
			angle -= turnBase
		}
		if angle == 0 {
			dimension.Negative = false
			dimension.Value = "0"
			dimension.Unit = "deg"
			return true
		}
		angle = angle / turnBase * degBase

	case "rad":
		// The result is cut to the precision of the input
		precision := numberPrecision(dimension.Value)

		for angle >= radBase {
			angle -= radBase
		}
		if angle == 0 {
			dimension.Negative = false
			dimension.Value = "0"
			dimension.Unit = "deg"
			return true
		}

		// Negative angles only when the angle is at least 1 and the
		// precision leaves room for the flip
		if negative && angle >= 1 && precision > 1 {
			angle = radBase - angle
			negative = false
		}

		dimension.Negative = negative
		dimension.Value = ShortNumber(cutToPrecision(formatFloat(angle), precision))
		return true
	}

	// 350..360deg => a short negative angle
	if angle > degBase-10 {
		angle = degBase - angle
		negative = !negative
	} else if dimension.Negative {
		// -100..-360deg => 0..260deg
		if angle >= 100 {
			angle = degBase - angle
			negative = false
		} else if angle == 0 {
			negative = false
		}
	}

	value := formatFloat(angle)

	lengthAfter := len(value) + len(unit)
	if negative {
		lengthAfter++
	}

	// Only rewrite when the dimension does not get longer
	if lengthBefore >= lengthAfter {
		dimension.Negative = negative
		dimension.Value = value
		dimension.Unit = unit
		return true
	}

	// A deg rewrite that got longer: a grad input may still shrink within
	// its own unit
	if dimension.Unit == "grad" {
		angle, _ = strconv.ParseFloat(dimension.Value, 64)
		unit = "grad"

		// 390..400grad => a short negative angle
		if angle > gradBase-10 {
			angle = gradBase - angle
			value = formatFloat(angle)
			negative = true

			lengthAfter = len(value) + len(unit) + 1

			if lengthBefore > lengthAfter {
				dimension.Negative = negative
				dimension.Value = value
				dimension.Unit = unit
				return true
			}
		}
	}

	return false
}
