package css_modifier

import (
	"strconv"
	"strings"

	"github.com/excurso/hspp/internal/css_ast"
)

// Number canonicalization
// https://drafts.csswg.org/css-values-3/#numbers

// Strips leading zeros, trailing zeros after a ".", and a trailing "."; an
// empty result becomes "0". Examples: "0.500" => ".5", "010" => "10".
func ShortNumber(value string) string {
	for len(value) > 1 && value[0] == '0' {
		value = value[1:]
	}

	if strings.ContainsRune(value, '.') {
		for len(value) > 0 && value[len(value)-1] == '0' {
			value = value[:len(value)-1]
		}
		if len(value) > 0 && value[len(value)-1] == '.' {
			value = value[:len(value)-1]
		}
		if value == "" {
			value = "0"
		}
	}

	return value
}

// Moves three or more trailing zeros into a scientific postfix.
// Example: "10000" => "1e4".
func replaceWithScientificNotation(number *css_ast.Number) {
	value := number.Value
	zeros := 0
	for zeros < len(value) && value[len(value)-1-zeros] == '0' {
		zeros++
	}
	if zeros > 2 && zeros < len(value) {
		number.Value = value[:len(value)-zeros]
		number.Scientific = "e" + strconv.Itoa(zeros)
	}
}

func (m *Modifier) visitNumberValue(number *css_ast.Number) {
	if m.minifyNumbers {
		number.Value = ShortNumber(number.Value)
		if number.Scientific == "" {
			replaceWithScientificNotation(number)
		}
	}
}

// https://www.w3.org/TR/css-values-3/#lengths
var lengthUnits = []string{
	"px", "em", "rem", "pt", "vw", "vh", "ex", "ch",
	"vmin", "vmax", "cm", "mm", "Q", "in", "pc",
}

var angleUnits = []string{"deg", "grad", "turn", "rad"}

func (m *Modifier) visitDimension(dimension *css_ast.Dimension) {
	m.visitNumberValue(&dimension.Number)

	if m.declaration == nil {
		return
	}

	// A zero length needs no unit
	if dimension.Value == "0" && dimension.UnitIs(lengthUnits...) {
		replacement := css_ast.NewNumber(dimension.Value)
		replacement.SetPos(dimension.Pos())
		dimension.SetReplacement(replacement)
		return
	}

	// Rewrite ms to s where that saves bytes. Example: "100ms" => ".1s".
	// Only three-digit values ending in "0" and not starting with "0" apply.
	if dimension.Unit == "ms" {
		value := dimension.Value
		if len(value) == 3 && value[2] == '0' && value[0] != '0' {
			if value[1] == '0' {
				dimension.Value = "." + value[:1]
			} else {
				dimension.Value = "." + value[:2]
			}
			dimension.Unit = "s"
		}
		return
	}

	if m.rewriteAngles && dimension.UnitIs(angleUnits...) {
		m.minifyAngle(dimension)
	}
}

// Converts a percentage digit string to the equivalent decimal number.
// Example: "70" => ".7".
func percentageToNumber(percentage string) string {
	dot := strings.IndexByte(percentage, '.')
	countBeforeDot := dot
	if dot == -1 {
		countBeforeDot = len(percentage)
	}
	digits := strings.Replace(percentage, ".", "", 1)

	if countBeforeDot == 1 {
		digits = ".0" + digits
	} else {
		digits = digits[:countBeforeDot-2] + "." + digits[countBeforeDot-2:]
	}

	return ShortNumber(digits)
}

// Digits after the "." of a number string
func numberPrecision(number string) int {
	if dot := strings.IndexByte(number, '.'); dot != -1 {
		return len(number) - dot - 1
	}
	return 0
}

// Truncates the fractional part of a number string to the given precision
func cutToPrecision(number string, precision int) string {
	if dot := strings.IndexByte(number, '.'); dot != -1 {
		end := dot + 1 + precision
		if end < len(number) {
			return number[:end]
		}
	}
	return number
}

// Formats a float the way the angle and color rewrites need it: fixed
// precision, then canonicalized
func formatFloat(value float64) string {
	return ShortNumber(strconv.FormatFloat(value, 'f', 6, 64))
}
