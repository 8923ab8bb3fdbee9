package css_modifier

import (
	"fmt"
	"math"
	"strconv"

	"github.com/excurso/hspp/internal/css_ast"
)

// Color minification
// https://www.w3.org/TR/css-color-4/#hex-notation
// https://www.w3.org/TR/css-color-4/#rgb-functions
// https://www.w3.org/TR/css-color-4/#the-hsl-notation

func (m *Modifier) visitColor(color *css_ast.Color) {
	if !m.minifyColors {
		return
	}

	if color.Kind == css_ast.ColorPredefinedName {
		if m.useRGBAHex && color.Value == "transparent" {
			color.Kind = css_ast.ColorHexLiteral
			color.Value = "0000"
			return
		}

		if m.declaration != nil {
			// Convert a name to hex when the shortest hex form is strictly
			// shorter (the "#" counts). "transparent" only converts through
			// the RGBA-hex flag above.
			if hex, ok := css_ast.ColorNameToHex[color.Value]; ok && color.Value != "transparent" {
				short := css_ast.ShortHexValue(hex)
				if len(color.Value) > len(short)+1 {
					color.Kind = css_ast.ColorHexLiteral
					color.Value = short
				}
			}
		}
		return
	}

	if m.declaration == nil {
		return
	}

	value := css_ast.ShortHexValue(color.Value)
	color.Value = value

	// Convert hex to a name when the name is strictly shorter
	if name, ok := css_ast.HexToColorName[value]; ok && name != "transparent" {
		if len(value)+1 > len(name) {
			color.Kind = css_ast.ColorPredefinedName
			color.Value = name
		}
	}
}

// "rgb(255, 0, 0)" and friends become a hex color, "transparent", or a
// rewrite with numeric channels, whichever is the shortest valid form
func (m *Modifier) rewriteRgbFunction(fn *css_ast.Function) {
	r, g, b, alpha, ok := colorFunctionChannels(fn)
	if !ok {
		return
	}

	// The three channels must be uniform: all numbers or all percentages
	_, rIsNumber := css_ast.Resolve(r).(*css_ast.Number)
	_, gIsNumber := css_ast.Resolve(g).(*css_ast.Number)
	_, bIsNumber := css_ast.Resolve(b).(*css_ast.Number)
	_, rIsPercentage := css_ast.Resolve(r).(*css_ast.Percentage)
	_, gIsPercentage := css_ast.Resolve(g).(*css_ast.Percentage)
	_, bIsPercentage := css_ast.Resolve(b).(*css_ast.Percentage)
	if !(rIsNumber && gIsNumber && bIsNumber) && !(rIsPercentage && gIsPercentage && bIsPercentage) {
		return
	}

	red, okR := channelValue(r)
	green, okG := channelValue(g)
	blue, okB := channelValue(b)
	if !okR || !okG || !okB {
		return
	}

	alphaByte := uint8(255)
	alphaText := ""

	if alpha != nil {
		if m.useRGBAHex {
			switch value := css_ast.Resolve(alpha).(type) {
			case *css_ast.Percentage:
				if f, err := strconv.ParseFloat(value.Value, 64); err == nil {
					alphaByte = uint8(math.Round(2.55 * f))
				}
			case *css_ast.Number:
				if f, err := strconv.ParseFloat(value.Value, 64); err == nil {
					alphaByte = uint8(math.Round(255 * f))
				}
			default:
				return
			}

			if alphaByte == 0 {
				m.replaceWithTransparent(fn)
				return
			}
		} else {
			switch value := css_ast.Resolve(alpha).(type) {
			case *css_ast.Percentage:
				alphaText = percentageToNumber(value.Value)
			case *css_ast.Number:
				alphaText = value.Value
			default:
				return
			}

			if alphaText == "0" {
				m.replaceWithTransparent(fn)
				return
			}
		}
	}

	if m.useRGBAHex || ((alphaText == "" || alphaText == "1") && alphaByte == 255) {
		hex := hexFromRGBA(red, green, blue, alphaByte)
		color := &css_ast.Color{Kind: css_ast.ColorHexLiteral, Value: hex}
		color.SetPos(fn.Pos())
		fn.SetReplacement(color)
		return
	}

	// Keep the function form but canonicalize the channels
	r.SetReplacement(css_ast.NewNumber(strconv.Itoa(int(red))))
	g.SetReplacement(css_ast.NewNumber(strconv.Itoa(int(green))))
	b.SetReplacement(css_ast.NewNumber(strconv.Itoa(int(blue))))

	// Replace a percentage alpha only when the number form is shorter
	if percentage, isPercentage := css_ast.Resolve(alpha).(*css_ast.Percentage); isPercentage {
		if len(percentage.Value)+1 > len(alphaText) {
			alpha.SetReplacement(css_ast.NewNumber(alphaText))
		}
	}
}

// "hsl()" is converted to "rgb()" using the standard algorithm, but the
// replacement is attached only if the resulting string is shorter. A zero
// alpha always wins as "transparent".
func (m *Modifier) maybeRewriteHslFunction(fn *css_ast.Function) {
	h, s, l, alphaElem, ok := colorFunctionChannels(fn)
	if !ok {
		return
	}

	sat, isSatPct := css_ast.Resolve(s).(*css_ast.Percentage)
	light, isLightPct := css_ast.Resolve(l).(*css_ast.Percentage)
	if !isSatPct || !isLightPct {
		return
	}

	var hueText string
	var hueUnitLen int
	switch hue := css_ast.Resolve(h).(type) {
	case *css_ast.Number:
		hueText = hue.Value
	case *css_ast.Dimension:
		hueText = hue.Value
		hueUnitLen = len(hue.Unit)
	default:
		return
	}

	alpha := 255.0
	if alphaElem != nil {
		switch value := css_ast.Resolve(alphaElem).(type) {
		case *css_ast.Percentage:
			if f, err := strconv.ParseFloat(percentageToNumber(value.Value), 64); err == nil {
				alpha *= f
			}
		case *css_ast.Number:
			if f, err := strconv.ParseFloat(value.Value, 64); err == nil {
				alpha *= f
			}
		default:
			return
		}

		if alpha == 0 {
			m.replaceWithTransparent(fn)
			return
		}
	}

	red, green, blue, ok := hslToRgb(hueText, sat.Value, light.Value)
	if !ok {
		return
	}

	name := "rgb"
	if fn.Name[len(fn.Name)-1] == 'a' {
		name = "rgba"
	}
	rgbFn := &css_ast.Function{Name: name}
	rgbFn.SetPos(fn.Pos())
	rgbFn.Parameters = [][]css_ast.N{
		{css_ast.NewNumber(strconv.Itoa(int(red)))},
		{css_ast.NewNumber(strconv.Itoa(int(green)))},
		{css_ast.NewNumber(strconv.Itoa(int(blue)))},
	}

	if alpha < 255 {
		alphaText := ShortNumber(formatFloat(alpha / 255))

		// Compare the parameter lengths; an equal or longer rgba() form
		// leaves the hsl() in place
		hslLength := len(hueText) + hueUnitLen + len(sat.Value) + 1 + len(light.Value) + 1 + len(alphaText)
		rgbLength := len(rgbFn.Parameters[0][0].(*css_ast.Number).Value) +
			len(rgbFn.Parameters[1][0].(*css_ast.Number).Value) +
			len(rgbFn.Parameters[2][0].(*css_ast.Number).Value) + len(alphaText)

		if hslLength <= rgbLength {
			return
		}

		rgbFn.Parameters = append(rgbFn.Parameters, []css_ast.N{css_ast.NewNumber(alphaText)})
	}

	fn.SetReplacement(rgbFn)
}

// C = (1 - |2L - 1|) * S; X = C * (1 - |H/60 mod 2 - 1|); m = L - C/2
func hslToRgb(hueText string, satText string, lightText string) (uint8, uint8, uint8, bool) {
	h, errH := strconv.ParseFloat(hueText, 64)
	s, errS := strconv.ParseFloat(satText, 64)
	l, errL := strconv.ParseFloat(lightText, 64)
	if errH != nil || errS != nil || errL != nil {
		return 0, 0, 0, false
	}
	s /= 100
	l /= 100

	if h == 360 {
		h = 0
	}

	c := (1 - math.Abs(2*l-1)) * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	base := l - c/2

	r, g, b := base, base, base
	switch {
	case h >= 0 && h < 60:
		r += c
		g += x
	case h >= 60 && h < 120:
		r += x
		g += c
	case h >= 120 && h < 180:
		g += c
		b += x
	case h >= 180 && h < 240:
		g += x
		b += c
	case h >= 240 && h < 300:
		r += x
		b += c
	case h >= 300 && h < 360:
		r += c
		b += x
	}

	return uint8(math.Round(r * 255)), uint8(math.Round(g * 255)), uint8(math.Round(b * 255)), true
}

// The first three comma-separated parameters plus an optional fourth, or the
// space-separated modern syntax "r g b / a" in a single parameter list
func colorFunctionChannels(fn *css_ast.Function) (css_ast.N, css_ast.N, css_ast.N, css_ast.N, bool) {
	params := fn.Parameters

	switch len(params) {
	case 3:
		if len(params[0]) == 1 && len(params[1]) == 1 && len(params[2]) == 1 {
			return params[0][0], params[1][0], params[2][0], nil, true
		}
	case 4:
		if len(params[0]) == 1 && len(params[1]) == 1 && len(params[2]) == 1 && len(params[3]) == 1 {
			return params[0][0], params[1][0], params[2][0], params[3][0], true
		}
	case 1:
		list := params[0]
		switch len(list) {
		case 3:
			return list[0], list[1], list[2], nil, true
		case 5:
			if delimiter, ok := css_ast.Resolve(list[3]).(*css_ast.Delimiter); ok && delimiter.Value == "/" {
				return list[0], list[1], list[2], list[4], true
			}
		}
	}
	return nil, nil, nil, nil, false
}

// A channel is an 8-bit value from a number or a percentage (pct * 2.55,
// rounded)
func channelValue(n css_ast.N) (uint8, bool) {
	switch value := css_ast.Resolve(n).(type) {
	case *css_ast.Percentage:
		if f, err := strconv.ParseFloat(value.Value, 64); err == nil {
			return uint8(math.Round(2.55 * f)), true
		}
	case *css_ast.Number:
		if f, err := strconv.ParseFloat(value.Value, 64); err == nil {
			return uint8(f), true
		}
	}
	return 0, false
}

func (m *Modifier) replaceWithTransparent(fn *css_ast.Function) {
	color := &css_ast.Color{}
	color.SetPos(fn.Pos())
	if m.useRGBAHex {
		color.Kind = css_ast.ColorHexLiteral
		color.Value = "0000"
	} else {
		color.Kind = css_ast.ColorPredefinedName
		color.Value = "transparent"
	}
	fn.SetReplacement(color)
}

func hexFromRGBA(r uint8, g uint8, b uint8, a uint8) string {
	var hex string
	if a != 255 {
		hex = fmt.Sprintf("%02x%02x%02x%02x", r, g, b, a)
	} else {
		hex = fmt.Sprintf("%02x%02x%02x", r, g, b)
	}
	return css_ast.ShortHexValue(hex)
}
