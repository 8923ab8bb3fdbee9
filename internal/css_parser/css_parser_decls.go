package css_parser

import (
	"strings"

	"github.com/excurso/hspp/internal/css_ast"
	"github.com/excurso/hspp/internal/css_lexer"
)

// Declarations and component values

var mathFunctions = map[string]bool{
	"calc":  true,
	"clamp": true,
	"max":   true,
	"min":   true,
}

type valueOptions struct {
	// Inside calc()/min()/max()/clamp() the operators "+ - * /" are preserved
	// as delimiters and parens nest as blocks
	insideMath bool
}

func (p *parser) parseDeclaration() *css_ast.Declaration {
	declaration := &css_ast.Declaration{}
	declaration.SetPos(p.current().Pos)

	// A "*" immediately before the name is the IE<=7 star hack
	if p.atPunct('*') {
		declaration.StarHack = true
		p.advance()
	}

	if !p.at(css_lexer.TIdentifier) {
		p.unexpected("- expected declaration name")
		return nil
	}
	nameToken := p.current()
	if strings.HasPrefix(nameToken.Text, "--") {
		declaration.Name = css_ast.NewCustomProperty(nameToken.Text[2:], nameToken.Pos)
	} else {
		declaration.Name = css_ast.NewIdentifier(nameToken.Text, nameToken.Pos)
	}
	p.advance()
	p.eatWhitespace()

	if !p.expectPunct(':', "after declaration name") {
		return nil
	}
	p.eatWhitespace()

	// IE "progid:" filter values are preserved verbatim
	if p.at(css_lexer.TIdentifier) && p.text() == "progid" {
		return p.parseProgidValue(declaration)
	}

	var list []css_ast.N
	for p.ok {
		token := p.current()
		if token.Kind == css_lexer.TEndOfFile ||
			token.IsPunctuator(';') || token.IsPunctuator('}') || token.IsPunctuator(')') {
			break
		}

		if token.Kind == css_lexer.TWhitespace {
			p.advance()
			continue
		}

		if token.IsPunctuator(',') {
			p.advance()
			p.eatWhitespace()
			declaration.Values = append(declaration.Values, list)
			list = nil
			continue
		}

		if token.IsPunctuator('!') {
			p.advance()
			p.eatWhitespace()
			if !p.at(css_lexer.TIdentifier) {
				p.unexpected("after \"!\"")
				return nil
			}
			if strings.EqualFold(p.text(), "important") {
				declaration.Important = true
			} else {
				declaration.ImportantHack = p.text()
			}
			p.advance()
			p.eatWhitespace()
			break
		}

		value := p.parseValue(valueOptions{})
		if value == nil {
			return nil
		}
		list = append(list, value)
	}
	if !p.ok {
		return nil
	}

	if len(list) == 0 && len(declaration.Values) == 0 {
		p.unexpected("- expected declaration value")
		return nil
	}

	declaration.Values = append(declaration.Values, list)
	return declaration
}

// Consumes a "progid:DXImageTransform..." value up to the end of the
// declaration and stores it as a single unquoted string
func (p *parser) parseProgidValue(declaration *css_ast.Declaration) *css_ast.Declaration {
	start := p.current().Pos
	sb := strings.Builder{}
	depth := 0

	for p.ok {
		token := p.current()
		if token.Kind == css_lexer.TEndOfFile {
			break
		}
		if depth == 0 && (token.IsPunctuator(';') || token.IsPunctuator('}')) {
			break
		}
		switch {
		case token.IsPunctuator('('):
			depth++
			sb.WriteString("(")
		case token.IsPunctuator(')'):
			depth--
			sb.WriteString(")")
		case token.Kind == css_lexer.TWhitespace:
			sb.WriteString(" ")
		case token.Kind == css_lexer.TString:
			sb.WriteString("'")
			sb.WriteString(token.Text)
			sb.WriteString("'")
		default:
			sb.WriteString(token.Text)
		}
		p.advance()
	}

	value := &css_ast.String{Value: strings.TrimRight(sb.String(), " "), Unquoted: true}
	value.SetPos(start)
	declaration.Values = [][]css_ast.N{{value}}
	return declaration
}

func (p *parser) parseValue(options valueOptions) css_ast.N {
	token := p.current()

	switch token.Kind {
	case css_lexer.TNumeric:
		return p.parseNumeric(false)

	case css_lexer.THash:
		return p.parseHexColor()

	case css_lexer.TString:
		str := &css_ast.String{Value: token.Text}
		str.SetPos(token.Pos)
		p.advance()
		return str

	case css_lexer.TUnicodeRange:
		urange := &css_ast.UnicodeRange{Value: token.Text}
		urange.SetPos(token.Pos)
		p.advance()
		return urange

	case css_lexer.TComment:
		return p.parseComment()

	case css_lexer.TIdentifier:
		if p.peek().IsPunctuator('(') {
			return p.parseFunction()
		}
		name := token.Text
		if lower := strings.ToLower(name); css_ast.IsPredefinedColorName(lower) {
			color := &css_ast.Color{Kind: css_ast.ColorPredefinedName, Value: lower}
			color.SetPos(token.Pos)
			p.advance()
			return color
		}
		if strings.HasPrefix(name, "--") {
			property := css_ast.NewCustomProperty(name[2:], token.Pos)
			p.advance()
			return property
		}
		return p.parseIdentifier()

	case css_lexer.TEscape:
		return p.parseIdentifier()

	case css_lexer.TPunctuator:
		switch token.Text {
		case "-", "+":
			// A sign directly attached to a number is part of the number;
			// otherwise this is an operator delimiter
			if p.peek().Kind == css_lexer.TNumeric {
				negative := token.Text == "-"
				p.advance()
				return p.parseNumeric(negative)
			}
			fallthrough
		case "*", "/":
			delimiter := &css_ast.Delimiter{Value: token.Text}
			delimiter.SetPos(token.Pos)
			p.advance()
			return delimiter
		case "(":
			if options.insideMath {
				return p.parseMathParen()
			}
		}
	}

	p.unexpected("in declaration value")
	return nil
}

func (p *parser) parseNumeric(negative bool) css_ast.N {
	token := p.current()
	number := css_ast.Number{Value: token.Text, Negative: negative}
	p.advance()

	if p.at(css_lexer.TScientific) {
		number.Scientific = p.text()
		p.advance()
	}

	switch {
	case p.at(css_lexer.TUnit):
		dimension := &css_ast.Dimension{Number: number, Unit: p.text()}
		dimension.SetPos(token.Pos)
		p.advance()
		return dimension

	case p.atPunct('%'):
		percentage := &css_ast.Percentage{Number: number}
		percentage.SetPos(token.Pos)
		p.advance()
		return percentage
	}

	result := &css_ast.Number{Value: number.Value, Scientific: number.Scientific, Negative: number.Negative}
	result.SetPos(token.Pos)
	return result
}

// "#rgb", "#rgba", "#rrggbb", "#rrggbbaa"; lower-cased. Any other length or a
// non-hex digit is fatal.
func (p *parser) parseHexColor() css_ast.N {
	token := p.current()
	value := strings.ToLower(token.Text)

	switch len(value) {
	case 3, 4, 6, 8:
	default:
		p.log.AddError(&p.source, token.Pos, "Invalid hex color \"#"+token.Text+"\"")
		p.ok = false
		return nil
	}
	for i := 0; i < len(value); i++ {
		c := value[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			p.log.AddError(&p.source, token.Pos, "Invalid hex color \"#"+token.Text+"\"")
			p.ok = false
			return nil
		}
	}

	color := &css_ast.Color{Kind: css_ast.ColorHexLiteral, Value: value}
	color.SetPos(token.Pos)
	p.advance()
	return color
}

func (p *parser) parseFunction() *css_ast.Function {
	token := p.current()
	fn := &css_ast.Function{Name: token.Text}
	fn.SetPos(token.Pos)
	p.advance() // the name
	p.advance() // "("

	// alpha(...) (IE) is consumed as an opaque string
	if strings.EqualFold(fn.Name, "alpha") {
		return p.parseOpaqueFunction(fn)
	}

	options := valueOptions{insideMath: mathFunctions[strings.ToLower(fn.Name)]}
	p.eatWhitespace()

	var list []css_ast.N
	for p.ok && !p.atPunct(')') && !p.at(css_lexer.TEndOfFile) {
		if p.at(css_lexer.TWhitespace) {
			p.advance()
			continue
		}
		if p.atPunct(',') {
			p.advance()
			p.eatWhitespace()
			fn.Parameters = append(fn.Parameters, list)
			list = nil
			continue
		}
		value := p.parseValue(options)
		if value == nil {
			return nil
		}
		list = append(list, value)
	}
	if !p.ok {
		return nil
	}
	if !p.expectPunct(')', "to end function") {
		return nil
	}
	fn.Parameters = append(fn.Parameters, list)
	return fn
}

func (p *parser) parseOpaqueFunction(fn *css_ast.Function) *css_ast.Function {
	start := p.current().Pos
	sb := strings.Builder{}
	depth := 1

	for p.ok {
		token := p.current()
		if token.Kind == css_lexer.TEndOfFile {
			p.unexpected("- expected \")\" to end function")
			return nil
		}
		if token.IsPunctuator('(') {
			depth++
		} else if token.IsPunctuator(')') {
			depth--
			if depth == 0 {
				p.advance()
				break
			}
		}
		if token.Kind == css_lexer.TWhitespace {
			sb.WriteString(" ")
		} else if token.Kind == css_lexer.TString {
			sb.WriteString("'")
			sb.WriteString(token.Text)
			sb.WriteString("'")
		} else {
			sb.WriteString(token.Text)
		}
		p.advance()
	}

	value := &css_ast.String{Value: sb.String(), Unquoted: true}
	value.SetPos(start)
	fn.Parameters = [][]css_ast.N{{value}}
	return fn
}

// A nested parenthesized group inside a math function
func (p *parser) parseMathParen() css_ast.N {
	block := &css_ast.Block{Kind: css_ast.BlockParen}
	block.SetPos(p.current().Pos)
	p.advance() // "("
	p.eatWhitespace()

	for p.ok && !p.atPunct(')') && !p.at(css_lexer.TEndOfFile) {
		if p.at(css_lexer.TWhitespace) {
			p.advance()
			continue
		}
		value := p.parseValue(valueOptions{insideMath: true})
		if value == nil {
			return nil
		}
		block.Elements = append(block.Elements, value)
	}
	if !p.expectPunct(')', "to end group") {
		return nil
	}
	return block
}
