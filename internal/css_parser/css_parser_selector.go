package css_parser

import (
	"github.com/excurso/hspp/internal/css_ast"
	"github.com/excurso/hspp/internal/css_lexer"
)

// Selector grammar. A selector list is comma-separated selector combinations;
// a combination is a left-associative tree of combinator nodes connecting
// selector chains; a chain concatenates simple selectors that are doubly
// linked through their parent/child pointers.

// Pseudo-classes whose argument is a selector list
var subSelectorPseudoClasses = map[string]bool{
	"is":           true,
	"not":          true,
	"where":        true,
	"has":          true,
	"host":         true,
	"host-context": true,
}

// Pseudo-classes whose argument is an An+B production
var anPlusBPseudoClasses = map[string]bool{
	"nth-child":       true,
	"nth-last-child":  true,
	"nth-of-type":     true,
	"nth-last-of-type": true,
	"nth-col":         true,
	"nth-last-col":    true,
}

func (p *parser) parseSelectorList() []css_ast.N {
	var selectors []css_ast.N
	for p.ok {
		combination := p.parseSelectorCombination()
		if combination == nil {
			return nil
		}
		selectors = append(selectors, combination)
		p.eatWhitespace()
		if !p.atPunct(',') {
			break
		}
		p.advance()
		p.eatWhitespace()
	}
	return selectors
}

// A left-associative tree of combinators. Whitespace between two selector
// chains is a descendancy combinator; ">", "+", and "~" are the explicit ones.
func (p *parser) parseSelectorCombination() css_ast.N {
	left := p.parseSelectorChain()
	if left == nil {
		return nil
	}

	for p.ok {
		sawWhitespace := p.at(css_lexer.TWhitespace)
		p.eatWhitespace()

		var kind css_ast.CombinatorKind
		switch {
		case p.atPunct('>'):
			kind = css_ast.CombinatorChild
		case p.atPunct('+'):
			kind = css_ast.CombinatorNextSibling
		case p.atPunct('~'):
			kind = css_ast.CombinatorSubsequentSibling
		case sawWhitespace && p.startsSelectorChain():
			kind = css_ast.CombinatorDescendancy
		default:
			return left
		}

		if kind != css_ast.CombinatorDescendancy {
			p.advance()
			p.eatWhitespace()
		}

		right := p.parseSelectorChain()
		if right == nil {
			return nil
		}

		combinator := &css_ast.SelectorCombinator{Kind: kind, Left: left, Right: right}
		left = combinator
	}
	return left
}

func (p *parser) startsSelectorChain() bool {
	switch p.current().Kind {
	case css_lexer.TIdentifier, css_lexer.THash:
		return true
	case css_lexer.TPunctuator:
		switch p.text() {
		case ".", ":", "[", "*":
			return true
		}
	}
	return false
}

// A chain of simple selectors with no whitespace between them. Returns the
// tail of the doubly-linked chain. An omitted leading type selector becomes
// an implicit universal head.
func (p *parser) parseSelectorChain() css_ast.N {
	var tail css_ast.N

	link := func(next css_ast.N) {
		if tail != nil {
			switch s := next.(type) {
			case *css_ast.Selector:
				s.Parent = tail
			case *css_ast.SelectorAttribute:
				s.Parent = tail
			}
			switch s := tail.(type) {
			case *css_ast.Selector:
				s.Child = next
			case *css_ast.SelectorAttribute:
				s.Child = next
			}
		}
		tail = next
	}

	if !p.startsSelectorChain() {
		p.unexpected("- expected selector")
		return nil
	}

	// A chain that starts with a subclass selector gets an implicit "*" head
	if !p.at(css_lexer.TIdentifier) && !p.atPunct('*') {
		universal := &css_ast.Selector{Kind: css_ast.SelectorUniversal}
		name := "*"
		universal.Name = &name
		universal.SetPos(p.current().Pos)
		tail = universal
	}

	for p.ok {
		token := p.current()
		switch {
		case p.at(css_lexer.TIdentifier) && tail == nil:
			name := token.Text
			selector := &css_ast.Selector{Kind: css_ast.SelectorType, Name: &name}
			selector.SetPos(token.Pos)
			p.advance()
			link(selector)

		case p.atPunct('*') && tail == nil:
			name := "*"
			selector := &css_ast.Selector{Kind: css_ast.SelectorUniversal, Name: &name}
			selector.SetPos(token.Pos)
			p.advance()
			link(selector)

		case p.at(css_lexer.THash):
			name := token.Text
			selector := &css_ast.Selector{Kind: css_ast.SelectorID, Name: &name}
			selector.SetPos(token.Pos)
			p.advance()
			link(selector)

		case p.atPunct('.'):
			p.advance()
			if !p.at(css_lexer.TIdentifier) {
				p.unexpected("- expected class name after \".\"")
				return nil
			}
			name := p.text()
			selector := &css_ast.Selector{Kind: css_ast.SelectorClass, Name: &name}
			selector.SetPos(token.Pos)
			p.advance()
			link(selector)

		case p.atPunct('['):
			attribute := p.parseAttributeSelector()
			if attribute == nil {
				return nil
			}
			link(attribute)

		case p.atPunct(':'):
			selector := p.parsePseudoSelector()
			if selector == nil {
				return nil
			}
			link(selector)

		default:
			if tail == nil {
				p.unexpected("- expected selector")
				return nil
			}
			return tail
		}

		// The chain ends at whitespace, a combinator, a comma, or "{"
		if p.at(css_lexer.TWhitespace) || !p.startsSelectorChain() {
			return tail
		}
	}
	return tail
}

// "[name]", "[name=val]", "[name^=val]", ... with an optional trailing "i"
func (p *parser) parseAttributeSelector() *css_ast.SelectorAttribute {
	attribute := &css_ast.SelectorAttribute{}
	attribute.SetPos(p.current().Pos)
	p.advance() // "["
	p.eatWhitespace()

	if !p.at(css_lexer.TIdentifier) {
		p.unexpected("- expected attribute name")
		return nil
	}
	attribute.AttrName = p.text()
	p.advance()
	p.eatWhitespace()

	switch {
	case p.atPunct('='):
		attribute.Op = css_ast.AttrOpEqual
		p.advance()
	case p.atPunct('^'):
		attribute.Op = css_ast.AttrOpCaretEqual
		p.advance()
		if !p.expectPunct('=', "in attribute selector") {
			return nil
		}
	case p.atPunct('$'):
		attribute.Op = css_ast.AttrOpDollarEqual
		p.advance()
		if !p.expectPunct('=', "in attribute selector") {
			return nil
		}
	case p.atPunct('|'):
		attribute.Op = css_ast.AttrOpPipeEqual
		p.advance()
		if !p.expectPunct('=', "in attribute selector") {
			return nil
		}
	case p.atPunct('~'):
		attribute.Op = css_ast.AttrOpTildeEqual
		p.advance()
		if !p.expectPunct('=', "in attribute selector") {
			return nil
		}
	case p.atPunct('*'):
		attribute.Op = css_ast.AttrOpAsteriskEqual
		p.advance()
		if !p.expectPunct('=', "in attribute selector") {
			return nil
		}
	}

	if attribute.Op != css_ast.AttrOpNone {
		p.eatWhitespace()
		switch p.current().Kind {
		case css_lexer.TIdentifier, css_lexer.TString, css_lexer.TNumeric:
			attribute.AttrValue = p.text()
			p.advance()
		default:
			p.unexpected("- expected attribute value")
			return nil
		}
	}

	// A trailing "i" after whitespace sets the case-insensitive flag
	if p.at(css_lexer.TWhitespace) {
		p.eatWhitespace()
		if p.at(css_lexer.TIdentifier) && p.text() == "i" {
			attribute.CaseInsensitive = true
			p.advance()
			p.eatWhitespace()
		}
	}

	if !p.expectPunct(']', "to end attribute selector") {
		return nil
	}
	return attribute
}

// ":pseudo", "::element", ":pseudo(args)"
func (p *parser) parsePseudoSelector() *css_ast.Selector {
	start := p.current().Pos
	p.advance() // ":"

	kind := css_ast.SelectorPseudoClass
	if p.atPunct(':') {
		kind = css_ast.SelectorPseudoElement
		p.advance()
	}

	if !p.at(css_lexer.TIdentifier) {
		p.unexpected("- expected pseudo-class name")
		return nil
	}
	name := p.text()
	selector := &css_ast.Selector{Kind: kind, Name: &name}
	selector.SetPos(start)
	p.advance()

	if !p.atPunct('(') {
		return selector
	}
	p.advance()
	p.eatWhitespace()

	switch {
	case kind == css_ast.SelectorPseudoClass && subSelectorPseudoClasses[name]:
		selector.SubSelectors = p.parseSelectorList()
		if !p.ok {
			return nil
		}

	case kind == css_ast.SelectorPseudoClass && anPlusBPseudoClasses[name]:
		argument := p.parseAnPlusB()
		if argument == nil {
			return nil
		}
		selector.SubSelectors = []css_ast.N{argument}

	case kind == css_ast.SelectorPseudoClass && name == "lang":
		if !p.at(css_lexer.TIdentifier) {
			p.unexpected("- expected language tag")
			return nil
		}
		selector.SubSelectors = []css_ast.N{p.parseIdentifier()}

	default:
		// Unknown-but-well-formed arguments pass through as identifiers,
		// numbers, and strings
		for p.ok && !p.atPunct(')') && !p.at(css_lexer.TEndOfFile) {
			if p.atPunct(',') {
				p.advance()
				p.eatWhitespace()
				continue
			}
			element := p.parseValue(valueOptions{})
			if element == nil {
				return nil
			}
			selector.SubSelectors = append(selector.SubSelectors, element)
			p.eatWhitespace()
		}
	}

	p.eatWhitespace()
	if !p.expectPunct(')', "to end pseudo-class arguments") {
		return nil
	}
	return selector
}

// An+B: "even", "odd", or "[+|-]?[digits]?n[+|-digits]?", optionally followed
// by "of <selector combination>". The production is stored textually.
func (p *parser) parseAnPlusB() *css_ast.Selector {
	start := p.current().Pos
	text := ""

	appendToken := func() {
		text += p.text()
		p.advance()
	}

	for p.ok {
		switch p.current().Kind {
		case css_lexer.TWhitespace:
			p.eatWhitespace()
			continue
		case css_lexer.TNumeric, css_lexer.TUnit:
			appendToken()
			continue
		case css_lexer.TIdentifier:
			// "even", "odd", "n", "-n", "n-1"; stop before "of"
			if p.text() == "of" {
				break
			}
			appendToken()
			continue
		case css_lexer.TPunctuator:
			if p.atPunct('+') || p.atPunct('-') {
				appendToken()
				continue
			}
		}
		break
	}

	if text == "" {
		p.unexpected("- expected An+B expression")
		return nil
	}

	selector := &css_ast.Selector{Kind: css_ast.SelectorAnPlusB, Name: &text}
	selector.SetPos(start)

	// Optional "of <selector combination>"
	p.eatWhitespace()
	if p.at(css_lexer.TIdentifier) && p.text() == "of" {
		p.advance()
		p.eatWhitespace()
		combination := p.parseSelectorCombination()
		if combination == nil {
			return nil
		}
		selector.SubSelectors = []css_ast.N{combination}
	}

	return selector
}
