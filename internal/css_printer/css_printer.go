package css_printer

import (
	"strings"

	"github.com/excurso/hspp/internal/css_ast"
)

// The printer walks the (possibly modified) AST and appends bytes to an
// output buffer. Whitespace is context-aware: the minified mode emits none
// except where CSS lexical rules require it, the beautified mode emits
// newlines and tab indentation by block depth.
//
// Before any node is visited its replacement pointer is followed, so rewrites
// attached by the modifier take effect here.

// The fixed header comment of minified output files. It is stripped again if
// the minified result would otherwise be larger than the input.
const OutputFileHeader = "/* Minified with HSPP - HyperSheetsPreprocessor */"

type Options struct {
	// Emitted before the stylesheet in minified mode, e.g. a generator notice
	Header string

	Beautify bool
}

type context uint8

const (
	contextNone context = iota
	contextDeclaration
	contextSelectorList
	contextAtRuleExpressionList
)

type printer struct {
	options  Options
	sb       strings.Builder
	indent   int
	contexts []context
}

func Print(sheet *css_ast.Block, options Options) string {
	p := printer{options: options}
	p.printNode(sheet)
	return p.sb.String()
}

func (p *printer) push(c context) {
	p.contexts = append(p.contexts, c)
}

func (p *printer) pop() {
	p.contexts = p.contexts[:len(p.contexts)-1]
}

func (p *printer) inContext(candidates ...context) bool {
	if len(p.contexts) == 0 {
		return false
	}
	top := p.contexts[len(p.contexts)-1]
	for _, c := range candidates {
		if top == c {
			return true
		}
	}
	return false
}

func (p *printer) print(text string) {
	p.sb.WriteString(text)
}

func (p *printer) printIndent() {
	if p.options.Beautify {
		p.print(strings.Repeat("\t", p.indent))
	}
}

func (p *printer) last() byte {
	s := p.sb.String()
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1]
}

// Drops trailing bytes; used to trim whitespace before delimiters and
// trailing newlines at the end of the stylesheet
func (p *printer) trimRight(cutset string) {
	s := p.sb.String()
	trimmed := strings.TrimRight(s, cutset)
	if len(trimmed) != len(s) {
		p.sb.Reset()
		p.sb.WriteString(trimmed)
	}
}

func (p *printer) printNode(n css_ast.N) {
	n = css_ast.Resolve(n)
	if n == nil {
		return
	}

	switch node := n.(type) {
	case *css_ast.Block:
		p.printBlock(node)
	case *css_ast.AtRule:
		p.printAtRule(node)
	case *css_ast.QualifiedRule:
		p.printQualifiedRule(node)
	case *css_ast.Declaration:
		p.printDeclaration(node)
	case *css_ast.Selector:
		p.printSelector(node)
	case *css_ast.SelectorAttribute:
		p.printSelectorAttribute(node)
	case *css_ast.SelectorCombinator:
		p.printSelectorCombinator(node)
	case *css_ast.Function:
		p.printFunction(node)
	case *css_ast.Identifier:
		p.print(*node.Name)
	case *css_ast.CustomProperty:
		p.print("--")
		p.print(*node.Name)
	case *css_ast.Percentage:
		p.printNumber(&node.Number)
		p.print("%")
	case *css_ast.Dimension:
		p.printNumber(&node.Number)
		p.print(node.Unit)
	case *css_ast.Number:
		p.printNumber(node)
	case *css_ast.Color:
		if node.Kind == css_ast.ColorHexLiteral {
			p.print("#")
		}
		p.print(node.Value)
	case *css_ast.String:
		p.printString(node)
	case *css_ast.Delimiter:
		p.printDelimiter(node)
	case *css_ast.UnicodeRange:
		p.print(node.Value)
	case *css_ast.SupportsCondition:
		p.print("supports")
		p.printNode(node.Condition)
	case *css_ast.Comment:
		p.printComment(node)
	}
}

func (p *printer) printBlock(block *css_ast.Block) {
	switch block.Kind {
	case css_ast.BlockStylesheet:
		if !p.options.Beautify && p.options.Header != "" {
			p.print(p.options.Header)
			p.print("\n")
		}
	case css_ast.BlockCurly:
		if p.options.Beautify {
			p.print(" ")
		}
		p.print("{")
		if p.options.Beautify {
			p.print("\n")
			p.indent++
		}
	case css_ast.BlockSquare:
		p.print("[")
	case css_ast.BlockParen:
		p.print("(")
	}

	for i, element := range block.Elements {
		if block.Kind == css_ast.BlockCurly || block.Kind == css_ast.BlockStylesheet {
			p.printIndent()
		}

		// Space-join adjacent identifiers (e.g. media expressions spliced
		// into a default block)
		if _, isIdentifier := css_ast.Resolve(element).(*css_ast.Identifier); isIdentifier && i > 0 {
			p.print(" ")
		}

		p.printNode(element)

		if _, isDeclaration := css_ast.Resolve(element).(*css_ast.Declaration); isDeclaration && i+1 < len(block.Elements) {
			p.print(";")
		}

		if p.options.Beautify && block.Kind == css_ast.BlockCurly && p.last() != '\n' {
			p.print("\n")
		}

		if _, isIdentifier := css_ast.Resolve(element).(*css_ast.Identifier); isIdentifier && i+1 < len(block.Elements) {
			p.print(" ")
		}
	}

	switch block.Kind {
	case css_ast.BlockStylesheet:
		p.trimRight("\n")
	case css_ast.BlockCurly:
		if p.options.Beautify {
			p.indent--
			p.trimRight("\n")
			p.print("\n")
			p.printIndent()
		}
		p.print("}")
		if p.options.Beautify {
			p.print("\n\n")
		}
	case css_ast.BlockSquare:
		p.print("]")
	case css_ast.BlockParen:
		p.print(")")
	}
}

func (p *printer) printAtRule(rule *css_ast.AtRule) {
	p.print("@")
	p.print(rule.Keyword)

	p.push(contextAtRuleExpressionList)
	for i, list := range rule.Expressions {
		for j, element := range list {
			// Minified output needs no space after a list comma
			if i == 0 || j > 0 || p.options.Beautify {
				p.print(" ")
			}
			p.printNode(element)
		}
		if i+1 < len(rule.Expressions) {
			p.print(",")
		}
	}
	p.pop()

	if rule.Block == nil {
		p.print(";")
		if p.options.Beautify {
			p.print("\n")
		}
		return
	}

	if p.options.Beautify {
		p.print(" ")
	}
	p.print("{")
	if p.options.Beautify {
		p.print("\n")
		p.indent++
	}

	for i, element := range rule.Block.Elements {
		p.printIndent()
		p.printNode(element)

		resolved := css_ast.Resolve(element)
		switch resolved.(type) {
		case *css_ast.QualifiedRule, *css_ast.AtRule, *css_ast.Comment:
		default:
			if i+1 < len(rule.Block.Elements) {
				p.print(";")
			}
		}

		if p.options.Beautify && p.last() != '\n' {
			p.print("\n")
		}
	}

	if p.options.Beautify {
		p.indent--
		p.trimRight("\n")
		p.print("\n")
		p.printIndent()
	}
	p.print("}")
	if p.options.Beautify {
		p.print("\n\n")
	}
}

func (p *printer) printQualifiedRule(rule *css_ast.QualifiedRule) {
	p.push(contextSelectorList)
	for i, selector := range rule.Selectors {
		p.printNode(selector)
		if i+1 < len(rule.Selectors) {
			p.print(",")
			if p.options.Beautify {
				p.print("\n")
				p.printIndent()
			}
		}
	}
	p.pop()

	p.printNode(rule.Block)
}

func (p *printer) printDeclaration(declaration *css_ast.Declaration) {
	p.push(contextDeclaration)

	if declaration.StarHack {
		p.print("*")
	}
	p.printNode(declaration.Name)
	p.print(":")
	if p.options.Beautify {
		p.print(" ")
	}

	for i, list := range declaration.Values {
		p.printValueList(list)
		if i+1 < len(declaration.Values) {
			p.print(",")
		}
	}

	if declaration.Important {
		if p.options.Beautify {
			p.print(" ")
		}
		p.print("!important")
	} else if declaration.ImportantHack != "" {
		if p.options.Beautify {
			p.print(" ")
		}
		p.print("!")
		p.print(declaration.ImportantHack)
	}

	p.pop()
}

func (p *printer) printValueList(list []css_ast.N) {
	for i, value := range list {
		p.printNode(value)
		if i+1 < len(list) {
			if _, isDelimiter := css_ast.Resolve(value).(*css_ast.Delimiter); !isDelimiter {
				p.print(" ")
			}
		}
	}
}

func (p *printer) printFunction(fn *css_ast.Function) {
	p.print(fn.Name)
	p.print("(")

	// Math functions keep their delimiters and nested groups verbatim
	switch strings.ToLower(fn.Name) {
	case "calc", "min", "max", "clamp", "alpha":
		for i, list := range fn.Parameters {
			for _, element := range list {
				p.printNode(element)
			}
			if i+1 < len(fn.Parameters) {
				p.print(",")
			}
		}
		p.print(")")
		return
	}

	for i, list := range fn.Parameters {
		p.printValueList(list)
		if i+1 < len(fn.Parameters) {
			p.print(",")
		}
	}
	p.print(")")
}

func (p *printer) printNumber(number *css_ast.Number) {
	if number.Negative {
		p.print("-")
	}
	p.print(number.Value)
	p.print(number.Scientific)
}

func (p *printer) printString(str *css_ast.String) {
	if str.Unquoted {
		p.print(str.Value)
		return
	}
	quote := "\""
	if strings.Contains(str.Value, "\"") {
		quote = "'"
	}
	p.print(quote)
	p.print(str.Value)
	p.print(quote)
}

// Delimiter emission strips a trailing space first, then re-pads "+" and "-"
// on both sides to keep operator-as-sign unambiguous
func (p *printer) printDelimiter(delimiter *css_ast.Delimiter) {
	p.trimRight(" ")
	if delimiter.Value == "+" || delimiter.Value == "-" {
		p.print(" ")
	}
	p.print(delimiter.Value)
	if delimiter.Value == "+" || delimiter.Value == "-" {
		p.print(" ")
	}
}

func (p *printer) printSelector(selector *css_ast.Selector) {
	if selector.Parent != nil {
		p.printNode(selector.Parent)
	}

	switch selector.Kind {
	case css_ast.SelectorID:
		p.print("#")
	case css_ast.SelectorClass:
		p.print(".")
	case css_ast.SelectorPseudoClass:
		p.print(":")
	case css_ast.SelectorPseudoElement:
		p.print("::")
	case css_ast.SelectorUniversal:
		// Implicit when the chain continues with a subclass selector
		if selector.Child == nil {
			p.print("*")
		}
		return
	}

	p.print(*selector.Name)

	switch selector.Kind {
	case css_ast.SelectorPseudoClass:
		if len(selector.SubSelectors) > 0 {
			p.print("(")
			for i, sub := range selector.SubSelectors {
				p.printNode(sub)
				if i+1 < len(selector.SubSelectors) {
					p.print(",")
				}
			}
			p.print(")")
		}
	case css_ast.SelectorAnPlusB:
		if len(selector.SubSelectors) > 0 {
			p.print(" of ")
			for _, sub := range selector.SubSelectors {
				p.printNode(sub)
			}
		}
	}
}

func (p *printer) printSelectorAttribute(attribute *css_ast.SelectorAttribute) {
	if attribute.Parent != nil {
		p.printNode(attribute.Parent)
	}

	p.print("[")
	p.print(attribute.AttrName)

	if attribute.AttrValue != "" {
		p.print(attribute.Op.String())

		quote := strings.ContainsAny(attribute.AttrValue, " \"'=<>`") ||
			(attribute.AttrValue[0] >= '0' && attribute.AttrValue[0] <= '9')
		if quote {
			p.print("\"")
		}
		p.print(attribute.AttrValue)
		if quote {
			p.print("\"")
		}
	}

	if attribute.CaseInsensitive {
		p.print(" i")
	}
	p.print("]")
}

func (p *printer) printSelectorCombinator(combinator *css_ast.SelectorCombinator) {
	p.printNode(combinator.Left)

	if p.options.Beautify && combinator.Kind != css_ast.CombinatorDescendancy {
		p.print(" ")
	}

	switch combinator.Kind {
	case css_ast.CombinatorDescendancy:
		p.print(" ")
	case css_ast.CombinatorChild:
		p.print(">")
	case css_ast.CombinatorNextSibling:
		p.print("+")
	case css_ast.CombinatorSubsequentSibling:
		p.print("~")
	}

	if p.options.Beautify && combinator.Kind != css_ast.CombinatorDescendancy {
		p.print(" ")
	}

	p.printNode(combinator.Right)
}

func (p *printer) printComment(comment *css_ast.Comment) {
	// CDATA markers print verbatim
	if comment.Kind != css_ast.CommentRegular {
		p.print(comment.Value)
		return
	}

	topLevel := !p.inContext(contextDeclaration, contextSelectorList, contextAtRuleExpressionList)
	if topLevel && p.sb.Len() > 0 && p.last() != '\n' && p.options.Beautify {
		p.print("\n")
	}

	p.print("/*")
	p.print(comment.Value)
	p.print("*/")

	if topLevel && p.options.Beautify {
		p.print("\n")
	}
}
