package css_parser

import (
	"strings"

	"github.com/excurso/hspp/internal/css_ast"
	"github.com/excurso/hspp/internal/css_lexer"
	"github.com/excurso/hspp/internal/logger"
)

// The parser is a recursive-descent machine over the token stream produced by
// the lexer. It builds the AST that the modifier mutates and the printer
// serializes. Any unexpected token is fatal: an error pointing at the file,
// row, and column is logged and a nil AST is returned.

type parser struct {
	log    logger.Log
	source logger.Source
	tokens []css_lexer.Token
	index  int

	// Position stack for backtracking
	stack []int

	ok bool
}

var knownAtRules = []string{
	"charset", "counter-style", "document", "font-face", "import",
	"keyframes", "media", "namespace", "page", "supports", "viewport",
}

// Parses a whole stylesheet. Returns nil if a parse error was logged.
func Parse(log logger.Log, source logger.Source, tokens []css_lexer.Token) *css_ast.Block {
	p := parser{log: log, source: source, tokens: tokens, ok: true}
	sheet := p.parseStylesheet()
	if !p.ok {
		return nil
	}
	return sheet
}

// Parses the contents of a style="..." attribute: a bare declaration list.
// The result is a stylesheet block containing only declarations.
func ParseDeclarationList(log logger.Log, source logger.Source, tokens []css_lexer.Token) *css_ast.Block {
	p := parser{log: log, source: source, tokens: tokens, ok: true}
	sheet := &css_ast.Block{Kind: css_ast.BlockStylesheet}
	p.eatWhitespace()
	for p.ok && !p.at(css_lexer.TEndOfFile) {
		if declaration := p.parseDeclaration(); declaration != nil {
			sheet.Elements = append(sheet.Elements, declaration)
		}
		p.eatWhitespace()
		if p.atPunct(';') {
			p.advance()
			p.eatWhitespace()
		}
	}
	if !p.ok {
		return nil
	}
	return sheet
}

func (p *parser) parseStylesheet() *css_ast.Block {
	sheet := &css_ast.Block{Kind: css_ast.BlockStylesheet}
	p.eatWhitespace()

	for p.ok && !p.at(css_lexer.TEndOfFile) {
		switch p.current().Kind {
		case css_lexer.TAtKeyword:
			if rule := p.parseAtRule(); rule != nil {
				sheet.Elements = append(sheet.Elements, rule)
			}
		case css_lexer.TComment, css_lexer.TCDataStart, css_lexer.TCDataEnd:
			sheet.Elements = append(sheet.Elements, p.parseComment())
		default:
			if rule := p.parseQualifiedRule(false); rule != nil {
				sheet.Elements = append(sheet.Elements, rule)
			}
		}
		p.eatWhitespace()
	}

	return sheet
}

// Token cursor

func (p *parser) current() css_lexer.Token {
	if p.index < len(p.tokens) {
		return p.tokens[p.index]
	}
	return css_lexer.Token{Kind: css_lexer.TEndOfFile}
}

func (p *parser) at(kind css_lexer.T) bool {
	return p.current().Kind == kind
}

func (p *parser) atPunct(c byte) bool {
	return p.current().IsPunctuator(c)
}

func (p *parser) text() string {
	return p.current().Text
}

func (p *parser) advance() {
	if p.index < len(p.tokens) {
		p.index++
	}
}

func (p *parser) eatWhitespace() {
	for p.at(css_lexer.TWhitespace) {
		p.advance()
	}
}

// Returns the next token, skipping over whitespace, without advancing
func (p *parser) peekNonWhitespace() css_lexer.Token {
	for i := p.index + 1; i < len(p.tokens); i++ {
		if p.tokens[i].Kind != css_lexer.TWhitespace {
			return p.tokens[i]
		}
	}
	return css_lexer.Token{Kind: css_lexer.TEndOfFile}
}

// Returns the immediately following token without advancing
func (p *parser) peek() css_lexer.Token {
	if p.index+1 < len(p.tokens) {
		return p.tokens[p.index+1]
	}
	return css_lexer.Token{Kind: css_lexer.TEndOfFile}
}

func (p *parser) remember() {
	p.stack = append(p.stack, p.index)
}

func (p *parser) reset() {
	p.index = p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]
}

func (p *parser) forget() {
	p.stack = p.stack[:len(p.stack)-1]
}

func (p *parser) unexpected(context string) {
	if !p.ok {
		return
	}
	token := p.current()
	text := "Unexpected " + token.Kind.String()
	if token.Text != "" && token.Kind != css_lexer.TWhitespace {
		text += " \"" + token.Text + "\""
	}
	if context != "" {
		text += " " + context
	}
	p.log.AddError(&p.source, token.Pos, text)
	p.ok = false
}

func (p *parser) expectPunct(c byte, context string) bool {
	if p.atPunct(c) {
		p.advance()
		return true
	}
	p.unexpected("- expected \"" + string(c) + "\" " + context)
	return false
}

// Comments

func (p *parser) parseComment() *css_ast.Comment {
	token := p.current()
	comment := &css_ast.Comment{Value: token.Text}
	comment.SetPos(token.Pos)
	switch token.Kind {
	case css_lexer.TCDataStart:
		comment.Kind = css_ast.CommentCDataStart
	case css_lexer.TCDataEnd:
		comment.Kind = css_ast.CommentCDataEnd
	}
	p.advance()
	return comment
}

// At-rules

func (p *parser) parseAtRule() css_ast.N {
	token := p.current()
	keyword := token.Text
	rule := &css_ast.AtRule{Keyword: keyword}
	rule.SetPos(token.Pos)
	p.advance()
	p.eatWhitespace()

	base := css_ast.UnprefixedKeyword(keyword)
	known := false
	for _, name := range knownAtRules {
		if base == name {
			known = true
			break
		}
	}
	if !known {
		p.log.AddError(&p.source, token.Pos, "Unknown at-rule \"@"+keyword+"\"")
		p.ok = false
		return nil
	}

	switch base {
	case "charset":
		return p.parseAtCharset(rule)
	case "import":
		return p.parseAtImport(rule)
	case "namespace":
		return p.parseAtNamespace(rule)
	case "media":
		return p.parseAtMedia(rule)
	case "supports":
		return p.parseAtSupports(rule)
	case "keyframes":
		return p.parseAtKeyframes(rule)
	case "document":
		return p.parseAtDocument(rule)
	default:
		// @font-face, @page, @counter-style, @viewport carry a declaration
		// list. @page may have a pseudo-page prelude like ":first".
		return p.parseAtDeclarationBlock(rule)
	}
}

func (p *parser) parseAtCharset(rule *css_ast.AtRule) css_ast.N {
	if !p.at(css_lexer.TString) {
		p.unexpected("- expected charset string")
		return nil
	}
	str := &css_ast.String{Value: p.text()}
	str.SetPos(p.current().Pos)
	rule.Expressions = [][]css_ast.N{{str}}
	p.advance()
	p.eatWhitespace()
	if !p.expectPunct(';', "after @charset rule") {
		return nil
	}
	return rule
}

func (p *parser) parseAtImport(rule *css_ast.AtRule) css_ast.N {
	var target css_ast.N
	switch {
	case p.at(css_lexer.TString):
		str := &css_ast.String{Value: p.text()}
		str.SetPos(p.current().Pos)
		target = str
		p.advance()
	case p.at(css_lexer.TIdentifier) && strings.EqualFold(p.text(), "url"):
		target = p.parseFunction()
	default:
		p.unexpected("- expected string or url() after @import")
		return nil
	}
	if !p.ok {
		return nil
	}

	rule.Expressions = [][]css_ast.N{{target}}
	p.eatWhitespace()

	// An optional media query list follows the import target
	if !p.atPunct(';') {
		lists := p.parseMediaQueryList(';')
		if !p.ok {
			return nil
		}
		for i, list := range lists {
			if i == 0 {
				rule.Expressions[0] = append(rule.Expressions[0], list...)
			} else {
				rule.Expressions = append(rule.Expressions, list)
			}
		}
	}
	if !p.expectPunct(';', "after @import rule") {
		return nil
	}
	return rule
}

func (p *parser) parseAtNamespace(rule *css_ast.AtRule) css_ast.N {
	var expressions []css_ast.N
	if p.at(css_lexer.TIdentifier) && !strings.EqualFold(p.text(), "url") {
		expressions = append(expressions, p.parseIdentifier())
		p.eatWhitespace()
	}
	switch {
	case p.at(css_lexer.TString):
		str := &css_ast.String{Value: p.text()}
		str.SetPos(p.current().Pos)
		expressions = append(expressions, str)
		p.advance()
	case p.at(css_lexer.TIdentifier) && strings.EqualFold(p.text(), "url"):
		if fn := p.parseFunction(); fn != nil {
			expressions = append(expressions, fn)
		}
	default:
		p.unexpected("- expected namespace URI")
		return nil
	}
	rule.Expressions = [][]css_ast.N{expressions}
	p.eatWhitespace()
	if !p.expectPunct(';', "after @namespace rule") {
		return nil
	}
	return rule
}

func (p *parser) parseAtMedia(rule *css_ast.AtRule) css_ast.N {
	rule.Expressions = p.parseMediaQueryList('{')
	if !p.ok {
		return nil
	}
	rule.Block = p.parseRuleBlock()
	if !p.ok {
		return nil
	}
	return rule
}

func (p *parser) parseAtSupports(rule *css_ast.AtRule) css_ast.N {
	rule.Expressions = [][]css_ast.N{p.parseSupportsCondition()}
	if !p.ok {
		return nil
	}
	rule.Block = p.parseRuleBlock()
	if !p.ok {
		return nil
	}
	return rule
}

func (p *parser) parseAtKeyframes(rule *css_ast.AtRule) css_ast.N {
	if !p.at(css_lexer.TIdentifier) {
		p.unexpected("- expected keyframes name")
		return nil
	}
	rule.Expressions = [][]css_ast.N{{p.parseIdentifier()}}
	p.eatWhitespace()

	if !p.expectPunct('{', "to begin @keyframes block") {
		return nil
	}
	block := &css_ast.Block{Kind: css_ast.BlockCurly}
	block.SetPos(p.current().Pos)
	p.eatWhitespace()

	for p.ok && !p.atPunct('}') {
		if p.at(css_lexer.TComment) {
			block.Elements = append(block.Elements, p.parseComment())
		} else if keyframe := p.parseQualifiedRule(true); keyframe != nil {
			block.Elements = append(block.Elements, keyframe)
		}
		p.eatWhitespace()
	}
	if !p.ok {
		return nil
	}
	p.advance() // "}"
	rule.Block = block
	return rule
}

func (p *parser) parseAtDocument(rule *css_ast.AtRule) css_ast.N {
	// URL-matching functions: url(), url-prefix(), domain(), regexp()
	var list []css_ast.N
	for p.ok && !p.atPunct('{') {
		switch {
		case p.at(css_lexer.TIdentifier) && p.peek().IsPunctuator('('):
			if fn := p.parseFunction(); fn != nil {
				list = append(list, fn)
			}
		case p.atPunct(','):
			p.advance()
			rule.Expressions = append(rule.Expressions, list)
			list = nil
		default:
			p.unexpected("in @document prelude")
			return nil
		}
		p.eatWhitespace()
	}
	if !p.ok {
		return nil
	}
	rule.Expressions = append(rule.Expressions, list)
	rule.Block = p.parseRuleBlock()
	if !p.ok {
		return nil
	}
	return rule
}

func (p *parser) parseAtDeclarationBlock(rule *css_ast.AtRule) css_ast.N {
	// An optional prelude (e.g. ":first" for @page)
	var prelude []css_ast.N
	for p.ok && !p.atPunct('{') && !p.at(css_lexer.TEndOfFile) {
		switch {
		case p.at(css_lexer.TIdentifier):
			prelude = append(prelude, p.parseIdentifier())
		case p.atPunct(':'):
			p.advance()
			if !p.at(css_lexer.TIdentifier) {
				p.unexpected("after \":\"")
				return nil
			}
			selector := &css_ast.Selector{Kind: css_ast.SelectorPseudoClass}
			name := p.text()
			selector.Name = &name
			selector.SetPos(p.current().Pos)
			p.advance()
			prelude = append(prelude, selector)
		default:
			p.unexpected("in at-rule prelude")
			return nil
		}
		p.eatWhitespace()
	}
	if len(prelude) > 0 {
		rule.Expressions = [][]css_ast.N{prelude}
	}

	if !p.expectPunct('{', "to begin declaration block") {
		return nil
	}
	block := &css_ast.Block{Kind: css_ast.BlockCurly}
	p.eatWhitespace()
	for p.ok && !p.atPunct('}') {
		if p.at(css_lexer.TComment) {
			block.Elements = append(block.Elements, p.parseComment())
		} else if declaration := p.parseDeclaration(); declaration != nil {
			block.Elements = append(block.Elements, declaration)
		}
		p.eatWhitespace()
		if p.atPunct(';') {
			p.advance()
			p.eatWhitespace()
		}
	}
	if !p.ok {
		return nil
	}
	p.advance() // "}"
	rule.Block = block
	return rule
}

// A curly block containing qualified rules and nested at-rules, as used by
// @media, @supports, and @document
func (p *parser) parseRuleBlock() *css_ast.Block {
	if !p.expectPunct('{', "to begin rule block") {
		return nil
	}
	block := &css_ast.Block{Kind: css_ast.BlockCurly}
	p.eatWhitespace()

	for p.ok && !p.atPunct('}') && !p.at(css_lexer.TEndOfFile) {
		switch p.current().Kind {
		case css_lexer.TAtKeyword:
			if rule := p.parseAtRule(); rule != nil {
				block.Elements = append(block.Elements, rule)
			}
		case css_lexer.TComment, css_lexer.TCDataStart, css_lexer.TCDataEnd:
			block.Elements = append(block.Elements, p.parseComment())
		default:
			if rule := p.parseQualifiedRule(false); rule != nil {
				block.Elements = append(block.Elements, rule)
			}
		}
		p.eatWhitespace()
	}
	if !p.ok {
		return nil
	}
	if !p.expectPunct('}', "to end rule block") {
		return nil
	}
	return block
}

// Media queries

// Parses a comma-separated media query list up to (but not including) the
// given stop punctuator
func (p *parser) parseMediaQueryList(stop byte) [][]css_ast.N {
	var lists [][]css_ast.N
	var list []css_ast.N

	for p.ok && !p.atPunct(stop) && !p.at(css_lexer.TEndOfFile) {
		switch {
		case p.at(css_lexer.TIdentifier):
			list = append(list, p.parseIdentifier())
		case p.atPunct('('):
			if expr := p.parseMediaFeature(); expr != nil {
				list = append(list, expr)
			}
		case p.atPunct(','):
			p.advance()
			lists = append(lists, list)
			list = nil
		default:
			p.unexpected("in media query")
			return nil
		}
		p.eatWhitespace()
	}
	if !p.ok {
		return nil
	}
	return append(lists, list)
}

// "(min-width: 600px)" or "(orientation)" becomes a paren block containing a
// declaration or an identifier
func (p *parser) parseMediaFeature() *css_ast.Block {
	block := &css_ast.Block{Kind: css_ast.BlockParen}
	block.SetPos(p.current().Pos)
	p.advance() // "("
	p.eatWhitespace()

	if p.at(css_lexer.TIdentifier) && p.peekNonWhitespace().IsPunctuator(':') {
		if declaration := p.parseDeclaration(); declaration != nil {
			block.Elements = append(block.Elements, declaration)
		}
	} else if p.at(css_lexer.TIdentifier) {
		block.Elements = append(block.Elements, p.parseIdentifier())
	} else {
		p.unexpected("in media feature")
		return nil
	}
	p.eatWhitespace()
	if !p.expectPunct(')', "to end media feature") {
		return nil
	}
	return block
}

// @supports conditions

// Parses a @supports condition up to "{". Identifiers (not/and/or), grouping
// parens, declaration tests, and nested supports(...) conditions all become
// elements of a flat expression list; parens nest as paren blocks.
func (p *parser) parseSupportsCondition() []css_ast.N {
	var list []css_ast.N
	for p.ok && !p.atPunct('{') && !p.at(css_lexer.TEndOfFile) {
		element := p.parseSupportsConditionElement()
		if element == nil {
			return nil
		}
		list = append(list, element)
		p.eatWhitespace()
	}
	return list
}

func (p *parser) parseSupportsConditionElement() css_ast.N {
	switch {
	case p.at(css_lexer.TIdentifier) && strings.EqualFold(p.text(), "supports") && p.peek().IsPunctuator('('):
		condition := &css_ast.SupportsCondition{}
		condition.SetPos(p.current().Pos)
		p.advance()
		condition.Condition = p.parseSupportsParen()
		if condition.Condition == nil {
			return nil
		}
		return condition

	case p.at(css_lexer.TIdentifier):
		return p.parseIdentifier()

	case p.atPunct('('):
		return p.parseSupportsParen()
	}

	p.unexpected("in @supports condition")
	return nil
}

func (p *parser) parseSupportsParen() *css_ast.Block {
	block := &css_ast.Block{Kind: css_ast.BlockParen}
	block.SetPos(p.current().Pos)
	p.advance() // "("
	p.eatWhitespace()

	// A parenthesized group is either a declaration test or a nested condition
	if p.at(css_lexer.TIdentifier) && p.peekNonWhitespace().IsPunctuator(':') &&
		!strings.EqualFold(p.text(), "not") {
		if declaration := p.parseDeclaration(); declaration != nil {
			block.Elements = append(block.Elements, declaration)
		}
	} else {
		for p.ok && !p.atPunct(')') && !p.at(css_lexer.TEndOfFile) {
			element := p.parseSupportsConditionElement()
			if element == nil {
				return nil
			}
			block.Elements = append(block.Elements, element)
			p.eatWhitespace()
		}
	}
	p.eatWhitespace()
	if !p.expectPunct(')', "to end @supports condition") {
		return nil
	}
	return block
}

// Qualified rules

func (p *parser) parseQualifiedRule(keyframes bool) *css_ast.QualifiedRule {
	rule := &css_ast.QualifiedRule{}
	rule.SetPos(p.current().Pos)

	if keyframes {
		rule.Selectors = p.parseKeyframeSelectorList()
	} else {
		rule.Selectors = p.parseSelectorList()
	}
	if !p.ok {
		return nil
	}

	if !p.expectPunct('{', "to begin declaration block") {
		return nil
	}
	block := &css_ast.Block{Kind: css_ast.BlockCurly}
	p.eatWhitespace()

	for p.ok && !p.atPunct('}') && !p.at(css_lexer.TEndOfFile) {
		if p.at(css_lexer.TComment) {
			block.Elements = append(block.Elements, p.parseComment())
		} else if p.at(css_lexer.TAtKeyword) {
			if atRule := p.parseAtRule(); atRule != nil {
				block.Elements = append(block.Elements, atRule)
			}
		} else if declaration := p.parseDeclaration(); declaration != nil {
			block.Elements = append(block.Elements, declaration)
		}
		p.eatWhitespace()
		if p.atPunct(';') {
			p.advance()
			p.eatWhitespace()
		}
	}
	if !p.ok {
		return nil
	}
	if !p.expectPunct('}', "to end declaration block") {
		return nil
	}
	rule.Block = block
	return rule
}

// "from", "to", and "<number>%" selectors inside a @keyframes block
func (p *parser) parseKeyframeSelectorList() []css_ast.N {
	var selectors []css_ast.N
	for p.ok {
		var name string
		switch {
		case p.at(css_lexer.TIdentifier):
			name = p.text()
			p.advance()
		case p.at(css_lexer.TNumeric):
			name = p.text()
			p.advance()
			if !p.atPunct('%') {
				p.unexpected("- expected \"%\" in keyframe selector")
				return nil
			}
			name += "%"
			p.advance()
		default:
			p.unexpected("in keyframe selector")
			return nil
		}

		selector := &css_ast.Selector{Kind: css_ast.SelectorKeyframes, Name: &name}
		selectors = append(selectors, selector)
		p.eatWhitespace()
		if !p.atPunct(',') {
			break
		}
		p.advance()
		p.eatWhitespace()
	}
	return selectors
}

// Identifiers

func (p *parser) parseIdentifier() *css_ast.Identifier {
	identifier := css_ast.NewIdentifier(p.text(), p.current().Pos)
	p.advance()
	return identifier
}
