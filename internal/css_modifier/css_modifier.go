package css_modifier

import (
	"strings"

	"github.com/excurso/hspp/internal/config"
	"github.com/excurso/hspp/internal/css_ast"
	"github.com/excurso/hspp/internal/fs"
	"github.com/excurso/hspp/internal/logger"
	"github.com/excurso/hspp/internal/renamer"
)

// The modifier walks the AST post-parse and mutates it in place: it minifies
// numbers and colors, rewrites functions and angles, collapses shorthands,
// interns renamable identifiers into the shared tables, inlines @import
// rules, reconciles @charset with the BOM setting, removes empty rules, and
// collects @media rules for merging. One instance exists per top-level file;
// inlined imports re-enter the same instance.

type Context uint8

const (
	ContextStylesheet Context = iota
	ContextFunctionURL
	ContextKeyframesBlock
	ContextAtRuleImport
	ContextDefaultBlock
	ContextCurlyBlock
	ContextParenBlock
	ContextSquareBlock
	ContextDeclarationValue
)

// Asks the user to pick one of N numbered choices. Invalid input re-prompts.
type Prompter interface {
	RequestAction(message string, numberOfChoices int) int
}

type Modifier struct {
	log      logger.Log
	fs       fs.FS
	options  *config.Options
	tables   *renamer.Group
	prompter Prompter

	// Effective boolean flags, snapshotted at construction time
	outputToStdout  bool
	useUTF8BOM      bool
	createJSONFile  bool
	includeExternal bool
	removeEmpty     bool
	minifyIDs       bool
	minifyClasses   bool
	minifyCProps    bool
	minifyAnims     bool
	minifyNumbers   bool
	minifyColors    bool
	rewriteAngles   bool
	useRGBAHex      bool
	rewriteFuncs    bool

	contexts    []Context
	blocks      []*css_ast.Block
	stylesheets []*css_ast.Block
	inputPaths  []string
	declaration *css_ast.Declaration

	restructuring restructuring

	importDepth int
	importSeen  map[string]bool

	ok bool
}

const maxImportDepth = 8

func NewModifier(log logger.Log, fsys fs.FS, options *config.Options, tables *renamer.Group, prompter Prompter, inputPath string) *Modifier {
	return &Modifier{
		log:      log,
		fs:       fsys,
		options:  options,
		tables:   tables,
		prompter: prompter,

		outputToStdout:  options.OutputToStdout,
		useUTF8BOM:      options.UseUTF8BOM,
		createJSONFile:  options.CreateJSONFile,
		includeExternal: options.IncludeExternalStylesheets,
		removeEmpty:     options.RemoveEmptyRules,
		minifyIDs:       options.MinifyIDs,
		minifyClasses:   options.MinifyClassNames,
		minifyCProps:    options.MinifyCustomProperties,
		minifyAnims:     options.MinifyAnimationNames,
		minifyNumbers:   options.MinifyNumbers,
		minifyColors:    options.MinifyColors,
		rewriteAngles:   options.RewriteAngles,
		useRGBAHex:      options.UseRGBAHexNotation,
		rewriteFuncs:    options.RewriteFunctions,

		inputPaths: []string{inputPath},
		importSeen: map[string]bool{fs.CleanPath(inputPath): true},
		ok:         true,
	}
}

// Runs the modifier over a parsed stylesheet. Returns false if a fatal error
// (unreadable import, escaping output path, parse error in an imported file)
// was logged.
func (m *Modifier) ModifyStylesheet(sheet *css_ast.Block) bool {
	m.visit(sheet)
	return m.ok
}

// Context stack

func (m *Modifier) pushContext(c Context) {
	m.contexts = append(m.contexts, c)
}

func (m *Modifier) popContext() {
	m.contexts = m.contexts[:len(m.contexts)-1]
}

func (m *Modifier) context(candidates ...Context) bool {
	if len(m.contexts) == 0 {
		return false
	}
	top := m.contexts[len(m.contexts)-1]
	for _, c := range candidates {
		if top == c {
			return true
		}
	}
	return false
}

func (m *Modifier) hasContext(c Context) bool {
	for _, existing := range m.contexts {
		if existing == c {
			return true
		}
	}
	return false
}

func (m *Modifier) currentBlock() *css_ast.Block {
	return m.blocks[len(m.blocks)-1]
}

// Dispatch

func (m *Modifier) visit(n css_ast.N) {
	if n == nil || !m.ok {
		return
	}
	if replacement := n.Replacement(); replacement != nil {
		m.visit(replacement)
		return
	}

	switch node := n.(type) {
	case *css_ast.Block:
		m.visitBlock(node)
	case *css_ast.AtRule:
		m.visitAtRule(node)
	case *css_ast.QualifiedRule:
		m.visitQualifiedRule(node)
	case *css_ast.Declaration:
		m.visitDeclaration(node)
	case *css_ast.Percentage:
		m.visitNumberValue(&node.Number)
	case *css_ast.Dimension:
		m.visitDimension(node)
	case *css_ast.Number:
		m.visitNumberValue(node)
	case *css_ast.Function:
		m.visitFunction(node)
	case *css_ast.CustomProperty:
		m.visitCustomProperty(node)
	case *css_ast.Color:
		m.visitColor(node)
	case *css_ast.String:
		m.visitString(node)
	case *css_ast.Selector:
		m.visitSelector(node)
	case *css_ast.SelectorAttribute:
		if node.Parent != nil {
			m.visit(node.Parent)
		}
	case *css_ast.SelectorCombinator:
		m.visit(node.Left)
		m.visit(node.Right)
	}
}

// Blocks

func (m *Modifier) visitBlock(block *css_ast.Block) {
	if len(block.Elements) == 0 {
		return
	}

	switch block.Kind {
	case css_ast.BlockStylesheet:
		m.stylesheets = append(m.stylesheets, block)
		m.pushContext(ContextStylesheet)
	case css_ast.BlockCurly:
		m.pushContext(ContextCurlyBlock)
	case css_ast.BlockParen:
		m.pushContext(ContextParenBlock)
	case css_ast.BlockSquare:
		m.pushContext(ContextSquareBlock)
	case css_ast.BlockDefault:
		m.pushContext(ContextDefaultBlock)
	}

	m.blocks = append(m.blocks, block)

	// Visit a snapshot: elements may remove themselves from the block
	elements := make([]css_ast.N, len(block.Elements))
	copy(elements, block.Elements)
	for _, element := range elements {
		m.visit(element)
	}

	m.blocks = m.blocks[:len(m.blocks)-1]

	if block.Kind == css_ast.BlockStylesheet {
		m.finishStylesheet(block)
		m.stylesheets = m.stylesheets[:len(m.stylesheets)-1]
	}

	m.popContext()
}

// Post-order actions at the end of a stylesheet: BOM prepending for every
// output stylesheet, and for the top-level one only: short-id generation,
// sidecar export, the found-counts summary, and @media merging.
func (m *Modifier) finishStylesheet(sheet *css_ast.Block) {
	if m.useUTF8BOM {
		bom := &css_ast.String{Value: fs.UTF8BOM, Unquoted: true}
		sheet.PrependElement(bom)
	}

	if len(m.stylesheets) != 1 {
		return
	}

	if !m.outputToStdout {
		if m.minifyIDs {
			m.tables.IDs.GenerateNames()
		}
		if m.minifyClasses {
			m.tables.Classes.GenerateNames()
		}
		if m.minifyCProps {
			for _, renamed := range m.tables.CustomProperties.GenerateNames() {
				if !renamed.Defined {
					m.log.AddInfo("Undeclared custom property '--" + renamed.Original +
						"' has been renamed to '--" + renamed.Short + "'.")
				}
			}
		}
		if m.minifyAnims {
			for _, renamed := range m.tables.Animations.GenerateNames() {
				if !renamed.Defined {
					m.log.AddInfo("Undeclared animation '" + renamed.Original +
						"' has been renamed to '" + renamed.Short + "'.")
				}
			}
		}

		m.writeSidecarFiles()
		m.writeFoundSummary()
	}

	m.restructuring.restructure(m, sheet)
}

// At-rules

func (m *Modifier) visitAtRule(rule *css_ast.AtRule) {
	if css_ast.IsPrefixedKeyword(rule.Keyword, "import") {
		m.pushContext(ContextAtRuleImport)
		m.maybeImportStylesheet(rule)
		m.popContext()
		return
	}

	if css_ast.IsPrefixedKeyword(rule.Keyword, "charset") {
		m.visitAtCharset(rule)
		return
	}

	if rule.Keyword == "media" {
		m.restructuring.appendMediaRule(rule, m.currentBlock(), len(m.stylesheets))
	}

	if rule.Block != nil {
		if len(rule.Block.Elements) > 0 {
			isKeyframes := css_ast.IsPrefixedKeyword(rule.Keyword, "keyframes")
			if isKeyframes {
				m.internKeyframesName(rule)
				m.pushContext(ContextKeyframesBlock)
			}

			m.visit(rule.Block)

			if isKeyframes {
				m.popContext()
			}
		} else if m.removeEmpty {
			m.currentBlock().RemoveElement(rule)
			return
		}
	}

	for _, list := range rule.Expressions {
		for _, element := range list {
			m.visit(element)
		}
	}
}

func (m *Modifier) internKeyframesName(rule *css_ast.AtRule) {
	if !m.minifyAnims || len(rule.Expressions) == 0 || len(rule.Expressions[0]) == 0 {
		return
	}
	if identifier, ok := rule.Expressions[0][0].(*css_ast.Identifier); ok {
		entry := m.tables.Animations.Intern(*identifier.Name, true)
		identifier.Name = entry.Cell
	}
}

func (m *Modifier) visitAtCharset(rule *css_ast.AtRule) {
	if len(rule.Expressions) == 0 || len(rule.Expressions[0]) == 0 {
		return
	}
	charset, ok := rule.Expressions[0][0].(*css_ast.String)
	if !ok {
		return
	}
	charset.Value = strings.ToLower(charset.Value)

	if !m.useUTF8BOM {
		return
	}

	// The BOM is authoritative for UTF-8; for anything else the user decides
	if charset.Value == "utf-8" {
		m.currentBlock().RemoveElement(rule)
		return
	}

	message := "The configuration file says, the UTF8 byte order mark should be written,\n" +
		"but the document specifies another encoding using a @charset rule: " + charset.Value + "\n\n" +
		"Please decide how to act:\n" +
		"1. Write UTF8 BOM and remove the @charset rule\n" +
		"2. Don't write UTF8 BOM to the current stylesheet and preserve the @charset rule\n"

	switch m.prompter.RequestAction(message, 2) {
	case 1:
		m.currentBlock().RemoveElement(rule)
		m.log.AddInfo("UTF8 BOM has been written.\n@charset rule has been removed.\n")
	case 2:
		m.useUTF8BOM = false
		m.log.AddInfo("UTF8 BOM has not been written.\n@charset rule has been preserved.\n")
	}
}

// Qualified rules

func (m *Modifier) visitQualifiedRule(rule *css_ast.QualifiedRule) {
	if rule.Block != nil {
		if len(rule.Block.Elements) > 0 {
			m.visit(rule.Block)
		} else if m.removeEmpty {
			m.currentBlock().RemoveElement(rule)
			return
		}
	}

	for _, selector := range rule.Selectors {
		m.visit(selector)
	}
}

// Selectors

func (m *Modifier) visitSelector(selector *css_ast.Selector) {
	// Keyframe selector canonicalization
	if selector.Kind == css_ast.SelectorKeyframes && m.hasContext(ContextKeyframesBlock) {
		if *selector.Name == "from" {
			name := "0%"
			selector.Name = &name
		} else if *selector.Name == "100%" {
			name := "to"
			selector.Name = &name
		}
	}

	switch selector.Kind {
	case css_ast.SelectorID:
		if m.minifyIDs {
			entry := m.tables.IDs.Intern(*selector.Name, true)
			selector.Name = entry.Cell
		}
	case css_ast.SelectorClass:
		if m.minifyClasses {
			entry := m.tables.Classes.Intern(*selector.Name, true)
			selector.Name = entry.Cell
		}
	case css_ast.SelectorAnPlusB:
		if *selector.Name == "even" {
			name := "2n"
			selector.Name = &name
		} else if *selector.Name == "2n+1" {
			name := "odd"
			selector.Name = &name
		}
	}

	if selector.Parent != nil {
		m.visit(selector.Parent)
	}
	for _, sub := range selector.SubSelectors {
		m.visit(sub)
	}
}

// Declarations

func (m *Modifier) visitDeclaration(declaration *css_ast.Declaration) {
	// The z-index property expects an integer value, so its value is left
	// entirely alone
	// https://www.w3.org/TR/CSS22/visuren.html#z-index
	if declaration.NameIs("z-index") {
		return
	}

	m.declaration = declaration
	m.pushContext(ContextDeclarationValue)

	for _, list := range declaration.Values {
		for _, value := range list {
			m.visit(value)
		}
	}

	m.popContext()

	if property, isCustom := declaration.Name.(*css_ast.CustomProperty); isCustom {
		if m.minifyCProps {
			entry := m.tables.CustomProperties.Intern(*property.Name, true)
			property.Name = entry.Cell
		}
	} else if declaration.NameIs("animation", "animation-name") {
		m.internAnimationValue(declaration)
	}

	m.collapseShorthand(declaration)
	m.declaration = nil
}

func (m *Modifier) internAnimationValue(declaration *css_ast.Declaration) {
	if !m.minifyAnims || len(declaration.Values) == 0 || len(declaration.Values[0]) == 0 {
		return
	}
	identifier, ok := declaration.Values[0][0].(*css_ast.Identifier)
	if !ok || *identifier.Name == "none" {
		return
	}
	entry := m.tables.Animations.Intern(*identifier.Name, false)
	identifier.Name = entry.Cell
}

// Collapses the four-sided shorthands per CSS rules:
//
//	10px 10px           => 10px
//	10px 20px 10px      => 10px 20px
//	10px 20px 10px 20px => 10px 20px
//	10px 10px 10px 10px => 10px
func (m *Modifier) collapseShorthand(declaration *css_ast.Declaration) {
	if !declaration.NameIs("margin", "padding", "border-width", "border-radius") {
		return
	}
	if len(declaration.Values) != 1 {
		return
	}
	values := declaration.Values[0]

	switch len(values) {
	case 2:
		if css_ast.NodesEqual(values[0], values[1]) {
			declaration.Values[0] = values[:1]
		}
	case 3:
		if css_ast.NodesEqual(values[0], values[2]) {
			if css_ast.NodesEqual(values[0], values[1]) {
				declaration.Values[0] = values[:1]
			} else {
				declaration.Values[0] = values[:2]
			}
		}
	case 4:
		if css_ast.NodesEqual(values[0], values[2]) && css_ast.NodesEqual(values[1], values[3]) {
			if css_ast.NodesEqual(values[0], values[3]) {
				declaration.Values[0] = values[:1]
			} else {
				declaration.Values[0] = values[:2]
			}
		}
	}
}

// Values

func (m *Modifier) visitCustomProperty(property *css_ast.CustomProperty) {
	if m.minifyCProps {
		entry := m.tables.CustomProperties.Intern(*property.Name, false)
		property.Name = entry.Cell
	}
}

func (m *Modifier) visitString(str *css_ast.String) {
	// A string argument of url() can lose its quotes when the content is
	// unambiguous
	if !m.context(ContextFunctionURL) {
		return
	}
	str.Unquoted = true
	for _, c := range str.Value {
		switch c {
		case '"', '\'', '(', ')', '\\', ' ', '\t', '\n', '\r', '\f':
			str.Unquoted = false
			return
		}
	}
}

func (m *Modifier) visitFunction(fn *css_ast.Function) {
	isURL := strings.EqualFold(fn.Name, "url")
	if isURL {
		m.pushContext(ContextFunctionURL)
	}

	for _, list := range fn.Parameters {
		for _, element := range list {
			m.visit(element)
		}
	}

	if isURL {
		m.popContext()
	}

	if m.rewriteFuncs {
		switch {
		case fn.NameIs("hsl", "hsla"):
			m.maybeRewriteHslFunction(fn)
			if replacement := fn.Replacement(); replacement != nil {
				m.visit(replacement)
			}
		case fn.NameIs("rgb", "rgba"):
			m.rewriteRgbFunction(fn)
			if replacement := fn.Replacement(); replacement != nil {
				m.visit(replacement)
			}
		case fn.NameIs("linear-gradient"):
			m.rewriteLinearGradient(fn)
		}
	}
}
