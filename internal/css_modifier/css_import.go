package css_modifier

import (
	"strings"

	"github.com/excurso/hspp/internal/css_ast"
	"github.com/excurso/hspp/internal/css_lexer"
	"github.com/excurso/hspp/internal/css_parser"
	"github.com/excurso/hspp/internal/css_printer"
	"github.com/excurso/hspp/internal/fs"
	"github.com/excurso/hspp/internal/logger"
)

// @import inlining. The target is resolved against the directory of the file
// containing the rule, read, tokenized, parsed, and modified recursively.
// With inlining enabled the resulting AST is spliced in place of the at-rule
// (wrapped in a synthetic @media block when the import carries media
// queries); with inlining disabled the target is minified into its own
// output file and the @import rule stays.

func (m *Modifier) maybeImportStylesheet(rule *css_ast.AtRule) {
	if len(rule.Expressions) == 0 || len(rule.Expressions[0]) == 0 {
		return
	}

	m.importDepth++
	defer func() { m.importDepth-- }()

	var importPath string
	switch target := css_ast.Resolve(rule.Expressions[0][0]).(type) {
	case *css_ast.String:
		importPath = target.Value
	case *css_ast.Function:
		if !strings.EqualFold(target.Name, "url") {
			return
		}
		if len(target.Parameters) == 0 || len(target.Parameters[0]) == 0 {
			return
		}
		str, ok := css_ast.Resolve(target.Parameters[0][0]).(*css_ast.String)
		if !ok {
			return
		}
		importPath = str.Value
	default:
		return
	}

	// Remote stylesheets are not fetched; the rule passes through untouched
	if strings.Contains(importPath, "://") {
		return
	}

	if strings.HasPrefix(importPath, "/") {
		m.fatal("Absolute @import path '" + importPath + "'. Consider using relative path.")
		return
	}

	if m.importDepth > maxImportDepth {
		m.fatal("Maximum @import depth exceeded at '" + importPath + "'")
		return
	}

	currentInput := m.inputPaths[len(m.inputPaths)-1]
	absoluteInput := fs.CleanPath(fs.JoinPath(fs.ParentPath(currentInput), importPath))

	if m.importSeen[absoluteInput] {
		m.fatal("Import cycle through '" + importPath + "'")
		return
	}
	m.importSeen[absoluteInput] = true

	baseName := fs.BaseName(absoluteInput)
	indentation := strings.Repeat("> ", m.importDepth)

	if !m.outputToStdout {
		m.log.AddInfo(indentation + "Processing import file '" + baseName + "'")
	}

	contents, err := m.fs.ReadFile(absoluteInput)
	if err != nil {
		m.fatal("Cannot read @import target '" + importPath + "': " + err.Error())
		return
	}
	contents, _ = fs.StripBOM(contents)

	source := logger.Source{PrettyPath: absoluteInput, Contents: contents}
	tokens, ok := css_lexer.Tokenize(m.log, source, css_lexer.Options{
		RemoveComments: m.options.RemoveComments,
		CommentTerms:   m.options.CommentTerms,
		TabWidth:       int32(m.options.TabWidth),
	})
	if !ok {
		m.ok = false
		return
	}
	ast := css_parser.Parse(m.log, source, tokens)
	if ast == nil {
		m.ok = false
		return
	}

	m.inputPaths = append(m.inputPaths, absoluteInput)
	defer func() { m.inputPaths = m.inputPaths[:len(m.inputPaths)-1] }()

	// Everything of the prelude beyond the import target is a media query
	hasMediaQuery := len(rule.Expressions[0]) > 1 || len(rule.Expressions) > 1

	if m.includeExternal {
		if hasMediaQuery {
			media := &css_ast.AtRule{Keyword: "media"}
			media.SetPos(rule.Pos())
			for i, list := range rule.Expressions {
				var expressions []css_ast.N
				for j, expression := range list {
					if i == 0 && j == 0 {
						continue // the import target itself
					}
					expressions = append(expressions, expression)
				}
				if len(expressions) > 0 {
					media.Expressions = append(media.Expressions, expressions)
				}
			}

			ast.Kind = css_ast.BlockCurly
			media.Block = ast
			rule.SetReplacement(media)
		} else {
			ast.Kind = css_ast.BlockDefault
			rule.SetReplacement(ast)
		}

		m.visit(rule.Replacement())

		if !m.outputToStdout && m.ok {
			m.log.AddInfo(indentation + "[Done] Processing import file '" + baseName + "'")
		}
		return
	}

	// Separate-output mode: the import is minified into its own file and the
	// @import rule is preserved
	m.visit(ast)
	if !m.ok {
		return
	}

	printOptions := css_printer.Options{Beautify: m.options.BeautifyOutput}
	if !m.options.BeautifyOutput {
		printOptions.Header = css_printer.OutputFileHeader
	}
	output := css_printer.Print(ast, printOptions)

	// The header must never make the output larger than the input
	if printOptions.Header != "" && len(output) > len(contents) {
		printOptions.Header = ""
		output = css_printer.Print(ast, printOptions)
	}

	var relativePath string
	if m.options.InputWorkingDirectory != "" {
		relativePath = fs.RelativePath(m.options.InputWorkingDirectory, absoluteInput)
	} else {
		relativePath = fs.RelativePath(fs.ParentPath(m.options.InputPath), absoluteInput)
	}
	absoluteOutput := fs.CleanPath(fs.JoinPath(m.options.OutputPath, relativePath))

	if !fs.ContainsPath(m.options.OutputPath, absoluteOutput) {
		m.fatal("The output path '" + fs.ParentPath(absoluteOutput) + "' leaves the output directory.\n" +
			"Consider to use input/output working directory to build the correct directory structure.\n" +
			"See configuration file.")
		return
	}

	if err := m.fs.MkdirAll(fs.ParentPath(absoluteOutput)); err != nil {
		m.fatal("Cannot create output directory: " + err.Error())
		return
	}
	if err := m.fs.WriteFile(absoluteOutput, output); err != nil {
		m.fatal("Cannot write output file '" + absoluteOutput + "': " + err.Error())
		return
	}

	if !m.outputToStdout {
		m.log.AddInfo(indentation + "[Done] Processing import file '" + baseName + "'")
	}
}

func (m *Modifier) fatal(text string) {
	m.log.AddErrorText(text)
	m.ok = false
}
