package css_printer

import (
	"testing"

	"github.com/excurso/hspp/internal/css_lexer"
	"github.com/excurso/hspp/internal/css_parser"
	"github.com/excurso/hspp/internal/logger"
	"github.com/excurso/hspp/internal/test"
)

func printForTest(t *testing.T, contents string, options Options) string {
	t.Helper()
	log := logger.NewDeferLog()
	source := test.SourceForTest(contents)
	tokens, ok := css_lexer.Tokenize(log, source, css_lexer.Options{})
	if !ok {
		t.Fatalf("%q: unexpected lexer error", contents)
	}
	sheet := css_parser.Parse(log, source, tokens)
	if sheet == nil {
		t.Fatalf("%q: unexpected parse error", contents)
	}
	return Print(sheet, options)
}

func expectMinified(t *testing.T, contents string, expected string) {
	t.Helper()
	test.AssertEqualWithDiff(t, printForTest(t, contents, Options{}), expected)
}

func expectBeautified(t *testing.T, contents string, expected string) {
	t.Helper()
	test.AssertEqualWithDiff(t, printForTest(t, contents, Options{Beautify: true}), expected)
}

func TestMinified(t *testing.T) {
	expectMinified(t, "a { color: red; width: 10px }", "a{color:red;width:10px}")
	expectMinified(t, "a > b { color: red }", "a>b{color:red}")
	expectMinified(t, "a, b { color: red }", "a,b{color:red}")
	expectMinified(t, "@media screen { a { color: red } }", "@media screen{a{color:red}}")
}

func TestBeautified(t *testing.T) {
	expectBeautified(t, "a{color:red}", "a {\n\tcolor: red\n}")
	expectBeautified(t, "a{color:red;width:10px}", "a {\n\tcolor: red;\n\twidth: 10px\n}")
	expectBeautified(t, "a>b{color:red}", "a > b {\n\tcolor: red\n}")
	expectBeautified(t, "a{color:red!important}", "a {\n\tcolor: red !important\n}")
}

func TestBeautifiedAtRules(t *testing.T) {
	expectBeautified(t, "@media screen{a{color:red}}",
		"@media screen {\n\ta {\n\t\tcolor: red\n\t}\n}")
	expectBeautified(t, "@charset \"utf-8\";", "@charset \"utf-8\";")
}

func TestHeader(t *testing.T) {
	observed := printForTest(t, "a{color:red}", Options{Header: OutputFileHeader})
	test.AssertEqualWithDiff(t, observed, OutputFileHeader+"\na{color:red}")

	// The header is a minified-mode concern only
	observed = printForTest(t, "a{color:red}", Options{Header: OutputFileHeader, Beautify: true})
	test.AssertEqualWithDiff(t, observed, "a {\n\tcolor: red\n}")
}

func TestAttributeValueQuoting(t *testing.T) {
	expectMinified(t, "[a=b] {}", "[a=b]{}")
	expectMinified(t, "[a=\"b c\"] {}", "[a=\"b c\"]{}")
	expectMinified(t, "[a=\"5x\"] {}", "[a=\"5x\"]{}")
	expectMinified(t, "[a=\"b=c\"] {}", "[a=\"b=c\"]{}")
}

func TestCommentsPreserved(t *testing.T) {
	// With comment removal off, comments survive minification verbatim
	log := logger.NewDeferLog()
	source := test.SourceForTest("/* keep me */ a { color: red }")
	tokens, _ := css_lexer.Tokenize(log, source, css_lexer.Options{RemoveComments: false})
	sheet := css_parser.Parse(log, source, tokens)
	if sheet == nil {
		t.Fatal("unexpected parse error")
	}
	test.AssertEqual(t, Print(sheet, Options{}), "/* keep me */a{color:red}")
}

func TestDelimiterPadding(t *testing.T) {
	expectMinified(t, "a { width: calc(100% - 10px) }", "a{width:calc(100% - 10px)}")
	expectMinified(t, "a { width: calc(100%/3) }", "a{width:calc(100%/3)}")
	expectMinified(t, "a { width: calc(10px * 3) }", "a{width:calc(10px*3)}")
	expectMinified(t, "a { width: calc(10px + 5%) }", "a{width:calc(10px + 5%)}")
}
