package css_modifier

import (
	"strings"
	"testing"

	"github.com/excurso/hspp/internal/config"
	"github.com/excurso/hspp/internal/css_lexer"
	"github.com/excurso/hspp/internal/css_parser"
	"github.com/excurso/hspp/internal/css_printer"
	"github.com/excurso/hspp/internal/fs"
	"github.com/excurso/hspp/internal/logger"
	"github.com/excurso/hspp/internal/renamer"
	"github.com/excurso/hspp/internal/test"
)

type choicePrompter struct {
	choice int
	asked  int
}

func (p *choicePrompter) RequestAction(string, int) int {
	p.asked++
	return p.choice
}

type harness struct {
	fs       *fs.MemFS
	log      logger.Log
	prompter *choicePrompter
	ok       bool
}

func modify(t *testing.T, css string, tweak func(*config.Options)) string {
	t.Helper()
	output, h := modifyWithFiles(t, css, nil, tweak)
	if !h.ok || h.log.HasErrors() {
		t.Fatalf("%q: unexpected modifier error", css)
	}
	return output
}

func modifyWithFiles(t *testing.T, css string, files map[string]string, tweak func(*config.Options)) (string, harness) {
	t.Helper()
	options := config.Defaults()
	options.InputPath = "/in/app.css"
	options.OutputPath = "/out"
	if tweak != nil {
		tweak(&options)
	}

	fsFiles := map[string]string{"/in/app.css": css}
	for path, contents := range files {
		fsFiles[path] = contents
	}
	fsys := fs.NewMemFS(fsFiles)
	log := logger.NewDeferLog()
	prompter := &choicePrompter{choice: 1}

	source := test.SourceForTest(css)
	source.PrettyPath = options.InputPath
	tokens, ok := css_lexer.Tokenize(log, source, css_lexer.Options{
		RemoveComments: options.RemoveComments,
		CommentTerms:   options.CommentTerms,
		TabWidth:       int32(options.TabWidth),
	})
	if !ok {
		t.Fatalf("%q: unexpected lexer error", css)
	}
	sheet := css_parser.Parse(log, source, tokens)
	if sheet == nil {
		t.Fatalf("%q: unexpected parse error", css)
	}

	tables := renamer.NewGroup()
	modifier := NewModifier(log, fsys, &options, tables, prompter, options.InputPath)
	okModify := modifier.ModifyStylesheet(sheet)

	output := css_printer.Print(sheet, css_printer.Options{})
	return output, harness{fs: fsys, log: log, prompter: prompter, ok: okModify}
}

func expectModified(t *testing.T, css string, expected string) {
	t.Helper()
	test.AssertEqualWithDiff(t, modify(t, css, nil), expected)
}

func expectModifiedWith(t *testing.T, css string, expected string, tweak func(*config.Options)) {
	t.Helper()
	test.AssertEqualWithDiff(t, modify(t, css, tweak), expected)
}

func noRenaming(options *config.Options) {
	options.MinifyIDs = false
	options.MinifyClassNames = false
	options.MinifyCustomProperties = false
	options.MinifyAnimationNames = false
}

func TestNumberMinification(t *testing.T) {
	expectModifiedWith(t, "a { width: 0.500px }", "a{width:.5px}", noRenaming)
	expectModifiedWith(t, "a { width: 010px }", "a{width:10px}", noRenaming)
	expectModifiedWith(t, "a { opacity: 0.5 }", "a{opacity:.5}", noRenaming)
	expectModifiedWith(t, "a { opacity: 1.0 }", "a{opacity:1}", noRenaming)
	expectModifiedWith(t, "a { width: 10000px }", "a{width:1e4px}", noRenaming)
	expectModifiedWith(t, "a { width: 100px }", "a{width:100px}", noRenaming)

	// z-index values are integer-only and stay untouched
	expectModifiedWith(t, "a { z-index: 100 }", "a{z-index:100}", noRenaming)
}

func TestZeroLengthUnits(t *testing.T) {
	expectModifiedWith(t, "a { margin: 0px }", "a{margin:0}", noRenaming)
	expectModifiedWith(t, "a { margin: 0em }", "a{margin:0}", noRenaming)
	expectModifiedWith(t, "a { margin: 0rem }", "a{margin:0}", noRenaming)
	expectModifiedWith(t, "a { width: 0.0pt }", "a{width:0}", noRenaming)

	// Percentages and times keep their unit
	expectModifiedWith(t, "a { width: 0% }", "a{width:0%}", noRenaming)
	expectModifiedWith(t, "a { transition-duration: 0s }", "a{transition-duration:0s}", noRenaming)
}

func TestMillisecondsToSeconds(t *testing.T) {
	expectModifiedWith(t, "a { transition-duration: 100ms }", "a{transition-duration:.1s}", noRenaming)
	expectModifiedWith(t, "a { transition-duration: 250ms }", "a{transition-duration:.25s}", noRenaming)

	// Leading zeros disqualify the rewrite (the number pass strips them)
	expectModifiedWith(t, "a { transition-duration: 050ms }", "a{transition-duration:50ms}", noRenaming)

	// Not three digits, or not ending in zero
	expectModifiedWith(t, "a { transition-duration: 1000ms }", "a{transition-duration:1e3ms}", noRenaming)
	expectModifiedWith(t, "a { transition-duration: 125ms }", "a{transition-duration:125ms}", noRenaming)
}

func TestHexColors(t *testing.T) {
	expectModifiedWith(t, "a { color: #ffffff }", "a{color:#fff}", noRenaming)
	expectModifiedWith(t, "a { color: #00000000 }", "a{color:#0000}", noRenaming)
	expectModifiedWith(t, "a { color: #0055aaff }", "a{color:#05af}", noRenaming)
	expectModifiedWith(t, "a { color: #123456 }", "a{color:#123456}", noRenaming)

	// Hex becomes a name when the name is shorter
	expectModifiedWith(t, "a { color: #f00 }", "a{color:red}", noRenaming)
	expectModifiedWith(t, "a { color: #ff0000 }", "a{color:red}", noRenaming)
}

func TestNamedColors(t *testing.T) {
	// A name becomes hex when the shortest hex form is shorter
	expectModifiedWith(t, "a { color: rebeccapurple }", "a{color:#639}", noRenaming)
	expectModifiedWith(t, "a { color: magenta }", "a{color:#f0f}", noRenaming)
	expectModifiedWith(t, "a { color: red }", "a{color:red}", noRenaming)
	expectModifiedWith(t, "a { color: white }", "a{color:#fff}", noRenaming)

	expectModifiedWith(t, "a { color: transparent }", "a{color:#0000}",
		func(o *config.Options) { noRenaming(o); o.UseRGBAHexNotation = true })
}

func TestRgbFunctions(t *testing.T) {
	expectModifiedWith(t, "a { color: rgb(255, 0, 0) }", "a{color:red}", noRenaming)
	expectModifiedWith(t, "a { color: rgb(18, 52, 86) }", "a{color:#123456}", noRenaming)
	expectModifiedWith(t, "a { color: rgba(255, 0, 0, 1) }", "a{color:red}", noRenaming)
	expectModifiedWith(t, "a { color: rgba(0, 0, 0, 0) }", "a{color:transparent}", noRenaming)
	expectModifiedWith(t, "a { color: rgb(100%, 0%, 0%) }", "a{color:red}", noRenaming)
	expectModifiedWith(t, "a { color: rgb(0 0 0/0) }", "a{color:transparent}", noRenaming)

	expectModifiedWith(t, "a { color: rgba(0, 0, 0, 0) }", "a{color:#0000}",
		func(o *config.Options) { noRenaming(o); o.UseRGBAHexNotation = true })
	expectModifiedWith(t, "a { color: rgba(17, 34, 51, .8) }", "a{color:#123c}",
		func(o *config.Options) { noRenaming(o); o.UseRGBAHexNotation = true })

	// Mixed channel types are left alone
	expectModifiedWith(t, "a { color: rgb(255, 0%, 0) }", "a{color:rgb(255,0%,0)}", noRenaming)

	// With rewriting disabled nothing happens
	expectModifiedWith(t, "a { color: rgb(255, 0, 0) }", "a{color:rgb(255,0,0)}",
		func(o *config.Options) { noRenaming(o); o.RewriteFunctions = false })
}

func TestHslFunctions(t *testing.T) {
	expectModifiedWith(t, "a { color: hsl(0, 100%, 50%) }", "a{color:red}", noRenaming)
	expectModifiedWith(t, "a { color: hsl(120, 100%, 50%) }", "a{color:#0f0}", noRenaming)
	expectModifiedWith(t, "a { color: hsla(0, 100%, 50%, 0) }", "a{color:transparent}", noRenaming)
	expectModifiedWith(t, "a { color: hsla(120, 50%, 50%, .5) }", "a{color:rgba(64,191,64,.5)}", noRenaming)

	// The rgba() form is not shorter here, so the hsl() stays
	expectModifiedWith(t, "a { color: hsla(9, 9%, 9%, .5) }", "a{color:hsla(9,9%,9%,.5)}", noRenaming)
}

func TestShorthandCollapse(t *testing.T) {
	expectModifiedWith(t, "a { margin: 10px 10px }", "a{margin:10px}", noRenaming)
	expectModifiedWith(t, "a { margin: 10px 20px 10px }", "a{margin:10px 20px}", noRenaming)
	expectModifiedWith(t, "a { margin: 10px 20px 10px 20px }", "a{margin:10px 20px}", noRenaming)
	expectModifiedWith(t, "a { margin: 10px 10px 10px 10px }", "a{margin:10px}", noRenaming)
	expectModifiedWith(t, "a { padding: 1em 2em 3em 4em }", "a{padding:1em 2em 3em 4em}", noRenaming)
	expectModifiedWith(t, "a { border-radius: 4px 4px }", "a{border-radius:4px}", noRenaming)

	// Non-shorthand properties are not collapsed
	expectModifiedWith(t, "a { transform-origin: 10px 10px }", "a{transform-origin:10px 10px}", noRenaming)
}

func TestAngles(t *testing.T) {
	expectModifiedWith(t, "a { transform: rotate(355deg) }", "a{transform:rotate(-5deg)}", noRenaming)
	expectModifiedWith(t, "a { transform: rotate(-270deg) }", "a{transform:rotate(90deg)}", noRenaming)
	expectModifiedWith(t, "a { transform: rotate(100grad) }", "a{transform:rotate(90deg)}", noRenaming)
	expectModifiedWith(t, "a { transform: rotate(.75turn) }", "a{transform:rotate(270deg)}", noRenaming)
	expectModifiedWith(t, "a { transform: rotate(45deg) }", "a{transform:rotate(45deg)}", noRenaming)
	expectModifiedWith(t, "a { transform: rotate(0grad) }", "a{transform:rotate(0deg)}", noRenaming)

	expectModifiedWith(t, "a { transform: rotate(355deg) }", "a{transform:rotate(355deg)}",
		func(o *config.Options) { noRenaming(o); o.RewriteAngles = false })
}

func TestLinearGradients(t *testing.T) {
	// "to <side>" becomes the equivalent angle; 180deg is the default and
	// goes away entirely
	expectModifiedWith(t, "a { background: linear-gradient(to bottom, red, blue) }",
		"a{background:linear-gradient(red,blue)}", noRenaming)
	expectModifiedWith(t, "a { background: linear-gradient(to right, red, blue) }",
		"a{background:linear-gradient(90deg,red,blue)}", noRenaming)

	// A 0deg gradient reverses its stops instead
	expectModifiedWith(t, "a { background: linear-gradient(to top, red, blue) }",
		"a{background:linear-gradient(blue,red)}", noRenaming)

	// Edge stop positions at their defaults are dropped
	expectModifiedWith(t, "a { background: linear-gradient(to bottom, red 0%, blue 100%) }",
		"a{background:linear-gradient(red,blue)}", noRenaming)

	// A reversal flips every percentage stop to 100-p
	expectModifiedWith(t, "a { background: linear-gradient(265deg, red 20%, blue) }",
		"a{background:linear-gradient(85deg,blue,red 80%)}", noRenaming)

	// Stops with dimension positions are not rewritten
	expectModifiedWith(t, "a { background: linear-gradient(to bottom, red 10px, blue) }",
		"a{background:linear-gradient(180deg,red 10px,blue)}", noRenaming)
}

func TestKeyframeSelectors(t *testing.T) {
	expectModifiedWith(t,
		"@keyframes x { from { opacity: 0 } 100% { opacity: 1 } }",
		"@keyframes x{0%{opacity:0}to{opacity:1}}",
		func(o *config.Options) { noRenaming(o) })
}

func TestAnPlusBCanonicalization(t *testing.T) {
	expectModifiedWith(t, "li:nth-child(even) { color: red }", "li:nth-child(2n){color:red}", noRenaming)
	expectModifiedWith(t, "li:nth-child(2n+1) { color: red }", "li:nth-child(odd){color:red}", noRenaming)
	expectModifiedWith(t, "li:nth-child(3n+2) { color: red }", "li:nth-child(3n+2){color:red}", noRenaming)
}

func TestURLUnquoting(t *testing.T) {
	expectModifiedWith(t, "a { background: url(\"img.png\") }", "a{background:url(img.png)}", noRenaming)
	expectModifiedWith(t, "a { background: url(img.png) }", "a{background:url(img.png)}", noRenaming)

	// Ambiguous contents keep their quotes
	expectModifiedWith(t, "a { background: url(\"a b.png\") }", "a{background:url(\"a b.png\")}", noRenaming)
	expectModifiedWith(t, "a { background: url(\"a(b).png\") }", "a{background:url(\"a(b).png\")}", noRenaming)
}

func TestEmptyRuleRemoval(t *testing.T) {
	expectModifiedWith(t, "a {} b { color: red }", "b{color:red}", noRenaming)
	expectModifiedWith(t, "@media screen { a {} }", "@media screen{}", noRenaming)
	expectModifiedWith(t, "a {} b {}", "", noRenaming)

	expectModifiedWith(t, "a {} b { color: red }", "a{}b{color:red}",
		func(o *config.Options) { noRenaming(o); o.RemoveEmptyRules = false })
}

func TestClassAndIDRenaming(t *testing.T) {
	expectModified(t, ".foo { color: red } .bar .foo { color: blue }",
		".a{color:red}.b .a{color:blue}")
	expectModified(t, "#header { color: red } #header { color: blue }",
		"#a{color:red}#a{color:blue}")

	// Shared value cells: the same name renames identically everywhere
	output := modify(t, ".foo { color: red } div.foo:hover { color: blue }", nil)
	test.AssertEqual(t, output, ".a{color:red}div.a:hover{color:blue}")
}

func TestCustomPropertyRenaming(t *testing.T) {
	expectModified(t, ":root { --pad: 4px } .a { padding: var(--pad) }",
		":root{--a:4px}.a{padding:var(--a)}")
}

func TestAnimationRenaming(t *testing.T) {
	expectModified(t, "@keyframes spin { from { opacity: 0 } } a { animation: spin 1s }",
		"@keyframes a{0%{opacity:0}}a{animation:a 1s}")
	expectModified(t, "a { animation-name: fade } @keyframes fade { to { opacity: 1 } }",
		"a{animation-name:a}@keyframes a{to{opacity:1}}")

	// "none" is never renamed
	expectModified(t, "a { animation: none 1s }", "a{animation:none 1s}")
}

func TestUndeclaredDiagnostics(t *testing.T) {
	_, h := modifyWithFiles(t, "a { padding: var(--ghost) }", nil, nil)
	test.AssertEqual(t, h.ok, true)

	found := false
	for _, msg := range h.log.Done() {
		if strings.Contains(msg.Data.Text, "Undeclared custom property '--ghost'") {
			found = true
		}
	}
	test.AssertEqual(t, found, true)
}

func TestMergeMediaRules(t *testing.T) {
	expectModifiedWith(t,
		"@media (min-width: 600px) { .a { color: red } } @media (min-width: 600px) { .b { color: blue } }",
		"@media (min-width:600px){.a{color:red}.b{color:blue}}",
		noRenaming)

	// "and"-joined expressions compare as sets
	expectModifiedWith(t,
		"@media screen and (min-width: 600px) { .a { color: red } } @media (min-width: 600px) and screen { .b { color: blue } }",
		"@media screen and (min-width:600px){.a{color:red}.b{color:blue}}",
		noRenaming)

	// Different queries stay apart
	expectModifiedWith(t,
		"@media (min-width: 600px) { .a { color: red } } @media (min-width: 700px) { .b { color: blue } }",
		"@media (min-width:600px){.a{color:red}}@media (min-width:700px){.b{color:blue}}",
		noRenaming)

	expectModifiedWith(t,
		"@media (min-width: 600px) { .a { color: red } } @media (min-width: 600px) { .b { color: blue } }",
		"@media (min-width:600px){.a{color:red}}@media (min-width:600px){.b{color:blue}}",
		func(o *config.Options) { noRenaming(o); o.MergeMediaRules = false })
}

func TestMergeMediaWithEmptyRuleRemoval(t *testing.T) {
	expectModifiedWith(t,
		"@media (min-width: 600px) { .a {} } @media (min-width: 600px) { .b { color: red } }",
		"@media (min-width:600px){.b{color:red}}",
		noRenaming)
}

func TestCharsetHandling(t *testing.T) {
	// A utf-8 @charset is dropped when the BOM is authoritative
	output, h := modifyWithFiles(t, "@charset \"utf-8\"; a { color: red }", nil,
		func(o *config.Options) { noRenaming(o); o.UseUTF8BOM = true })
	test.AssertEqual(t, h.ok, true)
	test.AssertEqual(t, output, "\xef\xbb\xbfa{color:red}")
	test.AssertEqual(t, h.prompter.asked, 0)

	// Lowercasing applies without the BOM flag
	output, _ = modifyWithFiles(t, "@charset \"UTF-8\"; a { color: red }", nil, noRenaming)
	test.AssertEqual(t, output, "@charset \"utf-8\";a{color:red}")
}

func TestCharsetConflictPrompt(t *testing.T) {
	// Choice 1: write the BOM, drop the @charset rule
	output, h := modifyWithFiles(t, "@charset \"utf-16\"; a { color: red }", nil,
		func(o *config.Options) { noRenaming(o); o.UseUTF8BOM = true })
	test.AssertEqual(t, h.ok, true)
	test.AssertEqual(t, h.prompter.asked, 1)
	test.AssertEqual(t, output, "\xef\xbb\xbfa{color:red}")
}

func TestImportInlining(t *testing.T) {
	files := map[string]string{"/in/a.css": ".x { color: red }"}

	output, h := modifyWithFiles(t, "@import \"a.css\";", files, noRenaming)
	test.AssertEqual(t, h.ok, true)
	test.AssertEqual(t, output, ".x{color:red}")

	// A media query wraps the inlined stylesheet
	output, h = modifyWithFiles(t, "@import \"a.css\" screen;", files, noRenaming)
	test.AssertEqual(t, h.ok, true)
	test.AssertEqual(t, output, "@media screen{.x{color:red}}")

	// url() imports work the same way
	output, h = modifyWithFiles(t, "@import url(a.css);", files, noRenaming)
	test.AssertEqual(t, h.ok, true)
	test.AssertEqual(t, output, ".x{color:red}")
}

func TestImportRenamesConsistently(t *testing.T) {
	files := map[string]string{"/in/a.css": ".shared { color: red }"}
	output, h := modifyWithFiles(t, "@import \"a.css\"; .shared { color: blue }", files, nil)
	test.AssertEqual(t, h.ok, true)
	test.AssertEqual(t, output, ".a{color:red}.a{color:blue}")
}

func TestImportSeparateOutput(t *testing.T) {
	files := map[string]string{"/in/a.css": ".x { color: red }"}
	output, h := modifyWithFiles(t, "@import \"a.css\"; b { color: blue }", files,
		func(o *config.Options) { noRenaming(o); o.IncludeExternalStylesheets = false })
	test.AssertEqual(t, h.ok, true)
	test.AssertEqual(t, output, "@import \"a.css\";b{color:blue}")

	written, ok := h.fs.Files["/out/a.css"]
	test.AssertEqual(t, ok, true)
	test.AssertEqual(t, strings.Contains(written, ".x{color:red}"), true)
}

func TestImportErrors(t *testing.T) {
	_, h := modifyWithFiles(t, "@import \"/etc/absolute.css\";", nil, noRenaming)
	test.AssertEqual(t, h.ok, false)

	_, h = modifyWithFiles(t, "@import \"missing.css\";", nil, noRenaming)
	test.AssertEqual(t, h.ok, false)

	// A cyclic import graph is refused instead of recursing forever
	files := map[string]string{"/in/a.css": "@import \"app.css\";"}
	_, h = modifyWithFiles(t, "@import \"a.css\";", files, noRenaming)
	test.AssertEqual(t, h.ok, false)
}

func TestRemoteImportsPassThrough(t *testing.T) {
	expectModifiedWith(t, "@import \"https://example.com/x.css\";",
		"@import \"https://example.com/x.css\";", noRenaming)
}

func TestSidecarWritten(t *testing.T) {
	_, h := modifyWithFiles(t, ".foo { color: red } :root { --pad: 1px }", nil, nil)
	test.AssertEqual(t, h.ok, true)

	json, ok := h.fs.Files["/out/hspp.json"]
	test.AssertEqual(t, ok, true)
	test.AssertEqual(t, json, "{\"classes\":{\"foo\":\"a\"},\"cprops\":{\"pad\":\"a\"}}")
}

func TestNoSidecarWithoutRenames(t *testing.T) {
	_, h := modifyWithFiles(t, "a { color: red }", nil, nil)
	test.AssertEqual(t, h.ok, true)
	_, ok := h.fs.Files["/out/hspp.json"]
	test.AssertEqual(t, ok, false)
}

func TestEndToEndScenarios(t *testing.T) {
	expectModifiedWith(t, "a { color: #ffffff; margin: 0px 0px 0px 0px; }",
		"a{color:#fff;margin:0}", noRenaming)

	expectModified(t, ".x { color: rgba(255,0,0,1); } .x { color: hsl(0,100%,50%); }",
		".a{color:red}.a{color:red}")
}

func TestIdempotence(t *testing.T) {
	input := ".foo { color: #ffffff; margin: 0px 0px } #bar { transition-duration: 100ms }"
	first := modify(t, input, nil)
	second := modify(t, first, nil)
	test.AssertEqualWithDiff(t, second, first)
}
