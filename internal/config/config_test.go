package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	options := Defaults()

	assert.Equal(t, []string{".css"}, options.CSSFileExtensions)
	assert.Equal(t, []string{"copyright", "license"}, options.CommentTerms)
	assert.Equal(t, 4, options.TabWidth)
	assert.True(t, options.RemoveComments)
	assert.True(t, options.MinifyNumbers)
	assert.True(t, options.MinifyColors)
	assert.True(t, options.MinifyIDs)
	assert.True(t, options.MergeMediaRules)
	assert.True(t, options.CreateJSONFile)
	assert.False(t, options.BeautifyOutput)
	assert.False(t, options.UseUTF8BOM)
	assert.False(t, options.UseRGBAHexNotation)
	assert.False(t, options.CreatePHPIncludeFile)
}

func TestParseFile(t *testing.T) {
	contents := `# A comment line

[general]
beautify_output = true
tab_width = 8
css_file_extensions = .css .scss

[css]
remove_comments = false
comment_terms = copyright license preserve
minify_ids = false
`
	options, err := Parse("/etc/hspp.conf", contents, Defaults())
	require.NoError(t, err)

	assert.True(t, options.BeautifyOutput)
	assert.Equal(t, 8, options.TabWidth)
	assert.Equal(t, []string{".css", ".scss"}, options.CSSFileExtensions)
	assert.False(t, options.RemoveComments)
	assert.Equal(t, []string{"copyright", "license", "preserve"}, options.CommentTerms)
	assert.False(t, options.MinifyIDs)

	// Untouched options keep their defaults
	assert.True(t, options.MinifyColors)
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		contents string
		text     string
		row      int
	}{
		{"[bogus]\n", "Unknown section", 1},
		{"[general]\nbogus_key = true\n", "Unknown option", 2},
		{"[general]\nbeautify_output = yes\n", "Expected \"true\" or \"false\"", 2},
		{"[general]\ntab_width = four\n", "Expected a number", 2},
		{"[general]\nno equals sign here\n", "Expected \"key = value\"", 2},
		{"[css]\nbeautify_output = true\n", "belongs in section", 2},
		{"[general\n", "Expected \"]\"", 1},
	}

	for _, c := range cases {
		_, err := Parse("/etc/hspp.conf", c.contents, Defaults())
		require.Error(t, err, c.contents)

		parseError, ok := err.(*ParseError)
		require.True(t, ok, c.contents)
		assert.Contains(t, parseError.Text, c.text)
		assert.Equal(t, c.row, parseError.Row, c.contents)
		assert.Contains(t, err.Error(), "/etc/hspp.conf:")
	}
}

func TestDefaultFileRoundTrip(t *testing.T) {
	// The generated default config file must parse back to the defaults
	options, err := Parse("hspp.conf", DefaultFileContents(), Defaults())
	require.NoError(t, err)
	assert.Equal(t, Defaults(), options)
}

func TestDescribe(t *testing.T) {
	options := Defaults()
	described := options.Describe()

	assert.True(t, strings.HasPrefix(described, "[general]\n"))
	assert.Contains(t, described, "[css]\n")
	assert.Contains(t, described, "tab_width = 4")
	assert.Contains(t, described, "minify_ids = true")
	assert.Contains(t, described, "comment_terms = copyright license")
}
