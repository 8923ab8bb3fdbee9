package config

import (
	"fmt"
	"strconv"
	"strings"
)

// The config file is an INI-like text format: "[section]" headers,
// "key = value" pairs, and "#" comment lines. There are two sections,
// [general] and [css], and three value types: boolean ("true"/"false"),
// list (space-separated), and numeric (digits). Anything else is a string.
// Parse errors are fatal and carry the row and column of the offense.

type ParseError struct {
	Path   string
	Text   string
	Row    int
	Column int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Path, e.Row, e.Column, e.Text)
}

type valueKind uint8

const (
	valueBool valueKind = iota
	valueList
	valueNumeric
	valueString
)

type optionKey struct {
	section string
	kind    valueKind
	apply   func(options *Options, value string, list []string, number int)
}

var optionKeys = map[string]optionKey{
	"input_working_directory": {"general", valueString,
		func(o *Options, v string, _ []string, _ int) { o.InputWorkingDirectory = v }},
	"output_working_directory": {"general", valueString,
		func(o *Options, v string, _ []string, _ int) { o.OutputWorkingDirectory = v }},
	"input_path": {"general", valueString,
		func(o *Options, v string, _ []string, _ int) { o.InputPath = v }},
	"output_path": {"general", valueString,
		func(o *Options, v string, _ []string, _ int) { o.OutputPath = v }},
	"css_file_extensions": {"general", valueList,
		func(o *Options, _ string, l []string, _ int) { o.CSSFileExtensions = l }},
	"beautify_output": {"general", valueBool,
		func(o *Options, v string, _ []string, _ int) { o.BeautifyOutput = v == "true" }},
	"create_json_file": {"general", valueBool,
		func(o *Options, v string, _ []string, _ int) { o.CreateJSONFile = v == "true" }},
	"json_id_object_name": {"general", valueString,
		func(o *Options, v string, _ []string, _ int) { o.JSONIDObjectName = v }},
	"json_class_object_name": {"general", valueString,
		func(o *Options, v string, _ []string, _ int) { o.JSONClassObjectName = v }},
	"json_cprop_object_name": {"general", valueString,
		func(o *Options, v string, _ []string, _ int) { o.JSONCPropObjectName = v }},
	"json_animation_object_name": {"general", valueString,
		func(o *Options, v string, _ []string, _ int) { o.JSONAnimationObjectName = v }},
	"use_utf8_bom": {"general", valueBool,
		func(o *Options, v string, _ []string, _ int) { o.UseUTF8BOM = v == "true" }},
	"tab_width": {"general", valueNumeric,
		func(o *Options, _ string, _ []string, n int) { o.TabWidth = n }},
	"create_php_include_file": {"general", valueBool,
		func(o *Options, v string, _ []string, _ int) { o.CreatePHPIncludeFile = v == "true" }},
	"php_id_array_name": {"general", valueString,
		func(o *Options, v string, _ []string, _ int) { o.PHPIDArrayName = v }},
	"php_class_array_name": {"general", valueString,
		func(o *Options, v string, _ []string, _ int) { o.PHPClassArrayName = v }},
	"php_cprop_array_name": {"general", valueString,
		func(o *Options, v string, _ []string, _ int) { o.PHPCPropArrayName = v }},
	"php_animation_array_name": {"general", valueString,
		func(o *Options, v string, _ []string, _ int) { o.PHPAnimationArrayName = v }},

	"include_external_stylesheets": {"css", valueBool,
		func(o *Options, v string, _ []string, _ int) { o.IncludeExternalStylesheets = v == "true" }},
	"remove_comments": {"css", valueBool,
		func(o *Options, v string, _ []string, _ int) { o.RemoveComments = v == "true" }},
	"comment_terms": {"css", valueList,
		func(o *Options, _ string, l []string, _ int) { o.CommentTerms = l }},
	"minify_numbers": {"css", valueBool,
		func(o *Options, v string, _ []string, _ int) { o.MinifyNumbers = v == "true" }},
	"minify_colors": {"css", valueBool,
		func(o *Options, v string, _ []string, _ int) { o.MinifyColors = v == "true" }},
	"rewrite_angles": {"css", valueBool,
		func(o *Options, v string, _ []string, _ int) { o.RewriteAngles = v == "true" }},
	"use_rgba_hex_notation": {"css", valueBool,
		func(o *Options, v string, _ []string, _ int) { o.UseRGBAHexNotation = v == "true" }},
	"minify_ids": {"css", valueBool,
		func(o *Options, v string, _ []string, _ int) { o.MinifyIDs = v == "true" }},
	"minify_class_names": {"css", valueBool,
		func(o *Options, v string, _ []string, _ int) { o.MinifyClassNames = v == "true" }},
	"minify_custom_properties": {"css", valueBool,
		func(o *Options, v string, _ []string, _ int) { o.MinifyCustomProperties = v == "true" }},
	"minify_animation_names": {"css", valueBool,
		func(o *Options, v string, _ []string, _ int) { o.MinifyAnimationNames = v == "true" }},
	"rewrite_functions": {"css", valueBool,
		func(o *Options, v string, _ []string, _ int) { o.RewriteFunctions = v == "true" }},
	"remove_empty_rules": {"css", valueBool,
		func(o *Options, v string, _ []string, _ int) { o.RemoveEmptyRules = v == "true" }},
	"merge_media_rules": {"css", valueBool,
		func(o *Options, v string, _ []string, _ int) { o.MergeMediaRules = v == "true" }},
}

// Parses the config file contents over the given defaults
func Parse(path string, contents string, options Options) (Options, error) {
	section := ""

	for row, line := range strings.Split(contents, "\n") {
		row++ // 1-based
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		column := strings.Index(line, trimmed) + 1

		if strings.HasPrefix(trimmed, "[") {
			if !strings.HasSuffix(trimmed, "]") {
				return options, &ParseError{Path: path, Row: row, Column: column, Text: "Expected \"]\" to end section header"}
			}
			section = trimmed[1 : len(trimmed)-1]
			if section != "general" && section != "css" {
				return options, &ParseError{Path: path, Row: row, Column: column, Text: "Unknown section \"[" + section + "]\""}
			}
			continue
		}

		equals := strings.Index(trimmed, "=")
		if equals == -1 {
			return options, &ParseError{Path: path, Row: row, Column: column, Text: "Expected \"key = value\""}
		}
		key := strings.TrimSpace(trimmed[:equals])
		value := strings.TrimSpace(trimmed[equals+1:])

		entry, ok := optionKeys[key]
		if !ok {
			return options, &ParseError{Path: path, Row: row, Column: column, Text: "Unknown option \"" + key + "\""}
		}
		if entry.section != section {
			return options, &ParseError{Path: path, Row: row, Column: column,
				Text: "Option \"" + key + "\" belongs in section [" + entry.section + "]"}
		}

		valueColumn := strings.Index(line, "=") + 2
		if i := strings.Index(line[valueColumn-1:], value); value != "" && i >= 0 {
			valueColumn += i
		}

		switch entry.kind {
		case valueBool:
			if value != "true" && value != "false" {
				return options, &ParseError{Path: path, Row: row, Column: valueColumn,
					Text: "Expected \"true\" or \"false\" for option \"" + key + "\""}
			}
			entry.apply(&options, value, nil, 0)

		case valueList:
			entry.apply(&options, value, strings.Fields(value), 0)

		case valueNumeric:
			number, err := strconv.Atoi(value)
			if err != nil || number < 0 {
				return options, &ParseError{Path: path, Row: row, Column: valueColumn,
					Text: "Expected a number for option \"" + key + "\""}
			}
			entry.apply(&options, value, nil, number)

		case valueString:
			entry.apply(&options, value, nil, 0)
		}
	}

	return options, nil
}

// The annotated default config file written by "--create-config-file"
func DefaultFileContents() string {
	return `# HSPP configuration file
#
# Value types:
#   boolean  true/false
#   list     space-separated entries
#   numeric  digits only

[general]
# input_working_directory =
# output_working_directory =
# input_path =
# output_path =
css_file_extensions = .css
beautify_output = false
create_json_file = true
json_id_object_name = ids
json_class_object_name = classes
json_cprop_object_name = cprops
json_animation_object_name = anims
use_utf8_bom = false
tab_width = 4
create_php_include_file = false
php_id_array_name = ids
php_class_array_name = classes
php_cprop_array_name = cprops
php_animation_array_name = anims

[css]
include_external_stylesheets = true
remove_comments = true
comment_terms = copyright license
minify_numbers = true
minify_colors = true
rewrite_angles = true
use_rgba_hex_notation = false
minify_ids = true
minify_class_names = true
minify_custom_properties = true
minify_animation_names = true
rewrite_functions = true
remove_empty_rules = true
merge_media_rules = true
`
}
