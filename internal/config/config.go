package config

import (
	"fmt"
	"sort"
	"strings"
)

// The effective configuration of one run. The zero value is not meaningful;
// use Defaults() and overlay the config file and command line onto it.
type Options struct {
	// [general]
	InputWorkingDirectory   string
	OutputWorkingDirectory  string
	InputPath               string
	OutputPath              string
	CSSFileExtensions       []string
	JSONIDObjectName        string
	JSONClassObjectName     string
	JSONCPropObjectName     string
	JSONAnimationObjectName string
	PHPIDArrayName          string
	PHPClassArrayName       string
	PHPCPropArrayName       string
	PHPAnimationArrayName   string
	TabWidth                int
	BeautifyOutput          bool
	CreateJSONFile          bool
	CreatePHPIncludeFile    bool
	UseUTF8BOM              bool

	// [css]
	CommentTerms               []string
	IncludeExternalStylesheets bool
	RemoveComments             bool
	MinifyNumbers              bool
	MinifyColors               bool
	RewriteAngles              bool
	UseRGBAHexNotation         bool
	MinifyIDs                  bool
	MinifyClassNames           bool
	MinifyCustomProperties     bool
	MinifyAnimationNames       bool
	RewriteFunctions           bool
	RemoveEmptyRules           bool
	MergeMediaRules            bool

	// Set from the command line, not the config file
	OutputToStdout bool
}

func Defaults() Options {
	return Options{
		CSSFileExtensions:       []string{".css"},
		JSONIDObjectName:        "ids",
		JSONClassObjectName:     "classes",
		JSONCPropObjectName:     "cprops",
		JSONAnimationObjectName: "anims",
		PHPIDArrayName:          "ids",
		PHPClassArrayName:       "classes",
		PHPCPropArrayName:       "cprops",
		PHPAnimationArrayName:   "anims",
		TabWidth:                4,
		CreateJSONFile:          true,

		CommentTerms:               []string{"copyright", "license"},
		IncludeExternalStylesheets: true,
		RemoveComments:             true,
		MinifyNumbers:              true,
		MinifyColors:               true,
		RewriteAngles:              true,
		MinifyIDs:                  true,
		MinifyClassNames:           true,
		MinifyCustomProperties:     true,
		MinifyAnimationNames:       true,
		RewriteFunctions:           true,
		RemoveEmptyRules:           true,
		MergeMediaRules:            true,
	}
}

// Renders the effective configuration for "--config-info"
func (options *Options) Describe() string {
	sb := strings.Builder{}

	writeSection := func(name string, pairs map[string]string) {
		sb.WriteString("[" + name + "]\n")
		keys := make([]string, 0, len(pairs))
		for key := range pairs {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			sb.WriteString(key + " = " + pairs[key] + "\n")
		}
		sb.WriteString("\n")
	}

	writeSection("general", map[string]string{
		"input_working_directory":   options.InputWorkingDirectory,
		"output_working_directory":  options.OutputWorkingDirectory,
		"input_path":                options.InputPath,
		"output_path":               options.OutputPath,
		"css_file_extensions":       strings.Join(options.CSSFileExtensions, " "),
		"beautify_output":           boolString(options.BeautifyOutput),
		"create_json_file":          boolString(options.CreateJSONFile),
		"json_id_object_name":       options.JSONIDObjectName,
		"json_class_object_name":    options.JSONClassObjectName,
		"json_cprop_object_name":    options.JSONCPropObjectName,
		"json_animation_object_name": options.JSONAnimationObjectName,
		"use_utf8_bom":              boolString(options.UseUTF8BOM),
		"tab_width":                 fmt.Sprintf("%d", options.TabWidth),
		"create_php_include_file":   boolString(options.CreatePHPIncludeFile),
		"php_id_array_name":         options.PHPIDArrayName,
		"php_class_array_name":      options.PHPClassArrayName,
		"php_cprop_array_name":      options.PHPCPropArrayName,
		"php_animation_array_name":  options.PHPAnimationArrayName,
	})

	writeSection("css", map[string]string{
		"include_external_stylesheets": boolString(options.IncludeExternalStylesheets),
		"remove_comments":              boolString(options.RemoveComments),
		"comment_terms":                strings.Join(options.CommentTerms, " "),
		"minify_numbers":               boolString(options.MinifyNumbers),
		"minify_colors":                boolString(options.MinifyColors),
		"rewrite_angles":               boolString(options.RewriteAngles),
		"use_rgba_hex_notation":        boolString(options.UseRGBAHexNotation),
		"minify_ids":                   boolString(options.MinifyIDs),
		"minify_class_names":           boolString(options.MinifyClassNames),
		"minify_custom_properties":     boolString(options.MinifyCustomProperties),
		"minify_animation_names":       boolString(options.MinifyAnimationNames),
		"rewrite_functions":            boolString(options.RewriteFunctions),
		"remove_empty_rules":           boolString(options.RemoveEmptyRules),
		"merge_media_rules":            boolString(options.MergeMediaRules),
	})

	return strings.TrimRight(sb.String(), "\n") + "\n"
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
