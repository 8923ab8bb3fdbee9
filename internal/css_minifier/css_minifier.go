package css_minifier

import (
	"fmt"
	"io"
	"strings"

	"github.com/excurso/hspp/internal/config"
	"github.com/excurso/hspp/internal/css_lexer"
	"github.com/excurso/hspp/internal/css_modifier"
	"github.com/excurso/hspp/internal/css_parser"
	"github.com/excurso/hspp/internal/css_printer"
	"github.com/excurso/hspp/internal/fs"
	"github.com/excurso/hspp/internal/logger"
	"github.com/excurso/hspp/internal/renamer"
)

// Drives the four-stage pipeline for one top-level input file: read,
// tokenize, parse, modify, print, write. Imports re-enter the tokenizer and
// parser through the modifier. Returns false if a fatal error was logged.

func Run(log logger.Log, fsys fs.FS, options *config.Options, prompter css_modifier.Prompter, stdout io.Writer) bool {
	inputPath, ok := resolveInputPath(log, fsys, options)
	if !ok {
		return false
	}
	options.InputPath = inputPath

	if !options.OutputToStdout {
		if !resolveOutputPath(log, options) {
			return false
		}
		outputFile := fs.JoinPath(options.OutputPath, fs.BaseName(inputPath))
		if fs.CleanPath(outputFile) == fs.CleanPath(inputPath) {
			log.AddErrorText("Input and output path are the same file '" + inputPath + "'")
			return false
		}
	}

	contents, err := fsys.ReadFile(inputPath)
	if err != nil {
		log.AddErrorText("Cannot read input file '" + inputPath + "': " + err.Error())
		return false
	}
	contents, _ = fs.StripBOM(contents)

	source := logger.Source{PrettyPath: inputPath, Contents: contents}
	tokens, ok := css_lexer.Tokenize(log, source, css_lexer.Options{
		RemoveComments: options.RemoveComments,
		CommentTerms:   options.CommentTerms,
		TabWidth:       int32(options.TabWidth),
	})
	if !ok {
		return false
	}

	sheet := css_parser.Parse(log, source, tokens)
	if sheet == nil {
		return false
	}

	tables := renamer.NewGroup()
	modifier := css_modifier.NewModifier(log, fsys, options, tables, prompter, inputPath)
	if !modifier.ModifyStylesheet(sheet) {
		return false
	}

	printOptions := css_printer.Options{Beautify: options.BeautifyOutput}
	if !options.BeautifyOutput {
		printOptions.Header = css_printer.OutputFileHeader
	}
	output := css_printer.Print(sheet, printOptions)

	// The header must never make the output larger than the input
	if printOptions.Header != "" && len(output) > len(contents) {
		printOptions.Header = ""
		output = css_printer.Print(sheet, printOptions)
	}

	if options.OutputToStdout {
		fmt.Fprint(stdout, output)
		return true
	}

	outputFile := fs.JoinPath(options.OutputPath, fs.BaseName(inputPath))
	if err := fsys.MkdirAll(options.OutputPath); err != nil {
		log.AddErrorText("Cannot create output directory '" + options.OutputPath + "': " + err.Error())
		return false
	}
	if err := fsys.WriteFile(outputFile, output); err != nil {
		log.AddErrorText("Cannot write output file '" + outputFile + "': " + err.Error())
		return false
	}

	log.AddInfo(sizeDifference(int64(len(contents)), int64(len(output))))
	return true
}

func resolveInputPath(log logger.Log, fsys fs.FS, options *config.Options) (string, bool) {
	inputPath := options.InputPath
	if inputPath == "" {
		log.AddErrorText("No input file. Use -i <input-path>.")
		return "", false
	}

	if options.InputWorkingDirectory != "" && !fs.IsAbs(inputPath) {
		inputPath = fs.JoinPath(options.InputWorkingDirectory, inputPath)
	} else if !fs.IsAbs(inputPath) {
		log.AddErrorText("The input path '" + inputPath + "' must be absolute " +
			"unless an input working directory is set.")
		return "", false
	}
	inputPath = fs.CleanPath(inputPath)

	hasExtension := false
	for _, extension := range options.CSSFileExtensions {
		if strings.HasSuffix(inputPath, extension) {
			hasExtension = true
			break
		}
	}
	if !hasExtension {
		log.AddErrorText("The input file '" + inputPath + "' does not have one of the configured " +
			"file extensions (" + strings.Join(options.CSSFileExtensions, " ") + ")")
		return "", false
	}

	if !fsys.Exists(inputPath) {
		log.AddErrorText("The input file '" + inputPath + "' does not exist")
		return "", false
	}

	return inputPath, true
}

func resolveOutputPath(log logger.Log, options *config.Options) bool {
	outputPath := options.OutputPath
	if outputPath == "" {
		log.AddErrorText("No output directory. Use -o <output-dir> or --stdo.")
		return false
	}

	if options.OutputWorkingDirectory != "" && !fs.IsAbs(outputPath) {
		outputPath = fs.JoinPath(options.OutputWorkingDirectory, outputPath)
	} else if !fs.IsAbs(outputPath) {
		log.AddErrorText("The output path '" + outputPath + "' must be absolute " +
			"unless an output working directory is set.")
		return false
	}

	options.OutputPath = fs.CleanPath(outputPath)
	return true
}

func sizeDifference(inputSize int64, outputSize int64) string {
	saved := inputSize - outputSize
	percentage := 0.0
	if inputSize > 0 {
		percentage = float64(saved) / float64(inputSize) * 100
	}
	return fmt.Sprintf("Input size: %d bytes\nOutput size: %d bytes\nSaved: %d bytes (%.1f%%)",
		inputSize, outputSize, saved, percentage)
}
