// This API exposes the command-line interface of hspp. It can be used to run
// hspp from Go without the overhead of creating a child process.
package cli

import (
	"fmt"
	"os"

	"github.com/excurso/hspp/internal/config"
	"github.com/excurso/hspp/internal/css_minifier"
	"github.com/excurso/hspp/internal/css_modifier"
	"github.com/excurso/hspp/internal/fs"
	"github.com/excurso/hspp/internal/logger"
)

const helpText = `Usage:
  hspp -i <input-path> -o <output-dir>
  hspp --stdo -i <input-path>

Options:
  --help                 Print this message. Must be the only argument.
  --create-config-file   Write a default configuration file.
  --config-file <path>   Use <path> as the configuration source (absolute).
  --config-info          Print the effective configuration and exit.
  --stdo                 Write the result to stdout instead of a file.
  -i <path>              Input file. Absolute, unless an input working
                         directory is configured.
  -o <path>              Output directory. Absolute, unless an output working
                         directory is configured.
`

// Runs the command-line tool and returns its exit code
func Run(osArgs []string) int {
	log := logger.NewStderrLog(logger.OutputOptions{
		IncludeSource: true,
		LogLevel:      logger.LevelInfo,
	})
	fsys := fs.RealFS()
	prompter := &css_modifier.StdioPrompter{In: os.Stdin, Out: os.Stderr}

	// "--help" must be the only argument
	for _, arg := range osArgs {
		if arg == "--help" {
			if len(osArgs) != 1 {
				log.AddErrorText("\"--help\" must be the only argument")
				return 1
			}
			fmt.Print(helpText)
			return 0
		}
	}

	options := config.Defaults()
	configFile := ""
	configInfo := false
	createConfigFile := false
	inputArg := ""
	outputArg := ""

	for i := 0; i < len(osArgs); i++ {
		arg := osArgs[i]
		switch arg {
		case "--create-config-file":
			createConfigFile = true

		case "--config-file":
			if i+1 == len(osArgs) {
				log.AddErrorText("Missing value for \"--config-file\"")
				return 1
			}
			i++
			configFile = osArgs[i]

		case "--config-info":
			configInfo = true

		case "--stdo":
			options.OutputToStdout = true

		case "-i":
			if i+1 == len(osArgs) {
				log.AddErrorText("Missing value for \"-i\"")
				return 1
			}
			i++
			inputArg = osArgs[i]

		case "-o":
			if i+1 == len(osArgs) {
				log.AddErrorText("Missing value for \"-o\"")
				return 1
			}
			i++
			outputArg = osArgs[i]

		default:
			log.AddErrorText("Unsupported argument \"" + arg + "\". Try \"--help\".")
			return 1
		}
	}

	if createConfigFile {
		if err := writeDefaultConfigFile(fsys, prompter); err != nil {
			log.AddErrorText(err.Error())
			return 1
		}
		return 0
	}

	if configFile != "" {
		if !fs.IsAbs(configFile) {
			log.AddErrorText("The config file path '" + configFile + "' must be absolute")
			return 1
		}
		contents, err := fsys.ReadFile(configFile)
		if err != nil {
			log.AddErrorText("Cannot read config file '" + configFile + "': " + err.Error())
			return 1
		}
		options, err = config.Parse(configFile, contents, options)
		if err != nil {
			log.AddErrorText(err.Error())
			return 1
		}
	}

	// Command-line arguments override the config file
	if inputArg != "" {
		options.InputPath = inputArg
	}
	if outputArg != "" {
		options.OutputPath = outputArg
	}

	if configInfo {
		fmt.Print(options.Describe())
		return 0
	}

	if !css_minifier.Run(log, fsys, &options, prompter, os.Stdout) {
		return 1
	}
	return 0
}

const defaultConfigFileName = css_modifier.AppName + ".conf"

func writeDefaultConfigFile(fsys fs.FS, prompter css_modifier.Prompter) error {
	path := defaultConfigFileName
	if cwd, err := os.Getwd(); err == nil {
		path = fs.JoinPath(cwd, defaultConfigFileName)
	}

	if fsys.Exists(path) {
		choice := prompter.RequestAction(
			"The file '"+path+"' already exists.\n"+
				"1. Overwrite it with the default configuration\n"+
				"2. Keep the existing file\n", 2)
		if choice != 1 {
			return nil
		}
	}

	if err := fsys.WriteFile(path, config.DefaultFileContents()); err != nil {
		return fmt.Errorf("cannot write config file '%s': %s", path, err)
	}
	fmt.Fprintln(os.Stderr, "Wrote '"+path+"'")
	return nil
}
