package css_modifier

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/excurso/hspp/internal/fs"
	"github.com/excurso/hspp/internal/sidecar"
)

const AppName = "hspp"

// Writes the identifier map sidecars next to the output: a JSON document when
// create_json_file is on and a PHP include file when create_php_include_file
// is on. Nothing is written when every table is empty.
func (m *Modifier) writeSidecarFiles() {
	if m.tables.IDs.Empty() && m.tables.Classes.Empty() &&
		m.tables.CustomProperties.Empty() && m.tables.Animations.Empty() {
		return
	}

	if m.createJSONFile {
		path := fs.JoinPath(m.options.OutputPath, AppName+".json")
		if err := m.fs.WriteFile(path, sidecar.JSON(m.tables, m.options)); err != nil {
			m.fatal("Cannot write '" + path + "': " + err.Error())
		}
	}

	if m.options.CreatePHPIncludeFile {
		path := fs.JoinPath(m.options.OutputPath, AppName+".php")
		if err := m.fs.WriteFile(path, sidecar.PHP(m.tables, m.options)); err != nil {
			m.fatal("Cannot write '" + path + "': " + err.Error())
		}
	}
}

// Prints the aligned summary of renamable identifiers found in this run
func (m *Modifier) writeFoundSummary() {
	counts := []string{
		strconv.Itoa(m.tables.IDs.Len()),
		strconv.Itoa(m.tables.Classes.Len()),
		strconv.Itoa(m.tables.CustomProperties.Len()),
		strconv.Itoa(m.tables.Animations.Len()),
	}

	widths := make([]string, len(counts))
	copy(widths, counts)
	sort.Slice(widths, func(i int, j int) bool { return len(widths[i]) > len(widths[j]) })
	maxLen := len(widths[0])

	divider := strings.Repeat("-", maxLen+18)
	labels := []string{"ids", "classes", "custom properties", "animation names"}

	sb := strings.Builder{}
	sb.WriteString("\n" + divider + "\nFound:\n" + divider + "\n")
	for i, count := range counts {
		sb.WriteString(strings.Repeat(" ", maxLen-len(count)))
		sb.WriteString(count)
		sb.WriteString(" " + labels[i] + "\n")
	}
	sb.WriteString(divider)

	m.log.AddInfo(sb.String())
}

// The interactive prompter used for the @charset/BOM conflict. Reads numbered
// choices from the given reader; invalid input re-prompts.
type StdioPrompter struct {
	In  io.Reader
	Out io.Writer
}

func (p *StdioPrompter) RequestAction(message string, numberOfChoices int) int {
	fmt.Fprintln(p.Out, message)
	reader := bufio.NewReader(p.In)

	for {
		fmt.Fprintf(p.Out, "Your choice (")
		for i := 1; i <= numberOfChoices; i++ {
			fmt.Fprintf(p.Out, "%d", i)
			if i != numberOfChoices {
				fmt.Fprintf(p.Out, "/")
			}
		}
		fmt.Fprintf(p.Out, "): ")

		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			// No more input; fall back to preserving the @charset rule
			return numberOfChoices
		}
		line = strings.TrimSpace(line)

		choice, convErr := strconv.Atoi(line)
		if convErr != nil || choice < 1 || choice > numberOfChoices {
			fmt.Fprintf(p.Out, "Invalid input: '%s'\n", line)
			continue
		}
		return choice
	}
}
