package logger

// Diagnostics are collected as messages; the stderr log also prints each one
// as it is added. Every message can carry a source location so tokenizer,
// parser, and config errors all point at a file, row, and column.

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
)

type Log struct {
	AddMsg    func(Msg)
	HasErrors func() bool

	// Flushes the accumulated messages. A log must not be used after this.
	Done func() []Msg
}

type LogLevel int8

const (
	LevelNone LogLevel = iota
	LevelInfo
	LevelWarning
	LevelError
	LevelSilent
)

type MsgKind uint8

const (
	Error MsgKind = iota
	Warning
	Info
)

func (kind MsgKind) String() string {
	switch kind {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Info:
		return "info"
	default:
		panic("Internal error")
	}
}

type Msg struct {
	Kind MsgKind
	Data MsgData
}

type MsgData struct {
	Text     string
	Location *MsgLocation
}

type MsgLocation struct {
	File     string
	LineText string
	Line     int // 1-based
	Column   int // 1-based
}

// A source position as tracked by the tokenizer: 1-based row and column.
// Columns advance by one per logical character, by the configured tab width
// per tab, and by one per multi-byte UTF-8 sequence.
type Pos struct {
	Row    int32
	Column int32
}

type Source struct {
	// The path as it should appear in error messages.
	PrettyPath string

	Contents string
}

// Returns the text of the 1-based line for inclusion in error output.
func (s *Source) LineText(line int) string {
	if line < 1 {
		return ""
	}
	text := s.Contents
	for line > 1 {
		i := strings.IndexByte(text, '\n')
		if i == -1 {
			return ""
		}
		text = text[i+1:]
		line--
	}
	if i := strings.IndexAny(text, "\r\n"); i != -1 {
		text = text[:i]
	}
	return text
}

func (log Log) AddError(source *Source, pos Pos, text string) {
	log.AddMsg(Msg{Kind: Error, Data: MsgData{Text: text, Location: LocationOrNil(source, pos)}})
}

func (log Log) AddErrorText(text string) {
	log.AddMsg(Msg{Kind: Error, Data: MsgData{Text: text}})
}

func (log Log) AddInfo(text string) {
	log.AddMsg(Msg{Kind: Info, Data: MsgData{Text: text}})
}

func LocationOrNil(source *Source, pos Pos) *MsgLocation {
	if source == nil {
		return nil
	}
	return &MsgLocation{
		File:     source.PrettyPath,
		LineText: source.LineText(int(pos.Row)),
		Line:     int(pos.Row),
		Column:   int(pos.Column),
	}
}

type SortableMsgs []Msg

func (a SortableMsgs) Len() int          { return len(a) }
func (a SortableMsgs) Swap(i int, j int) { a[i], a[j] = a[j], a[i] }

func (a SortableMsgs) Less(i int, j int) bool {
	ai := a[i]
	aj := a[j]
	aiLoc := ai.Data.Location
	ajLoc := aj.Data.Location
	if aiLoc == nil || ajLoc == nil {
		return aiLoc == nil && ajLoc != nil
	}
	if aiLoc.File != ajLoc.File {
		return aiLoc.File < ajLoc.File
	}
	if aiLoc.Line != ajLoc.Line {
		return aiLoc.Line < ajLoc.Line
	}
	if aiLoc.Column != ajLoc.Column {
		return aiLoc.Column < ajLoc.Column
	}
	return ai.Data.Text < aj.Data.Text
}

type OutputOptions struct {
	IncludeSource bool
	Color         UseColor
	LogLevel      LogLevel
}

type UseColor uint8

const (
	ColorIfTerminal UseColor = iota
	ColorNever
	ColorAlways
)

type TerminalInfo struct {
	IsTTY           bool
	UseColorEscapes bool
	Width           int
	Height          int
}

type Colors struct {
	Reset     string
	Bold      string
	Dim       string
	Red       string
	Green     string
	Magenta   string
	Underline string
}

var TerminalColors = Colors{
	Reset:     "\033[0m",
	Bold:      "\033[1m",
	Dim:       "\033[37m",
	Red:       "\033[31m",
	Green:     "\033[32m",
	Magenta:   "\033[35m",
	Underline: "\033[4m",
}

func NewStderrLog(options OutputOptions) Log {
	var mutex sync.Mutex
	var msgs SortableMsgs
	terminalInfo := GetTerminalInfo(os.Stderr)
	hasErrors := false

	switch options.Color {
	case ColorNever:
		terminalInfo.UseColorEscapes = false
	case ColorAlways:
		terminalInfo.UseColorEscapes = SupportsColorEscapes
	}

	return Log{
		AddMsg: func(msg Msg) {
			mutex.Lock()
			defer mutex.Unlock()
			msgs = append(msgs, msg)
			if msg.Kind == Error {
				hasErrors = true
			}

			// Print errors and warnings as they happen. Info messages are
			// progress output and go straight through too.
			shown := false
			switch msg.Kind {
			case Error:
				shown = options.LogLevel <= LevelError
			case Warning:
				shown = options.LogLevel <= LevelWarning
			case Info:
				shown = options.LogLevel <= LevelInfo
			}
			if shown {
				writeStringWithColor(os.Stderr, msg.String(options, terminalInfo))
			}
		},
		HasErrors: func() bool {
			mutex.Lock()
			defer mutex.Unlock()
			return hasErrors
		},
		Done: func() []Msg {
			mutex.Lock()
			defer mutex.Unlock()
			sort.Stable(msgs)
			return msgs
		},
	}
}

// A log for tests: collects messages without printing anything.
func NewDeferLog() Log {
	var mutex sync.Mutex
	var msgs SortableMsgs
	hasErrors := false

	return Log{
		AddMsg: func(msg Msg) {
			mutex.Lock()
			defer mutex.Unlock()
			msgs = append(msgs, msg)
			if msg.Kind == Error {
				hasErrors = true
			}
		},
		HasErrors: func() bool {
			mutex.Lock()
			defer mutex.Unlock()
			return hasErrors
		},
		Done: func() []Msg {
			mutex.Lock()
			defer mutex.Unlock()
			sort.Stable(msgs)
			return msgs
		},
	}
}

func (msg Msg) String(options OutputOptions, terminalInfo TerminalInfo) string {
	var colors Colors
	if terminalInfo.UseColorEscapes {
		colors = TerminalColors
	}

	var kindColor string
	switch msg.Kind {
	case Error:
		kindColor = colors.Red
	case Warning:
		kindColor = colors.Magenta
	default:
		kindColor = colors.Dim
	}

	if msg.Kind == Info {
		return msg.Data.Text + "\n"
	}

	location := ""
	lineText := ""
	if loc := msg.Data.Location; loc != nil {
		location = fmt.Sprintf("%s%s:%d:%d: %s", colors.Bold, loc.File, loc.Line, loc.Column, colors.Reset)
		if options.IncludeSource && loc.LineText != "" {
			marker := strings.Repeat(" ", columnWidth(loc.LineText, loc.Column-1)) + "^"
			lineText = fmt.Sprintf("%s\n%s%s%s\n", loc.LineText, colors.Green, marker, colors.Reset)
		}
	}

	return fmt.Sprintf("%s%s%s:%s %s\n%s",
		location, kindColor, msg.Kind.String(), colors.Reset, msg.Data.Text, lineText)
}

// The caret is indented by the reported column minus one, clamped to the
// line's byte length. Tabs (which the reported column counts by the tab
// width) and multi-byte characters in the line are not treated specially.
func columnWidth(lineText string, column int) int {
	if column < 0 {
		return 0
	}
	if column > len(lineText) {
		column = len(lineText)
	}
	return column
}

func PrintErrorToStderr(text string) {
	log := NewStderrLog(OutputOptions{IncludeSource: true, LogLevel: LevelInfo})
	log.AddErrorText(text)
	log.Done()
}

func PrintMessages(msgs []Msg, options OutputOptions) {
	terminalInfo := GetTerminalInfo(os.Stderr)
	for _, msg := range msgs {
		writeStringWithColor(os.Stderr, msg.String(options, terminalInfo))
	}
}
