package renamer

import "sort"

// The rename tables map original identifier names to shared string cells.
// Every AST node that references a renamable name holds a pointer to the
// table's cell, so assigning the generated short id to the cell renames all
// occurrences at once.

type Entry struct {
	// The shared value cell every reference points at
	Cell *string

	// Incremented on every reference
	Count uint32

	// True if the stylesheet defined the name, false if only referenced
	Defined bool
}

type Table struct {
	entries map[string]*Entry
	order   []string
	counter string
}

// The four process-wide tables of one run. They accumulate across inlined
// imports so a name used in an imported file renames consistently with the
// top-level stylesheet.
type Group struct {
	IDs              Table
	Classes          Table
	CustomProperties Table
	Animations       Table
}

func NewGroup() *Group {
	return &Group{}
}

// Returns the entry for the original name, creating it on first use. An
// existing entry has its usage count incremented; the defined flag latches
// once set.
func (t *Table) Intern(name string, defined bool) *Entry {
	if t.entries == nil {
		t.entries = make(map[string]*Entry)
	}
	if entry, ok := t.entries[name]; ok {
		entry.Count++
		if defined {
			entry.Defined = true
		}
		return entry
	}
	cell := name
	entry := &Entry{Cell: &cell, Count: 1, Defined: defined}
	t.entries[name] = entry
	t.order = append(t.order, name)
	return entry
}

func (t *Table) Len() int {
	return len(t.order)
}

func (t *Table) Empty() bool {
	return len(t.order) == 0
}

// Iterates entries in insertion order
func (t *Table) Each(fn func(original string, entry *Entry)) {
	for _, name := range t.order {
		fn(name, t.entries[name])
	}
}

type Renamed struct {
	Original string
	Short    string
	Defined  bool
}

// Assigns a short id to every entry by writing it through the shared cell.
// Tables beyond 52 entries are processed in order of decreasing weight
// (original name length times usage count) so the shortest ids go to the
// names that save the most bytes.
func (t *Table) GenerateNames() []Renamed {
	names := make([]string, len(t.order))
	copy(names, t.order)

	if len(names) > 52 {
		sort.SliceStable(names, func(i int, j int) bool {
			a := t.entries[names[i]]
			b := t.entries[names[j]]
			return uint64(len(names[i]))*uint64(a.Count) > uint64(len(names[j]))*uint64(b.Count)
		})
	}

	renamed := make([]Renamed, 0, len(names))
	for _, name := range names {
		entry := t.entries[name]
		*entry.Cell = t.nextShortID()
		renamed = append(renamed, Renamed{Original: name, Short: *entry.Cell, Defined: entry.Defined})
	}
	return renamed
}

// Generated ids must never collide with a CSS keyword or unit: in contexts
// like "animation: none 1s" or "@keyframes to" the result would be invalid
// CSS. The allocator skips these.
var cssKeywords = map[string]bool{
	"and":  true,
	"ch":   true,
	"cm":   true,
	"deg":  true,
	"em":   true,
	"ex":   true,
	"from": true,
	"in":   true,
	"mm":   true,
	"ms":   true,
	"not":  true,
	"of":   true,
	"or":   true,
	"pc":   true,
	"pt":   true,
	"px":   true,
	"q":    true,
	"rad":  true,
	"rem":  true,
	"s":    true,
	"to":   true,
	"vh":   true,
	"vw":   true,
}

func (t *Table) nextShortID() string {
	for {
		t.counter = increment(t.counter)
		if !cssKeywords[t.counter] {
			return t.counter
		}
	}
}

// The short-id counter over the alphabet "a..z A..Z 0..9". Incrementing "z"
// yields "A"; incrementing "Z" yields "0" in place or, at the first column
// only, grows the string by a leading "a"; incrementing "9" yields "a" in
// place and carries left. No id ever starts with a digit.
func increment(counter string) string {
	if counter == "" {
		return "a"
	}
	b := []byte(counter)

	var inc func(i int)
	inc = func(i int) {
		switch b[i] {
		case 'z':
			b[i] = 'A'
		case 'Z':
			if i == 0 {
				b[i] = 'a'
				b = append([]byte{'a'}, b...)
			} else {
				b[i] = '0'
			}
		case '9':
			b[i] = 'a'
			if i > 0 {
				inc(i - 1)
			}
		default:
			b[i]++
		}
	}

	inc(len(b) - 1)
	return string(b)
}
