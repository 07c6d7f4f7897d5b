package rowan

import "strings"

// CommandsSection is a #commands block: loadables applied globally, one per
// line, in declaration order.
type CommandsSection struct {
	fill    Fill
	Entries []*Loadable
}

func (m *CommandsSection) Keyword() string    { return "#commands" }
func (m *CommandsSection) sectionFill() *Fill { return &m.fill }

func (m *CommandsSection) write(sb *strings.Builder) {
	for _, l := range m.Entries {
		l.fill.write(sb, "\n")
		l.write(sb)
	}
}

func parseCommandsSection(fill Fill, s span) (Section, Fill, span, error) {
	sec := &CommandsSection{fill: fill}
	entryFill, rem := parseFill(s)
	for {
		if rem.empty() || atSectionStart(entryFill, rem) {
			return sec, entryFill, rem, nil
		}
		if !entryFill.EndsWithNewline() {
			return nil, fill, s, parseErrorf(rem, "commands must start on their own line")
		}
		l, nextFill, rem2, err := parseLoadable(entryFill, rem)
		if err != nil {
			return nil, fill, s, err
		}
		if l == nil {
			return nil, fill, s, parseErrorf(rem, "expected a command loadable")
		}
		sec.Entries = append(sec.Entries, l)
		entryFill = nextFill
		rem = rem2
	}
}
