package rowan

import "strings"

// ImportEntry is one `<manifest.key> as <alias>` line. An alias of "_"
// imports the dependency's definitions into the root namespace.
type ImportEntry struct {
	fill      Fill
	Key       string
	asFill    Fill
	aliasFill Fill
	Alias     string
}

// ImportSection is an #import block declaring this file's dependencies.
type ImportSection struct {
	fill    Fill
	Entries []ImportEntry
}

func (m *ImportSection) Keyword() string    { return "#import" }
func (m *ImportSection) sectionFill() *Fill { return &m.fill }

func (m *ImportSection) write(sb *strings.Builder) {
	for _, e := range m.Entries {
		e.fill.write(sb, "\n")
		sb.WriteString(e.Key)
		e.asFill.write(sb, " ")
		sb.WriteString("as")
		e.aliasFill.write(sb, " ")
		sb.WriteString(e.Alias)
	}
}

// scanAlias matches an import alias: a snake identifier or a bare underscore.
func scanAlias(s span) (string, span, bool) {
	if s.peek() == '_' {
		return "_", s.advance(1), true
	}
	return scanSnake(s)
}

func parseImportSection(fill Fill, s span) (Section, Fill, span, error) {
	sec := &ImportSection{fill: fill}
	entryFill, s := parseFill(s)
	for {
		if s.empty() || atSectionStart(entryFill, s) {
			return sec, entryFill, s, nil
		}
		if !entryFill.EndsWithNewline() {
			return nil, fill, s, parseErrorf(s, "import entries must start on their own line")
		}

		key, rem, ok := scanManifestKey(s)
		if !ok {
			return nil, fill, s, parseErrorf(s, "import entry must start with a manifest key")
		}
		entry := ImportEntry{fill: entryFill, Key: key}

		var err error
		entry.asFill, entry.aliasFill, entry.Alias, rem, err = parseAsClause(rem, scanAlias, "import alias")
		if err != nil {
			return nil, fill, s, err
		}
		sec.Entries = append(sec.Entries, entry)
		entryFill, s = parseFill(rem)
	}
}
