package rowan

import "strings"

// ManifestEntry is one `<file> as <manifest.key>` line. Source is the file
// token exactly as written: a quoted path or the keyword self.
type ManifestEntry struct {
	fill    Fill
	Source  string
	asFill  Fill // before "as"
	keyFill Fill // before the key
	Key     string
}

// IsSelf reports whether the entry assigns a key to the containing file.
func (e *ManifestEntry) IsSelf() bool { return e.Source == "self" }

// SourceFile returns the referenced file path without quotes, or "" for self.
func (e *ManifestEntry) SourceFile() string {
	if e.IsSelf() {
		return ""
	}
	return strings.Trim(e.Source, "\"")
}

// ManifestSection is a #manifest block assigning symbolic keys to files.
type ManifestSection struct {
	fill    Fill
	Entries []ManifestEntry
}

func (m *ManifestSection) Keyword() string    { return "#manifest" }
func (m *ManifestSection) sectionFill() *Fill { return &m.fill }

func (m *ManifestSection) write(sb *strings.Builder) {
	for _, e := range m.Entries {
		e.fill.write(sb, "\n")
		sb.WriteString(e.Source)
		e.asFill.write(sb, " ")
		sb.WriteString("as")
		e.keyFill.write(sb, " ")
		sb.WriteString(e.Key)
	}
}

func parseManifestSection(fill Fill, s span) (Section, Fill, span, error) {
	sec := &ManifestSection{fill: fill}
	entryFill, s := parseFill(s)
	for {
		if s.empty() || atSectionStart(entryFill, s) {
			return sec, entryFill, s, nil
		}
		if !entryFill.EndsWithNewline() {
			return nil, fill, s, parseErrorf(s, "manifest entries must start on their own line")
		}

		entry := ManifestEntry{fill: entryFill}
		switch {
		case s.peek() == '"':
			raw, _, rem, err := scanQuoted(s)
			if err != nil {
				return nil, fill, s, err
			}
			entry.Source = `"` + raw + `"`
			s = rem
		default:
			word, rem, ok := scanSnake(s)
			if !ok || word != "self" {
				return nil, fill, s, parseErrorf(s, "manifest entry must start with a quoted file path or self")
			}
			entry.Source = "self"
			s = rem
		}

		var err error
		entry.asFill, entry.keyFill, entry.Key, s, err = parseAsClause(s, scanManifestKey, "manifest key")
		if err != nil {
			return nil, fill, s, err
		}
		sec.Entries = append(sec.Entries, entry)
		entryFill, s = parseFill(s)
	}
}

// parseAsClause consumes ` as <ident>` using the supplied identifier scanner.
func parseAsClause(s span, scan func(span) (string, span, bool), what string) (asFill, keyFill Fill, key string, rem span, err error) {
	asFill, rem = parseFill(s)
	word, rem2, ok := scanSnake(rem)
	if !ok || word != "as" {
		return asFill, keyFill, "", s, parseErrorf(rem, "expected 'as' before %s", what)
	}
	keyFill, rem2 = parseFill(rem2)
	key, rem2, ok = scan(rem2)
	if !ok {
		return asFill, keyFill, "", s, parseErrorf(rem2, "expected %s after 'as'", what)
	}
	return asFill, keyFill, key, rem2, nil
}
