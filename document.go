package rowan

import "strings"

// Section is one top-level block of a document: #manifest, #import, #defs,
// #commands, or #scenes.
type Section interface {
	// Keyword returns the section keyword, including the leading '#'.
	Keyword() string

	write(sb *strings.Builder)
	sectionFill() *Fill
}

// Document is one parsed COB file. Sections appear in source order; a
// document may repeat a section kind. Serialize reproduces the source
// byte-for-byte when no value has been edited.
type Document struct {
	File     string
	Sections []Section
	endFill  Fill
}

// sectionKeywords in the order they are attempted.
var sectionKeywords = []string{"#manifest", "#import", "#defs", "#commands", "#scenes"}

// atSectionStart reports whether the cursor sits on a section keyword at the
// start of a line.
func atSectionStart(fill Fill, s span) bool {
	if s.peek() != '#' {
		return false
	}
	if !fill.EndsWithNewline() && s.pos != len(fill.Text) {
		return false
	}
	rest := s.rest()
	for _, kw := range sectionKeywords {
		if strings.HasPrefix(rest, kw) {
			tail := rest[len(kw):]
			if len(tail) == 0 || !isSnakeByte(tail[0]) {
				return true
			}
		}
	}
	return false
}

func isSnakeByte(c byte) bool {
	return isLower(c) || isDigit(c) || c == '_'
}

// Parse parses one COB source file. file is used only for diagnostics.
func Parse(file, src string) (*Document, error) {
	doc := &Document{File: file}
	s := span{file: file, src: src}
	fill, s := parseFill(s)
	for !s.empty() {
		if !atSectionStart(fill, s) {
			return nil, parseErrorf(s, "expected a section keyword (#manifest, #import, #defs, #commands, #scenes) at the start of a line")
		}
		var (
			sec  Section
			err  error
			rest = s.rest()
		)
		switch {
		case strings.HasPrefix(rest, "#manifest"):
			sec, fill, s, err = parseManifestSection(fill, s.advance(len("#manifest")))
		case strings.HasPrefix(rest, "#import"):
			sec, fill, s, err = parseImportSection(fill, s.advance(len("#import")))
		case strings.HasPrefix(rest, "#defs"):
			sec, fill, s, err = parseDefsSection(fill, s.advance(len("#defs")))
		case strings.HasPrefix(rest, "#commands"):
			sec, fill, s, err = parseCommandsSection(fill, s.advance(len("#commands")))
		case strings.HasPrefix(rest, "#scenes"):
			sec, fill, s, err = parseScenesSection(fill, s.advance(len("#scenes")))
		}
		if err != nil {
			return nil, err
		}
		doc.Sections = append(doc.Sections, sec)
	}
	doc.endFill = fill
	return doc, nil
}

// Serialize renders the document back to source text. Preserved fill is
// emitted verbatim, so an unedited document serializes byte-identically.
func (d *Document) Serialize() string {
	var sb strings.Builder
	for i, sec := range d.Sections {
		fallback := ""
		if i > 0 {
			fallback = "\n\n"
		}
		sec.sectionFill().write(&sb, fallback)
		sb.WriteString(sec.Keyword())
		sec.write(&sb)
	}
	d.endFill.write(&sb, "\n")
	return sb.String()
}

// --- Section accessors ---

// ManifestEntries returns every manifest entry across the document's
// #manifest sections, in source order.
func (d *Document) ManifestEntries() []ManifestEntry {
	var out []ManifestEntry
	for _, sec := range d.Sections {
		if m, ok := sec.(*ManifestSection); ok {
			out = append(out, m.Entries...)
		}
	}
	return out
}

// ImportEntries returns every import entry across the document's #import
// sections, in source order.
func (d *Document) ImportEntries() []ImportEntry {
	var out []ImportEntry
	for _, sec := range d.Sections {
		if m, ok := sec.(*ImportSection); ok {
			out = append(out, m.Entries...)
		}
	}
	return out
}

// DefEntries returns every definition across the document's #defs sections,
// in source order.
func (d *Document) DefEntries() []DefEntry {
	var out []DefEntry
	for _, sec := range d.Sections {
		if m, ok := sec.(*DefsSection); ok {
			out = append(out, m.Entries...)
		}
	}
	return out
}

// Commands returns every loadable across the document's #commands sections,
// in source order.
func (d *Document) Commands() []*Loadable {
	var out []*Loadable
	for _, sec := range d.Sections {
		if m, ok := sec.(*CommandsSection); ok {
			out = append(out, m.Entries...)
		}
	}
	return out
}

// Scenes returns every root scene node across the document's #scenes
// sections, in source order.
func (d *Document) Scenes() []*SceneNode {
	var out []*SceneNode
	for _, sec := range d.Sections {
		if m, ok := sec.(*ScenesSection); ok {
			out = append(out, m.Roots...)
		}
	}
	return out
}
