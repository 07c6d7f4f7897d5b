package rowan

import (
	"strings"
	"testing"
)

func assertString(t *testing.T, name, got, want string) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %q, want %q", name, got, want)
	}
}

func assertInt(t *testing.T, name string, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %d, want %d", name, got, want)
	}
}

func assertBool(t *testing.T, name string, got, want bool) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertNoErr(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func assertErrContains(t *testing.T, err error, sub string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected an error containing %q, got nil", sub)
	}
	if !strings.Contains(err.Error(), sub) {
		t.Errorf("error %q does not contain %q", err, sub)
	}
}

func mustParseValue(t *testing.T, src string) Value {
	t.Helper()
	v, err := ParseValue(src)
	if err != nil {
		t.Fatalf("ParseValue(%q): %v", src, err)
	}
	return v
}

func mustParse(t *testing.T, file, src string) *Document {
	t.Helper()
	doc, err := Parse(file, src)
	if err != nil {
		t.Fatalf("Parse(%s): %v", file, err)
	}
	return doc
}

// --- Scalars ---

func TestParseScalars(t *testing.T) {
	if b, ok := mustParseValue(t, "true").(*Bool); !ok || !b.Value {
		t.Errorf("true parsed as %#v", b)
	}
	if b, ok := mustParseValue(t, "false").(*Bool); !ok || b.Value {
		t.Errorf("false parsed as %#v", b)
	}
	if _, ok := mustParseValue(t, "none").(*None); !ok {
		t.Error("none did not parse as None")
	}
}

func TestParseNumbers(t *testing.T) {
	n := mustParseValue(t, "42").(*Number)
	assertBool(t, "42 IsInt", n.IsInt, true)
	if n.Int != 42 {
		t.Errorf("42 parsed as %d", n.Int)
	}

	n = mustParseValue(t, "-7").(*Number)
	if !n.IsInt || n.Int != -7 {
		t.Errorf("-7 parsed as %+v", n)
	}

	n = mustParseValue(t, "0.5").(*Number)
	assertBool(t, "0.5 IsInt", n.IsInt, false)
	if n.Float != 0.5 {
		t.Errorf("0.5 parsed as %v", n.Float)
	}

	// Out of int64 range falls back to float.
	n = mustParseValue(t, "9223372036854775808").(*Number)
	assertBool(t, "huge IsInt", n.IsInt, false)
}

func TestNumberCanonicalForm(t *testing.T) {
	cases := [][2]string{
		{"42", "42"},
		{"-7", "-7"},
		{"1.50", "1.5"},
		{"0.5", "0.5"},
		{".5", "0.5"},
		{"1e3", "1000"},
		{"1.2e2", "120"},
	}
	for _, c := range cases {
		got := FormatValue(mustParseValue(t, c[0]))
		assertString(t, "canonical("+c[0]+")", got, c[1])
	}
}

func TestNumberEqualsAcrossKinds(t *testing.T) {
	assertBool(t, "5 == 5.0", NewInt(5).Equals(NewFloat(5.0)), true)
	assertBool(t, "5 == 5.5", NewInt(5).Equals(NewFloat(5.5)), false)
	assertBool(t, "2.5 == 2.5", NewFloat(2.5).Equals(NewFloat(2.5)), true)
}

func TestParseColor(t *testing.T) {
	c := mustParseValue(t, "#ff0080").(*Color)
	assertString(t, "hex", c.Hex, "FF0080")
	assertString(t, "canonical", FormatValue(c), "#FF0080")

	c = mustParseValue(t, "#FF008040").(*Color)
	assertString(t, "hex8", c.Hex, "FF008040")

	// Wrong digit counts are not colors.
	if _, err := ParseValue("#FFF"); err == nil {
		t.Error("#FFF parsed as a value")
	}
}

func TestParseString(t *testing.T) {
	s := mustParseValue(t, `"hello"`).(*Str)
	assertString(t, "value", s.Value, "hello")
	assertString(t, "format", FormatValue(s), `"hello"`)

	s = mustParseValue(t, `"a\nb\t\"q\""`).(*Str)
	assertString(t, "decoded", s.Value, "a\nb\t\"q\"")
	// Raw escaping survives as written.
	assertString(t, "format", FormatValue(s), `"a\nb\t\"q\""`)

	_, err := ParseValue(`"unterminated`)
	assertErrContains(t, err, "unterminated string")

	_, err = ParseValue(`"bad \x escape"`)
	assertErrContains(t, err, "invalid escape")
}

func TestNewStrEscapes(t *testing.T) {
	s := NewStr("a\"b\nc")
	assertString(t, "format", FormatValue(s), `"a\"b\nc"`)
	assertBool(t, "equals parsed", s.Equals(mustParseValue(t, `"a\"b\nc"`)), true)
}

// --- Composites ---

func TestParseArray(t *testing.T) {
	a := mustParseValue(t, "[1, 2, 3]").(*Array)
	assertInt(t, "len", len(a.Entries), 3)
	// Comma fill is preserved verbatim.
	assertString(t, "format", FormatValue(a), "[1, 2, 3]")

	a = mustParseValue(t, "[]").(*Array)
	assertInt(t, "empty len", len(a.Entries), 0)
	assertString(t, "empty format", FormatValue(a), "[]")

	_, err := ParseValue("[1 2")
	assertErrContains(t, err, "malformed array entry")
}

func TestParseTuple(t *testing.T) {
	tu := mustParseValue(t, "(10 20.5)").(*Tuple)
	assertInt(t, "len", len(tu.Entries), 2)
	assertString(t, "format", FormatValue(tu), "(10 20.5)")
}

func TestParseMap(t *testing.T) {
	m := mustParseValue(t, `{width:50 label:"hi" nested:{a:1}}`).(*Map)
	assertInt(t, "len", len(m.Entries), 3)
	assertString(t, "format", FormatValue(m), `{width:50 label:"hi" nested:{a:1}}`)

	v, ok := m.Get("label")
	assertBool(t, "Get(label)", ok, true)
	assertString(t, "label", v.(*Str).Value, "hi")
}

func TestMapEntriesRequireSeparation(t *testing.T) {
	_, err := ParseValue("{a:1b:2}")
	assertErrContains(t, err, "must be separated")

	// Comma counts as separation.
	m := mustParseValue(t, "{a:1,b:2}").(*Map)
	assertInt(t, "len", len(m.Entries), 2)
}

func TestMapKeyForms(t *testing.T) {
	m := mustParseValue(t, `{field:1 "quoted key":2 $c:3 @p:4 !slot:5 !bare}`).(*Map)
	kinds := []MapKeyKind{KeyField, KeyField, KeyConstant, KeyParam, KeyMarker, KeyMarker}
	names := []string{"field", "quoted key", "c", "p", "slot", "bare"}
	for i, e := range m.Entries {
		if e.Key.Kind != kinds[i] {
			t.Errorf("entry %d kind = %d, want %d", i, e.Key.Kind, kinds[i])
		}
		assertString(t, "name", e.Key.Name(), names[i])
	}
	if m.Entries[5].Val != nil {
		t.Error("bare marker entry has a value")
	}

	_, err := ParseValue("{field}")
	assertErrContains(t, err, "missing ':'")
}

func TestParseEnum(t *testing.T) {
	e := mustParseValue(t, "Auto").(*Enum)
	assertString(t, "name", e.Name, "Auto")
	if e.Payload != nil {
		t.Error("bare enum has a payload")
	}

	e = mustParseValue(t, "Px(10)").(*Enum)
	assertInt(t, "tuple len", len(e.Payload.(*Tuple).Entries), 1)
	assertString(t, "format", FormatValue(e), "Px(10)")

	e = mustParseValue(t, "Animated{duration:0.5}").(*Enum)
	assertString(t, "format", FormatValue(e), "Animated{duration:0.5}")
}

func TestUnitPayloadErasure(t *testing.T) {
	bare := mustParseValue(t, "Auto")
	unit := mustParseValue(t, "Auto()")
	assertBool(t, "Auto == Auto()", bare.Equals(unit), true)
	assertBool(t, "Auto() == Auto", unit.Equals(bare), true)
	assertString(t, "Auto() canonical", FormatValue(unit), "Auto")

	assertBool(t, "Auto != Px(10)", bare.Equals(mustParseValue(t, "Px(10)")), false)
}

func TestParseReferenceForms(t *testing.T) {
	c := mustParseValue(t, "$colors::accent").(*ConstantRef)
	assertString(t, "path", c.Path, "colors::accent")
	assertString(t, "format", FormatValue(c), "$colors::accent")

	p := mustParseValue(t, "@size").(*SpecParam)
	assertString(t, "param", p.Name, "size")

	i := mustParseValue(t, "!slot").(*Insertion)
	assertString(t, "insertion", i.Name, "slot")

	inv := mustParseValue(t, "*button{@size:2}").(*SpecInvocation)
	assertString(t, "spec", inv.Name, "button")
	assertInt(t, "body len", len(inv.Body.Entries), 1)
}

func TestParseValueRejectsTrailingInput(t *testing.T) {
	_, err := ParseValue("1 2")
	assertErrContains(t, err, "trailing input")

	_, err = ParseValue("")
	assertErrContains(t, err, "expected a value")
}

func TestValueCloneIsDeep(t *testing.T) {
	m := mustParseValue(t, "{a:[1 2] b:{c:3}}").(*Map)
	c := m.Clone().(*Map)
	c.Entries[0].Val.(*Array).Entries[0] = NewInt(99)
	assertString(t, "original untouched", FormatValue(m), "{a:[1 2] b:{c:3}}")
	assertBool(t, "clone differs", m.Equals(c), false)
}

func TestValueEqualityIgnoresFill(t *testing.T) {
	a := mustParseValue(t, "{a:1 b:2}")
	b := mustParseValue(t, "{ a:1 /* note */ b:2 }")
	assertBool(t, "equal despite fill", a.Equals(b), true)
}

func TestLoadableComparable(t *testing.T) {
	doc := mustParse(t, "t.cob", "#commands\nWidth(50.0)\nTheme{color:$accent}\n")
	cmds := doc.Commands()
	assertInt(t, "commands", len(cmds), 2)
	assertBool(t, "resolved comparable", cmds[0].Comparable(), true)
	assertBool(t, "unresolved comparable", cmds[1].Comparable(), false)
}
