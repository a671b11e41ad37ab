package textclean

import "testing"

func TestNormalizeWhitespace(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "hello world", "hello world"},
		{"doubled spaces", "hello   world", "hello world"},
		{"tabs", "a\t\tb", "a b"},
		{"nbsp", "a\u00a0b", "a b"},
		{"thin and ideographic spaces", "a\u2009\u3000b", "a b"},
		{"crlf", "a\r\nb\rc", "a\nb\nc"},
		{"space before break", "a   \nb", "a\nb"},
		{"zero width", "a\u200bb\ufeff", "ab"},
		{"control", "a\x01b\x7f", "ab"},
		{"ligature", "\ufb01nd", "find"},
		{"trailing space kept once", "word  ", "word "},
		{"soft hyphen kept", "exam\u00adple", "exam\u00adple"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeWhitespace(tt.in); got != tt.want {
				t.Errorf("NormalizeWhitespace(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeWhitespace_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"  leading and trailing  ",
		"a\u00a8b",
		"e\u200b\u0301",
		"x   \u0308y",
		"line one \r\n\t line two\r\r",
		"\ufb03\u00a0\ufb02   ",
		"mixed\u00ad\u2028separators\u00a0",
	}
	for _, in := range inputs {
		once := NormalizeWhitespace(in)
		twice := NormalizeWhitespace(once)
		if once != twice {
			t.Errorf("not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestDehyphenate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		keep bool
		want string
	}{
		{"keep verbatim", "exam-\nple", true, "exam-\nple"},
		{"keep soft hyphen", "exam\u00ad\n", true, "exam\u00ad\n"},
		{"join across break", "exam-\nple", false, "example"},
		{"join with indentation", "exam-  \n   ple", false, "example"},
		{"soft hyphen at span end", "exam\u00ad\n", false, "exam"},
		{"hyphen at span end", "exam-\n", false, "exam"},
		{"soft hyphen join", "exam\u00ad\nple", false, "example"},
		{"mid-word hyphen kept", "well-known", false, "well-known"},
		{"number range kept", "pages 10-\n20", false, "pages 10-\n20"},
		{"digit after break kept", "model-\n3", false, "model-\n3"},
		{"paragraph break kept", "end-\n\nNext", false, "end-\n\nNext"},
		{"trailing hyphen without break", "pre-", false, "pre-"},
		{"trailing soft hyphen dropped", "pre\u00ad", false, "pre"},
		{"leading hyphen", "-\nfoo", false, "-\nfoo"},
		{"empty", "", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Dehyphenate(tt.in, tt.keep); got != tt.want {
				t.Errorf("Dehyphenate(%q, %v) = %q, want %q", tt.in, tt.keep, got, tt.want)
			}
		})
	}
}

func TestClean_KeepsHyphens(t *testing.T) {
	if got := Clean("exam-\n"); got != "exam-\n" {
		t.Errorf("Clean = %q, want hyphen kept", got)
	}
	if got := Clean("a  b  c"); got != "a b c" {
		t.Errorf("Clean = %q", got)
	}
}

func TestJoinLines(t *testing.T) {
	lines := []string{"The exam-", "ple shows", "hyphen-", "ation."}
	if got := JoinLines(lines, false); got != "The example shows\nhyphenation." {
		t.Errorf("JoinLines = %q", got)
	}
	if got := JoinLines(lines, true); got != "The exam-\nple shows\nhyphen-\nation." {
		t.Errorf("JoinLines keep = %q", got)
	}
}
