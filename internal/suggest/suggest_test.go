package suggest

import (
	"strings"
	"testing"

	"github.com/Harsh-BH/pairexec/internal/domain"
)

func labels(items []domain.SuggestionItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Label
	}
	return out
}

func TestSuggest_PythonKeywordAndDeclaration(t *testing.T) {
	items := New().Suggest("def fo", "python", 6)

	want := []domain.SuggestionItem{
		{Label: "for", Kind: domain.KindKeyword, InsertText: "for"},
		{Label: "fo", Kind: domain.KindFunction, InsertText: "fo()"},
	}
	if len(items) != len(want) {
		t.Fatalf("got %v, want %v", items, want)
	}
	for i := range want {
		if items[i] != want[i] {
			t.Errorf("item %d: got %+v, want %+v", i, items[i], want[i])
		}
	}
	for _, it := range items {
		if it.Kind == domain.KindFunction && !strings.HasPrefix(it.Label, "fo") {
			t.Errorf("unexpected builtin %q", it.Label)
		}
	}
}

func TestSuggest_Ordering(t *testing.T) {
	code := "class Printer:\n    pass\n\ndef printall():\n    pass\n\npr"
	items := New().Suggest(code, "py", len(code))

	got := strings.Join(labels(items), ",")
	if got != "print,printall" {
		t.Errorf("got %s", got)
	}
	if items[0].InsertText != "print()" {
		t.Errorf("expected python builtin to insert a call, got %q", items[0].InsertText)
	}

	items = New().Suggest(code, "python", len(code)-1)
	if got := strings.Join(labels(items), ","); got != "pass,print,printall" {
		t.Errorf("prefix p: got %s", got)
	}
	if items[0].Kind != domain.KindKeyword {
		t.Errorf("expected keywords first, got %+v", items[0])
	}
}

func TestSuggest_CaseSensitive(t *testing.T) {
	code := "class Printer:\n    pass\nPr"
	items := New().Suggest(code, "python", len(code))

	if len(items) != 1 || items[0].Label != "Printer" || items[0].Kind != domain.KindClass {
		t.Errorf("got %+v", items)
	}
	if items[0].InsertText != "Printer" {
		t.Errorf("expected class to insert its name, got %q", items[0].InsertText)
	}
}

func TestSuggest_EmptyPrefix(t *testing.T) {
	tests := []struct {
		name   string
		code   string
		cursor int
	}{
		{name: "empty code", code: "", cursor: 0},
		{name: "after space", code: "print ", cursor: 6},
		{name: "start of line", code: "print\n", cursor: 6},
		{name: "after paren", code: "print(", cursor: 6},
		{name: "cursor at zero", code: "print", cursor: 0},
		{name: "negative cursor", code: "print", cursor: -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := New().Suggest(tt.code, "python", tt.cursor)
			if items == nil {
				t.Fatal("expected non-nil slice")
			}
			if len(items) != 0 {
				t.Errorf("expected no suggestions, got %v", labels(items))
			}
		})
	}
}

func TestSuggest_UnsupportedLanguage(t *testing.T) {
	items := New().Suggest("pu", "ruby", 2)
	if items == nil || len(items) != 0 {
		t.Errorf("expected empty slice, got %v", items)
	}
}

func TestSuggest_CursorClamped(t *testing.T) {
	items := New().Suggest("whi", "javascript", 999)
	if len(items) != 1 || items[0].Label != "while" {
		t.Errorf("got %v", labels(items))
	}
}

func TestSuggest_CursorMidToken(t *testing.T) {
	// Only the part before the cursor counts.
	items := New().Suggest("retxyz", "go", 3)
	if len(items) != 1 || items[0].Label != "return" {
		t.Errorf("got %v", labels(items))
	}
}

func TestSuggest_Go(t *testing.T) {
	code := "package main\n\ntype Server struct{}\n\nfunc Serve() {}\n\nfunc main() {\n\tSe"
	items := New().Suggest(code, "golang", len(code))

	want := []domain.SuggestionItem{
		{Label: "Serve", Kind: domain.KindFunction, InsertText: "Serve()"},
		{Label: "Server", Kind: domain.KindStruct, InsertText: "Server"},
	}
	if len(items) != len(want) {
		t.Fatalf("got %+v", items)
	}
	for i := range want {
		if items[i] != want[i] {
			t.Errorf("item %d: got %+v, want %+v", i, items[i], want[i])
		}
	}

	items = New().Suggest("fm", "go", 2)
	if got := strings.Join(labels(items), ","); got != "fmt.Println,fmt.Printf" {
		t.Errorf("got %s", got)
	}
	if items[0].InsertText != "fmt.Println" {
		t.Errorf("expected go builtin inserted verbatim, got %q", items[0].InsertText)
	}
}

func TestSuggest_JavaScript(t *testing.T) {
	code := "class Shape {}\nfunction shapeArea(s) {}\nsha"
	items := New().Suggest(code, "js", len(code))

	if got := strings.Join(labels(items), ","); got != "shapeArea" {
		t.Errorf("got %s", got)
	}
	if items[0].InsertText != "shapeArea()" {
		t.Errorf("got insert %q", items[0].InsertText)
	}

	items = New().Suggest("con", "node", 3)
	if got := strings.Join(labels(items), ","); got != "const,continue,console.log,console.error,console.warn" {
		t.Errorf("got %s", got)
	}
}

func TestSuggest_Cpp(t *testing.T) {
	code := "class Graph {};\nint shortest(int a) { return a; }\nint main() { sh"
	items := New().Suggest(code, "c++", len(code))

	if got := strings.Join(labels(items), ","); got != "shortest" {
		t.Errorf("got %s", got)
	}

	items = New().Suggest(code+"\nGr", "cpp", len(code)+3)
	if len(items) != 1 || items[0].Kind != domain.KindClass || items[0].Label != "Graph" {
		t.Errorf("got %+v", items)
	}

	items = New().Suggest("std", "cpp", 3)
	if len(items) != 9 {
		t.Errorf("expected every std:: builtin, got %v", labels(items))
	}
}

func TestSuggest_TruncatedToMax(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 30; i++ {
		b.WriteString("def fn")
		b.WriteString(strings.Repeat("x", i+1))
		b.WriteString("():\n    pass\n")
	}
	b.WriteString("fn")
	code := b.String()

	items := New().Suggest(code, "python", len(code))
	if len(items) != MaxSuggestions {
		t.Errorf("expected %d suggestions, got %d", MaxSuggestions, len(items))
	}
}

func TestSuggest_NoDeduplication(t *testing.T) {
	code := "def gx():\n    pass\ndef gx():\n    pass\ngx"
	items := New().Suggest(code, "python", len(code))
	if len(items) != 2 {
		t.Errorf("expected both declarations, got %v", labels(items))
	}
}

func TestPrefix_UTF16Cursor(t *testing.T) {
	// "é" is one UTF-16 unit, "😀" is two.
	tests := []struct {
		code   string
		cursor int
		want   string
	}{
		{code: "x = 'é'\nfo", cursor: 10, want: "fo"},
		{code: "# 😀\nwhi", cursor: 8, want: "whi"},
		{code: "# 😀\nwhi", cursor: 7, want: "wh"},
		{code: "café", cursor: 4, want: "café"},
		{code: "a_1b", cursor: 4, want: "a_1b"},
	}

	for _, tt := range tests {
		if got := Prefix(tt.code, tt.cursor); got != tt.want {
			t.Errorf("Prefix(%q, %d) = %q, want %q", tt.code, tt.cursor, got, tt.want)
		}
	}
}
