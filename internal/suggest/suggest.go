// Package suggest offers keyword, builtin and in-code identifier completions
// for the editor. It is a pure function of its inputs.
package suggest

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/Harsh-BH/pairexec/internal/domain"
)

// MaxSuggestions caps the number of items returned for one request.
const MaxSuggestions = 20

// extractor finds identifiers declared in the submitted code.
type extractor struct {
	pattern *regexp.Regexp
	kind    domain.SuggestionKind
	// call appends "()" to the insert text.
	call bool
}

// catalog is the completion source for one language.
type catalog struct {
	keywords []string
	builtins []string
	// callBuiltins appends "()" to builtin insert text.
	callBuiltins bool
	extractors   []extractor
}

const ident = `[\p{L}\p{N}_]+`

func declared(prefix string, kind domain.SuggestionKind, call bool) extractor {
	return extractor{
		pattern: regexp.MustCompile(prefix + `(` + ident + `)`),
		kind:    kind,
		call:    call,
	}
}

var catalogs = map[domain.Language]catalog{
	domain.LangPython: {
		keywords: []string{
			"def", "class", "if", "elif", "else", "for", "while", "try", "except",
			"finally", "with", "import", "from", "return", "yield", "break", "continue",
			"pass", "raise", "assert", "lambda", "global", "nonlocal", "async", "await",
		},
		builtins: []string{
			"print", "len", "range", "str", "int", "float", "list", "dict", "set",
			"tuple", "bool", "type", "isinstance", "hasattr", "getattr", "setattr",
			"open", "input", "map", "filter", "zip", "enumerate", "sorted", "sum",
			"min", "max", "abs", "round", "all", "any",
		},
		callBuiltins: true,
		extractors: []extractor{
			declared(`\bdef\s+`, domain.KindFunction, true),
			declared(`\bclass\s+`, domain.KindClass, false),
		},
	},
	domain.LangJavaScript: {
		keywords: []string{
			"function", "const", "let", "var", "if", "else", "for", "while", "do",
			"switch", "case", "break", "continue", "return", "try", "catch", "finally",
			"throw", "new", "class", "extends", "import", "export", "async", "await",
		},
		builtins: []string{
			"console.log", "console.error", "console.warn", "Array", "Object", "String",
			"Number", "Boolean", "Date", "Math", "JSON", "Promise", "setTimeout",
			"setInterval", "fetch", "parseInt", "parseFloat", "isNaN", "isFinite",
		},
		extractors: []extractor{
			declared(`\bfunction\s*\*?\s*`, domain.KindFunction, true),
			declared(`\bclass\s+`, domain.KindClass, false),
		},
	},
	domain.LangGo: {
		keywords: []string{
			"package", "import", "func", "var", "const", "type", "struct", "interface",
			"go", "select", "chan", "map", "range", "if", "else", "for", "switch",
			"case", "default", "break", "continue", "return", "defer",
		},
		builtins: []string{
			"fmt.Println", "fmt.Printf", "len", "append", "make", "new", "close",
			"panic", "recover", "copy", "delete",
		},
		extractors: []extractor{
			declared(`\bfunc\s+`, domain.KindFunction, true),
			{
				pattern: regexp.MustCompile(`\btype\s+(` + ident + `)\s+struct\b`),
				kind:    domain.KindStruct,
			},
		},
	},
	domain.LangCpp: {
		keywords: []string{
			"int", "float", "double", "char", "bool", "void", "class", "struct",
			"namespace", "public", "private", "protected", "template", "typename",
			"if", "else", "for", "while", "switch", "case", "default",
			"return", "break", "continue", "new", "delete", "try", "catch",
		},
		builtins: []string{
			"std::cout", "std::cin", "std::string", "std::vector", "std::map",
			"std::unordered_map", "std::set", "std::sort", "std::endl",
		},
		extractors: []extractor{
			declared(`\bclass\s+`, domain.KindClass, false),
			{
				// A type followed by a name and an opening parenthesis.
				pattern: regexp.MustCompile(`[a-zA-Z_]\w*\s+(` + ident + `)\s*\(`),
				kind:    domain.KindFunction,
				call:    true,
			},
		},
	},
}

// Engine produces completions. The zero value is not usable; call New.
type Engine struct {
	catalogs map[domain.Language]catalog
}

// New returns an engine loaded with the built-in language catalogs.
func New() *Engine {
	return &Engine{catalogs: catalogs}
}

// Suggest returns completions for the identifier being typed at cursor.
// cursor counts UTF-16 code units and is clamped to the code. The result is
// never nil; it is empty when nothing has been typed or the language is not
// supported.
func (e *Engine) Suggest(code, language string, cursor int) []domain.SuggestionItem {
	items := []domain.SuggestionItem{}

	lang, ok := domain.ParseLanguage(language)
	if !ok {
		return items
	}
	cat, ok := e.catalogs[lang]
	if !ok {
		return items
	}

	prefix := Prefix(code, cursor)
	if prefix == "" {
		return items
	}

	for _, kw := range cat.keywords {
		if strings.HasPrefix(kw, prefix) {
			items = append(items, domain.SuggestionItem{Label: kw, Kind: domain.KindKeyword, InsertText: kw})
		}
	}
	for _, b := range cat.builtins {
		if strings.HasPrefix(b, prefix) {
			items = append(items, item(b, domain.KindFunction, cat.callBuiltins))
		}
	}
	for _, ex := range cat.extractors {
		for _, m := range ex.pattern.FindAllStringSubmatch(code, -1) {
			if strings.HasPrefix(m[1], prefix) {
				items = append(items, item(m[1], ex.kind, ex.call))
			}
		}
	}

	if len(items) > MaxSuggestions {
		items = items[:MaxSuggestions]
	}
	return items
}

func item(name string, kind domain.SuggestionKind, call bool) domain.SuggestionItem {
	insert := name
	if call {
		insert += "()"
	}
	return domain.SuggestionItem{Label: name, Kind: kind, InsertText: insert}
}

// Prefix returns the run of identifier characters that ends at cursor on the
// current line.
func Prefix(code string, cursor int) string {
	before := beforeCursor(code, cursor)
	if i := strings.LastIndexByte(before, '\n'); i >= 0 {
		before = before[i+1:]
	}
	start := len(before)
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(before[:start])
		if !isIdentRune(r) {
			break
		}
		start -= size
	}
	return before[start:]
}

// beforeCursor returns the text preceding a UTF-16 offset.
func beforeCursor(code string, cursor int) string {
	if cursor <= 0 {
		return ""
	}
	units := utf16.Encode([]rune(code))
	if cursor >= len(units) {
		return code
	}
	return string(utf16.Decode(units[:cursor]))
}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}
