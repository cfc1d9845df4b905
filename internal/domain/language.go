package domain

import (
	"slices"
	"strings"
)

// Language is the canonical identifier of a supported language.
type Language string

const (
	LangPython     Language = "python"
	LangJavaScript Language = "javascript"
	LangGo         Language = "go"
	LangCpp        Language = "cpp"
)

// SupportedLanguages lists the canonical languages in display order.
var SupportedLanguages = []Language{LangPython, LangJavaScript, LangGo, LangCpp}

var languageAliases = map[string]Language{
	"python":     LangPython,
	"py":         LangPython,
	"javascript": LangJavaScript,
	"js":         LangJavaScript,
	"node":       LangJavaScript,
	"go":         LangGo,
	"golang":     LangGo,
	"cpp":        LangCpp,
	"c++":        LangCpp,
	"c":          LangCpp,
}

var displayNames = map[Language]string{
	LangPython:     "Python",
	LangJavaScript: "JavaScript",
	LangGo:         "Go",
	LangCpp:        "C++",
}

// ParseLanguage resolves a user supplied name or alias, case-insensitively.
func ParseLanguage(s string) (Language, bool) {
	l, ok := languageAliases[strings.ToLower(strings.TrimSpace(s))]
	return l, ok
}

// IsValid checks if the language is supported.
func (l Language) IsValid() bool {
	_, ok := displayNames[l]
	return ok
}

// DisplayName returns the human readable name, e.g. "C++".
func (l Language) DisplayName() string {
	if name, ok := displayNames[l]; ok {
		return name
	}
	return string(l)
}

// Aliases returns every accepted spelling of l, sorted for stable output.
func (l Language) Aliases() []string {
	var out []string
	for alias, lang := range languageAliases {
		if lang == l {
			out = append(out, alias)
		}
	}
	slices.Sort(out)
	return out
}

// SupportedNames renders the supported set for error messages.
func SupportedNames() string {
	names := make([]string, 0, len(SupportedLanguages))
	for _, l := range SupportedLanguages {
		names = append(names, l.DisplayName())
	}
	return strings.Join(names, ", ")
}

// LanguageInfo describes a supported language.
type LanguageInfo struct {
	Name      Language `json:"name"`
	Display   string   `json:"display"`
	Aliases   []string `json:"aliases"`
	Toolchain string   `json:"toolchain"`
	Compiled  bool     `json:"compiled"`
	Available bool     `json:"available"`
}
