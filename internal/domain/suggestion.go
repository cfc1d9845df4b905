package domain

// SuggestionKind tells the editor which icon to show for a completion.
type SuggestionKind string

const (
	KindKeyword  SuggestionKind = "keyword"
	KindFunction SuggestionKind = "function"
	KindStruct   SuggestionKind = "struct"
	KindClass    SuggestionKind = "class"
)

// SuggestionItem is a single completion offered at the cursor.
type SuggestionItem struct {
	Label      string         `json:"label"`
	Kind       SuggestionKind `json:"kind"`
	InsertText string         `json:"insertText"`
}

// SuggestRequest is the body of an autocomplete call.
type SuggestRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
	// CursorPosition is an offset into Code in UTF-16 code units.
	CursorPosition int `json:"cursorPosition"`
}

// SuggestResponse wraps the ordered suggestions.
type SuggestResponse struct {
	Suggestions []SuggestionItem `json:"suggestions"`
}
