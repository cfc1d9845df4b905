package usecase

import (
	"github.com/Harsh-BH/pairexec/internal/domain"
	"github.com/Harsh-BH/pairexec/internal/metrics"
	"github.com/Harsh-BH/pairexec/internal/suggest"
)

// SuggestUsecase serves editor completions.
type SuggestUsecase struct {
	engine *suggest.Engine
}

// NewSuggestUsecase creates a new SuggestUsecase.
func NewSuggestUsecase(engine *suggest.Engine) *SuggestUsecase {
	return &SuggestUsecase{engine: engine}
}

// Execute returns the completions for req.
func (uc *SuggestUsecase) Execute(req *domain.SuggestRequest) *domain.SuggestResponse {
	label := "unsupported"
	if lang, ok := domain.ParseLanguage(req.Language); ok {
		label = string(lang)
	}
	metrics.SuggestionsTotal.WithLabelValues(label).Inc()

	return &domain.SuggestResponse{
		Suggestions: uc.engine.Suggest(req.Code, req.Language, req.CursorPosition),
	}
}
