// Package aranceles implements the professional fee ("arancel") calculator
// flow: selectable options, form validation, submission and the result
// summary.
package aranceles

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cicbolivia/portal/internal/models"
	"github.com/cicbolivia/portal/internal/query"
)

const (
	// OptionsKey identifies the options query in the cache.
	OptionsKey = "arancelesOptions"
	// Path is the calculator endpoint, relative to the API base URL.
	Path = "aranceles/aranceles/"
)

// Backend is the subset of the API client the calculator needs.
// *apiclient.Client satisfies it.
type Backend interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
}

// RawOptions is the backend's option payload.
type RawOptions struct {
	Formaciones []string `json:"formaciones"`
	Actividades []string `json:"actividades"`
}

// TransformOptions maps the raw lists to select options. A formacion is its
// own label; an actividad is labelled by the text before its first comma.
// Missing lists become empty lists.
func TransformOptions(raw RawOptions) models.FeeOptions {
	out := models.FeeOptions{
		Grados:      make([]models.SelectOption, 0, len(raw.Formaciones)),
		Actividades: make([]models.SelectOption, 0, len(raw.Actividades)),
	}
	for _, f := range raw.Formaciones {
		out.Grados = append(out.Grados, models.SelectOption{Label: f, Value: f})
	}
	for _, a := range raw.Actividades {
		label, _, _ := strings.Cut(a, ",")
		out.Actividades = append(out.Actividades, models.SelectOption{Label: label, Value: a})
	}
	return out
}

// Service reaches the calculator endpoint through a shared query cache.
type Service struct {
	api   Backend
	cache *query.Client
}

func NewService(api Backend, cache *query.Client) *Service {
	return &Service{api: api, cache: cache}
}

// Options returns the cached form options, fetching them when stale.
func (s *Service) Options(ctx context.Context) (models.FeeOptions, error) {
	return query.Fetch(ctx, s.cache, OptionsKey, func(ctx context.Context) (models.FeeOptions, error) {
		var raw RawOptions
		if err := s.api.Get(ctx, Path, &raw); err != nil {
			return models.FeeOptions{}, fmt.Errorf("loading fee options: %w", err)
		}
		return TransformOptions(raw), nil
	})
}

// Calculate posts the payload and returns the backend's response untouched.
func (s *Service) Calculate(ctx context.Context, p Payload) (json.RawMessage, error) {
	var result json.RawMessage
	if err := s.api.Post(ctx, Path, p, &result); err != nil {
		return nil, fmt.Errorf("calculating fee: %w", err)
	}
	return result, nil
}
