package aranceles

import (
	"context"
	"errors"
	"sync"

	"github.com/cicbolivia/portal/internal/logger"
	"github.com/cicbolivia/portal/internal/models"
)

// SummaryScreen is the navigation target of a successful calculation and
// ResultParam the parameter carrying the backend response.
const (
	SummaryScreen = "summary"
	ResultParam   = "result"
)

// Alert is a user-facing modal message.
type Alert struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

var (
	AlertMissingFields = Alert{Title: "Campos incompletos", Message: "Por favor complete todos los campos."}
	AlertInvalidValue  = Alert{Title: "Valor inválido", Message: "Los años de antigüedad deben ser un número mayor a 0."}
	AlertInvalidOption = Alert{Title: "Opción inválida", Message: "Seleccione un departamento y una ubicación de la lista."}
	AlertCalcFailed    = Alert{Title: "Error", Message: "No se pudo calcular el arancel. Intente nuevamente."}
	AlertOptionsFailed = Alert{Title: "Error", Message: "No se pudieron cargar las opciones del formulario."}
)

// AlertFor picks the alert shown for a submission error.
func AlertFor(err error) Alert {
	switch {
	case errors.Is(err, ErrMissingFields):
		return AlertMissingFields
	case errors.Is(err, ErrInvalidValue):
		return AlertInvalidValue
	case errors.Is(err, ErrInvalidOption):
		return AlertInvalidOption
	default:
		return AlertCalcFailed
	}
}

// ErrSubmitting is returned while a previous submission is in flight.
var ErrSubmitting = errors.New("submission already in progress")

// Alerter shows modal alerts.
type Alerter interface {
	Alert(a Alert)
}

// Navigator moves to another screen with string parameters.
type Navigator interface {
	Navigate(screen string, params map[string]string)
}

// Screen is the calculator form screen: it loads the options, holds the
// form and submits it.
type Screen struct {
	Form Form

	svc    *Service
	alerts Alerter
	nav    Navigator

	mu         sync.Mutex
	options    models.FeeOptions
	loaded     bool
	submitting bool
}

func NewScreen(svc *Service, alerts Alerter, nav Navigator) *Screen {
	return &Screen{
		Form:   NewForm(),
		svc:    svc,
		alerts: alerts,
		nav:    nav,
	}
}

// Load fetches the select options through the query cache.
func (s *Screen) Load(ctx context.Context) error {
	opts, err := s.svc.Options(ctx)
	if err != nil {
		logger.Get().Error().Err(err).Msg("Error loading fee options")
		s.alerts.Alert(AlertOptionsFailed)
		return err
	}

	s.mu.Lock()
	s.options = opts
	s.loaded = true
	s.mu.Unlock()
	return nil
}

// Options returns the options from the last successful Load.
func (s *Screen) Options() (models.FeeOptions, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.options, s.loaded
}

// Submit validates the form and, when valid, posts it once. Success
// navigates to the summary carrying the raw response; any failure shows
// exactly one alert and leaves the screen as it was.
func (s *Screen) Submit(ctx context.Context) error {
	s.mu.Lock()
	if s.submitting {
		s.mu.Unlock()
		return ErrSubmitting
	}
	s.submitting = true
	form := s.Form
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.submitting = false
		s.mu.Unlock()
	}()

	payload, err := Validate(form)
	if err != nil {
		s.alerts.Alert(AlertFor(err))
		return err
	}

	result, err := s.svc.Calculate(ctx, payload)
	if err != nil {
		logger.Get().Error().
			Err(err).
			Str("departamento", payload.Departamento).
			Msg("Fee calculation failed")
		s.alerts.Alert(AlertCalcFailed)
		return err
	}

	s.nav.Navigate(SummaryScreen, map[string]string{ResultParam: string(result)})
	return nil
}
