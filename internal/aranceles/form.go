package aranceles

import (
	"math"
	"strconv"
	"strings"

	"github.com/cicbolivia/portal/internal/apperr"
	"github.com/cicbolivia/portal/internal/models"
	"github.com/go-playground/validator/v10"
)

// Ubicacion values.
const (
	Ciudad = "ciudad"
	Campo  = "campo"
)

// MaxAntiguedadDigits bounds the years-of-service input control.
const MaxAntiguedadDigits = 2

// Departamentos are the nine departments accepted by the backend.
var Departamentos = []models.SelectOption{
	{Label: "La Paz", Value: "La Paz"},
	{Label: "Cochabamba", Value: "Cochabamba"},
	{Label: "Santa Cruz", Value: "Santa Cruz"},
	{Label: "Oruro", Value: "Oruro"},
	{Label: "Potosí", Value: "Potosí"},
	{Label: "Tarija", Value: "Tarija"},
	{Label: "Chuquisaca", Value: "Chuquisaca"},
	{Label: "Beni", Value: "Beni"},
	{Label: "Pando", Value: "Pando"},
}

// Validation reasons.
var (
	ErrMissingFields = apperr.Validation("missing fields")
	ErrInvalidValue  = apperr.Validation("invalid value")
	ErrInvalidOption = apperr.Validation("invalid option")
)

var validate = validator.New()

// Form is the user's raw input.
type Form struct {
	Antiguedad   string `json:"antiguedad" form:"antiguedad" validate:"required"`
	Departamento string `json:"departamento" form:"departamento" validate:"required"`
	Grado        string `json:"grado" form:"grado" validate:"required"`
	Ubicacion    string `json:"ubicacion" form:"ubicacion"`
	Actividad    string `json:"actividad" form:"actividad" validate:"required"`
}

// NewForm is an empty form located in the city.
func NewForm() Form {
	return Form{Ubicacion: Ciudad}
}

// SetAntiguedad applies the input control's guard: digits only, at most
// two of them.
func (f *Form) SetAntiguedad(input string) {
	f.Antiguedad = DigitsOnly(input, MaxAntiguedadDigits)
}

// DigitsOnly keeps the ASCII digits of input, truncated to max characters.
func DigitsOnly(input string, max int) string {
	var b strings.Builder
	for _, r := range input {
		if b.Len() >= max {
			break
		}
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Payload is the body posted to the calculator.
type Payload struct {
	Antiguedad   float64 `json:"antiguedad"`
	Departamento string  `json:"departamento"`
	Formacion    string  `json:"formacion"`
	Ubicacion    string  `json:"ubicacion"`
	Actividad    string  `json:"actividad"`
}

// Validate checks the form and builds the payload. Empty required fields
// fail with ErrMissingFields before antiguedad is parsed; a non-positive or
// non-numeric antiguedad fails with ErrInvalidValue; an unknown departamento
// or ubicacion fails with ErrInvalidOption.
func Validate(f Form) (Payload, error) {
	f = f.trimmed()
	if f.Ubicacion == "" {
		f.Ubicacion = Ciudad
	}

	if err := validate.Struct(f); err != nil {
		return Payload{}, ErrMissingFields
	}

	years, err := strconv.ParseFloat(f.Antiguedad, 64)
	if err != nil || math.IsNaN(years) || math.IsInf(years, 0) || years <= 0 {
		return Payload{}, ErrInvalidValue
	}
	if err := validate.Var(f.Departamento, "oneof='La Paz' Cochabamba 'Santa Cruz' Oruro Potosí Tarija Chuquisaca Beni Pando"); err != nil {
		return Payload{}, ErrInvalidOption
	}
	if err := validate.Var(f.Ubicacion, "oneof=ciudad campo"); err != nil {
		return Payload{}, ErrInvalidOption
	}

	return Payload{
		Antiguedad:   years,
		Departamento: f.Departamento,
		Formacion:    f.Grado,
		Ubicacion:    f.Ubicacion,
		Actividad:    f.Actividad,
	}, nil
}

func (f Form) trimmed() Form {
	return Form{
		Antiguedad:   strings.TrimSpace(f.Antiguedad),
		Departamento: strings.TrimSpace(f.Departamento),
		Grado:        strings.TrimSpace(f.Grado),
		Ubicacion:    strings.TrimSpace(f.Ubicacion),
		Actividad:    strings.TrimSpace(f.Actividad),
	}
}
