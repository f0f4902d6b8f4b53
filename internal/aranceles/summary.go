package aranceles

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cicbolivia/portal/internal/apperr"
)

// Amount is a number the backend may send either as a JSON number or as a
// decimal string. It is always finite.
type Amount float64

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("amount %q: %w", s, err)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("amount %q is not finite", s)
		}
		*a = Amount(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*a = Amount(f)
	return nil
}

func (a Amount) String() string {
	return strconv.FormatFloat(float64(a), 'f', -1, 64)
}

type Elemento struct {
	Detalle string `json:"detalle"`
	Valor   Amount `json:"valor"`
	Unidad  string `json:"unidad"`
}

type Nivel struct {
	Nombre    string     `json:"nombre"`
	Elementos []Elemento `json:"elementos"`
}

type Trabajo struct {
	Nombre  string  `json:"nombre"`
	Niveles []Nivel `json:"niveles"`
}

// Summary is the parsed calculation result shown on the summary screen.
type Summary struct {
	Mensual  Amount    `json:"mensual"`
	Diario   Amount    `json:"diario"`
	Hora     Amount    `json:"hora"`
	Trabajos []Trabajo `json:"trabajos"`
}

// ParseSummary validates the navigation hand-off. The blob is untrusted:
// it must be a JSON object carrying at least "mensual"; "dia" is accepted
// in place of "diario".
func ParseSummary(result string) (Summary, error) {
	var wire struct {
		Mensual  *Amount   `json:"mensual"`
		Diario   *Amount   `json:"diario"`
		Dia      *Amount   `json:"dia"`
		Hora     *Amount   `json:"hora"`
		Trabajos []Trabajo `json:"trabajos"`
	}
	if strings.TrimSpace(result) == "" {
		return Summary{}, apperr.Validation("empty result")
	}
	if err := json.Unmarshal([]byte(result), &wire); err != nil {
		return Summary{}, apperr.Validation(fmt.Sprintf("malformed result: %v", err))
	}
	if wire.Mensual == nil {
		return Summary{}, apperr.Validation("result has no monthly fee")
	}

	s := Summary{Mensual: *wire.Mensual, Trabajos: wire.Trabajos}
	switch {
	case wire.Diario != nil:
		s.Diario = *wire.Diario
	case wire.Dia != nil:
		s.Diario = *wire.Dia
	}
	if wire.Hora != nil {
		s.Hora = *wire.Hora
	}
	if s.Trabajos == nil {
		s.Trabajos = []Trabajo{}
	}
	return s, nil
}

// Filter keeps the trabajos matching q case-insensitively. A trabajo or
// nivel whose name matches is kept whole; otherwise a nivel is kept when
// any elemento's detalle, valor or unidad matches, and a trabajo when any
// of its niveles is kept. A blank query returns s unchanged.
func (s Summary) Filter(q string) Summary {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return s
	}
	match := func(v string) bool {
		return strings.Contains(strings.ToLower(v), q)
	}

	out := s
	out.Trabajos = []Trabajo{}
	for _, t := range s.Trabajos {
		if match(t.Nombre) {
			out.Trabajos = append(out.Trabajos, t)
			continue
		}

		var niveles []Nivel
		for _, n := range t.Niveles {
			if match(n.Nombre) || anyElemento(n.Elementos, match) {
				niveles = append(niveles, n)
			}
		}
		if len(niveles) > 0 {
			out.Trabajos = append(out.Trabajos, Trabajo{Nombre: t.Nombre, Niveles: niveles})
		}
	}
	return out
}

func anyElemento(elementos []Elemento, match func(string) bool) bool {
	for _, e := range elementos {
		if match(e.Detalle) || match(e.Valor.String()) || match(e.Unidad) {
			return true
		}
	}
	return false
}
