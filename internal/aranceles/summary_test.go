package aranceles

import (
	"testing"

	"github.com/cicbolivia/portal/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const summaryJSON = `{
	"mensual": 9800,
	"diario": "328.0",
	"hora": 41,
	"trabajos": [
		{"nombre": "Estructuras", "niveles": [
			{"nombre": "Básica", "elementos": [
				{"detalle": "Cálculo de zapatas", "valor": 1200, "unidad": "Global"},
				{"detalle": "Revisión de planos", "valor": 850, "unidad": "m2"}
			]},
			{"nombre": "Media", "elementos": [
				{"detalle": "Edificios hasta 5 plantas", "valor": 5800, "unidad": "Global"}
			]}
		]},
		{"nombre": "Mensuras", "niveles": [
			{"nombre": "Topografía", "elementos": [
				{"detalle": "Relevamiento topográfico", "valor": 3100, "unidad": "ha"}
			]}
		]}
	]
}`

func TestParseSummary(t *testing.T) {
	s, err := ParseSummary(summaryJSON)
	require.NoError(t, err)

	assert.Equal(t, Amount(9800), s.Mensual)
	assert.Equal(t, Amount(328), s.Diario)
	assert.Equal(t, Amount(41), s.Hora)
	require.Len(t, s.Trabajos, 2)
	assert.Equal(t, Amount(850), s.Trabajos[0].Niveles[0].Elementos[1].Valor)
}

func TestParseSummaryAcceptsDiaAlias(t *testing.T) {
	s, err := ParseSummary(`{"mensual": 9800.5, "hora": 40.8, "dia": 326.4}`)
	require.NoError(t, err)

	assert.Equal(t, Amount(326.4), s.Diario)
	assert.NotNil(t, s.Trabajos)
}

func TestParseSummaryRejectsUntrustedBlobs(t *testing.T) {
	for _, blob := range []string{"", "null", "[]", `{"hora": 1}`, `{"mensual": "mucho"}`, `not json`,
		`{"mensual": "NaN"}`, `{"mensual": 1, "hora": "+Inf"}`, `{"mensual": 1, "trabajos": [{"niveles": [{"elementos": [{"valor": "-inf"}]}]}]}`,
	} {
		_, err := ParseSummary(blob)
		assert.Error(t, err, "blob %q", blob)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), "blob %q", blob)
	}
}

func TestSummaryFilter(t *testing.T) {
	s, err := ParseSummary(summaryJSON)
	require.NoError(t, err)

	t.Run("blank query keeps everything", func(t *testing.T) {
		assert.Equal(t, s, s.Filter("  "))
	})

	t.Run("trabajo name keeps whole trabajo", func(t *testing.T) {
		got := s.Filter("ESTRUCT")
		require.Len(t, got.Trabajos, 1)
		assert.Len(t, got.Trabajos[0].Niveles, 2)
	})

	t.Run("elemento detalle keeps its nivel only", func(t *testing.T) {
		got := s.Filter("zapatas")
		require.Len(t, got.Trabajos, 1)
		require.Len(t, got.Trabajos[0].Niveles, 1)
		assert.Equal(t, "Básica", got.Trabajos[0].Niveles[0].Nombre)
		assert.Len(t, got.Trabajos[0].Niveles[0].Elementos, 2)
	})

	t.Run("valor and unidad match", func(t *testing.T) {
		got := s.Filter("5800")
		require.Len(t, got.Trabajos, 1)
		assert.Equal(t, "Media", got.Trabajos[0].Niveles[0].Nombre)

		got = s.Filter("m2")
		require.Len(t, got.Trabajos, 1)
		require.Len(t, got.Trabajos[0].Niveles, 1)
		assert.Equal(t, "Básica", got.Trabajos[0].Niveles[0].Nombre)
	})

	t.Run("nivel name keeps nivel", func(t *testing.T) {
		got := s.Filter("topografía")
		require.Len(t, got.Trabajos, 1)
		assert.Equal(t, "Mensuras", got.Trabajos[0].Nombre)
	})

	t.Run("no match", func(t *testing.T) {
		got := s.Filter("puentes")
		assert.Empty(t, got.Trabajos)
		assert.Equal(t, s.Mensual, got.Mensual)
	})

	t.Run("filtering does not mutate the source", func(t *testing.T) {
		_ = s.Filter("zapatas")
		assert.Len(t, s.Trabajos[0].Niveles, 2)
	})
}
