package main

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/cicbolivia/portal/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backendConfig(t *testing.T, postStatus int) *config.Config {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/aranceles/aranceles/", r.URL.Path)
		if r.Method == http.MethodGet {
			_, _ = w.Write([]byte(`{"formaciones":["licenciatura"],"actividades":["diseno, Diseño de proyectos"]}`))
			return
		}
		w.WriteHeader(postStatus)
		_, _ = w.Write([]byte(`{"mensual":9800,"diario":328,"hora":41,"trabajos":[{"nombre":"Estructuras","niveles":[{"nombre":"Básica","elementos":[{"detalle":"Cálculo de zapatas","valor":1200,"unidad":"Global"}]}]}]}`))
	}))
	t.Cleanup(server.Close)

	u, err := url.Parse(server.URL)
	require.NoError(t, err)
	host, port, err := net.SplitHostPort(u.Host)
	require.NoError(t, err)

	cfg := config.FromEnv()
	cfg.APIHost = host
	cfg.APIPort = port
	cfg.TokenStore = "memory"
	return cfg
}

func TestRunPrintsSummary(t *testing.T) {
	cfg := backendConfig(t, http.StatusOK)
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), cfg, []string{
		"-antiguedad", "12", "-departamento", "La Paz", "-grado", "licenciatura",
		"-actividad", "diseno, Diseño de proyectos", "-q", "zapatas",
	}, &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "9800 BOB")
	assert.Contains(t, stdout.String(), "Cálculo de zapatas")
}

func TestRunListsOptions(t *testing.T) {
	cfg := backendConfig(t, http.StatusOK)
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), cfg, []string{"-opciones"}, &stdout, &stderr)

	require.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "Potosí")
	assert.Contains(t, stdout.String(), "diseno")
}

func TestRunMissingFields(t *testing.T) {
	cfg := backendConfig(t, http.StatusOK)
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), cfg, []string{"-antiguedad", "5"}, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "Campos incompletos")
	assert.Empty(t, stdout.String())
}

func TestRunBackendError(t *testing.T) {
	cfg := backendConfig(t, http.StatusInternalServerError)
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), cfg, []string{
		"-antiguedad", "3", "-departamento", "Beni", "-grado", "licenciatura", "-actividad", "diseno",
	}, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "No se pudo calcular el arancel")
}
