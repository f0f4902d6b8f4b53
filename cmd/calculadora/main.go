// Command calculadora runs the fee calculator flow from a terminal: it
// loads the form options, submits the given answers and prints the
// resulting summary.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/cicbolivia/portal/internal/apiclient"
	"github.com/cicbolivia/portal/internal/aranceles"
	"github.com/cicbolivia/portal/internal/config"
	"github.com/cicbolivia/portal/internal/logger"
	"github.com/cicbolivia/portal/internal/models"
	"github.com/cicbolivia/portal/internal/query"
	"github.com/cicbolivia/portal/internal/tokenstore"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	if err := logger.Init(logger.Config{Level: cfg.LogLevel, Output: "stderr", Pretty: true}); err != nil {
		panic(err)
	}

	os.Exit(run(ctx, cfg, os.Args[1:], os.Stdout, os.Stderr))
}

type terminal struct {
	errOut io.Writer
	result string
	moved  bool
}

func (t *terminal) Alert(a aranceles.Alert) {
	fmt.Fprintf(t.errOut, "%s: %s\n", a.Title, a.Message)
}

func (t *terminal) Navigate(screen string, params map[string]string) {
	t.moved = screen == aranceles.SummaryScreen
	t.result = params[aranceles.ResultParam]
}

func run(ctx context.Context, cfg *config.Config, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("calculadora", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		antiguedad   = fs.String("antiguedad", "", "años de antigüedad (1-99)")
		departamento = fs.String("departamento", "", "departamento, p. ej. \"La Paz\"")
		grado        = fs.String("grado", "", "grado de formación")
		ubicacion    = fs.String("ubicacion", aranceles.Ciudad, "ciudad o campo")
		actividad    = fs.String("actividad", "", "tipo de actividad")
		search       = fs.String("q", "", "filtrar trabajos del resumen")
		listOptions  = fs.Bool("opciones", false, "mostrar las opciones del formulario y salir")
	)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	var tokens tokenstore.Reader
	if cfg.TokenStore == "file" {
		store, err := tokenstore.NewFile(cfg.TokenFile)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		tokens = store
	}

	client := apiclient.New(apiclient.Config{
		BaseURL: cfg.MobileAPIURL(),
		Timeout: cfg.HTTPTimeout,
		Token:   tokens,
		Name:    "mobile",
	})
	svc := aranceles.NewService(client, query.NewClient(query.Options{
		StaleTime: cfg.QueryStaleTime,
		GCTime:    cfg.QueryGCTime,
	}))

	term := &terminal{errOut: stderr}
	screen := aranceles.NewScreen(svc, term, term)

	if err := screen.Load(ctx); err != nil {
		return 1
	}
	if *listOptions {
		opts, _ := screen.Options()
		printOptions(stdout, opts)
		return 0
	}

	screen.Form.SetAntiguedad(*antiguedad)
	screen.Form.Departamento = *departamento
	screen.Form.Grado = *grado
	screen.Form.Ubicacion = *ubicacion
	screen.Form.Actividad = *actividad

	if err := screen.Submit(ctx); err != nil || !term.moved {
		return 1
	}

	summary, err := aranceles.ParseSummary(term.result)
	if err != nil {
		fmt.Fprintf(stderr, "Resultado inválido: %v\n", err)
		return 1
	}
	printSummary(stdout, summary.Filter(*search))
	return 0
}

func printOptions(w io.Writer, opts models.FeeOptions) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	section := func(title string, items []models.SelectOption) {
		fmt.Fprintf(tw, "%s\n", title)
		for _, o := range items {
			fmt.Fprintf(tw, "  %s\t%s\n", o.Label, o.Value)
		}
	}
	section("Departamentos", aranceles.Departamentos)
	section("Grados", opts.Grados)
	section("Actividades", opts.Actividades)
}

func printSummary(w io.Writer, s aranceles.Summary) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintf(tw, "Mensual\t%s BOB\n", s.Mensual)
	fmt.Fprintf(tw, "Diario\t%s BOB\n", s.Diario)
	fmt.Fprintf(tw, "Hora\t%s BOB\n", s.Hora)
	for _, t := range s.Trabajos {
		fmt.Fprintf(tw, "\n%s\n", t.Nombre)
		for _, n := range t.Niveles {
			fmt.Fprintf(tw, "  %s\n", n.Nombre)
			for _, e := range n.Elementos {
				fmt.Fprintf(tw, "    %s\t%s\t%s BOB\n", e.Detalle, e.Unidad, e.Valor)
			}
		}
	}
}
