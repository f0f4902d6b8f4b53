package api

import (
	"strings"
	"time"

	"github.com/cicbolivia/portal/internal/aranceles"
	"github.com/cicbolivia/portal/internal/config"
	"github.com/cicbolivia/portal/internal/guard"
	"github.com/cicbolivia/portal/internal/logger"
	"github.com/cicbolivia/portal/internal/middleware"
	"github.com/cicbolivia/portal/internal/models"
	"github.com/cicbolivia/portal/internal/news"
	"github.com/cicbolivia/portal/internal/stats"
	"github.com/gofiber/fiber/v2"
)

// ExcerptLength bounds the plain-text preview of a news article.
const ExcerptLength = 160

// Handlers serves the portal views.
type Handlers struct {
	config    *config.Config
	news      news.Getter
	fees      *aranceles.Service
	stats     *stats.Service
	presigner news.Presigner
}

// Deps are the collaborators of the portal handlers.
type Deps struct {
	// News reaches the web API (news endpoints).
	News news.Getter
	// Fees is the calculator service over the mobile API client.
	Fees *aranceles.Service
	// Stats reaches the web API statistics endpoints.
	Stats *stats.Service
	// Presigner is optional.
	Presigner news.Presigner
}

func NewHandlers(cfg *config.Config, deps Deps) *Handlers {
	return &Handlers{
		config:    cfg,
		news:      deps.News,
		fees:      deps.Fees,
		stats:     deps.Stats,
		presigner: deps.Presigner,
	}
}

// HealthCheck handles the /health endpoint
func (h *Handlers) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": "1.0.0",
		"time":    time.Now().Format(time.RFC3339),
	})
}

// Login handles GET /login. Signing in happens in the external login flow;
// this view only tells the client where it landed.
func (h *Handlers) Login(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"view":    "login",
		"message": "Inicie sesión para acceder al panel de administración",
	})
}

func (h *Handlers) newsOptions() []news.Option {
	if h.presigner == nil {
		return nil
	}
	return []news.Option{news.WithPresigner(h.presigner)}
}

// GetNews handles GET /noticias
func (h *Handlers) GetNews(c *fiber.Ctx) error {
	list := news.NewList(h.news, h.newsOptions()...)
	list.Activate(c.UserContext())
	list.Wait()

	return c.JSON(list.State())
}

type newsDetailView struct {
	news.State[models.NewsItem]
	Excerpt string `json:"excerpt"`
}

// GetNewsByID handles GET /noticias/:id
func (h *Handlers) GetNewsByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Se requiere el identificador de la noticia",
		})
	}

	detail := news.NewDetail(h.news, id, h.newsOptions()...)
	detail.Activate(c.UserContext())
	detail.Wait()

	state := detail.State()
	return c.JSON(newsDetailView{
		State:   state,
		Excerpt: news.Excerpt(state.Result.Content, ExcerptLength),
	})
}

// iconTint is the icon color for the configured theme.
func (h *Handlers) iconTint() string {
	if strings.EqualFold(h.config.Theme, "dark") {
		return "#ffffff"
	}
	return "#0f3e33"
}

// GetFeeOptions handles GET /aranceles/opciones
func (h *Handlers) GetFeeOptions(c *fiber.Ctx) error {
	opts, err := h.fees.Options(c.UserContext())
	if err != nil {
		logger.Get().Error().Err(err).Msg("Error loading fee options")
		return c.Status(middleware.StatusFor(err)).JSON(fiber.Map{
			"alert": aranceles.AlertOptionsFailed,
		})
	}

	return c.JSON(fiber.Map{
		"grados":        opts.Grados,
		"actividades":   opts.Actividades,
		"departamentos": aranceles.Departamentos,
		"ubicaciones":   []string{aranceles.Ciudad, aranceles.Campo},
		"icon_tint":     h.iconTint(),
	})
}

// screenRecorder collects what a calculator screen shows during one
// request.
type screenRecorder struct {
	alert  *aranceles.Alert
	screen string
	params map[string]string
}

func (r *screenRecorder) Alert(a aranceles.Alert) {
	r.alert = &a
}

func (r *screenRecorder) Navigate(screen string, params map[string]string) {
	r.screen = screen
	r.params = params
}

// CalculateFee handles POST /aranceles/calcular
func (h *Handlers) CalculateFee(c *fiber.Ctx) error {
	form := aranceles.NewForm()
	if err := c.BodyParser(&form); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cuerpo de la solicitud inválido",
		})
	}
	form.SetAntiguedad(form.Antiguedad)

	rec := &screenRecorder{}
	screen := aranceles.NewScreen(h.fees, rec, rec)
	screen.Form = form

	if err := screen.Submit(c.UserContext()); err != nil {
		return c.Status(middleware.StatusFor(err)).JSON(fiber.Map{
			"alert": rec.alert,
		})
	}

	return c.JSON(fiber.Map{
		"screen": rec.screen,
		"params": rec.params,
	})
}

type summaryQuery struct {
	Result string `query:"result" validate:"required"`
	Q      string `query:"q"`
}

// GetSummary handles GET /aranceles/resumen
func (h *Handlers) GetSummary(c *fiber.Ctx) error {
	q := c.Locals("query").(*summaryQuery)

	summary, err := aranceles.ParseSummary(q.Result)
	if err != nil {
		logger.Get().Warn().Err(err).Msg("Rejected calculation result")
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": "Resultado de cálculo inválido",
		})
	}

	return c.JSON(summary.Filter(q.Q))
}

type dashboardSection struct {
	Path        string `json:"path"`
	Title       string `json:"title"`
	Description string `json:"description"`

	// Permission grants the section on top of admin.access.
	Permission string `json:"-"`
}

var dashboardSections = []dashboardSection{
	{"/admin/usuarios", "Gestión de Usuarios", "Administra perfiles, roles y estados de los miembros del colegio", guard.PermAdminUsersManage},
	{"/admin/noticias", "Gestión de Noticias", "Publica y edita noticias, comunicados y artículos del portal", guard.PermAdminAccess},
	{"/admin/trabajos", "Gestión de Trabajos", "Administra ofertas laborales y oportunidades profesionales", guard.PermAdminAccess},
	{"/admin/rendimientos", "Gestión de Rendimientos", "Actualiza la tabla de rendimientos de actividades de construcción", guard.PermAdminAccess},
	{"/admin/anuario", "Gestión de Anuario", "Administra el anuario anual de ingenieros colegiados y eventos", guard.PermAdminAccess},
	{"/admin/regulaciones", "Gestión de Reglamentos", "Publica y actualiza reglamentos, normativas y documentos oficiales", guard.PermAdminAccess},
	{"/admin/convocatorias", "Gestión de Convocatorias", "Administra convocatorias, licitaciones y llamados oficiales", guard.PermAdminAccess},
}

// AdminDashboard handles GET /admin. It lists the sections the caller's
// role grants; a missing or unknown role grants none.
func (h *Handlers) AdminDashboard(c *fiber.Ctx) error {
	role := guard.Role(c.Get(guard.RoleHeader))
	sections := []dashboardSection{}
	for _, s := range dashboardSections {
		if guard.HasPermission(role, guard.PermAdminAccess) || guard.HasPermission(role, s.Permission) {
			sections = append(sections, s)
		}
	}

	return c.JSON(fiber.Map{
		"view":     "admin",
		"sections": sections,
	})
}

// AdminSection serves the landing view of one admin section. Routes put
// guard.RequirePermission in front of it.
func (h *Handlers) AdminSection(section dashboardSection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"view":    "admin",
			"section": section,
		})
	}
}

// AdminStats handles GET /admin/estadisticas
func (h *Handlers) AdminStats(c *fiber.Ctx) error {
	overall, err := h.stats.Overall(c.UserContext())
	if err != nil {
		logger.Get().Error().Err(err).Msg("Error loading overall stats")
		return c.Status(middleware.StatusFor(err)).JSON(fiber.Map{
			"error": "No se pudieron cargar las estadísticas",
		})
	}

	dashboard, err := h.stats.Dashboard(c.UserContext())
	if err != nil {
		return c.Status(middleware.StatusFor(err)).JSON(fiber.Map{
			"error": "No se pudieron cargar las estadísticas",
		})
	}

	return c.JSON(fiber.Map{
		"view":      "admin_stats",
		"overall":   overall,
		"dashboard": dashboard,
	})
}
