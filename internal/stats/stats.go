// Package stats serves the membership statistics shown on the admin
// dashboard. Both queries go through the shared query cache.
package stats

import (
	"context"
	"fmt"
	"math"
	"unicode"
	"unicode/utf8"

	"github.com/cicbolivia/portal/internal/apperr"
	"github.com/cicbolivia/portal/internal/logger"
	"github.com/cicbolivia/portal/internal/query"
	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"
)

const (
	DashboardKey = "stats/dashboard"
	OverallKey   = "admin/overallStats"
)

var validate = validator.New()

// Getter issues a GET relative to the API base URL.
type Getter interface {
	Get(ctx context.Context, path string, out any) error
}

// Overall are the portal-wide totals.
type Overall struct {
	TotalUsers     int `json:"total_users" validate:"min=0"`
	TotalNews      int `json:"total_news" validate:"min=0"`
	TotalJobs      int `json:"total_jobs" validate:"min=0"`
	TotalRulebooks int `json:"total_rulebooks" validate:"min=0"`
}

// UserStats is the backend's stats/users/ payload.
type UserStats struct {
	TotalUsers     int     `json:"total_users"`
	EmploymentRate float64 `json:"employment_rate"`
	Specialties    []struct {
		Especialidad string `json:"especialidad"`
		Count        int    `json:"count"`
	} `json:"specialties_breakdown"`
	States []struct {
		Departamento  string `json:"departamento"`
		TotalCount    int    `json:"total_count"`
		ActiveCount   int    `json:"active_count"`
		InactiveCount int    `json:"inactive_count"`
	} `json:"state_breakdown"`
}

// HistoryPoint is one year of the stats/history/ payload.
type HistoryPoint struct {
	Year       int `json:"year"`
	Cumulative int `json:"total_users_cumulative"`
	New        int `json:"new_users_count"`
}

type Specialty struct {
	Specialty  string  `json:"specialty"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type Department struct {
	Department string `json:"department"`
	Engineers  int    `json:"engineers"`
	Active     int    `json:"active"`
	Inactive   int    `json:"inactive"`
}

type Slice struct {
	Name       string  `json:"name"`
	Value      int     `json:"value"`
	Percentage float64 `json:"percentage"`
}

type Year struct {
	Year  int `json:"year"`
	Total int `json:"total"`
	New   int `json:"new"`
}

// Dashboard is the chart-ready view of the membership statistics.
type Dashboard struct {
	Specialties []Specialty  `json:"specialties"`
	Departments []Department `json:"departments"`
	Employment  []Slice      `json:"employment"`
	Evolution   []Year       `json:"evolution"`
}

type raw struct {
	users   UserStats
	history []HistoryPoint
}

// Service loads statistics from the web API.
type Service struct {
	api   Getter
	cache *query.Client
}

func NewService(api Getter, cache *query.Client) *Service {
	return &Service{api: api, cache: cache}
}

// Overall returns the cached portal totals. Negative counts are rejected.
func (s *Service) Overall(ctx context.Context) (Overall, error) {
	return query.Fetch(ctx, s.cache, OverallKey, func(ctx context.Context) (Overall, error) {
		var o Overall
		if err := s.api.Get(ctx, "stats/overall/", &o); err != nil {
			return Overall{}, err
		}
		if err := validate.Struct(o); err != nil {
			return Overall{}, apperr.Validation(fmt.Sprintf("overall stats: %v", err))
		}
		return o, nil
	})
}

// Dashboard fetches the user breakdown and the yearly history in parallel,
// caches both together and summarizes them.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	r, err := query.Fetch(ctx, s.cache, DashboardKey, func(ctx context.Context) (raw, error) {
		var r raw
		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error { return s.api.Get(ctx, "stats/users/", &r.users) })
		g.Go(func() error { return s.api.Get(ctx, "stats/history/", &r.history) })
		if err := g.Wait(); err != nil {
			return raw{}, err
		}
		return r, nil
	})
	if err != nil {
		log := logger.Component("stats")
		log.Error().Err(err).Msg("Error loading dashboard stats")
		return Dashboard{}, err
	}
	return Summarize(r.users, r.history), nil
}

// Summarize shapes the raw payloads for the dashboard charts. Percentages
// are 0 when there are no users.
func Summarize(u UserStats, history []HistoryPoint) Dashboard {
	d := Dashboard{
		Specialties: make([]Specialty, 0, len(u.Specialties)),
		Departments: make([]Department, 0, len(u.States)),
		Evolution:   make([]Year, 0, len(history)),
	}

	for _, s := range u.Specialties {
		d.Specialties = append(d.Specialties, Specialty{
			Specialty:  capitalize(s.Especialidad),
			Count:      s.Count,
			Percentage: share(s.Count, u.TotalUsers),
		})
	}
	for _, st := range u.States {
		d.Departments = append(d.Departments, Department{
			Department: st.Departamento,
			Engineers:  st.TotalCount,
			Active:     st.ActiveCount,
			Inactive:   st.InactiveCount,
		})
	}

	rate := u.EmploymentRate
	d.Employment = []Slice{
		{Name: "Con Trabajo", Value: int(math.Round(rate / 100 * float64(u.TotalUsers))), Percentage: rate},
		{Name: "Sin Trabajo", Value: int(math.Round((100 - rate) / 100 * float64(u.TotalUsers))), Percentage: 100 - rate},
	}

	for _, h := range history {
		d.Evolution = append(d.Evolution, Year{Year: h.Year, Total: h.Cumulative, New: h.New})
	}
	return d
}

func share(count, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
