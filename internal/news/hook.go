// Package news loads news articles for the portal views. A Resource mirrors
// a view-owned fetch: one request on activation, then three observable
// fields (result, loading, error).
package news

import (
	"context"
	"sync"

	"github.com/cicbolivia/portal/internal/logger"
	"github.com/cicbolivia/portal/internal/media"
	"github.com/cicbolivia/portal/internal/models"
)

// LoadErrorMessage is the message shown when a news request fails.
const LoadErrorMessage = "Error al cargar las noticias"

// Getter issues a GET relative to the API base URL. *apiclient.Client
// satisfies it.
type Getter interface {
	Get(ctx context.Context, path string, out any) error
}

// Presigner turns an object key into a download URL.
type Presigner interface {
	Presign(ctx context.Context, key string) (string, error)
}

// State is the observable state of a Resource.
type State[T any] struct {
	Result  T       `json:"result"`
	Loading bool    `json:"loading"`
	Error   *string `json:"error"`
}

type options struct {
	refetchOnIDChange bool
	presigner         Presigner
}

// Option configures a Resource.
type Option func(*options)

// WithRefetchOnIDChange makes SetID issue a new request. Without it the
// identifier is only read on activation.
func WithRefetchOnIDChange() Option {
	return func(o *options) { o.refetchOnIDChange = true }
}

// WithPresigner resolves image and pdf object keys to presigned URLs.
func WithPresigner(p Presigner) Option {
	return func(o *options) { o.presigner = p }
}

// Resource fetches one backend resource for a view.
type Resource[T any] struct {
	client  Getter
	path    func(id string) string
	resolve func(ctx context.Context, p Presigner, v *T)
	opts    options

	mu        sync.Mutex
	id        string
	state     State[T]
	activated bool
	unmounted bool
	gen       int
	cancel    context.CancelFunc
	done      chan struct{}
}

func newResource[T any](client Getter, id string, path func(string) string, resolve func(context.Context, Presigner, *T), opts []Option) *Resource[T] {
	r := &Resource[T]{
		client:  client,
		path:    path,
		resolve: resolve,
		id:      id,
		state:   State[T]{Loading: true},
	}
	for _, opt := range opts {
		opt(&r.opts)
	}
	return r
}

// NewDetail is the detail-by-id resource: GET noticias/{id}.
func NewDetail(client Getter, id string, opts ...Option) *Resource[models.NewsItem] {
	return newResource(client, id, func(id string) string {
		return "noticias/" + id
	}, resolveItem, opts)
}

// NewList is the news list resource: GET noticias.
func NewList(client Getter, opts ...Option) *Resource[[]models.NewsSummary] {
	return newResource(client, "", func(string) string {
		return "noticias"
	}, resolveSummaries, opts)
}

// Activate issues the request the first time it is called. Later calls do
// nothing. It does not block; use Wait to observe completion.
func (r *Resource[T]) Activate(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.activated || r.unmounted {
		return
	}
	r.activated = true
	r.startLocked(ctx)
}

// SetID changes the identifier. It only re-fetches when the resource was
// built WithRefetchOnIDChange and has been activated.
func (r *Resource[T]) SetID(ctx context.Context, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id == r.id {
		return
	}
	r.id = id
	if !r.opts.refetchOnIDChange || !r.activated || r.unmounted {
		return
	}
	if r.cancel != nil {
		r.cancel()
	}
	r.state.Loading = true
	r.state.Error = nil
	r.startLocked(ctx)
}

// Unmount cancels an in-flight request; no state changes after it.
func (r *Resource[T]) Unmount() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.unmounted = true
	if r.cancel != nil {
		r.cancel()
	}
}

// Wait blocks until the current request settles. It returns immediately
// when nothing was started.
func (r *Resource[T]) Wait() {
	r.mu.Lock()
	done := r.done
	r.mu.Unlock()

	if done != nil {
		<-done
	}
}

// State returns a copy of the current state.
func (r *Resource[T]) State() State[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Resource[T]) startLocked(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	r.gen++
	gen := r.gen
	path := r.path(r.id)
	done := make(chan struct{})
	r.cancel = cancel
	r.done = done

	go func() {
		defer close(done)
		defer cancel()

		var result T
		err := r.client.Get(ctx, path, &result)
		if err == nil && r.opts.presigner != nil && r.resolve != nil {
			r.resolve(ctx, r.opts.presigner, &result)
		}

		r.mu.Lock()
		defer r.mu.Unlock()

		if r.unmounted || gen != r.gen {
			return
		}
		if err != nil {
			logger.Get().Error().Err(err).Str("path", path).Msg("Error loading news")
			msg := LoadErrorMessage
			r.state.Error = &msg
		} else {
			r.state.Result = result
		}
		r.state.Loading = false
	}()
}

func resolveItem(ctx context.Context, p Presigner, item *models.NewsItem) {
	item.Image = resolveKey(ctx, p, item.Image)
	item.PDF = resolveKey(ctx, p, item.PDF)
}

func resolveSummaries(ctx context.Context, p Presigner, items *[]models.NewsSummary) {
	for i := range *items {
		(*items)[i].Image = resolveKey(ctx, p, (*items)[i].Image)
		(*items)[i].PDF = resolveKey(ctx, p, (*items)[i].PDF)
	}
}

func resolveKey(ctx context.Context, p Presigner, v string) string {
	if v == "" || media.IsURL(v) {
		return v
	}
	u, err := p.Presign(ctx, v)
	if err != nil {
		logger.Get().Warn().Err(err).Str("key", v).Msg("Could not presign media key")
		return v
	}
	return u
}
