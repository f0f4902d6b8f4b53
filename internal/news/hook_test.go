package news

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/cicbolivia/portal/internal/apiclient"
	"github.com/cicbolivia/portal/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const articleJSON = `{"id":5,"title":"Convocatoria","category":"Institucional","date":"2025-04-01","image":"https://cdn/x.jpg","content":"<p>Texto</p>","pdf":"noticias/5.pdf"}`

func newsServer(t *testing.T, calls *int32, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestDetailInitialState(t *testing.T) {
	d := NewDetail(apiclient.New(apiclient.Config{BaseURL: "http://localhost"}), "5")

	s := d.State()
	assert.True(t, s.Loading)
	assert.Nil(t, s.Error)
	assert.Equal(t, models.NewsItem{}, s.Result)
}

func TestDetailSuccess(t *testing.T) {
	var calls int32
	server := newsServer(t, &calls, http.StatusOK, articleJSON)
	d := NewDetail(apiclient.New(apiclient.Config{BaseURL: server.URL}), "5")

	d.Activate(context.Background())
	d.Wait()

	s := d.State()
	assert.False(t, s.Loading)
	assert.Nil(t, s.Error)
	assert.Equal(t, 5, s.Result.ID)
	assert.Equal(t, "Convocatoria", s.Result.Title)
	assert.Equal(t, "noticias/5.pdf", s.Result.PDF)
}

func TestDetailFailureKeepsInitialResult(t *testing.T) {
	var calls int32
	server := newsServer(t, &calls, http.StatusInternalServerError, `{}`)
	d := NewDetail(apiclient.New(apiclient.Config{BaseURL: server.URL}), "5")

	d.Activate(context.Background())
	d.Wait()

	s := d.State()
	assert.False(t, s.Loading)
	require.NotNil(t, s.Error)
	assert.Equal(t, "Error al cargar las noticias", *s.Error)
	assert.Equal(t, models.NewsItem{}, s.Result)
}

func TestDetailPlaceholderBaseURLFails(t *testing.T) {
	d := NewDetail(apiclient.New(apiclient.Config{BaseURL: "http://"}), "5")

	d.Activate(context.Background())
	d.Wait()

	require.NotNil(t, d.State().Error)
	assert.Equal(t, LoadErrorMessage, *d.State().Error)
}

func TestDetailActivatesOnce(t *testing.T) {
	var calls int32
	server := newsServer(t, &calls, http.StatusOK, articleJSON)
	d := NewDetail(apiclient.New(apiclient.Config{BaseURL: server.URL}), "5")

	d.Activate(context.Background())
	d.Wait()
	d.Activate(context.Background())
	d.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

type recordingGetter struct {
	mu    sync.Mutex
	paths []string
}

func (g *recordingGetter) Get(ctx context.Context, path string, out any) error {
	g.mu.Lock()
	g.paths = append(g.paths, path)
	g.mu.Unlock()
	item := out.(*models.NewsItem)
	item.Title = path
	return nil
}

func TestDetailIgnoresIDChangeByDefault(t *testing.T) {
	g := &recordingGetter{}
	d := NewDetail(g, "1")

	d.Activate(context.Background())
	d.Wait()
	d.SetID(context.Background(), "2")
	d.Wait()

	assert.Equal(t, []string{"noticias/1"}, g.paths)
	assert.Equal(t, "noticias/1", d.State().Result.Title)
}

func TestDetailRefetchOnIDChange(t *testing.T) {
	g := &recordingGetter{}
	d := NewDetail(g, "1", WithRefetchOnIDChange())

	d.Activate(context.Background())
	d.Wait()
	d.SetID(context.Background(), "2")
	d.Wait()

	assert.Equal(t, []string{"noticias/1", "noticias/2"}, g.paths)
	assert.Equal(t, "noticias/2", d.State().Result.Title)
	assert.False(t, d.State().Loading)
}

type blockingGetter struct {
	started chan struct{}
}

func (g *blockingGetter) Get(ctx context.Context, path string, out any) error {
	close(g.started)
	<-ctx.Done()
	return ctx.Err()
}

func TestDetailNoUpdateAfterUnmount(t *testing.T) {
	g := &blockingGetter{started: make(chan struct{})}
	d := NewDetail(g, "1")

	d.Activate(context.Background())
	<-g.started
	d.Unmount()
	d.Wait()

	s := d.State()
	assert.True(t, s.Loading, "state must stay as it was when the view unmounted")
	assert.Nil(t, s.Error)
}

func TestActivateAfterUnmountDoesNothing(t *testing.T) {
	g := &recordingGetter{}
	d := NewDetail(g, "1")

	d.Unmount()
	d.Activate(context.Background())
	d.Wait()

	assert.Empty(t, g.paths)
}

type fakePresigner struct{ fail bool }

func (p fakePresigner) Presign(ctx context.Context, key string) (string, error) {
	if p.fail {
		return "", errors.New("no credentials")
	}
	return "https://signed.example.com/" + key, nil
}

func TestDetailPresignsObjectKeys(t *testing.T) {
	var calls int32
	server := newsServer(t, &calls, http.StatusOK, articleJSON)
	d := NewDetail(apiclient.New(apiclient.Config{BaseURL: server.URL}), "5", WithPresigner(fakePresigner{}))

	d.Activate(context.Background())
	d.Wait()

	s := d.State()
	assert.Equal(t, "https://cdn/x.jpg", s.Result.Image, "absolute URLs are left alone")
	assert.Equal(t, "https://signed.example.com/noticias/5.pdf", s.Result.PDF)
}

func TestPresignFailureKeepsKey(t *testing.T) {
	var calls int32
	server := newsServer(t, &calls, http.StatusOK, articleJSON)
	d := NewDetail(apiclient.New(apiclient.Config{BaseURL: server.URL}), "5", WithPresigner(fakePresigner{fail: true}))

	d.Activate(context.Background())
	d.Wait()

	assert.Equal(t, "noticias/5.pdf", d.State().Result.PDF)
	assert.Nil(t, d.State().Error)
}

func TestList(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/noticias"))
		_, _ = w.Write([]byte(`[{"id":1,"title":"A","excerpt":"a","image":"img/a.jpg"},{"id":2,"title":"B"}]`))
	}))
	defer server.Close()

	l := NewList(apiclient.New(apiclient.Config{BaseURL: server.URL + "/api"}), WithPresigner(fakePresigner{}))
	l.Activate(context.Background())
	l.Wait()

	s := l.State()
	assert.False(t, s.Loading)
	require.Len(t, s.Result, 2)
	assert.Equal(t, "https://signed.example.com/img/a.jpg", s.Result[0].Image)
	assert.Equal(t, "", s.Result[1].Image)
}
