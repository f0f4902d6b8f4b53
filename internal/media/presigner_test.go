package media

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/cicbolivia/portal/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func r2Config() *config.Config {
	cfg := config.FromEnv()
	cfg.R2Endpoint = "https://account.r2.cloudflarestorage.com"
	cfg.R2AccessKey = "test-access"
	cfg.R2SecretKey = "test-secret"
	cfg.R2Bucket = "cicb-media"
	cfg.R2Region = "auto"
	cfg.R2PresignTTL = 5 * time.Minute
	return cfg
}

func TestNewPresignerDisabledWithoutR2(t *testing.T) {
	cfg := config.FromEnv()
	cfg.R2Endpoint = ""

	p, err := NewPresigner(context.Background(), cfg)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestPresignBuildsSignedURL(t *testing.T) {
	p, err := NewPresigner(context.Background(), r2Config())
	require.NoError(t, err)
	require.NotNil(t, p)

	raw, err := p.Presign(context.Background(), "/noticias/2025/reglamento.pdf")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "account.r2.cloudflarestorage.com", u.Host)
	assert.Equal(t, "/cicb-media/noticias/2025/reglamento.pdf", u.Path)
	assert.Equal(t, "300", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
}

func TestPresignRejectsEmptyKey(t *testing.T) {
	p, err := NewPresigner(context.Background(), r2Config())
	require.NoError(t, err)

	_, err = p.Presign(context.Background(), "/")
	assert.Error(t, err)
}

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("https://cdn.example.com/a.jpg"))
	assert.True(t, IsURL("http://x/y"))
	assert.False(t, IsURL("noticias/a.jpg"))
	assert.False(t, IsURL(""))
}
