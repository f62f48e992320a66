package plugin

import (
	"context"
	"io"
	"os"
	"testing"

	"github.com/drone/drone-go/drone"
	"github.com/drone/drone-go/plugin/converter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sourceplane/drone-convert-cache/internal/cachedir"
	"github.com/sourceplane/drone-convert-cache/internal/rewrite"
)

func TestMain(m *testing.M) {
	logrus.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func newPlugin() (*Plugin, *Metrics) {
	rewriter := rewrite.NewRewriter(cachedir.Default(), rewrite.Params{
		Image:     "meltwater/drone-cache",
		CachePath: "/var/lib/cache",
	})
	metrics := NewMetrics(prometheus.NewRegistry())
	return NewPlugin(rewriter, metrics), metrics
}

func request(data string) *converter.Request {
	return &converter.Request{
		Repo:   drone.Repo{Slug: "octocat/hello-world"},
		Build:  drone.Build{Ref: "refs/heads/main", Event: "push"},
		Config: drone.Config{Data: data},
	}
}

func TestConvertWrapsCaches(t *testing.T) {
	p, metrics := newPlugin()

	config, err := p.Convert(context.Background(), request(`
kind: pipeline
steps:
  - name: build
    caches:
      - npm
`))
	require.NoError(t, err)
	require.NotNil(t, config)

	docs, err := rewrite.ParseStream(config.Data)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	steps := docs[0].(map[string]interface{})["steps"].([]interface{})
	assert.Len(t, steps, 3)
	assert.Equal(t, "build-cache-restore", steps[0].(map[string]interface{})["name"])

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.conversions.WithLabelValues(statusConverted)))
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.conversions.WithLabelValues(statusUnchanged)))
}

func TestConvertUnchanged(t *testing.T) {
	p, metrics := newPlugin()

	config, err := p.Convert(context.Background(), request(`
kind: pipeline
steps:
  - name: build
    image: golang:1.21
`))
	require.NoError(t, err)
	assert.Nil(t, config)

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.conversions.WithLabelValues(statusUnchanged)))
}

func TestConvertMalformedConfig(t *testing.T) {
	p, metrics := newPlugin()

	config, err := p.Convert(context.Background(), request("\tnot: yaml"))
	require.Error(t, err)
	assert.Nil(t, config)

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.conversions.WithLabelValues(statusError)))
}
