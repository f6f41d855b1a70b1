package build

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/jsxc/internal/config"
	"github.com/vango-dev/jsxc/internal/telemetry"
	"github.com/vango-dev/jsxc/pkg/compiler"
	"github.com/vango-dev/jsxc/pkg/diag"
	"github.com/vango-dev/jsxc/pkg/jsx"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// project creates a config rooted at a temp dir with the given AST files.
func project(t *testing.T, files map[string]*jsx.Module) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.New()
	require.NoError(t, cfg.SaveTo(filepath.Join(dir, config.ConfigFileName)))

	for name, mod := range files {
		path := filepath.Join(cfg.InputPath(), name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		data, err := jsx.Marshal(mod)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(path, data, 0644))
	}
	return cfg
}

func sampleModules() map[string]*jsx.Module {
	return map[string]*jsx.Module{
		"app.jsx.json": jsx.Mod("app.jsx",
			"export const view = ", jsx.El("div", jsx.A("class", "a"), jsx.Slot(jsx.Ex("x"))), ";\n"),
		"widgets/button.jsx.json": jsx.Mod("widgets/button.jsx",
			"export const b = ", jsx.El("button", jsx.A("onClick", jsx.Ex("h")), "Go"), ";\n"),
	}
}

func TestNew(t *testing.T) {
	cfg := config.New()
	cfg.Build.Workers = 3
	cfg.Build.SourceMaps = true

	builder := New(cfg, Options{})
	assert.Equal(t, 3, builder.options.Workers)
	assert.True(t, builder.options.SourceMaps)

	override := New(cfg, Options{Workers: 1})
	assert.Equal(t, 1, override.options.Workers)

	cfg.Build.Workers = 0
	assert.Positive(t, New(cfg, Options{}).options.Workers)
}

func TestBuild(t *testing.T) {
	cfg := project(t, sampleModules())
	builder := New(cfg, Options{Logger: quietLogger(), Workers: 2})

	var steps []string
	builder.options.OnProgress = func(s string) { steps = append(steps, s) }

	res, err := builder.Build(context.Background())
	require.NoError(t, err)
	require.NoError(t, res.Err())
	assert.Equal(t, 2, res.Compiled)
	assert.Equal(t, 0, res.Cached)
	assert.Equal(t, []string{"Compiling 2 modules..."}, steps)

	require.Len(t, res.Files, 2)
	assert.Equal(t, "app.jsx.json", res.Files[0].Input)
	assert.Equal(t, filepath.Join("widgets", "button.jsx.json"), res.Files[1].Input)

	app, err := os.ReadFile(filepath.Join(cfg.OutputPath(), "app.js"))
	require.NoError(t, err)
	assert.Contains(t, string(app), "export const view = (() => {")
	assert.Contains(t, string(app), "template(`<div class=\"a\"></div>`)")

	button, err := os.ReadFile(filepath.Join(cfg.OutputPath(), "widgets", "button.js"))
	require.NoError(t, err)
	assert.Contains(t, string(button), "delegateEvents([\"click\"]);")
}

func TestBuildUsesCache(t *testing.T) {
	cfg := project(t, sampleModules())
	reg := prometheus.NewRegistry()
	metrics := telemetry.New(telemetry.WithRegistry(reg))

	first, err := New(cfg, Options{Logger: quietLogger(), Metrics: metrics}).Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, first.Compiled)

	second, err := New(cfg, Options{Logger: quietLogger(), Metrics: metrics}).Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.Compiled)
	assert.Equal(t, 2, second.Cached)

	forced, err := New(cfg, Options{Logger: quietLogger(), Force: true}).Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, forced.Compiled)

	// Changing options changes the key.
	cfg.Compiler.GenerateMode = compiler.ModeSSR
	ssr, err := New(cfg, Options{Logger: quietLogger()}).Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, ssr.Compiled)
	app, err := os.ReadFile(filepath.Join(cfg.OutputPath(), "app.js"))
	require.NoError(t, err)
	assert.Contains(t, string(app), "ssr(`<div class=\"a\">${escape(x)}</div>`)")
}

func TestBuildWithoutCache(t *testing.T) {
	cfg := project(t, sampleModules())
	cfg.Build.Cache = "-"

	for i := 0; i < 2; i++ {
		res, err := New(cfg, Options{Logger: quietLogger()}).Build(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, res.Compiled)
	}
	_, err := os.Stat(filepath.Join(cfg.Dir(), config.DefaultCache))
	assert.True(t, os.IsNotExist(err))
}

func TestBuildSourceMaps(t *testing.T) {
	cfg := project(t, sampleModules())
	cfg.Build.SourceMaps = true

	res, err := New(cfg, Options{Logger: quietLogger()}).Build(context.Background())
	require.NoError(t, err)
	require.NoError(t, res.Err())

	code, err := os.ReadFile(filepath.Join(cfg.OutputPath(), "app.js"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(code), "//# sourceMappingURL=app.js.map\n"))

	sm, err := os.ReadFile(filepath.Join(cfg.OutputPath(), "app.js.map"))
	require.NoError(t, err)
	assert.Contains(t, string(sm), `"sources":["app.jsx"]`)
}

func TestBuildReportsFileErrors(t *testing.T) {
	cfg := project(t, sampleModules())
	bad := filepath.Join(cfg.InputPath(), "broken.jsx.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"type": "Module", "body": [`), 0644))

	res, err := New(cfg, Options{Logger: quietLogger()}).Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 2, res.Compiled)

	var de *diag.Error
	require.True(t, errors.As(res.Err(), &de))
	assert.Equal(t, "E142", de.Code)
}

func TestBuildMissingInput(t *testing.T) {
	cfg := config.New()
	require.NoError(t, cfg.SaveTo(filepath.Join(t.TempDir(), config.ConfigFileName)))

	_, err := New(cfg, Options{Logger: quietLogger()}).Build(context.Background())
	var de *diag.Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "E140", de.Code)
}

func TestBuildCanceled(t *testing.T) {
	cfg := project(t, sampleModules())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(cfg, Options{Logger: quietLogger(), Workers: 1}).Build(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOutputFor(t *testing.T) {
	cfg := config.New()
	cfg.Build.Output = "/out"
	b := New(cfg, Options{})
	assert.Equal(t, filepath.Join("/out", "a", "b.js"), b.OutputFor(filepath.Join("a", "b.jsx.json")))
}

func TestClean(t *testing.T) {
	cfg := project(t, sampleModules())
	b := New(cfg, Options{Logger: quietLogger()})
	_, err := b.Build(context.Background())
	require.NoError(t, err)

	require.NoError(t, b.Clean())
	_, err = os.Stat(cfg.OutputPath())
	assert.True(t, os.IsNotExist(err))
}

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]string
	types   map[string]string
	fail    bool
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.fail {
		return nil, errors.New("access denied")
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.objects == nil {
		f.objects = map[string]string{}
		f.types = map[string]string{}
	}
	f.objects[*in.Bucket+"/"+*in.Key] = string(body)
	f.types[*in.Key] = *in.ContentType
	return &s3.PutObjectOutput{}, nil
}

func TestBuildPublishes(t *testing.T) {
	cfg := project(t, sampleModules())
	cfg.Build.SourceMaps = true
	client := &fakeS3{}

	res, err := New(cfg, Options{
		Logger:    quietLogger(),
		Publisher: NewS3Publisher(client, "assets", "mods/"),
	}).Build(context.Background())
	require.NoError(t, err)
	require.NoError(t, res.Err())
	assert.Equal(t, 4, res.Published)

	assert.Contains(t, client.objects, "assets/mods/app.js")
	assert.Contains(t, client.objects, "assets/mods/app.js.map")
	assert.Contains(t, client.objects, "assets/mods/widgets/button.js")
	assert.Contains(t, client.objects["assets/mods/app.js"], "export const view")
	assert.Equal(t, "application/json", client.types["mods/app.js.map"])
	assert.Equal(t, "text/javascript; charset=utf-8", client.types["mods/app.js"])
}

func TestBuildPublishFailure(t *testing.T) {
	cfg := project(t, sampleModules())

	res, err := New(cfg, Options{
		Logger:    quietLogger(),
		Publisher: NewS3Publisher(&fakeS3{fail: true}, "assets", ""),
	}).Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Published)
	assert.Equal(t, 2, res.Failed)
	assert.Equal(t, 0, res.Compiled)
	assert.Equal(t, 0, res.Cached)
	for _, f := range res.Files {
		assert.Error(t, f.Err, f.Input)
	}

	var de *diag.Error
	require.True(t, errors.As(res.Err(), &de))
	assert.Equal(t, "E143", de.Code)
}

func TestBuildPublishSkipsStaleMaps(t *testing.T) {
	cfg := project(t, sampleModules())

	_, err := New(cfg, Options{Logger: quietLogger(), SourceMaps: true}).Build(context.Background())
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(cfg.OutputPath(), "app.js.map"))

	client := &fakeS3{}
	res, err := New(cfg, Options{
		Logger:    quietLogger(),
		Publisher: NewS3Publisher(client, "assets", ""),
	}).Build(context.Background())
	require.NoError(t, err)
	require.NoError(t, res.Err())

	assert.Equal(t, 2, res.Published)
	assert.Contains(t, client.objects, "assets/app.js")
	assert.NotContains(t, client.objects, "assets/app.js.map")
	assert.NotContains(t, client.objects, "assets/widgets/button.js.map")
}

func TestEnvCredentials(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "")
	_, err := envCredentials(context.Background())
	assert.Error(t, err)

	t.Setenv("AWS_ACCESS_KEY_ID", "id")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")
	creds, err := envCredentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "id", creds.AccessKeyID)

	client := NewS3Client(config.PublishConfig{Region: "eu-west-1", Endpoint: "http://localhost:9000", PathStyle: true})
	assert.Equal(t, "eu-west-1", client.Options().Region)
	assert.True(t, client.Options().UsePathStyle)
}
