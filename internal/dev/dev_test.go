package dev

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/jsxc/internal/config"
	"github.com/vango-dev/jsxc/internal/telemetry"
	"github.com/vango-dev/jsxc/pkg/compiler"
	"github.com/vango-dev/jsxc/pkg/jsx"
)

func TestWatcher_Basic(t *testing.T) {
	tmpDir := t.TempDir()

	testFile := filepath.Join(tmpDir, "app.jsx.json")
	if err := os.WriteFile(testFile, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	watcher := NewWatcher(WatcherConfig{
		Paths:    []string{tmpDir},
		Debounce: 50 * time.Millisecond,
	})

	changes := make(chan []Change, 10)
	watcher.OnChange(func(c []Change) {
		changes <- c
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go watcher.Start(ctx)

	// Wait for initial scan
	time.Sleep(100 * time.Millisecond)

	// Push the modification time forward so coarse filesystem clocks
	// still register the write.
	later := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(testFile, later, later); err != nil {
		t.Fatal(err)
	}

	select {
	case batch := <-changes:
		if len(batch) != 1 {
			t.Fatalf("Expected 1 change, got %d", len(batch))
		}
		if batch[0].Path != testFile {
			t.Errorf("Expected path %q, got %q", testFile, batch[0].Path)
		}
		if batch[0].Removed {
			t.Error("Expected a modification, got a removal")
		}
	case <-time.After(time.Second):
		t.Error("Timeout waiting for change")
	}

	watcher.Stop()
}

func TestWatcher_ReportsEveryFile(t *testing.T) {
	tmpDir := t.TempDir()

	watcher := NewWatcher(WatcherConfig{Paths: []string{tmpDir}})
	var got []Change
	watcher.OnChange(func(c []Change) { got = append(got, c...) })
	watcher.scanInitial()

	a := filepath.Join(tmpDir, "a.jsx.json")
	b := filepath.Join(tmpDir, "nested", "b.jsx.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(b), 0755))
	require.NoError(t, os.WriteFile(b, []byte("{}"), 0644))
	require.NoError(t, os.WriteFile(a, []byte("{}"), 0644))

	watcher.checkForChanges()
	assert.Equal(t, []Change{{Path: a}, {Path: b}}, got)

	got = nil
	watcher.checkForChanges()
	assert.Empty(t, got, "unchanged files are not reported twice")

	require.NoError(t, os.Remove(a))
	watcher.checkForChanges()
	assert.Equal(t, []Change{{Path: a, Removed: true}}, got)
}

func TestWatcher_Ignore(t *testing.T) {
	tmpDir := t.TempDir()

	watcher := NewWatcher(WatcherConfig{
		Paths:  []string{tmpDir},
		Ignore: []string{"*.swp", "node_modules"},
	})

	if !watcher.shouldIgnore(filepath.Join(tmpDir, "app.jsx.json.swp")) {
		t.Error("Should ignore *.swp files")
	}
	if !watcher.shouldIgnore(filepath.Join(tmpDir, "node_modules", "lib.jsx.json")) {
		t.Error("Should ignore node_modules directory")
	}
	if watcher.shouldIgnore(filepath.Join(tmpDir, "app.jsx.json")) {
		t.Error("Should not ignore app.jsx.json")
	}
}

func TestWatcher_IgnoreSegments(t *testing.T) {
	watcher := NewWatcher(WatcherConfig{
		Paths:  []string{"."},
		Ignore: []string{"tmp"},
	})

	if !watcher.shouldIgnore(filepath.Join("foo", "tmp", "bar.jsx.json")) {
		t.Error("Should ignore tmp directory segment")
	}
	if watcher.shouldIgnore(filepath.Join("foo", "attempt.jsx.json")) {
		t.Error("Should not ignore substring match")
	}
}

func TestWatcher_IsRunning(t *testing.T) {
	watcher := NewWatcher(WatcherConfig{
		Paths: []string{"."},
	})

	if watcher.IsRunning() {
		t.Error("Watcher should not be running initially")
	}
}

func TestChangeIsInput(t *testing.T) {
	assert.True(t, Change{Path: "src/app.jsx.json"}.IsInput())
	assert.False(t, Change{Path: "src/app.json"}.IsInput())
	assert.False(t, Change{Path: "styles/site.css"}.IsInput())
}

func TestCollectWatchPaths(t *testing.T) {
	dir := t.TempDir()
	cfg := config.New()
	require.NoError(t, cfg.SaveTo(filepath.Join(dir, config.ConfigFileName)))
	cfg.Dev.Watch = []string{"src", "extra", "./extra/"}

	assert.Equal(t, []string{
		filepath.Join(dir, "src"),
		filepath.Join(dir, "extra"),
	}, CollectWatchPaths(cfg))
}

func TestWatchIgnoreSkipsOutputs(t *testing.T) {
	dir := t.TempDir()
	cfg := config.New()
	require.NoError(t, cfg.SaveTo(filepath.Join(dir, config.ConfigFileName)))
	cfg.Build.Output = "public/js"

	watcher := NewWatcher(WatcherConfig{Paths: []string{dir}, Ignore: watchIgnore(cfg)})
	assert.True(t, watcher.shouldIgnore(filepath.Join(dir, "public", "js", "app.js")))
	assert.True(t, watcher.shouldIgnore(filepath.Join(dir, ".jsxc-cache", "ab", "abcd.msgpack")))
	assert.False(t, watcher.shouldIgnore(filepath.Join(dir, "src", "app.jsx.json")))
}

// newTestServer creates a dev server for a temp project holding files.
func newTestServer(t *testing.T, files map[string]*jsx.Module) (*Server, *config.Config) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.New()
	require.NoError(t, cfg.SaveTo(filepath.Join(dir, config.ConfigFileName)))
	require.NoError(t, os.MkdirAll(cfg.InputPath(), 0755))
	for name, mod := range files {
		writeModule(t, cfg, name, mod)
	}

	srv := NewServer(ServerOptions{
		Config:  cfg,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics: telemetry.New(telemetry.WithRegistry(prometheus.NewRegistry())),
	})
	return srv, cfg
}

func writeModule(t *testing.T, cfg *config.Config, name string, mod *jsx.Module) string {
	t.Helper()
	path := filepath.Join(cfg.InputPath(), name)
	data, err := jsx.Marshal(mod)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func appModule() *jsx.Module {
	return jsx.Mod("app.jsx", "export const view = ", jsx.El("div", jsx.A("class", "a"), jsx.Slot(jsx.Ex("x"))), ";\n")
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestServerModules(t *testing.T) {
	srv, _ := newTestServer(t, map[string]*jsx.Module{"app.jsx.json": appModule()})

	res, err := srv.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Failed)

	mods := srv.Modules()
	require.Len(t, mods, 1)
	assert.Equal(t, "app.jsx.json", mods[0].Input)
	assert.Equal(t, "/modules/app.js", mods[0].URL)
	assert.Empty(t, mods[0].Error)

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, body := get(t, ts.URL+"/modules/app.js")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/javascript; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, body, `const _tmpl$1 = /*#__PURE__*/template(`)
	assert.Contains(t, body, "insert(_el$1, () => x)")

	resp, body = get(t, ts.URL+"/modules")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var listed []ModuleState
	require.NoError(t, json.Unmarshal([]byte(body), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "app.jsx.json", listed[0].Input)

	resp, _ = get(t, ts.URL+"/modules/missing.js")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = get(t, ts.URL+"/modules/app.jsx.json")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServerIndex(t *testing.T) {
	srv, cfg := newTestServer(t, map[string]*jsx.Module{"app.jsx.json": appModule()})
	require.NoError(t, os.WriteFile(filepath.Join(cfg.InputPath(), "broken.jsx.json"), []byte("{<oops>"), 0644))

	_, err := srv.Build(context.Background())
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, body := get(t, ts.URL+"/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, body, `<a href="/modules/app.js">app.jsx.json</a>`)
	assert.Contains(t, body, `<span class="err">`)
	assert.NotContains(t, body, "{<oops>")
	assert.Contains(t, body, "new WebSocket")
}

func postCompile(t *testing.T, url string, body []byte) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestServerCompile(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	ast, err := jsx.Marshal(appModule())
	require.NoError(t, err)

	t.Run("dom", func(t *testing.T) {
		resp, data := postCompile(t, ts.URL+"/compile", ast)
		require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
		var res compiler.Result
		require.NoError(t, json.Unmarshal(data, &res))
		assert.Contains(t, res.Code, "_tmpl$1()")
		assert.Equal(t, []string{"insert", "template"}, res.Helpers)
	})

	t.Run("ssr hydratable", func(t *testing.T) {
		resp, data := postCompile(t, ts.URL+"/compile?mode=ssr&hydratable=true&sourceMap=true", ast)
		require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
		var res compiler.Result
		require.NoError(t, json.Unmarshal(data, &res))
		assert.Contains(t, res.Code, "ssr(`")
		assert.Contains(t, res.Code, "<!--#1-->")
		assert.NotEmpty(t, res.SourceMap)
	})

	errorCode := func(t *testing.T, data []byte) string {
		var out struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		require.NoError(t, json.Unmarshal(data, &out))
		return out.Error.Code
	}

	t.Run("bad mode", func(t *testing.T) {
		resp, data := postCompile(t, ts.URL+"/compile?mode=native", ast)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "E122", errorCode(t, data))
	})

	t.Run("bad hydratable", func(t *testing.T) {
		resp, data := postCompile(t, ts.URL+"/compile?hydratable=maybe", ast)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "E120", errorCode(t, data))
	})

	t.Run("bad body", func(t *testing.T) {
		resp, data := postCompile(t, ts.URL+"/compile", []byte("{"))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "E142", errorCode(t, data))
	})

	t.Run("fatal", func(t *testing.T) {
		bad, err := jsx.Marshal(jsx.Mod("a.jsx", jsx.El("")))
		require.NoError(t, err)
		resp, data := postCompile(t, ts.URL+"/compile", bad)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		assert.Equal(t, "J903", errorCode(t, data))
	})

	t.Run("metrics", func(t *testing.T) {
		resp, body := get(t, ts.URL+"/metrics")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, `jsxc_compiles_total{mode="dom",status="ok"}`)
		assert.Contains(t, body, `jsxc_compiles_total{mode="ssr",status="ok"}`)
	})
}

func dialHub(t *testing.T, srv *Server, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.Eventually(t, func() bool { return srv.hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestServerChanges(t *testing.T) {
	srv, cfg := newTestServer(t, map[string]*jsx.Module{"app.jsx.json": appModule()})
	ctx := context.Background()
	_, err := srv.Build(ctx)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()
	conn := dialHub(t, srv, ts)

	added := writeModule(t, cfg, "card.jsx.json",
		jsx.Mod("card.jsx", "export const c = ", jsx.El("section", jsx.A("class", "a"), jsx.A("class", "b")), ";\n"))
	srv.handleChanges(ctx, []Change{{Path: added}})

	msg := readMessage(t, conn)
	assert.Equal(t, MessageCompiled, msg.Type)
	assert.Equal(t, "card.jsx.json", msg.File)
	require.Len(t, msg.Diagnostics, 1)
	assert.Equal(t, "J101", msg.Diagnostics[0].Code)
	assert.FileExists(t, filepath.Join(cfg.OutputPath(), "card.js"))
	assert.Len(t, srv.Modules(), 2)

	require.NoError(t, os.WriteFile(added, []byte("not json"), 0644))
	srv.handleChanges(ctx, []Change{{Path: added}})
	msg = readMessage(t, conn)
	assert.Equal(t, MessageError, msg.Type)
	assert.Contains(t, msg.Error, "E142")

	require.NoError(t, os.Remove(added))
	srv.handleChanges(ctx, []Change{{Path: added, Removed: true}})
	msg = readMessage(t, conn)
	assert.Equal(t, MessageRemoved, msg.Type)
	assert.Equal(t, "card.jsx.json", msg.File)
	assert.NoFileExists(t, filepath.Join(cfg.OutputPath(), "card.js"))
	assert.Len(t, srv.Modules(), 1)

	srv.handleChanges(ctx, []Change{{Path: filepath.Join(cfg.Dir(), "styles", "site.css")}})
	msg = readMessage(t, conn)
	assert.Equal(t, MessageRebuilt, msg.Type)
}

func TestHubClose(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	dialHub(t, srv, ts)
	srv.hub.Close()
	assert.Equal(t, 0, srv.hub.ClientCount())
}
