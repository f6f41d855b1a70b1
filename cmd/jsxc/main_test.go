package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/jsxc/internal/config"
	"github.com/vango-dev/jsxc/pkg/compiler"
	"github.com/vango-dev/jsxc/pkg/diag"
	"github.com/vango-dev/jsxc/pkg/jsx"
)

func writeAST(t *testing.T, dir string, mod *jsx.Module) string {
	t.Helper()
	data, err := jsx.Marshal(mod)
	require.NoError(t, err)
	path := filepath.Join(dir, "app.jsx.json")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func sampleModule() *jsx.Module {
	return jsx.Mod("app.jsx", "export const view = ",
		jsx.El("div", jsx.A("class", "a"), jsx.A("class", "b"), jsx.Slot(jsx.Ex("x"))), ";\n")
}

func TestRunInit(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "web")
	require.NoError(t, runInit(dir, "ssr", true, "my-runtime", false))

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, compiler.ModeSSR, cfg.Compiler.GenerateMode)
	assert.True(t, cfg.Compiler.Hydratable)
	assert.Equal(t, "my-runtime", cfg.Compiler.RuntimeModuleName)
	assert.DirExists(t, cfg.InputPath())

	err = runInit(dir, "dom", false, compiler.DefaultRuntime, false)
	var de *diag.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "E120", de.Code)

	require.NoError(t, runInit(dir, "dom", false, compiler.DefaultRuntime, true))

	err = runInit(t.TempDir(), "native", false, compiler.DefaultRuntime, false)
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "E122", de.Code)
}

func TestRunCompile(t *testing.T) {
	dir := t.TempDir()
	input := writeAST(t, dir, sampleModule())
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, runCompile(ctx, input, "", compiler.DefaultOptions(), &out))
	assert.Contains(t, out.String(), `import { insert, template } from "solid-js/web";`)
	assert.Contains(t, out.String(), "insert(_el$1, () => x)")

	opts := compiler.DefaultOptions()
	opts.EmitSourceMap = true
	output := filepath.Join(dir, "out", "app.js")
	require.NoError(t, runCompile(ctx, input, output, opts, &out))

	code, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(code), "//# sourceMappingURL=app.js.map\n")
	assert.FileExists(t, output+".map")
}

func TestRunCompileErrors(t *testing.T) {
	dir := t.TempDir()
	var de *diag.Error

	err := runCompile(context.Background(), filepath.Join(dir, "missing.jsx.json"), "", compiler.DefaultOptions(), &bytes.Buffer{})
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "E140", de.Code)

	bad := filepath.Join(dir, "bad.jsx.json")
	require.NoError(t, os.WriteFile(bad, []byte("[]"), 0644))
	err = runCompile(context.Background(), bad, "", compiler.DefaultOptions(), &bytes.Buffer{})
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "E142", de.Code)
}

func TestWriteReport(t *testing.T) {
	input := writeAST(t, t.TempDir(), sampleModule())
	opts := compiler.DefaultOptions()
	opts.Hydratable = true

	res, err := compileFile(context.Background(), input, opts)
	require.NoError(t, err)

	var buf bytes.Buffer
	writeReport(&buf, "app.jsx.json", opts, res)
	report := buf.String()
	assert.Contains(t, report, "app.jsx.json (dom, hydratable)")
	assert.Contains(t, report, "Templates: 1")
	assert.Contains(t, report, "uses=1")
	assert.Contains(t, report, "Diagnostics: 1")
	assert.Contains(t, report, "J101")
}
