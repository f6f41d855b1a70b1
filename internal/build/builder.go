package build

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/vango-dev/jsxc/internal/config"
	"github.com/vango-dev/jsxc/internal/telemetry"
	"github.com/vango-dev/jsxc/pkg/compiler"
	"github.com/vango-dev/jsxc/pkg/diag"
	"github.com/vango-dev/jsxc/pkg/jsx"
)

// InputSuffix marks AST files picked up by a build.
const InputSuffix = ".jsx.json"

// Result contains the build output.
type Result struct {
	// Duration is how long the build took.
	Duration time.Duration

	// Files holds one entry per input, in input order.
	Files []FileResult

	Compiled  int
	Cached    int
	Failed    int
	Published int

	// Diagnostics counts non-fatal diagnostics over all files.
	Diagnostics int
}

// Err returns the first file error, if any.
func (r *Result) Err() error {
	for _, f := range r.Files {
		if f.Err != nil {
			return f.Err
		}
	}
	return nil
}

// FileResult is the outcome for one input file.
type FileResult struct {
	// Input is the path relative to the input directory.
	Input string

	// Output is the path of the written module.
	Output string

	// Cached is set when the output came from the compile cache.
	Cached bool

	Diagnostics []*diag.Error
	Err         error
}

// Options configures the builder.
type Options struct {
	// Workers bounds concurrent compilations. 0 uses the config value,
	// then GOMAXPROCS.
	Workers int

	// SourceMaps enables source map generation.
	SourceMaps bool

	// Force recompiles every file, ignoring cached results.
	Force bool

	// Logger receives build logs. Default: slog.Default().
	Logger *slog.Logger

	// Metrics records compilations and cache lookups when set.
	Metrics *telemetry.Metrics

	// Publisher uploads outputs after a build when set.
	Publisher Publisher

	// OnProgress is called with progress updates.
	OnProgress func(step string)
}

// Builder compiles a directory of AST files.
type Builder struct {
	config   *config.Config
	options  Options
	compiler *compiler.Compiler
	cache    *Cache
	logger   *slog.Logger
}

// New creates a new builder.
func New(cfg *config.Config, options Options) *Builder {
	if options.Workers == 0 {
		options.Workers = cfg.Build.Workers
	}
	if options.Workers <= 0 {
		options.Workers = runtime.GOMAXPROCS(0)
	}
	if !options.SourceMaps && cfg.Build.SourceMaps {
		options.SourceMaps = true
	}

	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var copts []compiler.Option
	if options.Metrics != nil {
		copts = append(copts, compiler.WithObserver(options.Metrics))
	}

	b := &Builder{
		config:   cfg,
		options:  options,
		compiler: compiler.New(copts...),
		logger:   logger.With("component", "build"),
	}
	if dir := cfg.CachePath(); dir != "" {
		b.cache = NewCache(dir)
	}
	return b
}

// Build compiles every input file and publishes the outputs when a
// publisher is configured. File failures are reported in the result; the
// returned error is set only when the build could not run.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	start := time.Now()

	inputs, err := b.Inputs()
	if err != nil {
		return nil, err
	}
	b.progress(fmt.Sprintf("Compiling %d modules...", len(inputs)))

	files := make([]FileResult, len(inputs))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < min(b.options.Workers, len(inputs)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				files[i] = b.BuildFile(ctx, inputs[i])
			}
		}()
	}

feed:
	for i := range inputs {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &Result{Files: files}
	for _, f := range files {
		switch {
		case f.Err != nil:
			result.Failed++
		case f.Cached:
			result.Cached++
		default:
			result.Compiled++
		}
		result.Diagnostics += len(f.Diagnostics)
	}

	if b.options.Publisher != nil {
		b.progress("Publishing modules...")
		b.publish(ctx, result)
	}

	result.Duration = time.Since(start)
	b.logger.Info("build finished",
		"files", len(files),
		"compiled", result.Compiled,
		"cached", result.Cached,
		"failed", result.Failed,
		"published", result.Published,
		"duration", result.Duration,
	)
	return result, nil
}

// Inputs lists the AST files under the input directory in lexical order.
func (b *Builder) Inputs() ([]string, error) {
	root := b.config.InputPath()
	if _, err := os.Stat(root); err != nil {
		return nil, diag.New("E140").
			WithDetail("Input directory " + root + " does not exist").
			WithSuggestion("Set build.input in jsxc.json").
			Wrap(err)
	}

	var inputs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), InputSuffix) {
			inputs = append(inputs, path)
		}
		return nil
	})
	if err != nil {
		return nil, diag.New("E140").Wrap(err)
	}
	return inputs, nil
}

// BuildFile compiles one AST file and writes its module.
func (b *Builder) BuildFile(ctx context.Context, path string) FileResult {
	rel, err := filepath.Rel(b.config.InputPath(), path)
	if err != nil {
		rel = filepath.Base(path)
	}
	fr := FileResult{Input: rel, Output: b.OutputFor(rel)}
	log := b.logger.With("file", rel)

	data, err := os.ReadFile(path)
	if err != nil {
		fr.Err = diag.New("E140").WithDetail(path).Wrap(err)
		return fr
	}

	opts := b.compilerOptions(rel)
	var key string
	if b.cache != nil {
		key = CacheKey(data, opts)
		if !b.options.Force {
			res, ok := b.cache.Get(key)
			b.options.Metrics.CacheLookup(ok)
			if ok {
				log.Debug("cache hit")
				fr.Cached = true
				fr.Diagnostics = res.Diagnostics
				fr.Err = b.write(fr.Output, res)
				return fr
			}
		}
	}

	mod, err := jsx.Unmarshal(data)
	if err != nil {
		fr.Err = diag.FromError(err, "E142")
		log.Error("decode failed", "error", err)
		return fr
	}
	if mod.Filename == "" {
		mod.Filename = rel
	}

	res, err := b.compiler.Compile(ctx, mod, opts)
	if err != nil {
		fr.Err = err
		log.Error("compile failed", "error", err)
		return fr
	}
	fr.Diagnostics = res.Diagnostics
	for _, d := range res.Diagnostics {
		log.Warn(d.Message, "code", d.Code, "location", d.Location.String())
	}

	if err := b.write(fr.Output, res); err != nil {
		fr.Err = err
		return fr
	}
	if b.cache != nil {
		if err := b.cache.Put(key, res); err != nil {
			log.Warn("cache write failed", "error", err)
		}
	}
	log.Debug("compiled", "templates", len(res.Templates), "helpers", len(res.Helpers))
	return fr
}

// OutputFor maps an input path relative to the input directory to its
// module path under the output directory.
func (b *Builder) OutputFor(rel string) string {
	name := strings.TrimSuffix(rel, InputSuffix) + ".js"
	return filepath.Join(b.config.OutputPath(), name)
}

func (b *Builder) compilerOptions(rel string) compiler.Options {
	opts := b.config.Compiler
	if opts.Filename == "" {
		opts.Filename = strings.TrimSuffix(filepath.ToSlash(rel), ".json")
	}
	opts.EmitSourceMap = b.options.SourceMaps
	return opts
}

// write stores the module and, when present, its source map next to it.
func (b *Builder) write(out string, res *compiler.Result) error {
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return diag.New("E143").Wrap(err)
	}

	code := res.Code
	if res.SourceMap != "" {
		if code != "" && !strings.HasSuffix(code, "\n") {
			code += "\n"
		}
		code += "//# sourceMappingURL=" + filepath.Base(out) + ".map\n"
		if err := os.WriteFile(out+".map", []byte(res.SourceMap), 0644); err != nil {
			return diag.New("E143").WithDetail(out + ".map").Wrap(err)
		}
	}
	if err := os.WriteFile(out, []byte(code), 0644); err != nil {
		return diag.New("E143").WithDetail(out).Wrap(err)
	}
	return nil
}

// publish uploads every successfully built module, and its source map when
// this build writes maps. A map left over from an earlier build is never
// uploaded. A module that fails to upload moves from the compiled or cached
// count to the failed count.
func (b *Builder) publish(ctx context.Context, result *Result) {
	outDir := b.config.OutputPath()
	for i := range result.Files {
		f := &result.Files[i]
		if f.Err != nil {
			continue
		}
		paths := []string{f.Output}
		if b.options.SourceMaps {
			paths = append(paths, f.Output+".map")
		}
		for _, p := range paths {
			err := b.upload(ctx, outDir, p)
			b.options.Metrics.Published(err)
			if err != nil {
				b.logger.Error("publish failed", "file", f.Input, "error", err)
				f.Err = err
				if f.Cached {
					result.Cached--
				} else {
					result.Compiled--
				}
				result.Failed++
				break
			}
			result.Published++
		}
	}
}

func (b *Builder) upload(ctx context.Context, outDir, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return diag.New("E143").Wrap(err)
	}
	rel, err := filepath.Rel(outDir, path)
	if err != nil {
		return diag.New("E143").Wrap(err)
	}
	contentType := "text/javascript; charset=utf-8"
	if strings.HasSuffix(path, ".map") {
		contentType = "application/json"
	}
	if err := b.options.Publisher.Publish(ctx, filepath.ToSlash(rel), data, contentType); err != nil {
		return diag.New("E143").WithDetail("publish " + rel).Wrap(err)
	}
	return nil
}

// progress reports build progress.
func (b *Builder) progress(step string) {
	if b.options.OnProgress != nil {
		b.options.OnProgress(step)
	}
}

// Clean removes the build output directory.
func (b *Builder) Clean() error {
	return os.RemoveAll(b.config.OutputPath())
}
