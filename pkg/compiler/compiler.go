package compiler

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/jsxc/internal/analysis"
	"github.com/vango-dev/jsxc/internal/dom"
	"github.com/vango-dev/jsxc/internal/emit"
	"github.com/vango-dev/jsxc/internal/hydration"
	"github.com/vango-dev/jsxc/internal/pass"
	"github.com/vango-dev/jsxc/internal/ssr"
	"github.com/vango-dev/jsxc/internal/template"
	"github.com/vango-dev/jsxc/pkg/diag"
	"github.com/vango-dev/jsxc/pkg/jsx"
)

const defaultTracerName = "jsxc"

// Result is the output of one compilation.
type Result struct {
	Code string `json:"code" msgpack:"code"`
	// SourceMap is a revision 3 source map, set when requested.
	SourceMap   string        `json:"sourceMap,omitempty" msgpack:"sourceMap"`
	Diagnostics []*diag.Error `json:"diagnostics" msgpack:"diagnostics"`
	Templates   []Template    `json:"templates,omitempty" msgpack:"templates"`
	// Helpers lists the imported runtime helpers, sorted by name.
	Helpers []string `json:"helpers,omitempty" msgpack:"helpers"`
}

// Template describes one deduplicated template of the module.
type Template struct {
	ID     string `json:"id" msgpack:"id"`
	Markup string `json:"markup" msgpack:"markup"`
	Uses   int    `json:"uses" msgpack:"uses"`
}

// Observer receives one call per compilation.
type Observer interface {
	ObserveCompile(mode string, elapsed time.Duration, diagnostics int, err error)
}

// Compiler compiles modules. It holds no per-call state and is safe for
// concurrent use.
type Compiler struct {
	tracer   trace.Tracer
	observer Observer
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithTracerName sets the tracer name used for compile spans.
func WithTracerName(name string) Option {
	return func(c *Compiler) {
		c.tracer = otel.Tracer(name)
	}
}

// WithObserver reports every compilation to o.
func WithObserver(o Observer) Option {
	return func(c *Compiler) {
		c.observer = o
	}
}

// New returns a compiler using the global tracer provider.
func New(opts ...Option) *Compiler {
	c := &Compiler{tracer: otel.Tracer(defaultTracerName)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile compiles mod with a default compiler.
func Compile(mod *jsx.Module, opts Options) (*Result, error) {
	return New().Compile(context.Background(), mod, opts)
}

// Compile compiles one module. Recoverable and structural diagnostics are
// returned in the result; a fatal one is returned as a *diag.Error and no
// code is produced. ctx only parents the tracing spans.
func (c *Compiler) Compile(ctx context.Context, mod *jsx.Module, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	file := opts.Filename
	if file == "" && mod != nil {
		file = mod.Filename
	}
	ctx, span := c.tracer.Start(ctx, "jsxc.compile", trace.WithAttributes(
		attribute.String("jsxc.file", file),
		attribute.String("jsxc.mode", string(opts.GenerateMode)),
		attribute.Bool("jsxc.hydratable", opts.Hydratable),
	))
	defer span.End()

	start := time.Now()
	res, err := c.compile(ctx, mod, opts)
	elapsed := time.Since(start)

	diagnostics := 0
	if res != nil {
		diagnostics = len(res.Diagnostics)
		span.SetAttributes(
			attribute.Int("jsxc.diagnostics", diagnostics),
			attribute.Int("jsxc.templates", len(res.Templates)),
		)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	if c.observer != nil {
		c.observer.ObserveCompile(string(opts.GenerateMode), elapsed, diagnostics, err)
	}
	return res, err
}

func (c *Compiler) compile(ctx context.Context, mod *jsx.Module, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if mod == nil {
		return nil, diag.New("J903").WithDetail("module is nil")
	}
	p := pass.New(opts.passConfig(mod.Filename, mod.Source))
	if err := mod.Validate(); err != nil {
		return nil, err
	}

	_, span := c.tracer.Start(ctx, "jsxc.classify")
	roots := analysis.New(p).Module(mod)
	span.End()

	var hyd *hydration.Coordinator
	if p.Hydratable {
		hyd = hydration.New(p)
		hyd.Plan(roots)
	}

	_, span = c.tracer.Start(ctx, "jsxc.generate")
	defer span.End()

	reg := template.NewRegistry()
	var root func(*analysis.Node) (string, error)
	if p.Mode == pass.ModeSSR {
		root = ssr.New(p, hyd).Root
	} else {
		root = dom.New(p, reg, hyd).Root
	}

	var maps *emit.SourceMap
	if opts.EmitSourceMap {
		maps = emit.NewSourceMap(outputName(p.Filename), p.Filename, mod.Source)
	}
	body := emit.NewWriter(maps)
	i := 0
	for _, seg := range mod.Body {
		switch s := seg.(type) {
		case *jsx.Code:
			writeCode(body, s)
		case *jsx.Root:
			code, err := root(roots[i])
			if err != nil {
				return nil, err
			}
			i++
			at := s.Node.Span().Start
			body.Map(at.Line, at.Column)
			body.Raw(code)
		}
	}
	if hyd != nil {
		if err := hyd.Done(); err != nil {
			return nil, err
		}
	}

	head := emit.NewWriter(nil)
	descriptors := reg.Descriptors()
	events := p.Delegated()
	if len(descriptors) > 0 {
		p.Use(pass.HelperTemplate)
	}
	if len(events) > 0 {
		p.Use(pass.HelperDelegateEvents)
	}
	helpers := p.Helpers()
	if len(helpers) > 0 {
		head.Line("import { %s } from %s;", strings.Join(helpers, ", "), emit.Quote(p.Runtime))
		head.Line("")
	}
	for _, d := range descriptors {
		flag := ""
		if d.SVG {
			flag = ", true"
		}
		head.Line("const %s = /*#__PURE__*/%s(`%s`%s);", d.ID, pass.HelperTemplate, emit.TemplateText(d.Markup), flag)
	}
	if len(descriptors) > 0 {
		head.Line("")
	}

	code := head.String() + body.String()
	if len(events) > 0 {
		if !strings.HasSuffix(code, "\n") {
			code += "\n"
		}
		quoted := make([]string, len(events))
		for i, ev := range events {
			quoted[i] = emit.Quote(ev)
		}
		code += fmt.Sprintf("\n%s([%s]);\n", pass.HelperDelegateEvents, strings.Join(quoted, ", "))
	}

	res := &Result{
		Code:        code,
		Diagnostics: p.Diagnostics(),
		Helpers:     helpers,
	}
	if res.Diagnostics == nil {
		res.Diagnostics = []*diag.Error{}
	}
	for _, d := range descriptors {
		res.Templates = append(res.Templates, Template{ID: d.ID, Markup: d.Markup, Uses: d.Uses})
	}
	if maps != nil {
		line, _ := head.Pos()
		maps.Shift(line)
		sm, err := maps.JSON()
		if err != nil {
			return nil, diag.New("E143").Wrap(err)
		}
		res.SourceMap = sm
	}
	return res, nil
}

// writeCode copies a host-language segment, mapping the start of every
// line back to the source.
func writeCode(w *emit.Writer, c *jsx.Code) {
	line, col := c.Loc.Start.Line, c.Loc.Start.Column
	for i, part := range strings.Split(c.Text, "\n") {
		if i > 0 {
			w.Raw("\n")
			line++
			col = 0
		}
		if part != "" {
			w.Map(line, col)
			w.Raw(part)
		}
	}
}

func outputName(filename string) string {
	if filename == "" {
		return ""
	}
	base := filepath.Base(filename)
	for _, ext := range []string{".jsx.json", ".json", ".tsx", ".jsx"} {
		if strings.HasSuffix(base, ext) {
			return strings.TrimSuffix(base, ext) + ".js"
		}
	}
	return base + ".js"
}
