package pipeline

import (
	"errors"
	"fmt"
	"slices"

	"github.com/tailored-agentic-units/pipeline/config"
	"github.com/tailored-agentic-units/pipeline/observability"
	"github.com/tailored-agentic-units/pipeline/schema"
)

// Pipeline is an ordered sequence of runnables, a pool of providers, and
// the dependency and output schemas of the scope they execute in. A
// Pipeline nested inside another acts as a branch.
//
// Builder methods return the receiver so declarations chain. Declaration
// errors are collected and reported by Err, and by Run before anything
// executes.
type Pipeline struct {
	name       string
	observer   observability.Observer
	cacheSize  int
	batchLimit int
	tracing    bool

	nodes     []Runnable
	providers []Runnable
	depends   *schema.Schema
	returns   *schema.Schema

	// open is the innermost If/ElseIf node still accepting ElseIf or Else.
	open *Dispatch
	errs []error
}

// Option configures a Pipeline at construction.
type Option func(*Pipeline)

// WithObserver sets the observer receiving run events.
func WithObserver(observer observability.Observer) Option {
	return func(p *Pipeline) {
		if observer != nil {
			p.observer = observer
		}
	}
}

// WithCacheSize sets the memo table size given to cacheable functions
// registered without an explicit CacheSize.
func WithCacheSize(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.cacheSize = n
		}
	}
}

// WithBatchLimit caps concurrent runs in RunBatch.
func WithBatchLimit(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.batchLimit = n
		}
	}
}

// WithTracing enables or disables OTel spans for runs.
func WithTracing(enabled bool) Option {
	return func(p *Pipeline) {
		p.tracing = enabled
	}
}

// New creates an empty pipeline. Events are discarded unless WithObserver
// is given; other settings follow config.DefaultPipelineConfig.
func New(name string, opts ...Option) *Pipeline {
	cfg := config.DefaultPipelineConfig(name)
	p := newPipeline(cfg, observability.NoOpObserver{})
	for _, opt := range opts {
		opt(p)
	}
	if name == "" {
		p.fail("pipeline name is empty")
	}
	return p
}

// FromConfig creates an empty pipeline from validated configuration,
// resolving the observer by name through the observability registry. opts
// are applied after the configured settings.
func FromConfig(cfg config.PipelineConfig, opts ...Option) (*Pipeline, error) {
	configured, err := ConfigOptions(cfg)
	if err != nil {
		return nil, err
	}
	return New(cfg.Name, append(configured, opts...)...), nil
}

// ConfigOptions translates validated configuration into construction
// options, for pipelines named elsewhere such as in definition files.
func ConfigOptions(cfg config.PipelineConfig) ([]Option, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	observer, err := observability.GetObserver(cfg.Observer)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve observer: %w", err)
	}

	return []Option{
		WithObserver(observer),
		WithCacheSize(cfg.CacheSize),
		WithBatchLimit(cfg.Concurrency()),
		WithTracing(cfg.Tracing()),
	}, nil
}

func newPipeline(cfg config.PipelineConfig, observer observability.Observer) *Pipeline {
	return &Pipeline{
		name:       cfg.Name,
		observer:   observer,
		cacheSize:  cfg.CacheSize,
		batchLimit: cfg.Concurrency(),
		tracing:    cfg.Tracing(),
	}
}

// child creates a nested pipeline sharing this pipeline's settings.
func (p *Pipeline) child(name string) *Pipeline {
	return &Pipeline{
		name:       name,
		observer:   p.observer,
		cacheSize:  p.cacheSize,
		batchLimit: p.batchLimit,
		tracing:    p.tracing,
	}
}

// arm builds a nested pipeline with build, recording an error if build is nil.
func (p *Pipeline) arm(name string, build func(*Pipeline)) *Pipeline {
	b := p.child(name)
	if build == nil {
		p.fail("%s has no builder", name)
		return b
	}
	build(b)
	return b
}

func (p *Pipeline) fail(format string, args ...any) {
	p.errs = append(p.errs, configError(p.name, format, args...))
}

func (p *Pipeline) adopt(r Runnable) {
	if f, ok := r.(*Function); ok {
		f.resize(p.cacheSize)
	}
}

// Stage appends r to the sequence.
func (p *Pipeline) Stage(r Runnable) *Pipeline {
	p.open = nil
	if r == nil {
		p.fail("stage %d is nil", len(p.nodes))
		return p
	}
	p.adopt(r)
	p.nodes = append(p.nodes, r)
	return p
}

// Provide registers r as a provider. When several providers declare the
// same output, the first registered is used.
func (p *Pipeline) Provide(r Runnable) *Pipeline {
	p.open = nil
	if r == nil {
		p.fail("provider %d is nil", len(p.providers))
		return p
	}
	p.adopt(r)
	p.providers = append(p.providers, r)
	return p
}

// Branch appends a nested pipeline built by build.
func (p *Pipeline) Branch(name string, build func(*Pipeline)) *Pipeline {
	return p.Stage(p.arm(name, build))
}

// Depends pins the dependency schema validated at the start of each run.
func (p *Pipeline) Depends(s schema.Schema) *Pipeline {
	p.open = nil
	if err := s.Err(); err != nil {
		p.errs = append(p.errs, annotate(p.name, err))
	}
	p.depends = &s
	return p
}

// Returns pins the output schema the run result is projected onto.
func (p *Pipeline) Returns(s schema.Schema) *Pipeline {
	p.open = nil
	if err := s.Err(); err != nil {
		p.errs = append(p.errs, annotate(p.name, err))
	}
	p.returns = &s
	return p
}

func (p *Pipeline) Name() string {
	return p.name
}

// Inputs returns the pinned dependency schema or, when none is pinned, the
// inputs of the first runnable in the sequence that no local provider
// supplies.
func (p *Pipeline) Inputs() schema.Schema {
	if p.depends != nil {
		return *p.depends
	}
	if len(p.nodes) == 0 {
		return schema.Empty()
	}

	var fields []schema.Field
	for _, f := range p.nodes[0].Inputs().Fields() {
		if !p.provides(f.Name) {
			fields = append(fields, f)
		}
	}
	return schema.New(fields...)
}

// Outputs returns the pinned output schema or, when none is pinned, the
// outputs of the last runnable in the sequence.
func (p *Pipeline) Outputs() schema.Schema {
	if p.returns != nil {
		return *p.returns
	}
	if len(p.nodes) == 0 {
		return schema.Empty()
	}
	return p.nodes[len(p.nodes)-1].Outputs()
}

// Cacheable is false: pipelines are not memoized as a whole.
func (p *Pipeline) Cacheable() bool {
	return false
}

// ClearCache clears every memo table reachable from this pipeline.
func (p *Pipeline) ClearCache() {
	for _, r := range p.providers {
		r.ClearCache()
	}
	for _, r := range p.nodes {
		r.ClearCache()
	}
}

// Nodes returns the sequence in order.
func (p *Pipeline) Nodes() []Runnable {
	return slices.Clone(p.nodes)
}

// Providers returns the providers in registration order.
func (p *Pipeline) Providers() []Runnable {
	return slices.Clone(p.providers)
}

// Err reports every declaration error in this pipeline and its nested
// runnables.
func (p *Pipeline) Err() error {
	return p.validate()
}

func (p *Pipeline) validate() error {
	errs := slices.Clone(p.errs)
	for _, r := range p.providers {
		errs = append(errs, r.validate())
	}
	for _, r := range p.nodes {
		errs = append(errs, r.validate())
	}
	return errors.Join(errs...)
}

func (p *Pipeline) provides(field string) bool {
	for _, r := range p.providers {
		if r.Outputs().Has(field) {
			return true
		}
	}
	return false
}
