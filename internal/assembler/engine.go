package assembler

import (
	"context"
	"fmt"
	"reflect"

	"github.com/hashicorp/go-multierror"
	"go.opentelemetry.io/otel/trace"

	"field-assembler/internal/cache"
	"field-assembler/internal/config"
	"field-assembler/internal/container"
	"field-assembler/internal/executor"
	"field-assembler/internal/log"
	"field-assembler/internal/mapping"
	"field-assembler/internal/operation"
	"field-assembler/internal/property"
)

// Engine owns every component needed to execute operations.
type Engine struct {
	*executor.Template

	cfg      config.Config
	caches   *cache.Manager
	registry *container.Registry
	catalog  *operation.Catalog
	executor executor.Executor
	file     *mapping.File
}

type options struct {
	types      *mapping.TypeRegistry
	parsers    []operation.Parser
	accessor   property.Accessor
	tracer     trace.Tracer
	processors []container.Processor
}

// Option configures an Engine.
type Option func(*options)

// WithTypes binds the type names used by descriptor files.
func WithTypes(types *mapping.TypeRegistry) Option {
	return func(o *options) { o.types = types }
}

// WithParser adds a parser consulted after the descriptor files.
func WithParser(p operation.Parser) Option {
	return func(o *options) {
		if p != nil {
			o.parsers = append(o.parsers, p)
		}
	}
}

// WithAccessor sets the property accessor of the executor.
func WithAccessor(acc property.Accessor) Option {
	return func(o *options) { o.accessor = acc }
}

// WithTracer sets the tracer of the executor.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) { o.tracer = t }
}

// WithProcessors adds registry lifecycle processors. They run before the
// cache processor.
func WithProcessors(ps ...container.Processor) Option {
	return func(o *options) { o.processors = append(o.processors, ps...) }
}

// New builds an engine from cfg. Descriptor files named by cfg are loaded,
// validated, and their constant containers registered.
func New(cfg config.Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	cacheCfg, err := cfg.Cache.ToCache()
	if err != nil {
		return nil, err
	}

	caches, err := cache.NewManager(cacheCfg, nil)
	if err != nil {
		return nil, err
	}

	processors := o.processors
	if cacheCfg.Policy != cache.PolicyNone && len(cfg.Cache.Namespaces) > 0 {
		processors = append(processors, container.CacheProcessor(caches, cfg.Cache.Namespaces...))
	}

	e := &Engine{
		cfg:      cfg,
		caches:   caches,
		registry: container.NewRegistry(processors...),
	}

	parsers := o.parsers

	if len(cfg.Descriptors) > 0 {
		f, err := mapping.LoadFiles(cfg.Descriptors...)
		if err != nil {
			return nil, err
		}

		p, err := mapping.NewParser(o.types, f)
		if err != nil {
			return nil, err
		}

		for _, c := range mapping.Containers(f) {
			e.registry.Register(c)
		}

		e.file = f
		parsers = append([]operation.Parser{p}, parsers...)
	}

	e.catalog = operation.NewCatalog(firstOf(parsers))

	policy, err := cfg.Executor.Policy()
	if err != nil {
		return nil, err
	}

	execOpts := []executor.Option{
		executor.WithAccessor(o.accessor),
		executor.WithConversionPolicy(policy),
		executor.WithParallelism(cfg.Executor.Parallelism),
	}
	if o.tracer != nil {
		execOpts = append(execOpts, executor.WithTracer(o.tracer))
	}

	if cfg.Executor.Ordered {
		e.executor = executor.NewOrdered(e.registry, execOpts...)
	} else {
		e.executor = executor.NewUnordered(e.registry, execOpts...)
	}

	e.Template = executor.NewTemplate(e.catalog, e.executor)

	log.Info(log.CatConfig, "engine ready", "ordered", cfg.Executor.Ordered,
		"descriptors", len(cfg.Descriptors), "namespaces", len(e.registry.Namespaces()))

	return e, nil
}

// firstOf returns a parser yielding the first non-empty result of parsers.
func firstOf(parsers []operation.Parser) operation.Parser {
	switch len(parsers) {
	case 0:
		return nil
	case 1:
		return parsers[0]
	}

	return operation.ParserFunc(func(t reflect.Type, c *operation.Catalog) (*operation.BeanOperations, error) {
		for _, p := range parsers {
			ops, err := p.Parse(t, c)
			if err != nil {
				return nil, err
			}

			if !ops.IsEmpty() {
				return ops, nil
			}
		}

		return operation.Empty(t), nil
	})
}

// Config returns the configuration the engine was built from.
func (e *Engine) Config() config.Config { return e.cfg }

// Registry returns the container registry.
func (e *Engine) Registry() *container.Registry { return e.registry }

// Catalog returns the operation catalog.
func (e *Engine) Catalog() *operation.Catalog { return e.catalog }

// Executor returns the configured executor.
func (e *Engine) Executor() executor.Executor { return e.executor }

// Caches returns the cache manager of cached namespaces.
func (e *Engine) Caches() *cache.Manager { return e.caches }

// Descriptors returns the merged descriptor files, or nil when none were loaded.
func (e *Engine) Descriptors() *mapping.File { return e.file }

// Register registers a container.
func (e *Engine) Register(c container.Container) *container.Definition {
	return e.registry.Register(c)
}

// RegisterFactory registers a lazily created container.
func (e *Engine) RegisterFactory(namespace string, f container.Factory) *container.Definition {
	return e.registry.RegisterFactory(namespace, f)
}

// Init realizes every registered container, so factory and Init errors
// surface before the first execution.
func (e *Engine) Init(ctx context.Context) error {
	var result *multierror.Error

	for _, ns := range e.registry.Namespaces() {
		if _, err := e.registry.Container(ctx, ns); err != nil {
			result = multierror.Append(result, fmt.Errorf("init %q: %w", ns, err))
		}
	}

	return result.ErrorOrNil()
}

// Destroy destroys every container and drops every cache.
func (e *Engine) Destroy() error {
	err := e.registry.Destroy()
	e.caches.Clear()

	if err != nil {
		return fmt.Errorf("destroy engine: %w", err)
	}

	return nil
}
