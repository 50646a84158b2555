package contextref

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/contextref/internal/naming"
	"github.com/mesh-intelligence/contextref/internal/refsync"
	"github.com/mesh-intelligence/contextref/pkg/model"
	"github.com/mesh-intelligence/contextref/pkg/types"
)

// Hook names registered on the child schema.
const (
	HookSync  = "contextref.sync"
	HookCache = "contextref.cache"
)

// Metrics counts parent patches and move outcomes. Share one value across
// every Install in a process.
type Metrics = refsync.Metrics

// NewMetrics creates the counters and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return refsync.NewMetrics(reg)
}

// Deps are the host capabilities the plugin works against.
type Deps struct {
	// Registry lists model names. It is the default source of legal
	// context types and the candidate set for context queries.
	Registry types.CollectionRegistry

	// Patcher applies back-reference patches to parents. Required unless
	// reference updates are disabled.
	Patcher types.Patcher

	// Logger defaults to a no-op logger.
	Logger *zap.SugaredLogger

	// Metrics may be nil.
	Metrics *Metrics
}

// Plugin is the result of installing context references on one schema.
type Plugin struct {
	schema    *model.Schema
	opts      types.Options
	normalize naming.Normalizer
	validator *refsync.TypeValidator
	registry  types.CollectionRegistry
	binder    *refsync.Binder
	shortcuts map[string]Shortcut
	order     []string
}

// Install adds context_type and context_id to schema and wires validation,
// reference synchronization, serialization and shortcuts per opts. Call it
// before the schema is registered and before any document is loaded.
func Install(schema *model.Schema, deps Deps, opts types.Options) (*Plugin, error) {
	if schema == nil {
		return nil, fmt.Errorf("%w: nil schema", types.ErrInvalidOptions)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.Predicate == nil && len(opts.ContextTypes) == 0 && deps.Registry == nil {
		return nil, fmt.Errorf("%w: %s: no context types, predicate or registry", types.ErrInvalidOptions, schema.Name())
	}
	if !opts.DisableRefUpdate && deps.Patcher == nil {
		return nil, fmt.Errorf("%w: %s: reference updates need a patcher", types.ErrInvalidOptions, schema.Name())
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	p := &Plugin{
		schema:    schema,
		opts:      opts,
		normalize: naming.For(opts.CamelCase),
		validator: refsync.NewTypeValidator(opts, deps.Registry),
		registry:  deps.Registry,
		shortcuts: make(map[string]Shortcut),
	}

	schema.Declare(types.FieldContextType, types.FieldContextID)
	if opts.Required {
		schema.Require(types.FieldContextType, types.FieldContextID)
	}
	schema.Validate(types.FieldContextType, p.validateType, types.MessageInvalidContextType)
	schema.Check(checkPair)

	if !opts.DisableRefUpdate {
		field := naming.BackReferenceField(p.normalize, schema.Name())
		sync := refsync.NewSynchronizer(deps.Patcher, refsync.WithLogger(log), refsync.WithMetrics(deps.Metrics))
		p.binder = refsync.NewBinder(field, sync, log, deps.Metrics)
		p.bind()
	}
	if !opts.DisableSerialization {
		schema.AddSerializer(p.serialize)
	}
	if !opts.DisableShortcuts {
		p.buildShortcuts()
	}

	log.Debugw("context references installed",
		"model", schema.Name(), "back_reference_field", p.BackReferenceField(),
		"shortcuts", p.order, "required", opts.Required)
	return p, nil
}

func (p *Plugin) validateType(ctx context.Context, value any, doc *model.Document) bool {
	s, _ := value.(string)
	return p.validator.Validate(ctx, s, doc)
}

// checkPair rejects a context with only one of its two fields set. It runs
// before any hook, so a half context never reaches the synchronizer.
func checkPair(_ context.Context, doc *model.Document) error {
	c := doc.Context()
	if !c.Partial() {
		return nil
	}
	missing, present := types.FieldContextID, types.FieldContextType
	if c.Type == "" {
		missing, present = present, missing
	}
	return &types.ValidationError{
		Field:   missing,
		Message: fmt.Sprintf(types.MessageIncompleteContext, missing, present),
		Value:   doc.Get(present),
	}
}

// bind attaches the binder to the four lifecycle phases.
func (p *Plugin) bind() {
	b := p.binder
	p.schema.On(model.BeforePersist, HookSync, func(ctx context.Context, doc *model.Document) error {
		return b.BeforePersist(ctx, doc)
	})
	p.schema.On(model.AfterPersist, HookCache, func(ctx context.Context, doc *model.Document) error {
		return b.AfterPersist(ctx, doc)
	})
	p.schema.On(model.BeforeDelete, HookSync, func(ctx context.Context, doc *model.Document) error {
		return b.BeforeDelete(ctx, doc)
	})
	p.schema.On(model.AfterLoad, HookCache, func(ctx context.Context, doc *model.Document) error {
		return b.AfterLoad(ctx, doc)
	})
}

// Schema returns the schema the plugin was installed on.
func (p *Plugin) Schema() *model.Schema { return p.schema }

// Options returns the options the plugin was installed with.
func (p *Plugin) Options() types.Options { return p.opts }

// BackReferenceField returns the parent-side array holding this model's
// ids, or "" when reference updates are disabled.
func (p *Plugin) BackReferenceField() string {
	if p.binder == nil {
		return ""
	}
	return p.binder.Field()
}

// ValidType reports whether candidate is a legal context type for doc. doc
// may be nil.
func (p *Plugin) ValidType(ctx context.Context, candidate string, doc *model.Document) bool {
	if doc == nil {
		return p.validator.Validate(ctx, candidate, nil)
	}
	return p.validator.Validate(ctx, candidate, doc)
}
