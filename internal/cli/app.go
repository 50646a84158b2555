package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/contextref/internal/logging"
	"github.com/mesh-intelligence/contextref/internal/paths"
	"github.com/mesh-intelligence/contextref/pkg/contextref"
	"github.com/mesh-intelligence/contextref/pkg/model"
	"github.com/mesh-intelligence/contextref/pkg/store"
	"github.com/mesh-intelligence/contextref/pkg/types"
)

// app holds the state one invocation builds: resolved config, the open
// store, and the model registry with its installed plugins.
type app struct {
	flags   rootFlags
	cfg     fileConfig
	dataDir string
	log     *zap.SugaredLogger

	store    types.Store
	registry *model.Registry
	repo     *model.Repository
	plugins  map[string]*contextref.Plugin
}

// loadSettings resolves directories and reads config.yaml.
func (a *app) loadSettings() error {
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}
	cfg, err := loadConfig(configDir)
	if err != nil {
		return err
	}
	dataDir, err := paths.ResolveDataDir(a.flags.dataDir, cfg.DataDir)
	if err != nil {
		return fmt.Errorf("resolve data dir: %w", err)
	}

	logging.Init(cfg.LogLevel, logging.Format(cfg.LogFormat))
	a.cfg = cfg
	a.dataDir = dataDir
	a.log = logging.For(logging.ComponentCLI)
	return nil
}

// open loads settings, opens the store and registers every configured
// model.
func (a *app) open(ctx context.Context) error {
	if err := a.loadSettings(); err != nil {
		return err
	}

	s, err := store.Open(ctx, types.Config{
		Backend:       a.cfg.Backend,
		DataDir:       a.dataDir,
		MongoURI:      a.cfg.MongoURI,
		MongoDatabase: a.cfg.MongoDatabase,
	}, logging.For(logging.ComponentStore))
	if err != nil {
		return err
	}
	a.store = s

	reg := model.NewRegistry()
	a.plugins = make(map[string]*contextref.Plugin)
	for _, m := range a.cfg.Models {
		schema := model.NewSchema(m.Name, m.Fields...)
		if m.Context != nil {
			p, err := contextref.Install(schema, contextref.Deps{
				Registry: reg,
				Patcher:  s,
				Logger:   logging.For(logging.ComponentRefSync),
			}, *m.Context)
			if err != nil {
				return fmt.Errorf("model %s: %w", m.Name, err)
			}
			a.plugins[m.Name] = p
		}
		if err := reg.Register(schema); err != nil {
			return fmt.Errorf("model %s: %w", m.Name, err)
		}
	}
	reg.Seal()

	a.registry = reg
	a.repo = model.NewRepository(reg, s, model.WithLogger(logging.For(logging.ComponentRepository)))
	a.log.Debugw("opened", "backend", a.cfg.Backend, "data_dir", a.dataDir, "models", reg.Names())
	return nil
}

func (a *app) close(ctx context.Context) error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close(ctx)
	a.store = nil
	return err
}

// contextKeys reports which assignment keys of the named model address the
// context.
func (a *app) contextKeys(ctx context.Context, name string) func(string) bool {
	p := a.plugins[name]
	return func(key string) bool {
		if key == types.FieldContextType || key == types.FieldContextID {
			return true
		}
		return p != nil && p.IsContextKey(ctx, key)
	}
}

// parseAssignments turns key=value arguments into fields. Values that parse
// as JSON keep their JSON type; everything else is a string. Keys for which
// raw reports true always keep the string as written, so ids such as 42
// still match the string ids the store holds.
func parseAssignments(args []string, raw func(string) bool) (types.Fields, error) {
	out := types.Fields{}
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, usagef("invalid assignment %q (expected key=value)", arg)
		}
		if raw != nil && raw(key) {
			out[key] = value
			continue
		}
		var parsed any
		if err := json.Unmarshal([]byte(value), &parsed); err != nil {
			parsed = value
		}
		out[key] = parsed
	}
	return out, nil
}
