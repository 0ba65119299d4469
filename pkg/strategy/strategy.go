package strategy

import (
	"context"
	"fmt"
	"sync"

	"github.com/cuemby/rolecfg/pkg/cache"
	"github.com/cuemby/rolecfg/pkg/configure"
	"github.com/cuemby/rolecfg/pkg/events"
	"github.com/cuemby/rolecfg/pkg/kerberos"
	"github.com/cuemby/rolecfg/pkg/log"
	"github.com/cuemby/rolecfg/pkg/metrics"
	"github.com/cuemby/rolecfg/pkg/types"
)

// Strategy handles one service role command
type Strategy interface {
	Handle(ctx context.Context, cmd *types.ServiceRoleCommand) types.Result
}

// Func adapts a plain function to Strategy
type Func func(ctx context.Context, cmd *types.ServiceRoleCommand) types.Result

func (f Func) Handle(ctx context.Context, cmd *types.ServiceRoleCommand) types.Result {
	return f(ctx, cmd)
}

// Dispatcher routes a command to the strategy registered for its role,
// falling back to the default strategy for every other role.
type Dispatcher struct {
	mu         sync.RWMutex
	strategies map[string]Strategy
	fallback   Strategy
	events     events.Publisher
}

// NewDispatcher creates a dispatcher with no role overrides
func NewDispatcher(fallback Strategy) *Dispatcher {
	return &Dispatcher{
		strategies: make(map[string]Strategy),
		fallback:   fallback,
	}
}

// WithEvents publishes the received and done/failed stages of every command
func (d *Dispatcher) WithEvents(p events.Publisher) *Dispatcher {
	d.events = p
	return d
}

// Register sets the strategy for role, replacing any previous one
func (d *Dispatcher) Register(role string, s Strategy) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.strategies[role] = s
}

// Lookup returns the strategy that handles role
func (d *Dispatcher) Lookup(role string) Strategy {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if s, ok := d.strategies[role]; ok {
		return s
	}
	return d.fallback
}

// Dispatch handles cmd with the strategy selected by its role name
func (d *Dispatcher) Dispatch(ctx context.Context, cmd *types.ServiceRoleCommand) (result types.Result) {
	logger := log.WithRole(cmd.ServiceName, cmd.ServiceRoleName)

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("role command panicked")
			result = types.Result{Success: false, Error: fmt.Sprintf("role command panicked: %v", r)}
		}
		metrics.StrategyRunsTotal.WithLabelValues(cmd.ServiceRoleName, metrics.ResultLabel(result.Success)).Inc()
		if result.Success {
			events.Emit(d.events, events.EventDone, cmd, result.Output)
		} else {
			events.Emit(d.events, events.EventFailed, cmd, result.Error)
		}
	}()

	events.Emit(d.events, events.EventReceived, cmd, "")

	s := d.Lookup(cmd.ServiceRoleName)
	if s == nil {
		return types.Failure(fmt.Errorf("no strategy for role %s", cmd.ServiceRoleName))
	}

	result = s.Handle(ctx, cmd)
	if result.Success {
		logger.Info().Msg("role command succeeded")
	} else {
		logger.Error().Str("error", result.Error).Msg("role command failed")
	}
	return result
}

// Config holds the collaborators of the built-in strategies
type Config struct {
	Pipeline Configurer
	Starter  Starter
	Keytabs  kerberos.Provider
	Cache    cache.Cache
	Events   events.Publisher // optional
}

// New creates a dispatcher with the default strategy as fallback and the
// built-in role strategies registered
func New(cfg Config) *Dispatcher {
	def := NewDefaultStrategy(cfg.Pipeline, cfg.Starter).WithEvents(cfg.Events)
	d := NewDispatcher(def).WithEvents(cfg.Events)
	d.Register(configure.RangerAdminRole, NewRangerAdminStrategy(cfg.Keytabs, cfg.Cache, def).WithEvents(cfg.Events))
	return d
}
