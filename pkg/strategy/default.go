package strategy

import (
	"context"
	"fmt"

	"github.com/cuemby/rolecfg/pkg/events"
	"github.com/cuemby/rolecfg/pkg/log"
	"github.com/cuemby/rolecfg/pkg/types"
)

// Configurer runs the configuration pipeline for a role
type Configurer interface {
	Configure(ctx context.Context, req *types.PipelineRequest) types.Result
}

// DefaultStrategy configures the role when the command carries a pipeline
// request and then starts it.
type DefaultStrategy struct {
	pipeline Configurer
	starter  Starter
	events   events.Publisher
}

// NewDefaultStrategy creates the strategy used by roles without an override
func NewDefaultStrategy(pipeline Configurer, starter Starter) *DefaultStrategy {
	return &DefaultStrategy{pipeline: pipeline, starter: starter}
}

// WithEvents publishes the configured and started stages
func (s *DefaultStrategy) WithEvents(p events.Publisher) *DefaultStrategy {
	s.events = p
	return s
}

// Handle runs configure, then start. A failed configuration skips the start.
func (s *DefaultStrategy) Handle(ctx context.Context, cmd *types.ServiceRoleCommand) types.Result {
	logger := log.WithRole(cmd.ServiceName, cmd.ServiceRoleName)

	if cmd.Configure != nil {
		if s.pipeline == nil {
			return types.Failure(fmt.Errorf("no configuration pipeline for role %s", cmd.ServiceRoleName))
		}
		req := pipelineRequest(cmd)
		res := s.pipeline.Configure(ctx, req)
		if !res.Success {
			return res
		}
		logger.Info().Msg("configured service role")
		events.Emit(s.events, events.EventConfigured, cmd, res.Output)
	}

	if s.starter == nil {
		return types.Failure(fmt.Errorf("no starter for role %s", cmd.ServiceRoleName))
	}
	res := s.starter.Start(ctx, cmd, logger)
	if res.Success {
		events.Emit(s.events, events.EventStarted, cmd, res.Output)
	}
	return res
}

// pipelineRequest fills the request's identity fields from the command
// where the request leaves them blank
func pipelineRequest(cmd *types.ServiceRoleCommand) *types.PipelineRequest {
	req := cmd.Configure
	if req.ServiceName == "" {
		req.ServiceName = cmd.ServiceName
	}
	if req.ServiceRoleName == "" {
		req.ServiceRoleName = cmd.ServiceRoleName
	}
	if req.DecompressPackageName == "" {
		req.DecompressPackageName = cmd.DecompressPackageName
	}
	if req.RunAs == nil {
		req.RunAs = cmd.RunAs
	}
	return req
}
