package strategy

import (
	"context"
	"fmt"

	"github.com/cuemby/rolecfg/pkg/cache"
	"github.com/cuemby/rolecfg/pkg/events"
	"github.com/cuemby/rolecfg/pkg/kerberos"
	"github.com/cuemby/rolecfg/pkg/log"
	"github.com/cuemby/rolecfg/pkg/metrics"
	"github.com/cuemby/rolecfg/pkg/types"
)

// RangerAdminStrategy provisions the SPNEGO and admin keytabs of a
// kerberized Ranger Admin before handing over to next
type RangerAdminStrategy struct {
	keytabs kerberos.Provider
	cache   cache.Cache
	next    Strategy
	events  events.Publisher
}

// NewRangerAdminStrategy creates the Ranger Admin strategy
func NewRangerAdminStrategy(keytabs kerberos.Provider, c cache.Cache, next Strategy) *RangerAdminStrategy {
	return &RangerAdminStrategy{keytabs: keytabs, cache: c, next: next}
}

// WithEvents publishes the credentials stage
func (s *RangerAdminStrategy) WithEvents(p events.Publisher) *RangerAdminStrategy {
	s.events = p
	return s
}

func (s *RangerAdminStrategy) Handle(ctx context.Context, cmd *types.ServiceRoleCommand) types.Result {
	if cmd.EnableKerberos {
		if err := s.provisionKeytabs(ctx, cmd); err != nil {
			return types.Failure(err)
		}
		events.Emit(s.events, events.EventCredentialsFetched, cmd, "")
	} else {
		events.Emit(s.events, events.EventCredentialsSkipped, cmd, "")
	}
	return s.next.Handle(ctx, cmd)
}

func (s *RangerAdminStrategy) provisionKeytabs(ctx context.Context, cmd *types.ServiceRoleCommand) error {
	logger := log.WithRole(cmd.ServiceName, cmd.ServiceRoleName)
	logger.Info().Msg("start to get ranger keytab file")

	if s.keytabs == nil {
		return fmt.Errorf("kerberos is enabled but no keytab provider is configured")
	}

	var hostname string
	if s.cache != nil {
		hostname = s.cache.GetString(cache.KeyHostname)
	}
	if hostname == "" {
		return fmt.Errorf("hostname is not cached, cannot build keytab principals")
	}

	if err := s.keytabs.EnsureKeytabDir(); err != nil {
		return fmt.Errorf("failed to create keytab directory: %w", err)
	}

	wanted := []struct {
		principal string
		filename  string
	}{
		{principal: "HTTP/" + hostname, filename: kerberos.SpnegoKeytab},
		{principal: "rangeradmin/" + hostname, filename: kerberos.RangerAdminKeytab},
	}
	for _, kt := range wanted {
		if s.keytabs.Exists(kt.filename) {
			logger.Debug().Str("keytab", kt.filename).Msg("keytab already present")
			continue
		}
		err := s.keytabs.DownloadKeytab(ctx, kt.principal, kt.filename)
		metrics.KeytabDownloadsTotal.WithLabelValues(metrics.ResultLabel(err == nil)).Inc()
		if err != nil {
			return fmt.Errorf("failed to download keytab %s: %w", kt.filename, err)
		}
		logger.Info().Str("principal", kt.principal).Str("keytab", kt.filename).Msg("downloaded keytab")
	}
	return nil
}
