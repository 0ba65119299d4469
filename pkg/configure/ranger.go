package configure

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/cuemby/rolecfg/pkg/shell"
	"github.com/cuemby/rolecfg/pkg/types"
	"github.com/rs/zerolog"
)

// RangerAdminRole needs its admin setup script run after configuration
const RangerAdminRole = "RangerAdmin"

// RangerAdminSetup runs setup.sh and then set_globals.sh from the package
// directory. Only setup.sh decides the outcome; set_globals.sh always runs
// and a failure there is logged.
func RangerAdminSetup(exec shell.Executor, installRoot string, timeout time.Duration) PostStep {
	return func(ctx context.Context, req *types.PipelineRequest, logger zerolog.Logger) error {
		pkgDir := filepath.Join(installRoot, req.DecompressPackageName)

		logger.Info().Msg("start to execute ranger admin setup.sh")
		setup := exec.ExecWithStatus(ctx, pkgDir, []string{filepath.Join(pkgDir, "setup.sh")}, timeout, nil)

		globals := exec.ExecWithStatus(ctx, pkgDir, []string{filepath.Join(pkgDir, "set_globals.sh")}, timeout, &logger)
		if !globals.Success {
			logger.Warn().Err(globals.Err).Msg("ranger admin set_globals.sh failed")
		}

		if !setup.Success {
			err := setup.Err
			if err == nil {
				err = fmt.Errorf("%w: setup.sh exited with code %d", types.ErrProcess, setup.ExitCode)
			}
			logger.Error().Err(err).Msg("ranger admin setup failed")
			return fmt.Errorf("ranger admin setup failed: %w", err)
		}
		logger.Info().Msg("ranger admin setup success")
		return nil
	}
}
