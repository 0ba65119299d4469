package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cuemby/rolecfg/pkg/config"
	"github.com/cuemby/rolecfg/pkg/types"
	"github.com/spf13/cobra"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Render the configuration files of a service role",
	Long: `Configure reads a pipeline request and renders every output group it
lists under <installRoot>/<decompressPackageName>. Directories referenced by
path entries are created, and role post steps (such as the Ranger Admin
setup scripts) run once every file is written.`,
	Example: `  rolecfg configure -f zookeeper.yaml`,
	RunE:    runConfigure,
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Configure and start a service role",
	Long: `Start dispatches a service role command: role-specific preparation
(keytabs for kerberized Ranger Admin), configuration when the command
embeds a pipeline request, then the start and status runners.`,
	Example: `  rolecfg start -f ranger-admin.yaml`,
	RunE:    runStart,
}

func init() {
	configureCmd.Flags().StringP("file", "f", "", "Pipeline request file (required)")
	configureCmd.MarkFlagRequired("file")

	startCmd.Flags().StringP("file", "f", "", "Service role command file (required)")
	startCmd.MarkFlagRequired("file")
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runConfigure(cmd *cobra.Command, args []string) error {
	filename, _ := cmd.Flags().GetString("file")

	a, err := newAgent(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	req, err := config.LoadPipelineRequest(filename)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	return report(a.pipeline.Configure(ctx, req))
}

func runStart(cmd *cobra.Command, args []string) error {
	filename, _ := cmd.Flags().GetString("file")

	a, err := newAgent(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	roleCmd, err := config.LoadCommand(filename)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	return report(a.dispatcher.Dispatch(ctx, roleCmd))
}

// report prints a result and turns a failure into the command's error
func report(res types.Result) error {
	if res.Output != "" {
		fmt.Println(res.Output)
	}
	if !res.Success {
		return fmt.Errorf("%s", res.Error)
	}
	return nil
}
