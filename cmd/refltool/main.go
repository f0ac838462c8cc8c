// Command refltool inspects and edits reflected binary records.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/EchoTools/evrReflect/internal/config"
	"github.com/EchoTools/evrReflect/pkg/refl"
	_ "github.com/EchoTools/evrReflect/pkg/tint"
)

var (
	// Version information - will be set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// app carries the state shared by every subcommand.
type app struct {
	configPath string
	cfg        *config.Config
	log        *zap.Logger
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	logger, err := cfg.Logger()
	if err != nil {
		return err
	}
	a.cfg, a.log = cfg, logger
	refl.SetLogger(logger.Named("refl"))
	if !cfg.Dump.Color {
		color.NoColor = true
	}
	return nil
}

func (a *app) teardown(cmd *cobra.Command, args []string) error {
	if a.log != nil {
		a.log.Sync()
	}
	return nil
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:   "refltool",
		Short: "Inspect and edit reflected binary records",
		Long: `refltool reads records written by the reflection serializer, renders them
as text, edits individual members and exports descriptor databases.`,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
		SilenceUsage:       true,
	}
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ./refltool.yaml)")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newHashCmd())
	rootCmd.AddCommand(a.classesCmd())
	rootCmd.AddCommand(a.enumsCmd())
	rootCmd.AddCommand(a.exportCmd())
	rootCmd.AddCommand(a.inspectCmd())
	rootCmd.AddCommand(a.newCmd())
	rootCmd.AddCommand(a.dumpCmd())
	rootCmd.AddCommand(a.getCmd())
	rootCmd.AddCommand(a.setCmd())
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
