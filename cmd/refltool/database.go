package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/EchoTools/evrReflect/pkg/archive"
	"github.com/EchoTools/evrReflect/pkg/refldb"
)

func (a *app) exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <database>",
		Short: "Write the compiled-in descriptors to a database file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db := refldb.FromRegistry()
			level := archive.WithCompressionLevel(a.cfg.Archive.CompressionLevel)
			if err := db.WriteFile(args[0], level); err != nil {
				return err
			}
			a.log.Info("exported database",
				zap.String("path", args[0]),
				zap.Int("classes", len(db.Classes)),
				zap.Int("enums", len(db.Enums)))
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d classes and %d enums to %s\n", len(db.Classes), len(db.Enums), args[0])
			return nil
		},
	}
}

func (a *app) inspectCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "inspect <database>",
		Short: "List the descriptors stored in a database file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := refldb.ReadFile(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printClasses(out, db, verbose)
			printEnums(out, db, verbose)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "list members and enumerators")
	return cmd
}
