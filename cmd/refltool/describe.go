package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/EchoTools/evrReflect/pkg/jenhash"
	"github.com/EchoTools/evrReflect/pkg/refl"
	"github.com/EchoTools/evrReflect/pkg/refldb"
)

func newHashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash <name>...",
		Short: "Print the hash of each name",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range args {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", jenhash.Sum(name), name)
			}
		},
	}
}

func (a *app) classesCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "classes",
		Short: "List the compiled-in classes",
		Run: func(cmd *cobra.Command, args []string) {
			printClasses(cmd.OutOrStdout(), refldb.FromRegistry(), verbose)
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "list members")
	return cmd
}

func (a *app) enumsCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "enums",
		Short: "List the compiled-in enums",
		Run: func(cmd *cobra.Command, args []string) {
			printEnums(cmd.OutOrStdout(), refldb.FromRegistry(), verbose)
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "list enumerators")
	return cmd
}

func printClasses(w io.Writer, db *refldb.DB, verbose bool) {
	for _, c := range db.Classes {
		kind := "class"
		if c.IsBitField() {
			kind = "bitfield"
		}
		fmt.Fprintf(w, "%s  %-8s %s (%d bytes, %d members)\n", c.Hash, kind, c.Name, c.Size, c.NumMembers())
		if !verbose {
			continue
		}
		if c.Base != 0 {
			fmt.Fprintf(w, "    : %s\n", typeName(db, c.Base))
		}
		for i, d := range c.Members {
			line := fmt.Sprintf("    %-20s %s", c.MemberName(i), d)
			if h := linkedType(d); h != 0 {
				line += " " + typeName(db, h)
			}
			if alias := c.MemberAlias(i); alias != "" {
				line += fmt.Sprintf(" (alias %s)", alias)
			}
			fmt.Fprintln(w, line)
		}
	}
}

func printEnums(w io.Writer, db *refldb.DB, verbose bool) {
	for _, e := range db.Enums {
		fmt.Fprintf(w, "%s  enum     %s (%d bytes, %d values)\n", e.Hash, e.Name, e.Size, len(e.Names))
		if !verbose {
			continue
		}
		for i, name := range e.Names {
			fmt.Fprintf(w, "    %-20s %d\n", name, e.Values[i])
		}
	}
}

// linkedType returns the class or enum hash a member refers to, or zero.
func linkedType(d refl.TypeDesc) jenhash.Hash {
	if d.IsArray() && d.Container != refl.ContainerVector {
		d = d.Elem()
	}
	switch d.Kind {
	case refl.KindClass, refl.KindEnum, refl.KindEnumFlags, refl.KindBitFieldClass:
		return d.TypeHash()
	case refl.KindBitFieldMember:
		if k := d.BitKind(); k == refl.KindEnum || k == refl.KindEnumFlags {
			return d.TypeHash()
		}
	}
	return 0
}

func typeName(db *refldb.DB, h jenhash.Hash) string {
	if name, ok := db.Name(h); ok {
		return name
	}
	return h.String()
}
