package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/EchoTools/evrReflect/pkg/archive"
	"github.com/EchoTools/evrReflect/pkg/jenhash"
	"github.com/EchoTools/evrReflect/pkg/refl"
	"github.com/EchoTools/evrReflect/pkg/reflbin"
	"github.com/EchoTools/evrReflect/pkg/refldb"
)

// record is a serialized instance as found on disk.
type record struct {
	data       []byte
	compressed bool
}

func readRecord(path string) (record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return record{}, err
	}
	if !archive.IsArchive(data) {
		return record{data: data}, nil
	}
	if data, err = archive.Decode(data); err != nil {
		return record{}, fmt.Errorf("decompress %s: %w", path, err)
	}
	return record{data: data, compressed: true}, nil
}

func (a *app) writeRecord(path string, rec record) error {
	data := rec.data
	if rec.compressed {
		var err error
		data, err = archive.EncodeBytes(data, archive.WithCompressionLevel(a.cfg.Archive.CompressionLevel))
		if err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// bind decodes rec into a new instance of the class named in its header.
func bind(rec record) (refl.Reflector, error) {
	head, err := reflbin.Split(rec.data)
	if err != nil {
		return refl.Reflector{}, err
	}
	r, err := refl.New(head.ClassHash)
	if err != nil {
		return refl.Reflector{}, err
	}
	if err := reflbin.Unmarshal(rec.data, r); err != nil {
		return refl.Reflector{}, err
	}
	return r, nil
}

// resolve walks a dotted member path such as "tint.colors[2].red". The
// index of the final segment is returned, -1 when absent.
func resolve(r refl.Reflector, path string) (refl.Member, int, error) {
	parts := strings.Split(path, ".")
	for i, part := range parts {
		name, index, err := splitIndex(part)
		if err != nil {
			return refl.Member{}, -1, err
		}
		m := r.MemberByName(name)
		if !m.IsValid() {
			return refl.Member{}, -1, fmt.Errorf("%s has no member %q", r.Class().Name, name)
		}
		if i == len(parts)-1 {
			return m, index, nil
		}
		if r, err = m.SubAt(max(index, 0)); err != nil {
			return refl.Member{}, -1, err
		}
	}
	return refl.Member{}, -1, fmt.Errorf("empty member path")
}

func splitIndex(part string) (string, int, error) {
	open := strings.IndexByte(part, '[')
	if open < 0 {
		return part, -1, nil
	}
	if !strings.HasSuffix(part, "]") {
		return "", -1, fmt.Errorf("malformed index in %q", part)
	}
	i, err := strconv.Atoi(part[open+1 : len(part)-1])
	if err != nil || i < 0 {
		return "", -1, fmt.Errorf("malformed index in %q", part)
	}
	return part[:open], i, nil
}

func (a *app) newCmd() *cobra.Command {
	var compress bool
	cmd := &cobra.Command{
		Use:   "new <class> <record>",
		Short: "Write a zeroed record of a compiled-in class",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := refl.New(jenhash.Sum(args[0]))
			if err != nil {
				return err
			}
			data, err := reflbin.Marshal(r)
			if err != nil {
				return err
			}
			return a.writeRecord(args[1], record{data: data, compressed: compress})
		},
	}
	cmd.Flags().BoolVarP(&compress, "compress", "z", false, "write a ZSTD archive")
	return cmd
}

func (a *app) dumpCmd() *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "dump <record>",
		Short: "Render a record member by member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath != "" {
				db, err := refldb.ReadFile(dbPath)
				if err != nil {
					return err
				}
				a.log.Debug("installed descriptors", zap.Int("count", db.Install()))
			}
			rec, err := readRecord(args[0])
			if err != nil {
				return err
			}
			return reflbin.Dump(cmd.OutOrStdout(), rec.data, reflbin.Registry{},
				reflbin.ShowHashes(a.cfg.Dump.ShowHashes),
				reflbin.WithNameStyle(color.New(color.FgCyan).SprintFunc()))
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "descriptor database for classes that are not compiled in")
	return cmd
}

func (a *app) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <record> <member>",
		Short: "Print one member of a record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := readRecord(args[0])
			if err != nil {
				return err
			}
			r, err := bind(rec)
			if err != nil {
				return err
			}
			m, index, err := resolve(r, args[1])
			if err != nil {
				return err
			}
			if index >= 0 {
				fmt.Fprintln(cmd.OutOrStdout(), m.GetAt(index))
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), m.Get())
			}
			return nil
		},
	}
}

func (a *app) setCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <record> <member> <value>",
		Short: "Assign one member of a record and rewrite it",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := readRecord(args[0])
			if err != nil {
				return err
			}
			r, err := bind(rec)
			if err != nil {
				return err
			}
			m, index, err := resolve(r, args[1])
			if err != nil {
				return err
			}
			if index >= 0 {
				err = m.SetAt(index, args[2])
			} else {
				err = m.Set(args[2])
			}
			if err != nil {
				if !stored(err) {
					return err
				}
				a.log.Warn("value adjusted", zap.String("member", args[1]), zap.Error(err))
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			}
			if rec.data, err = reflbin.Marshal(r); err != nil {
				return err
			}
			return a.writeRecord(args[0], rec)
		},
	}
}

// stored reports whether a failed assignment still wrote a value.
func stored(err error) bool {
	return errors.Is(err, refl.ErrOutOfRange) ||
		errors.Is(err, refl.ErrSignMismatch) ||
		errors.Is(err, refl.ErrShortInput)
}
