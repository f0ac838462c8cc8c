// Package refldb stores class and enum descriptors in a database file so
// tools can inspect records without the Go types that produced them.
package refldb

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/exp/slices"

	"github.com/EchoTools/evrReflect/pkg/archive"
	"github.com/EchoTools/evrReflect/pkg/jenhash"
	"github.com/EchoTools/evrReflect/pkg/refl"
)

// Magic identifies a descriptor database ("RFDB").
const Magic uint32 = 0x42444652

// Version is the database layout written by this package.
const Version uint32 = 3001

var (
	ErrInvalidMagic = errors.New("invalid database magic")
	ErrVersion      = errors.New("unsupported database version")
)

// DB is a set of class and enum descriptors ordered by hash.
type DB struct {
	Classes []*refl.Class
	Enums   []*refl.Enum

	classes map[jenhash.Hash]*refl.Class
	enums   map[jenhash.Hash]*refl.Enum
}

// New builds a database from descriptors. A later descriptor replaces an
// earlier one with the same hash.
func New(classes []*refl.Class, enums []*refl.Enum) *DB {
	db := &DB{
		classes: make(map[jenhash.Hash]*refl.Class, len(classes)),
		enums:   make(map[jenhash.Hash]*refl.Enum, len(enums)),
	}
	for _, c := range classes {
		db.classes[c.Hash] = c
	}
	for _, e := range enums {
		db.enums[e.Hash] = e
	}
	for _, c := range db.classes {
		db.Classes = append(db.Classes, c)
	}
	for _, e := range db.enums {
		db.Enums = append(db.Enums, e)
	}
	slices.SortFunc(db.Classes, func(a, b *refl.Class) bool { return a.Hash < b.Hash })
	slices.SortFunc(db.Enums, func(a, b *refl.Enum) bool { return a.Hash < b.Hash })
	return db
}

// FromRegistry snapshots every registered descriptor.
func FromRegistry() *DB {
	return New(refl.Classes(), refl.Enums())
}

// LookupClass returns the class stored under h.
func (db *DB) LookupClass(h jenhash.Hash) (*refl.Class, bool) {
	c, ok := db.classes[h]
	return c, ok
}

// LookupEnum returns the enum stored under h.
func (db *DB) LookupEnum(h jenhash.Hash) (*refl.Enum, bool) {
	e, ok := db.enums[h]
	return e, ok
}

// Name resolves a class, enum, member or enumerator hash.
func (db *DB) Name(h jenhash.Hash) (string, bool) {
	if c, ok := db.classes[h]; ok {
		return c.Name, true
	}
	if e, ok := db.enums[h]; ok {
		return e.Name, true
	}
	for _, c := range db.Classes {
		if i, ok := c.Find(h); ok && i < len(c.Names) {
			if c.Members[i].NameHash == h {
				return c.Names[i], true
			}
			return c.MemberAlias(i), true
		}
	}
	for _, e := range db.Enums {
		for i, name := range e.Names {
			if jenhash.Sum(name) == h {
				return e.Names[i], true
			}
		}
	}
	return "", false
}

// Install adds descriptors that are not registered yet to the registry so
// records of those classes can be rendered. Registered descriptors win.
func (db *DB) Install() int {
	n := 0
	for _, e := range db.Enums {
		if _, ok := refl.LookupEnum(e.Hash); !ok {
			refl.AddEnum(e)
			n++
		}
	}
	for _, c := range db.Classes {
		if _, ok := refl.LookupClass(c.Hash); !ok {
			refl.AddClass(c)
			n++
		}
	}
	return n
}

// WriteFile writes the database to path inside a ZSTD archive.
func (db *DB) WriteFile(path string, opts ...archive.WriterOption) error {
	data, err := db.MarshalBinary()
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create database: %w", err)
	}
	if err := archive.Encode(f, data, opts...); err != nil {
		f.Close()
		return fmt.Errorf("write database: %w", err)
	}
	return f.Close()
}

// ReadFile reads a database written by WriteFile. Uncompressed databases
// are accepted too.
func ReadFile(path string) (*DB, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read database: %w", err)
	}
	if archive.IsArchive(data) {
		if data, err = archive.Decode(data); err != nil {
			return nil, fmt.Errorf("decompress database: %w", err)
		}
	}
	db := &DB{}
	if err := db.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return db, nil
}
