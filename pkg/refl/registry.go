package refl

import (
	"reflect"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/EchoTools/evrReflect/pkg/jenhash"
)

// registry holds every class and enum descriptor. Inserting a descriptor
// whose hash is already present replaces the old entry.
type registry struct {
	mu         sync.RWMutex
	classes    map[jenhash.Hash]*Class
	classTypes map[reflect.Type]*Class
	enums      map[jenhash.Hash]*Enum
	enumTypes  map[reflect.Type]*Enum
	pseudo     map[pseudoKey]*Class
}

var reg = newRegistry()

func newRegistry() *registry {
	return &registry{
		classes:    make(map[jenhash.Hash]*Class),
		classTypes: make(map[reflect.Type]*Class),
		enums:      make(map[jenhash.Hash]*Enum),
		enumTypes:  make(map[reflect.Type]*Enum),
		pseudo:     make(map[pseudoKey]*Class),
	}
}

func (r *registry) addClass(c *Class) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.classes[c.Hash]; ok && prev != c {
		Logger().Debug("class replaced", zap.String("name", c.Name), zap.String("previous", prev.Name))
	}
	r.classes[c.Hash] = c
	if c.typ != nil {
		r.classTypes[c.typ] = c
	}
}

func (r *registry) addEnum(e *Enum) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enums[e.Hash] = e
	if e.typ != nil {
		r.enumTypes[e.typ] = e
	}
}

func (r *registry) class(h jenhash.Hash) (*Class, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.classes[h]
	return c, ok
}

func (r *registry) classFor(t reflect.Type) (*Class, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.classTypes[t]
	return c, ok
}

func (r *registry) enum(h jenhash.Hash) (*Enum, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.enums[h]
	return e, ok
}

func (r *registry) enumFor(t reflect.Type) (*Enum, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.enumTypes[t]
	return e, ok
}

// pseudoClass returns the cached class for key, building it on first use.
func (r *registry) pseudoClass(key pseudoKey, build func() *Class) *Class {
	r.mu.RLock()
	c, ok := r.pseudo[key]
	r.mu.RUnlock()
	if ok {
		return c
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.pseudo[key]; ok {
		return c
	}
	c = build()
	r.pseudo[key] = c
	return c
}

// AddClass inserts a prebuilt descriptor into the class registry.
func AddClass(c *Class) { reg.addClass(c) }

// AddEnum inserts a prebuilt descriptor into the enum registry.
func AddEnum(e *Enum) { reg.addEnum(e) }

// LookupClass finds a class by name hash.
func LookupClass(h jenhash.Hash) (*Class, bool) { return reg.class(h) }

// LookupEnum finds an enum by name hash.
func LookupEnum(h jenhash.Hash) (*Enum, bool) { return reg.enum(h) }

// ClassFor finds the class registered for Go type t.
func ClassFor(t reflect.Type) (*Class, bool) { return reg.classFor(t) }

// ClassOf finds the class registered for T.
func ClassOf[T any]() (*Class, bool) { return reg.classFor(reflect.TypeFor[T]()) }

// EnumOf finds the enum registered for E.
func EnumOf[E any]() (*Enum, bool) { return reg.enumFor(reflect.TypeFor[E]()) }

// Classes returns every registered class ordered by hash.
func Classes() []*Class {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	keys := maps.Keys(reg.classes)
	slices.Sort(keys)
	out := make([]*Class, len(keys))
	for i, k := range keys {
		out[i] = reg.classes[k]
	}
	return out
}

// Enums returns every registered enum ordered by hash.
func Enums() []*Enum {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	keys := maps.Keys(reg.enums)
	slices.Sort(keys)
	out := make([]*Enum, len(keys))
	for i, k := range keys {
		out[i] = reg.enums[k]
	}
	return out
}
