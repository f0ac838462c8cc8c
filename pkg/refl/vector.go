package refl

import (
	"fmt"
	"reflect"
	"unsafe"
)

// VectorAdapter edits a dynamic array member without knowing its element
// type. p is the address of the slice header inside the instance.
type VectorAdapter interface {
	Len(p unsafe.Pointer) int
	Resize(p unsafe.Pointer, n int)
	At(p unsafe.Pointer, i int) unsafe.Pointer
	Swap(p unsafe.Pointer, i, j int)
	// InsertAfter inserts n zero elements after index i; -1 inserts at the
	// front.
	InsertAfter(p unsafe.Pointer, i, n int)
	// Duplicate inserts n copies of element i right after it.
	Duplicate(p unsafe.Pointer, i, n int)
	// DuplicateAppend appends n copies of element i.
	DuplicateAppend(p unsafe.Pointer, i, n int)
	// Erase removes elements in [begin, end).
	Erase(p unsafe.Pointer, begin, end int)
}

type sliceAdapter struct {
	typ reflect.Type
}

func newSliceAdapter(t reflect.Type) VectorAdapter {
	return sliceAdapter{typ: t}
}

func (a sliceAdapter) slice(p unsafe.Pointer) reflect.Value {
	return reflect.NewAt(a.typ, p).Elem()
}

func (a sliceAdapter) Len(p unsafe.Pointer) int { return a.slice(p).Len() }

func (a sliceAdapter) Resize(p unsafe.Pointer, n int) {
	s := a.slice(p)
	old := s.Len()
	switch {
	case n <= old:
		for i := n; i < old; i++ {
			s.Index(i).SetZero()
		}
		s.SetLen(n)
	case n <= s.Cap():
		s.SetLen(n)
		for i := old; i < n; i++ {
			s.Index(i).SetZero()
		}
	default:
		ns := reflect.MakeSlice(a.typ, n, n)
		reflect.Copy(ns, s)
		s.Set(ns)
	}
}

func (a sliceAdapter) At(p unsafe.Pointer, i int) unsafe.Pointer {
	return a.slice(p).Index(i).Addr().UnsafePointer()
}

func (a sliceAdapter) Swap(p unsafe.Pointer, i, j int) {
	s := a.slice(p)
	tmp := reflect.New(a.typ.Elem()).Elem()
	tmp.Set(s.Index(i))
	s.Index(i).Set(s.Index(j))
	s.Index(j).Set(tmp)
}

func (a sliceAdapter) insert(s reflect.Value, pos int, vals reflect.Value) {
	tail := reflect.MakeSlice(a.typ, s.Len()-pos, s.Len()-pos)
	reflect.Copy(tail, s.Slice(pos, s.Len()))
	ns := reflect.AppendSlice(s.Slice(0, pos), vals)
	s.Set(reflect.AppendSlice(ns, tail))
}

func (a sliceAdapter) InsertAfter(p unsafe.Pointer, i, n int) {
	a.insert(a.slice(p), i+1, reflect.MakeSlice(a.typ, n, n))
}

func (a sliceAdapter) copies(src reflect.Value, n int) reflect.Value {
	vals := reflect.MakeSlice(a.typ, n, n)
	for k := 0; k < n; k++ {
		deepCopy(vals.Index(k), src)
	}
	return vals
}

func (a sliceAdapter) Duplicate(p unsafe.Pointer, i, n int) {
	s := a.slice(p)
	a.insert(s, i+1, a.copies(s.Index(i), n))
}

func (a sliceAdapter) DuplicateAppend(p unsafe.Pointer, i, n int) {
	s := a.slice(p)
	s.Set(reflect.AppendSlice(s, a.copies(s.Index(i), n)))
}

func (a sliceAdapter) Erase(p unsafe.Pointer, begin, end int) {
	s := a.slice(p)
	old := s.Len()
	ns := reflect.AppendSlice(s.Slice(0, begin), s.Slice(end, old))
	for i := ns.Len(); i < old; i++ {
		s.Index(i).SetZero()
	}
	s.Set(ns)
}

func (a sliceAdapter) String() string {
	return fmt.Sprintf("vector<%s>", a.typ.Elem())
}

// deepCopy copies src into dst so that nested slices are not shared.
func deepCopy(dst, src reflect.Value) {
	switch src.Kind() {
	case reflect.Slice:
		if src.IsNil() {
			dst.SetZero()
			return
		}
		ns := reflect.MakeSlice(src.Type(), src.Len(), src.Len())
		for i := 0; i < src.Len(); i++ {
			deepCopy(ns.Index(i), src.Index(i))
		}
		dst.Set(ns)
	case reflect.Array:
		for i := 0; i < src.Len(); i++ {
			deepCopy(dst.Index(i), src.Index(i))
		}
	case reflect.Struct:
		dst.Set(src)
		for i := 0; i < src.NumField(); i++ {
			if dst.Field(i).CanSet() {
				deepCopy(dst.Field(i), src.Field(i))
			}
		}
	default:
		dst.Set(src)
	}
}
