package refl

import "unsafe"

// This file is the only place that performs address arithmetic on
// instances. Everything else reaches memory through these helpers.

// at returns the address off bytes past base.
func at(base unsafe.Pointer, off uintptr) unsafe.Pointer {
	return unsafe.Add(base, off)
}

// element returns the address of element i of an inline array.
func element(base unsafe.Pointer, stride uint16, i int) unsafe.Pointer {
	return at(base, uintptr(stride)*uintptr(i))
}

func loadUint(p unsafe.Pointer, size uint16) uint64 {
	switch size {
	case 1:
		return uint64(*(*uint8)(p))
	case 2:
		return uint64(*(*uint16)(p))
	case 4:
		return uint64(*(*uint32)(p))
	case 8:
		return *(*uint64)(p)
	}
	return 0
}

func storeUint(p unsafe.Pointer, size uint16, v uint64) {
	switch size {
	case 1:
		*(*uint8)(p) = uint8(v)
	case 2:
		*(*uint16)(p) = uint16(v)
	case 4:
		*(*uint32)(p) = uint32(v)
	case 8:
		*(*uint64)(p) = v
	}
}

func loadInt(p unsafe.Pointer, size uint16) int64 {
	switch size {
	case 1:
		return int64(*(*int8)(p))
	case 2:
		return int64(*(*int16)(p))
	case 4:
		return int64(*(*int32)(p))
	case 8:
		return *(*int64)(p)
	}
	return 0
}

func loadFloat(p unsafe.Pointer, size uint16) float64 {
	if size == 8 {
		return *(*float64)(p)
	}
	return float64(*(*float32)(p))
}

func storeFloat(p unsafe.Pointer, size uint16, v float64) {
	if size == 8 {
		*(*float64)(p) = v
		return
	}
	*(*float32)(p) = float32(v)
}

func loadString(p unsafe.Pointer) string { return *(*string)(p) }

func storeString(p unsafe.Pointer, s string) { *(*string)(p) = s }
