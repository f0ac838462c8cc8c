package refl

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode"

	"go.uber.org/zap"
)

// SetText parses s according to the kind of v and stores the result.
// Clamped values are still written; see ErrorKind for the meaning of each
// result.
func (v Value) SetText(s string) ErrorKind {
	if !v.IsValid() {
		return ErrInvalidDestination
	}
	switch {
	case v.desc.Container == ContainerVector:
		return v.setDynamic(s)
	case v.desc.Kind == KindArray || v.desc.Kind == KindVector:
		parts, kind := splitList(s, v.desc)
		if kind != ErrNone {
			return kind
		}
		return v.setElements(parts)
	}

	switch v.desc.ValueKind() {
	case KindBool:
		return v.setBoolText(s)
	case KindInteger:
		return v.setIntText(s)
	case KindUnsigned:
		return v.setUintText(s)
	case KindFloat:
		return v.setFloatText(s)
	case KindString:
		v.SetStr(s)
		return ErrNone
	case KindEnum:
		return v.setEnumText(s)
	case KindEnumFlags:
		return v.setFlagsText(s)
	}
	return ErrInvalidDestination
}

// Set stores x, which may be a string in the text syntax or a Go number or
// bool. Numbers are converted to the destination without clamping.
func (v Value) Set(x any) ErrorKind {
	if s, ok := x.(string); ok {
		return v.SetText(s)
	}
	if !v.IsValid() || v.desc.IsArray() {
		return ErrInvalidDestination
	}

	var (
		i     int64
		u     uint64
		f     float64
		isInt = true
	)
	switch n := x.(type) {
	case bool:
		if n {
			i, u, f = 1, 1, 1
		}
	case int:
		i, u, f = int64(n), uint64(n), float64(n)
	case int8:
		i, u, f = int64(n), uint64(n), float64(n)
	case int16:
		i, u, f = int64(n), uint64(n), float64(n)
	case int32:
		i, u, f = int64(n), uint64(n), float64(n)
	case int64:
		i, u, f = n, uint64(n), float64(n)
	case uint:
		i, u, f = int64(n), uint64(n), float64(n)
	case uint8:
		i, u, f = int64(n), uint64(n), float64(n)
	case uint16:
		i, u, f = int64(n), uint64(n), float64(n)
	case uint32:
		i, u, f = int64(n), uint64(n), float64(n)
	case uint64:
		i, u, f = int64(n), n, float64(n)
	case float32:
		i, u, f, isInt = int64(n), uint64(int64(n)), float64(n), false
	case float64:
		i, u, f, isInt = int64(n), uint64(int64(n)), n, false
	default:
		return ErrInvalidDestination
	}

	switch v.desc.ValueKind() {
	case KindBool:
		if isInt {
			v.SetBool(u != 0)
		} else {
			v.SetBool(f != 0)
		}
	case KindInteger:
		v.SetInt(i)
	case KindUnsigned, KindEnum:
		v.SetUint(u)
	case KindEnumFlags, KindBitFieldClass:
		v.SetStorage(u)
	case KindFloat:
		v.SetFloat(f)
	default:
		return ErrInvalidDestination
	}
	return ErrNone
}

func (v Value) setBoolText(s string) ErrorKind {
	t := strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.HasPrefix(t, "true"):
		v.SetBool(true)
	case strings.HasPrefix(t, "false"):
		v.SetBool(false)
	default:
		v.SetBool(false)
		return ErrInvalidFormat
	}
	return ErrNone
}

// parseInteger splits a decimal or 0x prefixed literal into sign and
// magnitude. Magnitudes beyond 64 bits saturate.
func parseInteger(s string) (negative bool, mag uint64, ok bool) {
	t := strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(t, "-"):
		negative = true
		t = t[1:]
	case strings.HasPrefix(t, "+"):
		t = t[1:]
	}
	base := 10
	if strings.HasPrefix(t, "0x") || strings.HasPrefix(t, "0X") {
		base = 16
		t = t[2:]
	}
	mag, err := strconv.ParseUint(t, base, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return negative, math.MaxUint64, true
		}
		return false, 0, false
	}
	return negative, mag, true
}

func (v Value) setIntText(s string) ErrorKind {
	negative, mag, ok := parseInteger(s)
	if !ok {
		return ErrInvalidFormat
	}

	width := v.valueWidth()
	iMax := uint64(1)<<(width-1) - 1
	kind := ErrNone
	var out int64
	switch {
	case negative && mag > iMax+1:
		out = -int64(iMax) - 1
		kind = ErrOutOfRange
	case negative:
		out = -int64(mag)
	case mag > iMax:
		out = int64(iMax)
		kind = ErrOutOfRange
	default:
		out = int64(mag)
	}
	if kind != ErrNone {
		Logger().Warn("integer out of range", zap.String("input", s), zap.Int64("stored", out))
	}
	v.SetInt(out)
	return kind
}

func (v Value) setUintText(s string) ErrorKind {
	negative, mag, ok := parseInteger(s)
	if !ok {
		return ErrInvalidFormat
	}

	width := v.valueWidth()
	uMax := uint64(math.MaxUint64)
	if width < 64 {
		uMax = 1<<width - 1
	}

	if negative {
		if mag > 1<<63 {
			mag = 1 << 63
		}
		out := uint64(-int64(mag)) & uMax
		Logger().Warn("negative value stored into unsigned", zap.String("input", s), zap.Uint64("stored", out))
		v.SetUint(out)
		return ErrSignMismatch
	}
	if mag > uMax {
		Logger().Warn("unsigned integer out of range", zap.String("input", s), zap.Uint64("stored", uMax))
		v.SetUint(uMax)
		return ErrOutOfRange
	}
	v.SetUint(mag)
	return ErrNone
}

func (v Value) setFloatText(s string) ErrorKind {
	t := strings.TrimSpace(s)
	if ff := v.floatFormat(); ff.Custom {
		f, err := strconv.ParseFloat(t, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return ErrInvalidFormat
		}
		v.SetFloat(f)
		if f < 0 && !ff.Sign {
			return ErrSignMismatch
		}
		return ErrNone
	}

	bitSize := 32
	maxVal, minNormal := float64(math.MaxFloat32), float64(math.Float32frombits(0x00800000))
	if v.desc.Size == 8 {
		bitSize = 64
		maxVal, minNormal = math.MaxFloat64, math.Float64frombits(0x0010000000000000)
	}

	f, err := strconv.ParseFloat(t, bitSize)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return ErrInvalidFormat
	}
	a := math.Abs(f)
	if err == nil && (a == 0 || a >= minNormal || math.IsNaN(f)) {
		v.SetFloat(f)
		return ErrNone
	}

	// Overflowed or subnormal: saturate using the magnitude of the literal.
	literal, _ := strconv.ParseFloat(t, 64)
	out := minNormal
	if math.Abs(literal) > 1 {
		out = maxVal
	}
	if literal < 0 || math.Signbit(f) {
		out = -out
	}
	Logger().Warn("float out of range", zap.String("input", s), zap.Float64("stored", out))
	v.SetFloat(out)
	return ErrOutOfRange
}

func (v Value) setEnumText(s string) ErrorKind {
	name := strings.TrimRightFunc(s, unicode.IsSpace)
	if name == "" {
		return ErrEmptyInput
	}
	e, ok := LookupEnum(v.desc.TypeHash())
	if !ok {
		Logger().Warn("enum not registered", zap.Stringer("hash", v.desc.TypeHash()))
		return ErrInvalidDestination
	}
	val, ok := e.Lookup(name)
	if !ok {
		Logger().Warn("unknown enumerator", zap.String("enum", e.Name), zap.String("input", name))
		return ErrInvalidFormat
	}
	v.SetUint(val)
	return ErrNone
}

func (v Value) setFlagsText(s string) ErrorKind {
	e, ok := LookupEnum(v.desc.TypeHash())
	if !ok {
		Logger().Warn("enum not registered", zap.Stringer("hash", v.desc.TypeHash()))
		return ErrInvalidDestination
	}

	var bits uint64
	kind := ErrNone
	note := func(k ErrorKind) {
		if kind == ErrNone {
			kind = k
		}
	}
	for _, part := range strings.Split(s, "|") {
		name := strings.TrimSpace(part)
		if name == "" {
			note(ErrEmptyInput)
			continue
		}
		val, ok := e.Lookup(name)
		if !ok {
			if name != FlagsNull {
				Logger().Warn("unknown enumerator", zap.String("enum", e.Name), zap.String("input", name))
				note(ErrInvalidFormat)
			}
			continue
		}
		if val >= uint64(v.desc.Size)*8 {
			note(ErrOutOfRange)
			continue
		}
		bits |= 1 << val
	}
	v.SetStorage(bits)
	return kind
}

// splitList extracts the elements of an array literal delimited by the
// braces of d. Commas nested inside quotes or brackets do not split.
func splitList(s string, d TypeDesc) ([]string, ErrorKind) {
	open, end := d.delimiters()
	start := strings.IndexByte(s, open)
	stop := strings.LastIndexByte(s, end)
	if start < 0 || stop < 0 || stop < start {
		return nil, ErrInvalidFormat
	}
	inner := s[start+1 : stop]
	if strings.TrimSpace(inner) == "" {
		return nil, ErrEmptyInput
	}

	var (
		parts  []string
		depth  int
		quoted bool
		last   int
	)
	for i := 0; i < len(inner); i++ {
		switch c := inner[i]; {
		case c == '"':
			quoted = !quoted
		case quoted:
		case c == '{' || c == '[' || c == '(':
			depth++
		case c == '}' || c == ']' || c == ')':
			depth--
		case c == ',' && depth == 0:
			parts = append(parts, strings.TrimSpace(inner[last:i]))
			last = i + 1
		}
	}
	parts = append(parts, strings.TrimSpace(inner[last:]))
	return parts, ErrNone
}

// setElements assigns parts to consecutive elements. Every element is
// attempted; the first failure is reported.
func (v Value) setElements(parts []string) ErrorKind {
	count := v.Len()
	kind := ErrNone
	note := func(k ErrorKind) {
		if kind == ErrNone {
			kind = k
		}
	}
	for i, part := range parts {
		if i >= count {
			Logger().Warn("too many array elements", zap.Int("want", count), zap.Int("got", len(parts)))
			note(ErrOutOfRange)
			break
		}
		if part == "" {
			note(ErrShortInput)
			continue
		}
		note(v.Index(i).SetText(part))
	}
	if len(parts) < count {
		note(ErrShortInput)
	}
	return kind
}

func (v Value) setDynamic(s string) ErrorKind {
	parts, kind := splitList(s, v.desc)
	if kind != ErrNone {
		return kind
	}
	if err := v.Resize(len(parts)); err != nil {
		return ErrInvalidDestination
	}
	return v.setElements(parts)
}
