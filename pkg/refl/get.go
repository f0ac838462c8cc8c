package refl

import (
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// SubclassPlaceholder is rendered for class typed values.
const SubclassPlaceholder = "SUBCLASS_TYPE"

// FlagsNull is rendered for an empty flag set and accepted when parsing.
const FlagsNull = "NULL"

const flagSeparator = " | "

// delimiters returns the braces used by an array value.
func (t TypeDesc) delimiters() (open, end byte) {
	if t.Container != ContainerNone && t.Container != ContainerPointer {
		return '{', '}'
	}
	return '[', ']'
}

// String renders the value in the text syntax accepted by SetText.
func (v Value) String() string {
	if !v.IsValid() {
		return ""
	}
	if v.desc.IsArray() {
		return v.renderArray()
	}
	return v.renderScalar()
}

func (v Value) renderArray() string {
	open, end := v.desc.delimiters()
	var sb strings.Builder
	sb.WriteByte(open)
	for i, n := 0, v.Len(); i < n; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(v.Index(i).String())
	}
	sb.WriteByte(end)
	return sb.String()
}

func (v Value) renderScalar() string {
	switch v.desc.ValueKind() {
	case KindBool:
		return strconv.FormatBool(v.Bool())
	case KindInteger:
		return strconv.FormatInt(v.Int(), 10)
	case KindUnsigned:
		return strconv.FormatUint(v.Uint(), 10)
	case KindFloat:
		return formatFloat(v.Float(), v.floatFormat(), v.desc.Size)
	case KindString:
		return v.Str()
	case KindEnum:
		return v.renderEnum()
	case KindEnumFlags:
		return v.renderFlags()
	case KindClass, KindBitFieldClass:
		return SubclassPlaceholder
	}
	return ""
}

func formatFloat(f float64, ff FloatFormat, size uint16) string {
	if !ff.Custom && size == 8 {
		return strconv.FormatFloat(f, 'g', 13, 64)
	}
	return strconv.FormatFloat(f, 'g', 6, 64)
}

func (v Value) renderEnum() string {
	e, ok := LookupEnum(v.desc.TypeHash())
	if !ok {
		Logger().Warn("enum not registered", zap.Stringer("hash", v.desc.TypeHash()))
		return ""
	}
	name, ok := e.NameOf(v.Uint())
	if !ok {
		Logger().Warn("enum value has no name", zap.String("enum", e.Name), zap.Uint64("value", v.Uint()))
		return ""
	}
	return name
}

func (v Value) renderFlags() string {
	e, ok := LookupEnum(v.desc.TypeHash())
	if !ok {
		Logger().Warn("enum not registered", zap.Stringer("hash", v.desc.TypeHash()))
		return ""
	}
	bits := v.Storage()
	if bits == 0 {
		return FlagsNull
	}
	var names []string
	for i, val := range e.Values {
		if val < 64 && bits&(1<<val) != 0 {
			names = append(names, e.Names[i])
		}
	}
	return strings.Join(names, flagSeparator)
}

// At renders element i of an array value. For a flag set, i selects a bit
// and the result is "true" or "false". Scalars behave as one element arrays.
// An out of range index yields "".
func (v Value) At(i int) string {
	if !v.IsValid() || i < 0 {
		return ""
	}
	switch {
	case v.desc.IsArray():
		if i >= v.Len() {
			return ""
		}
		return v.Index(i).String()
	case v.desc.ValueKind() == KindEnumFlags:
		if i >= int(v.desc.Size)*8 {
			return ""
		}
		return strconv.FormatBool(v.Storage()&(1<<uint(i)) != 0)
	case i == 0:
		return v.String()
	}
	return ""
}
