package reflbin

import (
	"encoding/binary"
	"fmt"
	"io"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/EchoTools/evrReflect/pkg/archive"
	"github.com/EchoTools/evrReflect/pkg/jenhash"
	"github.com/EchoTools/evrReflect/pkg/refl"
)

// Unmarshal decodes a record into the instance bound to r.
//
// A record of another class fails with ErrClassMismatch and leaves the
// instance untouched. Members unknown to the class are skipped. Members that
// fail to decode are skipped too and their errors are combined into the
// returned error, which may be split with multierr.Errors.
func Unmarshal(data []byte, r refl.Reflector) error {
	if !r.IsValid() {
		return fmt.Errorf("load: %w", refl.ErrInvalidDestination)
	}
	if len(data) < 4 {
		return fmt.Errorf("read class hash: %w", io.ErrUnexpectedEOF)
	}
	h := jenhash.Hash(binary.LittleEndian.Uint32(data))
	if want := r.Class().Hash; h != want {
		return fmt.Errorf("%w: record holds %s, %s is %s", ErrClassMismatch, h, r.Class().Name, want)
	}
	return readClass(&cursor{buf: data[4:]}, r)
}

// Load reads a whole record from rd and decodes it into r.
func Load(rd io.Reader, r refl.Reflector) error {
	data, err := io.ReadAll(rd)
	if err != nil {
		return fmt.Errorf("read record: %w", err)
	}
	return Unmarshal(data, r)
}

// LoadCompressed reads a record stored in a ZSTD archive container.
func LoadCompressed(src io.ReadSeeker, r refl.Reflector) error {
	data, err := archive.ReadAll(src)
	if err != nil {
		return err
	}
	return Unmarshal(data, r)
}

func readClass(c *cursor, r refl.Reflector) error {
	size, err := c.uvarint()
	if err != nil {
		return fmt.Errorf("read chunk size: %w", err)
	}
	body, err := c.next(size)
	if err != nil {
		return fmt.Errorf("read chunk of %d bytes: %w", size, err)
	}

	bc := &cursor{buf: body}
	count, err := bc.uvarint()
	if err != nil {
		return fmt.Errorf("read member count: %w", err)
	}

	var errs error
	for i := uint64(0); i < count; i++ {
		h, err := bc.uint32()
		if err != nil {
			return multierr.Append(errs, fmt.Errorf("read member %d hash: %w", i, err))
		}
		n, err := bc.uvarint()
		if err != nil {
			return multierr.Append(errs, fmt.Errorf("read member %d size: %w", i, err))
		}
		payload, err := bc.next(n)
		if err != nil {
			return multierr.Append(errs, fmt.Errorf("read member %d payload: %w", i, err))
		}

		m := r.MemberByHash(jenhash.Hash(h))
		if !m.IsValid() {
			refl.Logger().Debug("skipping unknown member",
				zap.String("class", r.Class().Name),
				zap.Stringer("member", jenhash.Hash(h)))
			continue
		}
		if err := readValue(&cursor{buf: payload}, m.Value()); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("member %s: %w", m.Name(), err))
		}
	}
	return errs
}

func readValue(c *cursor, v refl.Value) error {
	d := v.Desc()
	switch {
	case d.Container == refl.ContainerVector:
		n, err := c.uvarint()
		if err != nil {
			return fmt.Errorf("read element count: %w", err)
		}
		if n > uint64(c.Len()) {
			return fmt.Errorf("%w: %d elements in %d bytes", ErrCount, n, c.Len())
		}
		if err := v.Resize(int(n)); err != nil {
			return err
		}
		for i := 0; i < int(n); i++ {
			if err := readValue(c, v.Index(i)); err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
		}
		return nil
	case d.Kind == refl.KindArray || d.Kind == refl.KindVector:
		for i, n := 0, v.Len(); i < n; i++ {
			if err := readValue(c, v.Index(i)); err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
		}
		return nil
	}

	kind := d.ValueKind()
	if d.Kind == refl.KindBitFieldMember {
		switch kind {
		case refl.KindBool:
			b, err := c.ReadByte()
			if err != nil {
				return err
			}
			v.SetBool(b != 0)
		case refl.KindInteger:
			x, err := c.varint()
			if err != nil {
				return err
			}
			v.SetInt(x)
		default:
			u, err := c.uvarint()
			if err != nil {
				return err
			}
			v.SetUint(u)
		}
		return nil
	}

	switch {
	case isSigned(kind) && d.Size > 1:
		x, err := c.varint()
		if err != nil {
			return err
		}
		v.SetInt(x)
	case isUnsigned(kind) && d.Size > 1:
		u, err := c.uvarint()
		if err != nil {
			return err
		}
		v.SetStorage(u)
	case isSigned(kind) || isUnsigned(kind) || kind == refl.KindBool || kind == refl.KindFloat:
		w, err := c.raw(d.Size)
		if err != nil {
			return err
		}
		v.SetStorage(w)
	case kind == refl.KindString:
		n, err := c.uint32()
		if err != nil {
			return fmt.Errorf("read string length: %w", err)
		}
		s, err := c.next(uint64(n))
		if err != nil {
			return fmt.Errorf("read string of %d bytes: %w", n, err)
		}
		v.SetStr(string(s))
	case kind == refl.KindClass:
		sub, err := v.Class()
		if err != nil {
			return err
		}
		return readClass(c, sub)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupported, d)
	}
	return nil
}
