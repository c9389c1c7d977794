package probe

import "reflect"

// sampleElems is the element count used for the packed/deep array
// measurements: large enough to average away allocator rounding on a
// single element, small enough to stay cheap.
const sampleElems = 16

// SizeReport is a derived, non-persistent view composed from several
// size probes of one factory.
type SizeReport struct {
	TypeName    string
	IsValueType bool

	// Value types only. Aligned is the footprint of one standalone
	// (padded) element, Packed the per-element footprint inside a dense
	// sequence, Deep the per-element cost when every element is
	// individually produced by the factory, which can differ when the
	// type embeds references whose payload is default vs populated.
	AlignedBytes int64
	PackedBytes  int64
	DeepBytes    int64

	// Reference types only.
	TotalBytes    int64
	OverheadBytes int64
	ContentBytes  int64

	HasItemCount bool
	ItemCount    int
	BytesPerItem float64
}

// Describe builds a size report using the default Sizer.
func Describe[T any](factory func() T) (SizeReport, error) {
	return DescribeWith(DefaultSizer(), factory)
}

// ByteSizeDescription builds a size report and renders it. The numbers
// come verbatim from the measurement; only the layout is presentation.
func ByteSizeDescription[T any](factory func() T) (string, error) {
	rep, err := Describe(factory)
	if err != nil {
		return "", err
	}
	return FormatSizeReport(rep), nil
}

// DescribeWith composes multiple size probes into a report: array-layout
// measurements for value types, total/content split plus per-item
// averages for reference types.
func DescribeWith[T any](s *Sizer, factory func() T) (SizeReport, error) {
	if factory == nil {
		return SizeReport{}, ErrNilFactory
	}

	t := reflect.TypeOf((*T)(nil)).Elem()
	if t.Kind() == reflect.Interface {
		v := factory()
		t = reflect.TypeOf(v)
		if t == nil {
			return SizeReport{}, errNilInterfaceValue
		}
	}

	rep := SizeReport{TypeName: t.String(), IsValueType: isValueKind(t.Kind())}
	if rep.IsValueType {
		describeValue(s, factory, &rep)
	} else {
		if err := describeReference(s, factory, &rep); err != nil {
			return SizeReport{}, err
		}
	}
	return rep, nil
}

func describeValue[T any](s *Sizer, factory func() T, rep *SizeReport) {
	// The empty-sequence baseline cancels the sequence's own header and
	// bookkeeping out of every per-element figure. Legitimately zero, so
	// its stabilization runs without the instability warning.
	empty := stabilize(nil, func() int64 {
		return heapDelta(s.mem, func() []T { return make([]T, 0) })
	})

	one := s.stable(func() int64 {
		return heapDelta(s.mem, func() []T { return make([]T, 1) })
	})

	dense := s.stable(func() int64 {
		return heapDelta(s.mem, func() []T { return make([]T, sampleElems) })
	})

	filled := s.stable(func() int64 {
		return heapDelta(s.mem, func() []T {
			out := make([]T, sampleElems)
			for i := range out {
				out[i] = factory()
			}
			return out
		})
	})

	rep.AlignedBytes = clampBytes(one - empty)
	rep.PackedBytes = clampBytes(dense-empty) / sampleElems
	rep.DeepBytes = clampBytes(filled-empty) / sampleElems
}

func describeReference[T any](s *Sizer, factory func() T, rep *SizeReport) error {
	total, err := ByteSizeWith(s, factory)
	if err != nil {
		return err
	}
	rep.TotalBytes = total
	rep.OverheadBytes = s.base.ObjectOverhead
	rep.ContentBytes = clampBytes(total - s.base.ObjectOverhead)

	if count, ok := itemCount(factory()); ok {
		rep.HasItemCount = true
		rep.ItemCount = count
		if count > 0 {
			rep.BytesPerItem = float64(rep.ContentBytes) / float64(count)
		}
	}
	return nil
}

// itemCount reports the element count of countable collections: the
// built-in container kinds, or anything exposing Len() int.
func itemCount(v any) (int, bool) {
	if v == nil {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.Chan, reflect.String:
		return rv.Len(), true
	case reflect.Pointer:
		if !rv.IsNil() {
			if elem := rv.Elem(); elem.Kind() == reflect.Slice || elem.Kind() == reflect.Array || elem.Kind() == reflect.Map {
				return elem.Len(), true
			}
		}
	}
	if c, ok := v.(interface{ Len() int }); ok {
		return c.Len(), true
	}
	return 0, false
}

func clampBytes(n int64) int64 {
	if n < 0 {
		return 0
	}
	return n
}
