package registry

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

type converterFunc func(interface{}) (interface{}, error)

// converterTable is the per-TypeInfo dispatch table: one converter per
// accepted input Go type, keyed by reflect.Type. Mutation only happens at
// registration time (process start); per spec.md §5, lookups afterward are
// read-only and need no locking discipline beyond the RWMutex here, which
// guards against registration racing with an early converter call.
type converterTable struct {
	mu   sync.RWMutex
	byIn map[reflect.Type]converterFunc
}

func newConverterTable() *converterTable {
	return &converterTable{byIn: make(map[reflect.Type]converterFunc)}
}

func (t *converterTable) add(in reflect.Type, fn converterFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.byIn[in] = fn
}

func (t *converterTable) lookup(in reflect.Type) (converterFunc, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	fn, ok := t.byIn[in]
	return fn, ok
}

func exampleKey(v interface{}) reflect.Type {
	return reflect.TypeOf(v)
}

func registerBytesConverters(ti *TypeInfo) {
	ti.AddConverter([]byte(nil), func(v interface{}) (interface{}, error) {
		b := v.([]byte)
		if ti.size > 0 && len(b) > ti.size {
			return nil, fmt.Errorf("recordsync: value exceeds field size %d for %s", ti.size, ti.uri)
		}
		return b, nil
	})
	ti.AddConverter("", func(v interface{}) (interface{}, error) {
		b := []byte(v.(string))
		if ti.size > 0 && len(b) > ti.size {
			return nil, fmt.Errorf("recordsync: value exceeds field size %d for %s", ti.size, ti.uri)
		}
		return b, nil
	})
}

func registerTextConverters(ti *TypeInfo) {
	ti.AddConverter("", func(v interface{}) (interface{}, error) {
		s := v.(string)
		if ti.size > 0 && utf8.RuneCountInString(s) > ti.size {
			return nil, fmt.Errorf("recordsync: value exceeds field size %d for %s", ti.size, ti.uri)
		}
		return s, nil
	})
	ti.AddConverter([]byte(nil), func(v interface{}) (interface{}, error) {
		return ti.conv.mustConvertString(string(v.([]byte)))
	})
}

// mustConvertString re-enters the string converter for this table; used by
// []byte->Text coercion above.
func (t *converterTable) mustConvertString(s string) (interface{}, error) {
	fn, ok := t.lookup(exampleKey(""))
	if !ok {
		return s, nil
	}
	return fn(s)
}

func registerIntConverters(ti *TypeInfo) {
	ti.AddConverter(int(0), func(v interface{}) (interface{}, error) { return int64(v.(int)), nil })
	ti.AddConverter(int64(0), func(v interface{}) (interface{}, error) { return v.(int64), nil })
	ti.AddConverter(int32(0), func(v interface{}) (interface{}, error) { return int64(v.(int32)), nil })
	ti.AddConverter("", func(v interface{}) (interface{}, error) {
		n, err := strconv.ParseInt(v.(string), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("recordsync: %s: not an integer: %w", ti.uri, err)
		}
		return n, nil
	})
}

func registerDateConverters(ti *TypeInfo) {
	truncate := func(t time.Time) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
	ti.AddConverter(time.Time{}, func(v interface{}) (interface{}, error) {
		return truncate(v.(time.Time)), nil
	})
	ti.AddConverter("", func(v interface{}) (interface{}, error) {
		t, err := time.Parse("2006-01-02", v.(string))
		if err != nil {
			return nil, fmt.Errorf("recordsync: %s: not a date: %w", ti.uri, err)
		}
		return truncate(t), nil
	})
}

func registerTimestampConverters(ti *TypeInfo) {
	ti.AddConverter(time.Time{}, func(v interface{}) (interface{}, error) { return v.(time.Time), nil })
	ti.AddConverter("", func(v interface{}) (interface{}, error) {
		t, err := time.Parse(time.RFC3339Nano, v.(string))
		if err != nil {
			return nil, fmt.Errorf("recordsync: %s: not a timestamp: %w", ti.uri, err)
		}
		return t, nil
	})
}

func registerDecimalConverters(ti *TypeInfo) {
	round := func(d decimal.Decimal) (interface{}, error) {
		rounded := d.Round(int32(ti.places))
		digits := len(strings.Replace(strings.TrimLeft(rounded.Abs().String(), "0."), ".", "", 1))
		if ti.digits > 0 && digits > ti.digits {
			return nil, fmt.Errorf("recordsync: %s: value has more than %d digits", ti.uri, ti.digits)
		}
		return rounded, nil
	}
	ti.AddConverter(decimal.Decimal{}, func(v interface{}) (interface{}, error) { return round(v.(decimal.Decimal)) })
	ti.AddConverter("", func(v interface{}) (interface{}, error) {
		d, err := decimal.NewFromString(v.(string))
		if err != nil {
			return nil, fmt.Errorf("recordsync: %s: not a decimal: %w", ti.uri, err)
		}
		return round(d)
	})
	ti.AddConverter(float64(0), func(v interface{}) (interface{}, error) {
		return round(decimal.NewFromFloat(v.(float64)))
	})
	ti.AddConverter(int(0), func(v interface{}) (interface{}, error) {
		return round(decimal.NewFromInt(int64(v.(int))))
	})
}

// FormatCanonical renders a converted (canonical) value as a human-readable
// string, the Go analogue of the source's format_field. Int values route
// through cty/gocty; Decimal values render with exactly the type's declared
// decimal places.
func FormatCanonical(ti *TypeInfo, value interface{}) string {
	if IsSentinel(value) {
		return value.(Kind).String()
	}
	switch ti.kind {
	case kindInt:
		n, ok := value.(int64)
		if !ok {
			return fmt.Sprintf("%v", value)
		}
		cv, err := gocty.ToCtyValue(n, cty.Number)
		if err != nil {
			return fmt.Sprintf("%v", value)
		}
		bf, _ := cv.AsBigFloat().Int64()
		return strconv.FormatInt(bf, 10)
	case kindDecimal:
		d, ok := value.(decimal.Decimal)
		if !ok {
			return fmt.Sprintf("%v", value)
		}
		return d.StringFixed(int32(ti.places))
	case kindTimestamp:
		t, ok := value.(time.Time)
		if ok {
			return t.Format(time.RFC3339Nano)
		}
	case kindDate:
		t, ok := value.(time.Time)
		if ok {
			return t.Format("2006-01-02")
		}
	case kindBytes, kindBlob:
		b, ok := value.([]byte)
		if ok {
			return fmt.Sprintf("%x", b)
		}
	}
	return fmt.Sprintf("%v", value)
}
