// Package payload reads untyped channel payloads defensively. Every getter
// treats a missing, null or mistyped field as "no signal" and never panics.
package payload

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Payload is a raw JSON object as delivered by a channel.
type Payload map[string]any

// Option is one label/value pair lifted out of a payload: a line-item
// property, a note attribute, an email field or an add-ons snapshot key.
type Option struct {
	Label string
	Value any
}

var (
	labelKeys = []string{"label", "name", "title", "key", "option"}
	valueKeys = []string{"value", "quantity", "qty", "count", "amount"}

	integerPattern = regexp.MustCompile(`\d+`)
)

// From converts a decoded JSON value into a Payload when it is an object.
func From(value any) (Payload, bool) {
	switch v := value.(type) {
	case Payload:
		return v, v != nil
	case map[string]any:
		return Payload(v), v != nil
	default:
		return nil, false
	}
}

// Raw returns the value stored at key, or nil.
func (p Payload) Raw(key string) any {
	if p == nil {
		return nil
	}
	return p[key]
}

// Has reports whether key carries a non-null value.
func (p Payload) Has(key string) bool {
	return p.Raw(key) != nil
}

// Str returns the trimmed string form of key. Numbers are formatted without exponent.
func (p Payload) Str(key string) string {
	return String(p.Raw(key))
}

// FirstStr returns the first non-empty string among keys.
func (p Payload) FirstStr(keys ...string) string {
	for _, key := range keys {
		if v := p.Str(key); v != "" {
			return v
		}
	}
	return ""
}

// Int returns the integer stored at key.
func (p Payload) Int(key string) (int, bool) {
	return Int(p.Raw(key))
}

// Map returns the nested object stored at key.
func (p Payload) Map(key string) Payload {
	out, _ := From(p.Raw(key))
	return out
}

// Slice returns the array stored at key.
func (p Payload) Slice(key string) []any {
	if v, ok := p.Raw(key).([]any); ok {
		return v
	}
	return nil
}

// Objects returns the objects contained in the array stored at key, skipping non-objects.
func (p Payload) Objects(key string) []Payload {
	items := p.Slice(key)
	out := make([]Payload, 0, len(items))
	for _, item := range items {
		if obj, ok := From(item); ok {
			out = append(out, obj)
		}
	}
	return out
}

// Options lifts label/value pairs out of the array stored at key.
func (p Payload) Options(key string) []Option {
	return OptionsFrom(p.Raw(key))
}

// OptionsFrom accepts either an array of {name|label|title, value|quantity}
// objects or a flat object of label → value and returns them as options.
// Object input is emitted in sorted key order so results are deterministic.
func OptionsFrom(value any) []Option {
	switch v := value.(type) {
	case []any:
		out := make([]Option, 0, len(v))
		for _, item := range v {
			obj, ok := From(item)
			if !ok {
				if s := String(item); s != "" {
					out = append(out, Option{Value: s})
				}
				continue
			}
			out = append(out, Option{
				Label: obj.FirstStr(labelKeys...),
				Value: firstValue(obj),
			})
		}
		return out
	default:
		obj, ok := From(value)
		if !ok {
			return nil
		}
		keys := SortedKeys(obj)
		out := make([]Option, 0, len(keys))
		for _, k := range keys {
			out = append(out, Option{Label: k, Value: obj[k]})
		}
		return out
	}
}

func firstValue(obj Payload) any {
	for _, key := range valueKeys {
		if v := obj.Raw(key); v != nil {
			return v
		}
	}
	return nil
}

// String renders scalar JSON values as trimmed strings. Objects, arrays and
// null yield the empty string.
func String(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case *string:
		if v == nil {
			return ""
		}
		return strings.TrimSpace(*v)
	case json.Number:
		return v.String()
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// Int reads a numeric value permissively: numbers are truncated, strings
// yield their first embedded integer, anything else has no value.
func Int(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case int32:
		return int(v), true
	case *int:
		if v == nil {
			return 0, false
		}
		return *v, true
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return int(v), true
	case float32:
		return int(v), true
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n), true
		}
		if f, err := v.Float64(); err == nil {
			return int(f), true
		}
		return 0, false
	case string:
		return FirstInt(v)
	case *string:
		if v == nil {
			return 0, false
		}
		return FirstInt(*v)
	default:
		return 0, false
	}
}

// FirstInt returns the first integer embedded in s.
func FirstInt(s string) (int, bool) {
	match := integerPattern.FindString(s)
	if match == "" {
		return 0, false
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Decimal reads a monetary amount. Strings may carry currency symbols or a
// decimal comma ("49,90 zł").
func Decimal(value any) (decimal.Decimal, bool) {
	switch v := value.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(v), true
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int64:
		return decimal.NewFromInt(v), true
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		return d, err == nil
	case string:
		clean := amountPattern.FindString(strings.ReplaceAll(v, " ", ""))
		if clean == "" {
			return decimal.Zero, false
		}
		switch {
		case strings.Contains(clean, "."), thousandsPattern.MatchString(clean):
			clean = strings.ReplaceAll(clean, ",", "")
		case strings.Count(clean, ",") == 1:
			clean = strings.Replace(clean, ",", ".", 1)
		}
		d, err := decimal.NewFromString(clean)
		return d, err == nil
	default:
		return decimal.Zero, false
	}
}

var (
	amountPattern    = regexp.MustCompile(`-?\d[\d,]*(\.\d+)?`)
	thousandsPattern = regexp.MustCompile(`^-?\d{1,3}(,\d{3})+$`)
)

// Time returns a typed instant when value already is one.
func Time(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, !v.IsZero()
	case *time.Time:
		if v == nil || v.IsZero() {
			return time.Time{}, false
		}
		return *v, true
	default:
		return time.Time{}, false
	}
}
