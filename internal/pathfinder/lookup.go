package pathfinder

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/desertthunder/dailydrive/internal/shared"
)

// Object is a decoded JSON object.
type Object = map[string]any

// lookup walks a dotted key path. JSON null counts as absent.
func lookup(obj Object, path string) (any, bool) {
	var cur any = obj
	for key := range strings.SplitSeq(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok || cur == nil {
			return nil, false
		}
	}
	return cur, true
}

func missing(path string) error {
	return fmt.Errorf("%w: %s", shared.ErrMissingField, path)
}

func requireString(obj Object, path string) (string, error) {
	v, ok := lookup(obj, path)
	if !ok {
		return "", missing(path)
	}
	s, ok := v.(string)
	if !ok {
		return "", missing(path)
	}
	return s, nil
}

func requireObject(obj Object, path string) (Object, error) {
	v, ok := lookup(obj, path)
	if !ok {
		return nil, missing(path)
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, missing(path)
	}
	return m, nil
}

func requireList(obj Object, path string) ([]any, error) {
	v, ok := lookup(obj, path)
	if !ok {
		return nil, missing(path)
	}
	l, ok := v.([]any)
	if !ok {
		return nil, missing(path)
	}
	return l, nil
}

func requireInt(obj Object, path string) (int, error) {
	v, ok := lookup(obj, path)
	if !ok {
		return 0, missing(path)
	}
	n, ok := toInt(v)
	if !ok {
		return 0, missing(path)
	}
	return n, nil
}

func optString(obj Object, path string) string {
	v, _ := lookup(obj, path)
	s, _ := v.(string)
	return s
}

func optBool(obj Object, path string) bool {
	v, _ := lookup(obj, path)
	b, _ := v.(bool)
	return b
}

func optBoolPtr(obj Object, path string) *bool {
	v, _ := lookup(obj, path)
	b, ok := v.(bool)
	if !ok {
		return nil
	}
	return &b
}

func optInt(obj Object, path string) int {
	v, _ := lookup(obj, path)
	n, _ := toInt(v)
	return n
}

func optIntPtr(obj Object, path string) *int {
	v, _ := lookup(obj, path)
	n, ok := toInt(v)
	if !ok {
		return nil
	}
	return &n
}

func optObject(obj Object, path string) Object {
	v, _ := lookup(obj, path)
	m, _ := v.(map[string]any)
	return m
}

func optList(obj Object, path string) []any {
	v, _ := lookup(obj, path)
	l, _ := v.([]any)
	return l
}

// optText reads a string, rendering numbers in decimal.
func optText(obj Object, path string) *string {
	v, ok := lookup(obj, path)
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case string:
		return &t
	case json.Number:
		s := t.String()
		return &s
	case float64:
		s := strconv.FormatFloat(t, 'f', -1, 64)
		return &s
	}
	if n, ok := toInt(v); ok {
		s := strconv.Itoa(n)
		return &s
	}
	return nil
}

// toInt accepts the numeric forms produced by encoding/json and by hand-built fixtures.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return floatToInt(f)
	case float64:
		return floatToInt(n)
	case float32:
		return floatToInt(float64(n))
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		return int(n), true
	default:
		return 0, false
	}
}

func floatToInt(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// objects keeps the object entries of a JSON list and drops everything else.
func objects(list []any) []Object {
	out := make([]Object, 0, len(list))
	for _, v := range list {
		if m, ok := v.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}
