package batch

import (
	"fmt"
	"sort"
	"strings"
)

// Args holds the arguments of one operation.
type Args map[string]interface{}

// String returns a required string argument.
func (a Args) String(key string) (string, error) {
	v, ok := a[key]
	if !ok || v == nil {
		return "", fmt.Errorf("missing argument %q", key)
	}
	s, ok := scalar(v)
	if !ok || strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("argument %q must be a non-empty string", key)
	}
	return s, nil
}

// OptionalString returns a string argument or "" when absent.
func (a Args) OptionalString(key string) string {
	s, _ := scalar(a[key])
	return s
}

// Bool returns a boolean argument, false when absent.
func (a Args) Bool(key string) (bool, error) {
	v, ok := a[key]
	if !ok || v == nil {
		return false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("argument %q must be a boolean", key)
	}
	return b, nil
}

// Strings returns a list argument; a single string is a one-element list.
func (a Args) Strings(key string) ([]string, error) {
	switch v := a[key].(type) {
	case nil:
		return nil, nil
	case string:
		return []string{v}, nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := scalar(item)
			if !ok {
				return nil, fmt.Errorf("argument %q must be a list of strings", key)
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, fmt.Errorf("argument %q must be a list of strings", key)
}

// Map returns a mapping argument as Name=value pairs in key order.
func (a Args) Map(key string) ([]string, error) {
	switch v := a[key].(type) {
	case nil:
		return nil, nil
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]string, 0, len(v))
		for _, k := range keys {
			s, ok := scalar(v[k])
			if !ok {
				return nil, fmt.Errorf("argument %s.%s must be a scalar", key, k)
			}
			out = append(out, k+"="+s)
		}
		return out, nil
	}
	return nil, fmt.Errorf("argument %q must be a mapping", key)
}

// scalar renders strings, numbers and booleans as text.
func scalar(v interface{}) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case bool, int, int64, float64:
		return fmt.Sprint(x), true
	case nil:
		return "", true
	}
	return "", false
}
