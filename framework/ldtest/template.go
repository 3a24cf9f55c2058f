package ldtest

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var keyPlaceholder = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z0-9_]+)*)`)

// FormatName interpolates a table row into a name template.
//
// Printf-style placeholders consume the row's values in order: %s and %v format any value,
// %d and %i format an integer, %f a float, %j and %o JSON. %# is the row index and %% is a
// literal percent sign. Placeholders with no value left are kept as they are.
//
// If the row is a single map[string]interface{}, $key and $key.sub are replaced by the
// corresponding values, and $# by the row index.
func FormatName(template string, row Row, index int) string {
	if len(row) == 1 {
		if m, ok := row[0].(map[string]interface{}); ok && strings.Contains(template, "$") {
			template = strings.ReplaceAll(template, "$#", strconv.Itoa(index))
			return keyPlaceholder.ReplaceAllStringFunc(template, func(placeholder string) string {
				if v, ok := lookupKey(m, strings.Split(placeholder[1:], ".")); ok {
					return formatValue(v)
				}
				return placeholder
			})
		}
	}

	var b strings.Builder
	next := 0
	for i := 0; i < len(template); i++ {
		ch := template[i]
		if ch != '%' || i == len(template)-1 {
			b.WriteByte(ch)
			continue
		}
		verb := template[i+1]
		switch verb {
		case '%':
			b.WriteByte('%')
			i++
			continue
		case '#':
			b.WriteString(strconv.Itoa(index))
			i++
			continue
		case 's', 'v', 'd', 'i', 'f', 'j', 'o':
		default:
			b.WriteByte(ch)
			continue
		}
		if next >= len(row) {
			b.WriteByte(ch)
			continue
		}
		b.WriteString(formatVerb(verb, row[next]))
		next++
		i++
	}
	return b.String()
}

func formatVerb(verb byte, v interface{}) string {
	switch verb {
	case 'd', 'i':
		if n, ok := numberValue(v); ok {
			if math.IsNaN(n) || math.IsInf(n, 0) {
				return "NaN"
			}
			return strconv.FormatInt(int64(n), 10)
		}
		return "NaN"
	case 'f':
		if n, ok := numberValue(v); ok {
			return strconv.FormatFloat(n, 'f', -1, 64)
		}
		return "NaN"
	case 'j', 'o':
		if data, err := json.Marshal(v); err == nil {
			return string(data)
		}
		return fmt.Sprintf("%v", v)
	}
	return formatValue(v)
}

func formatValue(v interface{}) string {
	if v == nil {
		return "null"
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func numberValue(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func lookupKey(m map[string]interface{}, path []string) (interface{}, bool) {
	var current interface{} = m
	for _, key := range path {
		cm, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		if current, ok = cm[key]; !ok {
			return nil, false
		}
	}
	return current, true
}
