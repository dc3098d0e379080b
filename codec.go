package lightnet

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"
	"unicode"
)

// JSONCodec is the default serializer. The wire format is JSON with
// snake_case object keys; keys are rewritten symmetrically so that plain
// exported Go field names (UserID, CreatedAt) map onto snake_case wire
// keys (user_id, created_at) without struct tags. time.Time values use
// RFC 3339 (ISO-8601), which encoding/json already produces.
//
// Structs that carry their own snake_case json tags should use
// RawJSONCodec instead, since the key rewrite would bypass the tags.
type JSONCodec struct{}

// Encode marshals v and rewrites object keys to snake_case.
func (JSONCodec) Encode(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return translateKeys(data, camelToSnake)
}

// Decode rewrites object keys from snake_case to camelCase and unmarshals
// into v. The camelCase form matches exported Go field names through
// encoding/json's case-insensitive lookup.
func (JSONCodec) Decode(data []byte, v any) error {
	translated, err := translateKeys(data, snakeToCamel)
	if err != nil {
		return err
	}
	return json.Unmarshal(translated, v)
}

// RawJSONCodec passes JSON through encoding/json untouched, for callers
// whose types carry explicit json tags.
type RawJSONCodec struct{}

func (RawJSONCodec) Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (RawJSONCodec) Decode(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// translateKeys rewrites every object key in a JSON document with conv,
// recursing through nested objects and arrays. Values are carried as
// json.RawMessage so numbers and strings survive byte for byte.
func translateKeys(data []byte, conv func(string) string) ([]byte, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return data, nil
	}

	switch trimmed[0] {
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return nil, err
		}
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			name, err := json.Marshal(conv(k))
			if err != nil {
				return nil, err
			}
			buf.Write(name)
			buf.WriteByte(':')
			val, err := translateKeys(obj[k], conv)
			if err != nil {
				return nil, err
			}
			buf.Write(val)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil

	case '[':
		var arr []json.RawMessage
		if err := json.Unmarshal(trimmed, &arr); err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, el := range arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			val, err := translateKeys(el, conv)
			if err != nil {
				return nil, err
			}
			buf.Write(val)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil

	default:
		return data, nil
	}
}

// camelToSnake converts UserID to user_id and CreatedAt to created_at,
// keeping acronym runs intact (HTTPStatus becomes http_status).
func camelToSnake(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 {
			prevLower := !unicode.IsUpper(runes[i-1]) && runes[i-1] != '_'
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || (unicode.IsUpper(runes[i-1]) && nextLower) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// snakeToCamel converts user_id to userId. The result only needs to match
// Go field names case-insensitively, so acronym casing is not restored.
func snakeToCamel(s string) string {
	parts := strings.Split(s, "_")
	if len(parts) == 1 {
		return s
	}
	var b strings.Builder
	for i, p := range parts {
		if p == "" {
			continue
		}
		if i == 0 {
			b.WriteString(p)
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}
