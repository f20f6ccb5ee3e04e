package pack

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// member is one key of a JSON object with its undecoded value.
type member struct {
	Key   string
	Value json.RawMessage
}

// objectMembers decodes the top level keys of a JSON object in script
// property order: integer keys ascending, then the other keys in source
// order. A repeated key keeps its first position and its last value.
func objectMembers(raw []byte) ([]member, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}

	var members []member
	pos := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("value of %q: %w", key, err)
		}
		if i, seen := pos[key]; seen {
			members[i].Value = value
			continue
		}
		pos[key] = len(members)
		members = append(members, member{Key: key, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	sort.SliceStable(members, func(i, j int) bool {
		a, aIdx := arrayIndex(members[i].Key)
		b, bIdx := arrayIndex(members[j].Key)
		if aIdx && bIdx {
			return a < b
		}
		return aIdx && !bIdx
	})
	return members, nil
}

// arrayIndex reports whether key is a canonical array index.
func arrayIndex(key string) (uint32, bool) {
	if key == "" || (len(key) > 1 && key[0] == '0') {
		return 0, false
	}
	n, err := strconv.ParseUint(key, 10, 32)
	if err != nil || n == 1<<32-1 {
		return 0, false
	}
	return uint32(n), true
}

// jsonKind returns the kind of a raw JSON value: "object", "array",
// "string", "number", "bool", "null" or "" when raw is empty.
func jsonKind(raw json.RawMessage) string {
	s := bytes.TrimLeft(raw, " \t\r\n")
	if len(s) == 0 {
		return ""
	}
	switch s[0] {
	case '{':
		return "object"
	case '[':
		return "array"
	case '"':
		return "string"
	case 't', 'f':
		return "bool"
	case 'n':
		return "null"
	}
	return "number"
}

// parseInt reads the leading decimal integer of s, ignoring leading
// blanks and anything after the digits ("12.5px" is 12).
func parseInt(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t\r\n")
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
