package client

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// listKeys are the wrapper members the API has used around list payloads.
var listKeys = []string{"data", "posts", "articles", "categories", "notifications", "comments", "results"}

// decodeList accepts a bare array or an object carrying the array under one
// of listKeys, falling back to the first array-valued member. A body
// without any array decodes to an empty list.
func decodeList[T any](body []byte) ([]T, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil, nil
	}

	if body[0] == '[' {
		var out []T
		if err := json.Unmarshal(body, &out); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
		return out, nil
	}

	members, order, err := objectMembers(body)
	if err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}

	pick := func(raw json.RawMessage) ([]T, bool, error) {
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 || raw[0] != '[' {
			return nil, false, nil
		}
		var out []T
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, true, fmt.Errorf("decode list: %w", err)
		}
		return out, true, nil
	}

	for _, k := range listKeys {
		if out, ok, err := pick(members[k]); ok {
			return out, err
		}
	}
	for _, k := range order {
		if out, ok, err := pick(members[k]); ok {
			return out, err
		}
	}
	return nil, nil
}

// decodeObject unwraps a single resource. A body that has an "id" member is
// taken as the resource itself, otherwise the first of wrappers holding an
// object is used.
func decodeObject[T any](body []byte, wrappers ...string) (*T, error) {
	body = bytes.TrimSpace(body)
	var out T
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return &out, nil
	}

	if body[0] == '{' {
		members, _, err := objectMembers(body)
		if err != nil {
			return nil, fmt.Errorf("decode object: %w", err)
		}
		if _, ok := members["id"]; !ok {
			for _, w := range append([]string{"data"}, wrappers...) {
				raw := bytes.TrimSpace(members[w])
				if len(raw) > 0 && raw[0] == '{' {
					body = raw
					break
				}
			}
		}
	}

	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode object: %w", err)
	}
	return &out, nil
}

// objectMembers decodes a JSON object keeping the member order.
func objectMembers(body []byte) (map[string]json.RawMessage, []string, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, fmt.Errorf("expected object, got %v", tok)
	}

	members := make(map[string]json.RawMessage)
	var order []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, _ := tok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, nil, err
		}
		if _, seen := members[key]; !seen {
			order = append(order, key)
		}
		members[key] = raw
	}
	return members, order, nil
}
