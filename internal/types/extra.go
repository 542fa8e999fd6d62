package types

import (
	"encoding/json"
	"reflect"
	"strings"
	"sync"
)

// Extra holds JSON keys that a typed payload does not model. They are written
// back unchanged so callers can pass provider options the gateway does not know.
type Extra map[string]json.RawMessage

// Clone returns a shallow copy of the map. Raw values are never mutated in
// place, so sharing the byte slices is safe.
func (e Extra) Clone() Extra {
	if e == nil {
		return nil
	}
	out := make(Extra, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Without returns a copy of e minus the given keys.
func (e Extra) Without(keys ...string) Extra {
	out := e.Clone()
	for _, k := range keys {
		delete(out, k)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

var knownKeysCache sync.Map // reflect.Type -> map[string]struct{}

// knownKeys lists the JSON keys declared by the struct tags of t.
func knownKeys(t reflect.Type) map[string]struct{} {
	if cached, ok := knownKeysCache.Load(t); ok {
		return cached.(map[string]struct{})
	}
	keys := make(map[string]struct{}, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("json")
		name, _, _ := strings.Cut(tag, ",")
		if name == "" || name == "-" {
			continue
		}
		keys[name] = struct{}{}
	}
	knownKeysCache.Store(t, keys)
	return keys
}

// splitExtra decodes data as an object and returns every key that is not a
// typed field of t.
func splitExtra(data []byte, t reflect.Type) (Extra, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	known := knownKeys(t)
	var extra Extra
	for k, v := range all {
		if _, ok := known[k]; ok {
			continue
		}
		if extra == nil {
			extra = make(Extra)
		}
		extra[k] = v
	}
	return extra, nil
}

// mergeExtra marshals v and adds the extra keys that v did not emit itself.
// Keys that belong to a typed field are never taken from extra, so a field
// cleared on the typed value stays cleared.
func mergeExtra(v any, extra Extra, t reflect.Type) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil || len(extra) == 0 {
		return data, err
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, err
	}
	known := knownKeys(t)
	for k, raw := range extra {
		if _, ok := known[k]; ok {
			continue
		}
		if _, ok := merged[k]; ok {
			continue
		}
		merged[k] = raw
	}
	return json.Marshal(merged)
}
