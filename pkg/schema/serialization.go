package schema

import (
	json "github.com/goccy/go-json"
)

// MarshalJSON writes the schema as fact names mapped to type names, e.g.
// {"flag":"boolean","range":"integer[0..9]"}. Tree summaries publish it so
// clients know which facts to send.
func (s Schema) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	names := make(map[string]string, len(s))
	for _, key := range s.keys() {
		names[key] = s[key].Name()
	}
	return json.Marshal(names)
}
