package document

import (
	"bytes"
	"fmt"
	"strconv"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Scalar is a textual value that may be written as a string, number or
// boolean in the source document.
type Scalar string

// S is a convenience constructor for optional scalars.
func S(v string) *Scalar {
	s := Scalar(v)
	return &s
}

func (s Scalar) String() string { return string(s) }

// UnmarshalJSON accepts strings, numbers and booleans.
func (s *Scalar) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = Scalar(str)
		return nil
	}
	if bytes.Equal(data, []byte("true")) || bytes.Equal(data, []byte("false")) {
		*s = Scalar(data)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string, number or boolean, got %s", data)
	}
	*s = Scalar(n.String())
	return nil
}

// UnmarshalYAML accepts any scalar node.
func (s *Scalar) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a scalar value", node.Line)
	}
	*s = Scalar(node.Value)
	return nil
}

// UnmarshalJSON accepts a plain string or a {text, default} object.
func (v *EnumValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] != '{' {
		var s Scalar
		if err := s.UnmarshalJSON(data); err != nil {
			return err
		}
		*v = EnumValue{Text: string(s)}
		return nil
	}
	type plain EnumValue
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*v = EnumValue(p)
	return nil
}

// MarshalJSON writes non-default values as plain strings.
func (v EnumValue) MarshalJSON() ([]byte, error) {
	if !v.Default {
		return json.Marshal(v.Text)
	}
	type plain EnumValue
	return json.Marshal(plain(v))
}

// UnmarshalYAML accepts a plain scalar or a {text, default} mapping.
func (v *EnumValue) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*v = EnumValue{Text: node.Value}
		return nil
	}
	type plain EnumValue
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*v = EnumValue(p)
	return nil
}

// MarshalYAML writes non-default values as plain strings.
func (v EnumValue) MarshalYAML() (any, error) {
	if !v.Default {
		return v.Text, nil
	}
	type plain EnumValue
	return plain(v), nil
}

func scalarString(data any) (string, bool) {
	switch v := data.(type) {
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case uint64:
		return strconv.FormatUint(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case json.Number:
		return v.String(), true
	case fmt.Stringer:
		return v.String(), true
	}
	return "", false
}
