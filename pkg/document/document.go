package document

// Document is the format-agnostic form of a decision tree definition.
// It is produced by Parse (YAML or JSON), by FromMap (loosely typed maps such
// as front matter) or by the dsl package, and consumed by the compiler.
type Document struct {
	Name        string         `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	InputTypes  []InputTypeDef `json:"input-types" yaml:"input-types" mapstructure:"input-types"`
	ResultType  *ResultTypeDef `json:"result-type,omitempty" yaml:"result-type,omitempty" mapstructure:"result-type"`
	Tree        []Element      `json:"tree" yaml:"tree" mapstructure:"tree"`
}

// InputTypeDef declares one input type. Exactly one field must be set.
type InputTypeDef struct {
	StringType  *StringTypeDef  `json:"string-type,omitempty" yaml:"string-type,omitempty" mapstructure:"string-type"`
	IntegerType *IntegerTypeDef `json:"integer-type,omitempty" yaml:"integer-type,omitempty" mapstructure:"integer-type"`
	BooleanType *BooleanTypeDef `json:"boolean-type,omitempty" yaml:"boolean-type,omitempty" mapstructure:"boolean-type"`
}

// Name returns the declared name, whichever variant is set.
func (d InputTypeDef) Name() string {
	switch {
	case d.StringType != nil:
		return d.StringType.Name
	case d.IntegerType != nil:
		return d.IntegerType.Name
	case d.BooleanType != nil:
		return d.BooleanType.Name
	}
	return ""
}

// StringTypeDef declares an enumerated string input.
// The default may be given either as Default or by flagging one value.
type StringTypeDef struct {
	Name    string      `json:"name" yaml:"name" mapstructure:"name"`
	Values  []EnumValue `json:"values" yaml:"values" mapstructure:"values"`
	Default string      `json:"default,omitempty" yaml:"default,omitempty" mapstructure:"default"`
}

// EnumValue is one enumerated value. It is written as a plain string, or as
// {text: v, default: true} to mark the fallback value.
type EnumValue struct {
	Text    string `json:"text" yaml:"text" mapstructure:"text"`
	Default bool   `json:"default,omitempty" yaml:"default,omitempty" mapstructure:"default"`
}

// IntegerTypeDef declares an integer range input. Empty or "unbounded" bounds are open.
type IntegerTypeDef struct {
	Name string `json:"name" yaml:"name" mapstructure:"name"`
	Min  Scalar `json:"min,omitempty" yaml:"min,omitempty" mapstructure:"min"`
	Max  Scalar `json:"max,omitempty" yaml:"max,omitempty" mapstructure:"max"`
}

// BooleanTypeDef declares a boolean input.
type BooleanTypeDef struct {
	Name string `json:"name" yaml:"name" mapstructure:"name"`
}

// ResultTypeDef names the result class and declares its attributes.
type ResultTypeDef struct {
	Class      string         `json:"class" yaml:"class" mapstructure:"class"`
	Attributes []AttributeDef `json:"attributes" yaml:"attributes" mapstructure:"attributes"`
}

// AttributeDef declares one result attribute. Exactly one field must be set.
type AttributeDef struct {
	StringAttribute  *AttributeSpec `json:"string-attribute,omitempty" yaml:"string-attribute,omitempty" mapstructure:"string-attribute"`
	BooleanAttribute *AttributeSpec `json:"boolean-attribute,omitempty" yaml:"boolean-attribute,omitempty" mapstructure:"boolean-attribute"`
	IntegerAttribute *AttributeSpec `json:"integer-attribute,omitempty" yaml:"integer-attribute,omitempty" mapstructure:"integer-attribute"`
	TextAttribute    *AttributeSpec `json:"text-attribute,omitempty" yaml:"text-attribute,omitempty" mapstructure:"text-attribute"`
}

// AttributeSpec holds the settings shared by every attribute variant.
type AttributeSpec struct {
	Name    string   `json:"name" yaml:"name" mapstructure:"name"`
	Values  []Scalar `json:"values,omitempty" yaml:"values,omitempty" mapstructure:"values"`
	Default *Scalar  `json:"default,omitempty" yaml:"default,omitempty" mapstructure:"default"`
}

// Element is one branch of the tree: the value an input takes and what
// follows from it. Exactly one of Ref, Result or Children must be set.
type Element struct {
	Input    string            `json:"input" yaml:"input" mapstructure:"input"`
	Value    Scalar            `json:"value" yaml:"value" mapstructure:"value"`
	Ref      string            `json:"ref,omitempty" yaml:"ref,omitempty" mapstructure:"ref"`
	Result   map[string]Scalar `json:"result,omitempty" yaml:"result,omitempty" mapstructure:"result"`
	Children []Element         `json:"children,omitempty" yaml:"children,omitempty" mapstructure:"children"`
}
