package compiler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/aretw0/arbor/pkg/document"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/result"
	"github.com/aretw0/arbor/pkg/tree"
)

// Compiler turns documents into validated decision trees.
type Compiler struct {
	registry    *result.Registry
	openResults bool
	logger      *slog.Logger
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithRegistry sets the registry used to resolve result classes.
func WithRegistry(r *result.Registry) Option {
	return func(c *Compiler) {
		c.registry = r
	}
}

// WithOpenResults makes unknown result classes compile to result.Record types
// instead of failing.
func WithOpenResults(open bool) Option {
	return func(c *Compiler) {
		c.openResults = open
	}
}

// WithLogger sets the logger used for compilation diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Compiler) {
		c.logger = l
	}
}

// New creates a compiler.
func New(opts ...Option) *Compiler {
	c := &Compiler{}
	for _, opt := range opts {
		opt(c)
	}
	if c.registry == nil {
		c.registry = result.NewRegistry()
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c
}

// Compile builds the input catalog and result spec, assembles the tree bottom-up
// and validates it. No partial tree is returned on failure.
func (c *Compiler) Compile(doc *document.Document) (*tree.DecisionTree, error) {
	if doc == nil {
		return nil, &domain.ConfigurationError{Msg: "Invalid document: document is nil"}
	}

	catalog, err := BuildCatalog(doc.InputTypes)
	if err != nil {
		return nil, err
	}

	spec, err := c.buildSpec(doc.ResultType)
	if err != nil {
		return nil, err
	}

	if len(doc.Tree) == 0 {
		return nil, &domain.ConfigurationError{Msg: "Invalid document: no tree found"}
	}

	b := &treeBuilder{catalog: catalog, spec: spec}
	root, err := b.build(doc.Tree, "/")
	if err != nil {
		return nil, err
	}

	dt, err := tree.New(root, catalog, spec)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("compiled tree",
		"name", doc.Name,
		"inputs", catalog.Len(),
		"result", spec.Type().Name(),
		"depth", dt.Depth(),
	)
	return dt, nil
}

// BuildCatalog converts input-type declarations into a Catalog.
func BuildCatalog(defs []document.InputTypeDef) (*domain.Catalog, error) {
	catalog, err := domain.NewCatalog()
	if err != nil {
		return nil, err
	}
	for i, def := range defs {
		t, err := buildInputType(i, def)
		if err != nil {
			return nil, err
		}
		if err := catalog.Add(t); err != nil {
			return nil, err
		}
	}
	return catalog, nil
}

func buildInputType(index int, def document.InputTypeDef) (*domain.InputType, error) {
	set := 0
	for _, p := range []bool{def.StringType != nil, def.IntegerType != nil, def.BooleanType != nil} {
		if p {
			set++
		}
	}
	if set != 1 {
		return nil, domain.Configf(def.Name(), "Input-type #%d must declare exactly one of string-type, integer-type or boolean-type", index+1)
	}

	switch {
	case def.BooleanType != nil:
		return domain.NewBooleanType(def.BooleanType.Name), nil

	case def.IntegerType != nil:
		it := def.IntegerType
		min, err := domain.ParseBound(string(it.Min), domain.Unbounded)
		if err != nil {
			return nil, domain.Configf(it.Name, "Invalid min value %q for input-type %q", it.Min, it.Name)
		}
		max, err := domain.ParseBound(string(it.Max), domain.UnboundedMax)
		if err != nil {
			return nil, domain.Configf(it.Name, "Invalid max value %q for input-type %q", it.Max, it.Name)
		}
		if min > max {
			return nil, domain.Configf(it.Name, "Input-type %q has a min value above its max value", it.Name)
		}
		return domain.NewIntegerType(it.Name, min, max), nil

	default:
		st := def.StringType
		values := make([]string, 0, len(st.Values))
		fallback := st.Default
		for _, v := range st.Values {
			values = append(values, v.Text)
			if !v.Default {
				continue
			}
			if fallback != "" && fallback != v.Text {
				return nil, domain.Configf(st.Name, "Input-type %q may not have more than one default type.", st.Name)
			}
			fallback = v.Text
		}
		if len(values) == 0 {
			return nil, domain.Configf(st.Name, "Input-type %q must declare at least one value", st.Name)
		}
		return domain.NewEnumType(st.Name, values, fallback)
	}
}

func (c *Compiler) buildSpec(def *document.ResultTypeDef) (*result.Spec, error) {
	if def == nil {
		return nil, &domain.ConfigurationError{Msg: "Missing result-type element"}
	}

	typ, ok := c.registry.Lookup(def.Class)
	if !ok {
		if !c.openResults {
			c.logger.Debug("result class not registered", "class", def.Class, "registered", c.registry.Names())
			return nil, domain.Configf("", "Result class not found: %s", def.Class)
		}
		typ = result.RecordType(def.Class)
	}

	b := result.NewSpecBuilder(typ)
	for _, a := range def.Attributes {
		attr, err := buildAttribute(a)
		if err != nil {
			return nil, err
		}
		if err := b.Add(attr); err != nil {
			return nil, err
		}
	}
	return b.Build(), nil
}

func buildAttribute(def document.AttributeDef) (*result.Attribute, error) {
	var (
		spec *document.AttributeSpec
		attr *result.Attribute
		set  int
	)
	if def.StringAttribute != nil {
		spec, set = def.StringAttribute, set+1
		values := make([]string, 0, len(spec.Values))
		for _, v := range spec.Values {
			values = append(values, string(v))
		}
		attr = result.EnumAttribute(spec.Name, values...)
	}
	if def.BooleanAttribute != nil {
		spec, set = def.BooleanAttribute, set+1
		attr = result.BooleanAttribute(spec.Name)
	}
	if def.IntegerAttribute != nil {
		spec, set = def.IntegerAttribute, set+1
		attr = result.IntegerAttribute(spec.Name)
	}
	if def.TextAttribute != nil {
		spec, set = def.TextAttribute, set+1
		attr = result.TextAttribute(spec.Name)
	}
	if set != 1 {
		return nil, &domain.ConfigurationError{Msg: "Unknown result attribute type"}
	}
	if spec.Default != nil {
		attr.WithDefault(string(*spec.Default))
	}
	return attr, nil
}

type treeBuilder struct {
	catalog *domain.Catalog
	spec    *result.Spec
}

// build assembles the node for one level of sibling elements. path is the
// parent path ending in "/".
func (b *treeBuilder) build(elements []document.Element, path string) (*tree.Node, error) {
	if len(elements) == 0 {
		return nil, &domain.ConfigurationError{Path: path, Msg: fmt.Sprintf("Node at path %s has no children", path)}
	}

	name := elements[0].Input
	for _, el := range elements[1:] {
		if el.Input != name {
			return nil, &domain.ConfigurationError{Path: path, Msg: fmt.Sprintf("Node at path %s must have only one child type.", path)}
		}
	}

	input, ok := b.catalog.Lookup(name)
	if !ok {
		return nil, &domain.ConfigurationError{Path: path, Input: name, Msg: fmt.Sprintf("Undefined input name: %q", name)}
	}

	builder, err := tree.NewBuilder(input)
	if err != nil {
		return nil, err
	}

	nodePath := path + name
	for _, el := range elements {
		childPath := nodePath + "=" + string(el.Value)
		if err := b.addElement(builder, el, childPath); err != nil {
			return nil, withPath(err, childPath)
		}
	}

	node, err := builder.Build()
	if err != nil {
		return nil, withPath(err, nodePath)
	}
	return node, nil
}

func (b *treeBuilder) addElement(builder tree.Builder, el document.Element, path string) error {
	key := string(el.Value)
	hasChildren := len(el.Children) > 0
	hasResult := el.Result != nil

	switch {
	case el.Ref != "" && (hasChildren || hasResult):
		return &domain.ConfigurationError{Path: path, Msg: fmt.Sprintf("Node at path %s may not have both a refid and child elements.", path)}
	case hasChildren && hasResult:
		return &domain.ConfigurationError{Path: path, Msg: fmt.Sprintf("Node at path %s may not have both a result and child inputs.", path)}
	case el.Ref != "":
		return builder.AddReference(key, el.Ref)
	case hasChildren:
		child, err := b.build(el.Children, path+"/")
		if err != nil {
			return err
		}
		return builder.AddNode(key, child)
	case hasResult:
		lb := result.NewLeafBuilder(b.spec)
		attrs := make([]string, 0, len(el.Result))
		for attr := range el.Result {
			attrs = append(attrs, attr)
		}
		sort.Strings(attrs)
		for _, attr := range attrs {
			if err := lb.Set(attr, string(el.Result[attr])); err != nil {
				return err
			}
		}
		return builder.AddResult(key, lb.Build())
	default:
		return &domain.ConfigurationError{Path: path, Msg: fmt.Sprintf("Node at path %s must have a result, child inputs, or a refid", path)}
	}
}

func withPath(err error, path string) error {
	var cfg *domain.ConfigurationError
	if errors.As(err, &cfg) && cfg.Path == "" {
		cfg.Path = path
	}
	return err
}
