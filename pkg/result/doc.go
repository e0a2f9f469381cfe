/*
Package result describes the typed objects a decision tree produces.

A Type is a capability table: a constructor plus one Setter per attribute name.
A Spec binds a Type to the attributes a document declares, with their
validation rules and defaults. A Leaf captures the raw, already validated
attribute values of one tree branch and materializes a fresh result instance
every time it is reached.

Types are usually declared with Define for Go structs:

	answer := result.Define[Answer]("Answer").
		String("label", func(a *Answer, v string) { a.Label = v }).
		Bool("final", func(a *Answer, v bool) { a.Final = v }).
		Build()

or with RecordType when the shape is only known from the document.
*/
package result
