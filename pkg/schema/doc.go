// Package schema validates facts before they reach a decision tree.
//
// A Schema maps fact names to types mirroring the tree's input types:
// booleans, bounded integers and enumerated strings. It is usually derived
// from a compiled tree's catalog, but can be written by hand:
//
//	s := schema.FromCatalog(dt.InputTypes())
//
//	facts := domain.MapFacts{"flag": true, "range": 12}
//	if err := schema.Validate(s, facts); err != nil {
//	    // errors.Is(err, domain.ErrEvaluation) holds for type and range failures
//	}
//
// Marshalled as JSON, a schema maps fact names to type names such as
// "integer[-5..5]" or "string{a,b,c}".
//
// Validation reports every failure at once, in fact-name order, as an
// AggregateError.
package schema
