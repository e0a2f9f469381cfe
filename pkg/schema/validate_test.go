package schema

import (
	"errors"
	"testing"

	"github.com/aretw0/arbor/pkg/domain"
)

func testSchema() Schema {
	return Schema{
		"flag":    Bool(),
		"range":   Int(-5, 5),
		"letters": Enum("a", "b", "c"),
	}
}

func TestValidate_Success(t *testing.T) {
	facts := domain.MapFacts{
		"flag":    true,
		"range":   int64(5),
		"letters": "b",
		"extra":   []string{"ignored"},
	}

	if err := Validate(testSchema(), facts); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestValidate_AbsentFactsAreNotErrors(t *testing.T) {
	if err := Validate(testSchema(), domain.MapFacts{"flag": false}); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestValidate_TypeMismatch(t *testing.T) {
	err := Validate(testSchema(), domain.MapFacts{"range": "foo"})
	if err == nil {
		t.Fatal("Validate() should return error for type mismatch")
	}

	var mismatch *domain.TypeMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected a TypeMismatchError in %v", err)
	}
	if mismatch.Field != "range" || mismatch.Expected != domain.FactInteger {
		t.Errorf("unexpected mismatch %+v", mismatch)
	}
	if !errors.Is(err, domain.ErrEvaluation) {
		t.Errorf("expected evaluation category, got %v", err)
	}
}

func TestValidate_OutOfRangeAndUnknownValue(t *testing.T) {
	err := Validate(testSchema(), domain.MapFacts{"range": 6, "letters": "z"})
	if err == nil {
		t.Fatal("Validate() should fail")
	}

	errs := ValidationErrors(err)
	if len(errs) != 2 {
		t.Fatalf("Validate() = %d errors, want 2: %v", len(errs), err)
	}

	// Key order: letters before range.
	first := errs[0].(*ValidationError)
	if first.Key != "letters" {
		t.Errorf("first error key = %q, want letters", first.Key)
	}

	var noMapping *domain.NoMappingError
	if !errors.As(errs[1], &noMapping) || noMapping.Input != "range" {
		t.Errorf("expected NoMappingError for range, got %v", errs[1])
	}
}

func TestValidate_EnumWithDefaultAcceptsAnyString(t *testing.T) {
	s := Schema{"letters": &EnumType{Values: []string{"a", "b"}, Default: "b"}}
	if err := Validate(s, domain.MapFacts{"letters": "z"}); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestValidateFields_Missing(t *testing.T) {
	err := ValidateFields(testSchema(), domain.MapFacts{}, "flag", "unknown")
	errs := ValidationErrors(err)
	if len(errs) != 2 {
		t.Fatalf("ValidateFields() = %d errors, want 2", len(errs))
	}

	var missing *domain.MissingFactError
	if !errors.As(errs[0], &missing) || missing.Fact != "flag" {
		t.Errorf("expected MissingFactError for flag, got %v", errs[0])
	}
	if errs[1].(*ValidationError).Reason != "not defined in schema" {
		t.Errorf("unexpected reason: %v", errs[1])
	}
}

func TestFromCatalog(t *testing.T) {
	letters, err := domain.NewEnumType("letters", []string{"a", "b"}, "a")
	if err != nil {
		t.Fatal(err)
	}
	catalog, err := domain.NewCatalog(
		domain.NewBooleanType("flag"),
		domain.NewIntegerType("range", 0, domain.UnboundedMax),
		letters,
	)
	if err != nil {
		t.Fatal(err)
	}

	s := FromCatalog(catalog)
	if len(s) != 3 {
		t.Fatalf("FromCatalog() = %d entries, want 3", len(s))
	}
	if got := s["range"].Name(); got != "integer[0..unbounded]" {
		t.Errorf("range type = %q", got)
	}
	if err := Validate(s, domain.MapFacts{"range": -1}); err == nil {
		t.Error("expected out-of-range error")
	}
}

func TestSchema_MarshalJSON(t *testing.T) {
	data, err := testSchema().MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	want := `{"flag":"boolean","letters":"string{a,b,c}","range":"integer[-5..5]"}`
	if string(data) != want {
		t.Errorf("MarshalJSON() = %s, want %s", data, want)
	}

	var empty Schema
	data, err = empty.MarshalJSON()
	if err != nil || string(data) != "null" {
		t.Errorf("nil schema = %s, %v", data, err)
	}
}
