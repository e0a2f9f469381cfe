package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/arbor/pkg/document"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/google/go-cmp/cmp"
)

// SampleDocument returns a small, valid document used by the contract suites.
func SampleDocument(name string) *document.Document {
	return &document.Document{
		Name: name,
		InputTypes: []document.InputTypeDef{
			{BooleanType: &document.BooleanTypeDef{Name: "flag"}},
		},
		ResultType: &document.ResultTypeDef{
			Class: "Answer",
			Attributes: []document.AttributeDef{
				{TextAttribute: &document.AttributeSpec{Name: "label"}},
			},
		},
		Tree: []document.Element{
			{Input: "flag", Value: "true", Result: map[string]document.Scalar{"label": "yes"}},
			{Input: "flag", Value: "false", Result: map[string]document.Scalar{"label": "no"}},
		},
	}
}

// DocumentLoaderContractTest is a reusable test suite that verifies if an adapter complies with ports.DocumentLoader.
// setupData must already be readable through loader.
func DocumentLoaderContractTest(t *testing.T, loader ports.DocumentLoader, setupData map[string]*document.Document) {
	t.Helper()
	ctx := context.Background()

	// 1. Test LoadDocument (Success)
	t.Run("LoadDocument_Success", func(t *testing.T) {
		for id, expected := range setupData {
			doc, err := loader.LoadDocument(ctx, id)
			if err != nil {
				t.Fatalf("unexpected error loading document %s: %v", id, err)
			}
			if diff := cmp.Diff(expected, doc); diff != "" {
				t.Errorf("document mismatch for %s (-want +got):\n%s", id, diff)
			}
		}
	})

	// 2. Test LoadDocument (NotFound)
	t.Run("LoadDocument_NotFound", func(t *testing.T) {
		_, err := loader.LoadDocument(ctx, "non-existent-tree")
		if err == nil {
			t.Fatal("expected error for non-existent document, got nil")
		}
		if !errors.Is(err, domain.ErrDocumentNotFound) {
			t.Errorf("expected ErrDocumentNotFound, got %v", err)
		}
	})

	// 3. Test ListDocuments
	t.Run("ListDocuments", func(t *testing.T) {
		ids, err := loader.ListDocuments(ctx)
		if err != nil {
			t.Fatalf("unexpected error listing documents: %v", err)
		}

		if len(ids) != len(setupData) {
			t.Errorf("expected %d documents, got %d (%v)", len(setupData), len(ids), ids)
		}

		for i := 1; i < len(ids); i++ {
			if ids[i-1] > ids[i] {
				t.Errorf("ids not sorted: %v", ids)
				break
			}
		}

		lookup := make(map[string]bool)
		for _, id := range ids {
			lookup[id] = true
		}
		for id := range setupData {
			if !lookup[id] {
				t.Errorf("document %s missing from list", id)
			}
		}
	})
}

// DocumentStoreContractTest verifies the write side of ports.DocumentStore
// on an initially empty store.
func DocumentStoreContractTest(t *testing.T, store ports.DocumentStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("SaveLoadDelete", func(t *testing.T) {
		doc := SampleDocument("sample")
		if err := store.SaveDocument(ctx, "sample", doc); err != nil {
			t.Fatalf("SaveDocument failed: %v", err)
		}

		got, err := store.LoadDocument(ctx, "sample")
		if err != nil {
			t.Fatalf("LoadDocument failed: %v", err)
		}
		if diff := cmp.Diff(doc, got); diff != "" {
			t.Errorf("round trip mismatch (-want +got):\n%s", diff)
		}

		ids, err := store.ListDocuments(ctx)
		if err != nil {
			t.Fatalf("ListDocuments failed: %v", err)
		}
		if len(ids) != 1 || ids[0] != "sample" {
			t.Errorf("expected [sample], got %v", ids)
		}

		if err := store.DeleteDocument(ctx, "sample"); err != nil {
			t.Fatalf("DeleteDocument failed: %v", err)
		}
		if _, err := store.LoadDocument(ctx, "sample"); !errors.Is(err, domain.ErrDocumentNotFound) {
			t.Errorf("expected ErrDocumentNotFound after delete, got %v", err)
		}
		if err := store.DeleteDocument(ctx, "sample"); err != nil {
			t.Errorf("deleting a missing document should succeed, got %v", err)
		}
	})
}
