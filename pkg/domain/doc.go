/*
Package domain contains the core vocabulary shared by every Arbor package.

It defines the value domains a decision tree may branch on, the Facts contract
queried during evaluation and the error taxonomy that separates build-time
configuration failures from evaluation-time conditions. This package is kept
pure and free of external dependencies like I/O or persistence.

# Key Entities

  - InputType: A named, kinded value domain (boolean, integer range or string enum).
  - Catalog: The ordered set of input types declared by a document.
  - Facts: The typed key/value lookup a tree is evaluated against.
  - LifecycleHooks: Callbacks fired while a tree is being evaluated.
*/
package domain
