/*
Package ports defines the driven ports (interfaces) for the Arbor engine.

These interfaces decouple compilation and evaluation from where tree documents
are kept, allowing the engine to work with various storage backends.

# Key Interfaces

  - DocumentLoader: Responsible for loading tree documents (e.g., from Files, Loam or Memory).
  - DocumentStore: A loader that also persists documents (e.g., Redis, Memory).
  - Watchable: Implemented by loaders that can report changed documents for hot reload.
  - TreeSource / Evaluator: The driving side, consumed by the HTTP and MCP adapters.
*/
package ports
