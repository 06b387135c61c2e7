// Package domain defines the core business entities for voxdesk.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: Normalised text loaded from a file or URL
//   - Chunk: A paragraph-sized retrieval unit within a document
//   - Turn: One message in a conversation
//   - RecognitionStatus: A view of a live speech session
//   - AppSettings: Provider and behaviour configuration
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
