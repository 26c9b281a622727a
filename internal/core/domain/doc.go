// Package domain defines the core business entities for ClipVault.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Item: A captured clipboard entry with its typed payload
//   - ContentKind: The tagged-union discriminator for item payloads
//   - SearchCandidate / FuzzyMatch: Ephemeral ranking representations
//   - MatchData / HighlightRange: Snippet text with character offsets
//   - Tuning: Scoring and pruning knobs passed to the orchestrator
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
