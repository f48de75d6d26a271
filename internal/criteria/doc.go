// Package criteria describes read queries against the learning store
// without committing to SQL.
//
// A Query names one table from the catalog, an optional Predicate tree,
// an ordering and a limit. Predicate is a sealed interface: only the types
// in this package implement it, so the SQL backend (internal/querysql) can
// switch over it exhaustively.
//
// # Catalog
//
// The catalog lists every table the store owns and its columns in scan
// order. Validate rejects field names outside the catalog, which is what
// lets the compiler interpolate column names while keeping every value
// parameterized.
//
// # Predicates
//
//   - Equals: field = value
//   - Since / Before: time range on a timestamp column (>= / <)
//   - IsNull: field IS NULL
//   - And / Or: conjunction / disjunction
//   - HasTag: exact match of one normalized tag in the tags set
//   - Contains: case-insensitive substring over text columns (linear scan)
//   - Match: full-text predicate routed to the concepts FTS5 index
//
// Match may only appear at the top level or directly inside a top-level
// And; SQLite cannot evaluate MATCH under OR.
//
// # Time
//
// Timestamps are stored as fixed-width UTC text (TimeLayout) so that lexical
// comparison equals chronological comparison. FormatTime and ParseTime are
// the only conversions the store uses.
package criteria
