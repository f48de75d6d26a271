// Package query is the read side of learnlog: statistics, full-text search,
// review selection and export bundles.
//
// Every operation reads inside one store.View so its results come from a
// single snapshot, even while an ingesting process is writing.
//
// # Review policy
//
// DueForReview is a fixed staleness threshold, not a spaced-repetition
// algorithm. A concept is due when it was never reviewed or its last review
// is older than now minus the staleness. Never-reviewed concepts sort first,
// then the longest-unreviewed. There is no forgetting curve and review_count
// does not affect selection.
package query
