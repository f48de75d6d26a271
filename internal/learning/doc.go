// Package learning is the write API for concepts, patterns and gotchas.
//
// Tags are normalized on the way in (see NormalizeTags) so exact tag
// filters are reliable. Reviews only ever move forward: MarkReviewed
// increments the review count and stamps the review time.
package learning
