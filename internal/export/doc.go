// Package export formats a query.Bundle as a markdown review document.
//
// Markdown is the stable output (written to files and pipes). When the
// destination is a terminal the same markdown is rendered with glamour.
package export
