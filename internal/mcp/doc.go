// Package mcp serves the learning tools over the Model Context Protocol
// (stdio transport, github.com/mark3labs/mcp-go).
//
// Tools:
//   - log_concept, log_pattern, log_gotcha, mark_reviewed (learning.Log)
//   - get_stats, query_concepts, get_learning_gaps, get_session_summary
//     (query.Engine)
//   - export_review (export.Markdown)
//
// Tool failures are reported in-band as an isError result so the assistant
// can read them; protocol failures use JSON-RPC error objects.
package mcp
