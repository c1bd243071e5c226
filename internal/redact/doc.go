// Package redact replaces sensitive substrings in source text with fixed
// placeholder literals before the text is shared outside the machine.
//
// Detection is regex heuristics grouped into categories (API keys, passwords,
// emails, URLs, IP addresses, filesystem paths, database connection strings,
// developer comments). The [Catalog] holds the categories in a fixed order
// and each category's patterns in a fixed order; the [Engine] applies them
// sequentially, so text produced by an earlier pattern is visible to later
// ones.
//
// Two guards keep redaction from stacking on top of itself. The whole
// document is left alone when it already contains enough placeholder
// literals (see [Guard]), and any individual match that already contains a
// placeholder is skipped (see [Decide]).
package redact
