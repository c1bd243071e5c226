// Package cache provides a file-based cache for sanitize results.
//
// Cache entries are keyed by a SHA-256 hash of the catalog fingerprint, the
// enabled categories, the already-sanitized threshold and the decoded file
// content. Each entry stores the sanitized text and replacement counts along
// with a creation timestamp and a TTL (in seconds). Expired entries are
// skipped on read and removed during cache-clear operations.
//
// The default cache directory is $XDG_CACHE_HOME/codesan (or the
// OS-appropriate equivalent). Only sanitized output is ever written to the
// cache. Writers from concurrent processes are serialized with a lock file in
// the cache directory.
package cache
