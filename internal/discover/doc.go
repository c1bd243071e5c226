// Package discover expands command-line arguments into the list of files to
// sanitize.
//
// An argument may name a file, a directory (walked only in recursive mode)
// or a glob pattern. Problems with individual arguments become warnings so
// the remaining arguments are still processed.
package discover
