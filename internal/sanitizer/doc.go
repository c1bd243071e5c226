// Package sanitizer runs the redaction engine over files on disk.
//
// Each file is read in full, decoded, sanitized, re-encoded with the
// encoding it was read with and written atomically next to the input as
// <prefix><name>. Files are independent: a failure is recorded in that
// file's [FileResult] and the batch carries on.
package sanitizer
