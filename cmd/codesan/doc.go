// Codesan is a CLI that strips sensitive data from source files before they
// are shared.
//
// Each input is scanned for API keys, passwords, email addresses, URLs, IP
// addresses, file paths, database connection strings and comments. Matches
// are replaced with fixed placeholders and the result is written next to the
// input with a prefix.
//
// Usage:
//
//	codesan app.py                     # writes sanitized_app.py
//	codesan -r src                     # walk a directory
//	codesan "*.js" --skip-comments     # keep comments
//	codesan --stdout - < config.ini    # filter stdin to stdout
//	codesan --format json --dry-run .  # report only
//	codesan categories                 # list categories and placeholders
package main
