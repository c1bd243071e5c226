// Package cli wires together the Cobra command tree for the codesan binary.
//
// The root command sanitizes the files named on the command line. Subcommands
// manage configuration (config), the result cache (cache), and list the
// redaction categories (categories). Per-file failures never abort a run;
// they set exit code 1.
package cli
