// Package cli maps shadernet's command-line flags onto app.Config and
// reports usage problems as ExitError values carrying an exit code.
package cli
