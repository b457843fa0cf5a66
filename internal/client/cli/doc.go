// Package cli is the command-line host of the upload engine.
//
// It resolves the file arguments, enqueues them, opens an admission pass and
// renders the queue until every file is terminal. Failed files can be retried
// automatically for a configured number of rounds. A summary follows, and the
// exit code is non-zero when any file failed or was rejected.
//
// On a terminal the progress lines are redrawn in place; otherwise a line is
// printed whenever a file changes status or crosses a 10% step.
package cli
