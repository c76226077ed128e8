// =============================================================================
// PayPal to GnuCash Importer - Main Entry Point
// =============================================================================
//
// This is the main entry point for the paypal-import CLI application. It
// initializes the Cobra CLI framework and delegates command execution to
// the cmd package.
//
// USAGE:
//   paypal-import import     - Import a PayPal CSV export into a ledger
//   paypal-import version    - Display the application version
//
// ARCHITECTURE:
//   This application follows a modular design where:
//   - cmd/           : Contains all CLI command definitions (Cobra)
//   - internal/      : Contains core business logic (not for external import)
//   - pkg/           : Contains shared utilities
//
// =============================================================================

package main

import (
	"github.com/gncutils/paypal-import/cmd"
)

// main is the entry point of the application.
// It simply calls the Execute function from the cmd package, which
// initializes and runs the Cobra CLI.
func main() {
	cmd.Execute()
}
