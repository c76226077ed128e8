// =============================================================================
// PayPal to GnuCash Importer - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that the subcommands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (paypal-import)
//   ├── importCmd (paypal-import import)
//   └── versionCmd (paypal-import version)
//
// The root command owns the global flags (--config, --verbose) shared by
// every subcommand.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// =============================================================================
// GLOBAL FLAGS
// =============================================================================

// cfgFile holds the path to the configuration file.
// This can be overridden using the --config flag.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use: "paypal-import",

	Short: "Import PayPal transaction exports into a GnuCash ledger",

	Long: `paypal-import reads a transaction export downloaded from PayPal (CSV) and
an existing GnuCash ledger file (XML, optionally gzip-compressed), books
every transaction as a balanced double entry, and writes the amended ledger
to a new file. The input ledger is never modified.

Key behavior:
  - Currency-conversion row pairs are folded into the transaction they
    belong to, so the ledger only sees the real economic transaction
  - Transactions are routed to account pairs via rule files (YAML or XLSX);
    unmatched transactions land on the Imbalance account
  - Amounts are stored as exact fractions, the way GnuCash keeps them
  - Any inconsistency in the export aborts the run before output is written

Example Usage:
  paypal-import import ledger.gnucash Download.csv out.gnucash
  paypal-import import -p -r donations.yaml ledger.gnucash Download.csv out.gnucash`,

	Run: func(cmd *cobra.Command, args []string) {
		// If no subcommand is provided, print the help message.
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). Any fatal import error ends
// up here and terminates the process with exit code 1.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init sets up the global flags.
func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"paypal-import.yaml",
		"Path to the configuration file (missing file falls back to defaults)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}
