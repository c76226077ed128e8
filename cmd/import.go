// =============================================================================
// PayPal to GnuCash Importer - Import Command
// =============================================================================
//
// This file defines the 'import' command, which runs the whole pipeline for
// one export file.
//
// COMMAND USAGE:
//   paypal-import import [flags] <ledger.gnucash> <paypal.csv> <output.gnucash>
//
// FLAGS:
//   -p, --pretty     : Write the output XML pretty-printed
//   -d, --delimiter  : Delimiter used in the CSV file (default tab)
//   -q, --quotechar  : Quote character used in the CSV file
//   -e, --encoding   : Character encoding of the CSV file (default iso-8859-1)
//   -r, --rules      : Rule source (YAML or XLSX), repeatable; later files
//                      shadow earlier ones on key collisions
//
// PROCESSING PIPELINE:
//   1. Load configuration and rule sources
//   2. Read the ledger (gzip or plain XML)
//   3. Read the CSV export
//   4. Run the sequential import pass (merge, route, resolve, build)
//   5. Write the amended ledger to the output path
//
// The pass is strictly sequential: the currency-conversion merge depends on
// row order, so records are never processed concurrently. Any fatal
// validation error aborts with exit code 1 before the output file exists.
//
// =============================================================================

package cmd

import (
	"bytes"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gncutils/paypal-import/internal/config"
	"github.com/gncutils/paypal-import/internal/csvparser"
	"github.com/gncutils/paypal-import/internal/gnucash"
	"github.com/gncutils/paypal-import/internal/importer"
	"github.com/gncutils/paypal-import/internal/logger"
	"github.com/gncutils/paypal-import/internal/paypal"
	"github.com/gncutils/paypal-import/internal/rules"
	"github.com/gncutils/paypal-import/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// pretty enables indented XML output.
var pretty bool

// delimiter is the CSV field separator.
var delimiter string

// quoteChar is the CSV quote character.
var quoteChar string

// csvEncoding is the character encoding of the CSV file.
var csvEncoding string

// ruleFiles are the rule sources, in precedence order (lowest first).
var ruleFiles []string

// =============================================================================
// IMPORT COMMAND DEFINITION
// =============================================================================

// importCmd represents the 'import' command.
var importCmd = &cobra.Command{
	Use:   "import <ledger.gnucash> <paypal.csv> <output.gnucash>",
	Short: "Import a PayPal CSV export into a GnuCash ledger",
	Long: `The import command reads the given GnuCash ledger and PayPal CSV export,
books every export row as a balanced transaction, and writes the amended
ledger to the output path. The input ledger is read-only; the output path
must be different.

Unmatched transaction types are booked between the "PayPal" and "Imbalance"
accounts. To route specific (type, status) combinations to other accounts,
pass rule files with --rules.

Fatal inconsistencies in the export (malformed amounts, unknown accounts,
broken currency conversions, foreign-currency main transactions) abort the
run with exit code 1 and no output file.`,

	Args: cobra.ExactArgs(3),

	RunE: func(cmd *cobra.Command, args []string) error {
		// Cobra would print usage for any returned error; fatal import
		// errors are not usage errors.
		cmd.SilenceUsage = true
		return runImport(args[0], args[1], args[2])
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init registers the import command and its flags.
func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().BoolVarP(
		&pretty,
		"pretty",
		"p",
		false,
		"Export XML pretty-printed",
	)

	importCmd.Flags().StringVarP(
		&delimiter,
		"delimiter",
		"d",
		"",
		"Delimiter used in the CSV file (default from config, normally tab)",
	)

	importCmd.Flags().StringVarP(
		&quoteChar,
		"quotechar",
		"q",
		"",
		"Quote character used in the CSV file",
	)

	importCmd.Flags().StringVarP(
		&csvEncoding,
		"encoding",
		"e",
		"",
		"Character encoding used in the CSV file (default from config, normally iso-8859-1)",
	)

	importCmd.Flags().StringArrayVarP(
		&ruleFiles,
		"rules",
		"r",
		nil,
		"Rule source (YAML or XLSX) for sorting into different accounts; repeatable",
	)
}

// =============================================================================
// MAIN IMPORT FUNCTION
// =============================================================================

// runImport executes the pipeline for one export file.
func runImport(ledgerPath, csvPath, outputPath string) error {
	startTime := time.Now()
	log := logger.New(verbose)

	if outputPath == ledgerPath {
		return fmt.Errorf("output path must differ from the input ledger (the ledger is never overwritten in place)")
	}

	// =========================================================================
	// STEP 1: CONFIGURATION AND RULES
	// =========================================================================

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyFlagOverrides(cfg)

	location, err := cfg.Location()
	if err != nil {
		return err
	}

	table, err := rules.LoadSources(ruleFiles)
	if err != nil {
		return err
	}
	log.Debug().Int("rules", table.Len()).Msg("routing table assembled")

	// =========================================================================
	// STEP 2: READ THE LEDGER
	// =========================================================================

	doc, err := gnucash.LoadDocument(ledgerPath)
	if err != nil {
		return err
	}
	log.Debug().Int("accounts", len(doc.Accounts())).
		Int("transactions", len(doc.Transactions())).
		Str("ledger", ledgerPath).
		Msg("ledger loaded")

	// =========================================================================
	// STEP 3: READ THE CSV EXPORT
	// =========================================================================

	rows, err := csvparser.Parse(csvPath, cfg.ParserSettings(), paypal.RequiredFields)
	if err != nil {
		return err
	}
	records := paypal.WrapRecords(rows)

	// =========================================================================
	// STEP 4: RUN THE IMPORT PASS
	// =========================================================================

	imp := importer.New(doc, table, log, importer.Options{
		BaseCurrency: cfg.BaseCurrency,
		Location:     location,
		EntryTime:    startTime,
	})

	stats, err := imp.Run(records)
	if err != nil {
		return err
	}

	// =========================================================================
	// STEP 5: WRITE THE AMENDED LEDGER
	// =========================================================================

	var buffer bytes.Buffer
	options := gnucash.WriteOptions{Pretty: pretty || cfg.Pretty, Indent: cfg.Indent}
	if err := doc.Write(&buffer, options); err != nil {
		return err
	}
	if err := utils.WriteFileAtomic(outputPath, buffer.Bytes()); err != nil {
		return err
	}

	log.Info().
		Int("rows", stats.Rows).
		Int("conversion_rows", stats.ConversionRows).
		Int("appended", stats.Appended).
		Int("skipped", stats.Skipped).
		Str("output", outputPath).
		Dur("elapsed", time.Since(startTime)).
		Msg("import complete")

	return nil
}

// applyFlagOverrides copies explicitly set command-line flags over the file
// configuration.
func applyFlagOverrides(cfg *config.Config) {
	if delimiter != "" {
		cfg.CSVSettings.Delimiter = delimiter
	}
	if quoteChar != "" {
		cfg.CSVSettings.QuoteChar = quoteChar
	}
	if csvEncoding != "" {
		cfg.CSVSettings.Encoding = csvEncoding
	}
}
