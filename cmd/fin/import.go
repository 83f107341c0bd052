package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/sthwalo/acc-sub003/internal/cli"
	"github.com/sthwalo/acc-sub003/internal/common"
	"github.com/sthwalo/acc-sub003/internal/engine"
	"github.com/sthwalo/acc-sub003/internal/extractor"
	"github.com/sthwalo/acc-sub003/internal/model"
	"github.com/sthwalo/acc-sub003/internal/ofx"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [files...]",
		Short: "Import bank statements (PDF or text)",
		Long: `Import bank statements, reconstructing one transaction per statement entry.

Statements already imported are recognised and skipped.

Examples:
  fin import --company 1 ~/Statements/2024-01.pdf
  fin import --company 1 --dry-run ~/Statements/*.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImport,
	}
	addCompanyFlag(cmd)
	cmd.Flags().BoolP("dry-run", "d", false, "Parse and report without saving")
	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	ctx := cmd.Context()

	files, err := expandFiles(args)
	if err != nil {
		return err
	}

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	company, err := a.store.GetCompany(ctx, companyID(cmd))
	if err != nil {
		return err
	}

	var failed int
	for _, path := range files {
		src, err := extractor.ForPath(path)
		if err != nil {
			common.LogError(err, "Skipping file", common.Fields{"file": path})
			failed++
			continue
		}

		var result *engine.ImportResult
		if dryRun {
			result, err = previewStatement(cmd, a, src, path, company)
		} else {
			result, err = a.svc.ImportStatement(ctx, src, path, company.ID)
		}
		if err != nil && !errors.Is(err, common.ErrNoTransactions) {
			common.LogError(err, "Failed to import statement", common.Fields{"file": path})
			failed++
			continue
		}
		if result != nil {
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderImportSummary(filepath.Base(path), result))
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed to import", failed, len(files))
	}
	return nil
}

func previewStatement(cmd *cobra.Command, a *app, src extractor.Extractor, path string, company *model.Company) (*engine.ImportResult, error) {
	ctx := cmd.Context()
	lines, err := src.ExtractLines(ctx, path)
	if err != nil {
		return nil, err
	}

	txns, parsed, err := a.svc.ParseStatement(ctx, lines, engine.StatementMeta{
		SourceFile:    filepath.Base(path),
		AccountNumber: src.AccountNumber(),
		Period:        src.StatementPeriod(),
	}, company)
	if err != nil {
		return nil, err
	}

	for _, txn := range txns {
		amount := cli.FormatAmount(txn.Amount())
		if !txn.IsCredit() {
			amount = "-" + amount
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s\n",
			txn.TransactionDate.Format(dateLayout), cli.AmountStyle.Render(amount), txn.Details)
	}
	return &engine.ImportResult{
		Parsed:         len(txns),
		Skipped:        parsed.Skipped,
		Errors:         parsed.Errors,
		OpeningBalance: parsed.OpeningBalance,
	}, nil
}

func importOFXCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-ofx [files...]",
		Short: "Import transactions from OFX/QFX files",
		Long: `Import transactions from OFX or QFX files exported from your bank.

Examples:
  fin import-ofx --company 1 ~/Downloads/cheque_jan_2024.ofx
  fin import-ofx --company 1 ~/Downloads/*.qfx`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImportOFX,
	}
	addCompanyFlag(cmd)
	return cmd
}

func runImportOFX(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	files, err := expandFiles(args)
	if err != nil {
		return err
	}

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	parser := ofx.NewParser()
	var failed int
	for _, path := range files {
		statements, err := parseOFXFile(cmd, parser, path)
		if err != nil {
			common.LogError(err, "Failed to parse OFX file", common.Fields{"file": path})
			failed++
			continue
		}

		for _, stmt := range statements {
			result, err := a.svc.ImportParsed(ctx, stmt.Transactions, engine.StatementMeta{
				SourceFile:    filepath.Base(path),
				AccountNumber: stmt.AccountID,
				Period:        stmt.Period,
			}, companyID(cmd))
			if errors.Is(err, common.ErrNoTransactions) {
				slog.Warn("No transactions found in statement", "file", filepath.Base(path), "account", stmt.AccountID)
				continue
			}
			if err != nil {
				common.LogError(err, "Failed to import OFX statement", common.Fields{"file": path, "account": stmt.AccountID})
				failed++
				continue
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderImportSummary(filepath.Base(path)+" "+stmt.AccountID, result))
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d OFX imports failed", failed)
	}
	return nil
}

func parseOFXFile(cmd *cobra.Command, parser *ofx.Parser, path string) ([]ofx.Statement, error) {
	f, err := os.Open(path) //nolint:gosec // Statement paths come from the user
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return parser.ParseFile(cmd.Context(), f)
}
