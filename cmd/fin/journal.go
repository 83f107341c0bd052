package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/sthwalo/acc-sub003/internal/cli"
	"github.com/sthwalo/acc-sub003/internal/common"
	"github.com/sthwalo/acc-sub003/internal/engine"
	"github.com/sthwalo/acc-sub003/internal/service"
)

func journalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Classify and post journal entries for imported transactions",
		Long: `Run the batch pipeline: classify each transaction and post a balanced
double-entry journal entry. Transactions that already have an entry are skipped,
so an interrupted run can be resumed by running the command again.`,
		RunE: runJournal,
	}
	addCompanyFlag(cmd)
	cmd.Flags().Int64("period", 0, "restrict to one fiscal period")
	cmd.Flags().Bool("strict", false, "validate the whole batch before posting anything")
	cmd.Flags().Bool("no-progress", false, "disable the progress bar")
	return cmd
}

func runJournal(cmd *cobra.Command, _ []string) error {
	periodID, _ := cmd.Flags().GetInt64("period")
	strict, _ := cmd.Flags().GetBool("strict")
	noProgress, _ := cmd.Flags().GetBool("no-progress")
	company := companyID(cmd)

	handler := cli.NewInterruptHandler(cmd.ErrOrStderr(), "fin journal --company "+strconv.FormatInt(company, 10))
	ctx := handler.HandleInterrupts(cmd.Context())

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	filter := service.TransactionFilter{CompanyID: company}
	if periodID > 0 {
		filter.FiscalPeriodID = &periodID
	}
	txns, err := a.store.GetTransactions(ctx, filter)
	if err != nil {
		return err
	}
	if len(txns) == 0 {
		return common.NewUserError("No transactions to post. Import a statement first.", common.ErrNoTransactions)
	}

	var opts []engine.BatchOption
	if !noProgress {
		bar := cli.NewProgressBar(cmd.ErrOrStderr(), len(txns), "Posting")
		opts = append(opts, engine.WithProgress(cli.ProgressFunc(bar)))
	}
	batch := a.svc.Batch(opts...)

	var result *engine.BatchResult
	if strict {
		result, err = batch.ProcessValidated(ctx, txns, company, a.cfg.Ledger.CreatedBy)
		if err != nil {
			return err
		}
	} else {
		result = batch.Process(ctx, txns, company, a.cfg.Ledger.CreatedBy)
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.RenderBatchSummary(result))
	if handler.WasInterrupted() {
		return nil
	}
	if !result.Success() {
		return fmt.Errorf("%d transactions failed: %w", result.Failed, errors.Join(result.Errors...))
	}
	return nil
}

func openingBalanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "opening-balance",
		Short: "Post the opening balance entry for a fiscal period",
		Long: `Derive the opening balance from the period's first transaction and post it
against the opening balance equity account. Re-running replaces the previous entry.`,
		RunE: runOpeningBalance,
	}
	addCompanyFlag(cmd)
	cmd.Flags().Int64("period", 0, "fiscal period id")
	_ = cmd.MarkFlagRequired("period")
	return cmd
}

func runOpeningBalance(cmd *cobra.Command, _ []string) error {
	periodID, _ := cmd.Flags().GetInt64("period")

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	entry, err := a.svc.OpeningBalance(cmd.Context(), companyID(cmd), periodID, a.cfg.Ledger.CreatedBy)
	if err != nil {
		return err
	}
	if entry == nil {
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Opening balance is zero; no entry posted"))
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Posted %s for %s",
		entry.Reference, cli.FormatAmount(entry.TotalDebits()))))
	return nil
}
