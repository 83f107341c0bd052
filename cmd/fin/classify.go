package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/sthwalo/acc-sub003/internal/cli"
)

func classifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify unclassified transactions using the rule set",
		Long: `Assign accounts to transactions that have none.

Only matches at or above the auto-classification threshold are saved;
the rest stay unclassified for review.`,
		RunE: runClassify,
	}
	addCompanyFlag(cmd)
	return cmd
}

func runClassify(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	n, err := a.svc.ClassifyUnclassified(cmd.Context(), companyID(cmd))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Classified %d transactions", n)))
	return nil
}

func reclassifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reclassify",
		Short: "Re-run classification over every transaction",
		Long:  `Re-evaluate every transaction against the current rules and update those whose account changes.`,
		RunE:  runReclassify,
	}
	addCompanyFlag(cmd)
	return cmd
}

func runReclassify(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	n, err := a.svc.ReclassifyAll(cmd.Context(), companyID(cmd))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Reclassified %d transactions", n)))
	return nil
}
