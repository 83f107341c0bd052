package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/sthwalo/acc-sub003/internal/cli"
	"github.com/sthwalo/acc-sub003/internal/model"
	"github.com/sthwalo/acc-sub003/internal/pattern"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage classification rules",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List the rules applied to a company, in evaluation order",
		RunE:  runRulesList,
	}
	addCompanyFlag(list)

	add := &cobra.Command{
		Use:   "add",
		Short: "Add a classification rule",
		Long: `Add a classification rule. Use --company 0 for a standard rule shared by every company.

Examples:
  fin rules add --company 1 --pattern "landlord" --account 8200-001 --name "Rent"
  fin rules add --company 0 --pattern "^POS .*FUEL" --match REGEX --account 8600-001 --name "Fuel"`,
		RunE: runRulesAdd,
	}
	add.Flags().Int64P("company", "c", 0, "company id (0 for a standard rule)")
	add.Flags().String("pattern", "", "text or regular expression to match")
	add.Flags().String("match", string(model.MatchContains), "CONTAINS, STARTS_WITH, ENDS_WITH, EQUALS or REGEX")
	add.Flags().String("account", "", "account code to assign")
	add.Flags().String("name", "", "account name")
	add.Flags().Int("priority", 5, "higher priorities are evaluated first")
	add.Flags().StringSlice("keywords", nil, "words that must all appear in the details")
	_ = add.MarkFlagRequired("pattern")
	_ = add.MarkFlagRequired("account")

	learn := &cobra.Command{
		Use:   "learn",
		Short: "Learn a rule from a manually classified transaction",
		RunE:  runRulesLearn,
	}
	learn.Flags().Int64("transaction", 0, "transaction id")
	learn.Flags().String("account", "", "account code")
	learn.Flags().String("name", "", "account name")
	_ = learn.MarkFlagRequired("transaction")
	_ = learn.MarkFlagRequired("account")

	seed := &cobra.Command{
		Use:   "seed",
		Short: "Install the standard rule set",
		RunE:  runRulesSeed,
	}

	cmd.AddCommand(list, add, learn, seed)
	return cmd
}

func runRulesList(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	rules, err := a.svc.Rules(cmd.Context(), companyID(cmd))
	if err != nil {
		return err
	}
	if len(rules) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No rules. Install the standard set with: fin rules seed"))
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.RenderRules(rules))
	return nil
}

func runRulesAdd(cmd *cobra.Command, _ []string) error {
	company, _ := cmd.Flags().GetInt64("company")
	patternFlag, _ := cmd.Flags().GetString("pattern")
	match, _ := cmd.Flags().GetString("match")
	account, _ := cmd.Flags().GetString("account")
	name, _ := cmd.Flags().GetString("name")
	priority, _ := cmd.Flags().GetInt("priority")
	keywords, _ := cmd.Flags().GetStringSlice("keywords")

	rule := model.ClassificationRule{
		Pattern:     patternFlag,
		MatchType:   model.MatchType(strings.ToUpper(match)),
		AccountCode: account,
		AccountName: name,
		Keywords:    keywords,
		Priority:    priority,
		IsActive:    true,
	}
	if company > 0 {
		rule.CompanyID = &company
	}
	if err := pattern.ValidateRule(rule); err != nil {
		return err
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.store.CreateClassificationRule(cmd.Context(), &rule); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created rule %d: %q → %s", rule.ID, rule.Pattern, rule.AccountCode)))
	return nil
}

func runRulesLearn(cmd *cobra.Command, _ []string) error {
	txnID, _ := cmd.Flags().GetInt64("transaction")
	account, _ := cmd.Flags().GetString("account")
	name, _ := cmd.Flags().GetString("name")

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	rule, err := a.svc.LearnClassification(cmd.Context(), txnID, account, name)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Learned rule %d: %q → %s (keywords: %s)",
		rule.ID, rule.Pattern, rule.AccountCode, strings.Join(rule.Keywords, ", "))))
	return nil
}

func runRulesSeed(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	n, err := a.svc.SeedStandardRules(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Installed %d standard rules", n)))
	return nil
}
