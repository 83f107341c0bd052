package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/sthwalo/acc-sub003/internal/cli"
	"github.com/sthwalo/acc-sub003/internal/model"
)

func companyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "company",
		Short: "Manage companies",
	}

	add := &cobra.Command{
		Use:   "add",
		Short: "Create a company with its bank and opening balance accounts",
		RunE:  runCompanyAdd,
	}
	add.Flags().String("name", "", "company name")
	add.Flags().String("registration", "", "registration number")
	_ = add.MarkFlagRequired("name")

	list := &cobra.Command{
		Use:   "list",
		Short: "List companies",
		RunE:  runCompanyList,
	}

	cmd.AddCommand(add, list)
	return cmd
}

func runCompanyAdd(cmd *cobra.Command, _ []string) error {
	name, _ := cmd.Flags().GetString("name")
	registration, _ := cmd.Flags().GetString("registration")

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	company := &model.Company{Name: strings.TrimSpace(name), RegistrationNumber: registration}
	if err := a.svc.SetupCompany(cmd.Context(), company); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created company %d: %s", company.ID, company.Name)))
	return nil
}

func runCompanyList(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	companies, err := a.store.GetCompanies(cmd.Context())
	if err != nil {
		return err
	}
	if len(companies) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No companies yet. Create one with: fin company add --name NAME"))
		return nil
	}

	for _, c := range companies {
		fmt.Fprintf(cmd.OutOrStdout(), "%4d  %s %s\n", c.ID, cli.BoldStyle.Render(c.Name), cli.SubtleStyle.Render(c.RegistrationNumber))
	}
	return nil
}

func periodCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "period",
		Short: "Manage fiscal periods",
	}

	add := &cobra.Command{
		Use:   "add",
		Short: "Add a fiscal period to a company",
		RunE:  runPeriodAdd,
	}
	addCompanyFlag(add)
	add.Flags().String("name", "", "period name, e.g. FY2024")
	add.Flags().String("start", "", "first day (YYYY-MM-DD)")
	add.Flags().String("end", "", "last day (YYYY-MM-DD)")
	_ = add.MarkFlagRequired("name")
	_ = add.MarkFlagRequired("start")
	_ = add.MarkFlagRequired("end")

	list := &cobra.Command{
		Use:   "list",
		Short: "List a company's fiscal periods",
		RunE:  runPeriodList,
	}
	addCompanyFlag(list)

	cmd.AddCommand(add, list)
	return cmd
}

func runPeriodAdd(cmd *cobra.Command, _ []string) error {
	name, _ := cmd.Flags().GetString("name")
	startFlag, _ := cmd.Flags().GetString("start")
	endFlag, _ := cmd.Flags().GetString("end")

	start, err := parseDate("start", startFlag)
	if err != nil {
		return err
	}
	end, err := parseDate("end", endFlag)
	if err != nil {
		return err
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	period := &model.FiscalPeriod{
		CompanyID: companyID(cmd),
		Name:      name,
		StartDate: start,
		EndDate:   end,
	}
	if err := a.store.CreateFiscalPeriod(cmd.Context(), period); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created fiscal period %d: %s (%s to %s)",
		period.ID, period.Name, start.Format(dateLayout), end.Format(dateLayout))))
	return nil
}

func runPeriodList(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	periods, err := a.store.GetFiscalPeriods(cmd.Context(), companyID(cmd))
	if err != nil {
		return err
	}
	for _, p := range periods {
		state := "open"
		if p.IsClosed {
			state = "closed"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%4d  %-10s %s to %s  %s\n",
			p.ID, p.Name, p.StartDate.Format(dateLayout), p.EndDate.Format(dateLayout), cli.SubtleStyle.Render(state))
	}
	return nil
}
