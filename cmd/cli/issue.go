package main

import (
	"fmt"
	"html"
	"os"
	"text/tabwriter"

	"verisure/adapters/sheet"
	"verisure/app"
	"verisure/domain/credential"
	"verisure/internal/errors"

	"github.com/spf13/cobra"
)

func newTemplateCmd() *cobra.Command {
	var xlsx bool
	var output string

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write the batch issuance template",
		Long: `Write the batch issuance template with its header row and one example row.

Example: verisure template --xlsx -o cohort.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, name := sheet.TemplateCSV(), sheet.TemplateName
			if xlsx {
				var err error
				if data, err = sheet.TemplateXLSX(); err != nil {
					return err
				}
				name = sheet.TemplateNameXLSX
			}

			if output == "-" || (output == "" && !xlsx) {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if output == "" {
				output = name
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return errors.Wrap(err, "failed to write template")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Template written to %s\n", output)
			return nil
		},
	}
	cmd.Flags().BoolVar(&xlsx, "xlsx", false, "Write an .xlsx workbook instead of CSV")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (CSV defaults to stdout)")
	return cmd
}

func newPreviewCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview FILE",
		Short: "Validate an issuance file and show the rows that would be issued",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, closeFn, err := open(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer closeFn()

			res, err := selectFile(cmd, c.Issuance, args[0])
			if err != nil {
				return err
			}
			printPreview(cmd, res)
			return nil
		},
	}
	return cmd
}

func newIssueBatchCmd(flags *globalFlags) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "issue-batch FILE",
		Short: "Issue one credential per valid row of a CSV or XLSX file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, closeFn, err := open(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer closeFn()

			res, err := selectFile(cmd, c.Issuance, args[0])
			if err != nil {
				return err
			}
			printPreview(cmd, res)

			if _, err := c.Issuance.RequestBatch(cmd.Context()); err != nil {
				return err
			}
			return confirmAndReport(cmd, c.Issuance, yes)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Issue without asking for confirmation")
	return cmd
}

func newIssueCmd(flags *globalFlags) *cobra.Command {
	var form credential.SingleIssuance
	var yes bool

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue a single credential",
		Long: `Issue a single credential.

Example: verisure issue --name "Ada Lovelace" --email ada@example.com --type Degree --title "B.Sc. Economics"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, closeFn, err := open(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer closeFn()

			if _, err := c.Issuance.RequestSingle(cmd.Context(), form); err != nil {
				return err
			}
			return confirmAndReport(cmd, c.Issuance, yes)
		},
	}
	cmd.Flags().StringVar(&form.FullName, "name", "", "Holder full name")
	cmd.Flags().StringVar(&form.Email, "email", "", "Holder email")
	cmd.Flags().StringVar(&form.CredentialType, "type", "", "Credential type")
	cmd.Flags().StringVar(&form.CredentialTitle, "title", "", "Credential title")
	cmd.Flags().StringVar(&form.InternalID, "internal-id", "", "Holder internal ID")
	cmd.Flags().StringVar(&form.ExpiryDate, "expiry", "", "Expiry date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&form.Description, "description", "", "Description")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Issue without asking for confirmation")
	return cmd
}

func newHistoryCmd(flags *globalFlags) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent issuance attempts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, closeFn, err := open(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer closeFn()

			attempts, err := c.Issuance.History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(attempts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No issuance attempts recorded.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "WHEN\tMODE\tOUTCOME\tISSUED\tFAILED\tFILE\tERROR")
			for _, a := range attempts {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
					a.CreatedAt.Local().Format("2006-01-02 15:04"),
					a.Mode, a.Outcome, a.Issued, a.Failed, a.FileName, a.ErrorMessage)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Number of attempts to show")
	return cmd
}

func selectFile(cmd *cobra.Command, svc *app.IssuanceService, path string) (*app.UploadResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read "+path)
	}
	return svc.SelectFile(cmd.Context(), path, data)
}

func printPreview(cmd *cobra.Command, res *app.UploadResult) {
	out := cmd.OutOrStdout()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for i, h := range res.Preview.Headers {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, html.UnescapeString(h))
	}
	fmt.Fprintln(w)
	for _, row := range res.Preview.Rows {
		for i, cell := range row {
			if i > 0 {
				fmt.Fprint(w, "\t")
			}
			fmt.Fprint(w, html.UnescapeString(cell))
		}
		fmt.Fprintln(w)
	}
	_ = w.Flush()
	fmt.Fprintln(out, res.Message)
}

func confirmAndReport(cmd *cobra.Command, svc *app.IssuanceService, yes bool) error {
	p := newTerminalPrompter(cmd.InOrStdin(), cmd.OutOrStdout(), yes)
	out, err := svc.ConfirmWith(cmd.Context(), p)
	if err != nil {
		if errors.Is(err, errors.CodeCancelled) {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing was issued.")
			return nil
		}
		return err
	}
	printNotice(cmd.OutOrStdout(), out.Notice)
	return nil
}
