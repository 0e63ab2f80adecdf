package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"linentrack/internal/domain"
	"linentrack/internal/dto"
	"linentrack/internal/order/usecase"
	"linentrack/internal/spreadsheet"
)

type filterFlags struct {
	from     string
	to       string
	statuses []string
	text     string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.from, "from", "", "earliest order date, inclusive")
	cmd.Flags().StringVar(&f.to, "to", "", "latest order date, inclusive")
	cmd.Flags().StringSliceVar(&f.statuses, "status", nil, "stage code or label; repeatable")
	cmd.Flags().StringVarP(&f.text, "query", "q", "", "substring of the client or product name")
	_ = cmd.RegisterFlagCompletionFunc("status", completeStages)
}

// completeStages offers the stage codes, with their labels, for --status.
func completeStages(cmd *cobra.Command, args []string, toComplete string) ([]cobra.Completion, cobra.ShellCompDirective) {
	stages := domain.Stages()
	out := make([]cobra.Completion, 0, len(stages))
	for _, st := range stages {
		out = append(out, cobra.CompletionWithDesc(string(st), st.Label()))
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

func (f *filterFlags) filter() (usecase.Filter, error) {
	return usecase.ParseFilter(f.from, f.to, f.statuses, f.text)
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.xlsx>",
		Short: "Import orders from a spreadsheet",
		Long: `Import every row of the first sheet as a new order in the initial stage.

Unknown columns are ignored and reported. Values that do not parse are kept
as text or defaulted and listed as warnings.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			result, err := a.orders.Importer.Import(cmd.Context(), f)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "imported %d orders, skipped %d blank rows\n", result.Batch.Succeeded, result.Skipped)
			if len(result.IgnoredColumns) > 0 {
				fmt.Fprintf(out, "ignored columns: %v\n", result.IgnoredColumns)
			}
			if len(result.Warnings) > 0 {
				if err := renderWarnings(out, result.Warnings); err != nil {
					return err
				}
			}
			return batchError(out, result.Batch)
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	var flags filterFlags

	cmd := &cobra.Command{
		Use:   "export <out.xlsx>",
		Short: "Export orders to a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := flags.filter()
			if err != nil {
				return err
			}
			orders, err := a.orders.Lister.List(cmd.Context(), filter)
			if err != nil {
				return err
			}

			f, err := os.Create(args[0])
			if err != nil {
				return err
			}
			if err := spreadsheet.WriteOrders(f, orders); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "exported %d orders to %s\n", len(orders), args[0])
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	var flags filterFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List orders, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := flags.filter()
			if err != nil {
				return err
			}
			orders, err := a.orders.Lister.List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			return renderOrders(cmd.OutOrStdout(), orders)
		},
	}
	flags.register(cmd)
	return cmd
}

func newAdvanceCmd(a *app) *cobra.Command {
	var req dto.AdvanceStageRequest

	cmd := &cobra.Command{
		Use:   "advance <order-id>...",
		Short: "Move orders to a stage",
		Long: `Move each order to the given stage and record the stage date.

Orders are updated one at a time; a failing order is reported and the rest
are still updated.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.orders.Service.BulkAdvance(cmd.Context(), args, domain.StageChange{
				Status:         domain.Stage(req.Status),
				StageDate:      req.StageDate,
				ShippingMethod: req.ShippingMethod,
				ShippingDest:   req.ShippingDestName,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "updated %d orders\n", result.Succeeded)
			return batchError(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVarP(&req.Status, "status", "s", "", "target stage code or label")
	cmd.Flags().StringVarP(&req.StageDate, "date", "d", "", "stage date (default today)")
	cmd.Flags().StringVar(&req.ShippingMethod, "shipping-method", "", "shipping method, for SHIPPED")
	cmd.Flags().StringVar(&req.ShippingDestName, "shipping-dest", "", "shipping destination, for SHIPPED")
	_ = cmd.MarkFlagRequired("status")
	_ = cmd.RegisterFlagCompletionFunc("status", completeStages)
	return cmd
}

func newPurgeCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete every order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("purge deletes every order; pass --yes to confirm")
			}
			result, err := a.orders.Service.PurgeAll(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d orders\n", result.Succeeded)
			return batchError(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deleting every order")
	return cmd
}

func renderOrders(w io.Writer, orders []domain.Order) error {
	table := tablewriter.NewWriter(w)
	table.Header("ID", "업체명", "품명", "수량", "진행상태", "발주일자", "최종업데이트")
	for _, o := range orders {
		row := []string{
			o.ID,
			o.ClientName,
			o.ProductName,
			strconv.FormatFloat(o.Quantity, 'f', -1, 64) + " " + o.Unit,
			o.Status.Label(),
			o.OrderDate,
			o.LastUpdated,
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

func renderWarnings(w io.Writer, warnings []dto.ImportWarning) error {
	table := tablewriter.NewWriter(w)
	table.Header("Row", "Column", "Warning")
	for _, warn := range warnings {
		if err := table.Append([]string{strconv.Itoa(warn.Row), warn.Column, warn.Message}); err != nil {
			return err
		}
	}
	return table.Render()
}

// batchError prints the failures of a bulk run and turns them into the
// command error.
func batchError(w io.Writer, result *dto.BatchResult) error {
	if len(result.Failures) == 0 {
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header("Order", "Row", "Reason", "Message")
	for _, f := range result.Failures {
		row := ""
		if f.Row > 0 {
			row = strconv.Itoa(f.Row)
		}
		if err := table.Append([]string{f.ID, row, string(f.Reason), f.Message}); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	return fmt.Errorf("%d of %d items failed (%s)", len(result.Failures), len(result.Failures)+result.Succeeded, result.Status)
}
