package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	reportadapter "github.com/bnema/campaign-checkin-cli/internal/adapters/render/report"
	"github.com/bnema/campaign-checkin-cli/internal/domain"
	"github.com/bnema/campaign-checkin-cli/internal/ports"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newStatusCmd(v *viper.Viper) *cobra.Command {
	var address string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the last recorded pass report of each account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reports, err := openReports(v)
			if err != nil {
				return err
			}

			list, err := loadReports(cmd, reports, address)
			if err != nil {
				return err
			}

			return writeReportsOutput(cmd, list, asJSON)
		},
	}

	cmd.Flags().StringVar(&address, "address", "", "Only show the account with this wallet address")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print reports as JSON")

	return cmd
}

func loadReports(cmd *cobra.Command, reports ports.ReportRepository, address string) ([]domain.AccountReport, error) {
	if address == "" {
		return reports.List(cmd.Context())
	}

	report, err := reports.GetByAddress(cmd.Context(), address)
	if err != nil {
		return nil, err
	}

	return []domain.AccountReport{report}, nil
}

func writeReportsOutput(cmd *cobra.Command, reports []domain.AccountReport, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	}

	rendered, err := reportadapter.Render(reports, reportadapter.RenderOptions{
		ShowTimes: true,
		Now:       time.Now(),
	})
	if err != nil {
		return fmt.Errorf("render reports: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}
