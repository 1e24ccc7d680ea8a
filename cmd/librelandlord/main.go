package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/spf13/cobra"
	"github.com/tabacha/librelandlord/internal/clock"
	"github.com/tabacha/librelandlord/internal/config"
	"github.com/tabacha/librelandlord/internal/costcenter"
	"github.com/tabacha/librelandlord/internal/database"
	"github.com/tabacha/librelandlord/internal/distribution"
	"github.com/tabacha/librelandlord/internal/formula"
	formuladomain "github.com/tabacha/librelandlord/internal/formula/domain"
	"github.com/tabacha/librelandlord/internal/meter"
	meterdomain "github.com/tabacha/librelandlord/internal/meter/domain"
	"github.com/tabacha/librelandlord/internal/migration"
	"github.com/tabacha/librelandlord/internal/observability"
	"github.com/tabacha/librelandlord/internal/seed"
	"github.com/tabacha/librelandlord/internal/settlement"
	settlementdomain "github.com/tabacha/librelandlord/internal/settlement/domain"
	"github.com/tabacha/librelandlord/internal/tenancy"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "librelandlord",
		Short:   "Rental property cost settlement CLI",
		Version: readVersionFromEnv(),
	}
	root.AddCommand(newMigrateCmd(), newSeedCmd(), newSettleCmd(), newSettleYearCmd(),
		newConsumptionCmd(), newRecordReadingCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(migration.Module)
		},
	}
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Run migrations, then load the demo property",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(
				migration.Module,
				fx.Invoke(func(db *gorm.DB) error {
					return seed.EnsureDemoData(db)
				}),
			)
		},
	}
}

func newSettleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "settle <period-id>",
		Short: "Settle all bills of one account period",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			periodID, err := snowflake.ParseString(args[0])
			if err != nil {
				return fmt.Errorf("invalid account period id %q: %w", args[0], err)
			}
			return runApp(
				engineModules(),
				fx.Invoke(func(svc settlementdomain.Service) error {
					statement, err := svc.Settle(context.Background(), periodID)
					if err != nil {
						return err
					}
					printStatement(cmd.OutOrStdout(), statement)
					return nil
				}),
			)
		},
	}
}

func newSettleYearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "settle-year <year>",
		Short: "Settle every account period of a billing year",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid billing year %q: %w", args[0], err)
			}
			return runApp(
				engineModules(),
				fx.Invoke(func(svc settlementdomain.Service) error {
					statement, err := svc.SettleYear(context.Background(), year)
					if err != nil {
						return err
					}
					for i := range statement.Periods {
						printStatement(cmd.OutOrStdout(), &statement.Periods[i])
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Billing year %d total: %.2f EUR\n",
						statement.Year, statement.GrandTotal)
					return nil
				}),
			)
		},
	}
}

func newConsumptionCmd() *cobra.Command {
	var fromFlag, toFlag string
	cmd := &cobra.Command{
		Use:   "consumption <formula-id>",
		Short: "Evaluate a consumption formula over a date range",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			definitionID, err := snowflake.ParseString(args[0])
			if err != nil {
				return fmt.Errorf("invalid formula id %q: %w", args[0], err)
			}
			from, err := time.Parse(time.DateOnly, fromFlag)
			if err != nil {
				return fmt.Errorf("invalid --from date %q: %w", fromFlag, err)
			}
			to, err := time.Parse(time.DateOnly, toFlag)
			if err != nil {
				return fmt.Errorf("invalid --to date %q: %w", toFlag, err)
			}
			return runApp(
				engineModules(),
				fx.Invoke(func(svc formuladomain.Service) error {
					result, err := svc.Evaluate(context.Background(), definitionID, from, to)
					if err != nil {
						return err
					}
					out := cmd.OutOrStdout()
					fmt.Fprintf(out, "%s = %s\n", result.Name, result.Display)
					for _, step := range result.Steps {
						fmt.Fprintf(out, "  %s\n", step.Description)
					}
					return nil
				}),
			)
		},
	}
	cmd.Flags().StringVar(&fromFlag, "from", "", "range start (YYYY-MM-DD, inclusive)")
	cmd.Flags().StringVar(&toFlag, "to", "", "range end (YYYY-MM-DD, exclusive)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newRecordReadingCmd() *cobra.Command {
	var dateFlag string
	cmd := &cobra.Command{
		Use:   "record-reading <meter-id> <value>",
		Short: "Validate and store a meter reading",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			meterID, err := snowflake.ParseString(args[0])
			if err != nil {
				return fmt.Errorf("invalid meter id %q: %w", args[0], err)
			}
			value, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid reading value %q: %w", args[1], err)
			}
			day, err := time.Parse(time.DateOnly, dateFlag)
			if err != nil {
				return fmt.Errorf("invalid --date %q: %w", dateFlag, err)
			}
			return runApp(
				engineModules(),
				fx.Invoke(func(svc meterdomain.Service) error {
					reading, err := svc.RecordReading(context.Background(), meterID, day, value)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "recorded reading %s: %v on %s\n",
						reading.ID, reading.Value, reading.Date.Format(time.DateOnly))
					return nil
				}),
			)
		},
	}
	cmd.Flags().StringVar(&dateFlag, "date", "", "reading date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

// engineModules wires everything a calculation needs on top of the base app.
func engineModules() fx.Option {
	return fx.Options(
		fx.Provide(registerSnowflake),
		clock.Module,
		tenancy.Module,
		meter.Module,
		formula.Module,
		costcenter.Module,
		distribution.Module,
		settlement.Module,
	)
}

func runApp(extra ...fx.Option) error {
	opts := append([]fx.Option{
		config.Module,
		observability.Module,
		database.Module,
	}, extra...)
	app := fx.New(opts...)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return err
	}
	return app.Stop(context.Background())
}

func printStatement(out io.Writer, statement *settlementdomain.PeriodStatement) {
	fmt.Fprintf(out, "%s (%s)\n", statement.Period.Text, statement.Period.ID)
	for _, summary := range statement.Summaries {
		fmt.Fprintf(out, "\n%s [%s]: %.2f EUR\n",
			summary.CostCenter.Text, summary.CostCenter.DistributionType, summary.TotalAmount)
		for _, share := range summary.Shares {
			name := share.DisplayName
			if share.Vacancy {
				name = "Leerstand " + name
			}
			fmt.Fprintf(out, "  %-32s %s  %6.2f%%  %10.2f EUR\n",
				name, share.Period, share.Percentage, share.Amount)
		}
		if summary.RoundingResidue != nil {
			fmt.Fprintf(out, "  rounding residue: %+.2f EUR\n", *summary.RoundingResidue)
		}
	}
	fmt.Fprintf(out, "\nGrand total: %.2f EUR\n", statement.GrandTotal)
}

func registerSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}

func readVersionFromEnv() string {
	if v := strings.TrimSpace(os.Getenv("APP_VERSION")); v != "" {
		return v
	}
	return "dev"
}
