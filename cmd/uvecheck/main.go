// Command uvecheck calculates uveitis screening intervals from the command line.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/uvecheck-mcp-server/internal/domain"
	"github.com/uvecheck-mcp-server/internal/logging"
	"github.com/uvecheck-mcp-server/internal/service"
	"github.com/uvecheck-mcp-server/internal/setup"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "uvecheck",
		Short:         "Uveitis screening intervals for juvenile idiopathic arthritis",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(os.Stderr)

	rootCmd.AddCommand(calculateCmd(), guidelinesCmd(), setupCmd())
	return rootCmd
}

func calculateCmd() *cobra.Command {
	var (
		params   service.CalculateParams
		today    string
		output   string
		logLevel string
	)

	cmd := &cobra.Command{
		Use:   "calculate",
		Short: "Calculate the screening interval for one patient",
		Example: `  uvecheck calculate --guideline Nordic --birth-date 2015-06-05 --diagnosis-date 2023-06-05 \
    --subdiagnosis Oligoarthritis --ana y --methotrexate n --discontinued n --biologic "None / Other"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			clock := service.SystemClock
			if today != "" {
				t, err := time.Parse(domain.DateLayout, today)
				if err != nil {
					return fmt.Errorf("invalid --today %q: want YYYY-MM-DD", today)
				}
				clock = service.FixedClock(t)
			}

			logger := logging.New(logLevel, logging.FormatText)
			evaluator := service.NewGuidelineEvaluator(service.WithLogger(logger), service.WithClock(clock))
			calculator := service.NewCalculatorService(logger, evaluator)

			result, err := calculator.Calculate(cmd.Context(), &params)
			if err != nil {
				return err
			}
			return writeResult(cmd.OutOrStdout(), output, result)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&params.Guideline, "guideline", "", "guideline name or slug (see 'uvecheck guidelines')")
	flags.StringVar(&params.BirthDate, "birth-date", "", "date of birth, YYYY-MM-DD")
	flags.StringVar(&params.DiagnosisDate, "diagnosis-date", "", "date of JIA diagnosis, YYYY-MM-DD")
	flags.StringVar(&params.Subdiagnosis, "subdiagnosis", "", "JIA subtype")
	flags.StringVar(&params.ANAPositive, "ana", "", "ANA positive: y, n or na")
	flags.StringVar(&params.MethotrexateUse, "methotrexate", "", "on methotrexate: y, n or na (Nordic)")
	flags.StringVar(&params.TreatmentDiscontinued, "discontinued", "", "treatment discontinued: y, n or na (Nordic)")
	flags.StringVar(&params.BiologicalTreatment, "biologic", string(domain.BiologicalNone), "biological treatment (Nordic)")
	flags.StringVar(&today, "today", "", "evaluate as of this date instead of today, YYYY-MM-DD")
	flags.StringVarP(&output, "output", "o", "text", "output format: text or json")
	flags.StringVar(&logLevel, "log-level", "warn", "log level written to stderr")
	_ = cmd.MarkFlagRequired("guideline")

	return cmd
}

func writeResult(w io.Writer, format string, result *service.CalculateResult) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case "text":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "Guideline:\t%s\n", result.Guideline)
		fmt.Fprintf(tw, "Risk level:\t%s\n", result.RiskLevel)
		fmt.Fprintf(tw, "Recommendation:\t%s\n", result.Recommendation)
		fmt.Fprintf(tw, "Follow-up:\t%s\n", result.FollowUp)
		fmt.Fprintf(tw, "Screening:\t%s\n", result.ScreeningMessage)
		fmt.Fprintf(tw, "Evaluated on:\t%s\n", result.EvaluatedOn)

		keys := make([]string, 0, len(result.Details))
		for k := range result.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(tw, "  %s:\t%v\n", k, result.Details[k])
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func guidelinesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "guidelines [guideline]",
		Short: "List the supported guidelines, or describe one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			calculator := service.NewCalculatorService(logging.Discard(), nil)

			if len(args) == 0 {
				tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "GUIDELINE\tSLUG\tREQUIRED")
				for _, info := range calculator.ListGuidelines() {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", info.ID, info.Slug, joinFields(info.RequiredFields))
				}
				return tw.Flush()
			}

			info, err := calculator.DescribeGuideline(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s (%s)\n", info.Name, info.Slug)
			fmt.Fprintf(out, "Required: %s\n", joinFields(info.RequiredFields))
			fmt.Fprintln(out, "Subdiagnoses:")
			for _, s := range info.Subdiagnoses {
				fmt.Fprintf(out, "  - %s\n", s)
			}
			return nil
		},
	}
}

func joinFields(fields []domain.ProfileField) string {
	words := make([]string, len(fields))
	for i, f := range fields {
		words[i] = f.Words()
	}
	return strings.Join(words, ", ")
}

func setupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Register the MCP server with a desktop MCP client",
	}

	var configPath string
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "client config file (default: platform location)")

	var (
		binaryPath string
		env        map[string]string
	)
	desktopCmd := &cobra.Command{
		Use:   "desktop",
		Short: "Add or update the uvecheck server in the desktop client config",
		RunE: func(cmd *cobra.Command, args []string) error {
			written, err := setup.Configure(setup.Options{
				ConfigPath: configPath,
				BinaryPath: binaryPath,
				Env:        env,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s in %s\n", setup.ServerName, written)
			return nil
		},
	}
	desktopCmd.Flags().StringVar(&binaryPath, "binary", "", "path to "+setup.BinaryName+" (searched for when empty)")
	desktopCmd.Flags().StringToStringVar(&env, "env", nil, "UVECHECK_* settings for the server, KEY=VALUE")

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether the server is registered",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := setup.GetStatus(configPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config:     %s\n", status.ConfigPath)
			fmt.Fprintf(out, "Registered: %t\n", status.Configured)
			if status.ServerPath != "" {
				fmt.Fprintf(out, "Server:     %s\n", status.ServerPath)
			}
			for _, issue := range status.Issues {
				fmt.Fprintf(out, "Issue:      %s\n", issue)
			}
			return nil
		},
	}

	cmd.AddCommand(desktopCmd, statusCmd)
	return cmd
}
