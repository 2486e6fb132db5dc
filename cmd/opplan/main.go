package main

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/vsinha/opplan/pkg/application/services"
	"github.com/vsinha/opplan/pkg/interfaces/cli/output"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "opplan",
		Short:         "Operation-plan engine for supply-chain planning models",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var (
		modelDir  string
		plansFile string
		format    string
		outFile   string
		verbose   bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Load a model, apply an operation-plan document and report the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			level := hclog.Warn
			if verbose {
				level = hclog.Debug
			}
			log := hclog.New(&hclog.LoggerOptions{
				Name:  "opplan",
				Level: level,
			})

			svc := services.NewPlanningService(log)
			if err := svc.LoadModel(modelDir); err != nil {
				return err
			}

			if plansFile != "" {
				f, err := os.Open(plansFile)
				if err != nil {
					return err
				}
				defer f.Close()
				if err := svc.ApplyPlans(f); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if outFile != "" {
				f, err := os.Create(outFile)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}

			report := output.BuildReport(svc.Model())
			return output.Generate(report, output.Config{Format: format, Verbose: verbose}, out)
		},
	}

	cmd.Flags().StringVar(&modelDir, "model", "", "Scenario directory with the model CSV files")
	cmd.Flags().StringVar(&plansFile, "plans", "", "Operation-plan XML document to apply (optional)")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, json")
	cmd.Flags().StringVar(&outFile, "out", "", "Write the report to a file instead of stdout")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Enable verbose output")
	_ = cmd.MarkFlagRequired("model")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the opplan version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
