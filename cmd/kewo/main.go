// Command kewo computes energy costs from the command line.
//
// Usage:
//
//	kewo compute --electricity-consumption 3000 --electricity-price 0.30 --electricity-base-fee 10
//	kewo compute --heating-fuel oel --heating-consumption 2000 --format json
package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kewo/kewo-rechner/internal/calculator"
	"github.com/kewo/kewo-rechner/internal/logging"
)

const (
	formatText = "text"
	formatJSON = "json"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:          "kewo",
		Short:        "Energy cost calculator",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	root.AddCommand(newComputeCmd(&logLevel))
	return root
}

func newComputeCmd(logLevel *string) *cobra.Command {
	values := make(map[calculator.Field]*string, len(calculator.Fields()))
	var format string

	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute costs, heating demand and PV yield from the given inputs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := logging.New(*logLevel, false)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if format != formatText && format != formatJSON {
				return fmt.Errorf("unknown format %q: use %s or %s", format, formatText, formatJSON)
			}

			var in calculator.Inputs
			for _, field := range calculator.Fields() {
				flag := cmd.Flags().Lookup(flagName(field))
				if flag == nil || !flag.Changed {
					continue
				}
				if err := in.Set(field, *values[field]); err != nil {
					return fmt.Errorf("--%s: %w", flagName(field), err)
				}
			}

			results := calculator.Compute(in)
			logger.Debug("computed results",
				zap.String("heating_fuel", in.HeatingFuel.String()),
				zap.Float64("electricity_yearly", results.Electricity.Yearly),
				zap.Float64("heating_yearly", results.Heating.Yearly),
			)

			if format == formatJSON {
				return writeJSON(cmd.OutOrStdout(), results.Display())
			}
			return writeTable(cmd.OutOrStdout(), results.Display())
		},
	}

	for _, field := range calculator.Fields() {
		v := new(string)
		values[field] = v
		cmd.Flags().StringVar(v, flagName(field), "", flagUsage(field))
	}
	cmd.Flags().StringVar(&format, "format", formatText, "output format (text, json)")

	return cmd
}

func flagName(field calculator.Field) string {
	return strings.ReplaceAll(string(field), "_", "-")
}

func flagUsage(field calculator.Field) string {
	if field == calculator.FieldHeatingFuel {
		return "heating fuel (gas, oel)"
	}
	return strings.ReplaceAll(string(field), "_", " ")
}

func writeTable(w io.Writer, display map[string]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, key := range calculator.DisplayKeys() {
		unit := "kWh"
		if calculator.IsMoneyKey(key) {
			unit = "€"
		}
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t\n", key, display[key], unit); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, display map[string]string) error {
	data, err := json.MarshalIndent(display, "", "  ")
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
