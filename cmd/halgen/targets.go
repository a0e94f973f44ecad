package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"omibyte.io/stm32hal/targets"
)

func newTargetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "targets",
		Short: "List the known targets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
			fmt.Fprintln(tw, "SERIES\tCPU\tFEATURES\tIRQS\tPRIO\tFLASH\tRAM\tCHIPS")
			for _, t := range targets.All() {
				features := t.FormatFeatureString()
				if len(features) == 0 {
					features = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%dK@%#08x\t%dK@%#08x\t%s\n",
					t.Series, t.Cpu, features, t.IRQs, t.PriorityBits,
					t.Flash.Size/1024, t.Flash.Origin,
					t.RAM.Size/1024, t.RAM.Origin,
					strings.Join(t.Chips, ","))
			}
			return tw.Flush()
		},
	}
}
