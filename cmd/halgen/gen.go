package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"omibyte.io/stm32hal/cmd/halgen/generator"
	"omibyte.io/stm32hal/cmd/halgen/svd"
	"omibyte.io/stm32hal/pkg"
	"omibyte.io/stm32hal/targets"
)

func newGenCmd() *cobra.Command {
	opts := struct {
		in     string
		out    string
		pkg    string
		target string
	}{}

	genCmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate a register package from an SVD file",
		Long:  "Generate a Go package holding the register tables, interrupt enumeration and vector table of the device described by an SVD file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Open the input file
			file, err := os.Open(opts.in)
			if err != nil {
				return fmt.Errorf("file io error: %w", err)
			}
			defer file.Close()

			// Decode the SVD XML
			device, err := svd.Decode(file)
			if err != nil {
				return err
			}

			genOpts := generator.Options{
				Out:     opts.out,
				Package: opts.pkg,
			}

			// Look up the target for the memory layout
			if len(opts.target) > 0 {
				target, err := targets.All().Find(opts.target)
				if err != nil {
					return err
				}
				genOpts.Target = &target
				pkg.LogDebug(pkg.ComponentTarget, "using target", "series", target.Series, "cpu", target.Cpu)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Generating the register package for the following device:")
			fmt.Fprintf(out, "Device:\t\t%s\n", device.Name)
			fmt.Fprintf(out, "CPU:\t\t%s\n", device.CPU.Name)
			fmt.Fprintf(out, "Revision:\t%s\n", device.CPU.Revision)
			fmt.Fprintf(out, "FPU:\t\t%s\n", device.CPU.FPUPresent)
			fmt.Fprintf(out, "Peripherals:\t%d\n", len(device.Peripherals.Elements))

			gen, err := generator.New(device, genOpts)
			if err != nil {
				return err
			}

			// Generate the implementation
			if err = gen.Generate(); err != nil {
				return fmt.Errorf("generator error: %w", err)
			}

			fmt.Fprintln(out, "Done.")
			return nil
		},
	}

	genCmd.Flags().StringVarP(&opts.in, "in", "i", "", "input SVD file")
	genCmd.Flags().StringVarP(&opts.out, "out", "o", ".", "output directory")
	genCmd.Flags().StringVarP(&opts.pkg, "package", "p", "", "package name (default: the device name)")
	genCmd.Flags().StringVarP(&opts.target, "target", "t", "", "target series or chip")
	genCmd.MarkFlagRequired("in")
	return genCmd
}
