package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"omibyte.io/stm32hal/cmd/halgen/generator"
	"omibyte.io/stm32hal/cmd/halgen/svd"
	"omibyte.io/stm32hal/cortexm"
	"omibyte.io/stm32hal/pkg"
	"omibyte.io/stm32hal/stm32/f4"
	"omibyte.io/stm32hal/targets"
)

func newVectorsCmd() *cobra.Command {
	opts := struct {
		svd     string
		format  string
		output  string
		symbols string
	}{}

	vectorsCmd := &cobra.Command{
		Use:   "vectors <series|chip>",
		Short: "Print or emit the vector table of a target",
		Long: `Print the vector table layout of a target, or emit it as GNU assembly
or as an Intel HEX image. Interrupt names come from --svd when given, from
the built-in tables for stm32f4, and are numbered otherwise.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := targets.All().Find(args[0])
			if err != nil {
				return err
			}

			names, err := irqNames(target, opts.svd)
			if err != nil {
				return err
			}

			vt, err := cortexm.NewVectorTable(names)
			if err != nil {
				return err
			}
			pkg.LogDebug(pkg.ComponentVector, "vector table", "series", target.Series, "irqs", vt.IRQs(), "size", vt.Size())

			out := cmd.OutOrStdout()
			if len(opts.output) > 0 {
				f, err := os.Create(opts.output)
				if err != nil {
					return fmt.Errorf("file io error: %w", err)
				}
				defer f.Close()
				out = f
			}

			switch opts.format {
			case "layout":
				return writeLayout(out, vt)
			case "asm":
				return vt.WriteAssembly(out)
			case "hex":
				if len(opts.symbols) == 0 {
					return fmt.Errorf("hex output needs --symbols")
				}
				symbols, err := readSymbols(opts.symbols)
				if err != nil {
					return err
				}
				return vt.WriteHex(out, target.Flash.Origin, target.StackTop(), symbols)
			default:
				return fmt.Errorf("unknown format %q (=layout, =asm, =hex)", opts.format)
			}
		},
	}

	vectorsCmd.Flags().StringVar(&opts.svd, "svd", "", "SVD file to take interrupt names from")
	vectorsCmd.Flags().StringVarP(&opts.format, "format", "f", "layout", "output format (=layout, =asm, =hex)")
	vectorsCmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	vectorsCmd.Flags().StringVar(&opts.symbols, "symbols", "", "YAML map of handler names to addresses, for --format=hex")
	return vectorsCmd
}

// irqNames returns the device interrupt names of target.
func irqNames(target targets.TargetInfo, svdFile string) ([]string, error) {
	if len(svdFile) > 0 {
		file, err := os.Open(svdFile)
		if err != nil {
			return nil, fmt.Errorf("file io error: %w", err)
		}
		defer file.Close()

		device, err := svd.Decode(file)
		if err != nil {
			return nil, err
		}
		gen, err := generator.New(device, generator.Options{Target: &target})
		if err != nil {
			return nil, err
		}
		return gen.VectorNames(), nil
	}

	if target.Series == "stm32f4" {
		return f4.IRQNames(), nil
	}

	names := make([]string, target.IRQs)
	for i := range names {
		names[i] = fmt.Sprintf("IRQ%d", i)
	}
	return names, nil
}

func writeLayout(w io.Writer, vt *cortexm.VectorTable) error {
	tw := tabwriter.NewWriter(w, 0, 8, 1, ' ', 0)
	fmt.Fprintln(tw, "EXC\tOFFSET\tHANDLER\tFALLBACK")
	for _, s := range vt.Layout() {
		switch {
		case s.Exception == 0:
			fmt.Fprintf(tw, "%d\t%#02x\t%s\t-\n", s.Exception, s.Offset(), s.Symbol())
		case s.Reserved:
			fmt.Fprintf(tw, "%d\t%#02x\t(reserved)\t-\n", s.Exception, s.Offset())
		default:
			fmt.Fprintf(tw, "%d\t%#02x\t%s\t%s\n", s.Exception, s.Offset(), s.Symbol(), s.Fallback.Symbol())
		}
	}
	return tw.Flush()
}

// readSymbols loads a handler address map such as
//
//	Reset_Handler: 0x08000201
//	Nop_Handler: 0x08000300
func readSymbols(fname string) (map[string]uint32, error) {
	data, err := os.ReadFile(fname)
	if err != nil {
		return nil, fmt.Errorf("file io error: %w", err)
	}
	var symbols map[string]uint32
	if err = yaml.Unmarshal(data, &symbols); err != nil {
		return nil, fmt.Errorf("%s: %w", fname, err)
	}
	return symbols, nil
}
