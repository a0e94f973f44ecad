package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"omibyte.io/stm32hal/mmio"
	"omibyte.io/stm32hal/pkg"
	"omibyte.io/stm32hal/reg"
)

// openBus maps the physical page holding addr. The returned closer unmaps it.
var openBus func(addr uintptr) (mmio.Bus, io.Closer, error) = openDevMem

type word struct{}

// rawRegister declares a single field register of width w at addr.
func rawRegister(bus mmio.Bus, addr uintptr, w mmio.Width) (*reg.Register[word], reg.RW[word, uint32], error) {
	t := reg.NewTable[word](w)
	value := reg.NewRW[uint32](t, "VALUE", 0, uint8(w))
	r, err := reg.Declare("MEM", bus, addr, 0, t)
	return r, value, err
}

func parseUint(s string, what string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", what, s)
	}
	return uint32(v), nil
}

// withRegister maps addr and runs fn on a register of the requested width.
func withRegister(addrArg string, width int, fn func(r *reg.Register[word], value reg.RW[word, uint32]) error) error {
	w := mmio.Width(width)
	if !w.Valid() {
		return fmt.Errorf("%w: %d", mmio.ErrWidth, width)
	}
	addr, err := parseUint(addrArg, "address")
	if err != nil {
		return err
	}

	bus, closer, err := openBus(uintptr(addr))
	if err != nil {
		return err
	}
	defer closer.Close()

	r, value, err := rawRegister(bus, uintptr(addr), w)
	if err != nil {
		return err
	}
	return fn(r, value)
}

func newPeekCmd() *cobra.Command {
	var width int

	peekCmd := &cobra.Command{
		Use:   "peek <addr>",
		Short: "Read a register through /dev/mem",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRegister(args[0], width, func(r *reg.Register[word], value reg.RW[word, uint32]) error {
				v := reg.Get(r, value)
				pkg.LogDebug(pkg.ComponentDevMem, "peek", "register", r.String(), "value", v)
				fmt.Fprintf(cmd.OutOrStdout(), "%#08x: %#0*x\n", r.Addr(), int(r.Width())/4, v)
				return nil
			})
		},
	}

	peekCmd.Flags().IntVarP(&width, "width", "w", 32, "access width in bits (=8, =16, =32)")
	return peekCmd
}

func newPokeCmd() *cobra.Command {
	var width int

	pokeCmd := &cobra.Command{
		Use:   "poke <addr> <value>",
		Short: "Write a register through /dev/mem",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseUint(args[1], "value")
			if err != nil {
				return err
			}
			return withRegister(args[0], width, func(r *reg.Register[word], value reg.RW[word, uint32]) error {
				if v&^r.Width().Mask() != 0 {
					return fmt.Errorf("%w: %#x does not fit %s", mmio.ErrWidth, v, r.Width())
				}
				r.Write(value.To(v))
				pkg.LogDebug(pkg.ComponentDevMem, "poke", "register", r.String(), "value", v)
				return nil
			})
		},
	}

	pokeCmd.Flags().IntVarP(&width, "width", "w", 32, "access width in bits (=8, =16, =32)")
	return pokeCmd
}
