//go:build linux && !tinygo

package main

import (
	"io"
	"os"

	"omibyte.io/stm32hal/mmio"
)

func openDevMem(addr uintptr) (mmio.Bus, io.Closer, error) {
	page := os.Getpagesize()
	base := addr &^ uintptr(page-1)
	d, err := mmio.OpenDevMem(base, page)
	if err != nil {
		return nil, nil, err
	}
	return d, d, nil
}
