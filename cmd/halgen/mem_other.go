//go:build !linux || tinygo

package main

import (
	"errors"
	"io"

	"omibyte.io/stm32hal/mmio"
)

func openDevMem(uintptr) (mmio.Bus, io.Closer, error) {
	return nil, nil, errors.New("/dev/mem access is only supported on linux")
}
