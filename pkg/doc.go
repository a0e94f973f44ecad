// Package pkg holds the pieces shared by the tools and bus drivers of this
// module: the component logger and the sentinel errors of the tooling. The
// register core (reg, mmio Cell, critical, cortexm) never logs.
package pkg
