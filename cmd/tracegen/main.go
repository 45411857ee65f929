// Package main generates a synthetic single-set memory-reference trace,
// restoring original_source/tracegen.py as a standalone collaborator.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/sarchlab/tracehm/memsim/addr"
)

var (
	numAccess = flag.Int("n", 200, "Number of accesses to generate")
	setID     = flag.Uint64("set", 1, "Set id to generate accesses for")
	maxRegion = flag.Uint64("max-region", 8, "Maximum region id (inclusive)")
)

func main() {
	flag.Parse()
	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: tracegen [options] OUTFILE\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	out, err := os.Create(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = out.Close() }()

	w := bufio.NewWriter(out)
	defer func() { _ = w.Flush() }()

	for i := 0; i < *numAccess; i++ {
		region := rand.Uint64N(*maxRegion + 1)
		isWrite := rand.IntN(2)
		address := addr.Make(*setID, region, 0)
		fmt.Fprintf(w, "%d\t0x%x\t%x\n", i, address, isWrite)
	}
}
