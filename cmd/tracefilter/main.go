// Package main filters a trace down to the records for a single set,
// restoring original_source/trace_in_set1.py as a standalone collaborator.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/sarchlab/tracehm/memsim/addr"
	"github.com/sarchlab/tracehm/memsim/trace"
)

var setID = flag.Uint64("set", 0, "Set id to keep")

func main() {
	flag.Parse()
	if flag.NArg() < 2 {
		fmt.Fprintf(os.Stderr, "Usage: tracefilter [-set N] INFILE OUTFILE\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	in, err := os.Open(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening input trace: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = in.Close() }()

	records, err := trace.ReadAll(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input trace: %v\n", err)
		os.Exit(1)
	}

	out, err := os.Create(flag.Arg(1))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output trace: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = out.Close() }()

	w := bufio.NewWriter(out)
	defer func() { _ = w.Flush() }()

	kept := 0
	for _, rec := range records {
		if addr.Set(rec.PAddr) != *setID {
			continue
		}
		isWrite := 0
		if rec.IsWrite {
			isWrite = 1
		}
		fmt.Fprintf(w, "%d\t0x%x\t%x\n", kept, rec.PAddr, isWrite)
		kept++
	}

	fmt.Printf("kept %d of %d records for set %d\n", kept, len(records), *setID)
}
