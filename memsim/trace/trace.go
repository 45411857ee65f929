// Package trace reads the tab-separated memory-reference trace format
// (index, 0xADDR, W) and turns it into a sequence of parsed events. This
// is a collaborator, not part of the timing core: its only contract with
// the core is "deliver a sequence of access events."
package trace

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sarchlab/tracehm/internal/xlog"
	"github.com/sarchlab/tracehm/memsim/event"
)

// Record is one parsed trace line.
type Record struct {
	Index   int
	PAddr   uint64
	IsWrite bool
}

// ReadAll parses every well-formed line from r, skipping malformed lines
// with a warning (the original reference's bare "except (ValueError,
// IndexError): continue", translated to Go's error-checking idiom).
func ReadAll(r io.Reader) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	// Trace lines only carry a handful of fields; the default token buffer
	// is already generous, so no buffer resize is needed here.

	var records []Record
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		rec, err := parseLine(line)
		if err != nil {
			xlog.Warnf("trace: skipping malformed line %d: %v", lineNo, err)
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("trace: read failed: %w", err)
	}
	return records, nil
}

func parseLine(line string) (Record, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 3 {
		return Record{}, fmt.Errorf("expected 3 tab-separated fields, got %d", len(fields))
	}

	index, err := strconv.Atoi(fields[0])
	if err != nil {
		return Record{}, fmt.Errorf("bad index %q: %w", fields[0], err)
	}

	addrField := strings.TrimPrefix(strings.TrimSpace(fields[1]), "0x")
	pAddr, err := strconv.ParseUint(addrField, 16, 64)
	if err != nil {
		return Record{}, fmt.Errorf("bad address %q: %w", fields[1], err)
	}

	writeField := strings.TrimSpace(fields[2])
	writeVal, err := strconv.ParseUint(writeField, 16, 8)
	if err != nil {
		return Record{}, fmt.Errorf("bad write flag %q: %w", fields[2], err)
	}

	return Record{Index: index, PAddr: pAddr, IsWrite: writeVal == 1}, nil
}

// ToEvent converts a Record into a MemEvent starting at cycle 0.
func (r Record) ToEvent() *event.MemEvent {
	return event.New(r.PAddr, r.IsWrite, 0)
}
