package trace_test

import (
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tracehm/memsim/trace"
)

func TestTrace(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Trace Suite")
}

var _ = Describe("ReadAll", func() {
	It("parses well-formed tab-separated lines", func() {
		input := "0\t0x1000\t0\n1\t0x2000\t1\n"
		records, err := trace.ReadAll(strings.NewReader(input))
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(2))
		Expect(records[0]).To(Equal(trace.Record{Index: 0, PAddr: 0x1000, IsWrite: false}))
		Expect(records[1]).To(Equal(trace.Record{Index: 1, PAddr: 0x2000, IsWrite: true}))
	})

	It("skips malformed lines and keeps the well-formed ones", func() {
		input := "0\t0x1000\t0\ngarbage\n2\t0x3000\t1\n"
		records, err := trace.ReadAll(strings.NewReader(input))
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(2))
		Expect(records[1].PAddr).To(Equal(uint64(0x3000)))
	})

	It("skips blank lines without treating them as malformed", func() {
		input := "0\t0x1000\t0\n\n1\t0x2000\t0\n"
		records, err := trace.ReadAll(strings.NewReader(input))
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(2))
	})

	It("tolerates addresses without the 0x prefix", func() {
		input := "0\t1000\t0\n"
		records, err := trace.ReadAll(strings.NewReader(input))
		Expect(err).NotTo(HaveOccurred())
		Expect(records[0].PAddr).To(Equal(uint64(0x1000)))
	})
})

var _ = Describe("Record.ToEvent", func() {
	It("starts the event at cycle 0 with matching address and write flag", func() {
		r := trace.Record{Index: 3, PAddr: 0x4000, IsWrite: true}
		e := r.ToEvent()
		Expect(e.PAddr).To(Equal(uint64(0x4000)))
		Expect(e.IsWrite).To(BeTrue())
		Expect(e.CurrentCycle).To(Equal(uint64(0)))
	})
})
