package addr_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tracehm/memsim/addr"
)

func TestAddr(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Addr Suite")
}

var _ = Describe("Address layout", func() {
	It("round-trips set/region/offset through Make", func() {
		a := addr.Make(7, 3, 0x42)
		Expect(addr.Set(a)).To(Equal(uint64(7)))
		Expect(addr.Region(a)).To(Equal(uint64(3)))
		Expect(addr.Offset(a)).To(Equal(uint64(0x42)))
	})

	It("computes the page field as set<<RegionBits|region", func() {
		a := addr.Make(1, 2, 0)
		Expect(addr.Page(a)).To(Equal(uint64(1<<addr.RegionBits | 2)))
	})

	It("reports the region of a page id", func() {
		page := addr.Page(addr.Make(5, 9, 0))
		Expect(addr.RegionOfPage(page)).To(Equal(uint64(9)))
	})

	It("matches the scenario address 0x0000 (set 0, region 0, offset 0)", func() {
		Expect(addr.Set(0x0000)).To(Equal(uint64(0)))
		Expect(addr.Region(0x0000)).To(Equal(uint64(0)))
	})

	It("matches the scenario address 0x03000 (region 3)", func() {
		Expect(addr.Region(0x03000)).To(Equal(uint64(3)))
	})
})
