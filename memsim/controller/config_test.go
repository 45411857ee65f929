package controller_test

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tracehm/memsim/controller"
	"github.com/sarchlab/tracehm/memsim/policy"
)

func TestController(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Controller Suite")
}

var _ = Describe("Config", func() {
	It("DefaultConfig mirrors flat_config1", func() {
		cfg := controller.DefaultConfig()
		Expect(cfg.FastCapacity).To(Equal(uint64(0x1003fff)))
		Expect(cfg.SwapPolicy).To(Equal(policy.SmartSwap))
		Expect(cfg.BypassPolicy).To(Equal(policy.Probability))
		Expect(cfg.BypassProbability).To(Equal(0.5))
		Expect(cfg.TransCacheCapacity).To(Equal(4))
	})

	It("PresetDRAMNVM mirrors flat_config_dram_nvm", func() {
		cfg := controller.PresetDRAMNVM()
		Expect(cfg.SwapPolicy).To(Equal(policy.SlowSwap))
		Expect(cfg.SlowReadLatency).To(Equal(uint64(5)))
		Expect(cfg.SlowWriteLatency).To(Equal(uint64(10)))
		Expect(cfg.FastBlock).To(Equal(uint64(2)))
	})

	It("validates a malformed config", func() {
		cfg := controller.DefaultConfig()
		cfg.FastCapacity = 0
		Expect(cfg.Validate()).To(HaveOccurred())
	})

	It("applies a numeric override by its json tag key", func() {
		cfg := controller.DefaultConfig()
		Expect(cfg.ApplyArg("fast_block", "8")).To(Succeed())
		Expect(cfg.FastBlock).To(Equal(uint64(8)))
	})

	It("applies an enumerated override by variant name", func() {
		cfg := controller.DefaultConfig()
		Expect(cfg.ApplyArg("swap_policy", "FastSwap")).To(Succeed())
		Expect(cfg.SwapPolicy).To(Equal(policy.FastSwap))
	})

	It("rejects an invalid enum value", func() {
		cfg := controller.DefaultConfig()
		Expect(cfg.ApplyArg("swap_policy", "Nonsense")).To(HaveOccurred())
	})

	It("warns but does not error on an unknown key", func() {
		cfg := controller.DefaultConfig()
		Expect(cfg.ApplyArg("not_a_real_key", "1")).To(Succeed())
	})

	It("round-trips through SaveConfig/LoadConfig as JSON", func() {
		cfg := controller.DefaultConfig()
		cfg.FastBlock = 9
		dir := os.TempDir()
		path := filepath.Join(dir, "tracehm-config-test.json")
		defer func() { _ = os.Remove(path) }()

		Expect(cfg.SaveConfig(path)).To(Succeed())
		loaded, err := controller.LoadConfig(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.FastBlock).To(Equal(uint64(9)))
		Expect(loaded.SwapPolicy).To(Equal(cfg.SwapPolicy))
	})

	It("loads a yaml config by extension", func() {
		dir := os.TempDir()
		path := filepath.Join(dir, "tracehm-config-test.yaml")
		Expect(os.WriteFile(path, []byte("fast_block: 6\nswap_policy: SlowSwap\n"), 0o644)).To(Succeed())
		defer func() { _ = os.Remove(path) }()

		loaded, err := controller.LoadConfig(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.FastBlock).To(Equal(uint64(6)))
		Expect(loaded.SwapPolicy).To(Equal(policy.SlowSwap))
	})

	It("Clone produces an independent copy", func() {
		cfg := controller.DefaultConfig()
		clone := cfg.Clone()
		clone.FastBlock = 100
		Expect(cfg.FastBlock).NotTo(Equal(uint64(100)))
	})
})
