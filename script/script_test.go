package script_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/rvfront/emu"
	"github.com/sarchlab/rvfront/script"
	"github.com/sarchlab/rvfront/timing/core"
)

var _ = Describe("Engine", func() {
	var (
		c      *core.Core
		engine *script.Engine
		ticks  int
		ctx    context.Context
	)

	BeforeEach(func() {
		logger := logrus.New()
		logger.SetOutput(GinkgoWriter)

		// lw x0, 0x2BC(x0); add x3, x5, x6; beq with imm -2014; add x3, x5, x6
		store, err := emu.NewInstructionStore(
			[]uint32{0x2BC00003, 0x006281B3, 0x820001E3, 0x006281B3}, 0)
		Expect(err).NotTo(HaveOccurred())

		c = core.NewCore(emu.NewSeededRegFile(), store, logger)
		ticks = 0
		c.OnTick(func() { ticks++ })
		engine = script.New(c, logger)
		ctx = context.Background()
	})

	run := func(src string) error {
		return engine.Run(ctx, "test.lua", src)
	}

	It("should sequence the PC", func() {
		Expect(run(`
			expect(not running(), "starts in reset")
			release()
			tick()
			expect(running(), "running after release edge")
			expect(pc() == 0, "first fetch")
			expect(immediate() == 0x2BC, "load immediate")
			tick(2)
			expect(pc() == 2 and pc_addr() == 2, "sequential")
			expect(cycle() == 3, "cycle count")
		`)).To(Succeed())
		Expect(ticks).To(Equal(3))
	})

	It("should expose the control vector", func() {
		Expect(run(`
			release()
			tick()
			local c = control()
			expect(c.alu_src and c.mem_to_reg and c.reg_write and c.mem_read, "load controls")
			expect(not c.mem_write and not c.branch and c.alu_op == 0, "load controls off")
			tick(2)
			c = control()
			expect(c.branch and c.alu_op == 7, "branch controls")
			expect(immediate() == 0xFFFFF822, "branch immediate")
		`)).To(Succeed())
	})

	It("should not fault on a jump withdrawn before the edge", func() {
		Expect(run(`
			release()
			tick()
			jump(200)
			sequential()
			expect(tick(), "no fetch fault")
			expect(pc() == 1, "sequential fetch")
		`)).To(Succeed())
		Expect(c.Faulted()).To(BeFalse())
		Expect(ticks).To(Equal(2))
	})

	It("should drive jumps and the register write port", func() {
		Expect(run(`
			release()
			tick()
			jump(1)
			expect(instruction() == 0x006281B3, "jump selects immediately")
			expect(rda() == 15 and rdb() == 16, "read ports")
			writeback(5, 99, true)
			tick()
			writeback(0, 0, false)
			expect(reg(5) == 99, "write on edge")
			expect(rda() == 99, "read after write")
			expect(ifid() == "0x00000001006281b3", "if/id")
			sequential()
			expect(pc() == 2, "sequential resumes")
		`)).To(Succeed())
		Expect(c.RegFile().ReadReg(5)).To(Equal(uint32(99)))
	})

	It("should report a fetch fault from tick", func() {
		Expect(run(`
			release()
			local ok = tick(10)
			expect(not ok, "fault past the store")
		`)).To(Succeed())
		Expect(ticks).To(Equal(5))
		Expect(c.Faulted()).To(BeTrue())
	})

	It("should return an expectation failure", func() {
		err := run(`expect(pc() == 3, "pc is three")`)
		Expect(errors.Is(err, script.ErrExpectation)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("pc is three"))
	})

	It("should return Lua errors", func() {
		err := run(`this is not lua`)
		Expect(err).To(HaveOccurred())
		Expect(errors.Is(err, script.ErrExpectation)).To(BeFalse())
	})

	It("should reject out-of-range registers", func() {
		Expect(run(`reg(32)`)).NotTo(Succeed())
		Expect(run(`writeback(-1, 0, true)`)).NotTo(Succeed())
	})

	It("should stop when the context is cancelled", func() {
		cctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := engine.Run(cctx, "loop.lua", `while true do tick() end`)
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
	})

	It("should run a script file", func() {
		path := filepath.Join(GinkgoT().TempDir(), "s.lua")
		Expect(os.WriteFile(path, []byte(`release() tick() log("fetched")`), 0644)).To(Succeed())
		Expect(engine.RunFile(ctx, path)).To(Succeed())
		Expect(c.Stats().Fetches).To(Equal(uint64(1)))
	})
})
