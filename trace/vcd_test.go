package trace_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/rvfront/emu"
	"github.com/sarchlab/rvfront/timing/pipeline"
	"github.com/sarchlab/rvfront/trace"
)

var _ = Describe("VCDWriter", func() {
	var (
		buf  *bytes.Buffer
		vcd  *trace.VCDWriter
		pipe *pipeline.Pipeline
	)

	BeforeEach(func() {
		logger := logrus.New()
		logger.SetOutput(GinkgoWriter)

		store, err := emu.NewInstructionStore([]uint32{0x2BC00003, 0x006281B3, 0x006281B3}, 0)
		Expect(err).NotTo(HaveOccurred())
		pipe = pipeline.NewPipeline(emu.NewSeededRegFile(), store, pipeline.WithLogger(logger))

		buf = &bytes.Buffer{}
		vcd = trace.NewVCDWriter(buf, "frontend")
	})

	It("should write the header and initial values", func() {
		pipe.ReleaseReset()
		pipe.Tick()
		Expect(vcd.Sample(1, pipe.Outputs())).To(Succeed())
		Expect(vcd.Flush()).To(Succeed())

		out := buf.String()
		Expect(out).To(ContainSubstring("$timescale 1ns $end"))
		Expect(out).To(ContainSubstring("$scope module frontend $end"))
		Expect(out).To(ContainSubstring("$var wire 32 \" pc $end"))
		Expect(out).To(ContainSubstring("$var wire 64 & if_id $end"))
		Expect(out).To(ContainSubstring("$enddefinitions $end\n#1\n$dumpvars\n1!\n"))
		Expect(out).To(ContainSubstring("b1010111100 %\n"))
	})

	It("should write only changed values", func() {
		pipe.ReleaseReset()
		pipe.Tick()
		Expect(vcd.Sample(1, pipe.Outputs())).To(Succeed())
		Expect(vcd.Flush()).To(Succeed())
		buf.Reset()

		pipe.Tick()
		Expect(vcd.Sample(2, pipe.Outputs())).To(Succeed())
		Expect(vcd.Flush()).To(Succeed())

		out := buf.String()
		Expect(out).To(HavePrefix("#2\n"))
		Expect(out).To(ContainSubstring("b1 \"\n"))
		Expect(out).NotTo(ContainSubstring("1!"))
	})

	It("should skip the time stamp when nothing changed", func() {
		Expect(vcd.Sample(0, pipe.Outputs())).To(Succeed())
		Expect(vcd.Flush()).To(Succeed())
		buf.Reset()

		pipe.Tick()
		Expect(vcd.Sample(1, pipe.Outputs())).To(Succeed())
		Expect(vcd.Flush()).To(Succeed())
		Expect(buf.String()).To(BeEmpty())
	})

	It("should reject time going backwards", func() {
		Expect(vcd.Sample(5, pipe.Outputs())).To(Succeed())
		Expect(vcd.Sample(4, pipe.Outputs())).NotTo(Succeed())
	})
})
