package api_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/quinevm/api"
	"github.com/sarchlab/quinevm/core"
	"github.com/sarchlab/quinevm/instr"
	"github.com/sarchlab/quinevm/verify"
)

var _ = Describe("Driver", func() {
	var driver api.Driver

	BeforeEach(func() {
		driver = api.DriverBuilder{}.
			WithEngine(sim.NewSerialEngine()).
			WithFreq(1 * sim.GHz).
			WithStepLimit(1 << 16).
			Build("Driver")
	})

	It("should run a program one instruction per cycle", func() {
		driver.MapProgram(instr.MustDecode(0, 1, 5, 4, 3, 0), core.Registers{A: 729})

		res, err := driver.Run()

		Expect(err).NotTo(HaveOccurred())
		Expect(res.Output).To(Equal([]uint8{4, 6, 3, 5, 6, 3, 5, 2, 1, 0}))
		Expect(res.Cycles).To(Equal(uint64(30)))
		Expect(res.TimeNs).To(BeNumerically(">=", 30))
		Expect(res.Registers).To(Equal(core.Registers{}))
	})

	It("should agree with the functional machine", func() {
		prog := instr.MustDecode(2, 4, 1, 1, 7, 5, 4, 0, 0, 3, 1, 6, 5, 5, 3, 0)
		regs := core.Registers{A: 247839653009594}

		want, err := core.Execute(prog, regs)
		Expect(err).NotTo(HaveOccurred())

		driver.MapProgram(prog, regs)
		res, err := driver.Run()

		Expect(err).NotTo(HaveOccurred())
		Expect(res.Output).To(Equal(want))
		Expect(res.Output).To(Equal(prog.Raw()))
	})

	It("should report errors with the partial result", func() {
		driver = api.DriverBuilder{}.WithStepLimit(9).Build("LimitedDriver")
		driver.MapProgram(instr.MustDecode(5, 4, 3, 0), core.Registers{A: 2})

		res, err := driver.Run()

		Expect(err).To(MatchError(core.ErrStepLimitExceeded))
		Expect(res.Cycles).To(Equal(uint64(9)))
		Expect(res.Output).To(HaveLen(5))
	})

	It("should refuse to run without a program", func() {
		_, err := driver.Run()

		Expect(err).To(MatchError(api.ErrNoProgram))
	})

	It("should run programs back to back", func() {
		prog := instr.MustDecode(0, 3, 5, 4, 3, 0)

		first, err := driver.Execute(context.Background(), prog, core.Registers{A: 117440})
		Expect(err).NotTo(HaveOccurred())

		second, err := driver.Execute(context.Background(), prog, core.Registers{A: 10})
		Expect(err).NotTo(HaveOccurred())

		Expect(first.Output).To(Equal(prog.Raw()))
		Expect(second.Output).To(Equal([]uint8{1, 0}))
		Expect(second.Steps).To(Equal(uint64(6)))
	})

	It("should stop a run that never halts once the context is done", func() {
		driver = api.DriverBuilder{}.Build("UnlimitedDriver")
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		res, err := driver.Execute(ctx, instr.MustDecode(5, 4, 3, 0), core.Registers{A: 1})

		Expect(err).To(MatchError(context.DeadlineExceeded))
		Expect(res.Steps).To(BeNumerically(">", 0))
	})

	It("should report errors from a runner", func() {
		driver = api.DriverBuilder{}.WithStepLimit(10).Build("ReportDriver")

		report := verify.GenerateReport(context.Background(), instr.MustDecode(5, 4, 3, 0),
			core.Registers{A: 1}, api.AsRunner(driver))

		Expect(report.RunOK).To(BeFalse())
		Expect(report.RunErr).To(MatchError(core.ErrStepLimitExceeded))
		Expect(report.Run.Steps).To(Equal(uint64(10)))
	})

	It("should serve as a verification runner", func() {
		prog := instr.MustDecode(0, 3, 5, 4, 3, 0)

		report := verify.GenerateReport(context.Background(), prog,
			core.Registers{A: 117440}, api.AsRunner(driver))

		Expect(report.RunOK).To(BeTrue())
		Expect(report.Clean()).To(BeTrue())
		Expect(report.Run.Output).To(Equal(prog.Raw()))
	})
})
