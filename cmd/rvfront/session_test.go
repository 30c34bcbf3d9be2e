package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sarchlab/rvfront/loader"
	"github.com/sarchlab/rvfront/timing/config"
)

var _ = Describe("Batch run", func() {
	var (
		tempDir     string
		programPath string
		logger      *logrus.Logger
	)

	writeProgram := func(words ...uint32) {
		var buf bytes.Buffer
		Expect(loader.Format(&buf, words)).To(Succeed())
		Expect(os.WriteFile(programPath, buf.Bytes(), 0644)).To(Succeed())
	}

	newCmd := func(out *bytes.Buffer) *cobra.Command {
		cmd := &cobra.Command{}
		cmd.SetOut(out)
		cmd.SetContext(context.Background())
		return cmd
	}

	BeforeEach(func() {
		tempDir = GinkgoT().TempDir()
		programPath = filepath.Join(tempDir, "mc_code")
		logger = logrus.New()
		logger.SetOutput(GinkgoWriter)
		// lw x0, 0x2BC(x0); add x3, x5, x6
		writeProgram(0x2BC00003, 0x006281B3)
	})

	Describe("loadConfig", func() {
		It("should apply flag overrides", func() {
			cfg, err := loadConfig(options{cycles: 42, icache: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.MaxCycles).To(Equal(uint64(42)))
			Expect(cfg.ICache).NotTo(BeNil())
		})

		It("should read a config file", func() {
			path := filepath.Join(tempDir, "sim.json")
			cfg := config.DefaultSimConfig()
			cfg.StoreSize = 16
			Expect(cfg.SaveConfig(path)).To(Succeed())

			loaded, err := loadConfig(options{configPath: path})
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.StoreSize).To(Equal(16))
		})

		It("should reject an invalid config file", func() {
			path := filepath.Join(tempDir, "bad.json")
			Expect(os.WriteFile(path, []byte(`{"store_size": -1}`), 0644)).To(Succeed())
			_, err := loadConfig(options{configPath: path})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("newSession", func() {
		It("should reject a malformed program", func() {
			Expect(os.WriteFile(programPath, []byte("0101\n"), 0644)).To(Succeed())
			_, err := newSession(options{}, programPath, logger)
			Expect(err).To(MatchError(loader.ErrMalformedLine))
		})

		It("should reject a program larger than the store", func() {
			path := filepath.Join(tempDir, "sim.json")
			Expect(os.WriteFile(path, []byte(`{"store_size": 1}`), 0644)).To(Succeed())
			_, err := newSession(options{configPath: path}, programPath, logger)
			Expect(err).To(MatchError(loader.ErrStoreTooSmall))
		})
	})

	Describe("runBatch", func() {
		It("should print one row per cycle and the statistics", func() {
			s, err := newSession(options{cycles: 2}, programPath, logger)
			Expect(err).NotTo(HaveOccurred())

			var out bytes.Buffer
			Expect(runBatch(newCmd(&out), s)).To(Succeed())
			Expect(s.Close()).To(Succeed())

			text := out.String()
			Expect(text).To(ContainSubstring("0x000002bc"))
			Expect(text).To(ContainSubstring("0x00000001006281b3"))
			Expect(text).To(ContainSubstring("Total Cycles:      3"))
			Expect(text).To(ContainSubstring("Fetches:           2"))
		})

		It("should stop on a fetch fault", func() {
			path := filepath.Join(tempDir, "sim.json")
			Expect(os.WriteFile(path, []byte(`{"store_size": 2}`), 0644)).To(Succeed())
			s, err := newSession(options{configPath: path, cycles: 10}, programPath, logger)
			Expect(err).NotTo(HaveOccurred())

			var out bytes.Buffer
			Expect(runBatch(newCmd(&out), s)).To(Succeed())
			Expect(out.String()).To(ContainSubstring("Stopped on fetch fault at pc 2"))
		})

		It("should report cache statistics", func() {
			s, err := newSession(options{cycles: 2, icache: true}, programPath, logger)
			Expect(err).NotTo(HaveOccurred())

			var out bytes.Buffer
			Expect(runBatch(newCmd(&out), s)).To(Succeed())
			Expect(out.String()).To(ContainSubstring("Misses:   1"))
		})

		It("should write a waveform", func() {
			vcdPath := filepath.Join(tempDir, "run.vcd")
			s, err := newSession(options{cycles: 2, vcdPath: vcdPath}, programPath, logger)
			Expect(err).NotTo(HaveOccurred())

			var out bytes.Buffer
			Expect(runBatch(newCmd(&out), s)).To(Succeed())
			Expect(s.Close()).To(Succeed())
			Expect(s.Close()).To(Succeed())

			data, err := os.ReadFile(vcdPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring("$enddefinitions $end"))
			Expect(strings.Count(string(data), "#")).To(BeNumerically(">=", 3))
		})
	})
})

var _ = Describe("logLevel", func() {
	It("should map the verbosity count", func() {
		Expect(logLevel(0)).To(Equal(logrus.WarnLevel))
		Expect(logLevel(1)).To(Equal(logrus.InfoLevel))
		Expect(logLevel(3)).To(Equal(logrus.DebugLevel))
	})
})

var _ = Describe("profileRun", func() {
	It("should restart the program on fetch faults", func() {
		dir := GinkgoT().TempDir()
		programPath := filepath.Join(dir, "mc_code")
		cfgPath := filepath.Join(dir, "sim.json")
		Expect(os.WriteFile(programPath, []byte(strings.Repeat("00000000000000000000000000110011\n", 2)), 0644)).To(Succeed())
		Expect(os.WriteFile(cfgPath, []byte(`{"store_size": 2}`), 0644)).To(Succeed())

		logger := logrus.New()
		logger.SetOutput(GinkgoWriter)
		s, err := newSession(options{configPath: cfgPath}, programPath, logger)
		Expect(err).NotTo(HaveOccurred())

		r, err := profileRun(context.Background(), s, 20)
		Expect(err).NotTo(HaveOccurred())
		Expect(r.cycles).To(Equal(uint64(20)))
		Expect(r.restarts).To(BeNumerically(">", 0))
		Expect(r.timedOut).To(BeFalse())
	})

	It("should keep the waveform time increasing across restarts", func() {
		dir := GinkgoT().TempDir()
		programPath := filepath.Join(dir, "mc_code")
		cfgPath := filepath.Join(dir, "sim.json")
		vcdPath := filepath.Join(dir, "profile.vcd")
		Expect(os.WriteFile(programPath, []byte(strings.Repeat("00000000000000000000000000110011\n", 2)), 0644)).To(Succeed())
		Expect(os.WriteFile(cfgPath, []byte(`{"store_size": 2}`), 0644)).To(Succeed())

		logger := logrus.New()
		logger.SetOutput(GinkgoWriter)
		s, err := newSession(options{configPath: cfgPath, vcdPath: vcdPath}, programPath, logger)
		Expect(err).NotTo(HaveOccurred())

		r, err := profileRun(context.Background(), s, 40)
		Expect(err).NotTo(HaveOccurred())
		Expect(r.restarts).To(BeNumerically(">=", 2))
		Expect(s.Close()).To(Succeed())

		data, err := os.ReadFile(vcdPath)
		Expect(err).NotTo(HaveOccurred())

		var last int64 = -1
		for _, line := range strings.Split(string(data), "\n") {
			if !strings.HasPrefix(line, "#") {
				continue
			}
			t, err := strconv.ParseInt(line[1:], 10, 64)
			Expect(err).NotTo(HaveOccurred())
			Expect(t).To(BeNumerically(">", last))
			last = t
		}
		Expect(last).To(Equal(int64(40)))
	})
})

var _ = Describe("rvfront command", func() {
	It("should run the bench subcommand", func() {
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetErr(GinkgoWriter)
		rootCmd.SetArgs([]string{"bench", "--csv"})
		DeferCleanup(func() {
			rootCmd.SetArgs(nil)
			rootCmd.SetOut(nil)
			rootCmd.SetErr(nil)
		})

		Expect(rootCmd.Execute()).To(Succeed())
		Expect(out.String()).To(ContainSubstring("sequential_fetch,128,128,"))
	})
})
