package cliui_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/wahida/tutor/pkg/cliui"
)

var _ = Describe("cliui", func() {
	Describe("FormatDuration", func() {
		It("uses milliseconds below a second", func() {
			Expect(cliui.FormatDuration(12 * time.Millisecond)).To(Equal("12ms"))
		})

		It("uses seconds above", func() {
			Expect(cliui.FormatDuration(3200 * time.Millisecond)).To(Equal("3.2s"))
		})
	})

	Describe("Mark", func() {
		It("picks the mark by error", func() {
			Expect(cliui.Mark(nil)).To(Equal(cliui.SuccessMark))
			Expect(cliui.Mark(errors.New("x"))).To(Equal(cliui.FailMark))
		})
	})

	Describe("Step", func() {
		It("reports the outcome of fn", func() {
			buf := &bytes.Buffer{}
			boom := errors.New("boom")

			err := cliui.Step(buf, "Loading", func() error { return boom })
			Expect(err).To(MatchError(boom))
			Expect(buf.String()).To(ContainSubstring("Loading"))
			Expect(buf.String()).To(HaveSuffix("\n"))
		})

		It("prints a single line when the writer is not a terminal", func() {
			buf := &bytes.Buffer{}

			Expect(cliui.Step(buf, "Running python program", func() error { return nil })).To(Succeed())
			Expect(buf.String()).NotTo(ContainSubstring("\r"))
			Expect(buf.String()).To(HavePrefix("  " + cliui.SuccessMark + " Running python program"))
		})
	})

	Describe("markdown", func() {
		var file *os.File

		BeforeEach(func() {
			var err error
			file, err = os.Create(filepath.Join(GinkgoT().TempDir(), "out"))
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(file.Close)
		})

		It("uses the plain style off a terminal", func() {
			Expect(cliui.IsTerminal(file)).To(BeFalse())
			Expect(cliui.MarkdownStyle(file)).To(Equal("notty"))
		})

		It("renders headings and text", func() {
			out, err := cliui.RenderMarkdown(file, "# Persamaan Linear\n\nBentuk umum ax + b = c.")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("Persamaan Linear"))
			Expect(out).To(ContainSubstring("ax + b = c"))
		})
	})
})
