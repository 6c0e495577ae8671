package materialscmder_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	tutorcmder "github.com/wahida/tutor/cmd/tutor"
	materialscmder "github.com/wahida/tutor/cmd/tutor/materials"
	testutils "github.com/wahida/tutor/pkg/utils/test"
)

const linearPage = `---
title: Persamaan Linear
kelas: "7"
topik: Aljabar
level: dasar
---
# Persamaan Linear

Subtract 3 from both sides.
`

var _ = Describe("NewMaterialsCmd", func() {
	It("has list and show subcommands", func() {
		cmd := materialscmder.NewMaterialsCmd()
		names := []string{}
		for _, sub := range cmd.Commands() {
			names = append(names, sub.Name())
		}
		Expect(names).To(ContainElements("list", "show"))
	})
})

var _ = Describe("Materials command execution", func() {
	var (
		configDir  string
		contentDir string
	)

	writePage := func(grade, slug, content string) {
		dir := filepath.Join(contentDir, grade)
		Expect(os.MkdirAll(dir, 0o755)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(dir, slug+".md"), []byte(content), 0o600)).To(Succeed())
	}

	run := func(args ...string) (string, error) {
		args = append(append([]string{"materials"}, args...), "--config-dir", configDir, "--materials-dir", contentDir)
		return testutils.ExecuteCommand(tutorcmder.NewTutorCmd(), "", args...)
	}

	BeforeEach(func() {
		configDir = GinkgoT().TempDir()
		contentDir = GinkgoT().TempDir()
	})

	Describe("list", func() {
		It("groups pages by grade", func() {
			writePage("kelas-7", "persamaan-linear", linearPage)
			writePage("kelas-8", "pythagoras", "# Pythagoras\n")

			out, err := run("list")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("kelas-7"))
			Expect(out).To(ContainSubstring("persamaan-linear"))
			Expect(out).To(ContainSubstring("Persamaan Linear"))
			Expect(out).To(ContainSubstring("Aljabar, dasar"))
			Expect(out).To(ContainSubstring("kelas-8"))
			Expect(out).To(ContainSubstring("pythagoras"))
		})

		It("says when there is nothing to list", func() {
			out, err := run("list")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("No materials found"))
		})

		It("fails for a missing directory", func() {
			contentDir = filepath.Join(contentDir, "missing")
			_, err := run("list")
			Expect(err).To(MatchError(ContainSubstring("reading content dir")))
		})
	})

	Describe("show", func() {
		It("renders the page body", func() {
			writePage("kelas-7", "persamaan-linear", linearPage)

			out, err := run("show", "persamaan-linear")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("Persamaan Linear"))
			Expect(out).To(ContainSubstring("Topik:"))
			Expect(out).To(ContainSubstring("Subtract 3 from both sides."))
		})

		It("reports an unknown slug", func() {
			writePage("kelas-7", "persamaan-linear", linearPage)

			_, err := run("show", "missing")
			Expect(err).To(MatchError(ContainSubstring(`no material named "missing"`)))
		})

		It("requires a slug", func() {
			_, err := run("show")
			Expect(err).To(HaveOccurred())
		})
	})
})
