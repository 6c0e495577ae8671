package historycmder_test

import (
	"context"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	tutorcmder "github.com/wahida/tutor/cmd/tutor"
	"github.com/wahida/tutor/pkg/dotdir"
	"github.com/wahida/tutor/pkg/storage/sqlite"
	testutils "github.com/wahida/tutor/pkg/utils/test"
)

var _ = Describe("History command execution", func() {
	var (
		configDir string
		dbPath    string
		base      time.Time
	)

	run := func(args ...string) (string, error) {
		args = append([]string{"history", "--config-dir", configDir}, args...)
		return testutils.ExecuteCommand(tutorcmder.NewTutorCmd(), "", args...)
	}

	seed := func(conversation string, questions ...string) {
		ctx := context.Background()
		d, err := sqlite.NewSQLiteDriver(ctx, dbPath)
		Expect(err).NotTo(HaveOccurred())
		defer d.Close()

		for i, q := range questions {
			_, err := d.Put(ctx, testutils.NewTestTurn(conversation, q, base.Add(time.Duration(i)*time.Minute)))
			Expect(err).NotTo(HaveOccurred())
		}
	}

	saveState := func(id string) {
		state := dotdir.NewConversationState()
		state.ID = id
		Expect(dotdir.NewManager().SaveConversation(state, configDir)).To(Succeed())
	}

	BeforeEach(func() {
		configDir = GinkgoT().TempDir()
		dbPath = filepath.Join(configDir, "tutor.sqlite")
		base = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
		GinkgoT().Setenv("TUTOR_STORAGE_POSTGRES_DSN", "")
	})

	It("explains when no store is configured", func() {
		out, err := run()
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Transcripts are not kept"))
	})

	It("shows the current conversation", func() {
		seed("conv-a", "What is 2x = 4?", "And 3x = 9?")
		seed("conv-b", "Unrelated")
		saveState("conv-a")

		out, err := run("--sqlite", dbPath)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("What is 2x = 4?"))
		Expect(out).To(ContainSubstring("And 3x = 9?"))
		Expect(out).To(ContainSubstring("Subtract b from both sides."))
		Expect(out).NotTo(ContainSubstring("Unrelated"))
	})

	It("resolves a relative sqlite path against the config dir", func() {
		seed("conv-a", "relative?")
		saveState("conv-a")

		out, err := run("--sqlite", "tutor.sqlite")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("relative?"))
	})

	It("says when there is no conversation yet", func() {
		out, err := run("--sqlite", dbPath)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("No conversation yet"))
	})

	It("shows every conversation with --all", func() {
		seed("conv-a", "first")
		seed("conv-b", "second")

		out, err := run("--sqlite", dbPath, "--all")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("first"))
		Expect(out).To(ContainSubstring("second"))
	})

	It("selects a conversation and limits the turns", func() {
		seed("conv-b", "one", "two", "three")

		out, err := run("--sqlite", dbPath, "--conversation", "conv-b", "--limit", "1")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("three"))
		Expect(out).NotTo(ContainSubstring("two"))
	})

	It("lists sources on request", func() {
		seed("conv-a", "with sources")

		out, err := run("--sqlite", dbPath, "--all", "--sources")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Persamaan Linear"))
	})

	It("reports an empty store", func() {
		out, err := run("--sqlite", dbPath, "--conversation", "nothing-here")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("No turns recorded."))
	})
})
