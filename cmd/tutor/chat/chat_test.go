package chatcmder_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	tutorcmder "github.com/wahida/tutor/cmd/tutor"
	chatcmder "github.com/wahida/tutor/cmd/tutor/chat"
	"github.com/wahida/tutor/pkg/credentials"
	"github.com/wahida/tutor/pkg/dotdir"
	"github.com/wahida/tutor/pkg/hints"
	testutils "github.com/wahida/tutor/pkg/utils/test"
)

var _ = Describe("NewChatCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := chatcmder.NewChatCmd()
		Expect(cmd.Use).To(Equal("chat [question]"))
	})

	It("registers the chat flags", func() {
		cmd := chatcmder.NewChatCmd()
		for _, name := range []string{"api-target", "timeout", "profile", "flush-trailing", "hints", "sqlite", "postgres", "dump", "new"} {
			Expect(cmd.Flags().Lookup(name)).NotTo(BeNil(), name)
		}
	})
})

var _ = Describe("Chat command execution", func() {
	var (
		api       *testutils.FakeAPI
		configDir string
	)

	run := func(stdin string, args ...string) (string, error) {
		args = append([]string{"chat", "--config-dir", configDir, "--api-target", api.URL}, args...)
		return testutils.ExecuteCommand(tutorcmder.NewTutorCmd(), stdin, args...)
	}

	loadState := func() *dotdir.ConversationState {
		state, err := dotdir.NewManager().LoadConversation(configDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(state).NotTo(BeNil())
		return state
	}

	BeforeEach(func() {
		api = testutils.NewFakeAPI()
		DeferCleanup(api.Close)
		configDir = GinkgoT().TempDir()
		GinkgoT().Setenv(credentials.TokenEnvVar, "")
		GinkgoT().Setenv("TUTOR_STORAGE_SQLITE_PATH", "")
		GinkgoT().Setenv("TUTOR_STORAGE_POSTGRES_DSN", "")
	})

	Describe("one-shot question", func() {
		It("prints the sources and the answer", func() {
			out, err := run("", "How do I solve 2x + 3 = 7?")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("t1"))
			Expect(out).To(ContainSubstring("done"))
			Expect(out).To(ContainSubstring("1 hint(s) available"))

			req, ok := api.LastRequest()
			Expect(ok).To(BeTrue())
			Expect(req.Path).To(Equal("/api/chat"))
			Expect(req.Body).To(ContainSubstring("How do I solve 2x + 3 = 7?"))
		})

		It("records the turn in the chat log", func() {
			_, err := run("", "What is a variable?")
			Expect(err).NotTo(HaveOccurred())

			data, err := os.ReadFile(filepath.Join(configDir, "chat.log"))
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring(`"msg":"turn complete"`))
		})

		It("saves the conversation state", func() {
			_, err := run("", "first")
			Expect(err).NotTo(HaveOccurred())
			first := loadState()
			Expect(first.Turns).To(Equal(1))

			_, err = run("", "second")
			Expect(err).NotTo(HaveOccurred())
			second := loadState()
			Expect(second.ID).To(Equal(first.ID))
			Expect(second.Turns).To(Equal(2))
		})

		It("starts over with --new", func() {
			_, err := run("", "first")
			Expect(err).NotTo(HaveOccurred())
			first := loadState()

			_, err = run("", "--new", "again")
			Expect(err).NotTo(HaveOccurred())
			Expect(loadState().ID).NotTo(Equal(first.ID))
			Expect(loadState().Turns).To(Equal(1))
		})

		It("shows the failure hint when the backend errors", func() {
			api.SetChatStatus(500)

			out, err := run("", "question")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring(hints.FailureHint))
		})

		It("shows the no-response hint for an empty stream", func() {
			api.SetChatBody("")

			out, err := run("", "question")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring(hints.NoResponseHint))
		})

		It("dumps the raw stream", func() {
			dump := filepath.Join(GinkgoT().TempDir(), "stream.log")

			_, err := run("", "--dump", dump, "question")
			Expect(err).NotTo(HaveOccurred())

			raw, err := os.ReadFile(dump)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(raw)).To(Equal(testutils.StartedEvent + testutils.ChunkEvent + testutils.ResponseEvent + testutils.DoneEvent))
		})

		It("parses an unterminated final event with --flush-trailing", func() {
			api.SetChatBody(testutils.ChunkEvent + `data: {"type":"response","text":"tail answer"}`)

			out, err := run("", "question")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).NotTo(ContainSubstring("tail answer"))

			out, err = run("", "--flush-trailing", "question")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("tail answer"))
		})
	})

	Describe("interactive session", func() {
		It("answers questions and reveals hints", func() {
			out, err := run("What is x?\n/hint\n/hint\n/exit\n")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("New conversation"))
			Expect(out).To(ContainSubstring("done"))
			Expect(out).To(ContainSubstring("hint:"))
			Expect(out).To(ContainSubstring("No more hints for this answer."))

			state := loadState()
			Expect(state.Turns).To(Equal(1))
			Expect(state.HintsRevealed).To(Equal(1))
		})

		It("offers the default hint before any question", func() {
			out, err := run("/hint\n")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring(hints.DefaultHint))
		})

		It("resumes a saved conversation", func() {
			_, err := run("", "first")
			Expect(err).NotTo(HaveOccurred())

			out, err := run("/exit\n")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("Resuming"))
		})

		It("starts a new conversation with /new", func() {
			_, err := run("", "first")
			Expect(err).NotTo(HaveOccurred())
			first := loadState()

			_, err = run("/new\n")
			Expect(err).NotTo(HaveOccurred())
			Expect(loadState().ID).NotTo(Equal(first.ID))
		})

		It("ends on EOF and keeps the state", func() {
			_, err := run("one\ntwo\n")
			Expect(err).NotTo(HaveOccurred())
			Expect(loadState().Turns).To(Equal(2))
		})
	})
})
