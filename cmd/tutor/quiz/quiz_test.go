package quizcmder_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	tutorcmder "github.com/wahida/tutor/cmd/tutor"
	quizcmder "github.com/wahida/tutor/cmd/tutor/quiz"
	"github.com/wahida/tutor/pkg/credentials"
	testutils "github.com/wahida/tutor/pkg/utils/test"
)

var _ = Describe("NewQuizCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := quizcmder.NewQuizCmd()
		Expect(cmd.Use).To(Equal("quiz [id]"))
	})

	It("registers the answer flag", func() {
		cmd := quizcmder.NewQuizCmd()
		Expect(cmd.Flags().Lookup("answer")).NotTo(BeNil())
		Expect(cmd.Flags().Lookup("api-target")).NotTo(BeNil())
	})
})

var _ = Describe("Quiz command execution", func() {
	var (
		api       *testutils.FakeAPI
		configDir string
	)

	run := func(stdin string, args ...string) (string, error) {
		args = append([]string{"quiz", "--config-dir", configDir, "--api-target", api.URL}, args...)
		return testutils.ExecuteCommand(tutorcmder.NewTutorCmd(), stdin, args...)
	}

	BeforeEach(func() {
		api = testutils.NewFakeAPI()
		DeferCleanup(api.Close)
		configDir = GinkgoT().TempDir()
		GinkgoT().Setenv(credentials.TokenEnvVar, "")
	})

	It("shows the default question and its numbered choices", func() {
		out, err := run("", "--answer", "2")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("What does print(1 + 1) output?"))
		Expect(out).To(ContainSubstring("1."))
		Expect(out).To(ContainSubstring("'1 + 1'"))
		Expect(out).To(ContainSubstring("Correct!"))
	})

	It("submits the zero-based index", func() {
		_, err := run("", "intro-python", "--answer", "3")
		Expect(err).NotTo(HaveOccurred())

		req, ok := api.LastRequest()
		Expect(ok).To(BeTrue())
		Expect(req.Path).To(Equal("/api/quiz/intro-python"))

		var body map[string]any
		Expect(json.Unmarshal([]byte(req.Body), &body)).To(Succeed())
		Expect(body["selected_index"]).To(BeEquivalentTo(2))
	})

	It("reads the answer from stdin", func() {
		out, err := run("1\n")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("answer>"))
		Expect(out).To(ContainSubstring("Not quite"))
	})

	It("rejects an answer out of range", func() {
		_, err := run("", "--answer", "9")
		Expect(err).To(MatchError(ContainSubstring("between 1 and 3")))
	})

	It("rejects a non-numeric answer", func() {
		_, err := run("two\n")
		Expect(err).To(MatchError(ContainSubstring("must be a number")))
	})

	It("fails without an answer", func() {
		_, err := run("")
		Expect(err).To(MatchError(ContainSubstring("no answer given")))
	})

	It("reports an unknown quiz", func() {
		_, err := run("", "missing", "--answer", "1")
		Expect(err).To(MatchError(ContainSubstring(`no quiz named "missing"`)))
	})

	It("serves custom questions", func() {
		api.AddQuiz(testutils.FakeQuiz{ID: "algebra-1", Prompt: "2x = 4, x = ?", Choices: []string{"1", "2"}, AnswerIndex: 1})

		out, err := run("", "algebra-1", "--answer", "2")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("2x = 4"))
		Expect(out).To(ContainSubstring("Correct!"))
	})
})
