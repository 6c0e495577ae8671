package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/wahida/tutor/pkg/client"
	testutils "github.com/wahida/tutor/pkg/utils/test"
)

var _ = Describe("Client", func() {
	var (
		api *testutils.FakeAPI
		c   *client.Client
		ctx context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		api = testutils.NewFakeAPI()
		DeferCleanup(api.Close)

		var err error
		c, err = client.New(api.URL + "/")
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("New", func() {
		It("rejects a relative base URL", func() {
			_, err := client.New("localhost:8000/api")
			Expect(err).To(HaveOccurred())
		})

		It("trims a trailing slash from the base URL", func() {
			Expect(c.BaseURL()).To(Equal(api.URL))
		})
	})

	Describe("authorization", func() {
		It("sends the bearer token from the token source", func() {
			api.RequireToken("s3cret")
			c, err := client.New(api.URL, client.WithTokenSource(staticToken("s3cret")))
			Expect(err).NotTo(HaveOccurred())

			Expect(c.Health(ctx)).To(Succeed())
			_, err = c.GetProgress(ctx, "demo-user")
			Expect(err).NotTo(HaveOccurred())

			req, ok := api.LastRequest()
			Expect(ok).To(BeTrue())
			Expect(req.Authorization).To(Equal("Bearer s3cret"))
		})

		It("omits the header when the token is empty", func() {
			c, err := client.New(api.URL, client.WithTokenSource(staticToken("")))
			Expect(err).NotTo(HaveOccurred())

			Expect(c.Health(ctx)).To(Succeed())
			req, _ := api.LastRequest()
			Expect(req.Authorization).To(BeEmpty())
		})

		It("reports a rejected token as unauthorized", func() {
			api.RequireToken("s3cret")

			_, err := c.GetProgress(ctx, "demo-user")
			var apiErr *client.APIError
			Expect(errors.As(err, &apiErr)).To(BeTrue())
			Expect(apiErr.Unauthorized()).To(BeTrue())
			Expect(apiErr.Detail).To(Equal("Not authenticated"))
		})
	})

	Describe("Health", func() {
		It("succeeds when the backend reports ok", func() {
			Expect(c.Health(ctx)).To(Succeed())
		})

		It("fails on any other status", func() {
			api.SetHealth("degraded")
			Expect(c.Health(ctx)).To(MatchError(ContainSubstring(`"degraded"`)))
		})
	})

	Describe("GetQuiz", func() {
		It("fetches a question", func() {
			q, err := c.GetQuiz(ctx, "intro-python")
			Expect(err).NotTo(HaveOccurred())
			Expect(q.ID).To(Equal("intro-python"))
			Expect(q.Choices).To(Equal([]string{"11", "2", "'1 + 1'"}))
			Expect(q.AnswerIndex).NotTo(BeNil())
			Expect(*q.AnswerIndex).To(Equal(1))
		})

		It("returns a not found APIError for an unknown question", func() {
			_, err := c.GetQuiz(ctx, "nope")
			var apiErr *client.APIError
			Expect(errors.As(err, &apiErr)).To(BeTrue())
			Expect(apiErr.NotFound()).To(BeTrue())
			Expect(apiErr.Detail).To(Equal("Quiz not found"))
			Expect(err.Error()).To(Equal("api: 404 Not Found: Quiz not found"))
		})

		It("validates the id before sending", func() {
			_, err := c.GetQuiz(ctx, "")
			var verr *client.ValidationError
			Expect(errors.As(err, &verr)).To(BeTrue())
			Expect(api.Requests()).To(BeEmpty())
		})
	})

	Describe("SubmitQuiz", func() {
		It("grades a correct answer", func() {
			res, err := c.SubmitQuiz(ctx, client.QuizAttempt{QuestionID: "intro-python", SelectedIndex: 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Correct).To(BeTrue())
			Expect(res.SubmittedAt).To(BeTemporally("==", time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)))
		})

		It("grades a wrong answer", func() {
			res, err := c.SubmitQuiz(ctx, client.QuizAttempt{QuestionID: "intro-python", SelectedIndex: 0})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Correct).To(BeFalse())
		})

		It("rejects a negative index", func() {
			_, err := c.SubmitQuiz(ctx, client.QuizAttempt{QuestionID: "intro-python", SelectedIndex: -1})
			Expect(err).To(MatchError(`invalid request: selectedindex failed "gte"`))
		})
	})

	Describe("GetProgress", func() {
		It("returns the summary", func() {
			p, err := c.GetProgress(ctx, "demo-user")
			Expect(err).NotTo(HaveOccurred())
			Expect(p.UserID).To(Equal("demo-user"))
			Expect(p.StreakDays).To(Equal(3))
			Expect(p.Badges).To(ConsistOf("starter", "consistent-learner"))

			day, err := p.LastActiveDate()
			Expect(err).NotTo(HaveOccurred())
			Expect(day).To(Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))
		})
	})

	Describe("RunCode", func() {
		It("runs a program", func() {
			res, err := c.RunCode(ctx, client.RunRequest{Language: "python", Source: "print(1)"})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Completed()).To(BeTrue())
			Expect(res.Stdout).To(Equal("Executed python safely: print(1)"))
			Expect(res.Stderr).To(BeNil())
			Expect(res.ExecutionTimeMS).NotTo(BeNil())
		})

		It("accepts languages with symbols", func() {
			_, err := c.RunCode(ctx, client.RunRequest{Language: "c++", Source: "int main(){}"})
			Expect(err).NotTo(HaveOccurred())
		})

		DescribeTable("rejects invalid requests before sending",
			func(req client.RunRequest, tag string) {
				_, err := c.RunCode(ctx, req)
				Expect(err).To(MatchError(ContainSubstring(tag)))
				Expect(api.Requests()).To(BeEmpty())
			},
			Entry("missing language", client.RunRequest{Source: "x"}, `language failed "required"`),
			Entry("bad language", client.RunRequest{Language: "py thon", Source: "x"}, `language failed "language"`),
			Entry("empty source", client.RunRequest{Language: "python"}, `source failed "min"`),
			Entry("long source", client.RunRequest{Language: "python", Source: string(make([]byte, client.MaxSourceLength+1))}, `source failed "max"`),
		)

		It("surfaces the sandbox refusal", func() {
			_, err := c.RunCode(ctx, client.RunRequest{Language: "python", Source: "import socket"})
			var apiErr *client.APIError
			Expect(errors.As(err, &apiErr)).To(BeTrue())
			Expect(apiErr.StatusCode).To(Equal(http.StatusBadRequest))
			Expect(apiErr.Detail).To(ContainSubstring("Network access"))
		})

		It("reports rate limiting", func() {
			api.SetRunLimit(1)
			req := client.RunRequest{Language: "python", Source: "print(1)"}

			_, err := c.RunCode(ctx, req)
			Expect(err).NotTo(HaveOccurred())

			_, err = c.RunCode(ctx, req)
			Expect(client.IsRateLimited(err)).To(BeTrue())
		})
	})

	Describe("APIError details", func() {
		serve := func(status int, body string) *client.Client {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(status)
				_, _ = w.Write([]byte(body))
			}))
			DeferCleanup(srv.Close)

			c, err := client.New(srv.URL)
			Expect(err).NotTo(HaveOccurred())
			return c
		}

		DescribeTable("parses the response body",
			func(status int, body, detail string) {
				err := serve(status, body).Health(ctx)
				var apiErr *client.APIError
				Expect(errors.As(err, &apiErr)).To(BeTrue())
				Expect(apiErr.StatusCode).To(Equal(status))
				Expect(apiErr.Detail).To(Equal(detail))
			},
			Entry("string detail", 400, `{"detail":"Pesan melanggar kebijakan moderasi."}`, "Pesan melanggar kebijakan moderasi."),
			Entry("validation list", 422, `{"detail":[{"loc":["body","message"],"msg":"Field required"},{"loc":[],"msg":"bad"}]}`, "message: Field required; bad"),
			Entry("plain text", 502, "bad gateway\n", "bad gateway"),
			Entry("empty body", 503, "", ""),
			Entry("object detail", 500, `{"detail":{"code":7}}`, `{"code":7}`),
		)

		It("formats without a detail", func() {
			err := serve(503, "").Health(ctx)
			Expect(err).To(MatchError("api: 503 Service Unavailable"))
		})
	})
})
