package statuscmder_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	tutorcmder "github.com/wahida/tutor/cmd/tutor"
	"github.com/wahida/tutor/pkg/credentials"
	"github.com/wahida/tutor/pkg/dotdir"
	testutils "github.com/wahida/tutor/pkg/utils/test"
)

var _ = Describe("Status command execution", func() {
	var (
		api       *testutils.FakeAPI
		configDir string
	)

	run := func(args ...string) (string, error) {
		args = append([]string{"status", "--config-dir", configDir, "--api-target", api.URL}, args...)
		return testutils.ExecuteCommand(tutorcmder.NewTutorCmd(), "", args...)
	}

	BeforeEach(func() {
		api = testutils.NewFakeAPI()
		DeferCleanup(api.Close)
		configDir = GinkgoT().TempDir()
		GinkgoT().Setenv(credentials.TokenEnvVar, "")
	})

	It("reports a healthy backend and no conversation", func() {
		out, err := run()
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("none, using defaults"))
		Expect(out).To(ContainSubstring(api.URL))
		Expect(out).To(ContainSubstring("Backend is healthy"))
		Expect(out).To(ContainSubstring("none stored"))
		Expect(out).To(ContainSubstring("No conversation yet"))
	})

	It("reports an unhealthy backend without failing", func() {
		api.SetHealth("degraded")

		out, err := run()
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring(`status "degraded"`))
	})

	It("shows the saved conversation", func() {
		state := dotdir.NewConversationState()
		state.Turns = 4
		Expect(dotdir.NewManager().SaveConversation(state, configDir)).To(Succeed())

		out, err := run()
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Questions:"))
		Expect(out).To(ContainSubstring("4"))
	})

	It("flags an expired token", func() {
		mgr, err := credentials.NewManager(configDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(mgr.SetToken("default", credentials.ProfileCredential{
			AccessToken: "old",
			ExpiresAt:   time.Now().Add(-time.Hour),
		})).To(Succeed())

		out, err := run()
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("(expired)"))
	})

	It("notes a token from the environment", func() {
		GinkgoT().Setenv(credentials.TokenEnvVar, "env")

		out, err := run()
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("from " + credentials.TokenEnvVar))
	})
})
