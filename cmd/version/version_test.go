package versioncmder_test

import (
	"runtime"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	versioncmder "github.com/wahida/tutor/cmd/version"
	"github.com/wahida/tutor/pkg/utils"
	testutils "github.com/wahida/tutor/pkg/utils/test"
)

var _ = Describe("NewVersionCmd", func() {
	BeforeEach(func() {
		prev := utils.Version
		utils.Version = "v1.4.0"
		DeferCleanup(func() { utils.Version = prev })
	})

	It("prints the version with build details", func() {
		out, err := testutils.ExecuteCommand(versioncmder.NewVersionCmd(), "")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(HavePrefix("tutor v1.4.0\n"))
		Expect(out).To(ContainSubstring("commit:"))
		Expect(out).To(ContainSubstring(runtime.Version()))
	})

	It("prints only the number with --short", func() {
		out, err := testutils.ExecuteCommand(versioncmder.NewVersionCmd(), "", "--short")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("v1.4.0\n"))
	})

	It("rejects arguments", func() {
		_, err := testutils.ExecuteCommand(versioncmder.NewVersionCmd(), "", "extra")
		Expect(err).To(HaveOccurred())
	})
})
