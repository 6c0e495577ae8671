package hints_test

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/wahida/tutor/pkg/chat"
	"github.com/wahida/tutor/pkg/hints"
)

func chunks(texts ...string) []chat.RetrievedChunk {
	out := make([]chat.RetrievedChunk, 0, len(texts))
	for _, t := range texts {
		out = append(out, chat.RetrievedChunk{Text: t})
	}
	return out
}

var _ = Describe("Preview", func() {
	It("keeps short text whole", func() {
		Expect(hints.Preview("  ax + b = c  ")).To(Equal("ax + b = c"))
	})

	It("cuts long text to the preview width", func() {
		p := hints.Preview(strings.Repeat("a", 300))
		Expect(ansi.StringWidth(p)).To(Equal(hints.PreviewWidth))
	})

	It("counts wide characters by display cells", func() {
		p := hints.Preview(strings.Repeat("数", 100))
		Expect(ansi.StringWidth(p)).To(BeNumerically("<=", hints.PreviewWidth))
		Expect(p).To(Equal(strings.Repeat("数", 60)))
	})
})

var _ = Describe("Panel", func() {
	It("reveals hints one at a time in chunk order", func() {
		p := hints.NewPanel(chunks("first", "second"), 0)
		Expect(p.Total()).To(Equal(2))
		Expect(p.Revealed()).To(BeEmpty())

		h, ok := p.Reveal()
		Expect(ok).To(BeTrue())
		Expect(h).To(Equal("first"))

		h, ok = p.Reveal()
		Expect(ok).To(BeTrue())
		Expect(h).To(Equal("second"))
		Expect(p.Revealed()).To(Equal([]string{"first", "second"}))
	})

	It("never reveals past the end", func() {
		p := hints.NewPanel(chunks("only"), 0)
		p.Reveal()

		_, ok := p.Reveal()
		Expect(ok).To(BeFalse())
		Expect(p.RevealedCount()).To(Equal(1))
		Expect(p.Remaining()).To(BeZero())
	})

	It("caps the number of hints", func() {
		p := hints.NewPanel(chunks("a", "b", "c", "d"), 3)
		Expect(p.Total()).To(Equal(3))
	})

	It("skips blank chunks", func() {
		p := hints.NewPanel(chunks("  ", "real"), 0)
		Expect(p.Total()).To(Equal(1))
	})

	It("offers the default hint when nothing was retrieved", func() {
		p := hints.NewPanel(nil, 3)
		h, ok := p.Reveal()
		Expect(ok).To(BeTrue())
		Expect(h).To(Equal(hints.DefaultHint))
	})

	It("treats the zero value as the default hint", func() {
		var p hints.Panel
		Expect(p.Total()).To(Equal(1))
		h, ok := p.Reveal()
		Expect(ok).To(BeTrue())
		Expect(h).To(Equal(hints.DefaultHint))
	})

	It("builds an already revealed fallback", func() {
		p := hints.Fallback(hints.FailureHint)
		Expect(p.Revealed()).To(Equal([]string{hints.FailureHint}))
		_, ok := p.Reveal()
		Expect(ok).To(BeFalse())
	})
})
