package chat_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/wahida/tutor/pkg/chat"
)

var _ = Describe("Decode", func() {
	It("decodes a retrieval chunk", func() {
		msg, err := chat.Decode(`{"type":"chunk","text":"t1","metadata":{"topik":"X","kelas":"7"},"score":0.9,"hintsRevealed":2}`)
		Expect(err).NotTo(HaveOccurred())
		Expect(msg.Kind).To(Equal(chat.KindChunk))
		Expect(msg.Response).To(BeNil())
		Expect(*msg.Chunk).To(Equal(chat.RetrievedChunk{
			Text:          "t1",
			Metadata:      map[string]string{"topik": "X", "kelas": "7"},
			Score:         0.9,
			HintsRevealed: 2,
		}))
		Expect(msg.Text()).To(Equal("t1"))
	})

	It("decodes a final response", func() {
		msg, err := chat.Decode(`{"type":"response","text":"done"}`)
		Expect(err).NotTo(HaveOccurred())
		Expect(msg.Kind).To(Equal(chat.KindResponse))
		Expect(msg.Chunk).To(BeNil())
		Expect(msg.Response.Text).To(Equal("done"))
		Expect(msg.Text()).To(Equal("done"))
	})

	It("leaves missing fields at their zero value", func() {
		msg, err := chat.Decode(`{"type":"chunk"}`)
		Expect(err).NotTo(HaveOccurred())
		Expect(*msg.Chunk).To(Equal(chat.RetrievedChunk{}))
	})

	It("ignores extra fields", func() {
		msg, err := chat.Decode(`{"type":"response","text":"ok","latency_ms":12}`)
		Expect(err).NotTo(HaveOccurred())
		Expect(msg.Response.Text).To(Equal("ok"))
	})

	DescribeTable("reports unknown kinds",
		func(data string) {
			_, err := chat.Decode(data)
			Expect(err).To(MatchError(chat.ErrUnknownKind))
		},
		Entry("unrecognized type", `{"type":"status","status":"started"}`),
		Entry("missing type", `{"text":"orphan"}`),
		Entry("non-string type", `{"type":7}`),
		Entry("null type", `{"type":null}`),
		Entry("array payload", `[1,2,3]`),
		Entry("string payload", `"chunk"`),
		Entry("null payload", `null`),
	)

	DescribeTable("rejects malformed payloads",
		func(data string, kind chat.Kind) {
			_, err := chat.Decode(data)

			var payloadErr *chat.PayloadError
			Expect(errors.As(err, &payloadErr)).To(BeTrue())
			Expect(payloadErr.Kind).To(Equal(kind))
			Expect(payloadErr.Data).To(Equal(data))
			Expect(errors.Is(err, chat.ErrUnknownKind)).To(BeFalse())
		},
		Entry("truncated object", `{"type":"chunk","text":`, chat.Kind("")),
		Entry("not json", `hello`, chat.Kind("")),
		Entry("empty data", ``, chat.Kind("")),
	)

	Context("when a field has the wrong JSON type", func() {
		It("leaves that chunk field empty and keeps the rest", func() {
			msg, err := chat.Decode(`{"type":"chunk","text":5,"metadata":{"topik":"X"},"score":0.4}`)
			Expect(err).NotTo(HaveOccurred())
			Expect(*msg.Chunk).To(Equal(chat.RetrievedChunk{
				Metadata: map[string]string{"topik": "X"},
				Score:    0.4,
			}))
		})

		It("empties non-string metadata values", func() {
			msg, err := chat.Decode(`{"type":"chunk","text":"t1","metadata":{"kelas":10,"topik":"X"}}`)
			Expect(err).NotTo(HaveOccurred())
			Expect(msg.Chunk.Text).To(Equal("t1"))
			Expect(msg.Chunk.Metadata["kelas"]).To(BeEmpty())
			Expect(msg.Chunk.Metadata).To(HaveKeyWithValue("topik", "X"))
		})

		It("leaves the response text empty", func() {
			msg, err := chat.Decode(`{"type":"response","text":["a"]}`)
			Expect(err).NotTo(HaveOccurred())
			Expect(msg.Kind).To(Equal(chat.KindResponse))
			Expect(msg.Response.Text).To(BeEmpty())
		})
	})
})
