package chat_test

import (
	"bytes"
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/wahida/tutor/pkg/chat"
	"github.com/wahida/tutor/pkg/sse"
)

var _ = Describe("Stream", func() {
	It("rejects a nil body", func() {
		_, err := chat.NewStream(nil)
		Expect(err).To(MatchError(chat.ErrNoStream))
	})

	Describe("Next", func() {
		It("returns messages in arrival order then nil", func() {
			s, err := chat.NewStream(strings.NewReader(chunkEvent + responseEvent))
			Expect(err).NotTo(HaveOccurred())

			msg, err := s.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(msg.Kind).To(Equal(chat.KindChunk))
			Expect(msg.Chunk.Metadata).To(HaveKeyWithValue("topik", "X"))

			msg, err = s.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(msg.Kind).To(Equal(chat.KindResponse))

			msg, err = s.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(msg).To(BeNil())
		})

		It("skips status events sent by the backend", func() {
			body := "event: status\ndata: {\"type\":\"started\"}\n\n" +
				responseEvent +
				"event: status\ndata: {\"type\":\"completed\"}\n\n"
			s, err := chat.NewStream(strings.NewReader(body))
			Expect(err).NotTo(HaveOccurred())

			msg, err := s.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(msg.Response.Text).To(Equal("done"))

			msg, err = s.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(msg).To(BeNil())
		})

		It("wraps reader failures", func() {
			s, err := chat.NewStream(
				strings.NewReader("data: "+strings.Repeat("x", 128)),
				chat.WithMaxEventSize(32),
			)
			Expect(err).NotTo(HaveOccurred())

			_, err = s.Next()
			Expect(err).To(MatchError(sse.ErrEventTooLarge))
		})
	})

	Describe("All", func() {
		It("yields a tagged union per known event", func() {
			s, err := chat.NewStream(strings.NewReader(chunkEvent + `data: {"type":"unknown"}` + "\n\n" + responseEvent))
			Expect(err).NotTo(HaveOccurred())

			var kinds []chat.Kind
			for msg, err := range s.All() {
				Expect(err).NotTo(HaveOccurred())
				kinds = append(kinds, msg.Kind)
			}
			Expect(kinds).To(Equal([]chat.Kind{chat.KindChunk, chat.KindResponse}))
		})

		It("stops when the caller breaks out", func() {
			s, err := chat.NewStream(strings.NewReader(chunkEvent + chunkEvent + responseEvent))
			Expect(err).NotTo(HaveOccurred())

			count := 0
			for range s.All() {
				count++
				break
			}
			Expect(count).To(Equal(1))

			msg, err := s.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(msg.Kind).To(Equal(chat.KindChunk))
		})

		It("ends with the first error", func() {
			s, err := chat.NewStream(strings.NewReader(chunkEvent + "data: {broken\n\n" + responseEvent))
			Expect(err).NotTo(HaveOccurred())

			var (
				seen    int
				lastErr error
			)
			for _, err := range s.All() {
				if err != nil {
					lastErr = err
					continue
				}
				seen++
			}
			Expect(seen).To(Equal(1))

			var payloadErr *chat.PayloadError
			Expect(errors.As(lastErr, &payloadErr)).To(BeTrue())
		})
	})

	It("tees the raw body", func() {
		var dump bytes.Buffer
		s, err := chat.NewStream(strings.NewReader(chunkEvent+responseEvent), chat.WithTee(&dump))
		Expect(err).NotTo(HaveOccurred())

		for range s.All() {
		}
		Expect(dump.String()).To(Equal(chunkEvent + responseEvent))
	})
})
