package testutils

import (
	"context"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/wahida/tutor/pkg/chat"
	"github.com/wahida/tutor/pkg/storage"
)

// NewTestTurn builds a turn in conversation with one retrieved chunk.
func NewTestTurn(conversation, question string, createdAt time.Time) *storage.Turn {
	return &storage.Turn{
		ID:             uuid.Must(uuid.NewV7()).String(),
		ConversationID: conversation,
		Question:       question,
		Chunks: []chat.RetrievedChunk{{
			Text:     "Linear equations take the form ax + b = c.",
			Metadata: map[string]string{"kelas": "X", "topik": "Persamaan Linear"},
			Score:    0.82,
		}},
		Response:  "Subtract b from both sides.",
		CreatedAt: createdAt,
	}
}

// DescribeDriver registers the behavior every storage.Driver must have.
// newDriver is called before each spec; the returned driver is closed after.
func DescribeDriver(newDriver func(ctx context.Context) storage.Driver) bool {
	return Describe("storage.Driver behavior", func() {
		var (
			driver       storage.Driver
			ctx          context.Context
			conversation string
			base         time.Time
		)

		BeforeEach(func() {
			ctx = context.Background()
			driver = newDriver(ctx)
			conversation = uuid.NewString()
			base = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
		})

		AfterEach(func() {
			if driver != nil {
				Expect(driver.Close()).To(Succeed())
			}
		})

		Describe("Put and Get", func() {
			It("stores and retrieves a turn", func() {
				turn := NewTestTurn(conversation, "What is x?", base)

				inserted, err := driver.Put(ctx, turn)
				Expect(err).NotTo(HaveOccurred())
				Expect(inserted).To(BeTrue())

				got, err := driver.Get(ctx, turn.ID)
				Expect(err).NotTo(HaveOccurred())
				Expect(got.ID).To(Equal(turn.ID))
				Expect(got.ConversationID).To(Equal(conversation))
				Expect(got.Question).To(Equal("What is x?"))
				Expect(got.Chunks).To(Equal(turn.Chunks))
				Expect(got.Response).To(Equal(turn.Response))
				Expect(got.CreatedAt).To(BeTemporally("~", base, time.Millisecond))
				Expect(got.Answered()).To(BeTrue())
			})

			It("stores a turn without chunks or response", func() {
				turn := NewTestTurn(conversation, "Anyone there?", base)
				turn.Chunks = nil
				turn.Response = ""

				_, err := driver.Put(ctx, turn)
				Expect(err).NotTo(HaveOccurred())

				got, err := driver.Get(ctx, turn.ID)
				Expect(err).NotTo(HaveOccurred())
				Expect(got.Chunks).To(BeEmpty())
				Expect(got.Answered()).To(BeFalse())
			})

			It("is a no-op for a duplicate id", func() {
				turn := NewTestTurn(conversation, "first", base)
				_, err := driver.Put(ctx, turn)
				Expect(err).NotTo(HaveOccurred())

				dup := *turn
				dup.Question = "second"
				inserted, err := driver.Put(ctx, &dup)
				Expect(err).NotTo(HaveOccurred())
				Expect(inserted).To(BeFalse())

				got, err := driver.Get(ctx, turn.ID)
				Expect(err).NotTo(HaveOccurred())
				Expect(got.Question).To(Equal("first"))
			})

			It("rejects a nil turn", func() {
				_, err := driver.Put(ctx, nil)
				Expect(err).To(HaveOccurred())
			})

			It("rejects a turn without id", func() {
				turn := NewTestTurn(conversation, "q", base)
				turn.ID = ""
				_, err := driver.Put(ctx, turn)
				Expect(err).To(HaveOccurred())
			})

			It("returns NotFoundError for an unknown id", func() {
				_, err := driver.Get(ctx, "missing")
				Expect(err).To(MatchError(storage.NotFoundError{ID: "missing"}))
			})
		})

		Describe("List", func() {
			var turns []*storage.Turn

			BeforeEach(func() {
				turns = nil
				for i, q := range []string{"one", "two", "three"} {
					turn := NewTestTurn(conversation, q, base.Add(time.Duration(i)*time.Minute))
					turns = append(turns, turn)
				}

				// Insert out of order to prove List sorts by creation time.
				for _, i := range []int{2, 0, 1} {
					_, err := driver.Put(ctx, turns[i])
					Expect(err).NotTo(HaveOccurred())
				}

				other := NewTestTurn(uuid.NewString(), "elsewhere", base)
				_, err := driver.Put(ctx, other)
				Expect(err).NotTo(HaveOccurred())
			})

			questions := func(ts []*storage.Turn) []string {
				out := make([]string, 0, len(ts))
				for _, t := range ts {
					out = append(out, t.Question)
				}
				return out
			}

			It("returns a conversation oldest first", func() {
				got, err := driver.List(ctx, storage.ListOptions{ConversationID: conversation})
				Expect(err).NotTo(HaveOccurred())
				Expect(questions(got)).To(Equal([]string{"one", "two", "three"}))
			})

			It("keeps the most recent turns under a limit", func() {
				got, err := driver.List(ctx, storage.ListOptions{ConversationID: conversation, Limit: 2})
				Expect(err).NotTo(HaveOccurred())
				Expect(questions(got)).To(Equal([]string{"two", "three"}))
			})

			It("includes every conversation without a filter", func() {
				got, err := driver.List(ctx, storage.ListOptions{})
				Expect(err).NotTo(HaveOccurred())
				Expect(questions(got)).To(ContainElements("one", "two", "three", "elsewhere"))
			})

			It("returns nothing for an unknown conversation", func() {
				got, err := driver.List(ctx, storage.ListOptions{ConversationID: "nope"})
				Expect(err).NotTo(HaveOccurred())
				Expect(got).To(BeEmpty())
			})
		})
	})
}
