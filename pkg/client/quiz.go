package client

import (
	"context"
	"net/http"
	"time"
)

// QuizQuestion is a multiple choice question.
type QuizQuestion struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Choices []string `json:"choices"`

	// AnswerIndex is sent by the current backend; clients should not rely on
	// it and grade through SubmitQuiz instead.
	AnswerIndex *int `json:"answer_index,omitempty"`
}

// QuizAttempt is one answer to a question.
type QuizAttempt struct {
	QuestionID    string `json:"question_id" validate:"required"`
	SelectedIndex int    `json:"selected_index" validate:"gte=0"`
}

// QuizResult is the backend's grading of an attempt.
type QuizResult struct {
	Correct     bool      `json:"correct"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// GetQuiz fetches the question with the given ID.
func (c *Client) GetQuiz(ctx context.Context, id string) (*QuizQuestion, error) {
	if err := c.validate.Var(id, "required"); err != nil {
		return nil, &ValidationError{Err: err}
	}

	q := &QuizQuestion{}
	if err := c.doJSON(ctx, http.MethodGet, c.endpoint("api", "quiz", id), nil, q); err != nil {
		return nil, err
	}
	return q, nil
}

// SubmitQuiz grades an attempt. SelectedIndex must not be negative.
func (c *Client) SubmitQuiz(ctx context.Context, attempt QuizAttempt) (*QuizResult, error) {
	if err := c.validateRequest(attempt); err != nil {
		return nil, err
	}

	res := &QuizResult{}
	if err := c.doJSON(ctx, http.MethodPost, c.endpoint("api", "quiz", attempt.QuestionID), attempt, res); err != nil {
		return nil, err
	}
	return res, nil
}
