package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"dotnet-quiz-service/internal/domain"
	"github.com/imroc/req/v3"
)

const requestDeadline = 10 * time.Second

// Client talks to the quiz service's JSON API.
type Client struct {
	http *req.Client
}

type apiError struct {
	Error string `json:"error"`
}

// Result mirrors the review payload served by /api/results.
type Result struct {
	AttemptID string `json:"attemptId"`
	domain.QuizResult
	Percentage int    `json:"percentage"`
	Message    string `json:"message"`
}

func New(baseURL string) *Client {
	c := req.C().
		SetBaseURL(baseURL).
		SetTimeout(requestDeadline).
		SetCommonHeader("Accept", "application/json").
		SetCommonRetryCount(2).
		SetCommonRetryBackoffInterval(50*time.Millisecond, time.Second).
		SetCommonRetryCondition(func(resp *req.Response, err error) bool {
			return err != nil || resp.GetStatusCode() >= http.StatusInternalServerError
		})
	return &Client{http: c}
}

// Questions draws count questions for topic. Invalid topics and empty banks
// map back onto the domain errors.
func (c *Client) Questions(ctx context.Context, topic string, count int) ([]domain.Question, error) {
	var (
		questions []domain.Question
		apiErr    apiError
	)
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("topic", topic).
		SetQueryParam("count", strconv.Itoa(count)).
		SetSuccessResult(&questions).
		SetErrorResult(&apiErr).
		Get("/api/questions")
	if err != nil {
		return nil, fmt.Errorf("fetch questions: %w", err)
	}
	switch resp.GetStatusCode() {
	case http.StatusOK:
		return questions, nil
	case http.StatusBadRequest:
		return nil, domain.ErrInvalidTopic
	case http.StatusNotFound:
		return nil, domain.ErrNoQuestionsAvailable
	default:
		return nil, fmt.Errorf("fetch questions: status %d: %s", resp.GetStatusCode(), apiErr.Error)
	}
}

// Topics lists the topics the server supports.
func (c *Client) Topics(ctx context.Context) ([]domain.Topic, error) {
	var topics []domain.Topic
	resp, err := c.http.R().SetContext(ctx).SetSuccessResult(&topics).Get("/api/topics")
	if err != nil {
		return nil, fmt.Errorf("fetch topics: %w", err)
	}
	if !resp.IsSuccessState() {
		return nil, fmt.Errorf("fetch topics: status %d", resp.GetStatusCode())
	}
	return topics, nil
}

// Result reads and clears the stored result for attemptID.
func (c *Client) Result(ctx context.Context, attemptID string) (Result, error) {
	var result Result
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("attemptID", attemptID).
		SetSuccessResult(&result).
		Get("/api/results/{attemptID}")
	if err != nil {
		return Result{}, fmt.Errorf("fetch result: %w", err)
	}
	switch {
	case resp.IsSuccessState():
		return result, nil
	case resp.GetStatusCode() == http.StatusNotFound:
		return Result{}, domain.ErrResultNotFound
	default:
		return Result{}, fmt.Errorf("fetch result: status %d", resp.GetStatusCode())
	}
}

// SelectQuestions lets the client stand in for a local QuestionProvider.
func (c *Client) SelectQuestions(ctx context.Context, topic string, count int) ([]domain.Question, error) {
	return c.Questions(ctx, topic, count)
}
