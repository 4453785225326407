package domain

import (
	"math"
	"time"
)

const (
	// QuestionTimeLimit is the countdown budget for every question.
	QuestionTimeLimit = 30 * time.Second
	// QuestionTimeLimitSeconds is QuestionTimeLimit in whole seconds.
	QuestionTimeLimitSeconds = int(QuestionTimeLimit / time.Second)
	// NoSelection marks a skipped or timed out question.
	NoSelection = -1
	// OptionCount is the number of options each question carries.
	OptionCount = 4

	MinQuestionCount       = 5
	MaxQuestionCount       = 50
	DefaultQuestionCount   = 20
	TopicPageQuestionCount = 10
)

// Question models a multiple-choice question as stored in the question bank.
type Question struct {
	Text         string   `json:"q"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"answer"`
	Explanation  string   `json:"explanation"`
}

// QuizConfiguration is chosen before a session starts and carried into its result.
type QuizConfiguration struct {
	Topic         string `json:"topic"`
	QuestionCount int    `json:"questionCount"`
}

// Answer is the committed outcome for one question position.
type Answer struct {
	QuestionIndex    int `json:"questionIndex"`
	SelectedOption   int `json:"selectedAnswer"`
	TimeSpentSeconds int `json:"timeSpent"`
}

// Correct reports whether the answer matches the question's correct index.
// NoSelection never matches.
func (a Answer) Correct(q Question) bool {
	return a.SelectedOption != NoSelection && a.SelectedOption == q.CorrectIndex
}

// QuizResult is produced once when a session completes.
type QuizResult struct {
	Config         QuizConfiguration `json:"config"`
	Answers        []Answer          `json:"answers"`
	Questions      []Question        `json:"questions"`
	Score          int               `json:"score"`
	TotalQuestions int               `json:"totalQuestions"`
}

// Percentage returns the rounded share of correct answers.
func (r QuizResult) Percentage() int {
	if r.TotalQuestions == 0 {
		return 0
	}
	return int(math.Round(float64(r.Score) / float64(r.TotalQuestions) * 100))
}

// Message is the headline shown on the review screen.
func (r QuizResult) Message() string {
	p := r.Percentage()
	switch {
	case p == 100:
		return "Perfect Score! Outstanding!"
	case p >= 80:
		return "Excellent Work!"
	case p >= 60:
		return "Good Job!"
	case p >= 40:
		return "Keep Practicing!"
	default:
		return "Don't Give Up!"
	}
}

// ClampQuestionCount bounds a requested count to [MinQuestionCount, MaxQuestionCount].
func ClampQuestionCount(n int) int {
	if n < MinQuestionCount {
		return MinQuestionCount
	}
	if n > MaxQuestionCount {
		return MaxQuestionCount
	}
	return n
}
