package app

import (
	"dotnet-quiz-service/internal/domain"
)

// SessionState is the lifecycle phase of a quiz attempt.
type SessionState int

const (
	AwaitingQuestions SessionState = iota
	InProgress
	Completed
)

func (s SessionState) String() string {
	switch s {
	case AwaitingQuestions:
		return "awaiting_questions"
	case InProgress:
		return "in_progress"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}

// SessionView is a read-only snapshot for hosts rendering the current question.
// It never exposes correct indices.
type SessionView struct {
	State            string   `json:"state"`
	Topic            string   `json:"topic"`
	Index            int      `json:"index"`
	Total            int      `json:"total"`
	Question         string   `json:"question"`
	Options          []string `json:"options"`
	Selected         int      `json:"selected"`
	RemainingSeconds int      `json:"remainingSeconds"`
	Answered         int      `json:"answered"`
}

// Session drives one quiz attempt. It is not safe for concurrent use; a Driver
// serializes access when timer ticks and user input race.
type Session struct {
	config    domain.QuizConfiguration
	state     SessionState
	questions []domain.Question
	current   int
	answers   map[int]domain.Answer
	staged    int
	remaining int
	locked    bool
	result    *domain.QuizResult
}

func NewSession(cfg domain.QuizConfiguration) *Session {
	return &Session{
		config:    cfg,
		state:     AwaitingQuestions,
		answers:   make(map[int]domain.Answer),
		staged:    domain.NoSelection,
		remaining: domain.QuestionTimeLimitSeconds,
	}
}

// Start moves the session into progress at the first question.
func (s *Session) Start(questions []domain.Question) error {
	if s.state != AwaitingQuestions {
		return domain.ErrSessionStarted
	}
	if len(questions) == 0 {
		return domain.ErrEmptyQuestionSet
	}
	s.questions = questions
	s.current = 0
	s.answers = make(map[int]domain.Answer, len(questions))
	s.staged = domain.NoSelection
	s.remaining = domain.QuestionTimeLimitSeconds
	s.state = InProgress
	return nil
}

// SelectOption stages a choice for the current question without committing it.
func (s *Session) SelectOption(index int) error {
	if s.state != InProgress {
		return domain.ErrSessionNotActive
	}
	if index < 0 || index >= domain.OptionCount {
		return domain.ErrOptionOutOfRange
	}
	s.staged = index
	return nil
}

// Advance commits the staged option for the current question and moves forward.
// A manual advance requires a staged option; an automatic one commits NoSelection
// when nothing is staged. The result is non-nil only on the call that completes
// the session.
func (s *Session) Advance(isAuto bool) (*domain.QuizResult, error) {
	if s.state != InProgress || s.locked {
		return nil, domain.ErrSessionNotActive
	}
	if !isAuto && s.staged == domain.NoSelection {
		return nil, domain.ErrNoOptionSelected
	}

	s.locked = true
	defer func() { s.locked = false }()

	s.answers[s.current] = domain.Answer{
		QuestionIndex:    s.current,
		SelectedOption:   s.staged,
		TimeSpentSeconds: domain.QuestionTimeLimitSeconds - s.remaining,
	}

	if s.current == len(s.questions)-1 {
		s.state = Completed
		result := s.buildResult()
		s.result = &result
		return s.result, nil
	}

	s.current++
	s.staged = domain.NoSelection
	s.remaining = domain.QuestionTimeLimitSeconds
	return nil, nil
}

// Skip advances whether or not an option is staged. A staged option is still
// committed; otherwise the question is recorded as NoSelection.
func (s *Session) Skip() (*domain.QuizResult, error) {
	return s.Advance(true)
}

// Previous returns to the prior question, restoring its committed selection.
// It is a no-op on the first question.
func (s *Session) Previous() error {
	if s.state != InProgress {
		return domain.ErrSessionNotActive
	}
	if s.current == 0 {
		return nil
	}
	s.current--
	s.staged = domain.NoSelection
	if answer, ok := s.answers[s.current]; ok {
		s.staged = answer.SelectedOption
	}
	s.remaining = domain.QuestionTimeLimitSeconds
	return nil
}

// Tick accounts for one elapsed second. When the budget runs out the current
// question is committed automatically.
func (s *Session) Tick() (*domain.QuizResult, error) {
	if s.state != InProgress || s.locked {
		return nil, domain.ErrSessionNotActive
	}
	if s.remaining > 1 {
		s.remaining--
		return nil, nil
	}
	s.remaining = 0
	return s.Advance(true)
}

func (s *Session) buildResult() domain.QuizResult {
	answers := make([]domain.Answer, len(s.questions))
	score := 0
	for i, q := range s.questions {
		answer, ok := s.answers[i]
		if !ok {
			answer = domain.Answer{QuestionIndex: i, SelectedOption: domain.NoSelection}
		}
		answers[i] = answer
		if answer.Correct(q) {
			score++
		}
	}
	return domain.QuizResult{
		Config:         s.config,
		Answers:        answers,
		Questions:      s.questions,
		Score:          score,
		TotalQuestions: len(s.questions),
	}
}

func (s *Session) State() SessionState { return s.state }

func (s *Session) CurrentIndex() int { return s.current }

func (s *Session) RemainingSeconds() int { return s.remaining }

func (s *Session) Staged() int { return s.staged }

func (s *Session) Config() domain.QuizConfiguration { return s.config }

// Answers returns the committed answers ordered by question index.
func (s *Session) Answers() []domain.Answer {
	out := make([]domain.Answer, 0, len(s.answers))
	for i := range s.questions {
		if a, ok := s.answers[i]; ok {
			out = append(out, a)
		}
	}
	return out
}

// Result returns the final result once the session has completed.
func (s *Session) Result() (domain.QuizResult, bool) {
	if s.result == nil {
		return domain.QuizResult{}, false
	}
	return *s.result, true
}

func (s *Session) View() SessionView {
	v := SessionView{
		State:            s.state.String(),
		Topic:            s.config.Topic,
		Index:            s.current,
		Total:            len(s.questions),
		Selected:         s.staged,
		RemainingSeconds: s.remaining,
		Answered:         len(s.answers),
	}
	if s.current < len(s.questions) {
		q := s.questions[s.current]
		v.Question = q.Text
		v.Options = q.Options
	}
	return v
}
