package app_test

import (
	"testing"

	"dotnet-quiz-service/internal/app"
	"dotnet-quiz-service/internal/domain"
)

func TestStartRequiresQuestions(t *testing.T) {
	s := app.NewSession(domain.QuizConfiguration{Topic: "C# Basics", QuestionCount: 5})
	if err := s.Start(nil); err != domain.ErrEmptyQuestionSet {
		t.Fatalf("expected empty question set error, got %v", err)
	}
	if s.State() != app.AwaitingQuestions {
		t.Fatalf("expected session to keep awaiting questions, got %s", s.State())
	}
	if err := s.SelectOption(0); err != domain.ErrSessionNotActive {
		t.Fatalf("expected not active before start, got %v", err)
	}

	if err := s.Start(makeQuestions(2)); err != nil {
		t.Fatalf("start: %v", err)
	}
	if s.State() != app.InProgress || s.CurrentIndex() != 0 || s.RemainingSeconds() != 30 {
		t.Fatalf("unexpected initial state %+v", s.View())
	}
	if err := s.Start(makeQuestions(2)); err != domain.ErrSessionStarted {
		t.Fatalf("expected second start to fail, got %v", err)
	}
}

func TestSelectOptionRange(t *testing.T) {
	s := startedSession(t, 2)
	for _, idx := range []int{-1, 4} {
		if err := s.SelectOption(idx); err != domain.ErrOptionOutOfRange {
			t.Fatalf("option %d: expected out of range, got %v", idx, err)
		}
	}
	if err := s.SelectOption(3); err != nil || s.Staged() != 3 {
		t.Fatalf("expected option 3 staged, got %d (%v)", s.Staged(), err)
	}
	if len(s.Answers()) != 0 {
		t.Fatalf("staging must not commit answers")
	}
}

func TestManualAdvanceNeedsSelection(t *testing.T) {
	s := startedSession(t, 2)
	if _, err := s.Advance(false); err != domain.ErrNoOptionSelected {
		t.Fatalf("expected no option selected, got %v", err)
	}
	if s.CurrentIndex() != 0 {
		t.Fatalf("expected to stay on first question")
	}
}

func TestAnswerOverwriteOnRevisit(t *testing.T) {
	s := startedSession(t, 3)

	mustSelect(t, s, 2)
	mustAdvance(t, s, false)
	if err := s.Previous(); err != nil {
		t.Fatalf("previous: %v", err)
	}
	if s.CurrentIndex() != 0 || s.Staged() != 2 {
		t.Fatalf("expected to restore option 2 on question 0, got index=%d staged=%d", s.CurrentIndex(), s.Staged())
	}
	mustSelect(t, s, 1)
	mustAdvance(t, s, false)

	answers := s.Answers()
	if len(answers) != 1 {
		t.Fatalf("expected exactly one answer, got %+v", answers)
	}
	if answers[0].QuestionIndex != 0 || answers[0].SelectedOption != 1 {
		t.Fatalf("expected overwritten answer with option 1, got %+v", answers[0])
	}
}

func TestPreviousBehaviour(t *testing.T) {
	s := startedSession(t, 3)

	if err := s.Previous(); err != nil {
		t.Fatalf("previous on first question: %v", err)
	}
	if s.CurrentIndex() != 0 {
		t.Fatalf("expected no-op on first question")
	}

	if _, err := s.Skip(); err != nil {
		t.Fatalf("skip: %v", err)
	}
	mustSelect(t, s, 3)
	tick(t, s, 10)
	if s.RemainingSeconds() != 20 {
		t.Fatalf("expected 20 seconds left, got %d", s.RemainingSeconds())
	}

	if err := s.Previous(); err != nil {
		t.Fatalf("previous: %v", err)
	}
	if s.RemainingSeconds() != 30 {
		t.Fatalf("expected timer reset to 30, got %d", s.RemainingSeconds())
	}
	if s.Staged() != domain.NoSelection {
		t.Fatalf("expected skipped question to restore no selection, got %d", s.Staged())
	}
	if len(s.Answers()) != 1 {
		t.Fatalf("previous must not commit answers, got %+v", s.Answers())
	}
}

func TestTimeoutCommitsSentinel(t *testing.T) {
	questions := makeQuestions(2)
	questions[0].CorrectIndex = 0
	s := app.NewSession(domain.QuizConfiguration{Topic: "C# Basics", QuestionCount: 5})
	if err := s.Start(questions); err != nil {
		t.Fatalf("start: %v", err)
	}

	tick(t, s, 29)
	if s.CurrentIndex() != 0 || s.RemainingSeconds() != 1 {
		t.Fatalf("expected one second left on question 0, got index=%d remaining=%d", s.CurrentIndex(), s.RemainingSeconds())
	}
	tick(t, s, 1)
	if s.CurrentIndex() != 1 || s.RemainingSeconds() != 30 {
		t.Fatalf("expected auto-advance with reset timer, got index=%d remaining=%d", s.CurrentIndex(), s.RemainingSeconds())
	}

	answers := s.Answers()
	if len(answers) != 1 || answers[0].SelectedOption != domain.NoSelection || answers[0].TimeSpentSeconds != 30 {
		t.Fatalf("expected sentinel answer with full time spent, got %+v", answers)
	}

	mustSelect(t, s, 1)
	result := mustAdvance(t, s, false)
	if result == nil {
		t.Fatalf("expected completion")
	}
	if result.Score != 1 {
		t.Fatalf("expected timed out question scored incorrect, got score %d", result.Score)
	}
}

func TestScoreComputation(t *testing.T) {
	questions := makeQuestions(3)
	for i, correct := range []int{1, 0, 3} {
		questions[i].CorrectIndex = correct
	}
	cfg := domain.QuizConfiguration{Topic: "C# LINQ", QuestionCount: 10}
	s := app.NewSession(cfg)
	if err := s.Start(questions); err != nil {
		t.Fatalf("start: %v", err)
	}

	var result *domain.QuizResult
	for _, choice := range []int{1, 2, 3} {
		mustSelect(t, s, choice)
		tick(t, s, 4)
		result = mustAdvance(t, s, false)
	}
	if result == nil {
		t.Fatalf("expected result after last question")
	}
	if result.Score != 2 || result.TotalQuestions != 3 {
		t.Fatalf("expected score 2/3, got %d/%d", result.Score, result.TotalQuestions)
	}
	if result.Config != cfg {
		t.Fatalf("expected config carried through, got %+v", result.Config)
	}
	for i, a := range result.Answers {
		if a.QuestionIndex != i || a.TimeSpentSeconds != 4 {
			t.Fatalf("unexpected answer %+v at %d", a, i)
		}
	}
	if stored, ok := s.Result(); !ok || stored.Score != 2 {
		t.Fatalf("expected result to be retained on the session")
	}
}

func TestProgressIsMonotonicAndCompletesOnce(t *testing.T) {
	const total = 5
	s := startedSession(t, total)

	completions := 0
	for i := 0; i < total; i++ {
		if s.CurrentIndex() != i {
			t.Fatalf("expected index %d, got %d", i, s.CurrentIndex())
		}
		var (
			result *domain.QuizResult
			err    error
		)
		if i%2 == 0 {
			result, err = s.Skip()
		} else {
			mustSelect(t, s, 0)
			result, err = s.Advance(false)
		}
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if result != nil {
			completions++
			if i != total-1 {
				t.Fatalf("completed early at %d", i)
			}
		}
		if s.State() == app.InProgress && s.CurrentIndex() > total-1 {
			t.Fatalf("index overflow: %d", s.CurrentIndex())
		}
	}
	if completions != 1 || s.State() != app.Completed {
		t.Fatalf("expected exactly one completion, got %d (%s)", completions, s.State())
	}

	if _, err := s.Skip(); err != domain.ErrSessionNotActive {
		t.Fatalf("expected operations to fail after completion, got %v", err)
	}
	if _, err := s.Tick(); err != domain.ErrSessionNotActive {
		t.Fatalf("expected tick to fail after completion, got %v", err)
	}
	result, _ := s.Result()
	if len(result.Answers) != total {
		t.Fatalf("expected one answer per question, got %d", len(result.Answers))
	}
}

func TestSkipCommitsStagedOption(t *testing.T) {
	s := startedSession(t, 2)
	mustSelect(t, s, 2)
	if _, err := s.Skip(); err != nil {
		t.Fatalf("skip: %v", err)
	}
	if a := s.Answers(); len(a) != 1 || a[0].SelectedOption != 2 {
		t.Fatalf("expected staged option committed by skip, got %+v", a)
	}
	if s.Staged() != domain.NoSelection {
		t.Fatalf("expected staged option cleared on next question")
	}
}

func TestViewHidesCorrectIndex(t *testing.T) {
	s := startedSession(t, 2)
	v := s.View()
	if v.Question != "question 0" || len(v.Options) != 4 || v.Total != 2 || v.Selected != domain.NoSelection {
		t.Fatalf("unexpected view %+v", v)
	}
	if v.State != "in_progress" {
		t.Fatalf("unexpected state %q", v.State)
	}
}

func startedSession(t *testing.T, n int) *app.Session {
	t.Helper()
	s := app.NewSession(domain.QuizConfiguration{Topic: "C# Basics", QuestionCount: n})
	if err := s.Start(makeQuestions(n)); err != nil {
		t.Fatalf("start: %v", err)
	}
	return s
}

func mustSelect(t *testing.T, s *app.Session, option int) {
	t.Helper()
	if err := s.SelectOption(option); err != nil {
		t.Fatalf("select %d: %v", option, err)
	}
}

func mustAdvance(t *testing.T, s *app.Session, auto bool) *domain.QuizResult {
	t.Helper()
	result, err := s.Advance(auto)
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	return result
}

func tick(t *testing.T, s *app.Session, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if _, err := s.Tick(); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}
}
