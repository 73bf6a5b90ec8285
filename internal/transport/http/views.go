package http

import (
	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
)

// questionView is a question as shown to the player: no correct answer.
type questionView struct {
	Index      int               `json:"index"`
	Total      int               `json:"total"`
	Category   string            `json:"category"`
	Difficulty domain.Difficulty `json:"difficulty"`
	Question   string            `json:"question"`
	Answers    []string          `json:"answers"`
}

type quizView struct {
	AttemptID            string            `json:"attemptId"`
	IsActive             bool              `json:"isActive"`
	IsUsingFallback      bool              `json:"isUsingFallback"`
	Category             string            `json:"category"`
	Difficulty           domain.Difficulty `json:"difficulty"`
	Amount               int               `json:"amount"`
	TotalQuestions       int               `json:"totalQuestions"`
	CurrentQuestionIndex int               `json:"currentQuestionIndex"`
	Answers              []*string         `json:"answers"`
	TimeRemaining        int               `json:"timeRemaining"`
	TotalTime            int               `json:"totalTime"`
	ProgressPercent      float64           `json:"progressPercent"`
	TimeProgressPercent  float64           `json:"timeProgressPercent"`
	Complete             bool              `json:"complete"`
	CurrentQuestion      *questionView     `json:"currentQuestion,omitempty"`
}

func newQuizView(status app.QuizStatus) quizView {
	snap := status.Snapshot
	view := quizView{
		AttemptID:            snap.AttemptID,
		IsActive:             snap.IsActive,
		IsUsingFallback:      snap.IsUsingFallback,
		Category:             snap.Category,
		Difficulty:           snap.Difficulty,
		Amount:               snap.Amount,
		TotalQuestions:       len(snap.Questions),
		CurrentQuestionIndex: snap.CurrentIndex,
		Answers:              snap.Answers,
		TimeRemaining:        snap.TimeRemaining,
		TotalTime:            snap.TotalTime,
		ProgressPercent:      status.ProgressPercent,
		TimeProgressPercent:  status.TimeProgressPercent,
		Complete:             status.Complete,
	}
	if q := status.CurrentQuestion; q != nil {
		view.CurrentQuestion = &questionView{
			Index:      snap.CurrentIndex,
			Total:      len(snap.Questions),
			Category:   q.Category,
			Difficulty: q.Difficulty,
			Question:   q.Question,
			Answers:    q.AllAnswers,
		}
	}
	return view
}

func snapshotView(snap domain.QuizSnapshot) quizView {
	return newQuizView(app.StatusOf(snap))
}
