package app

import (
	"math"

	"trivia-quiz-service/internal/domain"
)

// BuildReport scores a quiz snapshot.
func BuildReport(snap domain.QuizSnapshot) domain.ScoreReport {
	report := domain.ScoreReport{
		Total:         len(snap.Questions),
		UsingFallback: snap.IsUsingFallback,
		Items:         make([]domain.ReportItem, 0, len(snap.Questions)),
	}
	for i, q := range snap.Questions {
		var answer *string
		if i < len(snap.Answers) {
			answer = snap.Answers[i]
		}
		correct := answer != nil && *answer == q.CorrectAnswer
		if answer != nil {
			report.Answered++
		}
		if correct {
			report.Correct++
		}
		report.Items = append(report.Items, domain.ReportItem{
			Question:      q.Question,
			CorrectAnswer: q.CorrectAnswer,
			Answer:        answer,
			Correct:       correct,
		})
	}
	report.Incorrect = report.Answered - report.Correct
	report.Unanswered = report.Total - report.Answered
	if report.Total > 0 {
		report.ScorePercent = int(math.Round(float64(report.Correct) / float64(report.Total) * 100))
	}
	report.Message = resultMessage(report.ScorePercent)
	return report
}

func resultMessage(percent int) string {
	switch {
	case percent >= 80:
		return "Excellent !!"
	case percent >= 60:
		return "Good job !"
	case percent >= 40:
		return "Not bad !"
	default:
		return "Nice Try !"
	}
}
