package app_test

import (
	"testing"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
)

func TestBuildReportThresholds(t *testing.T) {
	cases := []struct {
		correct int
		percent int
		message string
	}{
		{correct: 5, percent: 100, message: "Excellent !!"},
		{correct: 4, percent: 80, message: "Excellent !!"},
		{correct: 3, percent: 60, message: "Good job !"},
		{correct: 2, percent: 40, message: "Not bad !"},
		{correct: 1, percent: 20, message: "Nice Try !"},
		{correct: 0, percent: 0, message: "Nice Try !"},
	}
	for _, tc := range cases {
		questions := sampleQuestions(5)
		answers := make([]*string, len(questions))
		for i := range questions {
			answer := "wrong"
			if i < tc.correct {
				answer = questions[i].CorrectAnswer
			}
			answers[i] = &answer
		}
		report := app.BuildReport(domain.QuizSnapshot{Questions: questions, Answers: answers})
		if report.ScorePercent != tc.percent || report.Message != tc.message {
			t.Fatalf("%d correct: expected %d%% %q, got %d%% %q", tc.correct, tc.percent, tc.message, report.ScorePercent, report.Message)
		}
		if report.Correct != tc.correct || report.Incorrect != 5-tc.correct || report.Unanswered != 0 {
			t.Fatalf("%d correct: unexpected counts %+v", tc.correct, report)
		}
	}
}

func TestBuildReportCountsUnanswered(t *testing.T) {
	questions := sampleQuestions(3)
	right := questions[0].CorrectAnswer
	report := app.BuildReport(domain.QuizSnapshot{
		Questions:       questions,
		Answers:         []*string{&right, nil, nil},
		IsUsingFallback: true,
	})
	if report.Total != 3 || report.Answered != 1 || report.Unanswered != 2 || report.Correct != 1 {
		t.Fatalf("unexpected counts %+v", report)
	}
	if report.ScorePercent != 33 {
		t.Fatalf("expected 33%%, got %d", report.ScorePercent)
	}
	if !report.UsingFallback || len(report.Items) != 3 || report.Items[1].Answer != nil {
		t.Fatalf("unexpected items %+v", report.Items)
	}
}

func TestBuildReportEmptySnapshot(t *testing.T) {
	report := app.BuildReport(app.InitialSnapshot())
	if report.Total != 0 || report.ScorePercent != 0 || report.Message != "Nice Try !" {
		t.Fatalf("unexpected empty report %+v", report)
	}
}
