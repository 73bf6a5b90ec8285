package trivia

import "trivia-quiz-service/internal/domain"

const (
	fallbackCategory   = "General Knowledge"
	fallbackDifficulty = domain.DifficultyEasy
)

var fallbackBank = []struct {
	question string
	correct  string
	wrong    [3]string
}{
	{"What is the capital of France?", "Paris", [3]string{"London", "Berlin", "Madrid"}},
	{"What is 2 + 2?", "4", [3]string{"3", "5", "6"}},
	{"Which planet is closest to the Sun?", "Mercury", [3]string{"Venus", "Earth", "Mars"}},
	{"What color do you get when you mix red and blue?", "Purple", [3]string{"Green", "Orange", "Yellow"}},
	{"How many days are there in a week?", "7", [3]string{"5", "6", "8"}},
	{"What is the largest ocean on Earth?", "Pacific Ocean", [3]string{"Atlantic Ocean", "Indian Ocean", "Arctic Ocean"}},
	{"Which animal is known as the King of the Jungle?", "Lion", [3]string{"Tiger", "Elephant", "Gorilla"}},
	{"What do bees produce?", "Honey", [3]string{"Milk", "Silk", "Wax"}},
	{"How many continents are there?", "7", [3]string{"5", "6", "8"}},
	{"What is the fastest land animal?", "Cheetah", [3]string{"Lion", "Horse", "Leopard"}},
}

// FallbackBankSize is the number of bundled offline questions.
var FallbackBankSize = len(fallbackBank)

var fallbackCategories = []domain.Category{
	{ID: 9, Name: "General Knowledge"},
	{ID: 17, Name: "Science & Nature"},
	{ID: 21, Name: "Sports"},
	{ID: 23, Name: "History"},
}

// FallbackCategories returns a copy of the offline category list.
func FallbackCategories() []domain.Category {
	out := make([]domain.Category, len(fallbackCategories))
	copy(out, fallbackCategories)
	return out
}

func fallbackQuestions() []domain.Question {
	questions := make([]domain.Question, 0, len(fallbackBank))
	for _, q := range fallbackBank {
		incorrect := []string{q.wrong[0], q.wrong[1], q.wrong[2]}
		questions = append(questions, domain.Question{
			Category:         fallbackCategory,
			Type:             "multiple",
			Difficulty:       fallbackDifficulty,
			Question:         q.question,
			CorrectAnswer:    q.correct,
			IncorrectAnswers: incorrect,
			AllAnswers:       append([]string{q.correct}, incorrect...),
		})
	}
	return questions
}
