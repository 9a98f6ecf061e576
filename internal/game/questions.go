package game

import "gala_server/internal/domain"

// DefaultQuestions is the stock quiz deck used when the admin starts a
// quiz without supplying one. Payouts by kind: normal +10/-5, star
// +20/0 (no penalty), banana +10/-15 (trap question).
func DefaultQuestions() []domain.Question {
	return []domain.Question{
		{
			ID:           1,
			Text:         "What year was the company founded?",
			Options:      []string{"2015", "2018", "2020", "2022"},
			CorrectIndex: 1,
			Kind:         domain.QuestionNormal,
			Points:       domain.QuestionPoints{Correct: 10, Wrong: -5},
		},
		{
			ID:           2,
			Text:         "What is the name of the company mascot?",
			Options:      []string{"Sparky", "Lucky", "Felix", "Shadow"},
			CorrectIndex: 0,
			Kind:         domain.QuestionStar,
			Points:       domain.QuestionPoints{Correct: 20, Wrong: 0},
		},
		{
			ID:           3,
			Text:         "Which floor is the main office on?",
			Options:      []string{"3rd", "5th", "7th", "10th"},
			CorrectIndex: 2,
			Kind:         domain.QuestionBanana,
			Points:       domain.QuestionPoints{Correct: 10, Wrong: -15},
		},
		{
			ID:           4,
			Text:         "How many all-hands were held last year?",
			Options:      []string{"4", "6", "12", "52"},
			CorrectIndex: 2,
			Kind:         domain.QuestionNormal,
			Points:       domain.QuestionPoints{Correct: 10, Wrong: -5},
		},
		{
			ID:           5,
			Text:         "What is served every Friday afternoon?",
			Options:      []string{"Pizza", "Bubble tea", "Tacos", "Ice cream"},
			CorrectIndex: 1,
			Kind:         domain.QuestionStar,
			Points:       domain.QuestionPoints{Correct: 20, Wrong: 0},
		},
	}
}
