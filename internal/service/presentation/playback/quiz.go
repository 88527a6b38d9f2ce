package playback

import (
	"fmt"
	"strconv"
	"strings"

	"LiqLearns/internal/app_errors"
	"LiqLearns/internal/models"
)

type QuizResult struct {
	ResourceID string  `json:"resource_id"`
	Correct    int     `json:"correct"`
	Total      int     `json:"total"`
	Score      float64 `json:"score"`
	Passed     bool    `json:"passed"`
}

// GradeQuiz scores answers against the answerable questions of quiz. A
// required question without an answer rejects the whole submission.
func GradeQuiz(quiz *models.QuizContent, answers []models.QuizAnswer) (QuizResult, error) {
	byQuestion := make(map[string]models.QuizAnswer, len(answers))
	for _, a := range answers {
		byQuestion[a.QuestionID] = a
	}

	var res QuizResult
	for _, q := range quiz.Questions {
		if !answerable(q) {
			continue
		}
		res.Total++

		answer, ok := byQuestion[q.ID]
		if !ok || (len(answer.OptionIDs) == 0 && strings.TrimSpace(answer.TextAnswer) == "") {
			if q.Required {
				return QuizResult{}, fmt.Errorf("%w: question %s", app_errors.ErrQuizIncomplete, q.ID)
			}
			continue
		}
		if correct(q, answer) {
			res.Correct++
		}
	}

	if res.Total > 0 {
		res.Score = float64(res.Correct) / float64(res.Total) * 100
	}
	res.Passed = res.Total > 0 && res.Correct == res.Total
	return res, nil
}

func answerable(q models.QuizQuestion) bool {
	switch q.Type {
	case models.QuestionTypeSingle, models.QuestionTypeMultiple:
		return len(q.Options) >= 2
	case models.QuestionTypeText:
		return strings.TrimSpace(q.CorrectAnswer) != ""
	}
	return false
}

func correct(q models.QuizQuestion, a models.QuizAnswer) bool {
	switch q.Type {
	case models.QuestionTypeSingle:
		if len(a.OptionIDs) != 1 {
			return false
		}
		i := optionIndex(q, a.OptionIDs[0])
		return i >= 0 && q.Options[i].IsCorrect
	case models.QuestionTypeMultiple:
		picked := make(map[int]bool, len(a.OptionIDs))
		for _, id := range a.OptionIDs {
			i := optionIndex(q, id)
			if i < 0 || !q.Options[i].IsCorrect {
				return false
			}
			picked[i] = true
		}
		for i, o := range q.Options {
			if o.IsCorrect && !picked[i] {
				return false
			}
		}
		return true
	case models.QuestionTypeText:
		return normalizeText(a.TextAnswer) == normalizeText(q.CorrectAnswer)
	}
	return false
}

// optionIndex accepts an option id or the positional form "option_N".
func optionIndex(q models.QuizQuestion, id string) int {
	for i, o := range q.Options {
		if o.ID == id {
			return i
		}
	}
	if n, err := strconv.Atoi(strings.TrimPrefix(id, "option_")); err == nil && strings.HasPrefix(id, "option_") {
		if n >= 0 && n < len(q.Options) {
			return n
		}
	}
	return -1
}

func normalizeText(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}
