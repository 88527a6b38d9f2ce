package playback

import (
	"errors"
	"fmt"

	"LiqLearns/internal/models"
)

// Actions accepted over a playback connection.
const (
	ActionNext             = "next"
	ActionPrevious         = "previous"
	ActionGoTo             = "goto"
	ActionToggleAutoplay   = "toggle_autoplay"
	ActionOpenResource     = "open_resource"
	ActionDismissResource  = "dismiss_resource"
	ActionCompleteResource = "complete_resource"
	ActionSubmitQuiz       = "submit_quiz"
	ActionSnapshot         = "snapshot"
)

type Command struct {
	Action     string              `json:"action"`
	Slide      int                 `json:"slide,omitempty"`
	ResourceID string              `json:"resource_id,omitempty"`
	Answers    []models.QuizAnswer `json:"answers,omitempty"`
}

var errUnknownAction = errors.New("unknown action")

// Dispatch applies cmd and returns the resulting snapshot.
func (e *Engine) Dispatch(cmd Command) (Snapshot, error) {
	var err error
	switch cmd.Action {
	case ActionNext:
		err = e.Next()
	case ActionPrevious:
		err = e.Previous()
	case ActionGoTo:
		err = e.GoTo(cmd.Slide)
	case ActionToggleAutoplay:
		_, err = e.ToggleAutoplay()
	case ActionOpenResource:
		err = e.OpenResource(cmd.ResourceID)
	case ActionDismissResource:
		err = e.DismissResource()
	case ActionCompleteResource:
		err = e.CompleteResource(cmd.ResourceID)
	case ActionSubmitQuiz:
		_, err = e.SubmitQuiz(cmd.Answers)
	case ActionSnapshot:
	default:
		err = fmt.Errorf("%w %q", errUnknownAction, cmd.Action)
	}
	return e.Snapshot(), err
}
