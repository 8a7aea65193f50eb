package openai

import "errors"

var (
	// ErrEmptyJudgeResponse is returned when the judge model yields no choices.
	ErrEmptyJudgeResponse = errors.New("judge model returned no choices")
)
