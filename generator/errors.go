package generator

import "errors"

var (
	// ErrEmptyLyrics is a local validation failure; no request is made.
	ErrEmptyLyrics = errors.New("lyrics are empty")
	// ErrBusy means a generation is already running for the session.
	ErrBusy = errors.New("generation already in progress")
	// ErrGenerationFailed wraps every upstream or response failure.
	ErrGenerationFailed = errors.New("generation failed")
	// ErrEmptyResult is returned when the model produced no usable lines.
	ErrEmptyResult = errors.New("model returned no lines")
	// ErrMalformedResult is returned for output that isn't the expected JSON.
	ErrMalformedResult = errors.New("model returned malformed json")
	// ErrAnswerCount flags an answer key outside MinAnswers..MaxAnswers.
	ErrAnswerCount = errors.New("answer key size out of range")
)

// User-facing messages. Error details stay in the logs.
const (
	MsgEmptyLyrics      = "Please enter lyrics."
	MsgGenerationFailed = "Failed to generate the game. Please try again."
	MsgBusy             = "A worksheet is already being generated."
)

// UserMessage maps an error to the text shown in the UI.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyLyrics):
		return MsgEmptyLyrics
	case errors.Is(err, ErrBusy):
		return MsgBusy
	default:
		return MsgGenerationFailed
	}
}
