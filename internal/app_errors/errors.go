package app_errors

import (
	"errors"
	"fmt"
)

var ErrTokenExpired = errors.New("token expired")
var ErrInvalidToken = errors.New("invalid access token")
var ErrPresentationNotFound = errors.New("presentation not found")
var ErrNotPresentationAuthor = errors.New("you are not presentation author")
var ErrUnsupportedExtension = errors.New("only .pptx files are supported")
var ErrOversizeInput = errors.New("file is too large")
var ErrInvalidResource = errors.New("invalid resource")
var ErrDuplicateResource = errors.New("resource with this id already exists")
var ErrResourceNotFound = errors.New("resource not found")
var ErrInvalidLessonBreak = errors.New("invalid lesson break")
var ErrDuplicateLessonBreak = errors.New("lesson break after this slide already exists")
var ErrLessonBreakNotFound = errors.New("lesson break not found")
var ErrSlideNotFound = errors.New("slide not found")
var ErrMediaNotFound = errors.New("media not found")
var ErrSessionNotFound = errors.New("playback session not found")
var ErrEngineNotReady = errors.New("playback is still loading")
var ErrEngineClosed = errors.New("playback session is closed")
var ErrResourceActive = errors.New("a resource must be completed or dismissed first")
var ErrNoActiveResource = errors.New("no active resource")
var ErrNotQuiz = errors.New("active resource is not a quiz")
var ErrQuizIncomplete = errors.New("required question is not answered")

// Fatal parse error kinds. A ParseError matches its kind with errors.Is.
var (
	ErrInvalidArchive  = errors.New("invalid archive")
	ErrMissingManifest = errors.New("missing manifest")
	ErrMalformedXML    = errors.New("malformed xml")
	ErrUnsupportedPart = errors.New("unsupported part")
)

type ParseError struct {
	Kind error
	Part string
	Err  error
}

func (e *ParseError) Error() string {
	msg := e.Kind.Error()
	if e.Part != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Part)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ParseError) Is(target error) bool {
	return target == e.Kind
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func NewParseError(kind error, part string, err error) *ParseError {
	return &ParseError{Kind: kind, Part: part, Err: err}
}
