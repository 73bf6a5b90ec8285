package domain

import "errors"

var (
	// ErrDuplicateUsername is returned by registration when the username is taken.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrInvalidCredentials signals a failed login to transport layers.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrNotAuthenticated is returned when a quiz action is attempted without a logged-in user.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrRateLimited marks an HTTP 429 from the trivia API.
	ErrRateLimited = errors.New("trivia api rate limited")
	// ErrServiceBusy is raised once rate limiting persists through every retry.
	ErrServiceBusy = errors.New("the quiz service is busy, please wait a few minutes and try again")

	// ErrInvalidSettings indicates an unusable quiz setup request.
	ErrInvalidSettings = errors.New("invalid quiz settings")
	// ErrNoQuestions is returned when starting a quiz that has nothing loaded.
	ErrNoQuestions = errors.New("no questions loaded")
	// ErrQuizNotActive is returned when answering while the quiz is not running.
	ErrQuizNotActive = errors.New("quiz is not active")
	// ErrQuizComplete is returned when answering past the last question.
	ErrQuizComplete = errors.New("quiz already completed")
	// ErrSetupSuperseded means a newer setup replaced this one before its questions arrived.
	ErrSetupSuperseded = errors.New("quiz setup superseded by a newer request")
)
