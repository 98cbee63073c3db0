package llm

import "errors"

var (
	// ErrMissingAPIKey is returned when a provider is selected without its key.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrEmptyResponse is returned when a provider answers with no usable content.
	ErrEmptyResponse = errors.New("empty response from API")

	// ErrContentBlocked is returned when a provider refuses a prompt.
	ErrContentBlocked = errors.New("content blocked by provider")

	// ErrUnknownProvider is returned by New for an unsupported provider name.
	ErrUnknownProvider = errors.New("unknown llm provider")
)
