package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Authentication errors
	ErrAuthFailed = fmt.Errorf("authentication failed")
	ErrTimeout    = fmt.Errorf("operation timed out")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("Deezer API error")
	ErrUnexpectedResponse = fmt.Errorf("unexpected response from Deezer API")
	ErrClientMisuse       = fmt.Errorf("invalid API client usage")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrPlaylistNotFound   = fmt.Errorf("playlist not found")

	// Scenario errors
	ErrInvalidScenario = fmt.Errorf("invalid scenario")
	ErrUnknownScenario = fmt.Errorf("unknown scenario")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
