package main

// Exit codes reported by every oat command.
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (runtime failure, API error)
	ExitConfigError = 2 // Configuration error (corrupt config, unusable key)
	ExitDataError   = 3 // Data/validation error (bad fields, no match, empty query)
	ExitRateLimited = 4 // Rate limit still in force after all retries
)
