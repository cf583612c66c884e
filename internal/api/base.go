package api

// DefaultBaseURL is offered when no server is configured.
const DefaultBaseURL = "http://localhost:4567"
