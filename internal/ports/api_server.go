package ports

// APIServer is the HTTP surface of the application.
type APIServer interface {
	// Start begins serving requests.
	Start() error

	// Stop shuts the server down gracefully.
	Stop() error
}
