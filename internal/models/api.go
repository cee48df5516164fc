package models

// APIServer is the HTTP surface of the application.
type APIServer interface {
	Start()
	Shutdown() error
}
