// Package iocli is the terminal boundary of the tracker CLI.
package iocli

//go:generate moq -out io_mock.go . IO

// IO is what commands use to talk to the user
type IO interface {
	Println(a ...any)
	Printf(format string, a ...any)
	ReadInput(prompt string) (string, error)
	// ReadSecret reads a line without echo when attached to a terminal
	ReadSecret(prompt string) (string, error)
}
