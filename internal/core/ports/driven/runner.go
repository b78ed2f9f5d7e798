package driven

import "context"

// CommandRunner executes an external command and returns its stdout.
// It exists so extractors that shell out (pdftotext) stay testable.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}
