package intelligence

import (
	"context"

	"aftervisit/models"
)

// CompletionStream yields generated text fragments in arrival order. Recv returns
// io.EOF once the upstream model finishes cleanly; any other error means the stream
// died mid-generation. Close releases the upstream connection and is safe to call
// after Recv has returned an error.
type CompletionStream interface {
	Recv() (string, error)
	Close() error
}

// SummaryService opens a streaming summary generation for one consultation visit.
// Implementations must make exactly one upstream call per invocation and honor
// context cancellation by aborting the upstream stream.
type SummaryService interface {
	StreamSummary(ctx context.Context, visit models.Visit) (CompletionStream, error)
}
