// Package turn drives one model turn end to end: assemble context, invoke the
// model, relay the stream to a transport sink, and persist the result.
package turn

import (
	"context"
	"errors"
	"io"

	"github.com/cloudwego/eino/schema"

	"github.com/parleychat/parley/internal/metrics"
	"github.com/parleychat/parley/internal/model/chat"
	"github.com/parleychat/parley/internal/service/ai"
	"github.com/parleychat/parley/internal/service/history"
)

// Request is one turn submission.
type Request struct {
	ChatID              string
	ModelID             string
	Incoming            []chat.Structured
	SkipUserPersistence bool
}

// Sink receives turn events in emission order. Finish is the last call and
// fires exactly once per completed turn; a cancelled or failed turn never
// reaches it.
type Sink interface {
	Start(chatID string)
	TextDelta(text string)
	ReasoningDelta(text string)
	Message(msg chat.Structured)
	Finish()
}

// Invoker is the model invocation surface the runner depends on.
// *ai.Service satisfies it; tests substitute a stub.
type Invoker interface {
	StreamingEnabled() bool
	Invoke(ctx context.Context, msgs []chat.Structured, modelID string) (*schema.StreamReader[*schema.Message], error)
	Generate(ctx context.Context, msgs []chat.Structured, modelID string) (*schema.Message, error)
}

// Runner owns the per-turn pipeline. It is stateless across turns; every
// streaming session is independent.
type Runner struct {
	assembler *history.Assembler
	invoker   Invoker
	finalizer *Finalizer
}

func NewRunner(assembler *history.Assembler, invoker Invoker, finalizer *Finalizer) *Runner {
	return &Runner{assembler: assembler, invoker: invoker, finalizer: finalizer}
}

// Run executes the turn. A returned error means the turn failed before
// completion and nothing was persisted; a nil return means the sink saw the
// full event sequence and persistence was attempted.
func (r *Runner) Run(ctx context.Context, req Request, sink Sink) error {
	msgs, err := r.assembler.Assemble(ctx, req.ChatID, req.Incoming)
	if err != nil {
		return err
	}

	metrics.TurnsStarted.Inc()

	// The first sink event fires only after the model call is accepted, so a
	// rejected invocation can still be reported as a plain HTTP error.
	var response *schema.Message
	if r.invoker.StreamingEnabled() {
		stream, invokeErr := r.invoker.Invoke(ctx, msgs, req.ModelID)
		if invokeErr != nil {
			return invokeErr
		}
		sink.Start(req.ChatID)
		response, err = r.consumeStream(ctx, stream, sink)
	} else {
		response, err = r.invoker.Generate(ctx, msgs, req.ModelID)
		if err == nil {
			sink.Start(req.ChatID)
		}
	}
	if err != nil {
		return err
	}

	completed := ai.StructuredFromSchema(response)
	sink.Message(completed)
	sink.Finish()
	metrics.TurnsCompleted.Inc()

	r.finalizer.Finalize(ctx, req.ChatID, req.ModelID, req.Incoming, completed, req.SkipUserPersistence)
	return nil
}

func (r *Runner) consumeStream(ctx context.Context, stream *schema.StreamReader[*schema.Message], sink Sink) (*schema.Message, error) {
	defer stream.Close()

	chunks := make([]*schema.Message, 0, 8)
	for {
		if ctx.Err() != nil {
			// Cooperative cancellation: no completion event, no persistence.
			return nil, ctx.Err()
		}

		chunk, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			return nil, recvErr
		}
		if chunk == nil {
			continue
		}

		chunks = append(chunks, chunk)
		if chunk.ReasoningContent != "" {
			sink.ReasoningDelta(chunk.ReasoningContent)
		}
		if chunk.Content != "" {
			sink.TextDelta(chunk.Content)
		}
	}

	if len(chunks) == 0 {
		return &schema.Message{Role: schema.Assistant}, nil
	}
	return schema.ConcatMessages(chunks)
}
