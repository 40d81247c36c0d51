package openrouter

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// StreamChunk is one content delta from a streaming completion. IsComplete
// marks the terminal chunk (the SSE [DONE] line); Content is empty there.
type StreamChunk struct {
	Content      string
	FinishReason string
	IsComplete   bool
}

// Stream is a finite, single-consumer sequence of chunks. Chunks must be
// drained from C; after C closes, Err reports whether the stream ended
// cleanly. A Stream cannot be restarted.
type Stream struct {
	C      <-chan StreamChunk
	cancel context.CancelFunc
	err    error
	done   <-chan struct{}
}

// Err blocks until the stream has finished, then reports the terminal error,
// if any.
func (s *Stream) Err() error {
	<-s.done
	return s.err
}

// Close abandons the stream early. Draining C afterwards is not required.
func (s *Stream) Close() {
	s.cancel()
}

// ChatStream issues a streaming completion. The response body is consumed
// line by line: each "data: " payload is either the [DONE] marker, which
// yields a terminal chunk and closes the channel, or a JSON delta. Lines
// with malformed JSON are skipped silently.
func (c *Client) ChatStream(ctx context.Context, opts Options) (*Stream, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)

	resp, err := c.post(ctx, c.buildRequest(opts, true, nil))
	if err != nil {
		cancel()
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		apiErr := apiErrorFromResponse(resp)
		resp.Body.Close()
		cancel()
		return nil, apiErr
	}

	ch := make(chan StreamChunk)
	done := make(chan struct{})
	s := &Stream{C: ch, cancel: cancel, done: done}

	go func() {
		defer close(done)
		defer close(ch)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, defaultBufferSize), maxContentLength)

		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, streamDataPrefix) {
				continue
			}
			payload := strings.TrimSpace(strings.TrimPrefix(line, streamDataPrefix))

			if payload == streamDoneMarker {
				select {
				case ch <- StreamChunk{IsComplete: true}:
				case <-ctx.Done():
				}
				return
			}

			var delta struct {
				Choices []struct {
					Delta struct {
						Content string `json:"content"`
					} `json:"delta"`
					FinishReason string `json:"finish_reason"`
				} `json:"choices"`
			}
			if err := json.Unmarshal([]byte(payload), &delta); err != nil {
				// Malformed per-line JSON is a no-op, not an error.
				continue
			}
			if len(delta.Choices) == 0 {
				continue
			}
			chunk := StreamChunk{
				Content:      delta.Choices[0].Delta.Content,
				FinishReason: delta.Choices[0].FinishReason,
			}
			select {
			case ch <- chunk:
			case <-ctx.Done():
				s.err = ctx.Err()
				return
			}
		}
		if err := scanner.Err(); err != nil && ctx.Err() == nil {
			s.err = &APIError{Kind: KindNetwork, Message: "stream read: " + err.Error(), cause: err}
		}
	}()

	return s, nil
}
