package genai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/BasimBashir/caloriewise-ai/internal/faults"
	"github.com/BasimBashir/caloriewise-ai/internal/types"
)

// ChatTurn is one prior message handed to the model.
type ChatTurn struct {
	Role types.ChatRole
	Text string
}

// ChatRequest carries everything the streaming call needs.
type ChatRequest struct {
	History       []ChatTurn // includes the freshly composed user message
	SystemContext string
	UseSearch     bool
}

// Chunk is one streamed delta. Citations, when present, fully supersede any
// citations from earlier chunks of the same turn.
type Chunk struct {
	TextDelta string
	Citations []types.GroundingCitation
}

// ChatStream is a lazy, finite, non-restartable sequence of chunks. Recv
// returns io.EOF when the underlying call completes normally.
type ChatStream struct {
	ch   chan Chunk
	err  error
	body io.Closer
	done chan struct{}
	once sync.Once
}

// Recv returns the next chunk in arrival order.
func (s *ChatStream) Recv(ctx context.Context) (Chunk, error) {
	select {
	case <-ctx.Done():
		return Chunk{}, ctx.Err()
	case chunk, ok := <-s.ch:
		if !ok {
			if s.err != nil {
				return Chunk{}, s.err
			}
			return Chunk{}, io.EOF
		}
		return chunk, nil
	}
}

// Close releases the underlying response body and the forwarding goroutine.
// Safe after exhaustion, idempotent.
func (s *ChatStream) Close() error {
	s.once.Do(func() { close(s.done) })
	if s.body != nil {
		return s.body.Close()
	}
	return nil
}

// StreamChat starts a streaming chat turn. Deltas arrive strictly in order;
// the stream is exhausted when the transport completes normally.
func (c *Client) StreamChat(ctx context.Context, req ChatRequest) (*ChatStream, error) {
	if c.apiKey == "" {
		return nil, faults.NewMissingCredentials("AI API key")
	}

	wire := generateRequest{
		SystemInstruction: &content{Parts: []part{{Text: req.SystemContext}}},
	}
	for _, turn := range req.History {
		wire.Contents = append(wire.Contents, content{
			Role:  string(turn.Role),
			Parts: []part{{Text: turn.Text}},
		})
	}
	if req.UseSearch {
		wire.Tools = []tool{{GoogleSearch: &struct{}{}}}
	}

	body, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("chat: encode request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:streamGenerateContent?alt=sse&key=%s", c.baseURL, c.model, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, faults.NewNetworkError("chat", err)
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
		return nil, faults.NewHTTPError(resp.StatusCode, string(respBody), "chat")
	}

	stream := &ChatStream{ch: make(chan Chunk), body: resp.Body, done: make(chan struct{})}
	go stream.consume(resp.Body)
	return stream, nil
}

// consume reads SSE events off the wire and forwards them as chunks.
func (s *ChatStream) consume(body io.ReadCloser) {
	defer close(s.ch)
	defer func() { _ = body.Close() }()

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" || payload == "[DONE]" {
			continue
		}

		var event generateResponse
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			s.err = faults.NewContentSafety("chat", err)
			return
		}

		chunk := Chunk{TextDelta: event.text()}
		for _, web := range event.citations() {
			chunk.Citations = append(chunk.Citations, types.GroundingCitation{
				URI:   web.URI,
				Title: web.Title,
			})
		}
		if chunk.TextDelta == "" && chunk.Citations == nil {
			continue
		}
		// The receiver may have walked away; Close must unblock this send,
		// not just the scan.
		select {
		case s.ch <- chunk:
		case <-s.done:
			return
		}
	}
	if err := scanner.Err(); err != nil {
		s.err = faults.NewNetworkError("chat stream", err)
	}
}
