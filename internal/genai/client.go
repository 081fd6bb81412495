// Package genai wraps the generative-model backend behind three stateless
// fetchers: meal-photo analysis, workout-plan generation and streaming chat.
// All three return structured domain values; raw transport errors are
// classified in internal/faults and never shown to the end user verbatim.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/BasimBashir/caloriewise-ai/internal/faults"
)

// Client talks to a Gemini-style generate-content API.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
}

// New constructs a Client. The apiKey check is deferred to call time so an
// unconfigured client can still be constructed for guest browsing.
func New(baseURL, apiKey, model string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{baseURL: baseURL, apiKey: apiKey, model: model, http: httpClient}
}

// ---------------- wire types ----------------

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"` // base64
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType,omitempty"`
}

type tool struct {
	GoogleSearch *struct{} `json:"googleSearch,omitempty"`
}

type generateRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
	Tools             []tool            `json:"tools,omitempty"`
}

type webChunk struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

type groundingMetadata struct {
	GroundingChunks []struct {
		Web *webChunk `json:"web,omitempty"`
	} `json:"groundingChunks,omitempty"`
}

type candidate struct {
	Content           *content           `json:"content,omitempty"`
	FinishReason      string             `json:"finishReason,omitempty"`
	GroundingMetadata *groundingMetadata `json:"groundingMetadata,omitempty"`
}

type generateResponse struct {
	Candidates []candidate `json:"candidates"`
}

// text returns the concatenated text parts of the first candidate.
func (r *generateResponse) text() string {
	if len(r.Candidates) == 0 || r.Candidates[0].Content == nil {
		return ""
	}
	var buf bytes.Buffer
	for _, p := range r.Candidates[0].Content.Parts {
		buf.WriteString(p.Text)
	}
	return buf.String()
}

// citations extracts the grounding citations of the first candidate.
func (r *generateResponse) citations() []webChunk {
	if len(r.Candidates) == 0 || r.Candidates[0].GroundingMetadata == nil {
		return nil
	}
	var out []webChunk
	for _, gc := range r.Candidates[0].GroundingMetadata.GroundingChunks {
		if gc.Web != nil && gc.Web.URI != "" {
			out = append(out, *gc.Web)
		}
	}
	return out
}

// generate issues a blocking generateContent call and returns the response.
func (c *Client) generate(ctx context.Context, operation string, req generateRequest) (*generateResponse, error) {
	if c.apiKey == "" {
		return nil, faults.NewMissingCredentials("AI API key")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%s: encode request: %w", operation, err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, faults.NewNetworkError(operation, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, faults.NewHTTPError(resp.StatusCode, string(respBody), operation)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, faults.NewContentSafety(operation, err)
	}
	return &out, nil
}

// parseStructured decodes the model's JSON text answer into v. An empty or
// unparsable answer is classified as a content-safety rejection, which is how
// the backend signals refused inputs.
func parseStructured(operation, text string, v any) error {
	if text == "" {
		return faults.NewContentSafety(operation, fmt.Errorf("empty response"))
	}
	if err := json.Unmarshal([]byte(stripFences(text)), v); err != nil {
		return faults.NewContentSafety(operation, err)
	}
	return nil
}

// stripFences removes a markdown code fence the model sometimes wraps JSON in.
func stripFences(s string) string {
	trimmed := bytes.TrimSpace([]byte(s))
	if !bytes.HasPrefix(trimmed, []byte("```")) {
		return s
	}
	if i := bytes.IndexByte(trimmed, '\n'); i >= 0 {
		trimmed = trimmed[i+1:]
	}
	trimmed = bytes.TrimSuffix(bytes.TrimSpace(trimmed), []byte("```"))
	return string(bytes.TrimSpace(trimmed))
}
