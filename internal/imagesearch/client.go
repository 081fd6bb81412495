// Package imagesearch looks up one illustrative image per exercise name via
// an external image-search backend. Lookups are best-effort: a miss leaves
// the exercise image unset and never fails plan generation.
package imagesearch

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/BasimBashir/caloriewise-ai/internal/faults"
)

// queryQualifiers narrows results toward instructional exercise photos.
const queryQualifiers = "exercise form illustration"

var imageExtPattern = regexp.MustCompile(`(?i)\.(jpe?g|png|gif|webp)(\?.*)?$`)

// Client queries the image-search backend.
type Client struct {
	rc *resty.Client
}

// New constructs a Client. apiKey may be empty; lookups then report a
// missing-credentials fault so callers can degrade gracefully.
func New(baseURL, apiKey string) *Client {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetHeader("Accept", "application/json")
	if apiKey != "" {
		rc.SetQueryParam("key", apiKey)
	}
	return &Client{rc: rc}
}

type searchResponse struct {
	Items []struct {
		Link string `json:"link"`
	} `json:"items"`
}

// FindExerciseImage returns the best candidate image URL for the exercise, or
// "" when no candidate is found. Secure links with a recognized image file
// extension win; otherwise the first returned link is used.
func (c *Client) FindExerciseImage(ctx context.Context, exercise string) (string, error) {
	if exercise == "" {
		return "", nil
	}
	if c.rc.QueryParam.Get("key") == "" {
		return "", faults.NewMissingCredentials("image search API key")
	}

	var out searchResponse
	resp, err := c.rc.R().
		SetContext(ctx).
		SetQueryParam("q", exercise+" "+queryQualifiers).
		SetQueryParam("searchType", "image").
		SetResult(&out).
		Get("/search")
	if err != nil {
		return "", faults.NewNetworkError("image search", err)
	}
	if resp.IsError() {
		return "", faults.NewHTTPError(resp.StatusCode(), resp.String(), "image search")
	}

	return pickLink(&out), nil
}

func pickLink(out *searchResponse) string {
	for _, item := range out.Items {
		if strings.HasPrefix(item.Link, "https://") && imageExtPattern.MatchString(item.Link) {
			return item.Link
		}
	}
	if len(out.Items) > 0 {
		return out.Items[0].Link
	}
	return ""
}

// String implements fmt.Stringer for debug logs.
func (c *Client) String() string {
	return fmt.Sprintf("imagesearch(%s)", c.rc.BaseURL)
}
