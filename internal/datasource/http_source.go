package datasource

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
)

const httpSourceName = "http"

// HTTPSlateSource fetches the slate JSON from the upstream fetcher's endpoint
type HTTPSlateSource struct {
	client *RateLimitedHTTPClient
	url    string
	logger *logrus.Logger
}

// NewHTTPSlateSource creates a source reading from url
func NewHTTPSlateSource(client *RateLimitedHTTPClient, url string, logger *logrus.Logger) *HTTPSlateSource {
	return &HTTPSlateSource{client: client, url: url, logger: logger}
}

// Name returns the name of the source
func (s *HTTPSlateSource) Name() string {
	return httpSourceName
}

// FetchSlate downloads and decodes the slate
func (s *HTTPSlateSource) FetchSlate(ctx context.Context) (*Slate, error) {
	resp, err := s.client.Get(ctx, s.url)
	if err != nil {
		return nil, NewSourceError(httpSourceName, ErrCodeNetworkError, s.url, fmt.Errorf("%w: %v", ErrNetworkError, err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, NewSourceError(httpSourceName, ErrCodeNotFound, s.url, ErrNotFound)
	case resp.StatusCode >= 500:
		return nil, NewSourceError(httpSourceName, ErrCodeServerError, fmt.Sprintf("status %d", resp.StatusCode), ErrServerError)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, NewSourceError(httpSourceName, ErrCodeInvalidData, fmt.Sprintf("status %d: %s", resp.StatusCode, body), ErrInvalidData)
	}

	slate, err := decodeSlate(resp.Body)
	if err != nil {
		return nil, NewSourceError(httpSourceName, ErrCodeInvalidData, s.url, err)
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{
			"url":    s.url,
			"offers": len(slate.Offers),
		}).Debug("Slate downloaded")
	}

	return slate, nil
}
