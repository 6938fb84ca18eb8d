package market

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/repricer/internal/domain/models"
)

// Client exposes the listing endpoints of one marketplace offer feed.
type Client interface {
	FetchRawOffers(ctx context.Context, productRef string) ([]models.RawOffer, error)
}

// APIClient is a resty-backed implementation of Client. One instance per
// source; throttling retries happen here so callers only ever see a final
// answer.
type APIClient struct {
	httpClient *resty.Client
	source     models.SourceTag
}

// Options tune a source feed client.
type Options struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	RetryCount int
	RetryWait  time.Duration
}

// NewClient builds a feed client for the given source.
func NewClient(source models.SourceTag, opts Options) *APIClient {
	if opts.Timeout == 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.RetryWait == 0 {
		opts.RetryWait = 500 * time.Millisecond
	}

	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(opts.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.RetryCount).
		SetRetryWaitTime(opts.RetryWait).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= http.StatusInternalServerError
		})

	if opts.APIKey != "" {
		restyClient.SetHeader("Authorization", fmt.Sprintf("Bearer %s", opts.APIKey))
	}

	return &APIClient{httpClient: restyClient, source: source}
}

// offersResponse mirrors the feed payload.
type offersResponse struct {
	Offers []models.RawOffer `json:"offers"`
}

// apiError is the feed's error payload.
type apiError struct {
	Error struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// FetchRawOffers pulls the raw listing set for one product reference.
func (c *APIClient) FetchRawOffers(ctx context.Context, productRef string) ([]models.RawOffer, error) {
	result := new(offersResponse)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("product", productRef).
		SetResult(result).
		SetError(apiErr).
		Get("/offers")
	if err != nil {
		return nil, fmt.Errorf("fetch %s offers: %w", c.source, err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		message := apiErr.Error.Message
		code := resp.StatusCode()
		if apiErr.Error.Code != 0 {
			code = apiErr.Error.Code
		}
		return nil, fmt.Errorf("%s feed error: code=%d, message=%s", c.source, code, message)
	}

	return result.Offers, nil
}
