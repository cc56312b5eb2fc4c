package validate

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ishwar-prog/Singularity-Hackathon/internal/model"
	"github.com/ishwar-prog/Singularity-Hackathon/internal/util"
)

const linkCheckMaxRetries = 3

// linkSleepFunc is the sleep function used between retries (injectable for tests)
var linkSleepFunc = time.Sleep

// LinkChecker checks donation links for reachability. Results are
// informational and never feed the credibility score.
type LinkChecker struct {
	httpClient *http.Client
	maxWorkers int
	userAgent  string
}

// LinkCheckerOptions configures a LinkChecker
type LinkCheckerOptions struct {
	Timeout     time.Duration
	MaxWorkers  int
	UserAgent   string
	InsecureTLS bool
	HTTPProxy   string
	HTTPSProxy  string
	NoProxy     string
}

// NewLinkChecker creates a new link checker
func NewLinkChecker(opts LinkCheckerOptions) *LinkChecker {
	if opts.MaxWorkers <= 0 {
		opts.MaxWorkers = 8
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "reliefscout/1.0"
	}

	transport := util.NewTransport(opts.HTTPProxy, opts.HTTPSProxy, opts.NoProxy)
	if opts.InsecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &LinkChecker{
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		maxWorkers: opts.MaxWorkers,
		userAgent:  opts.UserAgent,
	}
}

// Check checks every URL concurrently. Results keep the input order.
func (c *LinkChecker) Check(ctx context.Context, urls []string) []model.LinkCheck {
	if len(urls) == 0 {
		return []model.LinkCheck{}
	}

	results := make([]model.LinkCheck, len(urls))
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, c.maxWorkers)

	for i, u := range urls {
		wg.Add(1)
		go func(idx int, rawURL string) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				results[idx] = model.LinkCheck{URL: rawURL, Error: "context cancelled"}
				return
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			results[idx] = c.checkWithRetry(ctx, rawURL)
		}(i, u)
	}

	wg.Wait()
	return results
}

// checkSingle issues one HEAD request
func (c *LinkChecker) checkSingle(ctx context.Context, rawURL string) model.LinkCheck {
	result := model.LinkCheck{URL: rawURL}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		result.Error = fmt.Sprintf("create request: %v", err)
		result.IsDead = true
		return result
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		result.Error = fmt.Sprintf("request failed: %v", err)
		result.IsDead = true
		return result
	}
	defer func() { _ = resp.Body.Close() }()

	result.StatusCode = resp.StatusCode
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 400:
		result.IsAccessible = true
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		result.IsDead = true
	}

	if final := resp.Request.URL.String(); final != rawURL {
		result.RedirectURL = final
	}

	return result
}

// checkWithRetry retries transient failures with exponential backoff
func (c *LinkChecker) checkWithRetry(ctx context.Context, rawURL string) model.LinkCheck {
	var result model.LinkCheck
	for attempt := 0; attempt < linkCheckMaxRetries; attempt++ {
		result = c.checkSingle(ctx, rawURL)
		if !isRetryableLinkCheck(result) {
			return result
		}
		if attempt < linkCheckMaxRetries-1 {
			linkSleepFunc(time.Duration(1<<uint(attempt)) * time.Second)
		}
	}
	return result
}

// isRetryableLinkCheck returns true for results that indicate transient failures
func isRetryableLinkCheck(result model.LinkCheck) bool {
	if result.StatusCode >= 500 && result.StatusCode < 600 {
		return true
	}
	if result.StatusCode == http.StatusTooManyRequests {
		return true
	}
	return result.Error != "" && isRetryableNetworkError(result.Error)
}

// isRetryableNetworkError checks error strings for transient network failures
func isRetryableNetworkError(errMsg string) bool {
	s := strings.ToLower(errMsg)
	return strings.Contains(s, "timeout") ||
		strings.Contains(s, "connection refused") ||
		strings.Contains(s, "connection reset")
}
