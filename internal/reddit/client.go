package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

const (
	defaultListingBaseURL = "https://www.reddit.com"
	defaultArchiveURL     = "https://api.pullpush.io/reddit/search/submission/"
	defaultUserAgent      = "FullCartsBot/1.0 (fullcarts.org community shrinkflation tracker)"

	listingPageSize  = 100
	archiveBatchSize = 100
	// Safety valve for the archive walk.
	maxArchiveBatches = 500
)

type Config struct {
	Subreddit  string
	ListingURL string
	ArchiveURL string
	Timeout    time.Duration
	// PageDelay spaces out requests; both endpoints ask for ~1 req/sec.
	PageDelay time.Duration
	Logger    *zap.SugaredLogger
}

type Client struct {
	subreddit  string
	listingURL string
	archiveURL string
	pageDelay  time.Duration
	httpClient *http.Client
	log        *zap.SugaredLogger
}

func NewClient(cfg Config) *Client {
	if cfg.Subreddit == "" {
		cfg.Subreddit = "shrinkflation"
	}
	if cfg.ListingURL == "" {
		cfg.ListingURL = defaultListingBaseURL
	}
	if cfg.ArchiveURL == "" {
		cfg.ArchiveURL = defaultArchiveURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop().Sugar()
	}

	return &Client{
		subreddit:  cfg.Subreddit,
		listingURL: cfg.ListingURL,
		archiveURL: cfg.ArchiveURL,
		pageDelay:  cfg.PageDelay,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        cfg.Logger,
	}
}

type listingResponse struct {
	Data struct {
		Children []struct {
			Kind string `json:"kind"`
			Data Post   `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type archiveResponse struct {
	Data []Post `json:"data"`
}

// Listing fetches one page of the subreddit's public JSON listing.
func (c *Client) Listing(ctx context.Context, listing, after string) ([]Post, error) {
	endpoint := fmt.Sprintf("%s/r/%s/%s.json", c.listingURL, c.subreddit, listing)

	params := url.Values{}
	params.Set("limit", strconv.Itoa(listingPageSize))
	params.Set("raw_json", "1")
	if after != "" {
		params.Set("after", after)
	}

	body, err := c.get(ctx, endpoint, params)
	if err != nil {
		return nil, fmt.Errorf("reddit listing fetch failed: %w", err)
	}

	var parsed listingResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse listing response: %w", err)
	}

	var posts []Post
	for _, child := range parsed.Data.Children {
		if child.Kind == "t3" {
			posts = append(posts, child.Data)
		}
	}
	return posts, nil
}

// ListingPages paginates a listing up to maxPages. A page that fails after
// retries ends the walk; whatever was fetched so far is returned.
func (c *Client) ListingPages(ctx context.Context, listing string, maxPages int) []Post {
	var all []Post
	after := ""

	for page := 0; page < maxPages; page++ {
		posts, err := c.Listing(ctx, listing, after)
		if err != nil {
			c.log.Warnw("listing page fetch failed", "listing", listing, "page", page+1, "error", err)
			break
		}
		if len(posts) == 0 {
			break
		}
		all = append(all, posts...)
		after = "t3_" + posts[len(posts)-1].ID
		c.log.Infow("fetched listing page", "listing", listing, "page", page+1, "posts", len(posts), "total", len(all))
		c.sleep(ctx)
	}

	return all
}

// ArchiveBatch fetches one descending batch from the archive API, optionally
// bounded to posts created before beforeUTC.
func (c *Client) ArchiveBatch(ctx context.Context, beforeUTC int64) ([]Post, error) {
	params := url.Values{}
	params.Set("subreddit", c.subreddit)
	params.Set("size", strconv.Itoa(archiveBatchSize))
	params.Set("sort", "desc")
	params.Set("sort_type", "created_utc")
	if beforeUTC > 0 {
		params.Set("before", strconv.FormatInt(beforeUTC, 10))
	}

	body, err := c.get(ctx, c.archiveURL, params)
	if err != nil {
		return nil, fmt.Errorf("archive fetch failed: %w", err)
	}

	var parsed archiveResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse archive response: %w", err)
	}
	return parsed.Data, nil
}

// ArchiveAll walks the entire archive newest-first until an empty batch.
func (c *Client) ArchiveAll(ctx context.Context) []Post {
	var all []Post
	var beforeUTC int64

	for batch := 1; batch <= maxArchiveBatches; batch++ {
		posts, err := c.ArchiveBatch(ctx, beforeUTC)
		if err != nil {
			c.log.Warnw("archive batch fetch failed", "batch", batch, "error", err)
			break
		}
		if len(posts) == 0 {
			c.log.Infow("archive exhausted", "batches", batch-1, "total", len(all))
			break
		}

		all = append(all, posts...)

		oldest := posts[0].CreatedUTC
		for _, p := range posts {
			if p.CreatedUTC < oldest {
				oldest = p.CreatedUTC
			}
		}
		beforeUTC = int64(oldest)

		c.log.Infow("fetched archive batch", "batch", batch, "posts", len(posts), "total", len(all),
			"oldest", time.Unix(beforeUTC, 0).UTC().Format("2006-01-02"))
		c.sleep(ctx)
	}

	return all
}

// get performs a request with retries on transient failures (network errors,
// 429 and 5xx responses).
func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	var body []byte

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", defaultUserAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return fmt.Errorf("status %d", resp.StatusCode)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return backoff.Permanent(fmt.Errorf("status %d: %s", resp.StatusCode, string(data)))
		}

		body = data
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return body, nil
}

func (c *Client) sleep(ctx context.Context) {
	if c.pageDelay == 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(c.pageDelay):
	}
}
