// Package register talks to the GRC register REST API: paged findings search,
// asset register search and user directory search.
package register

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aleister1102/grcdigest/internal/common/errorwrapper"
	"github.com/aleister1102/grcdigest/internal/config"
	"github.com/aleister1102/grcdigest/internal/httpclient"
	"github.com/aleister1102/grcdigest/internal/models"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

const (
	entriesSearchPath = "/v2/service/entries/%d/search"
	usersSearchPath   = "/v2/service/users/search"
	recordIDPath      = "record.id"
	maxPresizePages   = 20
)

// Doer executes a single HTTP request.
type Doer interface {
	Do(req *httpclient.HTTPRequest) (*httpclient.HTTPResponse, error)
}

// Client is a register API client bound to one configuration.
type Client struct {
	http    Doer
	cfg     config.RegisterConfig
	baseURL string
	logger  zerolog.Logger
}

// NewClient creates a register client on top of an existing HTTP client.
func NewClient(doer Doer, cfg config.RegisterConfig, logger zerolog.Logger) *Client {
	return &Client{
		http:    doer,
		cfg:     cfg,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		logger:  logger.With().Str("module", "RegisterClient").Logger(),
	}
}

// NewClientFromConfig builds the HTTP client from the register transport settings.
// A zero MaxResponseSizeMB disables the response size limit.
func NewClientFromConfig(cfg config.RegisterConfig, logger zerolog.Logger) (*Client, error) {
	hc, err := httpclient.NewHTTPClientBuilder(logger).
		WithTimeout(time.Duration(cfg.TimeoutSecs) * time.Second).
		WithInsecureSkipVerify(cfg.InsecureSkipVerify).
		WithFollowRedirects(cfg.FollowRedirects).
		WithHTTP2(cfg.EnableHTTP2).
		WithProxy(cfg.Proxy).
		WithUserAgent(cfg.UserAgent).
		WithMaxContentSize(cfg.MaxResponseSizeMB * 1024 * 1024).
		WithBasicAuth(cfg.Username, cfg.Password).
		Build()
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to create register HTTP client")
	}
	return NewClient(hc, cfg, logger), nil
}

// FetchPage fetches one page of open findings starting at offset.
func (c *Client) FetchPage(ctx context.Context, offset int) (*models.ResultSet, error) {
	query := url.Values{}
	query.Set("keys", c.cfg.StatusColumnKey)
	query.Set("values", c.cfg.StatusFilterValue)
	query.Set("limit", strconv.Itoa(c.cfg.PageSize))
	query.Set("offset", strconv.Itoa(offset))

	body, err := c.post(ctx, fmt.Sprintf(entriesSearchPath, c.cfg.FindingsRegisterID), query, nil)
	if err != nil {
		return nil, errorwrapper.WrapError(err, fmt.Sprintf("failed to fetch findings page at offset %d", offset))
	}

	var page models.ResultSet
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, errorwrapper.WrapError(err, fmt.Sprintf("failed to decode findings page at offset %d", offset))
	}
	return &page, nil
}

// FetchAll pages through the findings register and returns every distinct record.
// The offset advances by the number of records the server actually returned, so a
// server that caps pages below the requested limit is still walked completely.
// Records are deduplicated by record.id, first occurrence kept. The result must hold
// exactly totalCount records, otherwise ErrRecordCountMismatch is returned.
func (c *Client) FetchAll(ctx context.Context) (*models.ResultSet, error) {
	first, err := c.FetchPage(ctx, 0)
	if err != nil {
		return nil, err
	}
	if first.TotalCount < 0 {
		return nil, errorwrapper.WrapError(errorwrapper.ErrUpstreamFailure, fmt.Sprintf("register reported negative totalCount %d", first.TotalCount))
	}

	// totalCount is upstream data; bound the pre-allocation by what one page can hold
	hint := min(first.TotalCount, c.cfg.PageSize*maxPresizePages)
	seen := make(map[string]struct{}, hint)
	result := &models.ResultSet{
		TotalCount: first.TotalCount,
		MaxPage:    first.MaxPage,
		Records:    make([]models.RawRecord, 0, hint),
	}
	duplicates := c.appendUnique(result, first.Records, seen)

	if len(first.Records) < c.cfg.PageSize && len(first.Records) < first.TotalCount {
		c.logger.Debug().
			Int("page_size", c.cfg.PageSize).
			Int("served", len(first.Records)).
			Int("max_page", first.MaxPage).
			Msg("Register caps pages below the requested limit")
	}

	for offset := len(first.Records); offset < first.TotalCount && offset > 0; {
		if err := ctx.Err(); err != nil {
			return nil, errorwrapper.WrapError(err, "findings fetch cancelled")
		}
		page, err := c.FetchPage(ctx, offset)
		if err != nil {
			return nil, err
		}
		if len(page.Records) == 0 {
			c.logger.Warn().Int("offset", offset).Msg("Empty findings page before totalCount was reached")
			break
		}
		duplicates += c.appendUnique(result, page.Records, seen)
		offset += len(page.Records)
	}

	if duplicates > 0 {
		c.logger.Warn().Int("duplicates", duplicates).Msg("Dropped duplicate records across pages")
	}

	if !result.IsComplete() {
		c.logger.Error().
			Int("total_count", result.TotalCount).
			Int("records", len(result.Records)).
			Msg("Record count is not equal to totalCount")
		return nil, fmt.Errorf("%w: %d != %d", ErrRecordCountMismatch, result.TotalCount, len(result.Records))
	}

	c.logger.Info().Int("records", len(result.Records)).Msg("Successfully fetched findings")
	return result, nil
}

func (c *Client) appendUnique(rs *models.ResultSet, records []models.RawRecord, seen map[string]struct{}) int {
	dropped := 0
	for _, rec := range records {
		id := gjson.GetBytes(rec, recordIDPath)
		if id.Exists() {
			if _, dup := seen[id.String()]; dup {
				dropped++
				continue
			}
			seen[id.String()] = struct{}{}
		}
		rs.Records = append(rs.Records, rec)
	}
	return dropped
}

// SearchAssets returns the raw asset register search response for an exact asset name.
func (c *Client) SearchAssets(ctx context.Context, assetName string) ([]byte, error) {
	query := url.Values{}
	query.Set("keys", c.cfg.AssetNameColumnKey)
	query.Set("values", assetName)

	body, err := c.post(ctx, fmt.Sprintf(entriesSearchPath, c.cfg.AssetsRegisterID), query, nil)
	if err != nil {
		return nil, errorwrapper.WrapError(err, fmt.Sprintf("asset search failed for %q", assetName))
	}
	return body, nil
}

type userFilter struct {
	Expressions []userExpression `json:"expressions"`
}

type userExpression struct {
	Expression string `json:"expression"`
	Property   string `json:"property"`
	Type       string `json:"type"`
	Value      string `json:"value"`
}

// SearchUsers returns the raw user directory search response for an exact name match.
func (c *Client) SearchUsers(ctx context.Context, name string) ([]byte, error) {
	payload, err := json.Marshal(userFilter{
		Expressions: []userExpression{{Expression: "=", Property: "name", Type: "STRING", Value: name}},
	})
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to encode user search filter")
	}

	body, err := c.post(ctx, usersSearchPath, nil, payload)
	if err != nil {
		return nil, errorwrapper.WrapError(err, fmt.Sprintf("user search failed for %q", name))
	}
	return body, nil
}

func (c *Client) post(ctx context.Context, path string, query url.Values, jsonBody []byte) ([]byte, error) {
	endpoint := c.baseURL + path
	req := &httpclient.HTTPRequest{
		URL:     endpoint,
		Method:  http.MethodPost,
		Query:   query,
		Context: ctx,
	}
	if jsonBody != nil {
		req.Body = bytes.NewReader(jsonBody)
		req.Headers = map[string]string{"Content-Type": "application/json"}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if !resp.IsOK() {
		c.logger.Error().Str("url", endpoint).Int("status_code", resp.StatusCode).Str("body", truncate(string(resp.Body), 512)).Msg("Register API returned non-200")
		return nil, errorwrapper.NewHTTPErrorWithURL(resp.StatusCode, truncate(string(resp.Body), 512), endpoint)
	}
	return resp.Body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
