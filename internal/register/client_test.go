package register

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/aleister1102/grcdigest/internal/common/errorwrapper"
	"github.com/aleister1102/grcdigest/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(id int) string {
	return fmt.Sprintf(`{"record":{"id":%d,"sections":[]}}`, id)
}

// pagedServer serves totalCount records split by limit/offset.
// ids maps absolute position to record id, allowing duplicates across pages.
type pagedServer struct {
	mu         sync.Mutex
	totalCount int
	ids        []int
	offsets    []int
	// maxPage caps the records served per request regardless of limit
	maxPage int
}

func (p *pagedServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()

	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	p.offsets = append(p.offsets, offset)
	if p.maxPage > 0 && limit > p.maxPage {
		limit = p.maxPage
	}

	var recs []string
	for i := offset; i < offset+limit && i < len(p.ids); i++ {
		recs = append(recs, record(p.ids[i]))
	}
	fmt.Fprintf(w, `{"totalCount":%d,"maxPage":%d,"records":[%s]}`, p.totalCount, limit, strings.Join(recs, ","))
}

func newTestClient(t *testing.T, serverURL string, pageSize int) *Client {
	t.Helper()
	cfg := config.NewDefaultRegisterConfig()
	cfg.BaseURL = serverURL
	cfg.PageSize = pageSize
	cfg.Username = "svc"
	cfg.Password = "secret"

	c, err := NewClientFromConfig(cfg, zerolog.Nop())
	require.NoError(t, err)
	return c
}

func TestFetchPage_SendsQueryAndBasicAuth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/service/entries/7246/search", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "col_135040", q.Get("keys"))
		assert.Equal(t, "Open", q.Get("values"))
		assert.Equal(t, "50", q.Get("limit"))
		assert.Equal(t, "100", q.Get("offset"))

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "svc", user)
		assert.Equal(t, "secret", pass)

		fmt.Fprint(w, `{"totalCount":1,"maxPage":50,"records":[`+record(1)+`]}`)
	}))
	defer server.Close()

	page, err := newTestClient(t, server.URL, 50).FetchPage(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalCount)
	assert.Len(t, page.Records, 1)
}

func TestFetchAll_PagesUntilTotalCount(t *testing.T) {
	ps := &pagedServer{totalCount: 7, ids: []int{1, 2, 3, 4, 5, 6, 7}}
	server := httptest.NewServer(ps)
	defer server.Close()

	rs, err := newTestClient(t, server.URL, 3).FetchAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int{0, 3, 6}, ps.offsets)
	require.Len(t, rs.Records, 7)
	assert.Equal(t, 7, rs.TotalCount)

	var first struct {
		Record struct {
			ID int `json:"id"`
		} `json:"record"`
	}
	require.NoError(t, json.Unmarshal(rs.Records[0], &first))
	assert.Equal(t, 1, first.Record.ID)
}

func TestFetchAll_ServerCapsPageSize(t *testing.T) {
	ids := make([]int, 120)
	for i := range ids {
		ids[i] = i + 1
	}
	ps := &pagedServer{totalCount: 120, ids: ids, maxPage: 50}
	server := httptest.NewServer(ps)
	defer server.Close()

	rs, err := newTestClient(t, server.URL, 100).FetchAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int{0, 50, 100}, ps.offsets)
	assert.Len(t, rs.Records, 120)
	assert.Equal(t, 50, rs.MaxPage)
}

func TestFetchAll_NegativeTotalCount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"totalCount":-1,"maxPage":50,"records":[]}`)
	}))
	defer server.Close()

	var (
		rs  any
		err error
	)
	require.NotPanics(t, func() {
		rs, err = newTestClient(t, server.URL, 50).FetchAll(context.Background())
	})
	require.Error(t, err)
	assert.Nil(t, rs)
	assert.True(t, errors.Is(err, errorwrapper.ErrUpstreamFailure))
}

func TestFetchAll_HugeTotalCountDoesNotPreallocate(t *testing.T) {
	// a bogus totalCount must end in a count mismatch, not an enormous allocation
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("offset") == "0" {
			fmt.Fprint(w, `{"totalCount":2000000000,"maxPage":50,"records":[`+record(1)+`]}`)
			return
		}
		fmt.Fprint(w, `{"totalCount":2000000000,"maxPage":50,"records":[]}`)
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL, 50).FetchAll(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRecordCountMismatch))
}

func TestNewClientFromConfig_TransportSettings(t *testing.T) {
	var gotUA, gotHost string
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotHost = r.URL.Host
		fmt.Fprint(w, `{"records":[]}`)
	}))
	defer proxy.Close()

	cfg := config.NewDefaultRegisterConfig()
	cfg.BaseURL = "http://grc.internal.example/rest"
	cfg.Proxy = proxy.URL
	cfg.UserAgent = "digest-test/2"

	c, err := NewClientFromConfig(cfg, zerolog.Nop())
	require.NoError(t, err)

	_, err = c.SearchAssets(context.Background(), "web-01")
	require.NoError(t, err)
	assert.Equal(t, "digest-test/2", gotUA)
	assert.Equal(t, "grc.internal.example", gotHost)
}

func TestNewClientFromConfig_MaxResponseSize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"records":[{"pad":"%s"}]}`, strings.Repeat("x", 2*1024*1024))
	}))
	defer server.Close()

	cfg := config.NewDefaultRegisterConfig()
	cfg.BaseURL = server.URL
	cfg.MaxResponseSizeMB = 1

	c, err := NewClientFromConfig(cfg, zerolog.Nop())
	require.NoError(t, err)

	_, err = c.SearchAssets(context.Background(), "web-01")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errorwrapper.ErrInvalidInput))
}

func TestFetchAll_DeduplicatesByRecordID(t *testing.T) {
	// record 3 is delivered twice because the upstream ordering shifted between pages
	ps := &pagedServer{totalCount: 4, ids: []int{1, 2, 3, 3, 4}}
	server := httptest.NewServer(ps)
	defer server.Close()

	rs, err := newTestClient(t, server.URL, 2).FetchAll(context.Background())
	require.Error(t, err)
	assert.Nil(t, rs)
	assert.True(t, errors.Is(err, ErrRecordCountMismatch))
	assert.Equal(t, []int{0, 2}, ps.offsets)
}

func TestFetchAll_DeduplicatedSetMatchingTotalCount(t *testing.T) {
	ps := &pagedServer{totalCount: 3, ids: []int{1, 2, 2, 3}}
	server := httptest.NewServer(ps)
	defer server.Close()

	// page size 2 requests offsets 0 and 2, which yields ids 1,2,2,3
	rs, err := newTestClient(t, server.URL, 2).FetchAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, rs.Records, 3)
}

func TestFetchAll_CountMismatchIsHardFailure(t *testing.T) {
	// upstream claims 5 records but only ever serves 4
	ps := &pagedServer{totalCount: 5, ids: []int{1, 2, 3, 4}}
	server := httptest.NewServer(ps)
	defer server.Close()

	rs, err := newTestClient(t, server.URL, 2).FetchAll(context.Background())
	require.Error(t, err)
	assert.Nil(t, rs)
	assert.True(t, errors.Is(err, ErrRecordCountMismatch))
	assert.Contains(t, err.Error(), "5 != 4")
}

func TestFetchAll_Non200IsHardFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, "bad credentials")
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL, 50).FetchAll(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errorwrapper.ErrUpstreamFailure))

	var httpErr *errorwrapper.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)
	assert.Equal(t, "bad credentials", httpErr.Message)
}

func TestFetchAll_CancelledContext(t *testing.T) {
	ps := &pagedServer{totalCount: 4, ids: []int{1, 2, 3, 4}}
	server := httptest.NewServer(ps)
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(t, server.URL, 2).FetchAll(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestSearchAssets(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/service/entries/935/search", r.URL.Path)
		assert.Equal(t, "col_113150", r.URL.Query().Get("keys"))
		assert.Equal(t, "web 01", r.URL.Query().Get("values"))
		fmt.Fprint(w, `{"records":[]}`)
	}))
	defer server.Close()

	body, err := newTestClient(t, server.URL, 50).SearchAssets(context.Background(), "web 01")
	require.NoError(t, err)
	assert.JSONEq(t, `{"records":[]}`, string(body))
}

func TestSearchUsers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/service/users/search", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"expressions":[{"expression":"=","property":"name","type":"STRING","value":"Alice"}]}`, string(body))
		fmt.Fprint(w, `{"records":[{"email":"alice@example.com"}]}`)
	}))
	defer server.Close()

	body, err := newTestClient(t, server.URL, 50).SearchUsers(context.Background(), "Alice")
	require.NoError(t, err)
	assert.Contains(t, string(body), "alice@example.com")
}

func TestSearchUsers_Non200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL, 50).SearchUsers(context.Background(), "Alice")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errorwrapper.ErrUpstreamFailure))
}
