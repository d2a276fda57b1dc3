package taobao

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/time/rate"

	types "github.com/yungbote/hotflow/internal/domain"
	"github.com/yungbote/hotflow/internal/platform/apierr"
	"github.com/yungbote/hotflow/internal/platform/logger"
)

const (
	DefaultEndpoint = "https://eco.taobao.com/router/rest"
	DefaultSort     = "total_sales_des"
	MethodMaterial  = "taobao.tbk.dg.material.optional"

	timestampLayout = "2006-01-02 15:04:05"
	maxPageSize     = 100
)

// The TOP router validates timestamps in China Standard Time.
var routerZone = time.FixedZone("CST", 8*60*60)

type Config struct {
	AppKey    string
	AppSecret string
	AdzoneID  string
	Endpoint  string
	Timeout   time.Duration
}

type SearchParams struct {
	Keyword  string
	PageNo   int
	PageSize int
	// HasCoupon restricts results to listings with a coupon.
	HasCoupon bool
	Sort      string
	Extra     map[string]string
}

type SearchResult struct {
	Items        []*types.Item
	TotalResults *int64
	PageNo       int
	PageSize     int
}

type FetchOptions struct {
	Pages     int
	PageSize  int
	Delay     time.Duration
	HasCoupon bool
	Sort      string
}

type Client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
	tracer     trace.Tracer
	now        func() time.Time
}

func New(log *logger.Logger, cfg Config) (*Client, error) {
	cfg.AppKey = strings.TrimSpace(cfg.AppKey)
	cfg.AppSecret = strings.TrimSpace(cfg.AppSecret)
	cfg.AdzoneID = strings.TrimSpace(cfg.AdzoneID)
	switch {
	case cfg.AppKey == "":
		return nil, apierr.Config("missing_env", "TB_APP_KEY is required")
	case cfg.AppSecret == "":
		return nil, apierr.Config("missing_env", "TB_APP_SECRET is required")
	case cfg.AdzoneID == "":
		return nil, apierr.Config("missing_env", "TB_ADZONE_ID is required")
	}
	cfg.Endpoint = strings.TrimSpace(cfg.Endpoint)
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		log:        log.With("client", "TaobaoClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		tracer:     otel.Tracer("hotflow/taobao"),
		now:        time.Now,
	}, nil
}

// NewWithHTTPClient is intended for tests.
func NewWithHTTPClient(log *logger.Logger, cfg Config, httpClient *http.Client, now func() time.Time) (*Client, error) {
	c, err := New(log, cfg)
	if err != nil {
		return nil, err
	}
	if httpClient != nil {
		c.httpClient = httpClient
	}
	if now != nil {
		c.now = now
	}
	return c, nil
}

// Sign computes the TOP md5 signature: upper-case hex of
// md5(secret + k1v1 + k2v2 + ... + secret) over keys in ascending order.
// The "sign" key itself and empty values are never included.
func Sign(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if k == "sign" || v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(secret)
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(params[k])
	}
	b.WriteString(secret)
	sum := md5.Sum([]byte(b.String()))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

func (c *Client) buildParams(extra map[string]string) map[string]string {
	params := map[string]string{
		"method":      MethodMaterial,
		"app_key":     c.cfg.AppKey,
		"sign_method": "md5",
		"timestamp":   c.now().In(routerZone).Format(timestampLayout),
		"format":      "json",
		"v":           "2.0",
		"adzone_id":   c.cfg.AdzoneID,
	}
	for k, v := range extra {
		if v == "" {
			continue
		}
		params[k] = v
	}
	params["sign"] = Sign(params, c.cfg.AppSecret)
	return params
}

// NormalizeKeyword folds full-width forms so "抽纸" typed on any IME maps to one category.
func NormalizeKeyword(keyword string) string {
	return strings.TrimSpace(norm.NFKC.String(keyword))
}

// Search fetches one page. The result never holds more than PageSize items.
func (c *Client) Search(ctx context.Context, p SearchParams) (*SearchResult, error) {
	keyword := NormalizeKeyword(p.Keyword)
	if keyword == "" {
		return nil, apierr.InvalidArgument("empty_keyword", "keyword is required")
	}
	if p.PageNo < 1 {
		return nil, apierr.InvalidArgument("invalid_page", "page number must be >= 1, got %d", p.PageNo)
	}
	if p.PageSize < 1 || p.PageSize > maxPageSize {
		return nil, apierr.InvalidArgument("invalid_page_size", "page size must be between 1 and %d, got %d", maxPageSize, p.PageSize)
	}
	sortBy := strings.TrimSpace(p.Sort)
	if sortBy == "" {
		sortBy = DefaultSort
	}

	ctx, span := c.tracer.Start(ctx, "taobao.search", trace.WithAttributes(
		attribute.String("taobao.keyword", keyword),
		attribute.Int("taobao.page_no", p.PageNo),
		attribute.Int("taobao.page_size", p.PageSize),
	))
	defer span.End()

	biz := map[string]string{
		"q":         keyword,
		"page_no":   strconv.Itoa(p.PageNo),
		"page_size": strconv.Itoa(p.PageSize),
		"sort":      sortBy,
	}
	if p.HasCoupon {
		biz["has_coupon"] = "true"
	}
	for k, v := range p.Extra {
		biz[k] = v
	}

	resp, err := c.do(ctx, c.buildParams(biz))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var entries []json.RawMessage
	if resp.ResultList != nil {
		entries = resp.ResultList.MapData
	}
	out := &SearchResult{PageNo: p.PageNo, PageSize: p.PageSize}
	if resp.TotalResults != nil && *resp.TotalResults != "" {
		if n, err := strconv.ParseInt(resp.TotalResults.String(), 10, 64); err == nil {
			out.TotalResults = &n
		}
	}
	for _, entry := range entries {
		if len(entry) == 0 || string(entry) == "null" {
			continue
		}
		it, err := ParseItem(entry, keyword)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("search %q page %d: %w", keyword, p.PageNo, err)
		}
		out.Items = append(out.Items, it)
	}
	if len(out.Items) > p.PageSize {
		c.log.Warn("router returned more items than requested; truncating",
			"keyword", keyword, "page_no", p.PageNo, "page_size", p.PageSize, "returned", len(out.Items))
		out.Items = out.Items[:p.PageSize]
	}
	span.SetAttributes(attribute.Int("taobao.items", len(out.Items)))
	c.log.Debug("search page fetched", "keyword", keyword, "page_no", p.PageNo, "items", len(out.Items))
	return out, nil
}

// FetchMany walks pages 1..Pages and stops early on an empty or short page.
// Consecutive requests are spaced at least Delay apart.
func (c *Client) FetchMany(ctx context.Context, keyword string, opts FetchOptions) ([]*types.Item, error) {
	if opts.Pages < 1 {
		return nil, apierr.InvalidArgument("invalid_pages", "pages must be >= 1, got %d", opts.Pages)
	}
	limit := rate.Inf
	if opts.Delay > 0 {
		limit = rate.Every(opts.Delay)
	}
	limiter := rate.NewLimiter(limit, 1)

	var collected []*types.Item
	for page := 1; page <= opts.Pages; page++ {
		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}
		res, err := c.Search(ctx, SearchParams{
			Keyword:   keyword,
			PageNo:    page,
			PageSize:  opts.PageSize,
			HasCoupon: opts.HasCoupon,
			Sort:      opts.Sort,
		})
		if err != nil {
			return nil, err
		}
		if len(res.Items) == 0 {
			break
		}
		collected = append(collected, res.Items...)
		if len(res.Items) < opts.PageSize {
			break
		}
	}
	return collected, nil
}

func (c *Client) do(ctx context.Context, params map[string]string) (*materialResponse, error) {
	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, apierr.Config("invalid_endpoint", "build request for %s: %v", c.cfg.Endpoint, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, apierr.Transport("taobao_request", fmt.Errorf("taobao request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, apierr.Transport("taobao_read", fmt.Errorf("read taobao response: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := body
		if len(snippet) > 1024 {
			snippet = snippet[:1024]
		}
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(snippet)}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, apierr.Format("invalid_response", "decode taobao response: %v", err)
	}
	if env.Error != nil {
		code, _ := strconv.Atoi(env.Error.Code.String())
		return nil, &APIError{
			Code:    code,
			Msg:     env.Error.Msg,
			SubCode: env.Error.SubCode,
			SubMsg:  env.Error.SubMsg,
		}
	}
	if env.Response == nil {
		return nil, apierr.Format("invalid_response", "taobao response has neither %s nor error_response", responseKey)
	}
	return env.Response, nil
}
