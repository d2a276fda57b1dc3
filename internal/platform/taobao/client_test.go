package taobao

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yungbote/hotflow/internal/platform/apierr"
	"github.com/yungbote/hotflow/internal/platform/logger"
)

type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
	}
}

func testConfig() Config {
	return Config{
		AppKey:    "123456",
		AppSecret: "abcdefg",
		AdzoneID:  "987654",
		Endpoint:  "http://router.test/router/rest",
		Timeout:   2 * time.Second,
	}
}

var fixedNow = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }

func pageBody(start, n int) string {
	entries := make([]map[string]any, 0, n)
	for i := 0; i < n; i++ {
		entries = append(entries, map[string]any{
			"item_id":        fmt.Sprintf("%d", start+i),
			"title":          fmt.Sprintf("商品 %d", start+i),
			"zk_final_price": "19.90",
			"volume":         100 + i,
		})
	}
	b, _ := json.Marshal(map[string]any{
		"tbk_dg_material_optional_response": map[string]any{
			"total_results": 1000,
			"result_list":   map[string]any{"map_data": entries},
		},
	})
	return string(b)
}

func TestSignMatchesReferenceVector(t *testing.T) {
	params := map[string]string{
		"app_key":   "123456",
		"method":    "taobao.test",
		"timestamp": "2024-01-01 00:00:00",
		"format":    "json",
	}
	base := "abcdefg" + "app_key123456" + "formatjson" + "methodtaobao.test" + "timestamp2024-01-01 00:00:00" + "abcdefg"
	sum := md5.Sum([]byte(base))
	want := strings.ToUpper(hex.EncodeToString(sum[:]))

	got := Sign(params, "abcdefg")
	if got != want {
		t.Fatalf("Sign: want=%s got=%s", want, got)
	}
	if got != "7B7031BD85FC93603CE0D4F2832A3423" {
		t.Fatalf("Sign: unexpected digest %s", got)
	}

	params["sign"] = "ignored"
	if again := Sign(params, "abcdefg"); again != want {
		t.Fatalf("Sign must skip the sign key: got=%s", again)
	}
}

func TestSignSkipsEmptyValues(t *testing.T) {
	params := map[string]string{
		"app_key":   "123456",
		"method":    "taobao.test",
		"timestamp": "2024-01-01 00:00:00",
		"format":    "json",
	}
	want := Sign(params, "abcdefg")

	params["cat"] = ""
	params["has_coupon"] = ""
	if got := Sign(params, "abcdefg"); got != want {
		t.Fatalf("Sign with empty values: want=%s got=%s", want, got)
	}
	if want != "7B7031BD85FC93603CE0D4F2832A3423" {
		t.Fatalf("Sign: unexpected digest %s", want)
	}
}

func TestSearchSendsSignedRequest(t *testing.T) {
	client := &http.Client{Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		q := req.URL.Query()
		if req.Method != http.MethodGet {
			t.Fatalf("method=%s", req.Method)
		}
		if q.Get("method") != MethodMaterial {
			t.Fatalf("method param=%q", q.Get("method"))
		}
		if q.Get("q") != "抽纸" || q.Get("page_no") != "1" || q.Get("page_size") != "10" {
			t.Fatalf("unexpected business params: %v", q)
		}
		if q.Get("has_coupon") != "true" || q.Get("sort") != DefaultSort {
			t.Fatalf("unexpected filter params: %v", q)
		}
		if q.Get("timestamp") != "2024-01-01 08:00:00" {
			t.Fatalf("timestamp=%q", q.Get("timestamp"))
		}
		params := map[string]string{}
		for k := range q {
			params[k] = q.Get(k)
		}
		if q.Get("sign") != Sign(params, "abcdefg") {
			t.Fatalf("signature mismatch")
		}
		return jsonResponse(http.StatusOK, pageBody(1, 10)), nil
	})}

	c, err := NewWithHTTPClient(logger.Nop(), testConfig(), client, fixedNow)
	if err != nil {
		t.Fatalf("NewWithHTTPClient: %v", err)
	}
	res, err := c.Search(context.Background(), SearchParams{Keyword: " 抽纸 ", PageNo: 1, PageSize: 10, HasCoupon: true})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res.Items) != 10 {
		t.Fatalf("items: want=10 got=%d", len(res.Items))
	}
	if res.TotalResults == nil || *res.TotalResults != 1000 {
		t.Fatalf("total_results: got=%v", res.TotalResults)
	}
	if res.Items[0].Category != "抽纸" {
		t.Fatalf("category=%q", res.Items[0].Category)
	}
}

func TestSearchTruncatesToPageSize(t *testing.T) {
	client := &http.Client{Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, pageBody(1, 7)), nil
	})}
	c, err := NewWithHTTPClient(logger.Nop(), testConfig(), client, fixedNow)
	if err != nil {
		t.Fatalf("NewWithHTTPClient: %v", err)
	}
	res, err := c.Search(context.Background(), SearchParams{Keyword: "猫砂", PageNo: 1, PageSize: 5})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res.Items) != 5 {
		t.Fatalf("items: want=5 got=%d", len(res.Items))
	}
}

func TestSearchErrors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "error_response",
			status: http.StatusOK,
			body:   `{"error_response":{"code":27,"msg":"Invalid session","sub_code":"invalid-sessionkey","sub_msg":"SessionKey非法"}}`,
			check: func(t *testing.T, err error) {
				var apiErr *APIError
				if !errors.As(err, &apiErr) {
					t.Fatalf("want *APIError, got %T: %v", err, err)
				}
				if apiErr.Code != 27 || apiErr.SubCode != "invalid-sessionkey" {
					t.Fatalf("unexpected api error: %+v", apiErr)
				}
				if !apierr.Is(err, apierr.KindTransport) {
					t.Fatalf("kind=%q", apierr.KindOf(err))
				}
			},
		},
		{
			name:   "http_status",
			status: http.StatusBadGateway,
			body:   "upstream down",
			check: func(t *testing.T, err error) {
				var httpErr *HTTPError
				if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusBadGateway {
					t.Fatalf("want *HTTPError 502, got %T: %v", err, err)
				}
			},
		},
		{
			name:   "not_json",
			status: http.StatusOK,
			body:   "<html>maintenance</html>",
			check: func(t *testing.T, err error) {
				if !apierr.Is(err, apierr.KindFormat) {
					t.Fatalf("want format error, got %v", err)
				}
			},
		},
		{
			name:   "unknown_envelope",
			status: http.StatusOK,
			body:   `{"something_else":{}}`,
			check: func(t *testing.T, err error) {
				if !apierr.Is(err, apierr.KindFormat) {
					t.Fatalf("want format error, got %v", err)
				}
			},
		},
		{
			name:   "missing_item_id",
			status: http.StatusOK,
			body:   `{"tbk_dg_material_optional_response":{"result_list":{"map_data":[{"title":"无ID商品"}]}}}`,
			check: func(t *testing.T, err error) {
				if !apierr.Is(err, apierr.KindFormat) {
					t.Fatalf("want format error, got %v", err)
				}
			},
		},
		{
			name:   "bad_price",
			status: http.StatusOK,
			body:   `{"tbk_dg_material_optional_response":{"result_list":{"map_data":[{"item_id":1,"title":"x","zk_final_price":"abc"}]}}}`,
			check: func(t *testing.T, err error) {
				if !apierr.Is(err, apierr.KindFormat) {
					t.Fatalf("want format error, got %v", err)
				}
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := &http.Client{Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
				return jsonResponse(tc.status, tc.body), nil
			})}
			c, err := NewWithHTTPClient(logger.Nop(), testConfig(), client, fixedNow)
			if err != nil {
				t.Fatalf("NewWithHTTPClient: %v", err)
			}
			_, err = c.Search(context.Background(), SearchParams{Keyword: "洗衣液", PageNo: 1, PageSize: 10})
			if err == nil {
				t.Fatalf("expected error")
			}
			tc.check(t, err)
		})
	}
}

func TestSearchTransportFailure(t *testing.T) {
	client := &http.Client{Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})}
	c, err := NewWithHTTPClient(logger.Nop(), testConfig(), client, fixedNow)
	if err != nil {
		t.Fatalf("NewWithHTTPClient: %v", err)
	}
	_, err = c.Search(context.Background(), SearchParams{Keyword: "狗粮", PageNo: 1, PageSize: 10})
	if !apierr.Is(err, apierr.KindTransport) {
		t.Fatalf("want transport error, got %v", err)
	}
}

func TestSearchValidatesArguments(t *testing.T) {
	c, err := New(logger.Nop(), testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, p := range []SearchParams{
		{Keyword: "", PageNo: 1, PageSize: 10},
		{Keyword: "抽纸", PageNo: 0, PageSize: 10},
		{Keyword: "抽纸", PageNo: 1, PageSize: 0},
		{Keyword: "抽纸", PageNo: 1, PageSize: 101},
	} {
		if _, err := c.Search(context.Background(), p); !apierr.Is(err, apierr.KindInvalidArgument) {
			t.Fatalf("params %+v: want invalid argument, got %v", p, err)
		}
	}
}

func TestNewRequiresCredentials(t *testing.T) {
	cfg := testConfig()
	cfg.AppSecret = " "
	_, err := New(logger.Nop(), cfg)
	if !apierr.Is(err, apierr.KindConfig) {
		t.Fatalf("want config error, got %v", err)
	}
	if !strings.Contains(err.Error(), "TB_APP_SECRET") {
		t.Fatalf("error should name the variable: %v", err)
	}
}

func TestFetchManyStopsOnShortPage(t *testing.T) {
	var calls int32
	client := &http.Client{Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			return jsonResponse(http.StatusOK, pageBody(1, 4)), nil
		}
		return jsonResponse(http.StatusOK, pageBody(100, 2)), nil
	})}
	c, err := NewWithHTTPClient(logger.Nop(), testConfig(), client, fixedNow)
	if err != nil {
		t.Fatalf("NewWithHTTPClient: %v", err)
	}
	items, err := c.FetchMany(context.Background(), "猫粮", FetchOptions{Pages: 5, PageSize: 4, Delay: time.Millisecond})
	if err != nil {
		t.Fatalf("FetchMany: %v", err)
	}
	if len(items) != 6 {
		t.Fatalf("items: want=6 got=%d", len(items))
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("requests: want=2 got=%d", got)
	}
}

func TestFetchManyStopsOnEmptyPage(t *testing.T) {
	var calls int32
	client := &http.Client{Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		atomic.AddInt32(&calls, 1)
		return jsonResponse(http.StatusOK, `{"tbk_dg_material_optional_response":{"total_results":0}}`), nil
	})}
	c, err := NewWithHTTPClient(logger.Nop(), testConfig(), client, fixedNow)
	if err != nil {
		t.Fatalf("NewWithHTTPClient: %v", err)
	}
	items, err := c.FetchMany(context.Background(), "猫粮", FetchOptions{Pages: 3, PageSize: 10})
	if err != nil {
		t.Fatalf("FetchMany: %v", err)
	}
	if len(items) != 0 || atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("want one request and no items, got items=%d calls=%d", len(items), calls)
	}
}
