package services

import (
	"context"
	"fmt"
	"time"

	"github.com/yungbote/hotflow/internal/data/repos"
	types "github.com/yungbote/hotflow/internal/domain"
	"github.com/yungbote/hotflow/internal/pkg/dbctx"
	"github.com/yungbote/hotflow/internal/platform/apierr"
	"github.com/yungbote/hotflow/internal/platform/logger"
	"github.com/yungbote/hotflow/internal/platform/taobao"
)

// ItemSource is the marketplace side of a fetch.
type ItemSource interface {
	FetchMany(ctx context.Context, keyword string, opts taobao.FetchOptions) ([]*types.Item, error)
}

type FetchParams struct {
	Keywords  []string
	Pages     int
	PageSize  int
	Delay     time.Duration
	HasCoupon bool
	Sort      string
}

type KeywordResult struct {
	Keyword string
	Fetched int
	Stored  int
}

type FetchResult struct {
	Keywords []KeywordResult
	Stored   int
}

type FetchService interface {
	// FetchAndStore fetches every keyword in order and upserts the results.
	// The first error aborts; keywords already stored stay stored.
	FetchAndStore(ctx context.Context, p FetchParams) (*FetchResult, error)
}

type fetchService struct {
	log    *logger.Logger
	source ItemSource
	items  repos.ItemRepo
}

func NewFetchService(baseLog *logger.Logger, source ItemSource, items repos.ItemRepo) FetchService {
	return &fetchService{
		log:    baseLog.With("service", "FetchService"),
		source: source,
		items:  items,
	}
}

func (s *fetchService) FetchAndStore(ctx context.Context, p FetchParams) (*FetchResult, error) {
	keywords := normalizeKeywords(p.Keywords)
	if len(keywords) == 0 {
		return nil, apierr.InvalidArgument("no_keywords", "at least one keyword is required")
	}
	if p.Pages < 1 {
		return nil, apierr.InvalidArgument("invalid_pages", "--pages must be >= 1, got %d", p.Pages)
	}
	if p.PageSize < 1 {
		return nil, apierr.InvalidArgument("invalid_page_size", "--page-size must be >= 1, got %d", p.PageSize)
	}
	if p.Delay < 0 {
		return nil, apierr.InvalidArgument("invalid_delay", "--delay must not be negative")
	}

	out := &FetchResult{}
	for _, kw := range keywords {
		start := time.Now()
		fetched, err := s.source.FetchMany(ctx, kw, taobao.FetchOptions{
			Pages:     p.Pages,
			PageSize:  p.PageSize,
			Delay:     p.Delay,
			HasCoupon: p.HasCoupon,
			Sort:      p.Sort,
		})
		if err != nil {
			return out, fmt.Errorf("fetch %q: %w", kw, err)
		}
		res := KeywordResult{Keyword: kw, Fetched: len(fetched)}
		if len(fetched) == 0 {
			s.log.Warn("no items returned", "keyword", kw)
			out.Keywords = append(out.Keywords, res)
			continue
		}

		stored, err := s.items.Upsert(dbctx.Context{Ctx: ctx}, fetched)
		if err != nil {
			return out, fmt.Errorf("store %q: %w", kw, err)
		}
		res.Stored = stored
		out.Keywords = append(out.Keywords, res)
		out.Stored += stored
		s.log.Info("keyword stored",
			"keyword", kw,
			"fetched", len(fetched),
			"stored", stored,
			"took_ms", time.Since(start).Milliseconds(),
		)
	}
	return out, nil
}

func normalizeKeywords(in []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, kw := range in {
		kw = taobao.NormalizeKeyword(kw)
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		out = append(out, kw)
	}
	return out
}
