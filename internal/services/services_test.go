package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/yungbote/hotflow/internal/data/repos"
	"github.com/yungbote/hotflow/internal/data/repos/testutil"
	types "github.com/yungbote/hotflow/internal/domain"
	"github.com/yungbote/hotflow/internal/modules/creative"
	"github.com/yungbote/hotflow/internal/pkg/dbctx"
	"github.com/yungbote/hotflow/internal/platform/apierr"
	"github.com/yungbote/hotflow/internal/platform/taobao"
)

type fakeSource struct {
	perKeyword map[string]int
	err        error
	calls      []string
}

func (f *fakeSource) FetchMany(ctx context.Context, keyword string, opts taobao.FetchOptions) ([]*types.Item, error) {
	f.calls = append(f.calls, keyword)
	if f.err != nil {
		return nil, f.err
	}
	n := f.perKeyword[keyword]
	if n > opts.PageSize*opts.Pages {
		n = opts.PageSize * opts.Pages
	}
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	out := make([]*types.Item, 0, n)
	for i := 0; i < n; i++ {
		id := int64(len(keyword)*1000 + i + 1)
		out = append(out, testutil.NewItem(id, keyword, base.Add(time.Duration(i)*time.Second)))
	}
	return out, nil
}

type fakeWriter struct {
	failFor map[int64]error
	calls   []int64
}

func (f *fakeWriter) Generate(ctx context.Context, item *types.Item, opts creative.GenerateOptions) ([]*types.Creative, error) {
	f.calls = append(f.calls, item.ItemID)
	if err := f.failFor[item.ItemID]; err != nil {
		return nil, err
	}
	platforms := opts.Platforms
	if len(platforms) == 0 {
		platforms = []string{"xiaohongshu", "weibo", "zhihu"}
	}
	var out []*types.Creative
	for _, p := range platforms {
		for v := 1; v <= opts.Variants; v++ {
			out = append(out, &types.Creative{
				ItemID:   item.ItemID,
				Platform: p,
				Variant:  v,
				Content:  fmt.Sprintf("%s-%d", p, v),
			})
		}
	}
	return out, nil
}

func TestFetchAndStore(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	itemRepo := repos.NewItemRepo(db, log)
	src := &fakeSource{perKeyword: map[string]int{"抽纸": 10, "猫砂": 0}}
	svc := NewFetchService(log, src, itemRepo)

	res, err := svc.FetchAndStore(context.Background(), FetchParams{
		Keywords: []string{"抽纸", " 抽纸", "猫砂"},
		Pages:    1,
		PageSize: 10,
	})
	if err != nil {
		t.Fatalf("FetchAndStore: %v", err)
	}
	if res.Stored != 10 || len(res.Keywords) != 2 {
		t.Fatalf("result=%+v", res)
	}
	if len(src.calls) != 2 {
		t.Fatalf("duplicate keyword fetched twice: %v", src.calls)
	}
	n, err := itemRepo.Count(dbctx.Context{Ctx: context.Background()}, nil)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 10 {
		t.Fatalf("rows: want=10 got=%d", n)
	}
}

func TestFetchAndStoreValidatesAndPropagates(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	svc := NewFetchService(log, &fakeSource{}, repos.NewItemRepo(db, log))
	_, err := svc.FetchAndStore(context.Background(), FetchParams{Keywords: []string{"抽纸"}, Pages: 0, PageSize: 10})
	if !apierr.Is(err, apierr.KindInvalidArgument) {
		t.Fatalf("want invalid argument, got %v", err)
	}
	_, err = svc.FetchAndStore(context.Background(), FetchParams{Keywords: []string{" "}, Pages: 1, PageSize: 10})
	if !apierr.Is(err, apierr.KindInvalidArgument) {
		t.Fatalf("want invalid argument for blank keywords, got %v", err)
	}

	boom := &taobao.APIError{Code: 15, Msg: "Remote service error"}
	svc = NewFetchService(log, &fakeSource{err: boom}, repos.NewItemRepo(db, log))
	_, err = svc.FetchAndStore(context.Background(), FetchParams{Keywords: []string{"抽纸"}, Pages: 1, PageSize: 10})
	if !errors.Is(err, boom) || !apierr.Is(err, apierr.KindTransport) {
		t.Fatalf("want wrapped api error, got %v", err)
	}
}

func TestGenerateAndStoreNewestItem(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	ctx := context.Background()
	itemRepo := repos.NewItemRepo(db, log)
	creativeRepo := repos.NewCreativeRepo(db, log)

	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := 1; i <= 3; i++ {
		testutil.SeedItem(t, ctx, db, int64(i), "抽纸", base.Add(time.Duration(i)*time.Minute))
	}

	w := &fakeWriter{}
	svc := NewCreativeService(db, log, w, itemRepo, creativeRepo)
	res, err := svc.GenerateAndStore(ctx, GenerateParams{Limit: 1, Variants: 2})
	if err != nil {
		t.Fatalf("GenerateAndStore: %v", err)
	}
	if res.Items != 1 || len(res.Creatives) != 6 || len(res.Platforms()) != 3 {
		t.Fatalf("result: items=%d creatives=%d platforms=%v", res.Items, len(res.Creatives), res.Platforms())
	}
	if len(w.calls) != 1 || w.calls[0] != 3 {
		t.Fatalf("should target the newest item, got %v", w.calls)
	}
	n, err := creativeRepo.CountByItem(dbctx.Context{Ctx: ctx}, 3)
	if err != nil {
		t.Fatalf("CountByItem: %v", err)
	}
	if n != 6 {
		t.Fatalf("rows: want=6 got=%d", n)
	}
}

func TestGenerateAndStoreAllOrNothingPerItem(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	ctx := context.Background()
	itemRepo := repos.NewItemRepo(db, log)
	creativeRepo := repos.NewCreativeRepo(db, log)

	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	testutil.SeedItem(t, ctx, db, 10, "猫粮", base)
	testutil.SeedItem(t, ctx, db, 20, "猫粮", base.Add(time.Minute))

	bad := &creative.FormatError{Reason: "not valid JSON"}
	w := &fakeWriter{failFor: map[int64]error{10: bad}}
	svc := NewCreativeService(db, log, w, itemRepo, creativeRepo)

	res, err := svc.GenerateAndStore(ctx, GenerateParams{Limit: 5, Variants: 1, Platforms: []string{"weibo"}})
	if !apierr.Is(err, apierr.KindFormat) {
		t.Fatalf("want format error, got %v", err)
	}
	if res == nil || res.Items != 1 {
		t.Fatalf("first item should have completed, got %+v", res)
	}
	if n, _ := creativeRepo.CountByItem(dbctx.Context{Ctx: ctx}, 20); n != 1 {
		t.Fatalf("item 20 rows: want=1 got=%d", n)
	}
	if n, _ := creativeRepo.CountByItem(dbctx.Context{Ctx: ctx}, 10); n != 0 {
		t.Fatalf("item 10 rows: want=0 got=%d", n)
	}
}

func TestGenerateAndStoreSelection(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	ctx := context.Background()
	testutil.SeedItem(t, ctx, db, 5, "狗粮", time.Now())

	w := &fakeWriter{}
	svc := NewCreativeService(db, log, w, repos.NewItemRepo(db, log), repos.NewCreativeRepo(db, log))

	_, err := svc.GenerateAndStore(ctx, GenerateParams{ItemIDs: []int64{5, 6}, Variants: 1})
	if !apierr.Is(err, apierr.KindInvalidArgument) {
		t.Fatalf("want invalid argument for unknown id, got %v", err)
	}
	res, err := svc.GenerateAndStore(ctx, GenerateParams{Categories: []string{"不存在"}, Limit: 1, Variants: 1})
	if err != nil {
		t.Fatalf("GenerateAndStore: %v", err)
	}
	if res.Items != 0 || len(w.calls) != 0 {
		t.Fatalf("no items expected, got %+v calls=%v", res, w.calls)
	}
	_, err = svc.GenerateAndStore(ctx, GenerateParams{Limit: 1, Variants: 0})
	if !apierr.Is(err, apierr.KindInvalidArgument) {
		t.Fatalf("want invalid argument for variants, got %v", err)
	}
}
