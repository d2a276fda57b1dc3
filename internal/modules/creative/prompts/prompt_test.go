package prompts

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	types "github.com/yungbote/hotflow/internal/domain"
)

func sampleItem() *types.Item {
	sales := int64(23456)
	return &types.Item{
		ItemID:       1,
		Category:     "抽纸",
		Title:        "清风抽纸 24包",
		Price:        decimal.NewNullDecimal(decimal.RequireFromString("79.9")),
		CouponPrice:  decimal.NewNullDecimal(decimal.RequireFromString("69.9")),
		MonthlySales: &sales,
		ShopTitle:    "清风旗舰店",
		CouponInfo:   "满79减10",
		Tags:         datatypes.JSON(`["抽纸"]`),
		Raw:          datatypes.JSON(`{"provcity":"广东 江门","level_one_category_name":"家庭清洁","small_images":{"string":["a","b","c"]}}`),
	}
}

func TestBuildIncludesItemFacts(t *testing.T) {
	catalog, err := DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog: %v", err)
	}
	out, err := Build(sampleItem(), []string{"xiaohongshu", "weibo"}, 2, catalog)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for _, want := range []string{
		"清风抽纸 24包",
		"满79减10",
		"xiaohongshu, weibo",
		"¥69.90",
		"原价: ¥79.90",
		"2.3万+",
		"生成 2 条",
		"xiaohongshu: 小红书图文笔记",
		"发货地 广东 江门；类目：家庭清洁；精选图3张；#抽纸",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("prompt missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "zhihu") {
		t.Fatalf("prompt mentions an unrequested platform:\n%s", out)
	}
}

func TestBuildGuidesPlatformsOutsideCatalog(t *testing.T) {
	catalog, err := DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog: %v", err)
	}
	out, err := Build(sampleItem(), []string{"weibo", "bilibili"}, 1, catalog)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for _, want := range []string{
		"各平台风格",
		"weibo: 微博短文, 140字以内",
		"   - bilibili: bilibili",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("prompt missing %q:\n%s", want, out)
		}
	}
}

func TestBuildDefaultsForMissingFields(t *testing.T) {
	it := &types.Item{ItemID: 2, Category: "猫粮", Title: "猫粮"}
	out, err := Build(it, []string{"weibo"}, 1, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for _, want := range []string{"券后价: 未知", "月销量: 未知", "店铺: 优质店铺", "下单立减, 先到先得", "性价比"} {
		if !strings.Contains(out, want) {
			t.Fatalf("prompt missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "各平台风格") {
		t.Fatalf("guide rendered without a catalog")
	}
}

func TestCouponPriceFallsBackToPrice(t *testing.T) {
	it := &types.Item{ItemID: 3, Category: "洗衣液", Title: "洗衣液", Price: decimal.NewNullDecimal(decimal.RequireFromString("35"))}
	out, err := Build(it, []string{"weibo"}, 1, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !strings.Contains(out, "券后价: ¥35.00") {
		t.Fatalf("coupon price fallback missing:\n%s", out)
	}
}

func TestFormatSales(t *testing.T) {
	n := func(v int64) *int64 { return &v }
	cases := []struct {
		in   *int64
		want string
	}{
		{nil, "未知"},
		{n(0), "0"},
		{n(9999), "9999"},
		{n(10000), "1.0万+"},
		{n(156000), "15.6万+"},
	}
	for _, tc := range cases {
		if got := FormatSales(tc.in); got != tc.want {
			t.Fatalf("FormatSales: want=%q got=%q", tc.want, got)
		}
	}
}

func TestDeriveFeaturesFallback(t *testing.T) {
	got := DeriveFeatures(&types.Item{Raw: datatypes.JSON(`{}`)})
	if !strings.Contains(got, "性价比") {
		t.Fatalf("fallback features: %q", got)
	}
	got = DeriveFeatures(&types.Item{Raw: datatypes.JSON(`{"item_short_title":"柔韧不掉屑","small_images":["x"]}`)})
	if got != "柔韧不掉屑；精选图1张" {
		t.Fatalf("features: %q", got)
	}
}
