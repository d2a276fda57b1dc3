package prompts

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/shopspring/decimal"

	types "github.com/yungbote/hotflow/internal/domain"
)

const (
	unknownValue      = "未知"
	defaultShop       = "优质店铺"
	defaultCouponInfo = "下单立减, 先到先得"
	fallbackFeatures  = "口碑好, 性价比高"
)

var promptTemplate = template.Must(template.New("creative").Parse(
	"你是一名擅长电商种草文案的写手, 擅长用真实体验打动消费者。\n\n" +
		"请根据以下商品信息, 为每个平台生成 {{.Variants}} 条不同风格的推广文案。\n\n" +
		"输出要求:\n" +
		"1. 每个平台输出一个数组, 其中包含 {{.Variants}} 条文案字符串。\n" +
		"2. 结果必须是 JSON 格式, 字段名使用平台英文标识: {{.PlatformKeys}}。\n" +
		"3. 文案需要自然真实, 强调省钱、使用体验和复购感受。\n" +
		"4. 合理添加 emoji, 但避免过度使用。\n" +
		"{{- if .PlatformGuide}}\n5. 各平台风格:{{range .PlatformGuide}}\n   - {{.}}{{end}}{{end}}\n\n" +
		"商品信息:\n" +
		"- 品类: {{.Category}}\n" +
		"- 名称: {{.Title}}\n" +
		"- 券后价: {{.CouponPrice}}\n" +
		"- 原价: {{.Price}}\n" +
		"- 月销量: {{.MonthlySales}}\n" +
		"- 店铺: {{.ShopTitle}}\n" +
		"- 核心卖点: {{.Features}}\n" +
		"- 优惠信息: {{.CouponInfo}}\n\n" +
		"如果信息缺失, 请合理发挥但不要捏造夸张数据。",
))

type promptData struct {
	Variants      int
	PlatformKeys  string
	PlatformGuide []string
	Category      string
	Title         string
	CouponPrice   string
	Price         string
	MonthlySales  string
	ShopTitle     string
	Features      string
	CouponInfo    string
}

// Build renders the copywriting prompt for item. catalog may be nil, in which
// case no per-platform guidance is included.
func Build(item *types.Item, platforms []string, variants int, catalog *Catalog) (string, error) {
	if item == nil {
		return "", fmt.Errorf("build prompt: nil item")
	}
	data := promptData{
		Variants:     variants,
		PlatformKeys: strings.Join(platforms, ", "),
		Category:     item.Category,
		Title:        item.Title,
		CouponPrice:  FormatPrice(item.EffectivePrice()),
		Price:        FormatPrice(item.Price),
		MonthlySales: FormatSales(item.MonthlySales),
		ShopTitle:    orDefault(item.ShopTitle, defaultShop),
		Features:     DeriveFeatures(item),
		CouponInfo:   orDefault(item.CouponInfo, defaultCouponInfo),
	}
	if catalog != nil {
		for _, key := range platforms {
			line := key + ": " + catalog.Label(key)
			if p, ok := catalog.Lookup(key); ok && p.Hint != "" {
				line += ", " + p.Hint
			}
			data.PlatformGuide = append(data.PlatformGuide, line)
		}
	}
	var b strings.Builder
	if err := promptTemplate.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return b.String(), nil
}

func FormatPrice(v decimal.NullDecimal) string {
	if !v.Valid {
		return unknownValue
	}
	return "¥" + v.Decimal.StringFixed(2)
}

// FormatSales renders 12345 as "1.2万+".
func FormatSales(v *int64) string {
	if v == nil {
		return unknownValue
	}
	if *v >= 10000 {
		return decimal.NewFromInt(*v).Div(decimal.NewFromInt(10000)).StringFixed(1) + "万+"
	}
	return strconv.FormatInt(*v, 10)
}

// DeriveFeatures summarizes selling points from the raw listing and tags.
func DeriveFeatures(item *types.Item) string {
	var raw map[string]any
	if len(item.Raw) > 0 {
		_ = json.Unmarshal(item.Raw, &raw)
	}

	var features []string
	if h := firstString(raw, "item_description", "item_short_title"); h != "" {
		features = append(features, h)
	}
	if v := firstString(raw, "provcity"); v != "" {
		features = append(features, "发货地 "+v)
	}
	if v := firstString(raw, "level_one_category_name"); v != "" {
		features = append(features, "类目："+v)
	}
	if n := countImages(raw["small_images"]); n > 0 {
		features = append(features, fmt.Sprintf("精选图%d张", n))
	}
	if tags := itemTags(item); len(tags) > 0 {
		features = append(features, "#"+strings.Join(tags, " #"))
	}
	if len(features) == 0 {
		return fallbackFeatures
	}
	return strings.Join(features, "；")
}

// small_images arrives either as {"string": [...]} or as a bare list.
func countImages(v any) int {
	switch t := v.(type) {
	case []any:
		return len(t)
	case map[string]any:
		if list, ok := t["string"].([]any); ok {
			return len(list)
		}
	}
	return 0
}

func itemTags(item *types.Item) []string {
	if len(item.Tags) == 0 {
		return nil
	}
	var tags []string
	if err := json.Unmarshal(item.Tags, &tags); err != nil {
		return nil
	}
	out := tags[:0]
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func firstString(raw map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := raw[k].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
