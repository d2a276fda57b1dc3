package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/hotflow/internal/domain"
)

// NewItem builds an unsaved item with plausible field values.
func NewItem(id int64, category string, fetchedAt time.Time) *types.Item {
	sales := int64(1200)
	return &types.Item{
		ItemID:         id,
		Category:       category,
		Title:          fmt.Sprintf("%s 热卖款 #%d", category, id),
		Price:          decimal.NewNullDecimal(decimal.RequireFromString("79.90")),
		CouponPrice:    decimal.NewNullDecimal(decimal.RequireFromString("69.90")),
		CommissionRate: decimal.NewNullDecimal(decimal.RequireFromString("0.15")),
		MonthlySales:   &sales,
		ShopTitle:      "测试旗舰店",
		CouponInfo:     "满79减10",
		Tags:           datatypes.JSON(fmt.Sprintf("[%q]", category)),
		Raw:            datatypes.JSON(`{}`),
		FetchedAt:      fetchedAt.UTC(),
	}
}

func SeedItem(tb testing.TB, ctx context.Context, tx *gorm.DB, id int64, category string, fetchedAt time.Time) *types.Item {
	tb.Helper()
	it := NewItem(id, category, fetchedAt)
	if err := tx.WithContext(ctx).Create(it).Error; err != nil {
		tb.Fatalf("seed item: %v", err)
	}
	return it
}

func SeedCreative(tb testing.TB, ctx context.Context, tx *gorm.DB, itemID int64, platform string, variant int, createdAt time.Time) *types.Creative {
	tb.Helper()
	c := &types.Creative{
		ID:        uuid.New(),
		ItemID:    itemID,
		Platform:  platform,
		Variant:   variant,
		Content:   fmt.Sprintf("%s 文案 %d", platform, variant),
		Model:     "gpt-4o-mini",
		Provider:  "openai",
		Metadata:  datatypes.JSON(`{}`),
		CreatedAt: createdAt.UTC(),
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed creative: %v", err)
	}
	return c
}
