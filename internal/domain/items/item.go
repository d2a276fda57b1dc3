package items

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Item is one normalized marketplace listing. ItemID is the marketplace's own id.
type Item struct {
	ItemID         int64               `gorm:"column:item_id;primaryKey;autoIncrement:false" json:"item_id"`
	Category       string              `gorm:"column:category;size:128;not null;index" json:"category"`
	Title          string              `gorm:"column:title;size:512;not null" json:"title"`
	ImageURL       string              `gorm:"column:image_url;size:1024" json:"image_url,omitempty"`
	Price          decimal.NullDecimal `gorm:"column:price;type:decimal(12,2)" json:"price"`
	CouponPrice    decimal.NullDecimal `gorm:"column:coupon_price;type:decimal(12,2)" json:"coupon_price"`
	CommissionRate decimal.NullDecimal `gorm:"column:commission_rate;type:decimal(8,4)" json:"commission_rate"`
	MonthlySales   *int64              `gorm:"column:monthly_sales" json:"monthly_sales,omitempty"`
	ShopScore      decimal.NullDecimal `gorm:"column:shop_score;type:decimal(12,4)" json:"shop_score"`
	ShopTitle      string              `gorm:"column:shop_title;size:255" json:"shop_title,omitempty"`
	ItemURL        string              `gorm:"column:item_url;size:2048" json:"item_url,omitempty"`
	CouponURL      string              `gorm:"column:coupon_url;size:2048" json:"coupon_url,omitempty"`
	CouponInfo     string              `gorm:"column:coupon_info;size:512" json:"coupon_info,omitempty"`
	Tags           datatypes.JSON      `gorm:"column:tags" json:"tags"`
	Raw            datatypes.JSON      `gorm:"column:raw" json:"raw"`
	FetchedAt      time.Time           `gorm:"column:fetched_at;not null;index" json:"fetched_at"`
	CreatedAt      time.Time           `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt      time.Time           `gorm:"column:updated_at;not null" json:"updated_at"`
}

func (Item) TableName() string { return "item" }

// EffectivePrice is the coupon price when known, otherwise the list price.
func (it *Item) EffectivePrice() decimal.NullDecimal {
	if it.CouponPrice.Valid {
		return it.CouponPrice
	}
	return it.Price
}
