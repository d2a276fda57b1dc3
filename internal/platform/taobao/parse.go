package taobao

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	types "github.com/yungbote/hotflow/internal/domain"
	"github.com/yungbote/hotflow/internal/platform/apierr"
)

var hundred = decimal.NewFromInt(100)

// ParseItem maps one map_data entry to an Item tagged with keyword. item_id and
// a title are required; optional numeric fields that are present must parse.
func ParseItem(raw json.RawMessage, keyword string) (*types.Item, error) {
	var md mapData
	if err := json.Unmarshal(raw, &md); err != nil {
		return nil, apierr.Format("invalid_item", "decode map_data entry: %v", err)
	}

	idText := md.ItemID.String()
	if idText == "" {
		return nil, apierr.Format("invalid_item", "map_data entry is missing item_id")
	}
	itemID, err := strconv.ParseInt(idText, 10, 64)
	if err != nil || itemID <= 0 {
		return nil, apierr.Format("invalid_item", "map_data item_id %q is not a positive integer", idText)
	}

	title := firstNonEmpty(md.ShortTitle.String(), md.Title.String())
	if title == "" {
		return nil, apierr.Format("invalid_item", "item %d is missing a title", itemID)
	}

	price, err := optDecimal("zk_final_price", md.ZkFinalPrice)
	if err != nil {
		return nil, itemErr(itemID, err)
	}
	reserve, err := optDecimal("reserve_price", md.ReservePrice)
	if err != nil {
		return nil, itemErr(itemID, err)
	}
	couponAmount, err := optDecimal("coupon_amount", md.CouponAmount)
	if err != nil {
		return nil, itemErr(itemID, err)
	}
	commission, err := optDecimal("commission_rate", md.CommissionRate)
	if err != nil {
		return nil, itemErr(itemID, err)
	}
	shopScore, err := optDecimal("shop_dsr", md.ShopDsr)
	if err != nil {
		return nil, itemErr(itemID, err)
	}
	salesText := firstNonEmpty(md.Volume.String(), md.MonthSales.String())
	sales, err := optInt("volume", flexString(salesText))
	if err != nil {
		return nil, itemErr(itemID, err)
	}

	couponPrice := price
	if price.Valid && couponAmount.Valid {
		cp := price.Decimal.Sub(couponAmount.Decimal)
		if cp.IsNegative() {
			cp = decimal.Zero
		}
		couponPrice = decimal.NewNullDecimal(cp)
	}
	listPrice := reserve
	if !listPrice.Valid {
		listPrice = price
	}
	if commission.Valid {
		commission = decimal.NewNullDecimal(commission.Decimal.Div(hundred))
	}

	tags, err := json.Marshal([]string{keyword})
	if err != nil {
		return nil, err
	}

	return &types.Item{
		ItemID:         itemID,
		Category:       keyword,
		Title:          title,
		ImageURL:       normalizeURL(md.PictURL.String()),
		Price:          listPrice,
		CouponPrice:    couponPrice,
		CommissionRate: commission,
		MonthlySales:   sales,
		ShopScore:      shopScore,
		ShopTitle:      md.ShopTitle.String(),
		ItemURL:        normalizeURL(firstNonEmpty(md.URL.String(), md.ItemURL.String())),
		CouponURL:      normalizeURL(firstNonEmpty(md.CouponShareURL.String(), md.CouponClickURL.String())),
		CouponInfo:     couponSummary(md),
		Tags:           datatypes.JSON(tags),
		Raw:            datatypes.JSON(append([]byte(nil), raw...)),
	}, nil
}

// couponSummary renders "满X减Y；券有效期至Z", falling back to coupon_info.
func couponSummary(md mapData) string {
	var parts []string
	if md.CouponStartFee != "" && md.CouponAmount != "" {
		parts = append(parts, fmt.Sprintf("满%s减%s", md.CouponStartFee, md.CouponAmount))
	}
	if md.CouponEndTime != "" {
		parts = append(parts, "券有效期至"+md.CouponEndTime.String())
	}
	if len(parts) == 0 {
		return md.CouponInfo.String()
	}
	return strings.Join(parts, "；")
}

func optDecimal(field string, v flexString) (decimal.NullDecimal, error) {
	if v == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("%s %q is not a number", field, v)
	}
	return decimal.NewNullDecimal(d), nil
}

func optInt(field string, v flexString) (*int64, error) {
	if v == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return nil, fmt.Errorf("%s %q is not a number", field, v)
	}
	n := d.IntPart()
	return &n, nil
}

func itemErr(itemID int64, err error) error {
	return apierr.Format("invalid_item", "item %d: %v", itemID, err)
}

// Protocol-relative links ("//img.alicdn.com/...") are common in map_data.
func normalizeURL(u string) string {
	if strings.HasPrefix(u, "//") {
		return "https:" + u
	}
	return u
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
