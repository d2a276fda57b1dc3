package taobao

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

const responseKey = "tbk_dg_material_optional_response"

type envelope struct {
	Response *materialResponse `json:"tbk_dg_material_optional_response"`
	Error    *errorResponse    `json:"error_response"`
}

type errorResponse struct {
	Code    flexString `json:"code"`
	Msg     string     `json:"msg"`
	SubCode string     `json:"sub_code"`
	SubMsg  string     `json:"sub_msg"`
}

type materialResponse struct {
	TotalResults *flexString `json:"total_results"`
	ResultList   *struct {
		MapData []json.RawMessage `json:"map_data"`
	} `json:"result_list"`
	RequestID string `json:"request_id"`
}

// mapData holds the map_data fields that feed Item. Everything else stays in Item.Raw.
type mapData struct {
	ItemID         flexString `json:"item_id"`
	Title          flexString `json:"title"`
	ShortTitle     flexString `json:"short_title"`
	PictURL        flexString `json:"pict_url"`
	ZkFinalPrice   flexString `json:"zk_final_price"`
	ReservePrice   flexString `json:"reserve_price"`
	CouponAmount   flexString `json:"coupon_amount"`
	CouponStartFee flexString `json:"coupon_start_fee"`
	CouponEndTime  flexString `json:"coupon_end_time"`
	CouponInfo     flexString `json:"coupon_info"`
	CommissionRate flexString `json:"commission_rate"`
	Volume         flexString `json:"volume"`
	MonthSales     flexString `json:"month_sales"`
	ShopDsr        flexString `json:"shop_dsr"`
	ShopTitle      flexString `json:"shop_title"`
	URL            flexString `json:"url"`
	ItemURL        flexString `json:"item_url"`
	CouponShareURL flexString `json:"coupon_share_url"`
	CouponClickURL flexString `json:"coupon_click_url"`
}

// flexString accepts a JSON string, number, bool or null. The router is not
// consistent about quoting numeric fields.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(strings.TrimSpace(s))
		return nil
	case '{', '[':
		return fmt.Errorf("expected scalar, got %s", string(b[:1]))
	default:
		*f = flexString(string(b))
		return nil
	}
}

func (f flexString) String() string { return string(f) }
