package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yungbote/hotflow/internal/platform/taobao"
	"github.com/yungbote/hotflow/internal/services"
)

func newFetchCmd(v *viper.Viper) *cobra.Command {
	var (
		keywords        []string
		pages           int
		pageSize        int
		delay           time.Duration
		includeNoCoupon bool
		sortBy          string
	)
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch items for keywords and store them",
		Args:  cobra.NoArgs,
		RunE: runE(v, func(s *session, cmd *cobra.Command) error {
			if len(keywords) == 0 {
				keywords = s.app.Cfg.Keywords
			}
			svc, err := s.app.FetchService()
			if err != nil {
				return err
			}
			res, err := svc.FetchAndStore(s.ctx, services.FetchParams{
				Keywords:  keywords,
				Pages:     pages,
				PageSize:  pageSize,
				Delay:     delay,
				HasCoupon: !includeNoCoupon,
				Sort:      sortBy,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stored %d items for %d keyword(s).\n", res.Stored, len(res.Keywords))
			return nil
		}),
	}
	f := cmd.Flags()
	f.StringArrayVar(&keywords, "keyword", nil, "search keyword (repeatable; default HOTFLOW_KEYWORDS)")
	f.IntVar(&pages, "pages", 1, "pages to fetch per keyword")
	f.IntVar(&pageSize, "page-size", 50, "items per page (max 100)")
	f.DurationVar(&delay, "delay", time.Second, "pause between page requests")
	f.BoolVar(&includeNoCoupon, "include-no-coupon", false, "also return items without a coupon")
	f.StringVar(&sortBy, "sort", taobao.DefaultSort, "marketplace sort order")
	return cmd
}
