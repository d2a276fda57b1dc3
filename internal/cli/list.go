package cli

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yungbote/hotflow/internal/data/repos"
	types "github.com/yungbote/hotflow/internal/domain"
	"github.com/yungbote/hotflow/internal/pkg/dbctx"
)

const previewColumns = 80

func newListItemsCmd(v *viper.Viper) *cobra.Command {
	var (
		limit      int
		categories []string
	)
	cmd := &cobra.Command{
		Use:   "list-items",
		Short: "Show the most recently fetched items",
		Args:  cobra.NoArgs,
		RunE: runE(v, func(s *session, cmd *cobra.Command) error {
			rows, err := s.app.Repos.Item.List(dbctx.Context{Ctx: s.ctx}, repos.ItemFilter{
				Limit:      limit,
				Categories: categories,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintln(out, "No items found.")
				return nil
			}
			for _, it := range rows {
				fmt.Fprintln(out, itemLine(it))
			}
			return nil
		}),
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum rows")
	cmd.Flags().StringArrayVar(&categories, "category", nil, "filter by category (repeatable)")
	return cmd
}

func newListCreativesCmd(v *viper.Viper) *cobra.Command {
	var (
		limit  int
		itemID int64
	)
	cmd := &cobra.Command{
		Use:   "list-creatives",
		Short: "Show the most recently generated creatives",
		Args:  cobra.NoArgs,
		RunE: runE(v, func(s *session, cmd *cobra.Command) error {
			rows, err := s.app.Repos.Creative.List(dbctx.Context{Ctx: s.ctx}, repos.CreativeFilter{
				ItemID: itemID,
				Limit:  limit,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintln(out, "No creatives found.")
				return nil
			}
			for _, c := range rows {
				fmt.Fprintln(out, creativeLine(c))
			}
			return nil
		}),
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum rows")
	cmd.Flags().Int64Var(&itemID, "item-id", 0, "only creatives for this item")
	return cmd
}

func itemLine(it *types.Item) string {
	sales := "-"
	if it.MonthlySales != nil {
		sales = strconv.FormatInt(*it.MonthlySales, 10)
	}
	return fmt.Sprintf("[%s] %d | %s | 券后价: %s | 月销量: %s",
		it.Category, it.ItemID, it.Title, money(it.CouponPrice), sales)
}

func creativeLine(c *types.Creative) string {
	return fmt.Sprintf("Item %d | %s #%d: %s", c.ItemID, c.Platform, c.Variant, preview(c.Content, previewColumns))
}

func money(v decimal.NullDecimal) string {
	if !v.Valid {
		return "-"
	}
	return v.Decimal.StringFixed(2)
}
