package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yungbote/hotflow/internal/services"
)

func newGenerateCopyCmd(v *viper.Viper) *cobra.Command {
	var (
		itemIDs      []int64
		categories   []string
		limit        int
		platforms    []string
		variants     int
		systemPrompt string
	)
	cmd := &cobra.Command{
		Use:   "generate-copy",
		Short: "Generate marketing copy for stored items",
		Args:  cobra.NoArgs,
		RunE: runE(v, func(s *session, cmd *cobra.Command) error {
			if len(platforms) == 0 {
				platforms = s.app.Cfg.Platforms
			}
			svc, err := s.app.CreativeService()
			if err != nil {
				return err
			}
			res, err := svc.GenerateAndStore(s.ctx, services.GenerateParams{
				ItemIDs:           itemIDs,
				Categories:        categories,
				Limit:             limit,
				Platforms:         platforms,
				Variants:          variants,
				ExtraSystemPrompt: systemPrompt,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Generated %d creatives across %d platform(s).\n",
				len(res.Creatives), len(res.Platforms()))
			return nil
		}),
	}
	f := cmd.Flags()
	f.Int64SliceVar(&itemIDs, "item-id", nil, "item id to write copy for (repeatable)")
	f.StringArrayVar(&categories, "category", nil, "only consider items in this category (repeatable)")
	f.IntVar(&limit, "limit", 1, "number of newest items to use when --item-id is not given")
	f.StringArrayVar(&platforms, "platform", nil, "target platform (repeatable; default HOTFLOW_PLATFORMS or the catalog defaults)")
	f.IntVar(&variants, "variants", 3, "variants per platform")
	f.StringVar(&systemPrompt, "system-prompt", "", "replace the default system prompt")
	return cmd
}
