package services

import (
	"context"
	"fmt"
	"sort"

	"gorm.io/gorm"

	"github.com/yungbote/hotflow/internal/data/repos"
	types "github.com/yungbote/hotflow/internal/domain"
	"github.com/yungbote/hotflow/internal/modules/creative"
	"github.com/yungbote/hotflow/internal/pkg/dbctx"
	"github.com/yungbote/hotflow/internal/platform/apierr"
	"github.com/yungbote/hotflow/internal/platform/logger"
)

// CopyWriter produces creatives for one item without persisting them.
type CopyWriter interface {
	Generate(ctx context.Context, item *types.Item, opts creative.GenerateOptions) ([]*types.Creative, error)
}

type GenerateParams struct {
	// ItemIDs selects specific items; otherwise the newest Limit items
	// (optionally within Categories) are used.
	ItemIDs           []int64
	Categories        []string
	Limit             int
	Platforms         []string
	Variants          int
	ExtraSystemPrompt string
}

type GenerateResult struct {
	Items     int
	Creatives []*types.Creative
}

// Platforms lists the distinct platforms covered by the result.
func (r *GenerateResult) Platforms() []string {
	seen := map[string]bool{}
	var out []string
	for _, c := range r.Creatives {
		if !seen[c.Platform] {
			seen[c.Platform] = true
			out = append(out, c.Platform)
		}
	}
	return out
}

type CreativeService interface {
	// GenerateAndStore writes creatives item by item. Each item's batch is
	// all-or-nothing; the first failure stops the run.
	GenerateAndStore(ctx context.Context, p GenerateParams) (*GenerateResult, error)
}

type creativeService struct {
	db        *gorm.DB
	log       *logger.Logger
	writer    CopyWriter
	items     repos.ItemRepo
	creatives repos.CreativeRepo
}

func NewCreativeService(db *gorm.DB, baseLog *logger.Logger, writer CopyWriter, items repos.ItemRepo, creatives repos.CreativeRepo) CreativeService {
	return &creativeService{
		db:        db,
		log:       baseLog.With("service", "CreativeService"),
		writer:    writer,
		items:     items,
		creatives: creatives,
	}
}

func (s *creativeService) GenerateAndStore(ctx context.Context, p GenerateParams) (*GenerateResult, error) {
	if p.Variants < 1 {
		return nil, apierr.InvalidArgument("invalid_variants", "--variants must be >= 1, got %d", p.Variants)
	}
	selected, err := s.selectItems(ctx, p)
	if err != nil {
		return nil, err
	}
	out := &GenerateResult{}
	if len(selected) == 0 {
		s.log.Warn("no items to generate copy for", "categories", p.Categories, "limit", p.Limit)
		return out, nil
	}

	for _, item := range selected {
		generated, err := s.writer.Generate(ctx, item, creative.GenerateOptions{
			Platforms:         p.Platforms,
			Variants:          p.Variants,
			ExtraSystemPrompt: p.ExtraSystemPrompt,
		})
		if err != nil {
			return out, err
		}
		if len(generated) == 0 {
			return out, apierr.Format("no_creatives", "model produced no copy for item %d", item.ItemID)
		}

		var stored []*types.Creative
		err = dbctx.InTx(dbctx.Context{Ctx: ctx}, s.db, func(dbc dbctx.Context) error {
			created, err := s.creatives.Create(dbc, generated)
			if err != nil {
				return err
			}
			stored = created
			return nil
		})
		if err != nil {
			return out, fmt.Errorf("store creatives for item %d: %w", item.ItemID, err)
		}
		out.Items++
		out.Creatives = append(out.Creatives, stored...)
		s.log.Info("creatives stored", "item_id", item.ItemID, "count", len(stored))
	}
	return out, nil
}

func (s *creativeService) selectItems(ctx context.Context, p GenerateParams) ([]*types.Item, error) {
	dbc := dbctx.Context{Ctx: ctx}
	if len(p.ItemIDs) == 0 {
		return s.items.List(dbc, repos.ItemFilter{Limit: p.Limit, Categories: p.Categories})
	}
	found, err := s.items.GetByIDs(dbc, p.ItemIDs)
	if err != nil {
		return nil, err
	}
	have := make(map[int64]bool, len(found))
	for _, it := range found {
		have[it.ItemID] = true
	}
	var missing []int64
	for _, id := range p.ItemIDs {
		if !have[id] {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
		return nil, apierr.InvalidArgument("unknown_item", "item(s) not found: %v (run fetch first)", missing)
	}
	return found, nil
}
