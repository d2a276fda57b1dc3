package creatives

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/hotflow/internal/domain"
	"github.com/yungbote/hotflow/internal/pkg/dbctx"
	"github.com/yungbote/hotflow/internal/platform/apierr"
	"github.com/yungbote/hotflow/internal/platform/logger"
)

type CreativeFilter struct {
	// ItemID 0 matches every item.
	ItemID    int64
	Platforms []string
	Limit     int
}

type CreativeRepo interface {
	Create(dbc dbctx.Context, creatives []*types.Creative) ([]*types.Creative, error)
	List(dbc dbctx.Context, filter CreativeFilter) ([]*types.Creative, error)
	// CountByItem backs test assertions; no command reads it.
	CountByItem(dbc dbctx.Context, itemID int64) (int64, error)
}

type creativeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCreativeRepo(db *gorm.DB, baseLog *logger.Logger) CreativeRepo {
	return &creativeRepo{
		db:  db,
		log: baseLog.With("repo", "CreativeRepo"),
	}
}

// Create inserts the batch in one transaction after checking that every
// referenced item exists. Either all rows are written or none.
func (r *creativeRepo) Create(dbc dbctx.Context, creatives []*types.Creative) ([]*types.Creative, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(creatives) == 0 {
		return nil, apierr.InvalidArgument("empty_batch", "no creatives to store")
	}

	now := time.Now().UTC()
	idSet := map[int64]struct{}{}
	for _, c := range creatives {
		if c == nil {
			return nil, apierr.InvalidArgument("invalid_creative", "nil creative in batch")
		}
		if strings.TrimSpace(c.Platform) == "" || strings.TrimSpace(c.Content) == "" {
			return nil, apierr.InvalidArgument("invalid_creative", "creative for item %d: platform and content are required", c.ItemID)
		}
		if c.ID == uuid.Nil {
			c.ID = uuid.New()
		}
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		idSet[c.ItemID] = struct{}{}
	}
	ids := make([]int64, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	err := transaction.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		var found []int64
		if err := tx.Model(&types.Item{}).Where("item_id IN ?", ids).Pluck("item_id", &found).Error; err != nil {
			return apierr.Persistence("check_items", fmt.Errorf("check items: %w", err))
		}
		if missing := missingIDs(ids, found); len(missing) > 0 {
			return apierr.Persistence("missing_item", fmt.Errorf("creatives reference unknown item(s) %v", missing))
		}
		if err := tx.Create(&creatives).Error; err != nil {
			return apierr.Persistence("insert_creatives", fmt.Errorf("insert creatives: %w", err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	r.log.Debug("creatives inserted", "count", len(creatives), "items", len(ids))
	return creatives, nil
}

// List returns creatives newest first.
func (r *creativeRepo) List(dbc dbctx.Context, filter CreativeFilter) ([]*types.Creative, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Ctx).Model(&types.Creative{})
	if filter.ItemID != 0 {
		q = q.Where("item_id = ?", filter.ItemID)
	}
	if len(filter.Platforms) > 0 {
		q = q.Where("platform IN ?", filter.Platforms)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	var out []*types.Creative
	err := q.Order("created_at DESC").
		Order("item_id").
		Order("platform").
		Order("variant").
		Find(&out).Error
	if err != nil {
		return nil, apierr.Persistence("list_creatives", fmt.Errorf("list creatives: %w", err))
	}
	return out, nil
}

func (r *creativeRepo) CountByItem(dbc dbctx.Context, itemID int64) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.Creative{}).
		Where("item_id = ?", itemID).
		Count(&n).Error; err != nil {
		return 0, apierr.Persistence("count_creatives", fmt.Errorf("count creatives: %w", err))
	}
	return n, nil
}

func missingIDs(want, found []int64) []int64 {
	have := make(map[int64]struct{}, len(found))
	for _, id := range found {
		have[id] = struct{}{}
	}
	var out []int64
	for _, id := range want {
		if _, ok := have[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
