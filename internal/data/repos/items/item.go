package items

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/hotflow/internal/domain"
	"github.com/yungbote/hotflow/internal/pkg/dbctx"
	"github.com/yungbote/hotflow/internal/platform/apierr"
	"github.com/yungbote/hotflow/internal/platform/logger"
)

type ItemFilter struct {
	// Limit <= 0 means no limit.
	Limit      int
	Categories []string
	ItemIDs    []int64
}

type ItemRepo interface {
	Upsert(dbc dbctx.Context, items []*types.Item) (int, error)
	List(dbc dbctx.Context, filter ItemFilter) ([]*types.Item, error)
	GetByIDs(dbc dbctx.Context, ids []int64) ([]*types.Item, error)
	// Count backs test assertions; no command reads it.
	Count(dbc dbctx.Context, categories []string) (int64, error)
}

type itemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewItemRepo(db *gorm.DB, baseLog *logger.Logger) ItemRepo {
	return &itemRepo{
		db:  db,
		log: baseLog.With("repo", "ItemRepo"),
	}
}

// upsertBatchSize keeps each INSERT well below SQLite's 32766 variable cap.
const upsertBatchSize = 200

// upsertColumns are overwritten when an item_id already exists. created_at is
// left alone so the first-seen time survives refetches.
var upsertColumns = []string{
	"category",
	"title",
	"image_url",
	"price",
	"coupon_price",
	"commission_rate",
	"monthly_sales",
	"shop_score",
	"shop_title",
	"item_url",
	"coupon_url",
	"coupon_info",
	"tags",
	"raw",
	"fetched_at",
	"updated_at",
}

// Upsert writes items keyed on item_id; the latest write wins. It returns the
// number of distinct items written.
func (r *itemRepo) Upsert(dbc dbctx.Context, items []*types.Item) (int, error) {
	if len(items) == 0 {
		return 0, apierr.InvalidArgument("empty_batch", "no items to store")
	}

	now := time.Now().UTC()
	// Postgres rejects a statement that updates the same row twice.
	seen := make(map[int64]int, len(items))
	batch := make([]*types.Item, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		if it.ItemID <= 0 || strings.TrimSpace(it.Title) == "" {
			return 0, apierr.InvalidArgument("invalid_item", "item %d: item_id and title are required", it.ItemID)
		}
		if it.FetchedAt.IsZero() {
			it.FetchedAt = now
		}
		it.UpdatedAt = now
		if idx, ok := seen[it.ItemID]; ok {
			batch[idx] = it
			continue
		}
		seen[it.ItemID] = len(batch)
		batch = append(batch, it)
	}
	if len(batch) == 0 {
		return 0, apierr.InvalidArgument("empty_batch", "no items to store")
	}

	// Batched so large fetches stay under the driver's bind variable limit.
	err := dbctx.InTx(dbc, r.db, func(inner dbctx.Context) error {
		return inner.Tx.
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "item_id"}},
				DoUpdates: clause.AssignmentColumns(upsertColumns),
			}).
			CreateInBatches(&batch, upsertBatchSize).Error
	})
	if err != nil {
		return 0, apierr.Persistence("upsert_items", fmt.Errorf("upsert items: %w", err))
	}
	r.log.Debug("items upserted", "count", len(batch))
	return len(batch), nil
}

// List returns items most recently fetched first.
func (r *itemRepo) List(dbc dbctx.Context, filter ItemFilter) ([]*types.Item, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Ctx).Model(&types.Item{})
	if len(filter.Categories) > 0 {
		q = q.Where("category IN ?", filter.Categories)
	}
	if len(filter.ItemIDs) > 0 {
		q = q.Where("item_id IN ?", filter.ItemIDs)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	var out []*types.Item
	if err := q.Order("fetched_at DESC").Order("item_id DESC").Find(&out).Error; err != nil {
		return nil, apierr.Persistence("list_items", fmt.Errorf("list items: %w", err))
	}
	return out, nil
}

func (r *itemRepo) GetByIDs(dbc dbctx.Context, ids []int64) ([]*types.Item, error) {
	if len(ids) == 0 {
		return []*types.Item{}, nil
	}
	return r.List(dbc, ItemFilter{ItemIDs: ids})
}

func (r *itemRepo) Count(dbc dbctx.Context, categories []string) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Ctx).Model(&types.Item{})
	if len(categories) > 0 {
		q = q.Where("category IN ?", categories)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, apierr.Persistence("count_items", fmt.Errorf("count items: %w", err))
	}
	return n, nil
}
