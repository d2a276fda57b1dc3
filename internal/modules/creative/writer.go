package creative

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	types "github.com/yungbote/hotflow/internal/domain"
	"github.com/yungbote/hotflow/internal/modules/creative/prompts"
	"github.com/yungbote/hotflow/internal/platform/apierr"
	"github.com/yungbote/hotflow/internal/platform/ctxutil"
	"github.com/yungbote/hotflow/internal/platform/logger"
	"github.com/yungbote/hotflow/internal/platform/openai"
)

const defaultSystemPrompt = "按用户要求为商品撰写推广文案, 只输出 JSON。"

type GenerateOptions struct {
	// Platforms defaults to the catalog defaults when empty.
	Platforms         []string
	Variants          int
	ExtraSystemPrompt string
}

// Writer renders a prompt for one item, sends one chat completion and turns
// the reply into creatives. It does not persist anything.
type Writer struct {
	log     *logger.Logger
	llm     openai.Client
	catalog *prompts.Catalog
}

func NewWriter(baseLog *logger.Logger, llm openai.Client, catalog *prompts.Catalog) *Writer {
	return &Writer{
		log:     baseLog.With("module", "CopyWriter"),
		llm:     llm,
		catalog: catalog,
	}
}

func (w *Writer) Catalog() *prompts.Catalog { return w.catalog }

// Generate returns exactly Variants x len(Platforms) creatives for item, or an
// error. A reply that only covers some platforms is an error.
func (w *Writer) Generate(ctx context.Context, item *types.Item, opts GenerateOptions) ([]*types.Creative, error) {
	if item == nil {
		return nil, apierr.InvalidArgument("nil_item", "no item to write copy for")
	}
	if opts.Variants < 1 {
		return nil, apierr.InvalidArgument("invalid_variants", "variants must be >= 1, got %d", opts.Variants)
	}
	platforms := w.catalog.Resolve(opts.Platforms)
	for _, p := range platforms {
		if _, ok := w.catalog.Lookup(p); !ok {
			w.log.Warn("platform not in catalog; using key as label", "platform", p)
		}
	}

	prompt, err := prompts.Build(item, platforms, opts.Variants, w.catalog)
	if err != nil {
		return nil, err
	}
	system := defaultSystemPrompt
	if extra := strings.TrimSpace(opts.ExtraSystemPrompt); extra != "" {
		system = extra
	}

	w.log.Debug("requesting copy",
		"item_id", item.ItemID,
		"platforms", platforms,
		"variants", opts.Variants,
	)
	text, err := w.llm.GenerateJSON(ctx, system, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate copy for item %d: %w", item.ItemID, err)
	}
	parsed, err := ParseResponse(text, platforms, opts.Variants)
	if err != nil {
		return nil, fmt.Errorf("generate copy for item %d: %w", item.ItemID, err)
	}

	meta, err := json.Marshal(types.CreativeMetadata{
		Platforms:         platforms,
		VariantsRequested: opts.Variants,
		RunID:             ctxutil.RunID(ctx),
	})
	if err != nil {
		return nil, err
	}

	out := make([]*types.Creative, 0, len(platforms)*opts.Variants)
	for _, platform := range platforms {
		for i, content := range parsed[platform] {
			out = append(out, &types.Creative{
				ID:          uuid.New(),
				ItemID:      item.ItemID,
				Platform:    platform,
				Variant:     i + 1,
				Content:     content,
				Prompt:      prompt,
				Model:       w.llm.Model(),
				Provider:    string(w.llm.Provider()),
				Temperature: w.llm.Temperature(),
				Metadata:    datatypes.JSON(meta),
			})
		}
	}
	return out, nil
}
