package domain

import (
	"github.com/yungbote/hotflow/internal/domain/creatives"
	"github.com/yungbote/hotflow/internal/domain/items"
)

type (
	Item             = items.Item
	Creative         = creatives.Creative
	CreativeMetadata = creatives.Metadata
)
