package creatives

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Creative struct {
	ID          uuid.UUID      `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	ItemID      int64          `gorm:"column:item_id;not null;index" json:"item_id"`
	Platform    string         `gorm:"column:platform;size:64;not null;index" json:"platform"`
	Variant     int            `gorm:"column:variant;not null" json:"variant"`
	Content     string         `gorm:"column:content;type:text;not null" json:"content"`
	Prompt      string         `gorm:"column:prompt;type:text" json:"prompt,omitempty"`
	Model       string         `gorm:"column:model;size:128" json:"model,omitempty"`
	Provider    string         `gorm:"column:provider;size:32" json:"provider,omitempty"`
	Temperature float64        `gorm:"column:temperature" json:"temperature"`
	Metadata    datatypes.JSON `gorm:"column:metadata" json:"metadata"`
	CreatedAt   time.Time      `gorm:"column:created_at;not null;index" json:"created_at"`
}

func (Creative) TableName() string { return "creative" }

// Metadata is the shape stored in Creative.Metadata.
type Metadata struct {
	Platforms         []string `json:"platforms"`
	VariantsRequested int      `json:"variants_requested"`
	RunID             string   `json:"run_id,omitempty"`
}
