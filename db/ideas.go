package db

import (
	"context"
	"strconv"

	"github.com/zllovesuki/unaique/idea"

	extErrors "github.com/pkg/errors"
	"gorm.io/gorm"
)

var _ idea.Repository = &Ideas{}

// ideaRow numbers ideas the way the hosted ID column does
type ideaRow struct {
	Number     uint64 `gorm:"primaryKey;autoIncrement"`
	RecordID   string `gorm:"uniqueIndex;not null"`
	CustomerID string `gorm:"index"`
	Idea       string
	Subtitle   string
	Background string
	Automation string
}

func (ideaRow) TableName() string {
	return "content_ideas"
}

func (r ideaRow) toIdea() *idea.Idea {
	return &idea.Idea{
		RecordID:   r.RecordID,
		ID:         strconv.FormatUint(r.Number, 10),
		CustomerID: r.CustomerID,
		Idea:       r.Idea,
		Subtitle:   r.Subtitle,
		Background: r.Background,
		Automation: r.Automation,
	}
}

// Ideas is the content ideas table
type Ideas struct {
	db *gorm.DB
}

// NewIdeas returns the content idea repository backed by db
func NewIdeas(db *gorm.DB) *Ideas {
	return &Ideas{db: db}
}

func (s *Ideas) Create(ctx context.Context, i *idea.Idea) (*idea.Idea, error) {
	id, err := newRecordID()
	if err != nil {
		return nil, err
	}
	row := ideaRow{
		RecordID:   id,
		CustomerID: i.CustomerID,
		Idea:       i.Idea,
		Subtitle:   i.Subtitle,
		Background: i.Background,
		Automation: i.Automation,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, extErrors.Wrap(err, "Cannot insert content idea")
	}
	return row.toIdea(), nil
}
