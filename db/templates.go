package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/zllovesuki/unaique/template"

	extErrors "github.com/pkg/errors"
	"gorm.io/gorm"
)

var _ template.Repository = &Templates{}

// Templates is the templates table
type Templates struct {
	db *gorm.DB
}

// NewTemplates returns the template repository backed by db
func NewTemplates(db *gorm.DB) *Templates {
	return &Templates{db: db}
}

func (s *Templates) List(ctx context.Context) ([]template.Template, error) {
	var rows []template.Template
	if err := s.db.WithContext(ctx).Order("record_id").Find(&rows).Error; err != nil {
		return nil, extErrors.Wrap(err, "Cannot list templates")
	}
	return rows, nil
}

func (s *Templates) Get(ctx context.Context, id string) (*template.Template, error) {
	var row template.Template
	err := s.db.WithContext(ctx).Where("record_id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, extErrors.Wrap(err, "Cannot get template")
	}
	return &row, nil
}

func (s *Templates) Add(ctx context.Context, templates []template.Template) ([]template.Template, error) {
	if len(templates) > template.BatchSize {
		return nil, fmt.Errorf("at most %d templates per request, got %d", template.BatchSize, len(templates))
	}
	if len(templates) == 0 {
		return []template.Template{}, nil
	}
	rows := make([]template.Template, len(templates))
	copy(rows, templates)
	for i := range rows {
		id, err := newRecordID()
		if err != nil {
			return nil, err
		}
		rows[i].RecordID = id
	}
	if err := s.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, extErrors.Wrap(err, "Cannot insert templates")
	}
	return rows, nil
}

func (s *Templates) SetLikes(ctx context.Context, id string, likes int) (*template.Template, error) {
	result := s.db.WithContext(ctx).Model(&template.Template{}).Where("record_id = ?", id).Update("likes", likes)
	if result.Error != nil {
		return nil, extErrors.Wrap(result.Error, "Cannot update template likes")
	}
	if result.RowsAffected == 0 {
		return nil, ErrRecordNotFound
	}
	return s.Get(ctx, id)
}
