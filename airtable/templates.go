package airtable

import (
	"context"
	"fmt"

	"github.com/zllovesuki/unaique/template"

	at "github.com/mehanizm/airtable"
	extErrors "github.com/pkg/errors"
)

var _ template.Repository = &Templates{}

// Templates is the Templates table
type Templates struct {
	table *at.Table
}

func toTemplate(r *at.Record) template.Template {
	return template.Template{
		RecordID:    r.ID,
		Category:    str(r, fieldCategory),
		Name:        str(r, fieldName),
		Description: str(r, fieldDescription),
		Idea:        str(r, fieldIdea),
		Duration:    str(r, fieldDuration),
		Difficulty:  str(r, fieldDifficulty),
		Thumbnail:   str(r, fieldThumbnail),
		Likes:       integer(r, fieldLikes),
	}
}

func (s *Templates) List(ctx context.Context) ([]template.Template, error) {
	records, err := list(ctx, s.table, "", 0)
	if err != nil {
		return nil, extErrors.Wrap(err, "Cannot list template records")
	}
	out := make([]template.Template, 0, len(records))
	for _, r := range records {
		out = append(out, toTemplate(r))
	}
	return out, nil
}

func (s *Templates) Get(ctx context.Context, id string) (*template.Template, error) {
	record, err := first(ctx, s.table, fmt.Sprintf("RECORD_ID() = %s", quote(id)))
	if err != nil {
		return nil, extErrors.Wrap(err, "Cannot get template record")
	}
	if record == nil {
		return nil, nil
	}
	tmpl := toTemplate(record)
	return &tmpl, nil
}

func (s *Templates) Add(ctx context.Context, templates []template.Template) ([]template.Template, error) {
	if len(templates) > template.BatchSize {
		return nil, fmt.Errorf("at most %d templates per request, got %d", template.BatchSize, len(templates))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	records := make([]*at.Record, 0, len(templates))
	for _, t := range templates {
		records = append(records, &at.Record{Fields: map[string]interface{}{
			fieldCategory:    t.Category,
			fieldName:        t.Name,
			fieldDescription: t.Description,
			fieldIdea:        t.Idea,
			fieldDuration:    t.Duration,
			fieldDifficulty:  t.Difficulty,
			fieldThumbnail:   t.Thumbnail,
			fieldLikes:       t.Likes,
		}})
	}
	created, err := s.table.AddRecords(&at.Records{Records: records})
	if err != nil {
		return nil, extErrors.Wrap(err, "Cannot add template records")
	}
	out := make([]template.Template, 0, len(created.Records))
	for _, r := range created.Records {
		out = append(out, toTemplate(r))
	}
	return out, nil
}

func (s *Templates) SetLikes(ctx context.Context, id string, likes int) (*template.Template, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	updated, err := s.table.UpdateRecordsPartial(&at.Records{
		Records: []*at.Record{{ID: id, Fields: map[string]interface{}{fieldLikes: likes}}},
	})
	if err != nil {
		return nil, extErrors.Wrap(err, "Cannot update template likes")
	}
	record, err := single(updated)
	if err != nil {
		return nil, err
	}
	tmpl := toTemplate(record)
	return &tmpl, nil
}
