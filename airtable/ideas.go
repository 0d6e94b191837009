package airtable

import (
	"context"

	"github.com/zllovesuki/unaique/idea"

	at "github.com/mehanizm/airtable"
	extErrors "github.com/pkg/errors"
)

var _ idea.Repository = &Ideas{}

// Ideas is the Content Ideas table
type Ideas struct {
	table *at.Table
}

func (s *Ideas) Create(ctx context.Context, i *idea.Idea) (*idea.Idea, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	created, err := s.table.AddRecords(&at.Records{
		Records: []*at.Record{{Fields: map[string]interface{}{
			fieldCustomer:   i.CustomerID,
			fieldIdea:       i.Idea,
			fieldSubtitle:   i.Subtitle,
			fieldBackground: i.Background,
			fieldAutomation: i.Automation,
		}}},
	})
	if err != nil {
		return nil, extErrors.Wrap(err, "Cannot add content idea record")
	}
	r, err := single(created)
	if err != nil {
		return nil, err
	}
	return &idea.Idea{
		RecordID:   r.ID,
		ID:         str(r, fieldIdeaID),
		CustomerID: str(r, fieldCustomer),
		Idea:       str(r, fieldIdea),
		Subtitle:   str(r, fieldSubtitle),
		Background: str(r, fieldBackground),
		Automation: str(r, fieldAutomation),
	}, nil
}
