package idea

import (
	"context"
	"fmt"
	"strings"

	extErrors "github.com/pkg/errors"
	"go.uber.org/zap"
)

// AutomationStart is the automation value that starts the video pipeline for an idea
const AutomationStart = "자동화 시작"

// Idea is a content idea submitted from the create-video page
type Idea struct {
	RecordID   string `json:"recordId"`
	ID         string `json:"id"`
	CustomerID string `json:"businessId"`
	Idea       string `json:"idea"`
	Subtitle   string `json:"subtitle"`
	Background string `json:"background"`
	Automation string `json:"automation"`
}

// Repository is the content idea table of a record store
type Repository interface {
	// Create stores idea and returns it with RecordID and ID assigned
	Create(ctx context.Context, idea *Idea) (*Idea, error)
}

// ManagerOptions contains the configuration for Manager
type ManagerOptions struct {
	Repository Repository
	Logger     *zap.Logger
}

// Manager handles content ideas
type Manager struct {
	ManagerOptions
}

// NewManager returns a new Manager for content ideas
func NewManager(option ManagerOptions) (*Manager, error) {
	if option.Repository == nil {
		return nil, fmt.Errorf("nil Repository is invalid")
	}
	if option.Logger == nil {
		return nil, fmt.Errorf("nil Logger is invalid")
	}
	return &Manager{
		ManagerOptions: option,
	}, nil
}

// Create stores a new idea for customerID with automation started
func (m *Manager) Create(ctx context.Context, customerID, text, subtitle, background string) (*Idea, error) {
	created, err := m.Repository.Create(ctx, &Idea{
		CustomerID: strings.TrimSpace(customerID),
		Idea:       text,
		Subtitle:   subtitle,
		Background: background,
		Automation: AutomationStart,
	})
	if err != nil {
		return nil, extErrors.Wrap(err, "Cannot create content idea")
	}
	m.Logger.Info("Content idea created",
		zap.String("BusinessID", created.CustomerID),
		zap.String("RecordID", created.RecordID),
	)
	return created, nil
}
