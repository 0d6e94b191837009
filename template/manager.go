package template

import (
	"context"
	"errors"
	"fmt"

	"github.com/zllovesuki/unaique/lock"

	extErrors "github.com/pkg/errors"
	"go.uber.org/zap"
)

// ErrNotFound is returned when a template id does not exist
var ErrNotFound = errors.New("template not found")

// ManagerOptions contains the configuration for Manager
type ManagerOptions struct {
	Repository Repository
	Locker     lock.Locker
	Logger     *zap.Logger
}

// Manager handles the template operations
type Manager struct {
	ManagerOptions
}

// NewManager returns a new Manager for templates
func NewManager(option ManagerOptions) (*Manager, error) {
	if option.Repository == nil {
		return nil, fmt.Errorf("nil Repository is invalid")
	}
	if option.Locker == nil {
		return nil, fmt.Errorf("nil Locker is invalid")
	}
	if option.Logger == nil {
		return nil, fmt.Errorf("nil Logger is invalid")
	}
	return &Manager{
		ManagerOptions: option,
	}, nil
}

// List returns every template
func (m *Manager) List(ctx context.Context) ([]Template, error) {
	templates, err := m.Repository.List(ctx)
	if err != nil {
		return nil, extErrors.Wrap(err, "Cannot list templates")
	}
	return templates, nil
}

// Seed writes the default templates in batches of BatchSize
func (m *Manager) Seed(ctx context.Context) ([]Template, error) {
	defaults, err := Defaults()
	if err != nil {
		return nil, err
	}
	return m.Add(ctx, defaults)
}

// Add writes templates in batches of BatchSize. A failed batch stops the run;
// earlier batches stay written.
func (m *Manager) Add(ctx context.Context, templates []Template) ([]Template, error) {
	added := make([]Template, 0, len(templates))
	for start := 0; start < len(templates); start += BatchSize {
		end := start + BatchSize
		if end > len(templates) {
			end = len(templates)
		}
		batch, err := m.Repository.Add(ctx, templates[start:end])
		if err != nil {
			m.Logger.Error("Unable to add template batch",
				zap.Int("Start", start),
				zap.Int("Added", len(added)),
				zap.Error(err),
			)
			return added, extErrors.Wrap(err, "Cannot add templates")
		}
		added = append(added, batch...)
	}
	m.Logger.Info("Templates added",
		zap.Int("Count", len(added)),
	)
	return added, nil
}

// Like increments the like counter of a template and returns the new value
func (m *Manager) Like(ctx context.Context, id string) (int, error) {
	release, err := m.Locker.Acquire(ctx, "template:like:"+id)
	if err != nil {
		return 0, extErrors.Wrap(err, "Cannot lock template")
	}
	defer release()

	tmpl, err := m.Repository.Get(ctx, id)
	if err != nil {
		return 0, extErrors.Wrap(err, "Cannot get template")
	}
	if tmpl == nil {
		return 0, ErrNotFound
	}

	updated, err := m.Repository.SetLikes(ctx, id, tmpl.Likes+1)
	if err != nil {
		return 0, extErrors.Wrap(err, "Cannot update template likes")
	}
	return updated.Likes, nil
}
