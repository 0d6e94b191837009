package template

import (
	"context"
	_ "embed"

	extErrors "github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// BatchSize is the largest number of rows written in one store call
const BatchSize = 10

// Template is a video template shown in the dashboard gallery
type Template struct {
	RecordID    string `json:"id" yaml:"-" gorm:"primaryKey"`
	Category    string `json:"category" yaml:"category"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"desc" yaml:"desc"`
	Idea        string `json:"idea" yaml:"idea"`
	Duration    string `json:"duration" yaml:"duration"`
	Difficulty  string `json:"difficulty" yaml:"difficulty"`
	Thumbnail   string `json:"thumbnail" yaml:"thumbnail"`
	Likes       int    `json:"like" yaml:"-" gorm:"not null;default:0"`
}

// Repository is the template table of a record store
type Repository interface {
	List(ctx context.Context) ([]Template, error)
	// Get returns nil when id does not exist
	Get(ctx context.Context, id string) (*Template, error)
	// Add writes at most BatchSize templates
	Add(ctx context.Context, templates []Template) ([]Template, error)
	SetLikes(ctx context.Context, id string, likes int) (*Template, error)
}

//go:embed defaults.yaml
var defaultsYAML []byte

// Defaults returns the templates seeded into an empty store
func Defaults() ([]Template, error) {
	var doc struct {
		Templates []Template `yaml:"templates"`
	}
	if err := yaml.Unmarshal(defaultsYAML, &doc); err != nil {
		return nil, extErrors.Wrap(err, "Cannot parse default templates")
	}
	return doc.Templates, nil
}
