package service

import (
	"context"
	"fmt"

	"interviewbot/internal/model"
)

// TemplateSource loads one template; a missing template is (nil, nil)
type TemplateSource interface {
	GetByID(ctx context.Context, id string) (*model.Template, error)
}

// TemplateLister lists templates that can be started
type TemplateLister interface {
	ListActive(ctx context.Context) ([]*model.Template, error)
}

// TemplateService is the read-only field schema accessor
type TemplateService struct {
	source TemplateSource
	lister TemplateLister
}

// NewTemplateService creates a new template service
func NewTemplateService(source TemplateSource, lister TemplateLister) *TemplateService {
	return &TemplateService{source: source, lister: lister}
}

// Get returns a template with its field types normalized, or ErrTemplateNotFound
func (s *TemplateService) Get(ctx context.Context, id string) (*model.Template, error) {
	tpl, err := s.source.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load template %s: %w", id, err)
	}
	if tpl == nil {
		return nil, ErrTemplateNotFound
	}
	tpl.Normalize()
	return tpl, nil
}

// Fields returns the ordered fields of a template
func (s *TemplateService) Fields(ctx context.Context, id string) ([]model.Field, error) {
	tpl, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return tpl.Fields, nil
}

// FieldAt returns the field at index or ErrFieldOutOfRange
func (s *TemplateService) FieldAt(ctx context.Context, id string, index int) (model.Field, error) {
	fields, err := s.Fields(ctx, id)
	if err != nil {
		return model.Field{}, err
	}
	if index < 0 || index >= len(fields) {
		return model.Field{}, fmt.Errorf("%w: %d of %d", ErrFieldOutOfRange, index, len(fields))
	}
	return fields[index], nil
}

// List returns the active templates
func (s *TemplateService) List(ctx context.Context) ([]*model.Template, error) {
	return s.lister.ListActive(ctx)
}
