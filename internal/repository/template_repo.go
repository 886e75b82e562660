package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"interviewbot/internal/model"
)

// TemplateRepo handles MongoDB operations for interview templates
type TemplateRepo interface {
	Upsert(ctx context.Context, tpl *model.Template) error
	GetByID(ctx context.Context, id string) (*model.Template, error)
	ListActive(ctx context.Context) ([]*model.Template, error)
}

type templateRepo struct {
	collection *mongo.Collection
}

// NewTemplateRepo creates a new template repository
func NewTemplateRepo(db *mongo.Database) TemplateRepo {
	return &templateRepo{
		collection: db.Collection("interview_templates"),
	}
}

// Upsert stores a template under its string id, keeping the original creation time
func (r *templateRepo) Upsert(ctx context.Context, tpl *model.Template) error {
	now := time.Now()
	if tpl.CreatedAt.IsZero() {
		tpl.CreatedAt = now
	}
	tpl.UpdatedAt = now

	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": tpl.ID}, tpl, options.Replace().SetUpsert(true))
	return err
}

func (r *templateRepo) GetByID(ctx context.Context, id string) (*model.Template, error) {
	var tpl model.Template
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&tpl)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tpl, nil
}

func (r *templateRepo) ListActive(ctx context.Context) ([]*model.Template, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"isActive": true}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	templates := []*model.Template{}
	if err := cursor.All(ctx, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}
