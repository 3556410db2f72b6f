package mongo

import (
	"context"
	"errors"
	"time"

	"stabtrack/stability-app/internal/domain"
	"stabtrack/stability-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const ftCycleTemplateCollectionName = "ft_cycle_templates"

// mongoFTCycleTemplateRepository implements
// repository.FTCycleTemplateRepository.
type mongoFTCycleTemplateRepository struct {
	collection *mongo.Collection
}

// NewMongoFTCycleTemplateRepository creates a freeze/thaw cycle
// template repository backed by MongoDB.
func NewMongoFTCycleTemplateRepository(db *mongo.Database) repository.FTCycleTemplateRepository {
	return &mongoFTCycleTemplateRepository{collection: db.Collection(ftCycleTemplateCollectionName)}
}

// Create inserts a new cycle template.
func (r *mongoFTCycleTemplateRepository) Create(ctx context.Context, tmpl *domain.FTCycleTemplate) (primitive.ObjectID, error) {
	if tmpl.Name == "" || tmpl.UserID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("template name and owner are required")
	}

	tmpl.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	tmpl.CreatedAt = now
	tmpl.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, tmpl)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves a cycle template by id.
func (r *mongoFTCycleTemplateRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.FTCycleTemplate, error) {
	var tmpl domain.FTCycleTemplate
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&tmpl)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &tmpl, nil
}

// GetByUserID lists the user's cycle templates.
func (r *mongoFTCycleTemplateRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.FTCycleTemplate, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var templates []domain.FTCycleTemplate
	if err = cursor.All(ctx, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

// Update rewrites the mutable fields of a cycle template.
func (r *mongoFTCycleTemplateRepository) Update(ctx context.Context, tmpl *domain.FTCycleTemplate) error {
	if tmpl.ID == primitive.NilObjectID {
		return errors.New("template ID is required for update")
	}

	update := bson.M{
		"$set": bson.M{
			"name":        tmpl.Name,
			"description": tmpl.Description,
			"cycles":      tmpl.Cycles,
			"updatedAt":   time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": tmpl.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a cycle template owned by the user.
func (r *mongoFTCycleTemplateRepository) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "userId": userID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureFTCycleTemplateIndexes creates indexes for the collection.
func EnsureFTCycleTemplateIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}}},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
