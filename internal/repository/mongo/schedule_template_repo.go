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

const scheduleTemplateCollectionName = "schedule_templates"

// mongoScheduleTemplateRepository implements
// repository.ScheduleTemplateRepository.
type mongoScheduleTemplateRepository struct {
	collection *mongo.Collection
}

// NewMongoScheduleTemplateRepository creates a schedule template
// repository backed by MongoDB.
func NewMongoScheduleTemplateRepository(db *mongo.Database) repository.ScheduleTemplateRepository {
	return &mongoScheduleTemplateRepository{collection: db.Collection(scheduleTemplateCollectionName)}
}

// Create inserts a new template. Presets carry no owner; user templates
// must have one.
func (r *mongoScheduleTemplateRepository) Create(ctx context.Context, tmpl *domain.ScheduleTemplate) (primitive.ObjectID, error) {
	if tmpl.Name == "" {
		return primitive.NilObjectID, errors.New("template name is required")
	}
	if !tmpl.IsPreset && tmpl.UserID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("user templates require an owner")
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

// GetByID retrieves a template by id.
func (r *mongoScheduleTemplateRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ScheduleTemplate, error) {
	var tmpl domain.ScheduleTemplate
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&tmpl)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &tmpl, nil
}

// GetVisibleToUser lists the user's own templates plus all presets.
func (r *mongoScheduleTemplateRepository) GetVisibleToUser(ctx context.Context, userID primitive.ObjectID) ([]domain.ScheduleTemplate, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"userId": userID},
		bson.M{"isPreset": true},
	}}
	findOptions := options.Find().SetSort(bson.D{{Key: "isPreset", Value: -1}, {Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var templates []domain.ScheduleTemplate
	if err = cursor.All(ctx, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

// GetPresets lists the system-provided templates.
func (r *mongoScheduleTemplateRepository) GetPresets(ctx context.Context) ([]domain.ScheduleTemplate, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"isPreset": true}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var templates []domain.ScheduleTemplate
	if err = cursor.All(ctx, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

// GetPresetByName fetches one preset by its name. Used by the seeding
// step to keep startup idempotent.
func (r *mongoScheduleTemplateRepository) GetPresetByName(ctx context.Context, name string) (*domain.ScheduleTemplate, error) {
	var tmpl domain.ScheduleTemplate
	err := r.collection.FindOne(ctx, bson.M{"isPreset": true, "name": name}).Decode(&tmpl)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &tmpl, nil
}

// Update rewrites the mutable fields of a user template. Presets never
// reach this method; the service rejects them first.
func (r *mongoScheduleTemplateRepository) Update(ctx context.Context, tmpl *domain.ScheduleTemplate) error {
	if tmpl.ID == primitive.NilObjectID {
		return errors.New("template ID is required for update")
	}

	update := bson.M{
		"$set": bson.M{
			"name":        tmpl.Name,
			"description": tmpl.Description,
			"intervals":   tmpl.Intervals,
			"updatedAt":   time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": tmpl.ID, "isPreset": false}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a user-owned template. The filter excludes presets so
// they cannot be deleted even by a buggy caller.
func (r *mongoScheduleTemplateRepository) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "userId": userID, "isPreset": false})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureScheduleTemplateIndexes creates indexes for the collection.
func EnsureScheduleTemplateIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}}},
		{Keys: bson.D{{Key: "isPreset", Value: 1}, {Key: "name", Value: 1}}},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
