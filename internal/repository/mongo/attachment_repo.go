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

const attachmentCollectionName = "attachments"

// mongoAttachmentRepository implements repository.AttachmentRepository.
type mongoAttachmentRepository struct {
	collection *mongo.Collection
}

// NewMongoAttachmentRepository creates an attachment metadata
// repository backed by MongoDB.
func NewMongoAttachmentRepository(db *mongo.Database) repository.AttachmentRepository {
	return &mongoAttachmentRepository{collection: db.Collection(attachmentCollectionName)}
}

// Create inserts attachment metadata after the object key is issued.
func (r *mongoAttachmentRepository) Create(ctx context.Context, att *domain.Attachment) (primitive.ObjectID, error) {
	if att.TaskID == primitive.NilObjectID || att.S3ObjectKey == "" {
		return primitive.NilObjectID, errors.New("attachment task ID and object key are required")
	}

	att.ID = primitive.NewObjectID()
	att.UploadedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, att)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves attachment metadata by id.
func (r *mongoAttachmentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Attachment, error) {
	var att domain.Attachment
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&att)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &att, nil
}

// GetByTaskID lists a task's attachments, newest first.
func (r *mongoAttachmentRepository) GetByTaskID(ctx context.Context, taskID primitive.ObjectID) ([]domain.Attachment, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "uploadedAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"taskId": taskID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var attachments []domain.Attachment
	if err = cursor.All(ctx, &attachments); err != nil {
		return nil, err
	}
	return attachments, nil
}

// Delete removes attachment metadata owned by the user.
func (r *mongoAttachmentRepository) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "userId": userID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureAttachmentIndexes creates indexes for the collection.
func EnsureAttachmentIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "taskId", Value: 1}}},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
