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

const productCollectionName = "products"

// mongoProductRepository implements repository.ProductRepository.
type mongoProductRepository struct {
	collection *mongo.Collection
}

// NewMongoProductRepository creates a product repository backed by MongoDB.
func NewMongoProductRepository(db *mongo.Database) repository.ProductRepository {
	return &mongoProductRepository{collection: db.Collection(productCollectionName)}
}

// Create inserts a new product.
func (r *mongoProductRepository) Create(ctx context.Context, product *domain.Product) (primitive.ObjectID, error) {
	if product.Name == "" || product.UserID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("product name and user ID are required")
	}

	product.ID = primitive.NewObjectID()
	product.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, product)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves a product by id.
func (r *mongoProductRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Product, error) {
	var product domain.Product
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// GetByUserID retrieves all products owned by a user, newest first.
func (r *mongoProductRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Product, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var products []domain.Product
	if err = cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Delete removes a product, ensuring it belongs to the given user. The
// filter combines id and owner so one user cannot delete another's
// product.
func (r *mongoProductRepository) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "userId": userID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// CountByScheduleTemplate counts products referencing a schedule
// template. Non-zero blocks template deletion.
func (r *mongoProductRepository) CountByScheduleTemplate(ctx context.Context, templateID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"scheduleTemplateId": templateID})
}

// CountByFTCycleTemplate counts products referencing a freeze/thaw
// cycle template.
func (r *mongoProductRepository) CountByFTCycleTemplate(ctx context.Context, templateID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"ftCycleTemplateId": templateID})
}

// EnsureProductIndexes creates indexes for the products collection.
func EnsureProductIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}}},
		{Keys: bson.D{{Key: "scheduleTemplateId", Value: 1}}},
		{Keys: bson.D{{Key: "ftCycleTemplateId", Value: 1}}},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
