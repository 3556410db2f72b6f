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

const taskCollectionName = "tasks"

// mongoTaskRepository implements repository.TaskRepository.
type mongoTaskRepository struct {
	collection *mongo.Collection
}

// NewMongoTaskRepository creates a task repository backed by MongoDB.
func NewMongoTaskRepository(db *mongo.Database) repository.TaskRepository {
	return &mongoTaskRepository{collection: db.Collection(taskCollectionName)}
}

// CreateBatch inserts a product's full task batch with an ordered
// InsertMany: on error nothing past the failing document is written,
// and the service compensates with DeleteByProductID so the whole
// batch is all-or-nothing from the caller's point of view.
func (r *mongoTaskRepository) CreateBatch(ctx context.Context, tasks []domain.Task) ([]domain.Task, error) {
	if len(tasks) == 0 {
		return nil, nil
	}

	now := time.Now().UTC()
	docs := make([]interface{}, len(tasks))
	for i := range tasks {
		tasks[i].ID = primitive.NewObjectID()
		tasks[i].CreatedAt = now
		docs[i] = tasks[i]
	}

	_, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// GetByID retrieves a task by id.
func (r *mongoTaskRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Task, error) {
	var task domain.Task
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&task)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &task, nil
}

// GetByUserID lists a user's tasks, split by recycle-bin membership:
// deleted=false is the working list, deleted=true the bin.
func (r *mongoTaskRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID, deleted bool) ([]domain.Task, error) {
	filter := bson.M{"userId": userID, "deleted": deleted}
	findOptions := options.Find().SetSort(bson.D{{Key: "dueDate", Value: 1}, {Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tasks []domain.Task
	if err = cursor.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// GetByProductID lists every task of a product, deleted or not.
func (r *mongoTaskRepository) GetByProductID(ctx context.Context, productID primitive.ObjectID) ([]domain.Task, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "dueDate", Value: 1}, {Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"productId": productID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tasks []domain.Task
	if err = cursor.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// Update persists the mutable lifecycle fields of a task. The due date,
// name and type are fixed at generation time and deliberately not
// part of the update document.
func (r *mongoTaskRepository) Update(ctx context.Context, task *domain.Task) error {
	if task.ID == primitive.NilObjectID {
		return errors.New("task ID is required for update")
	}

	update := bson.M{
		"$set": bson.M{
			"completed":   task.Completed,
			"completedAt": task.CompletedAt,
			"deleted":     task.Deleted,
			"deletedAt":   task.DeletedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": task.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteByProductID removes every task of a product. Used both for the
// product-delete cascade and as the compensation step when batch
// insertion fails partway.
func (r *mongoTaskRepository) DeleteByProductID(ctx context.Context, productID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"productId": productID})
	return err
}

// DeletePermanently physically removes a single task owned by the user.
func (r *mongoTaskRepository) DeletePermanently(ctx context.Context, id, userID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "userId": userID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureTaskIndexes creates indexes for the tasks collection.
func EnsureTaskIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "deleted", Value: 1}, {Key: "dueDate", Value: 1}}},
		{Keys: bson.D{{Key: "productId", Value: 1}}},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
