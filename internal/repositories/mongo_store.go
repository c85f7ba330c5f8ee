package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"task-signup/backend/internal/database"
	"task-signup/backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type taskDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Status    string             `bson:"status"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (d taskDocument) toModel() models.Task {
	return models.Task{ID: d.ID.Hex(), Name: d.Name, Status: d.Status, CreatedAt: d.CreatedAt}
}

type userDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Username  string             `bson:"username"`
	Password  string             `bson:"password"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (d userDocument) toModel() models.User {
	return models.User{ID: d.ID.Hex(), Username: d.Username, Password: d.Password, CreatedAt: d.CreatedAt}
}

type MongoStore struct {
	client *database.MongoClient
	tasks  *mongo.Collection
	users  *mongo.Collection
}

func NewMongoStore(client *database.MongoClient) *MongoStore {
	return &MongoStore{
		client: client,
		tasks:  client.DB.Collection(TasksCollection),
		users:  client.DB.Collection(UsersCollection),
	}
}

// EnsureIndexes creates the unique indexes that back duplicate detection.
// Without them the service still rejects duplicates through the lookup in
// the service layer, but concurrent inserts can race.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	if _, err := s.tasks.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_task_name"),
	}); err != nil {
		return fmt.Errorf("failed to create task name index: %w", err)
	}

	if _, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_username"),
	}); err != nil {
		return fmt.Errorf("failed to create username index: %w", err)
	}

	return nil
}

func (s *MongoStore) Tasks() TaskRepository { return (*mongoTaskRepository)(s) }
func (s *MongoStore) Users() UserRepository { return (*mongoUserRepository)(s) }
func (s *MongoStore) Name() string          { return "mongo" }

func (s *MongoStore) Health(ctx context.Context) error {
	return s.client.Ping(ctx)
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Close(ctx)
}

type mongoTaskRepository MongoStore

func (r *mongoTaskRepository) FindTaskByName(ctx context.Context, name string) (*models.Task, error) {
	var doc taskDocument
	err := r.tasks.FindOne(ctx, bson.M{"name": name}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	task := doc.toModel()
	return &task, nil
}

func (r *mongoTaskRepository) CreateTask(ctx context.Context, task *models.Task) error {
	doc := taskDocument{
		Name:      task.Name,
		Status:    task.Status,
		CreatedAt: time.Now().UTC(),
	}

	result, err := r.tasks.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		task.ID = oid.Hex()
	}
	task.CreatedAt = doc.CreatedAt
	return nil
}

func (r *mongoTaskRepository) ListTasks(ctx context.Context) ([]models.Task, error) {
	cursor, err := r.tasks.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	var docs []taskDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %w", err)
	}

	tasks := make([]models.Task, 0, len(docs))
	for _, doc := range docs {
		tasks = append(tasks, doc.toModel())
	}
	return tasks, nil
}

type mongoUserRepository MongoStore

func (r *mongoUserRepository) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var doc userDocument
	err := r.users.FindOne(ctx, bson.M{"username": username}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	user := doc.toModel()
	return &user, nil
}

func (r *mongoUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	doc := userDocument{
		Username:  user.Username,
		Password:  user.Password,
		CreatedAt: time.Now().UTC(),
	}

	result, err := r.users.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		user.ID = oid.Hex()
	}
	user.CreatedAt = doc.CreatedAt
	return nil
}

func (r *mongoUserRepository) ListUsers(ctx context.Context) ([]models.User, error) {
	cursor, err := r.users.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}

	users := make([]models.User, 0, len(docs))
	for _, doc := range docs {
		users = append(users, doc.toModel())
	}
	return users, nil
}

func (r *mongoUserRepository) DeleteUserByUsername(ctx context.Context, username string) error {
	result, err := r.users.DeleteOne(ctx, bson.M{"username": username})
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
