package repositories

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"task-signup/backend/internal/models"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type firestoreTask struct {
	Name      string    `firestore:"name"`
	Status    string    `firestore:"status"`
	CreatedAt time.Time `firestore:"createdAt"`
}

type firestoreUser struct {
	Username  string    `firestore:"username"`
	Password  string    `firestore:"password"`
	CreatedAt time.Time `firestore:"createdAt"`
}

// FirestoreStore keys every document by a digest of its unique field, so
// Create fails with AlreadyExists instead of needing a unique index.
type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

// documentID is stable for a given key and always a legal Firestore id,
// whatever characters the name contains.
func documentID(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

func (s *FirestoreStore) Tasks() TaskRepository { return (*firestoreTaskRepository)(s) }
func (s *FirestoreStore) Users() UserRepository { return (*firestoreUserRepository)(s) }
func (s *FirestoreStore) Name() string          { return "firestore" }

func (s *FirestoreStore) Health(ctx context.Context) error {
	_, err := s.client.Collection(TasksCollection).Limit(1).Documents(ctx).GetAll()
	return err
}

func (s *FirestoreStore) Close(context.Context) error {
	return s.client.Close()
}

type firestoreTaskRepository FirestoreStore

func (r *firestoreTaskRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(TasksCollection)
}

func (r *firestoreTaskRepository) FindTaskByName(ctx context.Context, name string) (*models.Task, error) {
	snap, err := r.collection().Doc(documentID(name)).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	var doc firestoreTask
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode task: %w", err)
	}
	return &models.Task{ID: snap.Ref.ID, Name: doc.Name, Status: doc.Status, CreatedAt: doc.CreatedAt}, nil
}

func (r *firestoreTaskRepository) CreateTask(ctx context.Context, task *models.Task) error {
	doc := firestoreTask{Name: task.Name, Status: task.Status, CreatedAt: time.Now().UTC()}
	ref := r.collection().Doc(documentID(task.Name))

	if _, err := ref.Create(ctx, doc); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert task: %w", err)
	}

	task.ID = ref.ID
	task.CreatedAt = doc.CreatedAt
	return nil
}

func (r *firestoreTaskRepository) ListTasks(ctx context.Context) ([]models.Task, error) {
	snaps, err := r.collection().OrderBy("createdAt", firestore.Asc).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	tasks := make([]models.Task, 0, len(snaps))
	for _, snap := range snaps {
		var doc firestoreTask
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode task %s: %w", snap.Ref.ID, err)
		}
		tasks = append(tasks, models.Task{ID: snap.Ref.ID, Name: doc.Name, Status: doc.Status, CreatedAt: doc.CreatedAt})
	}
	return tasks, nil
}

type firestoreUserRepository FirestoreStore

func (r *firestoreUserRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(UsersCollection)
}

func (r *firestoreUserRepository) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	snap, err := r.collection().Doc(documentID(username)).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	var doc firestoreUser
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	return &models.User{ID: snap.Ref.ID, Username: doc.Username, Password: doc.Password, CreatedAt: doc.CreatedAt}, nil
}

func (r *firestoreUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	doc := firestoreUser{Username: user.Username, Password: user.Password, CreatedAt: time.Now().UTC()}
	ref := r.collection().Doc(documentID(user.Username))

	if _, err := ref.Create(ctx, doc); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	user.ID = ref.ID
	user.CreatedAt = doc.CreatedAt
	return nil
}

func (r *firestoreUserRepository) ListUsers(ctx context.Context) ([]models.User, error) {
	snaps, err := r.collection().OrderBy("createdAt", firestore.Asc).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]models.User, 0, len(snaps))
	for _, snap := range snaps {
		var doc firestoreUser
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode user %s: %w", snap.Ref.ID, err)
		}
		users = append(users, models.User{ID: snap.Ref.ID, Username: doc.Username, Password: doc.Password, CreatedAt: doc.CreatedAt})
	}
	return users, nil
}

func (r *firestoreUserRepository) DeleteUserByUsername(ctx context.Context, username string) error {
	_, err := r.collection().Doc(documentID(username)).Delete(ctx, firestore.Exists)
	if status.Code(err) == codes.NotFound {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
