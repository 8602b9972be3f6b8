package mongostore

import (
	"context"

	"todo-api/internal/shared/model"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ============================================================================
// TodoStore
// ============================================================================

func (s *Store) CreateTodo(ctx context.Context, todo *model.Todo) error {
	return insertOne(ctx, s.col(ColTodos), todo)
}

func (s *Store) GetTodo(ctx context.Context, id string) (*model.Todo, error) {
	return findOne[model.Todo](ctx, s.col(ColTodos), bson.D{{Key: "_id", Value: id}})
}

func (s *Store) ListTodos(ctx context.Context, createdBy string) ([]*model.Todo, error) {
	filter := bson.D{}
	if createdBy != "" {
		filter = append(filter, bson.E{Key: "created_by", Value: createdBy})
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return findMany[model.Todo](ctx, s.col(ColTodos), filter, opts)
}

func (s *Store) UpdateTodo(ctx context.Context, todo *model.Todo) error {
	return updateFields(ctx, s.col(ColTodos), todo.ID, bson.D{
		{Key: "title", Value: todo.Title},
		{Key: "completed", Value: todo.Completed},
		{Key: "status", Value: todo.Status},
		{Key: "updated_by", Value: todo.UpdatedBy},
		{Key: "updated_at", Value: todo.UpdatedAt},
	})
}

func (s *Store) DeleteTodo(ctx context.Context, id string) error {
	return deleteByID(ctx, s.col(ColTodos), id)
}

func (s *Store) DeleteTodosByUser(ctx context.Context, userID string) (int64, error) {
	res, err := s.col(ColTodos).DeleteMany(ctx, bson.D{{Key: "created_by", Value: userID}})
	if err != nil {
		return 0, wrapError(err)
	}
	return res.DeletedCount, nil
}
