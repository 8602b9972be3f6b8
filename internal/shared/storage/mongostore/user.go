package mongostore

import (
	"context"

	"todo-api/internal/shared/model"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ============================================================================
// UserStore
// ============================================================================

// excludePasswordHash 身份解析和列表查询统一排除密码哈希的投影
var excludePasswordHash = bson.D{{Key: "password_hash", Value: 0}}

func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	return insertOne(ctx, s.col(ColUsers), user)
}

// GetUserByEmail 按邮箱查找用户，结果包含密码哈希（仅登录校验使用）
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return findOne[model.User](ctx, s.col(ColUsers), bson.D{{Key: "email", Value: email}})
}

// GetUserByID 按 ID 查找用户，投影排除密码哈希
func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	opts := options.FindOne().SetProjection(excludePasswordHash)
	return findOne[model.User](ctx, s.col(ColUsers), bson.D{{Key: "_id", Value: id}}, opts)
}

// ListUsers 列出全部用户，投影排除密码哈希，按创建时间降序
func (s *Store) ListUsers(ctx context.Context) ([]*model.User, error) {
	opts := options.Find().
		SetProjection(excludePasswordHash).
		SetSort(bson.D{{Key: "created_at", Value: -1}})
	return findMany[model.User](ctx, s.col(ColUsers), bson.D{}, opts)
}
