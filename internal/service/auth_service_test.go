package service

import (
	"context"
	"testing"
	"time"

	"doc-intelligence-be/internal/dto"
	"doc-intelligence-be/internal/entity"
	"doc-intelligence-be/internal/repository/contract"
	"doc-intelligence-be/internal/repository/specification"
	"doc-intelligence-be/internal/repository/unitofwork"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

type memUserRepo struct {
	users map[uuid.UUID]*entity.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[uuid.UUID]*entity.User)}
}

func (r *memUserRepo) Create(_ context.Context, user *entity.User) error {
	copied := *user
	r.users[user.Id] = &copied
	return nil
}

func (r *memUserRepo) Update(_ context.Context, user *entity.User) error {
	copied := *user
	r.users[user.Id] = &copied
	return nil
}

func (r *memUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.users, id)
	return nil
}

func (r *memUserRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.User, error) {
	for _, user := range r.users {
		match := true
		for _, spec := range specs {
			switch s := spec.(type) {
			case specification.ByID:
				if user.Id != s.ID {
					match = false
				}
			case specification.ByEmail:
				if user.Email != s.Email {
					match = false
				}
			}
		}
		if match {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	for range r.users {
		count++
	}
	return count, nil
}

type authUow struct {
	users *memUserRepo
}

func (u *authUow) Begin(context.Context) error { return nil }
func (u *authUow) Commit() error               { return nil }
func (u *authUow) Rollback() error             { return nil }
func (u *authUow) UserRepository() contract.UserRepository {
	return u.users
}
func (u *authUow) DocumentRepository() contract.DocumentRepository {
	return newFakeDocumentRepo()
}

type authUowFactory struct {
	uow *authUow
}

func (f *authUowFactory) NewUnitOfWork(context.Context) unitofwork.UnitOfWork {
	return f.uow
}

func newTestAuthService(t *testing.T) (IAuthService, *memUserRepo) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	repo := newMemUserRepo()
	svc := NewAuthService(&authUowFactory{uow: &authUow{users: repo}}, 30*time.Minute)
	return svc, repo
}

func TestRegisterIssuesBearerToken(t *testing.T) {
	svc, repo := newTestAuthService(t)

	res, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Email:    "alice@example.com",
		Password: "s3cret-pass",
		FullName: "Alice",
	})
	assert.NoError(t, err)
	assert.Equal(t, "bearer", res.TokenType)
	assert.NotEmpty(t, res.AccessToken)

	user := repo.users[res.Id]
	if assert.NotNil(t, user) {
		assert.Equal(t, "alice@example.com", user.Email)
		assert.NotNil(t, user.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte("s3cret-pass")))
	}

	token, err := jwt.Parse(res.AccessToken, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	assert.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, res.Id.String(), claims["user_id"])
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newTestAuthService(t)

	req := &dto.RegisterRequest{Email: "bob@example.com", Password: "password1", FullName: "Bob"}
	_, err := svc.Register(context.Background(), req)
	assert.NoError(t, err)

	_, err = svc.Register(context.Background(), req)
	assert.Error(t, err)
}

func TestLogin(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Email:    "carol@example.com",
		Password: "correct-horse",
		FullName: "Carol",
	})
	assert.NoError(t, err)

	res, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "carol@example.com",
		Password: "correct-horse",
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)

	_, err = svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "carol@example.com",
		Password: "wrong",
	})
	assert.Error(t, err)

	_, err = svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "nobody@example.com",
		Password: "correct-horse",
	})
	assert.Error(t, err)
}
