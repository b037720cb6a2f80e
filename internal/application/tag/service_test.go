package tag

import (
	"context"
	"testing"

	"github.com/devquery-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockTagStore struct{ mock.Mock }

func (m *mockTagStore) Put(ctx context.Context, t *domain.Tag) error {
	return m.Called(ctx, t).Error(0)
}

func (m *mockTagStore) Get(ctx context.Context, name string) (*domain.Tag, error) {
	args := m.Called(ctx, name)
	if t, _ := args.Get(0).(*domain.Tag); t != nil {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTagStore) List(ctx context.Context) ([]domain.Tag, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Tag), args.Error(1)
}

func TestList_SortsByUsageThenName(t *testing.T) {
	repo := &mockTagStore{}
	repo.On("List", mock.Anything).Return([]domain.Tag{
		{Name: "redis", QuestionCount: 2},
		{Name: "go", QuestionCount: 9},
		{Name: "aws", QuestionCount: 2},
	}, nil)
	svc := NewService(repo)

	tags, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, tags, 3)
	assert.Equal(t, "go", tags[0].Name)
	assert.Equal(t, "aws", tags[1].Name)
	assert.Equal(t, "redis", tags[2].Name)
}

func TestGet_NormalizesName(t *testing.T) {
	repo := &mockTagStore{}
	repo.On("Get", mock.Anything, "dynamodb").Return(&domain.Tag{Name: "dynamodb"}, nil)
	svc := NewService(repo)

	tag, err := svc.Get(context.Background(), "  DynamoDB ")
	require.NoError(t, err)
	assert.Equal(t, "dynamodb", tag.Name)
	repo.AssertExpectations(t)
}

func TestDescribe_CreatesMissingTag(t *testing.T) {
	repo := &mockTagStore{}
	repo.On("Get", mock.Anything, "grpc").Return(nil, domain.ErrNotFound)
	repo.On("Put", mock.Anything, mock.MatchedBy(func(tag *domain.Tag) bool {
		return tag.Name == "grpc" && tag.Description == "remote procedure calls"
	})).Return(nil)
	svc := NewService(repo)

	tag, err := svc.Describe(context.Background(), "gRPC", "remote procedure calls")
	require.NoError(t, err)
	assert.Equal(t, "grpc", tag.Name)
	repo.AssertExpectations(t)
}

func TestDescribe_UpdatesExistingTag(t *testing.T) {
	repo := &mockTagStore{}
	repo.On("Get", mock.Anything, "go").Return(&domain.Tag{Name: "go", QuestionCount: 9, Description: "old"}, nil)
	repo.On("Put", mock.Anything, mock.MatchedBy(func(tag *domain.Tag) bool {
		return tag.Name == "go" && tag.Description == "the language" && tag.QuestionCount == 9
	})).Return(nil)
	svc := NewService(repo)

	_, err := svc.Describe(context.Background(), "go", "the language")
	require.NoError(t, err)
	repo.AssertExpectations(t)
}
