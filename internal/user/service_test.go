package user

import (
	"context"
	"testing"

	"carexyz/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "user-test-secret"

// MockRepository is a mock implementation of Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, u User) (*User, error) {
	args := m.Called(ctx, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) FindByID(ctx context.Context, id int) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) NIDExists(ctx context.Context, nidNo string) (bool, error) {
	args := m.Called(ctx, nidNo)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) UpdateProfile(ctx context.Context, id int, name, contact string) (*User, error) {
	args := m.Called(ctx, id, name, contact)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func validRegistration() RegisterRequest {
	return RegisterRequest{
		NIDNo:    "1990123456789",
		Name:     "Rahima Begum",
		Email:    " Rahima@Example.com ",
		Contact:  "01700000000",
		Password: "Secret1",
	}
}

func TestService_Register(t *testing.T) {
	tests := []struct {
		name          string
		mutate        func(*RegisterRequest)
		setupMock     func(*MockRepository)
		expectedError error
	}{
		{
			name: "successful registration",
			setupMock: func(m *MockRepository) {
				m.On("EmailExists", mock.Anything, "rahima@example.com").Return(false, nil)
				m.On("NIDExists", mock.Anything, "1990123456789").Return(false, nil)
				m.On("Create", mock.Anything, mock.MatchedBy(func(u User) bool {
					return u.Email == "rahima@example.com" && u.Role == RoleUser &&
						auth.CheckPassword(u.PasswordHash, "Secret1")
				})).Return(&User{ID: 1, Email: "rahima@example.com", Role: RoleUser}, nil)
			},
		},
		{
			name:          "password without uppercase",
			mutate:        func(r *RegisterRequest) { r.Password = "secret1" },
			setupMock:     func(m *MockRepository) {},
			expectedError: ErrWeakPassword,
		},
		{
			name:          "password without lowercase",
			mutate:        func(r *RegisterRequest) { r.Password = "SECRET1" },
			setupMock:     func(m *MockRepository) {},
			expectedError: ErrWeakPassword,
		},
		{
			name: "email already exists",
			setupMock: func(m *MockRepository) {
				m.On("EmailExists", mock.Anything, "rahima@example.com").Return(true, nil)
			},
			expectedError: ErrEmailExists,
		},
		{
			name: "nid already exists",
			setupMock: func(m *MockRepository) {
				m.On("EmailExists", mock.Anything, "rahima@example.com").Return(false, nil)
				m.On("NIDExists", mock.Anything, "1990123456789").Return(true, nil)
			},
			expectedError: ErrNIDExists,
		},
		{
			name: "race lost on insert",
			setupMock: func(m *MockRepository) {
				m.On("EmailExists", mock.Anything, "rahima@example.com").Return(false, nil)
				m.On("NIDExists", mock.Anything, "1990123456789").Return(false, nil)
				m.On("Create", mock.Anything, mock.Anything).Return(nil, ErrEmailExists)
			},
			expectedError: ErrEmailExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			tt.setupMock(repo)
			req := validRegistration()
			if tt.mutate != nil {
				tt.mutate(&req)
			}

			user, access, refresh, err := NewService(repo, testSecret).Register(context.Background(), req)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.Equal(t, 1, user.ID)
				assert.NotEmpty(t, access)
				assert.NotEmpty(t, refresh)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestService_Login(t *testing.T) {
	hash, err := auth.HashPassword("Secret1")
	require.NoError(t, err)
	stored := &User{ID: 5, Email: "carer@example.com", PasswordHash: hash, Role: "admin"}

	repo := new(MockRepository)
	repo.On("FindByEmail", mock.Anything, "carer@example.com").Return(stored, nil)
	repo.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, ErrUserNotFound)
	svc := NewService(repo, testSecret)

	user, access, _, err := svc.Login(context.Background(), LoginRequest{Email: "Carer@example.com", Password: "Secret1"})
	require.NoError(t, err)
	assert.Equal(t, 5, user.ID)
	claims, err := auth.ValidateToken(access, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)

	_, _, _, err = svc.Login(context.Background(), LoginRequest{Email: "carer@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, _, err = svc.Login(context.Background(), LoginRequest{Email: "ghost@example.com", Password: "Secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_UpdateProfile(t *testing.T) {
	repo := new(MockRepository)
	repo.On("UpdateProfile", mock.Anything, 5, "New Name", "01811111111").Return(&User{ID: 5, Name: "New Name"}, nil)

	user, err := NewService(repo, testSecret).UpdateProfile(context.Background(), 5, UpdateProfileRequest{Name: " New Name ", Contact: "01811111111"})
	require.NoError(t, err)
	assert.Equal(t, "New Name", user.Name)
	repo.AssertExpectations(t)
}

func TestService_RefreshToken(t *testing.T) {
	repo := new(MockRepository)
	repo.On("FindByID", mock.Anything, 9).Return(&User{ID: 9, Email: "a@b.co", Role: RoleUser}, nil)
	svc := NewService(repo, testSecret)

	refresh, err := auth.GenerateRefreshToken(9, "a@b.co", RoleUser, testSecret)
	require.NoError(t, err)

	access, user, err := svc.RefreshToken(context.Background(), refresh)
	require.NoError(t, err)
	assert.Equal(t, 9, user.ID)
	assert.NotEmpty(t, access)

	_, _, err = svc.RefreshToken(context.Background(), "garbage")
	assert.Error(t, err)
}
