package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	usecase "user-crud-service/internal/usecase/user"
	pkgerrors "user-crud-service/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const userID = "665f1c2e8b3f4a0012345678"

// MockUserUsecase is a mock implementation of user.Usecase
type MockUserUsecase struct {
	mock.Mock
}

func (m *MockUserUsecase) CreateUser(ctx context.Context, req usecase.CreateUserRequest) (*usecase.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.User), args.Error(1)
}

func (m *MockUserUsecase) ListUsers(ctx context.Context) (*usecase.ListUsersResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.ListUsersResponse), args.Error(1)
}

func (m *MockUserUsecase) GetUser(ctx context.Context, req usecase.GetUserRequest) (*usecase.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.User), args.Error(1)
}

func (m *MockUserUsecase) UpdateUser(ctx context.Context, req usecase.UpdateUserRequest) (*usecase.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.User), args.Error(1)
}

func (m *MockUserUsecase) DeleteUser(ctx context.Context, req usecase.DeleteUserRequest) (*usecase.DeleteUserResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.DeleteUserResponse), args.Error(1)
}

func setupTest(t *testing.T) (*gin.Engine, *MockUserUsecase) {
	gin.SetMode(gin.TestMode)
	mockUsecase := new(MockUserUsecase)
	handler := NewUserHandler(mockUsecase, zaptest.NewLogger(t))

	r := gin.New()
	r.POST("/users", handler.CreateUser)
	r.GET("/users", handler.ListUsers)
	r.GET("/users/:id", handler.GetUser)
	r.PUT("/users/:id", handler.UpdateUser)
	r.DELETE("/users/:id", handler.DeleteUser)
	return r, mockUsecase
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var buf *bytes.Buffer
	if body != "" {
		buf = bytes.NewBufferString(body)
	} else {
		buf = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func message(t *testing.T, w *httptest.ResponseRecorder) string {
	var resp MessageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Message
}

func ptr[T any](v T) *T { return &v }

func TestCreateUser(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, mockUsecase := setupTest(t)

		mockUsecase.On("CreateUser", mock.Anything, usecase.CreateUserRequest{
			Name: "John Doe", Email: "john.doe@example.com", Age: ptr(30),
		}).Return(&usecase.User{ID: userID, Name: "John Doe", Email: "john.doe@example.com", Age: ptr(30)}, nil)

		w := do(r, http.MethodPost, "/users", `{"name":"John Doe","email":"john.doe@example.com","age":30}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.JSONEq(t, `{"_id":"`+userID+`","name":"John Doe","email":"john.doe@example.com","age":30}`, w.Body.String())
		mockUsecase.AssertExpectations(t)
	})

	t.Run("Age omitted", func(t *testing.T) {
		r, mockUsecase := setupTest(t)

		mockUsecase.On("CreateUser", mock.Anything, usecase.CreateUserRequest{Name: "John Doe", Email: "john@example.com"}).
			Return(&usecase.User{ID: userID, Name: "John Doe", Email: "john@example.com"}, nil)

		w := do(r, http.MethodPost, "/users", `{"name":"John Doe","email":"john@example.com"}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.NotContains(t, w.Body.String(), "age")
	})

	t.Run("Invalid Request Body", func(t *testing.T) {
		r, mockUsecase := setupTest(t)

		w := do(r, http.MethodPost, "/users", "invalid json")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.NotEmpty(t, message(t, w))
		mockUsecase.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
	})

	t.Run("Wrong field type", func(t *testing.T) {
		r, _ := setupTest(t)

		w := do(r, http.MethodPost, "/users", `{"name":"John","email":"john@example.com","age":"thirty"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Validation Error", func(t *testing.T) {
		r, mockUsecase := setupTest(t)

		mockUsecase.On("CreateUser", mock.Anything, mock.Anything).
			Return(nil, pkgerrors.NewValidationError("", "Email must be a valid email"))

		w := do(r, http.MethodPost, "/users", `{"name":"John Doe","email":"not-an-email"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, message(t, w), "Email must be a valid email")
	})

	t.Run("Usecase Error", func(t *testing.T) {
		r, mockUsecase := setupTest(t)

		mockUsecase.On("CreateUser", mock.Anything, mock.Anything).
			Return(nil, pkgerrors.NewInternalError("failed to create user", errors.New("connection reset")))

		w := do(r, http.MethodPost, "/users", `{"name":"John Doe","email":"john@example.com"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, message(t, w), "connection reset")
	})
}

func TestListUsers(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, mockUsecase := setupTest(t)

		mockUsecase.On("ListUsers", mock.Anything).Return(&usecase.ListUsersResponse{Users: []usecase.User{
			{ID: "a", Name: "John Doe", Email: "john@example.com"},
			{ID: "b", Name: "Jane Doe", Email: "jane@example.com", Age: ptr(28)},
		}}, nil)

		w := do(r, http.MethodGet, "/users", "")

		assert.Equal(t, http.StatusOK, w.Code)
		var resp []UserResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp, 2)
		assert.Equal(t, "a", resp[0].ID)
		assert.Equal(t, 28, *resp[1].Age)
	})

	t.Run("Empty", func(t *testing.T) {
		r, mockUsecase := setupTest(t)

		mockUsecase.On("ListUsers", mock.Anything).Return(&usecase.ListUsersResponse{Users: []usecase.User{}}, nil)

		w := do(r, http.MethodGet, "/users", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("Failure", func(t *testing.T) {
		r, mockUsecase := setupTest(t)

		mockUsecase.On("ListUsers", mock.Anything).Return(nil, errors.New("server selection timeout"))

		w := do(r, http.MethodGet, "/users", "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "server selection timeout", message(t, w))
	})
}

func TestGetUser(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, mockUsecase := setupTest(t)

		mockUsecase.On("GetUser", mock.Anything, usecase.GetUserRequest{ID: userID}).
			Return(&usecase.User{ID: userID, Name: "John Doe", Email: "john@example.com"}, nil)

		w := do(r, http.MethodGet, "/users/"+userID, "")

		assert.Equal(t, http.StatusOK, w.Code)
		var resp UserResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, userID, resp.ID)
	})

	t.Run("Not Found", func(t *testing.T) {
		r, mockUsecase := setupTest(t)

		mockUsecase.On("GetUser", mock.Anything, usecase.GetUserRequest{ID: userID}).Return(nil, pkgerrors.ErrUserNotFound)

		w := do(r, http.MethodGet, "/users/"+userID, "")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "User not found", message(t, w))
	})

	t.Run("Malformed ID", func(t *testing.T) {
		r, mockUsecase := setupTest(t)

		mockUsecase.On("GetUser", mock.Anything, usecase.GetUserRequest{ID: "abc"}).
			Return(nil, errors.New(`invalid user id "abc"`))

		w := do(r, http.MethodGet, "/users/abc", "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestUpdateUser(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, mockUsecase := setupTest(t)

		mockUsecase.On("UpdateUser", mock.Anything, usecase.UpdateUserRequest{ID: userID, Name: ptr("Jane Doe")}).
			Return(&usecase.User{ID: userID, Name: "Jane Doe", Email: "john@example.com"}, nil)

		w := do(r, http.MethodPut, "/users/"+userID, `{"name":"Jane Doe"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp UserResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Jane Doe", resp.Name)
		assert.Equal(t, "john@example.com", resp.Email)
	})

	t.Run("Empty body is an empty patch", func(t *testing.T) {
		r, mockUsecase := setupTest(t)

		mockUsecase.On("UpdateUser", mock.Anything, usecase.UpdateUserRequest{ID: userID}).
			Return(&usecase.User{ID: userID, Name: "John Doe", Email: "john@example.com"}, nil)

		w := do(r, http.MethodPut, "/users/"+userID, "")

		assert.Equal(t, http.StatusOK, w.Code)
		mockUsecase.AssertExpectations(t)
	})

	t.Run("Invalid Request Body", func(t *testing.T) {
		r, _ := setupTest(t)

		w := do(r, http.MethodPut, "/users/"+userID, `{"name":`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Not Found", func(t *testing.T) {
		r, mockUsecase := setupTest(t)

		mockUsecase.On("UpdateUser", mock.Anything, mock.Anything).Return(nil, pkgerrors.ErrUserNotFound)

		w := do(r, http.MethodPut, "/users/"+userID, `{"name":"Jane"}`)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "User not found", message(t, w))
	})

	t.Run("Malformed ID", func(t *testing.T) {
		r, mockUsecase := setupTest(t)

		mockUsecase.On("UpdateUser", mock.Anything, mock.Anything).Return(nil, errors.New(`invalid user id "abc"`))

		w := do(r, http.MethodPut, "/users/abc", `{"name":"Jane"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDeleteUser(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, mockUsecase := setupTest(t)

		mockUsecase.On("DeleteUser", mock.Anything, usecase.DeleteUserRequest{ID: userID}).
			Return(&usecase.DeleteUserResponse{ID: userID}, nil)

		w := do(r, http.MethodDelete, "/users/"+userID, "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, MsgUserDeleted, message(t, w))
	})

	t.Run("Not Found", func(t *testing.T) {
		r, mockUsecase := setupTest(t)

		mockUsecase.On("DeleteUser", mock.Anything, mock.Anything).Return(nil, pkgerrors.ErrUserNotFound)

		w := do(r, http.MethodDelete, "/users/"+userID, "")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "User not found", message(t, w))
	})

	t.Run("Failure", func(t *testing.T) {
		r, mockUsecase := setupTest(t)

		mockUsecase.On("DeleteUser", mock.Anything, mock.Anything).
			Return(nil, pkgerrors.NewInternalError("failed to delete user", errors.New("timeout")))

		w := do(r, http.MethodDelete, "/users/"+userID, "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
