package synonym_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"paperbase/features/synonym"
)

// MockRepository is a mock implementation of synonym.Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetAll(ctx context.Context) (map[string][]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]string), args.Error(1)
}

func (m *MockRepository) ReplaceAll(ctx context.Context, dict map[string][]string) error {
	return m.Called(ctx, dict).Error(0)
}

func TestService_LoadAndSnapshot(t *testing.T) {
	mockRepo := new(MockRepository)
	svc := synonym.NewService(mockRepo)

	assert.Empty(t, svc.Synonyms(), "snapshot starts empty before load")

	mockRepo.On("GetAll", mock.Anything).Return(map[string][]string{"심의료": {"게재료"}}, nil)
	require.NoError(t, svc.Load(context.Background()))
	assert.Equal(t, map[string][]string{"심의료": {"게재료"}}, svc.Synonyms())
}

func TestService_LoadFailureKeepsSnapshot(t *testing.T) {
	mockRepo := new(MockRepository)
	svc := synonym.NewService(mockRepo)

	mockRepo.On("GetAll", mock.Anything).Return(map[string][]string{"심의료": {"게재료"}}, nil).Once()
	require.NoError(t, svc.Load(context.Background()))

	mockRepo.On("GetAll", mock.Anything).Return(nil, errors.New("db down")).Once()
	assert.Error(t, svc.Load(context.Background()))
	assert.Equal(t, map[string][]string{"심의료": {"게재료"}}, svc.Synonyms())
}

func TestService_ReplacePersistsBeforeSwap(t *testing.T) {
	mockRepo := new(MockRepository)
	svc := synonym.NewService(mockRepo)

	mockRepo.On("ReplaceAll", mock.Anything, mock.Anything).Return(errors.New("write failed")).Once()
	assert.Error(t, svc.Replace(context.Background(), map[string][]string{"a": {"b"}}))
	assert.Empty(t, svc.Synonyms(), "failed write must not change the snapshot")

	mockRepo.On("ReplaceAll", mock.Anything, mock.Anything).Return(nil).Once()
	require.NoError(t, svc.Replace(context.Background(), map[string][]string{"a": {"b"}}))
	assert.Equal(t, map[string][]string{"a": {"b"}}, svc.Synonyms())
}

func TestHandler_GetSynonyms(t *testing.T) {
	mockRepo := new(MockRepository)
	svc := synonym.NewService(mockRepo)
	handler := synonym.NewHandler(svc)

	mockRepo.On("GetAll", mock.Anything).Return(map[string][]string{"심의료": {"게재료"}}, nil)
	require.NoError(t, svc.Load(context.Background()))

	req := httptest.NewRequest("GET", "/synonyms", nil)
	w := httptest.NewRecorder()
	handler.GetSynonyms(w, req)

	resp := w.Result()
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]map[string][]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, []string{"게재료"}, body["data"]["심의료"])
}

func TestHandler_UpdateSynonyms(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := synonym.NewService(mockRepo)
		handler := synonym.NewHandler(svc)

		mockRepo.On("ReplaceAll", mock.Anything, map[string][]string{"회비": {"연회비"}}).Return(nil)

		body, _ := json.Marshal(map[string][]string{"회비": {"연회비"}})
		req := httptest.NewRequest("PUT", "/synonyms", bytes.NewBuffer(body))
		w := httptest.NewRecorder()
		handler.UpdateSynonyms(w, req)

		assert.Equal(t, http.StatusOK, w.Result().StatusCode)
		assert.Equal(t, map[string][]string{"회비": {"연회비"}}, svc.Synonyms())
		mockRepo.AssertExpectations(t)
	})

	t.Run("ValidationError", func(t *testing.T) {
		mockRepo := new(MockRepository)
		handler := synonym.NewHandler(synonym.NewService(mockRepo))

		req := httptest.NewRequest("PUT", "/synonyms", bytes.NewBufferString("not json"))
		w := httptest.NewRecorder()
		handler.UpdateSynonyms(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode)
	})
}
