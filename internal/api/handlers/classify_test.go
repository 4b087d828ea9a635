package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cloo-solutions/intakeiq/internal/domain"
	"github.com/cloo-solutions/intakeiq/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockClassifyService struct {
	mock.Mock
}

func (m *MockClassifyService) Classify(ctx context.Context, fileName string) (*service.ClassificationResult, error) {
	args := m.Called(ctx, fileName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ClassificationResult), args.Error(1)
}

func (m *MockClassifyService) ResolvePlacement(fileType, category string) domain.Placement {
	args := m.Called(fileType, category)
	return args.Get(0).(domain.Placement)
}

func (m *MockClassifyService) KnownFileTypes() []string {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]string)
}

func TestClassifyHandler_Classify_Matched(t *testing.T) {
	mockSvc := new(MockClassifyService)
	handler := NewClassifyHandler(mockSvc)

	mockSvc.On("Classify", mock.Anything, "Bank_Statement_Jan.pdf").Return(&service.ClassificationResult{
		Matched: true,
		Classification: domain.Classification{
			FileType:   "Bank Statement",
			Category:   "Financials",
			Folder:     "financials",
			Level:      domain.LevelClient,
			Confidence: 0.85,
			Source:     domain.ClassifiedByPattern,
		},
	}, nil)

	body := `{"file_name":"Bank_Statement_Jan.pdf"}`
	req := httptest.NewRequest(http.MethodPost, "/classify", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()

	handler.Classify(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, true, data["matched"])
	classification := data["classification"].(map[string]interface{})
	assert.Equal(t, "Bank Statement", classification["file_type"])
	assert.Equal(t, "financials", classification["folder"])
	assert.Equal(t, "client", classification["level"])
	assert.Equal(t, 0.85, classification["confidence"])
	assert.Equal(t, "pattern", classification["source"])
	mockSvc.AssertExpectations(t)
}

func TestClassifyHandler_Classify_NoMatch(t *testing.T) {
	mockSvc := new(MockClassifyService)
	handler := NewClassifyHandler(mockSvc)

	mockSvc.On("Classify", mock.Anything, "random.pdf").Return(&service.ClassificationResult{Matched: false}, nil)

	body := `{"file_name":"random.pdf"}`
	req := httptest.NewRequest(http.MethodPost, "/classify", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()

	handler.Classify(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, false, data["matched"])
	_, present := data["classification"]
	assert.False(t, present)
}

func TestClassifyHandler_Classify_MissingFileName(t *testing.T) {
	mockSvc := new(MockClassifyService)
	handler := NewClassifyHandler(mockSvc)

	req := httptest.NewRequest(http.MethodPost, "/classify", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()

	handler.Classify(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "file_name is required")
	mockSvc.AssertNotCalled(t, "Classify")
}

func TestClassifyHandler_ResolvePlacement(t *testing.T) {
	mockSvc := new(MockClassifyService)
	handler := NewClassifyHandler(mockSvc)

	mockSvc.On("ResolvePlacement", "Bank Statement", "").Return(domain.Placement{
		Folder: "financials",
		Level:  domain.LevelClient,
	})

	body := `{"file_type":"Bank Statement"}`
	req := httptest.NewRequest(http.MethodPost, "/classify/placement", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()

	handler.ResolvePlacement(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "financials", data["folder"])
	assert.Equal(t, "client", data["level"])
	mockSvc.AssertExpectations(t)
}

func TestClassifyHandler_FileTypes(t *testing.T) {
	mockSvc := new(MockClassifyService)
	handler := NewClassifyHandler(mockSvc)

	mockSvc.On("KnownFileTypes").Return([]string{"Bank Statement", "Passport"})

	req := httptest.NewRequest(http.MethodGet, "/classify/file-types", nil)
	w := httptest.NewRecorder()

	handler.FileTypes(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	types := data["file_types"].([]interface{})
	assert.Equal(t, []interface{}{"Bank Statement", "Passport"}, types)
}
