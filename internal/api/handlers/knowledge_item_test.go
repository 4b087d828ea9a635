package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cloo-solutions/intakeiq/internal/domain"
	"github.com/cloo-solutions/intakeiq/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockKnowledgeItemService struct {
	mock.Mock
}

func (m *MockKnowledgeItemService) Create(ctx context.Context, input service.CreateKnowledgeItemInput) (*domain.KnowledgeItem, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.KnowledgeItem), args.Error(1)
}

func (m *MockKnowledgeItemService) GetByID(ctx context.Context, id string) (*domain.KnowledgeItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.KnowledgeItem), args.Error(1)
}

func (m *MockKnowledgeItemService) ListByOrg(ctx context.Context, orgID string) ([]domain.KnowledgeItem, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.KnowledgeItem), args.Error(1)
}

func (m *MockKnowledgeItemService) ListByFieldPath(ctx context.Context, orgID, fieldPath string) ([]domain.KnowledgeItem, error) {
	args := m.Called(ctx, orgID, fieldPath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.KnowledgeItem), args.Error(1)
}

func (m *MockKnowledgeItemService) Patch(ctx context.Context, id string, patch domain.KnowledgeItemPatch) (*domain.KnowledgeItem, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.KnowledgeItem), args.Error(1)
}

func (m *MockKnowledgeItemService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newTestKnowledgeItem() *domain.KnowledgeItem {
	return &domain.KnowledgeItem{
		ID:          "ki-1",
		OrgID:       "org-456",
		FieldPath:   "client.dob",
		IsCanonical: true,
		Category:    "client",
		Label:       "Date of Birth",
		Value:       domain.StringValue("1990-01-15"),
		ValueType:   domain.ValueKindString,
		SourceType:  domain.SourceDocument,
		Status:      domain.KnowledgeItemStatusActive,
		AddedAt:     time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
	}
}

func TestKnowledgeItemHandler_Create_Success(t *testing.T) {
	mockSvc := new(MockKnowledgeItemService)
	handler := NewKnowledgeItemHandler(mockSvc)

	mockSvc.On("Create", mock.Anything, mock.MatchedBy(func(input service.CreateKnowledgeItemInput) bool {
		return input.OrgID == "org-456" &&
			input.FieldPath == "client.dob" &&
			input.SourceType == domain.SourceManual &&
			input.Value.Equal(domain.StringValue("1990-01-15"))
	})).Return(newTestKnowledgeItem(), nil)

	body := `{"field_path":"client.dob","is_canonical":true,"label":"Date of Birth","value":"1990-01-15","source_type":"manual"}`
	req := requestWithOrgID(http.MethodPost, "/knowledge-items", []byte(body))
	w := httptest.NewRecorder()

	handler.Create(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "ki-1", data["id"])
	assert.Equal(t, "client.dob", data["field_path"])
	assert.Equal(t, "1990-01-15", data["value"])
	assert.Equal(t, "string", data["value_type"])
	assert.Equal(t, "document", data["source_type"])
	assert.Equal(t, "active", data["status"])
	mockSvc.AssertExpectations(t)
}

func TestKnowledgeItemHandler_Create_MissingFieldPath(t *testing.T) {
	mockSvc := new(MockKnowledgeItemService)
	handler := NewKnowledgeItemHandler(mockSvc)

	body := `{"value":"x","source_type":"manual"}`
	req := requestWithOrgID(http.MethodPost, "/knowledge-items", []byte(body))
	w := httptest.NewRecorder()

	handler.Create(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "field_path is required")
	mockSvc.AssertNotCalled(t, "Create")
}

func TestKnowledgeItemHandler_Create_InvalidSourceType(t *testing.T) {
	mockSvc := new(MockKnowledgeItemService)
	handler := NewKnowledgeItemHandler(mockSvc)

	body := `{"field_path":"client.dob","value":"x","source_type":"carrier_pigeon"}`
	req := requestWithOrgID(http.MethodPost, "/knowledge-items", []byte(body))
	w := httptest.NewRecorder()

	handler.Create(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid source_type")
	mockSvc.AssertNotCalled(t, "Create")
}

func TestKnowledgeItemHandler_Get_NotFound(t *testing.T) {
	mockSvc := new(MockKnowledgeItemService)
	handler := NewKnowledgeItemHandler(mockSvc)

	mockSvc.On("GetByID", mock.Anything, "missing").Return(nil, domain.ErrKnowledgeItemNotFound)

	req := httptest.NewRequest(http.MethodGet, "/knowledge-items/missing", nil)
	req = requestWithURLParam(req, "id", "missing")
	w := httptest.NewRecorder()

	handler.Get(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestKnowledgeItemHandler_List_ByOrg(t *testing.T) {
	mockSvc := new(MockKnowledgeItemService)
	handler := NewKnowledgeItemHandler(mockSvc)

	mockSvc.On("ListByOrg", mock.Anything, "org-456").Return([]domain.KnowledgeItem{*newTestKnowledgeItem()}, nil)

	req := requestWithOrgID(http.MethodGet, "/knowledge-items", nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	items := resp["data"].([]interface{})
	require.Len(t, items, 1)
	mockSvc.AssertNotCalled(t, "ListByFieldPath")
}

func TestKnowledgeItemHandler_List_ByFieldPath(t *testing.T) {
	mockSvc := new(MockKnowledgeItemService)
	handler := NewKnowledgeItemHandler(mockSvc)

	mockSvc.On("ListByFieldPath", mock.Anything, "org-456", "client.dob").
		Return([]domain.KnowledgeItem{}, nil)

	req := requestWithOrgID(http.MethodGet, "/knowledge-items?field_path=client.dob", nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
	mockSvc.AssertNotCalled(t, "ListByOrg")
}

func TestKnowledgeItemHandler_Patch_Success(t *testing.T) {
	mockSvc := new(MockKnowledgeItemService)
	handler := NewKnowledgeItemHandler(mockSvc)

	patched := newTestKnowledgeItem()
	patched.FieldPath = "client.spouse_name"
	mockSvc.On("Patch", mock.Anything, "ki-1", mock.MatchedBy(func(patch domain.KnowledgeItemPatch) bool {
		return patch.FieldPath != nil && *patch.FieldPath == "client.spouse_name" &&
			patch.IsCanonical != nil && *patch.IsCanonical &&
			patch.Status == nil && patch.Value == nil
	})).Return(patched, nil)

	body := `{"field_path":"client.spouse_name","is_canonical":true}`
	req := requestWithOrgID(http.MethodPatch, "/knowledge-items/ki-1", []byte(body))
	req = requestWithURLParam(req, "id", "ki-1")
	w := httptest.NewRecorder()

	handler.Patch(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "client.spouse_name", data["field_path"])
	mockSvc.AssertExpectations(t)
}

func TestKnowledgeItemHandler_Delete_Success(t *testing.T) {
	mockSvc := new(MockKnowledgeItemService)
	handler := NewKnowledgeItemHandler(mockSvc)

	mockSvc.On("Delete", mock.Anything, "ki-1").Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/knowledge-items/ki-1", nil)
	req = requestWithURLParam(req, "id", "ki-1")
	w := httptest.NewRecorder()

	handler.Delete(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	mockSvc.AssertExpectations(t)
}
