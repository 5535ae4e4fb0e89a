package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hospital-ops-api/internal/models"
	"github.com/noah-isme/hospital-ops-api/internal/service"
	appErrors "github.com/noah-isme/hospital-ops-api/pkg/errors"
)

type fakeEditSessionSrv struct {
	view    *service.SessionView
	day     models.ScheduleDay
	err     error
	lastOp  string
	field   string
	value   string
	slotID  string
	closed  bool
	infos   []models.EditSessionInfo
}

func (f *fakeEditSessionSrv) OpenDay(_ context.Context, doctorID, date string) (*service.SessionView, error) {
	f.lastOp = "open"
	return f.view, f.err
}

func (f *fakeEditSessionSrv) AddSlot(_ context.Context, doctorID, date string) (*service.SessionView, error) {
	f.lastOp = "add"
	return f.view, f.err
}

func (f *fakeEditSessionSrv) UpdateField(_ context.Context, doctorID, date, slotID, field, value string) (*service.SessionView, error) {
	f.lastOp = "update"
	f.slotID = slotID
	f.field = field
	f.value = value
	return f.view, f.err
}

func (f *fakeEditSessionSrv) RemoveSlot(_ context.Context, doctorID, date, slotID string) (*service.SessionView, error) {
	f.lastOp = "remove"
	f.slotID = slotID
	return f.view, f.err
}

func (f *fakeEditSessionSrv) Save(_ context.Context, doctorID, date string) (models.ScheduleDay, error) {
	f.lastOp = "save"
	return f.day, f.err
}

func (f *fakeEditSessionSrv) Cancel(_ context.Context, doctorID, date string) (*service.SessionView, error) {
	f.lastOp = "cancel"
	return f.view, f.err
}

func (f *fakeEditSessionSrv) Close(doctorID, date string) {
	f.closed = true
}

func (f *fakeEditSessionSrv) Sessions(doctorID string) []models.EditSessionInfo {
	return f.infos
}

type emptyCatalogRepo struct{}

func (emptyCatalogRepo) Load(ctx context.Context) (*models.Catalog, error) {
	return &models.Catalog{}, nil
}

func newEditHandler(fake *fakeEditSessionSrv) *EditSessionHandler {
	catalog := service.NewCatalogService(emptyCatalogRepo{}, service.NewCacheService(nil, nil, 0, nil), 0, nil)
	return &EditSessionHandler{service: fake, catalog: catalog}
}

func sessionParams(c *gin.Context) {
	c.Params = gin.Params{
		{Key: "id", Value: "doc-1"},
		{Key: "date", Value: "2026-03-03"},
		{Key: "slotId", Value: "42"},
	}
}

func TestEditSessionHandlerOpen(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fake := &fakeEditSessionSrv{view: &service.SessionView{
		Info: models.EditSessionInfo{DoctorID: "doc-1", Date: "2026-03-03", State: models.SessionDayOpen},
		Slots: []models.Slot{
			{ID: "42", Title: "Morning clinic", Start: 9 * 60, End: 10 * 60},
		},
	}}
	handler := newEditHandler(fake)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/doctors/doc-1/schedule/2026-03-03/session", nil)
	sessionParams(c)

	handler.Open(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "open", fake.lastOp)

	var envelope struct {
		Data sessionViewResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, models.SessionDayOpen, envelope.Data.Info.State)
	require.Len(t, envelope.Data.Slots, 1)
	assert.Equal(t, "09:00:00", envelope.Data.Slots[0].StartTime)
}

func TestEditSessionHandlerOpenOutsideHorizon(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fake := &fakeEditSessionSrv{err: appErrors.ErrEditWindowClosed}
	handler := newEditHandler(fake)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/doctors/doc-1/schedule/2027-01-01/session", nil)
	sessionParams(c)

	handler.Open(c)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var envelope struct {
		Error *appErrors.Error `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "EDIT_WINDOW_CLOSED", envelope.Error.Code)
}

func TestEditSessionHandlerUpdateField(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fake := &fakeEditSessionSrv{view: &service.SessionView{}}
	handler := newEditHandler(fake)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	body := strings.NewReader(`{"field":"start_time","value":"09:30:00"}`)
	c.Request = httptest.NewRequest(http.MethodPatch, "/doctors/doc-1/schedule/2026-03-03/session/slots/42", body)
	c.Request.Header.Set("Content-Type", "application/json")
	sessionParams(c)

	handler.UpdateField(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "update", fake.lastOp)
	assert.Equal(t, "42", fake.slotID)
	assert.Equal(t, "start_time", fake.field)
	assert.Equal(t, "09:30:00", fake.value)
}

func TestEditSessionHandlerUpdateFieldRequiresField(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fake := &fakeEditSessionSrv{view: &service.SessionView{}}
	handler := newEditHandler(fake)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPatch, "/doctors/doc-1/schedule/2026-03-03/session/slots/42",
		strings.NewReader(`{"value":"x"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	sessionParams(c)

	handler.UpdateField(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, fake.lastOp)
}

func TestEditSessionHandlerSaveConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fake := &fakeEditSessionSrv{err: appErrors.Clone(appErrors.ErrConflict, "slot 09:00-10:00 overlaps 09:30-10:30")}
	handler := newEditHandler(fake)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/doctors/doc-1/schedule/2026-03-03/session/save", nil)
	sessionParams(c)

	handler.Save(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
}
