package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hospital-ops-api/internal/dto"
	"github.com/noah-isme/hospital-ops-api/internal/models"
	"github.com/noah-isme/hospital-ops-api/internal/service"
)

type fakeScheduleSrv struct {
	window  []models.ScheduleDay
	day     models.ScheduleDay
	err     error
	lastReq dto.SaveScheduleRequest
}

func (f *fakeScheduleSrv) Window(_ context.Context, doctorID string) ([]models.ScheduleDay, error) {
	return f.window, f.err
}

func (f *fakeScheduleSrv) Day(doctorID, date string) models.ScheduleDay {
	return f.day
}

func (f *fakeScheduleSrv) Replace(_ context.Context, req dto.SaveScheduleRequest) (models.ScheduleDay, error) {
	f.lastReq = req
	return f.day, f.err
}

func newScheduleTestHandler(fake *fakeScheduleSrv) *ScheduleHandler {
	catalog := service.NewCatalogService(emptyCatalogRepo{}, service.NewCacheService(nil, nil, 0, nil), 0, nil)
	return &ScheduleHandler{service: fake, catalog: catalog, validate: validator.New()}
}

func TestScheduleHandlerWindow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fake := &fakeScheduleSrv{window: []models.ScheduleDay{
		{Date: "2026-03-02", Weekday: "Monday", IsAvailable: false},
		{Date: "2026-03-03", Weekday: "Tuesday", IsAvailable: true, Slots: []models.Slot{
			{ID: "42", Title: "Morning clinic", Start: 9 * 60, End: 10 * 60},
		}},
	}}
	handler := newScheduleTestHandler(fake)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/doctors/doc-1/schedule", nil)
	c.Params = gin.Params{{Key: "id", Value: "doc-1"}}

	handler.Window(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data []dto.ScheduleDayDTO `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 2)
	assert.Empty(t, envelope.Data[0].Slots)
	require.Len(t, envelope.Data[1].Slots, 1)
	assert.Equal(t, "09:00:00", envelope.Data[1].Slots[0].StartTime)
	assert.Equal(t, "10:00:00", envelope.Data[1].Slots[0].EndTime)
}

func TestScheduleHandlerReplaceOverridesPathIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fake := &fakeScheduleSrv{day: models.ScheduleDay{Date: "2026-03-03"}}
	handler := newScheduleTestHandler(fake)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	body := strings.NewReader(`{"doctor_id":"spoofed","date":"1999-01-01","events":[{"date":"1999-01-01","title":"X","start_time":"09:00:00","end_time":"10:00:00"}]}`)
	c.Request = httptest.NewRequest(http.MethodPut, "/doctors/doc-1/schedule/2026-03-03", body)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: "doc-1"}, {Key: "date", Value: "2026-03-03"}}

	handler.Replace(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	// Path parameters win over whatever the body claims.
	assert.Equal(t, "doc-1", fake.lastReq.DoctorID)
	assert.Equal(t, "2026-03-03", fake.lastReq.Date)
	require.Len(t, fake.lastReq.Events, 1)
	assert.Equal(t, "2026-03-03", fake.lastReq.Events[0].Date)
}

func TestScheduleHandlerReplaceRejectsMalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fake := &fakeScheduleSrv{}
	handler := newScheduleTestHandler(fake)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPut, "/doctors/doc-1/schedule/2026-03-03",
		strings.NewReader(`{"events": "not-a-list"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: "doc-1"}, {Key: "date", Value: "2026-03-03"}}

	handler.Replace(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, fake.lastReq.DoctorID)
}

func TestScheduleHandlerReplaceRequiresEventTimes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fake := &fakeScheduleSrv{}
	handler := newScheduleTestHandler(fake)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPut, "/doctors/doc-1/schedule/2026-03-03",
		strings.NewReader(`{"events":[{"title":"No times"}]}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: "doc-1"}, {Key: "date", Value: "2026-03-03"}}

	handler.Replace(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
