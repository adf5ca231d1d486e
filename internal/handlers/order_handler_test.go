package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"kl-decors-backend/internal/database"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func reportRequest(t *testing.T, db *gorm.DB, query string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := NewOrderHandler(db, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/admin/reports"+query, nil)
	h.Report(c)
	return w
}

func TestReportRejectsInvertedRange(t *testing.T) {
	w := reportRequest(t, newTestDB(t), "?start=2026-02-01&end=2026-01-01")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "start date")
}

func TestReportAcceptsSingleDayRange(t *testing.T) {
	// start == end spans the whole inclusive day
	w := reportRequest(t, newTestDB(t), "?start=2026-01-15&end=2026-01-15")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "total_revenue")
}

func TestReportRejectsMalformedDates(t *testing.T) {
	w := reportRequest(t, newTestDB(t), "?start=15-01-2026")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
