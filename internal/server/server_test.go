package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/salesdash/internal/clock"
	"github.com/smallbiznis/salesdash/internal/config"
	customerrepo "github.com/smallbiznis/salesdash/internal/customer/repository"
	dashboardrepo "github.com/smallbiznis/salesdash/internal/dashboard/repository"
	dashboardservice "github.com/smallbiznis/salesdash/internal/dashboard/service"
	"github.com/smallbiznis/salesdash/internal/importer"
	"github.com/smallbiznis/salesdash/internal/migration"
	productdomain "github.com/smallbiznis/salesdash/internal/product/domain"
	productrepo "github.com/smallbiznis/salesdash/internal/product/repository"
	productservice "github.com/smallbiznis/salesdash/internal/product/service"
	regionrepo "github.com/smallbiznis/salesdash/internal/region/repository"
	"github.com/smallbiznis/salesdash/internal/report"
	transactiondomain "github.com/smallbiznis/salesdash/internal/transaction/domain"
	transactionrepo "github.com/smallbiznis/salesdash/internal/transaction/repository"
	transactionservice "github.com/smallbiznis/salesdash/internal/transaction/service"
	"github.com/smallbiznis/salesdash/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type testServer struct {
	db      *gorm.DB
	engine  *gin.Engine
	node    *snowflake.Node
	product productdomain.Product
}

func newTestServer(t *testing.T) testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, migration.Migrate(conn))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	product := productdomain.Product{
		ID:          node.Generate(),
		ProductID:   "FUR-CH-1",
		ProductName: "Chair",
		Category:    "Furniture",
		SubCategory: "Chairs",
		CreatedAt:   testNow,
		UpdatedAt:   testNow,
	}
	require.NoError(t, conn.Create(&product).Error)

	log := zap.NewNop()
	clk := clock.NewFakeClock(testNow)

	dashboardSvc := dashboardservice.New(dashboardservice.Params{
		DB:     conn,
		Log:    log,
		Clock:  clk,
		Config: config.NewStaticDashboardConfigHolder(config.DefaultDashboardConfig()),
		Repo:   dashboardrepo.Provide(),
	})
	productRepo := productrepo.Provide()

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())
	NewServer(ServerParams{
		Gin: engine,
		Log: log,
		ProductSvc: productservice.New(productservice.Params{
			DB:   conn,
			Log:  log,
			Repo: productRepo,
		}),
		TransactionSvc: transactionservice.New(transactionservice.Params{
			DB:           conn,
			Log:          log,
			GenID:        node,
			Clock:        clk,
			Repo:         transactionrepo.Provide(),
			ProductRepo:  productRepo,
			CustomerRepo: customerrepo.Provide(),
			RegionRepo:   regionrepo.Provide(),
			Hooks:        []transactiondomain.CreatedHook{dashboardservice.NewInvalidationHook(dashboardSvc)},
		}),
		DashboardSvc: dashboardSvc,
		Reports: report.New(report.Params{
			Log:       log,
			Clock:     clk,
			Dashboard: dashboardSvc,
		}),
		Runs: importer.NewRunStore(conn),
	})

	return testServer{db: conn, engine: engine, node: node, product: product}
}

func (ts testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	ts.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func countTransactions(t *testing.T, conn *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, conn.Model(&transactiondomain.Transaction{}).Count(&n).Error)
	return n
}

func TestCreateTransactionRejectsNegativeSales(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/transactions",
		`{"product_id":"`+ts.product.ID.String()+`","sales":-5}`)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Validation error", body["message"])
	errs, ok := body["errors"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []any{"The sales must be at least 0."}, errs["sales"])
	assert.Zero(t, countTransactions(t, ts.db))
}

func TestCreateTransactionRequiresProduct(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/transactions", `{"sales":"10"}`)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	errs := decode(t, w)["errors"].(map[string]any)
	assert.Equal(t, []any{"The product id field is required."}, errs["product_id"])
}

func TestCreateTransactionAcceptsNumericIDs(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/transactions",
		`{"product_id":`+ts.product.ID.String()+`,"customer_id":null,"sales":"19.99","transaction_date":"2025-03-01"}`)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Transaction created successfully", body["message"])
	data := body["data"].(map[string]any)
	assert.Equal(t, ts.product.ID.String(), data["product_id"])
	assert.Equal(t, "19.99", data["sales"])
	product := data["product"].(map[string]any)
	assert.Equal(t, "Chair", product["product_name"])
	assert.Nil(t, data["customer"])
	assert.Equal(t, int64(1), countTransactions(t, ts.db))
}

func TestCreateTransactionRejectsMalformedBody(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/transactions", `{"product_id":`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	payload := decode(t, w)["error"].(map[string]any)
	assert.Equal(t, "validation_error", payload["type"])
}

func TestDashboardInvalidatedAfterCreate(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/dashboard/summary", "")
	require.Equal(t, http.StatusOK, w.Code)
	summary := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, float64(0), summary["total_orders"])

	w = ts.do(t, http.MethodPost, "/api/transactions",
		`{"product_id":"`+ts.product.ID.String()+`","sales":"40"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = ts.do(t, http.MethodGet, "/api/dashboard/summary", "")
	summary = decode(t, w)["data"].(map[string]any)
	assert.Equal(t, float64(1), summary["total_orders"])
	assert.Equal(t, float64(40), summary["total_sales"])
	assert.Equal(t, float64(40), summary["avg_order_value"])
}

func TestDailyTrendRejectsNonNumericDays(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/dashboard/daily-trend?days=abc", "")

	require.Equal(t, http.StatusBadRequest, w.Code)
	payload := decode(t, w)["error"].(map[string]any)
	assert.Equal(t, "validation_error", payload["type"])
	errs := payload["errors"].([]any)
	require.Len(t, errs, 1)
	assert.Equal(t, "days", errs[0].(map[string]any)["field"])
}

func TestDailyTrendRejectsOutOfRangeDays(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/dashboard/daily-trend?days=0", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, "/api/dashboard/daily-trend?days=-3", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDailyTrendReturnsSeries(t *testing.T) {
	ts := newTestServer(t)
	require.NoError(t, ts.db.Create(&transactiondomain.Transaction{
		ID:              ts.node.Generate(),
		ProductID:       ts.product.ID,
		Sales:           decimal.NewFromInt(25),
		TransactionDate: testNow.Add(-2 * time.Hour),
		CreatedAt:       testNow,
		UpdatedAt:       testNow,
	}).Error)

	w := ts.do(t, http.MethodGet, "/api/dashboard/daily-trend?days=7", "")

	require.Equal(t, http.StatusOK, w.Code)
	points := decode(t, w)["data"].([]any)
	require.Len(t, points, 1)
	assert.Equal(t, "2025-03-10", points[0].(map[string]any)["period"])
}

func TestGetProductNotFound(t *testing.T) {
	ts := newTestServer(t)

	for _, id := range []string{ts.node.Generate().String(), "not-a-number"} {
		w := ts.do(t, http.MethodGet, "/api/products/"+id, "")
		require.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"success":false,"message":"Product not found"}`, w.Body.String())
	}
}

func TestGetProductWithStats(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/products/"+ts.product.ID.String(), "")

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "FUR-CH-1", body["data"].(map[string]any)["product_id"])
	stats := body["stats"].(map[string]any)
	assert.Equal(t, float64(0), stats["total_sales"])
	assert.Equal(t, float64(0), stats["total_orders"])
}

func TestListProductsPaginates(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/products?search=chair&per_page=5", "")

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Len(t, body["data"], 1)
	assert.Equal(t, float64(1), body["total"])
	assert.Equal(t, float64(1), body["current_page"])
	assert.Equal(t, float64(1), body["last_page"])
	assert.Equal(t, float64(5), body["per_page"])
}

func TestListProductCategories(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/products/categories", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"data":["Furniture"]}`, w.Body.String())
}

func TestSnapshotNotFound(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/dashboard/snapshots/summary", "")

	require.Equal(t, http.StatusNotFound, w.Code)
	payload := decode(t, w)["error"].(map[string]any)
	assert.Equal(t, "not_found", payload["type"])
}

func TestDashboardReportIsPDF(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/dashboard/report.pdf", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, report.ContentType, w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF"))
}

func TestImportRuns(t *testing.T) {
	ts := newTestServer(t)
	runs := importer.NewRunStore(ts.db)
	_, err := runs.Start(context.Background(), "01JNQ0000000000000000000AA", "data", testNow)
	require.NoError(t, err)

	w := ts.do(t, http.MethodGet, "/api/imports", "")
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].([]any)
	require.Len(t, data, 1)
	assert.Equal(t, "processing", data[0].(map[string]any)["status"])

	w = ts.do(t, http.MethodGet, "/api/imports/01JNQ0000000000000000000AA", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, "/api/imports/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodGet, "/api/imports?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUnknownRouteIsNotFound(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/nope", "")

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestFlexStringUnmarshal(t *testing.T) {
	var req createTransactionRequest
	require.NoError(t, json.Unmarshal([]byte(`{"product_id":1234567890123456789,"region_id":null,"sales":"12.50"}`), &req))
	assert.Equal(t, flexString("1234567890123456789"), req.ProductID)
	assert.Equal(t, flexString(""), req.RegionID)
	assert.Equal(t, flexString("12.50"), req.Sales)

	assert.Error(t, json.Unmarshal([]byte(`{"product_id":true}`), &req))
}

func TestMapErrorStatuses(t *testing.T) {
	status, _ := mapError(productdomain.ErrNotFound)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = mapError(importer.ErrImportInProgress)
	assert.Equal(t, http.StatusConflict, status)

	status, _ = mapError(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, status)
}
