package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vestfab-as/quoting-api/internal/domain"
	"github.com/vestfab-as/quoting-api/internal/http/handler"
	"github.com/vestfab-as/quoting-api/internal/repository"
	"github.com/vestfab-as/quoting-api/internal/service"
	"github.com/vestfab-as/quoting-api/internal/storage"
	"github.com/vestfab-as/quoting-api/tests/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func itemHandlerRouter(t *testing.T, db *gorm.DB) chi.Router {
	logger := zap.NewNop()

	itemRepo := repository.NewQuoteItemRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	clusterRepo := repository.NewClusterRepository(db)
	lineRepo := repository.NewLineRepository(db)
	componentRepo := repository.NewComponentRepository(db)
	offerRepo := repository.NewSupplierOfferRepository(db)
	productRepo := repository.NewProductRepository(db)
	bundleRepo := repository.NewBundleRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)

	fileStorage, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	catalogService := service.NewCatalogService(productRepo, componentRepo, bundleRepo, logger)
	costingService := service.NewCostingService(catalogService, offerRepo, bundleRepo, clusterRepo, lineRepo, logger)
	clusterService := service.NewClusterService(clusterRepo, lineRepo, itemRepo, logger)
	attachmentService := service.NewAttachmentService(attachmentRepo, itemRepo, fileStorage, logger)
	itemService := service.NewItemService(itemRepo, quoteRepo, clusterRepo, lineRepo, productRepo, clusterService, costingService, attachmentService, logger)

	h := handler.NewQuoteItemHandler(itemService, clusterService, logger)

	r := chi.NewRouter()
	r.Get("/quotes/{id}/items", h.ListByQuote)
	r.Post("/quotes/{id}/items", h.Create)
	r.Put("/quotes/{id}/items/reorder", h.Reorder)
	r.Get("/items/{id}", h.GetByID)
	r.Put("/items/{id}", h.Update)
	r.Delete("/items/{id}", h.Delete)
	r.Post("/items/{id}/duplicate", h.Duplicate)
	r.Post("/items/{id}/ensure-cluster", h.EnsureCluster)
	r.Post("/items/{id}/apply-price", h.ApplyPrice)
	return r
}

func TestQuoteItemHandler_CreateManual(t *testing.T) {
	db := setupQuoteHandlerTestDB(t)
	r := itemHandlerRouter(t, db)

	quote := testutil.CreateTestQuote(t, db, "Item quote")

	body := bytes.NewBufferString(`{"kind":"manual","manual":{"description":"Custom bracket","qty":4,"unitPrice":199.5}}`)
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/quotes/%s/items", quote.ID), body)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)

	var dto domain.QuoteItemDTO
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &dto))
	assert.Equal(t, "Custom bracket", dto.Description)
	assert.Equal(t, domain.ItemTypePriced, dto.ItemType)
	assert.InDelta(t, 798.0, dto.LineTotal, 1e-9)
}

func TestQuoteItemHandler_CreateText(t *testing.T) {
	db := setupQuoteHandlerTestDB(t)
	r := itemHandlerRouter(t, db)

	quote := testutil.CreateTestQuote(t, db, "Text quote")

	body := bytes.NewBufferString(`{"kind":"text","text":{"itemType":"heading","description":"Delivery scope","textAlign":"center"}}`)
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/quotes/%s/items", quote.ID), body)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)

	var dto domain.QuoteItemDTO
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &dto))
	assert.Equal(t, domain.ItemTypeHeading, dto.ItemType)
	assert.Equal(t, domain.TextAlignCenter, dto.TextAlign)
}

func TestQuoteItemHandler_Create_InvalidKind(t *testing.T) {
	db := setupQuoteHandlerTestDB(t)
	r := itemHandlerRouter(t, db)

	quote := testutil.CreateTestQuote(t, db, "Invalid kind quote")

	body := bytes.NewBufferString(`{"kind":"mystery"}`)
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/quotes/%s/items", quote.ID), body)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestQuoteItemHandler_Update_TextItemPriceRejected(t *testing.T) {
	db := setupQuoteHandlerTestDB(t)
	r := itemHandlerRouter(t, db)

	quote := testutil.CreateTestQuote(t, db, "Text update quote")
	heading := &domain.QuoteItem{
		QuoteID:         quote.ID,
		Description:     "Heading",
		ItemType:        domain.ItemTypeHeading,
		TextAlign:       domain.TextAlignLeft,
		SelectedOptions: "{}",
	}
	require.NoError(t, db.Create(heading).Error)

	body := bytes.NewBufferString(`{"unitPrice":100}`)
	req := httptest.NewRequest(http.MethodPut, "/items/"+heading.ID.String(), body)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestQuoteItemHandler_EnsureClusterAndApplyPrice(t *testing.T) {
	db := setupQuoteHandlerTestDB(t)
	r := itemHandlerRouter(t, db)

	quote := testutil.CreateTestQuote(t, db, "Costing flow quote")
	item := testutil.CreateTestItem(t, db, quote, "Frame", 0)

	// Ensure-cluster is idempotent
	req := httptest.NewRequest(http.MethodPost, "/items/"+item.ID.String()+"/ensure-cluster", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var cluster domain.CostClusterDTO
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &cluster))
	assert.Equal(t, item.ID, cluster.QuoteItemID)

	req = httptest.NewRequest(http.MethodPost, "/items/"+item.ID.String()+"/ensure-cluster", nil)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var again domain.CostClusterDTO
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &again))
	assert.Equal(t, cluster.ID, again.ID)

	// Add a line and apply the cluster total to the item
	line := &domain.CostLine{
		ClusterID:       cluster.ID,
		LineType:        domain.LineTypeManual,
		Description:     "Parts",
		Qty:             2,
		UnitCost:        testutil.Float64(100),
		IncludeInMarkup: true,
	}
	require.NoError(t, db.Create(line).Error)

	body := bytes.NewBufferString(fmt.Sprintf(`{"clusterId":%q}`, cluster.ID.String()))
	req = httptest.NewRequest(http.MethodPost, "/items/"+item.ID.String()+"/apply-price", body)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var updated domain.QuoteItemDTO
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &updated))
	assert.InDelta(t, 200.0, updated.UnitPrice, 1e-9)
}

func TestQuoteItemHandler_Reorder(t *testing.T) {
	db := setupQuoteHandlerTestDB(t)
	r := itemHandlerRouter(t, db)

	quote := testutil.CreateTestQuote(t, db, "Reorder quote")
	a := testutil.CreateTestItem(t, db, quote, "A", 0)
	b := testutil.CreateTestItem(t, db, quote, "B", 1)

	payload, err := json.Marshal(domain.ReorderItemsRequest{OrderedIDs: []uuid.UUID{b.ID, a.ID}})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/quotes/%s/items/reorder", quote.ID), bytes.NewBuffer(payload))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var dtos []domain.QuoteItemDTO
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &dtos))
	require.Len(t, dtos, 2)
	assert.Equal(t, b.ID, dtos[0].ID)
	assert.Equal(t, a.ID, dtos[1].ID)
}

func TestQuoteItemHandler_Reorder_Incomplete(t *testing.T) {
	db := setupQuoteHandlerTestDB(t)
	r := itemHandlerRouter(t, db)

	quote := testutil.CreateTestQuote(t, db, "Incomplete reorder quote")
	a := testutil.CreateTestItem(t, db, quote, "A", 0)
	testutil.CreateTestItem(t, db, quote, "B", 1)

	payload, err := json.Marshal(domain.ReorderItemsRequest{OrderedIDs: []uuid.UUID{a.ID}})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/quotes/%s/items/reorder", quote.ID), bytes.NewBuffer(payload))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestQuoteItemHandler_Duplicate(t *testing.T) {
	db := setupQuoteHandlerTestDB(t)
	r := itemHandlerRouter(t, db)

	quote := testutil.CreateTestQuote(t, db, "Duplicate quote")
	item := testutil.CreateTestItem(t, db, quote, "Original", 0)

	req := httptest.NewRequest(http.MethodPost, "/items/"+item.ID.String()+"/duplicate", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code)

	var dto domain.QuoteItemDTO
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &dto))
	assert.NotEqual(t, item.ID, dto.ID)
	assert.Equal(t, "Original", dto.Description)
}
