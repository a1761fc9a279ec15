package acceptance

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/amara-atelier/atelier-orders-api/config"
	"github.com/amara-atelier/atelier-orders-api/controllers"
	"github.com/amara-atelier/atelier-orders-api/models"
	"github.com/amara-atelier/atelier-orders-api/tests/testutil"
)

// OrderAcceptanceTestSuite runs customer and atelier scenarios against a real
// HTTP server
type OrderAcceptanceTestSuite struct {
	suite.Suite
	server *httptest.Server
	db     *gorm.DB
}

// SetupSuite runs once before all tests
func (suite *OrderAcceptanceTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)

	os.Setenv("GO_ENV", "test")
	os.Setenv("AUTH0_DOMAIN", "test.auth0.com")
	os.Setenv("AUTH0_AUDIENCE", "https://api.test.com")
	os.Setenv("PORT", "8080")

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	suite.NoError(err)
	suite.db = db

	err = db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.StatusHistoryEntry{},
		&models.Tailor{},
		&models.ProductionQueueEntry{},
		&models.ProductionNote{},
	)
	suite.NoError(err)

	config.SetDB(db)

	router := suite.createRouter()
	suite.server = httptest.NewServer(router)
}

// TearDownSuite runs once after all tests
func (suite *OrderAcceptanceTestSuite) TearDownSuite() {
	suite.server.Close()
	if suite.db != nil {
		sqlDB, _ := suite.db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
	}
}

// SetupTest runs before each test
func (suite *OrderAcceptanceTestSuite) SetupTest() {
	testutil.RequireTestEnvironment(suite.T())

	// Clean up database before each test
	suite.db.Exec("DELETE FROM production_notes")
	suite.db.Exec("DELETE FROM production_queue")
	suite.db.Exec("DELETE FROM order_status_history")
	suite.db.Exec("DELETE FROM order_items")
	suite.db.Exec("DELETE FROM orders")
	suite.db.Exec("DELETE FROM tailors")
	suite.db.Exec("DELETE FROM products")
	suite.db.Exec("DELETE FROM users")

	// Seed the actors and a catalogue entry
	suite.NoError(suite.db.Create(&models.User{Auth0ID: "auth0|customer", Name: "Acceptance Customer", Email: "customer@test.com", Role: "customer"}).Error)
	suite.NoError(suite.db.Create(&models.User{Auth0ID: "auth0|admin", Name: "Acceptance Admin", Email: "admin@test.com", Role: "admin"}).Error)
	suite.NoError(suite.db.Create(&models.Product{Title: "Safari jacket", Price: 950, StockQuantity: 15}).Error)
}

// createRouter creates the full application router for acceptance testing
func (suite *OrderAcceptanceTestSuite) createRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	v1 := router.Group("/api/v1")
	{
		// Customer routes
		v1.POST("/orders", suite.mockAuthMiddleware("auth0|customer"), controllers.CreateOrder)
		v1.GET("/orders", suite.mockAuthMiddleware("auth0|customer"), controllers.ListOrders)
		v1.GET("/orders/:id", suite.mockAuthMiddleware("auth0|customer"), controllers.GetOrder)
		v1.POST("/orders/:id/cancel", suite.mockAuthMiddleware("auth0|customer"), controllers.CancelOrder)

		// Staff routes
		v1.POST("/orders-admin/:id/verify-payment", suite.mockAuthMiddleware("auth0|admin"), controllers.VerifyPayment)
		v1.PATCH("/orders-admin/:id/status", suite.mockAuthMiddleware("auth0|admin"), controllers.UpdateOrderStatus)
		v1.POST("/production", suite.mockAuthMiddleware("auth0|admin"), controllers.EnqueueOrder)
		v1.PATCH("/production/:id/status", suite.mockAuthMiddleware("auth0|admin"), controllers.AdvanceProductionStatus)
		v1.POST("/production/:id/assign", suite.mockAuthMiddleware("auth0|admin"), controllers.AssignTailor)
		v1.POST("/tailors", suite.mockAuthMiddleware("auth0|admin"), controllers.CreateTailor)
	}

	return router
}

// mockAuthMiddleware simulates authentication for acceptance testing
func (suite *OrderAcceptanceTestSuite) mockAuthMiddleware(auth0ID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		testutil.SetMockAuthContext(c, auth0ID, "https://test.auth0.com/", nil)
		c.Set("access_token", "mock-token")
		c.Next()
	}
}

// makeRequest is a helper to make HTTP requests against the live test server
func (suite *OrderAcceptanceTestSuite) makeRequest(method, path string, body interface{}) (*http.Response, map[string]interface{}) {
	var bodyReader *bytes.Reader
	if body != nil {
		bodyJSON, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(bodyJSON)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, suite.server.URL+path, bodyReader)
	suite.NoError(err)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	suite.NoError(err)

	var response map[string]interface{}
	suite.NoError(json.NewDecoder(resp.Body).Decode(&response))
	resp.Body.Close()

	return resp, response
}

func (suite *OrderAcceptanceTestSuite) placeOrder() int {
	var product models.Product
	suite.NoError(suite.db.First(&product).Error)

	resp, response := suite.makeRequest("POST", "/api/v1/orders", map[string]interface{}{
		"items": []map[string]interface{}{
			{"product_id": product.ID, "quantity": 1},
		},
		"shipping_address": map[string]interface{}{
			"line1": "5 Moi Ave", "city": "Nairobi", "postal_code": "00100", "country": "KE",
		},
		"payment_method": "bank-transfer",
	})
	suite.Equal(http.StatusCreated, resp.StatusCode)
	return int(response["data"].(map[string]interface{})["id"].(float64))
}

// TestCustomerPlacesAndTracksOrder: a customer places an order and can see it
// with its full pricing breakdown and history
func (suite *OrderAcceptanceTestSuite) TestCustomerPlacesAndTracksOrder() {
	orderID := suite.placeOrder()

	resp, response := suite.makeRequest("GET", fmt.Sprintf("/api/v1/orders/%d", orderID), nil)
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)

	data := response["data"].(map[string]interface{})
	order := data["order"].(map[string]interface{})
	assert.Equal(suite.T(), "pending-payment", order["status"])
	assert.Equal(suite.T(), float64(950), order["total"])
	assert.Equal(suite.T(), "Acceptance Customer", order["customer_name"])
	assert.True(suite.T(), data["can_cancel"].(bool))

	history := order["status_history"].([]interface{})
	assert.Len(suite.T(), history, 1)
	assert.Equal(suite.T(), "Order placed", history[0].(map[string]interface{})["note"])
}

// TestAtelierFulfillsOrder: the staff verify payment, produce the garment,
// and ship it; the customer sees each stage
func (suite *OrderAcceptanceTestSuite) TestAtelierFulfillsOrder() {
	orderID := suite.placeOrder()

	// Admin confirms the bank transfer
	resp, _ := suite.makeRequest("POST", fmt.Sprintf("/api/v1/orders-admin/%d/verify-payment", orderID), map[string]interface{}{})
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)

	// Order enters production and gets a tailor
	resp, response := suite.makeRequest("POST", "/api/v1/production", map[string]interface{}{"order_id": orderID})
	assert.Equal(suite.T(), http.StatusCreated, resp.StatusCode)
	entryID := int(response["data"].(map[string]interface{})["id"].(float64))

	resp, response = suite.makeRequest("POST", "/api/v1/tailors", map[string]interface{}{"name": "Acceptance Tailor"})
	assert.Equal(suite.T(), http.StatusCreated, resp.StatusCode)
	tailorID := int(response["data"].(map[string]interface{})["id"].(float64))

	resp, _ = suite.makeRequest("POST", fmt.Sprintf("/api/v1/production/%d/assign", entryID), map[string]interface{}{"tailor_id": tailorID})
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)

	for _, stage := range []string{"cutting", "stitching", "embroidery", "finishing", "quality-check", "ready-for-shipment", "completed"} {
		resp, _ = suite.makeRequest("PATCH", fmt.Sprintf("/api/v1/production/%d/status", entryID), map[string]interface{}{"status": stage})
		assert.Equal(suite.T(), http.StatusOK, resp.StatusCode, "Stage %s", stage)
	}

	resp, _ = suite.makeRequest("PATCH", fmt.Sprintf("/api/v1/orders-admin/%d/status", orderID), map[string]interface{}{"status": "shipped"})
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
	resp, response = suite.makeRequest("PATCH", fmt.Sprintf("/api/v1/orders-admin/%d/status", orderID), map[string]interface{}{"status": "delivered"})
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)

	order := response["data"].(map[string]interface{})
	assert.Equal(suite.T(), "delivered", order["status"])
	assert.NotNil(suite.T(), order["delivered_at"])
}

// TestCustomerCancellationWindow: cancellation is open before production and
// closed after
func (suite *OrderAcceptanceTestSuite) TestCustomerCancellationWindow() {
	// First order: cancelled while still pending
	orderID := suite.placeOrder()
	resp, response := suite.makeRequest("POST", fmt.Sprintf("/api/v1/orders/%d/cancel", orderID), map[string]interface{}{
		"reason": "ordered the wrong size",
	})
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
	assert.Equal(suite.T(), "cancelled", response["data"].(map[string]interface{})["status"])

	// Second order: production has started, customer is refused
	orderID = suite.placeOrder()
	resp, _ = suite.makeRequest("POST", "/api/v1/production", map[string]interface{}{"order_id": orderID})
	assert.Equal(suite.T(), http.StatusCreated, resp.StatusCode)

	resp, response = suite.makeRequest("POST", fmt.Sprintf("/api/v1/orders/%d/cancel", orderID), map[string]interface{}{
		"reason": "changed my mind",
	})
	assert.Equal(suite.T(), http.StatusConflict, resp.StatusCode)
	errorData := response["error"].(map[string]interface{})
	assert.Equal(suite.T(), "INVALID_STATE_TRANSITION", errorData["code"])
}

// TestStockIsReservedOnPlacement: placing an order decrements the product's
// stock immediately
func (suite *OrderAcceptanceTestSuite) TestStockIsReservedOnPlacement() {
	suite.placeOrder()

	var product models.Product
	suite.NoError(suite.db.First(&product).Error)
	assert.Equal(suite.T(), 14, product.StockQuantity)
	assert.Equal(suite.T(), 1, product.PurchaseCount)
}

// TestOrderAcceptanceTestSuite runs the test suite
func TestOrderAcceptanceTestSuite(t *testing.T) {
	suite.Run(t, new(OrderAcceptanceTestSuite))
}
