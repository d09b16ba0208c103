package loans

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"loans-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHandlerTest(t *testing.T) (*fiber.App, *Service) {
	t.Helper()
	service, _ := setupService(t)
	h := &Handlers{Service: service}

	app := fiber.New()
	group := app.Group("/api/v1/loans")
	group.Get("/", h.GetAll)
	group.Post("/", h.Create)
	group.Get("/number/:loanNumber", h.GetByNumber)
	group.Get("/customer/:customerId", h.GetByCustomer)
	group.Get("/:id", h.GetByID)
	group.Put("/:id", h.Update)
	group.Delete("/:id", h.Delete)
	group.Post("/:id/fund", h.Fund)
	group.Get("/:id/balance", h.GetBalance)
	group.Get("/:id/schedule", h.GetSchedule)
	group.Post("/:id/apply-payment", h.ApplyPayment)
	return app, service
}

func postJSON(t *testing.T, app *fiber.App, path string, body interface{}) (*response.Body, int) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return decodeEnvelope(t, resp.Body), resp.StatusCode
}

func getPath(t *testing.T, app *fiber.App, path string) (*response.Body, int) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", path, nil), -1)
	require.NoError(t, err)
	return decodeEnvelope(t, resp.Body), resp.StatusCode
}

func decodeEnvelope(t *testing.T, r io.Reader) *response.Body {
	t.Helper()
	var body response.Body
	require.NoError(t, json.NewDecoder(r).Decode(&body))
	return &body
}

func validCreateBody() map[string]interface{} {
	return map[string]interface{}{
		"customer_id":      testCustomerID.String(),
		"property_id":      testPropertyID.String(),
		"principal_amount": 300000,
		"interest_rate":    6,
		"term_months":      360,
		"loan_type":        "Conventional",
		"has_escrow":       false,
	}
}

func TestCreateHandler_Success(t *testing.T) {
	app, _ := setupHandlerTest(t)
	body, code := postJSON(t, app, "/api/v1/loans/", validCreateBody())
	assert.Equal(t, fiber.StatusCreated, code)
	assert.True(t, body.Success)
	assert.Equal(t, "Loan created", body.Message)

	data := body.Data.(map[string]interface{})
	assert.Equal(t, "Pending", data["status"])
	assert.Equal(t, "1798.65", fmt.Sprint(data["monthly_payment"]))
}

func TestCreateHandler_ValidationFailures(t *testing.T) {
	app, _ := setupHandlerTest(t)

	cases := []struct {
		name   string
		mutate func(map[string]interface{})
	}{
		{"principal too small", func(m map[string]interface{}) { m["principal_amount"] = 5000 }},
		{"rate too high", func(m map[string]interface{}) { m["interest_rate"] = 25 }},
		{"term too short", func(m map[string]interface{}) { m["term_months"] = 6 }},
		{"bad loan type", func(m map[string]interface{}) { m["loan_type"] = "BalloonSquare" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			payload := validCreateBody()
			tc.mutate(payload)
			body, code := postJSON(t, app, "/api/v1/loans/", payload)
			assert.Equal(t, fiber.StatusBadRequest, code)
			assert.False(t, body.Success)
			assert.NotEmpty(t, body.Errors)
		})
	}
}

func TestCreateHandler_BadUUID(t *testing.T) {
	app, _ := setupHandlerTest(t)
	payload := validCreateBody()
	payload["customer_id"] = "not-a-uuid"
	body, code := postJSON(t, app, "/api/v1/loans/", payload)
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Equal(t, "Invalid customer_id", body.Message)
}

func TestCreateHandler_UnknownCustomerIsPreconditionFailure(t *testing.T) {
	app, _ := setupHandlerTest(t)
	payload := validCreateBody()
	payload["customer_id"] = uuid.New().String()
	body, code := postJSON(t, app, "/api/v1/loans/", payload)
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Contains(t, body.Message, "not found")
}

func TestGetByIDHandler_NotFound(t *testing.T) {
	app, _ := setupHandlerTest(t)
	body, code := getPath(t, app, "/api/v1/loans/"+uuid.New().String())
	assert.Equal(t, fiber.StatusNotFound, code)
	assert.False(t, body.Success)
}

func TestGetByIDHandler_InvalidID(t *testing.T) {
	app, _ := setupHandlerTest(t)
	_, code := getPath(t, app, "/api/v1/loans/nope")
	assert.Equal(t, fiber.StatusBadRequest, code)
}

func TestGetByNumberHandler(t *testing.T) {
	app, service := setupHandlerTest(t)
	created := createTestLoan(t, service)

	body, code := getPath(t, app, "/api/v1/loans/number/"+created.LoanNumber)
	assert.Equal(t, fiber.StatusOK, code)
	data := body.Data.(map[string]interface{})
	assert.Equal(t, created.ID.String(), data["id"])

	_, code = getPath(t, app, "/api/v1/loans/number/LN-1999-000042")
	assert.Equal(t, fiber.StatusNotFound, code)
}

func TestFundHandler(t *testing.T) {
	app, service := setupHandlerTest(t)
	created := createTestLoan(t, service)

	body, code := postJSON(t, app, "/api/v1/loans/"+created.ID.String()+"/fund", map[string]interface{}{
		"funding_date":       time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC),
		"first_payment_date": time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.Equal(t, fiber.StatusOK, code)
	data := body.Data.(map[string]interface{})
	assert.Equal(t, "Funded", data["status"])

	// Missing dates rejected up front.
	_, code = postJSON(t, app, "/api/v1/loans/"+created.ID.String()+"/fund", map[string]interface{}{})
	assert.Equal(t, fiber.StatusBadRequest, code)
}

func TestApplyPaymentHandler(t *testing.T) {
	app, service := setupHandlerTest(t)
	created := createTestLoan(t, service)
	fundTestLoan(t, service, created.ID)

	path := fmt.Sprintf("/api/v1/loans/%s/apply-payment?principal=298.65&interest=1500.00", created.ID)
	req := httptest.NewRequest("POST", path, nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, code := getPath(t, app, "/api/v1/loans/"+created.ID.String()+"/balance")
	require.Equal(t, fiber.StatusOK, code)
	data := body.Data.(map[string]interface{})
	assert.Equal(t, "299701.35", fmt.Sprint(data["current_balance"]))
	assert.Equal(t, float64(1), data["payments_made"])
}

func TestApplyPaymentHandler_BadAmounts(t *testing.T) {
	app, service := setupHandlerTest(t)
	created := createTestLoan(t, service)

	path := fmt.Sprintf("/api/v1/loans/%s/apply-payment?principal=abc&interest=1", created.ID)
	resp, err := app.Test(httptest.NewRequest("POST", path, nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestScheduleHandler(t *testing.T) {
	app, service := setupHandlerTest(t)
	created := createTestLoan(t, service)
	fundTestLoan(t, service, created.ID)

	body, code := getPath(t, app, "/api/v1/loans/"+created.ID.String()+"/schedule")
	assert.Equal(t, fiber.StatusOK, code)
	items := body.Data.([]interface{})
	assert.Len(t, items, 360)
}

func TestUpdateHandler_UnknownStatus(t *testing.T) {
	app, service := setupHandlerTest(t)
	created := createTestLoan(t, service)

	raw, _ := json.Marshal(map[string]string{"status": "Vaporized"})
	req := httptest.NewRequest("PUT", "/api/v1/loans/"+created.ID.String(), bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestDeleteHandler(t *testing.T) {
	app, service := setupHandlerTest(t)
	created := createTestLoan(t, service)

	req := httptest.NewRequest("DELETE", "/api/v1/loans/"+created.ID.String(), nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, code := getPath(t, app, "/api/v1/loans/"+created.ID.String())
	require.Equal(t, fiber.StatusOK, code)
	data := body.Data.(map[string]interface{})
	assert.Equal(t, "Cancelled", data["status"])
}
