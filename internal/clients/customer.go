// Package clients holds the HTTP clients for the peer Customer and
// Property services, plus a Redis cache layer for enrichment lookups.
package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Customer is the record shape returned by the Customer service.
type Customer struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
}

// CustomerCredit is the credit profile returned by the Customer service.
type CustomerCredit struct {
	ID              uuid.UUID       `json:"id"`
	CreditScore     int             `json:"creditScore"`
	CreditRating    string          `json:"creditRating"`
	TotalDebt       decimal.Decimal `json:"totalDebt"`
	AvailableCredit decimal.Decimal `json:"availableCredit"`
}

// CustomerClient defines what the loan service needs from the Customer
// service. Lookups are read-only and tolerate being skipped.
type CustomerClient interface {
	GetCustomer(ctx context.Context, id uuid.UUID) (*Customer, error)
	GetCustomerCredit(ctx context.Context, id uuid.UUID) (*CustomerCredit, error)
	CustomerExists(ctx context.Context, id uuid.UUID) (bool, error)
}

// envelope is the {success, message, data} wrapper both peer services
// respond with.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// HTTPCustomerClient is a CustomerClient over the service's REST API.
type HTTPCustomerClient struct {
	BaseURL string
	Client  *http.Client
}

func (c *HTTPCustomerClient) httpClient() *http.Client {
	if c.Client == nil {
		c.Client = &http.Client{Timeout: 30 * time.Second}
	}
	return c.Client
}

func (c *HTTPCustomerClient) GetCustomer(ctx context.Context, id uuid.UUID) (*Customer, error) {
	var customer Customer
	ok, err := getJSON(ctx, c.httpClient(), c.BaseURL, fmt.Sprintf("/api/customers/%s", id), &customer)
	if err != nil || !ok {
		return nil, err
	}
	return &customer, nil
}

func (c *HTTPCustomerClient) GetCustomerCredit(ctx context.Context, id uuid.UUID) (*CustomerCredit, error) {
	var credit CustomerCredit
	ok, err := getJSON(ctx, c.httpClient(), c.BaseURL, fmt.Sprintf("/api/customers/%s/credit", id), &credit)
	if err != nil || !ok {
		return nil, err
	}
	return &credit, nil
}

func (c *HTTPCustomerClient) CustomerExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return headOK(ctx, c.httpClient(), c.BaseURL, fmt.Sprintf("/api/customers/%s", id))
}

// getJSON fetches an enveloped record. A 404 or an unsuccessful
// envelope yields (false, nil): the record is absent, not an error.
func getJSON(ctx context.Context, client *http.Client, baseURL, path string, out interface{}) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(baseURL, "/")+path, nil)
	if err != nil {
		return false, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return false, fmt.Errorf("lookup %s: status %d body: %s", path, resp.StatusCode, body)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return false, fmt.Errorf("lookup %s: decode: %w", path, err)
	}
	if !env.Success || env.Data == nil {
		return false, nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return false, fmt.Errorf("lookup %s: decode data: %w", path, err)
	}
	return true, nil
}

// headOK reports whether a GET on the resource returns 2xx.
func headOK(ctx context.Context, client *http.Client, baseURL, path string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(baseURL, "/")+path, nil)
	if err != nil {
		return false, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode >= 200 && resp.StatusCode < 300, nil
}
