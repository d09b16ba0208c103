package clients

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Property is the record shape returned by the Property service.
type Property struct {
	ID             uuid.UUID       `json:"id"`
	FullAddress    string          `json:"fullAddress"`
	PropertyType   string          `json:"propertyType"`
	EstimatedValue decimal.Decimal `json:"estimatedValue"`
	ListingPrice   decimal.Decimal `json:"listingPrice"`
	Bedrooms       int             `json:"bedrooms"`
	Bathrooms      decimal.Decimal `json:"bathrooms"`
	SquareFeet     decimal.Decimal `json:"squareFeet"`
}

// Appraisal is a property appraisal record.
type Appraisal struct {
	ID             uuid.UUID       `json:"id"`
	AppraisedValue decimal.Decimal `json:"appraisedValue"`
	AppraisalDate  time.Time       `json:"appraisalDate"`
	Status         string          `json:"status"`
}

// PropertyClient defines what the loan service needs from the Property
// service.
type PropertyClient interface {
	GetProperty(ctx context.Context, id uuid.UUID) (*Property, error)
	GetPropertyAppraisal(ctx context.Context, id uuid.UUID) (*Appraisal, error)
	PropertyExists(ctx context.Context, id uuid.UUID) (bool, error)
}

// HTTPPropertyClient is a PropertyClient over the service's REST API.
type HTTPPropertyClient struct {
	BaseURL string
	Client  *http.Client
}

func (c *HTTPPropertyClient) httpClient() *http.Client {
	if c.Client == nil {
		c.Client = &http.Client{Timeout: 30 * time.Second}
	}
	return c.Client
}

func (c *HTTPPropertyClient) GetProperty(ctx context.Context, id uuid.UUID) (*Property, error) {
	var property Property
	ok, err := getJSON(ctx, c.httpClient(), c.BaseURL, fmt.Sprintf("/api/properties/%s", id), &property)
	if err != nil || !ok {
		return nil, err
	}
	return &property, nil
}

func (c *HTTPPropertyClient) GetPropertyAppraisal(ctx context.Context, id uuid.UUID) (*Appraisal, error) {
	var appraisal Appraisal
	ok, err := getJSON(ctx, c.httpClient(), c.BaseURL, fmt.Sprintf("/api/properties/%s/appraisal", id), &appraisal)
	if err != nil || !ok {
		return nil, err
	}
	return &appraisal, nil
}

func (c *HTTPPropertyClient) PropertyExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return headOK(ctx, c.httpClient(), c.BaseURL, fmt.Sprintf("/api/properties/%s", id))
}
