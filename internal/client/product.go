package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/utafrali/variantcatalog/pkg/httpclient"
)

// HTTPDoer is the interface for executing HTTP requests.
// Both httpclient.Client and httpclient.CircuitBreakerClient satisfy this.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Product is the subset of a product-service product the variant service
// needs to price and label combinations.
type Product struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	Status    string `json:"status"`
	BasePrice int64  `json:"base_price"`
	Currency  string `json:"currency"`
}

// Price converts the minor-unit base price into a decimal amount.
func (p *Product) Price() decimal.Decimal {
	return decimal.New(p.BasePrice, -2)
}

// BaseSKU derives a SKU stem from the product slug.
func (p *Product) BaseSKU() string {
	return strings.ToUpper(p.Slug)
}

// ProductClient looks products up in the product service.
type ProductClient struct {
	http    HTTPDoer
	baseURL string
}

// NewProductClient creates a client for the product service rooted at baseURL.
func NewProductClient(doer HTTPDoer, baseURL string) *ProductClient {
	return &ProductClient{
		http:    doer,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// GetProduct fetches a product by id. A missing product yields an
// apperrors.ErrNotFound-wrapping error.
func (c *ProductClient) GetProduct(ctx context.Context, id string) (*Product, error) {
	endpoint := c.baseURL + "/api/v1/products/" + url.PathEscape(id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build product request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("call product service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.ParseResponseError(resp, "product")
	}

	var envelope struct {
		Data Product `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode product response: %w", err)
	}
	return &envelope.Data, nil
}
