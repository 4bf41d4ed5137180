// Package gateway implements the REST client for the remote inventory service.
// The service owns all persistence and business rules; this client only speaks
// its request/response contract.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ankit-modi39/fi-inventory-management/internal/inventory"
	"github.com/ankit-modi39/fi-inventory-management/pkg/client/rest"
)

// Client talks to the inventory service. A Client is either anonymous (auth
// endpoints only) or bound to a bearer token via WithToken.
type Client struct {
	baseURL string
	doer    rest.Doer
	token   string
	logger  *slog.Logger
}

// NewClient creates an anonymous client for the service at baseURL.
func NewClient(baseURL string, doer rest.Doer, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		doer:    doer,
		logger:  logger.With("component", "gateway"),
	}
}

// WithToken returns a copy of the client that authenticates every call with
// the given bearer token.
func (c *Client) WithToken(token string) *Client {
	bound := *c
	bound.token = token
	return &bound
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type createResponse struct {
	ProductID string `json:"product_id"`
	Message   string `json:"message"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var token tokenResponse
	err := c.do(ctx, http.MethodPost, "/login", credentials{Username: username, Password: password}, &token)
	if err != nil {
		return "", fmt.Errorf("login failed: %w", err)
	}
	return token.AccessToken, nil
}

// Register creates a new user account.
func (c *Client) Register(ctx context.Context, username, password string) error {
	err := c.do(ctx, http.MethodPost, "/register", credentials{Username: username, Password: password}, nil)
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}
	return nil
}

// ListProducts fetches one page of the catalog. page is 1-based.
func (c *Client) ListProducts(ctx context.Context, page, size int) ([]inventory.Product, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("size", strconv.Itoa(size))

	var products []inventory.Product
	err := c.do(ctx, http.MethodGet, "/products?"+query.Encode(), nil, &products)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// CreateProduct registers a new product. The service assigns the identifier
// and replies with it; the returned Product combines that id with the
// submitted attributes.
func (c *Client) CreateProduct(ctx context.Context, product inventory.ProductCreate) (*inventory.Product, error) {
	var created createResponse
	err := c.do(ctx, http.MethodPost, "/products", product, &created)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return &inventory.Product{
		ID:          created.ProductID,
		Name:        product.Name,
		Type:        product.Type,
		SKU:         product.SKU,
		ImageURL:    product.ImageURL,
		Description: product.Description,
		Quantity:    product.Quantity,
		Price:       product.Price,
	}, nil
}

// UpdateQuantity sets a product's quantity and returns the updated product.
func (c *Client) UpdateQuantity(ctx context.Context, id string, quantity int) (*inventory.Product, error) {
	payload := map[string]int{"quantity": quantity}
	var updated inventory.Product
	err := c.do(ctx, http.MethodPut, "/products/"+id+"/quantity", payload, &updated)
	if err != nil {
		return nil, fmt.Errorf("failed to update quantity for product %s: %w", id, err)
	}
	return &updated, nil
}

// DeleteProduct removes a product from the catalog.
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/products/"+id, nil, nil); err != nil {
		return fmt.Errorf("failed to delete product %s: %w", id, err)
	}
	return nil
}

// do executes one request against the service. Non-2xx replies become a
// *StatusError carrying the service's detail message.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.doer.Do(req)
	if err != nil {
		return fmt.Errorf("request to inventory service failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.logger.DebugContext(ctx, "Inventory service returned an error",
			"method", method, "path", path, "status", resp.StatusCode)
		return errorFromResponse(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode inventory service response: %w", err)
	}
	return nil
}
