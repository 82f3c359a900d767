// Package catalog talks to a Unity-style REST catalog: it lists tables,
// fetches per-table column metadata, and turns catalog type text into
// the columnar schema model. It is the metadata provider for catalog
// mode and the source for entity discovery.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tablefront/tablefront/pkg/logging"
	"github.com/tablefront/tablefront/pkg/retry"
	"github.com/tablefront/tablefront/pkg/schema"
)

const tablesPath = "/api/2.1/unity-catalog/tables"

// Client is a catalog API client. Requests carry a bearer token and
// retry with backoff; the GraphQL core downstream never retries.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	retry   *retry.Config
	logger  *zap.Logger
}

// NewClient creates a catalog client for the given workspace host.
func NewClient(host, token string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(host, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
		retry:   retry.DefaultConfig(),
		logger:  logger.Named("catalog-client"),
	}
}

// ListTables lists the tables of one catalog schema.
func (c *Client) ListTables(ctx context.Context, catalogName, schemaName string) ([]TableInfo, error) {
	query := url.Values{}
	query.Set("catalog_name", catalogName)
	query.Set("schema_name", schemaName)
	endpoint := c.baseURL + tablesPath + "?" + query.Encode()

	var resp listTablesResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("list tables in %s.%s: %w", catalogName, schemaName, err)
	}
	return resp.Tables, nil
}

// GetTable fetches detailed metadata for a three-part table name.
func (c *Client) GetTable(ctx context.Context, fullName string) (*TableMetadata, error) {
	endpoint := c.baseURL + tablesPath + "/" + url.PathEscape(fullName)

	var meta TableMetadata
	if err := c.getJSON(ctx, endpoint, &meta); err != nil {
		return nil, fmt.Errorf("get table %q: %w", fullName, err)
	}
	return &meta, nil
}

// TableSchema implements the metadata provider boundary: it fetches the
// table and converts its catalog columns into the columnar model.
func (c *Client) TableSchema(ctx context.Context, tableID string) (*schema.Table, error) {
	meta, err := c.GetTable(ctx, tableID)
	if err != nil {
		return nil, err
	}
	return TableSchemaFromColumns(meta.Columns)
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	body, err := retry.DoWithResult(ctx, c.retry, func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("catalog request: %s", logging.SanitizeError(err))
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
		if err != nil {
			return nil, fmt.Errorf("read catalog response: %w", err)
		}

		switch resp.StatusCode {
		case http.StatusOK:
			return data, nil
		case http.StatusUnauthorized, http.StatusForbidden:
			// A bad token will not get better on retry.
			return nil, retry.Permanent(fmt.Errorf("catalog authentication failed (status %d)", resp.StatusCode))
		case http.StatusNotFound:
			return nil, retry.Permanent(fmt.Errorf("catalog resource not found"))
		default:
			return nil, fmt.Errorf("catalog returned status %d: %s",
				resp.StatusCode, logging.SanitizeError(fmt.Errorf("%s", truncate(data, 256))))
		}
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode catalog response: %w", err)
	}
	return nil
}

func truncate(data []byte, n int) string {
	if len(data) <= n {
		return string(data)
	}
	return string(data[:n]) + "..."
}
