package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
)

// Collections served by the API
const (
	Projects     = "projects"
	Partners     = "partners"
	Certificates = "certificates"
)

// ListOptions are the paging and sorting parameters of a list call. Zero
// values are left to the server defaults.
type ListOptions struct {
	Limit  int
	Offset int
	Sort   string
	// NoCache bypasses the GET cache for this call
	NoCache bool
}

func (o ListOptions) query() url.Values {
	q := url.Values{}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Offset > 0 {
		q.Set("offset", strconv.Itoa(o.Offset))
	}
	if o.Sort != "" {
		q.Set("sort", o.Sort)
	}
	return q
}

// Page is one page of a list call. Records are left undecoded.
type Page struct {
	Data   []json.RawMessage `json:"data"`
	Total  int               `json:"total"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}

// UploadResult describes a stored image
type UploadResult struct {
	Success  bool   `json:"success"`
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	MIME     string `json:"mime"`
}

// List fetches one page of a collection
func (c *Client) List(ctx context.Context, collection string, opts ListOptions) (*Page, error) {
	body, err := c.do(ctx, request{
		method:   http.MethodGet,
		path:     collection,
		query:    opts.query(),
		retries:  -1,
		useCache: !opts.NoCache,
	})
	if err != nil {
		return nil, err
	}
	var page Page
	if err := decode(body, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Get fetches one record and decodes it into out when out is not nil
func (c *Client) Get(ctx context.Context, collection, id string, out any) (json.RawMessage, error) {
	if id == "" {
		return nil, errEmptyID
	}
	body, err := c.do(ctx, request{
		method:   http.MethodGet,
		path:     collection + "/" + url.PathEscape(id),
		retries:  -1,
		useCache: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decode(body, out); err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

// Create stores a new record and returns its id
func (c *Client) Create(ctx context.Context, collection string, record any) (string, error) {
	req, err := jsonRequest(http.MethodPost, collection, record)
	if err != nil {
		return "", err
	}
	body, err := c.do(ctx, req)
	if err != nil {
		return "", err
	}
	var resp struct {
		ID string `json:"id"`
	}
	if err := decode(body, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// Update replaces every field of a record
func (c *Client) Update(ctx context.Context, collection, id string, record any) error {
	if id == "" {
		return errEmptyID
	}
	req, err := jsonRequest(http.MethodPut, collection+"/"+url.PathEscape(id), record)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, req)
	return err
}

// Delete removes a record
func (c *Client) Delete(ctx context.Context, collection, id string) error {
	if id == "" {
		return errEmptyID
	}
	_, err := c.do(ctx, request{
		method:  http.MethodDelete,
		path:    collection + "/" + url.PathEscape(id),
		retries: -1,
	})
	return err
}

// Upload sends an image as the "file" field of a multipart form
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (*UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := io.Copy(fw, r); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}

	body, err := c.do(ctx, request{
		method:      http.MethodPost,
		path:        "upload",
		body:        buf.Bytes(),
		contentType: mw.FormDataContentType(),
		retries:     -1,
	})
	if err != nil {
		return nil, err
	}
	var result UploadResult
	if err := decode(body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
