package testutils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
)

// HTTPClient drives a gin engine in-process with a fixed bearer token.
type HTTPClient struct {
	router *gin.Engine
	token  string
}

func NewHTTPClient(router *gin.Engine, token string) *HTTPClient {
	return &HTTPClient{router: router, token: token}
}

type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

func (c *HTTPClient) do(method, path string, body io.Reader, contentType string) (*Response, error) {
	req, err := http.NewRequest(method, path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)

	raw, err := io.ReadAll(w.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %v", err)
	}
	return &Response{StatusCode: w.Code, Body: raw, Headers: w.Header()}, nil
}

func (c *HTTPClient) doJSON(method, path string, body interface{}) (*Response, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	return c.do(method, path, reader, "application/json")
}

func (c *HTTPClient) GET(path string) (*Response, error) {
	return c.do(http.MethodGet, path, nil, "")
}

func (c *HTTPClient) POST(path string, body interface{}) (*Response, error) {
	return c.doJSON(http.MethodPost, path, body)
}

func (c *HTTPClient) PUT(path string, body interface{}) (*Response, error) {
	return c.doJSON(http.MethodPut, path, body)
}

// POSTFile uploads content as the multipart field "file".
func (c *HTTPClient) POSTFile(path, fileName string, content []byte) (*Response, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(content); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %v", err)
	}
	return c.do(http.MethodPost, path, body, writer.FormDataContentType())
}

// DecodeJSON decodes JSON response body into target
func (r *Response) DecodeJSON(target interface{}) error {
	return json.Unmarshal(r.Body, target)
}

// ErrorCode extracts the machine readable code of an error response.
func (r *Response) ErrorCode() string {
	var errResp struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(r.Body, &errResp); err != nil {
		return ""
	}
	return errResp.Code
}
