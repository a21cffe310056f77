// Package client is a Go client for the Chikoro REST API.
//
// It keeps the signed-in session (token and current user) in a SessionStore, sends the token with
// every call and forgets the session as soon as the API answers 401.
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
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ErrUnauthorized is returned when the API rejected the stored token. The session is cleared by then;
// if clearing it failed, the returned error wraps both ErrUnauthorized and the store's error.
var ErrUnauthorized = errors.New("unauthorized: please log in again")

// APIError is a non-2xx answer of the API (401 aside).
type APIError struct {
	Status int
	Detail string
}

func (err *APIError) Error() string {
	return http.StatusText(err.Status) + ": " + err.Detail
}

// IsStatus reports whether err is an *APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

type Client struct {
	baseURL string
	http    *http.Client
	store   SessionStore

	Auth         AuthAPI
	Public       PublicAPI
	Users        UsersAPI
	Students     StudentsAPI
	Teachers     TeachersAPI
	Parents      ParentsAPI
	Classes      ClassesAPI
	Subjects     SubjectsAPI
	Attendance   AttendanceAPI
	Assignments  AssignmentsAPI
	Exams        ExamsAPI
	Results      ResultsAPI
	Finance      FinanceAPI
	Messages     MessagesAPI
	Reports      ReportsAPI
	Applications ApplicationsAPI
	Learning     LearningAPI
	Uploads      UploadsAPI
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

// WithStore keeps the session in store instead of memory.
func WithStore(store SessionStore) Option {
	return func(cl *Client) {
		if store != nil {
			cl.store = store
		}
	}
}

// New returns a client of the API served at baseURL, e.g. "https://school.example/api" or
// "http://localhost:8000". A trailing "/" and a trailing "/api" are dropped.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("baseURL must not be empty")
	}
	baseURL = strings.TrimSuffix(strings.TrimRight(baseURL, "/"), "/api")
	if _, err := url.Parse(baseURL); err != nil {
		return nil, errors.Wrap(err, "parsing baseURL")
	}

	cl := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		store:   NewMemoryStore(),
	}
	for _, o := range opts {
		o(cl)
	}

	cl.Auth = AuthAPI{cl}
	cl.Public = PublicAPI{cl}
	cl.Users = UsersAPI{cl}
	cl.Students = StudentsAPI{cl}
	cl.Teachers = TeachersAPI{cl}
	cl.Parents = ParentsAPI{cl}
	cl.Classes = ClassesAPI{cl}
	cl.Subjects = SubjectsAPI{cl}
	cl.Attendance = AttendanceAPI{cl}
	cl.Assignments = AssignmentsAPI{cl}
	cl.Exams = ExamsAPI{cl}
	cl.Results = ResultsAPI{cl}
	cl.Finance = FinanceAPI{cl}
	cl.Messages = MessagesAPI{cl}
	cl.Reports = ReportsAPI{cl}
	cl.Applications = ApplicationsAPI{cl}
	cl.Learning = LearningAPI{cl}
	cl.Uploads = UploadsAPI{cl}
	return cl, nil
}

// BaseURL is the API root, "/api" excluded.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.doJSON(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	return c.doJSON(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encoding request body")
		}
		r = bytes.NewReader(data)
	}

	data, err := c.do(ctx, method, path, query, "application/json", r)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	return errors.Wrapf(json.Unmarshal(data, out), "decoding %s %s", method, path)
}

// upload posts content as the "file" field of a multipart form.
func (c *Client) upload(ctx context.Context, path string, query url.Values, filename string, content io.Reader, out interface{}) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return errors.Wrap(err, "creating form file")
	}
	if _, err = io.Copy(part, content); err != nil {
		return errors.Wrap(err, "copying file")
	}
	if err = mw.Close(); err != nil {
		return errors.Wrap(err, "closing form")
	}

	data, err := c.do(ctx, http.MethodPost, path, query, mw.FormDataContentType(), &buf)
	if err != nil {
		return err
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	return errors.Wrapf(json.Unmarshal(data, out), "decoding POST %s", path)
}

// do sends the request to /api + path and returns the body of a 2xx answer.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, contentType string, body io.Reader) ([]byte, error) {
	u := c.baseURL + "/api" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if sess, err := c.store.Load(); err == nil && sess.Token != "" {
		req.Header.Set("Authorization", "Bearer "+sess.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s %s", method, path)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, c.forget(ErrUnauthorized)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, newAPIError(resp.StatusCode, data)
	case resp.StatusCode == http.StatusNoContent:
		return nil, nil
	}
	return data, nil
}

// forget clears the stored session because of cause.
func (c *Client) forget(cause error) error {
	if err := c.store.Clear(); err != nil {
		return fmt.Errorf("%w (session not cleared: %w)", cause, err)
	}
	return cause
}

func newAPIError(status int, body []byte) *APIError {
	var payload struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &payload)

	detail := payload.Detail
	if detail == "" {
		detail = payload.Message
	}
	if detail == "" {
		detail = http.StatusText(status)
	}
	return &APIError{Status: status, Detail: detail}
}

// params builds query values, skipping empty ones.
func params(kv ...string) url.Values {
	q := url.Values{}
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] != "" {
			q.Set(kv[i], kv[i+1])
		}
	}
	return q
}

func pathID(prefix, id string, suffix ...string) string {
	return prefix + "/" + url.PathEscape(id) + strings.Join(suffix, "")
}
