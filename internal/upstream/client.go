// Package upstream talks to the school-fee backend REST API. Every bill,
// student and ledger write lives there; this package only reads whole
// collections and forwards the few mutations the dashboard exposes.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/stemsi/tagihan-dashboard/internal/model"
)

// Collection paths relative to the API base URL.
const (
	PathBills    = "/tagihan"
	PathStudents = "/akun/siswa"
	PathClasses  = "/kelas"
	PathMajors   = "/jurusan"
	PathKas      = "/kas"
)

// ErrUpstream wraps every failure talking to the upstream API: transport
// errors, non-2xx statuses and undecodable bodies.
var ErrUpstream = errors.New("upstream request failed")

// APIError is a non-2xx answer from the upstream API.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("upstream %s %s: status %d", e.Method, e.Path, e.StatusCode)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func (e *APIError) Unwrap() error { return ErrUpstream }

// FetchObserver receives the outcome of every collection fetch.
type FetchObserver interface {
	ObserveFetch(collection string, elapsed time.Duration, err error)
}

// Client is a thin JSON client for the upstream API.
type Client struct {
	baseURL  string
	token    string
	http     *http.Client
	observer FetchObserver
	now      func() time.Time
	log      zerolog.Logger
}

// NewClient creates a client for baseURL. token is sent as a bearer token
// when non-empty.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:   strings.TrimSpace(token),
		http:    &http.Client{Timeout: timeout},
		now:     time.Now,
		log:     log.With().Str("component", "upstream").Logger(),
	}
}

// WithObserver attaches a fetch observer, typically the metrics collector.
func (c *Client) WithObserver(o FetchObserver) *Client {
	c.observer = o
	return c
}

// FetchBills retrieves GET /tagihan.
func (c *Client) FetchBills(ctx context.Context) ([]BillDTO, error) {
	return fetchCollection[BillDTO](ctx, c, PathBills)
}

// FetchStudents retrieves GET /akun/siswa.
func (c *Client) FetchStudents(ctx context.Context) ([]StudentDTO, error) {
	return fetchCollection[StudentDTO](ctx, c, PathStudents)
}

// FetchClasses retrieves GET /kelas.
func (c *Client) FetchClasses(ctx context.Context) ([]ClassDTO, error) {
	return fetchCollection[ClassDTO](ctx, c, PathClasses)
}

// FetchMajors retrieves GET /jurusan.
func (c *Client) FetchMajors(ctx context.Context) ([]MajorDTO, error) {
	return fetchCollection[MajorDTO](ctx, c, PathMajors)
}

// FetchKas retrieves GET /kas.
func (c *Client) FetchKas(ctx context.Context) ([]KasDTO, error) {
	return fetchCollection[KasDTO](ctx, c, PathKas)
}

// FetchSnapshot fetches every collection in parallel and normalizes them into
// one snapshot. Any single failure fails the whole snapshot; partial data is
// never returned.
func (c *Client) FetchSnapshot(ctx context.Context) (*model.Snapshot, error) {
	var raw Raw
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) { raw.Bills, err = c.FetchBills(gctx); return })
	g.Go(func() (err error) { raw.Students, err = c.FetchStudents(gctx); return })
	g.Go(func() (err error) { raw.Classes, err = c.FetchClasses(gctx); return })
	g.Go(func() (err error) { raw.Majors, err = c.FetchMajors(gctx); return })
	g.Go(func() (err error) { raw.Kas, err = c.FetchKas(gctx); return })

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return Normalize(raw, c.now()), nil
}

// RecordPayment forwards POST /tagihan/bayar/:id.
func (c *Client) RecordPayment(ctx context.Context, billID string, req model.RecordPaymentRequest) error {
	return c.do(ctx, http.MethodPost, "/tagihan/bayar/"+url.PathEscape(billID), req, nil)
}

// CreateKas forwards POST /kas.
func (c *Client) CreateKas(ctx context.Context, req model.CreateKasRequest) error {
	return c.do(ctx, http.MethodPost, PathKas, req, nil)
}

// DeleteBill forwards DELETE /tagihan/:id.
func (c *Client) DeleteBill(ctx context.Context, billID string) error {
	return c.do(ctx, http.MethodDelete, PathBills+"/"+url.PathEscape(billID), nil, nil)
}

func fetchCollection[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	start := time.Now()
	var env envelope[T]
	err := c.do(ctx, http.MethodGet, path, nil, &env)
	if c.observer != nil {
		c.observer.ObserveFetch(strings.TrimPrefix(path, "/"), time.Since(start), err)
	}
	if err != nil {
		return nil, err
	}
	if env.Data == nil {
		env.Data = []T{}
	}
	return env.Data, nil
}

type errorBody struct {
	Message flexString `json:"message"`
	Error   flexString `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrUpstream, method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrUpstream, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Method: method, Path: path, StatusCode: resp.StatusCode}
		var eb errorBody
		if json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&eb) == nil {
			apiErr.Message = firstNonEmpty(eb.Message.String(), eb.Error.String())
		}
		c.log.Warn().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Msg("Upstream returned an error status")
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s %s: %w", ErrUpstream, method, path, err)
	}
	return nil
}
