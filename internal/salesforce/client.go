// Package salesforce implements the external credential fetch port. The
// upstream schema is trusted in exactly one place: Fetch decodes the
// double-encoded response envelope into narrow types and MapCertifications
// turns those into domain records.
package salesforce

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/spec-kit/certtrack-service/internal/config"
	"github.com/spec-kit/certtrack-service/internal/domain"
)

// ErrNoData is the single failure outcome of a credential fetch. Transport
// errors, non-success payloads and empty results all fold into it; callers
// are not meant to distinguish them.
var ErrNoData = errors.New("no credential data")

// CredentialFetcher fetches the raw credential record for one user.
type CredentialFetcher interface {
	Fetch(ctx context.Context, searchString, role string) (*CredentialRecord, error)
}

// CredentialRecord is the inner payload entry for one credential holder.
type CredentialRecord struct {
	RelatedCertificationStatus *CertificationStatusList `json:"RelatedCertificationStatus"`
}

// CertificationStatusList wraps the nested certification entries.
type CertificationStatusList struct {
	Records []ExternalCertification `json:"records"`
}

// ExternalCertification is one certification entry as delivered upstream.
type ExternalCertification struct {
	ExternalCertificationTypeName string         `json:"ExternalCertificationTypeName"`
	CertificationDate             string         `json:"CertificationDate"`
	RelatedCertificationType      map[string]any `json:"RelatedCertificationType"`
}

// envelope is the outer REST response; jsonResponse carries the inner
// payload as an escaped JSON string.
type envelope struct {
	Status string `json:"status"`
	Data   []struct {
		JSONResponse string `json:"jsonResponse"`
	} `json:"data"`
}

type innerPayload struct {
	Data []CredentialRecord `json:"data"`
}

// Client is the HTTP implementation of CredentialFetcher.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	logger     *zap.Logger
}

// NewClient builds a fetch client bounded by the configured timeout.
func NewClient(cfg config.SalesforceConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout()},
		maxRetries: cfg.MaxRetries,
		logger:     logger,
	}
}

// Fetch retrieves the credential record for (searchString, role). Transient
// transport errors are retried with exponential backoff inside the request
// deadline; every terminal failure is reported as ErrNoData.
func (c *Client) Fetch(ctx context.Context, searchString, role string) (*CredentialRecord, error) {
	endpoint, err := c.buildURL(searchString, role)
	if err != nil {
		c.logger.Warn("invalid credential endpoint", zap.Error(err))
		return nil, ErrNoData
	}

	var body []byte
	fetch := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 500 {
			return fmt.Errorf("upstream status %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("upstream status %d", resp.StatusCode))
		}
		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(newFetchBackOff(), uint64(c.maxRetries)), ctx)
	if err := backoff.Retry(fetch, policy); err != nil {
		c.logger.Warn("credential fetch failed",
			zap.String("search_string", searchString),
			zap.Error(err))
		return nil, ErrNoData
	}

	record, err := decodeRecord(body)
	if err != nil {
		c.logger.Warn("credential payload rejected",
			zap.String("search_string", searchString),
			zap.Error(err))
		return nil, ErrNoData
	}
	return record, nil
}

func (c *Client) buildURL(searchString, role string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("searchString", searchString)
	q.Set("languageLocaleKey", "en")
	if role == "Admin" {
		q.Set("admin", "true")
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// decodeRecord unwraps the envelope, the escaped inner JSON, and the first
// data entry. A missing layer anywhere means no data.
func decodeRecord(body []byte) (*CredentialRecord, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Status != "success" || len(env.Data) == 0 || env.Data[0].JSONResponse == "" {
		return nil, errors.New("envelope has no payload")
	}

	var inner innerPayload
	if err := json.Unmarshal([]byte(env.Data[0].JSONResponse), &inner); err != nil {
		return nil, fmt.Errorf("decode inner payload: %w", err)
	}
	if len(inner.Data) == 0 {
		return nil, errors.New("inner payload has no records")
	}
	return &inner.Data[0], nil
}

// MapCertifications normalizes a credential record into domain records.
// Provider is fixed, expiry is never delivered upstream, and status defaults
// to active.
func MapCertifications(record *CredentialRecord) []domain.CertificationRecord {
	certs := []domain.CertificationRecord{}
	if record == nil || record.RelatedCertificationStatus == nil {
		return certs
	}
	for _, entry := range record.RelatedCertificationStatus.Records {
		meta := entry.RelatedCertificationType
		if meta == nil {
			meta = map[string]any{}
		}
		certs = append(certs, domain.CertificationRecord{
			Provider: "Salesforce",
			Name:     entry.ExternalCertificationTypeName,
			EarnedAt: entry.CertificationDate,
			Status:   domain.CertificationStatusActive,
			Meta:     meta,
		})
	}
	return certs
}

func newFetchBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	return b
}
