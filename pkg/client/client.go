package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	api "github.com/SAP/stewardci-provenance/pkg/apis/provenance/v1alpha1"
	stewarderrors "github.com/SAP/stewardci-provenance/pkg/errors"
)

// Client accesses the provenance HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the API served at baseURL.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// GetFingerprint returns the registry entry of digest.
// An error satisfying errors.IsNotFound is returned for unknown digests.
func (c *Client) GetFingerprint(ctx context.Context, digest string) (*api.RegistryEntry, error) {
	var entry api.RegistryEntry
	if err := c.do(ctx, http.MethodGet, "/fingerprints/"+url.PathEscape(digest), nil, http.StatusOK, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetRecord returns the fingerprint record of build.
func (c *Client) GetRecord(ctx context.Context, build api.BuildRef) (api.FingerprintRecord, error) {
	record := api.FingerprintRecord{}
	if err := c.do(ctx, http.MethodGet, recordPath(build), nil, http.StatusOK, &record); err != nil {
		return nil, err
	}
	return record, nil
}

// PostRecord submits the fingerprint record of build for ingestion.
func (c *Client) PostRecord(ctx context.Context, build api.BuildRef, record api.FingerprintRecord) error {
	return c.do(ctx, http.MethodPost, recordPath(build), record, http.StatusAccepted, nil)
}

// Verify asks the server to verify the provenance of a file.
// Verification failures are reported in the response, not as error.
func (c *Client) Verify(ctx context.Context, request api.VerifyRequest) (*api.VerifyResponse, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode verify request")
	}
	response, err := c.send(ctx, http.MethodPost, "/verify", body)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	switch response.StatusCode {
	case http.StatusOK, http.StatusUnprocessableEntity:
		var result api.VerifyResponse
		if err := json.NewDecoder(response.Body).Decode(&result); err != nil {
			return nil, stewarderrors.Infra(errors.Wrap(err, "failed to decode verify response"))
		}
		return &result, nil
	default:
		return nil, responseError(response)
	}
}

func recordPath(build api.BuildRef) string {
	return "/jobs/" + url.PathEscape(build.Job) + "/builds/" + strconv.Itoa(build.Number) + "/fingerprints"
}

func (c *Client) do(ctx context.Context, method, path string, in interface{}, expectedStatus int, out interface{}) error {
	var body []byte
	if in != nil {
		var err error
		if body, err = json.Marshal(in); err != nil {
			return errors.Wrap(err, "failed to encode request")
		}
	}
	response, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	if response.StatusCode != expectedStatus {
		return responseError(response)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(response.Body).Decode(out); err != nil {
		return stewarderrors.Infra(errors.Wrapf(err, "failed to decode response of %s %s", method, path))
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create request %s %s", method, path)
	}
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, stewarderrors.Infra(errors.Wrapf(err, "request %s %s failed", method, path))
	}
	return response, nil
}

func responseError(response *http.Response) error {
	var message api.ErrorResponse
	content, _ := io.ReadAll(io.LimitReader(response.Body, 64*1024))
	if err := json.Unmarshal(content, &message); err != nil || message.Error == "" {
		message.Error = strings.TrimSpace(string(content))
	}
	err := fmt.Errorf("server responded with %s: %s", response.Status, message.Error)
	switch {
	case response.StatusCode == http.StatusNotFound:
		return stewarderrors.NotFoundf("%s", err)
	case response.StatusCode >= 500:
		return stewarderrors.Infra(err)
	default:
		return stewarderrors.Content(err)
	}
}
