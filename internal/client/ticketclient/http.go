package ticketclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/BearBump/TicketBox/internal/models"
	"github.com/pkg/errors"
)

type HTTPTransport struct {
	baseURL string
	httpc   *http.Client
}

func NewHTTP(baseURL string, timeout time.Duration) *HTTPTransport {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPTransport{
		baseURL: baseURL,
		httpc: &http.Client{
			Timeout: timeout,
		},
	}
}

type lookupResp struct {
	OK     bool           `json:"ok"`
	Ticket *models.Ticket `json:"ticket"`
	Error  string         `json:"error"`
}

func (c *HTTPTransport) Lookup(ctx context.Context, code string) (*models.Ticket, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse base url")
	}
	u.Path = "/ticket"

	q := u.Query()
	q.Set("code", code)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "new request")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, errors.Wrap(ErrNetwork, err.Error())
	}
	defer resp.Body.Close()

	var out lookupResp
	decodeErr := json.NewDecoder(resp.Body).Decode(&out)

	if resp.StatusCode/100 != 2 {
		msg := out.Error
		if decodeErr != nil || msg == "" {
			msg = MessageGeneric
		}
		return nil, &APIError{Status: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return nil, errors.Wrap(decodeErr, "decode lookup response")
	}
	if !out.OK || out.Ticket == nil {
		return nil, &APIError{Status: resp.StatusCode, Message: MessageGeneric}
	}
	return out.Ticket, nil
}
