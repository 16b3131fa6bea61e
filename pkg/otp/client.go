package otp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	countryCode     = "91"
	responseInvalid = 506
	maxBody         = 64 << 10
)

var ErrInvalidVerification = errors.New("invalid or expired verificationId")

type Config struct {
	SendURL     string
	ValidateURL string
	CustomerID  string
	AuthToken   string
}

// Client talks to the MessageCentral WhatsApp verification API.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// ProviderError carries the raw provider payload so callers can surface it.
type ProviderError struct {
	Status  int
	Payload json.RawMessage
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("otp provider: %v", e.Err)
	}
	return fmt.Sprintf("otp provider: status %d: %s", e.Status, string(e.Payload))
}

func (e *ProviderError) Unwrap() error { return e.Err }

type SendResult struct {
	VerificationID string
	// Reused is set when the provider refused because a code was already sent.
	Reused bool
}

// flexID accepts the verification id as a JSON string or number.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

type providerResponse struct {
	ResponseCode int `json:"responseCode"`
	Data         struct {
		VerificationID flexID `json:"verificationId"`
	} `json:"data"`
	VerificationID flexID `json:"verificationId"`
}

func (r providerResponse) verificationID() string {
	if r.Data.VerificationID != "" {
		return string(r.Data.VerificationID)
	}
	return string(r.VerificationID)
}

// SendWhatsApp requests a code for a 10 digit Indian mobile number.
func (c *Client) SendWhatsApp(ctx context.Context, mobile string) (*SendResult, error) {
	q := url.Values{}
	q.Set("countryCode", countryCode)
	q.Set("customerId", c.cfg.CustomerID)
	q.Set("flowType", "WHATSAPP")
	q.Set("mobileNumber", mobile)

	status, body, err := c.do(ctx, http.MethodPost, c.cfg.SendURL, q)
	if err != nil {
		return nil, err
	}

	resp, decodeErr := decode(body)
	if status/100 != 2 {
		if decodeErr == nil && resp.verificationID() != "" {
			return &SendResult{VerificationID: resp.verificationID(), Reused: true}, nil
		}
		return nil, &ProviderError{Status: status, Payload: payload(body), Err: errors.New("send failed")}
	}

	if decodeErr != nil || resp.verificationID() == "" {
		return nil, &ProviderError{Status: status, Payload: payload(body), Err: errors.New("no verificationId in provider response")}
	}
	return &SendResult{VerificationID: resp.verificationID()}, nil
}

// Verify checks a code. On success it returns the provider payload.
func (c *Client) Verify(ctx context.Context, mobile, verificationID, code string) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("countryCode", countryCode)
	q.Set("mobileNumber", "+"+countryCode+mobile)
	q.Set("verificationId", verificationID)
	q.Set("customerId", c.cfg.CustomerID)
	q.Set("code", code)

	status, body, err := c.do(ctx, http.MethodGet, c.cfg.ValidateURL, q)
	if err != nil {
		return nil, err
	}

	if status/100 != 2 {
		if resp, decodeErr := decode(body); decodeErr == nil && resp.ResponseCode == responseInvalid {
			return nil, &ProviderError{Status: status, Payload: payload(body), Err: ErrInvalidVerification}
		}
		return nil, &ProviderError{Status: status, Payload: payload(body), Err: errors.New("verification failed")}
	}
	return payload(body), nil
}

func (c *Client) do(ctx context.Context, method, base string, q url.Values) (int, []byte, error) {
	u, err := url.Parse(base)
	if err != nil {
		return 0, nil, fmt.Errorf("parse provider url: %w", err)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("authToken", c.cfg.AuthToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, &ProviderError{Payload: payload([]byte(err.Error())), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return 0, nil, &ProviderError{Status: resp.StatusCode, Payload: payload([]byte(err.Error())), Err: err}
	}
	return resp.StatusCode, body, nil
}

func decode(body []byte) (providerResponse, error) {
	var r providerResponse
	err := json.Unmarshal(body, &r)
	return r, err
}

func payload(body []byte) json.RawMessage {
	if json.Valid(body) {
		return json.RawMessage(body)
	}
	b, _ := json.Marshal(string(body))
	return b
}
