// Package membership looks up professionals in the CursEduca member
// directory. Self-registration is gated on a successful lookup; superadmin
// provisioning never consults it.
package membership

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	ErrMemberNotFound = errors.New("member not found in directory")
	ErrUnauthorized   = errors.New("directory rejected the API key")
	ErrBadRequest     = errors.New("invalid directory request")
)

const defaultTimeout = 15 * time.Second

// Directory is the lookup seam used by the auth handlers; tests stub it.
type Directory interface {
	LookupByEmail(ctx context.Context, email string) (Member, error)
}

type Member struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		apiKey:     cfg.APIKey,
	}
}

func (client *Client) LookupByEmail(ctx context.Context, email string) (Member, error) {
	if client.baseURL == "" {
		return Member{}, errors.New("membership directory URL not configured")
	}

	lookupURL := client.baseURL + "/members/by?" + url.Values{"email": {email}}.Encode()
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		return Member{}, fmt.Errorf("build directory request: %w", err)
	}
	request.Header.Set("api_key", client.apiKey)

	response, err := client.httpClient.Do(request)
	if err != nil {
		return Member{}, fmt.Errorf("directory call: %w", err)
	}
	defer response.Body.Close()

	switch response.StatusCode {
	case http.StatusOK:
		// fall through to decode
	case http.StatusNotFound:
		return Member{}, ErrMemberNotFound
	case http.StatusUnauthorized:
		return Member{}, ErrUnauthorized
	case http.StatusBadRequest:
		return Member{}, ErrBadRequest
	default:
		return Member{}, fmt.Errorf("directory status %d", response.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(response.Body, 1<<20))
	if err != nil {
		return Member{}, fmt.Errorf("read directory response: %w", err)
	}

	var member wireMember
	if err := json.Unmarshal(body, &member); err != nil {
		return Member{}, fmt.Errorf("decode directory response: %w", err)
	}
	if strings.TrimSpace(member.Email) == "" {
		return Member{}, ErrMemberNotFound
	}

	return Member{
		ID:    member.identifier(),
		Name:  member.Name,
		Email: member.Email,
	}, nil
}

// The directory is loose about its id field type.
type wireMember struct {
	ID    json.Number `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
}

func (member wireMember) identifier() string {
	return member.ID.String()
}
