package services

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/safatanc/feastly-core/internal/app/errors"
	"github.com/safatanc/feastly-core/internal/app/models"
	"github.com/safatanc/feastly-core/internal/infrastructures"
)

// ConnectService talks to Connect, the hosted identity provider that owns
// user credentials and profiles.
type ConnectService struct {
	baseURL string
	client  *http.Client
}

func NewConnectService() *ConnectService {
	return NewConnectServiceWithBaseURL(infrastructures.Config.CONNECT_BASE_URL)
}

func NewConnectServiceWithBaseURL(baseURL string) *ConnectService {
	return &ConnectService{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *ConnectService) GetCurrentUser(ctx context.Context, accessToken string) (*models.ConnectUser, error) {
	if accessToken == "" {
		return nil, errors.NewUnauthorizedError("Access token is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/users/me", nil)
	if err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to build Connect request")
	}

	// Check if accessToken is Bearer token
	if strings.HasPrefix(accessToken, "Bearer ") {
		req.Header.Set("Authorization", accessToken)
	} else {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	return s.do(req)
}

func (s *ConnectService) do(req *http.Request) (*models.ConnectUser, error) {
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.NewInternalServerError(err, "Connect is unavailable")
	}
	defer resp.Body.Close()

	var webResponse models.WebResponse[models.ConnectUser]
	err = json.NewDecoder(resp.Body).Decode(&webResponse)
	if err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to decode response body")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewAppError(resp.StatusCode, webResponse.Message)
	}

	return &webResponse.Data, nil
}
