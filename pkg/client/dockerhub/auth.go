package dockerhub

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"

	apierrors "github.com/jetstack/tag-search/pkg/errors"
)

// login exchanges the configured username and password for a bearer token.
func (c *Client) login(ctx context.Context) (string, error) {
	payload, err := json.Marshal(AuthRequest{
		Username: c.Username,
		Password: c.Password,
	})
	if err != nil {
		return "", err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.URL+loginPath, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Do(req)
	if err != nil {
		return "", apierrors.NewTransportFailure(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login rejected with status %d: %s", resp.StatusCode, body)
	}

	response := new(AuthResponse)
	if err := json.Unmarshal(body, response); err != nil {
		return "", err
	}

	if len(response.Token) == 0 {
		return "", errors.New("login response did not contain a token")
	}

	c.log.Debug("logged in to docker hub")

	return response.Token, nil
}
