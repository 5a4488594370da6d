package handlers

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rohits-web03/otadash/internal/apperr"
)

const (
	statePrefix = "oauth:state:"
	stateTTL    = 10 * time.Minute
	nonceBytes  = 16
)

// newNonce returns a random url-safe nonce identifying one OAuth round trip.
func newNonce() (string, error) {
	b := make([]byte, nonceBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GenerateState creates an OAuth state of the form nonce.payload, where
// payload carries data such as the page to return to.
func GenerateState(data map[string]string) (string, string, error) {
	nonce, err := newNonce()
	if err != nil {
		return "", "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	payloadBytes, err := json.Marshal(data)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal state data: %w", err)
	}
	return nonce + "." + base64.RawURLEncoding.EncodeToString(payloadBytes), nonce, nil
}

// DecodeState splits a state into its nonce and data.
func DecodeState(state string) (string, map[string]string, error) {
	parts := strings.Split(state, ".")
	if len(parts) != 2 || parts[0] == "" {
		return "", nil, fmt.Errorf("invalid state format")
	}

	payloadBytes, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return "", nil, fmt.Errorf("failed to decode state payload: %w", err)
	}

	var data map[string]string
	if err := json.Unmarshal(payloadBytes, &data); err != nil {
		return "", nil, fmt.Errorf("failed to unmarshal state JSON: %w", err)
	}
	return parts[0], data, nil
}

// issueState generates a state and remembers its nonce so the callback can
// accept it exactly once.
func (h *Handler) issueState(ctx context.Context, data map[string]string) (string, error) {
	state, nonce, err := GenerateState(data)
	if err != nil {
		return "", apperr.NewInternalError("Failed to generate OAuth state", err)
	}
	if err := h.Cache.Set(ctx, statePrefix+nonce, "1", stateTTL); err != nil {
		return "", apperr.NewUnavailableError("Failed to store OAuth state", err)
	}
	return state, nil
}

func (h *Handler) consumeState(ctx context.Context, state string) (map[string]string, error) {
	nonce, data, err := DecodeState(state)
	if err != nil {
		return nil, apperr.NewValidationError("Invalid OAuth state", err)
	}
	ok, err := h.Cache.Take(ctx, statePrefix+nonce)
	if err != nil {
		return nil, apperr.NewValidationError("OAuth state could not be verified", err)
	}
	if !ok {
		return nil, apperr.NewValidationError("OAuth state expired or already used", nil)
	}
	return data, nil
}
