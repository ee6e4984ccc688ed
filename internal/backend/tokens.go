package backend

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

type saveTokenRequest struct {
	ExpoToken string `json:"expo_token"`
	HotelName string `json:"hotel_name"`
}

// SaveExpoToken registers a device push token for a hotel:
// POST {base}/save/expo/token. It returns the backend's message.
func (c *Client) SaveExpoToken(ctx context.Context, token, hotel string) (string, error) {
	const op = "save push token"
	if strings.TrimSpace(hotel) == "" {
		return "", ErrMissingHotel
	}
	if strings.TrimSpace(token) == "" {
		return "", ErrMissingToken
	}

	env, err := c.do(ctx, op, http.MethodPost, "/save/expo/token", nil, saveTokenRequest{
		ExpoToken: token,
		HotelName: hotel,
	})
	if err != nil {
		return "", err
	}
	if env.rejected() {
		return env.Message, fmt.Errorf("%s: %w: %s", op, ErrRejected, env.Message)
	}
	return env.Message, nil
}
