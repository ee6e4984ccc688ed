package session

import (
	"context"
	"errors"
)

// ErrNoPushToken is returned by StaticDevice when permission was granted but
// the UI shell could not supply a token.
var ErrNoPushToken = errors.New("push token unavailable on this device")

// StaticDevice replays the notification capability reported by the UI shell
// when the session was opened.
type StaticDevice struct {
	Granted bool
	Token   string
}

func (d StaticDevice) RequestPermission(ctx context.Context) (bool, error) {
	return d.Granted, ctx.Err()
}

func (d StaticDevice) PushToken(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if d.Token == "" {
		return "", ErrNoPushToken
	}
	return d.Token, nil
}
