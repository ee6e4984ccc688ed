package service

import (
	"context"
	"errors"

	"github.com/hotelstaff/orderfeed/internal/metrics"
	"github.com/hotelstaff/orderfeed/internal/order"
	"go.uber.org/zap"
)

// Registration messages shown to staff.
const (
	MsgPermissionDenied = "Permission to notify was denied"
	msgTokenFailed      = "Error obtaining push token: "
	msgSent             = "Token sent successfully: "
	msgSendFailed       = "Error sending token: "
)

var errEmptyToken = errors.New("device returned an empty push token")

// Device is the notification capability of the staff device.
type Device interface {
	RequestPermission(ctx context.Context) (bool, error)
	PushToken(ctx context.Context) (string, error)
}

// TokenSaver registers a push token with the backend.
// Satisfied by *backend.Client; narrow interface for testability.
type TokenSaver interface {
	SaveExpoToken(ctx context.Context, token, hotel string) (string, error)
}

// Registrar runs the push-token registration workflow. It reports through
// the returned Registration only; it never touches the order feeds.
type Registrar struct {
	saver   TokenSaver
	log     *zap.Logger
	metrics *metrics.Recorder
}

func NewRegistrar(saver TokenSaver, log *zap.Logger, m *metrics.Recorder) *Registrar {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registrar{saver: saver, log: log, metrics: m}
}

// Register asks for permission, obtains a push token and saves it for hotel.
// Every failure is reported in the result, never as a panic or error.
func (r *Registrar) Register(ctx context.Context, device Device, hotel string) order.Registration {
	log := r.log.With(zap.String("hotel", hotel))

	granted, err := device.RequestPermission(ctx)
	if err != nil || !granted {
		log.Warn("notification permission not granted", zap.Error(err))
		r.metrics.Registration("denied")
		return order.Registration{Message: MsgPermissionDenied, Done: true}
	}

	token, err := device.PushToken(ctx)
	if err != nil || token == "" {
		if err == nil {
			err = errEmptyToken
		}
		log.Warn("could not obtain push token", zap.Error(err))
		r.metrics.Registration("token_error")
		return order.Registration{
			PermissionGranted: true,
			Message:           msgTokenFailed + err.Error(),
			Done:              true,
		}
	}

	msg, err := r.saver.SaveExpoToken(ctx, token, hotel)
	if err != nil {
		log.Error("sending push token failed", zap.Error(err))
		r.metrics.Registration("failed")
		// The token is only kept once the backend has accepted it.
		return order.Registration{
			PermissionGranted: true,
			Message:           msgSendFailed + err.Error(),
			Done:              true,
		}
	}

	log.Info("push token registered")
	r.metrics.Registration("registered")
	return order.Registration{
		PermissionGranted: true,
		Token:             token,
		Message:           msgSent + msg,
		Success:           true,
		Done:              true,
	}
}
