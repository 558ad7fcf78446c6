// Package mail delivers the activation email requested at registration.
package mail

import (
	"context"
	"errors"

	"github.com/coursehub/coursehub-api/pkg/logger"
)

// ActivationMail carries what the activation template needs.
type ActivationMail struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Code  string `json:"activationCode"`
}

type Sender interface {
	SendActivation(ctx context.Context, m ActivationMail) error
}

// ErrNoBroker is returned by LocalSender in production.
var ErrNoBroker = errors.New("activation mail needs KAFKA_BROKERS in production")

// LogSender writes the mail to the log instead of delivering it. The code
// itself is only visible at debug level.
type LogSender struct{}

func (LogSender) SendActivation(ctx context.Context, m ActivationMail) error {
	logger.Infof("activation mail for %s (%s) not delivered: no broker configured", m.Email, m.Name)
	logger.Debugf("activation code for %s: %s", m.Email, m.Code)
	return nil
}

// LocalSender returns the sender used when no broker is configured. It
// refuses in production, where codes must never end up in logs.
func LocalSender(environment string) (Sender, error) {
	if environment == "production" {
		return nil, ErrNoBroker
	}
	return LogSender{}, nil
}
