package services

import (
	"context"
	"errors"

	"agencycrm/internal/whatsapp"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNoPhone is returned when the phone has no digits left after normalisation.
var ErrNoPhone = errors.New("phone number has no digits")

// MessageGateway sends one text message on behalf of a tenant.
type MessageGateway interface {
	Send(ctx context.Context, tenantID uuid.UUID, phone, body string) error
}

type messageGateway struct {
	settings SettingsService
	sender   whatsapp.Sender
	logger   *zap.Logger
}

func NewMessageGateway(settings SettingsService, sender whatsapp.Sender, logger *zap.Logger) MessageGateway {
	return &messageGateway{
		settings: settings,
		sender:   sender,
		logger:   logger,
	}
}

// Send resolves credentials at call time, so nothing is required of a tenant
// until a message actually goes out. Provider failures come back as
// *DispatchFailedError and incomplete credentials as *ConfigurationMissingError.
func (g *messageGateway) Send(ctx context.Context, tenantID uuid.UUID, phone, body string) error {
	cfg, err := g.settings.ResolveMessaging(ctx, tenantID)
	if err != nil {
		return err
	}
	if !cfg.Complete() {
		return &ConfigurationMissingError{Missing: cfg.Missing}
	}

	number := whatsapp.NormalizePhone(phone)
	if number == "" {
		return &DispatchFailedError{Phone: phone, Err: ErrNoPhone}
	}

	if err := g.sender.SendText(ctx, cfg.Credentials, number, body); err != nil {
		g.logger.Warn("message dispatch failed",
			zap.String("tenant_id", tenantID.String()),
			zap.String("phone", number),
			zap.Error(err),
		)
		return &DispatchFailedError{Phone: number, Err: err}
	}

	g.logger.Debug("message dispatched", zap.String("tenant_id", tenantID.String()), zap.String("phone", number))
	return nil
}
