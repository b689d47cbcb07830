// Package notify delivers messages to parents over email and SMS. Each
// channel has one backend chosen at startup; a dispatcher routes by channel.
package notify

import (
	"context"
	"errors"
	"fmt"
)

// Channels a notification can be delivered over.
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
	ChannelVoice = "voice"
)

// Typed errors so callers can distinguish configuration problems from
// delivery failures.
var (
	ErrUnsupportedChannel = errors.New("notify: unsupported channel")
	ErrInvalidRecipient   = errors.New("notify: invalid recipient")
)

// Payload is the content of one notification. Body is plain text; HTMLBody
// is optional and only used by email backends.
type Payload struct {
	Subject  string
	Body     string
	HTMLBody string
}

// Notifier delivers a notification to a recipient over a channel.
type Notifier interface {
	// Send delivers payload to recipient (an email address or E.164 phone
	// number, depending on channel).
	Send(ctx context.Context, channel, recipient string, payload Payload) error
}

// EmailSender delivers email.
type EmailSender interface {
	SendEmail(ctx context.Context, to string, payload Payload) error
}

// SMSSender delivers SMS.
type SMSSender interface {
	SendSMS(ctx context.Context, to string, body string) error
}

// VoiceCaller places an outbound phone call that reads body aloud.
type VoiceCaller interface {
	Call(ctx context.Context, to string, body string) error
}

// Dispatcher routes notifications to per-channel backends. A nil backend
// means the channel is not configured.
type Dispatcher struct {
	email EmailSender
	sms   SMSSender
	voice VoiceCaller
}

// NewDispatcher creates a channel router. Any backend may be nil.
func NewDispatcher(email EmailSender, sms SMSSender, voice VoiceCaller) *Dispatcher {
	return &Dispatcher{email: email, sms: sms, voice: voice}
}

func (d *Dispatcher) Send(ctx context.Context, channel, recipient string, payload Payload) error {
	if recipient == "" {
		return fmt.Errorf("%w: empty recipient", ErrInvalidRecipient)
	}
	switch channel {
	case ChannelEmail:
		if d.email == nil {
			return fmt.Errorf("%w: email not configured", ErrUnsupportedChannel)
		}
		return d.email.SendEmail(ctx, recipient, payload)
	case ChannelSMS:
		if d.sms == nil {
			return fmt.Errorf("%w: sms not configured", ErrUnsupportedChannel)
		}
		return d.sms.SendSMS(ctx, recipient, payload.Body)
	case ChannelVoice:
		if d.voice == nil {
			return fmt.Errorf("%w: voice not configured", ErrUnsupportedChannel)
		}
		return d.voice.Call(ctx, recipient, payload.Body)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedChannel, channel)
	}
}
