package notify

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// TwilioSender delivers SMS and places voice calls via Twilio.
type TwilioSender struct {
	client     *twilio.RestClient
	fromNumber string
}

// NewTwilioSender creates a Twilio-backed SMS sender.
func NewTwilioSender(accountSID, authToken, fromNumber string) *TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioSender{client: client, fromNumber: fromNumber}
}

func (s *TwilioSender) SendSMS(ctx context.Context, to, body string) error {
	params := &twilioapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.fromNumber)
	params.SetBody(body)

	if _, err := s.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("failed to send sms to %s: %w", to, err)
	}
	return nil
}

// Call places an outbound call that reads body aloud via TwiML.
func (s *TwilioSender) Call(ctx context.Context, to, body string) error {
	twiml, err := sayTwiML(body)
	if err != nil {
		return fmt.Errorf("build twiml: %w", err)
	}

	params := &twilioapi.CreateCallParams{}
	params.SetTo(to)
	params.SetFrom(s.fromNumber)
	params.SetTwiml(twiml)

	if _, err := s.client.Api.CreateCall(params); err != nil {
		return fmt.Errorf("failed to call %s: %w", to, err)
	}
	return nil
}

func sayTwiML(body string) (string, error) {
	var escaped bytes.Buffer
	if err := xml.EscapeText(&escaped, []byte(body)); err != nil {
		return "", err
	}
	return fmt.Sprintf(`<Response><Say voice="alice">%s</Say></Response>`, escaped.String()), nil
}
