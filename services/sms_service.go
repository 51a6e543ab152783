// services/sms_service.go
package services

import (
	"context"
	"errors"
	"lifeline/models"
	"lifeline/utils"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// SMSSender delivers one text message and returns the gateway message id.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) (string, error)
}

type TwilioSMSSender struct {
	client *twilio.RestClient
	from   string
}

func NewTwilioSMSSender(accountSID, authToken, from string) *TwilioSMSSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})

	return &TwilioSMSSender{
		client: client,
		from:   from,
	}
}

func (ts *TwilioSMSSender) SendSMS(ctx context.Context, to, body string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(ts.from)
	params.SetBody(body)

	resp, err := ts.client.Api.CreateMessage(params)
	if err != nil {
		return "", err
	}
	if resp.Sid == nil {
		return "", errors.New("twilio returned no message sid")
	}
	return *resp.Sid, nil
}

// DisabledSMSSender is used when no gateway credentials are configured.
type DisabledSMSSender struct{}

func (DisabledSMSSender) SendSMS(context.Context, string, string) (string, error) {
	return "", utils.NewNotConfiguredError("SMS gateway")
}

// NewSMSSender picks Twilio when credentials are present.
func NewSMSSender(accountSID, authToken, from string) SMSSender {
	if accountSID == "" || authToken == "" || from == "" {
		logrus.Warn("Twilio credentials not configured, SMS delivery disabled")
		return DisabledSMSSender{}
	}
	return NewTwilioSMSSender(accountSID, authToken, from)
}

const defaultDirectMessage = "Lifeline test alert: your emergency contact setup is working."

// SMSService backs the ad hoc /send-message endpoint.
type SMSService struct {
	sender      SMSSender
	defaultTo   string
	countryCode string
}

func NewSMSService(sender SMSSender, defaultTo, countryCode string) *SMSService {
	return &SMSService{
		sender:      sender,
		defaultTo:   defaultTo,
		countryCode: countryCode,
	}
}

func (ss *SMSService) SendDirect(ctx context.Context, req models.SendMessageRequest) (*models.SendMessageResponse, error) {
	to := req.To
	if to == "" {
		to = ss.defaultTo
	}
	to = utils.NormalizePhoneNumber(to, ss.countryCode)
	if to == "" {
		return nil, utils.NewNotConfiguredError("Default SMS recipient")
	}

	body := strings.TrimSpace(req.Message)
	if body == "" {
		body = defaultDirectMessage
	}

	messageID, err := ss.sender.SendSMS(ctx, to, body)
	if err != nil {
		logrus.WithField("to", utils.MaskPhoneNumber(to)).Errorf("Error sending message: %v", err)
		return nil, err
	}

	logrus.WithField("to", utils.MaskPhoneNumber(to)).Infof("Message sent: %s", messageID)
	return &models.SendMessageResponse{Success: true, MessageID: messageID}, nil
}
