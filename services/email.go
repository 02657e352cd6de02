package services

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/LovationAdmin/wedding-api/utils"
)

// EmailService notifies the couple about guest activity. Without a Resend API
// key it only logs what it would have sent.
type EmailService struct {
	apiKey     string
	fromEmail  string
	adminURL   string
	recipients []string

	send func(ctx context.Context, apiKey string, req utils.EmailRequest) error
}

func NewEmailService(apiKey, fromEmail, adminURL string, recipients []string) *EmailService {
	return &EmailService{
		apiKey:     apiKey,
		fromEmail:  fromEmail,
		adminURL:   strings.TrimRight(adminURL, "/"),
		recipients: recipients,
		send:       utils.SendResendEmail,
	}
}

func (s *EmailService) NotifyChangeRequest(ctx context.Context, receipt *ChangeRequestReceipt) error {
	if len(s.recipients) == 0 {
		return nil
	}

	householdID := receipt.Household.ID
	if s.apiKey == "" {
		log.WithFields(log.Fields{
			"household_id":   utils.MaskID(householdID),
			"recipients":     len(s.recipients),
			"message_length": len(receipt.Request.Message),
		}).Info("📧 [console] change request notification")
		return nil
	}

	dashboardLink := fmt.Sprintf("%s/dashboard/households/%s", s.adminURL, householdID)
	html, err := utils.RenderChangeRequestEmail(receipt.Household.DisplayName, receipt.Request.Message, dashboardLink)
	if err != nil {
		return err
	}

	err = s.send(ctx, s.apiKey, utils.EmailRequest{
		From:    fmt.Sprintf("Wedding RSVP <%s>", s.fromEmail),
		To:      s.recipients,
		Subject: fmt.Sprintf("RSVP change request from %s", receipt.Household.DisplayName),
		HTML:    html,
	})
	if err != nil {
		return fmt.Errorf("failed to notify couple: %w", err)
	}

	log.WithField("household_id", utils.MaskID(householdID)).Info("📧 Change request notification sent")
	return nil
}
