package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/microaistudio/hptourism-r1-sub000/config"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// NotificationProcessor delivers workflow emails off the request path.
type NotificationProcessor struct {
	dialer *gomail.Dialer
	from   string
}

func NewNotificationProcessor(dialer *gomail.Dialer, from string) *NotificationProcessor {
	return &NotificationProcessor{dialer: dialer, from: from}
}

// Register wires the processor's handlers onto the worker mux.
func (p *NotificationProcessor) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeStatusNotification, p.HandleStatusNotification)
	mux.HandleFunc(TypeCertificateIssued, p.HandleCertificateIssued)
	mux.HandleFunc(TypeLoginOTP, p.HandleLoginOTP)
}

func (p *NotificationProcessor) HandleLoginOTP(ctx context.Context, task *asynq.Task) error {
	var payload LoginOTPPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to decode login OTP payload: %w", err)
	}

	message := gomail.NewMessage()
	message.SetHeader("From", p.from)
	message.SetHeader("To", payload.Email)
	message.SetHeader("Subject", "Your login code")
	message.SetBody("text/plain", fmt.Sprintf(
		"Dear %s,\n\nYour one-time login code is %s. It expires in 5 minutes.",
		payload.Name, payload.OTP))

	if err := p.dialer.DialAndSend(message); err != nil {
		config.Logger.Error("failed to send login OTP", zap.String("email", payload.Email), zap.Error(err))
		return err
	}
	return nil
}

func (p *NotificationProcessor) HandleStatusNotification(ctx context.Context, task *asynq.Task) error {
	var payload StatusNotificationPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to decode status notification payload: %w", err)
	}

	body := fmt.Sprintf(
		"Dear %s,\n\nYour homestay application %s has moved to status %s.",
		payload.OwnerName, payload.ApplicationNumber, payload.NewStatus)
	if payload.Feedback != "" {
		body += fmt.Sprintf("\n\nReviewer remarks:\n%s", payload.Feedback)
	}
	body += "\n\nHimachal Pradesh Department of Tourism"

	message := gomail.NewMessage()
	message.SetHeader("From", p.from)
	message.SetHeader("To", payload.OwnerEmail)
	message.SetHeader("Subject", fmt.Sprintf("Homestay application %s: %s", payload.ApplicationNumber, payload.NewStatus))
	message.SetBody("text/plain", body)

	if err := p.dialer.DialAndSend(message); err != nil {
		config.Logger.Error("failed to send status notification",
			zap.String("application_number", payload.ApplicationNumber),
			zap.Error(err))
		return err
	}

	config.Logger.Info("status notification sent",
		zap.String("application_number", payload.ApplicationNumber),
		zap.String("new_status", payload.NewStatus))
	return nil
}

func (p *NotificationProcessor) HandleCertificateIssued(ctx context.Context, task *asynq.Task) error {
	var payload CertificateIssuedPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to decode certificate payload: %w", err)
	}

	body := fmt.Sprintf(
		"Dear %s,\n\nYour homestay registration %s is approved. Certificate %s is valid until %s.\n\nHimachal Pradesh Department of Tourism",
		payload.OwnerName, payload.ApplicationNumber, payload.CertificateNumber, payload.ExpiresAt)

	message := gomail.NewMessage()
	message.SetHeader("From", p.from)
	message.SetHeader("To", payload.OwnerEmail)
	message.SetHeader("Subject", fmt.Sprintf("Homestay registration certificate %s", payload.CertificateNumber))
	message.SetBody("text/plain", body)

	if err := p.dialer.DialAndSend(message); err != nil {
		config.Logger.Error("failed to send certificate email",
			zap.String("certificate_number", payload.CertificateNumber),
			zap.Error(err))
		return err
	}
	return nil
}
