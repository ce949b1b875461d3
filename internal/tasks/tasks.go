package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	TypeStatusNotification = "application:status_changed"
	TypeCertificateIssued  = "application:certificate_issued"
	TypeLoginOTP           = "auth:login_otp"
)

// StatusNotificationPayload carries everything the mail handler needs so it
// never has to read the database.
type StatusNotificationPayload struct {
	ApplicationID     string `json:"application_id"`
	ApplicationNumber string `json:"application_number"`
	OwnerName         string `json:"owner_name"`
	OwnerEmail        string `json:"owner_email"`
	NewStatus         string `json:"new_status"`
	Feedback          string `json:"feedback,omitempty"`
}

func NewStatusNotificationTask(payload StatusNotificationPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeStatusNotification, data), nil
}

// CertificateIssuedPayload announces a freshly approved registration.
type CertificateIssuedPayload struct {
	ApplicationNumber string `json:"application_number"`
	CertificateNumber string `json:"certificate_number"`
	OwnerName         string `json:"owner_name"`
	OwnerEmail        string `json:"owner_email"`
	ExpiresAt         string `json:"expires_at"`
}

func NewCertificateIssuedTask(payload CertificateIssuedPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeCertificateIssued, data), nil
}

// LoginOTPPayload carries a one-time login code to the mail handler.
type LoginOTPPayload struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	OTP   string `json:"otp"`
}

func NewLoginOTPTask(payload LoginOTPPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeLoginOTP, data), nil
}
