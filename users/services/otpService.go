package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/microaistudio/hptourism-r1-sub000/config"

	"github.com/pquerna/otp/totp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// OtpService issues and validates login one-time codes. Email OTPs live in
// Redis for five minutes; officers may also enrol an authenticator app.
type OtpService interface {
	GenerateOtp(keySuffix string) (otp string, preToken string)
	ValidateOtp(otp string, preToken string, keySuffix string) bool
	InvalidateOtp(keySuffix string)

	GenerateTOTPSecret(userID, email string) (*TOTPSetup, error)
	ValidateTOTPCode(userID, code string) bool
	EnableTOTP(userID, code string) error
	IsTOTPEnabled(userID string) bool
}

type TOTPSetup struct {
	Secret    string `json:"secret"`
	QRCodeURL string `json:"qr_code_url"`
	ManualKey string `json:"manual_key"`
}

type totpData struct {
	Secret    string    `json:"secret"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
}

type otpService struct {
	redisClient *redis.Client
	ctx         context.Context
}

func NewOtpService(redisClient *redis.Client, ctx context.Context) OtpService {
	return &otpService{redisClient: redisClient, ctx: ctx}
}

type storagePayload struct {
	PreToken string `json:"pre_token"`
	Otp      string `json:"otp"`
}

const otpDuration = 5 * time.Minute

func (os *otpService) GenerateOtp(keySuffix string) (otp string, preToken string) {
	otpValue, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		config.Logger.Error("Failed to generate random OTP", zap.Error(err))
		return "", ""
	}
	otp = fmt.Sprintf("%06d", otpValue.Int64()+100000)

	preTokenBytes := make([]byte, 16)
	if _, err = rand.Read(preTokenBytes); err != nil {
		config.Logger.Error("Failed to generate random pre-token", zap.Error(err))
		return "", ""
	}
	preToken = base64.URLEncoding.EncodeToString(preTokenBytes)

	jsonData, err := json.Marshal(storagePayload{PreToken: preToken, Otp: otp})
	if err != nil {
		config.Logger.Error("Failed to marshal OTP payload", zap.Error(err))
		return "", ""
	}

	redisKey := "otp:" + keySuffix
	if err = os.redisClient.Set(os.ctx, redisKey, string(jsonData), otpDuration).Err(); err != nil {
		config.Logger.Error("Failed to set OTP in Redis", zap.Error(err), zap.String("key", redisKey))
		return "", ""
	}

	return otp, preToken
}

func (os *otpService) ValidateOtp(otp string, preToken string, keySuffix string) bool {
	redisKey := "otp:" + keySuffix
	data := os.redisClient.Get(os.ctx, redisKey).Val()
	if data == "" {
		config.Logger.Warn("OTP not found or expired in Redis", zap.String("key", redisKey))
		return false
	}

	var stored storagePayload
	if err := json.Unmarshal([]byte(data), &stored); err != nil {
		config.Logger.Error("Failed to unmarshal OTP payload from Redis", zap.Error(err), zap.String("key", redisKey))
		return false
	}

	if stored.PreToken == preToken && stored.Otp == otp {
		os.InvalidateOtp(keySuffix)
		return true
	}

	config.Logger.Warn("Invalid OTP or pre-token provided", zap.String("key", redisKey))
	return false
}

func (os *otpService) InvalidateOtp(keySuffix string) {
	redisKey := "otp:" + keySuffix
	if err := os.redisClient.Del(os.ctx, redisKey).Err(); err != nil {
		config.Logger.Error("Failed to invalidate OTP in Redis", zap.Error(err), zap.String("key", redisKey))
	}
}

func (os *otpService) GenerateTOTPSecret(userID, email string) (*TOTPSetup, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "HP Tourism Homestay",
		AccountName: email,
		SecretSize:  32,
	})
	if err != nil {
		config.Logger.Error("Failed to generate TOTP secret", zap.Error(err))
		return nil, err
	}

	jsonData, err := json.Marshal(totpData{
		Secret:    key.Secret(),
		Enabled:   false,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return nil, err
	}

	// Stored unconfirmed for ten minutes; enabling within that window makes
	// it permanent.
	redisKey := "totp:" + userID
	if err = os.redisClient.Set(os.ctx, redisKey, string(jsonData), 10*time.Minute).Err(); err != nil {
		config.Logger.Error("Failed to store TOTP secret in Redis", zap.Error(err))
		return nil, err
	}

	return &TOTPSetup{
		Secret:    key.Secret(),
		QRCodeURL: key.URL(),
		ManualKey: key.Secret(),
	}, nil
}

func (os *otpService) ValidateTOTPCode(userID, code string) bool {
	data := os.redisClient.Get(os.ctx, "totp:"+userID).Val()
	if data == "" {
		config.Logger.Warn("TOTP data not found for user", zap.String("userID", userID))
		return false
	}

	var stored totpData
	if err := json.Unmarshal([]byte(data), &stored); err != nil {
		config.Logger.Error("Failed to unmarshal TOTP data", zap.Error(err))
		return false
	}

	valid := totp.Validate(code, stored.Secret)
	if !valid {
		config.Logger.Warn("Invalid TOTP code provided", zap.String("userID", userID))
	}
	return valid
}

func (os *otpService) EnableTOTP(userID, code string) error {
	if !os.ValidateTOTPCode(userID, code) {
		return fmt.Errorf("invalid TOTP code")
	}

	redisKey := "totp:" + userID
	data := os.redisClient.Get(os.ctx, redisKey).Val()
	if data == "" {
		return fmt.Errorf("TOTP setup not found")
	}

	var stored totpData
	if err := json.Unmarshal([]byte(data), &stored); err != nil {
		return err
	}

	stored.Enabled = true
	jsonData, err := json.Marshal(stored)
	if err != nil {
		return err
	}

	// Enabled secrets never expire.
	return os.redisClient.Set(os.ctx, redisKey, string(jsonData), 0).Err()
}

func (os *otpService) IsTOTPEnabled(userID string) bool {
	data := os.redisClient.Get(os.ctx, "totp:"+userID).Val()
	if data == "" {
		return false
	}

	var stored totpData
	if err := json.Unmarshal([]byte(data), &stored); err != nil {
		return false
	}
	return stored.Enabled
}
