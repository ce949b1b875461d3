package utils

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DateLocation is the application timezone (Indian Standard Time).
var DateLocation = time.FixedZone("IST", 5*3600+30*60)

// StringToUUIDPtr converts a string to UUID pointer
func StringToUUIDPtr(s string) *uuid.UUID {
	if s == "" {
		return nil
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return nil
	}
	return &u
}

// StringPtr returns a pointer to the string value
func StringPtr(s string) *string {
	return &s
}

// FormatApplicationNumber formats a sequence number into a human-readable
// application number, e.g. HP-HS-2026-00042.
func FormatApplicationNumber(sequence int) string {
	year := time.Now().Year()
	return fmt.Sprintf("HP-HS-%d-%05d", year, sequence)
}

// FormatCertificateNumber formats a sequence number into a certificate
// number with the jurisdiction prefix, e.g. HPTSM-HS-2026-00042.
func FormatCertificateNumber(sequence int) string {
	year := time.Now().Year()
	return fmt.Sprintf("HPTSM-HS-%d-%05d", year, sequence)
}
