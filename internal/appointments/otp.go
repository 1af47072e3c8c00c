package appointments

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	otpMin  = 100000
	otpSpan = 900000
)

// GenerateOTP returns a 6-digit verification code in [100000, 999999]. The
// code is a human-readable shared secret shown to the patient and checked
// against the doctor-entered value at the point of service.
func GenerateOTP() string {
	n, err := rand.Int(rand.Reader, big.NewInt(otpSpan))
	if err != nil {
		// crypto/rand only fails when the platform entropy source is broken.
		panic(fmt.Sprintf("appointments: otp entropy unavailable: %v", err))
	}
	return fmt.Sprintf("%06d", otpMin+n.Int64())
}
