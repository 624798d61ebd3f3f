package utils

import "math/rand"

const otpCharset = "0123456789"

// GenerateOTP returns a random numeric code of the given length.
func GenerateOTP(length int) string {
	if length <= 0 {
		return ""
	}
	b := make([]byte, length)
	for i := range b {
		b[i] = otpCharset[rand.Intn(len(otpCharset))]
	}
	return string(b)
}
