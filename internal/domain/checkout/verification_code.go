package checkout

import (
	"crypto/rand"
	"regexp"
)

// verificationCodeAlphabet excludes visually ambiguous characters (I, L, O, 0, 1)
// so the code can be read back over the phone without confusion
const verificationCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// VerificationCodeLength is the length of the anti-fraud verification code
const VerificationCodeLength = 8

// VerificationCodePattern matches a well-formed verification code
var VerificationCodePattern = regexp.MustCompile(`^[A-Z0-9]{8}$`)

// GenerateVerificationCode produces a random 8-character anti-fraud code
// from the defined alphabet. A code is issued once per order, on the first
// payment approval.
func GenerateVerificationCode() string {
	buf := make([]byte, VerificationCodeLength)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	code := make([]byte, VerificationCodeLength)
	for i, b := range buf {
		code[i] = verificationCodeAlphabet[int(b)%len(verificationCodeAlphabet)]
	}
	return string(code)
}
