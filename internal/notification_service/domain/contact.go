package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
)

var nanpPhonePattern = regexp.MustCompile(`^\+1\d{10}$`)

// IsCanonicalPhoneNumber reports whether phone is "+1" followed by exactly ten digits.
func IsCanonicalPhoneNumber(phone string) bool {
	return nanpPhonePattern.MatchString(phone)
}

// IdempotencyKey is the hex SHA-256 digest of "phone-order-date".
func IdempotencyKey(phoneNumber, orderNumber, date string) string {
	sum := sha256.Sum256([]byte(phoneNumber + "-" + orderNumber + "-" + date))
	return hex.EncodeToString(sum[:])
}

// FormatPhoneNumber renders +1XXXXXXXXXX as (XXX) XXX-XXXX; anything else is returned unchanged.
func FormatPhoneNumber(phone string) string {
	if !IsCanonicalPhoneNumber(phone) {
		return phone
	}
	d := phone[2:]
	return "(" + d[0:3] + ") " + d[3:6] + "-" + d[6:]
}
