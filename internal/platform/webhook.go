// Package platform is the boundary to the storefront platform's webhook
// contract: HMAC-SHA256 signatures over the raw body, base64-encoded in a
// header, plus the shop domain identifying the tenant.
package platform

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

const (
	// SignatureHeader carries the base64 HMAC-SHA256 of the request body.
	SignatureHeader = "X-Storefront-Hmac-Sha256"

	// ShopDomainHeader identifies the shop the event belongs to.
	ShopDomainHeader = "X-Storefront-Shop-Domain"
)

// Sign computes the base64 HMAC-SHA256 signature for a payload.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a webhook signature in constant time.
func VerifySignature(body []byte, signature, secret string) bool {
	if signature == "" || secret == "" {
		return false
	}
	expected := Sign(body, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}
