package wa

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	t.Parallel()

	secret := "app-secret"
	body := []byte(`{"object":"whatsapp_business_account"}`)

	if !VerifySignature(secret, body, sign(secret, body)) {
		t.Error("valid signature rejected")
	}
	if VerifySignature(secret, body, sign("other-secret", body)) {
		t.Error("signature from wrong secret accepted")
	}
	if VerifySignature(secret, []byte("tampered"), sign(secret, body)) {
		t.Error("signature over different body accepted")
	}
	if VerifySignature(secret, body, "") {
		t.Error("empty signature accepted")
	}
	if VerifySignature(secret, body, "md5=abc") {
		t.Error("wrong prefix accepted")
	}
	if VerifySignature("", body, sign("", body)) {
		t.Error("empty secret must reject everything")
	}
}
