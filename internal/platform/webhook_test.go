package platform

import "testing"

func TestSignAndVerify(t *testing.T) {
	body := []byte(`{"id":123}`)
	sig := Sign(body, "secret")

	if !VerifySignature(body, sig, "secret") {
		t.Error("valid signature rejected")
	}
	if VerifySignature(body, sig, "other-secret") {
		t.Error("signature verified with wrong secret")
	}
	if VerifySignature([]byte(`{"id":124}`), sig, "secret") {
		t.Error("signature verified for altered body")
	}
}

func TestVerifySignatureEmptyInputs(t *testing.T) {
	body := []byte("payload")
	if VerifySignature(body, "", "secret") {
		t.Error("empty signature accepted")
	}
	if VerifySignature(body, Sign(body, "secret"), "") {
		t.Error("empty secret accepted")
	}
}
