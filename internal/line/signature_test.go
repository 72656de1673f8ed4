package line

import "testing"

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"events":[]}`)
	secret := "channel-secret"
	signature := "nENZU9xVqQeZgEX6Nd5huQOCgqTEa5S67sXEhrGuTDk="
	if !VerifySignature(body, signature, secret) {
		t.Fatal("expected signature to be valid")
	}
	if VerifySignature(body, signature, "wrong-secret") {
		t.Fatal("unexpected valid signature with wrong secret")
	}
	if VerifySignature([]byte(`{"events":[{}]}`), signature, secret) {
		t.Fatal("unexpected valid signature with altered body")
	}
	if VerifySignature(body, "not base64!!", secret) {
		t.Fatal("unexpected valid signature with malformed header")
	}
}
