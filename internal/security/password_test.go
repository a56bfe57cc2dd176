package security

import "testing"

func testParams() Argon2Params {
	return Argon2Params{Memory: 64 * 1024, Iterations: 2, Parallelism: 1, SaltLength: 16, KeyLength: 32}
}

func TestPasswordHashVerify(t *testing.T) {
	hash, err := HashPassword("s3cret", testParams())
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}

	ok, err := VerifyPassword("s3cret", hash)
	if err != nil {
		t.Fatalf("verify error: %v", err)
	}
	if !ok {
		t.Fatalf("expected password to verify")
	}

	ok, err = VerifyPassword("wrong", hash)
	if err != nil {
		t.Fatalf("verify error: %v", err)
	}
	if ok {
		t.Fatalf("expected password to fail")
	}
}

func TestPasswordHashSaltedPerCall(t *testing.T) {
	h1, err := HashPassword("s3cret", testParams())
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	h2, err := HashPassword("s3cret", testParams())
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	if h1 == h2 {
		t.Fatalf("expected distinct hashes for identical input")
	}

	for _, h := range []string{h1, h2} {
		ok, err := VerifyPassword("s3cret", h)
		if err != nil || !ok {
			t.Fatalf("expected both hashes to verify, got ok=%v err=%v", ok, err)
		}
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	ok, err := VerifyPassword("s3cret", "not-a-hash")
	if err == nil {
		t.Fatalf("expected error for malformed hash")
	}
	if ok {
		t.Fatalf("expected malformed hash to fail verification")
	}
}
