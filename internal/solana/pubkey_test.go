package solana

import (
	"testing"

	"github.com/mr-tron/base58"
)

func TestValidatePubkey_Valid(t *testing.T) {
	valid := []string{
		USDCMint,
		TokenProgramID,
		WrappedSOLMint,
	}
	for _, addr := range valid {
		if err := ValidatePubkey(addr); err != nil {
			t.Errorf("ValidatePubkey(%s): %v", addr, err)
		}
	}
}

func TestValidatePubkey_Invalid(t *testing.T) {
	invalid := []string{
		"",
		"not-base58-0OIl",
		"abc",                // too short
		"0x1234567890abcdef", // ethereum style
		USDCMint + USDCMint,  // too long
	}
	for _, addr := range invalid {
		if err := ValidatePubkey(addr); err == nil {
			t.Errorf("ValidatePubkey(%q): expected error", addr)
		}
	}
}

func TestFindAssociatedTokenAddress(t *testing.T) {
	owner := WrappedSOLMint // any valid 32-byte key works as owner here

	addr, err := FindAssociatedTokenAddress(owner, USDCMint)
	if err != nil {
		t.Fatalf("FindAssociatedTokenAddress: %v", err)
	}

	// Derived address must be a valid off-curve 32-byte key
	raw, err := base58.Decode(addr)
	if err != nil {
		t.Fatalf("decode derived address: %v", err)
	}
	if len(raw) != 32 {
		t.Errorf("expected 32-byte address, got %d", len(raw))
	}
	if isOnCurve(raw) {
		t.Error("PDA must be off the ed25519 curve")
	}

	// Deterministic
	again, err := FindAssociatedTokenAddress(owner, USDCMint)
	if err != nil {
		t.Fatalf("second derivation: %v", err)
	}
	if again != addr {
		t.Errorf("derivation not deterministic: %s vs %s", addr, again)
	}

	// Distinct mints yield distinct accounts
	other, err := FindAssociatedTokenAddress(owner, WrappedSOLMint)
	if err != nil {
		t.Fatalf("derive for other mint: %v", err)
	}
	if other == addr {
		t.Error("different mints must derive different token accounts")
	}
}
