package solana

import (
	"crypto/sha256"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// Well-known program and mint addresses on mainnet.
const (
	TokenProgramID           = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	AssociatedTokenProgramID = "ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL"
	USDCMint                 = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	WrappedSOLMint           = "So11111111111111111111111111111111111111112"
)

// LamportsPerSOL is the number of lamports in one SOL.
const LamportsPerSOL = 1_000_000_000

// ValidatePubkey checks that an address is a syntactically valid Solana
// public key: base58 text decoding to exactly 32 bytes.
func ValidatePubkey(address string) error {
	if address == "" {
		return fmt.Errorf("empty address")
	}
	raw, err := base58.Decode(address)
	if err != nil {
		return fmt.Errorf("invalid base58 address: %w", err)
	}
	if len(raw) != 32 {
		return fmt.Errorf("invalid address length: %d bytes", len(raw))
	}
	return nil
}

// FindAssociatedTokenAddress derives the associated token account address
// for an owner and mint.
func FindAssociatedTokenAddress(owner, mint string) (string, error) {
	ownerBytes, err := base58.Decode(owner)
	if err != nil {
		return "", fmt.Errorf("decode owner: %w", err)
	}
	mintBytes, err := base58.Decode(mint)
	if err != nil {
		return "", fmt.Errorf("decode mint: %w", err)
	}
	tokenProgram, err := base58.Decode(TokenProgramID)
	if err != nil {
		return "", fmt.Errorf("decode token program: %w", err)
	}
	ataProgram, err := base58.Decode(AssociatedTokenProgramID)
	if err != nil {
		return "", fmt.Errorf("decode associated token program: %w", err)
	}

	seeds := [][]byte{ownerBytes, tokenProgram, mintBytes}
	addr := derivePDA(seeds, ataProgram)
	if addr == "" {
		return "", fmt.Errorf("no valid bump seed for owner %s mint %s", owner, mint)
	}
	return addr, nil
}

// derivePDA derives a Program Derived Address using the Solana algorithm:
// sha256 over seeds + bump + program ID + marker, taking the first bump
// whose hash is off the ed25519 curve.
func derivePDA(seeds [][]byte, programID []byte) string {
	for bump := byte(255); bump > 0; bump-- {
		data := make([]byte, 0)
		for _, seed := range seeds {
			data = append(data, seed...)
		}
		data = append(data, bump)
		data = append(data, programID...)
		data = append(data, []byte("ProgramDerivedAddress")...)

		hash := sha256.Sum256(data)

		if !isOnCurve(hash[:]) {
			return base58.Encode(hash[:])
		}
	}

	return ""
}

func isOnCurve(point []byte) bool {
	if len(point) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}
