package timelock

import (
	"errors"
	"testing"
)

const errorMismatchMessage = "expected error %v, got %v"

func TestNewPrincipalValidation(test *testing.T) {
	test.Parallel()
	testCases := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{name: "empty", raw: "", wantErr: ErrInvalidPrincipal},
		{name: "whitespace", raw: "   ", wantErr: ErrInvalidPrincipal},
		{name: "valid", raw: "alice"},
		{name: "trimmed", raw: "  alice  "},
	}

	for _, testCase := range testCases {
		testCase := testCase
		test.Run(testCase.name, func(test *testing.T) {
			test.Parallel()
			principal, err := NewPrincipal(testCase.raw)
			if !errors.Is(err, testCase.wantErr) {
				test.Fatalf(errorMismatchMessage, testCase.wantErr, err)
			}
			if testCase.wantErr == nil && principal.String() != "alice" {
				test.Fatalf("expected normalized principal, got %q", principal.String())
			}
		})
	}
}

func TestNewTokenIDValidation(test *testing.T) {
	test.Parallel()
	if _, err := NewTokenID(" "); !errors.Is(err, ErrInvalidTokenID) {
		test.Fatalf(errorMismatchMessage, ErrInvalidTokenID, err)
	}
	token, err := NewTokenID(" gold ")
	if err != nil {
		test.Fatalf("token id: %v", err)
	}
	if token.String() != "gold" {
		test.Fatalf("expected normalized token id, got %q", token.String())
	}
}

func TestNewAmountValidation(test *testing.T) {
	test.Parallel()
	if _, err := NewAmount(-1); !errors.Is(err, ErrInvalidAmount) {
		test.Fatalf(errorMismatchMessage, ErrInvalidAmount, err)
	}
	amount, err := NewAmount(0)
	if err != nil {
		test.Fatalf("amount: %v", err)
	}
	if amount.Int64() != 0 {
		test.Fatalf("expected zero amount, got %d", amount.Int64())
	}
}

func TestNewPositiveAmountValidation(test *testing.T) {
	test.Parallel()
	for _, raw := range []int64{-5, 0} {
		if _, err := NewPositiveAmount(raw); !errors.Is(err, ErrInvalidAmount) {
			test.Fatalf(errorMismatchMessage, ErrInvalidAmount, err)
		}
	}
	amount, err := NewPositiveAmount(42)
	if err != nil {
		test.Fatalf("amount: %v", err)
	}
	if amount.ToAmount() != 42 {
		test.Fatalf("expected widened amount 42, got %d", amount.ToAmount())
	}
}

func TestNewLockValidation(test *testing.T) {
	test.Parallel()
	validToken := mustTokenID(test, "gold")
	validOwner := mustPrincipal(test, "alice")
	validAmount := mustPositiveAmount(test, 10)

	testCases := []struct {
		name    string
		token   TokenID
		owner   Principal
		amount  PositiveAmount
		wantErr error
	}{
		{name: "empty token", token: TokenID{}, owner: validOwner, amount: validAmount, wantErr: ErrInvalidTokenID},
		{name: "empty owner", token: validToken, owner: Principal{}, amount: validAmount, wantErr: ErrInvalidPrincipal},
		{name: "zero amount", token: validToken, owner: validOwner, amount: PositiveAmount(0), wantErr: ErrInvalidAmount},
	}

	for _, testCase := range testCases {
		testCase := testCase
		test.Run(testCase.name, func(test *testing.T) {
			test.Parallel()
			_, err := NewLock(LockID(0), testCase.token, testCase.owner, testCase.amount, 100)
			if !errors.Is(err, testCase.wantErr) {
				test.Fatalf(errorMismatchMessage, testCase.wantErr, err)
			}
		})
	}

	lock, err := NewLock(LockID(3), validToken, validOwner, validAmount, 100)
	if err != nil {
		test.Fatalf("lock: %v", err)
	}
	if lock.ID() != 3 || lock.Withdrawn() {
		test.Fatalf("unexpected lock: %+v", lock)
	}
}
