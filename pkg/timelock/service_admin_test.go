package timelock

import (
	"context"
	"errors"
	"testing"
)

func TestSetFeeRequiresAdministrator(test *testing.T) {
	test.Parallel()
	fixture := newFixture(test, WithLockFee(mustAmount(test, 5)))
	stranger := mustPrincipal(test, "mallory")

	err := fixture.service.SetFee(context.Background(), stranger, mustAmount(test, 50))
	if !errors.Is(err, ErrUnauthorized) {
		test.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if fixture.service.LockFee() != 5 {
		test.Fatalf("expected fee unchanged, got %d", fixture.service.LockFee())
	}
}

func TestSetFeeAppliesToSubsequentCreationsOnly(test *testing.T) {
	test.Parallel()
	fixture := newFixture(test)
	owner := mustPrincipal(test, "alice")
	token := mustTokenID(test, "gold")

	if err := fixture.service.SetFee(context.Background(), fixture.admin, mustAmount(test, 7)); err != nil {
		test.Fatalf("set fee: %v", err)
	}
	if _, err := fixture.service.CreateLock(context.Background(), owner, token, mustPositiveAmount(test, 10), fixture.clock.now+3600, mustAmount(test, 0)); !errors.Is(err, ErrIncorrectFee) {
		test.Fatalf("expected old fee rejected, got %v", err)
	}
	if _, err := fixture.service.CreateLock(context.Background(), owner, token, mustPositiveAmount(test, 10), fixture.clock.now+3600, mustAmount(test, 7)); err != nil {
		test.Fatalf("create lock with new fee: %v", err)
	}
}

func TestSetFeeAcceptsZero(test *testing.T) {
	test.Parallel()
	fixture := newFixture(test, WithLockFee(mustAmount(test, 5)))

	if err := fixture.service.SetFee(context.Background(), fixture.admin, mustAmount(test, 0)); err != nil {
		test.Fatalf("set fee to zero: %v", err)
	}
	if fixture.service.LockFee() != 0 {
		test.Fatalf("expected zero fee, got %d", fixture.service.LockFee())
	}
}

func TestSweepFeesRequiresAdministrator(test *testing.T) {
	test.Parallel()
	fixture := newFixture(test, WithLockFee(mustAmount(test, 5)))
	owner := mustPrincipal(test, "alice")
	fixture.mustCreateLock(test, owner, "gold", 10, fixture.clock.now+3600)

	_, err := fixture.service.SweepFees(context.Background(), owner)
	if !errors.Is(err, ErrUnauthorized) {
		test.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if fixture.service.AccruedFees() != 5 {
		test.Fatalf("expected accrued fees unchanged, got %d", fixture.service.AccruedFees())
	}
}

func TestSweepFeesRejectsEmptyBalance(test *testing.T) {
	test.Parallel()
	fixture := newFixture(test)

	_, err := fixture.service.SweepFees(context.Background(), fixture.admin)
	if !errors.Is(err, ErrNoFeesToSweep) {
		test.Fatalf("expected ErrNoFeesToSweep, got %v", err)
	}
}

func TestSweepFeesPaysAdministratorAndResets(test *testing.T) {
	test.Parallel()
	fixture := newFixture(test, WithLockFee(mustAmount(test, 5)))
	owner := mustPrincipal(test, "alice")
	fixture.mustCreateLock(test, owner, "gold", 10, fixture.clock.now+3600)
	fixture.mustCreateLock(test, owner, "gold", 10, fixture.clock.now+3600)

	swept, err := fixture.service.SweepFees(context.Background(), fixture.admin)
	if err != nil {
		test.Fatalf("sweep fees: %v", err)
	}
	if swept != 10 {
		test.Fatalf("expected 10 swept, got %d", swept)
	}
	if len(fixture.fees.payouts) != 1 {
		test.Fatalf("expected 1 payout, got %d", len(fixture.fees.payouts))
	}
	payout := fixture.fees.payouts[0]
	if payout.recipient != fixture.admin || payout.amount != 10 {
		test.Fatalf("unexpected payout: %+v", payout)
	}
	if fixture.service.AccruedFees() != 0 {
		test.Fatalf("expected balance reset, got %d", fixture.service.AccruedFees())
	}

	if _, err := fixture.service.SweepFees(context.Background(), fixture.admin); !errors.Is(err, ErrNoFeesToSweep) {
		test.Fatalf("expected ErrNoFeesToSweep after reset, got %v", err)
	}
}

func TestSweepFeesKeepsBalanceOnFailedPayout(test *testing.T) {
	test.Parallel()
	fixture := newFixture(test, WithLockFee(mustAmount(test, 5)))
	owner := mustPrincipal(test, "alice")
	fixture.mustCreateLock(test, owner, "gold", 10, fixture.clock.now+3600)

	fixture.fees.err = errors.New("payout rail down")
	if _, err := fixture.service.SweepFees(context.Background(), fixture.admin); !errors.Is(err, ErrTransferFailed) {
		test.Fatalf("expected ErrTransferFailed, got %v", err)
	}
	if fixture.service.AccruedFees() != 5 {
		test.Fatalf("expected balance retained, got %d", fixture.service.AccruedFees())
	}

	fixture.fees.err = nil
	swept, err := fixture.service.SweepFees(context.Background(), fixture.admin)
	if err != nil {
		test.Fatalf("retry sweep: %v", err)
	}
	if swept != 5 {
		test.Fatalf("expected 5 swept on retry, got %d", swept)
	}
}
