package timelock

const (
	operationCreateLock = "create_lock"
	operationWithdraw   = "withdraw"
	operationTransfer   = "transfer"
	operationSetFee     = "set_fee"
	operationSweepFees  = "sweep_fees"

	operationStatusOK    = "ok"
	operationStatusError = "error"
)
