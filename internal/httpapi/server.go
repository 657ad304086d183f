package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/MarkoPoloResearchLab/timelock/internal/eventlog"
	"github.com/MarkoPoloResearchLab/timelock/pkg/timelock"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Run boots the HTTP surface over the supplied ledger service and blocks
// until ctx is cancelled or the listener fails.
func Run(ctx context.Context, cfg Config, service *timelock.Service, journal *eventlog.Journal, logger *zap.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	handler := &httpHandler{
		logger:  logger,
		service: service,
		journal: journal,
	}
	router := setupRouter(cfg, handler)

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("timelock api listening", zap.String("addr", cfg.ListenAddr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
			logger.Warn("server shutdown error", zap.Error(shutdownErr))
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func setupRouter(cfg Config, handler *httpHandler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Origin", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	api.Use(bearerAuth(cfg))

	api.POST("/locks", handler.handleCreateLock)
	api.GET("/locks/:id", handler.handleGetLock)
	api.POST("/locks/:id/withdraw", handler.handleWithdraw)
	api.POST("/locks/:id/transfer", handler.handleTransfer)
	api.GET("/owners/:owner/locks", handler.handleOwnerLocks)
	api.GET("/owners/:owner/active-locks", handler.handleActiveLocks)
	api.GET("/owners/:owner/locked-amount", handler.handleLockedAmount)
	api.GET("/tokens/:token/locks", handler.handleTokenLocks)
	api.POST("/admin/fee", handler.handleSetFee)
	api.POST("/admin/sweep", handler.handleSweepFees)
	api.GET("/events", handler.handleEvents)

	return router
}

type httpHandler struct {
	logger  *zap.Logger
	service *timelock.Service
	journal *eventlog.Journal
}

type createLockRequest struct {
	Token         string `json:"token"`
	Amount        int64  `json:"amount"`
	UnlockUnixUTC int64  `json:"unlock_unix_utc"`
	FeePayment    int64  `json:"fee_payment"`
}

type transferRequest struct {
	NewOwner string `json:"new_owner"`
}

type setFeeRequest struct {
	Fee int64 `json:"fee"`
}

type lockPayload struct {
	LockID        uint64 `json:"lock_id"`
	Token         string `json:"token"`
	Owner         string `json:"owner"`
	Amount        int64  `json:"amount"`
	UnlockUnixUTC int64  `json:"unlock_unix_utc"`
	Withdrawn     bool   `json:"withdrawn"`
}

type eventPayload struct {
	Sequence       int64           `json:"sequence"`
	EventID        string          `json:"event_id"`
	Name           string          `json:"name"`
	Payload        json.RawMessage `json:"payload"`
	CreatedUnixUTC int64           `json:"created_unix_utc"`
}

func (handler *httpHandler) handleCreateLock(ctx *gin.Context) {
	caller, ok := callerPrincipal(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, errorResponse("unauthorized", "missing principal"))
		return
	}
	var request createLockRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", "expected JSON body"))
		return
	}
	token, err := timelock.NewTokenID(request.Token)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	amount, err := timelock.NewPositiveAmount(request.Amount)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	feePayment, err := timelock.NewAmount(request.FeePayment)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	lockID, err := handler.service.CreateLock(ctx.Request.Context(), caller, token, amount, request.UnlockUnixUTC, feePayment)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"lock_id": uint64(lockID)})
}

func (handler *httpHandler) handleGetLock(ctx *gin.Context) {
	lockID, ok := parseLockID(ctx)
	if !ok {
		return
	}
	lock, err := handler.service.GetLock(lockID)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"lock": marshalLock(lock)})
}

func (handler *httpHandler) handleWithdraw(ctx *gin.Context) {
	caller, ok := callerPrincipal(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, errorResponse("unauthorized", "missing principal"))
		return
	}
	lockID, ok := parseLockID(ctx)
	if !ok {
		return
	}
	if err := handler.service.Withdraw(ctx.Request.Context(), caller, lockID); err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (handler *httpHandler) handleTransfer(ctx *gin.Context) {
	caller, ok := callerPrincipal(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, errorResponse("unauthorized", "missing principal"))
		return
	}
	lockID, ok := parseLockID(ctx)
	if !ok {
		return
	}
	var request transferRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", "expected JSON body"))
		return
	}
	// An empty recipient flows through as the null principal so the
	// ledger reports zero_address, not a generic validation failure.
	newOwner, _ := timelock.NewPrincipal(request.NewOwner)
	if err := handler.service.Transfer(ctx.Request.Context(), caller, lockID, newOwner); err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (handler *httpHandler) handleOwnerLocks(ctx *gin.Context) {
	owner, err := timelock.NewPrincipal(ctx.Param("owner"))
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	lockIDs := handler.service.LocksOf(owner)
	ctx.JSON(http.StatusOK, gin.H{"lock_ids": marshalLockIDs(lockIDs)})
}

func (handler *httpHandler) handleTokenLocks(ctx *gin.Context) {
	token, err := timelock.NewTokenID(ctx.Param("token"))
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	lockIDs := handler.service.LocksFor(token)
	ctx.JSON(http.StatusOK, gin.H{"lock_ids": marshalLockIDs(lockIDs)})
}

func (handler *httpHandler) handleActiveLocks(ctx *gin.Context) {
	owner, err := timelock.NewPrincipal(ctx.Param("owner"))
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	active := handler.service.ActiveLocks(owner)
	payload := make([]lockPayload, 0, len(active))
	for _, lock := range active {
		payload = append(payload, marshalLock(lock))
	}
	ctx.JSON(http.StatusOK, gin.H{"locks": payload})
}

func (handler *httpHandler) handleLockedAmount(ctx *gin.Context) {
	owner, err := timelock.NewPrincipal(ctx.Param("owner"))
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	token, err := timelock.NewTokenID(ctx.Query("token"))
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	amount := handler.service.LockedAmount(owner, token)
	ctx.JSON(http.StatusOK, gin.H{"amount": amount.Int64()})
}

func (handler *httpHandler) handleSetFee(ctx *gin.Context) {
	caller, ok := callerPrincipal(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, errorResponse("unauthorized", "missing principal"))
		return
	}
	var request setFeeRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", "expected JSON body"))
		return
	}
	fee, err := timelock.NewAmount(request.Fee)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	if err := handler.service.SetFee(ctx.Request.Context(), caller, fee); err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (handler *httpHandler) handleSweepFees(ctx *gin.Context) {
	caller, ok := callerPrincipal(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, errorResponse("unauthorized", "missing principal"))
		return
	}
	swept, err := handler.service.SweepFees(ctx.Request.Context(), caller)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"swept": swept.Int64()})
}

func (handler *httpHandler) handleEvents(ctx *gin.Context) {
	if handler.journal == nil {
		ctx.JSON(http.StatusNotFound, errorResponse("no_journal", "event journal not configured"))
		return
	}
	limit, err := normalizeEventLimit(ctx.Query("limit"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_limit", err.Error()))
		return
	}
	records, err := handler.journal.Recent(ctx.Request.Context(), limit)
	if err != nil {
		handler.logger.Error("event list failed", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, errorResponse("internal", "event list failed"))
		return
	}
	payload := make([]eventPayload, 0, len(records))
	for _, record := range records {
		payload = append(payload, eventPayload{
			Sequence:       record.Sequence,
			EventID:        record.EventID,
			Name:           record.Name,
			Payload:        json.RawMessage(record.Payload),
			CreatedUnixUTC: record.CreatedAt.Unix(),
		})
	}
	ctx.JSON(http.StatusOK, gin.H{"events": payload})
}

func (handler *httpHandler) respondError(ctx *gin.Context, err error) {
	status, code := mapToHTTPError(err)
	if status >= http.StatusInternalServerError {
		handler.logger.Error("request failed", zap.String("code", code), zap.Error(err))
	}
	ctx.JSON(status, errorResponse(code, err.Error()))
}

func parseLockID(ctx *gin.Context) (timelock.LockID, bool) {
	raw := ctx.Param("id")
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_lock_id", "lock id must be a non-negative integer"))
		return 0, false
	}
	return timelock.LockID(value), true
}

func normalizeEventLimit(raw string) (int, error) {
	if raw == "" {
		return defaultEventListLimit, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return 0, errors.New("limit must be a positive integer")
	}
	if value > maxEventListLimit {
		return 0, errors.New("limit exceeds maximum")
	}
	return value, nil
}

func marshalLock(lock timelock.Lock) lockPayload {
	return lockPayload{
		LockID:        uint64(lock.ID()),
		Token:         lock.Token().String(),
		Owner:         lock.Owner().String(),
		Amount:        lock.Amount().Int64(),
		UnlockUnixUTC: lock.UnlockUnixUTC(),
		Withdrawn:     lock.Withdrawn(),
	}
}

func marshalLockIDs(lockIDs []timelock.LockID) []uint64 {
	out := make([]uint64, 0, len(lockIDs))
	for _, lockID := range lockIDs {
		out = append(out, uint64(lockID))
	}
	return out
}

func errorResponse(code string, message string) gin.H {
	return gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	}
}

func mapToHTTPError(source error) (int, string) {
	switch {
	case errors.Is(source, timelock.ErrInvalidPrincipal):
		return http.StatusBadRequest, "invalid_principal"
	case errors.Is(source, timelock.ErrInvalidTokenID):
		return http.StatusBadRequest, "invalid_token_id"
	case errors.Is(source, timelock.ErrInvalidAmount):
		return http.StatusBadRequest, "invalid_amount"
	case errors.Is(source, timelock.ErrInvalidUnlockTime):
		return http.StatusBadRequest, "invalid_unlock_time"
	case errors.Is(source, timelock.ErrInvalidLockFee):
		return http.StatusBadRequest, "invalid_lock_fee"
	case errors.Is(source, timelock.ErrIncorrectFee):
		return http.StatusBadRequest, "incorrect_fee"
	case errors.Is(source, timelock.ErrZeroAddress):
		return http.StatusBadRequest, "zero_address"
	case errors.Is(source, timelock.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(source, timelock.ErrNotOwner):
		return http.StatusForbidden, "not_owner"
	case errors.Is(source, timelock.ErrUnauthorized):
		return http.StatusForbidden, "unauthorized"
	case errors.Is(source, timelock.ErrAlreadyWithdrawn):
		return http.StatusConflict, "already_withdrawn"
	case errors.Is(source, timelock.ErrStillLocked):
		return http.StatusConflict, "still_locked"
	case errors.Is(source, timelock.ErrNoFeesToSweep):
		return http.StatusConflict, "no_fees_to_sweep"
	case errors.Is(source, timelock.ErrTransferFailed):
		return http.StatusBadGateway, "transfer_failed"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
