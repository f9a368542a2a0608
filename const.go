package main

import "time"

const faucetSoftwareName = "goFaucet"

const (
	maxClientMessageSize = 16 * 1024
	wsWriteTimeout       = 30 * time.Second

	// minSessionTimeout keeps operators from configuring sessions so short
	// that a miner cannot realistically earn the minimum claim.
	minSessionTimeout = 60 * time.Second

	// Input validation limits for client-provided fields
	maxNonceStringLen    = 64
	maxProofPayloadLen   = 256
	maxUserInputFieldLen = 512

	// hashrate samples kept per session (rolling window)
	hashrateWindowSize = 5

	// sessionTimerSlack delays the timeout check slightly past the deadline
	// so a timer firing early never observes an unexpired session.
	sessionTimerSlack = 10 * time.Millisecond
)

// Failure codes recorded on failed sessions and sent to clients. The client
// keys its error display off these, so they are part of the wire contract.
const (
	failureCodeSessionTimeout = "SESSION_TIMEOUT"
	failureCodeAmountTooLow   = "AMOUNT_TOO_LOW"
	failureCodeWrongShare     = "WRONG_SHARE"
	failureCodeBadVerify      = "WRONG_VERIFY_RESULT"
	failureCodeClosed         = "CLOSED"
)

// Rejection codes for share submissions that do not slash the session.
const (
	rejectCodeInvalidParams  = "INVALID_PARAMS"
	rejectCodeNonceTooLow    = "NONCE_TOO_LOW"
	rejectCodeHashrateLimit  = "HASHRATE_LIMIT"
	rejectCodeInvalidMessage = "INVALID_MESSAGE"
	rejectCodeUnknownJob     = "UNKNOWN_JOB"
	rejectCodeSessionGone    = "SESSION_GONE"
)

// Abort types a worker reports to the coordinator when a mirrored session
// detaches.
const (
	powAbortSlashed     = "slashed"
	powAbortIdleTimeout = "idle-timeout"
	powAbortClosed      = "client-closed"
)
