package main

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// claimService abstracts the payout side of the faucet. Transaction
// construction and broadcast live behind this interface; the built-in
// implementation only queues and records claims.
type claimService interface {
	// QueuedAmount is the sum of claims accepted but not yet paid out.
	QueuedAmount() int64
	// SubmitClaim validates a claim token and moves the session into the
	// payout queue. The target address must match the token.
	SubmitClaim(token, targetAddr string) (*claimEntry, error)
}

type claimEntry struct {
	SessionID  string    `json:"session"`
	TargetAddr string    `json:"target"`
	Amount     int64     `json:"amount"`
	Claimed    time.Time `json:"claimed"`
}

type claimTokenClaims struct {
	Amount     int64  `json:"amount"`
	TargetAddr string `json:"target,omitempty"`
	jwt.RegisteredClaims
}

// issueClaimToken signs a claim token for a claimable session. The token is
// bound to the session id and balance; it expires with the session's claim
// window so stale tokens cannot be replayed after a restart wipe.
func issueClaimToken(cfg Config, sessionID string, balance int64) (string, error) {
	if strings.TrimSpace(cfg.FaucetSecret) == "" {
		return "", fmt.Errorf("faucet secret not configured")
	}
	now := time.Now()
	claims := claimTokenClaims{
		Amount: balance,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			Issuer:    faucetSoftwareName,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(24 * time.Hour)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString([]byte(cfg.FaucetSecret))
}

func parseClaimToken(cfg Config, token string) (*claimTokenClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &claimTokenClaims{},
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
			}
			return []byte(cfg.FaucetSecret), nil
		},
		jwt.WithIssuer(faucetSoftwareName),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*claimTokenClaims)
	if !ok {
		return nil, fmt.Errorf("unexpected claim payload")
	}
	return claims, nil
}

// claimQueue is the built-in claimService: it validates tokens, transitions
// sessions claimable -> claiming -> finished and records claims in the kv
// bag. A real deployment would drain the queue into wallet transactions.
type claimQueue struct {
	svc *services

	mu     sync.Mutex
	queued []claimEntry
	total  int64
}

func newClaimQueue(svc *services) *claimQueue {
	return &claimQueue{svc: svc}
}

func (q *claimQueue) QueuedAmount() int64 {
	if q == nil {
		return 0
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.total
}

func (q *claimQueue) SubmitClaim(token, targetAddr string) (*claimEntry, error) {
	if q == nil || q.svc == nil {
		return nil, fmt.Errorf("claim queue not configured")
	}
	targetAddr = strings.TrimSpace(targetAddr)
	if targetAddr == "" {
		return nil, fmt.Errorf("missing target address")
	}
	claims, err := parseClaimToken(q.svc.cfg, token)
	if err != nil {
		return nil, fmt.Errorf("invalid claim token: %w", err)
	}
	if claims.TargetAddr != "" && claims.TargetAddr != targetAddr {
		return nil, fmt.Errorf("claim token bound to a different address")
	}

	row, ok, err := q.svc.store.getSession(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("claim lookup failed: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("unknown session")
	}
	if row.Status != string(sessionClaimable) {
		return nil, fmt.Errorf("session not claimable (status %s)", row.Status)
	}
	if row.Balance != claims.Amount {
		return nil, fmt.Errorf("claim token balance mismatch")
	}

	if err := q.svc.store.setSessionStatus(row.ID, string(sessionClaiming)); err != nil {
		return nil, fmt.Errorf("claim transition failed: %w", err)
	}

	entry := claimEntry{
		SessionID:  row.ID,
		TargetAddr: targetAddr,
		Amount:     row.Balance,
		Claimed:    time.Now(),
	}
	q.mu.Lock()
	q.queued = append(q.queued, entry)
	q.total += entry.Amount
	q.mu.Unlock()

	logger.Info("claim queued",
		"session", entry.SessionID,
		"target", entry.TargetAddr,
		"amount", entry.Amount,
	)
	return &entry, nil
}

// settleNext pops the oldest queued claim and marks its session finished.
// The stub has nothing to broadcast, so settlement is immediate; it exists
// so the queue drains the same way a wallet-backed implementation would.
func (q *claimQueue) settleNext() (bool, error) {
	if q == nil || q.svc == nil {
		return false, nil
	}
	q.mu.Lock()
	if len(q.queued) == 0 {
		q.mu.Unlock()
		return false, nil
	}
	entry := q.queued[0]
	q.queued = q.queued[1:]
	q.total -= entry.Amount
	q.mu.Unlock()

	if err := q.svc.store.setSessionStatus(entry.SessionID, string(sessionFinished)); err != nil {
		return true, err
	}
	blob, err := fastJSONEncodeString(entry)
	if err == nil {
		err = q.svc.store.kvSet("claim."+entry.SessionID, blob)
	}
	if err != nil {
		logger.Warn("claim record write failed", "session", entry.SessionID, "error", err)
	}
	q.svc.notifier.enqueueNotice(fmt.Sprintf(
		"claim settled: %d drips to %s (session %s)",
		entry.Amount, entry.TargetAddr, entry.SessionID,
	))
	return true, nil
}

// settleLoop drains the claim queue until ctx is cancelled.
func (q *claimQueue) settleLoop(done <-chan struct{}) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			for {
				more, err := q.settleNext()
				if err != nil {
					logger.Warn("claim settlement failed", "error", err)
					break
				}
				if !more {
					break
				}
			}
		}
	}
}
