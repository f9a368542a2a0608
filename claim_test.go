package main

import (
	"strings"
	"testing"
	"time"
)

func newTestClaimServices(t *testing.T) *services {
	t.Helper()
	svc := newTestServices(t)
	svc.cfg.FaucetSecret = "test-claim-secret"
	svc.claims = newClaimQueue(svc)
	return svc
}

func claimableTestRow(t *testing.T, svc *services, id string, balance int64) sessionRow {
	t.Helper()
	row := sessionRow{
		ID:      id,
		Status:  string(sessionClaimable),
		Created: time.Now().Unix(),
		Balance: balance,
	}
	if err := svc.store.updateSession(row); err != nil {
		t.Fatalf("updateSession: %v", err)
	}
	return row
}

func TestClaimTokenRoundTrip(t *testing.T) {
	svc := newTestClaimServices(t)
	token, err := issueClaimToken(svc.cfg, "sess-1", 750)
	if err != nil {
		t.Fatalf("issueClaimToken: %v", err)
	}
	claims, err := parseClaimToken(svc.cfg, token)
	if err != nil {
		t.Fatalf("parseClaimToken: %v", err)
	}
	if claims.Subject != "sess-1" || claims.Amount != 750 {
		t.Fatalf("claims = %+v", claims)
	}
	if claims.Issuer != faucetSoftwareName {
		t.Fatalf("issuer = %q", claims.Issuer)
	}
}

func TestClaimTokenWrongSecretRejected(t *testing.T) {
	svc := newTestClaimServices(t)
	token, err := issueClaimToken(svc.cfg, "sess-1", 750)
	if err != nil {
		t.Fatalf("issueClaimToken: %v", err)
	}
	other := svc.cfg
	other.FaucetSecret = "different-secret"
	if _, err := parseClaimToken(other, token); err == nil {
		t.Fatalf("forged token accepted")
	}
}

func TestClaimTokenRequiresSecret(t *testing.T) {
	cfg := defaultConfig()
	cfg.FaucetSecret = ""
	if _, err := issueClaimToken(cfg, "sess-1", 10); err == nil {
		t.Fatalf("token issued without a secret")
	}
}

func TestSubmitClaimHappyPath(t *testing.T) {
	svc := newTestClaimServices(t)
	claimableTestRow(t, svc, "sess-c", 600)
	token, err := issueClaimToken(svc.cfg, "sess-c", 600)
	if err != nil {
		t.Fatalf("issueClaimToken: %v", err)
	}

	entry, err := svc.claims.SubmitClaim(token, "0xfeed")
	if err != nil {
		t.Fatalf("SubmitClaim: %v", err)
	}
	if entry.SessionID != "sess-c" || entry.Amount != 600 || entry.TargetAddr != "0xfeed" {
		t.Fatalf("entry = %+v", entry)
	}
	if got := svc.claims.QueuedAmount(); got != 600 {
		t.Fatalf("QueuedAmount = %d", got)
	}
	row, _, err := svc.store.getSession("sess-c")
	if err != nil {
		t.Fatalf("getSession: %v", err)
	}
	if row.Status != string(sessionClaiming) {
		t.Fatalf("status = %q, want claiming", row.Status)
	}

	// The token is spent once the session left claimable.
	if _, err := svc.claims.SubmitClaim(token, "0xfeed"); err == nil {
		t.Fatalf("replayed claim accepted")
	}
}

func TestSubmitClaimBalanceMismatch(t *testing.T) {
	svc := newTestClaimServices(t)
	row := claimableTestRow(t, svc, "sess-m", 600)
	token, err := issueClaimToken(svc.cfg, "sess-m", 600)
	if err != nil {
		t.Fatalf("issueClaimToken: %v", err)
	}

	// Balance changed after the token was issued (eg a slash).
	row.Balance = 10
	if err := svc.store.updateSession(row); err != nil {
		t.Fatalf("updateSession: %v", err)
	}
	if _, err := svc.claims.SubmitClaim(token, "0xfeed"); err == nil ||
		!strings.Contains(err.Error(), "mismatch") {
		t.Fatalf("stale token accepted: %v", err)
	}
}

func TestSubmitClaimValidation(t *testing.T) {
	svc := newTestClaimServices(t)
	if _, err := svc.claims.SubmitClaim("not-a-token", "0xfeed"); err == nil {
		t.Fatalf("garbage token accepted")
	}
	token, err := issueClaimToken(svc.cfg, "never-stored", 5)
	if err != nil {
		t.Fatalf("issueClaimToken: %v", err)
	}
	if _, err := svc.claims.SubmitClaim(token, ""); err == nil {
		t.Fatalf("empty target address accepted")
	}
	if _, err := svc.claims.SubmitClaim(token, "0xfeed"); err == nil {
		t.Fatalf("claim for unknown session accepted")
	}
}

func TestSettleNextFinishesSession(t *testing.T) {
	svc := newTestClaimServices(t)
	q := svc.claims.(*claimQueue)
	claimableTestRow(t, svc, "sess-s", 300)
	token, err := issueClaimToken(svc.cfg, "sess-s", 300)
	if err != nil {
		t.Fatalf("issueClaimToken: %v", err)
	}
	if _, err := q.SubmitClaim(token, "0xdead"); err != nil {
		t.Fatalf("SubmitClaim: %v", err)
	}

	more, err := q.settleNext()
	if err != nil || !more {
		t.Fatalf("settleNext: more=%v err=%v", more, err)
	}
	if got := q.QueuedAmount(); got != 0 {
		t.Fatalf("QueuedAmount after settle = %d", got)
	}
	row, _, err := svc.store.getSession("sess-s")
	if err != nil {
		t.Fatalf("getSession: %v", err)
	}
	if row.Status != string(sessionFinished) {
		t.Fatalf("status = %q, want finished", row.Status)
	}
	blob, ok, err := svc.store.kvGet("claim.sess-s")
	if err != nil || !ok {
		t.Fatalf("claim record missing: ok=%v err=%v", ok, err)
	}
	var rec claimEntry
	if err := fastJSONUnmarshal([]byte(blob), &rec); err != nil {
		t.Fatalf("claim record unreadable: %v", err)
	}
	if rec.Amount != 300 || rec.TargetAddr != "0xdead" {
		t.Fatalf("claim record = %+v", rec)
	}

	// Empty queue drains quietly.
	more, err = q.settleNext()
	if err != nil || more {
		t.Fatalf("settleNext on empty queue: more=%v err=%v", more, err)
	}
}
