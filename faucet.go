package main

import (
	"context"
	"crypto/subtle"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/hako/durafmt"
)

// faucetAPI is the JSON control surface: session creation, session status,
// claim submission and the aggregate status snapshot. The mining protocol
// itself lives on the websocket listener; this server is plain HTTP.
type faucetAPI struct {
	svc   *services
	start time.Time
	srv   *http.Server
}

func newFaucetAPI(svc *services) *faucetAPI {
	return &faucetAPI{svc: svc, start: time.Now()}
}

func (a *faucetAPI) ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/startSession", a.handleStartSession)
	mux.HandleFunc("/api/sessionStatus", a.handleSessionStatus)
	mux.HandleFunc("/api/claim", a.handleClaim)
	mux.HandleFunc("/api/clientConfig", a.handleClientConfig)
	mux.HandleFunc("/api/status", a.handleStatus)
	a.srv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info("faucet api listening", "addr", addr)
	err := a.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (a *faucetAPI) Shutdown(ctx context.Context) error {
	if a == nil || a.srv == nil {
		return nil
	}
	return a.srv.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	blob, err := fastJSONMarshal(v)
	if err != nil {
		http.Error(w, `{"error":"encode failed"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(blob)
}

func writeJSONError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, map[string]string{"code": code, "error": msg})
}

func clientRemoteIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

type startSessionRequest struct {
	Addr      string            `json:"addr"`
	UserInput map[string]string `json:"input,omitempty"`
}

type sessionStatusView struct {
	ID           string         `json:"session"`
	Status       string         `json:"status"`
	Start        time.Time      `json:"start"`
	Balance      int64          `json:"balance"`
	TargetAddr   string         `json:"target,omitempty"`
	Tasks        []BlockingTask `json:"tasks,omitempty"`
	FailedCode   string         `json:"failedCode,omitempty"`
	FailedReason string         `json:"failedReason,omitempty"`
	ClaimToken   string         `json:"claimToken,omitempty"`
}

func (a *faucetAPI) handleStartSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "METHOD", "POST required")
		return
	}
	var req startSessionRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	sess, err := startSession(r.Context(), a.svc, clientRemoteIP(r), req.UserInput)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "session start failed")
		return
	}
	if addr := strings.TrimSpace(req.Addr); addr != "" {
		if err := sess.SetTargetAddr(addr); err != nil {
			writeJSONError(w, http.StatusBadRequest, "INVALID_ADDR", err.Error())
			return
		}
	}
	if sess.Status() == sessionFailed {
		code, reason := sess.failureInfo()
		writeJSON(w, http.StatusForbidden, map[string]string{
			"code":  code,
			"error": reason,
		})
		return
	}
	writeJSON(w, http.StatusOK, a.sessionView(sess))
}

func (a *faucetAPI) handleSessionStatus(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("session"))
	if id == "" {
		writeJSONError(w, http.StatusBadRequest, "INVALID_REQUEST", "missing session id")
		return
	}
	if sess := a.svc.registry.get(id); sess != nil {
		writeJSON(w, http.StatusOK, a.sessionView(sess))
		return
	}
	row, ok, err := a.svc.store.getSession(id)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "session lookup failed")
		return
	}
	if !ok {
		writeJSONError(w, http.StatusNotFound, "UNKNOWN_SESSION", "unknown session")
		return
	}
	view := sessionStatusView{
		ID:         row.ID,
		Status:     row.Status,
		Start:      time.Unix(row.Created, 0),
		Balance:    row.Balance,
		TargetAddr: row.TargetAddr,
	}
	if row.Status == string(sessionClaimable) {
		if tok, err := issueClaimToken(a.svc.cfg, row.ID, row.Balance); err == nil {
			view.ClaimToken = tok
		}
	}
	writeJSON(w, http.StatusOK, view)
}

func (a *faucetAPI) sessionView(sess *Session) sessionStatusView {
	view := sessionStatusView{
		ID:         sess.ID(),
		Status:     string(sess.Status()),
		Start:      sess.StartTime(),
		Balance:    sess.Balance(),
		TargetAddr: sess.TargetAddr(),
		Tasks:      sess.blockingTasks(),
	}
	switch sess.Status() {
	case sessionFailed:
		view.FailedCode, view.FailedReason = sess.failureInfo()
	case sessionClaimable:
		if tok, err := issueClaimToken(a.svc.cfg, sess.ID(), sess.Balance()); err == nil {
			view.ClaimToken = tok
		}
	}
	return view
}

type claimRequest struct {
	Token string `json:"token"`
	Addr  string `json:"addr"`
}

func (a *faucetAPI) handleClaim(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "METHOD", "POST required")
		return
	}
	var req claimRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	entry, err := a.svc.claims.SubmitClaim(req.Token, req.Addr)
	if err != nil {
		writeJSONError(w, http.StatusForbidden, "CLAIM_REJECTED", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// handleClientConfig assembles the config blob miners need before opening a
// session: pow params, difficulty, limits, plus whatever modules contribute.
func (a *faucetAPI) handleClientConfig(w http.ResponseWriter, r *http.Request) {
	args := &hookArgs{}
	if err := a.svc.hooks.run(r.Context(), hookClientConfig, args); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "config assembly failed")
		return
	}
	cfg := args.ClientConfig()
	cfg["faucetSoftware"] = faucetSoftwareName
	cfg["minClaim"] = a.svc.cfg.MinClaimAmount
	cfg["maxClaim"] = a.svc.cfg.MaxClaimAmount
	cfg["sessionTimeout"] = a.svc.cfg.SessionTimeoutSeconds
	writeJSON(w, http.StatusOK, cfg)
}

type faucetStatusView struct {
	FaucetSoftware   string            `json:"faucet_software"`
	Uptime           string            `json:"uptime"`
	ActiveSessions   int               `json:"active_sessions"`
	AttachedMiners   int               `json:"attached_miners"`
	UnclaimedBalance int64             `json:"unclaimed_balance"`
	QueuedClaims     int64             `json:"queued_claims"`
	Metrics          metricsSnapshot   `json:"metrics"`
	Sessions         []sessionDebugRow `json:"sessions,omitempty"`
}

type sessionDebugRow struct {
	ID         string `json:"session"`
	Status     string `json:"status"`
	Balance    int64  `json:"balance"`
	RemoteIP   string `json:"remote_ip,omitempty"`
	TargetAddr string `json:"target,omitempty"`
}

func (a *faucetAPI) handleStatus(w http.ResponseWriter, r *http.Request) {
	uptime := durafmt.Parse(time.Since(a.start).Round(time.Second)).LimitFirstN(2).String()
	view := faucetStatusView{
		FaucetSoftware:   faucetSoftwareName,
		Uptime:           uptime,
		ActiveSessions:   a.svc.registry.count(),
		AttachedMiners:   a.svc.coord.totalMirrors(),
		UnclaimedBalance: a.svc.registry.unclaimedBalance(),
		QueuedClaims:     a.svc.claims.QueuedAmount(),
		Metrics:          a.svc.metrics.snapshot(uptime),
	}

	// Per-session rows expose ips and addresses; only include them (unmasked)
	// when the shared secret is presented.
	unmasked := a.debugUnlocked(r)
	if r.URL.Query().Get("sessions") != "" {
		for _, sess := range a.svc.registry.all() {
			row := sessionDebugRow{
				ID:      sess.ID(),
				Status:  string(sess.Status()),
				Balance: sess.Balance(),
			}
			if unmasked {
				row.RemoteIP = sess.RemoteIP()
				row.TargetAddr = sess.TargetAddr()
			} else {
				row.ID = maskSessionID(row.ID)
			}
			view.Sessions = append(view.Sessions, row)
		}
	}
	writeJSON(w, http.StatusOK, view)
}

func (a *faucetAPI) debugUnlocked(r *http.Request) bool {
	secret := strings.TrimSpace(a.svc.cfg.FaucetSecret)
	if secret == "" {
		return false
	}
	presented := strings.TrimSpace(r.Header.Get("X-Faucet-Secret"))
	if presented == "" {
		presented = strings.TrimSpace(r.URL.Query().Get("secret"))
	}
	return subtle.ConstantTimeCompare([]byte(secret), []byte(presented)) == 1
}

func maskSessionID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8] + "..."
}

func decodeJSONBody(r *http.Request, v any) error {
	body := http.MaxBytesReader(nil, r.Body, 64*1024)
	defer body.Close()
	buf, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	if len(buf) == 0 {
		return nil
	}
	return fastJSONUnmarshal(buf, v)
}
