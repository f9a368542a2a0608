package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigValidates(t *testing.T) {
	if err := validateConfig(defaultConfig()); err != nil {
		t.Fatalf("default config rejected: %v", err)
	}
}

func TestValidateConfigRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown algo", func(c *Config) { c.PoWAlgo = "cryptonight" }},
		{"nickminer without params", func(c *Config) {
			c.PoWAlgo = powAlgoNickMiner
			c.NickMinerInputHash = ""
		}},
		{"negative difficulty", func(c *Config) { c.PoWDifficulty = -1 }},
		{"difficulty over 256", func(c *Config) { c.PoWDifficulty = 257 }},
		{"max claim below min", func(c *Config) {
			c.MinClaimAmount = 100
			c.MaxClaimAmount = 50
		}},
		{"negative reward", func(c *Config) { c.ShareReward = -1 }},
		{"zero session timeout", func(c *Config) { c.SessionTimeoutSeconds = 0 }},
		{"verify percent over 100", func(c *Config) { c.VerifyLocalPercent = 101 }},
		{"zero peer count", func(c *Config) { c.VerifyPeerCount = 0 }},
		{"bad slash policy", func(c *Config) { c.VerifySlashPolicy = "everyone" }},
	}
	for _, tc := range cases {
		cfg := defaultConfig()
		tc.mutate(&cfg)
		if err := validateConfig(cfg); err == nil {
			t.Errorf("%s: invalid config accepted", tc.name)
		}
	}
}

func TestApplyBaseConfigFromTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[server]
listen = "0.0.0.0:9100"
status_listen = "127.0.0.1:9101"
data_dir = "` + dir + `"

[faucet]
min_claim = 500
max_claim = 9000
share_reward = 25
session_timeout_seconds = 7200

[pow]
algo = " Argon2 "
difficulty = 12
validator_workers = 3

[verify]
peer_percent = 40
slash_policy = "MAJORITY"

[modules]
faucet_balance_enabled = true
faucet_budget = 100000
faucet_balance_steps = { "50000" = 50, "10000" = 10 }
voucher_enabled = true
voucher_required = true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	bc, ok, err := loadBaseConfigFile(path)
	if err != nil || !ok {
		t.Fatalf("loadBaseConfigFile: ok=%v err=%v", ok, err)
	}
	cfg := defaultConfig()
	applyBaseConfig(&cfg, *bc)

	if cfg.ListenAddr != "0.0.0.0:9100" || cfg.StatusAddr != "127.0.0.1:9101" {
		t.Fatalf("listen addrs not applied: %q %q", cfg.ListenAddr, cfg.StatusAddr)
	}
	if cfg.MinClaimAmount != 500 || cfg.MaxClaimAmount != 9000 || cfg.ShareReward != 25 {
		t.Fatalf("faucet amounts not applied: %d %d %d",
			cfg.MinClaimAmount, cfg.MaxClaimAmount, cfg.ShareReward)
	}
	if cfg.SessionTimeoutSeconds != 7200 {
		t.Fatalf("session timeout = %d", cfg.SessionTimeoutSeconds)
	}
	if cfg.PoWAlgo != powAlgoArgon2 {
		t.Fatalf("algo not normalized: %q", cfg.PoWAlgo)
	}
	if cfg.PoWDifficulty != 12 || cfg.ValidatorWorkers != 3 {
		t.Fatalf("pow settings not applied: %d %d", cfg.PoWDifficulty, cfg.ValidatorWorkers)
	}
	if cfg.VerifyPeerPercent != 40 || cfg.VerifySlashPolicy != slashPolicyMajority {
		t.Fatalf("verify settings not applied: %d %q", cfg.VerifyPeerPercent, cfg.VerifySlashPolicy)
	}
	if !cfg.FaucetBalanceModuleEnabled || cfg.FaucetBudget != 100000 {
		t.Fatalf("balance module settings not applied")
	}
	if cfg.FaucetBalanceRestriction[50000] != 50 || cfg.FaucetBalanceRestriction[10000] != 10 {
		t.Fatalf("balance steps not parsed: %+v", cfg.FaucetBalanceRestriction)
	}
	if !cfg.VoucherModuleEnabled || !cfg.VoucherRequired {
		t.Fatalf("voucher module settings not applied")
	}

	if err := validateConfig(cfg); err != nil {
		t.Fatalf("applied config rejected: %v", err)
	}
}

func TestApplySecretsConfig(t *testing.T) {
	cfg := defaultConfig()
	applySecretsConfig(&cfg, secretsFileConfig{FaucetSecret: "CHANGE_ME"})
	if cfg.FaucetSecret != "" {
		t.Fatalf("placeholder secret applied")
	}
	applySecretsConfig(&cfg, secretsFileConfig{FaucetSecret: " real-secret ", DiscordBotToken: "tok"})
	if cfg.FaucetSecret != "real-secret" {
		t.Fatalf("secret = %q", cfg.FaucetSecret)
	}
	if cfg.DiscordBotToken != "tok" {
		t.Fatalf("discord token = %q", cfg.DiscordBotToken)
	}
}

func TestEnsureSecretsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config", "secrets.toml")

	ensureSecretsFile(path)
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("secrets file not created: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("secrets file mode = %o, want 600", info.Mode().Perm())
	}

	// Existing files get tightened, not overwritten.
	if err := os.WriteFile(path, []byte(`faucet_secret = "abc"`), 0o644); err != nil {
		t.Fatalf("rewrite secrets: %v", err)
	}
	ensureSecretsFile(path)
	info, _ = os.Stat(path)
	if info.Mode().Perm()&0o077 != 0 {
		t.Fatalf("secrets file left world-readable: %o", info.Mode().Perm())
	}
	data, _ := os.ReadFile(path)
	if string(data) != `faucet_secret = "abc"` {
		t.Fatalf("existing secrets overwritten: %q", data)
	}
}

func TestLogLevelFromName(t *testing.T) {
	cases := map[string]logLevel{
		"debug":   logLevelDebug,
		"Warn":    logLevelWarn,
		"WARNING": logLevelWarn,
		"error":   logLevelError,
		"info":    logLevelInfo,
		"":        logLevelInfo,
		"bogus":   logLevelInfo,
	}
	for name, want := range cases {
		if got := logLevelFromName(name); got != want {
			t.Errorf("logLevelFromName(%q) = %v, want %v", name, got, want)
		}
	}
}
