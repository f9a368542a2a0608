package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml"
)

func defaultConfigPath() string {
	return filepath.Join(defaultDataDir, "config", "config.toml")
}

func loadConfig(configPath, secretsPath string) Config {
	cfg := defaultConfig()

	if configPath == "" {
		configPath = defaultConfigPath()
	}

	if bc, ok, err := loadBaseConfigFile(configPath); err != nil {
		fatal("config file", err, "path", configPath)
	} else if ok {
		applyBaseConfig(&cfg, *bc)
	} else {
		logger.Info("no config file, using defaults", "path", configPath)
	}

	if secretsPath == "" {
		secretsPath = filepath.Join(cfg.DataDir, "config", "secrets.toml")
	}
	ensureSecretsFile(secretsPath)
	if sc, ok, err := loadSecretsFile(secretsPath); err != nil {
		fatal("secrets file", err, "path", secretsPath)
	} else if ok {
		applySecretsConfig(&cfg, *sc)
	}

	if err := validateConfig(cfg); err != nil {
		fatal("invalid config", err, "path", configPath)
	}
	return cfg
}

func loadBaseConfigFile(path string) (*baseFileConfig, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var bc baseFileConfig
	if err := toml.Unmarshal(data, &bc); err != nil {
		return nil, false, fmt.Errorf("parse %s: %w", path, err)
	}
	return &bc, true, nil
}

func loadSecretsFile(path string) (*secretsFileConfig, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var sc secretsFileConfig
	if err := toml.Unmarshal(data, &sc); err != nil {
		return nil, false, fmt.Errorf("parse %s: %w", path, err)
	}
	return &sc, true, nil
}

func ensureSecretsFile(path string) {
	if _, err := os.Stat(path); err == nil {
		if info, statErr := os.Stat(path); statErr == nil && info.Mode().Perm()&0o077 != 0 {
			_ = os.Chmod(path, 0o600)
		}
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return
	}
	_ = os.WriteFile(path, secretsConfigExample, 0o600)
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func setInt64(dst *int64, src *int64) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func applyBaseConfig(cfg *Config, bc baseFileConfig) {
	if bc.Server.Listen != "" {
		cfg.ListenAddr = bc.Server.Listen
	}
	if bc.Server.StatusListen != "" {
		cfg.StatusAddr = bc.Server.StatusListen
	}
	if bc.Server.DataDir != "" {
		cfg.DataDir = bc.Server.DataDir
	}

	setInt64(&cfg.MinClaimAmount, bc.Faucet.MinClaim)
	setInt64(&cfg.MaxClaimAmount, bc.Faucet.MaxClaim)
	setInt64(&cfg.ShareReward, bc.Faucet.ShareReward)
	setInt64(&cfg.VerifyReward, bc.Faucet.VerifyReward)
	setInt64(&cfg.MissPenalty, bc.Faucet.MissPenalty)
	setInt(&cfg.SessionTimeoutSeconds, bc.Faucet.SessionTimeout)
	setInt(&cfg.IdleTimeoutSeconds, bc.Faucet.IdleTimeout)
	setInt(&cfg.SaveDebounceSeconds, bc.Faucet.SaveDebounceSeconds)

	if bc.PoW.Algo != "" {
		cfg.PoWAlgo = strings.ToLower(strings.TrimSpace(bc.PoW.Algo))
	}
	setInt(&cfg.PoWDifficulty, bc.PoW.Difficulty)
	setInt(&cfg.PoWHashrateLimit, bc.PoW.HashrateLimit)
	setInt(&cfg.PingIntervalSecs, bc.PoW.PingInterval)
	setInt(&cfg.PingTimeoutSecs, bc.PoW.PingTimeout)
	setInt(&cfg.ValidatorWorkers, bc.PoW.ValidatorWorkers)
	setInt(&cfg.PoWWorkerCount, bc.PoW.Workers)
	setInt(&cfg.ScryptN, bc.PoW.ScryptN)
	setInt(&cfg.ScryptR, bc.PoW.ScryptR)
	setInt(&cfg.ScryptP, bc.PoW.ScryptP)
	setInt(&cfg.ScryptKeyLen, bc.PoW.ScryptKeyLen)
	setInt(&cfg.Argon2Time, bc.PoW.Argon2Time)
	setInt(&cfg.Argon2Memory, bc.PoW.Argon2Memory)
	setInt(&cfg.Argon2Threads, bc.PoW.Argon2Threads)
	setInt(&cfg.Argon2KeyLen, bc.PoW.Argon2KeyLen)
	if bc.PoW.NickMinerInputHash != "" {
		cfg.NickMinerInputHash = bc.PoW.NickMinerInputHash
	}
	if bc.PoW.NickMinerSigR != "" {
		cfg.NickMinerSigR = bc.PoW.NickMinerSigR
	}
	setInt(&cfg.NickMinerSigV, bc.PoW.NickMinerSigV)
	setInt(&cfg.NickMinerCount, bc.PoW.NickMinerCount)
	if bc.PoW.NickMinerSuffix != "" {
		cfg.NickMinerSuffix = bc.PoW.NickMinerSuffix
	}
	if bc.PoW.NickMinerPrefix != "" {
		cfg.NickMinerPrefix = bc.PoW.NickMinerPrefix
	}

	setInt(&cfg.VerifyLocalPercent, bc.Verify.LocalPercent)
	setInt(&cfg.VerifyPeerPercent, bc.Verify.PeerPercent)
	setInt(&cfg.VerifyLocalLowPeerBoost, bc.Verify.LocalLowPeerBoost)
	setInt(&cfg.VerifyPeerCount, bc.Verify.PeerCount)
	setInt(&cfg.VerifyTimeoutSeconds, bc.Verify.TimeoutSeconds)
	setInt(&cfg.VerifyPendingLimit, bc.Verify.PendingLimit)
	setInt(&cfg.VerifyMissedLimit, bc.Verify.MissedLimit)
	if bc.Verify.SlashPolicy != "" {
		cfg.VerifySlashPolicy = strings.ToLower(strings.TrimSpace(bc.Verify.SlashPolicy))
	}

	setBool(&cfg.FaucetBalanceModuleEnabled, bc.Modules.FaucetBalanceEnabled)
	setInt64(&cfg.FaucetBudget, bc.Modules.FaucetBudget)
	if len(bc.Modules.FaucetBalanceSteps) > 0 {
		steps := make(map[int64]int, len(bc.Modules.FaucetBalanceSteps))
		for k, v := range bc.Modules.FaucetBalanceSteps {
			threshold, err := strconv.ParseInt(strings.TrimSpace(k), 10, 64)
			if err != nil {
				logger.Warn("bad faucet_balance_steps key", "key", k, "error", err)
				continue
			}
			steps[threshold] = v
		}
		cfg.FaucetBalanceRestriction = steps
	}
	setBool(&cfg.OutflowModuleEnabled, bc.Modules.OutflowEnabled)
	setInt64(&cfg.OutflowAmount, bc.Modules.OutflowAmount)
	setInt(&cfg.OutflowDurationSeconds, bc.Modules.OutflowDuration)
	setInt64(&cfg.OutflowLowerLimit, bc.Modules.OutflowLowerLimit)
	setBool(&cfg.VoucherModuleEnabled, bc.Modules.VoucherEnabled)
	setBool(&cfg.VoucherRequired, bc.Modules.VoucherRequired)
	setBool(&cfg.RecurringLimitsEnabled, bc.Modules.RecurringLimitsEnabled)
	if len(bc.Modules.RecurringLimits) > 0 {
		rules := make([]recurringLimitRule, 0, len(bc.Modules.RecurringLimits))
		for _, rc := range bc.Modules.RecurringLimits {
			var rule recurringLimitRule
			setInt(&rule.DurationSeconds, rc.DurationSeconds)
			setInt(&rule.Count, rc.Count)
			setInt64(&rule.Amount, rc.Amount)
			setBool(&rule.ByAddrOnly, rc.ByAddrOnly)
			setBool(&rule.ByIPOnly, rc.ByIPOnly)
			setInt(&rule.IP4Subnet, rc.IP4Subnet)
			setInt(&rule.RewardPercent, rc.RewardPercent)
			rule.Message = strings.TrimSpace(rc.Message)
			rules = append(rules, rule)
		}
		cfg.RecurringLimits = rules
	}

	if bc.Discord.NotifyChannelID != "" {
		cfg.DiscordNotifyChannelID = bc.Discord.NotifyChannelID
	}
	if bc.Logging.Level != "" {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(bc.Logging.Level))
	}
}

func applySecretsConfig(cfg *Config, sc secretsFileConfig) {
	if s := strings.TrimSpace(sc.FaucetSecret); s != "" && s != "CHANGE_ME" {
		cfg.FaucetSecret = s
	}
	if s := strings.TrimSpace(sc.DiscordBotToken); s != "" {
		cfg.DiscordBotToken = s
	}
}

func validateConfig(cfg Config) error {
	switch cfg.PoWAlgo {
	case powAlgoScrypt, powAlgoArgon2, powAlgoKeccak, powAlgoNickMiner:
	default:
		return fmt.Errorf("pow.algo %q is not supported", cfg.PoWAlgo)
	}
	if cfg.PoWAlgo == powAlgoNickMiner && (cfg.NickMinerInputHash == "" || cfg.NickMinerSigR == "") {
		return fmt.Errorf("nickminer requires pow.nickminer_input_hash and pow.nickminer_sig_r")
	}
	if cfg.PoWDifficulty < 0 || cfg.PoWDifficulty > 256 {
		return fmt.Errorf("pow.difficulty must be in [0,256], got %d", cfg.PoWDifficulty)
	}
	if cfg.MinClaimAmount < 0 || cfg.MaxClaimAmount < cfg.MinClaimAmount {
		return fmt.Errorf("faucet.max_claim (%d) must be >= faucet.min_claim (%d) >= 0",
			cfg.MaxClaimAmount, cfg.MinClaimAmount)
	}
	if cfg.ShareReward < 0 || cfg.VerifyReward < 0 || cfg.MissPenalty < 0 {
		return fmt.Errorf("faucet rewards and penalties cannot be negative")
	}
	if cfg.SessionTimeoutSeconds <= 0 {
		return fmt.Errorf("faucet.session_timeout_seconds must be > 0")
	}
	for _, p := range []int{cfg.VerifyLocalPercent, cfg.VerifyPeerPercent, cfg.VerifyLocalLowPeerBoost} {
		if p < 0 || p > 100 {
			return fmt.Errorf("verify percentages must be in [0,100]")
		}
	}
	if cfg.VerifyPeerCount <= 0 {
		return fmt.Errorf("verify.peer_count must be > 0")
	}
	if cfg.VerifySlashPolicy != slashPolicyAny && cfg.VerifySlashPolicy != slashPolicyMajority {
		return fmt.Errorf("verify.slash_policy must be %q or %q", slashPolicyAny, slashPolicyMajority)
	}
	for i, rule := range cfg.RecurringLimits {
		if rule.DurationSeconds <= 0 {
			return fmt.Errorf("modules.recurring_limits[%d].duration_seconds must be > 0", i)
		}
		if rule.Count < 0 || rule.Amount < 0 {
			return fmt.Errorf("modules.recurring_limits[%d] count and amount cannot be negative", i)
		}
		if rule.ByAddrOnly && rule.ByIPOnly {
			return fmt.Errorf("modules.recurring_limits[%d] cannot be both by_addr_only and by_ip_only", i)
		}
		switch rule.IP4Subnet {
		case 0, 8, 16, 24, 32:
		default:
			return fmt.Errorf("modules.recurring_limits[%d].ip4_subnet must be 8, 16, 24 or 32", i)
		}
		if rule.RewardPercent < 0 || rule.RewardPercent > 100 {
			return fmt.Errorf("modules.recurring_limits[%d].reward_percent must be in [0,100]", i)
		}
	}
	return nil
}

func logLevelFromName(name string) logLevel {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return logLevelDebug
	case "warn", "warning":
		return logLevelWarn
	case "error":
		return logLevelError
	default:
		return logLevelInfo
	}
}
