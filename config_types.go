package main

type Config struct {
	// Server addresses.
	ListenAddr string // websocket listener for miners
	StatusAddr string // JSON status/debug listener, empty to disable

	// Faucet economics. All amounts are in drip units, the faucet's internal
	// integer denomination; converting drips to on-chain value is the claim
	// service's business.
	MinClaimAmount int64
	MaxClaimAmount int64
	ShareReward    int64 // nominal reward per verified share
	VerifyReward   int64 // reward for a correct peer verification
	MissPenalty    int64 // deducted from peers that ignore a verification request

	// Session limits.
	SessionTimeoutSeconds int // absolute session lifetime
	IdleTimeoutSeconds    int // mirror idle limit while no client is attached
	SaveDebounceSeconds   int // coalescing window for session persistence

	// Claim token signing secret (secrets.toml). Also gates the unmasked
	// session debug view.
	FaucetSecret string

	// Proof of work.
	PoWAlgo          string // scrypt, argon2, keccak, nickminer
	PoWDifficulty    int    // leading zero bits required
	PoWHashrateLimit int    // hard ceiling in nonces/sec implied by session age, 0 = off
	PingIntervalSecs int
	PingTimeoutSecs  int
	ValidatorWorkers int // hash-check pool size, 0 = NumCPU
	PoWWorkerCount   int // connection workers, fan-out for horizontal scaling

	// scrypt params
	ScryptN      int
	ScryptR      int
	ScryptP      int
	ScryptKeyLen int

	// argon2id params
	Argon2Time    int
	Argon2Memory  int
	Argon2Threads int
	Argon2KeyLen  int

	// nickminer params
	NickMinerInputHash string
	NickMinerSigR      string
	NickMinerSigV      int
	NickMinerCount     int
	NickMinerSuffix    string
	NickMinerPrefix    string

	// Share verification strategy. Percentages are 0-100 and selected
	// independently per job; the remainder is accepted unverified.
	VerifyLocalPercent      int
	VerifyPeerPercent       int
	VerifyLocalLowPeerBoost int // local percent used when eligible peers < peer count
	VerifyPeerCount         int
	VerifyTimeoutSeconds    int
	VerifyPendingLimit      int    // max in-flight verification requests per peer
	VerifyMissedLimit       int    // max ignored requests before a peer is ineligible
	VerifySlashPolicy       string // "any" or "majority"

	// Anti-abuse modules.
	FaucetBalanceModuleEnabled bool
	FaucetBudget               int64         // total drips the faucet is willing to promise, 0 = unlimited
	FaucetBalanceRestriction   map[int64]int // remaining balance -> factor percent
	OutflowModuleEnabled       bool
	OutflowAmount              int64 // drips allowed per OutflowDuration
	OutflowDurationSeconds     int
	OutflowLowerLimit          int64 // deepest allowed deficit before sessions are refused
	VoucherModuleEnabled       bool
	VoucherRequired            bool
	RecurringLimitsEnabled     bool
	RecurringLimits            []recurringLimitRule

	// Discord operator notices.
	DiscordBotToken        string // store in secrets.toml
	DiscordNotifyChannelID string

	// Storage.
	DataDir string

	// Logging.
	LogLevel string
}

type serverFileConfig struct {
	Listen       string `toml:"listen"`
	StatusListen string `toml:"status_listen"`
	DataDir      string `toml:"data_dir"`
}

type faucetFileConfig struct {
	MinClaim            *int64 `toml:"min_claim"`
	MaxClaim            *int64 `toml:"max_claim"`
	ShareReward         *int64 `toml:"share_reward"`
	VerifyReward        *int64 `toml:"verify_reward"`
	MissPenalty         *int64 `toml:"miss_penalty"`
	SessionTimeout      *int   `toml:"session_timeout_seconds"`
	IdleTimeout         *int   `toml:"idle_timeout_seconds"`
	SaveDebounceSeconds *int   `toml:"save_debounce_seconds"`
}

type powFileConfig struct {
	Algo             string `toml:"algo"`
	Difficulty       *int   `toml:"difficulty"`
	HashrateLimit    *int   `toml:"hashrate_limit"`
	PingInterval     *int   `toml:"ping_interval_seconds"`
	PingTimeout      *int   `toml:"ping_timeout_seconds"`
	ValidatorWorkers *int   `toml:"validator_workers"`
	Workers          *int   `toml:"workers"`

	ScryptN      *int `toml:"scrypt_n"`
	ScryptR      *int `toml:"scrypt_r"`
	ScryptP      *int `toml:"scrypt_p"`
	ScryptKeyLen *int `toml:"scrypt_key_len"`

	Argon2Time    *int `toml:"argon2_time"`
	Argon2Memory  *int `toml:"argon2_memory"`
	Argon2Threads *int `toml:"argon2_threads"`
	Argon2KeyLen  *int `toml:"argon2_key_len"`

	NickMinerInputHash string `toml:"nickminer_input_hash"`
	NickMinerSigR      string `toml:"nickminer_sig_r"`
	NickMinerSigV      *int   `toml:"nickminer_sig_v"`
	NickMinerCount     *int   `toml:"nickminer_count"`
	NickMinerSuffix    string `toml:"nickminer_suffix"`
	NickMinerPrefix    string `toml:"nickminer_prefix"`
}

type verifyFileConfig struct {
	LocalPercent      *int   `toml:"local_percent"`
	PeerPercent       *int   `toml:"peer_percent"`
	LocalLowPeerBoost *int   `toml:"local_low_peer_boost"`
	PeerCount         *int   `toml:"peer_count"`
	TimeoutSeconds    *int   `toml:"timeout_seconds"`
	PendingLimit      *int   `toml:"pending_limit"`
	MissedLimit       *int   `toml:"missed_limit"`
	SlashPolicy       string `toml:"slash_policy"`
}

type modulesFileConfig struct {
	FaucetBalanceEnabled *bool          `toml:"faucet_balance_enabled"`
	FaucetBudget         *int64         `toml:"faucet_budget"`
	FaucetBalanceSteps   map[string]int `toml:"faucet_balance_steps"` // threshold string -> percent
	OutflowEnabled       *bool          `toml:"outflow_enabled"`
	OutflowAmount        *int64         `toml:"outflow_amount"`
	OutflowDuration      *int           `toml:"outflow_duration_seconds"`
	OutflowLowerLimit    *int64         `toml:"outflow_lower_limit"`
	VoucherEnabled       *bool          `toml:"voucher_enabled"`
	VoucherRequired      *bool          `toml:"voucher_required"`

	RecurringLimitsEnabled *bool                      `toml:"recurring_limits_enabled"`
	RecurringLimits        []recurringLimitFileConfig `toml:"recurring_limits"`
}

type recurringLimitFileConfig struct {
	DurationSeconds *int   `toml:"duration_seconds"`
	Count           *int   `toml:"count"`
	Amount          *int64 `toml:"amount"`
	ByAddrOnly      *bool  `toml:"by_addr_only"`
	ByIPOnly        *bool  `toml:"by_ip_only"`
	IP4Subnet       *int   `toml:"ip4_subnet"`
	RewardPercent   *int   `toml:"reward_percent"`
	Message         string `toml:"message"`
}

type discordFileConfig struct {
	NotifyChannelID string `toml:"notify_channel_id"`
}

type loggingFileConfig struct {
	Level string `toml:"level"`
}

type baseFileConfig struct {
	Server  serverFileConfig  `toml:"server"`
	Faucet  faucetFileConfig  `toml:"faucet"`
	PoW     powFileConfig     `toml:"pow"`
	Verify  verifyFileConfig  `toml:"verify"`
	Modules modulesFileConfig `toml:"modules"`
	Discord discordFileConfig `toml:"discord"`
	Logging loggingFileConfig `toml:"logging"`
}

type secretsFileConfig struct {
	FaucetSecret    string `toml:"faucet_secret"`
	DiscordBotToken string `toml:"discord_token"`
}

var secretsConfigExample = []byte(`# Secret used to sign claim tokens and to unlock the unmasked
# session debug view. Generate a long random string and keep it private.
faucet_secret = "CHANGE_ME"

# Optional Discord notifications integration.
# discord_token = "YOUR_DISCORD_BOT_TOKEN"
`)
