package main

const (
	defaultListenAddr = ":8484"
	defaultStatusAddr = "127.0.0.1:8485"
	defaultDataDir    = "data"

	defaultMinClaimAmount = 100
	defaultMaxClaimAmount = 100_000
	defaultShareReward    = 50
	defaultVerifyReward   = 2
	defaultMissPenalty    = 10

	defaultSessionTimeoutSeconds = 3600
	defaultIdleTimeoutSeconds    = 600
	defaultSaveDebounceSeconds   = 2

	defaultPoWAlgo          = powAlgoScrypt
	defaultPoWDifficulty    = 11
	defaultPingIntervalSecs = 60
	defaultPingTimeoutSecs  = 120

	defaultScryptN      = 4096
	defaultScryptR      = 8
	defaultScryptP      = 1
	defaultScryptKeyLen = 16

	defaultArgon2Time    = 4
	defaultArgon2Memory  = 4096
	defaultArgon2Threads = 1
	defaultArgon2KeyLen  = 16

	defaultVerifyLocalPercent      = 10
	defaultVerifyPeerPercent       = 75
	defaultVerifyLocalLowPeerBoost = 100
	defaultVerifyPeerCount         = 2
	defaultVerifyTimeoutSeconds    = 15
	defaultVerifyPendingLimit      = 10
	defaultVerifyMissedLimit       = 10
	defaultVerifySlashPolicy       = slashPolicyAny

	defaultOutflowAmount          = 1_000_000
	defaultOutflowDurationSeconds = 3600
	defaultOutflowLowerLimit      = -5_000_000
)

func defaultConfig() Config {
	return Config{
		ListenAddr:            defaultListenAddr,
		StatusAddr:            defaultStatusAddr,
		DataDir:               defaultDataDir,
		MinClaimAmount:        defaultMinClaimAmount,
		MaxClaimAmount:        defaultMaxClaimAmount,
		ShareReward:           defaultShareReward,
		VerifyReward:          defaultVerifyReward,
		MissPenalty:           defaultMissPenalty,
		SessionTimeoutSeconds: defaultSessionTimeoutSeconds,
		IdleTimeoutSeconds:    defaultIdleTimeoutSeconds,
		SaveDebounceSeconds:   defaultSaveDebounceSeconds,
		PoWAlgo:               defaultPoWAlgo,
		PoWDifficulty:         defaultPoWDifficulty,
		PingIntervalSecs:      defaultPingIntervalSecs,
		PoWWorkerCount:        1,
		PingTimeoutSecs:       defaultPingTimeoutSecs,
		ScryptN:               defaultScryptN,
		ScryptR:               defaultScryptR,
		ScryptP:               defaultScryptP,
		ScryptKeyLen:          defaultScryptKeyLen,
		Argon2Time:            defaultArgon2Time,
		Argon2Memory:          defaultArgon2Memory,
		Argon2Threads:         defaultArgon2Threads,
		Argon2KeyLen:          defaultArgon2KeyLen,
		NickMinerSigV:         27,

		VerifyLocalPercent:      defaultVerifyLocalPercent,
		VerifyPeerPercent:       defaultVerifyPeerPercent,
		VerifyLocalLowPeerBoost: defaultVerifyLocalLowPeerBoost,
		VerifyPeerCount:         defaultVerifyPeerCount,
		VerifyTimeoutSeconds:    defaultVerifyTimeoutSeconds,
		VerifyPendingLimit:      defaultVerifyPendingLimit,
		VerifyMissedLimit:       defaultVerifyMissedLimit,
		VerifySlashPolicy:       defaultVerifySlashPolicy,

		FaucetBalanceModuleEnabled: false,
		OutflowModuleEnabled:       false,
		OutflowAmount:              defaultOutflowAmount,
		OutflowDurationSeconds:     defaultOutflowDurationSeconds,
		OutflowLowerLimit:          defaultOutflowLowerLimit,

		LogLevel: "info",
	}
}
