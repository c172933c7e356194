package domain

import (
	"crypto/ed25519"
	"fmt"
	"log"
	"math/big"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/tonkeeper/tongo"
	"github.com/tonkeeper/tongo/wallet"
)

const (
	MainNetwork = "mainnet"
	TestNetwork = "testnet"
)

var (
	ErrorInvalidNetwork = fmt.Errorf("network must be equal to 'mainnet' or 'testnet' only")

	ErrorNoMnemonic          = fmt.Errorf("no mnemonic is defined")
	ErrorMnemonicConflict    = fmt.Errorf("only one of mnemonic or mnemonic_url must be defined")
	ErrorReadingMnemonicFile = fmt.Errorf("error in reading mnemonic file")

	ErrorInvalidTickInterval    = fmt.Errorf("invalid time interval for the emission tick process")
	ErrorInvalidCleanupInterval = fmt.Errorf("invalid time interval for the cleanup process")

	ErrorInvalidTreasuryAddress = fmt.Errorf("invalid treasury address")
	ErrorInvalidMintPolicy      = fmt.Errorf("invalid mint-policy address")
	ErrorInvalidAllowedToken    = fmt.Errorf("invalid allowed-token address")
	ErrorInvalidSpecialToken    = fmt.Errorf("invalid special-token address")
	ErrorInvalidOperationTotal  = fmt.Errorf("operation_timeout_seconds must be positive")
	ErrorInvalidFeeDivisor      = fmt.Errorf("fee_divisor must be positive")
	ErrorInvalidExcessDivisor   = fmt.Errorf("excess_divisor must be positive")
)

var TrailingSlashRE = regexp.MustCompile("/+$")

var (
	dbUri   string
	network string

	mnemonic               string
	mnemonicUrl            string
	driverWalletPrivateKey ed25519.PrivateKey

	treasuryAddress   string
	treasuryAccountId tongo.AccountID

	mintPolicyAddress string
	mintPolicy        tongo.AccountID
	cronCaller        string
	contractOwner     string

	tickInterval    time.Duration
	cleanupInterval time.Duration

	operationTimeout time.Duration

	protocolFeePercentage int64
	feeDivisor            int64
	excessMultiplier      int64
	excessDivisor         int64

	mintToken        tongo.AccountID
	mintTestnetToken tongo.AccountID
	tokenDecimals    int

	specialToken     tongo.AccountID
	allowedTokens    map[TokenId]bool
	allowedWeights   map[TokenId]int64
	allowedAmms      map[TokenId]AmmId
	totalSupply      *Amount
	minDistInterval  time.Duration
	ilCapBps         int64
)

// ReadConfig loads and validates every recognized option: read the file,
// overlay the environment, then validate once and fail fast.
func ReadConfig(filePath string) {
	viper.SetConfigFile(filePath)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("⚠️ Failed reading config file: %v\n", err.Error())
	}

	if err := initializeVariables(); err != nil {
		log.Fatalf("Configuration error - %v\n", err.Error())
	}
}

func initializeVariables() error {
	var err error

	// Database stuff
	dbUri = TrailingSlashRE.ReplaceAllString(viper.GetString("service_db_uri"), "")

	// Network stuff
	network = strings.TrimSpace(strings.ToLower(viper.GetString("network")))
	if network != MainNetwork && network != TestNetwork {
		return ErrorInvalidNetwork
	}

	// Treasury / AMM stuff
	treasuryAddress = strings.TrimSpace(viper.GetString("treasury_address"))
	treasuryAccountId, err = tongo.AccountIDFromBase64Url(treasuryAddress)
	if err != nil {
		return ErrorInvalidTreasuryAddress
	}

	// Mint-policy stuff
	mintPolicyAddress = strings.TrimSpace(viper.GetString("mint_policy"))
	mintPolicy, err = tongo.AccountIDFromBase64Url(mintPolicyAddress)
	if err != nil {
		return ErrorInvalidMintPolicy
	}

	cronCaller = strings.TrimSpace(viper.GetString("cron_caller"))
	contractOwner = strings.TrimSpace(viper.GetString("contract_owner"))

	// Driver wallet stuff
	mnemonic = strings.TrimSpace(viper.GetString("mnemonic"))
	mnemonicUrl = strings.TrimSpace(viper.GetString("mnemonic_url"))
	if mnemonic == "" && mnemonicUrl == "" {
		return ErrorNoMnemonic
	}
	if mnemonic != "" && mnemonicUrl != "" {
		return ErrorMnemonicConflict
	}

	seed := mnemonic
	if mnemonicUrl != "" {
		seed, err = readMnemonicFile(mnemonicUrl)
		if err != nil {
			return ErrorReadingMnemonicFile
		}
	}

	driverWalletPrivateKey, err = wallet.SeedToPrivateKey(seed)
	if err != nil {
		log.Printf("Failed to get private key - %v\n", err.Error())
		return err
	}

	//---------------------------------------------------------------
	// emission tick interval
	strValue := viper.GetString("tick_interval")
	tickInterval, err = time.ParseDuration(strValue)
	if err != nil {
		return ErrorInvalidTickInterval
	}

	//---------------------------------------------------------------
	// cleanup (reaper) interval
	strValue = viper.GetString("cleanup_interval")
	cleanupInterval, err = time.ParseDuration(strValue)
	if err != nil {
		return ErrorInvalidCleanupInterval
	}

	//---------------------------------------------------------------
	// pending-operation staleness timeout
	timeoutSeconds := viper.GetInt64("operation_timeout_seconds")
	if timeoutSeconds <= 0 {
		return ErrorInvalidOperationTotal
	}
	operationTimeout = time.Duration(timeoutSeconds) * time.Second

	//---------------------------------------------------------------
	// settlement fee / excess-buffer ratios
	protocolFeePercentage = viper.GetInt64("protocol_fee_percentage")
	feeDivisor = viper.GetInt64("fee_divisor")
	if feeDivisor <= 0 {
		return ErrorInvalidFeeDivisor
	}

	excessMultiplier = viper.GetInt64("excess_multiplier")
	excessDivisor = viper.GetInt64("excess_divisor")
	if excessDivisor <= 0 {
		return ErrorInvalidExcessDivisor
	}

	//---------------------------------------------------------------
	// MINT token identification + decimals
	mintAddr := strings.TrimSpace(viper.GetString("mint_token"))
	mintTestAddr := strings.TrimSpace(viper.GetString("mint_testnet_token"))
	if mintAddr != "" {
		if mintToken, err = tongo.AccountIDFromBase64Url(mintAddr); err != nil {
			return fmt.Errorf("invalid mint_token: %w", err)
		}
	}
	if mintTestAddr != "" {
		if mintTestnetToken, err = tongo.AccountIDFromBase64Url(mintTestAddr); err != nil {
			return fmt.Errorf("invalid mint_testnet_token: %w", err)
		}
	}
	tokenDecimals = viper.GetInt("token_decimals")

	//---------------------------------------------------------------
	// Allowed tokens + weights + special (÷1000) token
	allowedTokens = make(map[TokenId]bool)
	for _, addr := range viper.GetStringSlice("allowed_tokens") {
		accid, err := tongo.AccountIDFromBase64Url(strings.TrimSpace(addr))
		if err != nil {
			return ErrorInvalidAllowedToken
		}
		allowedTokens[accid] = true
	}

	allowedWeights = make(map[TokenId]int64)
	weightMap := viper.GetStringMapString("allowed_token_weights")
	for addr, weightStr := range weightMap {
		accid, err := tongo.AccountIDFromBase64Url(strings.TrimSpace(addr))
		if err != nil {
			return ErrorInvalidAllowedToken
		}
		var weight int64
		if _, err := fmt.Sscanf(weightStr, "%d", &weight); err != nil {
			return fmt.Errorf("invalid weight for %v: %w", addr, err)
		}
		allowedWeights[accid] = weight
	}

	// Every allowed token trades against its own AMM pool; the driver
	// needs this mapping to route Add-Liquidity/Burn requests, since
	// neither Credit-Notice nor Unstake carries the pool address.
	allowedAmms = make(map[TokenId]AmmId)
	ammMap := viper.GetStringMapString("allowed_token_amms")
	for addr, ammAddr := range ammMap {
		accid, err := tongo.AccountIDFromBase64Url(strings.TrimSpace(addr))
		if err != nil {
			return ErrorInvalidAllowedToken
		}
		ammId, err := tongo.AccountIDFromBase64Url(strings.TrimSpace(ammAddr))
		if err != nil {
			return fmt.Errorf("invalid amm for %v: %w", addr, err)
		}
		allowedAmms[accid] = ammId
	}

	specialAddr := strings.TrimSpace(viper.GetString("special_token"))
	if specialAddr != "" {
		specialToken, err = tongo.AccountIDFromBase64Url(specialAddr)
		if err != nil {
			return ErrorInvalidSpecialToken
		}
	}

	//---------------------------------------------------------------
	// Emission engine constants
	supplyStr := viper.GetString("total_supply")
	if supplyStr == "" {
		supplyStr = "0"
	}
	totalSupply, err = ParseAmount(supplyStr)
	if err != nil {
		return fmt.Errorf("invalid total_supply: %w", err)
	}

	minIntervalMs := viper.GetInt64("min_distribution_interval_ms")
	if minIntervalMs <= 0 {
		minIntervalMs = 300000 // 5 minutes default
	}
	minDistInterval = time.Duration(minIntervalMs) * time.Millisecond

	//---------------------------------------------------------------
	// IL compensation cap
	ilCapBps = viper.GetInt64("il_compensation_cap_bps")

	return nil
}

func readMnemonicFile(filePath string) (string, error) {
	fileContent, err := os.ReadFile(filePath)
	if err != nil {
		log.Printf("Failed to read mnemonic file - %v\n", err.Error())
		return "", err
	}
	return string(fileContent), nil
}

//-------------------------------------------------------------------
// Normal configuration values

func GetDbUri() string {
	return dbUri
}

func GetTreasuryAddress() string {
	return treasuryAddress
}

func GetTreasuryAccountId() tongo.AccountID {
	return treasuryAccountId
}

func GetNetwork() string {
	return network
}

func GetMintPolicy() tongo.AccountID {
	return mintPolicy
}

func GetCronCaller() string {
	return cronCaller
}

func GetContractOwner() string {
	return contractOwner
}

func GetTickInterval() time.Duration {
	return tickInterval
}

func GetCleanupInterval() time.Duration {
	return cleanupInterval
}

func GetOperationTimeout() time.Duration {
	return operationTimeout
}

func GetProtocolFeePercentage() int64 {
	return protocolFeePercentage
}

func GetFeeDivisor() int64 {
	return feeDivisor
}

func GetExcessMultiplier() int64 {
	return excessMultiplier
}

func GetExcessDivisor() int64 {
	return excessDivisor
}

func GetTokenDecimals() int {
	return tokenDecimals
}

func GetSpecialToken() tongo.AccountID {
	return specialToken
}

func GetAllowedTokens() map[TokenId]bool {
	return allowedTokens
}

func GetAllowedTokenWeights() map[TokenId]int64 {
	return allowedWeights
}

func GetTotalSupply() *Amount {
	return new(big.Int).Set(totalSupply)
}

func GetMinDistributionInterval() time.Duration {
	return minDistInterval
}

func GetDriverWalletPrivateKey() ed25519.PrivateKey {
	return driverWalletPrivateKey
}

func GetIlCompensationCapBps() int64 {
	return ilCapBps
}

// -------------------------------------------------------------------
// Evaluating values

func IsTestNet() bool {
	return network == TestNetwork
}

// GetAmmForToken resolves the AMM pool address paired with an allowed
// token.
func GetAmmForToken(token TokenId) (AmmId, bool) {
	amm, ok := allowedAmms[token]
	return amm, ok
}

func IsTokenAllowed(token TokenId) bool {
	return allowedTokens[token]
}

func TokenWeight(token TokenId) int64 {
	if w, ok := allowedWeights[token]; ok {
		return w
	}
	return DefaultTokenWeight
}

func ActiveMintToken() tongo.AccountID {
	if IsTestNet() {
		return mintTestnetToken
	}
	return mintToken
}

func IsAuthorizedTickCaller(sender string) bool {
	return sender == cronCaller || sender == contractOwner
}
