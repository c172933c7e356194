package cmd

import (
	"database/sql"
	"encoding/json"
	"log"
	"math/big"
	"strings"
	"time"

	"stakeengine/domain"
	"stakeengine/infrastructure/dbhandler"
	"stakeengine/interface/exporter"
	"stakeengine/interface/repository"
	"stakeengine/usecase"

	"github.com/tonkeeper/tongo/liteapi"
	"github.com/tonkeeper/tongo/wallet"
)

func defaultDependencyInject() {
	var err error
	dbURI := domain.GetDbUri()
	dbPool, err = sql.Open("postgres", dbURI)
	if err != nil {
		log.Fatal(err)
	}
	dbPool.SetMaxOpenConns(20)
	dbPool.SetMaxIdleConns(5)
	dbPool.SetConnMaxIdleTime(1 * time.Minute)
	dbPool.SetConnMaxLifetime(4 * time.Hour)

	dbHandler := dbhandler.DBHandler{DB: dbPool}

	switch strings.ToLower(domain.GetNetwork()) {
	case domain.MainNetwork:
		tongoClient, err = liteapi.NewClientWithDefaultMainnet()
	case domain.TestNetwork:
		tongoClient, err = liteapi.NewClientWithDefaultTestnet()
	default:
		log.Fatal("⛔️ Configuration parameter 'network' must be either 'mainnet' or 'testnet' only.")
		return
	}
	if err != nil {
		log.Fatal("Unable to create tongo client: ", err)
	}

	driverWallet, err = wallet.New(domain.GetDriverWalletPrivateKey(), wallet.V4R2, 0, nil, tongoClient)
	if err != nil {
		log.Fatalf("Unable to connect to driver wallet - %v\n", err.Error())
		return
	}

	exporter.Init()

	positionRepo := repository.NewPositionRepository(dbHandler)
	operationRepo := repository.NewOperationRepository(dbHandler)
	counterRepo := repository.NewCounterRepository(dbHandler)

	ledger = usecase.NewLedger(positionRepo, operationRepo, counterRepo)
	if err := ledger.Load(); err != nil {
		log.Fatalf("Unable to load ledger state - %v\n", err.Error())
	}

	registry = usecase.NewOperationRegistry(ledger)
	pauseState = usecase.NewPauseState(ledger)
	contractInteractor = usecase.NewContractInteractor(tongoClient)
	ilCompensator = usecase.NewILCompensator(domain.GetIlCompensationCapBps(), contractInteractor.GetReserveBalance)

	outboundCh = make(chan domain.OutboundPack, 256)
	resultsCh = make(chan usecase.SendResult, 256)

	stakeOrchestrator = usecase.NewStakeOrchestrator(ledger, registry, pauseState.IsPaused, outboundCh, notifyStaker)
	unstakeOrchestrator = usecase.NewUnstakeOrchestrator(ledger, registry, ilCompensator, pauseState.IsPaused, outboundCh, notifyStaker)
	emissionEngine = usecase.NewEmissionEngine(ledger, distributeRewards)

	dispatcher = usecase.NewDispatcher(stakeOrchestrator, unstakeOrchestrator, emissionEngine, contractInteractor)
	ingest = usecase.NewIngest(tongoClient, domain.GetTreasuryAccountId(), dispatcher)
	messenger = usecase.NewMessenger(tongoClient, &driverWallet, outboundCh, resultsCh)
}

// notifyStaker is this driver's stand-in for a push-notification channel:
// it logs every staker lifecycle event in one structured line.
func notifyStaker(staker domain.StakerId, action string, data map[string]interface{}) {
	log.Printf("🟢 %s staker=%v %v\n", action, staker.ToRaw(), data)
}

// distributeRewards is the EmissionEngine's dispatch callback: it queues
// one Distribute-Rewards message per tick onto the same outbound channel
// the stake/unstake orchestrators use, so the Messenger is the single
// sender of every outbound message regardless of which component
// produced it. The treasury executes the individual reward transfers;
// this driver only ships it the staker -> amount map as JSON, whose
// sorted marshaling order makes the emit deterministic.
func distributeRewards(allocations map[domain.StakerId]*domain.Amount, now time.Time) error {
	payload := make(map[string]string, len(allocations))
	for staker, amount := range allocations {
		payload[staker.ToRaw()] = domain.FormatAmount(amount)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	outboundCh <- domain.OutboundPack{
		Kind: "emission",
		Message: domain.DistributeRewardsMessage{
			To:   domain.GetTreasuryAccountId(),
			Data: data,
		},
	}
	exporter.SetCurrentRewards(amountToFloat(ledger.CurrentRewards()))
	exporter.IncRewardTicks()
	return nil
}

// refreshGauges resyncs the point-in-time Prometheus gauges from the
// Ledger; counters update themselves inline as events occur, but these
// two reflect current state rather than an event count, so they need a
// periodic resample instead.
func refreshGauges() {
	exporter.SetPendingOperations(ledger.CountPendingOperations())
	exporter.SetUniqueStakers(emissionEngine.GetUniqueStakers())
}

func amountToFloat(amount *domain.Amount) float64 {
	f := new(big.Float).SetInt(amount)
	v, _ := f.Float64()
	return v
}

var (
	dbPool              *sql.DB
	tongoClient         *liteapi.Client
	driverWallet        wallet.Wallet
	ledger              *usecase.Ledger
	registry            *usecase.OperationRegistry
	pauseState          *usecase.PauseState
	contractInteractor  *usecase.ContractInteractor
	ilCompensator       *usecase.ILCompensator
	stakeOrchestrator   *usecase.StakeOrchestrator
	unstakeOrchestrator *usecase.UnstakeOrchestrator
	emissionEngine      *usecase.EmissionEngine
	dispatcher          *usecase.Dispatcher
	ingest              *usecase.Ingest
	messenger           *usecase.Messenger
	outboundCh          chan domain.OutboundPack
	resultsCh           chan usecase.SendResult
)
