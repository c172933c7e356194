package usecase

import (
	"context"
	"log"
	"math/big"

	"stakeengine/domain"

	"github.com/tonkeeper/tongo/liteapi"
	"github.com/tonkeeper/tongo/tlb"
)

// ContractInteractor runs the read-only price and reserve queries against
// the AMM and mint-policy actors, as TVM get-methods reading each
// contract's stack.
type ContractInteractor struct {
	client *liteapi.Client
}

func NewContractInteractor(client *liteapi.Client) *ContractInteractor {
	return &ContractInteractor{client: client}
}

// GetAmmPrice reads the AMM pool's current price as a rational
// numerator/denominator pair, the input for computing the counterpart
// MINT amount before the EXCESS_MULTIPLIER/EXCESS_DIVISOR safety buffer
// is applied. Each AMM pool this driver talks to holds exactly one token
// pair (user token and MINT), so the get-method takes no arguments.
func (interactor *ContractInteractor) GetAmmPrice(amm domain.AmmId) (numerator, denominator *big.Int, err error) {
	code, stack, err := interactor.client.RunSmcMethod(context.Background(), amm, "get_price", tlb.VmStack{})
	if err != nil {
		log.Printf("🔴 get_price on amm %v [code=%v] - %v\n", amm.ToRaw(), code, err.Error())
		return nil, nil, err
	}
	if len(stack) != 2 || stack[0].SumType != "VmStkTinyInt" || stack[1].SumType != "VmStkTinyInt" {
		return nil, nil, domain.ErrUnknownOperation
	}
	return big.NewInt(stack[0].VmStkTinyInt), big.NewInt(stack[1].VmStkTinyInt), nil
}

// GetReserveBalance reads the protocol's IL-compensation reserve balance
// from the treasury actor. The token argument is not passed to the
// get-method: the treasury's single get_il_reserve value is returned for
// every token. A read
// failure is treated as an empty reserve so a transient RPC error never
// blocks unstake settlement; it only zeroes the compensation for that
// one confirmation.
func (interactor *ContractInteractor) GetReserveBalance(token domain.TokenId) *big.Int {
	code, stack, err := interactor.client.RunSmcMethod(context.Background(), domain.GetTreasuryAccountId(), "get_il_reserve", tlb.VmStack{})
	if err != nil || len(stack) != 1 || stack[0].SumType != "VmStkTinyInt" {
		log.Printf("🟡 get_il_reserve on treasury [code=%v] - %v\n", code, err)
		return big.NewInt(0)
	}
	return big.NewInt(stack[0].VmStkTinyInt)
}
