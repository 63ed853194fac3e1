// Package main runs a deterministic local simulation of a token sale:
// it creates a token, replays randomized purchases from a seeded set of
// buyers until the sale closes or the rounds run out, and prints
// the resulting sale statistics.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"

	"github.com/holiman/uint256"

	"github.com/ArjunMal1311/meme-coin/internal/analytics"
	"github.com/ArjunMal1311/meme-coin/internal/domain"
	"github.com/ArjunMal1311/meme-coin/internal/events"
	"github.com/ArjunMal1311/meme-coin/internal/factory"
	"github.com/ArjunMal1311/meme-coin/internal/identity"
	"github.com/ArjunMal1311/meme-coin/internal/ledger"
	"github.com/ArjunMal1311/meme-coin/internal/storage/memory"
)

func main() {
	name := flag.String("name", "DAPP Token", "Token name")
	symbol := flag.String("symbol", "DAPP", "Token symbol")
	buyers := flag.Int("buyers", 5, "Number of simulated buyers")
	rounds := flag.Int("rounds", 100, "Maximum purchase rounds")
	maxBuy := flag.Uint64("max-buy", 25_000, "Maximum units per purchase")
	seed := flag.Int64("seed", 42, "Random seed")

	flag.Parse()

	logger := log.New(os.Stdout, "[simulate] ", log.LstdFlags)
	ctx := context.Background()

	owner := identity.DeriveAddress("simulate:owner")
	creator := identity.DeriveAddress("simulate:creator")

	purchases := memory.NewPurchaseEventStore()
	bus := events.NewBus()

	f, err := factory.New(factory.DefaultConfig(owner), factory.Deps{
		Sales:    memory.NewSaleStore(),
		Treasury: memory.NewTreasuryStore(),
		Tokens:   ledger.NewMemoryLedger(),
		Bus:      bus,
	})
	if err != nil {
		logger.Fatalf("Create factory: %v", err)
	}

	recorder := analytics.NewRecorder(purchases, bus, logger)
	recorderCtx, stopRecorder := context.WithCancel(ctx)
	go recorder.Run(recorderCtx)

	sale, err := f.Create(ctx, creator, *name, *symbol, f.Fee())
	if err != nil {
		logger.Fatalf("Create sale: %v", err)
	}
	logger.Printf("Created %s (%s): token %s", *name, *symbol, sale.TokenID)

	rng := rand.New(rand.NewSource(*seed))
	buyerAddrs := make([]string, *buyers)
	for i := range buyerAddrs {
		buyerAddrs[i] = identity.DeriveAddress(fmt.Sprintf("simulate:buyer:%d", i))
	}

	for round := 0; round < *rounds; round++ {
		buyer := buyerAddrs[rng.Intn(len(buyerAddrs))]
		amount := domain.Units(1 + rng.Uint64()%*maxBuy)

		cost, err := f.GetCost(ctx, sale.TokenID, amount)
		if err != nil {
			logger.Fatalf("Round %d: cost: %v", round, err)
		}

		receipt, err := f.Buy(ctx, sale.TokenID, buyer, amount, cost)
		if err != nil {
			if errors.Is(err, factory.ErrSupplyExceeded) {
				// Not enough remains for this order size; retry smaller.
				continue
			}
			if errors.Is(err, factory.ErrSaleClosed) {
				break
			}
			logger.Fatalf("Round %d: buy: %v", round, err)
		}

		logger.Printf("Round %d: %s bought %s for %s (sold=%s raised=%s)",
			round, buyer[:8], domain.FormatAmount(receipt.Amount), domain.FormatAmount(receipt.Cost),
			domain.FormatAmount(receipt.NewSold), domain.FormatAmount(receipt.NewRaised))

		if receipt.Closed {
			logger.Println("Sale closed: cap reached")
			break
		}
	}

	stopRecorder()
	<-recorder.Done()

	printSummary(ctx, logger, f, analytics.NewAggregator(purchases), sale.TokenID)
}

func printSummary(ctx context.Context, logger *log.Logger, f *factory.Factory, agg *analytics.Aggregator, tokenID string) {
	final, err := f.GetSale(ctx, tokenID)
	if err != nil {
		logger.Fatalf("Load final sale: %v", err)
	}
	price, err := f.UnitPrice(ctx, tokenID)
	if err != nil {
		price = new(uint256.Int)
	}

	fmt.Println()
	fmt.Println("=== Sale summary ===")
	fmt.Printf("Token:      %s (%s/%s)\n", final.TokenID, final.Name, final.Symbol)
	fmt.Printf("Sold:       %s\n", domain.FormatAmount(final.Sold))
	fmt.Printf("Raised:     %s\n", domain.FormatAmount(final.Raised))
	fmt.Printf("Unit price: %s\n", domain.FormatAmount(price))
	fmt.Printf("Open:       %v\n", final.IsOpen)

	stats, err := agg.ComputeSaleStats(ctx, tokenID)
	if err != nil {
		if errors.Is(err, analytics.ErrNoPurchases) {
			fmt.Println("No purchases recorded")
			return
		}
		logger.Fatalf("Compute stats: %v", err)
	}
	fmt.Printf("Purchases:  %d from %d buyers\n", stats.Purchases, stats.UniqueBuyers)
	fmt.Printf("Avg cost:   %s\n", domain.FormatAmount(stats.AverageCost))
	fmt.Printf("Largest:    %s units\n", domain.FormatAmount(stats.LargestBuy))

	board, err := agg.BuyerLeaderboard(ctx, tokenID)
	if err != nil {
		logger.Fatalf("Leaderboard: %v", err)
	}
	fmt.Println("Leaderboard:")
	for i, row := range board {
		fmt.Printf("  %d. %s  %s units\n", i+1, row.Buyer, domain.FormatAmount(row.Units))
	}
}
