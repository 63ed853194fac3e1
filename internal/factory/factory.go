// Package factory orchestrates the token launchpad: opening fixed-supply
// token sales for a flat fee, pricing purchases on the bonding curve,
// and administrator fee withdrawal. Every public operation is atomic:
// it either completes fully or leaves all state unchanged.
package factory

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/holiman/uint256"

	"github.com/ArjunMal1311/meme-coin/internal/curve"
	"github.com/ArjunMal1311/meme-coin/internal/domain"
	"github.com/ArjunMal1311/meme-coin/internal/events"
	"github.com/ArjunMal1311/meme-coin/internal/identity"
	"github.com/ArjunMal1311/meme-coin/internal/ledger"
	"github.com/ArjunMal1311/meme-coin/internal/observability"
	"github.com/ArjunMal1311/meme-coin/internal/storage"
)

// Config holds construction-time parameters. Fee and Owner are
// immutable for the factory's lifetime.
type Config struct {
	Fee         *uint256.Int // flat creation fee, exact match required
	Owner       string       // administrator address
	Account     string       // factory holding account on each token ledger
	TotalSupply *uint256.Int // fixed supply minted per token
	SaleCap     *uint256.Int // cumulative sold at which a sale closes, <= TotalSupply
}

// DefaultConfig returns the standard launchpad parameters: 0.01 fee,
// 1,000,000-unit supply, sale closing at 500,000 units sold.
func DefaultConfig(owner string) Config {
	return Config{
		Fee:         domain.MustParseAmount("0.01"),
		Owner:       owner,
		Account:     identity.DeriveAddress("launchpad:" + owner),
		TotalSupply: domain.Units(1_000_000),
		SaleCap:     domain.Units(500_000),
	}
}

// Deps are the collaborators a Factory operates on.
type Deps struct {
	Sales    storage.SaleStore
	Treasury storage.TreasuryStore
	Tokens   ledger.Ledger
	Bus      *events.Bus            // optional
	Metrics  *observability.Metrics // optional
	Logger   *log.Logger            // optional
}

// Receipt describes an accepted purchase, including the refund of any
// excess payment.
type Receipt struct {
	TokenID   string
	Buyer     string
	Amount    *uint256.Int // base units delivered
	Cost      *uint256.Int // payment accepted
	Refund    *uint256.Int // payment minus cost, returned to the buyer
	NewSold   *uint256.Int
	NewRaised *uint256.Int
	Closed    bool
}

// Factory owns the sale registry, the fee treasury, and the pricing
// curve. Public operations serialize on one mutex: the engine assumes a
// single-writer execution model and must never observe itself mid-update.
type Factory struct {
	mu sync.Mutex

	fee         *uint256.Int
	owner       string
	account     string
	totalSupply *uint256.Int
	saleCap     *uint256.Int

	pricing  *curve.StepCurve
	sales    storage.SaleStore
	treasury storage.TreasuryStore
	tokens   ledger.Ledger

	bus     *events.Bus
	metrics *observability.Metrics
	logger  *log.Logger
}

// New creates a Factory with the default bonding curve.
func New(cfg Config, deps Deps) (*Factory, error) {
	return NewWithCurve(cfg, deps, curve.DefaultStepCurve(cfg.TotalSupply))
}

// NewWithCurve creates a Factory with an explicit pricing curve.
func NewWithCurve(cfg Config, deps Deps, pricing *curve.StepCurve) (*Factory, error) {
	if cfg.Fee == nil {
		return nil, errors.New("factory: fee is required")
	}
	if err := identity.ValidateAddress(cfg.Owner); err != nil {
		return nil, fmt.Errorf("factory: owner: %w", err)
	}
	if err := identity.ValidateAddress(cfg.Account); err != nil {
		return nil, fmt.Errorf("factory: account: %w", err)
	}
	if cfg.TotalSupply == nil || cfg.TotalSupply.IsZero() {
		return nil, errors.New("factory: total supply must be positive")
	}
	if cfg.SaleCap == nil || cfg.SaleCap.IsZero() || cfg.SaleCap.Gt(cfg.TotalSupply) {
		return nil, errors.New("factory: sale cap must be positive and within total supply")
	}
	if !domain.IsWholeUnits(cfg.SaleCap) {
		return nil, errors.New("factory: sale cap must be a whole-unit multiple")
	}
	if pricing == nil {
		return nil, errors.New("factory: pricing curve is required")
	}
	if deps.Sales == nil || deps.Treasury == nil || deps.Tokens == nil {
		return nil, errors.New("factory: sales, treasury, and token ledger are required")
	}

	return &Factory{
		fee:         new(uint256.Int).Set(cfg.Fee),
		owner:       cfg.Owner,
		account:     cfg.Account,
		totalSupply: new(uint256.Int).Set(cfg.TotalSupply),
		saleCap:     new(uint256.Int).Set(cfg.SaleCap),
		pricing:     pricing,
		sales:       deps.Sales,
		treasury:    deps.Treasury,
		tokens:      deps.Tokens,
		bus:         deps.Bus,
		metrics:     deps.Metrics,
		logger:      deps.Logger,
	}, nil
}

// Fee returns the immutable creation fee.
func (f *Factory) Fee() *uint256.Int { return new(uint256.Int).Set(f.fee) }

// Owner returns the administrator address bound at construction.
func (f *Factory) Owner() string { return f.owner }

// Account returns the factory's holding account address.
func (f *Factory) Account() string { return f.account }

// TotalSupply returns the fixed supply minted per token.
func (f *Factory) TotalSupply() *uint256.Int { return new(uint256.Int).Set(f.totalSupply) }

// SaleCap returns the cumulative sold at which a sale closes.
func (f *Factory) SaleCap() *uint256.Int { return new(uint256.Int).Set(f.saleCap) }

// FeeBalance returns the accrued, unwithdrawn creation fees.
func (f *Factory) FeeBalance(ctx context.Context) (*uint256.Int, error) {
	return f.treasury.Balance(ctx)
}

// Create opens a sale for a new fixed-supply token. The payment must
// equal the creation fee exactly. Returns the registered sale, whose
// TokenID is the new token identity.
func (f *Factory) Create(ctx context.Context, creator, name, symbol string, payment *uint256.Int) (*domain.Sale, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if name == "" || symbol == "" {
		f.countError("create", "invalid_input")
		return nil, fmt.Errorf("%w: name and symbol are required", ErrInvalidInput)
	}
	if err := identity.ValidateAddress(creator); err != nil {
		f.countError("create", "invalid_input")
		return nil, fmt.Errorf("%w: creator: %v", ErrInvalidInput, err)
	}
	if payment == nil || !payment.Eq(f.fee) {
		f.countError("create", "invalid_payment")
		return nil, fmt.Errorf("%w: creation requires exactly %s", ErrInvalidPayment, domain.FormatAmount(f.fee))
	}

	seq, err := f.sales.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count sales: %w", err)
	}

	now := time.Now().UnixMilli()
	tokenID := identity.ComputeTokenID(name, symbol, creator, seq, now)

	sale := &domain.Sale{
		TokenID:   tokenID,
		Name:      name,
		Symbol:    symbol,
		Creator:   creator,
		Sold:      new(uint256.Int),
		Raised:    new(uint256.Int),
		IsOpen:    true,
		CreatedAt: now,
	}

	// Instantiate the token ledger: full supply to the factory account.
	if err := f.tokens.MintFixedSupply(ctx, tokenID, f.totalSupply, f.account); err != nil {
		return nil, fmt.Errorf("mint token supply: %w", err)
	}

	if err := f.sales.Insert(ctx, sale); err != nil {
		return nil, fmt.Errorf("register sale: %w", err)
	}

	if err := f.treasury.Accrue(ctx, payment); err != nil {
		return nil, fmt.Errorf("accrue creation fee: %w", err)
	}

	f.publish(&domain.CreatedEvent{
		TokenID:   tokenID,
		Name:      name,
		Symbol:    symbol,
		Creator:   creator,
		Timestamp: now,
	})
	if f.metrics != nil {
		f.metrics.TokensCreated.Inc()
	}
	f.logf("created sale %s (%s/%s) by %s", tokenID, name, symbol, creator)

	return sale, nil
}

// Buy purchases amount base units of the token. The payment must cover
// the bonding-curve cost; any excess is returned in the receipt's
// Refund within the same atomic operation. Reaching the sale cap closes
// the sale.
func (f *Factory) Buy(ctx context.Context, tokenID, buyer string, amount, payment *uint256.Int) (*Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := identity.ValidateAddress(buyer); err != nil {
		f.countError("buy", "invalid_input")
		return nil, fmt.Errorf("%w: buyer: %v", ErrInvalidInput, err)
	}

	sale, err := f.sales.GetByID(ctx, tokenID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			f.countError("buy", "unknown_sale")
			return nil, fmt.Errorf("%w: %s", ErrUnknownSale, tokenID)
		}
		return nil, fmt.Errorf("load sale: %w", err)
	}
	if !sale.IsOpen {
		f.countError("buy", "sale_closed")
		return nil, fmt.Errorf("%w: %s", ErrSaleClosed, tokenID)
	}

	cost, err := f.cost(sale.Sold, amount)
	if err != nil {
		f.countError("buy", "invalid_amount")
		return nil, err
	}

	newSold, overflow := new(uint256.Int).AddOverflow(sale.Sold, amount)
	if overflow || newSold.Gt(f.saleCap) {
		f.countError("buy", "supply_exceeded")
		return nil, fmt.Errorf("%w: %s units remain", ErrSupplyExceeded,
			domain.FormatAmount(new(uint256.Int).Sub(f.saleCap, sale.Sold)))
	}

	if payment == nil || payment.Lt(cost) {
		f.countError("buy", "invalid_payment")
		return nil, fmt.Errorf("%w: cost is %s", ErrInvalidPayment, domain.FormatAmount(cost))
	}
	refund := new(uint256.Int).Sub(payment, cost)

	// Internal bookkeeping first; the ledger interaction only after the
	// registry mutation is finalized.
	closed := false
	receipt := &Receipt{
		TokenID: tokenID,
		Buyer:   buyer,
		Amount:  new(uint256.Int).Set(amount),
		Cost:    cost,
		Refund:  refund,
	}
	err = f.sales.Update(ctx, tokenID, func(s *domain.Sale) error {
		// Re-validate inside the store's atomic step.
		if !s.IsOpen {
			return fmt.Errorf("%w: %s", ErrSaleClosed, tokenID)
		}
		ns, overflow := new(uint256.Int).AddOverflow(s.Sold, amount)
		if overflow || ns.Gt(f.saleCap) {
			return fmt.Errorf("%w: %s", ErrSupplyExceeded, tokenID)
		}
		nr, overflow := new(uint256.Int).AddOverflow(s.Raised, cost)
		if overflow {
			return fmt.Errorf("raise total: %w", curve.ErrOverflow)
		}

		s.Sold = ns
		s.Raised = nr
		if !s.Sold.Lt(f.saleCap) {
			s.IsOpen = false
			closed = true
		}

		receipt.NewSold = new(uint256.Int).Set(ns)
		receipt.NewRaised = new(uint256.Int).Set(nr)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := f.tokens.Transfer(ctx, tokenID, f.account, buyer, amount); err != nil {
		// Compensate the registry mutation so the failed purchase
		// leaves no partial state.
		rbErr := f.sales.Update(ctx, tokenID, func(s *domain.Sale) error {
			s.Sold = new(uint256.Int).Sub(s.Sold, amount)
			s.Raised = new(uint256.Int).Sub(s.Raised, cost)
			if closed {
				s.IsOpen = true
			}
			return nil
		})
		if rbErr != nil {
			f.logf("FATAL: rollback after failed transfer on %s: %v", tokenID, rbErr)
			return nil, fmt.Errorf("deliver units: %v (rollback failed: %w)", err, rbErr)
		}
		return nil, fmt.Errorf("deliver units: %w", err)
	}

	receipt.Closed = closed

	f.publish(&domain.PurchasedEvent{
		TokenID:   tokenID,
		Buyer:     buyer,
		Amount:    new(uint256.Int).Set(amount),
		Cost:      new(uint256.Int).Set(cost),
		NewSold:   new(uint256.Int).Set(receipt.NewSold),
		NewRaised: new(uint256.Int).Set(receipt.NewRaised),
		Closed:    closed,
		Timestamp: time.Now().UnixMilli(),
	})
	if f.metrics != nil {
		f.metrics.PurchasesTotal.Inc()
		f.metrics.UnitsSoldTotal.Add(domain.AmountFloat(amount))
		f.metrics.RaisedTotal.Add(domain.AmountFloat(cost))
		if closed {
			f.metrics.SalesClosed.Inc()
		}
	}
	f.logf("purchase on %s: %s units for %s by %s (closed=%v)",
		tokenID, domain.FormatAmount(amount), domain.FormatAmount(cost), buyer, closed)

	return receipt, nil
}

// WithdrawFees transfers amount of the accrued creation fees to the
// administrator. Administrator-only.
func (f *Factory) WithdrawFees(ctx context.Context, caller string, amount *uint256.Int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if caller != f.owner {
		f.countError("withdraw", "unauthorized")
		return fmt.Errorf("%w: only the owner may withdraw fees", ErrUnauthorized)
	}
	if amount == nil || amount.IsZero() {
		f.countError("withdraw", "invalid_input")
		return fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}

	if err := f.treasury.Withdraw(ctx, amount); err != nil {
		if errors.Is(err, storage.ErrInsufficientFunds) {
			f.countError("withdraw", "insufficient_funds")
			return fmt.Errorf("%w: %v", ErrInvalidPayment, err)
		}
		return fmt.Errorf("withdraw fees: %w", err)
	}

	if f.metrics != nil {
		f.metrics.FeesWithdrawals.Inc()
	}
	f.logf("owner withdrew %s in fees", domain.FormatAmount(amount))
	return nil
}

// GetSale returns the sale for a token identity.
func (f *Factory) GetSale(ctx context.Context, tokenID string) (*domain.Sale, error) {
	sale, err := f.sales.GetByID(ctx, tokenID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSale, tokenID)
		}
		return nil, fmt.Errorf("load sale: %w", err)
	}
	return sale, nil
}

// GetSaleByIndex returns the sale at the given creation-order index.
func (f *Factory) GetSaleByIndex(ctx context.Context, index int) (*domain.Sale, error) {
	sale, err := f.sales.GetByIndex(ctx, index)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: index %d", ErrUnknownSale, index)
		}
		return nil, fmt.Errorf("load sale: %w", err)
	}
	return sale, nil
}

// GetTokenSale looks a sale up by either form of key: a decimal
// enumeration index or a token identity. Both paths return the same view.
func (f *Factory) GetTokenSale(ctx context.Context, key string) (*domain.Sale, error) {
	if index, err := strconv.Atoi(key); err == nil {
		return f.GetSaleByIndex(ctx, index)
	}
	return f.GetSale(ctx, key)
}

// TotalTokens returns the number of registered sales.
func (f *Factory) TotalTokens(ctx context.Context) (int, error) {
	return f.sales.Count(ctx)
}

// UnitPrice returns the current bonding-curve unit price for a token.
func (f *Factory) UnitPrice(ctx context.Context, tokenID string) (*uint256.Int, error) {
	sale, err := f.GetSale(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	return f.pricing.Price(sale.Sold)
}

// GetCost returns the total cost of purchasing amount units of a token
// at its current sold level. Read-only.
func (f *Factory) GetCost(ctx context.Context, tokenID string, amount *uint256.Int) (*uint256.Int, error) {
	sale, err := f.GetSale(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	return f.cost(sale.Sold, amount)
}

// Remaining returns the unsold units below the sale cap.
func (f *Factory) Remaining(sale *domain.Sale) *uint256.Int {
	if sale.Sold.Gt(f.saleCap) {
		return new(uint256.Int)
	}
	return new(uint256.Int).Sub(f.saleCap, sale.Sold)
}

// CurrentStep returns the zero-based pricing step the sale sits on.
func (f *Factory) CurrentStep(sale *domain.Sale) uint64 {
	return new(uint256.Int).Div(sale.Sold, f.pricing.StepSize()).Uint64()
}

// PriceAt delegates to the pricing curve for an arbitrary sold level.
func (f *Factory) PriceAt(sold *uint256.Int) (*uint256.Int, error) {
	return f.pricing.Price(sold)
}

// CostAt delegates to the pricing curve for an arbitrary sold level.
func (f *Factory) CostAt(sold, amount *uint256.Int) (*uint256.Int, error) {
	return f.cost(sold, amount)
}

// cost maps curve validation failures onto the operation error taxonomy.
func (f *Factory) cost(sold, amount *uint256.Int) (*uint256.Int, error) {
	c, err := f.pricing.Cost(sold, amount)
	if err != nil {
		switch {
		case errors.Is(err, curve.ErrZeroAmount), errors.Is(err, curve.ErrFractionalAmount):
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		default:
			return nil, err
		}
	}
	return c, nil
}

func (f *Factory) publish(e domain.Event) {
	if f.bus != nil {
		f.bus.Publish(e)
	}
}

func (f *Factory) countError(op, reason string) {
	if f.metrics != nil {
		f.metrics.OperationErrors.WithLabelValues(op, reason).Inc()
	}
}

func (f *Factory) logf(format string, args ...any) {
	if f.logger != nil {
		f.logger.Printf(format, args...)
	}
}
