package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"fairtickets/internal/domain/resale"
)

// MaxAmount is the largest balance the Redis balance book holds exactly;
// Lua compares amounts as doubles.
const MaxAmount = 1<<53 - 1

var settleScript = redis.NewScript(`
if redis.call('HEXISTS', KEYS[2], ARGV[1]) == 1 then
	return redis.error_reply('DUPLICATE_SETTLEMENT')
end
local balance = tonumber(redis.call('HGET', KEYS[1], ARGV[2]) or '0')
if balance < tonumber(ARGV[3]) then
	return redis.error_reply('INSUFFICIENT_FUNDS')
end
redis.call('HINCRBY', KEYS[1], ARGV[2], '-' .. ARGV[3])
for i = 5, #ARGV, 2 do
	redis.call('HINCRBY', KEYS[1], ARGV[i], ARGV[i + 1])
end
redis.call('HSET', KEYS[2], ARGV[1], ARGV[4])
return 1
`)

var reverseScript = redis.NewScript(`
local raw = redis.call('HGET', KEYS[2], ARGV[1])
if not raw then
	return redis.error_reply('SETTLEMENT_NOT_FOUND')
end
local s = cjson.decode(raw)
for _, p in ipairs(s.payouts) do
	if tonumber(redis.call('HGET', KEYS[1], p.account) or '0') < tonumber(p.amount) then
		return redis.error_reply('INSUFFICIENT_FUNDS')
	end
end
for _, p in ipairs(s.payouts) do
	redis.call('HINCRBY', KEYS[1], p.account, '-' .. p.amount)
end
redis.call('HINCRBY', KEYS[1], s.payer, s.total)
redis.call('HDEL', KEYS[2], ARGV[1])
return 1
`)

var depositScript = redis.NewScript(`
local balance = tonumber(redis.call('HGET', KEYS[1], ARGV[1]) or '0')
if balance + tonumber(ARGV[2]) > tonumber(ARGV[3]) then
	return redis.error_reply('BALANCE_LIMIT')
end
return redis.call('HINCRBY', KEYS[1], ARGV[1], ARGV[2])
`)

// RedisWallets is a balance book kept in a Redis hash. Settlements run as one
// Lua script, so they apply completely or not at all.
type RedisWallets struct {
	rdb            *redis.Client
	balancesKey    string
	settlementsKey string
}

func NewRedisWallets(rdb *redis.Client, keyPrefix string) *RedisWallets {
	return &RedisWallets{
		rdb:            rdb,
		balancesKey:    keyPrefix + "balances",
		settlementsKey: keyPrefix + "settlements",
	}
}

type settlementRecord struct {
	Payer   string         `json:"payer"`
	Total   string         `json:"total"`
	Payouts []payoutRecord `json:"payouts"`
}

type payoutRecord struct {
	Account string `json:"account"`
	Amount  string `json:"amount"`
}

func (w *RedisWallets) Settle(ctx context.Context, s resale.Settlement) error {
	total, err := s.Total()
	if err != nil {
		return err
	}
	if total > MaxAmount {
		return fmt.Errorf("%w: settlement of %d above %d", resale.ErrInvalidPrice, total, uint64(MaxAmount))
	}

	record := settlementRecord{
		Payer:   s.Payer,
		Total:   strconv.FormatUint(total, 10),
		Payouts: make([]payoutRecord, 0, len(s.Payouts)),
	}
	args := []any{s.Reference, s.Payer, record.Total, nil}
	for _, p := range s.Payouts {
		amount := strconv.FormatUint(p.Amount, 10)
		record.Payouts = append(record.Payouts, payoutRecord{Account: p.Account, Amount: amount})
		args = append(args, p.Account, amount)
	}

	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal settlement: %w", err)
	}
	args[3] = string(raw)

	err = settleScript.Run(ctx, w.rdb, []string{w.balancesKey, w.settlementsKey}, args...).Err()
	if err != nil {
		return w.mapError(err, s.Reference, s.Payer)
	}
	return nil
}

func (w *RedisWallets) Reverse(ctx context.Context, reference string) error {
	err := reverseScript.Run(ctx, w.rdb, []string{w.balancesKey, w.settlementsKey}, reference).Err()
	if err != nil {
		return w.mapError(err, reference, "")
	}
	return nil
}

// Deposit credits account. The limit check and the increment run as one
// script, so concurrent deposits cannot push a balance past MaxAmount.
func (w *RedisWallets) Deposit(ctx context.Context, account string, amount uint64) error {
	if amount > MaxAmount {
		return fmt.Errorf("%w: deposit of %d above %d", resale.ErrInvalidPrice, amount, uint64(MaxAmount))
	}

	err := depositScript.Run(ctx, w.rdb, []string{w.balancesKey},
		account,
		strconv.FormatUint(amount, 10),
		strconv.FormatUint(MaxAmount, 10),
	).Err()
	if err != nil {
		if strings.HasPrefix(err.Error(), "BALANCE_LIMIT") {
			return fmt.Errorf("%w: balance of %s would exceed %d", resale.ErrInvalidPrice, account, uint64(MaxAmount))
		}
		return fmt.Errorf("deposit to %s: %w", account, err)
	}
	return nil
}

func (w *RedisWallets) Balance(ctx context.Context, account string) (uint64, error) {
	raw, err := w.rdb.HGet(ctx, w.balancesKey, account).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("balance of %s: %w", account, err)
	}

	balance, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("balance of %s: %w", account, err)
	}
	return balance, nil
}

func (w *RedisWallets) mapError(err error, reference, payer string) error {
	msg := err.Error()
	switch {
	case strings.HasPrefix(msg, "DUPLICATE_SETTLEMENT"):
		return fmt.Errorf("%w: %s", resale.ErrDuplicateSettlement, reference)
	case strings.HasPrefix(msg, "INSUFFICIENT_FUNDS"):
		if payer == "" {
			return fmt.Errorf("%w: cannot reverse %s", resale.ErrInsufficientFunds, reference)
		}
		return fmt.Errorf("%w: %s", resale.ErrInsufficientFunds, payer)
	case strings.HasPrefix(msg, "SETTLEMENT_NOT_FOUND"):
		return fmt.Errorf("settlement %s not found", reference)
	default:
		return fmt.Errorf("settlement %s: %w", reference, err)
	}
}
