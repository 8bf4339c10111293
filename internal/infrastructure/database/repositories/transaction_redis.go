package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/mufasadev/txwebhook/internal/domain/models"
	"github.com/mufasadev/txwebhook/internal/domain/repositories"
	apperrors "github.com/mufasadev/txwebhook/internal/errors"
	"github.com/mufasadev/txwebhook/pkg/log"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"strconv"
	"time"
)

// Records live as JSON strings under <prefix>:tx:<id>. Every status has a
// sorted set <prefix>:status:<STATUS> of ids scored by created_at in
// microseconds. Writes that touch both run as one Lua script.
var insertScript = redis.NewScript(`
if redis.call('SET', KEYS[1], ARGV[1], 'NX') then
	redis.call('ZADD', KEYS[2], ARGV[2], ARGV[3])
	return 1
end
return 0
`)

var completeScript = redis.NewScript(`
local raw = redis.call('GET', KEYS[1])
if not raw then
	return 0
end
local tx = cjson.decode(raw)
if tx['status'] ~= 'PROCESSING' then
	return 0
end
tx['status'] = ARGV[1]
tx['processed_at'] = ARGV[2]
local score = redis.call('ZSCORE', KEYS[2], ARGV[3])
redis.call('SET', KEYS[1], cjson.encode(tx))
redis.call('ZREM', KEYS[2], ARGV[3])
if score then
	redis.call('ZADD', KEYS[3], score, ARGV[3])
end
return 1
`)

type redisTransaction struct {
	TransactionID      string  `json:"transaction_id"`
	SourceAccount      string  `json:"source_account"`
	DestinationAccount string  `json:"destination_account"`
	Amount             string  `json:"amount"`
	Currency           string  `json:"currency"`
	Status             string  `json:"status"`
	CreatedAt          string  `json:"created_at"`
	ProcessedAt        *string `json:"processed_at"`
}

type RedisTransactionRepository struct {
	client *redis.Client
	prefix string
	logger *zerolog.Logger
}

// NewRedisTransactionRepository creates a store on client with all keys under prefix.
func NewRedisTransactionRepository(client *redis.Client, prefix string) repositories.TransactionRepository {
	l := log.GetLogger()
	return &RedisTransactionRepository{
		client: client,
		prefix: prefix,
		logger: &l,
	}
}

func (r *RedisTransactionRepository) transactionKey(transactionID string) string {
	return fmt.Sprintf("%s:tx:%s", r.prefix, transactionID)
}

func (r *RedisTransactionRepository) statusKey(status models.Status) string {
	return fmt.Sprintf("%s:status:%s", r.prefix, status)
}

func (r *RedisTransactionRepository) InsertIfAbsent(ctx context.Context, transaction *models.Transaction) (bool, error) {
	record := redisTransaction{
		TransactionID:      transaction.TransactionID,
		SourceAccount:      transaction.SourceAccount,
		DestinationAccount: transaction.DestinationAccount,
		Amount:             transaction.Amount.StringFixed(2),
		Currency:           transaction.Currency,
		Status:             string(transaction.Status),
		CreatedAt:          transaction.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return false, fmt.Errorf("encode transaction: %w", err)
	}

	inserted, err := insertScript.Run(ctx, r.client,
		[]string{r.transactionKey(transaction.TransactionID), r.statusKey(transaction.Status)},
		payload, transaction.CreatedAt.UnixMicro(), transaction.TransactionID,
	).Int()
	if err != nil {
		r.logger.Error().Err(err).Str("transaction_id", transaction.TransactionID).Msg("insert transaction")
		return false, apperrors.NewStoreUnavailableError("insert", err)
	}

	return inserted == 1, nil
}

func (r *RedisTransactionRepository) CompleteTransaction(ctx context.Context, transactionID string, status models.Status, processedAt time.Time) (bool, error) {
	if !status.IsTerminal() {
		return false, fmt.Errorf("complete transaction: %q is not a terminal status", status)
	}

	transitioned, err := completeScript.Run(ctx, r.client,
		[]string{r.transactionKey(transactionID), r.statusKey(models.StatusProcessing), r.statusKey(status)},
		string(status), processedAt.UTC().Format(time.RFC3339Nano), transactionID,
	).Int()
	if err != nil {
		return false, apperrors.NewStoreUnavailableError("complete", err)
	}

	return transitioned == 1, nil
}

func (r *RedisTransactionRepository) GetByTransactionID(ctx context.Context, transactionID string) (*models.Transaction, error) {
	raw, err := r.client.Get(ctx, r.transactionKey(transactionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, apperrors.NewStoreUnavailableError("get", err)
	}

	tx, err := decodeRedisTransaction(raw)
	if err != nil {
		return nil, apperrors.NewStoreUnavailableError("get", err)
	}
	return tx, nil
}

func (r *RedisTransactionRepository) ListByStatus(ctx context.Context, status models.Status, createdBefore time.Time, limit int) ([]*models.Transaction, error) {
	opt := &redis.ZRangeBy{Min: "-inf", Max: "+inf"}
	if !createdBefore.IsZero() {
		opt.Max = "(" + strconv.FormatInt(createdBefore.UnixMicro(), 10)
	}
	if limit > 0 {
		opt.Count = int64(limit)
	}

	ids, err := r.client.ZRangeByScore(ctx, r.statusKey(status), opt).Result()
	if err != nil {
		return nil, apperrors.NewStoreUnavailableError("list", err)
	}

	result := make([]*models.Transaction, 0, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, r.transactionKey(id))
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, apperrors.NewStoreUnavailableError("list", err)
	}

	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		tx, err := decodeRedisTransaction([]byte(raw))
		if err != nil {
			return nil, apperrors.NewStoreUnavailableError("list", err)
		}
		// the record may have moved on between ZRANGE and MGET
		if tx.Status == status {
			result = append(result, tx)
		}
	}

	return result, nil
}

func (r *RedisTransactionRepository) CountByStatus(ctx context.Context) (map[models.Status]int64, error) {
	statuses := []models.Status{models.StatusProcessing, models.StatusProcessed, models.StatusFailed}
	cmds := make([]*redis.IntCmd, len(statuses))

	pipe := r.client.Pipeline()
	for i, status := range statuses {
		cmds[i] = pipe.ZCard(ctx, r.statusKey(status))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, apperrors.NewStoreUnavailableError("count", err)
	}

	counts := make(map[models.Status]int64, len(statuses))
	for i, status := range statuses {
		if n := cmds[i].Val(); n > 0 {
			counts[status] = n
		}
	}
	return counts, nil
}

func (r *RedisTransactionRepository) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return apperrors.NewStoreUnavailableError("ping", err)
	}
	return nil
}

func decodeRedisTransaction(raw []byte) (*models.Transaction, error) {
	var record redisTransaction
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("decode transaction: %w", err)
	}

	amount, err := decimal.NewFromString(record.Amount)
	if err != nil {
		return nil, fmt.Errorf("decode amount: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, record.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("decode created_at: %w", err)
	}

	tx := &models.Transaction{
		TransactionID:      record.TransactionID,
		SourceAccount:      record.SourceAccount,
		DestinationAccount: record.DestinationAccount,
		Amount:             amount,
		Currency:           record.Currency,
		Status:             models.Status(record.Status),
		CreatedAt:          createdAt.UTC(),
	}
	if record.ProcessedAt != nil {
		processedAt, err := time.Parse(time.RFC3339Nano, *record.ProcessedAt)
		if err != nil {
			return nil, fmt.Errorf("decode processed_at: %w", err)
		}
		processedAt = processedAt.UTC()
		tx.ProcessedAt = &processedAt
	}

	return tx, nil
}
