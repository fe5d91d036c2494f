package store

import (
	"bytes"
	"fmt"
	"strconv"
	"sync"

	"github.com/holiman/uint256"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/tendermint/tendermint/libs/log"
	tmdb "github.com/tendermint/tm-db"
	leveldb "github.com/tendermint/tm-db/goleveldb"

	"energy_auction/state"
	"energy_auction/types"
)

const (
	tableEscrow  = "escrow/"
	tableBalance = "balance/"
	tableOutcome = "outcome/"
	keyBurned    = "burned"
	keyLastRound = "meta/last_settled"
)

var _ state.Ledger = (*KVStore)(nil)

// NewKVStore 打开dir下名为name的goleveldb
func NewKVStore(name, dir string, logger log.Logger) (*KVStore, error) {
	levelDB, err := leveldb.NewDB(name, dir)
	if err != nil {
		return nil, errors.Wrapf(err, "open leveldb %s in %s", name, dir)
	}
	return NewKVStoreWithDB(levelDB, logger), nil
}

func NewKVStoreWithDB(kvdb tmdb.DB, logger log.Logger) *KVStore {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &KVStore{kvDB: kvdb, logger: logger}
}

// KVStore 基于tm-db的押金账本
// table definition:
// escrow table:  key=escrow/{round:%020d}/{address}; value=amount
// balance table: key=balance/{address}; value=amount
// outcome table: key=outcome/{round:%020d}; value=json(Outcome)
// burned:        key=burned; value=amount
type KVStore struct {
	mtx  sync.Mutex // 读-改-写需要串行
	kvDB tmdb.DB

	logger log.Logger
}

func (kv *KVStore) SetLogger(logger log.Logger) {
	kv.logger = logger
}

func (kv *KVStore) GetDB() tmdb.DB {
	return kv.kvDB
}

func (kv *KVStore) Close() error {
	return kv.kvDB.Close()
}

// LockEscrow implements state.Ledger
func (kv *KVStore) LockEscrow(round types.RoundID, participant types.Address, amount *uint256.Int) error {
	kv.mtx.Lock()
	defer kv.mtx.Unlock()

	key := escrowKey(round, participant)
	existed, err := kv.kvDB.Has(key)
	if err != nil {
		return errors.Wrap(err, "query escrow")
	}
	if existed {
		return errors.Wrapf(types.ErrDuplicateCommitment, "escrow of %v in round %v already locked", participant, round)
	}
	if err := kv.kvDB.SetSync(key, amountBytes(amount)); err != nil {
		return errors.Wrap(err, "lock escrow")
	}
	return nil
}

// Escrow implements state.Ledger
func (kv *KVStore) Escrow(round types.RoundID, participant types.Address) (*uint256.Int, error) {
	return kv.getAmount(escrowKey(round, participant))
}

// Settle implements state.Ledger
// 结果、余额变化、销毁总额和押金释放在一个batch里写入
func (kv *KVStore) Settle(outcome *types.Outcome, transfers []state.Transfer) error {
	kv.mtx.Lock()
	defer kv.mtx.Unlock()

	oKey := outcomeKey(outcome.Round)
	existed, err := kv.kvDB.Has(oKey)
	if err != nil {
		return errors.Wrap(err, "query outcome")
	}
	if existed {
		return errors.Wrapf(types.ErrAlreadySettled, "outcome of round %v already archived", outcome.Round)
	}

	bz, err := jsoniter.Marshal(outcome)
	if err != nil {
		return errors.Wrap(err, "encode outcome")
	}

	var batch tmdb.Batch = nil
	defer func() {
		if batch != nil {
			batch.Close()
		}
	}()
	batch = kv.kvDB.NewBatch()

	if err := batch.Set(oKey, bz); err != nil {
		return err
	}
	if err := batch.Set([]byte(keyLastRound), int2byte(outcome.Round.Int64())); err != nil {
		return err
	}
	if err := kv.applyTransfers(batch, transfers); err != nil {
		return err
	}
	if err := kv.releaseRound(batch, outcome.Round); err != nil {
		return err
	}

	if err := batch.WriteSync(); err != nil {
		return errors.Wrap(err, "write settlement batch")
	}
	if err := batch.Close(); err != nil {
		return err
	}
	batch = nil
	kv.logger.Debug("settlement committed", "round", outcome.Round, "transfers", len(transfers))
	return nil
}

// ReleaseStranded implements state.Ledger
// 已结算的轮次押金在结算时已经删除，所以这里剩下的都是未结算的
func (kv *KVStore) ReleaseStranded() ([]state.Transfer, error) {
	kv.mtx.Lock()
	defer kv.mtx.Unlock()

	it, err := tmdb.IteratePrefix(kv.kvDB, []byte(tableEscrow))
	if err != nil {
		return nil, errors.Wrap(err, "iterate escrow")
	}
	refunds := []state.Transfer{}
	toDelete := [][]byte{}
	for ; it.Valid(); it.Next() {
		round, addr, err := parseEscrowKey(it.Key())
		if err != nil {
			it.Close()
			return nil, err
		}
		amount, err := parseAmount(it.Value())
		if err != nil {
			it.Close()
			return nil, err
		}
		refunds = append(refunds, state.Transfer{
			Kind: state.TransferRefund, Round: round, From: addr, To: addr, Amount: amount,
		})
		toDelete = append(toDelete, append([]byte{}, it.Key()...))
	}
	if err := it.Error(); err != nil {
		it.Close()
		return nil, err
	}
	it.Close()

	if len(refunds) == 0 {
		return refunds, nil
	}

	batch := kv.kvDB.NewBatch()
	defer batch.Close()
	if err := kv.applyTransfers(batch, refunds); err != nil {
		return nil, err
	}
	for _, key := range toDelete {
		if err := batch.Delete(key); err != nil {
			return nil, err
		}
	}
	if err := batch.WriteSync(); err != nil {
		return nil, errors.Wrap(err, "write stranded refunds")
	}
	return refunds, nil
}

// Balance implements state.Ledger
func (kv *KVStore) Balance(addr types.Address) (*uint256.Int, error) {
	return kv.getAmount(balanceKey(addr))
}

// Withdraw implements state.Ledger
func (kv *KVStore) Withdraw(addr types.Address) (*uint256.Int, error) {
	kv.mtx.Lock()
	defer kv.mtx.Unlock()

	key := balanceKey(addr)
	bal, err := kv.getAmount(key)
	if err != nil {
		return nil, err
	}
	if bal.IsZero() {
		return bal, nil
	}
	if err := kv.kvDB.DeleteSync(key); err != nil {
		return nil, errors.Wrap(err, "withdraw balance")
	}
	return bal, nil
}

// Burned implements state.Ledger
func (kv *KVStore) Burned() (*uint256.Int, error) {
	return kv.getAmount([]byte(keyBurned))
}

// LoadOutcome implements state.Ledger
func (kv *KVStore) LoadOutcome(round types.RoundID) (*types.Outcome, error) {
	bz, err := kv.kvDB.Get(outcomeKey(round))
	if err != nil {
		return nil, errors.Wrap(err, "load outcome")
	}
	if bz == nil {
		return nil, nil
	}
	return decodeOutcome(bz)
}

// LastSettledRound implements state.Ledger
func (kv *KVStore) LastSettledRound() (types.RoundID, error) {
	bz, err := kv.kvDB.Get([]byte(keyLastRound))
	if err != nil {
		return types.RoundIDZero, errors.Wrap(err, "load last settled round")
	}
	if bz == nil {
		return types.RoundIDZero, nil
	}
	return types.RoundID(byte2int(bz)), nil
}

// Outcomes implements state.Ledger
func (kv *KVStore) Outcomes(limit int) ([]*types.Outcome, error) {
	start := []byte(tableOutcome)
	it, err := kv.kvDB.ReverseIterator(start, prefixEnd(start))
	if err != nil {
		return nil, errors.Wrap(err, "iterate outcomes")
	}
	defer it.Close()

	outcomes := []*types.Outcome{}
	for ; it.Valid(); it.Next() {
		if limit > 0 && len(outcomes) >= limit {
			break
		}
		o, err := decodeOutcome(it.Value())
		if err != nil {
			return nil, err
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, it.Error()
}

// applyTransfers 把转账按账户汇总后写入batch，同一个账户在一个batch里只写一次
func (kv *KVStore) applyTransfers(batch tmdb.Batch, transfers []state.Transfer) error {
	credits := make(map[types.Address]*uint256.Int)
	order := []types.Address{}
	burned := types.ZeroAmount()

	for _, t := range transfers {
		if t.IsBurn() {
			burned.Add(burned, t.Amount)
			continue
		}
		credit, ok := credits[t.To]
		if !ok {
			credit = types.ZeroAmount()
			credits[t.To] = credit
			order = append(order, t.To)
		}
		credit.Add(credit, t.Amount)
	}

	for _, addr := range order {
		key := balanceKey(addr)
		bal, err := kv.getAmount(key)
		if err != nil {
			return err
		}
		bal.Add(bal, credits[addr])
		if err := batch.Set(key, amountBytes(bal)); err != nil {
			return err
		}
	}

	if !burned.IsZero() {
		total, err := kv.getAmount([]byte(keyBurned))
		if err != nil {
			return err
		}
		total.Add(total, burned)
		if err := batch.Set([]byte(keyBurned), amountBytes(total)); err != nil {
			return err
		}
	}
	return nil
}

// releaseRound 删除一轮所有的押金记录
func (kv *KVStore) releaseRound(batch tmdb.Batch, round types.RoundID) error {
	it, err := tmdb.IteratePrefix(kv.kvDB, escrowRoundPrefix(round))
	if err != nil {
		return errors.Wrap(err, "iterate escrow")
	}
	defer it.Close()

	for ; it.Valid(); it.Next() {
		if err := batch.Delete(append([]byte{}, it.Key()...)); err != nil {
			return err
		}
	}
	return it.Error()
}

func (kv *KVStore) getAmount(key []byte) (*uint256.Int, error) {
	bz, err := kv.kvDB.Get(key)
	if err != nil {
		return nil, errors.Wrapf(err, "get %s", key)
	}
	if bz == nil {
		return types.ZeroAmount(), nil
	}
	return parseAmount(bz)
}

func decodeOutcome(bz []byte) (*types.Outcome, error) {
	o := new(types.Outcome)
	if err := jsoniter.Unmarshal(bz, o); err != nil {
		return nil, errors.Wrap(err, "decode outcome")
	}
	return o, nil
}

// ----- keys -----

func escrowRoundPrefix(round types.RoundID) []byte {
	return genKey(tableEscrow, fmt.Sprintf("%020d/", round.Int64()))
}

func escrowKey(round types.RoundID, addr types.Address) []byte {
	return genKey(tableEscrow, fmt.Sprintf("%020d/%s", round.Int64(), addr.Hex()))
}

func parseEscrowKey(key []byte) (types.RoundID, types.Address, error) {
	rest := bytes.TrimPrefix(key, []byte(tableEscrow))
	parts := bytes.SplitN(rest, []byte("/"), 2)
	if len(parts) != 2 {
		return types.RoundIDZero, types.ZeroAddress, fmt.Errorf("malformed escrow key %q", key)
	}
	round, err := strconv.ParseInt(string(parts[0]), 10, 64)
	if err != nil {
		return types.RoundIDZero, types.ZeroAddress, errors.Wrapf(err, "malformed escrow key %q", key)
	}
	addr, err := types.ParseAddress(string(parts[1]))
	if err != nil {
		return types.RoundIDZero, types.ZeroAddress, errors.Wrapf(err, "malformed escrow key %q", key)
	}
	return types.RoundID(round), addr, nil
}

func balanceKey(addr types.Address) []byte {
	return genKey(tableBalance, addr.Hex())
}

func outcomeKey(round types.RoundID) []byte {
	return genKey(tableOutcome, fmt.Sprintf("%020d", round.Int64()))
}

func genKey(table string, primaryKey string) []byte {
	buffer := new(bytes.Buffer)
	buffer.WriteString(table)
	buffer.WriteString(primaryKey)
	return buffer.Bytes()
}

// prefixEnd 返回前缀区间的上界（不包含）
func prefixEnd(prefix []byte) []byte {
	end := append([]byte{}, prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}

func byte2int(src []byte) int64 {
	v, _ := strconv.ParseInt(string(src), 10, 64)
	return v
}

func int2byte(src int64) []byte {
	return []byte(strconv.FormatInt(src, 10))
}

func amountBytes(v *uint256.Int) []byte {
	return []byte(types.FormatAmount(v))
}

func parseAmount(bz []byte) (*uint256.Int, error) {
	v, err := types.ParseAmount(string(bz))
	if err != nil {
		return nil, errors.Wrap(err, "decode amount")
	}
	return v, nil
}
