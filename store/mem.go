package store

import (
	"github.com/tendermint/tendermint/libs/log"
	"github.com/tendermint/tm-db/memdb"
)

// NewMemKVStore 基于内存数据库的账本，测试和一次性运行使用
func NewMemKVStore(logger log.Logger) *KVStore {
	return NewKVStoreWithDB(memdb.NewDB(), logger)
}
