package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	tmos "github.com/tendermint/tendermint/libs/os"

	"energy_auction/state"
	"energy_auction/types"
)

const (
	DefaultDirName    = ".energy_auction"
	defaultConfigDir  = "config"
	defaultDataDir    = "data"
	defaultConfigFile = "config.toml"
	defaultEnvFile    = ".env"

	DBBackendGoLevelDB = "goleveldb"
	DBBackendMemDB     = "memdb"

	DefaultLogLevel = "info"

	// 演示用的收款地址，部署时应该替换
	defaultProceedsAddress = "0x00000000000000000000000000000000000000e1"
)

// Config 节点的全部配置
type Config struct {
	BaseConfig `mapstructure:",squash"`

	Auction *AuctionConfig `mapstructure:"auction"`
	RPC     *RPCConfig     `mapstructure:"rpc"`
}

func DefaultConfig() *Config {
	return &Config{
		BaseConfig: DefaultBaseConfig(),
		Auction:    DefaultAuctionConfig(),
		RPC:        DefaultRPCConfig(),
	}
}

// TestConfig 测试使用，时间都很短，数据放在内存里
func TestConfig() *Config {
	return &Config{
		BaseConfig: TestBaseConfig(),
		Auction:    TestAuctionConfig(),
		RPC:        TestRPCConfig(),
	}
}

// SetRoot 设置根目录
func (cfg *Config) SetRoot(root string) *Config {
	cfg.BaseConfig.RootDir = root
	return cfg
}

func (cfg *Config) ValidateBasic() error {
	if err := cfg.BaseConfig.ValidateBasic(); err != nil {
		return err
	}
	if err := cfg.Auction.ValidateBasic(); err != nil {
		return errors.Wrap(err, "error in [auction] section")
	}
	if err := cfg.RPC.ValidateBasic(); err != nil {
		return errors.Wrap(err, "error in [rpc] section")
	}
	return nil
}

//-----------------------------------------------------------------------------
// BaseConfig

type BaseConfig struct {
	// 根目录
	RootDir string `mapstructure:"home"`

	// 数据库后端 goleveldb | memdb
	DBBackend string `mapstructure:"db_backend"`

	// 数据库目录，相对于根目录
	DBPath string `mapstructure:"db_dir"`

	LogLevel string `mapstructure:"log_level"`

	// 部署信息文件，相对于根目录
	EnvFile string `mapstructure:"env_file"`
}

func DefaultBaseConfig() BaseConfig {
	return BaseConfig{
		DBBackend: DBBackendGoLevelDB,
		DBPath:    defaultDataDir,
		LogLevel:  DefaultLogLevel,
		EnvFile:   defaultEnvFile,
	}
}

func TestBaseConfig() BaseConfig {
	cfg := DefaultBaseConfig()
	cfg.DBBackend = DBBackendMemDB
	return cfg
}

func (cfg BaseConfig) ValidateBasic() error {
	switch cfg.DBBackend {
	case DBBackendGoLevelDB, DBBackendMemDB:
	default:
		return types.InvalidConfiguration("unknown db_backend %q", cfg.DBBackend)
	}
	if cfg.LogLevel == "" {
		return types.InvalidConfiguration("log_level is empty")
	}
	return nil
}

func (cfg BaseConfig) DBDir() string {
	return rootify(cfg.DBPath, cfg.RootDir)
}

func (cfg BaseConfig) EnvFilePath() string {
	return rootify(cfg.EnvFile, cfg.RootDir)
}

func (cfg BaseConfig) ConfigFilePath() string {
	return filepath.Join(cfg.RootDir, defaultConfigDir, defaultConfigFile)
}

//-----------------------------------------------------------------------------
// AuctionConfig

// AuctionConfig 拍卖参数，没有内置的生产默认值，部署时通过deploy命令指定
type AuctionConfig struct {
	BiddingTime    time.Duration `mapstructure:"bidding_time"`
	RevealTime     time.Duration `mapstructure:"reveal_time"`
	NextRoundDelay time.Duration `mapstructure:"next_round_delay"`
	EnergyAmount   uint64        `mapstructure:"energy_amount"`

	// 成交价的收款地址
	ProceedsAddress string `mapstructure:"proceeds_address"`

	// 未揭示者押金的去向 burn | treasury
	ForfeitSink string `mapstructure:"forfeit_sink"`

	// ForfeitSink为treasury时的收款地址
	TreasuryAddress string `mapstructure:"treasury_address"`
}

func DefaultAuctionConfig() *AuctionConfig {
	return &AuctionConfig{
		BiddingTime:     60 * time.Second,
		RevealTime:      30 * time.Second,
		NextRoundDelay:  10 * time.Second,
		EnergyAmount:    100,
		ProceedsAddress: defaultProceedsAddress,
		ForfeitSink:     state.ForfeitBurn.String(),
	}
}

func TestAuctionConfig() *AuctionConfig {
	cfg := DefaultAuctionConfig()
	cfg.BiddingTime = 200 * time.Millisecond
	cfg.RevealTime = 100 * time.Millisecond
	cfg.NextRoundDelay = 50 * time.Millisecond
	return cfg
}

func (cfg *AuctionConfig) ValidateBasic() error {
	if err := cfg.Params().ValidateBasic(); err != nil {
		return err
	}
	_, err := cfg.Sinks()
	return err
}

// Params 转换成状态机使用的参数
func (cfg *AuctionConfig) Params() types.Params {
	return types.Params{
		BiddingTime:    cfg.BiddingTime,
		RevealTime:     cfg.RevealTime,
		NextRoundDelay: cfg.NextRoundDelay,
		EnergyAmount:   cfg.EnergyAmount,
	}
}

// Sinks 解析收款和罚没地址
func (cfg *AuctionConfig) Sinks() (state.Sinks, error) {
	var sinks state.Sinks

	proceeds, err := types.ParseAddress(cfg.ProceedsAddress)
	if err != nil {
		return sinks, types.InvalidConfiguration("proceeds_address: %v", err)
	}
	policy, err := state.ParseForfeitPolicy(cfg.ForfeitSink)
	if err != nil {
		return sinks, err
	}
	sinks.Proceeds = proceeds
	sinks.Forfeit = policy

	if cfg.TreasuryAddress != "" {
		treasury, err := types.ParseAddress(cfg.TreasuryAddress)
		if err != nil {
			return sinks, types.InvalidConfiguration("treasury_address: %v", err)
		}
		sinks.Treasury = treasury
	}
	return sinks, sinks.ValidateBasic()
}

// ApplyDeployment 用部署信息覆盖拍卖参数
func (cfg *AuctionConfig) ApplyDeployment(d *Deployment) {
	cfg.BiddingTime = d.BiddingTime
	cfg.RevealTime = d.RevealTime
	cfg.NextRoundDelay = d.NextRoundDelay
	if d.EnergyAmount > 0 {
		cfg.EnergyAmount = d.EnergyAmount
	}
}

//-----------------------------------------------------------------------------
// RPCConfig

type RPCConfig struct {
	// 监听地址，例如 tcp://127.0.0.1:26680
	ListenAddress string `mapstructure:"laddr"`

	// 最大连接数，0表示不限制
	MaxOpenConnections int `mapstructure:"max_open_connections"`
}

func DefaultRPCConfig() *RPCConfig {
	return &RPCConfig{
		ListenAddress:      "tcp://127.0.0.1:26680",
		MaxOpenConnections: 900,
	}
}

func TestRPCConfig() *RPCConfig {
	cfg := DefaultRPCConfig()
	cfg.ListenAddress = "tcp://127.0.0.1:0"
	return cfg
}

func (cfg *RPCConfig) ValidateBasic() error {
	if cfg.MaxOpenConnections < 0 {
		return types.InvalidConfiguration("max_open_connections can't be negative")
	}
	return nil
}

//-----------------------------------------------------------------------------
// 文件

// EnsureRoot 创建根目录、配置目录和数据目录
func EnsureRoot(rootDir string) error {
	for _, dir := range []string{rootDir, filepath.Join(rootDir, defaultConfigDir), filepath.Join(rootDir, defaultDataDir)} {
		if err := tmos.EnsureDir(dir, 0700); err != nil {
			return errors.Wrap(err, "create directory")
		}
	}
	return nil
}

// WriteConfigFile 把配置写成toml
func WriteConfigFile(path string, cfg *Config) error {
	v := viper.New()
	v.SetConfigType("toml")

	v.Set("db_backend", cfg.DBBackend)
	v.Set("db_dir", cfg.DBPath)
	v.Set("log_level", cfg.LogLevel)
	v.Set("env_file", cfg.EnvFile)

	v.Set("auction.bidding_time", cfg.Auction.BiddingTime.String())
	v.Set("auction.reveal_time", cfg.Auction.RevealTime.String())
	v.Set("auction.next_round_delay", cfg.Auction.NextRoundDelay.String())
	v.Set("auction.energy_amount", int64(cfg.Auction.EnergyAmount))
	v.Set("auction.proceeds_address", cfg.Auction.ProceedsAddress)
	v.Set("auction.forfeit_sink", cfg.Auction.ForfeitSink)
	v.Set("auction.treasury_address", cfg.Auction.TreasuryAddress)

	v.Set("rpc.laddr", cfg.RPC.ListenAddress)
	v.Set("rpc.max_open_connections", int64(cfg.RPC.MaxOpenConnections))

	if err := v.WriteConfigAs(path); err != nil {
		return errors.Wrapf(err, "write config file %s", path)
	}
	return nil
}

// LoadConfigFile 读取toml配置，文件中没有的字段使用默认值
func LoadConfigFile(path string) (*Config, error) {
	if !tmos.FileExists(path) {
		return nil, fmt.Errorf("config file %s does not exist", path)
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "read config file %s", path)
	}
	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	return cfg, nil
}

func rootify(path, root string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if root == "" {
		root, _ = os.Getwd()
	}
	return filepath.Join(root, path)
}
