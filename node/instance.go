package node

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"energy_auction/config"
)

const Version = "0.1.0"

// InstanceInfo 描述一个部署实例
type InstanceInfo struct {
	Instance   string
	Version    string
	DeployedAt time.Time
	RPCAddress string
}

// NewInstanceInfo 没有部署记录时使用临时实例名
func NewInstanceInfo(d *config.Deployment, laddr string) (InstanceInfo, error) {
	info := InstanceInfo{
		Version:    Version,
		RPCAddress: removeProtocolIfDefined(laddr),
	}
	if d != nil {
		info.Instance = d.Instance
		info.DeployedAt = d.DeployedAt
	} else {
		info.Instance = "ephemeral"
		info.DeployedAt = time.Now().UTC().Truncate(time.Second)
	}
	return info, info.Validate()
}

func (info InstanceInfo) Validate() error {
	if info.Instance == "" {
		return errors.New("instance name is empty")
	}
	if strings.ContainsAny(info.Instance, " \t\n") {
		return fmt.Errorf("instance name %q must not contain whitespace", info.Instance)
	}
	if info.RPCAddress == "" {
		return errors.New("rpc address is empty")
	}
	return nil
}

func (info InstanceInfo) String() string {
	return fmt.Sprintf("%s@%s (v%s)", info.Instance, info.RPCAddress, info.Version)
}

func removeProtocolIfDefined(addr string) string {
	if strings.Contains(addr, "://") {
		return strings.Split(addr, "://")[1]
	}
	return addr

}
