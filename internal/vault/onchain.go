package vault

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
)

// CodeReader 读取指定地址上部署的合约字节码，*ethclient.Client 满足该接口。
type CodeReader interface {
	CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error)
}

// Deployment 记录单个金库在链上的探测结果。
type Deployment struct {
	Vault
	Deployed bool   `json:"deployed"`
	CodeSize int    `json:"codeSize"`
	Error    string `json:"error,omitempty"`
}

// Dial 连接以太坊 RPC 节点。调用方负责 Close。
func Dial(ctx context.Context, rpcURL string) (*ethclient.Client, error) {
	rpcURL = strings.TrimSpace(rpcURL)
	if rpcURL == "" {
		return nil, errors.New("未配置以太坊 RPC 地址")
	}
	rpcClient, err := gethrpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("连接以太坊节点失败: %w", err)
	}
	return ethclient.NewClient(rpcClient), nil
}

// Probe 在最新区块上检查每个金库地址是否存在合约代码。
// 单个地址查询失败只记录在对应条目中，不中断其余探测。
func Probe(ctx context.Context, reader CodeReader, list []Vault) ([]Deployment, error) {
	if reader == nil {
		return nil, errors.New("code reader is nil")
	}
	out := make([]Deployment, 0, len(list))
	for _, v := range list {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		d := Deployment{Vault: v}
		if err := v.Validate(); err != nil {
			d.Error = err.Error()
			out = append(out, d)
			continue
		}
		code, err := reader.CodeAt(ctx, common.HexToAddress(v.Address), nil)
		if err != nil {
			d.Error = err.Error()
		} else {
			d.CodeSize = len(code)
			d.Deployed = len(code) > 0
		}
		out = append(out, d)
	}
	return out, nil
}
