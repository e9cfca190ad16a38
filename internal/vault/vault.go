// Package vault 列出 Kiln 提供的 ERC-4626 金库地址。
package vault

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Vault 描述一个金库：所属协议、底层资产和合约地址。
type Vault struct {
	Protocol string `json:"protocol"`
	Asset    string `json:"asset"`
	Address  string `json:"address"`
}

// 地址保持原样，包括 Compound 地址的大小写。
var vaults = []Vault{
	{Protocol: "Aave v3", Asset: "USDC", Address: "0xdea01fc5289af2c440ca65582e3c44767c0fcf08"},
	{Protocol: "Aave v3", Asset: "USDC", Address: "0x9b80443f910832a6eed6cef5b95bd9d1dae424b5"},
	{Protocol: "Aave v3", Asset: "USDC", Address: "0x682cfc8a3d956fba2c40791ec8d5a49e13baafbd"},
	{Protocol: "Aave v3", Asset: "USDC", Address: "0x85fbdc49b2e7b9e07468733873c8f199fc44259f"},
	{Protocol: "Compound v3", Asset: "USDC", Address: "0xf3a9A790f84B2E0301069BE589fc976Cf3eB5661"},
}

// List 返回金库列表的副本。
func List() []Vault {
	return append([]Vault(nil), vaults...)
}

// Validate 检查地址是否为合法的 20 字节十六进制地址。
func (v Vault) Validate() error {
	if !common.IsHexAddress(v.Address) {
		return fmt.Errorf("vault %s %s has an invalid address %q", v.Protocol, v.Asset, v.Address)
	}
	return nil
}

// Checksum 返回 EIP-55 校验和格式的地址。
func (v Vault) Checksum() string {
	return common.HexToAddress(v.Address).Hex()
}

// ValidateAll 依次校验列表中的每个金库，返回第一个错误。
func ValidateAll(list []Vault) error {
	for _, v := range list {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}
