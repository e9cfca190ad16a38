package vault

import (
	"strings"
	"testing"
)

func TestListIsFixed(t *testing.T) {
	list := List()
	if len(list) != 5 {
		t.Fatalf("expected 5 vaults, got %d", len(list))
	}
	if list[4].Protocol != "Compound v3" || list[4].Address != "0xf3a9A790f84B2E0301069BE589fc976Cf3eB5661" {
		t.Fatalf("unexpected last vault: %+v", list[4])
	}
	list[0].Address = "mutated"
	if List()[0].Address != "0xdea01fc5289af2c440ca65582e3c44767c0fcf08" {
		t.Fatalf("List must return a copy")
	}
}

func TestValidateAll(t *testing.T) {
	if err := ValidateAll(List()); err != nil {
		t.Fatalf("built-in vaults should be valid: %v", err)
	}
	bad := []Vault{{Protocol: "Aave v3", Asset: "USDC", Address: "0x1234"}}
	if err := ValidateAll(bad); err == nil {
		t.Fatalf("expected invalid address error")
	}
}

func TestChecksum(t *testing.T) {
	for _, v := range List() {
		sum := v.Checksum()
		if !strings.EqualFold(sum, v.Address) {
			t.Fatalf("checksum %s does not match %s", sum, v.Address)
		}
		if !strings.HasPrefix(sum, "0x") || len(sum) != 42 {
			t.Fatalf("unexpected checksum form %s", sum)
		}
	}
}
