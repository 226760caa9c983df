package service

import (
	"testing"

	"github.com/evmscope/evmscope/internal/abicodec"
	"github.com/evmscope/evmscope/internal/convert"
)

func TestKeccakTextInput(t *testing.T) {
	got, err := Keccak([]string{"transfer(address,uint256)"}, "text")
	if err != nil {
		t.Fatalf("Keccak: %v", err)
	}
	want := "0x" + abicodec.Selector("transfer(address,uint256)")
	if got[:10] != want {
		t.Fatalf("keccak selector mismatch: got %q, want prefix %q", got, want)
	}
}

func TestKeccakRejectsUnknownInputType(t *testing.T) {
	if _, err := Keccak([]string{"x"}, "weird"); err == nil {
		t.Fatal("expected error for unknown inputType")
	}
}

func TestConvertDelegatesToConvertPackage(t *testing.T) {
	result, err := Convert("1000000000000000000", convert.UnitWei, convert.UnitEth, 18)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if result.Value != "1" {
		t.Fatalf("value = %q, want 1", result.Value)
	}
}
