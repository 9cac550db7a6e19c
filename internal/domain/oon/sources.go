package oon

import "strings"

// DefaultCredentialing is the payer list the practice is contracted with
// when the caller does not send one.
var DefaultCredentialing = []string{
	"DELTA_PPO",
	"CIGNA",
	"AETNA_DMO",
	"GUARDIAN",
	"METLIFE",
	"BCBS",
	"UHC",
}

// ClaimHistory returns allowed amounts from past remittances for a payer
// and procedure code.
type ClaimHistory interface {
	AllowedAmounts(payerID, procedureCode string) []int64
}

// FeeSchedule returns a payer's maximum allowable charge for a code.
type FeeSchedule interface {
	MaxAllowable(payerID, procedureCode string) (int64, bool)
}

type feeKey struct {
	payer string
	code  string
}

func keyOf(payerID, procedureCode string) feeKey {
	return feeKey{strings.ToUpper(strings.TrimSpace(payerID)), strings.ToUpper(strings.TrimSpace(procedureCode))}
}

// StaticClaimHistory is an in-memory remittance history.
type StaticClaimHistory map[feeKey][]int64

func (h StaticClaimHistory) AllowedAmounts(payerID, procedureCode string) []int64 {
	return h[keyOf(payerID, procedureCode)]
}

// StaticFeeSchedule is an in-memory MAC schedule.
type StaticFeeSchedule map[feeKey]int64

func (s StaticFeeSchedule) MaxAllowable(payerID, procedureCode string) (int64, bool) {
	v, ok := s[keyOf(payerID, procedureCode)]
	return v, ok
}

// SandboxClaimHistory holds the remittance history shipped with the
// sandbox.
func SandboxClaimHistory() StaticClaimHistory {
	return StaticClaimHistory{
		{"HUMANA", "D2750"}:   {99200, 97500, 98800, 100500, 96200, 98000, 95800},
		{"HUMANA", "D2391"}:   {32000, 31500, 32800},
		{"HUMANA", "D1110"}:   {8500, 9000, 8800},
		{"HUMANA", "D4341"}:   {19800, 20500, 20200},
		{"TRICARE", "D2750"}:  {85000, 86000, 85500},
		{"TRICARE", "D2391"}:  {29000, 29500},
		{"MEDICAID", "D1110"}: {5500, 5800, 5700},
	}
}

// SandboxFeeSchedule holds the portal MAC figures shipped with the sandbox.
func SandboxFeeSchedule() StaticFeeSchedule {
	return StaticFeeSchedule{
		{"HUMANA", "D2750"}:   94000,
		{"HUMANA", "D2391"}:   30500,
		{"HUMANA", "D1110"}:   8200,
		{"HUMANA", "D4341"}:   19500,
		{"TRICARE", "D2750"}:  84000,
		{"MEDICAID", "D1110"}: 5400,
		{"AMERITAS", "D2750"}: 91000,
	}
}
