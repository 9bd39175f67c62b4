package usecase

import (
	"math"
	"sort"
)

// Catalog tiers for RAM (GB) and storage (GB, with both decimal and binary TB spellings).
var (
	RAMTiers     = []int{8, 16, 32, 64, 128}
	StorageTiers = []int{256, 512, 1000, 1024, 2000, 2048, 4000, 4096, 8000, 8192}
)

// storageEquivalence holds the sizes the catalog encodes inconsistently.
var storageEquivalence = [][]int{
	{1000, 1024},
	{2000, 2048},
	{4000, 4096},
	{8000, 8192},
}

// ResolveTiers expands a requested amount into the catalog tiers that satisfy it.
//
// With minimum semantics every tier >= requested is returned. With exact semantics
// a known tier resolves to itself plus the members of its equivalence class that
// are also in tiers, and anything else resolves to nil. Non-positive or non-finite input
// resolves to nil, which callers treat as "no constraint".
func ResolveTiers(requested float64, isMinimum bool, tiers []int) []int {
	if math.IsNaN(requested) || math.IsInf(requested, 0) || requested <= 0 {
		return nil
	}

	if isMinimum {
		var out []int
		for _, t := range tiers {
			if float64(t) >= requested {
				out = append(out, t)
			}
		}
		return out
	}

	if requested != math.Trunc(requested) {
		return nil
	}
	v := int(requested)
	if !containsTier(tiers, v) {
		return nil
	}
	for _, class := range storageEquivalence {
		if !containsTier(class, v) {
			continue
		}
		var out []int
		for _, member := range class {
			if containsTier(tiers, member) {
				out = append(out, member)
			}
		}
		sort.Ints(out)
		return out
	}
	return []int{v}
}

func containsTier(tiers []int, v int) bool {
	for _, t := range tiers {
		if t == v {
			return true
		}
	}
	return false
}
