package identity

import "testing"

func TestComputeTokenID_Deterministic(t *testing.T) {
	a := ComputeTokenID("DAPP Token", "DAPP", "creator1", 0, 1704067200000)
	b := ComputeTokenID("DAPP Token", "DAPP", "creator1", 0, 1704067200000)
	if a != b {
		t.Errorf("same inputs produced different IDs: %s vs %s", a, b)
	}
	if a == "" {
		t.Error("empty token ID")
	}
}

func TestComputeTokenID_Distinct(t *testing.T) {
	base := ComputeTokenID("DAPP Token", "DAPP", "creator1", 0, 1704067200000)

	variants := []string{
		ComputeTokenID("DAPP Token!", "DAPP", "creator1", 0, 1704067200000),
		ComputeTokenID("DAPP Token", "DAP2", "creator1", 0, 1704067200000),
		ComputeTokenID("DAPP Token", "DAPP", "creator2", 0, 1704067200000),
		ComputeTokenID("DAPP Token", "DAPP", "creator1", 1, 1704067200000),
		ComputeTokenID("DAPP Token", "DAPP", "creator1", 0, 1704067200001),
	}

	for i, v := range variants {
		if v == base {
			t.Errorf("variant %d collided with base ID", i)
		}
	}
}
