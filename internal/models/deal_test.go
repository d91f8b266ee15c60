package models

import "testing"

func TestDeal_IsNoDeal(t *testing.T) {
	if !NoDeal.IsNoDeal() {
		t.Fatal("NoDeal should report IsNoDeal() == true")
	}

	d := Deal{CycleID: "c1", StartQty: 100, ExpectedProfit: 0.02}
	if d.IsNoDeal() {
		t.Fatal("a deal with finite profit should not be IsNoDeal()")
	}
}
