package planning

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestClassifyAbcParetoCuts(t *testing.T) {
	items := []AbcItem{
		{ProductID: "p-head", ConsumptionValue: decimal.NewFromInt(800)},
		{ProductID: "p-mid", ConsumptionValue: decimal.NewFromInt(120)},
		{ProductID: "p-tail-1", ConsumptionValue: decimal.NewFromInt(50)},
		{ProductID: "p-tail-2", ConsumptionValue: decimal.NewFromInt(30)},
	}

	classes := ClassifyAbc(items)

	want := map[string]string{
		"p-head":   "A",
		"p-mid":    "B",
		"p-tail-1": "C",
		"p-tail-2": "C",
	}
	for productID, class := range want {
		if classes[productID] != class {
			t.Fatalf("class[%s] = %q, want %q", productID, classes[productID], class)
		}
	}
}

func TestClassifyAbcCutIsInclusive(t *testing.T) {
	// Exactly 80 % cumulative share stays in class A.
	items := []AbcItem{
		{ProductID: "p-1", ConsumptionValue: decimal.NewFromInt(80)},
		{ProductID: "p-2", ConsumptionValue: decimal.NewFromInt(20)},
	}

	classes := ClassifyAbc(items)

	if classes["p-1"] != "A" {
		t.Fatalf("class[p-1] = %q, want A at the 80%% boundary", classes["p-1"])
	}
	if classes["p-2"] != "C" {
		t.Fatalf("class[p-2] = %q, want C", classes["p-2"])
	}
}

func TestClassifyAbcZeroValueCatalog(t *testing.T) {
	items := []AbcItem{
		{ProductID: "p-1", ConsumptionValue: decimal.Zero},
		{ProductID: "p-2", ConsumptionValue: decimal.Zero},
	}

	classes := ClassifyAbc(items)

	for productID, class := range classes {
		if class != "C" {
			t.Fatalf("class[%s] = %q, want C for a zero-value catalog", productID, class)
		}
	}
}

func TestClassifyXyz(t *testing.T) {
	cases := []struct {
		name   string
		mean   float64
		stdDev float64
		want   string
	}{
		{"steady", 10, 4, "X"},
		{"variable", 10, 6, "Y"},
		{"erratic", 10, 12, "Z"},
		{"no demand", 0, 5, "Z"},
	}
	for _, tc := range cases {
		if got := ClassifyXyz(tc.mean, tc.stdDev); got != tc.want {
			t.Errorf("%s: ClassifyXyz(%v, %v) = %q, want %q", tc.name, tc.mean, tc.stdDev, got, tc.want)
		}
	}
}
