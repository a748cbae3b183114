package reconcile_test

import (
	"testing"

	"stageflow/internal/reconcile"
)

func TestBandEvaluate(t *testing.T) {
	band := reconcile.DefaultBand()
	cases := []struct {
		name    string
		planned float64
		actual  float64
		want    bool
	}{
		{"exact", 1000, 1000, true},
		{"lower edge", 1000, 600, true},
		{"below lower edge", 1000, 599, false},
		{"upper edge", 1000, 1500, true},
		{"above upper edge", 1000, 1501, false},
		{"zero plan never met", 0, 0, false},
		{"negative plan never met", -10, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := band.Evaluate(tc.planned, tc.actual)
			if got.Met != tc.want {
				t.Fatalf("Evaluate(%v, %v) = %+v, want met=%v", tc.planned, tc.actual, got, tc.want)
			}
		})
	}

	got := band.Evaluate(1000, 1000)
	if got.Min != 600 || got.Max != 1500 {
		t.Fatalf("unexpected band bounds %+v", got)
	}
}

func TestEngineUsesConfiguredBand(t *testing.T) {
	tight := reconcile.Band{Lower: 10, Upper: 10}
	engine := reconcile.New(reconcile.Options{Band: &tight})
	if engine.Band() != tight {
		t.Fatalf("expected configured band, got %+v", engine.Band())
	}
	if reconcile.New(reconcile.Options{}).Band() != reconcile.DefaultBand() {
		t.Fatal("expected default band when none configured")
	}
}
