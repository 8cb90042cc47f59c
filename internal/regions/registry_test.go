package regions_test

import (
	"testing"

	"toiletsync/internal/regions"
)

func TestDefault_OrderAndCounts(t *testing.T) {
	r := regions.Default()
	if r.Len() != 41 {
		t.Fatalf("expected 41 regions, got %d", r.Len())
	}
	all := r.All()
	if all[0].ID != "01" || all[0].Label != "Songshan" || all[0].CityName != "台北市" {
		t.Fatalf("unexpected first region: %+v", all[0])
	}
	if all[40].ID != "41" || all[40].City != "newtaipei" {
		t.Fatalf("unexpected last region: %+v", all[40])
	}
	if n := len(r.ByCity("taipei")); n != 12 {
		t.Fatalf("taipei: expected 12, got %d", n)
	}
	if n := len(r.ByCity("newtaipei")); n != 29 {
		t.Fatalf("newtaipei: expected 29, got %d", n)
	}
}

func TestByID(t *testing.T) {
	r := regions.Default()
	got, ok := r.ByID("03")
	if !ok || got.Name != "大安區" {
		t.Fatalf("ByID(03) = %+v, %v", got, ok)
	}
	if _, ok := r.ByID("99"); ok {
		t.Fatalf("expected 99 to be unknown")
	}
	if len(r.ByCity("kaohsiung")) != 0 {
		t.Fatalf("expected no regions for unknown city")
	}
}

func TestAll_ReturnsCopy(t *testing.T) {
	r := regions.Default()
	a := r.All()
	a[0].Name = "mutated"
	if r.All()[0].Name != "松山區" {
		t.Fatalf("registry was mutated through All()")
	}
}

func TestLoad_Rejects(t *testing.T) {
	cases := map[string]string{
		"empty":     `cities: []`,
		"duplicate": "cities:\n  - key: a\n    name: A\n    regions:\n      - {id: \"1\", name: x}\n      - {id: \"1\", name: y}\n",
		"no name":   "cities:\n  - key: a\n    name: A\n    regions:\n      - {id: \"1\"}\n",
		"no city":   "cities:\n  - key: \"\"\n    name: A\n",
		"bad yaml":  "cities: [",
	}
	for name, doc := range cases {
		if _, err := regions.Load([]byte(doc)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
