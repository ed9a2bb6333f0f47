package vector

import (
	"errors"
	"math"
	"testing"
)

func TestAgreementIdentical(t *testing.T) {
	dist := map[string]int{"GB": 3, "US": 1}
	got, err := Agreement(dist, dist)
	if err != nil {
		t.Fatal(err)
	}
	if got != 100 {
		t.Errorf("Agreement(d, d) = %d, want 100", got)
	}
}

func TestAgreementScaleInvariant(t *testing.T) {
	a := map[string]int{"GB": 3, "US": 1}
	b := map[string]int{"GB": 6, "US": 2}
	got, err := Agreement(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if got != 100 {
		t.Errorf("Agreement(d, 2d) = %d, want 100", got)
	}
}

func TestAgreementSharedDictionary(t *testing.T) {
	// [3,1] vs [2,0] over the union dictionary {GB, US}:
	// cos = 6 / (sqrt(10) * 2) ~= 0.9487 -> floor(94.87) = 94.
	a := map[string]int{"GB": 3, "US": 1}
	b := map[string]int{"GB": 2}
	got, err := Agreement(a, b)
	if err != nil {
		t.Fatal(err)
	}
	want := int(math.Floor(100 * 6 / (math.Sqrt(10) * 2)))
	if got != want {
		t.Errorf("Agreement = %d, want %d", got, want)
	}
}

func TestAgreementDisjoint(t *testing.T) {
	a := map[string]int{"GB": 2}
	b := map[string]int{"JP": 5}
	got, err := Agreement(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0 {
		t.Errorf("Agreement(disjoint) = %d, want 0", got)
	}
}

func TestAgreementEmptyDistribution(t *testing.T) {
	full := map[string]int{"GB": 1}
	for _, empty := range []map[string]int{nil, {}, {"GB": 0}} {
		if _, err := Agreement(full, empty); !errors.Is(err, ErrEmptyDistribution) {
			t.Errorf("Agreement(full, %v) err = %v, want ErrEmptyDistribution", empty, err)
		}
		if _, err := Agreement(empty, full); !errors.Is(err, ErrEmptyDistribution) {
			t.Errorf("Agreement(%v, full) err = %v, want ErrEmptyDistribution", empty, err)
		}
	}
}

func TestAgreementSymmetric(t *testing.T) {
	a := map[string]int{"GB": 3, "US": 1, "DE": 2}
	b := map[string]int{"GB": 1, "FR": 4}
	ab, err := Agreement(a, b)
	if err != nil {
		t.Fatal(err)
	}
	ba, err := Agreement(b, a)
	if err != nil {
		t.Fatal(err)
	}
	if ab != ba {
		t.Errorf("Agreement not symmetric: %d vs %d", ab, ba)
	}
}
