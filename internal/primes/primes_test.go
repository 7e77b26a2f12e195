package primes

import "testing"

func TestSieve(t *testing.T) {
	tests := []struct {
		limit int
		want  []int
	}{
		{-5, nil},
		{0, nil},
		{1, nil},
		{2, []int{2}},
		{10, []int{2, 3, 5, 7}},
		{30, []int{2, 3, 5, 7, 11, 13, 17, 19, 23, 29}},
	}

	for _, tt := range tests {
		got := Sieve(tt.limit)
		if len(got) != len(tt.want) {
			t.Errorf("Sieve(%d) = %v, want %v", tt.limit, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Sieve(%d)[%d] = %d, want %d", tt.limit, i, got[i], tt.want[i])
			}
		}
	}
}

func TestIsPrime(t *testing.T) {
	tests := []struct {
		n    int
		want bool
	}{
		{-7, false},
		{0, false},
		{1, false},
		{2, true},
		{3, true},
		{4, false},
		{5, true},
		{25, false},
		{49, false},
		{97, true},
		{7919, true},
		{7920, false},
	}

	for _, tt := range tests {
		if got := IsPrime(tt.n); got != tt.want {
			t.Errorf("IsPrime(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}

// The sieve and the trial test must agree on every number they both cover.
func TestSieveAgreesWithIsPrime(t *testing.T) {
	const limit = 1000

	inSieve := make(map[int]bool)
	for _, p := range Sieve(limit) {
		inSieve[p] = true
	}

	for n := 0; n <= limit; n++ {
		if IsPrime(n) != inSieve[n] {
			t.Errorf("disagreement at %d: IsPrime=%v, sieve=%v", n, IsPrime(n), inSieve[n])
		}
	}
}
