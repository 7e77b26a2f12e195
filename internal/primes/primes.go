// Package primes implements the busy-work workload the demo service measures:
// one memory-hungry way (a sieve) and one CPU-hungry way (trial division) of
// discovering primes, giving the resource counters something to count.
package primes

// Sieve returns all primes <= limit, found with a sieve of Eratosthenes. The
// candidate array makes this deliberately allocation-heavy for large limits.
func Sieve(limit int) []int {
	if limit < 2 {
		return nil
	}

	composite := make([]bool, limit+1)
	found := 0
	for i := 2; i*i <= limit; i++ {
		if composite[i] {
			continue
		}
		for j := i * i; j <= limit; j += i {
			composite[j] = true
		}
	}
	for i := 2; i <= limit; i++ {
		if !composite[i] {
			found++
		}
	}

	out := make([]int, 0, found)
	for i := 2; i <= limit; i++ {
		if !composite[i] {
			out = append(out, i)
		}
	}
	return out
}

// IsPrime is a 6k±1 trial-division primality test.
func IsPrime(n int) bool {
	if n <= 1 {
		return false
	}
	if n <= 3 {
		return true
	}
	if n%2 == 0 || n%3 == 0 {
		return false
	}
	for i := 5; i*i <= n; i += 6 {
		if n%i == 0 || n%(i+2) == 0 {
			return false
		}
	}
	return true
}
