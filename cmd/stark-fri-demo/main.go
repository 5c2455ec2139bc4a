// Command stark-fri-demo runs one end-to-end FRI prove/verify round trip
// and reports the outcome. It exists to exercise the library the way an
// outer STARK composition would: build a field and coset, evaluate a
// low-degree polynomial on it, commit-fold-query with Fri.Prove, then
// replay the transcript with Fri.Verify.
package main

import (
	"fmt"
	"math/big"
	"os"

	"github.com/halcyon-zk/stark-fri/internal/starkfri/channel"
	"github.com/halcyon-zk/stark-fri/internal/starkfri/core"
	"github.com/halcyon-zk/stark-fri/internal/starkfri/fri"
)

func main() {
	// Field and coset from spec.md's E1 scenario.
	modulus, _ := new(big.Int).SetString("1", 10)
	modulus.Add(modulus, new(big.Int).Lsh(big.NewInt(407), 119))
	generator, _ := new(big.Int).SetString("85408008396924667383611388730472331217", 10)

	field, err := core.NewField(modulus, generator)
	if err != nil {
		fatal(fmt.Sprintf("failed to build field: %v", err))
	}

	const (
		domainLen = 8192
		rho       = 2
		s         = 10
	)

	offset := field.NewElement(generator)
	omega, err := field.Generator(domainLen)
	if err != nil {
		fatal(fmt.Sprintf("failed to derive omega: %v", err))
	}

	logStderr(fmt.Sprintf("building FRI instance: N=%d, rho=%d, s=%d", domainLen, rho, s))
	f, err := fri.New(field, offset, omega, domainLen, rho, s)
	if err != nil {
		fatal(fmt.Sprintf("failed to build FRI instance: %v", err))
	}
	logStderr(fmt.Sprintf("derived round count: %d", f.RoundCount()))

	// Codeword: evaluations of 3*x^2 on the coset.
	three := field.NewElementFromInt64(3)
	domain := f.Domain()
	codeword := make([]*core.FieldElement, len(domain))
	for i, x := range domain {
		codeword[i] = three.Mul(x.Mul(x))
	}

	ch := channel.New(field)

	logStderr("proving...")
	topIndices, err := f.Prove(codeword, ch)
	if err != nil {
		fatal(fmt.Sprintf("prove failed: %v", err))
	}
	logStderr(fmt.Sprintf("prove succeeded: sampled %d top-level indices", len(topIndices)))

	logStderr("verifying...")
	openings, err := f.Verify(ch)
	if err != nil {
		fatal(fmt.Sprintf("verify failed: %v", err))
	}

	fmt.Printf("proof verified: %d round-0 openings\n", len(openings))
}

func logStderr(msg string) {
	fmt.Fprintln(os.Stderr, "stark-fri-demo:", msg)
}

func fatal(msg string) {
	logStderr("ERROR: " + msg)
	os.Exit(1)
}
