// Package fri implements the FRI (Fast Reed-Solomon Interactive Oracle
// Proof) low-degree proximity protocol: commit-fold-query on the prover
// side, replay-and-check on the verifier side, mediated by a Fiat-Shamir
// channel and binary Merkle commitments.
package fri

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/zeebo/blake3"

	"github.com/halcyon-zk/stark-fri/internal/starkfri/channel"
	"github.com/halcyon-zk/stark-fri/internal/starkfri/core"
	"github.com/halcyon-zk/stark-fri/pkg/starkfri"
)

// Fri holds the construction-time parameters of one FRI instance: the
// evaluation coset, the round count derived from it, and the reusable
// inverse-domain precomputation the prover's folding step consumes every
// round instead of calling Inv per element.
type Fri struct {
	field                *core.Field
	offset               *core.FieldElement
	omega                *core.FieldElement
	domainLen            int
	expansionFactor      int
	colinearityTestCount int
	roundCount           int

	domain    []*core.FieldElement // offset * omega^i, i in [0, domainLen)
	invDomain []*core.FieldElement // (offset * omega^i)^-1, i in [0, domainLen)
	twoInv    *core.FieldElement
}

// QueryOpening is a (index, y) pair the verifier emits from round 0 of its
// query checks, letting an outer STARK tie trace commitments to FRI
// openings.
type QueryOpening struct {
	Index int
	Y     *core.FieldElement
}

// New builds a Fri instance. omega must be a primitive domainLen-th root of
// unity and domainLen a power of two; expansionFactor must be a power of
// two >= 2. offset is expected (but, consistent with the teacher's
// arithmetic layer, not verified by discrete log) to lie outside <omega>.
func New(field *core.Field, offset, omega *core.FieldElement, domainLen, expansionFactor, colinearityTestCount int) (*Fri, error) {
	if !isPowerOfTwo(domainLen) {
		return nil, starkfri.New(starkfri.ErrNotAPowerOfTwo, fmt.Sprintf("domain length %d must be a power of two", domainLen))
	}
	if !isPowerOfTwo(expansionFactor) || expansionFactor < 2 {
		return nil, fmt.Errorf("expansion factor must be a power of two >= 2, got %d", expansionFactor)
	}
	if !omega.ExpInt64(int64(domainLen)).IsOne() {
		return nil, starkfri.New(starkfri.ErrOmegaOrder, "omega^N != 1")
	}
	if omega.ExpInt64(int64(domainLen / 2)).IsOne() {
		return nil, starkfri.New(starkfri.ErrOmegaOrder, "omega^(N/2) == 1: not a primitive root")
	}

	domain := field.Domain(omega, offset, domainLen)
	invDomain, err := field.BatchInversion(domain)
	if err != nil {
		return nil, fmt.Errorf("failed to precompute inverse domain: %w", err)
	}
	twoInv, err := field.NewElementFromInt64(2).Inv()
	if err != nil {
		return nil, err
	}

	f := &Fri{
		field:                field,
		offset:               offset,
		omega:                omega,
		domainLen:            domainLen,
		expansionFactor:      expansionFactor,
		colinearityTestCount: colinearityTestCount,
		domain:               domain,
		invDomain:            invDomain,
		twoInv:               twoInv,
	}
	f.roundCount = roundCount(domainLen, expansionFactor, colinearityTestCount)
	return f, nil
}

// NewFromConfig is a convenience constructor reading parameters from a
// Config.
func NewFromConfig(field *core.Field, offset, omega *core.FieldElement, cfg *Config) (*Fri, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return New(field, offset, omega, cfg.DomainLen, cfg.ExpansionFactor, cfg.ColinearityTestCount)
}

// roundCount returns the largest r such that N/2^r > rho and 4s < N/2^r.
func roundCount(domainLen, expansionFactor, colinearityTestCount int) int {
	size := domainLen
	r := 0
	for size/2 > expansionFactor && 4*colinearityTestCount < size/2 {
		size /= 2
		r++
	}
	return r
}

// Domain returns the evaluation coset the codeword was produced over, so an
// outer STARK can evaluate its own polynomials on the same points.
func (f *Fri) Domain() []*core.FieldElement {
	out := make([]*core.FieldElement, len(f.domain))
	copy(out, f.domain)
	return out
}

// RoundCount returns the derived number of folding rounds.
func (f *Fri) RoundCount() int {
	return f.roundCount
}

// Prove runs the commit-fold-query protocol over codeword, absorbing and
// emitting messages through ch, and returns the sampled top-level query
// indices so the caller can reveal matching trace cells.
func (f *Fri) Prove(codeword []*core.FieldElement, ch *channel.Channel) ([]int, error) {
	if len(codeword) != f.domainLen {
		return nil, starkfri.New(starkfri.ErrLenMismatch, fmt.Sprintf("codeword length %d does not match domain length %d", len(codeword), f.domainLen))
	}

	r := f.roundCount
	layers := make([][]*core.FieldElement, r+1)
	trees := make([]*core.MerkleTree, r+1)
	alphas := make([]*core.FieldElement, r)

	layers[0] = codeword
	for i := 0; i <= r; i++ {
		tree, err := core.Commit(f.field, layers[i])
		if err != nil {
			return nil, err
		}
		trees[i] = tree
		if err := pushHash(ch, f.field, tree.Root()); err != nil {
			return nil, err
		}
		if i == r {
			break
		}
		alphas[i] = ch.ProverHash()
		layers[i+1] = f.fold(layers[i], i, alphas[i])
	}

	if err := ch.Push(layers[r]); err != nil {
		return nil, err
	}

	topSeed := ch.ProverHash().Big()
	topIndices, err := sampleIndices(topSeed, f.domainLen/2, f.domainLen>>uint(r), f.colinearityTestCount)
	if err != nil {
		return nil, err
	}

	for i := 0; i < r; i++ {
		halfLen := len(layers[i]) / 2
		for _, top := range topIndices {
			k := top % halfLen

			triple := []*core.FieldElement{layers[i][k], layers[i][k+halfLen], layers[i+1][k]}
			if err := ch.Push(triple); err != nil {
				return nil, err
			}

			pathA, err := trees[i].Open(k)
			if err != nil {
				return nil, err
			}
			pathB, err := trees[i].Open(k + halfLen)
			if err != nil {
				return nil, err
			}
			pathC, err := trees[i+1].Open(k)
			if err != nil {
				return nil, err
			}
			for _, path := range [][]core.PathNode{pathA, pathB, pathC} {
				if err := pushPath(ch, f.field, path); err != nil {
					return nil, err
				}
			}
		}
	}

	return topIndices, nil
}

// Verify replays the channel a prover produced via Prove, checking every
// Merkle path, every round's colinearity, and the final codeword's
// low-degree-ness, and returns the round-0 (index, y) openings.
func (f *Fri) Verify(ch *channel.Channel) ([]QueryOpening, error) {
	r := f.roundCount
	roots := make([][]byte, r+1)
	alphas := make([]*core.FieldElement, r)

	for i := 0; i <= r; i++ {
		root, err := pullHash(ch, f.field)
		if err != nil {
			return nil, err
		}
		roots[i] = root
		if i == r {
			break
		}
		alphas[i] = ch.VerifierHash()
	}

	lastMessage, err := ch.Pull()
	if err != nil {
		return nil, err
	}
	lastCodeword := lastMessage

	lastTree, err := core.Commit(f.field, lastCodeword)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(lastTree.Root(), roots[r]) {
		return nil, starkfri.New(starkfri.ErrLastRootMismatch, "final codeword's Merkle root disagrees with the last committed root")
	}

	degMax := len(lastCodeword)/f.expansionFactor - 1

	shift := int64(1) << uint(r)
	finalOmega := f.omega.ExpInt64(shift)
	finalOffset := f.offset.ExpInt64(shift)

	omegaInv, err := finalOmega.Inv()
	if err != nil {
		return nil, err
	}
	expectedInv := finalOmega.ExpInt64(int64(len(lastCodeword) - 1))
	if !omegaInv.Equal(expectedInv) {
		return nil, starkfri.New(starkfri.ErrOmegaOrder, "final omega does not have order equal to the final codeword length")
	}

	poly, err := core.InterpolateFFT(f.field, finalOmega, finalOffset, lastCodeword)
	if err != nil {
		return nil, err
	}
	reEvaluated, err := core.EvaluateFFT(f.field, finalOmega, finalOffset, poly)
	if err != nil {
		return nil, err
	}
	for i, y := range lastCodeword {
		if !reEvaluated[i].Equal(y) {
			return nil, starkfri.New(starkfri.ErrInterpDisagreement, "final codeword disagrees with its own FFT interpolation")
		}
	}
	if !poly.IsZero() && poly.Degree() > degMax {
		return nil, starkfri.New(starkfri.ErrInterpDegreeTooHigh, fmt.Sprintf("final polynomial has degree %d, exceeds bound %d", poly.Degree(), degMax))
	}

	topSeed := ch.VerifierHash().Big()
	topIndices, err := sampleIndices(topSeed, f.domainLen/2, f.domainLen>>uint(r), f.colinearityTestCount)
	if err != nil {
		return nil, err
	}

	var openings []QueryOpening

	for i := 0; i < r; i++ {
		halfLen := f.domainLen >> uint(i+1)
		shift := 1 << uint(i)
		levelsHere := log2(f.domainLen >> uint(i))
		levelsNext := log2(f.domainLen >> uint(i+1))

		for _, top := range topIndices {
			k := top % halfLen

			triple, err := ch.Pull()
			if err != nil {
				return nil, err
			}
			if len(triple) != 3 {
				return nil, fmt.Errorf("expected a 3-element query triple, got %d", len(triple))
			}

			pathA, err := pullPath(ch, f.field, levelsHere)
			if err != nil {
				return nil, err
			}
			pathB, err := pullPath(ch, f.field, levelsHere)
			if err != nil {
				return nil, err
			}
			pathC, err := pullPath(ch, f.field, levelsNext)
			if err != nil {
				return nil, err
			}

			checks := []struct {
				root  []byte
				index int
				path  []core.PathNode
				leaf  *core.FieldElement
			}{
				{roots[i], k, pathA, triple[0]},
				{roots[i], k + halfLen, pathB, triple[1]},
				{roots[i+1], k, pathC, triple[2]},
			}
			for _, c := range checks {
				ok, err := core.Verify(f.field, c.root, c.index, c.path, c.leaf)
				if err != nil || !ok {
					return nil, starkfri.Wrap(starkfri.ErrMerklePathFailed, "authentication path failed to verify", err)
				}
			}

			x1 := f.domain[shift*k]
			x2 := f.domain[shift*(k+halfLen)]
			x3 := alphas[i]
			colinear, err := core.TestColinearity(f.field,
				[]*core.FieldElement{x1, x2, x3},
				[]*core.FieldElement{triple[0], triple[1], triple[2]})
			if err != nil {
				return nil, err
			}
			if !colinear {
				return nil, starkfri.New(starkfri.ErrColinearityFailed, fmt.Sprintf("round %d folding is not colinear at index %d", i, k))
			}

			if i == 0 {
				openings = append(openings, QueryOpening{Index: k, Y: triple[0]})
				openings = append(openings, QueryOpening{Index: k + halfLen, Y: triple[1]})
			}
		}
	}

	return openings, nil
}

// fold implements the even/odd split: given f(x) = f_e(x^2) + x*f_o(x^2),
// it produces the evaluations of f_e(x^2) + alpha*f_o(x^2) on the squared
// domain, reading the round's (offset*omega^{2^round*k})^-1 terms directly
// out of the precomputed inverse domain.
func (f *Fri) fold(codeword []*core.FieldElement, round int, alpha *core.FieldElement) []*core.FieldElement {
	half := len(codeword) / 2
	shift := 1 << uint(round)
	one := f.field.One()

	next := make([]*core.FieldElement, half)
	for k := 0; k < half; k++ {
		y := f.invDomain[shift*k]
		scaled := alpha.Mul(y)
		term1 := one.Add(scaled).Mul(codeword[k])
		term2 := one.Sub(scaled).Mul(codeword[half+k])
		next[k] = f.twoInv.Mul(term1.Add(term2))
	}
	return next
}

// sampleIndices derives exactly count distinct indices (distinct modulo
// reducedSize) from BLAKE3(LE(seed) || LE(j)) mod size, for j = 0, 1, ...,
// rejecting collisions in the reduced space.
func sampleIndices(seed *big.Int, size, reducedSize, count int) ([]int, error) {
	if count > 2*reducedSize {
		return nil, starkfri.New(starkfri.ErrNotEnoughEntropy, fmt.Sprintf("count %d exceeds twice the reduced size %d", count, reducedSize))
	}
	if count > reducedSize {
		return nil, starkfri.New(starkfri.ErrTooManyIndices, fmt.Sprintf("cannot sample %d distinct indices from a reduced space of size %d", count, reducedSize))
	}

	seedBytes := leBytes(seed)
	sizeBig := big.NewInt(int64(size))

	seen := make(map[int]bool, count)
	indices := make([]int, 0, count)

	for j := 0; len(indices) < count; j++ {
		h := blake3.New()
		h.Write(seedBytes)
		var jBytes [8]byte
		binary.LittleEndian.PutUint64(jBytes[:], uint64(j))
		h.Write(jBytes[:])

		var digest [32]byte
		h.Digest().Read(digest[:])
		idxBig := new(big.Int).Mod(new(big.Int).SetBytes(reverseBytes(digest[:])), sizeBig)
		idx := int(idxBig.Int64())

		reduced := idx % reducedSize
		if !seen[reduced] {
			seen[reduced] = true
			indices = append(indices, idx)
		}
	}

	return indices, nil
}

func leBytes(x *big.Int) []byte {
	be := x.Bytes()
	le := make([]byte, len(be))
	for i, b := range be {
		le[len(be)-1-i] = b
	}
	return le
}

func reverseBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}

// chunkSize returns the number of bytes that fit, with room to spare, in a
// single field element's canonical residue — used to shuttle opaque hash
// digests (Merkle roots and authentication-path nodes) through a channel
// whose messages are defined as vectors of field elements.
func chunkSize(field *core.Field) int {
	size := (field.Modulus().BitLen() - 1) / 8
	if size < 1 {
		size = 1
	}
	return size
}

func bytesToElements(field *core.Field, data []byte) []*core.FieldElement {
	cs := chunkSize(field)
	n := (len(data) + cs - 1) / cs
	elems := make([]*core.FieldElement, n)
	for i := 0; i < n; i++ {
		start, end := i*cs, i*cs+cs
		if end > len(data) {
			end = len(data)
		}
		elems[i] = field.NewElement(new(big.Int).SetBytes(data[start:end]))
	}
	return elems
}

func elementsToBytes(field *core.Field, elems []*core.FieldElement, totalLen int) []byte {
	cs := chunkSize(field)
	out := make([]byte, 0, totalLen)
	for i, e := range elems {
		start, end := i*cs, i*cs+cs
		if end > totalLen {
			end = totalLen
		}
		want := end - start
		b := e.Big().Bytes()
		if len(b) < want {
			padded := make([]byte, want)
			copy(padded[want-len(b):], b)
			b = padded
		} else if len(b) > want {
			b = b[len(b)-want:]
		}
		out = append(out, b...)
	}
	if len(out) > totalLen {
		out = out[:totalLen]
	}
	return out
}

func pushHash(ch *channel.Channel, field *core.Field, digest []byte) error {
	return ch.Push(bytesToElements(field, digest))
}

func pullHash(ch *channel.Channel, field *core.Field) ([]byte, error) {
	msg, err := ch.Pull()
	if err != nil {
		return nil, err
	}
	return elementsToBytes(field, msg, 32), nil
}

func pushPath(ch *channel.Channel, field *core.Field, path []core.PathNode) error {
	for level, node := range path {
		if level == 0 {
			// Level 0 holds raw leaf encodings of varying length; send the two
			// leaves as field elements so their exact bytes can be rebuilt.
			left := field.NewElement(new(big.Int).SetBytes(reverseBytes(node.Left)))
			right := field.NewElement(new(big.Int).SetBytes(reverseBytes(node.Right)))
			if err := ch.Push([]*core.FieldElement{left, right}); err != nil {
				return err
			}
			continue
		}
		combined := append(append([]byte{}, node.Left...), node.Right...)
		if err := ch.Push(bytesToElements(field, combined)); err != nil {
			return err
		}
	}
	return nil
}

// pullPath reads exactly levels authentication-path nodes. levels is the
// tree height for the layer being opened (log2 of its leaf count), known to
// both sides without transmitting it since every layer length is a power of
// two by construction.
func pullPath(ch *channel.Channel, field *core.Field, levels int) ([]core.PathNode, error) {
	path := make([]core.PathNode, levels)
	for i := 0; i < levels; i++ {
		msg, err := ch.Pull()
		if err != nil {
			return nil, err
		}
		if i == 0 {
			if len(msg) != 2 {
				return nil, fmt.Errorf("expected a 2-element leaf pair, got %d", len(msg))
			}
			path[i] = core.PathNode{Left: msg[0].Bytes(), Right: msg[1].Bytes()}
			continue
		}
		combined := elementsToBytes(field, msg, 64)
		path[i] = core.PathNode{Left: combined[:32], Right: combined[32:]}
	}
	return path, nil
}
