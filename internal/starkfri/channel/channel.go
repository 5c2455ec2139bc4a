// Package channel implements the Fiat-Shamir transcript ("channel") that
// lets the FRI prover and verifier agree on pseudo-random challenges
// without interaction: the verifier replays the exact sequence of messages
// the prover wrote and derives identical challenges from the same hash
// prefix at each protocol step.
package channel

import (
	"fmt"
	"math/big"

	"github.com/zeebo/blake3"

	"github.com/halcyon-zk/stark-fri/internal/starkfri/core"
)

// Channel is a monotonically-growing, ordered log of messages. Each message
// is a nonempty vector of field elements. The prover writes with
// Push/PushSingle; the verifier reads with Pull. Both sides derive
// challenges from ProverHash/VerifierHash, which are computed over the same
// ordered subsequence as seen from each side.
//
// A Channel is process-local mutable state with the lifetime of one proof
// session: it is passed by exclusive access, first to the prover, then to
// the verifier. Operations never block or suspend; any error is fatal to
// the surrounding proof attempt.
type Channel struct {
	field      *core.Field
	messages   [][]*core.FieldElement
	readCursor int
}

// New creates an empty channel over field.
func New(field *core.Field) *Channel {
	return &Channel{field: field}
}

// Push appends a nonempty message (vector of field elements) to the log.
func (c *Channel) Push(message []*core.FieldElement) error {
	if len(message) == 0 {
		return fmt.Errorf("cannot push an empty message")
	}
	c.messages = append(c.messages, message)
	return nil
}

// PushSingle appends a one-element message.
func (c *Channel) PushSingle(x *core.FieldElement) {
	c.messages = append(c.messages, []*core.FieldElement{x})
}

// Pull consumes and returns the next message from the verifier's read
// cursor. Pulling past the end of the log is fatal.
func (c *Channel) Pull() ([]*core.FieldElement, error) {
	if c.readCursor >= len(c.messages) {
		return nil, fmt.Errorf("cannot pull past end of channel")
	}
	message := c.messages[c.readCursor]
	c.readCursor++
	return message, nil
}

// PullSingle pulls a message and requires it to carry exactly one element.
func (c *Channel) PullSingle() (*core.FieldElement, error) {
	message, err := c.Pull()
	if err != nil {
		return nil, err
	}
	if len(message) != 1 {
		return nil, fmt.Errorf("expected single-element message, got %d elements", len(message))
	}
	return message[0], nil
}

// ProverHash returns H(all messages written so far) as a field element,
// where H is BLAKE3 over the little-endian byte concatenation of every
// element's bytes in write order.
func (c *Channel) ProverHash() *core.FieldElement {
	return hashMessages(c.field, c.messages)
}

// VerifierHash returns H(all messages read so far) as a field element, over
// exactly the prefix the verifier's read cursor has consumed.
func (c *Channel) VerifierHash() *core.FieldElement {
	return hashMessages(c.field, c.messages[:c.readCursor])
}

func hashMessages(field *core.Field, messages [][]*core.FieldElement) *core.FieldElement {
	h := blake3.New()
	for _, message := range messages {
		for _, element := range message {
			h.Write(element.Bytes())
		}
	}
	var digest [32]byte
	h.Digest().Read(digest[:])

	// Interpret the digest little-endian as an unbounded integer.
	be := make([]byte, len(digest))
	for i, b := range digest {
		be[len(digest)-1-i] = b
	}
	seed := new(big.Int).SetBytes(be)
	return field.Sample(seed)
}
