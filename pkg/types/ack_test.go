package types

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAckRange(t *testing.T) {
	r := AckRange{Lower: 4, Upper: 6}

	assert.True(t, r.Contains(4))
	assert.True(t, r.Contains(6))
	assert.False(t, r.Contains(3))
	assert.False(t, r.Contains(7))
	assert.Equal(t, uint64(3), r.Size())
	assert.Equal(t, "{4,6}", r.String())
}

func TestAckPolicy_IsImmediate(t *testing.T) {
	assert.True(t, AckPolicy{}.IsImmediate())
	assert.True(t, AckPolicy{IntraMessageThreshold: 10}.IsImmediate())
	assert.False(t, AckPolicy{AcknowledgementInterval: time.Second}.IsImmediate())
}

func TestSequenceAcknowledgement_Covers(t *testing.T) {
	ack := SequenceAcknowledgement{
		Identifier: "seq",
		Ranges:     []AckRange{{1, 2}, {4, 6}},
	}

	assert.True(t, ack.Covers(1))
	assert.True(t, ack.Covers(5))
	assert.False(t, ack.Covers(3))
	assert.False(t, ack.Covers(7))
}

func TestSequenceFault(t *testing.T) {
	fault := NewLastMessageNumberExceeded("seq-1", 2, 1)

	assert.Equal(t, FaultLastMessageNumberExceeded, fault.Code)
	assert.Equal(t, "LastMessageNumberExceeded", string(fault.Code))
	assert.Contains(t, fault.Error(), "seq-1")
	assert.Contains(t, fault.Error(), "LastMessageNumberExceeded")

	wrapped := fmt.Errorf("acknowledge: %w", fault)
	assert.True(t, errors.Is(wrapped, ErrSequenceTerminationExceeded))
	assert.False(t, errors.Is(wrapped, ErrInvalidMessageNumber))

	var got *SequenceFault
	assert.True(t, errors.As(wrapped, &got))
	assert.Equal(t, uint64(2), got.MessageNumber)
	assert.Equal(t, uint64(1), got.LastMessageNumber)
}
