package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cypherdb/cypherdb/internal/value"
)

func TestRowGetReturnsNullForUnboundVariable(t *testing.T) {
	r := Row{"n": value.IntValue(1)}
	assert.True(t, r.Get("missing").IsNull())
	assert.Equal(t, int64(1), r.Get("n").I)
}

func TestRowCloneIsIndependent(t *testing.T) {
	r := Row{"n": value.IntValue(1)}
	c := r.Clone()
	c["n"] = value.IntValue(2)
	assert.Equal(t, int64(1), r["n"].I)
	assert.Equal(t, int64(2), c["n"].I)
}

func TestRowMergeOtherWinsOnConflict(t *testing.T) {
	r := Row{"a": value.IntValue(1), "b": value.IntValue(2)}
	other := Row{"b": value.IntValue(99), "c": value.IntValue(3)}
	merged := r.Merge(other)
	assert.Equal(t, int64(1), merged["a"].I)
	assert.Equal(t, int64(99), merged["b"].I)
	assert.Equal(t, int64(3), merged["c"].I)
	// original untouched
	assert.Equal(t, int64(2), r["b"].I)
}
