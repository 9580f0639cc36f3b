package operation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperationValid(t *testing.T) {
	t.Parallel()

	for _, op := range All() {
		assert.True(t, op.Valid(), op)
	}
	assert.False(t, Operation("delete").Valid())
	assert.False(t, Operation("").Valid())
}

func TestKindOperation(t *testing.T) {
	t.Parallel()

	// Each artifact kind reads the field policy of one operation; the
	// mapper consumes the full data shape.
	assert.Equal(t, Data, KindDTO.Operation())
	assert.Equal(t, Create, KindCreateDTO.Operation())
	assert.Equal(t, Update, KindUpdateDTO.Operation())
	assert.Equal(t, FindMany, KindFilter.Operation())
	assert.Equal(t, Data, KindMapper.Operation())
}

func TestParseKinds(t *testing.T) {
	t.Parallel()

	kinds, err := ParseKinds([]string{"update-dto", "dto"})
	require.NoError(t, err)
	assert.Equal(t, []Kind{KindUpdateDTO, KindDTO}, kinds)

	_, err = ParseKinds([]string{"dto", "pdf"})
	assert.ErrorContains(t, err, `unknown generator kind "pdf"`)

	_, err = ParseKinds([]string{"dto", "dto"})
	assert.ErrorContains(t, err, `duplicate generator kind "dto"`)

	kinds, err = ParseKinds(nil)
	require.NoError(t, err)
	assert.Empty(t, kinds)
}
