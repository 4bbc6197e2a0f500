package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTags_ValueAndScan(t *testing.T) {
	v, err := Tags{"ПС", "<b>"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["ПС","<b>"]`, v)

	v, err = Tags(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, `[]`, v)

	var tags Tags
	require.NoError(t, tags.Scan(`["a","b"]`))
	assert.Equal(t, Tags{"a", "b"}, tags)

	require.NoError(t, tags.Scan([]byte(`not json`)))
	assert.Equal(t, Tags{}, tags)

	require.NoError(t, tags.Scan(nil))
	assert.Equal(t, Tags{}, tags)

	require.NoError(t, tags.Scan(`null`))
	assert.Equal(t, Tags{}, tags)

	assert.Error(t, tags.Scan(42))
}
