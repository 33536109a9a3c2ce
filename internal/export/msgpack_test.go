package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/ryoqn/trackdata-serverless/internal/models"
)

func TestToMsgpack(t *testing.T) {
	points := testPoints()

	data, err := ToMsgpack(points)
	require.NoError(t, err)

	var decoded []models.StoredGpsPoint
	require.NoError(t, msgpack.Unmarshal(data, &decoded))
	assert.Equal(t, points, decoded)
}

func TestToMsgpackEmpty(t *testing.T) {
	data, err := ToMsgpack(nil)
	require.NoError(t, err)

	var decoded []models.StoredGpsPoint
	require.NoError(t, msgpack.Unmarshal(data, &decoded))
	assert.Empty(t, decoded)
}
