package export

import (
	"github.com/vmihailenco/msgpack/v5"

	"github.com/ryoqn/trackdata-serverless/internal/models"
)

// ToMsgpack encodes the stored points as a msgpack array for the map
// frontend, which decodes it client-side instead of parsing JSON.
func ToMsgpack(points []models.StoredGpsPoint) ([]byte, error) {
	data, err := msgpack.Marshal(points)
	if err != nil {
		return nil, &RenderError{Format: "msgpack", Err: err}
	}
	return data, nil
}
