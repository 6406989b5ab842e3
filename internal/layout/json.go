package layout

import "encoding/json"

func marshalLayout(j mosaicLayoutJSON) ([]byte, error) {
	return json.Marshal(j)
}

func unmarshalLayout(data []byte) (mosaicLayoutJSON, error) {
	var j mosaicLayoutJSON
	err := json.Unmarshal(data, &j)
	return j, err
}
