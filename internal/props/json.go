package props

import (
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// MarshalJSON implements the json.Marshaler interface for Bag. The bag is
// exported through ToStruct, so dates appear as RFC 3339 strings.
func (b *Bag) MarshalJSON() ([]byte, error) {
	s, err := ToStruct(b)
	if err != nil {
		return nil, err
	}
	return protojson.Marshal(s)
}

// UnmarshalJSON implements the json.Unmarshaler interface for Bag. It reads
// the format written by MarshalJSON; see FromStruct for how JSON values map
// to property kinds.
func (b *Bag) UnmarshalJSON(data []byte) error {
	var s structpb.Struct
	if err := protojson.Unmarshal(data, &s); err != nil {
		return err
	}
	decoded, err := FromStruct(&s)
	if err != nil {
		return err
	}
	*b = *decoded
	return nil
}
