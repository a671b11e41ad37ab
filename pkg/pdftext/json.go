package pdftext

import (
	"encoding/json"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// ToJSON encodes extraction output as indented JSON.
// Protocol buffer messages, such as raw Document AI responses, go through
// protojson; everything else through encoding/json.
func ToJSON(data interface{}) ([]byte, error) {
	switch v := data.(type) {
	case proto.Message:
		return protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(v)
	default:
		return json.MarshalIndent(v, "", "  ")
	}
}
