package ai

import (
	"bytes"
	"encoding/json"
	"strings"
)

const (
	fullTextMarker = "FULL_TEXT:"
	metadataMarker = "METADATA_JSON:"
)

// ParseExtractionResponse splits a model response into CV text and metadata.
//
// The text is everything between FULL_TEXT: and METADATA_JSON:, or the whole
// response when the FULL_TEXT: marker is absent. Metadata that is not a valid
// JSON object is dropped. The raw metadata JSON is returned alongside so
// callers can check it against the schema.
func ParseExtractionResponse(raw string) (*Extraction, []byte) {
	fullIdx := strings.Index(raw, fullTextMarker)
	metaIdx := strings.Index(raw, metadataMarker)

	ext := &Extraction{}
	if fullIdx != -1 {
		end := len(raw)
		if metaIdx > fullIdx {
			end = metaIdx
		}
		ext.Text = strings.TrimSpace(raw[fullIdx+len(fullTextMarker) : end])
	} else {
		ext.Text = strings.TrimSpace(raw)
	}

	if metaIdx == -1 {
		return ext, nil
	}
	metaRaw := []byte(strings.TrimSpace(raw[metaIdx+len(metadataMarker):]))
	if !isJSONObject(metaRaw) {
		return ext, nil
	}

	// A mistyped field leaves the rest populated; the schema check reports it.
	_ = json.Unmarshal(metaRaw, &ext.Metadata)
	return ext, metaRaw
}

func isJSONObject(data []byte) bool {
	if !bytes.HasPrefix(data, []byte("{")) {
		return false
	}
	var obj map[string]json.RawMessage
	return json.Unmarshal(data, &obj) == nil
}
