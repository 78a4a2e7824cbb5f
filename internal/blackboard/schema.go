package blackboard

import "encoding/json"

type schemaProperty struct {
	Type  string      `json:"type"`
	Value interface{} `json:"value"`
}

type jsonSchemaDoc struct {
	Schema     string                    `json:"$schema"`
	Type       string                    `json:"type"`
	Properties map[string]schemaProperty `json:"properties"`
	Required   []string                  `json:"required,omitempty"`
}

// AsJSONSchema renders a JSON Schema draft-07 document describing the
// current entries. Every currently set key is listed as required: it
// already carries a value, so from the schema's perspective it is never
// "missing".
func (s *Store) AsJSONSchema() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return "", ErrNotRunning
	}

	doc := jsonSchemaDoc{
		Schema:     "http://json-schema.org/draft-07/schema#",
		Type:       "object",
		Properties: make(map[string]schemaProperty, len(s.entries)),
	}
	for key, v := range s.entries {
		t, ok := v.Kind().jsonSchemaType()
		if !ok {
			return "", ErrUnknownType
		}
		doc.Properties[key] = schemaProperty{Type: t, Value: v.Any()}
		doc.Required = append(doc.Required, key)
	}

	b, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
