package mocks

import (
	"context"
	"encoding/json"
)

// Respond returns a function for gomock's DoAndReturn that decodes data, a
// JSON string or any value that marshals to JSON, into the result of the
// call.
func Respond(data interface{}) func(ctx context.Context, api, method string,
	params, result interface{}) error {
	return func(ctx context.Context, api, method string,
		params, result interface{}) error {
		raw, ok := data.(string)
		if !ok {
			b, err := json.Marshal(data)
			if err != nil {
				return err
			}
			raw = string(b)
		}
		if result == nil {
			return nil
		}
		return json.Unmarshal([]byte(raw), result)
	}
}
