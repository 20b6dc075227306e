// MIT License
//
// Copyright 2018 Canonical Ledgers, LLC
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to
// deal in the Software without restriction, including without limitation the
// rights to use, copy, modify, merge, publish, distribute, sublicense, and/or
// sell copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING
// FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS
// IN THE SOFTWARE.

package srv

import (
	"bytes"
	"encoding/json"
	"fmt"

	jsonrpc2 "github.com/AdamSLevy/jsonrpc2/v14"
)

// validate unmarshals the positional params in data into params. The
// number of params must match exactly and objects may not have unknown
// fields.
func validate(data json.RawMessage, params ...interface{}) error {
	var raw []json.RawMessage
	if len(data) > 0 {
		if err := json.Unmarshal(data, &raw); err != nil {
			return jsonrpc2.ErrorInvalidParams(`"params" must be an array`)
		}
	}
	if len(raw) != len(params) {
		if len(params) == 0 {
			return jsonrpc2.ErrorInvalidParams(`no "params" accepted`)
		}
		return jsonrpc2.ErrorInvalidParams(fmt.Sprintf(
			"required: %v params, got %v", len(params), len(raw)))
	}
	for i, p := range raw {
		if err := unmarshalStrict(p, params[i]); err != nil {
			return jsonrpc2.ErrorInvalidParams(fmt.Sprintf(
				"params[%v]: %v", i, err))
		}
	}
	return nil
}

func unmarshalStrict(data []byte, v interface{}) error {
	b := bytes.NewBuffer(data)
	d := json.NewDecoder(b)
	d.DisallowUnknownFields()
	return d.Decode(v)
}
