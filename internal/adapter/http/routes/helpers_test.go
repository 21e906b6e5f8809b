package routes

import (
	"encoding/json"
	"net/http/httptest"
)

func decode(rr *httptest.ResponseRecorder, v any) error {
	return json.Unmarshal(rr.Body.Bytes(), v)
}
