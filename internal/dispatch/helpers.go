package dispatch

import (
	"encoding/json"

	"axd/internal/apperrors"
)

func decodeJSON(body []byte, v any) error {
	if len(body) == 0 {
		body = []byte("{}")
	}
	return json.Unmarshal(body, v)
}

func asAppErr(err error) (*apperrors.Error, bool) {
	return apperrors.As(err)
}

func adapterErr(op string, err error) *apperrors.Error {
	return apperrors.FromAdapter(op, err)
}

func notFound(format string, args ...any) *apperrors.Error {
	return apperrors.Resolutionf(format, args...)
}
