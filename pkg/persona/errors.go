package persona

import "errors"

var (
	ErrEmptyResponse = errors.New("persona extractor returned an empty response")
	ErrNotJSON       = errors.New("persona extractor response is not a JSON object")
	ErrUnknownSample = errors.New("unknown sample persona")
	ErrNoDocument    = errors.New("no document text or file provided")
)
