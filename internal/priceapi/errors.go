package priceapi

import "errors"

// Классы ошибок запроса к сервису проценки.
// Request сводит любую из них к отсутствию результата, Search возвращает
// их обернутыми, чтобы вызывающий код мог различать причины через errors.Is.
var (
	ErrNoAPIKeys  = errors.New("no api keys configured")
	ErrTimeout    = errors.New("api request timed out")
	ErrNetwork    = errors.New("api connection failed")
	ErrHTTPStatus = errors.New("api returned non-2xx status")
	ErrEmptyBody  = errors.New("api returned empty body")
	ErrEnvelope   = errors.New("malformed xml envelope")
	ErrPayload    = errors.New("invalid json payload")
	ErrAPI        = errors.New("api reported error")
)
