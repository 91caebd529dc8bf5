package domain

import "errors"

// Failure kinds surfaced by the forecast pipeline. Stage errors wrap exactly
// one of these so callers can classify them with errors.Is.
var (
	ErrConfigMissing = errors.New("config missing")
	ErrConfigInvalid = errors.New("config invalid")
	ErrTransport     = errors.New("transport error")
	ErrDecode        = errors.New("decode error")
	ErrMapping       = errors.New("mapping error")
	ErrSerialization = errors.New("serialization error")
)

// ErrorKind returns a short label for the failure kind wrapped by err, used
// as a metric label and log attribute. Unclassified errors report "unknown".
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfigMissing):
		return "config_missing"
	case errors.Is(err, ErrConfigInvalid):
		return "config_invalid"
	case errors.Is(err, ErrTransport):
		return "transport"
	case errors.Is(err, ErrDecode):
		return "decode"
	case errors.Is(err, ErrMapping):
		return "mapping"
	case errors.Is(err, ErrSerialization):
		return "serialization"
	default:
		return "unknown"
	}
}
