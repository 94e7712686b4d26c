package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
)

// ParamValidator is a function type that validates a parameter.
type ParamValidator func(valueToTest int64) bool

func newComparisonValidator(valueInClosure int64, compareFn func(argValue, closedValue int64) bool) ParamValidator {
	return func(argValue int64) bool {
		return compareFn(argValue, valueInClosure)
	}
}

// gte returns a ParamValidator that checks if the argument is greater than or equal to the value captured in the closure.
func gte(valToCompareAgainst int64) ParamValidator {
	return newComparisonValidator(valToCompareAgainst, func(argValue, closedValue int64) bool {
		return argValue >= closedValue
	})
}

// ParsePathGte parses the named path value as an integer and validates that it is
// greater than or equal to value. Responds with 400 and returns false on failure.
func ParsePathGte(r *http.Request, w http.ResponseWriter, logger *slog.Logger, key string, value int64) (int64, bool) {
	return parsePathValidate(r, w, logger, key, 64, gte(value))
}

// ParsePathGte32 is the 32-bit variant of ParsePathGte. Values outside the int32
// range are rejected at parse time so they can never wrap on conversion.
func ParsePathGte32(r *http.Request, w http.ResponseWriter, logger *slog.Logger, key string, value int32) (int32, bool) {
	parsed, ok := parsePathValidate(r, w, logger, key, 32, gte(int64(value)))
	return int32(parsed), ok
}

func parsePathValidate(r *http.Request, w http.ResponseWriter, logger *slog.Logger, key string, bitSize int, pValidator ParamValidator) (int64, bool) {
	value := r.PathValue(key)
	if value == "" {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("%s path parameter is required", key))
		return 0, false
	}
	intValue, err := strconv.ParseInt(value, 10, bitSize)
	if err != nil || !pValidator(intValue) {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid %s number: %s", key, value))
		return 0, false
	}
	return intValue, true
}
