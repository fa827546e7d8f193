package api

import (
	"fmt"
	"net/http"
	"strconv"
)

// optionalUint32Param parses name from the request's query/form values. Per
// §6/§9, a parameter value of 0 is indistinguishable from "not provided" —
// this is a deliberate source idiosyncrasy preserved here, not a bug.
func optionalUint32Param(r *http.Request, name string) (value uint32, present bool, err error) {
	raw := r.FormValue(name)
	if raw == "" {
		return 0, false, nil
	}
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, false, fmt.Errorf("parameter %q: %w", name, err)
	}
	if n == 0 {
		return 0, false, nil
	}
	return uint32(n), true, nil
}

// requiredUint32Param is optionalUint32Param plus a missing-value error,
// for parameters the operation cannot proceed without.
func requiredUint32Param(r *http.Request, name string) (uint32, error) {
	v, present, err := optionalUint32Param(r, name)
	if err != nil {
		return 0, err
	}
	if !present {
		return 0, fmt.Errorf("missing required parameter %q", name)
	}
	return v, nil
}

// optionalIntParam parses a signed int parameter (e.g. hops), with the same
// 0-means-absent convention.
func optionalIntParam(r *http.Request, name string) (value int, present bool, err error) {
	raw := r.FormValue(name)
	if raw == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("parameter %q: %w", name, err)
	}
	if n == 0 {
		return 0, false, nil
	}
	return n, true, nil
}
