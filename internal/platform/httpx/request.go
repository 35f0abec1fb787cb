package httpx

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// MaxBodyBytes bounds every JSON request body.
const MaxBodyBytes = 1 << 20

// ParseJSON decodes the request body into dest. An empty body leaves dest untouched.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

// PathVar returns the named mux path variable.
func PathVar(r *http.Request, key string) string {
	return mux.Vars(r)[key]
}

// QueryInt32 returns the query parameter as int32, or def when absent or malformed.
func QueryInt32(r *http.Request, key string, def int32) int32 {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def
	}
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return def
	}
	return int32(v)
}
