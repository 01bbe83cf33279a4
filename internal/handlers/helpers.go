package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/kalaasutra/storefront/internal/models"
	"github.com/kalaasutra/storefront/internal/repository"
)

// maxBodyBytes caps JSON request bodies
const maxBodyBytes = 1 << 20

var errInvalidPage = errors.New("invalid pagination parameters")

// decodeJSON reads a single JSON document from the request body
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("request body must contain a single JSON document")
	}
	return nil
}

// parsePage reads skip (>= 0, default 0) and limit (1..100, default 100)
func parsePage(r *http.Request) (models.Page, error) {
	page := models.Page{Limit: repository.MaxPageSize}
	q := r.URL.Query()

	if v := q.Get("skip"); v != "" {
		skip, err := strconv.Atoi(v)
		if err != nil || skip < 0 {
			return page, errInvalidPage
		}
		page.Skip = skip
	}

	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 || limit > repository.MaxPageSize {
			return page, errInvalidPage
		}
		page.Limit = limit
	}

	return page, nil
}
