// Package reqparse decodifica bodies y parámetros de ruta. Los clientes web
// mandan ids y números tanto como número JSON como string ("3"), por eso los
// tipos Flex aceptan ambos.
package reqparse

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

const maxBody = 1 << 20

var ErrBadBody = errors.New("invalid json body")

// JSON decodifica el body en dst (máx 1MB).
func JSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	if err := dec.Decode(dst); err != nil {
		return errors.Join(ErrBadBody, err)
	}
	return nil
}

// ID lee un parámetro de ruta entero positivo.
func ID(r *http.Request, name string) (int64, bool) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// FlexInt acepta 3, "3", "" y null (0).
type FlexInt int64

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	s, null := unquote(b)
	if null || s == "" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	*f = FlexInt(v)
	return nil
}

// FlexFloat acepta 4.5, "4.5", "" y null (0).
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(b []byte) error {
	s, null := unquote(b)
	if null || s == "" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*f = FlexFloat(v)
	return nil
}

func unquote(b []byte) (string, bool) {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return "", true
	}
	if len(b) >= 2 && b[0] == '"' && b[len(b)-1] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err == nil {
			return strings.TrimSpace(s), false
		}
	}
	return string(b), false
}
