// Package respond escribe las respuestas JSON de la API con la forma
// {"ok": bool, ...}. Antes writeJSON estaba duplicado por módulo; con cuatro
// módulos de dominio ya conviene el helper común.
package respond

import (
	"encoding/json"
	"net/http"
)

// MsgInternal es el único mensaje que ve el cliente ante errores internos.
const MsgInternal = "Error interno"

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// OK responde {"ok": true} más los campos dados.
func OK(w http.ResponseWriter, status int, fields map[string]any) {
	body := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		body[k] = v
	}
	body["ok"] = true
	JSON(w, status, body)
}

// Fail responde {"ok": false, "msg": msg}.
func Fail(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]any{
		"ok":  false,
		"msg": msg,
	})
}
