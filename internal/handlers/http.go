package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// HandleHealth reports process health with live lobby and game counts.
func (ctx *Context) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		Status  string `json:"status"`
		Lobbies int    `json:"lobbies"`
		Games   int    `json:"games"`
	}{"healthy", ctx.Lobbies.Len(), ctx.Sessions.Len()})
}

// HandleJoinQR serves a PNG QR code encoding the join link for a lobby, so
// a phone can scan its way into the room.
func (ctx *Context) HandleJoinQR(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(strings.TrimPrefix(r.URL.Path, "/join-qr/"))
	if !ctx.Lobbies.Exists(code) {
		http.NotFound(w, r)
		return
	}
	png, err := qrcode.Encode(ctx.Config.PublicBaseURL+"/?code="+code, qrcode.Medium, 256)
	if err != nil {
		log.Printf("qr: encode failed for %s: %v", code, err)
		http.Error(w, "QR generation failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}
