package main

import (
	"encoding/base64"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

const qrSize = 320 // mobile-friendly size

// joinCode holds the QR for the controller join URL, generated once at
// startup and cached for the process lifetime.
type joinCode struct {
	png     []byte
	dataURL string
}

func newJoinCode(url string) (*joinCode, error) {
	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		return nil, err
	}

	return &joinCode{
		png:     png,
		dataURL: "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
	}, nil
}

func serveQR(cfg *Config, code *joinCode) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		if code == nil {
			http.Error(w, "qr code unavailable", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		securityHeaders(cfg, w)

		_, _ = w.Write(code.png)
	}
}
