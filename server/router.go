package server

import (
	"net/http"

	"dogfight/domain"
	"dogfight/handler"
)

func Route(transportCh chan<- domain.Transport) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/ws", handler.NewAcceptHandler(transportCh))
	mux.Handle("/healthz", handler.NewHealthHandler())
	return mux
}
