package server

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (s Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.loggingMw, s.maxBytesMw)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", s.healthCheck()).Methods(http.MethodGet)
	api.HandleFunc("/status", s.appStatus()).Methods(http.MethodGet)

	productAPI := api.PathPrefix("/product").Subrouter()
	productAPI.HandleFunc("/add", s.productAdd()).Methods(http.MethodPost)
	productAPI.HandleFunc("/update", s.productUpdate()).Methods(http.MethodPost)
	productAPI.HandleFunc("/remove", s.productRemove()).Methods(http.MethodPost)
	productAPI.HandleFunc("/check", s.productCheck()).Methods(http.MethodPost)
	productAPI.HandleFunc("/get/{productID}", s.productGetOne()).Methods(http.MethodGet)
	productAPI.HandleFunc("/get", s.productGetAll()).Methods(http.MethodGet)
	productAPI.HandleFunc("/history/{productID}", s.productHistory()).Methods(http.MethodPost)
	productAPI.HandleFunc("/status/{productID}", s.productStatus()).Methods(http.MethodGet)
	productAPI.PathPrefix("").Handler(http.NotFoundHandler())

	return r
}
