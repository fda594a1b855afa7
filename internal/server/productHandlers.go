package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"pricewatch/internal/client"
	"pricewatch/internal/model"
	"pricewatch/internal/parse"
)

func (s Server) productAdd() http.HandlerFunc {
	type request struct {
		URL         string  `json:"url"`
		Name        string  `json:"name"`
		TargetPrice float64 `json:"target_price"`
	}
	type response struct {
		ProductID string        `json:"product_id"`
		Product   model.Product `json:"product"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		req := request{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("productAdd: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if req.TargetPrice <= 0 {
			s.Logger.Debugf("productAdd: Invalid target price: %v", req.TargetPrice)
			http.Error(w, "target_price must be greater than zero", http.StatusBadRequest)
			return
		}

		cleanURL, err := parse.NormalizeURL(req.URL)
		if err != nil {
			s.Logger.Debugf("productAdd: Bad url: %s, err: %v", req.URL, err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		p := model.Product{
			URL:         cleanURL,
			Name:        req.Name,
			Site:        parse.SiteName(cleanURL),
			TargetPrice: req.TargetPrice,
		}

		info, err := s.Tracker.Client.ScrapeProduct(r.Context(), cleanURL)
		if err != nil {
			if errors.Is(err, client.ErrFetch) {
				s.Logger.Errorf("productAdd: Error fetching page with url: %s, err: %v", cleanURL, err)
				http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
				return
			}
			// Unavailable or price not found: track it anyway, the
			// monitor will pick the price up later.
			s.Logger.Debugf("productAdd: No price on initial check for url: %s, err: %v", cleanURL, err)
		} else if p.Name == "" {
			p.Name = info.Title
		}
		if p.Name == "" {
			p.Name = "Unknown Product"
		}

		productID, err := s.DB.ProductInsert(r.Context(), p)
		if err != nil {
			s.Logger.Errorf("productAdd: Error inserting Product, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		p, err = s.DB.ProductFindOne(r.Context(), productID)
		if err != nil {
			s.Logger.Errorf("productAdd: Error finding inserted Product with ID: %s, err: %v", productID, err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		if info.Price > 0 {
			if err = s.DB.ProductPriceUpdate(r.Context(), p, info.Price); err != nil {
				s.Logger.Errorf("productAdd: Error storing initial price for ProductID: %s, err: %v", productID, err)
			} else {
				p.ApplyPrice(info.Price)
				price := info.Price
				ph := model.PriceHistory{
					ProductID:    p.ID,
					Price:        &price,
					Status:       model.HistoryStatusSuccess,
					Availability: info.Availability,
					Seller:       info.Seller,
					Timestamp:    primitive.NewDateTimeFromTime(time.Now()),
				}
				if err = s.DB.PriceHistoryInsert(r.Context(), ph); err != nil {
					s.Logger.Errorf("productAdd: Error inserting PriceHistory for ProductID: %s, err: %v", productID, err)
				}
			}
		}

		s.writeJsonResponse(w, response{
			ProductID: productID,
			Product:   p,
		}, http.StatusOK)
	}
}

func (s Server) productUpdate() http.HandlerFunc {
	type request struct {
		ProductID   string  `json:"product_id"`
		TargetPrice float64 `json:"target_price"`
	}
	type response struct {
		Success bool `json:"success"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		req := request{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("productUpdate: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if req.TargetPrice <= 0 {
			s.Logger.Debugf("productUpdate: Invalid target price: %v", req.TargetPrice)
			http.Error(w, "target_price must be greater than zero", http.StatusBadRequest)
			return
		}

		if err := s.DB.ProductTargetUpdate(r.Context(), req.ProductID, req.TargetPrice); err != nil {
			if errors.Is(err, primitive.ErrInvalidHex) {
				s.Logger.Debugf("productUpdate: Invalid ProductID: %s, err: %v", req.ProductID, err)
				http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
				return
			}
			s.Logger.Debugf("productUpdate: No Product updated with ID: %s, err: %v", req.ProductID, err)
			s.writeJsonResponse(w, response{Success: false}, http.StatusUnprocessableEntity)
			return
		}
		s.writeJsonResponse(w, response{Success: true}, http.StatusOK)
	}
}

func (s Server) productRemove() http.HandlerFunc {
	type request struct {
		ProductID string `json:"product_id"`
	}
	type response struct {
		Success bool `json:"success"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		req := request{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("productRemove: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		if err := s.DB.ProductDeactivate(r.Context(), req.ProductID); err != nil {
			if errors.Is(err, primitive.ErrInvalidHex) {
				s.Logger.Debugf("productRemove: Invalid ProductID: %s, err: %v", req.ProductID, err)
				http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
				return
			}
			s.Logger.Debugf("productRemove: No active Product with ID: %s, err: %v", req.ProductID, err)
			s.writeJsonResponse(w, response{Success: false}, http.StatusUnprocessableEntity)
			return
		}
		s.writeJsonResponse(w, response{Success: true}, http.StatusOK)
	}
}

func (s Server) productCheck() http.HandlerFunc {
	type request struct {
		ProductID string `json:"product_id"`
	}
	type response struct {
		ProductID string  `json:"product_id"`
		Price     float64 `json:"price"`
		Alerted   bool    `json:"alerted"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		req := request{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("productCheck: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		p, err := s.DB.ProductFindOne(r.Context(), req.ProductID)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) || errors.Is(err, primitive.ErrInvalidHex) {
				s.Logger.Debugf("productCheck: No Product found with ID: %s, err: %v", req.ProductID, err)
				http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
				return
			}
			s.Logger.Errorf("productCheck: Error finding Product with ID: %s, err: %v", req.ProductID, err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		res, err := s.Tracker.CheckProduct(r.Context(), p)
		if err != nil {
			if errors.Is(err, client.ErrFetch) {
				s.Logger.Errorf("productCheck: Error fetching page for ProductID: %s, err: %v", req.ProductID, err)
				http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
				return
			}
			if errors.Is(err, client.ErrPriceNotFound) || errors.Is(err, client.ErrUnavailable) {
				s.Logger.Debugf("productCheck: No price for ProductID: %s, err: %v", req.ProductID, err)
				http.Error(w, err.Error(), http.StatusUnprocessableEntity)
				return
			}
			s.Logger.Errorf("productCheck: Error checking ProductID: %s, err: %v", req.ProductID, err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, response{
			ProductID: req.ProductID,
			Price:     res.Price,
			Alerted:   res.Alerted,
		}, http.StatusOK)
	}
}

func (s Server) productGetOne() http.HandlerFunc {
	type response model.Product
	return func(w http.ResponseWriter, r *http.Request) {
		productID := mux.Vars(r)["productID"]
		p, err := s.DB.ProductFindOne(r.Context(), productID)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) || errors.Is(err, primitive.ErrInvalidHex) {
				s.Logger.Debugf("productGetOne: No Product found with ID: %s, err: %v", productID, err)
				http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
				return
			}
			s.Logger.Errorf("productGetOne: Error finding Product with ID: %s, err: %v", productID, err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, response(p), http.StatusOK)
	}
}

func (s Server) productGetAll() http.HandlerFunc {
	type response []model.Product
	return func(w http.ResponseWriter, r *http.Request) {
		ps, err := s.DB.ProductsFindActive(r.Context())
		if err != nil {
			s.Logger.Errorf("productGetAll: Error getting active Products, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		if ps == nil {
			ps = []model.Product{}
		}
		s.writeJsonResponse(w, response(ps), http.StatusOK)
	}
}

func (s Server) productHistory() http.HandlerFunc {
	type request struct {
		Days  int   `json:"days"`
		Limit int64 `json:"limit"`
	}
	type response []model.PriceHistory
	return func(w http.ResponseWriter, r *http.Request) {
		req := request{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("productHistory: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		productID := mux.Vars(r)["productID"]
		objID, err := primitive.ObjectIDFromHex(productID)
		if err != nil {
			s.Logger.Debugf("productHistory: Invalid ProductID: %s, err: %v", productID, err)
			s.writeJsonResponse(w, response{}, http.StatusOK)
			return
		}

		var since time.Time
		if req.Days > 0 {
			since = time.Now().AddDate(0, 0, -req.Days)
		}
		phs, err := s.DB.PriceHistoryFind(r.Context(), objID, since, req.Limit)
		if err != nil {
			s.Logger.Errorf("productHistory: Error getting PriceHistory for ProductID: %s, err: %v", productID, err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		if phs == nil {
			phs = []model.PriceHistory{}
		}
		s.writeJsonResponse(w, response(phs), http.StatusOK)
	}
}

// productStatus serves the latest observed price, from the cache when it
// holds the product, from the store otherwise.
func (s Server) productStatus() http.HandlerFunc {
	type response struct {
		ProductID string    `json:"product_id"`
		Name      string    `json:"name"`
		Price     float64   `json:"price"`
		CheckedAt time.Time `json:"checked_at"`
		Cached    bool      `json:"cached"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		productID := mux.Vars(r)["productID"]

		if s.Cache != nil {
			lp, ok, err := s.Cache.GetLatestPrice(r.Context(), productID)
			if err != nil {
				s.Logger.Errorf("productStatus: Error reading cache for ProductID: %s, err: %v", productID, err)
			} else if ok {
				s.writeJsonResponse(w, response{
					ProductID: lp.ProductID,
					Name:      lp.Name,
					Price:     lp.Price,
					CheckedAt: lp.CheckedAt,
					Cached:    true,
				}, http.StatusOK)
				return
			}
		}

		p, err := s.DB.ProductFindOne(r.Context(), productID)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) || errors.Is(err, primitive.ErrInvalidHex) {
				s.Logger.Debugf("productStatus: No Product found with ID: %s, err: %v", productID, err)
				http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
				return
			}
			s.Logger.Errorf("productStatus: Error finding Product with ID: %s, err: %v", productID, err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		resp := response{
			ProductID: p.ID.Hex(),
			Name:      p.Name,
		}
		if p.CurrentPrice != nil {
			resp.Price = *p.CurrentPrice
		}
		if p.LastChecked != nil {
			resp.CheckedAt = p.LastChecked.Time()
		}
		s.writeJsonResponse(w, resp, http.StatusOK)
	}
}
