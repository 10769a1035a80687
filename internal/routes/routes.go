package routes

import (
	carthandler "cartwidget/internal/handlers/cart"
	"cartwidget/pkg/lib/urlparser"
	"net/http"
)

type Routes struct {
	cartHandler *carthandler.Handler
}

func New(cartHandler *carthandler.Handler) *Routes {
	return &Routes{
		cartHandler: cartHandler,
	}
}

func (r *Routes) Register(mux *http.ServeMux) {
	mux.HandleFunc("/carts/", r.pathParser)
}

func (r *Routes) pathParser(ww http.ResponseWriter, req *http.Request) {
	params, err := urlparser.ParseCartPath(req.URL.Path)
	if err != nil {
		http.NotFound(ww, req)
		return
	}

	switch {
	case params.Resource == urlparser.ResourceCart && req.Method == http.MethodGet:
		// GET /carts/{sessionId}
		r.cartHandler.ViewCart(ww, req, params.SessionID)
	case params.Resource == urlparser.ResourceCount && req.Method == http.MethodGet:
		// GET /carts/{sessionId}/count
		r.cartHandler.CartCount(ww, req, params.SessionID)
	case params.Resource == urlparser.ResourceExport && req.Method == http.MethodGet:
		// GET /carts/{sessionId}/export
		r.cartHandler.ExportCart(ww, req, params.SessionID)
	case params.Resource == urlparser.ResourceItems && req.Method == http.MethodPost:
		// POST /carts/{sessionId}/items
		r.cartHandler.AddToCart(ww, req, params.SessionID)
	default:
		http.Error(ww, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}
