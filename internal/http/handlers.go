package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cloudcatalog/itemsvc/internal/config"
	"github.com/cloudcatalog/itemsvc/internal/dedup"
	httpopenapi "github.com/cloudcatalog/itemsvc/internal/http/openapi"
	"github.com/cloudcatalog/itemsvc/internal/items"
	"github.com/cloudcatalog/itemsvc/internal/model"
	"github.com/cloudcatalog/itemsvc/internal/publish"
)

// App bundles the services behind the HTTP handlers.
type App struct {
	Cfg     config.Config
	Items   *items.Service
	Publish *publish.Service
	Dedup   dedup.Store
	started time.Time
}

// NewApp constructs an App over the given services.
func NewApp(cfg config.Config, itemsSvc *items.Service, publishSvc *publish.Service, dedupStore dedup.Store) *App {
	return &App{Cfg: cfg, Items: itemsSvc, Publish: publishSvc, Dedup: dedupStore, started: time.Now()}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		WriteJSONError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", "expected application/json")
		return false
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return false
	}
	return true
}

// itemsCollectionHandler serves POST /items and GET /items.
func (a *App) itemsCollectionHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		a.createItem(w, r)
	case http.MethodGet:
		a.listItems(w, r)
	default:
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
	}
}

func (a *App) createItem(w http.ResponseWriter, r *http.Request) {
	var in model.ItemCreate
	if !decodeJSONBody(w, r, &in) {
		return
	}
	id, err := a.Items.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (a *App) listItems(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			WriteJSONError(w, http.StatusBadRequest, "invalid_payload", "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	startAfter := r.URL.Query().Get("start_after")
	page, err := a.Items.List(r.Context(), limit, startAfter)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// itemHandler serves GET/PUT/DELETE /items/{id} and POST
// /items/{id}/update_price.
func (a *App) itemHandler(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/items/")
	parts := strings.Split(rest, "/")
	id := parts[0]
	if id == "" {
		WriteJSONError(w, http.StatusNotFound, "not_found", "")
		return
	}
	switch {
	case len(parts) == 1:
		a.itemByID(w, r, id)
	case len(parts) == 2 && parts[1] == "update_price":
		if r.Method != http.MethodPost {
			WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
			return
		}
		a.updatePrice(w, r, id)
	default:
		WriteJSONError(w, http.StatusNotFound, "not_found", "")
	}
}

func (a *App) itemByID(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		item, err := a.Items.Get(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, item)
	case http.MethodPut:
		var in model.ItemUpdate
		if !decodeJSONBody(w, r, &in) {
			return
		}
		if err := a.Items.Update(r.Context(), id, in); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Item updated"})
	case http.MethodDelete:
		if err := a.Items.Delete(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Item deleted"})
	default:
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
	}
}

func (a *App) updatePrice(w http.ResponseWriter, r *http.Request, id string) {
	var in model.PriceUpdate
	if !decodeJSONBody(w, r, &in) {
		return
	}
	if in.Price == nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid_payload", "price is required")
		return
	}
	newPrice, err := a.Items.UpdatePrice(r.Context(), id, *in.Price)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Price updated", "new_price": newPrice})
}

// publishHandler serves POST /publish.
func (a *App) publishHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	var in model.PublishRequest
	if !decodeJSONBody(w, r, &in) {
		return
	}
	res, err := a.Publish.HandlePublish(r.Context(), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if res.Duplicate {
		writeJSON(w, http.StatusAccepted, map[string]string{"message": "Already processed"})
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"messageId": res.MessageID})
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) metricsHandler(w http.ResponseWriter, r *http.Request) {
	dedupSize, _ := a.Dedup.Len(r.Context())
	m := map[string]any{
		"dedup_size": dedupSize,
		"uptime_sec": time.Since(a.started).Seconds(),
	}
	writeJSON(w, http.StatusOK, m)
}

func (a *App) openapiHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(httpopenapi.YAML)
}

func (a *App) docsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	html := `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>API Docs</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui'
      });
    </script>
  </body>
</html>`
	_, _ = w.Write([]byte(html))
}
