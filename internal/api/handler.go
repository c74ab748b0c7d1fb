package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	gamehandler "minorityScope/internal/handler"
	"minorityScope/internal/identity"
	"minorityScope/internal/model"
	"minorityScope/internal/storage"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

type handler struct {
	reader storage.Reader
	logger *zap.Logger
}

type listResponse struct {
	Items []json.RawMessage `json:"items"`
	Count int               `json:"count"`
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handler) systemStats(c *gin.Context) {
	h.respondRecord(c, model.SystemStatsKey())
}

func (h *handler) networkStats(c *gin.Context) {
	chainID, err := strconv.ParseUint(c.Param("chain"), 10, 64)
	if err != nil || chainID == model.GlobalChainID {
		respondBadRequest(c, "Invalid chain id", c.Param("chain"))
		return
	}
	h.respondRecord(c, model.NetworkStatsKey(chainID))
}

func (h *handler) fieldPolicies(c *gin.Context) {
	c.JSON(http.StatusOK, gamehandler.FieldPolicies)
}

func (h *handler) getEntity(c *gin.Context) {
	kind, ok := model.ParseKind(c.Param("kind"))
	if !ok {
		respondBadRequest(c, "Unknown entity kind", c.Param("kind"))
		return
	}
	chainID, err := strconv.ParseUint(c.Param("chain"), 10, 64)
	if err != nil {
		respondBadRequest(c, "Invalid chain id", c.Param("chain"))
		return
	}
	// ids are built from lowercased addresses and hashes
	h.respondRecord(c, model.Key{Kind: kind, ChainID: chainID, ID: identity.Address(c.Param("id"))})
}

// addressFields hold lowercased addresses in every kind that indexes them.
var addressFields = map[string]bool{"creator": true, "player": true}

// listEntities filters on chain and limit. Every other query parameter must
// name an index field of the kind.
func (h *handler) listEntities(c *gin.Context) {
	kind, ok := model.ParseKind(c.Param("kind"))
	if !ok {
		respondBadRequest(c, "Unknown entity kind", c.Param("kind"))
		return
	}

	q := storage.Query{Kind: kind, Limit: defaultListLimit, Match: map[string]string{}}
	for name, values := range c.Request.URL.Query() {
		if len(values) == 0 {
			continue
		}
		value := values[0]
		switch name {
		case "chain":
			chainID, err := strconv.ParseUint(value, 10, 64)
			if err != nil {
				respondBadRequest(c, "Invalid chain id", value)
				return
			}
			q.ChainID = &chainID
		case "limit":
			limit, err := strconv.Atoi(value)
			if err != nil || limit <= 0 {
				respondBadRequest(c, "Invalid limit", value)
				return
			}
			q.Limit = min(limit, maxListLimit)
		default:
			if !model.IsIndexField(kind, name) {
				respondBadRequest(c, "Unknown filter", name)
				return
			}
			if addressFields[name] {
				value = identity.Address(value)
			}
			q.Match[name] = value
		}
	}

	records, err := h.reader.List(c.Request.Context(), q)
	if err != nil {
		h.respondStoreError(c, err)
		return
	}

	items := make([]json.RawMessage, 0, len(records))
	for _, rec := range records {
		items = append(items, rec.Data)
	}
	c.JSON(http.StatusOK, listResponse{Items: items, Count: len(items)})
}

func (h *handler) respondRecord(c *gin.Context, key model.Key) {
	rec, ok, err := h.reader.Get(c.Request.Context(), key)
	if err != nil {
		h.respondStoreError(c, err)
		return
	}
	if !ok {
		respondNotFound(c, "Entity not found", key.String())
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", rec.Data)
}

func (h *handler) respondStoreError(c *gin.Context, err error) {
	h.logger.Error("store read failed", zap.Error(err), zap.String("path", c.Request.URL.Path))
	respondWithError(c, http.StatusInternalServerError, errCodeStoreError, "Failed to read store")
}
