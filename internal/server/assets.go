package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"

	"github.com/go-chi/chi/v5"

	"glasswork/internal/engine"
	"glasswork/internal/storage"
)

const maxAssetBytes = 10 << 20

// registerAssets wires binary upload and download outside huma; these
// endpoints stream raw bytes rather than JSON.
func registerAssets(r chi.Router, basePath string, cfg Config) {
	if cfg.Assets == nil {
		return
	}
	uploadPath := path.Join(basePath, "assets")
	servePath := path.Join(basePath, "assets/{name}")

	r.Post(uploadPath, func(w http.ResponseWriter, req *http.Request) {
		if _, authErr := actorIDFromContext(req.Context()); authErr != nil {
			respondStatusError(w, authErr)
			return
		}
		mime := req.Header.Get("Content-Type")
		if !storage.Allowed(mime) {
			respondStatusError(w, newAPIError(http.StatusBadRequest, "bad_request",
				fmt.Sprintf("unsupported content type %q", mime), nil))
			return
		}
		data, err := io.ReadAll(io.LimitReader(req.Body, maxAssetBytes+1))
		if err != nil {
			respondStatusError(w, newAPIError(http.StatusBadRequest, "bad_request", "read body failed", nil))
			return
		}
		if len(data) == 0 {
			respondStatusError(w, newAPIError(http.StatusBadRequest, "bad_request", "body required", nil))
			return
		}
		if len(data) > maxAssetBytes {
			respondStatusError(w, newAPIError(http.StatusRequestEntityTooLarge, "too_large",
				fmt.Sprintf("asset exceeds %d bytes", maxAssetBytes), nil))
			return
		}
		name, err := cfg.Assets.Save(data, mime)
		if err != nil {
			respondStatusError(w, handleError(err))
			return
		}
		assetURL := path.Join(basePath, "assets", name)
		if attach := req.URL.Query().Get("attach"); attach != "" {
			if err := attachAsset(req, cfg.Engine, attach, assetURL); err != nil {
				respondStatusError(w, handleError(err))
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(AssetResponse{Name: name, URL: assetURL})
	})

	r.Get(servePath, func(w http.ResponseWriter, req *http.Request) {
		name := chi.URLParam(req, "name")
		filePath, err := cfg.Assets.Open(name)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				respondStatusError(w, newAPIError(http.StatusNotFound, "not_found", "asset not found", nil))
				return
			}
			respondStatusError(w, handleError(err))
			return
		}
		if mime := storage.MIMEFor(name); mime != "" {
			w.Header().Set("Content-Type", mime)
		}
		http.ServeFile(w, req, filePath)
	})
}

// attachAsset points one of the profile links at a freshly stored asset.
func attachAsset(req *http.Request, e engine.Engine, attach, assetURL string) error {
	actorID, authErr := actorIDFromContext(req.Context())
	if authErr != nil {
		return authErr
	}
	full := assetURL
	if e.Config != nil && e.Config.Site.BaseURL != "" {
		full = e.Config.Site.BaseURL + assetURL
	}
	opts := engine.ProfileUpdateOptions{ActorID: actorID}
	switch attach {
	case "cv":
		opts.CVURL = &full
	case "certification":
		opts.CertificationURL = &full
	case "profile_image":
		opts.ProfileImageURL = &full
	default:
		return &engine.ValidationError{Field: "attach", Reason: `must be "cv", "certification" or "profile_image"`}
	}
	_, err := e.UpdateProfile(req.Context(), opts)
	return err
}
