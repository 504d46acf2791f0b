package api

import (
	"context"
	"net/http"

	"github.com/expidus/lunar-remote/backend"
	"github.com/expidus/lunar-remote/backend/fdo"
	"github.com/expidus/lunar-remote/backend/filemanager"
	"github.com/expidus/lunar-remote/backend/lunar"
	"github.com/expidus/lunar-remote/backend/remote"
	"github.com/expidus/lunar-remote/backend/trash"
	"github.com/expidus/lunar-remote/logger"
)

type uriRequest struct {
	URI string `json:"uri"`
}

type selectRequest struct {
	URI      string `json:"uri"`
	Filename string `json:"filename"`
}

type bulkRenameRequest struct {
	WorkingDir string   `json:"working_dir"`
	Files      []string `json:"files"`
	// Standalone defaults to true when omitted.
	Standalone *bool `json:"standalone"`
}

type urisRequest struct {
	URIs []string `json:"uris"`
}

func validateURI(req *uriRequest) error {
	if req.URI == "" {
		return &remote.ValidationError{Field: "uri", Message: "required"}
	}
	return nil
}

func validateSelect(req *selectRequest) error {
	if req.URI == "" {
		return &remote.ValidationError{Field: "uri", Message: "required"}
	}
	return nil
}

func validateBulkRename(req *bulkRenameRequest) error {
	if req.WorkingDir == "" {
		return &remote.ValidationError{Field: "working_dir", Message: "required"}
	}
	return nil
}

func validateURIs(req *urisRequest) error {
	return remote.NonEmpty("uris", req.URIs)
}

func (s *Server) registerServerRoutes(b *backend.Backend) {
	s.mux.HandleFunc(
		"GET /server",
		JSONHandler(func(w http.ResponseWriter, r *http.Request) (any, error) {
			return b.Info(r.Context()), nil
		}),
	)

	if s.broadcaster != nil {
		s.mux.HandleFunc("GET /events", sseHandler(s.broadcaster))
		logger.Info("[api] SSE route registered at /events")
	}
}

func (s *Server) registerFileManagerRoutes(fm *filemanager.Client) {
	s.mux.HandleFunc(
		"POST /filemanager/launch",
		withBody(validateURI, func(ctx context.Context, req *uriRequest) error {
			return fm.Launch(ctx, req.URI)
		}),
	)
	s.mux.HandleFunc(
		"POST /filemanager/folder",
		withBody(validateURI, func(ctx context.Context, req *uriRequest) error {
			return fm.DisplayFolder(ctx, req.URI)
		}),
	)
	s.mux.HandleFunc(
		"POST /filemanager/select",
		withBody(validateSelect, func(ctx context.Context, req *selectRequest) error {
			return fm.DisplayFolderAndSelect(ctx, req.URI, req.Filename)
		}),
	)
	s.mux.HandleFunc(
		"POST /filemanager/preferences",
		withAction(fm.DisplayPreferencesDialog),
	)
	s.mux.HandleFunc(
		"POST /filemanager/properties",
		withBody(validateURI, func(ctx context.Context, req *uriRequest) error {
			return fm.DisplayFileProperties(ctx, req.URI)
		}),
	)
}

func (s *Server) registerLunarRoutes(l *lunar.Client) {
	s.mux.HandleFunc(
		"POST /lunar/terminate",
		withAction(l.Terminate),
	)
	s.mux.HandleFunc(
		"POST /lunar/bulk-rename",
		withBody(validateBulkRename, func(ctx context.Context, req *bulkRenameRequest) error {
			standalone := true
			if req.Standalone != nil {
				standalone = *req.Standalone
			}
			return l.BulkRename(ctx, req.WorkingDir, req.Files, standalone)
		}),
	)
}

func (s *Server) registerTrashRoutes(t *trash.Client) {
	s.mux.HandleFunc(
		"GET /trash",
		JSONHandler(func(w http.ResponseWriter, r *http.Request) (any, error) {
			full, err := t.QueryTrash(r.Context())
			if err != nil {
				return nil, err
			}
			return map[string]bool{"full": full}, nil
		}),
	)
	s.mux.HandleFunc(
		"POST /trash/display",
		withAction(t.DisplayTrash),
	)
	s.mux.HandleFunc(
		"POST /trash/empty",
		withAction(t.EmptyTrash),
	)
	s.mux.HandleFunc(
		"POST /trash/move",
		withBody(validateURIs, func(ctx context.Context, req *urisRequest) error {
			return t.MoveToTrash(ctx, req.URIs)
		}),
	)
}

func (s *Server) registerFDORoutes(f *fdo.Client) {
	s.mux.HandleFunc(
		"POST /fdo/show-folders",
		withBody(validateURIs, func(ctx context.Context, req *urisRequest) error {
			return f.ShowFolders(ctx, req.URIs)
		}),
	)
	s.mux.HandleFunc(
		"POST /fdo/show-items",
		withBody(validateURIs, func(ctx context.Context, req *urisRequest) error {
			return f.ShowItems(ctx, req.URIs)
		}),
	)
	s.mux.HandleFunc(
		"POST /fdo/show-properties",
		withBody(validateURIs, func(ctx context.Context, req *urisRequest) error {
			return f.ShowItemProperties(ctx, req.URIs)
		}),
	)
}
