package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"chmura-plikow/internal/database"
	"chmura-plikow/internal/models"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/jaevor/go-nanoid"
)

type CreateFolderRequest struct {
	Name     string  `json:"name" example:"Dokumenty"`
	ParentID *string `json:"parent_id"`
}

func (req CreateFolderRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 255)),
	)
}

func (s *Server) generateUniqueID(ctx context.Context) (string, error) {
	maxRetries := 10

	generateID, err := nanoid.Standard(21)
	if err != nil {
		return "", fmt.Errorf("failed to initialize nanoid generator: %w", err)
	}

	for i := 0; i < maxRetries; i++ {
		id := generateID()
		exists, err := s.store.NodeExists(ctx, id)
		if err != nil {
			return "", fmt.Errorf("failed to check for node existence: %w", err)
		}
		if !exists {
			return id, nil
		}
	}

	return "", fmt.Errorf("failed to generate a unique ID after %d attempts", maxRetries)
}

func objectPathFor(ownerID int64, nodeID string) string {
	return fmt.Sprintf("%d/%s", ownerID, nodeID)
}

func downloadURLFor(nodeID string) string {
	return "/api/v1/files/" + nodeID + "/download"
}

// @Summary      List files and folders
// @Description  Lists the authenticated user's nodes for a view: "all" (one tree level, root unless parentId is given), "starred" or "trash". Folders sort before files, then by name.
// @Tags         files
// @Produce      json
// @Security     BearerAuth
// @Param        view      query     string  false  "View to list"  Enums(all, starred, trash)
// @Param        parentId  query     string  false  "Folder to list; only meaningful for the all view"
// @Success      200  {array}   models.Node
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /files [get]
func (s *Server) ListFilesHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	view := r.URL.Query().Get("view")
	if view == "" {
		view = "all"
	}
	if err := validation.Validate(view, validation.In("all", "starred", "trash")); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid view, must be one of: all, starred, trash")
		return
	}

	parentIDStr := r.URL.Query().Get("parentId")
	var parentID *string
	if parentIDStr != "" {
		parentID = &parentIDStr
	}

	nodes, err := s.store.ListNodes(r.Context(), claims.UserID, view, parentID)
	if err != nil {
		log.Printf("ERROR: failed to list nodes for user %d: %v", claims.UserID, err)
		respondError(w, http.StatusInternalServerError, "Failed to list files")
		return
	}

	// Pas bezpieczeństwa: każdy zwracany wiersz musi należeć do pytającego.
	owned := make([]models.Node, 0, len(nodes))
	for _, node := range nodes {
		if node.OwnerID == claims.UserID {
			owned = append(owned, node)
		}
	}

	respondJSON(w, http.StatusOK, owned)
}

// @Summary      Create a folder
// @Description  Creates a folder node. The parent, when given, must be an existing non-trashed folder owned by the same user.
// @Tags         files
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        createFolderRequest  body      CreateFolderRequest  true  "Folder to create"
// @Success      201  {object}  models.Node
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /folders [post]
func (s *Server) CreateFolderHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	var req CreateFolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if err := req.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.ParentID != nil && len(*req.ParentID) != 21 {
		respondError(w, http.StatusBadRequest, "Invalid ParentID format")
		return
	}

	nodeID, err := s.generateUniqueID(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create folder")
		return
	}

	params := database.CreateNodeParams{
		ID:       nodeID,
		OwnerID:  claims.UserID,
		ParentID: req.ParentID,
		Name:     req.Name,
		MimeType: models.FolderMimeType,
		IsFolder: true,
	}

	node, err := s.store.CreateNode(r.Context(), params)
	if err != nil {
		if errors.Is(err, database.ErrParentNotFound) {
			respondError(w, http.StatusBadRequest, "Parent folder does not exist")
			return
		}
		if errors.Is(err, database.ErrTreeTooDeep) {
			respondError(w, http.StatusBadRequest, "Folder nesting is too deep")
			return
		}
		log.Printf("ERROR: failed to create folder for user %d: %v", claims.UserID, err)
		respondError(w, http.StatusInternalServerError, "Failed to create folder")
		return
	}

	if err := s.store.LogEvent(r.Context(), claims.UserID, "folder_created", node); err != nil {
		log.Printf("WARN: failed to journal folder_created for user %d: %v", claims.UserID, err)
	}
	s.publishEvent(claims.UserID, "folder_created", node)

	respondJSON(w, http.StatusCreated, node)
}

// @Summary      Upload a file
// @Description  Uploads a file via multipart form. Bytes go to the object store; the database records the node with the object path.
// @Tags         files
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file       formData  file    true   "File content"
// @Param        parent_id  formData  string  false  "Destination folder"
// @Success      201  {object}  models.Node
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /files/upload [post]
func (s *Server) UploadFileHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	maxUpload := s.config.Storage.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = 1 << 30
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(w, http.StatusRequestEntityTooLarge, "Uploaded file exceeds the allowed size")
			return
		}
		respondError(w, http.StatusBadRequest, "Error parsing multipart form")
		return
	}

	file, handler, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Error retrieving the file")
		return
	}
	defer file.Close()

	parentIDStr := r.FormValue("parent_id")
	var parentID *string
	if parentIDStr != "" {
		if len(parentIDStr) != 21 {
			respondError(w, http.StatusBadRequest, "Invalid ParentID format")
			return
		}
		parentID = &parentIDStr
	}

	nodeID, err := s.generateUniqueID(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to upload file")
		return
	}

	mimeType := handler.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	path := objectPathFor(claims.UserID, nodeID)
	if err := s.storage.Save(r.Context(), path, file, handler.Size, mimeType); err != nil {
		log.Printf("ERROR: failed to save object %s: %v", path, err)
		respondError(w, http.StatusInternalServerError, "Failed to save file")
		return
	}

	fileURL := downloadURLFor(nodeID)
	params := database.CreateNodeParams{
		ID:        nodeID,
		OwnerID:   claims.UserID,
		ParentID:  parentID,
		Name:      handler.Filename,
		Path:      path,
		SizeBytes: handler.Size,
		MimeType:  mimeType,
		FileURL:   &fileURL,
	}

	node, err := s.store.CreateNode(r.Context(), params)
	if err != nil {
		// Rekord się nie zapisał, więc sprzątamy osierocone bajty od razu.
		if delErr := s.storage.Delete(r.Context(), path); delErr != nil {
			log.Printf("WARN: failed to remove orphaned object %s: %v", path, delErr)
		}
		if errors.Is(err, database.ErrParentNotFound) {
			respondError(w, http.StatusBadRequest, "Parent folder does not exist")
			return
		}
		if errors.Is(err, database.ErrTreeTooDeep) {
			respondError(w, http.StatusBadRequest, "Folder nesting is too deep")
			return
		}
		log.Printf("ERROR: failed to create file record for user %d: %v", claims.UserID, err)
		respondError(w, http.StatusInternalServerError, "Failed to create file record")
		return
	}

	if err := s.store.LogEvent(r.Context(), claims.UserID, "file_uploaded", node); err != nil {
		log.Printf("WARN: failed to journal file_uploaded for user %d: %v", claims.UserID, err)
	}
	s.publishEvent(claims.UserID, "file_uploaded", node)

	respondJSON(w, http.StatusCreated, node)
}

// @Summary      Download a file
// @Description  Streams the file bytes from the object store. Folders cannot be downloaded.
// @Tags         files
// @Produce      octet-stream
// @Security     BearerAuth
// @Param        fileId  path  string  true  "File ID"
// @Success      200  {file}    file
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /files/{fileId}/download [get]
func (s *Server) DownloadFileHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	nodeID := chi.URLParam(r, "fileId")
	if nodeID == "" {
		respondError(w, http.StatusBadRequest, "File ID is required")
		return
	}

	node, err := s.store.GetNodeByID(r.Context(), nodeID, claims.UserID)
	if err != nil {
		log.Printf("ERROR: failed to fetch node %s: %v", nodeID, err)
		respondError(w, http.StatusInternalServerError, "Failed to retrieve file metadata")
		return
	}
	if node == nil {
		respondError(w, http.StatusNotFound, "File not found")
		return
	}
	if node.IsFolder {
		respondError(w, http.StatusBadRequest, "Cannot download a folder")
		return
	}

	fileStream, err := s.storage.Get(r.Context(), node.Path)
	if err != nil {
		log.Printf("ERROR: object %s missing for node %s: %v", node.Path, node.ID, err)
		respondError(w, http.StatusInternalServerError, "File not found on storage")
		return
	}
	defer fileStream.Close()

	w.Header().Set("Content-Disposition", "attachment; filename=\""+node.Name+"\"")
	if node.MimeType != "" {
		w.Header().Set("Content-Type", node.MimeType)
	} else {
		w.Header().Set("Content-Type", "application/octet-stream")
	}
	w.Header().Set("Content-Length", fmt.Sprintf("%d", node.SizeBytes))

	io.Copy(w, fileStream)
}
